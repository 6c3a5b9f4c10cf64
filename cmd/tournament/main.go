// Round robin tournament between modules
//
// Copyright (c) 2023  Philip Kaludercic
//
// This file is part of go-snakes.
//
// go-snakes is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License,
// version 3, as published by the Free Software Foundation.
//
// go-snakes is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the GNU
// Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public
// License, version 3, along with go-snakes. If not, see
// <http://www.gnu.org/licenses/>

package main

import (
	"flag"
	"io"
	"log"
	"os"
	"os/exec"
	"path"
	"strings"

	"go-snakes"
	"go-snakes/cmd"
	"go-snakes/db"
	"go-snakes/sched"
	"go-snakes/web"
)

func main() {
	var (
		dir    = flag.String("dir", "", "Directory of executable agents")
		result = flag.String("result", "", "File to write the results into (.pdf, .ps, .html, .txt or groff)")
		title  = flag.String("title", "Round Robin", "Title of the result report")
	)
	flag.Parse()

	conf := cmd.LoadConf()
	modules := append(conf.Players.Modules, flag.Args()...)

	// Check if the -dir flag was used and handle it
	if *dir != "" {
		dent, err := os.ReadDir(*dir)
		if err != nil {
			log.Fatal(err)
		}

		for _, ent := range dent {
			if ent.IsDir() || ent.Type()&os.ModeSymlink != 0 {
				continue
			}
			info, err := ent.Info()
			if err != nil || info.Mode()&0o111 == 0 {
				continue
			}
			modules = append(modules, "exec:"+path.Join(*dir, ent.Name()))
		}
	}
	if len(modules) < 2 {
		log.Fatal("A tournament requires at least two modules")
	}
	conf.Players.Modules = modules
	if err := conf.Validate(); err != nil {
		log.Fatal(err)
	}
	snakes.Debug.Println("Participants:", strings.Join(modules, ", "))

	// Load components
	st := cmd.MakeState()
	if conf.Database.File != "" {
		db.Register(st, conf)
	}
	if conf.Web.Enabled {
		web.Register(st)
	}
	rr := sched.MakeRoundRobin(modules)
	st.Register(rr)

	// Print results
	var (
		groff *exec.Cmd
		out   io.WriteCloser
	)
	if res := *result; res != "" {
		snakes.Debug.Println("Writing results to", res)
		file, err := os.Create(res)
		if err != nil {
			log.Fatal(err)
		}
		defer file.Close()
		out = file

		var dev string
		switch path.Ext(res) {
		case ".pdf":
			dev = "-Tpdf"
		case ".ps":
			dev = "-Tps"
		case ".html":
			dev = "-Txhtml"
		case ".txt":
			dev = "-Tutf8"
		default:
			goto skip
		}
		snakes.Debug.Println("Preparing groff with", dev)
		groff = exec.Command("groff", dev, "-ms", "-t")

		groff.Stdout = file
		out, err = groff.StdinPipe()
		if err != nil {
			log.Fatal(err)
		}
	} else {
		out = os.Stdout
	}
skip:

	// Start the tournament
	st.Start(conf)

	// Print results
	if groff != nil {
		if err := groff.Start(); err != nil {
			log.Fatal(err)
		}
	}
	sched.PrintResults(out, *title, rr.Outcomes(), rr.Ratings())
	if groff != nil {
		out.Close()
		if err := groff.Wait(); err != nil {
			log.Print(err)
		}
	}
}
