// Play a match between two modules
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
	"fmt"
	"log"
	"os"

	"go-snakes"
	"go-snakes/agent"
	"go-snakes/cmd"
	"go-snakes/db"
	"go-snakes/proto"
	"go-snakes/sched"
	"go-snakes/vis"
	"go-snakes/web"
)

// stdio joins standard input and output into a single connection
type stdio struct{}

func (stdio) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdio) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdio) Close() error                { return os.Stdin.Close() }

// serve exposes a registered module to an engine, either over
// standard input and output or, if a port was given, over TCP.
func serve(spec string, port uint) {
	st := cmd.MakeState()
	module, err := agent.Open(st.Context, spec)
	if err != nil {
		log.Fatal(err)
	}

	if port == 0 {
		if err = proto.Serve(st.Context, stdio{}, module); err != nil {
			log.Fatal(err)
		}
		return
	}

	l, err := proto.Listen(st.Context, module, uint16(port))
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Serving %s on port %d", module, l.Port())
	l.Start()
}

func main() {
	var (
		module = flag.String("serve", "", "Serve a module over the agent protocol")
		port   = flag.Uint("port", 0, "TCP port for -serve (standard input and output if 0)")
	)
	flag.Parse()
	if flag.NArg() != 0 {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Too many arguments passed to %s.\nUsage:\n",
			os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *module != "" {
		// Any output on stdout would confuse the engine
		log.SetOutput(os.Stderr)
		serve(*module, *port)
		return
	}

	conf := cmd.LoadConf()
	if err := conf.Validate(); err != nil {
		log.Fatal(err)
	}

	st := cmd.MakeState()
	if conf.Database.File != "" {
		db.Register(st, conf)
	}
	if conf.Web.Enabled {
		web.Register(st)
	}
	if err := vis.Register(st, conf); err != nil {
		log.Fatal(err)
	}
	match := sched.MakeMatch()
	st.Register(match)
	st.Start(conf)

	if match.Err != nil {
		log.Fatal(match.Err)
	}
	if match.Outcome == nil {
		return
	}
	fmt.Println(match.Outcome)
	for i, r := range match.Outcome.Replays {
		snakes.Debug.Printf("Replay of game %d: %s", i+1, r)
	}
}
