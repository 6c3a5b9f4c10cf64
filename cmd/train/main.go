// Train a module from scratch
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

	"go-snakes/cmd"
	"go-snakes/db"
	"go-snakes/sched"
	"go-snakes/vis"
	"go-snakes/web"
)

func main() {
	flag.Parse()
	switch flag.NArg() {
	case 0, 1:
	default:
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: %s [flags] [module]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	conf := cmd.LoadConf()
	if flag.NArg() == 1 {
		// The argument overrides the configuration file
		conf.Players.Player1 = flag.Arg(0)
	}
	if conf.Players.Player1 == "" {
		log.Fatal("No module to train")
	}
	conf.Players.Player2 = ""
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
	training := sched.MakeTraining()
	st.Register(training)
	st.Start(conf)

	if training.Err != nil {
		log.Fatal(training.Err)
	}
	log.Printf("Trained %s", conf.Players.Player1)
}
