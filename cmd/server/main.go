// Long running results server
//
// Copyright (c) 2021, 2022, 2023  Philip Kaludercic
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
	"time"

	"go-snakes/agent"
	"go-snakes/cmd"
	"go-snakes/db"
	"go-snakes/proto"
	"go-snakes/sched"
	"go-snakes/web"
)

// listener makes a module available to remote engines
type listener struct {
	*proto.Listener
}

func (l listener) Start(*cmd.State, *cmd.Conf) { l.Listener.Start() }

func main() {
	var (
		serve = flag.String("serve", "", "Module to offer over TCP")
		port  = flag.Uint("port", proto.DefaultPort, "Port for -serve")
		pause = flag.Duration("pause", time.Second, "Pause between two league matches")
	)
	flag.Parse()
	if flag.NArg() != 0 {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Too many arguments passed to %s.\nUsage:\n",
			os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load the configuration from disk (if available)
	conf := cmd.LoadConf()
	conf.Web.Enabled = true
	if len(conf.Players.Modules) > 0 {
		if err := conf.Validate(); err != nil {
			log.Fatal(err)
		}
	}
	st := cmd.MakeState()

	// Enable the database
	db.Register(st, conf)

	// Enable the web interface
	web.Register(st)

	// Allow TCP connections
	if *serve != "" {
		module, err := agent.Open(st.Context, *serve)
		if err != nil {
			log.Fatal(err)
		}
		l, err := proto.Listen(st.Context, module, uint16(*port))
		if err != nil {
			log.Fatal(err)
		}
		st.Register(listener{l})
	}

	// Keep the configured modules busy
	if len(conf.Players.Modules) > 1 {
		st.Register(sched.MakeLeague(conf.Players.Modules, *pause))
	}

	// Launch the server
	st.Start(conf)
}
