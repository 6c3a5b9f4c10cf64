// Replay a recorded game
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
	"go-snakes/store"
	"go-snakes/vis"
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: %s [flags] replay.parquet\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	conf := cmd.LoadConf()

	r, err := store.LoadReplay(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	if err = vis.Play(r, conf.Delay()); err != nil {
		log.Fatal(err)
	}
}
