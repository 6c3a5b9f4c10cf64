// Forget everything about a module
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
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"go-snakes/cmd"
	"go-snakes/db"
	"go-snakes/store"
)

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: %s [flags] module...\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	conf := cmd.LoadConf()
	d, err := db.Open(conf.Database.File)
	if err != nil {
		log.Fatal(err, ": ", conf.Database.File)
	}

	failed := false
	ctx := context.Background()
	for _, spec := range flag.Args() {
		if err := d.Forget(ctx, spec); err != nil {
			log.Print(err)
			failed = true
		}
		ckpt := store.Path(conf.Store.Checkpoints, spec, ".ckpt")
		if err := store.Forget(ckpt); err != nil {
			log.Print(err)
			failed = true
		}
	}
	d.Shutdown()
	if failed {
		os.Exit(1)
	}
}
