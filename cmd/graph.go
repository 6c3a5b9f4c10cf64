// Dominance Graph
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

package cmd

import (
	"io"
	"log"
	"os/exec"

	"github.com/pkg/errors"
)

// ErrNoDatabase is returned by operations that need a database
var ErrNoDatabase = errors.New("no database has been registered")

// DrawGraph renders the dominance graph of all recorded matches using
// dot(1).  OPTS are passed on to dot.
func (st *State) DrawGraph(opts ...string) ([]byte, error) {
	if st.Database == nil {
		return nil, ErrNoDatabase
	}

	cmd := exec.CommandContext(st.Context, `dot`, opts...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	err = cmd.Start()
	if err != nil {
		return nil, errors.Wrap(err, "failed to start dot")
	}

	go func() {
		err := st.Database.DrawGraph(st.Context, stdin)
		if err != nil {
			log.Print(err)
		}
		err = stdin.Close()
		if err != nil {
			log.Print(err)
		}
	}()

	out, err := io.ReadAll(stdout)
	if err := cmd.Wait(); err != nil {
		return nil, errors.Wrap(err, "dot failed")
	}
	return out, err
}
