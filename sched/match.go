// Single Matches
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

package sched

import (
	"sync"

	"go-snakes/cmd"
	"go-snakes/game"
)

// Match runs a single evaluation of the configured players and
// requests a shutdown once it is done.
type Match struct {
	Outcome *game.Outcome
	Err     error
	train   bool
	wait    sync.WaitGroup
}

func (m *Match) String() string {
	if m.train {
		return "Training"
	}
	return "Match"
}

func (m *Match) Start(st *cmd.State, conf *cmd.Conf) {
	defer m.wait.Done()
	defer st.Kill()

	r := MakeRunner(st, conf)
	if m.train {
		m.Err = r.Retrain(st.Context, conf.Players.Player1)
		return
	}

	p1, p2 := conf.Players.Player1, conf.Players.Player2
	if p1 == "" {
		p1, p2 = p2, ""
	}
	m.Outcome, m.Err = r.Run(st.Context, p1, p2)
}

func (m *Match) Shutdown() {
	m.wait.Wait()
}

// MakeMatch evaluates the configured players
func MakeMatch() *Match {
	m := &Match{}
	m.wait.Add(1)
	return m
}

// MakeTraining trains the first configured player, ignoring any
// existing checkpoint.
func MakeTraining() *Match {
	m := &Match{train: true}
	m.wait.Add(1)
	return m
}
