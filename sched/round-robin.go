// Round Robin Tournaments
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

package sched

import (
	"log"
	"math/rand"
	"sync"

	"go-snakes"
	"go-snakes/cmd"
	"go-snakes/game"
)

type pairing struct{ a, b string }

// RoundRobin evaluates every ordered pair of modules
type RoundRobin struct {
	modules  []string
	outcomes []*game.Outcome
	elo      Elo
	wait     sync.WaitGroup
	lock     sync.Mutex
}

func (*RoundRobin) String() string { return "Round Robin" }

// schedule returns all pairings in a random order
func (rr *RoundRobin) schedule(rng *rand.Rand) (games []pairing) {
	for _, a := range rr.modules {
		for _, b := range rr.modules {
			if a == b {
				continue
			}
			games = append(games, pairing{a, b})
		}
	}
	rng.Shuffle(len(games), func(i, j int) {
		games[i], games[j] = games[j], games[i]
	})
	return
}

func (rr *RoundRobin) Start(st *cmd.State, conf *cmd.Conf) {
	defer rr.wait.Done()
	defer st.Kill()

	r := MakeRunner(st, conf)
	r.Tournament = true

	rr.modules = sane(st.Context, rr.modules, r.Budget)
	games := rr.schedule(rand.New(rand.NewSource(r.seed())))
	snakes.Debug.Println("Starting", rr, "with", len(games), "matches")
	for i, g := range games {
		if st.Context.Err() != nil {
			return
		}

		out, err := r.Run(st.Context, g.a, g.b)
		if err != nil {
			log.Print(err)
			continue
		}

		rr.lock.Lock()
		rr.outcomes = append(rr.outcomes, out)
		rr.elo.Update(out)
		rr.lock.Unlock()
		log.Printf("%d/%d (%s vs. %s) -> %s", i+1, len(games), g.a, g.b, out)
	}

	if st.Database != nil {
		for name, rating := range rr.elo {
			st.Database.SaveRating(st.Context, name, rating)
		}
	}
}

func (rr *RoundRobin) Shutdown() {
	rr.wait.Wait()
	snakes.Debug.Println("Completed", rr)
}

// Outcomes returns the outcomes of all matches so far
func (rr *RoundRobin) Outcomes() []*game.Outcome {
	rr.lock.Lock()
	defer rr.lock.Unlock()
	return append([]*game.Outcome(nil), rr.outcomes...)
}

// Ratings returns the Elo ratings of all matches so far
func (rr *RoundRobin) Ratings() Elo {
	rr.lock.Lock()
	defer rr.lock.Unlock()
	e := make(Elo, len(rr.elo))
	for k, v := range rr.elo {
		e[k] = v
	}
	return e
}

func MakeRoundRobin(modules []string) *RoundRobin {
	rr := &RoundRobin{
		modules: modules,
		elo:     make(Elo),
	}
	rr.wait.Add(1)
	return rr
}
