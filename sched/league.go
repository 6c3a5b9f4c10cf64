// Continuous random pairings
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
	"time"

	"go-snakes"
	"go-snakes/cmd"
)

// League keeps on pairing random modules until it is shut down.  The
// intent is not to have a fair schedule, but to keep the ratings of a
// long running server moving.
type League struct {
	modules []string
	pause   time.Duration
	elo     Elo
	played  int
	wait    sync.WaitGroup
	lock    sync.Mutex
}

func (*League) String() string { return "League" }

// pick selects two distinct modules and shuffles their order to
// avoid an advantage for either side.
func (l *League) pick(rng *rand.Rand) (a, b string) {
	i := rng.Intn(len(l.modules))
	j := rng.Intn(len(l.modules) - 1)
	if j >= i {
		j++
	}
	return l.modules[i], l.modules[j]
}

// known loads a rating from the database, if it is not yet known
func (l *League) known(st *cmd.State, name string) {
	if _, ok := l.elo[name]; ok || st.Database == nil {
		return
	}
	if c := st.Database.QueryContestant(st.Context, name); c != nil && c.Rating > 0 {
		l.elo[name] = c.Rating
	}
}

func (l *League) Start(st *cmd.State, conf *cmd.Conf) {
	defer l.wait.Done()

	r := MakeRunner(st, conf)
	r.Tournament = true

	l.modules = sane(st.Context, l.modules, r.Budget)
	if len(l.modules) < 2 {
		log.Print("Not enough modules for a league")
		return
	}

	rng := rand.New(rand.NewSource(r.seed()))
	for st.Context.Err() == nil {
		a, b := l.pick(rng)
		snakes.Debug.Println("Selected", a, b)

		out, err := r.Run(st.Context, a, b)
		if err != nil {
			log.Print(err)
		} else {
			l.lock.Lock()
			l.known(st, out.Names[0])
			l.known(st, out.Names[1])
			l.elo.Update(out)
			l.played++
			if st.Database != nil {
				for _, name := range out.Names {
					st.Database.SaveRating(st.Context, name, l.elo.rating(name))
				}
			}
			l.lock.Unlock()
			log.Printf("(%s vs. %s) -> %s", a, b, out)
		}

		select {
		case <-st.Context.Done():
		case <-time.After(l.pause):
		}
	}
}

func (l *League) Shutdown() {
	l.wait.Wait()
	snakes.Debug.Println("Completed", l.played, "matches in", l)
}

// Ratings returns a copy of the current ratings
func (l *League) Ratings() Elo {
	l.lock.Lock()
	defer l.lock.Unlock()
	e := make(Elo, len(l.elo))
	for k, v := range l.elo {
		e[k] = v
	}
	return e
}

// MakeLeague pairs MODULES at random, waiting PAUSE between two
// matches.
func MakeLeague(modules []string, pause time.Duration) *League {
	l := &League{
		modules: modules,
		pause:   pause,
		elo:     make(Elo),
	}
	l.wait.Add(1)
	return l
}
