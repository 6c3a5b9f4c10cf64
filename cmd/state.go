// Shared State
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

package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"

	"go-snakes"
	"go-snakes/game"
)

type Manager interface {
	fmt.Stringer
	Start(*State, *Conf)
	Shutdown()
}

type Database interface {
	Manager

	// Access interface
	QueryContestants(context.Context, chan<- *snakes.Contestant, int)
	QueryContestant(context.Context, string) *snakes.Contestant
	QueryMatches(context.Context, string, chan<- *snakes.Match, int)
	QueryMatch(context.Context, int64) *snakes.Match
	QueryGenerations(context.Context, string, chan<- *snakes.Generation)

	// Store interface
	SaveOutcome(context.Context, *game.Outcome)
	SaveGeneration(context.Context, string, string, int, float64)
	SaveRating(context.Context, string, float64)
	Forget(context.Context, string) error

	// Miscellaneous
	DrawGraph(context.Context, io.Writer) error
}

type State struct {
	Context context.Context
	Kill    context.CancelFunc
	Running bool

	Database    Database
	Managers    []Manager
	Visualisers []snakes.Visualiser

	lock sync.Mutex
}

func MakeState() *State {
	ctx, kill := context.WithCancel(context.Background())
	return &State{
		Context: ctx,
		Kill:    kill,
	}
}

func (st *State) Register(m Manager) {
	if st.Running {
		panic(fmt.Sprintf("Late register: %#v", m))
	}

	if s, ok := m.(Database); ok {
		st.Database = s
	}
	if v, ok := m.(snakes.Visualiser); ok {
		st.Visualisers = append(st.Visualisers, v)
	}

	st.Managers = append(st.Managers, m)
}

// Show passes a frame on to every registered visualiser
func (st *State) Show(f *snakes.Frame, turn int, title string) {
	st.lock.Lock()
	defer st.lock.Unlock()
	for _, v := range st.Visualisers {
		v.Show(f, turn, title)
	}
}

// Visualiser returns the state itself if any visualiser has been
// registered, and nil otherwise.
func (st *State) Visualiser() snakes.Visualiser {
	if len(st.Visualisers) == 0 {
		return nil
	}
	return st
}

func (st *State) Start(c *Conf) {
	// Start the service
	for _, m := range st.Managers {
		snakes.Debug.Printf("Starting %s", m)
		go m.Start(st, c)
	}
	st.Running = true

	// Catch an interrupt request...
	intr := make(chan os.Signal, 1)
	signal.Notify(intr, os.Interrupt)
	select {
	case <-intr:
		log.Println("Caught interrupt")
		st.Kill()
	case <-st.Context.Done():
		log.Println("Requested shutdown")
	}

	done := make(chan struct{})
	go func() {
		// ...and request all managers to shut down.
		snakes.Debug.Println("Waiting for managers to shutdown...")
		for i := len(st.Managers) - 1; i >= 0; i-- {
			m := st.Managers[i]
			snakes.Debug.Printf("Shutting %s down", m)
			m.Shutdown()
		}
		done <- struct{}{}
	}()

	select {
	case <-intr:
		log.Println("Forced shutdown")
	case <-done:
		log.Println("Shutting down regularly")
	}
}
