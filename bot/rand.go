// Random and Straight Agents
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

package bot

import (
	"math/rand"
	"sync"
	"time"

	"go-snakes"
)

// source hands out independent generators, so that agents never
// share state
type source struct {
	lock sync.Mutex
	rng  *rand.Rand
}

// newSource creates a source, where a SEED of 0 requests a random
// seed
func newSource(seed int64) *source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &source{rng: rand.New(rand.NewSource(seed))}
}

func (s *source) next() *rand.Rand {
	s.lock.Lock()
	defer s.lock.Unlock()
	return rand.New(rand.NewSource(s.rng.Int63()))
}

type random struct {
	rng *rand.Rand
}

func (r *random) Decide(snakes.Percepts) (snakes.Action, error) {
	return snakes.Actions[r.rng.Intn(len(snakes.Actions))], nil
}

type straight struct{}

func (straight) Decide(snakes.Percepts) (snakes.Action, error) {
	return snakes.Forward, nil
}
