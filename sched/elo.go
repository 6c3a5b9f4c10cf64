// Elo Ratings
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
	"math"
	"sort"

	"go-snakes/game"
)

const (
	MAX_DIFF = 400
	EPS      = 0.0001
	K        = 20

	WIN  = 1.0
	DRAW = 0.5
	LOSS = 0.0

	// Rating of a player without any recorded matches
	Initial = 1000.0
)

// Elo tracks the ratings of players by name
type Elo map[string]float64

func (e Elo) rating(name string) float64 {
	if r, ok := e[name]; ok {
		return r
	}
	return Initial
}

// expect returns the expected score of A against B
func expect(a, b float64) (float64, float64) {
	// Calculate the expected outcome according to
	// https://de.wikipedia.org/wiki/Elo-Zahl#Erwartungswert
	diff := math.Max(-MAX_DIFF, math.Min(b-a, MAX_DIFF))

	ea := 1 / (1 + math.Pow(10, diff/MAX_DIFF))
	eb := 1 / (1 + math.Pow(10, -diff/MAX_DIFF))
	return ea, eb
}

// Update adjusts the ratings of both sides of O.  Single player
// outcomes do not affect the ratings.
func (e Elo) Update(o *game.Outcome) {
	a, b := o.Names[0], o.Names[1]
	if a == "" || b == "" {
		return
	}

	ra, rb := e.rating(a), e.rating(b)
	ea, eb := expect(ra, rb)
	if math.Abs((ea+eb)-1) > EPS {
		log.Printf("Numerical instability detected: %f + %f = %f != 1.0", ea, eb, ea+eb)
		return
	}

	var sa, sb float64
	switch o.Winner() {
	case 0:
		sa, sb = WIN, LOSS
	case 1:
		sa, sb = LOSS, WIN
	default:
		sa, sb = DRAW, DRAW
	}
	e[a] = ra + K*(sa-ea)
	e[b] = rb + K*(sb-eb)
}

// Ranking lists the rated players, best first
func (e Elo) Ranking() []string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.SliceStable(names, func(i, j int) bool {
		if e[names[i]] == e[names[j]] {
			return names[i] < names[j]
		}
		return e[names[i]] > e[names[j]]
	})
	return names
}
