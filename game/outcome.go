// Match Outcomes
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

package game

import (
	"fmt"

	"go-snakes"
)

// Outcome is the evaluation of one or two players over several games
type Outcome struct {
	Names    [2]string
	Scores   [2]float64
	Messages [2]string
	Failed   [2]bool
	Games    []*Result
	Replays  []string

	total, count [2]int
}

// Disqualify records a failure of side I and penalises it with the
// negated population size.
func (o *Outcome) Disqualify(i, population int, msg string) {
	o.Failed[i] = true
	o.Scores[i] = -float64(population)
	o.Messages[i] = msg
}

// Record adds the result of a game played by the sides listed in
// SIDES, in the order they were passed to Play, and updates the
// average score of each side.
func (o *Outcome) Record(res *Result, sides ...int) {
	o.Games = append(o.Games, res)
	for k, i := range sides {
		o.total[i] += res.Scores[k]
		o.count[i]++
		if !o.Failed[i] {
			o.Scores[i] = float64(o.total[i]) / float64(o.count[i])
		}
	}
}

// Winner returns the index of the side with the higher score, or -1
// for a draw or a single player.
func (o *Outcome) Winner() int {
	switch {
	case o.Names[1] == "":
		return -1
	case o.Scores[0] > o.Scores[1]:
		return 0
	case o.Scores[0] < o.Scores[1]:
		return 1
	}
	return -1
}

// Match converts the outcome into a database record
func (o *Outcome) Match() *snakes.Match {
	return &snakes.Match{
		Names:    o.Names,
		Scores:   o.Scores,
		Messages: o.Messages,
		Replays:  o.Replays,
	}
}

func (o *Outcome) String() string {
	if o.Names[1] == "" {
		return fmt.Sprintf("%s: %.2f", o.Names[0], o.Scores[0])
	}
	return fmt.Sprintf("%s vs. %s: %.2f:%.2f", o.Names[0], o.Names[1],
		o.Scores[0], o.Scores[1])
}
