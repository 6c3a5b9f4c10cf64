// Result Reports
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
	"fmt"
	"io"
	"sort"
	"strings"

	"go-snakes/game"
)

type score struct{ w, l, d uint }

func (s *score) total() int { return 2*int(s.w) - 2*int(s.l) + int(s.d) }

// tally counts the wins, losses and draws of every player
func tally(outcomes []*game.Outcome) map[string]*score {
	scores := make(map[string]*score)
	get := func(name string) *score {
		if s, ok := scores[name]; ok {
			return s
		}
		s := &score{}
		scores[name] = s
		return s
	}

	for _, o := range outcomes {
		if o.Names[1] == "" {
			continue
		}
		a, b := get(o.Names[0]), get(o.Names[1])
		switch o.Winner() {
		case 0:
			a.w++
			b.l++
		case 1:
			a.l++
			b.w++
		default:
			a.d++
			b.d++
		}
	}
	return scores
}

// escape prevents tbl from interpreting the field separator
func escape(s string) string {
	return strings.ReplaceAll(s, "/", `\[sl]`)
}

// PrintResults writes a groff report of OUTCOMES to W
func PrintResults(W io.Writer, title string, outcomes []*game.Outcome, elo Elo) {
	fmt.Fprintln(W, `.NH 1`)
	fmt.Fprintf(W, "Stage %q\n", title)
	if len(outcomes) == 0 {
		fmt.Fprintln(W, `.LP`)
		fmt.Fprintln(W, `No games took place.`)
		return
	}

	scores := tally(outcomes)
	agents := make([]string, 0, len(scores))
	for name := range scores {
		agents = append(agents, name)
	}
	sort.Strings(agents)
	sort.SliceStable(agents, func(i, j int) bool {
		return scores[agents[i]].total() > scores[agents[j]].total()
	})

	fmt.Fprintln(W, `.NH 2`)
	fmt.Fprintln(W, "Scores")

	fmt.Fprintln(W, `.TS`)
	fmt.Fprintln(W, `tab(/) box center;`)
	fmt.Fprintln(W, `c | c c c | c | c`)
	fmt.Fprintln(W, `------`)
	fmt.Fprintln(W, `l | n n n | n | n`)
	fmt.Fprintln(W, `.`)
	fmt.Fprintln(W, `Agent/Win/Loss/Draw/Score/Elo`)

	for _, a := range agents {
		s := scores[a]
		fmt.Fprintf(W, "%s/%d/%d/%d/%d/%.0f\n", escape(a), s.w, s.l, s.d,
			s.total(), elo.rating(a))
	}
	fmt.Fprintln(W, `.TE`)

	fmt.Fprintln(W, `.NH 2`)
	fmt.Fprintln(W, "Match Log")

	fmt.Fprintln(W, `.TS H`)
	fmt.Fprintln(W, `tab(/) box center;`)
	fmt.Fprintln(W, `c | c c | c c c`)
	fmt.Fprintln(W, `------`)
	fmt.Fprintln(W, `n | l l | n n n`)
	fmt.Fprintln(W, `.`)
	fmt.Fprintln(W, `.TH`)
	fmt.Fprintln(W, `Nr./First Player/Second Player/First/Second/Diff.`)

	for i, o := range outcomes {
		fmt.Fprintf(W, "%d/%s/%s/%.2f/%.2f/%.2f\n", i+1,
			escape(o.Names[0]), escape(o.Names[1]),
			o.Scores[0], o.Scores[1], o.Scores[0]-o.Scores[1])
	}
	fmt.Fprintln(W, `.TE`)

	var notes bool
	for _, o := range outcomes {
		for i, msg := range o.Messages {
			if msg == "" {
				continue
			}
			if !notes {
				fmt.Fprintln(W, `.NH 2`)
				fmt.Fprintln(W, "Violations")
				notes = true
			}
			fmt.Fprintln(W, `.IP \(bu`)
			fmt.Fprintf(W, "%s: %s\n", o.Names[i], msg)
		}
	}
}
