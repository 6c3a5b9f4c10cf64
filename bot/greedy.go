// Greedy Agent
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
	"math"

	"go-snakes"
)

// Evaluation of a path that runs into a body
const collision = -1000

// Preference when two actions are equally good
var preference = []snakes.Action{snakes.Forward, snakes.Left, snakes.Right}

type greedy struct {
	depth int // step cutoff
}

// search explores every path of at most Δ steps within the window Σ,
// starting in the centre and facing up.  Food is worth more the
// earlier it is reached.
func search(Σ snakes.Window, Δ int) (snakes.Action, int) {
	c := Σ.Size / 2
	var (
		path []snakes.Point
		it   func(snakes.Point, snakes.Rotation, int) (snakes.Action, int)
	)

	blocked := func(p snakes.Point) bool {
		for _, q := range path {
			if p == q {
				return true
			}
		}
		return false
	}

	it = func(π snakes.Point, ρ snakes.Rotation, δ int) (snakes.Action, int) {
		var (
			Φ = math.MinInt // best evaluation
			μ snakes.Action // best action
		)

		for _, a := range preference {
			r := ρ.Turn(a)
			n := π.Add(r.Forward())

			var φ int
			switch {
			case n.Row < 0 || n.Col < 0 || n.Row >= Σ.Size || n.Col >= Σ.Size:
				// Whatever lies outside of the window is unknown
			case blocked(n):
				φ = collision
			default:
				switch Σ.At(n.Row, n.Col) {
				case snakes.Friend, snakes.Opponent:
					φ = collision
				case snakes.Edible:
					φ = 10 * δ
				}
				if φ != collision && δ > 1 {
					path = append(path, n)
					_, ψ := it(n, r, δ-1)
					path = path[:len(path)-1]
					φ += ψ
				}
			}

			if φ > Φ {
				Φ = φ
				μ = a
			}
		}

		return μ, Φ
	}

	path = append(path, snakes.Point{Row: c, Col: c})
	return it(snakes.Point{Row: c, Col: c}, 0, Δ)
}

func (g *greedy) Decide(p snakes.Percepts) (snakes.Action, error) {
	if len(p) == 0 || g.depth < 1 {
		return snakes.Forward, nil
	}
	act, _ := search(p[len(p)-1], g.depth)
	return act, nil
}
