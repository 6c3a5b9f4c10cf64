// Avatars
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

package snakes

import (
	"fmt"
)

// Avatar is a snake on the grid, controlled by an agent
type Avatar struct {
	Agent    Agent
	Side     Side
	Head     Point
	Rotation Rotation
	Body     []Point
	Size     int
	// Size of the avatar after every turn, zero while it is dead
	Sizes []int
	// Windows in global orientation, oldest first
	Memory []Window
	Hit    bool
	Dead   bool
}

func MakeAvatar(agent Agent, side Side, turns, frames, fov int) *Avatar {
	a := &Avatar{
		Agent:  agent,
		Side:   side,
		Sizes:  make([]int, turns),
		Memory: make([]Window, frames),
	}
	for i := range a.Memory {
		a.Memory[i] = MakeWindow(fov)
	}
	return a
}

func (a *Avatar) String() string {
	return fmt.Sprintf("avatar(%s, %s, %d°, %d)", a.Side, a.Head, a.Rotation, a.Size)
}

// Alive is true if the avatar neither died in an earlier turn nor
// collided in the current one.
func (a *Avatar) Alive() bool {
	return !a.Dead && !a.Hit
}

// Spawn places the avatar in the region with the upper left corner
// ORIGIN, its body trailing behind the head.
func (a *Avatar) Spawn(g *Grid, origin Point, rot Rotation) {
	a.Head = g.Wrap(origin.Add(Point{2, 2}))
	a.Rotation = rot
	a.Size = StartingLength
	a.Body = a.Body[:0]

	back := rot.Forward().Neg()
	p := a.Head
	for z := 0; z < a.Size; z++ {
		g.Occupy(p, a.Side, a.Size-z)
		a.Body = append(a.Body, p)
		p = g.Wrap(p.Add(back))
	}
}

// Observe records the current surroundings as the newest memory and
// returns all memories rotated into the frame of the avatar.
func (a *Avatar) Observe(g *Grid, food *Food) Percepts {
	last := len(a.Memory) - 1
	a.Memory[last] = Capture(g, food, a.Head, a.Side, a.Memory[last].Size)

	percepts := make(Percepts, len(a.Memory))
	for i, w := range a.Memory {
		percepts[i] = w.Rotate(a.Rotation)
	}
	return percepts
}

// Remember ages the memory after the avatar moved by STEP: every
// frame is shifted against the movement and moves one slot towards
// the oldest.
func (a *Avatar) Remember(step Point) {
	for f := 1; f < len(a.Memory); f++ {
		a.Memory[f-1] = a.Memory[f].Translate(step.Neg())
	}
}

// Move executes an action and reports the step taken and if the
// avatar ate.  The new head is not written into the grid, see Commit.
func (a *Avatar) Move(g *Grid, food *Food, act Action) (Point, bool) {
	if !act.Valid() {
		panic(fmt.Sprintf("Illegal action %d", act))
	}
	a.Rotation = a.Rotation.Turn(act)
	step := a.Rotation.Forward()
	a.Head = g.Wrap(a.Head.Add(step))

	if food.Contains(a.Head) {
		a.Size++
		return step, true
	}

	body := a.Body[:0]
	for _, p := range a.Body {
		if g.Age(p) {
			body = append(body, p)
		}
	}
	a.Body = body
	return step, false
}

// Commit writes the head of a surviving avatar into the grid
func (a *Avatar) Commit(g *Grid, turn int) {
	g.Occupy(a.Head, a.Side, a.Size)
	a.Body = append(a.Body, a.Head)
	if turn < len(a.Sizes) {
		a.Sizes[turn] = a.Size
	}
}

// Remove clears the body of a hit avatar and marks it as dead
func (a *Avatar) Remove(g *Grid) {
	for _, p := range a.Body {
		g.Vacate(p)
	}
	a.Body = nil
	a.Dead = true
}

// MaxSize is the largest recorded size
func (a *Avatar) MaxSize() (max int) {
	for _, s := range a.Sizes {
		if s > max {
			max = s
		}
	}
	return
}

// Individual pairs the agent with its size history
func (a *Avatar) Individual() Individual {
	return Individual{Agent: a.Agent, Sizes: append([]int(nil), a.Sizes...)}
}
