// Common Interfaces and constants
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

package snakes

import (
	"fmt"
)

type (
	Side     int8
	Action   int
	Rotation int
)

const (
	// Possible sides, the sign is stored in the grid
	SideA Side = 1
	SideB Side = -1
)

const (
	// Possible actions, relative to the current heading
	Left    Action = -1
	Forward Action = 0
	Right   Action = 1
)

// Actions lists every legal action, in the order handed to agents
var Actions = []Action{Left, Forward, Right}

const (
	// Length of a freshly spawned avatar
	StartingLength = 2
	// Edge length of a spawn region
	RegionSize = 5
	// Number of games played to evaluate a pair of players
	EvaluationGames = 5
	// Upper bound for the generations of a training schedule
	MaxGenerations = 500
)

func (s Side) String() string {
	switch s {
	case SideA:
		return "A"
	case SideB:
		return "B"
	}
	panic("Illegal side")
}

// Index maps a side onto 0 (A) or 1 (B)
func (s Side) Index() int {
	switch s {
	case SideA:
		return 0
	case SideB:
		return 1
	}
	panic("Illegal side")
}

// SideOf is the inverse of Side.Index
func SideOf(i int) Side {
	switch i {
	case 0:
		return SideA
	case 1:
		return SideB
	}
	panic(fmt.Sprintf("Illegal side index %d", i))
}

func (a Action) Valid() bool {
	return a == Left || a == Forward || a == Right
}

func (a Action) String() string {
	switch a {
	case Left:
		return "left"
	case Forward:
		return "forward"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("illegal(%d)", int(a))
	}
}

// Point is a cell on the grid or in a percept window
type Point struct{ Row, Col int }

func (p Point) Add(q Point) Point { return Point{p.Row + q.Row, p.Col + q.Col} }
func (p Point) Neg() Point        { return Point{-p.Row, -p.Col} }

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Agent is a single controller of an avatar
type Agent interface {
	Decide(Percepts) (Action, error)
}

// Individual is an agent together with the sizes its avatar had
// during the last game, one entry per turn.
type Individual struct {
	Agent Agent
	Sizes []int
}

// Module is a loadable source of agents
type Module interface {
	fmt.Stringer
	// Name is used to identify checkpoints and results
	Name() string
	// Version changes whenever the implementation changes
	Version() string
	FieldOfVision() int
	Frames() int
	// Schedule is nil for modules that need no training
	Schedule() Schedule
	New(percepts int, actions []Action) (Agent, error)
}

// Trainer is implemented by modules with a training schedule
type Trainer interface {
	Evolve(old []Individual) (next []Agent, fitness float64, err error)
	Fitness(pop []Individual) ([]float64, error)
}

// Snapshotter serialises agents for checkpoints
type Snapshotter interface {
	Snapshot(Agent) ([]byte, error)
	Restore([]byte) (Agent, error)
}

// Visualiser receives a frame after every turn
type Visualiser interface {
	Show(f *Frame, turn int, title string)
}
