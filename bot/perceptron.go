// Perceptron Agent
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

package bot

import (
	"bytes"
	"encoding/gob"
	"math/rand"
	"sort"

	"go-snakes"

	"github.com/pkg/errors"
)

// DefaultSchedule is used if no other schedule was requested
var DefaultSchedule = snakes.Schedule{
	{Opponent: snakes.Self, Generations: 300},
	{Opponent: snakes.Random, Generations: 200},
}

const (
	// Inverse probability of a gene being mutated
	mutation = 250
	// Fraction of the population that survives unchanged
	elitism = 10
	// Fitness penalty for not growing at all
	stagnation = 5
)

// perceptron scores every action with a weighted sum over all
// percepts and picks the action with the highest score
type perceptron struct {
	Weights [][]float64 // one row per action, bias last
}

func (p *perceptron) Decide(ps snakes.Percepts) (snakes.Action, error) {
	var (
		best  = snakes.Forward
		score float64
	)
	for a, w := range p.Weights {
		h := w[len(w)-1]
		i := 0
		for _, win := range ps {
			for _, c := range win.Cells {
				if i < len(w)-1 {
					h += float64(c) * w[i]
				}
				i++
			}
		}
		if a == 0 || h > score {
			score = h
			best = snakes.Actions[a]
		}
	}
	return best, nil
}

// Perceptron is a module training perceptrons with a genetic
// algorithm
type Perceptron struct {
	schedule snakes.Schedule
	rng      *rand.Rand
	percepts int
}

// MakePerceptron creates a perceptron module.  A SEED of 0 requests
// a random seed.
func MakePerceptron(sched snakes.Schedule, seed int64) *Perceptron {
	return &Perceptron{schedule: sched, rng: newSource(seed).next()}
}

func (*Perceptron) String() string              { return "perceptron" }
func (*Perceptron) Name() string                { return "perceptron" }
func (*Perceptron) Version() string             { return "1" }
func (*Perceptron) FieldOfVision() int          { return 3 }
func (*Perceptron) Frames() int                 { return 1 }
func (m *Perceptron) Schedule() snakes.Schedule { return m.schedule }

func (m *Perceptron) chromosome() [][]float64 {
	w := make([][]float64, len(snakes.Actions))
	for i := range w {
		w[i] = make([]float64, m.percepts+1)
		for j := range w[i] {
			w[i][j] = m.rng.Float64()*2 - 1
		}
	}
	return w
}

func (m *Perceptron) New(percepts int, actions []snakes.Action) (snakes.Agent, error) {
	if len(actions) != len(snakes.Actions) {
		return nil, errors.Errorf("unexpected actions %v", actions)
	}
	m.percepts = percepts
	return &perceptron{Weights: m.chromosome()}, nil
}

// fitness rewards growth and survival
func fitness(sizes []int) float64 {
	if len(sizes) == 0 {
		return 0
	}

	var (
		max, min = sizes[0], sizes[0]
		alive    int
	)
	for _, s := range sizes {
		if s > max {
			max = s
		}
		if s < min {
			min = s
		}
		if s > 0 {
			alive++
		}
	}

	f := float64(max) + float64(alive)/float64(len(sizes))
	if alive == len(sizes) {
		f++
	}
	if max == min {
		f -= stagnation
	}
	return f
}

func (m *Perceptron) Fitness(pop []snakes.Individual) ([]float64, error) {
	fit := make([]float64, len(pop))
	for i, ind := range pop {
		for _, s := range ind.Sizes {
			if s < 0 {
				return nil, errors.Errorf("individual %d has a negative size %d", i, s)
			}
		}
		fit[i] = fitness(ind.Sizes)
	}
	return fit, nil
}

// pick selects the fitter of two random individuals
func (m *Perceptron) pick(order []int) int {
	a, b := m.rng.Intn(len(order)), m.rng.Intn(len(order))
	if a < b {
		return order[a]
	}
	return order[b]
}

func (m *Perceptron) Evolve(old []snakes.Individual) ([]snakes.Agent, float64, error) {
	if len(old) == 0 {
		return nil, 0, errors.New("empty population")
	}
	parents := make([]*perceptron, len(old))
	for i, ind := range old {
		p, ok := ind.Agent.(*perceptron)
		if !ok {
			return nil, 0, errors.Errorf("foreign agent %T", ind.Agent)
		}
		parents[i] = p
	}

	fit, err := m.Fitness(old)
	if err != nil {
		return nil, 0, err
	}
	var avg float64
	for _, f := range fit {
		avg += f
	}
	avg /= float64(len(fit))

	// Indices of the population, fittest first
	order := make([]int, len(old))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return fit[order[i]] > fit[order[j]]
	})

	next := make([]snakes.Agent, len(old))
	for n := range next {
		if n < len(old)/elitism {
			next[n] = parents[order[n]]
			continue
		}

		p1, p2 := parents[m.pick(order)], parents[m.pick(order)]
		child := &perceptron{Weights: make([][]float64, len(p1.Weights))}
		for i := range child.Weights {
			child.Weights[i] = make([]float64, len(p1.Weights[i]))
			for j := range child.Weights[i] {
				switch {
				case m.rng.Intn(mutation) == 0:
					child.Weights[i][j] = m.rng.Float64()*2 - 1
				case m.rng.Intn(2) == 0:
					child.Weights[i][j] = p1.Weights[i][j]
				default:
					child.Weights[i][j] = p2.Weights[i][j]
				}
			}
		}
		next[n] = child
	}

	return next, avg, nil
}

func (m *Perceptron) Snapshot(a snakes.Agent) ([]byte, error) {
	p, ok := a.(*perceptron)
	if !ok {
		return nil, errors.Errorf("foreign agent %T", a)
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (m *Perceptron) Restore(data []byte) (snakes.Agent, error) {
	var p perceptron
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&p); err != nil {
		return nil, errors.Wrap(err, "corrupt perceptron")
	}
	if len(p.Weights) != len(snakes.Actions) {
		return nil, errors.Errorf("expected %d rows of weights, got %d",
			len(snakes.Actions), len(p.Weights))
	}
	return &p, nil
}

var (
	_ snakes.Module      = &Perceptron{}
	_ snakes.Trainer     = &Perceptron{}
	_ snakes.Snapshotter = &Perceptron{}
)
