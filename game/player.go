// Players and their Populations
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
	"os"
	"sort"
	"time"

	"go-snakes"
	"go-snakes/isol"
	"go-snakes/store"

	"github.com/pkg/errors"
)

// Player is a population of agents from one module
type Player struct {
	Module  *isol.Sandbox
	Agents  []snakes.Agent
	Avatars []*snakes.Avatar // of the most recent game
	Fitness []float64        // average fitness of each generation
	Trained bool
}

// NewPlayer instantiates a population of SIZE agents
func NewPlayer(m *isol.Sandbox, size int) (*Player, error) {
	p := &Player{
		Module:  m,
		Agents:  make([]snakes.Agent, size),
		Trained: !m.Trainable(),
	}
	for i := range p.Agents {
		a, err := m.New()
		if err != nil {
			return nil, err
		}
		p.Agents[i] = a
	}
	return p, nil
}

func (p *Player) String() string { return p.Module.Spec() }

// reset creates fresh avatars for a new game
func (p *Player) reset(side snakes.Side, turns int) []*snakes.Avatar {
	p.Avatars = make([]*snakes.Avatar, len(p.Agents))
	for i, a := range p.Agents {
		p.Avatars[i] = snakes.MakeAvatar(a, side, turns,
			p.Module.Frames(), p.Module.FieldOfVision())
	}
	return p.Avatars
}

// Individuals returns the agents with the sizes of their last game
func (p *Player) Individuals() []snakes.Individual {
	pop := make([]snakes.Individual, len(p.Agents))
	for i, a := range p.Agents {
		if i < len(p.Avatars) {
			pop[i] = p.Avatars[i].Individual()
		} else {
			pop[i] = snakes.Individual{Agent: a}
		}
	}
	return pop
}

// Score is the sum of the maximal size of every avatar
func (p *Player) Score() (score int) {
	for _, a := range p.Avatars {
		score += a.MaxSize()
	}
	return
}

// NewGenerationAgents replaces the population with the offspring of
// the previous generation GEN.
func (p *Player) NewGenerationAgents(gen int) error {
	next, avg, err := p.Module.Evolve(p.Individuals())
	if err != nil {
		return errors.WithMessagef(err, "generation %d", gen)
	}
	snakes.Debug.Printf("%s: generation %d has an average fitness of %.3f",
		p, gen, avg)
	p.Agents = next
	p.Avatars = nil
	p.Fitness = append(p.Fitness, avg)
	return nil
}

// EvaluateFitness orders the population by descending fitness and
// returns the sorted fitness values.
func (p *Player) EvaluateFitness() ([]float64, error) {
	fit, err := p.Module.Fitness(p.Individuals())
	if err != nil {
		return nil, err
	}

	order := make([]int, len(fit))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return fit[order[i]] > fit[order[j]]
	})

	var (
		agents  = make([]snakes.Agent, len(order))
		avatars = make([]*snakes.Avatar, 0, len(order))
		sorted  = make([]float64, len(order))
	)
	for i, j := range order {
		agents[i] = p.Agents[j]
		sorted[i] = fit[j]
		if j < len(p.Avatars) {
			avatars = append(avatars, p.Avatars[j])
		}
	}
	p.Agents = agents
	if len(avatars) == len(agents) {
		p.Avatars = avatars
	}
	return sorted, nil
}

// Checkpoint returns the path of the checkpoint in DIR
func (p *Player) Checkpoint(dir string) string {
	return store.Path(dir, p.Module.Spec(), ".ckpt")
}

// Save writes the population into a checkpoint in DIR
func (p *Player) Save(dir string) error {
	c := &store.Checkpoint{
		Module:  p.Module.Spec(),
		Version: p.Module.Version(),
		Agents:  make([][]byte, len(p.Agents)),
		Fitness: p.Fitness,
		Saved:   time.Now(),
	}
	for i, a := range p.Agents {
		data, err := p.Module.Snapshot(a)
		if err != nil {
			return err
		}
		c.Agents[i] = data
	}
	return store.SaveCheckpoint(p.Checkpoint(dir), c)
}

// Load restores a population from a checkpoint in DIR, if there is
// one that was made by the current version of the module and has the
// right size.  It reports if the player is now trained.
func (p *Player) Load(dir string) (bool, error) {
	path := p.Checkpoint(dir)
	c, err := store.LoadCheckpoint(path)
	if os.IsNotExist(err) {
		return false, nil
	} else if err != nil {
		return false, err
	}

	switch {
	case c.Module != p.Module.Spec():
		snakes.Debug.Printf("Ignoring checkpoint %s of %s", path, c.Module)
		return false, nil
	case c.Version != p.Module.Version():
		snakes.Debug.Printf("Ignoring stale checkpoint %s", path)
		return false, nil
	case len(c.Agents) != len(p.Agents):
		snakes.Debug.Printf("Ignoring checkpoint %s with %d agents", path, len(c.Agents))
		return false, nil
	}

	agents := make([]snakes.Agent, len(c.Agents))
	for i, data := range c.Agents {
		a, err := p.Module.Restore(data)
		if err != nil {
			return false, err
		}
		agents[i] = a
	}
	p.Agents = agents
	p.Avatars = nil
	p.Fitness = c.Fitness
	p.Trained = true
	return true, nil
}
