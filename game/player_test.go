// Player Tests
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
	"context"
	"math/rand"
	"testing"

	"go-snakes"
	"go-snakes/bot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRand() *rand.Rand { return rand.New(rand.NewSource(1)) }

// recorder is a visualiser that keeps every frame
type recorder struct{ frames []*snakes.Frame }

func (r *recorder) Show(f *snakes.Frame, turn int, title string) {
	r.frames = append(r.frames, f)
}

// find returns the head of a living avatar in channel CH
func find(f *snakes.Frame, ch int) *snakes.Point {
	for r := 0; r < f.Size; r++ {
		for c := 0; c < f.Size; c++ {
			p := snakes.Point{Row: r, Col: c}
			if f.At(p, ch) == 2 {
				return &p
			}
		}
	}
	return nil
}

// liar is a module of agents that return an illegal action
type liar struct{}

func (liar) String() string            { return "liar" }
func (liar) Name() string              { return "liar" }
func (liar) Version() string           { return "0" }
func (liar) FieldOfVision() int        { return 3 }
func (liar) Frames() int               { return 1 }
func (liar) Schedule() snakes.Schedule { return nil }

func (liar) New(int, []snakes.Action) (snakes.Agent, error) { return liar{}, nil }

func (liar) Decide(snakes.Percepts) (snakes.Action, error) { return 7, nil }

// versioned overrides the version of a perceptron module
type versioned struct {
	*bot.Perceptron
	version string
}

func (v versioned) Version() string { return v.version }

func TestGenerations(t *testing.T) {
	m := versioned{bot.MakePerceptron(snakes.Schedule{{Opponent: snakes.Self, Generations: 2}}, 1), "a"}
	p := player(t, m, 8)
	assert.False(t, p.Trained)

	opt := Options{Size: 20, Turns: 20, Foods: 8, Seed: 3}
	_, err := Play(context.Background(), opt, p)
	require.NoError(t, err)
	require.NoError(t, p.NewGenerationAgents(0))
	assert.Len(t, p.Agents, 8)
	assert.Len(t, p.Fitness, 1)
	assert.Nil(t, p.Avatars)

	_, err = Play(context.Background(), opt, p)
	require.NoError(t, err)
	fit, err := p.EvaluateFitness()
	require.NoError(t, err)
	require.Len(t, fit, 8)
	for i := 1; i < len(fit); i++ {
		assert.GreaterOrEqual(t, fit[i-1], fit[i])
	}

	// The avatars were reordered together with the agents
	for i, a := range p.Avatars {
		assert.Equal(t, p.Agents[i], a.Agent)
	}

	dir := t.TempDir()
	require.NoError(t, p.Save(dir))

	q := player(t, m, 8)
	ok, err := q.Load(dir)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, q.Trained)
	assert.Equal(t, p.Agents, q.Agents)
	assert.Equal(t, p.Fitness, q.Fitness)

	// Checkpoints of other versions are stale
	r := player(t, versioned{m.Perceptron, "b"}, 8)
	ok, err = r.Load(dir)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, r.Trained)

	// Checkpoints of a different size are ignored
	s := player(t, m, 4)
	ok, err = s.Load(dir)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUntrainable(t *testing.T) {
	p := player(t, bot.MakeStraight(), 2)
	assert.True(t, p.Trained)
	assert.Error(t, p.NewGenerationAgents(0))
	_, err := p.EvaluateFitness()
	assert.Error(t, err)

	ok, err := p.Load(t.TempDir())
	require.NoError(t, err)
	assert.False(t, ok)
}
