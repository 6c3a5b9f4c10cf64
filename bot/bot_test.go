// Reference Agent Tests
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
	"context"
	"testing"

	"go-snakes"
	"go-snakes/agent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// window parses rows like ".f#o" into a percept window, where f is
// food, # a friendly and o an opposing body.  The centre is always
// occupied by the head.
func window(rows ...string) snakes.Window {
	w := snakes.MakeWindow(len(rows))
	for r, row := range rows {
		for c, ch := range row {
			switch ch {
			case 'f':
				w.Set(r, c, snakes.Edible)
			case '#':
				w.Set(r, c, snakes.Friend)
			case 'o':
				w.Set(r, c, snakes.Opponent)
			}
		}
	}
	w.Set(len(rows)/2, len(rows)/2, snakes.Friend)
	return w
}

func TestSearch(t *testing.T) {
	for i, test := range []struct {
		state    snakes.Window
		depth    int
		expected snakes.Action
	}{
		{
			state:    window("...", "...", "..."),
			depth:    1,
			expected: snakes.Forward,
		},
		{
			state:    window(".f.", "...", "..."),
			depth:    1,
			expected: snakes.Forward,
		},
		{
			state:    window("...", "f..", "..."),
			depth:    1,
			expected: snakes.Left,
		},
		{
			state:    window("...", "..f", "..."),
			depth:    1,
			expected: snakes.Right,
		},
		{
			state:    window(".o.", "...", "..."),
			depth:    1,
			expected: snakes.Left,
		},
		{
			state:    window(".#.", "#..", ".#."),
			depth:    1,
			expected: snakes.Right,
		},
		{
			state:    window(".....", ".....", "f....", ".....", "....."),
			depth:    2,
			expected: snakes.Left,
		},
		{
			state:    window(".....", ".f...", ".....", ".....", "....."),
			depth:    2,
			expected: snakes.Forward,
		},
		{
			state:    window(".....", "..o..", "....f", "..#..", "....."),
			depth:    2,
			expected: snakes.Right,
		},
	} {
		move, ev := search(test.state, test.depth)
		if test.expected != move {
			t.Errorf("[%d] Expected move %s, but got %s (%d)",
				i, test.expected, move, ev)
		}
	}
}

func TestRandom(t *testing.T) {
	m := MakeRandom(1)
	a, err := m.New(9, snakes.Actions)
	require.NoError(t, err)

	seen := make(map[snakes.Action]bool)
	for i := 0; i < 100; i++ {
		act, err := a.Decide(nil)
		require.NoError(t, err)
		require.True(t, act.Valid())
		seen[act] = true
	}
	assert.Len(t, seen, 3)
}

func TestRegistry(t *testing.T) {
	for _, spec := range []string{"random", "random:7", "straight", "greedy:7", "perceptron", "perceptron:self:3"} {
		m, err := agent.Open(context.Background(), spec)
		if assert.NoError(t, err, spec) {
			assert.NotNil(t, m, spec)
		}
	}

	m, err := agent.Open(context.Background(), "perceptron:self:3")
	require.NoError(t, err)
	assert.Equal(t, snakes.Schedule{{Opponent: snakes.Self, Generations: 3}}, m.Schedule())

	_, err = agent.Open(context.Background(), "greedy:x")
	assert.Error(t, err)
}

func TestFitness(t *testing.T) {
	assert.Equal(t, 0.0, fitness(nil))
	// Survived without growing
	assert.Equal(t, 2.0+1+1-stagnation, fitness([]int{2, 2, 2}))
	// Grew and died
	assert.Equal(t, 3.0+0.5, fitness([]int{2, 3, 0, 0}))
}

func TestPerceptron(t *testing.T) {
	m := MakePerceptron(DefaultSchedule, 1)
	pop := make([]snakes.Individual, 20)
	for i := range pop {
		a, err := m.New(9, snakes.Actions)
		require.NoError(t, err)
		act, err := a.Decide(snakes.Percepts{snakes.MakeWindow(3)})
		require.NoError(t, err)
		require.True(t, act.Valid())
		pop[i] = snakes.Individual{Agent: a, Sizes: []int{2, 2 + i%3}}
	}

	next, avg, err := m.Evolve(pop)
	require.NoError(t, err)
	require.Len(t, next, len(pop))
	assert.Greater(t, avg, 0.0)
	for _, a := range next {
		p, ok := a.(*perceptron)
		require.True(t, ok)
		assert.Len(t, p.Weights, 3)
		assert.Len(t, p.Weights[0], 10)
	}

	data, err := m.Snapshot(next[0])
	require.NoError(t, err)
	a, err := m.Restore(data)
	require.NoError(t, err)
	assert.Equal(t, next[0], a)

	_, err = m.Restore([]byte("garbage"))
	assert.Error(t, err)

	pop[3].Sizes = []int{2, -1}
	_, _, err = m.Evolve(pop)
	assert.Error(t, err, "negative size")
}
