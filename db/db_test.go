// Database Tests
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

package db

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"go-snakes"
	"go-snakes/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T) *db {
	d, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(d.Shutdown)
	return d.(*db)
}

func contestants(d *db) (all []*snakes.Contestant) {
	c := make(chan *snakes.Contestant)
	go d.QueryContestants(context.Background(), c, 0)
	for con := range c {
		all = append(all, con)
	}
	return
}

func matches(d *db, name string) (all []*snakes.Match) {
	c := make(chan *snakes.Match)
	go d.QueryMatches(context.Background(), name, c, 0)
	for m := range c {
		all = append(all, m)
	}
	return
}

func TestOutcome(t *testing.T) {
	var (
		d   = open(t)
		ctx = context.Background()
	)

	d.SaveOutcome(ctx, &game.Outcome{
		Names:   [2]string{"perceptron", "random"},
		Scores:  [2]float64{12.5, 4},
		Replays: []string{"saved/a.parquet", "saved/b.parquet"},
	})
	d.SaveOutcome(ctx, &game.Outcome{
		Names:    [2]string{"greedy", ""},
		Scores:   [2]float64{-40, 0},
		Messages: [2]string{"Error! broken", ""},
	})

	all := matches(d, "")
	require.Len(t, all, 2)
	assert.Equal(t, [2]string{"greedy", ""}, all[0].Names)
	assert.True(t, all[0].Single())
	assert.Equal(t, "Error! broken", all[0].Messages[0])
	assert.Equal(t, []string{"saved/a.parquet", "saved/b.parquet"}, all[1].Replays)
	assert.False(t, all[1].Played.IsZero())

	by := matches(d, "random")
	require.Len(t, by, 1)
	assert.Equal(t, 12.5, by[0].Scores[0])

	m := d.QueryMatch(ctx, by[0].Id)
	require.NotNil(t, m)
	assert.Equal(t, by[0].Names, m.Names)
	assert.Len(t, m.Replays, 2)
	assert.Nil(t, d.QueryMatch(ctx, 1000))

	c := d.QueryContestant(ctx, "perceptron")
	require.NotNil(t, c)
	assert.Equal(t, 1, c.Matches)
	assert.Nil(t, d.QueryContestant(ctx, "nobody"))
}

func TestRatings(t *testing.T) {
	var (
		d   = open(t)
		ctx = context.Background()
	)

	d.SaveRating(ctx, "a", 990)
	d.SaveRating(ctx, "b", 1010)
	d.SaveRating(ctx, "a", 1020)

	all := contestants(d)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Name)
	assert.Equal(t, 1020.0, all[0].Rating)
	assert.Equal(t, "b", all[1].Name)
}

func TestGenerations(t *testing.T) {
	var (
		d   = open(t)
		ctx = context.Background()
	)

	for gen := 1; gen <= 3; gen++ {
		d.SaveGeneration(ctx, "perceptron", "1", gen, float64(gen)/2)
	}

	query := func() (gens []*snakes.Generation) {
		c := make(chan *snakes.Generation)
		go d.QueryGenerations(ctx, "perceptron", c)
		for g := range c {
			gens = append(gens, g)
		}
		return
	}

	gens := query()
	require.Len(t, gens, 3)
	assert.Equal(t, 1, gens[0].Number)
	assert.Equal(t, 1.5, gens[2].Fitness)

	// A new version hides the history of the previous one
	d.SaveGeneration(ctx, "perceptron", "2", 1, 7)
	gens = query()
	require.Len(t, gens, 1)
	assert.Equal(t, 7.0, gens[0].Fitness)
}

func TestForget(t *testing.T) {
	var (
		d   = open(t)
		ctx = context.Background()
	)

	d.SaveOutcome(ctx, &game.Outcome{
		Names:  [2]string{"a", "b"},
		Scores: [2]float64{3, 1},
	})
	require.NoError(t, d.Forget(ctx, "b"))
	assert.Error(t, d.Forget(ctx, "b"))
	assert.Empty(t, matches(d, ""))
	assert.Len(t, contestants(d), 1)
}

func TestDrawGraph(t *testing.T) {
	var (
		d   = open(t)
		ctx = context.Background()
		buf bytes.Buffer
	)

	d.SaveOutcome(ctx, &game.Outcome{
		Names:  [2]string{"a", "b"},
		Scores: [2]float64{3, 1},
	})
	d.SaveOutcome(ctx, &game.Outcome{
		Names:  [2]string{"c", "a"},
		Scores: [2]float64{1, 1},
	})

	require.NoError(t, d.DrawGraph(ctx, &buf))
	s := buf.String()
	assert.Contains(t, s, "strict digraph dominance")
	assert.Contains(t, s, `label="a"`)
	assert.Contains(t, s, "->")
	assert.NotContains(t, s, `label="c"`)
}
