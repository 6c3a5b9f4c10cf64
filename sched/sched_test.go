// Scheduler Tests
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

package sched

import (
	"bytes"
	"context"
	"math/rand"
	"os"
	"testing"
	"time"

	"go-snakes"
	"go-snakes/agent"
	"go-snakes/cmd"
	"go-snakes/game"
	"go-snakes/isol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type forward struct{}

func (forward) Decide(snakes.Percepts) (snakes.Action, error) { return snakes.Forward, nil }

// counter is a trainable module that counts the calls it receives
type counter struct {
	schedule snakes.Schedule
	version  string
	evolved  int
	rated    int
}

func (*counter) String() string              { return "counter" }
func (*counter) Name() string                { return "counter" }
func (c *counter) Version() string           { return c.version }
func (*counter) FieldOfVision() int          { return 3 }
func (*counter) Frames() int                 { return 1 }
func (c *counter) Schedule() snakes.Schedule { return c.schedule }

func (*counter) New(int, []snakes.Action) (snakes.Agent, error) { return forward{}, nil }

func (c *counter) Evolve(old []snakes.Individual) ([]snakes.Agent, float64, error) {
	c.evolved++
	next := make([]snakes.Agent, len(old))
	for i, ind := range old {
		next[i] = ind.Agent
	}
	return next, 1, nil
}

func (c *counter) Fitness(pop []snakes.Individual) ([]float64, error) {
	c.rated++
	return make([]float64, len(pop)), nil
}

func (*counter) Snapshot(snakes.Agent) ([]byte, error) { return []byte{}, nil }
func (*counter) Restore([]byte) (snakes.Agent, error)  { return forward{}, nil }

// liar returns an illegal action
type liar struct{}

func (liar) String() string                                 { return "liar" }
func (liar) Name() string                                   { return "liar" }
func (liar) Version() string                                { return "0" }
func (liar) FieldOfVision() int                             { return 3 }
func (liar) Frames() int                                    { return 1 }
func (liar) Schedule() snakes.Schedule                      { return nil }
func (liar) New(int, []snakes.Action) (snakes.Agent, error) { return liar{}, nil }
func (liar) Decide(snakes.Percepts) (snakes.Action, error)  { return 7, nil }

func init() {
	agent.Register("sched-liar", func(context.Context, string) (snakes.Module, error) {
		return liar{}, nil
	})
	// every version of the counter shares the same name
	agent.Register("sched-counter", func(_ context.Context, version string) (snakes.Module, error) {
		return &counter{
			schedule: snakes.Schedule{{Opponent: snakes.Random, Generations: 2}},
			version:  version,
		}, nil
	})
}

func runner(t *testing.T) *Runner {
	return &Runner{
		Options:     game.Options{Size: 10, Turns: 5, Foods: 2},
		Population:  2,
		Budget:      isol.DefaultBudget,
		Checkpoints: t.TempDir(),
		Replays:     t.TempDir(),
	}
}

func trainee(t *testing.T, c *counter, size int) *game.Player {
	m, err := isol.Wrap(c, isol.DefaultBudget)
	require.NoError(t, err)
	p, err := game.NewPlayer(m, size)
	require.NoError(t, err)
	require.False(t, p.Trained)
	return p
}

func TestTrainAgainstRandom(t *testing.T) {
	var (
		r = runner(t)
		c = &counter{schedule: snakes.Schedule{{Opponent: snakes.Random, Generations: 2}}}
		p = trainee(t, c, 2)
	)

	require.NoError(t, r.Train(context.Background(), p))
	assert.Equal(t, 1, c.evolved)
	assert.Equal(t, 1, c.rated)
	assert.True(t, p.Trained)
	assert.Len(t, p.Fitness, 1)

	_, err := os.Stat(p.Checkpoint(r.Checkpoints))
	assert.NoError(t, err)
}

func TestTrainZeroStage(t *testing.T) {
	var (
		r = runner(t)
		c = &counter{schedule: snakes.Schedule{
			{Opponent: snakes.Self, Generations: 2},
			{Opponent: snakes.Random, Generations: 0},
			{Opponent: snakes.Self, Generations: 3},
		}}
		p = trainee(t, c, 2)
	)

	require.NoError(t, r.Train(context.Background(), p))
	assert.Equal(t, 2, c.evolved)
	assert.Equal(t, 0, c.rated)
	assert.True(t, p.Trained)
}

func TestTrainUnknownOpponent(t *testing.T) {
	var (
		r = runner(t)
		c = &counter{schedule: snakes.Schedule{{Opponent: "no-such-module", Generations: 2}}}
		p = trainee(t, c, 2)
	)

	err := r.Train(context.Background(), p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-module")
	assert.False(t, p.Trained)
}

func TestRun(t *testing.T) {
	r := runner(t)
	r.Save = true

	out, err := r.Run(context.Background(), "straight", "random")
	require.NoError(t, err)
	assert.Equal(t, [2]string{"straight", "random"}, out.Names)
	assert.Len(t, out.Games, snakes.EvaluationGames)
	assert.Len(t, out.Replays, snakes.EvaluationGames)
	for _, path := range out.Replays {
		_, err := os.Stat(path)
		assert.NoError(t, err)
	}
	assert.False(t, out.Failed[0] || out.Failed[1])
}

func TestRunSameName(t *testing.T) {
	var (
		ctx  = context.Background()
		r    = runner(t)
		a, b = "sched-counter:1", "sched-counter:2"
	)

	out, err := r.Run(ctx, a, b)
	require.NoError(t, err)
	assert.Equal(t, [2]string{a, b}, out.Names)

	e := make(Elo)
	e.Update(out)
	assert.Len(t, e, 2)

	pa, err := r.open(ctx, a)
	require.NoError(t, err)
	defer pa.Module.Close()
	pb, err := r.open(ctx, b)
	require.NoError(t, err)
	defer pb.Module.Close()

	assert.NotEqual(t, pa.Checkpoint(r.Checkpoints), pb.Checkpoint(r.Checkpoints))
	assert.True(t, pa.Trained, "checkpoint of %s was overwritten", a)
	assert.True(t, pb.Trained, "checkpoint of %s was overwritten", b)
}

func TestRunSingle(t *testing.T) {
	r := runner(t)

	out, err := r.Run(context.Background(), "straight", "")
	require.NoError(t, err)
	assert.Equal(t, "", out.Names[1])
	assert.Empty(t, out.Replays)
	for _, res := range out.Games {
		assert.Len(t, res.Scores, 1)
	}
}

func TestRunDisqualify(t *testing.T) {
	for i, test := range []struct {
		spec1, spec2 string
		failed       int
	}{
		{"no-such-module", "straight", 0},
		{"straight", "sched-liar", 1},
	} {
		r := runner(t)

		_, err := r.Run(context.Background(), test.spec1, test.spec2)
		if err == nil {
			t.Errorf("[%d] Expected an error in interactive mode", i)
		}

		r.Tournament = true
		out, err := r.Run(context.Background(), test.spec1, test.spec2)
		if err != nil {
			t.Errorf("[%d] Unexpected error in tournament mode: %v", i, err)
			continue
		}
		if !out.Failed[test.failed] || out.Failed[1-test.failed] {
			t.Errorf("[%d] Expected side %d to fail, got %v", i, test.failed, out.Failed)
		}
		if out.Scores[test.failed] != -float64(r.Population) {
			t.Errorf("[%d] Expected a score of %d, got %f", i, -r.Population,
				out.Scores[test.failed])
		}
		if out.Messages[test.failed] == "" {
			t.Errorf("[%d] Expected a message", i)
		}
	}
}

func TestElo(t *testing.T) {
	e := make(Elo)
	e.Update(&game.Outcome{Names: [2]string{"a", "b"}, Scores: [2]float64{10, 5}})
	assert.InDelta(t, Initial+K/2, e["a"], EPS)
	assert.InDelta(t, Initial-K/2, e["b"], EPS)
	assert.Equal(t, []string{"a", "b"}, e.Ranking())

	e.Update(&game.Outcome{Names: [2]string{"a", ""}, Scores: [2]float64{1, 0}})
	assert.Len(t, e, 2)
}

func TestPrintResults(t *testing.T) {
	var (
		buf bytes.Buffer
		out = []*game.Outcome{
			{Names: [2]string{"a", "b/c"}, Scores: [2]float64{10, 5}},
			{Names: [2]string{"b/c", "a"}, Scores: [2]float64{-2, 3}, Messages: [2]string{"Error! broken", ""}},
		}
	)
	PrintResults(&buf, "Round Robin", out, Elo{"a": 1020})

	s := buf.String()
	assert.Contains(t, s, ".TS")
	assert.Contains(t, s, "a/2/0/0/4/1020")
	assert.Contains(t, s, `b\[sl]c`)
	assert.Contains(t, s, "Error! broken")

	buf.Reset()
	PrintResults(&buf, "Empty", nil, nil)
	assert.Contains(t, buf.String(), "No games took place.")
}

func TestSanity(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, Sanity(ctx, "straight", isol.DefaultBudget))
	assert.Error(t, Sanity(ctx, "sched-liar", isol.DefaultBudget))
	assert.Equal(t, []string{"random"},
		sane(ctx, []string{"random", "no-such-module"}, isol.DefaultBudget))
}

func config(t *testing.T) *cmd.Conf {
	return &cmd.Conf{
		Game:    cmd.GameConf{Size: 10, Turns: 5, Population: 2, Foods: 2, Seed: 1},
		Players: cmd.PlayersConf{Tournament: true},
		Budget:  cmd.MakeBudgetConf(isol.DefaultBudget),
		Store:   cmd.StoreConf{Checkpoints: t.TempDir(), Replays: t.TempDir()},
	}
}

func TestRoundRobin(t *testing.T) {
	st := cmd.MakeState()
	rr := MakeRoundRobin([]string{"straight", "random", "no-such-module"})
	rr.Start(st, config(t))
	rr.Shutdown()

	assert.Error(t, st.Context.Err(), "the tournament should request a shutdown")
	outcomes := rr.Outcomes()
	require.Len(t, outcomes, 2)
	assert.NotEqual(t, outcomes[0].Names, outcomes[1].Names)
	assert.Len(t, rr.Ratings(), 2)
}

func TestLeaguePick(t *testing.T) {
	l := MakeLeague([]string{"a", "b", "c"}, 0)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		a, b := l.pick(rng)
		if a == b {
			t.Errorf("[%d] Picked %s twice", i, a)
		}
	}
}

func TestLeague(t *testing.T) {
	st := cmd.MakeState()
	l := MakeLeague([]string{"straight", "random"}, time.Millisecond)
	go l.Start(st, config(t))

	assert.Eventually(t, func() bool {
		return len(l.Ratings()) == 2
	}, 10*time.Second, 10*time.Millisecond)
	st.Kill()
	l.Shutdown()

	r := l.Ratings()
	assert.InDelta(t, 2*Initial, r["straight"]+r["random"], EPS)
}
