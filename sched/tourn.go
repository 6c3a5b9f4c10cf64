// Tournament Runner
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
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"go-snakes"
	_ "go-snakes/bot"
	"go-snakes/cmd"
	"go-snakes/game"
	"go-snakes/isol"
	"go-snakes/store"

	"github.com/pkg/errors"
)

// Runner evaluates players against one another, training them
// beforehand if necessary.
type Runner struct {
	Options     game.Options
	Population  int
	Save        bool
	Tournament  bool
	Budget      isol.Budget
	Checkpoints string
	Replays     string
	Visualiser  snakes.Visualiser
	Database    cmd.Database

	rng *rand.Rand
}

// MakeRunner creates a runner from the configuration
func MakeRunner(st *cmd.State, conf *cmd.Conf) *Runner {
	opt := conf.Options()
	r := &Runner{
		Options:     opt,
		Population:  conf.Game.Population,
		Save:        conf.Game.Save,
		Tournament:  conf.Players.Tournament,
		Budget:      conf.Limits(),
		Checkpoints: conf.Store.Checkpoints,
		Replays:     conf.Store.Replays,
		rng:         rand.New(rand.NewSource(opt.Seed)),
	}
	if st != nil {
		r.Visualiser = st.Visualiser()
		r.Database = st.Database
	}
	return r
}

// seed returns the seed of the next game
func (r *Runner) seed() int64 {
	if r.rng == nil {
		r.rng = rand.New(rand.NewSource(r.Options.Seed))
	}
	return r.rng.Int63()
}

// open loads a module and restores its population from a checkpoint
// if there is a current one.
func (r *Runner) open(ctx context.Context, spec string) (*game.Player, error) {
	m, err := isol.Open(ctx, spec, r.Budget)
	if err != nil {
		return nil, err
	}
	p, err := game.NewPlayer(m, r.Population)
	if err != nil {
		m.Close()
		return nil, err
	}
	if m.Trainable() {
		ok, err := p.Load(r.Checkpoints)
		if err != nil {
			log.Printf("Failed to load checkpoint of %s: %v", p, err)
		} else if ok {
			snakes.Debug.Printf("Loaded trained population of %s", p)
		}
	}
	return p, nil
}

// message turns an error into a note for the results
func message(err error) string {
	if v, ok := isol.AsViolation(err); ok {
		return fmt.Sprintf("Error! %s failed in %s: %v", v.Module, v.Call, v.Err)
	}
	return "Error! " + err.Error()
}

// prepare opens and, if necessary, trains the player SPEC
func (r *Runner) prepare(ctx context.Context, spec string) (*game.Player, error) {
	p, err := r.open(ctx, spec)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create a player with the provided module")
	}
	if !p.Trained {
		if err := r.Train(ctx, p); err != nil {
			p.Module.Close()
			return nil, err
		}
	}
	return p, nil
}

// replay saves the recorded frames of RES and returns the path
func (r *Runner) replay(res *game.Result, n int) (string, error) {
	name := fmt.Sprintf("%s-%s-%d", time.Now().Format("Jan-02-2006-15-04-05"),
		strings.Join(res.Names, "-vs-"), n)
	path := store.Path(r.Replays, name, ".parquet")
	return path, store.SaveReplay(path, res.Replay())
}

// Run evaluates the player SPEC1 against SPEC2.  If SPEC2 is empty,
// SPEC1 is evaluated on its own.  In tournament mode contract
// violations disqualify the offending side and are recorded in the
// outcome, otherwise they are returned as errors.
func (r *Runner) Run(ctx context.Context, spec1, spec2 string) (*game.Outcome, error) {
	var (
		out     = &game.Outcome{}
		players []*game.Player
		sides   []int
	)
	for i, spec := range [2]string{spec1, spec2} {
		if spec == "" {
			continue
		}
		out.Names[i] = spec

		p, err := r.prepare(ctx, spec)
		if err != nil {
			if !r.Tournament || ctx.Err() != nil {
				return nil, err
			}
			log.Printf("Disqualified %s: %v", spec, err)
			out.Disqualify(i, r.Population, message(err))
			continue
		}
		defer p.Module.Close()

		out.Names[i] = p.String()
		players = append(players, p)
		sides = append(sides, i)
	}

	if len(players) == 0 {
		return out, nil
	}
	if len(players) == 1 && out.Names[1] != "" {
		log.Printf("Evaluating %s on its own", players[0])
	}

	var names []string
	for _, p := range players {
		names = append(names, p.String())
	}
	title := strings.Join(names, " vs. ")

	for n := 1; n <= snakes.EvaluationGames; n++ {
		opt := r.Options
		opt.Seed = r.seed()
		opt.Record = r.Save
		opt.Visualiser = r.Visualiser
		opt.Title = fmt.Sprintf("Game %d: %s", n, title)

		res, err := game.Play(ctx, opt, players...)
		if err != nil {
			var f *game.Fault
			if !r.Tournament || !errors.As(err, &f) {
				return nil, err
			}
			i := sides[f.Player]
			log.Printf("Disqualified %s: %v", players[f.Player], f.Err)
			out.Disqualify(i, r.Population, message(f.Err))
			break
		}
		log.Printf("Game %d: %s", n, res)
		out.Record(res, sides...)

		if r.Save {
			path, err := r.replay(res, n)
			if err != nil {
				log.Printf("Failed to save game %d: %v", n, err)
			} else {
				out.Replays = append(out.Replays, path)
			}
		}
	}

	if r.Database != nil {
		r.Database.SaveOutcome(ctx, out)
	}
	return out, nil
}
