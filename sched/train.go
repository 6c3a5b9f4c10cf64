// Training Orchestration
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
	"context"
	"log"

	"go-snakes"
	"go-snakes/game"
	"go-snakes/isol"

	"github.com/pkg/errors"
)

// ErrSave is reported if a trained population could not be written
var ErrSave = errors.New("failed to save training results")

// Train runs the training schedule of P.  Every generation plays a
// single game, after which the population is replaced by its
// offspring.  After the last generation the population is ordered by
// fitness instead, and the result is saved as a checkpoint.
func (r *Runner) Train(ctx context.Context, p *game.Player) error {
	var (
		sched = p.Module.Schedule()
		total = sched.Total()
		count int
	)
	if total > snakes.MaxGenerations {
		total = snakes.MaxGenerations
	}

	for _, st := range sched {
		gens := st.Generations
		if count+gens > total {
			gens = total - count
		}
		if gens == 0 {
			break
		}

		err := r.stage(ctx, p, st.Opponent, gens, count, total)
		if err != nil {
			return err
		}

		count += gens
		if count >= total {
			break
		}
	}

	p.Trained = true
	if err := p.Save(r.Checkpoints); err != nil {
		log.Printf("Failed to save %s: %v", p, err)
		return errors.WithMessage(ErrSave, err.Error())
	}
	return nil
}

// stage trains P against OPPONENT for GENS generations, following
// the COUNT generations that have already been trained.
func (r *Runner) stage(ctx context.Context, p *game.Player, opponent string, gens, count, total int) error {
	players := []*game.Player{p}
	if opponent == snakes.Self {
		log.Printf("Training %s in single-player mode for %d generations", p, gens)
	} else {
		opp, err := r.open(ctx, opponent)
		if err != nil {
			return errors.WithMessagef(err, "failed to create opponent %q in training", opponent)
		}
		defer opp.Module.Close()

		log.Printf("Training %s against %s for %d generations", p, opp, gens)
		players = append(players, opp)
	}

	for g := 1; g <= gens; g++ {
		opt := r.Options
		opt.Seed = r.seed()

		res, err := game.Play(ctx, opt, players...)
		if err != nil {
			return err
		}

		gen := count + g
		snakes.Debug.Printf("Gen %3d/%d: %s", gen, total, res)
		if gen < total {
			err = p.NewGenerationAgents(gen)
		} else {
			_, err = p.EvaluateFitness()
		}
		if err != nil {
			return err
		}

		if r.Database != nil && gen < total {
			r.Database.SaveGeneration(ctx, p.String(), p.Module.Version(),
				gen, p.Fitness[len(p.Fitness)-1])
		}
	}
	return nil
}

// Retrain trains the module SPEC from scratch, replacing any existing
// checkpoint.
func (r *Runner) Retrain(ctx context.Context, spec string) error {
	m, err := isol.Open(ctx, spec, r.Budget)
	if err != nil {
		return err
	}
	defer m.Close()

	if !m.Trainable() {
		return errors.Errorf("%s has no training schedule", m)
	}
	p, err := game.NewPlayer(m, r.Population)
	if err != nil {
		return err
	}
	return r.Train(ctx, p)
}
