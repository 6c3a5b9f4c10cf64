// Reference Agents
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
	"strconv"

	"go-snakes"
	"go-snakes/agent"

	"github.com/pkg/errors"
)

// module provides agents that do not learn
type module struct {
	name    string
	version string
	fov     int
	make    func() snakes.Agent
}

func (m *module) String() string            { return m.name }
func (m *module) Name() string              { return m.name }
func (m *module) Version() string           { return m.version }
func (m *module) FieldOfVision() int        { return m.fov }
func (m *module) Frames() int               { return 1 }
func (m *module) Schedule() snakes.Schedule { return nil }

func (m *module) New(percepts int, actions []snakes.Action) (snakes.Agent, error) {
	if len(actions) != len(snakes.Actions) {
		return nil, errors.Errorf("unexpected actions %v", actions)
	}
	return m.make(), nil
}

// MakeRandom returns a module of agents that ignore their percepts
func MakeRandom(seed int64) snakes.Module {
	src := newSource(seed)
	return &module{
		name:    "random",
		version: "1",
		fov:     3,
		make:    func() snakes.Agent { return &random{rng: src.next()} },
	}
}

// MakeStraight returns a module of agents that never turn
func MakeStraight() snakes.Module {
	return &module{
		name:    "straight",
		version: "1",
		fov:     3,
		make:    func() snakes.Agent { return straight{} },
	}
}

// MakeGreedy returns a module of agents that look for food up to
// half of FOV steps ahead
func MakeGreedy(fov int) snakes.Module {
	return &module{
		name:    "greedy",
		version: "1",
		fov:     fov,
		make:    func() snakes.Agent { return &greedy{depth: fov / 2} },
	}
}

// intArg parses an optional numerical argument
func intArg(args string, def int) (int, error) {
	if args == "" {
		return def, nil
	}
	n, err := strconv.Atoi(args)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid argument %q", args)
	}
	return n, nil
}

func init() {
	agent.Register("random", func(_ context.Context, args string) (snakes.Module, error) {
		seed, err := intArg(args, 0)
		if err != nil {
			return nil, err
		}
		return MakeRandom(int64(seed)), nil
	})
	agent.Register("straight", func(context.Context, string) (snakes.Module, error) {
		return MakeStraight(), nil
	})
	agent.Register("greedy", func(_ context.Context, args string) (snakes.Module, error) {
		fov, err := intArg(args, 5)
		if err != nil {
			return nil, err
		}
		return MakeGreedy(fov), nil
	})
	agent.Register("perceptron", func(_ context.Context, args string) (snakes.Module, error) {
		sched := DefaultSchedule
		if args != "" {
			var err error
			sched, err = snakes.ParseSchedule(args)
			if err != nil {
				return nil, err
			}
		}
		return MakePerceptron(sched, 0), nil
	})
}
