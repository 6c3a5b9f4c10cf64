// Isolation of Agent Modules
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

package isol

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"time"

	"go-snakes"
	"go-snakes/agent"

	"github.com/pkg/errors"
)

// Budget bounds the time a module may spend in each kind of call.  A
// zero duration disables the deadline.
type Budget struct {
	Import      time.Duration
	Instantiate time.Duration
	Decide      time.Duration
	Evolve      time.Duration
	Fitness     time.Duration
}

var DefaultBudget = Budget{
	Import:      10 * time.Second,
	Instantiate: 1 * time.Second,
	Decide:      1 * time.Second,
	Evolve:      4 * time.Second,
	Fitness:     4 * time.Second,
}

// ErrTimeout is reported for calls that exceeded their budget
var ErrTimeout = errors.New("time limit exceeded")

// Violation is a breach of the agent contract
type Violation struct {
	Module string
	Call   string
	Err    error
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s: %s: %v", v.Module, v.Call, v.Err)
}

func (v *Violation) Unwrap() error { return v.Err }

// AsViolation extracts a violation from ERR, if there is one
func AsViolation(err error) (*Violation, bool) {
	var v *Violation
	return v, errors.As(err, &v)
}

// Controlled modules hold external resources
type Controlled interface {
	snakes.Module
	Shutdown() error
}

// Shutdown releases the resources of M, if it has any
func Shutdown(m snakes.Module) error {
	snakes.Debug.Println("Shutting down", m)
	if c, ok := m.(Controlled); ok {
		return c.Shutdown()
	}
	return nil
}

type result[T any] struct {
	val T
	err error
}

// bounded runs F on a goroutine and waits at most D for it to finish.
// Panics are turned into errors.  If the deadline passes, the
// goroutine is abandoned and ABANDON is invoked with its eventual
// result.
func bounded[T any](ctx context.Context, d time.Duration, f func(context.Context) (T, error), abandon func(T)) (T, error) {
	var cancel context.CancelFunc
	if d > 0 {
		ctx, cancel = context.WithTimeout(ctx, d)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	ch := make(chan result[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result[T]{err: errors.Errorf("panic: %v", r)}
			}
		}()
		v, err := f(ctx)
		ch <- result[T]{val: v, err: err}
	}()

	select {
	case r := <-ch:
		return r.val, r.err
	case <-ctx.Done():
		if abandon != nil {
			go func() {
				if r := <-ch; r.err == nil {
					abandon(r.val)
				}
			}()
		}
		var zero T
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, ErrTimeout
		}
		return zero, ctx.Err()
	}
}

// Validate checks the declarations of a module
func Validate(m snakes.Module) error {
	switch m.FieldOfVision() {
	case 3, 5, 7, 9:
	default:
		return errors.Errorf("field of vision must be one of 3, 5, 7 or 9, not %d",
			m.FieldOfVision())
	}
	if f := m.Frames(); f < 1 || f > 4 {
		return errors.Errorf("number of frames must be between 1 and 4, not %d", f)
	}

	sched := m.Schedule()
	for _, st := range sched {
		if st.Generations < 0 {
			return errors.Errorf("negative number of generations for %q", st.Opponent)
		}
		if st.Opponent == "" {
			return errors.New("training stage without an opponent")
		}
	}
	if t := sched.Total(); t > snakes.MaxGenerations {
		return errors.Errorf("schedule has %d generations, at most %d are permitted",
			t, snakes.MaxGenerations)
	}
	if len(sched) > 0 {
		if _, ok := m.(snakes.Trainer); !ok {
			return errors.New("module has a schedule but cannot be trained")
		}
		if _, ok := m.(snakes.Snapshotter); !ok {
			return errors.New("module has a schedule but cannot save checkpoints")
		}
	}
	return nil
}

// Sandbox guards every call into a module
type Sandbox struct {
	module snakes.Module
	spec   string
	budget Budget
	kind   reflect.Type
	broken error
}

// Open loads the module specified by SPEC within the import budget
// and validates it.
func Open(ctx context.Context, spec string, budget Budget) (*Sandbox, error) {
	m, err := bounded(ctx, budget.Import, func(ctx context.Context) (snakes.Module, error) {
		return agent.Open(ctx, spec)
	}, func(m snakes.Module) {
		if err := Shutdown(m); err != nil {
			snakes.Debug.Print(err)
		}
	})
	if err != nil {
		return nil, &Violation{Module: spec, Call: "import", Err: err}
	}
	s, err := Wrap(m, budget)
	if err != nil {
		if err := Shutdown(m); err != nil {
			snakes.Debug.Print(err)
		}
		return nil, err
	}
	s.spec = spec
	return s, nil
}

// Wrap validates an already loaded module.  The name of the module
// stands in for the specification it was loaded from.
func Wrap(m snakes.Module, budget Budget) (*Sandbox, error) {
	if err := Validate(m); err != nil {
		return nil, &Violation{Module: m.Name(), Call: "validate", Err: err}
	}
	return &Sandbox{module: m, spec: m.Name(), budget: budget}, nil
}

// Spec identifies the module in checkpoints, results and ratings.
// Different specifications may load modules with the same name.
func (s *Sandbox) Spec() string { return s.spec }

func (s *Sandbox) String() string            { return s.spec }
func (s *Sandbox) Name() string              { return s.module.Name() }
func (s *Sandbox) Version() string           { return s.module.Version() }
func (s *Sandbox) FieldOfVision() int        { return s.module.FieldOfVision() }
func (s *Sandbox) Frames() int               { return s.module.Frames() }
func (s *Sandbox) Schedule() snakes.Schedule { return s.module.Schedule() }
func (s *Sandbox) Module() snakes.Module     { return s.module }
func (s *Sandbox) Percepts() int             { return s.FieldOfVision() * s.FieldOfVision() * s.Frames() }
func (s *Sandbox) Trainable() bool           { return len(s.module.Schedule()) > 0 }

func (s *Sandbox) violation(call string, err error) error {
	return &Violation{Module: s.spec, Call: call, Err: err}
}

// guard wraps a call with the deadline D.  After a timeout the module
// is regarded as broken and is not called again.
func guard[T any](s *Sandbox, call string, d time.Duration, f func() (T, error)) (T, error) {
	var zero T
	if s.broken != nil {
		return zero, s.violation(call, s.broken)
	}

	v, err := bounded(context.Background(), d, func(context.Context) (T, error) {
		return f()
	}, nil)
	if errors.Is(err, ErrTimeout) {
		s.broken = err
		if err := Shutdown(s.module); err != nil {
			snakes.Debug.Print(err)
		}
	}
	if err != nil {
		return zero, s.violation(call, err)
	}
	return v, nil
}

// New instantiates an agent with the instantiation budget
func (s *Sandbox) New() (snakes.Agent, error) {
	a, err := guard(s, "instantiate", s.budget.Instantiate, func() (snakes.Agent, error) {
		return s.module.New(s.Percepts(), snakes.Actions)
	})
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, s.violation("instantiate", errors.New("no agent was returned"))
	}
	if s.kind == nil {
		s.kind = reflect.TypeOf(a)
	}
	return a, nil
}

// Decide asks A for an action with the decision budget
func (s *Sandbox) Decide(a snakes.Agent, p snakes.Percepts) (snakes.Action, error) {
	act, err := guard(s, "decide", s.budget.Decide, func() (snakes.Action, error) {
		return a.Decide(p)
	})
	if err != nil {
		return 0, err
	}
	if !act.Valid() {
		return 0, s.violation("decide", errors.Errorf("invalid action %d", int(act)))
	}
	return act, nil
}

func (s *Sandbox) trainer(call string) (snakes.Trainer, error) {
	t, ok := s.module.(snakes.Trainer)
	if !ok {
		return nil, s.violation(call, errors.New("module cannot be trained"))
	}
	return t, nil
}

type generation struct {
	agents  []snakes.Agent
	fitness float64
}

// Evolve requests the next generation and checks that it can replace
// the current one.
func (s *Sandbox) Evolve(old []snakes.Individual) ([]snakes.Agent, float64, error) {
	t, err := s.trainer("evolve")
	if err != nil {
		return nil, 0, err
	}
	gen, err := guard(s, "evolve", s.budget.Evolve, func() (generation, error) {
		agents, fitness, err := t.Evolve(old)
		return generation{agents, fitness}, err
	})
	if err != nil {
		return nil, 0, err
	}

	if len(gen.agents) != len(old) {
		return nil, 0, s.violation("evolve", errors.Errorf("expected %d agents, got %d",
			len(old), len(gen.agents)))
	}
	for i, a := range gen.agents {
		if a == nil {
			return nil, 0, s.violation("evolve", errors.Errorf("agent %d is missing", i))
		}
		if s.kind != nil && reflect.TypeOf(a) != s.kind {
			return nil, 0, s.violation("evolve", errors.Errorf("agent %d has type %T, not %s",
				i, a, s.kind))
		}
	}
	if math.IsNaN(gen.fitness) {
		return nil, 0, s.violation("evolve", errors.New("average fitness is not a number"))
	}
	return gen.agents, gen.fitness, nil
}

// Fitness requests a fitness value for every individual of POP
func (s *Sandbox) Fitness(pop []snakes.Individual) ([]float64, error) {
	t, err := s.trainer("fitness")
	if err != nil {
		return nil, err
	}
	fitness, err := guard(s, "fitness", s.budget.Fitness, func() ([]float64, error) {
		return t.Fitness(pop)
	})
	if err != nil {
		return nil, err
	}
	if len(fitness) != len(pop) {
		return nil, s.violation("fitness", errors.Errorf("expected %d values, got %d",
			len(pop), len(fitness)))
	}
	return fitness, nil
}

// Snapshot serialises A, if the module supports it
func (s *Sandbox) Snapshot(a snakes.Agent) ([]byte, error) {
	sn, ok := s.module.(snakes.Snapshotter)
	if !ok {
		return nil, s.violation("snapshot", errors.New("module cannot save agents"))
	}
	return guard(s, "snapshot", s.budget.Instantiate, func() ([]byte, error) {
		return sn.Snapshot(a)
	})
}

// Restore reverses Snapshot
func (s *Sandbox) Restore(data []byte) (snakes.Agent, error) {
	sn, ok := s.module.(snakes.Snapshotter)
	if !ok {
		return nil, s.violation("restore", errors.New("module cannot restore agents"))
	}
	a, err := guard(s, "restore", s.budget.Instantiate, func() (snakes.Agent, error) {
		return sn.Restore(data)
	})
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, s.violation("restore", errors.New("no agent was returned"))
	}
	if s.kind == nil {
		s.kind = reflect.TypeOf(a)
	}
	return a, nil
}

// Close releases the module
func (s *Sandbox) Close() error {
	return Shutdown(s.module)
}
