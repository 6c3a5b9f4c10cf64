// Remote Modules
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

package proto

import (
	"encoding/base64"
	"fmt"
	"strconv"

	"go-snakes"

	"github.com/pkg/errors"
)

// Remote is a module on the other end of a connection
type Remote struct {
	conn     *Conn
	name     string
	version  string
	fov      int
	frames   int
	schedule snakes.Schedule
}

// handle references an agent managed by the other end
type handle struct {
	remote *Remote
	id     uint64
}

func (h *handle) Decide(p snakes.Percepts) (snakes.Action, error) {
	msg, err := h.remote.conn.Request("decide", h.id, p)
	if err != nil {
		return 0, err
	}
	if msg.Cmd != "action" {
		return 0, errors.Errorf("expected an action, got %q", msg.Cmd)
	}

	var act int
	if err := parse(msg.Args, &act); err != nil {
		return 0, errors.Errorf("action must be an integer, got %q", msg.Args)
	}
	return snakes.Action(act), nil
}

// Dial greets the other end and requests a description of the module
func Dial(conn *Conn, version string) (*Remote, error) {
	msg, err := conn.Request("hello", fmt.Sprintf("snakes/%d.%d.%d",
		majorVersion, minorVersion, patchVersion))
	if err != nil {
		return nil, err
	}
	if msg.Cmd != "module" {
		return nil, errors.Errorf("expected a module description, got %q", msg.Cmd)
	}

	var (
		r    = &Remote{conn: conn, version: version}
		rest []string
	)
	if err := parse(msg.Args, &r.name, &r.fov, &r.frames, &rest); err != nil {
		return nil, errors.Wrapf(err, "invalid module description %q", msg.Args)
	}
	var src string
	switch len(rest) {
	case 0:
	case 1:
		src = unescape.ReplaceAllStringFunc(rest[0], descape)
	default:
		return nil, errors.Errorf("invalid module description %q", msg.Args)
	}
	r.schedule, err = snakes.ParseSchedule(src)
	if err != nil {
		return nil, err
	}
	conn.Name = r.name
	return r, nil
}

func (r *Remote) String() string            { return r.name }
func (r *Remote) Name() string              { return r.name }
func (r *Remote) Version() string           { return r.version }
func (r *Remote) FieldOfVision() int        { return r.fov }
func (r *Remote) Frames() int               { return r.frames }
func (r *Remote) Schedule() snakes.Schedule { return r.schedule }

func (r *Remote) agent(arg string) (snakes.Agent, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return nil, errors.Errorf("invalid agent handle %q", arg)
	}
	return &handle{remote: r, id: id}, nil
}

func (r *Remote) New(percepts int, actions []snakes.Action) (snakes.Agent, error) {
	msg, err := r.conn.Request("new", percepts, len(actions))
	if err != nil {
		return nil, err
	}
	if msg.Cmd != "agent" {
		return nil, errors.Errorf("expected an agent, got %q", msg.Cmd)
	}
	return r.agent(msg.Args)
}

func (r *Remote) handles(pop []snakes.Individual) ([]string, error) {
	args := make([]string, len(pop))
	for i, ind := range pop {
		h, ok := ind.Agent.(*handle)
		if !ok || h.remote != r {
			return nil, errors.Errorf("agent %d does not belong to %s", i, r)
		}
		args[i] = encodeSizes(h.id, ind.Sizes)
	}
	return args, nil
}

func (r *Remote) Evolve(old []snakes.Individual) ([]snakes.Agent, float64, error) {
	args, err := r.handles(old)
	if err != nil {
		return nil, 0, err
	}
	msg, err := r.conn.Request("evolve", args)
	if err != nil {
		return nil, 0, err
	}
	if msg.Cmd != "population" {
		return nil, 0, errors.Errorf("expected a population, got %q", msg.Cmd)
	}

	var (
		fitness float64
		rest    []string
	)
	if err := parse(msg.Args, &fitness, &rest); err != nil {
		return nil, 0, errors.Wrap(err, "fitness must be a number")
	}
	next := make([]snakes.Agent, 0, len(rest))
	for _, arg := range rest {
		a, err := r.agent(arg)
		if err != nil {
			return nil, 0, err
		}
		next = append(next, a)
	}
	return next, fitness, nil
}

func (r *Remote) Fitness(pop []snakes.Individual) ([]float64, error) {
	args, err := r.handles(pop)
	if err != nil {
		return nil, err
	}
	msg, err := r.conn.Request("fitness", args)
	if err != nil {
		return nil, err
	}
	if msg.Cmd != "fitness" {
		return nil, errors.Errorf("expected fitness values, got %q", msg.Cmd)
	}

	var (
		rest    []string
		fitness []float64
	)
	if err := parse(msg.Args, &rest); err != nil {
		return nil, err
	}
	for _, arg := range rest {
		f, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid fitness %q", arg)
		}
		fitness = append(fitness, f)
	}
	return fitness, nil
}

func (r *Remote) Snapshot(a snakes.Agent) ([]byte, error) {
	h, ok := a.(*handle)
	if !ok || h.remote != r {
		return nil, errors.Errorf("agent does not belong to %s", r)
	}
	msg, err := r.conn.Request("snapshot", h.id)
	if err != nil {
		return nil, err
	}
	var blob string
	if msg.Cmd != "blob" || parse(msg.Args, &blob) != nil {
		return nil, errors.Errorf("expected a blob, got %q", msg)
	}
	return base64.StdEncoding.DecodeString(blob)
}

func (r *Remote) Restore(data []byte) (snakes.Agent, error) {
	msg, err := r.conn.Request("restore", base64.StdEncoding.EncodeToString(data))
	if err != nil {
		return nil, err
	}
	if msg.Cmd != "agent" {
		return nil, errors.Errorf("expected an agent, got %q", msg.Cmd)
	}
	return r.agent(msg.Args)
}

// Close ends the session with the other end
func (r *Remote) Close() error {
	return r.conn.Close()
}

var (
	_ snakes.Module      = &Remote{}
	_ snakes.Trainer     = &Remote{}
	_ snakes.Snapshotter = &Remote{}
)
