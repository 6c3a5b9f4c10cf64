// Serving Modules
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
	"context"
	"encoding/base64"
	"io"

	"go-snakes"

	"github.com/pkg/errors"
)

// server exposes a module over a connection
type server struct {
	conn   *Conn
	module snakes.Module
	agents map[uint64]snakes.Agent
	next   uint64
}

func (s *server) register(a snakes.Agent) uint64 {
	s.next++
	s.agents[s.next] = a
	return s.next
}

func (s *server) population(args []string) ([]snakes.Individual, error) {
	pop := make([]snakes.Individual, 0, len(args))
	for _, arg := range args {
		h, sizes, err := decodeSizes(arg)
		if err != nil {
			return nil, err
		}
		a, ok := s.agents[h]
		if !ok {
			return nil, errors.Errorf("unknown agent %d", h)
		}
		pop = append(pop, snakes.Individual{Agent: a, Sizes: sizes})
	}
	return pop, nil
}

// interpret evaluates a single request and reports if the session
// should end
func (s *server) interpret(msg *Message) (bool, error) {
	var (
		id  = msg.Id
		err error
	)

	switch msg.Cmd {
	case "hello":
		_, err = s.conn.Respond(id, "module",
			s.module.Name(),
			s.module.FieldOfVision(),
			s.module.Frames(),
			s.module.Schedule().String())
	case "new":
		var n, k int
		if err = parse(msg.Args, &n, &k); err != nil {
			return false, err
		}
		actions := snakes.Actions
		if k != len(actions) {
			s.conn.Error(id, "Unsupported number of actions")
			return false, nil
		}
		var a snakes.Agent
		a, err = s.module.New(n, actions)
		if err != nil {
			s.conn.Error(id, err.Error())
			return false, nil
		}
		_, err = s.conn.Respond(id, "agent", s.register(a))
	case "decide":
		var (
			h    uint64
			rest []string
		)
		if err = parse(msg.Args, &h, &rest); err != nil {
			return false, err
		}
		a, ok := s.agents[h]
		if !ok {
			s.conn.Error(id, "Unknown agent")
			return false, nil
		}
		var p snakes.Percepts
		if p, err = decodePercepts(rest); err != nil {
			return false, err
		}
		var act snakes.Action
		act, err = a.Decide(p)
		if err != nil {
			s.conn.Error(id, err.Error())
			return false, nil
		}
		_, err = s.conn.Respond(id, "action", act)
	case "evolve", "fitness":
		t, ok := s.module.(snakes.Trainer)
		if !ok {
			s.conn.Error(id, "Module cannot be trained")
			return false, nil
		}
		var (
			rest []string
			pop  []snakes.Individual
		)
		if err = parse(msg.Args, &rest); err != nil {
			return false, err
		}
		if pop, err = s.population(rest); err != nil {
			s.conn.Error(id, err.Error())
			return false, nil
		}

		if msg.Cmd == "fitness" {
			var fitness []float64
			if fitness, err = t.Fitness(pop); err != nil {
				s.conn.Error(id, err.Error())
				return false, nil
			}
			_, err = s.conn.Respond(id, "fitness", fitness)
			break
		}

		var (
			next []snakes.Agent
			avg  float64
		)
		if next, avg, err = t.Evolve(pop); err != nil {
			s.conn.Error(id, err.Error())
			return false, nil
		}
		// The old generation is no longer needed
		s.agents = make(map[uint64]snakes.Agent)
		handles := make([]string, len(next))
		for i, a := range next {
			handles[i] = format(s.register(a))
		}
		_, err = s.conn.Respond(id, "population", avg, handles)
	case "snapshot":
		sn, ok := s.module.(snakes.Snapshotter)
		if !ok {
			s.conn.Error(id, "Module cannot be saved")
			return false, nil
		}
		var h uint64
		if err = parse(msg.Args, &h); err != nil {
			return false, err
		}
		a, ok := s.agents[h]
		if !ok {
			s.conn.Error(id, "Unknown agent")
			return false, nil
		}
		var data []byte
		if data, err = sn.Snapshot(a); err != nil {
			s.conn.Error(id, err.Error())
			return false, nil
		}
		_, err = s.conn.Respond(id, "blob", base64.StdEncoding.EncodeToString(data))
	case "restore":
		sn, ok := s.module.(snakes.Snapshotter)
		if !ok {
			s.conn.Error(id, "Module cannot be restored")
			return false, nil
		}
		var blob string
		if err = parse(msg.Args, &blob); err != nil {
			return false, err
		}
		var data []byte
		if data, err = base64.StdEncoding.DecodeString(blob); err != nil {
			return false, err
		}
		var a snakes.Agent
		if a, err = sn.Restore(data); err != nil {
			s.conn.Error(id, err.Error())
			return false, nil
		}
		_, err = s.conn.Respond(id, "agent", s.register(a))
	case "ok", "error":
		// We do not expect the engine to confirm or reject anything,
		// so we can ignore these response messages.
	case "goodbye":
		return true, nil
	default:
		snakes.Debug.Printf("Invalid command %q", msg)
		s.conn.Error(id, "Unknown command")
	}

	return false, err
}

// Serve answers requests for MODULE on RWC until the other end says
// goodbye, the connection is closed or the context is cancelled.
func Serve(ctx context.Context, rwc io.ReadWriteCloser, module snakes.Module) error {
	s := &server{
		conn:   MakeConn(module.Name(), rwc),
		module: module,
		agents: make(map[uint64]snakes.Agent),
	}
	defer rwc.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			rwc.Close()
		case <-done:
		}
	}()

	for {
		msg, err := s.conn.Next()
		if err == io.EOF {
			return nil
		} else if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		done, err := s.interpret(msg)
		if err != nil {
			s.conn.Error(msg.Id, err.Error())
			snakes.Debug.Print(err)
		}
		if done {
			return nil
		}
	}
}
