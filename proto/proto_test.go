// Protocol Tests
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
	"fmt"
	"net"
	"testing"

	"go-snakes"
)

func TestParse(t *testing.T) {
	for i, test := range []struct {
		line string
		msg  *Message
	}{
		{"hello", &Message{Cmd: "hello"}},
		{"2 decide 1 1 3", &Message{Id: 2, Cmd: "decide", Args: "1 1 3"}},
		{"3@2 action -1", &Message{Id: 3, Ref: 2, Cmd: "action", Args: "-1"}},
		{"  4@6   goodbye  ", &Message{Id: 4, Ref: 6, Cmd: "goodbye"}},
		{"", nil},
		{"!!", nil},
	} {
		msg, err := Parse(test.line)
		if test.msg == nil {
			if err == nil {
				t.Errorf("[%d] Expected an error for %q", i, test.line)
			}
			continue
		}
		if err != nil {
			t.Errorf("[%d] Unexpected error: %s", i, err)
			continue
		}
		if *msg != *test.msg {
			t.Errorf("[%d] Expected %v, got %v", i, test.msg, msg)
		}
	}
}

func TestFormatParse(t *testing.T) {
	var (
		name   string
		n      int
		f      float64
		rest   []string
		encode = format("a \"quoted\" name", 3, 0.25, []string{"x", "y"})
	)
	if err := parse(encode, &name, &n, &f, &rest); err != nil {
		t.Fatal(err)
	}
	if name != `a "quoted" name` {
		t.Errorf("Unexpected name %q", name)
	}
	if n != 3 || f != 0.25 {
		t.Errorf("Unexpected numbers %d %g", n, f)
	}
	if len(rest) != 2 || rest[0] != "x" || rest[1] != "y" {
		t.Errorf("Unexpected rest %v", rest)
	}

	if err := parse("1 2", &n); err != errArgumentMismatch {
		t.Errorf("Expected a mismatch, got %v", err)
	}
	if err := parse("1", &n, &f); err != errArgumentMismatch {
		t.Errorf("Expected a mismatch, got %v", err)
	}
}

func TestPercepts(t *testing.T) {
	p := snakes.Percepts{snakes.MakeWindow(3), snakes.MakeWindow(3)}
	p[0].Set(0, 1, snakes.Edible)
	p[1].Set(2, 2, snakes.Opponent)

	q, err := decodePercepts(split(format(p)))
	if err != nil {
		t.Fatal(err)
	}
	if len(q) != 2 {
		t.Fatalf("Expected two frames, got %d", len(q))
	}
	for i := range p {
		for j := range p[i].Cells {
			if p[i].Cells[j] != q[i].Cells[j] {
				t.Errorf("[%d] Mismatch in cell %d", i, j)
			}
		}
	}

	if _, err := decodePercepts([]string{"1", "3", "0"}); err == nil {
		t.Error("Expected an error for truncated percepts")
	}
}

func TestSizes(t *testing.T) {
	h, sizes, err := decodeSizes(encodeSizes(7, []int{2, 3, 3}))
	if err != nil {
		t.Fatal(err)
	}
	if h != 7 || len(sizes) != 3 || sizes[1] != 3 {
		t.Errorf("Unexpected decoding %d %v", h, sizes)
	}
	h, sizes, err = decodeSizes(encodeSizes(1, nil))
	if err != nil || h != 1 || len(sizes) != 0 {
		t.Errorf("Unexpected decoding %d %v (%v)", h, sizes, err)
	}
}

// turner always turns right and remembers how often it was asked
type turner struct{ calls int }

func (a *turner) Decide(snakes.Percepts) (snakes.Action, error) {
	a.calls++
	return snakes.Right, nil
}

// echo is a trainable module whose fitness is the final size
type echo struct{}

func (echo) String() string     { return "echo" }
func (echo) Name() string       { return "echo" }
func (echo) Version() string    { return "1" }
func (echo) FieldOfVision() int { return 3 }
func (echo) Frames() int        { return 2 }

func (echo) Schedule() snakes.Schedule {
	return snakes.Schedule{{Opponent: "exec:./a b", Generations: 2}}
}

func (echo) New(int, []snakes.Action) (snakes.Agent, error) {
	return &turner{}, nil
}

func (echo) Fitness(pop []snakes.Individual) ([]float64, error) {
	fit := make([]float64, len(pop))
	for i, ind := range pop {
		if n := len(ind.Sizes); n > 0 {
			fit[i] = float64(ind.Sizes[n-1])
		}
	}
	return fit, nil
}

func (e echo) Evolve(old []snakes.Individual) ([]snakes.Agent, float64, error) {
	fit, _ := e.Fitness(old)
	next := make([]snakes.Agent, len(old))
	var sum float64
	for i := range old {
		next[i] = old[i].Agent
		sum += fit[i]
	}
	return next, sum / float64(len(old)), nil
}

func (echo) Snapshot(a snakes.Agent) ([]byte, error) {
	return []byte{byte(a.(*turner).calls)}, nil
}

func (echo) Restore(data []byte) (snakes.Agent, error) {
	return &turner{calls: int(data[0])}, nil
}

func TestRoundTrip(t *testing.T) {
	engine, agent := net.Pipe()
	errs := make(chan error, 1)
	go func() { errs <- Serve(context.Background(), agent, echo{}) }()

	r, err := Dial(MakeConn("echo", engine), "v")
	if err != nil {
		t.Fatal(err)
	}
	if r.Name() != "echo" || r.FieldOfVision() != 3 || r.Frames() != 2 {
		t.Errorf("Unexpected description %s %d %d", r.Name(), r.FieldOfVision(), r.Frames())
	}
	if s := r.Schedule(); len(s) != 1 || s[0].Opponent != "exec:./a b" || s[0].Generations != 2 {
		t.Errorf("Unexpected schedule %v", s)
	}

	a, err := r.New(18, snakes.Actions)
	if err != nil {
		t.Fatal(err)
	}
	p := snakes.Percepts{snakes.MakeWindow(3), snakes.MakeWindow(3)}
	act, err := a.Decide(p)
	if err != nil {
		t.Fatal(err)
	}
	if act != snakes.Right {
		t.Errorf("Expected right, got %s", act)
	}

	b, err := r.New(18, snakes.Actions)
	if err != nil {
		t.Fatal(err)
	}
	pop := []snakes.Individual{
		{Agent: a, Sizes: []int{2, 3}},
		{Agent: b, Sizes: []int{2, 5}},
	}
	fit, err := r.Fitness(pop)
	if err != nil {
		t.Fatal(err)
	}
	if len(fit) != 2 || fit[0] != 3 || fit[1] != 5 {
		t.Errorf("Unexpected fitness %v", fit)
	}
	next, avg, err := r.Evolve(pop)
	if err != nil {
		t.Fatal(err)
	}
	if len(next) != 2 || avg != 4 {
		t.Errorf("Unexpected evolution %d %g", len(next), avg)
	}

	data, err := r.Snapshot(next[0])
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 1 || data[0] != 1 {
		t.Errorf("Unexpected snapshot %v", data)
	}
	c, err := r.Restore(data)
	if err != nil {
		t.Fatal(err)
	}
	if act, err := c.Decide(p); err != nil || act != snakes.Right {
		t.Errorf("Restored agent misbehaved: %s %v", act, err)
	}

	// Handles of the previous generation are invalidated
	if _, err := a.Decide(p); err == nil {
		t.Error("Expected an error for a stale handle")
	} else if _, ok := err.(RemoteError); !ok {
		t.Errorf("Expected a remote error, got %T", err)
	}

	if err := r.Close(); err != nil {
		t.Error(err)
	}
	if err := <-errs; err != nil {
		t.Error(err)
	}
}

func TestListen(t *testing.T) {
	l, err := Listen(context.Background(), echo{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if l.Port() == 0 {
		t.Fatal("No port was assigned")
	}
	done := make(chan struct{})
	go func() {
		l.Start()
		close(done)
	}()

	c, err := net.Dial("tcp", fmt.Sprintf("localhost:%d", l.Port()))
	if err != nil {
		t.Fatal(err)
	}
	r, err := Dial(MakeConn("echo", c), "v")
	if err != nil {
		t.Fatal(err)
	}
	if r.Name() != "echo" {
		t.Errorf("Unexpected name %q", r.Name())
	}
	c.Close()

	l.Shutdown()
	<-done
}
