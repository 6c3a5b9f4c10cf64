// Percept Tests
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

package snakes

import (
	"testing"
)

func TestTurn(t *testing.T) {
	for i, test := range []struct {
		from Rotation
		act  Action
		to   Rotation
	}{
		{0, Forward, 0},
		{0, Left, 270},
		{0, Right, 90},
		{90, Right, 180},
		{180, Right, 270},
		{270, Right, 0},
		{270, Left, 180},
		{90, Left, 0},
	} {
		if got := test.from.Turn(test.act); got != test.to {
			t.Errorf("[%d] Turning %s from %d gave %d, expected %d",
				i, test.act, test.from, got, test.to)
		}
	}
}

func TestRotate(t *testing.T) {
	centre := Point{2, 2}
	for i, rot := range []Rotation{0, 90, 180, 270} {
		w := MakeWindow(5)
		ahead := centre.Add(rot.Forward())
		left := centre.Add(rot.Turn(Left).Forward())
		w.Set(ahead.Row, ahead.Col, Edible)
		w.Set(left.Row, left.Col, Opponent)

		r := w.Rotate(rot)
		if v := r.At(1, 2); v != Edible {
			t.Errorf("[%d] Expected food ahead, got\n%s", i, r)
		}
		if v := r.At(2, 1); v != Opponent {
			t.Errorf("[%d] Expected opponent to the left, got\n%s", i, r)
		}
	}
}

func TestTranslate(t *testing.T) {
	w := MakeWindow(3)
	w.Set(0, 0, Friend)
	w.Set(2, 2, Edible)

	m := w.Translate(Point{1, 1})
	if m.At(1, 1) != Friend {
		t.Errorf("Expected the content to move, got\n%s", m)
	}
	for r := 0; r < 3; r++ {
		if m.At(r, 0) != Nothing || m.At(0, r) != Nothing {
			t.Errorf("Expected the vacated border to be empty, got\n%s", m)
		}
	}
	if n := w.Translate(Point{-1, 0}); n.At(1, 2) != Edible || n.At(0, 0) != Nothing {
		t.Errorf("Unexpected translation\n%s", n)
	}
	if w.At(0, 0) != Friend {
		t.Error("Translation modified the original window")
	}
}

func TestCapture(t *testing.T) {
	g := MakeGrid(10)
	food := MakeFood()
	g.Occupy(Point{0, 0}, SideA, 1)
	g.Occupy(Point{9, 9}, SideB, 1)
	food.Add(Point{1, 0})

	w := Capture(g, food, Point{0, 0}, SideB, 3)
	for _, test := range []struct {
		r, c int
		v    int8
	}{
		{1, 1, Opponent},
		{0, 0, Friend},
		{2, 1, Edible},
		{0, 1, Nothing},
	} {
		if v := w.At(test.r, test.c); v != test.v {
			t.Errorf("Expected %d at (%d,%d), got %d", test.v, test.r, test.c, v)
		}
	}
}

func TestSpawn(t *testing.T) {
	for i, rot := range []Rotation{0, 90, 180, 270} {
		g := MakeGrid(10)
		a := MakeAvatar(nil, SideB, 10, 1, 3)
		a.Spawn(g, Point{5, 0}, rot)

		if a.Head != (Point{7, 2}) {
			t.Errorf("[%d] Unexpected head %s", i, a.Head)
		}
		if v := g.At(a.Head); v != -StartingLength {
			t.Errorf("[%d] Expected head value %d, got %d", i, -StartingLength, v)
		}
		tail := a.Head.Add(rot.Forward().Neg())
		if v := g.At(tail); v != -1 {
			t.Errorf("[%d] Expected the tail behind the head, got %d", i, v)
		}
		if len(a.Body) != StartingLength {
			t.Errorf("[%d] Unexpected body %v", i, a.Body)
		}
	}
}

func TestMove(t *testing.T) {
	g := MakeGrid(10)
	food := MakeFood()
	a := MakeAvatar(nil, SideA, 10, 1, 3)
	a.Spawn(g, Point{0, 0}, 0)
	// Head (2,2), tail (3,2)

	step, ate := a.Move(g, food, Right)
	if ate || step != (Point{0, 1}) || a.Rotation != 90 {
		t.Fatalf("Unexpected move %s %v %d", step, ate, a.Rotation)
	}
	if a.Head != (Point{2, 3}) {
		t.Fatalf("Unexpected head %s", a.Head)
	}
	if !g.Empty(Point{3, 2}) || g.At(Point{2, 2}) != 1 {
		t.Fatalf("Body did not age\n%s", g)
	}
	a.Commit(g, 0)
	if g.At(a.Head) != 2 || a.Sizes[0] != 2 {
		t.Fatalf("Head not committed\n%s", g)
	}

	food.Add(Point{2, 4})
	if _, ate = a.Move(g, food, Forward); !ate || a.Size != 3 {
		t.Fatalf("Expected the avatar to eat (%d)", a.Size)
	}
	a.Commit(g, 1)
	if g.At(Point{2, 2}) != 1 || g.At(Point{2, 3}) != 2 || g.At(Point{2, 4}) != 3 {
		t.Errorf("Unexpected body after eating\n%s", g)
	}
	if a.MaxSize() != 3 {
		t.Errorf("Expected maximal size 3, got %d", a.MaxSize())
	}

	a.Remove(g)
	if !a.Dead || !g.Empty(Point{2, 2}) || !g.Empty(Point{2, 4}) {
		t.Errorf("Body was not removed\n%s", g)
	}
}

func TestMemory(t *testing.T) {
	g := MakeGrid(10)
	food := MakeFood()
	a := MakeAvatar(nil, SideA, 10, 2, 3)
	a.Spawn(g, Point{0, 0}, 0)
	food.Add(Point{1, 3})

	p := a.Observe(g, food)
	if len(p) != 2 || p[1].At(0, 2) != Edible {
		t.Fatalf("Expected food ahead right, got\n%s", p[1])
	}
	if p[0].At(0, 2) != Nothing {
		t.Fatalf("Oldest frame should be empty\n%s", p[0])
	}

	step, _ := a.Move(g, food, Forward)
	a.Remember(step)
	// From the new head (1,2), the food is to the right
	if v := a.Memory[0].At(1, 2); v != Edible {
		t.Errorf("Expected remembered food to the right, got\n%s", a.Memory[0])
	}
}
