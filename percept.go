// Percepts
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
	"bytes"
	"fmt"
)

const (
	// Values of a percept cell
	Nothing  int8 = 0
	Friend   int8 = 1
	Opponent int8 = -1
	Edible   int8 = 2
)

// Window is a square view centred on the head of an avatar
type Window struct {
	Size  int
	Cells []int8
}

// Percepts are the windows handed to an agent, oldest first
type Percepts []Window

func MakeWindow(size int) Window {
	return Window{Size: size, Cells: make([]int8, size*size)}
}

func (w Window) At(r, c int) int8 {
	return w.Cells[r*w.Size+c]
}

func (w Window) Set(r, c int, v int8) {
	w.Cells[r*w.Size+c] = v
}

func (w Window) Copy() Window {
	return Window{Size: w.Size, Cells: append([]int8(nil), w.Cells...)}
}

// Capture copies the surroundings of CENTRE as seen by SIDE
func Capture(g *Grid, food *Food, centre Point, side Side, size int) Window {
	w := MakeWindow(size)
	off := size / 2
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			p := g.Wrap(Point{centre.Row + r - off, centre.Col + c - off})
			switch v := g.At(p); {
			case food.Contains(p):
				w.Set(r, c, Edible)
			case v != 0:
				if sign(v) == int(side) {
					w.Set(r, c, Friend)
				} else {
					w.Set(r, c, Opponent)
				}
			}
		}
	}
	return w
}

// Rotate turns a window in global orientation into the frame of an
// avatar heading in direction ROT, so that "forward" is always up.
func (w Window) Rotate(rot Rotation) Window {
	n := w.Size
	out := MakeWindow(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var v int8
			switch rot {
			case 0:
				v = w.At(i, j)
			case 90:
				v = w.At(j, n-1-i)
			case 180:
				v = w.At(n-1-i, n-1-j)
			case 270:
				v = w.At(n-1-j, i)
			default:
				panic(fmt.Sprintf("Illegal rotation %d", rot))
			}
			out.Set(i, j, v)
		}
	}
	return out
}

// Translate moves the content of the window by D, filling vacated
// cells with zeros.
func (w Window) Translate(d Point) Window {
	n := w.Size
	out := MakeWindow(n)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			sr, sc := r-d.Row, c-d.Col
			if sr < 0 || sr >= n || sc < 0 || sc >= n {
				continue
			}
			out.Set(r, c, w.At(sr, sc))
		}
	}
	return out
}

func (w Window) String() string {
	var buf bytes.Buffer
	for r := 0; r < w.Size; r++ {
		for c := 0; c < w.Size; c++ {
			if c > 0 {
				buf.WriteByte(' ')
			}
			fmt.Fprintf(&buf, "%2d", w.At(r, c))
		}
		buf.WriteByte('\n')
	}
	return buf.String()
}

// Valid checks if a rotation is a multiple of 90 degrees in [0, 360)
func (r Rotation) Valid() bool {
	return r == 0 || r == 90 || r == 180 || r == 270
}

// Turn applies an action to a heading
func (r Rotation) Turn(a Action) Rotation {
	return Rotation(wrap(int(r)+90*int(a), 360))
}

// Forward is the global step of an avatar heading in direction R
func (r Rotation) Forward() Point {
	switch r {
	case 0:
		return Point{-1, 0}
	case 90:
		return Point{0, 1}
	case 180:
		return Point{1, 0}
	case 270:
		return Point{0, -1}
	}
	panic(fmt.Sprintf("Illegal rotation %d", r))
}
