// Visualisation Frames
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

// Channels of a frame
const (
	ChannelA    = 0
	ChannelB    = 1
	ChannelFood = 2
	Channels    = 3
)

// Frame is a picture of the grid after a turn.  For each side there
// is a channel with bodies (1) and heads (2), negative for avatars
// that were hit during the turn, and one channel for food.
type Frame struct {
	Size  int
	Cells []int8
}

func MakeFrame(size int) *Frame {
	return &Frame{Size: size, Cells: make([]int8, size*size*Channels)}
}

func (f *Frame) At(p Point, ch int) int8 {
	return f.Cells[(p.Row*f.Size+p.Col)*Channels+ch]
}

func (f *Frame) Set(p Point, ch int, v int8) {
	f.Cells[(p.Row*f.Size+p.Col)*Channels+ch] = v
}

// Render draws every avatar that is not dead and all food.  SIDES
// holds the avatars of side A and, optionally, side B.
func Render(size int, food *Food, sides ...[]*Avatar) *Frame {
	f := MakeFrame(size)
	for ch, avatars := range sides {
		for _, a := range avatars {
			if a.Dead {
				continue
			}
			var v int8 = 1
			if a.Hit {
				v = -1
			}
			for _, p := range a.Body {
				f.Set(p, ch, v)
			}
			f.Set(a.Head, ch, 2*v)
		}
	}
	for _, p := range food.items {
		f.Set(p, ChannelFood, 1)
	}
	return f
}
