// Visualisation
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

package vis

import "go-snakes"

// Kind is what a visualiser draws into a cell
type Kind int

const (
	Empty Kind = iota
	Food
	BodyA
	HeadA
	BodyB
	HeadB
	Hit
)

// Colours of each kind, as red, green and blue components
var Colours = map[Kind][3]int32{
	Empty: {0, 0, 0},
	Food:  {155, 225, 0},
	BodyA: {255, 170, 25},
	HeadA: {255, 147, 0},
	BodyB: {255, 64, 255},
	HeadB: {225, 64, 225},
	Hit:   {255, 0, 0},
}

// Classify decides what to draw at P.  Avatars are drawn over food,
// and avatars that were hit are drawn over everything.
func Classify(f *snakes.Frame, p snakes.Point) Kind {
	k := Empty
	if f.At(p, snakes.ChannelFood) > 0 {
		k = Food
	}
	for ch, kinds := range [2][2]Kind{{BodyA, HeadA}, {BodyB, HeadB}} {
		switch v := f.At(p, ch); {
		case v < 0:
			return Hit
		case v > 0:
			k = kinds[v-1]
		}
	}
	return k
}
