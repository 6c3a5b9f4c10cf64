// Grid World
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

package snakes

import (
	"bytes"
	"fmt"
	"math/rand"
)

// Grid is a toroidal occupancy map.  A cell is zero if empty, and
// otherwise carries the sign of the side owning it and a magnitude
// counting the turns until the segment vanishes.
type Grid struct {
	Size  int
	cells []int
}

func MakeGrid(size int) *Grid {
	if size <= 0 {
		panic(fmt.Sprintf("Illegal grid size %d", size))
	}
	return &Grid{
		Size:  size,
		cells: make([]int, size*size),
	}
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}

// Wrap maps P back onto the torus
func (g *Grid) Wrap(p Point) Point {
	return Point{wrap(p.Row, g.Size), wrap(p.Col, g.Size)}
}

func (g *Grid) index(p Point) int {
	p = g.Wrap(p)
	return p.Row*g.Size + p.Col
}

func (g *Grid) At(p Point) int {
	return g.cells[g.index(p)]
}

func (g *Grid) Empty(p Point) bool {
	return g.At(p) == 0
}

// Occupy marks P as a segment of SIDE that persists for REMAINING
// turns.
func (g *Grid) Occupy(p Point, side Side, remaining int) {
	if remaining <= 0 {
		panic("Segment without a lifetime")
	}
	i := g.index(p)
	if g.cells[i] != 0 && sign(g.cells[i]) != int(side) {
		panic(fmt.Sprintf("Cell %s already occupied by the other side", p))
	}
	g.cells[i] = remaining * int(side)
}

func (g *Grid) Vacate(p Point) {
	g.cells[g.index(p)] = 0
}

// Age moves the value of P one step towards zero and reports if
// the cell is still occupied.
func (g *Grid) Age(p Point) bool {
	i := g.index(p)
	switch v := g.cells[i]; {
	case v > 0:
		g.cells[i]--
	case v < 0:
		g.cells[i]++
	}
	return g.cells[i] != 0
}

// Regions returns the number of disjoint spawn regions
func (g *Grid) Regions() int {
	n := g.Size / RegionSize
	return n * n
}

// Spawns returns the upper left corner of every spawn region, in a
// random order.
func (g *Grid) Spawns(rng *rand.Rand) []Point {
	n := g.Size / RegionSize
	spawns := make([]Point, 0, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			spawns = append(spawns, Point{y * RegionSize, x * RegionSize})
		}
	}
	rng.Shuffle(len(spawns), func(i, j int) {
		spawns[i], spawns[j] = spawns[j], spawns[i]
	})
	return spawns
}

// SeedFood places one item of food into every region
func (g *Grid) SeedFood(rng *rand.Rand, food *Food) {
	n := g.Size / RegionSize
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			var free []Point
			for r := 0; r < RegionSize; r++ {
				for c := 0; c < RegionSize; c++ {
					p := Point{y*RegionSize + r, x*RegionSize + c}
					if g.Empty(p) && !food.Contains(p) {
						free = append(free, p)
					}
				}
			}
			if len(free) > 0 {
				food.Add(free[rng.Intn(len(free))])
			}
		}
	}
}

// PlaceFood adds up to COUNT items of food on empty cells.  If there
// are fewer free cells, as many as possible are used.
func (g *Grid) PlaceFood(rng *rand.Rand, food *Food, count int) []Point {
	if count <= 0 {
		return nil
	}

	var free []Point
	for r := 0; r < g.Size; r++ {
		for c := 0; c < g.Size; c++ {
			p := Point{r, c}
			if g.Empty(p) && !food.Contains(p) {
				free = append(free, p)
			}
		}
	}
	rng.Shuffle(len(free), func(i, j int) {
		free[i], free[j] = free[j], free[i]
	})
	if count < len(free) {
		free = free[:count]
	}
	for _, p := range free {
		food.Add(p)
	}
	return free
}

// String draws the grid, mainly for debugging
func (g *Grid) String() string {
	var buf bytes.Buffer
	for r := 0; r < g.Size; r++ {
		for c := 0; c < g.Size; c++ {
			switch v := g.At(Point{r, c}); {
			case v > 0:
				buf.WriteByte('a')
			case v < 0:
				buf.WriteByte('b')
			default:
				buf.WriteByte('.')
			}
		}
		buf.WriteByte('\n')
	}
	return buf.String()
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// Food is an insertion ordered set of cells
type Food struct {
	items []Point
	index map[Point]struct{}
}

func MakeFood() *Food {
	return &Food{index: make(map[Point]struct{})}
}

func (f *Food) Len() int { return len(f.items) }

func (f *Food) Contains(p Point) bool {
	_, ok := f.index[p]
	return ok
}

func (f *Food) Add(p Point) bool {
	if f.Contains(p) {
		return false
	}
	f.index[p] = struct{}{}
	f.items = append(f.items, p)
	return true
}

func (f *Food) Remove(p Point) bool {
	if !f.Contains(p) {
		return false
	}
	delete(f.index, p)
	for i, q := range f.items {
		if q == p {
			f.items = append(f.items[:i], f.items[i+1:]...)
			break
		}
	}
	return true
}

// Points returns a copy of all cells with food
func (f *Food) Points() []Point {
	return append([]Point(nil), f.items...)
}
