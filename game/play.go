// Game Simulation
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

package game

import (
	"context"
	"fmt"
	"math/rand"

	"go-snakes"
	"go-snakes/store"

	"github.com/pkg/errors"
)

var (
	// Error to return if not every avatar can be given a spawn region
	ErrTooManyAvatars = errors.New("more avatars than spawn regions")

	// Error to return if the grid has no spawn region
	ErrGridTooSmall = errors.New("grid is smaller than a spawn region")
)

// Fault attributes an error to one of the players of a game
type Fault struct {
	Player int
	Err    error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("player %d: %v", f.Player+1, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

// Options configure a single game
type Options struct {
	Size       int
	Turns      int
	Foods      int
	Seed       int64
	Record     bool
	Visualiser snakes.Visualiser
	Title      string
}

// Check ensures that AVATARS avatars can be spawned on a grid of
// SIZE×SIZE cells.
func Check(size, avatars int) error {
	if size < snakes.RegionSize {
		return errors.WithMessagef(ErrGridTooSmall, "size %d", size)
	}
	if n := size / snakes.RegionSize; avatars > n*n {
		return errors.WithMessagef(ErrTooManyAvatars, "%d avatars, %d regions",
			avatars, n*n)
	}
	return nil
}

// Result summarises a game
type Result struct {
	Names  []string
	Scores []int
	Turns  int
	Frames []*snakes.Frame
}

// Diff is the score of a single player, or the difference between
// the first and the second player.
func (r *Result) Diff() int {
	if len(r.Scores) == 1 {
		return r.Scores[0]
	}
	return r.Scores[0] - r.Scores[1]
}

// Replay returns the recorded frames of the game
func (r *Result) Replay() *store.Replay {
	rep := &store.Replay{Player1: r.Names[0], Frames: r.Frames}
	if len(r.Names) > 1 {
		rep.Player2 = r.Names[1]
	}
	return rep
}

func (r *Result) String() string {
	if len(r.Names) == 1 {
		return fmt.Sprintf("%s: %d after %d turns", r.Names[0], r.Scores[0], r.Turns)
	}
	return fmt.Sprintf("%s vs. %s: %d:%d after %d turns",
		r.Names[0], r.Names[1], r.Scores[0], r.Scores[1], r.Turns)
}

// game is the state of a running game
type game struct {
	opt     Options
	rng     *rand.Rand
	grid    *snakes.Grid
	food    *snakes.Food
	players []*Player
	sides   [][]*snakes.Avatar
	frames  []*snakes.Frame
}

// alive reports if any avatar can still act
func (g *game) alive() bool {
	for _, avatars := range g.sides {
		for _, a := range avatars {
			if !a.Dead {
				return true
			}
		}
	}
	return false
}

// decide collects the actions of every living avatar
func (g *game) decide() ([][]snakes.Action, error) {
	actions := make([][]snakes.Action, len(g.sides))
	for i, avatars := range g.sides {
		actions[i] = make([]snakes.Action, len(avatars))
		for j, a := range avatars {
			if a.Dead {
				continue
			}
			act, err := g.players[i].Module.Decide(a.Agent, a.Observe(g.grid, g.food))
			if err != nil {
				return nil, &Fault{Player: i, Err: err}
			}
			actions[i][j] = act
		}
	}
	return actions, nil
}

// show renders the current state for the visualiser and the replay
func (g *game) show(turn int) {
	if !g.opt.Record && g.opt.Visualiser == nil {
		return
	}
	f := snakes.Render(g.grid.Size, g.food, g.sides...)
	if g.opt.Record {
		g.frames = append(g.frames, f)
	}
	if g.opt.Visualiser != nil {
		g.opt.Visualiser.Show(f, turn, g.opt.Title)
	}
}

// advance executes the ACTIONS of every avatar, resolves collisions
// and replenishes the food.
func (g *game) advance(turn int, actions [][]snakes.Action) {
	var (
		eaten []snakes.Point
		heads = make(map[snakes.Point][]*snakes.Avatar)
	)
	for i, avatars := range g.sides {
		for j, a := range avatars {
			if a.Dead {
				continue
			}
			step, ate := a.Move(g.grid, g.food, actions[i][j])
			a.Remember(step)
			if ate {
				eaten = append(eaten, a.Head)
			}
			heads[a.Head] = append(heads[a.Head], a)
		}
	}

	// Head-on collisions hit every avatar involved
	for _, as := range heads {
		if len(as) > 1 {
			for _, a := range as {
				a.Hit = true
			}
		}
	}

	for _, avatars := range g.sides {
		for _, a := range avatars {
			if a.Alive() && !g.grid.Empty(a.Head) {
				a.Hit = true
			}
		}
	}

	for _, avatars := range g.sides {
		for _, a := range avatars {
			if a.Alive() {
				a.Commit(g.grid, turn)
			}
		}
	}

	for _, p := range eaten {
		g.food.Remove(p)
	}
	if n := g.food.Len(); n < g.opt.Foods {
		g.grid.PlaceFood(g.rng, g.food, g.opt.Foods-n)
	}

	g.show(turn + 1)

	for _, avatars := range g.sides {
		for _, a := range avatars {
			if a.Hit && !a.Dead {
				a.Remove(g.grid)
			}
		}
	}
}

// spawn places every avatar into its own region and seeds the food
func (g *game) spawn() {
	var (
		spawns = g.grid.Spawns(g.rng)
		k      int
	)
	for i, p := range g.players {
		g.sides[i] = p.reset(snakes.SideOf(i), g.opt.Turns)
		for _, a := range g.sides[i] {
			a.Spawn(g.grid, spawns[k], snakes.Rotation(90*g.rng.Intn(4)))
			k++
		}
	}

	g.grid.SeedFood(g.rng, g.food)
	if extra := g.food.Len() - g.opt.Foods; extra > 0 {
		seeded := g.food.Points()
		g.rng.Shuffle(len(seeded), func(i, j int) {
			seeded[i], seeded[j] = seeded[j], seeded[i]
		})
		for _, p := range seeded[:extra] {
			g.food.Remove(p)
		}
	}
}

// Play runs a game for one or two players
func Play(ctx context.Context, opt Options, players ...*Player) (*Result, error) {
	if len(players) < 1 || len(players) > 2 {
		panic(fmt.Sprintf("Illegal number of players %d", len(players)))
	}

	var avatars int
	for _, p := range players {
		avatars += len(p.Agents)
	}
	if err := Check(opt.Size, avatars); err != nil {
		return nil, err
	}

	g := &game{
		opt:     opt,
		rng:     rand.New(rand.NewSource(opt.Seed)),
		grid:    snakes.MakeGrid(opt.Size),
		food:    snakes.MakeFood(),
		players: players,
		sides:   make([][]*snakes.Avatar, len(players)),
	}
	g.spawn()
	g.show(0)

	res := &Result{}
	for res.Turns < opt.Turns && g.alive() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		actions, err := g.decide()
		if err != nil {
			return nil, err
		}
		g.advance(res.Turns, actions)
		res.Turns++
	}

	for _, p := range players {
		res.Names = append(res.Names, p.String())
		res.Scores = append(res.Scores, p.Score())
	}
	res.Frames = g.frames
	snakes.Debug.Println("Finished game", res)
	return res, nil
}
