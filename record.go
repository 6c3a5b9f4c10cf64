// Database Records
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

import "time"

// Contestant is an agent module as it is known to the database
type Contestant struct {
	Id      int64
	Name    string
	Version string
	Rating  float64
	Matches int
}

// Match is a recorded evaluation of one or two players
type Match struct {
	Id       int64
	Names    [2]string
	Scores   [2]float64
	Messages [2]string
	Replays  []string
	Played   time.Time
}

// Single reports if only one player took part in the match
func (m *Match) Single() bool { return m.Names[1] == "" }

// Generation is the average fitness of a training generation
type Generation struct {
	Number  int
	Fitness float64
	Trained time.Time
}
