// Sanity Checks
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

package sched

import (
	"context"
	"log"

	"go-snakes"
	"go-snakes/isol"
)

// Sanity checks that the module SPEC can be loaded, instantiates an
// agent and decides on an empty field of vision, all within BUDGET.
func Sanity(ctx context.Context, spec string, budget isol.Budget) error {
	m, err := isol.Open(ctx, spec, budget)
	if err != nil {
		return err
	}
	defer m.Close()

	a, err := m.New()
	if err != nil {
		return err
	}
	p := make(snakes.Percepts, m.Frames())
	for i := range p {
		p[i] = snakes.MakeWindow(m.FieldOfVision())
	}
	_, err = m.Decide(a, p)
	return err
}

// sane removes every module from SPECS that fails the sanity check
func sane(ctx context.Context, specs []string, budget isol.Budget) (next []string) {
	for _, spec := range specs {
		if err := Sanity(ctx, spec, budget); err != nil {
			log.Printf("Disqualified %s: %v", spec, err)
			continue
		}
		next = append(next, spec)
	}
	return
}
