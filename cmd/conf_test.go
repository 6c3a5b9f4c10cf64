// Configuration Tests
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

package cmd

import (
	"bytes"
	"testing"
	"time"

	"go-snakes/isol"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudget(t *testing.T) {
	c := defaultConfig
	_, err := toml.Decode(`
[budget]
import = "1m"
decide = "250ms"
`, &c)
	require.NoError(t, err)

	l := c.Limits()
	assert.Equal(t, time.Minute, l.Import)
	assert.Equal(t, 250*time.Millisecond, l.Decide)
	assert.Equal(t, isol.DefaultBudget.Evolve, l.Evolve)
	assert.NoError(t, c.Validate())

	var buf bytes.Buffer
	require.NoError(t, c.Dump(&buf))
	assert.Contains(t, buf.String(), `decide = "250ms"`)
	assert.Contains(t, buf.String(), `instantiate = "1s"`)

	// Durations need a unit
	_, err = toml.Decode("[budget]\ndecide = 1000\n", &c)
	assert.Error(t, err)

	c.Budget.Fitness = -1
	assert.Error(t, c.Validate())
}

func TestDurationFlag(t *testing.T) {
	for i, test := range []struct {
		in  string
		out time.Duration
		ok  bool
	}{
		{"1s", time.Second, true},
		{"1.5s", 1500 * time.Millisecond, true},
		{"0", 0, true},
		{"20", 0, false},
		{"soon", 0, false},
	} {
		var d Duration
		err := d.Set(test.in)
		if test.ok && err != nil {
			t.Errorf("[%d] Unexpected error: %s", i, err)
		} else if !test.ok && err == nil {
			t.Errorf("[%d] Expected an error for %q", i, test.in)
		} else if time.Duration(d) != test.out {
			t.Errorf("[%d] Expected %s, got %s", i, test.out, d)
		}
	}
}
