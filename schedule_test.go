// Training Schedule Tests
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
	"reflect"
	"testing"
)

func TestParseSchedule(t *testing.T) {
	for i, test := range []struct {
		src   string
		sched Schedule
		fail  bool
	}{
		{src: "none", sched: nil},
		{src: "", sched: Schedule{}},
		{src: "self:300, random:200", sched: Schedule{{Self, 300}, {Random, 200}}},
		{src: "random:2", sched: Schedule{{Random, 2}}},
		{src: `"exec:./snake -v":5`, sched: Schedule{{"exec:./snake -v", 5}}},
		{src: "self:-1", sched: Schedule{{Self, -1}}},
		{src: "self", fail: true},
		{src: "self:3,", fail: true},
		{src: "self:x", fail: true},
	} {
		sched, err := ParseSchedule(test.src)
		if test.fail {
			if err == nil {
				t.Errorf("[%d] Expected %q to be rejected", i, test.src)
			}
			continue
		}
		if err != nil {
			t.Errorf("[%d] Failed to parse %q: %s", i, test.src, err)
			continue
		}
		if !reflect.DeepEqual(sched, test.sched) {
			t.Errorf("[%d] Expected %#v, got %#v", i, test.sched, sched)
		}
	}
}

func TestScheduleString(t *testing.T) {
	for i, sched := range []Schedule{
		nil,
		{{Self, 300}, {Random, 200}},
		{{"docker:snake:latest", 1}},
	} {
		back, err := ParseSchedule(sched.String())
		if err != nil {
			t.Errorf("[%d] Failed to parse %q: %s", i, sched.String(), err)
		} else if !reflect.DeepEqual(back, sched) {
			t.Errorf("[%d] Expected %#v, got %#v", i, sched, back)
		}
		if sched.Total() > MaxGenerations {
			t.Errorf("[%d] Schedule too long", i)
		}
	}
}
