// Training Schedules
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
	"regexp"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

const (
	// Opponent tokens with a special meaning
	Self   = "self"
	Random = "random"
)

// Stage trains against one opponent for a number of generations
type Stage struct {
	Opponent    string
	Generations int
}

// Schedule is an ordered list of training stages.  A nil schedule
// indicates a module that is used as is.
type Schedule []Stage

// Total is the number of generations of the entire schedule
func (s Schedule) Total() (n int) {
	for _, st := range s {
		n += st.Generations
	}
	return
}

var plain = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.-]*$`)

// String returns the schedule in the form accepted by ParseSchedule
func (s Schedule) String() string {
	if s == nil {
		return "none"
	}

	var buf bytes.Buffer
	for i, st := range s {
		if i > 0 {
			buf.WriteString(", ")
		}
		if plain.MatchString(st.Opponent) && st.Opponent != "none" {
			buf.WriteString(st.Opponent)
		} else {
			buf.WriteString(strconv.Quote(st.Opponent))
		}
		fmt.Fprintf(&buf, ":%d", st.Generations)
	}
	return buf.String()
}

type scheduleExpr struct {
	None   bool         `parser:"  @\"none\""`
	Stages []*stageExpr `parser:"| ( @@ ( \",\" @@ )* )?"`
}

type stageExpr struct {
	Opponent    string `parser:"( @Ident | @String )"`
	Generations int    `parser:"\":\" @Int"`
}

var scheduleLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Int", Pattern: `-?[0-9]+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_.-]*`},
	{Name: "Punct", Pattern: `[,:]`},
})

var scheduleParser = participle.MustBuild[scheduleExpr](
	participle.Lexer(scheduleLexer),
	participle.Elide("Whitespace"),
	participle.Unquote("String"),
)

// ParseSchedule reads a schedule like "self:300, random:200".  The
// input "none" yields a nil schedule.
func ParseSchedule(src string) (Schedule, error) {
	expr, err := scheduleParser.ParseString("", src)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid schedule %q", src)
	}
	if expr.None {
		return nil, nil
	}

	s := Schedule{}
	for _, st := range expr.Stages {
		s = append(s, Stage{
			Opponent:    st.Opponent,
			Generations: st.Generations,
		})
	}
	return s, nil
}
