// Protocol Handling
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

package proto

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"go-snakes"
)

const (
	majorVersion = 1
	minorVersion = 0
	patchVersion = 0
)

var (
	// Regular expression to destruct a command
	tokenizer = regexp.MustCompile(`^[[:space:]]*` +
		`(?:([[:digit:]]*)(?:@([[:digit:]]+))?[[:space:]]+)?` +
		`([[:alnum:]]+)(?:[[:space:]]+(.*))?` +
		`[[:space:]]*$`)

	// Regular expression to match escaped chararchters
	unescape = regexp.MustCompile(`\\.`)

	// Error to return if a message couldn't be parsed
	errArgumentMismatch = errors.New("argument mismatch")

	// Error to return if a line is not a command
	errMalformed = errors.New("malformed message")
)

// Message is a single line of the protocol
type Message struct {
	Id   uint64
	Ref  uint64
	Cmd  string
	Args string
}

func (m *Message) String() string {
	var buf bytes.Buffer
	if m.Id > 0 {
		fmt.Fprint(&buf, m.Id)
		if m.Ref > 0 {
			fmt.Fprintf(&buf, "@%d", m.Ref)
		}
		buf.WriteByte(' ')
	}
	buf.WriteString(m.Cmd)
	if m.Args != "" {
		buf.WriteByte(' ')
		buf.WriteString(m.Args)
	}
	return buf.String()
}

// Parse destructs a line, but does not interpret the arguments
func Parse(input string) (*Message, error) {
	matches := tokenizer.FindStringSubmatch(strings.TrimSpace(input))
	if matches == nil {
		return nil, errMalformed
	}

	var (
		msg = &Message{Cmd: matches[3], Args: matches[4]}
		err error
	)
	if matches[1] != "" {
		msg.Id, err = strconv.ParseUint(matches[1], 10, 64)
		if err != nil {
			return nil, err
		}
	}
	if matches[2] != "" {
		msg.Ref, err = strconv.ParseUint(matches[2], 10, 64)
		if err != nil {
			return nil, err
		}
	}
	return msg, nil
}

func descape(str string) string {
	switch str[1] {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	default:
		return str[1:]
	}
}

// split cuts RAW into arguments, respecting quoted strings
func split(raw string) []string {
	var (
		inquotes bool
		escape   bool
	)

	return strings.FieldsFunc(raw, func(c rune) bool {
		if inquotes {
			if escape {
				escape = false
				return false
			} else if c == '"' {
				inquotes = false
				return true
			} else {
				escape = c == '\\'
				return false
			}
		} else {
			inquotes = c == '"'
			return unicode.IsSpace(c) || inquotes
		}
	})
}

// parse destructs RAW and tries to assign the parts to PARAMS.  A
// trailing *[]string parameter collects all remaining arguments.
func parse(raw string, params ...interface{}) error {
	var (
		err  error
		args = split(raw)
	)

	for i, arg := range args {
		if i >= len(params) {
			return errArgumentMismatch
		}

		switch param := params[i].(type) {
		case *string:
			*param = unescape.ReplaceAllStringFunc(arg, descape)
		case *uint64:
			*param, err = strconv.ParseUint(arg, 10, 64)
		case *int:
			*param, err = strconv.Atoi(arg)
		case *float64:
			*param, err = strconv.ParseFloat(arg, 64)
		case *[]string:
			if i+1 != len(params) {
				panic("Rest parameter must be last")
			}
			*param = args[i:]
			return nil
		default:
			panic(fmt.Sprintf("Unsupported parameter type %T", param))
		}
		if err != nil {
			return err
		}
	}

	n := len(params)
	if n > 0 {
		if _, ok := params[n-1].(*[]string); ok {
			n--
		}
	}
	if len(args) != n {
		return errArgumentMismatch
	}

	return nil
}

// format encodes ARGS as the arguments of a message.  Each element
// in ARGS will use its concrete datatype for formatting.
func format(args ...interface{}) string {
	var buf bytes.Buffer
	for i, arg := range args {
		if i > 0 {
			buf.WriteByte(' ')
		}
		switch v := arg.(type) {
		case string:
			fmt.Fprintf(&buf, "%#v", v)
		case int:
			fmt.Fprintf(&buf, "%d", v)
		case uint64:
			fmt.Fprintf(&buf, "%d", v)
		case float64:
			buf.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		case snakes.Action:
			fmt.Fprintf(&buf, "%d", int(v))
		case snakes.Percepts:
			// <frames> <fov> <cell>...
			if len(v) == 0 {
				buf.WriteString("0 0")
				break
			}
			fmt.Fprintf(&buf, "%d %d", len(v), v[0].Size)
			for _, w := range v {
				for _, c := range w.Cells {
					fmt.Fprintf(&buf, " %d", c)
				}
			}
		case []string:
			buf.WriteString(strings.Join(v, " "))
		case []float64:
			for j, f := range v {
				if j > 0 {
					buf.WriteByte(' ')
				}
				buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
			}
		default:
			panic(fmt.Sprintf("Unsupported type: %T", arg))
		}
	}
	return buf.String()
}

// decodePercepts is the inverse of formatting snakes.Percepts
func decodePercepts(args []string) (snakes.Percepts, error) {
	if len(args) < 2 {
		return nil, errArgumentMismatch
	}
	frames, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, err
	}
	fov, err := strconv.Atoi(args[1])
	if err != nil {
		return nil, err
	}
	if frames < 0 || fov < 0 || len(args) != 2+frames*fov*fov {
		return nil, errArgumentMismatch
	}

	p := make(snakes.Percepts, frames)
	i := 2
	for f := range p {
		p[f] = snakes.MakeWindow(fov)
		for c := range p[f].Cells {
			v, err := strconv.ParseInt(args[i], 10, 8)
			if err != nil {
				return nil, err
			}
			p[f].Cells[c] = int8(v)
			i++
		}
	}
	return p, nil
}

// encodeSizes writes the size history of an individual as "h:s,s,..."
func encodeSizes(handle uint64, sizes []int) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d:", handle)
	for i, s := range sizes {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprint(&buf, s)
	}
	return buf.String()
}

func decodeSizes(arg string) (uint64, []int, error) {
	i := strings.IndexByte(arg, ':')
	if i == -1 {
		return 0, nil, errArgumentMismatch
	}
	handle, err := strconv.ParseUint(arg[:i], 10, 64)
	if err != nil {
		return 0, nil, err
	}
	var sizes []int
	if arg[i+1:] != "" {
		for _, s := range strings.Split(arg[i+1:], ",") {
			n, err := strconv.Atoi(s)
			if err != nil {
				return 0, nil, err
			}
			sizes = append(sizes, n)
		}
	}
	return handle, sizes, nil
}
