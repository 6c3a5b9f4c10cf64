// Connection Management
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
	"bufio"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"go-snakes"

	"github.com/pkg/errors"
)

// RemoteError is reported if the other end responded with an error
type RemoteError string

func (e RemoteError) Error() string { return string(e) }

// Conn is one end of a protocol connection.  Requests are answered
// synchronously: Request blocks until a message references it.
type Conn struct {
	Name string

	iolock sync.Mutex // IO Lock
	rwc    io.ReadWriteCloser
	lines  *bufio.Scanner
	rid    uint64
	closed uint32 // actually bool
}

func MakeConn(name string, rwc io.ReadWriteCloser) *Conn {
	lines := bufio.NewScanner(rwc)
	lines.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &Conn{Name: name, rwc: rwc, lines: lines}
}

// String will return a string representation for a connection for
// internal use
func (c *Conn) String() string {
	return fmt.Sprintf("%s (%p)", c.Name, c.rwc)
}

// Send is a shorthand to respond without a reference
func (c *Conn) Send(command string, args ...interface{}) (uint64, error) {
	return c.Respond(0, command, args...)
}

// Error is a shorthand to respond with an error message
func (c *Conn) Error(to uint64, msg string) {
	if _, err := c.Respond(to, "error", msg); err != nil {
		snakes.Debug.Print(err)
	}
}

// Respond forwards a referenced message to the other end
//
// Each element in ARGS is handled as an argument to COMMAND, and will
// use the concrete datatype for formatting.  Respond does not check
// if the arguments have the right types for COMMAND.
//
// If TO is 0, no reference will be added.
func (c *Conn) Respond(to uint64, command string, args ...interface{}) (uint64, error) {
	msg := &Message{
		Id:   atomic.AddUint64(&c.rid, 2),
		Ref:  to,
		Cmd:  command,
		Args: format(args...),
	}

	// attempt to send this message before any other message is sent
	defer c.iolock.Unlock()
	c.iolock.Lock()

	if atomic.LoadUint32(&c.closed) != 0 {
		return 0, io.ErrClosedPipe
	}

	snakes.Debug.Println(c, ">", msg)
	_, err := io.WriteString(c.rwc, msg.String()+"\r\n")
	if err != nil {
		return 0, errors.Wrapf(err, "failed to write to %s", c)
	}
	return msg.Id, nil
}

// Next reads the next message, skipping empty and malformed lines
func (c *Conn) Next() (*Message, error) {
	for c.lines.Scan() {
		line := c.lines.Text()
		msg, err := Parse(line)
		if err != nil {
			if line != "" {
				snakes.Debug.Printf("Malformed input from %s: %q", c, line)
			}
			continue
		}
		snakes.Debug.Println(c, "<", msg)
		return msg, nil
	}
	if err := c.lines.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// Request sends a command and waits for the response referencing it
func (c *Conn) Request(command string, args ...interface{}) (*Message, error) {
	id, err := c.Send(command, args...)
	if err != nil {
		return nil, err
	}

	for {
		msg, err := c.Next()
		if err != nil {
			return nil, errors.Wrapf(err, "no response to %q from %s", command, c)
		}
		if msg.Ref != id {
			snakes.Debug.Printf("Ignoring unreferenced message %q", msg)
			continue
		}
		if msg.Cmd == "error" {
			var text string
			if parse(msg.Args, &text) != nil {
				text = msg.Args
			}
			return nil, RemoteError(text)
		}
		return msg, nil
	}
}

// Close shuts the connection down, sending a goodbye if possible
func (c *Conn) Close() error {
	if atomic.LoadUint32(&c.closed) != 0 {
		return nil
	}
	if _, err := c.Send("goodbye"); err != nil {
		snakes.Debug.Print(err)
	}
	if !atomic.CompareAndSwapUint32(&c.closed, 0, 1) {
		return nil
	}
	return c.rwc.Close()
}
