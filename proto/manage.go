// TCP interface
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
	"context"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"sync"

	"go-snakes"

	"github.com/pkg/errors"
)

// DefaultPort is used by agents running inside of a container
const DefaultPort = 2671

// Listener serves a module to every engine that connects
type Listener struct {
	module snakes.Module
	conn   net.Listener
	port   uint16
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func (*Listener) String() string {
	return "TCP Handler"
}

// Initialise a listener, unless it has already been initialised
func (t *Listener) init() error {
	if t.conn != nil {
		return nil
	}

	var err error
	tcp := fmt.Sprintf(":%d", t.port)
	t.conn, err = net.Listen("tcp", tcp)
	if err != nil {
		return err
	}
	if t.port == 0 {
		// Extract port number the operating system bound the listener
		// to, since port 0 is redirected to a "random" open port
		addr := t.conn.Addr().String()
		i := strings.LastIndexByte(addr, ':')
		if i == -1 || i+1 == len(addr) {
			return errors.Errorf("invalid address %s", addr)
		}
		port, err := strconv.ParseUint(addr[i+1:], 10, 16)
		if err != nil {
			return err
		}
		t.port = uint16(port)
	}
	return nil
}

// Start accepts connections until the listener is shut down
func (t *Listener) Start() {
	snakes.Debug.Printf("Serving %s on :%d", t.module, t.port)
	for {
		conn, err := t.conn.Accept()
		if err != nil {
			if t.ctx.Err() != nil {
				return
			}
			continue
		}

		t.wg.Add(1)
		go func() {
			defer t.wg.Done()
			if err := Serve(t.ctx, conn, t.module); err != nil {
				log.Print(err)
			}
		}()
	}
}

func (t *Listener) Port() uint16 {
	return t.port
}

func (t *Listener) Shutdown() {
	t.cancel()
	if err := t.conn.Close(); err != nil {
		log.Print(err)
	}
	t.wg.Wait()
}

// Listen prepares a listener for MODULE on PORT.  If PORT is 0, the
// operating system picks a free port.
func Listen(ctx context.Context, module snakes.Module, port uint16) (*Listener, error) {
	l := &Listener{module: module, port: port}
	l.ctx, l.cancel = context.WithCancel(ctx)
	if err := l.init(); err != nil {
		l.cancel()
		return nil, err
	}
	return l, nil
}
