// Agent Module Registry
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

package agent

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go-snakes"

	"github.com/pkg/errors"
)

// Factory opens a module.  ARGS is everything following the first
// colon of the module specification.
type Factory func(ctx context.Context, args string) (snakes.Module, error)

var (
	lock     sync.RWMutex
	registry = make(map[string]Factory)
)

// Register makes a module available under NAME
func Register(name string, f Factory) {
	lock.Lock()
	defer lock.Unlock()
	if _, ok := registry[name]; ok {
		panic("Duplicate module " + name)
	}
	registry[name] = f
}

// Split separates a specification like "exec:./snake -v" into the
// name of the factory and its arguments.
func Split(spec string) (name, args string) {
	name = spec
	if i := strings.Index(spec, ":"); i != -1 {
		name, args = spec[:i], spec[i+1:]
	}
	return strings.TrimSpace(name), strings.TrimSpace(args)
}

// Open looks up and invokes the factory for SPEC
func Open(ctx context.Context, spec string) (snakes.Module, error) {
	name, args := Split(spec)

	lock.RLock()
	f, ok := registry[name]
	lock.RUnlock()
	if !ok {
		return nil, errors.Errorf("unknown agent module %q", name)
	}

	m, err := f(ctx, args)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to open module %q", spec)
	}
	return m, nil
}

// Names lists all registered modules
func Names() (names []string) {
	lock.RLock()
	defer lock.RUnlock()
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}
