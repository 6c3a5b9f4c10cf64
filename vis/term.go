// Terminal visualisation
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

package vis

import (
	"fmt"
	"sync"
	"time"

	"go-snakes"
	"go-snakes/cmd"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
)

// Terminal draws every frame of a running game onto a terminal
type Terminal struct {
	screen tcell.Screen
	delay  time.Duration
	styles map[Kind]tcell.Style
	closed bool
	lock   sync.Mutex
}

func style(k Kind) tcell.Style {
	c := Colours[k]
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(c[0], c[1], c[2]))
}

func makeTerminal(screen tcell.Screen, delay time.Duration) *Terminal {
	t := &Terminal{
		screen: screen,
		delay:  delay,
		styles: make(map[Kind]tcell.Style),
	}
	for k := range Colours {
		t.styles[k] = style(k)
	}
	return t
}

// Draw renders F without waiting.  Each cell takes up two columns,
// the first row holds the title.
func (t *Terminal) Draw(f *snakes.Frame, turn int, title string) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.closed {
		return
	}

	t.screen.Clear()
	head := fmt.Sprintf("%s (turn %d)", title, turn)
	for i, r := range []rune(head) {
		t.screen.SetContent(i, 0, r, nil, tcell.StyleDefault.Bold(true))
	}
	for row := 0; row < f.Size; row++ {
		for col := 0; col < f.Size; col++ {
			k := Classify(f, snakes.Point{Row: row, Col: col})
			r := '█'
			if k == Empty {
				r = '·'
			}
			s := t.styles[k]
			t.screen.SetContent(2*col, row+1, r, nil, s)
			t.screen.SetContent(2*col+1, row+1, r, nil, s)
		}
	}
	t.screen.Show()
}

// Show implements snakes.Visualiser
func (t *Terminal) Show(f *snakes.Frame, turn int, title string) {
	t.Draw(f, turn, title)
	time.Sleep(t.delay)
}

func (t *Terminal) String() string { return "Terminal Visualiser" }

func (t *Terminal) Start(st *cmd.State, conf *cmd.Conf) {
	for {
		switch ev := t.screen.PollEvent().(type) {
		case nil:
			// the screen has been finalised
			return
		case *tcell.EventResize:
			t.lock.Lock()
			t.screen.Sync()
			t.lock.Unlock()
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEscape, tcell.KeyCtrlC:
				st.Kill()
			case tcell.KeyRune:
				if ev.Rune() == 'q' {
					st.Kill()
				}
			}
		}
	}
}

func (t *Terminal) Shutdown() {
	t.lock.Lock()
	defer t.lock.Unlock()
	if !t.closed {
		t.closed = true
		t.screen.Fini()
	}
}

// Register a terminal visualiser, if requested
func Register(st *cmd.State, conf *cmd.Conf) error {
	if !conf.Vis.Enabled {
		return nil
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return errors.Wrap(err, "failed to open terminal")
	}
	if err = screen.Init(); err != nil {
		return errors.Wrap(err, "failed to initialise terminal")
	}
	st.Register(makeTerminal(screen, conf.Delay()))
	return nil
}
