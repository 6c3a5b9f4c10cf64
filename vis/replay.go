// Replay viewer
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
	"strings"
	"time"

	"go-snakes"
	"go-snakes/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type tickMsg time.Time

var (
	titleStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	helpStyle  = lipgloss.NewStyle().Faint(true).MarginTop(1)
	cellStyles = make(map[Kind]lipgloss.Style)
)

func init() {
	for k, c := range Colours {
		hex := fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
		cellStyles[k] = lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
	}
}

// Viewer steps through a recorded game
type Viewer struct {
	replay  *store.Replay
	delay   time.Duration
	frame   int
	playing bool
}

func MakeViewer(r *store.Replay, delay time.Duration) *Viewer {
	return &Viewer{replay: r, delay: delay, playing: true}
}

func (v *Viewer) tick() tea.Cmd {
	return tea.Tick(v.delay, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (v *Viewer) last() int { return len(v.replay.Frames) - 1 }

func (v *Viewer) Init() tea.Cmd {
	return v.tick()
}

func (v *Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return v, tea.Quit
		case " ", "p":
			v.playing = !v.playing
			if v.playing {
				return v, v.tick()
			}
		case "left", "h":
			v.playing = false
			if v.frame > 0 {
				v.frame--
			}
		case "right", "l":
			v.playing = false
			if v.frame < v.last() {
				v.frame++
			}
		case "home", "g":
			v.frame = 0
		case "end", "G":
			v.frame = v.last()
		}
	case tickMsg:
		if !v.playing {
			break
		}
		if v.frame < v.last() {
			v.frame++
			return v, v.tick()
		}
		v.playing = false
	}
	return v, nil
}

func (v *Viewer) title() string {
	if v.replay.Player2 == "" {
		return v.replay.Player1
	}
	return fmt.Sprintf("%s vs. %s", v.replay.Player1, v.replay.Player2)
}

// Grid renders a frame as text, two columns per cell
func Grid(f *snakes.Frame) string {
	var b strings.Builder
	for row := 0; row < f.Size; row++ {
		for col := 0; col < f.Size; col++ {
			k := Classify(f, snakes.Point{Row: row, Col: col})
			if k == Empty {
				b.WriteString(cellStyles[k].Render("··"))
			} else {
				b.WriteString(cellStyles[k].Render("██"))
			}
		}
		if row+1 < f.Size {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (v *Viewer) View() string {
	if len(v.replay.Frames) == 0 {
		return "Empty replay\n"
	}

	state := "paused"
	if v.playing {
		state = "playing"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(fmt.Sprintf("%s, turn %d/%d (%s)",
			v.title(), v.frame, v.last(), state)),
		Grid(v.replay.Frames[v.frame]),
		helpStyle.Render("space: pause, ←/→: step, g/G: first/last, q: quit"),
	)
}

// Play shows R on the terminal until the user quits
func Play(r *store.Replay, delay time.Duration) error {
	_, err := tea.NewProgram(MakeViewer(r, delay), tea.WithAltScreen()).Run()
	return err
}
