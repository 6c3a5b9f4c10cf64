// Web Interface
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

package web

import (
	"embed"
	"fmt"
	"html/template"
	"math"
	"net/url"
	"time"

	"go-snakes"
)

const PER_PAGE = 50

//go:embed static
var static embed.FS

//go:embed *.tmpl
var html embed.FS

var (
	// Template manager
	tmpl *template.Template

	// Custom template functions
	funcs = template.FuncMap{
		"inc": func(i int) int {
			return i + 1
		},
		"dec": func(i int) int {
			return i - 1
		},
		"timefmt": func(t time.Time) string {
			s := time.Since(t).Round(time.Second)
			switch {
			case s < time.Second*5:
				return "now"
			case s < time.Minute:
				return fmt.Sprintf("%.0fs ago", s.Seconds())
			case s < 10*time.Minute:
				minutes := math.Floor(s.Minutes())
				return fmt.Sprintf("%.0fm%.0fs ago", minutes, s.Seconds()-60*minutes)
			default:
				return t.Format(time.Stamp)
			}
		},
		"score": func(f float64) string {
			return fmt.Sprintf("%.2f", f)
		},
		"rating": func(f float64) string {
			return fmt.Sprintf("%.0f", f)
		},
		"path": url.PathEscape,
		"now": func() string {
			return time.Now().Format(time.RFC3339)
		},
		"result": func(name string, m *snakes.Match) template.HTML {
			var (
				msg  string
				side = -1
			)
			for i, n := range m.Names {
				if n == name {
					side = i
				}
			}
			switch {
			case m.Single():
				return template.HTML("Single player")
			case m.Scores[0] == m.Scores[1]:
				msg = `<span class="draw">Draw</span>`
			case side == -1:
				msg = "Decided"
			case (m.Scores[side] > m.Scores[1-side]):
				msg = `<span class="won">Won</span>`
			default:
				msg = `<span class="lost">Lost</span>`
			}
			return template.HTML(msg)
		},
		"describe": func(m *snakes.Match) template.HTML {
			link := func(name string) string {
				return fmt.Sprintf(`<a href="/agent/%s">%s</a>`,
					url.PathEscape(name), template.HTMLEscapeString(name))
			}
			switch {
			case m.Single():
				return template.HTML(fmt.Sprintf("%s played on its own", link(m.Names[0])))
			case m.Scores[0] > m.Scores[1]:
				return template.HTML(fmt.Sprintf("%s won against %s",
					link(m.Names[0]), link(m.Names[1])))
			case m.Scores[0] < m.Scores[1]:
				return template.HTML(fmt.Sprintf("%s won against %s",
					link(m.Names[1]), link(m.Names[0])))
			}
			return template.HTML(fmt.Sprintf("%s and %s played a draw",
				link(m.Names[0]), link(m.Names[1])))
		},
	}
)
