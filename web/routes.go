// Web Routes
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
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"go-snakes"
	"go-snakes/store"
)

const DB_TIMEOUT = 20 * time.Second // arbitrary choice

func (s *web) unavailable(w http.ResponseWriter) bool {
	if s.st.Database == nil {
		http.Error(w, "No database is available", http.StatusServiceUnavailable)
		return true
	}
	return false
}

func pageOf(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	return page
}

// Generate the index page
func (s *web) index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.unavailable(w) {
		return
	}
	page := pageOf(r)

	ctx, cancel := context.WithTimeout(r.Context(), DB_TIMEOUT)
	defer cancel()

	w.Header().Add("Content-Type", "text/html")
	w.Header().Add("Cache-Control", "max-age=60")
	c := make(chan *snakes.Match)
	go s.st.Database.QueryMatches(ctx, "", c, page-1)
	err := tmpl.ExecuteTemplate(w, "index.tmpl", struct {
		Matches chan *snakes.Match
		Page    int
		Name    string // intentionally unused
	}{c, page, ""})
	if err != nil {
		log.Print(err)
	}
	for range c {
	}
}

// Generate the about page
func (s *web) about(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "text/html")
	tmpl.ExecuteTemplate(w, "header.tmpl", nil)
	tmpl.ExecuteTemplate(w, "about.tmpl", struct{}{})
	tmpl.ExecuteTemplate(w, "footer.tmpl", nil)
}

// Generate a website to display an agent
func (s *web) showAgent(w http.ResponseWriter, r *http.Request) {
	if s.unavailable(w) {
		return
	}
	name, err := url.PathUnescape(path.Base(r.URL.EscapedPath()))
	if err != nil {
		http.Error(w, "Invalid name", http.StatusBadRequest)
		return
	}
	page := pageOf(r)

	ctx, cancel := context.WithTimeout(r.Context(), DB_TIMEOUT)
	defer cancel()

	con := s.st.Database.QueryContestant(ctx, name)
	if con == nil {
		msg := fmt.Sprintf("No agent found with the name %q", name)
		http.Error(w, msg, http.StatusNotFound)
		return
	}

	// The training history is small enough to be read in advance
	var gens []*snakes.Generation
	gc := make(chan *snakes.Generation)
	go s.st.Database.QueryGenerations(ctx, name, gc)
	for g := range gc {
		gens = append(gens, g)
	}

	mc := make(chan *snakes.Match)
	go s.st.Database.QueryMatches(ctx, name, mc, page-1)

	w.Header().Add("Content-Type", "text/html")
	err = tmpl.ExecuteTemplate(w, "show-agent.tmpl", struct {
		Agent       *snakes.Contestant
		Generations []*snakes.Generation
		Matches     chan *snakes.Match
		Page        int
		Name        string
	}{con, gens, mc, page, name})
	if err != nil {
		log.Print(err)
	}
	for range mc {
	}
}

// Generate a website to list all agents
func (s *web) showAgents(w http.ResponseWriter, r *http.Request) {
	if s.unavailable(w) {
		return
	}
	page := pageOf(r)

	ctx, cancel := context.WithTimeout(r.Context(), DB_TIMEOUT)
	defer cancel()

	c := make(chan *snakes.Contestant)
	go s.st.Database.QueryContestants(ctx, c, page-1)

	w.Header().Add("Content-Type", "text/html")
	err := tmpl.ExecuteTemplate(w, "list-agents.tmpl", struct {
		Agents chan *snakes.Contestant
		Page   int
	}{c, page})
	if err != nil {
		log.Print(err)
	}
	for range c {
	}
}

func (s *web) match(w http.ResponseWriter, r *http.Request, raw string) *snakes.Match {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return nil
	}

	ctx, cancel := context.WithTimeout(r.Context(), DB_TIMEOUT)
	defer cancel()

	m := s.st.Database.QueryMatch(ctx, id)
	if m == nil {
		msg := fmt.Sprintf("No match found with the id %d", id)
		http.Error(w, msg, http.StatusNotFound)
	}
	return m
}

// Generate a website to display a match
func (s *web) showMatch(w http.ResponseWriter, r *http.Request) {
	if s.unavailable(w) {
		return
	}
	m := s.match(w, r, path.Base(r.URL.Path))
	if m == nil {
		return
	}

	w.Header().Add("Content-Type", "text/html")
	w.Header().Add("Cache-Control", "max-age=604800")
	err := tmpl.ExecuteTemplate(w, "show-match.tmpl", m)
	if err != nil {
		log.Print(err)
	}
}

// Send the frames of a saved game of a match as JSON.  The path is
// /replay/<match>/<game>.
func (s *web) replay(w http.ResponseWriter, r *http.Request) {
	if s.unavailable(w) {
		return
	}
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/replay/"), "/")
	if len(parts) != 2 {
		http.Error(w, "Invalid replay", http.StatusBadRequest)
		return
	}
	m := s.match(w, r, parts[0])
	if m == nil {
		return
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil || n < 0 || n >= len(m.Replays) {
		http.Error(w, "No such game", http.StatusNotFound)
		return
	}

	rep, err := store.LoadReplay(m.Replays[n])
	if err != nil {
		log.Print(err)
		http.Error(w, "Replay is not available", http.StatusGone)
		return
	}

	title := rep.Player1
	if rep.Player2 != "" {
		title += " vs. " + rep.Player2
	}
	frames := make([]update, len(rep.Frames))
	for i, f := range rep.Frames {
		frames[i] = update{Turn: i, Title: title, Size: f.Size, Cells: f.Cells}
	}

	w.Header().Add("Content-Type", "application/json")
	w.Header().Add("Cache-Control", "max-age=604800")
	if err := json.NewEncoder(w).Encode(frames); err != nil {
		log.Print(err)
	}
}

// Generate the page for watching games
func (s *web) live(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "text/html")
	err := tmpl.ExecuteTemplate(w, "live.tmpl", struct {
		Source string
	}{r.URL.Query().Get("replay")})
	if err != nil {
		log.Print(err)
	}
}
