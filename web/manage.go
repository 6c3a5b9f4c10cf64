// Web Server Management
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
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"go-snakes"
	"go-snakes/cmd"
)

const about = `<p>This is the results server for the snakes tournament.
Every match evaluates two populations of agents over several games on
a shared grid.</p>`

type web struct {
	hub
	st     *cmd.State
	mux    *http.ServeMux
	server *http.Server
	ready  sync.WaitGroup
}

func (s *web) drawGraphs() {
	var (
		it   uint32
		next = time.Now()
		data []byte
		lock sync.Mutex
	)

	h := func(w http.ResponseWriter, r *http.Request) {
		if time.Now().After(next) {
			if atomic.CompareAndSwapUint32(&it, 0, 1) {
				snakes.Debug.Println("(Re-)generating dominance graph")
				svg, err := s.st.DrawGraph(`-Tsvg`)
				if err != nil {
					http.Error(w, err.Error(), http.StatusInternalServerError)
					atomic.StoreUint32(&it, 0)
					return
				}
				lock.Lock()
				data = svg
				lock.Unlock()
				atomic.StoreUint32(&it, 0)
			}

			// Allow the graph to be regenerated on demand every minute
			next = time.Now().Add(time.Minute)
		}
		w.Header().Add("Content-Type", "image/svg+xml")
		w.Header().Add("Cache-Control", "max-age=60")
		lock.Lock()
		defer lock.Unlock()
		w.Write(data)
	}
	s.mux.HandleFunc("/graph", h)
}

// routes prepares the HTTP multiplexer
func (s *web) routes() {
	s.mux = http.NewServeMux()
	s.mux.HandleFunc("/about", s.about)
	s.mux.HandleFunc("/agents", s.showAgents)
	s.mux.HandleFunc("/agent/", s.showAgent)
	s.mux.HandleFunc("/match/", s.showMatch)
	s.mux.HandleFunc("/replay/", s.replay)
	s.mux.HandleFunc("/live", s.live)
	s.mux.HandleFunc("/socket", s.upgrader())
	s.mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "User-agent: *\nDisallow: /")
	})
	s.mux.Handle("/static/", http.FileServer(http.FS(static)))
	s.mux.HandleFunc("/", s.index)

	if _, err := exec.LookPath("dot"); err == nil && s.st.Database != nil {
		log.Print("Enabling graph generation")
		funcs["hasgraph"] = func() bool { return true }
		s.drawGraphs()
	} else {
		funcs["hasgraph"] = func() bool { return false }
	}

	// Parse templates
	tmpl = template.Must(template.New("").Funcs(funcs).ParseFS(html, "*.tmpl"))
	template.Must(tmpl.New("about.tmpl").Parse(about))
}

func (s *web) Start(st *cmd.State, conf *cmd.Conf) {
	defer s.ready.Done()

	s.st = st
	s.routes()
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", conf.Web.Port),
		Handler: s.mux,
	}
	log.Printf("Listening via HTTP on %s", s.server.Addr)

	go func() {
		err := s.server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Print(err)
		}
	}()
}

func (s *web) Shutdown() {
	s.ready.Wait()
	s.hub.close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		log.Print(err)
	}
}

func (*web) String() string { return "Web Server" }

// Register the web interface.  As a visualiser, it streams every
// frame to the spectators on /live.
func Register(st *cmd.State) {
	s := &web{}
	s.ready.Add(1)
	st.Register(s)
}
