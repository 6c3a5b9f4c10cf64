// Live Frame Stream
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
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"go-snakes"

	"github.com/gorilla/websocket"
)

// Number of frames that may queue up for a slow spectator
const backlog = 64

// update is the message sent to spectators for every frame
type update struct {
	Turn  int    `json:"turn"`
	Title string `json:"title"`
	Size  int    `json:"size"`
	Cells []int8 `json:"cells"`
}

func encode(f *snakes.Frame, turn int, title string) ([]byte, error) {
	return json.Marshal(update{
		Turn:  turn,
		Title: title,
		Size:  f.Size,
		Cells: f.Cells,
	})
}

// hub distributes frames to all connected spectators
type hub struct {
	lock    sync.Mutex
	clients map[chan []byte]struct{}
}

func (h *hub) subscribe() chan []byte {
	h.lock.Lock()
	defer h.lock.Unlock()
	if h.clients == nil {
		h.clients = make(map[chan []byte]struct{})
	}
	c := make(chan []byte, backlog)
	h.clients[c] = struct{}{}
	return c
}

func (h *hub) unsubscribe(c chan []byte) {
	h.lock.Lock()
	defer h.lock.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c)
	}
}

// Show passes a frame on to every spectator, dropping it for those
// that cannot keep up.
func (h *hub) Show(f *snakes.Frame, turn int, title string) {
	h.lock.Lock()
	defer h.lock.Unlock()
	if len(h.clients) == 0 {
		return
	}

	data, err := encode(f, turn, title)
	if err != nil {
		log.Print(err)
		return
	}
	for c := range h.clients {
		select {
		case c <- data:
		default:
			snakes.Debug.Print("Dropping frame for slow spectator")
		}
	}
}

// close disconnects every spectator
func (h *hub) close() {
	h.lock.Lock()
	defer h.lock.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c)
	}
}

// Upgrade a HTTP connection to a WebSocket and stream frames to it
func (h *hub) upgrader() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// upgrade to websocket or bail out
		conn, err := (&websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		}).Upgrade(w, r, nil)
		if err != nil {
			snakes.Debug.Printf("Unable to upgrade connection: %s", err)
			return
		}

		log.Printf("New spectator from %s", conn.RemoteAddr())
		c := h.subscribe()

		// Discard everything the spectator sends, and notice when
		// the connection is closed.
		go func() {
			defer h.unsubscribe(c)
			for {
				if _, _, err := conn.NextReader(); err != nil {
					return
				}
			}
		}()

		go func() {
			defer conn.Close()
			for data := range c {
				conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				err := conn.WriteMessage(websocket.TextMessage, data)
				if err != nil {
					snakes.Debug.Print(err)
					h.unsubscribe(c)
					return
				}
			}
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		}()
	}
}
