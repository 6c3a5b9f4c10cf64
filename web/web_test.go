// Web Interface Tests
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

package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go-snakes"
	"go-snakes/cmd"
	"go-snakes/db"
	"go-snakes/game"
	"go-snakes/store"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T) (*web, *httptest.Server) {
	st := cmd.MakeState()
	d, err := db.Open(filepath.Join(t.TempDir(), "web.db"))
	require.NoError(t, err)
	t.Cleanup(d.Shutdown)
	st.Register(d)

	s := &web{st: st}
	s.routes()
	srv := httptest.NewServer(s.mux)
	t.Cleanup(srv.Close)
	return s, srv
}

func get(t *testing.T, url string) (int, string) {
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestPages(t *testing.T) {
	var (
		s, srv = serve(t)
		ctx    = context.Background()
		replay = filepath.Join(t.TempDir(), "game.parquet")
		frame  = snakes.MakeFrame(5)
	)
	frame.Set(snakes.Point{Row: 1, Col: 2}, snakes.ChannelA, 2)
	require.NoError(t, store.SaveReplay(replay, &store.Replay{
		Player1: "perceptron",
		Player2: "random",
		Frames:  []*snakes.Frame{frame, frame},
	}))

	s.st.Database.SaveGeneration(ctx, "perceptron", "1", 1, 2.5)
	s.st.Database.SaveOutcome(ctx, &game.Outcome{
		Names:   [2]string{"perceptron", "random"},
		Scores:  [2]float64{12, 4},
		Replays: []string{replay},
	})

	code, body := get(t, srv.URL+"/")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "perceptron")
	assert.Contains(t, body, "12.00")

	code, body = get(t, srv.URL+"/agents")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "random")

	code, body = get(t, srv.URL+"/agent/perceptron")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Training")
	assert.Contains(t, body, "Won")

	code, _ = get(t, srv.URL+"/agent/nobody")
	assert.Equal(t, http.StatusNotFound, code)

	code, body = get(t, srv.URL+"/match/1")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "won against")
	assert.Contains(t, body, "/replay/1/0")

	code, body = get(t, srv.URL+"/replay/1/0")
	require.Equal(t, http.StatusOK, code)
	var frames []update
	require.NoError(t, json.Unmarshal([]byte(body), &frames))
	require.Len(t, frames, 2)
	assert.Equal(t, "perceptron vs. random", frames[1].Title)
	assert.Equal(t, frame.Cells, frames[1].Cells)

	code, _ = get(t, srv.URL+"/replay/1/1")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = get(t, srv.URL+"/match/x")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAgentSpec(t *testing.T) {
	var (
		s, srv = serve(t)
		spec   = "exec:./bots/a b"
	)
	s.st.Database.SaveOutcome(context.Background(), &game.Outcome{
		Names:  [2]string{spec, "random"},
		Scores: [2]float64{3, 1},
	})

	code, body := get(t, srv.URL+"/agents")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "/agent/"+url.PathEscape(spec))

	code, body = get(t, srv.URL+"/agent/"+url.PathEscape(spec))
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "bots/a b")
}

func TestLive(t *testing.T) {
	s, srv := serve(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/socket"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		s.hub.lock.Lock()
		defer s.hub.lock.Unlock()
		return len(s.hub.clients) == 1
	}, time.Second, 10*time.Millisecond)

	frame := snakes.MakeFrame(5)
	frame.Set(snakes.Point{Row: 0, Col: 0}, snakes.ChannelFood, 1)
	s.Show(frame, 3, "Game 1")

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var u update
	require.NoError(t, conn.ReadJSON(&u))
	assert.Equal(t, 3, u.Turn)
	assert.Equal(t, "Game 1", u.Title)
	assert.Equal(t, frame.Cells, u.Cells)

	s.hub.close()
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}
