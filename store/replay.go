// Replay Files
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

package store

import (
	"os"

	"go-snakes"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
	"github.com/pkg/errors"
)

// Replay is a recorded game
type Replay struct {
	Player1 string
	Player2 string // empty for single player games
	Frames  []*snakes.Frame
}

// turnRow is a single frame of a replay
type turnRow struct {
	Turn    int32  `parquet:"turn"`
	Size    int32  `parquet:"size"`
	Player1 string `parquet:"player1,dict"`
	Player2 string `parquet:"player2,dict"`
	Cells   []byte `parquet:"cells"`
}

// SaveReplay writes R to PATH
func SaveReplay(path string, r *Replay) error {
	rows := make([]turnRow, len(r.Frames))
	for i, f := range r.Frames {
		cells := make([]byte, len(f.Cells))
		for j, c := range f.Cells {
			cells[j] = byte(c)
		}
		rows[i] = turnRow{
			Turn:    int32(i),
			Size:    int32(f.Size),
			Player1: r.Player1,
			Player2: r.Player2,
			Cells:   cells,
		}
	}

	err := atomically(path, func(f *os.File) error {
		return parquet.Write(f, rows,
			parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
			parquet.KeyValueMetadata("schema", "snakes_replay_v1"),
		)
	})
	return errors.Wrapf(err, "failed to save replay %s", path)
}

// LoadReplay reads a replay written by SaveReplay
func LoadReplay(path string) (*Replay, error) {
	rows, err := parquet.ReadFile[turnRow](path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load replay %s", path)
	}

	r := &Replay{Frames: make([]*snakes.Frame, len(rows))}
	for i, row := range rows {
		if int(row.Turn) != i {
			return nil, errors.Errorf("replay %s is missing turn %d", path, i)
		}
		f := snakes.MakeFrame(int(row.Size))
		if len(row.Cells) != len(f.Cells) {
			return nil, errors.Errorf("frame %d of %s has %d cells, expected %d",
				i, path, len(row.Cells), len(f.Cells))
		}
		for j, c := range row.Cells {
			f.Cells[j] = int8(c)
		}
		r.Frames[i] = f
		r.Player1, r.Player2 = row.Player1, row.Player2
	}
	return r, nil
}
