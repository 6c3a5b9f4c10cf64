// Checkpoints of Trained Populations
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
	"encoding/gob"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// Checkpoint is a trained population of a module
type Checkpoint struct {
	Module  string
	Version string
	Agents  [][]byte
	Fitness []float64
	Saved   time.Time
}

// Path maps the name of a module onto a file in DIR
func Path(dir, name, ext string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, name)
	return filepath.Join(dir, name+ext)
}

// atomically writes a file by writing to a temporary file first
func atomically(path string, write func(*os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create output dir")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// SaveCheckpoint writes C to PATH
func SaveCheckpoint(path string, c *Checkpoint) error {
	err := atomically(path, func(f *os.File) error {
		enc, err := zstd.NewWriter(f)
		if err != nil {
			return err
		}
		if err := gob.NewEncoder(enc).Encode(c); err != nil {
			enc.Close()
			return err
		}
		return enc.Close()
	})
	return errors.Wrapf(err, "failed to save checkpoint %s", path)
}

// LoadCheckpoint reads a checkpoint from PATH.  If there is no
// checkpoint, an error satisfying os.IsNotExist is returned.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var c Checkpoint
	if err := gob.NewDecoder(dec).Decode(&c); err != nil {
		return nil, errors.Wrapf(err, "corrupt checkpoint %s", path)
	}
	return &c, nil
}

// Forget removes the checkpoint of a module, if there is one
func Forget(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
