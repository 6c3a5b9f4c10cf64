// Agents running as local processes
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

package isol

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"os/exec"
	"strings"

	"go-snakes"
	"go-snakes/agent"
	"go-snakes/proto"

	"github.com/pkg/errors"
)

type proc struct {
	*proto.Remote
	cmd *exec.Cmd
}

// pipe combines the standard streams of a process
type pipe struct {
	io.ReadCloser
	w io.WriteCloser
}

func (p *pipe) Write(b []byte) (int, error) { return p.w.Write(b) }

func (p *pipe) Close() error {
	werr := p.w.Close()
	if err := p.ReadCloser.Close(); err != nil {
		return err
	}
	return werr
}

// checksum identifies the version of an executable
func checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func openProc(ctx context.Context, args string) (snakes.Module, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return nil, errors.New("no executable was given")
	}
	path, err := exec.LookPath(fields[0])
	if err != nil {
		return nil, errors.Wrapf(err, "cannot find %s", fields[0])
	}
	version, err := checksum(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read %s", path)
	}

	cmd := exec.Command(path, fields[1:]...)
	cmd.Stderr = os.Stderr
	w, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	r, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "failed to start %s", path)
	}

	// The process is killed if the greeting takes too long
	stop := context.AfterFunc(ctx, func() { cmd.Process.Kill() })
	defer stop()

	remote, err := proto.Dial(proto.MakeConn(fields[0], &pipe{r, w}), version)
	if err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		return nil, errors.Wrapf(err, "no greeting from %s", path)
	}
	return &proc{Remote: remote, cmd: cmd}, nil
}

func (p *proc) Shutdown() error {
	// Killing the process first ensures that closing the connection
	// does not block on a process that stopped reading.
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return errors.Wrapf(err, "failed to kill %s", p.Name())
	}
	p.Remote.Close()
	p.cmd.Wait()
	return nil
}

func init() {
	agent.Register("exec", openProc)
}

// Check if proc implements Controlled
var _ Controlled = &proc{}
