// Agents running in Docker containers
//
// Copyright (c) 2022, 2023  Philip Kaludercic
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
	"fmt"
	"net"
	"strconv"
	"time"

	"go-snakes"
	"go-snakes/agent"
	"go-snakes/proto"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	"github.com/pkg/errors"
)

// Port the agent inside of a container listens on
var agentPort = nat.Port(fmt.Sprintf("%d/tcp", proto.DefaultPort))

type docker struct {
	*proto.Remote
	name string
	id   string
	cont *client.Client
}

// freePort asks the operating system for a port that is not in use
func freePort() (string, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	defer l.Close()
	return strconv.Itoa(l.Addr().(*net.TCPAddr).Port), nil
}

// connect retries to greet the agent until it has started up or the
// context expires.
func connect(ctx context.Context, name, addr, version string) (*proto.Remote, error) {
	for {
		conn, err := net.DialTimeout("tcp", addr, time.Second)
		if err == nil {
			var remote *proto.Remote
			stop := context.AfterFunc(ctx, func() { conn.Close() })
			remote, err = proto.Dial(proto.MakeConn(name, conn), version)
			stop()
			if err == nil {
				return remote, nil
			}
			conn.Close()
		}
		snakes.Debug.Printf("Waiting for %s: %v", name, err)

		select {
		case <-ctx.Done():
			return nil, errors.Wrapf(err, "%s did not respond", name)
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func openDocker(ctx context.Context, image string) (snakes.Module, error) {
	if image == "" {
		return nil, errors.New("no image was given")
	}

	var (
		d   = &docker{name: image}
		err error
	)
	d.cont, err = client.NewClientWithOpts(client.FromEnv)
	if err != nil {
		return nil, err
	}

	// The image ID changes whenever the image is rebuilt
	img, _, err := d.cont.ImageInspectWithRaw(ctx, image)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to inspect image %s", image)
	}

	port, err := freePort()
	if err != nil {
		return nil, err
	}

	// The documentation for the library is sparse, but it is also
	// just a wrapper around a HTTP API.  To understand what this
	// configuration does, it is necessary to read
	// https://docs.docker.com/engine/api/v1.41/#operation/ContainerCreate
	resp, err := d.cont.ContainerCreate(ctx, &container.Config{
		Image:        image,
		ExposedPorts: nat.PortSet{agentPort: struct{}{}},
	}, &container.HostConfig{
		Resources: container.Resources{
			CPUCount: 1,
			Memory:   1024 * 1024 * 1024,
		},
		PortBindings: nat.PortMap{
			agentPort: []nat.PortBinding{{
				HostIP:   "127.0.0.1",
				HostPort: port,
			}},
		},
		ReadonlyRootfs: true,
		AutoRemove:     true,
	}, nil, nil, fmt.Sprintf("snakes-%d", time.Now().UnixNano()))
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to create container %s", image)
	}

	d.id = resp.ID
	if err := d.cont.ContainerStart(ctx, d.id, types.ContainerStartOptions{}); err != nil {
		return nil, errors.Wrapf(err, "Failed to start container %s", image)
	}

	d.Remote, err = connect(ctx, image, "127.0.0.1:"+port, img.ID)
	if err != nil {
		d.kill()
		return nil, err
	}
	return d, nil
}

func (d *docker) kill() error {
	err := d.cont.ContainerKill(context.Background(), d.id, "SIGKILL")
	if err != nil {
		return errors.Wrapf(err, "Failed to kill container %s", d.name)
	}
	return nil
}

func (d *docker) Shutdown() error {
	if err := d.kill(); err != nil {
		return err
	}
	d.Remote.Close()
	return d.cont.Close()
}

func init() {
	agent.Register("docker", openDocker)
}

// Check if docker implements Controlled
var _ Controlled = &docker{}
