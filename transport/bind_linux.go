/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

//go:build linux

package transport

import (
	"fmt"
	"net"

	"github.com/jsimonetti/rtnetlink"
	"golang.org/x/sys/unix"
)

// bindToInterface looks name up via rtnetlink to confirm it is a link the
// kernel currently knows about, then binds the socket's egress path to it
// with SO_BINDTODEVICE. Used to pin the XNL UDP transport to a specific
// NIC when a host has more than one route to the radio.
func bindToInterface(conn *net.UDPConn, name string) error {
	rtconn, err := rtnetlink.Dial(nil)
	if err != nil {
		return fmt.Errorf("opening rtnetlink socket: %w", err)
	}
	defer rtconn.Close()

	links, err := rtconn.Link.List()
	if err != nil {
		return fmt.Errorf("listing links: %w", err)
	}

	found := false
	for _, l := range links {
		if l.Attributes != nil && l.Attributes.Name == name {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("interface %s not found", name)
	}

	sc, err := conn.SyscallConn()
	if err != nil {
		return fmt.Errorf("getting raw conn: %w", err)
	}

	var bindErr error
	err = sc.Control(func(fd uintptr) {
		bindErr = unix.BindToDevice(int(fd), name)
	})
	if err != nil {
		return fmt.Errorf("control: %w", err)
	}
	if bindErr != nil {
		return fmt.Errorf("SO_BINDTODEVICE %s: %w", name, bindErr)
	}
	return nil
}
