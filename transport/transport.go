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

// Package transport defines the connection-oriented byte pipe the rest of
// this module is built on, and the concrete transports (TCP, UDP,
// PPP-over-serial) that implement it.
package transport

import (
	"context"
	"errors"
)

// ErrTransport wraps any underlying socket/serial I/O failure.
var ErrTransport = errors.New("transport: i/o error")

// ErrTimeout is returned when a Receive call's deadline elapses without a
// full frame arriving.
var ErrTimeout = errors.New("transport: receive timed out")

// ByteTransport is a connection-oriented byte pipe. Receive blocks until at
// least one full XCMP frame's worth of bytes has been delivered by the
// peer; implementations may return more than one frame's worth and callers
// above (Framer's length-prefix reassembly) must tolerate both
// short-read and long-read behaviour.
//
// Both concrete transports -- a TCP/UDP socket and a PPP-over-serial
// bring-up -- are fully interchangeable from the protocol stack's point of
// view, including package session, which itself implements ByteTransport
// by wrapping one.
type ByteTransport interface {
	Connect(ctx context.Context) error
	Disconnect() error
	Send(data []byte) error
	Receive() ([]byte, error)
	Connected() bool
}
