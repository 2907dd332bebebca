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

package transport

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultReceiveTimeout is the default per-Receive deadline for the TCP and
// UDP transports.
const DefaultReceiveTimeout = 1 * time.Second

const maxReadChunk = 4096

// TCPTransport is a ByteTransport over a connected TCP stream.
type TCPTransport struct {
	addr    string
	timeout time.Duration

	mu        sync.Mutex
	conn      net.Conn
	connected bool
	closeOnce sync.Once
}

// NewTCPTransport returns a TCP transport that will dial addr (host:port)
// on Connect.
func NewTCPTransport(addr string) *TCPTransport {
	return &TCPTransport{addr: addr, timeout: DefaultReceiveTimeout}
}

// WithReceiveTimeout overrides the default 1-second receive deadline.
func (t *TCPTransport) WithReceiveTimeout(d time.Duration) *TCPTransport {
	t.timeout = d
	return t
}

// Connect dials the configured address.
func (t *TCPTransport) Connect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", t.addr)
	if err != nil {
		return fmt.Errorf("transport: dialing %s: %w", t.addr, wrapTransportErr(err))
	}
	t.conn = conn
	t.connected = true
	t.closeOnce = sync.Once{}
	log.WithField("addr", t.addr).Debug("tcp transport connected")
	return nil
}

// Disconnect closes the socket. It is idempotent.
func (t *TCPTransport) Disconnect() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var err error
	t.closeOnce.Do(func() {
		if t.conn != nil {
			err = t.conn.Close()
		}
		t.connected = false
	})
	return err
}

// Connected reports whether Connect has succeeded and Disconnect has not
// since been called.
func (t *TCPTransport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

// Send writes data to the socket.
func (t *TCPTransport) Send(data []byte) error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("transport: send on unconnected tcp transport: %w", ErrTransport)
	}
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("transport: tcp write: %w", wrapTransportErr(err))
	}
	return nil
}

// Receive performs a single read, returning whatever bytes the kernel
// handed back (at most maxReadChunk), bounded by the configured deadline.
// Callers needing a full protocol frame use Framer on top of this.
func (t *TCPTransport) Receive() ([]byte, error) {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return nil, fmt.Errorf("transport: receive on unconnected tcp transport: %w", ErrTransport)
	}

	if err := conn.SetReadDeadline(time.Now().Add(t.timeout)); err != nil {
		return nil, fmt.Errorf("transport: setting read deadline: %w", wrapTransportErr(err))
	}

	buf := make([]byte, maxReadChunk)
	n, err := conn.Read(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, fmt.Errorf("transport: tcp receive: %w", ErrTimeout)
		}
		return nil, fmt.Errorf("transport: tcp read: %w", wrapTransportErr(err))
	}
	return buf[:n], nil
}

func wrapTransportErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrTransport, err)
}
