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

// UDPTransport is a ByteTransport over a connected UDP socket. XNL sessions
// run over UDP; Connect performs the connect(2)-style
// association so Send/Receive don't need to track a peer address.
type UDPTransport struct {
	addr       string
	bindIface  string
	timeout    time.Duration

	mu        sync.Mutex
	conn      *net.UDPConn
	connected bool
	closeOnce sync.Once
}

// NewUDPTransport returns a UDP transport that will associate with addr
// (host:port) on Connect.
func NewUDPTransport(addr string) *UDPTransport {
	return &UDPTransport{addr: addr, timeout: DefaultReceiveTimeout}
}

// WithReceiveTimeout overrides the default 1-second receive deadline.
func (u *UDPTransport) WithReceiveTimeout(d time.Duration) *UDPTransport {
	u.timeout = d
	return u
}

// WithBindInterface restricts the socket to a specific local interface,
// consumed by bindToInterface on platforms that support it (see
// bind_linux.go). On other platforms bindToInterface returns an error, so
// Connect fails when an interface has been set.
func (u *UDPTransport) WithBindInterface(name string) *UDPTransport {
	u.bindIface = name
	return u
}

// Connect resolves addr and associates the socket with it.
func (u *UDPTransport) Connect(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	raddr, err := net.ResolveUDPAddr("udp", u.addr)
	if err != nil {
		return fmt.Errorf("transport: resolving %s: %w", u.addr, wrapTransportErr(err))
	}

	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return fmt.Errorf("transport: dialing %s: %w", u.addr, wrapTransportErr(err))
	}

	if u.bindIface != "" {
		if err := bindToInterface(conn, u.bindIface); err != nil {
			conn.Close()
			return fmt.Errorf("transport: binding to %s: %w", u.bindIface, err)
		}
	}

	u.conn = conn
	u.connected = true
	u.closeOnce = sync.Once{}
	log.WithField("addr", u.addr).Debug("udp transport connected")
	return nil
}

// Disconnect closes the socket. It is idempotent.
func (u *UDPTransport) Disconnect() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	var err error
	u.closeOnce.Do(func() {
		if u.conn != nil {
			err = u.conn.Close()
		}
		u.connected = false
	})
	return err
}

// Connected reports whether Connect has succeeded and Disconnect has not
// since been called.
func (u *UDPTransport) Connected() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.connected
}

// Send writes a single datagram.
func (u *UDPTransport) Send(data []byte) error {
	u.mu.Lock()
	conn := u.conn
	u.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("transport: send on unconnected udp transport: %w", ErrTransport)
	}
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("transport: udp write: %w", wrapTransportErr(err))
	}
	return nil
}

// Receive reads a single datagram, bounded by the configured deadline. A
// datagram is always a whole unit on UDP, unlike the TCP transport's
// partial reads, but callers still go through Framer for consistency with
// the XNL/XCMP header parsing.
func (u *UDPTransport) Receive() ([]byte, error) {
	u.mu.Lock()
	conn := u.conn
	u.mu.Unlock()
	if conn == nil {
		return nil, fmt.Errorf("transport: receive on unconnected udp transport: %w", ErrTransport)
	}

	if err := conn.SetReadDeadline(time.Now().Add(u.timeout)); err != nil {
		return nil, fmt.Errorf("transport: setting read deadline: %w", wrapTransportErr(err))
	}

	buf := make([]byte, maxReadChunk)
	n, err := conn.Read(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, fmt.Errorf("transport: udp receive: %w", ErrTimeout)
		}
		return nil, fmt.Errorf("transport: udp read: %w", wrapTransportErr(err))
	}
	return buf[:n], nil
}
