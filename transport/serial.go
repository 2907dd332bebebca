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
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

// SerialTransport is a ByteTransport over a raw serial line, used for the
// radio's local maintenance port and for AT-command bring-up ahead of a
// PPPTransport (see ppp.go).
type SerialTransport struct {
	device  string
	baud    int
	timeout time.Duration

	mu        sync.Mutex
	port      serial.Port
	connected bool
	closeOnce sync.Once
}

// NewSerialTransport returns a transport that will open device at baud on
// Connect.
func NewSerialTransport(device string, baud int) *SerialTransport {
	return &SerialTransport{device: device, baud: baud, timeout: DefaultReceiveTimeout}
}

// WithReceiveTimeout overrides the default 1-second receive deadline.
func (s *SerialTransport) WithReceiveTimeout(d time.Duration) *SerialTransport {
	s.timeout = d
	return s
}

// Connect opens the serial port.
func (s *SerialTransport) Connect(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mode := &serial.Mode{BaudRate: s.baud}
	port, err := serial.Open(s.device, mode)
	if err != nil {
		return fmt.Errorf("transport: opening %s: %w", s.device, wrapTransportErr(err))
	}
	if err := port.SetReadTimeout(s.timeout); err != nil {
		port.Close()
		return fmt.Errorf("transport: setting read timeout on %s: %w", s.device, wrapTransportErr(err))
	}

	s.port = port
	s.connected = true
	s.closeOnce = sync.Once{}
	log.WithField("device", s.device).Debug("serial transport connected")
	return nil
}

// Disconnect closes the serial port. It is idempotent.
func (s *SerialTransport) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	s.closeOnce.Do(func() {
		if s.port != nil {
			err = s.port.Close()
		}
		s.connected = false
	})
	return err
}

// Connected reports whether Connect has succeeded and Disconnect has not
// since been called.
func (s *SerialTransport) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Send writes data to the line.
func (s *SerialTransport) Send(data []byte) error {
	s.mu.Lock()
	port := s.port
	s.mu.Unlock()
	if port == nil {
		return fmt.Errorf("transport: send on unconnected serial transport: %w", ErrTransport)
	}
	if _, err := port.Write(data); err != nil {
		return fmt.Errorf("transport: serial write: %w", wrapTransportErr(err))
	}
	return nil
}

// Receive performs a single read, returning whatever bytes arrived within
// the configured read timeout. go.bug.st/serial returns (0, nil) on
// timeout rather than an error, which this maps to ErrTimeout so callers
// see the same signal as the TCP/UDP transports.
func (s *SerialTransport) Receive() ([]byte, error) {
	s.mu.Lock()
	port := s.port
	s.mu.Unlock()
	if port == nil {
		return nil, fmt.Errorf("transport: receive on unconnected serial transport: %w", ErrTransport)
	}

	buf := make([]byte, maxReadChunk)
	n, err := port.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("transport: serial read: %w", wrapTransportErr(err))
	}
	if n == 0 {
		return nil, fmt.Errorf("transport: serial receive: %w", ErrTimeout)
	}
	return buf[:n], nil
}
