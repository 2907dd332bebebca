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
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	atOK      = "OK"
	atConnect = "CONNECT"
)

var remoteIPRe = regexp.MustCompile(`remote\s+IP\s+address\s+(\d+\.\d+\.\d+\.\d+)`)

// PPPTransport brings a radio's serial control link up into an IP link via
// pppd and then hands off to a UDPTransport dialed over that link, so the
// rest of the stack (package xcmp, package xnl) never needs to know the
// radio is reachable over a modem rather than a LAN.
type PPPTransport struct {
	device   string
	baud     int
	peerPort int
	pppdPath string

	mu     sync.Mutex
	cmd    *exec.Cmd
	udp    *UDPTransport
	closed bool
}

// NewPPPTransport prepares a PPP bring-up over device at baud, with the
// radio's XNL listener at peerPort once the link is up.
func NewPPPTransport(device string, baud, peerPort int) *PPPTransport {
	return &PPPTransport{device: device, baud: baud, peerPort: peerPort, pppdPath: "pppd"}
}

// WithPPPDPath overrides the pppd binary looked up on PATH, for tests and
// non-standard installs.
func (p *PPPTransport) WithPPPDPath(path string) *PPPTransport {
	p.pppdPath = path
	return p
}

// Connect dials the modem with AT commands, then spawns pppd over the
// serial device and scrapes the peer's negotiated remote IP out of its
// stdout before dialing a UDPTransport against the peer.
func (p *PPPTransport) Connect(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.dialModem(ctx); err != nil {
		return err
	}

	remoteIP, err := p.startPPPD(ctx)
	if err != nil {
		return err
	}

	udp := NewUDPTransport(fmt.Sprintf("%s:%d", remoteIP, p.peerPort))
	if err := udp.Connect(ctx); err != nil {
		return err
	}
	p.udp = udp
	p.closed = false

	log.WithFields(log.Fields{"device": p.device, "remote_ip": remoteIP}).Debug("ppp transport connected")
	return nil
}

// dialModem opens the serial line, sends ATDT8002 and waits for CONNECT.
// No modem reset command is sent before dialing.
func (p *PPPTransport) dialModem(ctx context.Context) error {
	serial := NewSerialTransport(p.device, p.baud).WithReceiveTimeout(5 * time.Second)
	if err := serial.Connect(ctx); err != nil {
		return fmt.Errorf("transport: ppp modem dial: %w", err)
	}
	defer serial.Disconnect()

	if err := serial.Send([]byte("ATDT8002\r\n")); err != nil {
		return fmt.Errorf("transport: sending ATDT: %w", err)
	}

	got, err := serial.Receive()
	if err != nil {
		return fmt.Errorf("transport: waiting for modem CONNECT: %w", err)
	}
	resp := string(got)
	if !strings.Contains(resp, atConnect) {
		return fmt.Errorf("transport: modem did not accept dial, got %q: %w", resp, ErrTransport)
	}
	return nil
}

// startPPPD runs pppd against the serial device and scrapes the negotiated
// remote IP address from stdout.
func (p *PPPTransport) startPPPD(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, p.pppdPath, p.device, fmt.Sprintf("%d", p.baud), "nodetach", "noauth")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("transport: pppd stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("transport: starting pppd: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	var remoteIP string
	for scanner.Scan() {
		line := scanner.Text()
		if m := remoteIPRe.FindStringSubmatch(line); m != nil {
			remoteIP = m[1]
			break
		}
	}
	if remoteIP == "" {
		cmd.Process.Kill()
		return "", fmt.Errorf("transport: pppd did not report a remote IP: %w", ErrTransport)
	}

	p.cmd = cmd
	return remoteIP, nil
}

// Disconnect tears down the UDP association and kills pppd. It is
// idempotent.
func (p *PPPTransport) Disconnect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	var err error
	if p.udp != nil {
		err = p.udp.Disconnect()
	}
	if p.cmd != nil && p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
		_ = p.cmd.Wait()
	}
	return err
}

// Connected reports whether the PPP link and UDP association are both up.
func (p *PPPTransport) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.udp != nil && p.udp.Connected() && !p.closed
}

// Send forwards to the underlying UDP association.
func (p *PPPTransport) Send(data []byte) error {
	p.mu.Lock()
	udp := p.udp
	p.mu.Unlock()
	if udp == nil {
		return fmt.Errorf("transport: send before ppp link up: %w", ErrTransport)
	}
	return udp.Send(data)
}

// Receive forwards to the underlying UDP association.
func (p *PPPTransport) Receive() ([]byte, error) {
	p.mu.Lock()
	udp := p.udp
	p.mu.Unlock()
	if udp == nil {
		return nil, fmt.Errorf("transport: receive before ppp link up: %w", ErrTransport)
	}
	return udp.Receive()
}
