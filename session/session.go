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

// Package session implements the XNL session layer: master discovery,
// TEA-family authentication, connection setup, and ACK-based reliable
// delivery of XCMP payloads over a raw transport.Framer. A Session itself
// implements transport.ByteTransport, so package client can treat a plain
// socket and an authenticated XNL session identically.
package session

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"

	log "github.com/sirupsen/logrus"

	"github.com/xcmpnet/xcmp/tea"
	"github.com/xcmpnet/xcmp/transport"
	"github.com/xcmpnet/xcmp/xnl"
)

// State is one stage of the XNL session lifecycle.
type State uint8

// Session lifecycle states, in the order a successful Connect moves
// through them.
const (
	StateIdle State = iota
	StateQuerying
	StateAuthenticating
	StateConnecting
	StateReady
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateQuerying:
		return "QUERYING"
	case StateAuthenticating:
		return "AUTHENTICATING"
	case StateConnecting:
		return "CONNECTING"
	case StateReady:
		return "READY"
	case StateDisconnected:
		return "DISCONNECTED"
	}
	return "UNKNOWN"
}

// deviceTypePCApplication is this library's device-type value in
// DEVICE_CONN_REQUEST: a PC-hosted control application.
const deviceTypePCApplication = 0x0A

// authLevelInternal is the only auth level this library requests.
const authLevelInternal = 0x00

// ErrAuthFailure is returned when the peer rejects the connection request,
// including when misconfigured keys produce a response the peer refuses.
var ErrAuthFailure = errors.New("session: auth failure")

// ErrAckMismatch is returned when a DATA_MSG_ACK doesn't match the rollover
// and transaction id of the DATA_MSG it purports to acknowledge.
var ErrAckMismatch = errors.New("session: ack mismatch")

// ErrNotReady is returned by Send/Receive when the session hasn't
// completed Connect.
var ErrNotReady = errors.New("session: not ready")

// KeyConfig is the TEA authentication material, configuration rather than
// session state: four 32-bit key words plus delta.
type KeyConfig struct {
	Key   tea.Key
	Delta uint32
}

// Session is a client-side XNL session layered over a raw transport.
type Session struct {
	inner  transport.ByteTransport
	framer *transport.Framer
	keys   KeyConfig
	dedup  *Dedup

	state             State
	masterAddr        uint16
	sourceAddr        uint16
	txIDBase          uint8
	logicalAddr       uint16
	encryptedResponse [8]byte
	rollover          uint8
	transactionID     uint16
}

// New returns a session that will perform the XNL handshake over inner
// once Connect is called.
func New(inner transport.ByteTransport, keys KeyConfig) *Session {
	return &Session{
		inner:  inner,
		framer: transport.NewFramer(inner),
		keys:   keys,
		dedup:  NewDedup(32),
		state:  StateIdle,
	}
}

// State reports the session's current lifecycle stage.
func (s *Session) State() State {
	return s.state
}

func xnlFrameLen(header []byte) (int, error) {
	payloadLen := binary.BigEndian.Uint16(header[10:12])
	return 12 + int(payloadLen), nil
}

func (s *Session) readFrame() (xnl.Frame, error) {
	raw, err := s.framer.ReadFrame(12, xnlFrameLen)
	if err != nil {
		return xnl.Frame{}, err
	}
	frame, err := xnl.Decode(raw)
	if err != nil {
		s.framer.Reset()
		return xnl.Frame{}, err
	}
	return frame, nil
}

func (s *Session) writeFrame(f xnl.Frame) error {
	return s.inner.Send(xnl.Encode(f))
}

// Connect performs master discovery, TEA authentication, and connection
// setup in sequence. Any failure leaves the session
// StateDisconnected; a fresh Connect is required to retry.
func (s *Session) Connect(ctx context.Context) error {
	if err := s.inner.Connect(ctx); err != nil {
		s.state = StateDisconnected
		return fmt.Errorf("session: connecting inner transport: %w", err)
	}

	if err := s.query(); err != nil {
		s.state = StateDisconnected
		return err
	}
	if err := s.authenticate(); err != nil {
		s.state = StateDisconnected
		return err
	}
	if err := s.establishConnection(); err != nil {
		s.state = StateDisconnected
		return err
	}

	s.state = StateReady
	log.WithFields(log.Fields{
		"master_addr": s.masterAddr,
		"source_addr": s.sourceAddr,
		"logical_addr": s.logicalAddr,
	}).Debug("xnl session ready")
	return nil
}

func (s *Session) query() error {
	s.state = StateQuerying
	err := s.writeFrame(xnl.Frame{Header: xnl.Header{
		Opcode:   xnl.OpDeviceMasterQuery,
		Protocol: xnl.ProtocolXNLCtrl,
	}})
	if err != nil {
		return fmt.Errorf("session: sending DEVICE_MASTER_QUERY: %w", err)
	}

	reply, err := s.readFrame()
	if err != nil {
		return fmt.Errorf("session: awaiting MASTER_STATUS_BROADCAST: %w", err)
	}
	if reply.Header.Opcode != xnl.OpMasterStatusBcast {
		return fmt.Errorf("session: expected MASTER_STATUS_BROADCAST, got opcode %#x: %w", reply.Header.Opcode, ErrAuthFailure)
	}

	s.masterAddr = reply.Header.Source
	return nil
}

func (s *Session) authenticate() error {
	s.state = StateAuthenticating
	err := s.writeFrame(xnl.Frame{Header: xnl.Header{
		Opcode:      xnl.OpDeviceAuthKeyRequest,
		Protocol:    xnl.ProtocolXNLCtrl,
		Destination: s.masterAddr,
	}})
	if err != nil {
		return fmt.Errorf("session: sending DEVICE_AUTH_KEY_REQUEST: %w", err)
	}

	reply, err := s.readFrame()
	if err != nil {
		return fmt.Errorf("session: awaiting DEVICE_AUTH_KEY_REPLY: %w", err)
	}
	if reply.Header.Opcode != xnl.OpDeviceAuthKeyReply {
		return fmt.Errorf("session: expected DEVICE_AUTH_KEY_REPLY, got opcode %#x: %w", reply.Header.Opcode, ErrAuthFailure)
	}
	if len(reply.Payload) != 10 {
		return fmt.Errorf("session: malformed DEVICE_AUTH_KEY_REPLY payload (%d bytes): %w", len(reply.Payload), ErrAuthFailure)
	}

	s.sourceAddr = binary.BigEndian.Uint16(reply.Payload[0:2])

	var challenge [8]byte
	copy(challenge[:], reply.Payload[2:10])
	s.encryptedResponse = tea.EncryptBlock(challenge, s.keys.Key, s.keys.Delta)

	return nil
}

func (s *Session) establishConnection() error {
	s.state = StateConnecting

	payload := make([]byte, 12)
	payload[2] = deviceTypePCApplication
	payload[3] = authLevelInternal
	copy(payload[4:12], s.encryptedResponse[:])

	err := s.writeFrame(xnl.Frame{Header: xnl.Header{
		Opcode:      xnl.OpDeviceConnRequest,
		Protocol:    xnl.ProtocolXNLCtrl,
		Destination: s.masterAddr,
		Source:      s.sourceAddr,
	}, Payload: payload})
	if err != nil {
		return fmt.Errorf("session: sending DEVICE_CONN_REQUEST: %w", err)
	}

	reply, err := s.readFrame()
	if err != nil {
		return fmt.Errorf("session: awaiting DEVICE_CONN_REPLY: %w", err)
	}
	if reply.Header.Opcode != xnl.OpDeviceConnReply {
		return fmt.Errorf("session: expected DEVICE_CONN_REPLY, got opcode %#x: %w", reply.Header.Opcode, ErrAuthFailure)
	}
	if len(reply.Payload) < 1 || reply.Payload[0] != 0x00 {
		return fmt.Errorf("session: connection request rejected, result=%v: %w", reply.Payload, ErrAuthFailure)
	}
	if len(reply.Payload) < 6 {
		return fmt.Errorf("session: malformed DEVICE_CONN_REPLY payload (%d bytes): %w", len(reply.Payload), ErrAuthFailure)
	}

	s.txIDBase = reply.Payload[1]
	s.sourceAddr = binary.BigEndian.Uint16(reply.Payload[2:4])
	s.logicalAddr = binary.BigEndian.Uint16(reply.Payload[4:6])

	return nil
}

// nextTransactionID builds a 16-bit transaction id: the session's base
// byte in the high octet, a fresh random low byte per send
// collisions within a short window are not guarded, by design of the
// source protocol).
func (s *Session) nextTransactionID() uint16 {
	low := uint8(rand.Intn(256))
	s.transactionID = uint16(s.txIDBase)<<8 | uint16(low)
	return s.transactionID
}

// Send wraps data in a DATA_MSG with ack-needed set, writes it, and blocks
// for the matching DATA_MSG_ACK before advancing the rollover counter.
func (s *Session) Send(data []byte) error {
	if s.state != StateReady {
		return fmt.Errorf("session: send in state %s: %w", s.state, ErrNotReady)
	}

	txID := s.nextTransactionID()
	out := xnl.Frame{
		Header: xnl.Header{
			Opcode:        xnl.OpDataMsg,
			Protocol:      xnl.ProtocolXCMP,
			Rollover:      s.rollover,
			AckNeeded:     true,
			Destination:   s.masterAddr,
			Source:        s.sourceAddr,
			TransactionID: txID,
		},
		Payload: data,
	}
	if err := s.writeFrame(out); err != nil {
		return fmt.Errorf("session: sending DATA_MSG: %w", err)
	}

	ack, err := s.readFrame()
	if err != nil {
		return fmt.Errorf("session: awaiting DATA_MSG_ACK: %w", err)
	}
	if ack.Header.Opcode != xnl.OpDataMsgAck {
		return fmt.Errorf("session: expected DATA_MSG_ACK, got opcode %#x: %w", ack.Header.Opcode, ErrAckMismatch)
	}
	if ack.Header.Rollover != out.Header.Rollover || ack.Header.TransactionID != out.Header.TransactionID {
		return fmt.Errorf("session: ack rollover/transaction mismatch: %w", ErrAckMismatch)
	}

	s.rollover = (s.rollover + 1) % 8
	return nil
}

// Receive reads one XNL frame carrying an XCMP payload and returns that
// payload. A DATA_MSG is ACKed before its payload is handed back; other
// XCMP-protocol frames (unsolicited broadcasts) are returned as-is, since
// the source implementation this library interoperates with does not ACK
// them (resolved in favour of bit-compatibility with the device firmware;
// see DESIGN.md). A non-DATA_MSG payload identical to one among the last 32
// such payloads is dropped as a duplicate.
func (s *Session) Receive() ([]byte, error) {
	if s.state != StateReady {
		return nil, fmt.Errorf("session: receive in state %s: %w", s.state, ErrNotReady)
	}

	for {
		frame, err := s.readFrame()
		if err != nil {
			return nil, err
		}
		if frame.Header.Protocol != xnl.ProtocolXCMP {
			log.WithField("opcode", frame.Header.Opcode).Debug("session: ignoring non-XCMP frame")
			continue
		}

		if frame.Header.Opcode == xnl.OpDataMsg {
			if err := s.ackDataMsg(frame); err != nil {
				return nil, err
			}
			return frame.Payload, nil
		}

		if s.dedup.Seen(frame.Payload) {
			log.Debug("session: dropping duplicate broadcast payload")
			continue
		}
		return frame.Payload, nil
	}
}

func (s *Session) ackDataMsg(frame xnl.Frame) error {
	ack := xnl.Frame{Header: xnl.Header{
		Opcode:        xnl.OpDataMsgAck,
		Protocol:      xnl.ProtocolXCMP,
		Rollover:      frame.Header.Rollover,
		Destination:   frame.Header.Source,
		Source:        s.sourceAddr,
		TransactionID: frame.Header.TransactionID,
	}}
	if err := s.writeFrame(ack); err != nil {
		return fmt.Errorf("session: sending DATA_MSG_ACK: %w", err)
	}
	return nil
}

// Disconnect releases the underlying transport. It is idempotent.
func (s *Session) Disconnect() error {
	if s.state == StateDisconnected || s.state == StateIdle {
		s.state = StateDisconnected
		if s.inner.Connected() {
			return s.inner.Disconnect()
		}
		return nil
	}
	s.state = StateDisconnected
	return s.inner.Disconnect()
}

// Connected reports whether the session has completed Connect and not
// since been disconnected.
func (s *Session) Connected() bool {
	return s.state == StateReady
}
