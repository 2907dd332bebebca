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

// Package client implements XcmpClient: request/response correlation over
// either a raw transport or an XNL session, plus the high-level radio
// operations (identity, RX/TX configuration, keying, display text,
// softpots, and bit-error-rate measurement) built on top of it.
package client

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/xcmpnet/xcmp/metrics"
	"github.com/xcmpnet/xcmp/transport"
	"github.com/xcmpnet/xcmp/xcmp"
)

// ErrOpcodeMismatch is returned when a response's opcode doesn't match the
// request that was sent immediately before it.
var ErrOpcodeMismatch = errors.New("client: response opcode mismatch")

// ErrNotConnected is returned by operations issued before Connect.
var ErrNotConnected = errors.New("client: not connected")

// ErrSoftpotTypeMismatch is returned when a softpot response doesn't echo
// the type of the request it answers.
var ErrSoftpotTypeMismatch = errors.New("client: softpot response type mismatch")

// ErrUnexpectedReplyType is returned when a reply's message type doesn't
// match the type the caller declared it expected (e.g. a broadcast arrived
// where a response was expected).
var ErrUnexpectedReplyType = errors.New("client: unexpected reply type")

// ErrResultFailure is returned when a response's result byte is not
// success. Use errors.As against *ResultError to recover the failing
// result code.
var ErrResultFailure = errors.New("client: result failure")

// ResultError wraps ErrResultFailure with the XCMP result code a response
// actually carried, so errors.Is(err, ErrResultFailure) still matches
// while errors.As(err, &resultErr) recovers the code.
type ResultError struct {
	Result xcmp.Result
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("client: result %s", e.Result)
}

func (e *ResultError) Unwrap() error {
	return ErrResultFailure
}

// replyMarkerOffset is added to an outgoing SendBytes opcode to form the
// marker a matching raw reply's leading 16 bits must carry.
const replyMarkerOffset = 0x8000

// sendBytesTimeout bounds the raw reply-marker wait SendBytes performs.
const sendBytesTimeout = 5 * time.Second

// Client is a single-threaded, strictly synchronous XCMP client: every
// Send is immediately followed by a blocking Receive on the same
// transport, and no two operations may be in flight at once. Callers
// needing parallelism must use multiple Clients over separate transports.
type Client struct {
	t        transport.ByteTransport
	framer   *transport.Framer
	metrics  *metrics.Collector
	berStats *BERStats

	// sleep stands in for time.Sleep so GetP25BER's 800ms-per-frame wait
	// is injectable in tests.
	sleep func(time.Duration)
}

// New wraps t (a raw socket/serial transport, or a *session.Session) in an
// XcmpClient.
func New(t transport.ByteTransport) *Client {
	return &Client{t: t, framer: transport.NewFramer(t), sleep: time.Sleep}
}

// WithMetrics attaches a Collector that Send will record every round
// trip into. Passing nil disables instrumentation.
func (c *Client) WithMetrics(m *metrics.Collector) *Client {
	c.metrics = m
	return c
}

// lengthPrefixLen is the width of the length prefix every XCMP frame
// (typed or raw) carries ahead of its body.
const lengthPrefixLen = 2

func xcmpFrameLen(header []byte) (int, error) {
	return int(binary.BigEndian.Uint16(header)) + lengthPrefixLen, nil
}

// Connect connects the underlying transport.
func (c *Client) Connect(ctx context.Context) error {
	return c.t.Connect(ctx)
}

// Disconnect disconnects the underlying transport. It is idempotent to the
// extent the transport itself is.
func (c *Client) Disconnect() error {
	return c.t.Disconnect()
}

// Connected reports whether the underlying transport is connected.
func (c *Client) Connected() bool {
	return c.t.Connected()
}

// Send writes req and blocks for one reply frame, verifying (a) the
// reply's type equals expected, (b) its opcode equals req's opcode, and
// (c) its result, if any, is success. Any violation fails with the
// corresponding error (ErrUnexpectedReplyType, ErrOpcodeMismatch, or a
// *ResultError wrapping ErrResultFailure) instead of returning the
// mismatched reply. There is no request pipelining: responses are
// matched to requests positionally.
func (c *Client) Send(req xcmp.Message, expected xcmp.Type) (xcmp.Message, error) {
	start := time.Now()
	resp, err := c.send0(req, expected)
	c.metrics.ObserveRequest(fmt.Sprintf("%#x", req.Opcode), time.Since(start), err, errors.Is(err, transport.ErrTimeout))
	return resp, err
}

func (c *Client) send0(req xcmp.Message, expected xcmp.Type) (xcmp.Message, error) {
	if !c.t.Connected() {
		return xcmp.Message{}, fmt.Errorf("client: request: %w", ErrNotConnected)
	}

	if err := c.t.Send(xcmp.Encode(req)); err != nil {
		return xcmp.Message{}, fmt.Errorf("client: sending opcode %#x: %w", req.Opcode, err)
	}

	raw, err := c.framer.ReadFrame(lengthPrefixLen, xcmpFrameLen)
	if err != nil {
		return xcmp.Message{}, fmt.Errorf("client: awaiting response to opcode %#x: %w", req.Opcode, err)
	}

	resp, err := xcmp.Decode(raw)
	if err != nil {
		c.framer.Reset()
		return xcmp.Message{}, fmt.Errorf("client: decoding response: %w", err)
	}

	if resp.Type != expected {
		return xcmp.Message{}, fmt.Errorf("client: opcode %#x: got type %s, want %s: %w", req.Opcode, resp.Type, expected, ErrUnexpectedReplyType)
	}

	if resp.Opcode != req.Opcode {
		return xcmp.Message{}, fmt.Errorf("client: sent opcode %#x, got response opcode %#x: %w", req.Opcode, resp.Opcode, ErrOpcodeMismatch)
	}

	if resp.Result != nil && *resp.Result != xcmp.ResultSuccess {
		log.WithFields(log.Fields{"opcode": req.Opcode, "result": resp.Result.String()}).Debug("client: non-success result")
		return xcmp.Message{}, fmt.Errorf("client: opcode %#x: %w", req.Opcode, &ResultError{Result: *resp.Result})
	}

	return resp, nil
}

// Write sends msg and returns as soon as the bytes are on the wire: no
// reply is read. Used for fire-and-forget messages that don't solicit a
// response.
func (c *Client) Write(msg xcmp.Message) error {
	if !c.t.Connected() {
		return fmt.Errorf("client: write: %w", ErrNotConnected)
	}
	if err := c.t.Send(xcmp.Encode(msg)); err != nil {
		return fmt.Errorf("client: writing opcode %#x: %w", msg.Opcode, err)
	}
	return nil
}

// SendBytes performs a raw, opcode-first byte exchange: raw's first two
// bytes are taken as the outgoing opcode. raw is sent as a length-prefixed
// frame, and frames are read back and discarded until one arrives whose
// own first two bytes equal the outgoing opcode plus the 0x8000
// reply-marker offset, or sendBytesTimeout elapses, in which case the call
// fails with transport.ErrTimeout. The matching frame's bytes (marker
// included) are returned.
func (c *Client) SendBytes(raw []byte) ([]byte, error) {
	if !c.t.Connected() {
		return nil, fmt.Errorf("client: send bytes: %w", ErrNotConnected)
	}
	if len(raw) < 2 {
		return nil, fmt.Errorf("client: send bytes: payload must be opcode-prefixed (got %d bytes)", len(raw))
	}
	opcode := binary.BigEndian.Uint16(raw[0:2])
	wantMarker := opcode + replyMarkerOffset

	frame := make([]byte, 0, lengthPrefixLen+len(raw))
	frame = binary.BigEndian.AppendUint16(frame, uint16(len(raw)))
	frame = append(frame, raw...)
	if err := c.t.Send(frame); err != nil {
		return nil, fmt.Errorf("client: sending raw frame for opcode %#x: %w", opcode, err)
	}

	deadline := time.Now().Add(sendBytesTimeout)
	for time.Now().Before(deadline) {
		body, err := c.framer.ReadFrame(lengthPrefixLen, xcmpFrameLen)
		if err != nil {
			if errors.Is(err, transport.ErrTimeout) {
				continue
			}
			return nil, fmt.Errorf("client: awaiting raw reply to opcode %#x: %w", opcode, err)
		}
		if len(body) < lengthPrefixLen+2 {
			continue
		}
		if marker := binary.BigEndian.Uint16(body[lengthPrefixLen : lengthPrefixLen+2]); marker == wantMarker {
			return body[lengthPrefixLen:], nil
		}
	}
	return nil, fmt.Errorf("client: raw reply for opcode %#x: %w", opcode, transport.ErrTimeout)
}

// request builds a Request-type Message for opcode with payload, sends
// it, and expects a Response back -- a convenience used by every typed
// operation below.
func (c *Client) request(op xcmp.Opcode, payload []byte) (xcmp.Message, error) {
	return c.Send(xcmp.Message{Type: xcmp.Request, Opcode: op, Payload: payload}, xcmp.Response)
}
