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

package client

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/xcmpnet/xcmp/metrics"
	"github.com/xcmpnet/xcmp/xcmp"
)

// scriptedTransport is an in-memory transport.ByteTransport that answers
// each Send with whatever its respond callback returns, encoded as an
// XCMP frame, so client tests don't need real sockets.
type scriptedTransport struct {
	connected bool
	respond   func(req xcmp.Message) xcmp.Message
	toDeliver [][]byte
}

func (s *scriptedTransport) Connect(context.Context) error { s.connected = true; return nil }
func (s *scriptedTransport) Disconnect() error              { s.connected = false; return nil }
func (s *scriptedTransport) Connected() bool                { return s.connected }

func (s *scriptedTransport) Send(data []byte) error {
	req, err := xcmp.Decode(data)
	if err != nil {
		return err
	}
	resp := s.respond(req)
	s.toDeliver = append(s.toDeliver, xcmp.Encode(resp))
	return nil
}

func (s *scriptedTransport) Receive() ([]byte, error) {
	if len(s.toDeliver) == 0 {
		return nil, errExhausted
	}
	b := s.toDeliver[0]
	s.toDeliver = s.toDeliver[1:]
	return b, nil
}

var errExhausted = errors.New("scriptedTransport: no more scripted responses")

func successResponse(req xcmp.Message, payload []byte) xcmp.Message {
	result := xcmp.ResultSuccess
	return xcmp.Message{Type: xcmp.Response, Opcode: req.Opcode, Result: &result, Payload: payload}
}

func newTestClient(respond func(req xcmp.Message) xcmp.Message) (*Client, *scriptedTransport) {
	tr := &scriptedTransport{respond: respond}
	c := New(tr)
	_ = c.Connect(context.Background())
	return c, tr
}

func TestPing(t *testing.T) {
	c, _ := newTestClient(func(req xcmp.Message) xcmp.Message {
		return successResponse(req, nil)
	})
	require.NoError(t, c.Ping())
}

func TestRequestBeforeConnectFails(t *testing.T) {
	tr := &scriptedTransport{}
	c := New(tr)
	err := c.Ping()
	require.ErrorIs(t, err, ErrNotConnected)
}

func TestRequestOpcodeMismatch(t *testing.T) {
	c, _ := newTestClient(func(req xcmp.Message) xcmp.Message {
		result := xcmp.ResultSuccess
		return xcmp.Message{Type: xcmp.Response, Opcode: xcmp.OpModelNumber, Result: &result}
	})
	err := c.Ping()
	require.ErrorIs(t, err, ErrOpcodeMismatch)
}

func TestWithMetricsRecordsSuccessfulRequest(t *testing.T) {
	c, _ := newTestClient(func(req xcmp.Message) xcmp.Message {
		return successResponse(req, nil)
	})
	m := metrics.NewCollector("xcmp_client_test")
	c.WithMetrics(m)

	require.NoError(t, c.Ping())
	require.Equal(t, float64(1), testutil.ToFloat64(m.Requests.WithLabelValues("0x0")))
	require.Equal(t, float64(0), testutil.ToFloat64(m.Timeouts))
}

func TestGetSerialNumberTrimsNulPadding(t *testing.T) {
	c, _ := newTestClient(func(req xcmp.Message) xcmp.Message {
		return successResponse(req, []byte("ABC123\x00"))
	})
	got, err := c.GetSerialNumber()
	require.NoError(t, err)
	require.Equal(t, "ABC123", got)
}

func TestSendResultFailureWrapsResultError(t *testing.T) {
	c, _ := newTestClient(func(req xcmp.Message) xcmp.Message {
		result := xcmp.ResultFail
		return xcmp.Message{Type: xcmp.Response, Opcode: req.Opcode, Result: &result}
	})

	err := c.Ping()
	require.ErrorIs(t, err, ErrResultFailure)

	var resultErr *ResultError
	require.ErrorAs(t, err, &resultErr)
	require.Equal(t, xcmp.ResultFail, resultErr.Result)
}

func TestSendUnexpectedReplyType(t *testing.T) {
	c, _ := newTestClient(func(req xcmp.Message) xcmp.Message {
		return xcmp.Message{Type: xcmp.Broadcast, Opcode: req.Opcode}
	})

	err := c.Ping()
	require.ErrorIs(t, err, ErrUnexpectedReplyType)
}

func TestGetSerialNumberFailsOnNonSuccessResult(t *testing.T) {
	c, _ := newTestClient(func(req xcmp.Message) xcmp.Message {
		result := xcmp.ResultFail
		return xcmp.Message{Type: xcmp.Response, Opcode: req.Opcode, Result: &result, Payload: []byte("garbage")}
	})

	_, err := c.GetSerialNumber()
	require.ErrorIs(t, err, ErrResultFailure)
}

// rawTransport is a transport.ByteTransport fake for Write/SendBytes
// tests, which exchange frames that aren't necessarily valid xcmp
// Messages, so it records/replays raw bytes instead of decoding them.
type rawTransport struct {
	connected bool
	sent      [][]byte
	toDeliver [][]byte
}

func (r *rawTransport) Connect(context.Context) error { r.connected = true; return nil }
func (r *rawTransport) Disconnect() error             { r.connected = false; return nil }
func (r *rawTransport) Connected() bool               { return r.connected }

func (r *rawTransport) Send(data []byte) error {
	r.sent = append(r.sent, data)
	return nil
}

func (r *rawTransport) Receive() ([]byte, error) {
	if len(r.toDeliver) == 0 {
		return nil, errExhausted
	}
	b := r.toDeliver[0]
	r.toDeliver = r.toDeliver[1:]
	return b, nil
}

// frameRaw builds a length-prefixed raw frame whose body is exactly body.
func frameRaw(body []byte) []byte {
	out := make([]byte, 0, 2+len(body))
	out = binary.BigEndian.AppendUint16(out, uint16(len(body)))
	out = append(out, body...)
	return out
}

func TestWriteDoesNotWaitForReply(t *testing.T) {
	tr := &rawTransport{connected: true}
	c := New(tr)

	err := c.Write(xcmp.Message{Type: xcmp.Request, Opcode: xcmp.OpPing})
	require.NoError(t, err)
	require.Len(t, tr.sent, 1)
}

func TestWriteBeforeConnectFails(t *testing.T) {
	tr := &rawTransport{}
	c := New(tr)

	err := c.Write(xcmp.Message{Type: xcmp.Request, Opcode: xcmp.OpPing})
	require.ErrorIs(t, err, ErrNotConnected)
}

func TestSendBytesReturnsMatchingReplyFrame(t *testing.T) {
	tr := &rawTransport{connected: true}
	reply := make([]byte, 0, 4)
	reply = binary.BigEndian.AppendUint16(reply, 0x0000+replyMarkerOffset)
	reply = append(reply, 0xAA, 0xBB)
	tr.toDeliver = [][]byte{frameRaw(reply)}

	c := New(tr)
	got, err := c.SendBytes([]byte{0x00, 0x00})
	require.NoError(t, err)
	require.Equal(t, reply, got)
}

func TestSendBytesSkipsNonMatchingFrames(t *testing.T) {
	tr := &rawTransport{connected: true}
	other := append(binary.BigEndian.AppendUint16(nil, 0x0001+replyMarkerOffset), 0x01)
	match := append(binary.BigEndian.AppendUint16(nil, 0x0000+replyMarkerOffset), 0xAA)
	tr.toDeliver = [][]byte{frameRaw(other), frameRaw(match)}

	c := New(tr)
	got, err := c.SendBytes([]byte{0x00, 0x00})
	require.NoError(t, err)
	require.Equal(t, match, got)
}
