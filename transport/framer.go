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

// Framer accumulates bytes handed back by a ByteTransport's Receive calls
// and extracts exactly one frame at a time. A ByteTransport is only
// required to deliver "at least one full frame's worth" of bytes per
// Receive -- it may return less (a TCP stream read split across packets)
// or more (a second frame arriving back-to-back); Framer is the
// length-prefix framing layered above that callers need to
// supply, generalized from elektrosoftlab's modbus transport's
// leftover-datagram buffering so both the XCMP codec (package client) and
// the XNL codec (package session) can reuse it with their own header shape.
type Framer struct {
	t   ByteTransport
	buf []byte
}

// NewFramer wraps t.
func NewFramer(t ByteTransport) *Framer {
	return &Framer{t: t}
}

// ReadFrame reads from the underlying transport until headerLen bytes are
// available, calls frameLen on those header bytes to learn the total frame
// size, reads until that many bytes are available, and returns exactly
// that many bytes. Anything received beyond the frame is retained for the
// next call.
func (f *Framer) ReadFrame(headerLen int, frameLen func(header []byte) (int, error)) ([]byte, error) {
	for len(f.buf) < headerLen {
		if err := f.fill(); err != nil {
			return nil, err
		}
	}

	total, err := frameLen(f.buf[:headerLen])
	if err != nil {
		return nil, err
	}

	for len(f.buf) < total {
		if err := f.fill(); err != nil {
			return nil, err
		}
	}

	frame := make([]byte, total)
	copy(frame, f.buf[:total])

	remaining := make([]byte, len(f.buf)-total)
	copy(remaining, f.buf[total:])
	f.buf = remaining

	return frame, nil
}

// Reset discards any buffered bytes, used after a framing error so a
// desynced stream doesn't keep misparsing subsequent frames.
func (f *Framer) Reset() {
	f.buf = nil
}

func (f *Framer) fill() error {
	b, err := f.t.Receive()
	if err != nil {
		return err
	}
	f.buf = append(f.buf, b...)
	return nil
}
