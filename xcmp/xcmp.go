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

// Package xcmp implements the XCMP outer control-message framing: a
// length-prefixed, big-endian, request/response/broadcast wire format.
package xcmp

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Type is the XCMP message type carried in the upper nibble of the header byte.
type Type uint8

// Message types.
const (
	Request   Type = 1
	Response  Type = 8
	Broadcast Type = 2
)

func (t Type) String() string {
	switch t {
	case Request:
		return "request"
	case Response:
		return "response"
	case Broadcast:
		return "broadcast"
	default:
		return fmt.Sprintf("type(0x%x)", uint8(t))
	}
}

// Opcode is a 12-bit XCMP opcode.
type Opcode uint16

// Result is the one-byte result code carried by response messages.
type Result uint8

// Result codes.
const (
	ResultSuccess         Result = 0x00
	ResultFail            Result = 0x01
	ResultUnsupported     Result = 0x02
	ResultInvalidParam    Result = 0x03
	ResultNotReady        Result = 0x04
	ResultInternalFailure Result = 0xFF
)

func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultFail:
		return "fail"
	case ResultUnsupported:
		return "unsupported"
	case ResultInvalidParam:
		return "invalid-param"
	case ResultNotReady:
		return "not-ready"
	case ResultInternalFailure:
		return "internal-failure"
	default:
		return fmt.Sprintf("result(0x%x)", uint8(r))
	}
}

// ErrFraming is returned when the declared XCMP frame length disagrees with
// the number of payload bytes actually available.
var ErrFraming = errors.New("xcmp: framing error")

const (
	headerLen       = 2 // header byte + opcode-low byte
	lengthPrefixLen = 2
)

// Message is a decoded XCMP frame: an owned value, not a live view over the
// wire buffer. Construct one, mutate it, then Encode it -- never the other
// way around.
type Message struct {
	Type    Type
	Opcode  Opcode
	Result  *Result // non-nil only for Type == Response
	Payload []byte
}

// packHeader combines a message type and opcode into the two-byte XCMP
// header as laid out on the wire.
func packHeader(t Type, op Opcode) uint16 {
	return uint16(t)<<12 | uint16(op&0x0FFF)
}

// unpackHeader is the inverse of packHeader.
func unpackHeader(h uint16) (Type, Opcode) {
	return Type(h >> 12), Opcode(h & 0x0FFF)
}

// Encode serialises m to its wire form.
func Encode(m Message) []byte {
	header := packHeader(m.Type, m.Opcode)

	bodyLen := headerLen + len(m.Payload)
	if m.Result != nil {
		bodyLen++
	}

	out := make([]byte, 0, lengthPrefixLen+bodyLen)
	out = binary.BigEndian.AppendUint16(out, uint16(bodyLen))
	out = binary.BigEndian.AppendUint16(out, header)
	if m.Result != nil {
		out = append(out, byte(*m.Result))
	}
	out = append(out, m.Payload...)
	return out
}

// Decode parses b into a Message, validating the declared frame length
// against the number of bytes actually supplied.
func Decode(b []byte) (Message, error) {
	if len(b) < lengthPrefixLen+headerLen {
		return Message{}, fmt.Errorf("xcmp: short frame (%d bytes): %w", len(b), ErrFraming)
	}

	declared := int(binary.BigEndian.Uint16(b[0:2]))
	available := len(b) - lengthPrefixLen
	if declared != available {
		return Message{}, fmt.Errorf("xcmp: declared length %d, got %d: %w", declared, available, ErrFraming)
	}

	header := binary.BigEndian.Uint16(b[2:4])
	typ, op := unpackHeader(header)

	rest := b[4:]
	var result *Result
	if typ == Response {
		if len(rest) < 1 {
			return Message{}, fmt.Errorf("xcmp: response missing result byte: %w", ErrFraming)
		}
		r := Result(rest[0])
		result = &r
		rest = rest[1:]
	}

	payload := make([]byte, len(rest))
	copy(payload, rest)

	return Message{
		Type:    typ,
		Opcode:  op,
		Result:  result,
		Payload: payload,
	}, nil
}
