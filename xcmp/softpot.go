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

package xcmp

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// SoftpotOp selects the softpot operation carried by a SoftpotMessage.
type SoftpotOp uint8

// Softpot operations.
const (
	SoftpotRead         SoftpotOp = 0
	SoftpotWrite        SoftpotOp = 1
	SoftpotUpdate       SoftpotOp = 2
	SoftpotReadMin      SoftpotOp = 3
	SoftpotReadMax      SoftpotOp = 4
	SoftpotReadAll      SoftpotOp = 5
	SoftpotReadAllFreq  SoftpotOp = 6
)

// SoftpotType identifies the calibration parameter a SoftpotMessage addresses.
type SoftpotType uint8

// ErrUnsupportedWidth is returned when a softpot value's declared byte width
// is not 1, 2, or 4.
var ErrUnsupportedWidth = errors.New("xcmp: unsupported softpot value width")

// SoftpotMessage is a decoded softpot read/write payload. Values holds one
// entry for single-value operations and more than one for the read-all
// variants; the wire width of each value is Width bytes, little-endian.
type SoftpotMessage struct {
	Op     SoftpotOp
	Type   SoftpotType
	Width  int
	Values []uint32
}

func validWidth(w int) bool {
	return w == 1 || w == 2 || w == 4
}

// valueToBytes encodes a single softpot value in width bytes, little-endian.
func valueToBytes(v uint32, width int) ([]byte, error) {
	if !validWidth(width) {
		return nil, fmt.Errorf("xcmp: width %d: %w", width, ErrUnsupportedWidth)
	}
	out := make([]byte, width)
	switch width {
	case 1:
		out[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(out, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(out, v)
	}
	return out, nil
}

func bytesToValue(b []byte) uint32 {
	switch len(b) {
	case 1:
		return uint32(b[0])
	case 2:
		return uint32(binary.LittleEndian.Uint16(b))
	case 4:
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

// EncodeSoftpot serialises m to its XCMP payload form.
func EncodeSoftpot(m SoftpotMessage) ([]byte, error) {
	if !validWidth(m.Width) {
		return nil, fmt.Errorf("xcmp: width %d: %w", m.Width, ErrUnsupportedWidth)
	}
	out := []byte{byte(m.Op), byte(m.Type)}
	for _, v := range m.Values {
		b, err := valueToBytes(v, m.Width)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// DecodeSoftpot parses a softpot payload. width is the caller's expectation
// for the value width in this exchange (the wire format does not self-describe
// it beyond the overall payload length, so the caller -- which issued the
// matching request -- supplies it).
func DecodeSoftpot(payload []byte, width int) (SoftpotMessage, error) {
	if !validWidth(width) {
		return SoftpotMessage{}, fmt.Errorf("xcmp: width %d: %w", width, ErrUnsupportedWidth)
	}
	if len(payload) < 2 {
		return SoftpotMessage{}, fmt.Errorf("xcmp: softpot payload too short (%d bytes)", len(payload))
	}
	op := SoftpotOp(payload[0])
	typ := SoftpotType(payload[1])
	rest := payload[2:]
	if len(rest)%width != 0 {
		return SoftpotMessage{}, fmt.Errorf("xcmp: softpot value span %d not a multiple of width %d", len(rest), width)
	}
	n := len(rest) / width
	values := make([]uint32, n)
	for i := 0; i < n; i++ {
		values[i] = bytesToValue(rest[i*width : (i+1)*width])
	}
	return SoftpotMessage{Op: op, Type: typ, Width: width, Values: values}, nil
}
