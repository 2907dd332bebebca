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

// Package xnl implements the XNL session-layer frame: a fixed 12-byte
// header (opcode, protocol id, rollover/ack flags, addressing, transaction
// id, payload length) plus a variable payload, all big-endian.
package xnl

import (
	"encoding/binary"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Opcode is an opaque 16-bit XNL opcode.
type Opcode uint16

// Control-plane opcodes used by the session state machine in package session.
const (
	OpDeviceMasterQuery    Opcode = 0x0001
	OpMasterStatusBcast    Opcode = 0x0002
	OpDeviceAuthKeyRequest Opcode = 0x0010
	OpDeviceAuthKeyReply   Opcode = 0x0011
	OpDeviceConnRequest    Opcode = 0x0012
	OpDeviceConnReply      Opcode = 0x0013
	OpDataMsg              Opcode = 0x0020
	OpDataMsgAck           Opcode = 0x0021
)

// Protocol identifies what the XNL payload carries.
type Protocol uint8

// Protocol ids.
const (
	ProtocolXNLCtrl Protocol = 0
	ProtocolXCMP    Protocol = 1
)

const headerLen = 12

// Header is the fixed 12-byte XNL frame header.
type Header struct {
	Opcode        Opcode
	Protocol      Protocol
	Rollover      uint8 // 3 bits
	AckNeeded     bool
	Destination   uint16
	Source        uint16
	TransactionID uint16
	PayloadLength uint16
}

// Frame is a decoded XNL frame.
type Frame struct {
	Header
	Payload []byte
}

func packFlags(rollover uint8, ackNeeded bool) byte {
	b := rollover & 0x07
	if ackNeeded {
		b |= 1 << 3
	}
	return b
}

func unpackFlags(b byte) (rollover uint8, ackNeeded bool) {
	return b & 0x07, b&(1<<3) != 0
}

// Encode serialises f to its 12-byte-header-plus-payload wire form.
func Encode(f Frame) []byte {
	out := make([]byte, 0, headerLen+len(f.Payload))
	out = binary.BigEndian.AppendUint16(out, uint16(f.Opcode))
	out = append(out, byte(f.Protocol), packFlags(f.Rollover, f.AckNeeded))
	out = binary.BigEndian.AppendUint16(out, f.Destination)
	out = binary.BigEndian.AppendUint16(out, f.Source)
	out = binary.BigEndian.AppendUint16(out, f.TransactionID)
	out = binary.BigEndian.AppendUint16(out, uint16(len(f.Payload)))
	out = append(out, f.Payload...)
	return out
}

// Decode parses b into a Frame. PayloadLength is authoritative: any bytes
// beyond header(12) + PayloadLength are logged and ignored.
func Decode(b []byte) (Frame, error) {
	if len(b) < headerLen {
		return Frame{}, fmt.Errorf("xnl: short frame (%d bytes, need %d)", len(b), headerLen)
	}

	rollover, ackNeeded := unpackFlags(b[3])
	h := Header{
		Opcode:        Opcode(binary.BigEndian.Uint16(b[0:2])),
		Protocol:      Protocol(b[2]),
		Rollover:      rollover,
		AckNeeded:     ackNeeded,
		Destination:   binary.BigEndian.Uint16(b[4:6]),
		Source:        binary.BigEndian.Uint16(b[6:8]),
		TransactionID: binary.BigEndian.Uint16(b[8:10]),
		PayloadLength: binary.BigEndian.Uint16(b[10:12]),
	}

	end := headerLen + int(h.PayloadLength)
	if len(b) < end {
		return Frame{}, fmt.Errorf("xnl: declared payload length %d exceeds available %d bytes", h.PayloadLength, len(b)-headerLen)
	}
	if len(b) > end {
		log.WithField("extra_bytes", len(b)-end).Debug("xnl: ignoring trailing bytes beyond declared payload length")
	}

	payload := make([]byte, h.PayloadLength)
	copy(payload, b[headerLen:end])

	return Frame{Header: h, Payload: payload}, nil
}
