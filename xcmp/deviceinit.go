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
	"fmt"
)

// InitType distinguishes the phases of the device-init-status broadcast.
type InitType uint8

// Init types.
const (
	InitStatus   InitType = 0
	InitComplete InitType = 1
	StatusUpdate InitType = 2
)

// DeviceStatusFatal is set when the high bit of DeviceInitStatus.Status is set.
const DeviceStatusFatal uint16 = 1 << 15

// Attribute is one (id, value) pair reported in a device-init-status
// broadcast. Each entry is a two-byte pair on the wire, so both fields are
// single bytes.
type Attribute struct {
	ID    uint8
	Value uint8
}

// DeviceInitStatus is the decoded payload of a device-init-status broadcast.
type DeviceInitStatus struct {
	ProtocolVersion uint32
	InitType        InitType
	DeviceType      uint8
	Status          uint16
	Attributes      []Attribute
}

// Fatal reports whether the MSB of Status is set.
func (d DeviceInitStatus) Fatal() bool {
	return d.Status&DeviceStatusFatal != 0
}

// EncodeDeviceInitStatus serialises d to its broadcast payload form.
func EncodeDeviceInitStatus(d DeviceInitStatus) []byte {
	out := make([]byte, 0, 10+len(d.Attributes)*2)
	out = binary.BigEndian.AppendUint32(out, d.ProtocolVersion)
	out = append(out, byte(d.InitType), d.DeviceType)
	out = binary.BigEndian.AppendUint16(out, d.Status)
	out = append(out, byte(len(d.Attributes)), 0 /* reserved */)
	for _, a := range d.Attributes {
		out = append(out, a.ID, a.Value)
	}
	return out
}

// DecodeDeviceInitStatus parses a device-init-status broadcast payload.
// AttributeLen counts entries, not bytes, so the span consumed is
// 2 * attrLen bytes.
func DecodeDeviceInitStatus(payload []byte) (DeviceInitStatus, error) {
	if len(payload) < 10 {
		return DeviceInitStatus{}, fmt.Errorf("xcmp: device-init-status payload too short (%d bytes)", len(payload))
	}
	version := binary.BigEndian.Uint32(payload[0:4])
	initType := InitType(payload[4])
	deviceType := payload[5]
	status := binary.BigEndian.Uint16(payload[6:8])
	attrLen := int(payload[8])
	// payload[9] is reserved.

	pairsStart := 10
	pairsEnd := pairsStart + attrLen*2
	if len(payload) < pairsEnd {
		return DeviceInitStatus{}, fmt.Errorf("xcmp: device-init-status declares %d attributes but payload is %d bytes", attrLen, len(payload))
	}

	attrs := make([]Attribute, attrLen)
	for i := 0; i < attrLen; i++ {
		off := pairsStart + i*2
		attrs[i] = Attribute{
			ID:    payload[off],
			Value: payload[off+1],
		}
	}

	return DeviceInitStatus{
		ProtocolVersion: version,
		InitType:        initType,
		DeviceType:      deviceType,
		Status:          status,
		Attributes:      attrs,
	}, nil
}
