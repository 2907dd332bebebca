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

package xnl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	f := Frame{
		Header: Header{
			Opcode:        OpDataMsg,
			Protocol:      ProtocolXCMP,
			Rollover:      5,
			AckNeeded:     true,
			Destination:   0x1234,
			Source:        0x5678,
			TransactionID: 0xBEEF,
		},
		Payload: []byte{0xDE, 0xAD, 0xBE, 0xEF},
	}
	wire := Encode(f)
	require.Len(t, wire, 12+4)

	back, err := Decode(wire)
	require.NoError(t, err)
	assert.Equal(t, OpDataMsg, back.Opcode)
	assert.Equal(t, ProtocolXCMP, back.Protocol)
	assert.Equal(t, uint8(5), back.Rollover)
	assert.True(t, back.AckNeeded)
	assert.Equal(t, f.Payload, back.Payload)
	assert.Equal(t, wire, Encode(back))
}

func TestZeroLengthPayloadValid(t *testing.T) {
	f := Frame{Header: Header{Opcode: OpDeviceMasterQuery, Protocol: ProtocolXNLCtrl}}
	wire := Encode(f)
	back, err := Decode(wire)
	require.NoError(t, err)
	assert.Empty(t, back.Payload)
}

func TestTrailingBytesIgnored(t *testing.T) {
	f := Frame{Header: Header{Opcode: OpDataMsg, Protocol: ProtocolXCMP}, Payload: []byte{1, 2}}
	wire := append(Encode(f), 0xFF, 0xFF, 0xFF)
	back, err := Decode(wire)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, back.Payload)
}

func TestFramingError(t *testing.T) {
	f := Frame{Header: Header{Opcode: OpDataMsg}, Payload: []byte{1, 2, 3, 4}}
	wire := Encode(f)
	_, err := Decode(wire[:14]) // declared payload length 4, only 2 bytes present
	assert.Error(t, err)
}
