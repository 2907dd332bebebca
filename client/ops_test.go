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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xcmpnet/xcmp/xcmp"
)

func TestSetTxFrequencyRoundTrip(t *testing.T) {
	var gotPayload []byte
	c, _ := newTestClient(func(req xcmp.Message) xcmp.Message {
		gotPayload = req.Payload
		return successResponse(req, nil)
	})
	require.NoError(t, c.SetTxFrequency(851_012_500))
	require.Equal(t, []byte{0x0A, 0x21, 0x99, 0x19}, gotPayload)
}

func TestSetTxFrequencyRejectsNonMultiple(t *testing.T) {
	c, _ := newTestClient(func(req xcmp.Message) xcmp.Message { return successResponse(req, nil) })
	err := c.SetTxFrequency(851_012_501)
	require.Error(t, err)
}

func TestKeyupDekey(t *testing.T) {
	var lastOp xcmp.Opcode
	c, _ := newTestClient(func(req xcmp.Message) xcmp.Message {
		lastOp = req.Opcode
		return successResponse(req, nil)
	})
	require.NoError(t, c.Keyup())
	require.Equal(t, xcmp.OpKeyup, lastOp)
	require.NoError(t, c.Dekey())
	require.Equal(t, xcmp.OpDekey, lastOp)
}

func TestSoftpotGetSetValue(t *testing.T) {
	stored := map[xcmp.SoftpotType]uint32{}
	c, _ := newTestClient(func(req xcmp.Message) xcmp.Message {
		msg, err := xcmp.DecodeSoftpot(req.Payload, 2)
		require.NoError(t, err)
		switch msg.Op {
		case xcmp.SoftpotWrite:
			stored[msg.Type] = msg.Values[0]
			payload, err := xcmp.EncodeSoftpot(xcmp.SoftpotMessage{Op: xcmp.SoftpotWrite, Type: msg.Type, Width: 2, Values: msg.Values})
			require.NoError(t, err)
			return successResponse(req, payload)
		case xcmp.SoftpotRead:
			payload, err := xcmp.EncodeSoftpot(xcmp.SoftpotMessage{Op: xcmp.SoftpotRead, Type: msg.Type, Width: 2, Values: []uint32{stored[msg.Type]}})
			require.NoError(t, err)
			return successResponse(req, payload)
		}
		return successResponse(req, nil)
	})

	require.NoError(t, c.SoftpotSetValue(xcmp.SoftpotType(3), 2, 0x1234))
	got, err := c.SoftpotGetValue(xcmp.SoftpotType(3), 2)
	require.NoError(t, err)
	require.Equal(t, uint32(0x1234), got)
}

func TestSoftpotTypeMismatchRejected(t *testing.T) {
	c, _ := newTestClient(func(req xcmp.Message) xcmp.Message {
		payload, err := xcmp.EncodeSoftpot(xcmp.SoftpotMessage{Op: xcmp.SoftpotRead, Type: xcmp.SoftpotType(99), Width: 1, Values: []uint32{1}})
		require.NoError(t, err)
		return successResponse(req, payload)
	})
	_, err := c.SoftpotGetValue(xcmp.SoftpotType(3), 1)
	require.ErrorIs(t, err, ErrSoftpotTypeMismatch)
}

func TestDisplayUpdateAndQuery(t *testing.T) {
	var lastUpdate xcmp.DisplayUpdate
	c, _ := newTestClient(func(req xcmp.Message) xcmp.Message {
		fn, err := xcmp.DisplayFunctionOf(req.Payload)
		require.NoError(t, err)
		switch fn {
		case xcmp.DisplayFuncUpdate:
			u, err := xcmp.DecodeDisplayUpdate(req.Payload)
			require.NoError(t, err)
			lastUpdate = u
			return successResponse(req, nil)
		case xcmp.DisplayFuncQuery:
			payload, err := xcmp.EncodeDisplayUpdate(lastUpdate)
			require.NoError(t, err)
			return successResponse(req, payload)
		}
		return successResponse(req, nil)
	})

	update := xcmp.DisplayUpdate{
		Token:  0x01,
		Region: xcmp.DisplayRegionPrimary,
		ID:     xcmp.DisplayIDPrimary,
		Class:  3,
		Enc:    xcmp.EncodingISO8859_1,
		Text:   "HELLO",
	}
	require.NoError(t, c.SetDisplayText(update))

	got, err := c.QueryDisplayRegion(xcmp.DisplayRegionPrimary, xcmp.DisplayIDPrimary)
	require.NoError(t, err)
	require.Equal(t, "HELLO", got.Text)
}

func TestCloseAndRefreshDisplay(t *testing.T) {
	var ops []xcmp.DisplayFunction
	c, _ := newTestClient(func(req xcmp.Message) xcmp.Message {
		fn, err := xcmp.DisplayFunctionOf(req.Payload)
		require.NoError(t, err)
		ops = append(ops, fn)
		return successResponse(req, nil)
	})
	require.NoError(t, c.CloseDisplay())
	require.NoError(t, c.AllPixelsOn())
	require.NoError(t, c.AllPixelsOff())
	require.NoError(t, c.RefreshDisplay())
	require.Equal(t, []xcmp.DisplayFunction{
		xcmp.DisplayFuncClose,
		xcmp.DisplayFuncAllPixelsOn,
		xcmp.DisplayFuncAllPixelsOff,
		xcmp.DisplayFuncRefresh,
	}, ops)
}

func TestConfigureRxChain(t *testing.T) {
	var payload []byte
	c, _ := newTestClient(func(req xcmp.Message) xcmp.Message {
		payload = req.Payload
		return successResponse(req, nil)
	})
	require.NoError(t, c.ConfigureRxChain(RxChainConfig{FrequencyHz: 851_012_500, SpacingHz: 12500}))
	require.Len(t, payload, 9)
	require.Equal(t, []byte{0x0A, 0x21, 0x99, 0x19}, payload[:4])
	require.Equal(t, byte(0), payload[8])
}

func TestConfigureRxChainP25TestPattern(t *testing.T) {
	var payload []byte
	c, _ := newTestClient(func(req xcmp.Message) xcmp.Message {
		payload = req.Payload
		return successResponse(req, nil)
	})
	require.NoError(t, c.ConfigureRxChain(RxChainConfig{FrequencyHz: 851_012_500, SpacingHz: 12500, P25TestPattern: true}))
	require.Len(t, payload, 9)
	require.Equal(t, byte(1), payload[8])
}
