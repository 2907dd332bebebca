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
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xcmpnet/xcmp/xcmp"
)

func TestDecodeBERFramesGroupsOfFive(t *testing.T) {
	payload := []byte{
		0x00, byte(BERInSync), 0x00, 0x00, 0x0A,
		0x01, byte(BERNoSync), 0x00, 0x00, 0xFF,
	}
	frames, err := decodeBERFrames(payload)
	require.NoError(t, err)
	require.Equal(t, []BERFrame{
		{FrameNumber: 0, SyncStatus: BERInSync, ErrorCount: 10},
		{FrameNumber: 1, SyncStatus: BERNoSync, ErrorCount: 255},
	}, frames)
}

func TestDecodeBERFramesRejectsPartialGroup(t *testing.T) {
	_, err := decodeBERFrames([]byte{0x00, 0x00, 0x00})
	require.Error(t, err)
}

func TestGetP25BERComposesConfigureArmAndReport(t *testing.T) {
	var sawOps []xcmp.Opcode
	var rxPayload, armPayload []byte

	c, _ := newTestClient(func(req xcmp.Message) xcmp.Message {
		sawOps = append(sawOps, req.Opcode)
		switch req.Opcode {
		case xcmp.OpConfigureRxChain:
			rxPayload = req.Payload
			return successResponse(req, nil)
		case xcmp.OpArmBERTest:
			armPayload = req.Payload
			return successResponse(req, nil)
		case xcmp.OpBERSyncReport:
			payload := []byte{
				0x00, byte(BERInSync), 0x00, 0x00, 0x0A, // 10 errors, accepted
				0x01, byte(BERNoSync), 0x00, 0x00, 0xFF, // discarded
				0x02, byte(BERInSync), 0x00, 0x00, 0x06, // 6 errors, accepted
			}
			return successResponse(req, payload)
		}
		return successResponse(req, nil)
	})

	var slept time.Duration
	c.sleep = func(d time.Duration) { slept = d }

	ber, frames, err := c.GetP25BER(RxChainConfig{FrequencyHz: 851_012_500, SpacingHz: 12500}, 3)
	require.NoError(t, err)
	require.Equal(t, []xcmp.Opcode{xcmp.OpConfigureRxChain, xcmp.OpArmBERTest, xcmp.OpBERSyncReport}, sawOps)
	require.Len(t, frames, 3)

	// P25 test pattern flag is the last payload byte of the RX chain config.
	require.Equal(t, byte(1), rxPayload[len(rxPayload)-1])
	// Continuous mode, n=3.
	require.Equal(t, []byte{1, 0x00, 0x03}, armPayload)
	require.Equal(t, 2400*time.Millisecond, slept)

	wantBER := float64(16) / (float64(P25FrameBits) * 3 * 2)
	require.InDelta(t, wantBER, ber, 1e-12)

	require.Equal(t, 1, c.BERStats().Count())
	require.InDelta(t, wantBER, c.BERStats().Mean(), 1e-12)
}

func TestGetP25BERAllFramesDiscardedYieldsZero(t *testing.T) {
	c, _ := newTestClient(func(req xcmp.Message) xcmp.Message {
		if req.Opcode == xcmp.OpBERSyncReport {
			payload := []byte{0x00, byte(BERLost), 0x00, 0x00, 0x0A}
			return successResponse(req, payload)
		}
		return successResponse(req, nil)
	})
	c.sleep = func(time.Duration) {}

	ber, _, err := c.GetP25BER(RxChainConfig{FrequencyHz: 851_012_500}, 1)
	require.NoError(t, err)
	require.Equal(t, float64(0), ber)
}
