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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSoftpotRoundTrip(t *testing.T) {
	for _, width := range []int{1, 2, 4} {
		m := SoftpotMessage{
			Op:     SoftpotRead,
			Type:   7,
			Width:  width,
			Values: []uint32{0, 1, 0xABCD1234 & (1<<(8*width) - 1)},
		}
		wire, err := EncodeSoftpot(m)
		require.NoError(t, err)

		back, err := DecodeSoftpot(wire, width)
		require.NoError(t, err)
		assert.Equal(t, m.Type, back.Type)
		assert.Equal(t, m.Values, back.Values)

		rewire, err := EncodeSoftpot(back)
		require.NoError(t, err)
		assert.Equal(t, wire, rewire)
	}
}

func TestSoftpotUnsupportedWidth(t *testing.T) {
	_, err := EncodeSoftpot(SoftpotMessage{Op: SoftpotRead, Type: 1, Width: 3, Values: []uint32{1}})
	assert.ErrorIs(t, err, ErrUnsupportedWidth)

	_, err = DecodeSoftpot([]byte{0, 1, 2, 3}, 3)
	assert.ErrorIs(t, err, ErrUnsupportedWidth)
}

func TestSoftpotTypeEcho(t *testing.T) {
	req := SoftpotMessage{Op: SoftpotRead, Type: 42, Width: 2}
	reqBytes, err := EncodeSoftpot(req)
	require.NoError(t, err)

	resp, err := DecodeSoftpot(append(reqBytes, 0x10, 0x00), 2)
	require.NoError(t, err)
	assert.Equal(t, req.Type, resp.Type)
}
