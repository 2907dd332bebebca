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

func TestEncodeDisplayUpdateHello(t *testing.T) {
	u := DisplayUpdate{
		Token:  0xFF,
		Region: DisplayRegionPrimary,
		ID:     DisplayIDPrimary,
		Timer:  0,
		Class:  3,
		Enc:    EncodingISO8859_1,
		Text:   "HELLO",
	}
	want := []byte{0x00, 0xFF, 0x21, 0x00, 0x00, 0x03, 0x00, 0x00, 0x05, 0x48, 0x45, 0x4C, 0x4C, 0x4F}
	got, err := EncodeDisplayUpdate(u)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDisplayTextRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name string
		enc  TextEncoding
		text string
	}{
		{"iso-8859-1", EncodingISO8859_1, "HELLO WORLD"},
		{"ucs-2", EncodingUCS2, "café ß"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			u := DisplayUpdate{
				Token:  1,
				Region: DisplayRegionPrimary,
				ID:     DisplayIDPrimary,
				Timer:  10,
				Class:  1,
				Enc:    tc.enc,
				Text:   tc.text,
			}
			payload, err := EncodeDisplayUpdate(u)
			require.NoError(t, err)

			got, err := DecodeDisplayUpdate(payload)
			require.NoError(t, err)
			assert.Equal(t, tc.text, got.Text)

			textBytes, err := EncodeText(tc.text, tc.enc)
			require.NoError(t, err)
			assert.Len(t, textBytes, int(uint16FromPayload(payload)))
		})
	}
}

// uint16FromPayload pulls the text-length field back out of an encoded
// update/query payload, for use only in this test's self-check.
func uint16FromPayload(payload []byte) uint16 {
	return uint16(payload[7])<<8 | uint16(payload[8])
}

func TestDecodeDisplayUpdateUnknownEncoding(t *testing.T) {
	payload := []byte{byte(DisplayFuncUpdate), 0xFF, 0x21, 0x00, 0x00, 0x03, 0x7F, 0x00, 0x00}
	_, err := DecodeDisplayUpdate(payload)
	assert.ErrorIs(t, err, ErrEncoding)
}

func TestEncodeDisplaySimple(t *testing.T) {
	assert.Equal(t, []byte{byte(DisplayFuncClose), 0xFF}, EncodeDisplaySimple(DisplayFuncClose))
}

func TestTextMeaningfulOnlyForUpdateQuery(t *testing.T) {
	payload := EncodeDisplaySimple(DisplayFuncRefresh)
	_, err := DecodeDisplayUpdate(payload)
	assert.Error(t, err)
}
