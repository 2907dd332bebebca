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
	"unicode/utf16"
)

// DisplayFunction selects which display operation a DisplayMessage carries.
type DisplayFunction uint8

// Display functions.
const (
	DisplayFuncUpdate         DisplayFunction = 0
	DisplayFuncQuery          DisplayFunction = 1
	DisplayFuncClose          DisplayFunction = 2
	DisplayFuncAllPixelsOn    DisplayFunction = 3
	DisplayFuncAllPixelsOff   DisplayFunction = 4
	DisplayFuncRefresh        DisplayFunction = 5
	noToken                   byte            = 0xFF
	timerDefault              uint16          = 0xFF
)

// DisplayRegion identifies a logical text zone (low 5 bits of the region byte).
type DisplayRegion uint8

// Common display regions.
const (
	DisplayRegionPrimary   DisplayRegion = 1
	DisplayRegionSecondary DisplayRegion = 2
)

// DisplayID identifies which physical display the region belongs to (high 3 bits).
type DisplayID uint8

// Common display ids.
const (
	DisplayIDPrimary   DisplayID = 1
	DisplayIDSecondary DisplayID = 2
)

// TextEncoding selects how DisplayUpdate.Text is encoded on the wire.
type TextEncoding uint8

// Text encodings.
const (
	EncodingISO8859_1 TextEncoding = 0
	EncodingUCS2      TextEncoding = 1
)

// ErrEncoding is returned when a display message declares an unsupported text encoding.
var ErrEncoding = errors.New("xcmp: unsupported display text encoding")

// EncodeText encodes s per the declared encoding.
func EncodeText(s string, enc TextEncoding) ([]byte, error) {
	switch enc {
	case EncodingISO8859_1:
		out := make([]byte, 0, len(s))
		for _, r := range s {
			if r > 0xFF {
				return nil, fmt.Errorf("xcmp: rune %q out of ISO-8859-1 range: %w", r, ErrEncoding)
			}
			out = append(out, byte(r))
		}
		return out, nil
	case EncodingUCS2:
		units := utf16.Encode([]rune(s))
		out := make([]byte, 0, len(units)*2)
		for _, u := range units {
			out = binary.BigEndian.AppendUint16(out, u)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("xcmp: encoding 0x%x: %w", enc, ErrEncoding)
	}
}

// DecodeText is the inverse of EncodeText.
func DecodeText(b []byte, enc TextEncoding) (string, error) {
	switch enc {
	case EncodingISO8859_1:
		out := make([]rune, len(b))
		for i, c := range b {
			out[i] = rune(c)
		}
		return string(out), nil
	case EncodingUCS2:
		if len(b)%2 != 0 {
			return "", fmt.Errorf("xcmp: odd UCS-2 byte length %d: %w", len(b), ErrEncoding)
		}
		units := make([]uint16, len(b)/2)
		for i := range units {
			units[i] = binary.BigEndian.Uint16(b[i*2 : i*2+2])
		}
		return string(utf16.Decode(units)), nil
	default:
		return "", fmt.Errorf("xcmp: encoding 0x%x: %w", enc, ErrEncoding)
	}
}

// MessageClass is the display update/query priority, 1 (highest) through 5.
type MessageClass uint8

// DisplayUpdate requests the device show or replace text in a region.
type DisplayUpdate struct {
	Token   byte
	Region  DisplayRegion
	ID      DisplayID
	Timer   uint16 // 0 = permanent, 0xFF = default, else value*500ms
	Class   MessageClass
	Enc     TextEncoding
	Text    string
}

// DisplayQuery asks the device to report the current contents of a region.
type DisplayQuery struct {
	Token  byte
	Region DisplayRegion
	ID     DisplayID
}

// DisplayClose, DisplayAllPixelsOn, DisplayAllPixelsOff and DisplayRefresh
// carry no fields beyond the function selector itself.
type (
	DisplayClose        struct{}
	DisplayAllPixelsOn  struct{}
	DisplayAllPixelsOff struct{}
	DisplayRefresh      struct{}
)

func packRegionID(r DisplayRegion, id DisplayID) byte {
	return byte(r&0x1F) | byte(id&0x07)<<5
}

func unpackRegionID(b byte) (DisplayRegion, DisplayID) {
	return DisplayRegion(b & 0x1F), DisplayID(b >> 5 & 0x07)
}

// EncodeDisplayUpdate encodes a DisplayMessage payload for the update function.
func EncodeDisplayUpdate(u DisplayUpdate) ([]byte, error) {
	text, err := EncodeText(u.Text, u.Enc)
	if err != nil {
		return nil, err
	}
	out := []byte{byte(DisplayFuncUpdate), u.Token, packRegionID(u.Region, u.ID)}
	out = binary.BigEndian.AppendUint16(out, u.Timer)
	out = append(out, byte(u.Class), byte(u.Enc))
	out = binary.BigEndian.AppendUint16(out, uint16(len(text)))
	out = append(out, text...)
	return out, nil
}

// EncodeDisplayQuery encodes a DisplayMessage payload for the query function.
func EncodeDisplayQuery(q DisplayQuery) []byte {
	return []byte{byte(DisplayFuncQuery), q.Token, packRegionID(q.Region, q.ID)}
}

// EncodeDisplaySimple encodes the token-only display functions (close,
// all-pixels-on/off, refresh).
func EncodeDisplaySimple(fn DisplayFunction) []byte {
	return []byte{byte(fn), noToken}
}

// DecodeDisplayUpdate parses a display payload produced for the update or
// query function back into a DisplayUpdate. Only update/query payloads
// carry the timer/class/encoding/text fields; calling this on a Close,
// AllPixelsOn/Off or Refresh payload is a programmer error and returns an error.
func DecodeDisplayUpdate(payload []byte) (DisplayUpdate, error) {
	if len(payload) < 9 {
		return DisplayUpdate{}, fmt.Errorf("xcmp: display update/query payload too short (%d bytes)", len(payload))
	}
	fn := DisplayFunction(payload[0])
	if fn != DisplayFuncUpdate && fn != DisplayFuncQuery {
		return DisplayUpdate{}, fmt.Errorf("xcmp: text is only meaningful for update/query, got function 0x%x", fn)
	}
	token := payload[1]
	region, id := unpackRegionID(payload[2])
	timer := binary.BigEndian.Uint16(payload[3:5])
	class := MessageClass(payload[5])
	enc := TextEncoding(payload[6])
	textLen := int(binary.BigEndian.Uint16(payload[7:9]))
	if len(payload) < 9+textLen {
		return DisplayUpdate{}, fmt.Errorf("xcmp: display text length %d exceeds payload", textLen)
	}
	text, err := DecodeText(payload[9:9+textLen], enc)
	if err != nil {
		return DisplayUpdate{}, err
	}
	return DisplayUpdate{
		Token:  token,
		Region: region,
		ID:     id,
		Timer:  timer,
		Class:  class,
		Enc:    enc,
		Text:   text,
	}, nil
}

// DisplayFunctionOf reports which function a display payload was built for,
// without fully decoding the update/query fields.
func DisplayFunctionOf(payload []byte) (DisplayFunction, error) {
	if len(payload) < 1 {
		return 0, errors.New("xcmp: empty display payload")
	}
	return DisplayFunction(payload[0]), nil
}
