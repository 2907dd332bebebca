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
	"bytes"
	"fmt"

	"github.com/xcmpnet/xcmp/xcmp"
)

// Ping round-trips OpPing, confirming the transport and peer are alive.
func (c *Client) Ping() error {
	_, err := c.request(xcmp.OpPing, nil)
	return err
}

// GetSerialNumber reads the device's serial number string.
func (c *Client) GetSerialNumber() (string, error) {
	return c.readIdentityString(xcmp.OpSerialNumber)
}

// GetModelNumber reads the device's model number string.
func (c *Client) GetModelNumber() (string, error) {
	return c.readIdentityString(xcmp.OpModelNumber)
}

// GetHostSwVersion reads the host microcontroller's software version string.
func (c *Client) GetHostSwVersion() (string, error) {
	return c.readIdentityString(xcmp.OpHostSwVersion)
}

// GetDspSwVersion reads the DSP's software version string.
func (c *Client) GetDspSwVersion() (string, error) {
	return c.readIdentityString(xcmp.OpDspSwVersion)
}

func (c *Client) readIdentityString(op xcmp.Opcode) (string, error) {
	resp, err := c.request(op, nil)
	if err != nil {
		return "", err
	}
	return string(bytes.TrimRight(resp.Payload, "\x00")), nil
}

// SetTxFrequency tunes the transmit chain to hz, which must be a multiple
// of 5 Hz (the protocol's frequency step).
func (c *Client) SetTxFrequency(hz uint64) error {
	payload, err := xcmp.FrequencyToBytes(hz)
	if err != nil {
		return fmt.Errorf("client: set tx frequency: %w", err)
	}
	_, err = c.request(xcmp.OpSetTxFrequency, payload)
	return err
}

// Keyup keys the transmitter.
func (c *Client) Keyup() error {
	_, err := c.request(xcmp.OpKeyup, nil)
	return err
}

// Dekey releases the transmitter.
func (c *Client) Dekey() error {
	_, err := c.request(xcmp.OpDekey, nil)
	return err
}

// RxChainConfig describes the RX-side parameters OpConfigureRxChain
// accepts: a receive frequency and a channel spacing in Hz, both
// protocol-native multiples of the frequency step, plus whether the
// chain should lock onto the P25 bit-error-rate test pattern instead of
// demodulating normally.
type RxChainConfig struct {
	FrequencyHz    uint64
	SpacingHz      uint32
	P25TestPattern bool
}

// ConfigureRxChain applies an RX chain configuration.
func (c *Client) ConfigureRxChain(cfg RxChainConfig) error {
	freqBytes, err := xcmp.FrequencyToBytes(cfg.FrequencyHz)
	if err != nil {
		return fmt.Errorf("client: configure rx chain: %w", err)
	}
	payload := append(freqBytes, byte(cfg.SpacingHz>>24), byte(cfg.SpacingHz>>16), byte(cfg.SpacingHz>>8), byte(cfg.SpacingHz))
	pattern := byte(0)
	if cfg.P25TestPattern {
		pattern = 1
	}
	payload = append(payload, pattern)
	_, err = c.request(xcmp.OpConfigureRxChain, payload)
	return err
}

// SetDisplayText pushes text to a display region/id, per the Update
// variant of the display-text message.
func (c *Client) SetDisplayText(u xcmp.DisplayUpdate) error {
	payload, err := xcmp.EncodeDisplayUpdate(u)
	if err != nil {
		return fmt.Errorf("client: encoding display update: %w", err)
	}
	_, err = c.request(xcmp.OpDisplayText, payload)
	return err
}

// QueryDisplayRegion asks the device what is currently shown in a region
// and returns the decoded response (which arrives as an Update-shaped
// payload).
func (c *Client) QueryDisplayRegion(region xcmp.DisplayRegion, id xcmp.DisplayID) (xcmp.DisplayUpdate, error) {
	q := xcmp.DisplayQuery{Token: 0x01, Region: region, ID: id}
	resp, err := c.request(xcmp.OpDisplayText, xcmp.EncodeDisplayQuery(q))
	if err != nil {
		return xcmp.DisplayUpdate{}, err
	}
	return xcmp.DecodeDisplayUpdate(resp.Payload)
}

// CloseDisplay clears whichever region is currently active; the close
// function carries no region/id of its own.
func (c *Client) CloseDisplay() error {
	_, err := c.request(xcmp.OpDisplayText, xcmp.EncodeDisplaySimple(xcmp.DisplayFuncClose))
	return err
}

// AllPixelsOn lights every pixel on the display, a manufacturing/bench
// test aid.
func (c *Client) AllPixelsOn() error {
	_, err := c.request(xcmp.OpDisplayText, xcmp.EncodeDisplaySimple(xcmp.DisplayFuncAllPixelsOn))
	return err
}

// AllPixelsOff clears every pixel on the display.
func (c *Client) AllPixelsOff() error {
	_, err := c.request(xcmp.OpDisplayText, xcmp.EncodeDisplaySimple(xcmp.DisplayFuncAllPixelsOff))
	return err
}

// RefreshDisplay forces the device to redraw its current contents.
func (c *Client) RefreshDisplay() error {
	_, err := c.request(xcmp.OpDisplayText, xcmp.EncodeDisplaySimple(xcmp.DisplayFuncRefresh))
	return err
}

// SoftpotGetValue reads the current value of a softpot parameter.
func (c *Client) SoftpotGetValue(typ xcmp.SoftpotType, width int) (uint32, error) {
	msg, err := c.softpotRoundTrip(xcmp.SoftpotMessage{Op: xcmp.SoftpotRead, Type: typ, Width: width})
	if err != nil {
		return 0, err
	}
	if len(msg.Values) != 1 {
		return 0, fmt.Errorf("client: softpot read returned %d values, want 1", len(msg.Values))
	}
	return msg.Values[0], nil
}

// SoftpotSetValue writes a softpot parameter's value.
func (c *Client) SoftpotSetValue(typ xcmp.SoftpotType, width int, value uint32) error {
	_, err := c.softpotRoundTrip(xcmp.SoftpotMessage{Op: xcmp.SoftpotWrite, Type: typ, Width: width, Values: []uint32{value}})
	return err
}

// SoftpotGetMin reads a softpot's minimum calibratable value.
func (c *Client) SoftpotGetMin(typ xcmp.SoftpotType, width int) (uint32, error) {
	msg, err := c.softpotRoundTrip(xcmp.SoftpotMessage{Op: xcmp.SoftpotReadMin, Type: typ, Width: width})
	if err != nil {
		return 0, err
	}
	if len(msg.Values) != 1 {
		return 0, fmt.Errorf("client: softpot read-min returned %d values, want 1", len(msg.Values))
	}
	return msg.Values[0], nil
}

// SoftpotGetMax reads a softpot's maximum calibratable value.
func (c *Client) SoftpotGetMax(typ xcmp.SoftpotType, width int) (uint32, error) {
	msg, err := c.softpotRoundTrip(xcmp.SoftpotMessage{Op: xcmp.SoftpotReadMax, Type: typ, Width: width})
	if err != nil {
		return 0, err
	}
	if len(msg.Values) != 1 {
		return 0, fmt.Errorf("client: softpot read-max returned %d values, want 1", len(msg.Values))
	}
	return msg.Values[0], nil
}

// SoftpotGetAll reads every softpot value of a given type.
func (c *Client) SoftpotGetAll(typ xcmp.SoftpotType, width int) ([]uint32, error) {
	msg, err := c.softpotRoundTrip(xcmp.SoftpotMessage{Op: xcmp.SoftpotReadAll, Type: typ, Width: width})
	if err != nil {
		return nil, err
	}
	return msg.Values, nil
}

// softpotRoundTrip sends req and validates that the response echoes req's
// softpot type.
func (c *Client) softpotRoundTrip(req xcmp.SoftpotMessage) (xcmp.SoftpotMessage, error) {
	payload, err := xcmp.EncodeSoftpot(req)
	if err != nil {
		return xcmp.SoftpotMessage{}, fmt.Errorf("client: encoding softpot request: %w", err)
	}

	resp, err := c.request(xcmp.OpSoftpot, payload)
	if err != nil {
		return xcmp.SoftpotMessage{}, err
	}

	decoded, err := xcmp.DecodeSoftpot(resp.Payload, req.Width)
	if err != nil {
		return xcmp.SoftpotMessage{}, fmt.Errorf("client: decoding softpot response: %w", err)
	}
	if decoded.Type != req.Type {
		return xcmp.SoftpotMessage{}, fmt.Errorf("client: softpot response type %d does not echo request type %d: %w", decoded.Type, req.Type, ErrSoftpotTypeMismatch)
	}
	return decoded, nil
}
