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
	"fmt"
	"time"

	"github.com/eclesh/welford"

	"github.com/xcmpnet/xcmp/xcmp"
)

// P25FrameBits is the bit width of one P25 frame, the unit P25
// bit-error-rate accounting is expressed over.
const P25FrameBits = 3456

// berGroupLen is the wire width of one sync-report group: frame number,
// sync status, and a 24-bit big-endian error count.
const berGroupLen = 5

// BERSyncStatus is the per-frame synchronization state a sync-report
// group carries.
type BERSyncStatus uint8

// Sync statuses.
const (
	BERInSync BERSyncStatus = 0
	BERNoSync BERSyncStatus = 1
	BERLost   BERSyncStatus = 2
)

func (s BERSyncStatus) String() string {
	switch s {
	case BERInSync:
		return "in-sync"
	case BERNoSync:
		return "no-sync"
	case BERLost:
		return "lost"
	default:
		return fmt.Sprintf("sync-status(%d)", uint8(s))
	}
}

// BERFrame is one decoded group from a P25 BER sync-report payload.
type BERFrame struct {
	FrameNumber uint8
	SyncStatus  BERSyncStatus
	ErrorCount  uint32 // 24-bit count as reported on the wire
}

// decodeBERFrames parses a sync-report payload of N 5-byte groups.
func decodeBERFrames(payload []byte) ([]BERFrame, error) {
	if len(payload)%berGroupLen != 0 {
		return nil, fmt.Errorf("client: BER sync report payload length %d is not a multiple of %d", len(payload), berGroupLen)
	}
	frames := make([]BERFrame, 0, len(payload)/berGroupLen)
	for off := 0; off < len(payload); off += berGroupLen {
		g := payload[off : off+berGroupLen]
		frames = append(frames, BERFrame{
			FrameNumber: g[0],
			SyncStatus:  BERSyncStatus(g[1]),
			ErrorCount:  uint32(g[2])<<16 | uint32(g[3])<<8 | uint32(g[4]),
		})
	}
	return frames, nil
}

// BERStats accumulates a running mean and standard deviation of BER
// measurements with eclesh/welford's streaming algorithm, so a BER sweep
// across several frequencies doesn't need to retain every measurement's
// raw frames in memory, grounded on fbclock/daemon/math.go's
// welford-backed history.
type BERStats struct {
	w *welford.Stats
}

// NewBERStats returns an empty accumulator.
func NewBERStats() *BERStats {
	return &BERStats{w: welford.New()}
}

// Add folds one measurement's overall bit-error-rate into the running
// statistics.
func (b *BERStats) Add(ber float64) {
	b.w.Add(ber)
}

// Mean is the running mean bit-error-rate.
func (b *BERStats) Mean() float64 {
	return b.w.Mean()
}

// Stddev is the running standard deviation of the bit-error-rate.
func (b *BERStats) Stddev() float64 {
	return b.w.Stddev()
}

// Count is the number of measurements folded in so far.
func (b *BERStats) Count() int {
	return b.w.Count()
}

// BERStats returns the client's running BER measurement accumulator, fed
// by every GetP25BER call, lazily created on first use.
func (c *Client) BERStats() *BERStats {
	if c.berStats == nil {
		c.berStats = NewBERStats()
	}
	return c.berStats
}

// armBERContinuous arms the BER test in continuous mode over n frames:
// payload byte 0 selects continuous mode, bytes 1-2 carry n big-endian.
func (c *Client) armBERContinuous(n uint16) error {
	payload := []byte{1, byte(n >> 8), byte(n)}
	_, err := c.request(xcmp.OpArmBERTest, payload)
	return err
}

// readBERSyncReport reads the single sync-report payload covering the
// frames armBERContinuous configured and decodes its 5-byte groups.
func (c *Client) readBERSyncReport() ([]BERFrame, error) {
	resp, err := c.request(xcmp.OpBERSyncReport, nil)
	if err != nil {
		return nil, err
	}
	return decodeBERFrames(resp.Payload)
}

// GetP25BER measures bit-error-rate against the P25 test pattern:
// configure the RX chain for the pattern, arm the BER test in continuous
// mode over n frames, wait 800ms*n for the device to collect the
// measurement, then pull and parse the single resulting sync-report
// payload. Frames reporting no-sync or lost are discarded; BER is
// computed over the accepted frames as
// totalErrors / (P25FrameBits * n * acceptedFrames). The measurement is
// also folded into Client.BERStats() so a sweep across frequencies
// exposes a running mean/variance, not just the latest point estimate.
func (c *Client) GetP25BER(cfg RxChainConfig, n int) (float64, []BERFrame, error) {
	cfg.P25TestPattern = true
	if err := c.ConfigureRxChain(cfg); err != nil {
		return 0, nil, fmt.Errorf("client: configuring rx chain for P25 BER test: %w", err)
	}
	if err := c.armBERContinuous(uint16(n)); err != nil {
		return 0, nil, fmt.Errorf("client: arming P25 BER test: %w", err)
	}

	c.sleep(800 * time.Millisecond * time.Duration(n))

	frames, err := c.readBERSyncReport()
	if err != nil {
		return 0, nil, fmt.Errorf("client: reading P25 BER sync report: %w", err)
	}

	var totalErrors uint64
	var accepted int
	for _, f := range frames {
		if f.SyncStatus == BERNoSync || f.SyncStatus == BERLost {
			continue
		}
		totalErrors += uint64(f.ErrorCount)
		accepted++
	}

	var ber float64
	if accepted > 0 {
		ber = float64(totalErrors) / (float64(P25FrameBits) * float64(n) * float64(accepted))
	}

	c.BERStats().Add(ber)
	return ber, frames, nil
}
