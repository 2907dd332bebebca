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

package session

import (
	"container/list"

	"github.com/cespare/xxhash"
)

// Dedup tracks the hashes of the most recently seen broadcast payloads so
// Session.Receive can suppress the duplicate deliveries some peers produce
// for unacknowledged XCMP broadcasts (e.g. device-init-status sent
// redundantly across several MASTER_STATUS_BROADCAST cycles).
type Dedup struct {
	capacity int
	order    *list.List
	seen     map[uint64]*list.Element
}

// NewDedup returns a Dedup that remembers up to capacity payload hashes.
func NewDedup(capacity int) *Dedup {
	if capacity <= 0 {
		capacity = 1
	}
	return &Dedup{
		capacity: capacity,
		order:    list.New(),
		seen:     make(map[uint64]*list.Element),
	}
}

// Seen reports whether payload has been seen before, recording it either
// way. The oldest entry is evicted once capacity is exceeded.
func (d *Dedup) Seen(payload []byte) bool {
	h := xxhash.Sum64(payload)

	if el, ok := d.seen[h]; ok {
		d.order.MoveToFront(el)
		return true
	}

	el := d.order.PushFront(h)
	d.seen[h] = el

	if d.order.Len() > d.capacity {
		oldest := d.order.Back()
		if oldest != nil {
			d.order.Remove(oldest)
			delete(d.seen, oldest.Value.(uint64))
		}
	}
	return false
}
