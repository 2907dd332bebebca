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

// freqStepHz is the quantum a wire frequency value is expressed in.
const freqStepHz = 5

// FrequencyToBytes encodes a frequency in Hz as the big-endian 32-bit value
// the radio expects: hz/5. hz must be an exact multiple of 5.
func FrequencyToBytes(hz uint64) ([]byte, error) {
	if hz%freqStepHz != 0 {
		return nil, fmt.Errorf("xcmp: frequency %d Hz is not a multiple of %d", hz, freqStepHz)
	}
	steps := hz / freqStepHz
	if steps > 0xFFFFFFFF {
		return nil, fmt.Errorf("xcmp: frequency %d Hz out of range", hz)
	}
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, uint32(steps))
	return out, nil
}

// BytesToFrequency is the inverse of FrequencyToBytes.
func BytesToFrequency(b []byte) (uint64, error) {
	if len(b) != 4 {
		return 0, fmt.Errorf("xcmp: frequency field must be 4 bytes, got %d", len(b))
	}
	return uint64(binary.BigEndian.Uint32(b)) * freqStepHz, nil
}
