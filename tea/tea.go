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

// Package tea implements the 32-round TEA-family block cipher used to
// compute the authentication response during XNL session setup. This
// exists purely for interoperability with a fielded peer; no cryptographic
// strength claim is made or implied.
package tea

import "encoding/binary"

// Rounds is the fixed round count the wire peer expects.
const Rounds = 32

// Key is the four 32-bit key words used by the cipher.
type Key [4]uint32

// Encrypt runs the 32-round TEA-family construction over
// a 64-bit block expressed as two 32-bit halves. All arithmetic is unsigned
// 32-bit with wraparound, which Go's uint32 gives natively.
func Encrypt(lo, hi uint32, key Key, delta uint32) (uint32, uint32) {
	var sum uint32
	for i := 0; i < Rounds; i++ {
		sum += delta
		lo += ((hi << 4) + key[0]) ^ (hi + sum) ^ ((hi >> 5) + key[1])
		hi += ((lo << 4) + key[2]) ^ (lo + sum) ^ ((lo >> 5) + key[3])
	}
	return lo, hi
}

// EncryptBlock encrypts an 8-byte big-endian (lo, hi) plaintext block and
// returns the 8-byte big-endian ciphertext, the convenience form package
// session uses over the challenge it receives from the master.
func EncryptBlock(plaintext [8]byte, key Key, delta uint32) [8]byte {
	lo := binary.BigEndian.Uint32(plaintext[0:4])
	hi := binary.BigEndian.Uint32(plaintext[4:8])

	outLo, outHi := Encrypt(lo, hi, key, delta)

	var out [8]byte
	binary.BigEndian.PutUint32(out[0:4], outLo)
	binary.BigEndian.PutUint32(out[4:8], outHi)
	return out
}
