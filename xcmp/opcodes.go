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

// Opcode constants used by the operations in package client. The full
// catalogue of radio configuration opcodes (bandwidth, power level,
// modulation, and so on) is out of scope here: only the opcodes this
// module's typed messages and client operations actually touch are named.
const (
	OpPing              Opcode = 0x000
	OpSerialNumber      Opcode = 0x400
	OpModelNumber       Opcode = 0x401
	OpHostSwVersion     Opcode = 0x402
	OpDspSwVersion      Opcode = 0x403
	OpSetTxFrequency    Opcode = 0x500
	OpKeyup             Opcode = 0x501
	OpDekey             Opcode = 0x502
	OpDisplayText       Opcode = 0x600
	OpSoftpot           Opcode = 0x610
	OpDeviceInitStatus  Opcode = 0x700
	OpConfigureRxChain  Opcode = 0x800
	OpArmBERTest        Opcode = 0x801
	OpBERSyncReport     Opcode = 0x802
)
