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

// xcmpctl is an interactive operator CLI for XCMP/XNL radio control
// links: connecting, reading identity, tuning frequencies, keying the
// transmitter, reading and writing softpots, driving the text display,
// and measuring bit-error-rate.
package main

import "github.com/xcmpnet/xcmp/cmd/xcmpctl/cmd"

func main() {
	cmd.Execute()
}
