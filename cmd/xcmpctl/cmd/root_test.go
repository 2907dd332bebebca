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

package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range RootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"ping", "id", "tx-freq", "rx-chain", "key", "softpot", "display", "ber"} {
		require.True(t, names[want], "expected %q to be registered", want)
	}
}

func TestBuildClientRequiresAddrOrConfig(t *testing.T) {
	rootConfigFlag = ""
	rootAddrFlag = ""
	_, err := buildClient(nil)
	require.Error(t, err)
}

func TestBuildRawTransportUnknownKind(t *testing.T) {
	rootTransportFlag = "carrier-pigeon"
	defer func() { rootTransportFlag = "tcp" }()
	_, err := buildRawTransport()
	require.Error(t, err)
}
