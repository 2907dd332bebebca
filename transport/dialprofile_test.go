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

package transport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleProfiles = `
[bench]
device = /dev/ttyUSB0
baud = 57600
peer_port = 3000

[site-a]
device = /dev/ttyS1
baud = 115200
`

func writeProfiles(t *testing.T, contents string) string {
	dir := t.TempDir()
	path := filepath.Join(dir, "dialprofiles.ini")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadDialProfiles(t *testing.T) {
	path := writeProfiles(t, sampleProfiles)
	profiles, err := LoadDialProfiles(path)
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	bench := profiles["bench"]
	require.Equal(t, "/dev/ttyUSB0", bench.Device)
	require.Equal(t, 57600, bench.Baud)
	require.Equal(t, 3000, bench.PeerPort)

	siteA := profiles["site-a"]
	require.Equal(t, "/dev/ttyS1", siteA.Device)
	require.Equal(t, 115200, siteA.Baud)
	require.Equal(t, 2947, siteA.PeerPort, "peer_port defaults to 2947 when omitted")
}

func TestLoadDialProfilesMissingDevice(t *testing.T) {
	path := writeProfiles(t, "[broken]\nbaud = 9600\n")
	_, err := LoadDialProfiles(path)
	require.Error(t, err)
}

func TestDialProfileTransport(t *testing.T) {
	profile := DialProfile{Name: "bench", Device: "/dev/ttyUSB0", Baud: 57600, PeerPort: 3000}
	tr := profile.Transport()
	require.Equal(t, "/dev/ttyUSB0", tr.device)
	require.Equal(t, 57600, tr.baud)
	require.Equal(t, 3000, tr.peerPort)
}
