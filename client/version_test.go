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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xcmpnet/xcmp/xcmp"
)

func TestCheckProtocolVersionSatisfied(t *testing.T) {
	status := xcmp.DeviceInitStatus{ProtocolVersion: 0x00020105} // 2.1.5
	require.NoError(t, CheckProtocolVersion(status, "2.0.0"))
}

func TestCheckProtocolVersionTooOld(t *testing.T) {
	status := xcmp.DeviceInitStatus{ProtocolVersion: 0x00010000} // 1.0.0
	err := CheckProtocolVersion(status, "2.0.0")
	require.ErrorIs(t, err, ErrProtocolTooOld)
}
