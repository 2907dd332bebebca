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

	version "github.com/hashicorp/go-version"
	log "github.com/sirupsen/logrus"

	"github.com/xcmpnet/xcmp/xcmp"
)

// ErrProtocolTooOld is returned when a device-init-status broadcast
// declares a protocol version below the client's configured minimum.
var ErrProtocolTooOld = fmt.Errorf("client: device protocol version below minimum supported")

// protocolVersion turns device-init-status's packed 32-bit protocol
// version field into a dotted version string go-version can parse:
// major.minor.patch, each one byte of the 32-bit value.
func protocolVersion(raw uint32) (*version.Version, error) {
	major := (raw >> 16) & 0xFF
	minor := (raw >> 8) & 0xFF
	patch := raw & 0xFF
	return version.NewVersion(fmt.Sprintf("%d.%d.%d", major, minor, patch))
}

// CheckProtocolVersion compares a decoded device-init-status broadcast's
// protocol version against min (e.g. "2.1.0"), returning ErrProtocolTooOld
// if the device is older.
func CheckProtocolVersion(status xcmp.DeviceInitStatus, min string) error {
	minVersion, err := version.NewVersion(min)
	if err != nil {
		return fmt.Errorf("client: parsing minimum protocol version %q: %w", min, err)
	}

	devVersion, err := protocolVersion(status.ProtocolVersion)
	if err != nil {
		return fmt.Errorf("client: parsing device protocol version: %w", err)
	}

	if devVersion.LessThan(minVersion) {
		log.WithFields(log.Fields{"device_version": devVersion, "min_version": minVersion}).Warn("device protocol version below minimum")
		return fmt.Errorf("device reports protocol %s, need at least %s: %w", devVersion, minVersion, ErrProtocolTooOld)
	}
	return nil
}
