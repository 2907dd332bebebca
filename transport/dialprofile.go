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
	"fmt"

	"github.com/go-ini/ini"
)

// DialProfile describes one named way of reaching a radio, loaded from an
// INI file so field techs can keep a library of per-site serial/PPP
// settings without touching Go code.
type DialProfile struct {
	Name     string
	Device   string
	Baud     int
	PeerPort int
}

// LoadDialProfiles parses an INI file of [profile-name] sections, each
// with device/baud/peer_port keys, into a name-keyed map of DialProfile.
func LoadDialProfiles(path string) (map[string]DialProfile, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("transport: loading dial profiles %s: %w", path, err)
	}

	profiles := make(map[string]DialProfile)
	for _, sec := range f.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}

		profile := DialProfile{
			Name:     sec.Name(),
			Device:   sec.Key("device").String(),
			PeerPort: 2947,
		}
		if profile.Device == "" {
			return nil, fmt.Errorf("transport: dial profile %s missing device", sec.Name())
		}

		baud, err := sec.Key("baud").Int()
		if err != nil {
			return nil, fmt.Errorf("transport: dial profile %s: %w", sec.Name(), err)
		}
		profile.Baud = baud

		if sec.HasKey("peer_port") {
			port, err := sec.Key("peer_port").Int()
			if err != nil {
				return nil, fmt.Errorf("transport: dial profile %s: %w", sec.Name(), err)
			}
			profile.PeerPort = port
		}

		profiles[sec.Name()] = profile
	}
	return profiles, nil
}

// Transport builds the PPPTransport this profile describes.
func (p DialProfile) Transport() *PPPTransport {
	return NewPPPTransport(p.Device, p.Baud, p.PeerPort)
}
