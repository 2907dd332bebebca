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
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"

	"github.com/xcmpnet/xcmp/session"
	"github.com/xcmpnet/xcmp/tea"
	"github.com/xcmpnet/xcmp/transport"
)

// TransportConfig selects and parameterises one of the three ByteTransport
// variants.
type TransportConfig struct {
	Kind           string `yaml:"kind"` // "tcp", "udp", or "ppp"
	Addr           string `yaml:"addr"`
	SerialDevice   string `yaml:"serial_device"`
	SerialBaud     int    `yaml:"serial_baud"`
	PeerPort       int    `yaml:"peer_port"`
	BindInterface  string `yaml:"bind_interface"`
	ReceiveTimeout time.Duration `yaml:"receive_timeout"`
}

// SessionConfig enables and parameterises the XNL session layer over the
// transport above. A nil *SessionConfig in Config means talk XCMP
// unauthenticated directly over the raw transport.
type SessionConfig struct {
	KeyWords [4]uint32 `yaml:"key_words"`
	Delta    uint32    `yaml:"delta"`
}

// Key returns the TEA key material this session config describes.
func (s SessionConfig) Key() tea.Key {
	return tea.Key(s.KeyWords)
}

// Config is the top-level configuration for an XcmpClient: how to reach
// the radio, and whether to authenticate an XNL session atop that
// transport first.
type Config struct {
	Transport        TransportConfig `yaml:"transport"`
	Session          *SessionConfig  `yaml:"session"`
	MinProtocolVersion string        `yaml:"min_protocol_version"`
}

// ReadConfig reads and parses a client configuration file.
func ReadConfig(path string) (*Config, error) {
	c := &Config{
		Transport: TransportConfig{
			ReceiveTimeout: time.Second,
			PeerPort:       2947,
		},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, err
	}

	return c, nil
}

// buildTransport constructs the raw ByteTransport the config describes.
func (c *Config) buildTransport() (transport.ByteTransport, error) {
	switch c.Transport.Kind {
	case "tcp":
		return transport.NewTCPTransport(c.Transport.Addr).WithReceiveTimeout(c.Transport.ReceiveTimeout), nil
	case "udp":
		udp := transport.NewUDPTransport(c.Transport.Addr).WithReceiveTimeout(c.Transport.ReceiveTimeout)
		if c.Transport.BindInterface != "" {
			udp = udp.WithBindInterface(c.Transport.BindInterface)
		}
		return udp, nil
	case "ppp":
		return transport.NewPPPTransport(c.Transport.SerialDevice, c.Transport.SerialBaud, c.Transport.PeerPort), nil
	default:
		return nil, fmt.Errorf("client: unknown transport kind %q", c.Transport.Kind)
	}
}

// Build constructs an XcmpClient from the configuration: the raw
// transport, optionally wrapped in an authenticated XNL session.
func (c *Config) Build() (*Client, error) {
	raw, err := c.buildTransport()
	if err != nil {
		return nil, err
	}

	if c.Session == nil {
		return New(raw), nil
	}

	sess := session.New(raw, session.KeyConfig{
		Key:   c.Session.Key(),
		Delta: c.Session.Delta,
	})
	return New(sess), nil
}
