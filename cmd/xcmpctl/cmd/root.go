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
	"context"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/xcmpnet/xcmp/client"
	"github.com/xcmpnet/xcmp/session"
	"github.com/xcmpnet/xcmp/tea"
	"github.com/xcmpnet/xcmp/transport"
)

// RootCmd is a main entry point. It's exported so xcmpctl could be easily
// extended without touching core functionality.
var RootCmd = &cobra.Command{
	Use:   "xcmpctl",
	Short: "operator CLI for XCMP/XNL radio control links",
}

var (
	rootVerboseFlag bool
	rootConfigFlag  string

	rootTransportFlag string
	rootAddrFlag      string
	rootTimeoutFlag   time.Duration

	rootSessionFlag  bool
	rootKeyWordsFlag string
	rootDeltaFlag    uint32
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&rootVerboseFlag, "verbose", "v", false, "verbose output")
	RootCmd.PersistentFlags().StringVar(&rootConfigFlag, "config", "", "path to a client config file; overrides the transport/session flags below")
	RootCmd.PersistentFlags().StringVar(&rootTransportFlag, "transport", "tcp", "transport kind: tcp or udp (ppp is only available via --config)")
	RootCmd.PersistentFlags().StringVar(&rootAddrFlag, "addr", "", "transport address (host:port for tcp/udp)")
	RootCmd.PersistentFlags().DurationVar(&rootTimeoutFlag, "timeout", time.Second, "receive timeout")
	RootCmd.PersistentFlags().BoolVar(&rootSessionFlag, "session", false, "authenticate an XNL session atop the transport before issuing commands")
	RootCmd.PersistentFlags().StringVar(&rootKeyWordsFlag, "key-words", "", "four comma-separated 32-bit TEA key words (omit to be prompted interactively)")
	RootCmd.PersistentFlags().Uint32Var(&rootDeltaFlag, "delta", 0x9E3779B9, "TEA delta constant")
}

// ConfigureVerbosity configures log verbosity based on parsed flags. Needs
// to be called by any subcommand that connects.
func ConfigureVerbosity() {
	log.SetLevel(log.InfoLevel)
	if rootVerboseFlag {
		log.SetLevel(log.DebugLevel)
	}
}

// Execute is the main entry point for the CLI interface.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// buildClient constructs a *client.Client from either --config or the
// individual transport/session flags, and connects it.
func buildClient(ctx context.Context) (*client.Client, error) {
	ConfigureVerbosity()

	if rootConfigFlag != "" {
		cfg, err := client.ReadConfig(rootConfigFlag)
		if err != nil {
			return nil, fmt.Errorf("reading config %q: %w", rootConfigFlag, err)
		}
		c, err := cfg.Build()
		if err != nil {
			return nil, err
		}
		if err := c.Connect(ctx); err != nil {
			return nil, fmt.Errorf("connecting: %w", err)
		}
		return c, nil
	}

	if rootAddrFlag == "" {
		return nil, fmt.Errorf("--addr is required (or pass --config)")
	}

	raw, err := buildRawTransport()
	if err != nil {
		return nil, err
	}

	var t transport.ByteTransport = raw
	if rootSessionFlag {
		keys, err := resolveKeys()
		if err != nil {
			return nil, err
		}
		t = session.New(raw, session.KeyConfig{Key: keys, Delta: rootDeltaFlag})
	}

	c := client.New(t)
	if err := c.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connecting: %w", err)
	}
	return c, nil
}

func buildRawTransport() (transport.ByteTransport, error) {
	switch rootTransportFlag {
	case "tcp":
		return transport.NewTCPTransport(rootAddrFlag).WithReceiveTimeout(rootTimeoutFlag), nil
	case "udp":
		return transport.NewUDPTransport(rootAddrFlag).WithReceiveTimeout(rootTimeoutFlag), nil
	default:
		return nil, fmt.Errorf("unsupported --transport %q for flag-driven connections; use --config for ppp", rootTransportFlag)
	}
}

func resolveKeys() (tea.Key, error) {
	if rootKeyWordsFlag == "" {
		return promptForKey()
	}
	return parseKeyWords(rootKeyWordsFlag)
}
