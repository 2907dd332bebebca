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

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(keyCmd)
	keyCmd.AddCommand(keyUpCmd)
	keyCmd.AddCommand(keyDownCmd)
}

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "key or dekey the transmitter",
}

var keyUpCmd = &cobra.Command{
	Use:   "up",
	Short: "key the transmitter",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildClient(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		defer c.Disconnect()

		if err := c.Keyup(); err != nil {
			return fmt.Errorf("keying up: %w", err)
		}
		printOK("transmitter keyed")
		return nil
	},
}

var keyDownCmd = &cobra.Command{
	Use:   "down",
	Short: "dekey the transmitter",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildClient(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		defer c.Disconnect()

		if err := c.Dekey(); err != nil {
			return fmt.Errorf("dekeying: %w", err)
		}
		printOK("transmitter dekeyed")
		return nil
	},
}
