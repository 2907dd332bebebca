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

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/xcmpnet/xcmp/client"
)

var (
	txFreqHzFlag uint64
	rxSpacingHzFlag uint32
)

func init() {
	RootCmd.AddCommand(txFreqCmd)
	txFreqCmd.Flags().Uint64Var(&txFreqHzFlag, "hz", 0, "transmit frequency in Hz, a multiple of 5 Hz")
	if err := txFreqCmd.MarkFlagRequired("hz"); err != nil {
		log.Fatal(err)
	}

	RootCmd.AddCommand(rxChainCmd)
	rxChainCmd.Flags().Uint64Var(&txFreqHzFlag, "hz", 0, "receive frequency in Hz, a multiple of 5 Hz")
	rxChainCmd.Flags().Uint32Var(&rxSpacingHzFlag, "spacing-hz", 0, "channel spacing in Hz")
	if err := rxChainCmd.MarkFlagRequired("hz"); err != nil {
		log.Fatal(err)
	}
}

var txFreqCmd = &cobra.Command{
	Use:   "tx-freq",
	Short: "tune the transmit chain to a frequency",
	Run: func(cmd *cobra.Command, args []string) {
		c, err := buildClient(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		defer c.Disconnect()

		if err := c.SetTxFrequency(txFreqHzFlag); err != nil {
			log.Fatal(err)
		}
		printOK("tx frequency set to %d Hz", txFreqHzFlag)
	},
}

var rxChainCmd = &cobra.Command{
	Use:   "rx-chain",
	Short: "configure the receive chain's frequency and channel spacing",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildClient(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		defer c.Disconnect()

		cfg := client.RxChainConfig{FrequencyHz: txFreqHzFlag, SpacingHz: rxSpacingHzFlag}
		if err := c.ConfigureRxChain(cfg); err != nil {
			log.Fatal(err)
		}
		printOK("rx chain configured: %d Hz, %d Hz spacing", txFreqHzFlag, rxSpacingHzFlag)
		return nil
	},
}
