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

	"github.com/xcmpnet/xcmp/client"
)

var (
	berHzFlag        uint64
	berSpacingHzFlag uint32
	berFramesFlag    int
	berAlertFlag     string
)

func init() {
	RootCmd.AddCommand(berCmd)
	berCmd.Flags().Uint64Var(&berHzFlag, "hz", 0, "receive frequency to lock onto the P25 test pattern, in Hz, a multiple of 5 Hz")
	berCmd.Flags().Uint32Var(&berSpacingHzFlag, "spacing-hz", 0, "channel spacing in Hz")
	berCmd.Flags().IntVar(&berFramesFlag, "frames", 10, "number of P25 test-pattern frames to collect")
	berCmd.Flags().StringVar(&berAlertFlag, "alert", "", "optional alert expression over mean/stddev/count/last, e.g. \"mean > 0.001\"")
	if err := berCmd.MarkFlagRequired("hz"); err != nil {
		log.Fatal(err)
	}
}

var berCmd = &cobra.Command{
	Use:   "ber",
	Short: "measure bit-error-rate against the P25 test pattern",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildClient(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		defer c.Disconnect()

		var rule *client.AlertRule
		if berAlertFlag != "" {
			rule, err = client.NewAlertRule(berAlertFlag)
			if err != nil {
				return fmt.Errorf("parsing alert expression: %w", err)
			}
		}

		cfg := client.RxChainConfig{FrequencyHz: berHzFlag, SpacingHz: berSpacingHzFlag}
		ber, frames, err := c.GetP25BER(cfg, berFramesFlag)
		if err != nil {
			return fmt.Errorf("measuring P25 BER: %w", err)
		}

		var accepted int
		for _, f := range frames {
			if f.SyncStatus != client.BERNoSync && f.SyncStatus != client.BERLost {
				accepted++
			}
		}

		stats := c.BERStats()
		printKV([][2]string{
			{"ber", fmt.Sprintf("%g", ber)},
			{"frames", fmt.Sprintf("%d", len(frames))},
			{"accepted", fmt.Sprintf("%d", accepted)},
			{"mean", fmt.Sprintf("%g", stats.Mean())},
			{"stddev", fmt.Sprintf("%g", stats.Stddev())},
			{"count", fmt.Sprintf("%d", stats.Count())},
		})

		if rule != nil {
			fired, err := rule.Evaluate(stats, ber)
			if err != nil {
				return fmt.Errorf("evaluating alert rule: %w", err)
			}
			if fired {
				printWarn("alert rule %q fired", berAlertFlag)
			} else {
				printInfo("alert rule %q did not fire", berAlertFlag)
			}
		}
		return nil
	},
}
