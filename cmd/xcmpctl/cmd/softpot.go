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

	"github.com/xcmpnet/xcmp/xcmp"
)

var (
	softpotTypeFlag  uint8
	softpotWidthFlag int
	softpotValueFlag uint32
)

func init() {
	RootCmd.AddCommand(softpotCmd)
	softpotCmd.AddCommand(softpotGetCmd)
	softpotCmd.AddCommand(softpotSetCmd)
	softpotCmd.AddCommand(softpotParamsCmd)

	for _, c := range []*cobra.Command{softpotGetCmd, softpotSetCmd, softpotParamsCmd} {
		c.Flags().Uint8Var(&softpotTypeFlag, "type", 0, "softpot type identifier")
		c.Flags().IntVar(&softpotWidthFlag, "width", 2, "wire width of each value in bytes: 1, 2 or 4")
	}
	softpotSetCmd.Flags().Uint32Var(&softpotValueFlag, "value", 0, "value to write")
	if err := softpotSetCmd.MarkFlagRequired("value"); err != nil {
		log.Fatal(err)
	}
}

var softpotCmd = &cobra.Command{
	Use:   "softpot",
	Short: "read or write a calibration softpot",
}

var softpotGetCmd = &cobra.Command{
	Use:   "get",
	Short: "read a softpot's current value",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildClient(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		defer c.Disconnect()

		v, err := c.SoftpotGetValue(xcmp.SoftpotType(softpotTypeFlag), softpotWidthFlag)
		if err != nil {
			return fmt.Errorf("reading softpot: %w", err)
		}
		printKV([][2]string{{"value", fmt.Sprintf("%d", v)}})
		return nil
	},
}

var softpotSetCmd = &cobra.Command{
	Use:   "set",
	Short: "write a softpot's value",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildClient(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		defer c.Disconnect()

		if err := c.SoftpotSetValue(xcmp.SoftpotType(softpotTypeFlag), softpotWidthFlag, softpotValueFlag); err != nil {
			return fmt.Errorf("writing softpot: %w", err)
		}
		printOK("softpot type %d set to %d", softpotTypeFlag, softpotValueFlag)
		return nil
	},
}

var softpotParamsCmd = &cobra.Command{
	Use:   "params",
	Short: "read a softpot's min, max, and all calibrated values",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildClient(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		defer c.Disconnect()

		typ := xcmp.SoftpotType(softpotTypeFlag)
		min, err := c.SoftpotGetMin(typ, softpotWidthFlag)
		if err != nil {
			return fmt.Errorf("reading softpot min: %w", err)
		}
		max, err := c.SoftpotGetMax(typ, softpotWidthFlag)
		if err != nil {
			return fmt.Errorf("reading softpot max: %w", err)
		}
		all, err := c.SoftpotGetAll(typ, softpotWidthFlag)
		if err != nil {
			return fmt.Errorf("reading all softpot values: %w", err)
		}

		printKV([][2]string{
			{"min", fmt.Sprintf("%d", min)},
			{"max", fmt.Sprintf("%d", max)},
			{"all values", fmt.Sprintf("%v", all)},
		})
		return nil
	},
}
