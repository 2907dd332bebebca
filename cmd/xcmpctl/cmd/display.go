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
	displayRegionFlag uint8
	displayIDFlag     uint8
	displayTextFlag   string
	displayClassFlag  uint8
	displayTimerFlag  uint16
	displayUCS2Flag   bool
)

func init() {
	RootCmd.AddCommand(displayCmd)
	displayCmd.AddCommand(displaySetCmd)
	displayCmd.AddCommand(displayQueryCmd)
	displayCmd.AddCommand(displayCloseCmd)
	displayCmd.AddCommand(displayAllOnCmd)
	displayCmd.AddCommand(displayAllOffCmd)
	displayCmd.AddCommand(displayRefreshCmd)

	for _, c := range []*cobra.Command{displaySetCmd, displayQueryCmd} {
		c.Flags().Uint8Var(&displayRegionFlag, "region", 1, "display region")
		c.Flags().Uint8Var(&displayIDFlag, "id", 1, "display id")
	}
	displaySetCmd.Flags().StringVar(&displayTextFlag, "text", "", "text to show")
	displaySetCmd.Flags().Uint8Var(&displayClassFlag, "class", 1, "message priority class, 1 (highest) through 5")
	displaySetCmd.Flags().Uint16Var(&displayTimerFlag, "timer", 0xFF, "0 = permanent, 0xFF = default, else value*500ms")
	displaySetCmd.Flags().BoolVar(&displayUCS2Flag, "ucs2", false, "encode text as UCS-2 instead of ISO-8859-1")
}

var displayCmd = &cobra.Command{
	Use:   "display",
	Short: "update, query, or clear the device's text display",
}

var displaySetCmd = &cobra.Command{
	Use:   "set",
	Short: "push text to a display region",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildClient(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		defer c.Disconnect()

		enc := xcmp.EncodingISO8859_1
		if displayUCS2Flag {
			enc = xcmp.EncodingUCS2
		}
		u := xcmp.DisplayUpdate{
			Region: xcmp.DisplayRegion(displayRegionFlag),
			ID:     xcmp.DisplayID(displayIDFlag),
			Timer:  displayTimerFlag,
			Class:  xcmp.MessageClass(displayClassFlag),
			Enc:    enc,
			Text:   displayTextFlag,
		}
		if err := c.SetDisplayText(u); err != nil {
			return fmt.Errorf("setting display text: %w", err)
		}
		printOK("display text updated")
		return nil
	},
}

var displayQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "report what's currently shown in a display region",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildClient(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		defer c.Disconnect()

		u, err := c.QueryDisplayRegion(xcmp.DisplayRegion(displayRegionFlag), xcmp.DisplayID(displayIDFlag))
		if err != nil {
			return fmt.Errorf("querying display: %w", err)
		}
		printKV([][2]string{
			{"text", u.Text},
			{"class", fmt.Sprintf("%d", u.Class)},
			{"timer", fmt.Sprintf("%d", u.Timer)},
		})
		return nil
	},
}

var displayCloseCmd = &cobra.Command{
	Use:   "close",
	Short: "clear the currently active display region",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildClient(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		defer c.Disconnect()

		if err := c.CloseDisplay(); err != nil {
			return fmt.Errorf("closing display: %w", err)
		}
		printOK("display closed")
		return nil
	},
}

var displayAllOnCmd = &cobra.Command{
	Use:   "all-pixels-on",
	Short: "light every pixel on the display",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildClient(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		defer c.Disconnect()

		if err := c.AllPixelsOn(); err != nil {
			return fmt.Errorf("setting all pixels on: %w", err)
		}
		printOK("all pixels on")
		return nil
	},
}

var displayAllOffCmd = &cobra.Command{
	Use:   "all-pixels-off",
	Short: "clear every pixel on the display",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildClient(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		defer c.Disconnect()

		if err := c.AllPixelsOff(); err != nil {
			return fmt.Errorf("setting all pixels off: %w", err)
		}
		printOK("all pixels off")
		return nil
	},
}

var displayRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "force the device to redraw its display",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildClient(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		defer c.Disconnect()

		if err := c.RefreshDisplay(); err != nil {
			return fmt.Errorf("refreshing display: %w", err)
		}
		printOK("display refreshed")
		return nil
	},
}
