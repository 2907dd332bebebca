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
)

func init() {
	RootCmd.AddCommand(idCmd)
}

var idCmd = &cobra.Command{
	Use:   "id",
	Short: "report the device's serial number, model and firmware versions",
	Run: func(cmd *cobra.Command, args []string) {
		c, err := buildClient(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		defer c.Disconnect()

		serial, err := c.GetSerialNumber()
		if err != nil {
			log.Fatal(err)
		}
		model, err := c.GetModelNumber()
		if err != nil {
			log.Fatal(err)
		}
		hostSw, err := c.GetHostSwVersion()
		if err != nil {
			log.Fatal(err)
		}
		dspSw, err := c.GetDspSwVersion()
		if err != nil {
			log.Fatal(err)
		}

		printKV([][2]string{
			{"serial number", serial},
			{"model number", model},
			{"host sw version", hostSw},
			{"dsp sw version", dspSw},
		})
	},
}
