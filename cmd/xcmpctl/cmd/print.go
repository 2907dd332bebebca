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
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

var okString = color.GreenString("[OK]")
var infoString = color.GreenString("[INFO]")
var warnString = color.YellowString("[WARN]")
var failString = color.RedString("[FAIL]")

func printOK(format string, args ...interface{}) {
	fmt.Println(okString, fmt.Sprintf(format, args...))
}

func printInfo(format string, args ...interface{}) {
	fmt.Println(infoString, fmt.Sprintf(format, args...))
}

func printWarn(format string, args ...interface{}) {
	fmt.Println(warnString, fmt.Sprintf(format, args...))
}

func printFail(format string, args ...interface{}) {
	fmt.Println(failString, fmt.Sprintf(format, args...))
}

// printKV renders a two-column field/value table, used for identity, BER,
// and softpot reports.
func printKV(rows [][2]string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"field", "value"})
	table.SetColWidth(40)
	for _, row := range rows {
		table.Append([]string{row[0], row[1]})
	}
	table.Render()
}
