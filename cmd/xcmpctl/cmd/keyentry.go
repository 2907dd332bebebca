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
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/xcmpnet/xcmp/tea"
)

// parseKeyWords parses a "w0,w1,w2,w3" string of four 32-bit key words,
// each accepted in decimal or 0x-prefixed hex.
func parseKeyWords(s string) (tea.Key, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return tea.Key{}, fmt.Errorf("xcmpctl: --key-words needs exactly 4 comma-separated values, got %d", len(parts))
	}
	var key tea.Key
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 0, 32)
		if err != nil {
			return tea.Key{}, fmt.Errorf("xcmpctl: parsing key word %d (%q): %w", i, p, err)
		}
		key[i] = uint32(v)
	}
	return key, nil
}

// promptForKey interactively reads four key words from the terminal
// without echoing them, the same way an operator enters a radio's shared
// secret during bench setup.
func promptForKey() (tea.Key, error) {
	var key tea.Key
	fd := int(os.Stdin.Fd())
	for i := range key {
		fmt.Printf("key word %d (hex or decimal): ", i)
		if !term.IsTerminal(fd) {
			var v uint64
			if _, err := fmt.Scanf("%v\n", &v); err != nil {
				return tea.Key{}, fmt.Errorf("xcmpctl: reading key word %d: %w", i, err)
			}
			key[i] = uint32(v)
			continue
		}
		line, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return tea.Key{}, fmt.Errorf("xcmpctl: reading key word %d: %w", i, err)
		}
		v, err := strconv.ParseUint(strings.TrimSpace(string(line)), 0, 32)
		if err != nil {
			return tea.Key{}, fmt.Errorf("xcmpctl: parsing key word %d: %w", i, err)
		}
		key[i] = uint32(v)
	}
	return key, nil
}
