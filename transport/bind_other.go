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

//go:build !linux

package transport

import (
	"fmt"
	"net"
	"runtime"
)

// bindToInterface is only implemented on Linux, where rtnetlink and
// SO_BINDTODEVICE are available.
func bindToInterface(_ *net.UDPConn, name string) error {
	return fmt.Errorf("transport: binding to interface %s not supported on %s", name, runtime.GOOS)
}
