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

package transport

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// tryListenTCP listens on any free port, skipping the test if the sandbox
// doesn't permit it.
func tryListenTCP(t *testing.T) net.Listener {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("failed to listen on any port: %v", err)
		return nil
	}
	return l
}

func TestTCPTransportSendReceive(t *testing.T) {
	l := tryListenTCP(t)
	defer l.Close()

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		conn, err := l.Accept()
		require.NoError(t, err)
		defer conn.Close()

		buf := make([]byte, 4)
		_, err = conn.Read(buf)
		require.NoError(t, err)
		_, err = conn.Write([]byte{0x00, 0x02, 0x00, 0x00})
		require.NoError(t, err)
	}()

	tr := NewTCPTransport(l.Addr().String()).WithReceiveTimeout(2 * time.Second)
	require.NoError(t, tr.Connect(context.Background()))
	defer tr.Disconnect()
	require.True(t, tr.Connected())

	require.NoError(t, tr.Send([]byte{0x00, 0x02, 0x00, 0x00}))

	got, err := tr.Receive()
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0x02, 0x00, 0x00}, got)

	<-serverDone
}

func TestTCPTransportReceiveTimeout(t *testing.T) {
	l := tryListenTCP(t)
	defer l.Close()

	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		time.Sleep(200 * time.Millisecond)
	}()

	tr := NewTCPTransport(l.Addr().String()).WithReceiveTimeout(50 * time.Millisecond)
	require.NoError(t, tr.Connect(context.Background()))
	defer tr.Disconnect()

	_, err := tr.Receive()
	require.ErrorIs(t, err, ErrTimeout)
}

func TestTCPTransportSendUnconnected(t *testing.T) {
	tr := NewTCPTransport("127.0.0.1:1")
	err := tr.Send([]byte{0x01})
	require.ErrorIs(t, err, ErrTransport)
}

func TestTCPTransportDisconnectIdempotent(t *testing.T) {
	l := tryListenTCP(t)
	defer l.Close()
	go func() {
		conn, err := l.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	tr := NewTCPTransport(l.Addr().String())
	require.NoError(t, tr.Connect(context.Background()))
	require.NoError(t, tr.Disconnect())
	require.NoError(t, tr.Disconnect())
	require.False(t, tr.Connected())
}
