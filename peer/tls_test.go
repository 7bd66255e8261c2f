// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package peer

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestHandshakeIdentifiesBothSides is the spec's §4.6.4 contract: both
// sides present self-signed certificates, skip CA verification, and
// derive each other's NodeID from the observed leaf certificate.
func TestHandshakeIdentifiesBothSides(t *testing.T) {
	require := require.New(t)

	serverID, err := NewIdentity()
	require.NoError(err)
	clientID, err := NewIdentity()
	require.NoError(err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(err)
	defer ln.Close()

	serverConnCh := make(chan *Conn, 1)
	serverErrCh := make(chan error, 1)
	go func() {
		raw, err := ln.Accept()
		if err != nil {
			serverErrCh <- err
			return
		}
		conn, err := serverID.Server(raw)
		if err != nil {
			serverErrCh <- err
			return
		}
		serverConnCh <- conn
	}()

	clientConn, err := clientID.Dial(ln.Addr().String())
	require.NoError(err)
	defer clientConn.Close()

	select {
	case err := <-serverErrCh:
		t.Fatalf("server handshake failed: %v", err)
	case serverConn := <-serverConnCh:
		defer serverConn.Close()
		require.Equal(clientID.NodeID, serverConn.NodeID)
		require.Equal(serverID.NodeID, clientConn.NodeID)
	}
}

func TestNewIdentityProducesDistinctNodeIDs(t *testing.T) {
	require := require.New(t)

	a, err := NewIdentity()
	require.NoError(err)
	b, err := NewIdentity()
	require.NoError(err)

	require.NotEqual(a.NodeID, b.NodeID)
}
