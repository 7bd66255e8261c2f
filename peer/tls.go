// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package peer implements the §4.6.4 TLS peer handshake: node identity is
// bound to a self-signed certificate rather than to a CA chain. Both
// sides present a self-signed certificate, skip CA verification, and
// require the other side to present one too. The dummy application-layer
// write after TLS establishment, and the "not-connected" classification
// when no peer certificate is observed, are both part of the handshake
// contract this package enforces.
package peer

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"math/big"
	"net"
	"time"

	"github.com/luxfi/consensus-core/ids"
)

// dummyHandshakeByte is written by each side (dialer and listener)
// immediately after the TLS handshake completes (§4.6.4 "a dummy application-layer write is
// required before inspecting peer_certificates()"): Go's crypto/tls
// defers the handshake, and with it population of
// ConnectionState().PeerCertificates, until the first Read or Write.
var dummyHandshakeByte = []byte{0}

// ErrNotConnected is returned when a TLS connection completes without
// yielding a peer certificate.
var ErrNotConnected = errors.New("peer: not connected: no peer certificate presented")

// Identity is a self-signed certificate and its derived NodeID, used to
// configure both the listening and the dialing side of the handshake.
type Identity struct {
	Cert   tls.Certificate
	NodeID ids.NodeID
}

// NewIdentity generates a fresh self-signed ECDSA certificate and derives
// its NodeID, per §4.6.4 ("node identity is bound to the certificate, not
// a CA chain").
func NewIdentity() (*Identity, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("peer: generate key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, big.NewInt(1<<62))
	if err != nil {
		return nil, fmt.Errorf("peer: generate serial: %w", err)
	}

	template := &x509.Certificate{
		SerialNumber: serial,
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(100 * 365 * 24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		IsCA:         true,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("peer: create certificate: %w", err)
	}

	return &Identity{
		Cert: tls.Certificate{
			Certificate: [][]byte{der},
			PrivateKey:  key,
		},
		NodeID: ids.NodeIDFromCert(der),
	}, nil
}

// config builds the shared handshake settings of §4.6.4: present id's
// self-signed certificate, skip CA verification (node identity comes from
// the certificate itself, not a chain of trust), and require the peer to
// present a certificate of its own.
func (id *Identity) config() *tls.Config {
	return &tls.Config{
		Certificates:       []tls.Certificate{id.Cert},
		InsecureSkipVerify: true, //nolint:gosec // identity is bound to the cert itself, see §4.6.4
		ClientAuth:         tls.RequireAnyClientCert,
		MinVersion:         tls.VersionTLS13,
	}
}

// Server wraps conn in a TLS server-side handshake using id's
// self-signed certificate and identifies the connecting peer.
func (id *Identity) Server(conn net.Conn) (*Conn, error) {
	tlsConn := tls.Server(conn, id.config())
	return id.finish(tlsConn)
}

// Dial performs a TLS client-side handshake to addr using id's self-signed
// certificate and identifies the accepting peer.
func (id *Identity) Dial(addr string) (*Conn, error) {
	raw, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("peer: dial: %w", err)
	}
	tlsConn := tls.Client(raw, id.config())
	return id.finish(tlsConn)
}

// finish drives the handshake to completion, issues the dummy
// application-layer write, and derives the peer's NodeID from its leaf
// certificate.
func (id *Identity) finish(tlsConn *tls.Conn) (*Conn, error) {
	if err := tlsConn.Handshake(); err != nil {
		tlsConn.Close()
		return nil, fmt.Errorf("peer: handshake: %w", err)
	}

	// Force ConnectionState() to be populated: crypto/tls only records
	// PeerCertificates once application data has actually moved.
	if _, err := tlsConn.Write(dummyHandshakeByte); err != nil {
		tlsConn.Close()
		return nil, fmt.Errorf("peer: dummy write: %w", err)
	}

	certs := tlsConn.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		tlsConn.Close()
		return nil, ErrNotConnected
	}

	return &Conn{
		Conn:   tlsConn,
		NodeID: ids.NodeIDFromCert(certs[0].Raw),
	}, nil
}

// Conn is an established, identified peer connection: NodeID is derived
// from the peer's leaf certificate, not from any certificate-authority
// chain.
type Conn struct {
	*tls.Conn
	NodeID ids.NodeID
}
