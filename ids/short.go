// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ids

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // required for node-ID derivation, see TLS handshake spec
)

// ShortIDLen is the length in bytes of a ShortID.
const ShortIDLen = 20

var ErrInvalidShortIDLen = errors.New("invalid short id length")

// ShortID is a 20-byte identifier with the same total order and CB58
// encoding scheme as ID, used for node IDs and public-key hashes.
type ShortID [ShortIDLen]byte

// NodeID identifies a peer on the network. It is derived from a public key
// or, for the TLS handshake of §4.6.4, from a certificate's DER bytes.
type NodeID = ShortID

// ShortIDFromBytes copies b into a new ShortID. b must have length ShortIDLen.
func ShortIDFromBytes(b []byte) (ShortID, error) {
	var id ShortID
	if len(b) != ShortIDLen {
		return id, fmt.Errorf("%w: want %d got %d", ErrInvalidShortIDLen, ShortIDLen, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// NodeIDFromCert derives a NodeID from a peer's leaf certificate DER bytes:
// SHA-256 followed by RIPEMD-160, per the TLS handshake contract of §4.6.4.
func NodeIDFromCert(certDER []byte) NodeID {
	sha := sha256.Sum256(certDER)
	hasher := ripemd160.New()
	hasher.Write(sha[:])
	digest := hasher.Sum(nil)
	var id NodeID
	copy(id[:], digest)
	return id
}

func (id ShortID) Bytes() []byte {
	b := make([]byte, ShortIDLen)
	copy(b, id[:])
	return b
}

func (id ShortID) Compare(other ShortID) int {
	for i := range id {
		if id[i] < other[i] {
			return -1
		}
		if id[i] > other[i] {
			return 1
		}
	}
	return 0
}

func (id ShortID) Less(other ShortID) bool {
	return id.Compare(other) < 0
}

// String returns the CB58 encoding of id.
func (id ShortID) String() string {
	s, err := CB58Encode(id[:])
	if err != nil {
		panic(err)
	}
	return s
}

// ShortIDFromString parses the CB58 encoding produced by ShortID.String.
func ShortIDFromString(s string) (ShortID, error) {
	b, err := CB58Decode(s)
	if err != nil {
		return ShortID{}, err
	}
	return ShortIDFromBytes(b)
}
