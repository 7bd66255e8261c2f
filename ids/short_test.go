// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ids

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShortIDRoundTrip(t *testing.T) {
	require := require.New(t)

	var id ShortID
	for i := range id {
		id[i] = byte(i)
	}

	s := id.String()
	got, err := ShortIDFromString(s)
	require.NoError(err)
	require.Equal(id, got)
}

func TestNodeIDFromCert(t *testing.T) {
	require := require.New(t)

	certA := []byte("certificate-a-der-bytes")
	certB := []byte("certificate-b-der-bytes")

	idA1 := NodeIDFromCert(certA)
	idA2 := NodeIDFromCert(certA)
	idB := NodeIDFromCert(certB)

	require.Equal(idA1, idA2, "derivation must be deterministic")
	require.NotEqual(idA1, idB)
}
