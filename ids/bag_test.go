// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ids

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	require := require.New(t)

	var zeroID, oneID ID
	zeroID[0] = 0b0000_0000
	oneID[0] = 0b1000_0000

	votes := BagOf(zeroID, zeroID, oneID)
	zero, one := Split(votes, 0)

	require.Equal(2, zero.Count(zeroID))
	require.Equal(1, one.Count(oneID))
	require.Equal(0, zero.Count(oneID))
	require.Equal(0, one.Count(zeroID))
}

func TestFilter(t *testing.T) {
	require := require.New(t)

	ref := ID{0xFF}
	match := ID{0xFF, 0x01}
	mismatch := ID{0x00, 0x01}

	votes := BagOf(match, mismatch)
	filtered := Filter(votes, 0, 8, ref)

	require.Equal(1, filtered.Count(match))
	require.Equal(0, filtered.Count(mismatch))
}
