// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ids

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBit(t *testing.T) {
	require := require.New(t)

	var id ID
	id[0] = 0b1000_0001 // bit 0 and bit 7 set

	require.Equal(1, id.Bit(0))
	require.Equal(0, id.Bit(1))
	require.Equal(1, id.Bit(7))
	require.Equal(0, id.Bit(8))
}

func TestEqualSubset(t *testing.T) {
	require := require.New(t)

	var a, b ID
	a[0] = 0b1111_0000
	b[0] = 0b1111_1111

	require.True(EqualSubset(0, 4, a, b))
	require.False(EqualSubset(0, 8, a, b))
	require.False(EqualSubset(4, 8, a, b))
}

func TestFirstDifferenceSubset(t *testing.T) {
	require := require.New(t)

	var a, b ID
	a[0] = 0b1111_0000
	b[0] = 0b1111_1111

	idx, found := FirstDifferenceSubset(0, 8, a, b)
	require.True(found)
	require.Equal(4, idx)

	_, found = FirstDifferenceSubset(0, 4, a, b)
	require.False(found)

	_, found = FirstDifferenceSubset(256, 256, a, b)
	require.False(found)
}

func TestCB58RoundTrip(t *testing.T) {
	require := require.New(t)

	var id ID
	for i := range id {
		id[i] = byte(i + 1)
	}

	const want = "SkB92YpWm4Q2ijQHH34cqbKkCZWszsiQgHVjtNeFF2HdvDQU"
	require.Equal(want, id.String())

	got, err := IDFromString(want)
	require.NoError(err)
	require.Equal(id, got)
}

func TestCB58DecodeBadChecksum(t *testing.T) {
	require := require.New(t)

	s := Empty.String()
	// Flip the last character, which lies in the checksum suffix.
	corrupted := s[:len(s)-1] + "Z"
	if corrupted == s {
		corrupted = s[:len(s)-1] + "Q"
	}
	_, err := IDFromString(corrupted)
	require.Error(err)
}

func TestCompareAndLess(t *testing.T) {
	require := require.New(t)

	a := ID{1}
	b := ID{2}
	require.True(a.Less(b))
	require.False(b.Less(a))
	require.Equal(0, a.Compare(a))
}
