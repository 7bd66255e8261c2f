// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"crypto/sha256"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/consensus-core/ids"
)

func idAt(b byte) ids.ID {
	var id ids.ID
	id[0] = b
	id[31] = b ^ 0xFF
	return id
}

// TestVertexCodecRoundTrip is the spec's "Vertex codec round-trip"
// testable property: for 1-64 parents and 1-64 transactions, unpacking a
// packed vertex yields the same logical vertex with canonical ordering.
func TestVertexCodecRoundTrip(t *testing.T) {
	require := require.New(t)

	r := rand.New(rand.NewSource(1))

	for trial := 0; trial < 10; trial++ {
		numParents := 1 + r.Intn(64)
		numTxs := 1 + r.Intn(64)

		parents := make([]ids.ID, numParents)
		for i := range parents {
			parents[i] = idAt(byte(r.Intn(256)))
		}
		txs := make([][]byte, numTxs)
		for i := range txs {
			tx := make([]byte, 1+r.Intn(64))
			r.Read(tx)
			txs[i] = tx
		}

		vtx := &Vertex{
			ChainID:   idAt(byte(trial)),
			Height:    uint64(trial),
			Epoch:     uint32(trial),
			ParentIDs: parents,
			Txs:       txs,
		}

		m := DefaultManager()
		data, err := m.Marshal(vtx)
		require.NoError(err)

		decoded, err := m.Unmarshal(CoreRegistry, data)
		require.NoError(err)

		got, ok := decoded.(*Vertex)
		require.True(ok)
		require.Equal(vtx.ChainID, got.ChainID)
		require.Equal(vtx.Height, got.Height)
		require.Equal(vtx.Epoch, got.Epoch)
		require.Equal(vtx.sortedParentIDs(), got.ParentIDs)

		wantTxs := vtx.sortedTxs()
		require.Equal(len(wantTxs), len(got.Txs))
		for i := range wantTxs {
			require.Equal(wantTxs[i], got.Txs[i])
		}

		// the decoded order is itself sorted by SHA-256 ascending.
		require.True(sort.SliceIsSorted(got.Txs, func(i, j int) bool {
			hi := sha256.Sum256(got.Txs[i])
			hj := sha256.Sum256(got.Txs[j])
			return string(hi[:]) < string(hj[:])
		}))
	}
}

func TestUnknownTypeIDIsFatalDecodeError(t *testing.T) {
	require := require.New(t)

	m := DefaultManager()
	vtx := &Vertex{ChainID: idAt(1), ParentIDs: []ids.ID{idAt(2)}, Txs: [][]byte{{1}}}
	data, err := m.Marshal(vtx)
	require.NoError(err)

	// Corrupt the type_id (bytes [2:6], after the u16 version) to one
	// that was never registered.
	data[5] = 0xFF

	_, err = m.Unmarshal(CoreRegistry, data)
	require.ErrorIs(err, ErrUnknownType)
}

func TestUnsupportedVersionIsRejected(t *testing.T) {
	require := require.New(t)

	m := DefaultManager()
	vtx := &Vertex{ChainID: idAt(1), ParentIDs: []ids.ID{idAt(2)}, Txs: [][]byte{{1}}}
	data, err := m.Marshal(vtx)
	require.NoError(err)

	data[1] = 0x01 // bump the low byte of the u16 codec_version

	_, err = m.Unmarshal(CoreRegistry, data)
	require.ErrorIs(err, ErrUnsupportedVersion)
}

func TestRegisterTypeRejectsDuplicate(t *testing.T) {
	require := require.New(t)

	m := NewManager()
	factory := func() Payload { return &Vertex{} }
	require.NoError(m.RegisterType(CoreRegistry, TypeVertex, factory))
	require.ErrorIs(m.RegisterType(CoreRegistry, TypeVertex, factory), ErrAlreadyRegistered)
}
