// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snowball

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/consensus-core/ids"
)

func idWithByte0(b0 byte) ids.ID {
	var id ids.ID
	id[0] = b0
	for i := 1; i < ids.IDLen; i++ {
		id[i] = 0x42
	}
	return id
}

func params() TreeParams {
	return TreeParams{Alpha: 2, BetaVirtuous: 2, BetaRogue: 2}
}

// Concrete scenario 3: insert 0x03.., 0x01.., 0x02.. (differing only in
// byte 0's low bits); expect a root unary over the shared prefix, a binary
// split at the first differing bit, and unary leaves below it.
func TestTrieAddScenario3(t *testing.T) {
	require := require.New(t)

	id3 := idWithByte0(0x03)
	id1 := idWithByte0(0x01)
	id2 := idWithByte0(0x02)

	tr := NewTree(params())
	tr.Add(id3)
	require.Equal(id3, tr.Preference())

	// add() never changes preference — only record_poll does — so the
	// root still prefers id3 after further insertions split the trie
	// below it.
	tr.Add(id1)
	require.Equal(id3, tr.Preference())
	require.Equal(kindUnary, tr.nodes[tr.root].kind, "root keeps the shared prefix as a shortened unary node")

	tr.Add(id2)
	require.False(tr.Finalized())
	require.Equal(kindUnary, tr.nodes[tr.root].kind)

	binIdx := tr.nodes[tr.root].child
	require.Equal(kindBinary, tr.nodes[binIdx].kind, "root's child is the binary split at the first differing bit")
}

func TestTrieInsertionRoundTrip(t *testing.T) {
	require := require.New(t)

	candidates := []ids.ID{idWithByte0(0x10), idWithByte0(0x20), idWithByte0(0x30)}

	for _, winner := range candidates {
		tr := NewTree(params())
		for _, id := range candidates {
			tr.Add(id)
		}

		votes := ids.BagOf(winner, winner)
		for i := 0; i < 10 && !tr.Finalized(); i++ {
			tr.RecordPoll(votes, false)
		}

		require.True(tr.Finalized())
		require.Equal(winner, tr.Preference())
	}
}

func TestTrieFinalizedAddIsNoOp(t *testing.T) {
	require := require.New(t)

	id := idWithByte0(0x01)
	tr := NewTree(params())
	tr.Add(id)

	votes := ids.BagOf(id, id)
	for i := 0; i < 5 && !tr.Finalized(); i++ {
		tr.RecordPoll(votes, false)
	}
	require.True(tr.Finalized())

	nodeCount := len(tr.nodes)
	tr.Add(idWithByte0(0x02))
	require.Equal(nodeCount, len(tr.nodes), "add on a finalized trie must not allocate")
	require.Equal(id, tr.Preference())
}

// An unsuccessful poll at a node (below alpha) sets should_reset; the next
// successful poll must deliver that reset to the child before counting the
// child's own success, so confidence there never simply accumulates across
// the interleaved failure.
func TestTrieResetPropagation(t *testing.T) {
	require := require.New(t)

	idA := idWithByte0(0x01)
	idB := idWithByte0(0x02)

	tr := NewTree(params())
	tr.Add(idA)
	tr.Add(idB)

	// Root keeps the shared prefix as unary; the split lives one level
	// down, at its child.
	require.Equal(kindUnary, tr.nodes[tr.root].kind)

	// A winning poll for A: root succeeds, and so does its binary child
	// on A's side, bringing that side's leaf to confidence 1.
	tr.RecordPoll(ids.BagOf(idA, idA), false)
	binIdx := tr.nodes[tr.root].child
	require.Equal(kindBinary, tr.nodes[binIdx].kind)

	side := idA.Bit(tr.nodes[binIdx].bit)
	leafIdx := tr.nodes[binIdx].children[side]
	preConfidence := tr.nodes[leafIdx].uSnowball.Confidence()
	require.Equal(1, preConfidence)

	// Below alpha (a single vote): the root itself fails to reach quorum,
	// so it never recurses this round — it only records should_reset for
	// its own next successful poll.
	tr.RecordPoll(ids.BagOf(idA), false)
	require.True(tr.nodes[tr.root].uShouldReset)
	require.Equal(preConfidence, tr.nodes[leafIdx].uSnowball.Confidence(), "an unreached root never touches the child's confidence")

	// The next winning poll must apply that pending reset at the root
	// before recursing, and the binary child in turn applies its own
	// reset to the leaf before tallying A's success — so the leaf's
	// confidence does not simply advance past what an uninterrupted
	// streak would have produced.
	tr.RecordPoll(ids.BagOf(idA, idA), false)
	require.False(tr.nodes[tr.root].uShouldReset)
	require.Equal(preConfidence, tr.nodes[leafIdx].uSnowball.Confidence(),
		"the propagated reset must zero the leaf's streak before this poll's success is tallied")
}

func TestTrieEmptyPreference(t *testing.T) {
	require := require.New(t)
	tr := NewTree(params())
	require.Equal(ids.Empty, tr.Preference())
	require.False(tr.Finalized())
}
