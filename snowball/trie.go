// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snowball

import "github.com/luxfi/consensus-core/ids"

// noChild marks the absence of a child in the arena.
const noChild = -1

type kind uint8

const (
	kindUnary kind = iota
	kindBinary
)

// node is a tagged-union arena entry: either a unary node voting on a range
// of identical bits, or a binary node voting on a single differing bit.
// Representing both kinds as one struct keyed by `kind`, rather than a
// pointer-chasing sum type, avoids the reference-counted interior
// mutability of the reference implementation: children are plain indices
// into Tree.nodes (§9 "arena with node indices").
type node struct {
	kind kind

	// unary fields
	uSnowball     UnarySnowball
	uPreference   ids.ID
	decidedPrefix int
	commonPrefix  int
	uShouldReset  bool
	child         int

	// binary fields
	bSnowball    BinarySnowball
	preferences  [2]ids.ID
	bit          int
	bShouldReset [2]bool
	children     [2]int
}

func (n *node) finalized() bool {
	if n.kind == kindUnary {
		return n.uSnowball.Finalized()
	}
	return n.bSnowball.Finalized()
}

func (n *node) preference() ids.ID {
	if n.kind == kindUnary {
		return n.uPreference
	}
	return n.preferences[n.bSnowball.SnowballPreference()]
}

// TreeParams configures the counters a Tree creates as it grows. Alpha is
// the poll quorum; BetaVirtuous/BetaRogue are the finalization thresholds
// for conflict-free and conflicting subtrees respectively (§3).
type TreeParams struct {
	Alpha       int
	BetaVirtuous int
	BetaRogue    int
}

// Tree is a mixed unary/binary Snowball trie over 256-bit identifiers
// (§3 "Trie node"). The zero value is not usable; construct with NewTree.
type Tree struct {
	params TreeParams
	nodes  []node
	root   int
}

// NewTree returns an empty trie.
func NewTree(params TreeParams) *Tree {
	return &Tree{params: params, root: noChild}
}

func (t *Tree) allocUnary(pref ids.ID, decidedPrefix, commonPrefix, beta, child int) int {
	t.nodes = append(t.nodes, node{
		kind:          kindUnary,
		uSnowball:     NewUnarySnowball(beta),
		uPreference:   pref,
		decidedPrefix: decidedPrefix,
		commonPrefix:  commonPrefix,
		child:         child,
	})
	return len(t.nodes) - 1
}

// Preference returns the identifier currently preferred by the trie, or the
// zero ID if nothing has been added yet.
func (t *Tree) Preference() ids.ID {
	if t.root == noChild {
		return ids.Empty
	}
	return t.nodes[t.root].preference()
}

// Finalized reports whether the trie has decided on a single identifier.
func (t *Tree) Finalized() bool {
	return t.root != noChild && t.nodes[t.root].finalized()
}

// Add inserts id into the trie (§4.3.1). Re-adding an already-present or
// already-rejected identifier is a silent no-op; adding to a finalized
// trie is a silent no-op.
func (t *Tree) Add(id ids.ID) {
	if t.root == noChild {
		t.root = t.allocUnary(id, 0, ids.IDLen*8, t.params.BetaVirtuous, noChild)
		return
	}
	t.root = t.add(t.root, id)
}

func (t *Tree) add(idx int, id ids.ID) int {
	if t.nodes[idx].kind == kindUnary {
		return t.addUnary(idx, id)
	}
	return t.addBinary(idx, id)
}

// addUnary implements the five split cases of §4.3.1 against a unary node.
func (t *Tree) addUnary(idx int, id ids.ID) int {
	if t.nodes[idx].uSnowball.Finalized() {
		return idx
	}

	decidedPrefix := t.nodes[idx].decidedPrefix
	commonPrefix := t.nodes[idx].commonPrefix
	preference := t.nodes[idx].uPreference

	index, found := ids.FirstDifferenceSubset(decidedPrefix, commonPrefix, preference, id)
	if !found {
		// Case 1: no difference in the represented range; recurse into the
		// child, or no-op if this is a duplicate leaf insertion.
		if child := t.nodes[idx].child; child != noChild {
			t.nodes[idx].child = t.add(child, id)
		}
		return idx
	}

	origSide := preference.Bit(index)
	idSide := 1 - origSide
	oldChild := t.nodes[idx].child

	// A fresh leaf for id, covering everything past the differing bit.
	newLeaf := t.allocUnary(id, index+1, ids.IDLen*8, t.params.BetaVirtuous, noChild)

	makeBinary := func(extendBeta int) node {
		b := node{
			kind:      kindBinary,
			bSnowball: t.nodes[idx].uSnowball.Extend(extendBeta, origSide),
			bit:       index,
		}
		b.preferences[origSide] = preference
		b.preferences[idSide] = id
		return b
	}

	switch {
	case decidedPrefix == commonPrefix-1:
		// Case 2: this node represents exactly one bit; it becomes the
		// binary split itself. The id side only gets a child if this node
		// already had one (mirrors the reference: a childless leaf has
		// nothing further to track on the new side until it is split
		// again by a later Add).
		b := makeBinary(t.params.BetaRogue)
		b.children[origSide] = oldChild
		b.children[idSide] = noChild
		if oldChild != noChild {
			b.children[idSide] = newLeaf
		}
		t.nodes[idx] = b
		return idx

	case index == decidedPrefix:
		// Case 3: the very first represented bit differs; the whole range
		// splits into two single-bit leaves under a new binary node, and
		// this node's own decided_prefix advances past the split bit.
		b := makeBinary(t.params.BetaRogue)
		selfLeaf := t.allocUnary(preference, index+1, commonPrefix, t.params.BetaVirtuous, oldChild)
		b.children[origSide] = selfLeaf
		b.children[idSide] = newLeaf
		t.nodes[idx] = b
		return idx

	case index == commonPrefix-1:
		// Case 4: the last represented bit differs; shorten this node's
		// range by one and attach the binary split as its child.
		b := makeBinary(t.params.BetaRogue)
		b.children[origSide] = oldChild
		b.children[idSide] = noChild
		if oldChild != noChild {
			b.children[idSide] = newLeaf
		}
		binIdx := len(t.nodes)
		t.nodes = append(t.nodes, b)
		t.nodes[idx].commonPrefix = commonPrefix - 1
		t.nodes[idx].child = binIdx
		return idx

	default:
		// Case 5: the difference is interior; split the range at index.
		// The prefix up to index stays in this node (shortened), whose
		// child becomes a fresh binary node; both of its branches are new
		// single-bit leaves carrying the old and new preferences.
		b := makeBinary(t.params.BetaRogue)
		selfLeaf := t.allocUnary(preference, index+1, commonPrefix, t.params.BetaVirtuous, oldChild)
		b.children[origSide] = selfLeaf
		b.children[idSide] = newLeaf
		binIdx := len(t.nodes)
		t.nodes = append(t.nodes, b)
		t.nodes[idx].commonPrefix = index
		t.nodes[idx].child = binIdx
		return idx
	}
}

// addBinary implements the binary-node rule of §4.3.1: descend on the side
// matching id's bit, or drop the attempt if that side has no tracking
// child or the child's decided prefix no longer aligns.
func (t *Tree) addBinary(idx int, id ids.ID) int {
	bit := t.nodes[idx].bit
	side := id.Bit(bit)
	child := t.nodes[idx].children[side]
	if child == noChild {
		return idx
	}

	childDecided := t.childDecidedPrefix(child)
	if ids.EqualSubset(bit+1, childDecided, t.nodes[idx].preferences[side], id) {
		t.nodes[idx].children[side] = t.add(child, id)
	}
	return idx
}

func (t *Tree) childDecidedPrefix(idx int) int {
	if t.nodes[idx].kind == kindUnary {
		return t.nodes[idx].decidedPrefix
	}
	return t.nodes[idx].bit
}

// RecordPoll applies a poll to the trie (§4.3.2). reset forces the root to
// treat its inner counter as having just missed quorum (the engine's
// should_falter flag, §4.4). It returns whether the trie is finalized after
// the poll.
func (t *Tree) RecordPoll(votes ids.Bag, reset bool) bool {
	if t.root == noChild {
		return false
	}
	newRoot, _ := t.recordPoll(t.root, votes, reset)
	t.root = newRoot
	return t.nodes[t.root].finalized()
}

func (t *Tree) recordPoll(idx int, votes ids.Bag, reset bool) (int, bool) {
	if t.nodes[idx].kind == kindUnary {
		return t.recordPollUnary(idx, votes, reset)
	}
	return t.recordPollBinary(idx, votes, reset)
}

func (t *Tree) recordPollUnary(idx int, votes ids.Bag, reset bool) (int, bool) {
	if reset {
		t.nodes[idx].uSnowball.RecordUnsuccessfulPoll()
		t.nodes[idx].uShouldReset = true
	}

	if votes.Len() < t.params.Alpha {
		t.nodes[idx].uSnowball.RecordUnsuccessfulPoll()
		t.nodes[idx].uShouldReset = true
		return idx, false
	}

	t.nodes[idx].uSnowball.RecordSuccessfulPoll()

	if child := t.nodes[idx].child; child != noChild {
		shouldReset := t.nodes[idx].uShouldReset
		newChild, _ := t.recordPoll(child, votes, shouldReset)

		if t.nodes[idx].uSnowball.Finalized() {
			return newChild, true
		}

		t.nodes[idx].uPreference = t.nodes[newChild].preference()
		t.nodes[idx].child = newChild
	}

	t.nodes[idx].uShouldReset = false
	return idx, true
}

func (t *Tree) recordPollBinary(idx int, votes ids.Bag, reset bool) (int, bool) {
	bit := t.nodes[idx].bit
	zero, one := ids.Split(votes, bit)

	side := 0
	if one.Len() >= t.params.Alpha {
		side = 1
	}
	winning := zero
	if side == 1 {
		winning = one
	}

	if reset {
		t.nodes[idx].bSnowball.RecordUnsuccessfulPoll()
		t.nodes[idx].bShouldReset[side] = true
	}
	t.nodes[idx].bShouldReset[1-side] = true

	if winning.Len() < t.params.Alpha {
		t.nodes[idx].bSnowball.RecordUnsuccessfulPoll()
		t.nodes[idx].bShouldReset[side] = true
		return idx, false
	}

	t.nodes[idx].bSnowball.RecordSuccessfulPoll(side)

	if child := t.nodes[idx].children[side]; child != noChild {
		childDecided := t.childDecidedPrefix(child)
		filtered := ids.Filter(winning, bit+1, childDecided, t.nodes[idx].preferences[side])
		shouldReset := t.nodes[idx].bShouldReset[side]
		newChild, _ := t.recordPoll(child, filtered, shouldReset)

		if t.nodes[idx].bSnowball.Finalized() {
			return newChild, true
		}

		t.nodes[idx].preferences[side] = t.nodes[newChild].preference()
		t.nodes[idx].children[side] = newChild
	}

	t.nodes[idx].bShouldReset[side] = false
	return idx, true
}
