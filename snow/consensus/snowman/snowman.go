// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package snowman implements the Snowman block layer (§4.4): each tracked
// block's children are resolved by a Snowball trie owned by the parent, and
// acceptance propagates down the chain as tries finalize.
package snowman

import (
	"context"
	"fmt"

	consensus "github.com/luxfi/consensus-core"
	"github.com/luxfi/consensus-core/choices"
	"github.com/luxfi/consensus-core/ids"
	"github.com/luxfi/consensus-core/snowball"
)

// Block is the VM contract consumed by this layer (§6).
type Block interface {
	ID() ids.ID
	ParentID() ids.ID
	Height() uint64
	Bytes() []byte
	Status() choices.Status

	Verify(context.Context) error
	Accept(context.Context) error
	Reject(context.Context) error
}

// Consensus is the engine-facing surface of the block layer.
type Consensus interface {
	Initialize(ctx context.Context, params consensus.Parameters, lastAccepted Block) error
	Add(ctx context.Context, blk Block) error
	RecordPoll(ctx context.Context, votes ids.Bag) error
	Finalized() bool
	Parameters() consensus.Parameters
	Preference() ids.ID
	IsPreferred(id ids.ID) bool
	LastAccepted() ids.ID
}

// record is the per-parent conflict resolver of §4.4: a trie keyed over the
// identifiers of the parent's known children, created lazily on the first
// child.
type record struct {
	trie         *snowball.Tree
	children     map[ids.ID]Block
	shouldFalter bool
}

// Topological is the Snowman consensus engine: one conflict-resolving trie
// per parent, accept/reject propagated down as tries finalize.
type Topological struct {
	params  consensus.Parameters
	blocks  map[ids.ID]Block
	records map[ids.ID]*record // keyed by parent ID

	lastAccepted ids.ID
	preference   ids.ID
}

// NewTopological returns an uninitialized engine; call Initialize before use.
func NewTopological() *Topological {
	return &Topological{
		blocks:  make(map[ids.ID]Block),
		records: make(map[ids.ID]*record),
	}
}

// Initialize seeds the engine with the chain's accepted genesis/tip.
func (t *Topological) Initialize(ctx context.Context, params consensus.Parameters, lastAccepted Block) error {
	if err := params.Verify(); err != nil {
		return err
	}
	t.params = params
	t.lastAccepted = lastAccepted.ID()
	t.preference = lastAccepted.ID()
	t.blocks[lastAccepted.ID()] = lastAccepted
	return nil
}

func (t *Topological) treeParams() snowball.TreeParams {
	return snowball.TreeParams{
		Alpha:        t.params.Alpha,
		BetaVirtuous: t.params.BetaVirtuous,
		BetaRogue:    t.params.BetaRogue,
	}
}

func (t *Topological) recordFor(parentID ids.ID) *record {
	rec, ok := t.records[parentID]
	if !ok {
		rec = &record{
			trie:     snowball.NewTree(t.treeParams()),
			children: make(map[ids.ID]Block),
		}
		t.records[parentID] = rec
	}
	return rec
}

// Add registers blk as a candidate child of its parent (§4.4 "add_child").
// Re-adding a known block, or adding under an already-finalized parent
// trie, is a no-op; neither is treated as an error.
func (t *Topological) Add(ctx context.Context, blk Block) error {
	if _, known := t.blocks[blk.ID()]; known {
		return nil
	}

	parentID := blk.ParentID()
	if parentID != t.lastAccepted {
		parent, trackingParent := t.blocks[parentID]
		if !trackingParent {
			return fmt.Errorf("%w: parent %s not tracked", consensus.ErrConsensusInvariant, parentID)
		}
		if parent.Status().Decided() {
			// The parent's children were already decided; a late
			// competitor is dropped.
			return nil
		}
	}

	if err := blk.Verify(ctx); err != nil {
		// A VM-layer verification failure is not a consensus error (§4.4);
		// the block is simply never inserted.
		return nil
	}

	rec := t.recordFor(parentID)
	rec.trie.Add(blk.ID())
	rec.children[blk.ID()] = blk
	t.blocks[blk.ID()] = blk

	t.recomputePreference()
	return nil
}

// recomputePreference walks the preferred child at each tracked parent,
// starting from the last accepted block, to find the current preferred tip.
func (t *Topological) recomputePreference() {
	cur := t.lastAccepted
	for {
		rec, ok := t.records[cur]
		if !ok {
			break
		}
		pref := rec.trie.Preference()
		if pref == ids.Empty {
			break
		}
		if _, tracked := rec.children[pref]; !tracked {
			break
		}
		cur = pref
	}
	t.preference = cur
}

// RecordPoll applies votes (tip identifiers reported by peers) to every
// ancestor chain from the last accepted block down to each vote, aggregating
// votes for the child each chain passes through at every level, then
// folding should_falter and acceptance/rejection down the tree (§4.4).
func (t *Topological) RecordPoll(ctx context.Context, votes ids.Bag) error {
	perParentVotes := make(map[ids.ID]ids.Bag)

	for _, tip := range votes.List() {
		count := votes.Count(tip)
		for _, pc := range t.ancestorChainChildren(tip) {
			bag, ok := perParentVotes[pc.parent]
			if !ok {
				bag = ids.NewBag()
			}
			bag.AddCount(pc.child, count)
			perParentVotes[pc.parent] = bag
		}
	}

	return t.pollFrom(ctx, t.lastAccepted, perParentVotes)
}

type parentChild struct {
	parent ids.ID
	child  ids.ID
}

// ancestorChainChildren walks from tip up to the last accepted block (via
// ParentID) and returns, for each ancestor along that path, the (parent,
// child) pair the tip's vote should be credited to.
func (t *Topological) ancestorChainChildren(tip ids.ID) []parentChild {
	var chain []parentChild
	cur, ok := t.blocks[tip]
	if !ok {
		return nil
	}
	for {
		parentID := cur.ParentID()
		chain = append(chain, parentChild{parent: parentID, child: cur.ID()})
		if parentID == t.lastAccepted {
			break
		}
		parentBlk, ok := t.blocks[parentID]
		if !ok {
			break
		}
		cur = parentBlk
	}
	return chain
}

// pollFrom applies the vote bag for parentID's record. If the trie
// finalizes, it accepts the decided child, rejects its siblings, and
// recurses into that child's record; otherwise it stops there.
func (t *Topological) pollFrom(ctx context.Context, parentID ids.ID, perParentVotes map[ids.ID]ids.Bag) error {
	rec, ok := t.records[parentID]
	if !ok {
		return nil
	}

	bag, hasVotes := perParentVotes[parentID]
	if !hasVotes {
		bag = ids.NewBag()
	}

	finalized := rec.trie.RecordPoll(bag, rec.shouldFalter)
	rec.shouldFalter = bag.Len() < t.params.Alpha

	t.recomputePreference()

	if !finalized {
		return nil
	}

	decided := rec.trie.Preference()
	if err := t.accept(ctx, parentID, decided); err != nil {
		return err
	}
	return t.pollFrom(ctx, decided, perParentVotes)
}

// accept finalizes the winning child under parentID and rejects every
// sibling (and, transitively, their descendants).
func (t *Topological) accept(ctx context.Context, parentID, winnerID ids.ID) error {
	rec := t.records[parentID]
	winner, ok := rec.children[winnerID]
	if !ok {
		return nil
	}

	if err := winner.Accept(ctx); err != nil {
		return fmt.Errorf("%w: accept %s: %v", consensus.ErrConsensusInvariant, winnerID, err)
	}
	t.lastAccepted = winnerID

	for id, blk := range rec.children {
		if id == winnerID {
			continue
		}
		if err := t.rejectSubtree(ctx, blk); err != nil {
			return err
		}
	}

	delete(t.records, parentID)
	return nil
}

func (t *Topological) rejectSubtree(ctx context.Context, blk Block) error {
	if err := blk.Reject(ctx); err != nil {
		return fmt.Errorf("%w: reject %s: %v", consensus.ErrConsensusInvariant, blk.ID(), err)
	}
	rec, ok := t.records[blk.ID()]
	if !ok {
		return nil
	}
	for _, child := range rec.children {
		if err := t.rejectSubtree(ctx, child); err != nil {
			return err
		}
	}
	delete(t.records, blk.ID())
	return nil
}

// Finalized reports whether every tracked parent has been decided, i.e. no
// outstanding conflict resolution remains.
func (t *Topological) Finalized() bool {
	return len(t.records) == 0
}

// Parameters returns the parameters this engine was initialized with.
func (t *Topological) Parameters() consensus.Parameters {
	return t.params
}

// Preference returns the tip of the currently preferred chain.
func (t *Topological) Preference() ids.ID {
	return t.preference
}

// IsPreferred reports whether id lies on the path from the last accepted
// block to the current preference.
func (t *Topological) IsPreferred(id ids.ID) bool {
	cur := t.preference
	for {
		if cur == id {
			return true
		}
		if cur == t.lastAccepted {
			return cur == id
		}
		blk, ok := t.blocks[cur]
		if !ok {
			return false
		}
		cur = blk.ParentID()
	}
}

// LastAccepted returns the most recently accepted block's ID.
func (t *Topological) LastAccepted() ids.ID {
	return t.lastAccepted
}
