// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ids

import "github.com/luxfi/consensus-core/utils/bag"

// Bag is a multiset of identifiers, the vote-tally type the trie of §4.3
// records polls against.
type Bag = bag.Bag[ID]

// NewBag returns an empty Bag.
func NewBag() Bag { return bag.New[ID]() }

// BagOf returns a Bag containing the given votes.
func BagOf(votes ...ID) Bag { return bag.Of(votes...) }

// Split partitions votes by the value of bit bitIndex, returning the
// sub-bags for bit 0 and bit 1 respectively. Used by binary trie nodes to
// divide an incoming poll between their two children.
func Split(votes Bag, bitIndex int) (zero, one Bag) {
	zero = bag.New[ID]()
	one = bag.New[ID]()
	for _, id := range votes.List() {
		count := votes.Count(id)
		if id.Bit(bitIndex) == 0 {
			zero.AddCount(id, count)
		} else {
			one.AddCount(id, count)
		}
	}
	return zero, one
}

// Filter returns the sub-bag of votes whose identifiers agree with ref on
// every bit in [lo, hi). Used before recursing into a trie child to drop
// votes that are inconsistent with that subtree's decided prefix.
func Filter(votes Bag, lo, hi int, ref ID) Bag {
	return votes.Filter(func(id ID) bool {
		return EqualSubset(lo, hi, id, ref)
	})
}
