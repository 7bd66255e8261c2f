// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gossip

import (
	"crypto/sha256"
	"encoding/binary"
	"sync"

	"github.com/bits-and-blooms/bitset"

	"github.com/luxfi/consensus-core/ids"
)

// numHashes is the number of independent hash positions set per inserted
// item. Fixed rather than derived from a target false-positive rate; the
// filter is rebuilt on every GetFilter call (§4.5 "GetFilter") so a stale
// filter ages out quickly regardless of its exact FP rate.
const numHashes = 8

// bloomFilter is a salted, resettable Bloom filter over ids.ID, the
// concrete shape of the filter exchanged in a pull-gossip Request.
type bloomFilter struct {
	bits *bitset.BitSet
	salt [32]byte
	m    uint
}

func newBloomFilter(m uint, salt [32]byte) *bloomFilter {
	return &bloomFilter{
		bits: bitset.New(m),
		salt: salt,
		m:    m,
	}
}

func (b *bloomFilter) positions(id ids.ID) [numHashes]uint {
	var positions [numHashes]uint
	h := sha256.New()
	h.Write(b.salt[:])
	h.Write(id[:])
	digest := h.Sum(nil)
	for len(digest) < numHashes*8 {
		next := sha256.Sum256(digest[len(digest)-sha256.Size:])
		digest = append(digest, next[:]...)
	}
	for i := 0; i < numHashes; i++ {
		v := binary.BigEndian.Uint64(digest[i*8:])
		positions[i] = uint(v) % b.m
	}
	return positions
}

func (b *bloomFilter) Add(id ids.ID) {
	for _, pos := range b.positions(id) {
		b.bits.Set(pos)
	}
}

func (b *bloomFilter) Contains(id ids.ID) bool {
	for _, pos := range b.positions(id) {
		if !b.bits.Test(pos) {
			return false
		}
	}
	return true
}

func (b *bloomFilter) Marshal() []byte {
	bytes, err := b.bits.MarshalBinary()
	if err != nil {
		return nil
	}
	return bytes
}

// InMemorySet is a concrete, goroutine-safe Set[T] backed by a map of known
// items and a Bloom filter rebuilt on every GetFilter call (§6 "Set
// contract"). The salt comes from saltSrc on each call; without one it is
// derived from the item count and filter size, so it only changes when
// the set does.
type InMemorySet[T Gossipable] struct {
	lock     sync.Mutex
	items    map[ids.ID]T
	bloomLen uint
	saltSrc  func() [32]byte
}

// NewInMemorySet returns an empty InMemorySet whose Bloom filter holds
// bloomBits bits. saltSrc supplies a fresh salt per GetFilter call; pass
// nil to derive the salt from the current item count and filter size
// (deterministic, but adequate for a single-node test harness).
func NewInMemorySet[T Gossipable](bloomBits uint, saltSrc func() [32]byte) *InMemorySet[T] {
	if bloomBits == 0 {
		bloomBits = 8 * 1024
	}
	return &InMemorySet[T]{
		items:    make(map[ids.ID]T),
		bloomLen: bloomBits,
		saltSrc:  saltSrc,
	}
}

// Add inserts item if its ID is not already known.
func (s *InMemorySet[T]) Add(item T) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	id := item.GossipID()
	if _, ok := s.items[id]; ok {
		return nil
	}
	s.items[id] = item
	return nil
}

// Iterate calls f with every known item until f returns false.
func (s *InMemorySet[T]) Iterate(f func(T) bool) {
	s.lock.Lock()
	items := make([]T, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item)
	}
	s.lock.Unlock()

	for _, item := range items {
		if !f(item) {
			return
		}
	}
}

// GetFilter builds a Bloom filter over every known item, keyed by the
// salt from nextSalt, and returns both (§4.5 "execute_gossip").
func (s *InMemorySet[T]) GetFilter() ([]byte, []byte, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	salt := s.nextSalt()
	filter := newBloomFilter(s.bloomLen, salt)
	for id := range s.items {
		filter.Add(id)
	}
	return filter.Marshal(), salt[:], nil
}

func (s *InMemorySet[T]) nextSalt() [32]byte {
	if s.saltSrc != nil {
		return s.saltSrc()
	}
	var salt [32]byte
	binary.BigEndian.PutUint64(salt[:8], uint64(len(s.items)))
	binary.BigEndian.PutUint64(salt[8:16], uint64(s.bloomLen))
	return salt
}
