// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"crypto/sha256"
	"sort"

	"github.com/luxfi/consensus-core/ids"
	"github.com/luxfi/consensus-core/packer"
)

// Vertex is the batched transaction envelope of §4.6.1 "Vertex encoding".
// ParentIDs and Txs are always normalized into canonical order (parent
// IDs ascending, transactions by ascending SHA-256 of their bytes) before
// packing, so two vertices with the same logical contents always encode
// identically regardless of construction order.
type Vertex struct {
	ChainID   ids.ID
	Height    uint64
	Epoch     uint32
	ParentIDs []ids.ID
	Txs       [][]byte
}

func (v *Vertex) TypeID() TypeID { return TypeVertex }

// sortedParentIDs returns ParentIDs sorted ascending.
func (v *Vertex) sortedParentIDs() []ids.ID {
	sorted := make([]ids.ID, len(v.ParentIDs))
	copy(sorted, v.ParentIDs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })
	return sorted
}

// sortedTxs returns Txs sorted ascending by SHA-256 of their bytes.
func (v *Vertex) sortedTxs() [][]byte {
	sorted := make([][]byte, len(v.Txs))
	copy(sorted, v.Txs)
	sort.Slice(sorted, func(i, j int) bool {
		hi := sha256.Sum256(sorted[i])
		hj := sha256.Sum256(sorted[j])
		for k := range hi {
			if hi[k] != hj[k] {
				return hi[k] < hj[k]
			}
		}
		return false
	})
	return sorted
}

// PackBody encodes the vertex per §4.6.1: u16 codec_version, 32-byte
// chain_id, u64 height, u32 epoch, u32 parent_count + ascending 32-byte
// parent IDs, u32 tx_count + each transaction as u32 length || bytes,
// ordered by ascending SHA-256 of the transaction bytes.
func (v *Vertex) PackBody(p *packer.Packer) error {
	if err := p.PackU16(uint16(CurrentVersion)); err != nil {
		return err
	}
	if err := p.PackBytes(v.ChainID[:]); err != nil {
		return err
	}
	if err := p.PackU64(v.Height); err != nil {
		return err
	}
	if err := p.PackU32(v.Epoch); err != nil {
		return err
	}

	parents := v.sortedParentIDs()
	if err := p.PackU32(uint32(len(parents))); err != nil {
		return err
	}
	for _, id := range parents {
		if err := p.PackBytes(id[:]); err != nil {
			return err
		}
	}

	txs := v.sortedTxs()
	if err := p.PackU32(uint32(len(txs))); err != nil {
		return err
	}
	for _, tx := range txs {
		if err := p.PackBytesWithHeader(tx); err != nil {
			return err
		}
	}
	return nil
}

// UnpackBody decodes a vertex packed by PackBody. The result already
// carries its canonical (sorted) ParentIDs and Txs order.
func (v *Vertex) UnpackBody(p *packer.Packer) error {
	version, err := p.UnpackU16()
	if err != nil {
		return err
	}
	if Version(version) != CurrentVersion {
		return ErrUnsupportedVersion
	}

	chainIDBytes, err := p.UnpackBytes(ids.IDLen)
	if err != nil {
		return err
	}
	v.ChainID, err = ids.FromBytes(chainIDBytes)
	if err != nil {
		return err
	}

	if v.Height, err = p.UnpackU64(); err != nil {
		return err
	}
	if v.Epoch, err = p.UnpackU32(); err != nil {
		return err
	}

	parentCount, err := p.UnpackU32()
	if err != nil {
		return err
	}
	v.ParentIDs = make([]ids.ID, parentCount)
	for i := range v.ParentIDs {
		b, err := p.UnpackBytes(ids.IDLen)
		if err != nil {
			return err
		}
		id, err := ids.FromBytes(b)
		if err != nil {
			return err
		}
		v.ParentIDs[i] = id
	}

	txCount, err := p.UnpackU32()
	if err != nil {
		return err
	}
	v.Txs = make([][]byte, txCount)
	for i := range v.Txs {
		tx, err := p.UnpackBytesWithHeader()
		if err != nil {
			return err
		}
		v.Txs[i] = tx
	}
	return nil
}

// DefaultManager returns a Manager with the vertex envelope registered
// under CoreRegistry, the only core type with a factory here; the other
// core TypeIDs are declared but not registered. Call once at startup per
// §9 "Global state".
func DefaultManager() *Manager {
	m := NewManager()
	mustRegister(m, CoreRegistry, TypeVertex, func() Payload { return &Vertex{} })
	return m
}

func mustRegister(m *Manager, registry Registry, id TypeID, factory Factory) {
	if err := m.RegisterType(registry, id, factory); err != nil {
		panic(err)
	}
}
