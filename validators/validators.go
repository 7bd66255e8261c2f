// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package validators implements the weighted validator-set contract
// sampled by the gossip and consensus layers (§6 "Set contract" sibling —
// validator sampling is the C9 ambient-stack addition).
package validators

import (
	"context"

	"github.com/luxfi/consensus-core/ids"
)

// State exposes the validator set as known at a given chain height, the
// contract the consensus engine queries to learn who may vote.
type State interface {
	GetValidatorSet(ctx context.Context, height uint64, chainID ids.ID) (map[ids.NodeID]*GetValidatorOutput, error)
	GetCurrentValidators(subnetID ids.ID) (map[ids.NodeID]*GetValidatorOutput, error)
}

// GetValidatorOutput is the per-validator record returned by State.
type GetValidatorOutput struct {
	NodeID    ids.NodeID
	PublicKey []byte
	Light     uint64
}

// Set is a snapshot of validators for one chain, sampled uniformly at
// random weighted by Light (stake or equivalent unit).
type Set interface {
	Has(ids.NodeID) bool
	Len() int
	List() []Validator
	Light() uint64
	Sample(size int) ([]ids.NodeID, error)
}

// Validator is a single member of a Set.
type Validator interface {
	ID() ids.NodeID
	Light() uint64
}

// ValidatorImpl is a concrete Validator.
type ValidatorImpl struct {
	NodeID   ids.NodeID
	LightVal uint64
}

// ID returns the validator's node ID.
func (v *ValidatorImpl) ID() ids.NodeID {
	return v.NodeID
}

// Light returns the validator's sampling weight.
func (v *ValidatorImpl) Light() uint64 {
	return v.LightVal
}

// Manager owns one Set per chain and notifies listeners of membership
// changes.
type Manager interface {
	GetValidators(chainID ids.ID) (Set, error)
	GetLight(chainID ids.ID, nodeID ids.NodeID) uint64
	TotalLight(chainID ids.ID) (uint64, error)
}

// SetCallbackListener observes membership changes on a single Set.
type SetCallbackListener interface {
	OnValidatorAdded(nodeID ids.NodeID, light uint64)
	OnValidatorRemoved(nodeID ids.NodeID, light uint64)
	OnValidatorLightChanged(nodeID ids.NodeID, oldLight, newLight uint64)
}

// ManagerCallbackListener observes membership changes across all chains a
// Manager tracks.
type ManagerCallbackListener interface {
	OnValidatorAdded(chainID ids.ID, nodeID ids.NodeID, light uint64)
	OnValidatorRemoved(chainID ids.ID, nodeID ids.NodeID, light uint64)
	OnValidatorLightChanged(chainID ids.ID, nodeID ids.NodeID, oldLight, newLight uint64)
}

// Connector notifies a subscriber when a validator's peer connection comes
// up or down, independent of set membership.
type Connector interface {
	Connected(ctx context.Context, nodeID ids.NodeID) error
	Disconnected(ctx context.Context, nodeID ids.NodeID) error
}
