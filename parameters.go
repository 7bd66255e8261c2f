// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consensus

import (
	"errors"
	"fmt"
	"time"
)

// Error taxonomy sentinels (§7 "Implementation convention"), checked with
// errors.Is rather than compared by value.
var (
	ErrInvalidParameters = errors.New("invalid consensus parameters")
	ErrDecode            = errors.New("decode error")
	ErrConsensusInvariant = errors.New("consensus invariant violation")
	ErrTransient         = errors.New("transient error")
	ErrCrypto            = errors.New("cryptographic error")
)

// Parameters bounds the behavior of a chain's consensus instance (§3, §8).
// K is the sample size per poll; Alpha is the quorum threshold out of K;
// BetaVirtuous and BetaRogue are the consecutive-success counts required to
// finalize a conflict-free and a conflicting decision respectively.
type Parameters struct {
	K                 int
	Alpha             int
	BetaVirtuous      int
	BetaRogue         int
	ConcurrentRepolls int
	OptimalProcessing int

	MaxOutstandingItems   int
	MaxItemProcessingTime time.Duration

	MixedQueryNumPushToValidators    int
	MixedQueryNumPushToNonValidators int
}

// DefaultParameters returns the §8 default tuple.
func DefaultParameters() Parameters {
	return Parameters{
		K:                     20,
		Alpha:                 15,
		BetaVirtuous:          15,
		BetaRogue:             20,
		ConcurrentRepolls:     4,
		OptimalProcessing:     10,
		MaxOutstandingItems:   1024,
		MaxItemProcessingTime: 30 * time.Second,

		MixedQueryNumPushToValidators:    10,
		MixedQueryNumPushToNonValidators: 0,
	}
}

// LocalParameters relaxes K/Alpha/Beta for a single-node test network,
// where quorum among one validator must still be reachable.
func LocalParameters() Parameters {
	p := DefaultParameters()
	p.K = 1
	p.Alpha = 1
	p.BetaVirtuous = 1
	p.BetaRogue = 1
	p.ConcurrentRepolls = 1
	return p
}

// Verify reports the first invariant of §3 that p violates, or nil.
func (p Parameters) Verify() error {
	switch {
	case p.K <= 0:
		return fmt.Errorf("%w: k=%d must be positive", ErrInvalidParameters, p.K)
	case p.Alpha <= 0 || p.Alpha > p.K:
		return fmt.Errorf("%w: alpha=%d must be in (0, k=%d]", ErrInvalidParameters, p.Alpha, p.K)
	case p.BetaVirtuous <= 0:
		return fmt.Errorf("%w: beta_virtuous=%d must be positive", ErrInvalidParameters, p.BetaVirtuous)
	case p.BetaRogue <= 0:
		return fmt.Errorf("%w: beta_rogue=%d must be positive", ErrInvalidParameters, p.BetaRogue)
	case p.BetaVirtuous > p.BetaRogue:
		return fmt.Errorf("%w: beta_virtuous=%d must be <= beta_rogue=%d", ErrInvalidParameters, p.BetaVirtuous, p.BetaRogue)
	case p.ConcurrentRepolls <= 0:
		return fmt.Errorf("%w: concurrent_repolls=%d must be positive", ErrInvalidParameters, p.ConcurrentRepolls)
	case p.ConcurrentRepolls > p.BetaRogue:
		return fmt.Errorf("%w: concurrent_repolls=%d must be <= beta_rogue=%d", ErrInvalidParameters, p.ConcurrentRepolls, p.BetaRogue)
	case p.OptimalProcessing <= 0:
		return fmt.Errorf("%w: optimal_processing=%d must be positive", ErrInvalidParameters, p.OptimalProcessing)
	case p.MaxOutstandingItems <= 0:
		return fmt.Errorf("%w: max_outstanding_items=%d must be positive", ErrInvalidParameters, p.MaxOutstandingItems)
	case p.MaxItemProcessingTime <= 0:
		return fmt.Errorf("%w: max_item_processing_time must be positive", ErrInvalidParameters)
	case p.MixedQueryNumPushToValidators < 0:
		return fmt.Errorf("%w: mixed_query_num_push_to_validators must be non-negative", ErrInvalidParameters)
	case p.MixedQueryNumPushToNonValidators < 0:
		return fmt.Errorf("%w: mixed_query_num_push_to_non_validators must be non-negative", ErrInvalidParameters)
	default:
		return nil
	}
}

// String returns a compact representation for logs.
func (p Parameters) String() string {
	return fmt.Sprintf(
		"Parameters{K=%d, Alpha=%d, BetaVirtuous=%d, BetaRogue=%d, ConcurrentRepolls=%d}",
		p.K, p.Alpha, p.BetaVirtuous, p.BetaRogue, p.ConcurrentRepolls,
	)
}
