// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package snowball implements the Snowflake and Snowball confidence
// counters (§4.2) and the mixed unary/binary trie built from them (§4.3).
package snowball

// UnarySnowflake is a confidence counter over a single, unanimous choice.
// It requires beta consecutive successful polls to latch as finalized; once
// finalized it is absorbing.
type UnarySnowflake struct {
	beta       int
	confidence int
	finalized  bool
}

// NewUnarySnowflake returns a fresh counter with the given finalization
// threshold.
func NewUnarySnowflake(beta int) UnarySnowflake {
	return UnarySnowflake{beta: beta}
}

// RecordSuccessfulPoll increments confidence and latches finalized once beta
// consecutive successes have been observed.
func (sf *UnarySnowflake) RecordSuccessfulPoll() {
	if sf.finalized {
		return
	}
	sf.confidence++
	if sf.confidence >= sf.beta {
		sf.finalized = true
	}
}

// RecordUnsuccessfulPoll resets confidence to zero. A latched finalized
// never clears.
func (sf *UnarySnowflake) RecordUnsuccessfulPoll() {
	sf.confidence = 0
}

// Finalized reports whether beta consecutive successes have ever been
// observed.
func (sf *UnarySnowflake) Finalized() bool {
	return sf.finalized
}

// Confidence returns the current consecutive-success count.
func (sf *UnarySnowflake) Confidence() int {
	return sf.confidence
}

// Extend transitions a unary snowflake to a binary one upon encountering a
// second choice, preserving confidence and the finalized latch. choice is
// the side ([0,1]) that the unary counter's one known preference maps to.
// beta is the threshold of the resulting binary counter, which may differ
// from the unary counter's own (e.g. promoting to the rogue threshold).
func (sf *UnarySnowflake) Extend(beta, choice int) BinarySnowflake {
	bf := BinarySnowflake{
		beta:       beta,
		finalized:  sf.finalized,
		preference: choice,
	}
	bf.confidence[choice] = sf.confidence
	return bf
}

// Clone returns an independent copy of sf.
func (sf *UnarySnowflake) Clone() UnarySnowflake {
	return *sf
}

// UnarySnowball augments UnarySnowflake with a cumulative successful-poll
// count that never resets, used as a tiebreaker for preference once a node
// becomes binary.
type UnarySnowball struct {
	UnarySnowflake
	numSuccessfulPolls int
}

// NewUnarySnowball returns a fresh Snowball counter with the given
// finalization threshold.
func NewUnarySnowball(beta int) UnarySnowball {
	return UnarySnowball{UnarySnowflake: NewUnarySnowflake(beta)}
}

// RecordSuccessfulPoll increments the cumulative count in addition to the
// embedded Snowflake's confidence counter.
func (sb *UnarySnowball) RecordSuccessfulPoll() {
	sb.numSuccessfulPolls++
	sb.UnarySnowflake.RecordSuccessfulPoll()
}

// NumSuccessfulPolls returns the monotone cumulative successful-poll count.
func (sb *UnarySnowball) NumSuccessfulPolls() int {
	return sb.numSuccessfulPolls
}

// Extend transitions a unary snowball to a binary one, migrating the
// cumulative count into the chosen side. beta is the threshold of the
// resulting binary counter (the caller may promote to a higher threshold,
// e.g. beta_rogue, on transition).
func (sb *UnarySnowball) Extend(beta, choice int) BinarySnowball {
	bs := BinarySnowball{BinarySnowflake: sb.UnarySnowflake.Extend(beta, choice)}
	bs.numSuccessfulPolls[choice] = sb.numSuccessfulPolls
	return bs
}

// Clone returns an independent copy of sb.
func (sb *UnarySnowball) Clone() UnarySnowball {
	return *sb
}
