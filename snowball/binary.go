// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snowball

// BinarySnowflake is a confidence counter choosing between two sides, 0 and
// 1. A successful poll for the current preference bumps confidence; a
// successful poll for the other side switches preference and resets
// confidence to 1.
type BinarySnowflake struct {
	beta       int
	confidence [2]int
	preference int
	finalized  bool
}

// NewBinarySnowflake returns a fresh counter with the given threshold and
// initial preference.
func NewBinarySnowflake(beta, choice int) BinarySnowflake {
	return BinarySnowflake{beta: beta, preference: choice}
}

// RecordSuccessfulPoll records a successful poll for choice.
func (sf *BinarySnowflake) RecordSuccessfulPoll(choice int) {
	if sf.finalized {
		return
	}
	if choice == sf.preference {
		sf.confidence[choice]++
	} else {
		sf.preference = choice
		sf.confidence[1-choice] = 0
		sf.confidence[choice] = 1
	}
	if sf.confidence[choice] >= sf.beta {
		sf.finalized = true
	}
}

// RecordUnsuccessfulPoll resets both sides' confidence to zero.
func (sf *BinarySnowflake) RecordUnsuccessfulPoll() {
	sf.confidence[0] = 0
	sf.confidence[1] = 0
}

// Preference returns the snowflake-preferred side.
func (sf *BinarySnowflake) Preference() int {
	return sf.preference
}

// Confidence returns the current consecutive-success count for side.
func (sf *BinarySnowflake) Confidence(side int) int {
	return sf.confidence[side]
}

// Finalized reports whether a side has reached beta consecutive successes.
func (sf *BinarySnowflake) Finalized() bool {
	return sf.finalized
}

// Clone returns an independent copy of sf.
func (sf *BinarySnowflake) Clone() BinarySnowflake {
	return *sf
}

// BinarySnowball augments BinarySnowflake with cumulative per-side success
// counts. Its "snowball preference" is the side with the higher cumulative
// count, distinct from the snowflake's own (most-recent-streak) preference.
type BinarySnowball struct {
	BinarySnowflake
	numSuccessfulPolls [2]int
}

// NewBinarySnowball returns a fresh counter with the given threshold and
// initial preference.
func NewBinarySnowball(beta, choice int) BinarySnowball {
	return BinarySnowball{BinarySnowflake: NewBinarySnowflake(beta, choice)}
}

// RecordSuccessfulPoll records a successful poll for choice.
func (sb *BinarySnowball) RecordSuccessfulPoll(choice int) {
	sb.numSuccessfulPolls[choice]++
	sb.BinarySnowflake.RecordSuccessfulPoll(choice)
}

// RecordUnsuccessfulPoll resets the embedded snowflake's confidence; the
// cumulative counts never reset.
func (sb *BinarySnowball) RecordUnsuccessfulPoll() {
	sb.BinarySnowflake.RecordUnsuccessfulPoll()
}

// SnowballPreference returns the side with the higher cumulative
// successful-poll count, breaking ties toward side 0.
func (sb *BinarySnowball) SnowballPreference() int {
	if sb.numSuccessfulPolls[1] > sb.numSuccessfulPolls[0] {
		return 1
	}
	return 0
}

// NumSuccessfulPolls returns the cumulative successful-poll count for side.
func (sb *BinarySnowball) NumSuccessfulPolls(side int) int {
	return sb.numSuccessfulPolls[side]
}

// Clone returns an independent copy of sb.
func (sb *BinarySnowball) Clone() BinarySnowball {
	return *sb
}
