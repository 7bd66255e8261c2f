// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

/*
Package consensus implements a Snowman-style metastable consensus engine:
Snowflake and Snowball confidence counters, a mixed unary/binary trie over
256-bit identifiers for conflict resolution, a per-parent block layer built
on that trie, a pull-based gossip engine for propagating arbitrary
gossipable items between peers, and the wire codec and TLS peer handshake
binding a node's identity to its leaf certificate.

# Architecture

  - ids/       32-byte and 20-byte identifiers, CB58 encoding, vote bags
  - snowball/  Snowflake/Snowball counters and the Snowball trie
  - snow/      the Snowman block layer built on top of the trie
  - gossip/    the pull-gossip engine
  - packer/    the big-endian wire packer
  - codec/     the versioned codec and type registries
  - wire/      the network message envelope and message variants
  - peer/      the TLS peer handshake and certificate-derived NodeID
  - validators/ the validator-set contract sampled by polls and gossip
  - metrics/   Prometheus-backed counters and averagers
  - log/       structured logging

# Consensus parameters

Parameters bounds sample size, quorum, and finalization thresholds:

	p := consensus.DefaultParameters()
	if err := p.Verify(); err != nil {
		// reject at startup; never at runtime
	}

# Single-threaded cooperative state

A chain's trie and block records are mutated under a single logical owner;
the trie's Add and RecordPoll and the block layer's Add and RecordPoll
are synchronous. The gossip engine is
cooperative-concurrent: one scheduler loop per namespace issues requests
and integrates responses, observing a stop signal with tick granularity.
The network layer is parallel across peer connections.
*/
package consensus
