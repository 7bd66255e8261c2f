// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package gossip implements the pull-gossip engine (§4.5): a single
// scheduler loop per namespace that, on each tick, samples a bloom filter
// from a shared Set and solicits PollSize peers to fill in what it is
// missing.
package gossip

import (
	"context"
	"time"

	"github.com/luxfi/consensus-core/ids"
	"github.com/luxfi/log"
)

// Gossipable is any item the Set can store and gossip about.
type Gossipable interface {
	GossipID() ids.ID
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
}

// Set is the shared collection of known items (§6 "Set contract"). The
// lock discipline of §5 applies: implementations must hold their internal
// lock only across Add/GetFilter/Iterate, never across an AppRequestAny
// call.
type Set[T Gossipable] interface {
	Add(item T) error
	Iterate(f func(T) bool)
	GetFilter() (bloom []byte, salt []byte, err error)
}

// Client is the peer-messaging contract consumed by the engine (§6
// "Client contract").
type Client interface {
	AppRequestAny(ctx context.Context, request []byte, onResponse func(response []byte, err error)) error
	AppGossip(ctx context.Context, request []byte) error
}

// Config configures one gossip task.
type Config struct {
	// Frequency is the tick interval.
	Frequency time.Duration
	// PollSize is the number of peers solicited per tick.
	PollSize int
}

// Request is the wire shape of a pull-gossip solicitation.
type Request struct {
	Filter []byte
	Salt   []byte
}

// Response is the wire shape of a pull-gossip reply: zero or more
// marshaled Gossipable items.
type Response struct {
	Gossip [][]byte
}

// Codec marshals and unmarshals Request/Response. Production callers
// supply the wire codec of §4.6.2; tests may supply a trivial one.
type Codec interface {
	EncodeRequest(Request) ([]byte, error)
	DecodeResponse([]byte) (Response, error)
}

// Gossiper runs one gossip task against a Set of type T.
type Gossiper[T Gossipable] struct {
	config Config
	set    Set[T]
	client Client
	codec  Codec
	logger log.Logger
	newT   func() T

	stop chan struct{}
	done chan struct{}
}

// New returns a Gossiper ready to Run. newT constructs a zero-value T for
// unmarshaling incoming gossip items.
func New[T Gossipable](config Config, set Set[T], client Client, codec Codec, logger log.Logger, newT func() T) *Gossiper[T] {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	return &Gossiper[T]{
		config: config,
		set:    set,
		client: client,
		codec:  codec,
		logger: logger,
		newT:   newT,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Run is the tick-or-stop cooperative loop of §4.5/§9 "Cooperative
// scheduling". It blocks until Stop is called; Stop has priority over a
// pending tick.
func (g *Gossiper[T]) Run(ctx context.Context) {
	defer close(g.done)

	ticker := time.NewTicker(g.config.Frequency)
	defer ticker.Stop()

	for {
		select {
		case <-g.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			select {
			case <-g.stop:
				return
			default:
			}
			if err := g.tick(ctx); err != nil {
				g.logger.Debug("gossip tick failed", "error", err)
			}
		}
	}
}

// Stop signals Run to exit at the next tick-or-stop selection and blocks
// until it has. In-flight AppRequestAny callbacks are not cancelled; their
// late additions to the Set are best-effort (§4.5 "On stop").
func (g *Gossiper[T]) Stop() {
	close(g.stop)
	<-g.done
}

func (g *Gossiper[T]) tick(ctx context.Context) error {
	bloom, salt, err := g.set.GetFilter()
	if err != nil {
		return err
	}

	requestBytes, err := g.codec.EncodeRequest(Request{Filter: bloom, Salt: salt})
	if err != nil {
		return err
	}

	for i := 0; i < g.config.PollSize; i++ {
		if err := g.client.AppRequestAny(ctx, requestBytes, g.handleResponse); err != nil {
			g.logger.Debug("gossip request dispatch failed", "error", err)
		}
	}
	return nil
}

// handleResponse decodes a PullGossipResponse and integrates each item
// into the Set. Decode failures and per-item failures are logged and
// skipped; they never abort the tick (§4.5).
func (g *Gossiper[T]) handleResponse(responseBytes []byte, reqErr error) {
	if reqErr != nil {
		g.logger.Debug("gossip request failed", "error", reqErr)
		return
	}

	resp, err := g.codec.DecodeResponse(responseBytes)
	if err != nil {
		g.logger.Debug("gossip response decode failed", "error", err)
		return
	}

	for _, raw := range resp.Gossip {
		item := g.newT()
		if err := item.Unmarshal(raw); err != nil {
			g.logger.Debug("gossip item unmarshal failed", "error", err)
			continue
		}
		if err := g.set.Add(item); err != nil {
			g.logger.Debug("gossip item add failed", "id", item.GossipID(), "error", err)
			continue
		}
	}
}
