// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gossip

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/luxfi/consensus-core/gossip/gossipmock"
	"github.com/luxfi/consensus-core/ids"
)

type testItem struct {
	id ids.ID
}

func (i *testItem) GossipID() ids.ID { return i.id }

func (i *testItem) Marshal() ([]byte, error) {
	return i.id[:], nil
}

func (i *testItem) Unmarshal(b []byte) error {
	id, err := ids.FromBytes(b)
	if err != nil {
		return err
	}
	i.id = id
	return nil
}

func newTestItem() *testItem { return &testItem{} }

// TestGossiperZeroPollSizeStopsCleanly mirrors the reference scenario: with
// frequency=200ms and poll_size=0, running for 5s and then stopping issues
// zero requests and returns cleanly.
func TestGossiperZeroPollSizeStopsCleanly(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := gossipmock.NewClient(ctrl)
	client.EXPECT().AppRequestAny(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	set := NewInMemorySet[*testItem](1024, nil)

	g := New[*testItem](Config{Frequency: 200 * time.Millisecond, PollSize: 0}, set, client, GzipCodec{}, nil, newTestItem)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		g.Run(ctx)
		close(done)
	}()

	time.Sleep(5 * time.Second)
	g.Stop()
	<-done
}

// TestGossiperTickDispatchesPollSizeRequests checks that one tick issues
// exactly PollSize AppRequestAny calls carrying an encoded filter.
func TestGossiperTickDispatchesPollSizeRequests(t *testing.T) {
	require := require.New(t)

	ctrl := gomock.NewController(t)
	client := gossipmock.NewClient(ctrl)

	var requests atomic.Int32
	client.EXPECT().
		AppRequestAny(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, request []byte, onResponse func([]byte, error)) error {
			requests.Add(1)
			require.NotEmpty(request)
			return nil
		}).
		Times(3)

	set := NewInMemorySet[*testItem](1024, nil)
	g := New[*testItem](Config{Frequency: time.Hour, PollSize: 3}, set, client, GzipCodec{}, nil, newTestItem)

	require.NoError(g.tick(context.Background()))
	require.Equal(int32(3), requests.Load())
}

// TestGossiperHandleResponseAddsItems exercises the decode-then-add path,
// including that a malformed item in the middle of a response is skipped
// without aborting the rest.
func TestGossiperHandleResponseAddsItems(t *testing.T) {
	require := require.New(t)

	var good1, good2 ids.ID
	good1[0] = 0x01
	good2[0] = 0x02

	codec := GzipCodec{}
	respBytes, err := codec.EncodeResponse(Response{
		Gossip: [][]byte{good1[:], {0x01, 0x02}, good2[:]},
	})
	require.NoError(err)

	set := NewInMemorySet[*testItem](1024, nil)
	g := New[*testItem](Config{Frequency: time.Hour, PollSize: 1}, set, nil, codec, nil, newTestItem)

	g.handleResponse(respBytes, nil)

	var seen int
	set.Iterate(func(item *testItem) bool {
		seen++
		return true
	})
	require.Equal(2, seen)
}

// TestBloomFilterRoundTrip confirms every added ID still tests positive
// after marshaling the filter.
func TestBloomFilterRoundTrip(t *testing.T) {
	require := require.New(t)

	var salt [32]byte
	f := newBloomFilter(2048, salt)

	var id1, id2 ids.ID
	id1[0] = 0x11
	id2[0] = 0x22
	f.Add(id1)
	f.Add(id2)

	require.True(f.Contains(id1))
	require.True(f.Contains(id2))
	require.NotEmpty(f.Marshal())
}
