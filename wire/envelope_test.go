// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wire

import (
	"bytes"
	"compress/gzip"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/luxfi/consensus-core/ids"
	"github.com/luxfi/consensus-core/packer"
)

func idAt(b byte) ids.ID {
	var id ids.ID
	id[0] = b
	id[31] = b ^ 0xFF
	return id
}

// TestMessageEnvelopeRoundTrip is the spec's "Message envelope
// round-trip" testable property: deserialize(serialize(m)) == m for
// every message variant, with and without gzip compression.
func TestMessageEnvelopeRoundTrip(t *testing.T) {
	messages := []Message{
		&Version{
			NetworkID:     1,
			MyTime:        1234,
			IPAddr:        packer.IPPort{IP: net.IPv4(127, 0, 0, 1), Port: 9651},
			MyVersion:     "lux/1.0.0",
			MyVersionTime: 5678,
			Sig:           []byte{1, 2, 3},
			TrackedSubnets: []ids.ID{
				idAt(1),
			},
		},
		&PeerList{
			ClaimedIPPorts: []ClaimedIPPort{
				{
					Certificate: []byte{0xDE, 0xAD},
					IPAddr:      packer.IPPort{IP: net.IPv4(10, 0, 0, 1), Port: 1},
					Timestamp:   42,
					Sig:         []byte{0xBE, 0xEF},
					TxID:        idAt(2),
				},
			},
		},
		&AppGossip{ChainID: idAt(3), AppBytes: []byte("gossip payload")},
		&AppRequest{ChainID: idAt(4), RequestID: 7, Deadline: 99, AppBytes: []byte("request")},
		&AppResponse{ChainID: idAt(5), RequestID: 7, AppBytes: []byte("response")},
		&Chits{ChainID: idAt(6), RequestID: 8, PreferredID: idAt(7), AcceptedID: idAt(8)},
		&AcceptedStateSummary{ChainID: idAt(9), RequestID: 9, SummaryIDs: []ids.ID{idAt(10), idAt(11)}},
		&GetAcceptedStateSummary{ChainID: idAt(12), RequestID: 10, Heights: []uint64{1, 2, 3}, Deadline: 77},
	}

	for _, m := range messages {
		for _, compress := range []bool{false, true} {
			data, err := Marshal(m, compress)
			require.NoError(t, err)

			if compress {
				num, typ, n := protowire.ConsumeTag(data)
				require.Positive(t, n)
				require.Equal(t, fieldCompressedGzip, num)
				require.Equal(t, protowire.BytesType, typ)
			}

			got, err := Unmarshal(data)
			require.NoError(t, err)
			require.Equal(t, m, got)
		}
	}
}

func TestUnmarshalRejectsUnknownKind(t *testing.T) {
	data, err := Marshal(&AppGossip{ChainID: idAt(1), AppBytes: []byte("x")}, false)
	require.NoError(t, err)

	_, body, _, err := parseEnvelope(data)
	require.NoError(t, err)

	var patched []byte
	patched = protowire.AppendTag(patched, fieldKind, protowire.VarintType)
	patched = protowire.AppendVarint(patched, 999)
	patched = protowire.AppendTag(patched, fieldBody, protowire.BytesType)
	patched = protowire.AppendBytes(patched, body)

	_, err = Unmarshal(patched)
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestUnmarshalRejectsNestedCompression(t *testing.T) {
	inner, err := Marshal(&AppGossip{ChainID: idAt(1), AppBytes: []byte("x")}, true)
	require.NoError(t, err)

	var gz bytes.Buffer
	w := gzip.NewWriter(&gz)
	_, err = w.Write(inner)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	var outer []byte
	outer = protowire.AppendTag(outer, fieldCompressedGzip, protowire.BytesType)
	outer = protowire.AppendBytes(outer, gz.Bytes())

	_, err = Unmarshal(outer)
	require.ErrorIs(t, err, ErrMalformedEnvelope)
}
