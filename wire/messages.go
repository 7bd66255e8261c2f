// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wire

import (
	"github.com/luxfi/consensus-core/ids"
	"github.com/luxfi/consensus-core/packer"
)

// Kind tags which concrete message variant an Envelope body carries
// (§4.6.3). Each carries a chain-ID and a request-ID except the
// purely-push variants (Version, PeerList, AppGossip), which the spec
// exempts from request-ID correlation.
type Kind uint64

const (
	KindVersion Kind = iota + 1
	KindPeerList
	KindAppGossip
	KindAppRequest
	KindAppResponse
	KindChits
	KindAcceptedStateSummary
	KindGetAcceptedStateSummary
)

// Message is any of the §4.6.3 message variants: it knows its Kind and
// can pack/unpack its body through the §4.6.1 packer.
type Message interface {
	Kind() Kind
	packBody(p *packer.Packer) error
	unpackBody(p *packer.Packer) error
}

// Version is the handshake message exchanged immediately after the TLS
// connection of §4.6.4 completes.
type Version struct {
	NetworkID      uint32
	MyTime         uint64
	IPAddr         packer.IPPort
	MyVersion      string
	MyVersionTime  uint64
	Sig            []byte
	TrackedSubnets []ids.ID
}

func (*Version) Kind() Kind { return KindVersion }

func (m *Version) packBody(p *packer.Packer) error {
	if err := p.PackU32(m.NetworkID); err != nil {
		return err
	}
	if err := p.PackU64(m.MyTime); err != nil {
		return err
	}
	if err := p.PackIP(m.IPAddr.IP, m.IPAddr.Port); err != nil {
		return err
	}
	if err := p.PackBytesWithHeader([]byte(m.MyVersion)); err != nil {
		return err
	}
	if err := p.PackU64(m.MyVersionTime); err != nil {
		return err
	}
	if err := p.PackBytesWithHeader(m.Sig); err != nil {
		return err
	}
	if err := p.PackU32(uint32(len(m.TrackedSubnets))); err != nil {
		return err
	}
	for _, id := range m.TrackedSubnets {
		if err := p.PackBytes(id[:]); err != nil {
			return err
		}
	}
	return nil
}

func (m *Version) unpackBody(p *packer.Packer) error {
	var err error
	if m.NetworkID, err = p.UnpackU32(); err != nil {
		return err
	}
	if m.MyTime, err = p.UnpackU64(); err != nil {
		return err
	}
	ip, port, err := p.UnpackIP()
	if err != nil {
		return err
	}
	m.IPAddr = packer.IPPort{IP: ip, Port: port}
	myVersion, err := p.UnpackBytesWithHeader()
	if err != nil {
		return err
	}
	m.MyVersion = string(myVersion)
	if m.MyVersionTime, err = p.UnpackU64(); err != nil {
		return err
	}
	if m.Sig, err = p.UnpackBytesWithHeader(); err != nil {
		return err
	}
	n, err := p.UnpackU32()
	if err != nil {
		return err
	}
	m.TrackedSubnets = make([]ids.ID, n)
	for i := range m.TrackedSubnets {
		b, err := p.UnpackBytes(ids.IDLen)
		if err != nil {
			return err
		}
		id, err := ids.FromBytes(b)
		if err != nil {
			return err
		}
		m.TrackedSubnets[i] = id
	}
	return nil
}

// ClaimedIPPort is one entry of a PeerList advertisement: a peer's
// certificate, its claimed reachable address, and a signature over the
// claim.
type ClaimedIPPort struct {
	Certificate []byte
	IPAddr      packer.IPPort
	Timestamp   uint64
	Sig         []byte
	TxID        ids.ID
}

// PeerList advertises peers the sender knows about.
type PeerList struct {
	ClaimedIPPorts []ClaimedIPPort
}

func (*PeerList) Kind() Kind { return KindPeerList }

func (m *PeerList) packBody(p *packer.Packer) error {
	if err := p.PackU32(uint32(len(m.ClaimedIPPorts))); err != nil {
		return err
	}
	for _, c := range m.ClaimedIPPorts {
		if err := p.PackBytesWithHeader(c.Certificate); err != nil {
			return err
		}
		if err := p.PackIP(c.IPAddr.IP, c.IPAddr.Port); err != nil {
			return err
		}
		if err := p.PackU64(c.Timestamp); err != nil {
			return err
		}
		if err := p.PackBytesWithHeader(c.Sig); err != nil {
			return err
		}
		if err := p.PackBytes(c.TxID[:]); err != nil {
			return err
		}
	}
	return nil
}

func (m *PeerList) unpackBody(p *packer.Packer) error {
	n, err := p.UnpackU32()
	if err != nil {
		return err
	}
	m.ClaimedIPPorts = make([]ClaimedIPPort, n)
	for i := range m.ClaimedIPPorts {
		cert, err := p.UnpackBytesWithHeader()
		if err != nil {
			return err
		}
		ip, port, err := p.UnpackIP()
		if err != nil {
			return err
		}
		ts, err := p.UnpackU64()
		if err != nil {
			return err
		}
		sig, err := p.UnpackBytesWithHeader()
		if err != nil {
			return err
		}
		txIDBytes, err := p.UnpackBytes(ids.IDLen)
		if err != nil {
			return err
		}
		txID, err := ids.FromBytes(txIDBytes)
		if err != nil {
			return err
		}
		m.ClaimedIPPorts[i] = ClaimedIPPort{
			Certificate: cert,
			IPAddr:      packer.IPPort{IP: ip, Port: port},
			Timestamp:   ts,
			Sig:         sig,
			TxID:        txID,
		}
	}
	return nil
}

// chainScoped is the (chain_id, app_bytes) shape of an application
// message; AppGossip is the variant that uses it.
type chainScoped struct {
	ChainID  ids.ID
	AppBytes []byte
}

func (c *chainScoped) pack(p *packer.Packer) error {
	if err := p.PackBytes(c.ChainID[:]); err != nil {
		return err
	}
	return p.PackBytesWithHeader(c.AppBytes)
}

func (c *chainScoped) unpack(p *packer.Packer) error {
	b, err := p.UnpackBytes(ids.IDLen)
	if err != nil {
		return err
	}
	id, err := ids.FromBytes(b)
	if err != nil {
		return err
	}
	c.ChainID = id
	c.AppBytes, err = p.UnpackBytesWithHeader()
	return err
}

// AppGossip is a fire-and-forget application payload broadcast (§6
// "app_gossip"); it carries no request ID.
type AppGossip struct {
	ChainID  ids.ID
	AppBytes []byte
}

func (*AppGossip) Kind() Kind { return KindAppGossip }
func (m *AppGossip) packBody(p *packer.Packer) error {
	return (&chainScoped{ChainID: m.ChainID, AppBytes: m.AppBytes}).pack(p)
}
func (m *AppGossip) unpackBody(p *packer.Packer) error {
	c := &chainScoped{}
	if err := c.unpack(p); err != nil {
		return err
	}
	m.ChainID, m.AppBytes = c.ChainID, c.AppBytes
	return nil
}

// AppRequest solicits app-level bytes from one peer (§6
// "app_request_any"), carrying a request ID for response correlation and
// a deadline the recipient is expected, but not required, to honor.
type AppRequest struct {
	ChainID   ids.ID
	RequestID uint32
	Deadline  uint64
	AppBytes  []byte
}

func (*AppRequest) Kind() Kind { return KindAppRequest }

func (m *AppRequest) packBody(p *packer.Packer) error {
	if err := p.PackBytes(m.ChainID[:]); err != nil {
		return err
	}
	if err := p.PackU32(m.RequestID); err != nil {
		return err
	}
	if err := p.PackU64(m.Deadline); err != nil {
		return err
	}
	return p.PackBytesWithHeader(m.AppBytes)
}

func (m *AppRequest) unpackBody(p *packer.Packer) error {
	b, err := p.UnpackBytes(ids.IDLen)
	if err != nil {
		return err
	}
	if m.ChainID, err = ids.FromBytes(b); err != nil {
		return err
	}
	if m.RequestID, err = p.UnpackU32(); err != nil {
		return err
	}
	if m.Deadline, err = p.UnpackU64(); err != nil {
		return err
	}
	m.AppBytes, err = p.UnpackBytesWithHeader()
	return err
}

// AppResponse answers an AppRequest by RequestID.
type AppResponse struct {
	ChainID   ids.ID
	RequestID uint32
	AppBytes  []byte
}

func (*AppResponse) Kind() Kind { return KindAppResponse }

func (m *AppResponse) packBody(p *packer.Packer) error {
	if err := p.PackBytes(m.ChainID[:]); err != nil {
		return err
	}
	if err := p.PackU32(m.RequestID); err != nil {
		return err
	}
	return p.PackBytesWithHeader(m.AppBytes)
}

func (m *AppResponse) unpackBody(p *packer.Packer) error {
	b, err := p.UnpackBytes(ids.IDLen)
	if err != nil {
		return err
	}
	if m.ChainID, err = ids.FromBytes(b); err != nil {
		return err
	}
	if m.RequestID, err = p.UnpackU32(); err != nil {
		return err
	}
	m.AppBytes, err = p.UnpackBytesWithHeader()
	return err
}

// Chits is a consensus poll response: the responder's current preferred
// and last-accepted IDs.
type Chits struct {
	ChainID     ids.ID
	RequestID   uint32
	PreferredID ids.ID
	AcceptedID  ids.ID
}

func (*Chits) Kind() Kind { return KindChits }

func (m *Chits) packBody(p *packer.Packer) error {
	if err := p.PackBytes(m.ChainID[:]); err != nil {
		return err
	}
	if err := p.PackU32(m.RequestID); err != nil {
		return err
	}
	if err := p.PackBytes(m.PreferredID[:]); err != nil {
		return err
	}
	return p.PackBytes(m.AcceptedID[:])
}

func (m *Chits) unpackBody(p *packer.Packer) error {
	b, err := p.UnpackBytes(ids.IDLen)
	if err != nil {
		return err
	}
	if m.ChainID, err = ids.FromBytes(b); err != nil {
		return err
	}
	if m.RequestID, err = p.UnpackU32(); err != nil {
		return err
	}
	b, err = p.UnpackBytes(ids.IDLen)
	if err != nil {
		return err
	}
	if m.PreferredID, err = ids.FromBytes(b); err != nil {
		return err
	}
	b, err = p.UnpackBytes(ids.IDLen)
	if err != nil {
		return err
	}
	m.AcceptedID, err = ids.FromBytes(b)
	return err
}

// AcceptedStateSummary answers a GetAcceptedStateSummary with the
// subset of requested summary IDs the responder has accepted.
type AcceptedStateSummary struct {
	ChainID    ids.ID
	RequestID  uint32
	SummaryIDs []ids.ID
}

func (*AcceptedStateSummary) Kind() Kind { return KindAcceptedStateSummary }

func (m *AcceptedStateSummary) packBody(p *packer.Packer) error {
	if err := p.PackBytes(m.ChainID[:]); err != nil {
		return err
	}
	if err := p.PackU32(m.RequestID); err != nil {
		return err
	}
	if err := p.PackU32(uint32(len(m.SummaryIDs))); err != nil {
		return err
	}
	for _, id := range m.SummaryIDs {
		if err := p.PackBytes(id[:]); err != nil {
			return err
		}
	}
	return nil
}

func (m *AcceptedStateSummary) unpackBody(p *packer.Packer) error {
	b, err := p.UnpackBytes(ids.IDLen)
	if err != nil {
		return err
	}
	if m.ChainID, err = ids.FromBytes(b); err != nil {
		return err
	}
	if m.RequestID, err = p.UnpackU32(); err != nil {
		return err
	}
	n, err := p.UnpackU32()
	if err != nil {
		return err
	}
	m.SummaryIDs = make([]ids.ID, n)
	for i := range m.SummaryIDs {
		b, err := p.UnpackBytes(ids.IDLen)
		if err != nil {
			return err
		}
		if m.SummaryIDs[i], err = ids.FromBytes(b); err != nil {
			return err
		}
	}
	return nil
}

// GetAcceptedStateSummary requests, at the given heights, whichever
// state-summary IDs the recipient has accepted.
type GetAcceptedStateSummary struct {
	ChainID   ids.ID
	RequestID uint32
	Heights   []uint64
	Deadline  uint64
}

func (*GetAcceptedStateSummary) Kind() Kind { return KindGetAcceptedStateSummary }

func (m *GetAcceptedStateSummary) packBody(p *packer.Packer) error {
	if err := p.PackBytes(m.ChainID[:]); err != nil {
		return err
	}
	if err := p.PackU32(m.RequestID); err != nil {
		return err
	}
	if err := p.PackU64(m.Deadline); err != nil {
		return err
	}
	if err := p.PackU32(uint32(len(m.Heights))); err != nil {
		return err
	}
	for _, h := range m.Heights {
		if err := p.PackU64(h); err != nil {
			return err
		}
	}
	return nil
}

func (m *GetAcceptedStateSummary) unpackBody(p *packer.Packer) error {
	b, err := p.UnpackBytes(ids.IDLen)
	if err != nil {
		return err
	}
	if m.ChainID, err = ids.FromBytes(b); err != nil {
		return err
	}
	if m.RequestID, err = p.UnpackU32(); err != nil {
		return err
	}
	if m.Deadline, err = p.UnpackU64(); err != nil {
		return err
	}
	n, err := p.UnpackU32()
	if err != nil {
		return err
	}
	m.Heights = make([]uint64, n)
	for i := range m.Heights {
		if m.Heights[i], err = p.UnpackU64(); err != nil {
			return err
		}
	}
	return nil
}

func newMessage(kind Kind) (Message, error) {
	switch kind {
	case KindVersion:
		return &Version{}, nil
	case KindPeerList:
		return &PeerList{}, nil
	case KindAppGossip:
		return &AppGossip{}, nil
	case KindAppRequest:
		return &AppRequest{}, nil
	case KindAppResponse:
		return &AppResponse{}, nil
	case KindChits:
		return &Chits{}, nil
	case KindAcceptedStateSummary:
		return &AcceptedStateSummary{}, nil
	case KindGetAcceptedStateSummary:
		return &GetAcceptedStateSummary{}, nil
	default:
		return nil, ErrUnknownKind
	}
}
