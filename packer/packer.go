// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package packer implements the byte-buffer writer/reader of §4.6.1: the
// sole ground truth for on-wire integer byte order (big-endian) and
// length-prefixed byte arrays, grounded on avalanchego's
// utils/wrappers.Packer and its Rust port at
// _examples/original_source/crates/avalanche-types/src/packer/ip.rs.
package packer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
)

const (
	ByteLen  = 1
	U16Len   = 2
	U32Len   = 4
	U64Len   = 8
	IPAddrLen = 16
	IPLen    = IPAddrLen + U16Len
)

var (
	// ErrOverflow is returned when a write would exceed MaxSize, or when
	// a read would run past the end of Bytes.
	ErrOverflow = errors.New("packer: overflow")
	// ErrInvalidIPLen is returned by UnpackIP when the underlying byte
	// slice is not IPAddrLen bytes long.
	ErrInvalidIPLen = errors.New("packer: invalid ip length")
)

// Packer is a flat byte buffer with a write/read cursor. MaxSize bounds
// every write; it is enforced before any bytes are appended, so a failed
// pack never leaves Bytes partially mutated.
type Packer struct {
	MaxSize int
	Bytes   []byte
	Offset  int
}

// NewPacker returns an empty Packer that rejects any write taking it past
// maxSize total bytes. A non-positive maxSize means unbounded.
func NewPacker(maxSize int) *Packer {
	return &Packer{MaxSize: maxSize}
}

// NewPackerFromBytes wraps existing bytes for unpacking. Reads are bounded
// by len(b); MaxSize is set to len(b), so any further pack fails.
func NewPackerFromBytes(b []byte) *Packer {
	return &Packer{MaxSize: len(b), Bytes: b}
}

func (p *Packer) checkSpace(n int) error {
	if p.MaxSize > 0 && len(p.Bytes)+n > p.MaxSize {
		return fmt.Errorf("%w: packing %d bytes would exceed max size %d", ErrOverflow, n, p.MaxSize)
	}
	return nil
}

func (p *Packer) checkRead(n int) error {
	if p.Offset+n > len(p.Bytes) {
		return fmt.Errorf("%w: reading %d bytes at offset %d exceeds length %d", ErrOverflow, n, p.Offset, len(p.Bytes))
	}
	return nil
}

// PackU16 appends v as a 2-byte big-endian integer.
func (p *Packer) PackU16(v uint16) error {
	if err := p.checkSpace(U16Len); err != nil {
		return err
	}
	var b [U16Len]byte
	binary.BigEndian.PutUint16(b[:], v)
	p.Bytes = append(p.Bytes, b[:]...)
	return nil
}

// UnpackU16 reads a 2-byte big-endian integer and advances the cursor.
func (p *Packer) UnpackU16() (uint16, error) {
	if err := p.checkRead(U16Len); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(p.Bytes[p.Offset:])
	p.Offset += U16Len
	return v, nil
}

// PackU32 appends v as a 4-byte big-endian integer.
func (p *Packer) PackU32(v uint32) error {
	if err := p.checkSpace(U32Len); err != nil {
		return err
	}
	var b [U32Len]byte
	binary.BigEndian.PutUint32(b[:], v)
	p.Bytes = append(p.Bytes, b[:]...)
	return nil
}

// UnpackU32 reads a 4-byte big-endian integer and advances the cursor.
func (p *Packer) UnpackU32() (uint32, error) {
	if err := p.checkRead(U32Len); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(p.Bytes[p.Offset:])
	p.Offset += U32Len
	return v, nil
}

// PackU64 appends v as an 8-byte big-endian integer.
func (p *Packer) PackU64(v uint64) error {
	if err := p.checkSpace(U64Len); err != nil {
		return err
	}
	var b [U64Len]byte
	binary.BigEndian.PutUint64(b[:], v)
	p.Bytes = append(p.Bytes, b[:]...)
	return nil
}

// UnpackU64 reads an 8-byte big-endian integer and advances the cursor.
func (p *Packer) UnpackU64() (uint64, error) {
	if err := p.checkRead(U64Len); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(p.Bytes[p.Offset:])
	p.Offset += U64Len
	return v, nil
}

// PackBytes appends b verbatim, with no length prefix. The reader must
// already know the length from context (a fixed-size field, or a
// preceding PackU32 count).
func (p *Packer) PackBytes(b []byte) error {
	if err := p.checkSpace(len(b)); err != nil {
		return err
	}
	p.Bytes = append(p.Bytes, b...)
	return nil
}

// UnpackBytes reads exactly n verbatim bytes and advances the cursor.
func (p *Packer) UnpackBytes(n int) ([]byte, error) {
	if err := p.checkRead(n); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	copy(b, p.Bytes[p.Offset:p.Offset+n])
	p.Offset += n
	return b, nil
}

// PackBytesWithHeader prepends b's length as a u32 and then appends b.
func (p *Packer) PackBytesWithHeader(b []byte) error {
	if err := p.checkSpace(U32Len + len(b)); err != nil {
		return err
	}
	if err := p.PackU32(uint32(len(b))); err != nil {
		return err
	}
	return p.PackBytes(b)
}

// UnpackBytesWithHeader reads a u32 length followed by that many bytes.
func (p *Packer) UnpackBytesWithHeader() ([]byte, error) {
	n, err := p.UnpackU32()
	if err != nil {
		return nil, err
	}
	return p.UnpackBytes(int(n))
}

// PackIP writes ip as the 16-byte representation of §4.6.1 ("IP-and-port
// encoding") followed by a u16 port: an IPv4 address is zero-padded with
// 12 leading zero bytes, an IPv6 address is written as-is.
func (p *Packer) PackIP(ip net.IP, port uint16) error {
	var b [IPAddrLen]byte
	if v4 := ip.To4(); v4 != nil {
		copy(b[12:], v4)
	} else {
		v6 := ip.To16()
		if v6 == nil {
			return fmt.Errorf("%w: ip %v is neither v4 nor v6", ErrInvalidIPLen, ip)
		}
		copy(b[:], v6)
	}
	if err := p.checkSpace(IPLen); err != nil {
		return err
	}
	if err := p.PackBytes(b[:]); err != nil {
		return err
	}
	return p.PackU16(port)
}

// UnpackIP reads the 16-byte IP representation and trailing u16 port.
// Decoding follows §4.6.1: if the first 12 bytes are zero and the 13th is
// non-zero, the address is IPv4; otherwise it is IPv6.
func (p *Packer) UnpackIP() (net.IP, uint16, error) {
	b, err := p.UnpackBytes(IPAddrLen)
	if err != nil {
		return nil, 0, err
	}
	port, err := p.UnpackU16()
	if err != nil {
		return nil, 0, err
	}

	allZero := true
	for _, c := range b[:12] {
		if c != 0 {
			allZero = false
			break
		}
	}
	if allZero && b[12] != 0 {
		return net.IPv4(b[12], b[13], b[14], b[15]), port, nil
	}
	ip := make(net.IP, IPAddrLen)
	copy(ip, b)
	return ip, port, nil
}

// IPPort pairs an IP with a port for PackIPs/UnpackIPs.
type IPPort struct {
	IP   net.IP
	Port uint16
}

// PackIPs writes a u32 count followed by each (ip, port) pair.
func (p *Packer) PackIPs(ips []IPPort) error {
	if err := p.checkSpace(U32Len + len(ips)*IPLen); err != nil {
		return err
	}
	start := len(p.Bytes)
	if err := p.PackU32(uint32(len(ips))); err != nil {
		return err
	}
	for _, ip := range ips {
		if err := p.PackIP(ip.IP, ip.Port); err != nil {
			p.Bytes = p.Bytes[:start]
			return err
		}
	}
	return nil
}

// UnpackIPs reads a u32 count followed by that many (ip, port) pairs.
func (p *Packer) UnpackIPs() ([]IPPort, error) {
	n, err := p.UnpackU32()
	if err != nil {
		return nil, err
	}
	ips := make([]IPPort, 0, n)
	for i := uint32(0); i < n; i++ {
		ip, port, err := p.UnpackIP()
		if err != nil {
			return nil, err
		}
		ips = append(ips, IPPort{IP: ip, Port: port})
	}
	return ips, nil
}

// Remaining reports how many unread bytes are left.
func (p *Packer) Remaining() int {
	return len(p.Bytes) - p.Offset
}
