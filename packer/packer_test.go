// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package packer

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackUnpackIntegers(t *testing.T) {
	require := require.New(t)

	p := NewPacker(0)
	require.NoError(p.PackU16(0x0102))
	require.NoError(p.PackU32(0x01020304))
	require.NoError(p.PackU64(0x0102030405060708))

	up := NewPackerFromBytes(p.Bytes)
	v16, err := up.UnpackU16()
	require.NoError(err)
	require.Equal(uint16(0x0102), v16)

	v32, err := up.UnpackU32()
	require.NoError(err)
	require.Equal(uint32(0x01020304), v32)

	v64, err := up.UnpackU64()
	require.NoError(err)
	require.Equal(uint64(0x0102030405060708), v64)
}

func TestPackOverflow(t *testing.T) {
	require := require.New(t)

	p := NewPacker(IPLen)
	require.NoError(p.PackIP(net.IPv4(127, 0, 0, 1), 8080))
	require.ErrorIs(p.PackIP(net.IPv4(127, 0, 0, 1), 8080), ErrOverflow)
}

func TestPackBytesWithHeaderRoundTrip(t *testing.T) {
	require := require.New(t)

	p := NewPacker(0)
	require.NoError(p.PackBytesWithHeader([]byte("hello")))

	up := NewPackerFromBytes(p.Bytes)
	b, err := up.UnpackBytesWithHeader()
	require.NoError(err)
	require.Equal([]byte("hello"), b)
}

// TestIPPacking is the spec's concrete scenario 4: packing
// (127.0.0.1, 8080), (::1, 8081), (1:1:...:1, 80) yields a u32 count of 3
// followed by the three 18-byte IP-and-port encodings.
func TestIPPacking(t *testing.T) {
	require := require.New(t)

	p := NewPacker(0)
	require.NoError(p.PackIPs([]IPPort{
		{IP: net.IPv4(127, 0, 0, 1), Port: 8080},
		{IP: net.ParseIP("::1"), Port: 8081},
		{IP: net.ParseIP("1:1:1:1:1:1:1:1"), Port: 80},
	}))

	expected := []byte{
		0, 0, 0, 3,
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 127, 0, 0, 1, 0x1F, 0x90,
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0x1F, 0x91,
		0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0x00, 0x50,
	}
	require.Equal(expected, p.Bytes)

	up := NewPackerFromBytes(p.Bytes)
	ips, err := up.UnpackIPs()
	require.NoError(err)
	require.Len(ips, 3)
	require.True(ips[0].IP.Equal(net.IPv4(127, 0, 0, 1)))
	require.Equal(uint16(8080), ips[0].Port)
	require.True(ips[1].IP.Equal(net.ParseIP("::1")))
	require.Equal(uint16(8081), ips[1].Port)
	require.True(ips[2].IP.Equal(net.ParseIP("1:1:1:1:1:1:1:1")))
	require.Equal(uint16(80), ips[2].Port)
}

func TestUnpackIPDistinguishesV4FromV6(t *testing.T) {
	require := require.New(t)

	p := NewPacker(0)
	require.NoError(p.PackIP(net.IPv4(10, 0, 0, 1), 1))
	ip, _, err := NewPackerFromBytes(p.Bytes).UnpackIP()
	require.NoError(err)
	require.Equal(4, len(ip.To4()))
}
