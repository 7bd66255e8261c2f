// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gossip

import (
	"bytes"
	"encoding/gob"

	"github.com/klauspost/compress/gzip"
)

// GzipCodec is the default Codec: a gob envelope under gzip, matching the
// compression policy applied to the rest of the wire protocol (§4.6.3).
type GzipCodec struct{}

func (GzipCodec) EncodeRequest(req Request) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if err := gob.NewEncoder(zw).Encode(req); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (GzipCodec) DecodeRequest(data []byte) (Request, error) {
	var req Request
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return req, err
	}
	defer zr.Close()
	err = gob.NewDecoder(zr).Decode(&req)
	return req, err
}

func (GzipCodec) EncodeResponse(resp Response) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if err := gob.NewEncoder(zw).Encode(resp); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (GzipCodec) DecodeResponse(data []byte) (Response, error) {
	var resp Response
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return resp, err
	}
	defer zr.Close()
	if err := gob.NewDecoder(zr).Decode(&resp); err != nil {
		return resp, err
	}
	return resp, nil
}
