// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package transport

import (
	"github.com/fxamacker/cbor/v2"
	"google.golang.org/grpc/encoding"
)

// CodecName is the grpc content-subtype used for node messages.
const CodecName = "cbor"

func init() {
	encoding.RegisterCodec(Codec{})
}

// Codec encodes grpc messages with CBOR.
type Codec struct{}

// Marshal implements encoding.Codec.
func (Codec) Marshal(v interface{}) ([]byte, error) { return cbor.Marshal(v) }

// Unmarshal implements encoding.Codec.
func (Codec) Unmarshal(data []byte, v interface{}) error { return cbor.Unmarshal(data, v) }

// Name implements encoding.Codec.
func (Codec) Name() string { return CodecName }
