// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package cid derives and verifies self-describing content identifiers.
//
// An identifier wraps a sha2-256 multihash of the payload. Version 0
// identifiers are the base58 text of the bare multihash; version 1
// identifiers prefix the multihash with the version byte and a varint codec
// tag and are multibase encoded (base58btc unless asked otherwise).
package cid

import (
	"bytes"
	"crypto/sha256"
	"strings"

	gocid "github.com/ipfs/go-cid"
	"github.com/mr-tron/base58"
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multicodec"
	"github.com/multiformats/go-multihash"
	"github.com/multiformats/go-varint"
	"github.com/zeebo/errs"
)

var (
	// Error is the default cid error class.
	Error = errs.Class("cid")

	// ErrMalformed is returned when an identifier, its version or its codec
	// cannot be parsed.
	ErrMalformed = errs.Class("malformed identifier")

	// ErrMismatch is returned when an identifier does not address the data.
	ErrMismatch = errs.Class("identifier mismatch")
)

// DefaultCodec is the codec tag used for version 1 identifiers.
const DefaultCodec = "sha2-256"

// DefaultBase is the multibase used when encoding version 1 identifiers.
const DefaultBase = multibase.Base58BTC

const (
	v0Prefix = "Qm"
	v0Length = 46
)

// ID is an immutable content identifier.
//
// IDs are comparable: two IDs are equal iff version, codec and multihash
// bytes are equal.
type ID struct {
	c gocid.Cid
}

// Hash returns the sha2-256 digest of data.
func Hash(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// Make derives the identifier of data using the default codec.
func Make(data []byte, version int) (ID, error) {
	return MakeWithCodec(data, version, DefaultCodec)
}

// MakeWithCodec derives the identifier of data. codecName is only encoded
// into version 1 identifiers but must name a known multicodec either way.
func MakeWithCodec(data []byte, version int, codecName string) (ID, error) {
	var codec multicodec.Code
	if err := codec.Set(codecName); err != nil {
		return ID{}, ErrMalformed.New("unknown codec %q", codecName)
	}

	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return ID{}, Error.Wrap(err)
	}

	switch version {
	case 0:
		return ID{c: gocid.NewCidV0(mh)}, nil
	case 1:
		return ID{c: gocid.NewCidV1(uint64(codec), mh)}, nil
	default:
		return ID{}, ErrMalformed.New("version should be 0 or 1, got %d", version)
	}
}

// Version returns the identifier version, 0 or 1.
func (id ID) Version() int { return int(id.c.Version()) }

// Codec returns the codec tag name.
func (id ID) Codec() string { return multicodec.Code(id.c.Type()).String() }

// Multihash returns the encoded multihash bytes.
func (id ID) Multihash() []byte { return []byte(id.c.Hash()) }

// IsZero returns true when id was never initialized.
func (id ID) IsZero() bool { return !id.c.Defined() }

// Equal returns whether id and other address the same content the same way.
func (id ID) Equal(other ID) bool { return id.c.Equals(other.c) }

// Bytes returns the binary form: the bare multihash for version 0, and
// version || varint(codec) || multihash for version 1.
func (id ID) Bytes() []byte { return id.c.Bytes() }

// String implements fmt.Stringer.
func (id ID) String() string { return id.Encode() }

// Encode returns the canonical wire string.
func (id ID) Encode() string {
	if id.IsZero() {
		return ""
	}
	if id.c.Version() == 0 {
		return base58.Encode(id.Multihash())
	}
	return id.c.Encode(multibase.MustNewEncoder(DefaultBase))
}

// EncodeBase returns the wire string of a version 1 identifier using base.
// Version 0 identifiers have a single representation and ignore base.
func (id ID) EncodeBase(base multibase.Encoding) (string, error) {
	if id.c.Version() == 0 {
		return id.Encode(), nil
	}
	encoder, err := multibase.NewEncoder(base)
	if err != nil {
		return "", Error.Wrap(err)
	}
	return id.c.Encode(encoder), nil
}

// Parse parses a wire string into an ID.
func Parse(s string) (ID, error) {
	c, err := gocid.Decode(s)
	if err != nil {
		return ID{}, ErrMalformed.Wrap(err)
	}
	if c.Version() != 0 && c.Version() != 1 {
		return ID{}, ErrMalformed.New("unknown version %d", c.Version())
	}
	return ID{c: c}, nil
}

// Decode returns the raw digest addressed by the identifier string s.
func Decode(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrMalformed.New("empty identifier")
	}

	if len(s) == v0Length && strings.HasPrefix(s, v0Prefix) {
		mh, err := base58.Decode(s)
		if err != nil {
			return nil, ErrMalformed.Wrap(err)
		}
		return digest(mh)
	}

	_, data, err := multibase.Decode(s)
	if err != nil {
		return nil, ErrMalformed.Wrap(err)
	}
	return decodeBytes(data)
}

// DecodeID returns the raw digest addressed by id.
func DecodeID(id ID) ([]byte, error) {
	if id.IsZero() {
		return nil, ErrMalformed.New("undefined identifier")
	}
	return digest(id.Multihash())
}

// Verify checks that id addresses data.
func Verify(id ID, data []byte) error {
	want, err := DecodeID(id)
	if err != nil {
		return err
	}
	if !bytes.Equal(want, Hash(data)) {
		return ErrMismatch.New("%s", id)
	}
	return nil
}

// decodeBytes extracts the digest from the binary form of an identifier.
func decodeBytes(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrMalformed.New("empty identifier")
	}

	switch data[0] {
	case 1:
		_, n, err := varint.FromUvarint(data[1:])
		if err != nil {
			return nil, ErrMalformed.New("invalid codec prefix: %v", err)
		}
		return digest(data[1+n:])
	case 0:
		return digest(data[1:])
	default:
		return nil, ErrMalformed.New("unknown version byte %d", data[0])
	}
}

func digest(mh []byte) ([]byte, error) {
	decoded, err := multihash.Decode(mh)
	if err != nil {
		return nil, ErrMalformed.Wrap(err)
	}
	return decoded.Digest, nil
}
