// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package cid_test

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/multiformats/go-multibase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storj.io/filetao/pkg/cid"
)

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"abcdef",
		"Hello World",
		"😊🌍🚀",
		strings.Repeat("a", 1000),
	}

	for _, version := range []int{0, 1} {
		for _, input := range inputs {
			want := sha256.Sum256([]byte(input))

			id, err := cid.Make([]byte(input), version)
			require.NoError(t, err)
			assert.Equal(t, version, id.Version())

			digest, err := cid.DecodeID(id)
			require.NoError(t, err)
			assert.Equal(t, want[:], digest, "version %d input %q", version, input)

			digest, err = cid.Decode(id.Encode())
			require.NoError(t, err)
			assert.Equal(t, want[:], digest, "version %d input %q", version, input)
		}
	}
}

func TestDeterministic(t *testing.T) {
	data := []byte("Hello FileTao!")
	for _, version := range []int{0, 1} {
		a, err := cid.Make(data, version)
		require.NoError(t, err)
		b, err := cid.Make(data, version)
		require.NoError(t, err)

		assert.Equal(t, a.Encode(), b.Encode())
		assert.True(t, a.Equal(b))
		assert.Equal(t, a, b)
	}
}

func TestKnownEncodings(t *testing.T) {
	data := []byte("hello world")

	v0, err := cid.Make(data, 0)
	require.NoError(t, err)
	assert.Equal(t, "QmaozNR7DZHQK1ZcU9p7QdrshMvXqWK6gpu5rmrkPdT3L4", v0.Encode())

	v1, err := cid.Make(data, 1)
	require.NoError(t, err)
	assert.Equal(t, "zUM7WQeLqipri5VA7jVWfH2H4wpsvxkN7zpUoUN5Gj3KEZZyi", v1.Encode())
	assert.Equal(t, cid.DefaultCodec, v1.Codec())

	raw := v1.Bytes()
	require.True(t, len(raw) > 3)
	assert.Equal(t, []byte{0x01, 0x12, 0x12, 0x20}, raw[:4])
	assert.Equal(t, v0.Multihash(), v1.Multihash())
}

func TestCIDv0Parity(t *testing.T) {
	want, err := hex.DecodeString("b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9")
	require.NoError(t, err)

	digest, err := cid.Decode("QmaozNR7DZHQK1ZcU9p7QdrshMvXqWK6gpu5rmrkPdT3L4")
	require.NoError(t, err)
	assert.Equal(t, want, digest)
	assert.Equal(t, cid.Hash([]byte("hello world")), digest)
}

func TestDecodeVersionZeroBytes(t *testing.T) {
	id, err := cid.Make([]byte("abcdef"), 0)
	require.NoError(t, err)

	s, err := multibase.Encode(multibase.Base58BTC, append([]byte{0}, id.Multihash()...))
	require.NoError(t, err)

	digest, err := cid.Decode(s)
	require.NoError(t, err)
	assert.Equal(t, cid.Hash([]byte("abcdef")), digest)
}

func TestCodecs(t *testing.T) {
	id, err := cid.MakeWithCodec([]byte("abcdef"), 1, "raw")
	require.NoError(t, err)
	assert.Equal(t, "raw", id.Codec())

	def, err := cid.Make([]byte("abcdef"), 1)
	require.NoError(t, err)
	assert.False(t, id.Equal(def))

	digest, err := cid.Decode(id.Encode())
	require.NoError(t, err)
	assert.Equal(t, cid.Hash([]byte("abcdef")), digest)

	_, err = cid.MakeWithCodec([]byte("abcdef"), 1, "not-a-codec")
	require.Error(t, err)
	assert.True(t, cid.ErrMalformed.Has(err))

	_, err = cid.Make([]byte("abcdef"), 2)
	require.Error(t, err)
	assert.True(t, cid.ErrMalformed.Has(err))
}

func TestEncodeBase(t *testing.T) {
	id, err := cid.Make([]byte("abcdef"), 1)
	require.NoError(t, err)

	s, err := id.EncodeBase(multibase.Base32)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s, "b"))

	digest, err := cid.Decode(s)
	require.NoError(t, err)
	assert.Equal(t, cid.Hash([]byte("abcdef")), digest)

	parsed, err := cid.Parse(s)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(id))
}

func TestParse(t *testing.T) {
	for _, version := range []int{0, 1} {
		id, err := cid.Make([]byte("abcdef"), version)
		require.NoError(t, err)

		parsed, err := cid.Parse(id.Encode())
		require.NoError(t, err)
		assert.True(t, parsed.Equal(id))
		assert.Equal(t, version, parsed.Version())
	}
}

func TestMalformed(t *testing.T) {
	badVersion, err := multibase.Encode(multibase.Base58BTC, []byte{0x02, 0x12, 0x12, 0x20, 0x00})
	require.NoError(t, err)

	truncated, err := multibase.Encode(multibase.Base58BTC, []byte{0x01, 0x12, 0x12, 0x20, 0x01, 0x02})
	require.NoError(t, err)

	for _, input := range []string{
		"",
		"!not-multibase",
		badVersion,
		truncated,
	} {
		_, err := cid.Decode(input)
		require.Error(t, err, input)
		assert.True(t, cid.ErrMalformed.Has(err), input)
	}

	_, err = cid.Parse("definitely not a cid")
	require.Error(t, err)
	assert.True(t, cid.ErrMalformed.Has(err))

	_, err = cid.DecodeID(cid.ID{})
	require.Error(t, err)
}

func TestVerify(t *testing.T) {
	id, err := cid.Make([]byte("abcdef"), 1)
	require.NoError(t, err)

	require.NoError(t, cid.Verify(id, []byte("abcdef")))

	err = cid.Verify(id, []byte("abcdeg"))
	require.Error(t, err)
	assert.True(t, cid.ErrMismatch.Has(err))
}
