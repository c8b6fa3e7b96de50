// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package encryption_test

import (
	"encoding/json"
	"testing"

	"filippo.io/age"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storj.io/filetao/pkg/encryption"
)

func TestPlain(t *testing.T) {
	data := []byte("Hello FileTao!")

	out, descriptor := encryption.Plain(data)
	assert.Equal(t, data, out)
	assert.Equal(t, "{}", descriptor)
	assert.True(t, encryption.IsPlain(descriptor))
	assert.True(t, encryption.IsPlain(""))
	assert.False(t, encryption.IsPlain(`{"algorithm":"x"}`))

	for _, descriptor := range []string{"", "{}"} {
		plain, err := encryption.Decrypt(data, descriptor, nil)
		require.NoError(t, err)
		assert.Equal(t, data, plain)
	}
}

func TestRoundTrip(t *testing.T) {
	identity, err := age.GenerateX25519Identity()
	require.NoError(t, err)

	for _, data := range [][]byte{
		[]byte("Hello FileTao!"),
		{},
		make([]byte, 1<<16),
	} {
		ciphertext, descriptor, err := encryption.Encrypt(data, identity.Recipient())
		require.NoError(t, err)
		assert.False(t, encryption.IsPlain(descriptor))
		if len(data) > 0 {
			assert.NotEqual(t, data, ciphertext)
		}

		plain, err := encryption.Decrypt(ciphertext, descriptor, identity)
		require.NoError(t, err)
		assert.Equal(t, data, plain)
	}
}

func TestDescriptorHidesKey(t *testing.T) {
	identity, err := age.GenerateX25519Identity()
	require.NoError(t, err)

	_, descriptor, err := encryption.Encrypt([]byte("secret"), identity.Recipient())
	require.NoError(t, err)

	var desc encryption.Descriptor
	require.NoError(t, json.Unmarshal([]byte(descriptor), &desc))
	assert.Equal(t, encryption.AlgorithmSecretbox, desc.Algorithm)
	assert.NotEmpty(t, desc.Nonce)
	assert.NotEmpty(t, desc.WrappedKey)
}

func TestFreshKeyPerCall(t *testing.T) {
	identity, err := age.GenerateX25519Identity()
	require.NoError(t, err)

	data := []byte("same input")
	a, descA, err := encryption.Encrypt(data, identity.Recipient())
	require.NoError(t, err)
	b, descB, err := encryption.Encrypt(data, identity.Recipient())
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, descA, descB)
}

func TestWrongIdentity(t *testing.T) {
	owner, err := age.GenerateX25519Identity()
	require.NoError(t, err)
	other, err := age.GenerateX25519Identity()
	require.NoError(t, err)

	ciphertext, descriptor, err := encryption.Encrypt([]byte("Hello FileTao!"), owner.Recipient())
	require.NoError(t, err)

	_, err = encryption.Decrypt(ciphertext, descriptor, other)
	require.Error(t, err)
	assert.True(t, encryption.ErrDecryption.Has(err))

	_, err = encryption.Decrypt(ciphertext, descriptor, nil)
	require.Error(t, err)
	assert.True(t, encryption.ErrDecryption.Has(err))
}

func TestTampered(t *testing.T) {
	identity, err := age.GenerateX25519Identity()
	require.NoError(t, err)

	ciphertext, descriptor, err := encryption.Encrypt([]byte("Hello FileTao!"), identity.Recipient())
	require.NoError(t, err)

	ciphertext[0] ^= 0xFF
	_, err = encryption.Decrypt(ciphertext, descriptor, identity)
	require.Error(t, err)
	assert.True(t, encryption.ErrDecryption.Has(err))

	for _, bad := range []string{
		"not json",
		`{"algorithm":"rot13"}`,
		`{"algorithm":"xsalsa20-poly1305","nonce":"AAAA","wrapped_key":""}`,
	} {
		_, err = encryption.Decrypt(ciphertext, bad, identity)
		require.Error(t, err, bad)
		assert.True(t, encryption.ErrDecryption.Has(err), bad)
	}
}

func TestMissingRecipient(t *testing.T) {
	_, _, err := encryption.Encrypt([]byte("data"), nil)
	require.Error(t, err)
}
