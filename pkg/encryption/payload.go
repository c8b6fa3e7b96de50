// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package encryption

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"io"
	"strings"

	"filippo.io/age"
	"github.com/zeebo/errs"
	"golang.org/x/crypto/nacl/secretbox"
)

var (
	// Error is the default encryption error class.
	Error = errs.Class("encryption")

	// ErrDecryption is returned when a payload cannot be decrypted with the
	// given descriptor and key material.
	ErrDecryption = errs.Class("decryption")
)

// PlainDescriptor marks a payload that was stored without encryption.
const PlainDescriptor = "{}"

// AlgorithmSecretbox is the only payload algorithm currently produced.
const AlgorithmSecretbox = "xsalsa20-poly1305"

const (
	keySize   = 32
	nonceSize = 24
)

// Descriptor carries everything needed to decrypt a payload except the
// caller's private key. It never contains the raw data key.
type Descriptor struct {
	Algorithm  string `json:"algorithm"`
	Nonce      string `json:"nonce"`
	WrappedKey string `json:"wrapped_key"`
}

// Plain returns data unchanged together with the plaintext descriptor.
func Plain(data []byte) ([]byte, string) {
	return data, PlainDescriptor
}

// IsPlain returns whether descriptor denotes an unencrypted payload.
func IsPlain(descriptor string) bool {
	descriptor = strings.TrimSpace(descriptor)
	return descriptor == "" || descriptor == PlainDescriptor
}

// Encrypt seals data under a fresh data key and wraps that key to recipient.
func Encrypt(data []byte, recipient age.Recipient) (ciphertext []byte, descriptor string, err error) {
	if recipient == nil {
		return nil, "", Error.New("missing recipient")
	}

	var key [keySize]byte
	if _, err := io.ReadFull(rand.Reader, key[:]); err != nil {
		return nil, "", Error.Wrap(err)
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, "", Error.Wrap(err)
	}

	wrapped, err := wrapKey(key[:], recipient)
	if err != nil {
		return nil, "", err
	}

	ciphertext = secretbox.Seal(nil, data, &nonce, &key)

	encoded, err := json.Marshal(Descriptor{
		Algorithm:  AlgorithmSecretbox,
		Nonce:      base64.StdEncoding.EncodeToString(nonce[:]),
		WrappedKey: base64.StdEncoding.EncodeToString(wrapped),
	})
	if err != nil {
		return nil, "", Error.Wrap(err)
	}

	return ciphertext, string(encoded), nil
}

// Decrypt opens ciphertext described by descriptor using identity.
//
// An empty or "{}" descriptor means the payload was never encrypted and
// ciphertext is returned as is. This does not make such payloads trusted.
func Decrypt(ciphertext []byte, descriptor string, identity age.Identity) ([]byte, error) {
	if IsPlain(descriptor) {
		return ciphertext, nil
	}
	if identity == nil {
		return nil, ErrDecryption.New("missing identity")
	}

	var desc Descriptor
	if err := json.Unmarshal([]byte(descriptor), &desc); err != nil {
		return nil, ErrDecryption.New("invalid descriptor: %v", err)
	}
	if desc.Algorithm != AlgorithmSecretbox {
		return nil, ErrDecryption.New("unsupported algorithm %q", desc.Algorithm)
	}

	rawNonce, err := base64.StdEncoding.DecodeString(desc.Nonce)
	if err != nil || len(rawNonce) != nonceSize {
		return nil, ErrDecryption.New("invalid nonce")
	}
	wrapped, err := base64.StdEncoding.DecodeString(desc.WrappedKey)
	if err != nil {
		return nil, ErrDecryption.New("invalid wrapped key: %v", err)
	}

	rawKey, err := unwrapKey(wrapped, identity)
	if err != nil {
		return nil, err
	}

	var key [keySize]byte
	var nonce [nonceSize]byte
	copy(key[:], rawKey)
	copy(nonce[:], rawNonce)

	plaintext, ok := secretbox.Open(nil, ciphertext, &nonce, &key)
	if !ok {
		return nil, ErrDecryption.New("payload authentication failed")
	}
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}

func wrapKey(key []byte, recipient age.Recipient) ([]byte, error) {
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return nil, Error.New("wrapping key: %v", err)
	}
	if _, err := w.Write(key); err != nil {
		return nil, Error.New("wrapping key: %v", err)
	}
	if err := w.Close(); err != nil {
		return nil, Error.New("wrapping key: %v", err)
	}
	return buf.Bytes(), nil
}

func unwrapKey(wrapped []byte, identity age.Identity) ([]byte, error) {
	r, err := age.Decrypt(bytes.NewReader(wrapped), identity)
	if err != nil {
		return nil, ErrDecryption.New("unwrapping key: %v", err)
	}
	key, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrDecryption.New("unwrapping key: %v", err)
	}
	if len(key) != keySize {
		return nil, ErrDecryption.New("unexpected key size %d", len(key))
	}
	return key, nil
}
