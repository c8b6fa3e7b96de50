// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package identity manages the key material a client uses to encrypt and
// decrypt its own payloads.
package identity

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"filippo.io/age"
	"github.com/zeebo/errs"
)

// Error is the default identity error class.
var Error = errs.Class("identity")

// Wallet holds the client's X25519 key pair.
type Wallet struct {
	identity *age.X25519Identity
}

// NewWallet generates a fresh wallet.
func NewWallet() (*Wallet, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return &Wallet{identity: identity}, nil
}

// WalletFromIdentity wraps an existing identity.
func WalletFromIdentity(identity *age.X25519Identity) *Wallet {
	return &Wallet{identity: identity}
}

// ParseWallet parses the key file format written by Save. Comment lines are
// ignored.
func ParseWallet(data []byte) (*Wallet, error) {
	identities, err := age.ParseIdentities(bytes.NewReader(data))
	if err != nil {
		return nil, Error.Wrap(err)
	}
	for _, identity := range identities {
		if x, ok := identity.(*age.X25519Identity); ok {
			return &Wallet{identity: x}, nil
		}
	}
	return nil, Error.New("no X25519 identity found")
}

// LoadWallet reads a wallet from path.
func LoadWallet(path string) (*Wallet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Error.New("unable to read wallet %q: %v", path, err)
	}
	wallet, err := ParseWallet(data)
	if err != nil {
		return nil, Error.New("unable to parse wallet %q: %v", path, err)
	}
	return wallet, nil
}

// Save writes the wallet to path with owner-only permissions.
func (wallet *Wallet) Save(path string) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# created: %s\n", time.Now().UTC().Format(time.RFC3339))
	fmt.Fprintf(&buf, "# public key: %s\n", wallet.PublicKey())
	fmt.Fprintf(&buf, "%s\n", wallet.identity.String())
	return writeKeyData(path, buf.Bytes())
}

// Recipient returns the public half used to wrap data keys.
func (wallet *Wallet) Recipient() age.Recipient { return wallet.identity.Recipient() }

// Identity returns the private half used to unwrap data keys.
func (wallet *Wallet) Identity() age.Identity { return wallet.identity }

// PublicKey returns the textual public key.
func (wallet *Wallet) PublicKey() string { return wallet.identity.Recipient().String() }
