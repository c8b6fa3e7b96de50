// Copyright (C) 2018 Storj Labs, Inc.
// See LICENSE for copying information.

package storage

import (
	"context"
	"time"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
)

var mon = monkit.Package()

var (
	// ErrKeyNotFound used when something doesn't exist.
	ErrKeyNotFound = errs.Class("key not found")

	// ErrEmptyKey is returned when an empty key is used.
	ErrEmptyKey = errs.Class("empty key")
)

// Key is the type for the keys in a `Store`.
type Key []byte

// Value is the type for the values in a `Store`.
type Value []byte

// Item describes a stored key and its expiration metadata.
//
// A zero Expires means the entry never expires.
type Item struct {
	Key     Key
	Expires time.Time
}

// Store describes key/value stores like redis and boltdb where every entry
// carries an optional expiration time.
//
// Stores never remove expired entries on their own. Reads treat an expired
// entry as missing; removing it is left to the caller via Range and Delete.
type Store interface {
	// Put stores value under key. A zero ttl means the entry never expires.
	Put(ctx context.Context, key Key, value Value, ttl time.Duration) error
	// Get returns the value stored under key.
	Get(ctx context.Context, key Key) (Value, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key Key) error
	// Expiration returns when key expires, or the zero time if it never does.
	Expiration(ctx context.Context, key Key) (time.Time, error)
	// Expire sets the expiration of an existing key. A zero at clears it.
	Expire(ctx context.Context, key Key, at time.Time) error
	// Range iterates over all items in unspecified order, expired or not.
	// The Key is valid only for the duration of callback.
	Range(ctx context.Context, fn func(context.Context, Item) error) error
	// Close closes the store.
	Close() error
}

// IsZero returns true if the value struct is a zero value.
func (value Value) IsZero() bool {
	return len(value) == 0
}

// IsZero returns true if the key struct is a zero value.
func (key Key) IsZero() bool {
	return len(key) == 0
}

// MarshalBinary implements the encoding.BinaryMarshaler interface for the Value type.
func (value Value) MarshalBinary() ([]byte, error) {
	return value, nil
}

// MarshalBinary implements the encoding.BinaryMarshaler interface for the Key type.
func (key Key) MarshalBinary() ([]byte, error) {
	return key, nil
}

// String implements the Stringer interface.
func (key Key) String() string { return string(key) }

// Expired returns whether an entry expiring at expires is expired at now.
func Expired(expires, now time.Time) bool {
	return !expires.IsZero() && !expires.After(now)
}

// ExpiresAt converts a ttl relative to now into an absolute expiration.
func ExpiresAt(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}

// Exists returns whether key is present and not expired.
func Exists(ctx context.Context, store Store, key Key) (_ bool, err error) {
	defer mon.Task()(&ctx)(&err)
	_, err = store.Get(ctx, key)
	if ErrKeyNotFound.Has(err) {
		return false, nil
	}
	return err == nil, err
}
