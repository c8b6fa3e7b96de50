// Copyright (C) 2018 Storj Labs, Inc.
// See LICENSE for copying information.

// Package teststore implements an in-memory storage.Store for tests.
package teststore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/zeebo/errs"

	"storj.io/filetao/storage"
)

// ErrForced is returned by every call while Client.ForceError is set.
var ErrForced = errs.Class("forced error")

type entry struct {
	value   storage.Value
	expires time.Time
}

// Client implements in-memory key value store
type Client struct {
	mu    sync.Mutex
	items map[string]entry

	// Now returns the current time used to evaluate expiration.
	Now func() time.Time

	// ForceError makes every following call fail with ErrForced while set.
	ForceError bool

	CallCount struct {
		Get        int
		Put        int
		Delete     int
		Expiration int
		Expire     int
		Range      int
		Close      int
	}
}

// New creates a new in-memory key-value store
func New() *Client {
	return &Client{
		items: map[string]entry{},
		Now:   time.Now,
	}
}

// SetForceError sets ForceError under the store lock.
func (store *Client) SetForceError(force bool) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.ForceError = force
}

func (store *Client) forced() error {
	if store.ForceError {
		return ErrForced.New("")
	}
	return nil
}

// Put adds a value to store
func (store *Client) Put(ctx context.Context, key storage.Key, value storage.Value, ttl time.Duration) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.CallCount.Put++
	if err := store.forced(); err != nil {
		return err
	}
	if key.IsZero() {
		return storage.ErrEmptyKey.New("")
	}

	store.items[string(key)] = entry{
		value:   storage.CloneValue(value),
		expires: storage.ExpiresAt(store.Now(), ttl),
	}
	return nil
}

// Get gets a value to store
func (store *Client) Get(ctx context.Context, key storage.Key) (storage.Value, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.CallCount.Get++
	if err := store.forced(); err != nil {
		return nil, err
	}
	if key.IsZero() {
		return nil, storage.ErrEmptyKey.New("")
	}

	e, ok := store.items[string(key)]
	if !ok || storage.Expired(e.expires, store.Now()) {
		return nil, storage.ErrKeyNotFound.New("%q", key)
	}
	return storage.CloneValue(e.value), nil
}

// Delete deletes key and the value
func (store *Client) Delete(ctx context.Context, key storage.Key) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.CallCount.Delete++
	if err := store.forced(); err != nil {
		return err
	}
	if key.IsZero() {
		return storage.ErrEmptyKey.New("")
	}

	delete(store.items, string(key))
	return nil
}

// Expiration returns when key expires.
func (store *Client) Expiration(ctx context.Context, key storage.Key) (time.Time, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.CallCount.Expiration++
	if err := store.forced(); err != nil {
		return time.Time{}, err
	}
	if key.IsZero() {
		return time.Time{}, storage.ErrEmptyKey.New("")
	}

	e, ok := store.items[string(key)]
	if !ok {
		return time.Time{}, storage.ErrKeyNotFound.New("%q", key)
	}
	return e.expires, nil
}

// Expire sets the expiration of an existing key.
func (store *Client) Expire(ctx context.Context, key storage.Key, at time.Time) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.CallCount.Expire++
	if err := store.forced(); err != nil {
		return err
	}
	if key.IsZero() {
		return storage.ErrEmptyKey.New("")
	}

	e, ok := store.items[string(key)]
	if !ok {
		return storage.ErrKeyNotFound.New("%q", key)
	}
	e.expires = at
	store.items[string(key)] = e
	return nil
}

// Range iterates over a snapshot of all items in key order.
func (store *Client) Range(ctx context.Context, fn func(context.Context, storage.Item) error) error {
	store.mu.Lock()
	store.CallCount.Range++
	if err := store.forced(); err != nil {
		store.mu.Unlock()
		return err
	}
	items := make([]storage.Item, 0, len(store.items))
	for key, e := range store.items {
		items = append(items, storage.Item{Key: storage.Key(key), Expires: e.expires})
	}
	store.mu.Unlock()

	sort.Slice(items, func(i, k int) bool {
		return string(items[i].Key) < string(items[k].Key)
	})

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of stored entries, expired or not.
func (store *Client) Len() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.items)
}

// Close closes the store
func (store *Client) Close() error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.CallCount.Close++
	return nil
}
