// Copyright (C) 2018 Storj Labs, Inc.
// See LICENSE for copying information.

// Package boltdb implements a single file storage.Store on top of bbolt.
package boltdb

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
	"go.etcd.io/bbolt"

	"storj.io/filetao/storage"
)

var mon = monkit.Package()

// Error is the default boltdb errs class
var Error = errs.Class("boltdb")

var (
	defaultTimeout = 1 * time.Second
	defaultBucket  = []byte("entries")
)

const (
	// fileMode sets permissions so owner can read and write
	fileMode = 0600
)

type record struct {
	Value   []byte `cbor:"1,keyasint"`
	Expires int64  `cbor:"2,keyasint,omitempty"`
}

// Client is the storage interface for the Bolt database
type Client struct {
	db     *bbolt.DB
	Path   string
	Bucket []byte

	// Now returns the current time used to evaluate expiration.
	Now func() time.Time
}

// New instantiates a new BoltDB client
func New(path string) (*Client, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, Error.Wrap(err)
	}

	db, err := bbolt.Open(path, fileMode, &bbolt.Options{Timeout: defaultTimeout})
	if err != nil {
		return nil, Error.Wrap(err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(defaultBucket)
		return err
	})
	if err != nil {
		return nil, errs.Combine(Error.Wrap(err), Error.Wrap(db.Close()))
	}

	return &Client{
		db:     db,
		Path:   path,
		Bucket: defaultBucket,
		Now:    time.Now,
	}, nil
}

func (client *Client) update(fn func(*bbolt.Bucket) error) error {
	return Error.Wrap(client.db.Update(func(tx *bbolt.Tx) error {
		return fn(tx.Bucket(client.Bucket))
	}))
}

func (client *Client) view(fn func(*bbolt.Bucket) error) error {
	return Error.Wrap(client.db.View(func(tx *bbolt.Tx) error {
		return fn(tx.Bucket(client.Bucket))
	}))
}

func load(bucket *bbolt.Bucket, key storage.Key) (record, error) {
	raw := bucket.Get(key)
	if raw == nil {
		return record{}, storage.ErrKeyNotFound.New("%q", key)
	}
	var rec record
	if err := cbor.Unmarshal(raw, &rec); err != nil {
		return record{}, Error.New("corrupt record %q: %v", key, err)
	}
	return rec, nil
}

func save(bucket *bbolt.Bucket, key storage.Key, rec record) error {
	raw, err := cbor.Marshal(rec)
	if err != nil {
		return err
	}
	return bucket.Put(key, raw)
}

// Put adds a value to the provided key in boltdb, returning an error on failure.
func (client *Client) Put(ctx context.Context, key storage.Key, value storage.Value, ttl time.Duration) (err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return storage.ErrEmptyKey.New("")
	}

	rec := record{
		Value:   storage.CloneValue(value),
		Expires: storage.UnixNano(storage.ExpiresAt(client.Now(), ttl)),
	}
	return client.update(func(bucket *bbolt.Bucket) error {
		return save(bucket, key, rec)
	})
}

// Get looks up the provided key from boltdb returning either an error or the result.
func (client *Client) Get(ctx context.Context, key storage.Key) (_ storage.Value, err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return nil, storage.ErrEmptyKey.New("")
	}

	var value storage.Value
	err = client.view(func(bucket *bbolt.Bucket) error {
		rec, err := load(bucket, key)
		if err != nil {
			return err
		}
		if storage.Expired(storage.FromUnixNano(rec.Expires), client.Now()) {
			return storage.ErrKeyNotFound.New("%q", key)
		}
		value = storage.Value(rec.Value)
		if value == nil {
			value = storage.Value{}
		}
		return nil
	})
	return value, err
}

// Delete deletes a key/value pair from boltdb, for a given the key.
func (client *Client) Delete(ctx context.Context, key storage.Key) (err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return storage.ErrEmptyKey.New("")
	}
	return client.update(func(bucket *bbolt.Bucket) error {
		return bucket.Delete(key)
	})
}

// Expiration returns when key expires, or the zero time if it never does.
func (client *Client) Expiration(ctx context.Context, key storage.Key) (_ time.Time, err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return time.Time{}, storage.ErrEmptyKey.New("")
	}

	var expires time.Time
	err = client.view(func(bucket *bbolt.Bucket) error {
		rec, err := load(bucket, key)
		if err != nil {
			return err
		}
		expires = storage.FromUnixNano(rec.Expires)
		return nil
	})
	return expires, err
}

// Expire sets the expiration of an existing key. A zero at clears it.
func (client *Client) Expire(ctx context.Context, key storage.Key, at time.Time) (err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return storage.ErrEmptyKey.New("")
	}
	return client.update(func(bucket *bbolt.Bucket) error {
		rec, err := load(bucket, key)
		if err != nil {
			return err
		}
		rec.Expires = storage.UnixNano(at)
		return save(bucket, key, rec)
	})
}

// Range iterates over all items in key order.
//
// The callback runs outside of the read transaction so it may modify the
// store.
func (client *Client) Range(ctx context.Context, fn func(context.Context, storage.Item) error) (err error) {
	defer mon.Task()(&ctx)(&err)

	var items []storage.Item
	err = client.view(func(bucket *bbolt.Bucket) error {
		return bucket.ForEach(func(key, raw []byte) error {
			var rec record
			if err := cbor.Unmarshal(raw, &rec); err != nil {
				return Error.New("corrupt record %q: %v", key, err)
			}
			items = append(items, storage.Item{
				Key:     storage.CloneKey(key),
				Expires: storage.FromUnixNano(rec.Expires),
			})
			return nil
		})
	})
	if err != nil {
		return err
	}

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

// Close closes a BoltDB client
func (client *Client) Close() error {
	return Error.Wrap(client.db.Close())
}
