// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package storelogger

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/spacemonkeygo/monkit/v3"
	"go.uber.org/zap"

	"storj.io/filetao/storage"
)

var mon = monkit.Package()

var id int64

// Logger implements a zap.Logger for storage.Store.
type Logger struct {
	log   *zap.Logger
	store storage.Store
}

// New creates a new Logger with log and store.
func New(log *zap.Logger, store storage.Store) *Logger {
	loggerid := atomic.AddInt64(&id, 1)
	name := strconv.Itoa(int(loggerid))
	return &Logger{log.Named(name), store}
}

// Unwrap returns the logged store.
func (store *Logger) Unwrap() storage.Store { return store.store }

// Put adds a value to store.
func (store *Logger) Put(ctx context.Context, key storage.Key, value storage.Value, ttl time.Duration) (err error) {
	defer mon.Task()(&ctx)(&err)
	store.log.Debug("Put", zap.ByteString("key", key), zap.Int("value length", len(value)), zap.Binary("truncated value", truncate(value)), zap.Duration("ttl", ttl))
	return store.store.Put(ctx, key, value, ttl)
}

// Get gets a value to store.
func (store *Logger) Get(ctx context.Context, key storage.Key) (_ storage.Value, err error) {
	defer mon.Task()(&ctx)(&err)
	store.log.Debug("Get", zap.ByteString("key", key))
	return store.store.Get(ctx, key)
}

// Delete deletes key and the value.
func (store *Logger) Delete(ctx context.Context, key storage.Key) (err error) {
	defer mon.Task()(&ctx)(&err)
	store.log.Debug("Delete", zap.ByteString("key", key))
	return store.store.Delete(ctx, key)
}

// Expiration returns when key expires.
func (store *Logger) Expiration(ctx context.Context, key storage.Key) (_ time.Time, err error) {
	defer mon.Task()(&ctx)(&err)
	store.log.Debug("Expiration", zap.ByteString("key", key))
	return store.store.Expiration(ctx, key)
}

// Expire sets the expiration of key.
func (store *Logger) Expire(ctx context.Context, key storage.Key, at time.Time) (err error) {
	defer mon.Task()(&ctx)(&err)
	store.log.Debug("Expire", zap.ByteString("key", key), zap.Time("at", at))
	return store.store.Expire(ctx, key, at)
}

// Range iterates over all items in unspecified order.
func (store *Logger) Range(ctx context.Context, fn func(context.Context, storage.Item) error) (err error) {
	defer mon.Task()(&ctx)(&err)
	store.log.Debug("Range")
	return store.store.Range(ctx, func(ctx context.Context, item storage.Item) error {
		store.log.Debug("  ", zap.ByteString("key", item.Key), zap.Time("expires", item.Expires))
		return fn(ctx, item)
	})
}

// Close closes the store.
func (store *Logger) Close() error {
	store.log.Debug("Close")
	return store.store.Close()
}

func truncate(v storage.Value) (t []byte) {
	if len(v)-1 < 10 {
		t = []byte(v)
	} else {
		t = v[:10]
	}
	return t
}
