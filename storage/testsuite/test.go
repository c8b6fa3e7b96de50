// Copyright (C) 2018 Storj Labs, Inc.
// See LICENSE for copying information.

// Package testsuite contains conformance tests shared by every storage.Store
// implementation.
package testsuite

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storj.io/filetao/internal/testcontext"
	"storj.io/filetao/storage"
)

// RunTests runs common storage.Store tests
func RunTests(t *testing.T, store storage.Store) {
	t.Run("CRUD", func(t *testing.T) { testCRUD(t, store) })
	t.Run("Constraints", func(t *testing.T) { testConstraints(t, store) })
	t.Run("Expiration", func(t *testing.T) { testExpiration(t, store) })
	t.Run("Range", func(t *testing.T) { testRange(t, store) })
}

func testCRUD(t *testing.T, store storage.Store) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	items := map[string]string{
		"a":           "1",
		"b/c":         "2",
		"\x00\xff":    "binary",
		"empty value": "",
	}
	defer cleanupKeys(ctx, store, items)

	for key, value := range items {
		require.NoError(t, store.Put(ctx, storage.Key(key), storage.Value(value), 0))
	}

	for key, value := range items {
		got, err := store.Get(ctx, storage.Key(key))
		require.NoError(t, err, key)
		assert.Equal(t, value, string(got), key)

		expires, err := store.Expiration(ctx, storage.Key(key))
		require.NoError(t, err, key)
		assert.True(t, expires.IsZero(), key)
	}

	// overwrite replaces value and metadata
	require.NoError(t, store.Put(ctx, storage.Key("a"), storage.Value("updated"), time.Hour))
	got, err := store.Get(ctx, storage.Key("a"))
	require.NoError(t, err)
	assert.Equal(t, "updated", string(got))
	expires, err := store.Expiration(ctx, storage.Key("a"))
	require.NoError(t, err)
	assert.False(t, expires.IsZero())

	require.NoError(t, store.Put(ctx, storage.Key("a"), storage.Value("again"), 0))
	expires, err = store.Expiration(ctx, storage.Key("a"))
	require.NoError(t, err)
	assert.True(t, expires.IsZero())

	for key := range items {
		require.NoError(t, store.Delete(ctx, storage.Key(key)))

		_, err := store.Get(ctx, storage.Key(key))
		require.Error(t, err)
		assert.True(t, storage.ErrKeyNotFound.Has(err), key)

		_, err = store.Expiration(ctx, storage.Key(key))
		assert.True(t, storage.ErrKeyNotFound.Has(err), key)
	}

	// deleting a missing key is fine
	require.NoError(t, store.Delete(ctx, storage.Key("missing")))
}

func testConstraints(t *testing.T, store storage.Store) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	var empty storage.Key

	err := store.Put(ctx, empty, storage.Value("x"), 0)
	require.Error(t, err)
	assert.True(t, storage.ErrEmptyKey.Has(err))

	_, err = store.Get(ctx, empty)
	require.Error(t, err)
	assert.True(t, storage.ErrEmptyKey.Has(err))

	err = store.Delete(ctx, empty)
	require.Error(t, err)

	err = store.Expire(ctx, storage.Key("missing"), time.Now())
	require.Error(t, err)
	assert.True(t, storage.ErrKeyNotFound.Has(err))

	_, err = store.Get(ctx, storage.Key("missing"))
	require.Error(t, err)
	assert.True(t, storage.ErrKeyNotFound.Has(err))

	exists, err := storage.Exists(ctx, store, storage.Key("missing"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func testExpiration(t *testing.T, store storage.Store) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	items := map[string]string{"live": "1", "dead": "2", "forever": "3"}
	defer cleanupKeys(ctx, store, items)

	require.NoError(t, store.Put(ctx, storage.Key("live"), storage.Value("1"), time.Hour))
	require.NoError(t, store.Put(ctx, storage.Key("dead"), storage.Value("2"), time.Hour))
	require.NoError(t, store.Put(ctx, storage.Key("forever"), storage.Value("3"), 0))

	past := time.Now().Add(-time.Minute)
	require.NoError(t, store.Expire(ctx, storage.Key("dead"), past))

	got, err := store.Get(ctx, storage.Key("live"))
	require.NoError(t, err)
	assert.Equal(t, "1", string(got))

	_, err = store.Get(ctx, storage.Key("dead"))
	require.Error(t, err)
	assert.True(t, storage.ErrKeyNotFound.Has(err))

	// expired entries are hidden but remain until deleted
	expires, err := store.Expiration(ctx, storage.Key("dead"))
	require.NoError(t, err)
	assert.WithinDuration(t, past, expires, time.Millisecond)

	found := rangeKeys(ctx, t, store)
	assert.Contains(t, found, "dead")

	// clearing the expiration revives the entry
	require.NoError(t, store.Expire(ctx, storage.Key("dead"), time.Time{}))
	got, err = store.Get(ctx, storage.Key("dead"))
	require.NoError(t, err)
	assert.Equal(t, "2", string(got))

	exists, err := storage.Exists(ctx, store, storage.Key("forever"))
	require.NoError(t, err)
	assert.True(t, exists)
}

func testRange(t *testing.T, store storage.Store) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	items := map[string]string{}
	for _, key := range []string{"k0", "k1", "k2", "k3", "k4"} {
		items[key] = key
	}
	defer cleanupKeys(ctx, store, items)

	for key, value := range items {
		require.NoError(t, store.Put(ctx, storage.Key(key), storage.Value(value), time.Hour))
	}

	found := rangeKeys(ctx, t, store)
	for key := range items {
		assert.Contains(t, found, key)
	}

	errStop := storage.ErrKeyNotFound.New("stop")
	calls := 0
	err := store.Range(ctx, func(ctx context.Context, item storage.Item) error {
		calls++
		return errStop
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func rangeKeys(ctx context.Context, t *testing.T, store storage.Store) []string {
	var keys []string
	err := store.Range(ctx, func(ctx context.Context, item storage.Item) error {
		keys = append(keys, string(item.Key))
		return nil
	})
	require.NoError(t, err)
	sort.Strings(keys)
	return keys
}

func cleanupKeys(ctx context.Context, store storage.Store, items map[string]string) {
	for key := range items {
		_ = store.Delete(ctx, storage.Key(key))
	}
}
