// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package teststore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storj.io/filetao/storage"
	"storj.io/filetao/storage/testsuite"
)

func TestSuite(t *testing.T) {
	testsuite.RunTests(t, New())
}

func TestClock(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	store := New()
	store.Now = func() time.Time { return now }

	require.NoError(t, store.Put(ctx, storage.Key("k"), storage.Value("v"), time.Minute))

	_, err := store.Get(ctx, storage.Key("k"))
	require.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = store.Get(ctx, storage.Key("k"))
	assert.True(t, storage.ErrKeyNotFound.Has(err))
	assert.Equal(t, 1, store.Len())
}

func TestForceError(t *testing.T) {
	ctx := context.Background()
	store := New()

	store.SetForceError(true)
	err := store.Put(ctx, storage.Key("k"), storage.Value("v"), 0)
	assert.True(t, ErrForced.Has(err))
	err = store.Range(ctx, func(context.Context, storage.Item) error { return nil })
	assert.True(t, ErrForced.Has(err))

	store.SetForceError(false)
	require.NoError(t, store.Put(ctx, storage.Key("k"), storage.Value("v"), 0))
}
