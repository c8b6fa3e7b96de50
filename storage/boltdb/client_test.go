// Copyright (C) 2018 Storj Labs, Inc.
// See LICENSE for copying information.

package boltdb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storj.io/filetao/internal/testcontext"
	"storj.io/filetao/storage"
	"storj.io/filetao/storage/testsuite"
)

func TestSuite(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	client, err := New(ctx.File("bolt", "entries.db"))
	require.NoError(t, err)
	defer ctx.Check(client.Close)

	testsuite.RunTests(t, client)
}

func TestReopen(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	path := ctx.File("entries.db")

	client, err := New(path)
	require.NoError(t, err)
	require.NoError(t, client.Put(ctx, storage.Key("k"), storage.Value("v"), time.Hour))
	require.NoError(t, client.Close())

	client, err = New(path)
	require.NoError(t, err)
	defer ctx.Check(client.Close)

	value, err := client.Get(ctx, storage.Key("k"))
	require.NoError(t, err)
	assert.Equal(t, "v", string(value))

	expires, err := client.Expiration(ctx, storage.Key("k"))
	require.NoError(t, err)
	assert.False(t, expires.IsZero())
}
