// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package storeurl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"storj.io/filetao/internal/testcontext"
	"storj.io/filetao/storage"
	"storj.io/filetao/storage/boltdb"
	"storj.io/filetao/storage/redis"
	"storj.io/filetao/storage/redis/redisserver"
	"storj.io/filetao/storage/storelogger"
	"storj.io/filetao/storage/storeurl"
)

func TestOpen(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	server, err := redisserver.Mini()
	require.NoError(t, err)
	defer ctx.Check(server.Close)

	store, err := storeurl.Open(ctx, zap.NewNop(), server.URL(0))
	require.NoError(t, err)
	assert.IsType(t, &redis.Client{}, store)
	require.NoError(t, store.Put(ctx, storage.Key("k"), storage.Value("v"), 0))
	ctx.Check(store.Close)

	store, err = storeurl.Open(ctx, zap.NewNop(), "bolt://"+ctx.File("db", "entries.db"))
	require.NoError(t, err)
	assert.IsType(t, &boltdb.Client{}, store)
	ctx.Check(store.Close)

	store, err = storeurl.Open(ctx, zaptest.NewLogger(t), "bolt://"+ctx.File("db", "logged.db"))
	require.NoError(t, err)
	assert.IsType(t, &storelogger.Logger{}, store)
	ctx.Check(store.Close)

	_, err = storeurl.Open(ctx, zap.NewNop(), "postgres://localhost")
	require.Error(t, err)
}
