// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package storagenode_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"storj.io/filetao/internal/testcontext"
	"storj.io/filetao/pkg/identity"
	"storj.io/filetao/pkg/overlay"
	"storj.io/filetao/pkg/transport"
	"storj.io/filetao/storage/redis"
	"storj.io/filetao/storage/redis/redisserver"
	"storj.io/filetao/storage/teststore"
	"storj.io/filetao/storagenode"
	"storj.io/filetao/uplink"
)

func TestStoreRetrieveThroughNodes(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	log := zaptest.NewLogger(t)

	redisServer, err := redisserver.Mini()
	require.NoError(t, err)
	defer ctx.Check(redisServer.Close)

	var nodes []overlay.Node
	for i, name := range []string{"alpha", "beta"} {
		store, err := redis.OpenClientFrom(ctx, redisServer.URL(i))
		require.NoError(t, err)
		defer ctx.Check(store.Close)

		config := storagenode.DefaultConfig()
		config.Server.Address = "127.0.0.1:0"

		peer, err := storagenode.New(log.Named(name), store, config)
		require.NoError(t, err)
		defer ctx.Check(peer.Close)

		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		ctx.Go(func() error { return peer.Run(runCtx) })

		nodes = append(nodes, overlay.Node{
			ID:             overlay.NodeID(name),
			Address:        peer.Addr(),
			Trust:          1,
			ValidatorTrust: 1,
		})
	}

	dialer := transport.NewClient(log.Named("transport"))
	defer ctx.Check(dialer.Close)

	selector := overlay.NewSelector(log.Named("overlay"), overlay.NewStaticTable(nodes), dialer, overlay.DefaultConfig())

	wallet, err := identity.NewWallet()
	require.NoError(t, err)

	config := uplink.DefaultConfig()
	config.Timeout = 30 * time.Second
	client := uplink.New(log.Named("uplink"), config, wallet, selector, dialer)

	result, err := client.Store(ctx, []byte("Hello FileTao!"), uplink.StoreOptions{Encrypt: true, TTL: 86400 * time.Second})
	require.NoError(t, err)
	require.True(t, result.Success, "%v", result.Failures)
	assert.Empty(t, result.Failures)

	retrieved, err := client.Retrieve(ctx, result.CID)
	require.NoError(t, err)
	require.True(t, retrieved.Success)
	assert.Equal(t, []byte("Hello FileTao!"), retrieved.Data)

	plain, err := client.Store(ctx, []byte("Hello FileTao!"), uplink.StoreOptions{})
	require.NoError(t, err)
	require.True(t, plain.Success)
	assert.NotEqual(t, result.CID, plain.CID)

	retrieved, err = client.Retrieve(ctx, plain.CID)
	require.NoError(t, err)
	assert.Equal(t, []byte("Hello FileTao!"), retrieved.Data)
}

func TestPreflightFailure(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	redisServer, err := redisserver.Mini()
	require.NoError(t, err)
	defer ctx.Check(redisServer.Close)

	store, err := redis.OpenClientFrom(ctx, redisServer.URL(0))
	require.NoError(t, err)
	defer ctx.Check(store.Close)

	config := storagenode.DefaultConfig()
	config.Server.Address = "127.0.0.1:0"

	peer, err := storagenode.New(zaptest.NewLogger(t), store, config)
	require.NoError(t, err)
	defer ctx.Check(peer.Close)

	require.NoError(t, redisServer.Close())

	err = peer.Run(ctx)
	require.Error(t, err)
}

func TestRunWithoutPreflight(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	config := storagenode.DefaultConfig()
	config.Server.Address = "127.0.0.1:0"

	peer, err := storagenode.New(zaptest.NewLogger(t), teststore.New(), config)
	require.NoError(t, err)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- peer.Run(runCtx) }()

	cancel()
	require.NoError(t, <-done)
	require.NoError(t, peer.Close())
}
