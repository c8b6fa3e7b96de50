// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package piecestore_test

import (
	"context"
	"encoding/base64"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"storj.io/filetao/internal/testcontext"
	"storj.io/filetao/internal/testrand"
	"storj.io/filetao/pkg/cid"
	"storj.io/filetao/pkg/encryption"
	"storj.io/filetao/pkg/pb"
	"storj.io/filetao/storage"
	"storj.io/filetao/storage/redis"
	"storj.io/filetao/storage/redis/redisserver"
	"storj.io/filetao/storage/teststore"
	"storj.io/filetao/storagenode/piecestore"
)

func storeRequest(data []byte, ttl uint64) *pb.StoreRequest {
	return &pb.StoreRequest{
		EncryptedData:     base64.StdEncoding.EncodeToString(data),
		EncryptionPayload: encryption.PlainDescriptor,
		TTL:               ttl,
	}
}

func expirations(ctx context.Context, t *testing.T, store storage.Store) []time.Time {
	var all []time.Time
	require.NoError(t, store.Range(ctx, func(ctx context.Context, item storage.Item) error {
		all = append(all, item.Expires)
		return nil
	}))
	return all
}

func TestStoreRetrieve(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := teststore.New()
	store.Now = func() time.Time { return now }

	endpoint := piecestore.NewEndpoint(zaptest.NewLogger(t), store, piecestore.DefaultConfig())

	ping, err := endpoint.Ping(ctx, &pb.PingRequest{})
	require.NoError(t, err)
	assert.True(t, ping.Status.OK())

	data := []byte("Hello FileTao!")
	stored, err := endpoint.Store(ctx, storeRequest(data, 86400))
	require.NoError(t, err)
	require.True(t, stored.Status.OK(), stored.Status.String())

	expected, err := cid.Make(data, 1)
	require.NoError(t, err)
	assert.Equal(t, expected.Encode(), stored.DataHash)
	assert.Equal(t, []time.Time{now.Add(24 * time.Hour)}, expirations(ctx, t, store))

	retrieved, err := endpoint.Retrieve(ctx, &pb.RetrieveRequest{DataHash: stored.DataHash})
	require.NoError(t, err)
	require.True(t, retrieved.Status.OK())
	assert.Equal(t, base64.StdEncoding.EncodeToString(data), retrieved.EncryptedData)
	assert.Equal(t, encryption.PlainDescriptor, retrieved.EncryptionPayload)

	// the v0 identifier addresses the same payload
	v0, err := cid.Make(data, 0)
	require.NoError(t, err)
	retrieved, err = endpoint.Retrieve(ctx, &pb.RetrieveRequest{DataHash: v0.Encode()})
	require.NoError(t, err)
	require.True(t, retrieved.Status.OK())

	now = now.Add(24 * time.Hour)
	retrieved, err = endpoint.Retrieve(ctx, &pb.RetrieveRequest{DataHash: stored.DataHash})
	require.NoError(t, err)
	assert.Equal(t, pb.StatusNotFound, retrieved.Status.Code)
	assert.Empty(t, retrieved.EncryptedData)
}

func TestLargePayload(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	store := teststore.New()
	endpoint := piecestore.NewEndpoint(zaptest.NewLogger(t), store, piecestore.Config{MaxPayloadSize: 1 << 20})

	data := testrand.BytesN(1 << 20)
	stored, err := endpoint.Store(ctx, storeRequest(data, 0))
	require.NoError(t, err)
	require.True(t, stored.Status.OK(), stored.Status.String())

	retrieved, err := endpoint.Retrieve(ctx, &pb.RetrieveRequest{DataHash: stored.DataHash})
	require.NoError(t, err)
	require.True(t, retrieved.Status.OK())
	assert.Equal(t, base64.StdEncoding.EncodeToString(data), retrieved.EncryptedData)

	stored, err = endpoint.Store(ctx, storeRequest(testrand.BytesN(1<<20+1), 0))
	require.NoError(t, err)
	assert.Equal(t, pb.StatusBadRequest, stored.Status.Code)
}

func TestStoreTTL(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, tt := range []struct {
		name   string
		config piecestore.Config
		ttl    uint64
		expect time.Duration
	}{
		{name: "default", config: piecestore.DefaultConfig(), ttl: 0, expect: 30 * 24 * time.Hour},
		{name: "requested", config: piecestore.DefaultConfig(), ttl: 60, expect: time.Minute},
		{name: "clamped", config: piecestore.Config{MaxTTL: time.Hour}, ttl: 86400, expect: time.Hour},
		{name: "huge", config: piecestore.DefaultConfig(), ttl: 1 << 62, expect: 100 * 365 * 24 * time.Hour},
	} {
		t.Run(tt.name, func(t *testing.T) {
			store := teststore.New()
			store.Now = func() time.Time { return now }
			endpoint := piecestore.NewEndpoint(zaptest.NewLogger(t), store, tt.config)

			resp, err := endpoint.Store(ctx, storeRequest([]byte(tt.name), tt.ttl))
			require.NoError(t, err)
			require.True(t, resp.Status.OK())
			assert.Equal(t, []time.Time{now.Add(tt.expect)}, expirations(ctx, t, store))
		})
	}
}

func TestBadRequests(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	store := teststore.New()
	endpoint := piecestore.NewEndpoint(zaptest.NewLogger(t), store, piecestore.Config{MaxPayloadSize: 4})

	stored, err := endpoint.Store(ctx, &pb.StoreRequest{EncryptedData: "%%%"})
	require.NoError(t, err)
	assert.Equal(t, pb.StatusBadRequest, stored.Status.Code)
	assert.Empty(t, stored.DataHash)

	stored, err = endpoint.Store(ctx, storeRequest([]byte("too large"), 0))
	require.NoError(t, err)
	assert.Equal(t, pb.StatusBadRequest, stored.Status.Code)

	retrieved, err := endpoint.Retrieve(ctx, &pb.RetrieveRequest{DataHash: "not-a-cid"})
	require.NoError(t, err)
	assert.Equal(t, pb.StatusBadRequest, retrieved.Status.Code)

	missing, err := cid.Make([]byte("missing"), 1)
	require.NoError(t, err)
	retrieved, err = endpoint.Retrieve(ctx, &pb.RetrieveRequest{DataHash: missing.Encode()})
	require.NoError(t, err)
	assert.Equal(t, pb.StatusNotFound, retrieved.Status.Code)

	assert.Zero(t, store.Len())
}

func TestStorageFailure(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	store := teststore.New()
	endpoint := piecestore.NewEndpoint(zaptest.NewLogger(t), store, piecestore.DefaultConfig())

	stored, err := endpoint.Store(ctx, storeRequest([]byte("data"), 0))
	require.NoError(t, err)
	require.True(t, stored.Status.OK())

	store.SetForceError(true)

	failed, err := endpoint.Store(ctx, storeRequest([]byte("other"), 0))
	require.NoError(t, err)
	assert.Equal(t, pb.StatusInternal, failed.Status.Code)

	retrieved, err := endpoint.Retrieve(ctx, &pb.RetrieveRequest{DataHash: stored.DataHash})
	require.NoError(t, err)
	assert.Equal(t, pb.StatusInternal, retrieved.Status.Code)
}

func TestConcurrentStores(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	store := teststore.New()
	endpoint := piecestore.NewEndpoint(zaptest.NewLogger(t), store, piecestore.DefaultConfig())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := endpoint.Store(ctx, storeRequest([]byte{byte(i)}, 0))
			assert.NoError(t, err)
			assert.True(t, resp.Status.OK())
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, store.Len())
}

func TestRedisBackend(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	server, err := redisserver.Mini()
	require.NoError(t, err)
	defer ctx.Check(server.Close)

	client, err := redis.OpenClientFrom(ctx, server.URL(0))
	require.NoError(t, err)
	defer ctx.Check(client.Close)

	endpoint := piecestore.NewEndpoint(zaptest.NewLogger(t), client, piecestore.DefaultConfig())

	stored, err := endpoint.Store(ctx, storeRequest([]byte("Hello FileTao!"), 86400))
	require.NoError(t, err)
	require.True(t, stored.Status.OK())

	retrieved, err := endpoint.Retrieve(ctx, &pb.RetrieveRequest{DataHash: stored.DataHash})
	require.NoError(t, err)
	require.True(t, retrieved.Status.OK())
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("Hello FileTao!")), retrieved.EncryptedData)

	keys := server.Mini().Keys()
	require.Len(t, keys, 1)
	assert.Zero(t, server.Mini().TTL(keys[0]))
}
