// Copyright (C) 2020 Storj Labs, Inc.
// See LICENSE for copying information.

package preflight_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"storj.io/filetao/internal/testcontext"
	"storj.io/filetao/storage/redis"
	"storj.io/filetao/storage/redis/redisserver"
	"storj.io/filetao/storagenode/preflight"
)

type fakeDatabase struct {
	pingErr   error
	config    map[string]string
	configErr error
}

func (db *fakeDatabase) Ping(ctx context.Context) error { return db.pingErr }

func (db *fakeDatabase) ConfigGet(ctx context.Context, parameter string) (map[string]string, error) {
	return db.config, db.configErr
}

func TestCheck(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	log := zaptest.NewLogger(t)

	for _, tt := range []struct {
		name   string
		db     *fakeDatabase
		config preflight.Config
		fails  bool
	}{
		{name: "persistent", db: &fakeDatabase{config: map[string]string{"appendonly": "yes"}}, config: preflight.DefaultConfig()},
		{name: "not persistent", db: &fakeDatabase{config: map[string]string{"appendonly": "no"}}, config: preflight.DefaultConfig(), fails: true},
		{name: "persistence check disabled", db: &fakeDatabase{config: map[string]string{"appendonly": "no"}}, config: preflight.Config{DatabaseCheck: true}},
		{name: "config unsupported", db: &fakeDatabase{configErr: errors.New("unknown command")}, config: preflight.DefaultConfig()},
		{name: "config missing", db: &fakeDatabase{config: map[string]string{}}, config: preflight.DefaultConfig()},
		{name: "unreachable", db: &fakeDatabase{pingErr: errors.New("refused")}, config: preflight.DefaultConfig(), fails: true},
		{name: "all disabled", db: &fakeDatabase{pingErr: errors.New("refused")}, config: preflight.Config{}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			err := preflight.Check(ctx, log, tt.db, tt.config)
			if tt.fails {
				require.Error(t, err)
				assert.True(t, preflight.ErrPreflight.Has(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCheckRedis(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	server, err := redisserver.Start(ctx, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer ctx.Check(server.Close)

	client, err := redis.OpenClientFrom(ctx, server.URL(0))
	require.NoError(t, err)
	defer ctx.Check(client.Close)

	// the test server runs with appendonly enabled, miniredis cannot report it
	require.NoError(t, preflight.Check(ctx, zaptest.NewLogger(t), client, preflight.DefaultConfig()))

	require.NoError(t, server.Close())
	err = preflight.Check(ctx, zaptest.NewLogger(t), client, preflight.DefaultConfig())
	require.Error(t, err)
	assert.True(t, preflight.ErrPreflight.Has(err))
}
