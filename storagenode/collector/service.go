// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

// Package collector implements expired entry deletion from the key-value store.
package collector

import (
	"context"
	"time"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/filetao/internal/sync2"
	"storj.io/filetao/storage"
)

var (
	mon = monkit.Package()

	// ErrConnection is returned when the store cannot be reached during a
	// collection cycle.
	ErrConnection = errs.Class("purge connection")
)

// DefaultInterval is used when Config.Interval is not positive.
const DefaultInterval = time.Hour

// Config defines parameters for the collector.
type Config struct {
	Interval time.Duration `help:"how frequently expired entries are collected" default:"1h0m0s"`
}

// Service implements collecting expired entries.
//
// architecture: Chore
type Service struct {
	log   *zap.Logger
	store storage.Store

	// Now returns the time used to decide what is expired.
	Now func() time.Time

	Loop *sync2.Cycle
}

// NewService creates a new collector service.
func NewService(log *zap.Logger, store storage.Store, config Config) *Service {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	return &Service{
		log:   log,
		store: store,
		Now:   time.Now,
		Loop:  sync2.NewCycle(config.Interval),
	}
}

// Run runs collector service.
func (service *Service) Run(ctx context.Context) (err error) {
	defer mon.Task()(&ctx)(&err)

	return service.Loop.Run(ctx, func(ctx context.Context) error {
		_, err := service.Collect(ctx, service.Now())
		if err != nil {
			service.log.Error("error during collecting expired entries", zap.Error(err))
		}
		return nil
	})
}

// Close stops the collector service.
func (service *Service) Close() (err error) {
	service.Loop.Close()
	return nil
}

// Collect deletes every entry that has expired by now and returns how many
// were deleted.
//
// When the store fails the cycle is aborted and the deletions that already
// happened are kept; the next cycle picks up the rest.
func (service *Service) Collect(ctx context.Context, now time.Time) (count int, err error) {
	defer mon.Task()(&ctx)(&err)

	defer func() {
		if count > 0 {
			service.log.Info("collect", zap.Int("count", count))
		}
	}()

	var expired []storage.Key
	err = service.store.Range(ctx, func(ctx context.Context, item storage.Item) error {
		if storage.Expired(item.Expires, now) {
			expired = append(expired, storage.CloneKey(item.Key))
		}
		return nil
	})
	if err != nil {
		return count, ErrConnection.Wrap(err)
	}

	for _, key := range expired {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		if err := service.store.Delete(ctx, key); err != nil {
			return count, ErrConnection.Wrap(err)
		}
		service.log.Debug("deleted expired entry", zap.ByteString("Key", key))
		count++
	}

	mon.IntVal("collected").Observe(int64(count))
	return count, nil
}
