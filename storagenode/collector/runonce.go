// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package collector

import (
	"context"

	"go.uber.org/zap"

	"storj.io/filetao/storage"
)

// RunOnce executes the collector only once.
type RunOnce struct {
	service *Service
}

// NewRunnerOnce creates a new RunOnce.
func NewRunnerOnce(log *zap.Logger, store storage.Store) RunOnce {
	return RunOnce{
		service: NewService(log, store, Config{}),
	}
}

// Run collects expired entries once and returns how many were deleted.
func (r RunOnce) Run(ctx context.Context) (int, error) {
	return r.service.Collect(ctx, r.service.Now())
}
