// Copyright (C) 2020 Storj Labs, Inc.
// See LICENSE for copying information.

// Package preflight verifies the environment before a node starts serving.
package preflight

import (
	"context"
	"strings"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
	"go.uber.org/zap"
)

var (
	mon = monkit.Package()

	// ErrPreflight is returned when a preflight check fails.
	ErrPreflight = errs.Class("preflight")
)

// Config for preflight checks.
type Config struct {
	DatabaseCheck    bool `help:"whether or not preflight check for database connectivity is enabled." default:"true"`
	PersistenceCheck bool `help:"whether or not preflight check for append only persistence is enabled. When disabling this feature, stored payloads may be lost on restart." default:"true"`
}

// DefaultConfig enables every check.
func DefaultConfig() Config {
	return Config{DatabaseCheck: true, PersistenceCheck: true}
}

// Database is the part of the key value backend inspected by the checks.
type Database interface {
	Ping(ctx context.Context) error
	ConfigGet(ctx context.Context, parameter string) (map[string]string, error)
}

// Check runs the enabled checks against db.
//
// Servers that refuse to report their configuration only produce a warning.
func Check(ctx context.Context, log *zap.Logger, db Database, config Config) (err error) {
	defer mon.Task()(&ctx)(&err)

	if config.DatabaseCheck {
		if err := db.Ping(ctx); err != nil {
			return ErrPreflight.New("database unreachable: %v", err)
		}
		log.Debug("database reachable")
	}

	if !config.PersistenceCheck {
		return nil
	}

	values, err := db.ConfigGet(ctx, "appendonly")
	if err != nil {
		log.Warn("unable to verify database persistence", zap.Error(err))
		return nil
	}

	value, ok := values["appendonly"]
	if !ok {
		log.Warn("database did not report appendonly setting")
		return nil
	}
	if !strings.EqualFold(value, "yes") {
		return ErrPreflight.New("database persistence disabled: appendonly is %q, expected \"yes\"", value)
	}

	log.Debug("database persistence enabled")
	return nil
}
