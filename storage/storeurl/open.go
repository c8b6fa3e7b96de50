// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package storeurl opens a storage.Store from a url.
package storeurl

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/filetao/storage"
	"storj.io/filetao/storage/boltdb"
	"storj.io/filetao/storage/redis"
	"storj.io/filetao/storage/storelogger"
)

// Error is the default storeurl error class.
var Error = errs.Class("storeurl")

// Open opens the store described by rawurl.
//
// Supported forms are redis://host:port?db=N&password=P and bolt://path.
// When log has debug enabled every call is logged.
func Open(ctx context.Context, log *zap.Logger, rawurl string) (storage.Store, error) {
	parsed, err := url.Parse(rawurl)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	var store storage.Store
	switch parsed.Scheme {
	case "redis":
		store, err = redis.OpenClientFrom(ctx, rawurl)
	case "bolt":
		store, err = boltdb.New(boltPath(rawurl))
	default:
		return nil, Error.New("unsupported store %q", parsed.Scheme)
	}
	if err != nil {
		return nil, Error.Wrap(err)
	}

	if log.Core().Enabled(zap.DebugLevel) {
		store = storelogger.New(log.Named("store"), store)
	}
	return store, nil
}

func boltPath(rawurl string) string {
	return filepath.FromSlash(strings.TrimPrefix(rawurl, "bolt://"))
}
