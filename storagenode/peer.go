// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

// Package storagenode wires the services of a storage node together.
package storagenode

import (
	"context"

	"github.com/zeebo/errs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"storj.io/filetao/internal/errs2"
	"storj.io/filetao/pkg/server"
	"storj.io/filetao/pkg/transport"
	"storj.io/filetao/storage"
	"storj.io/filetao/storagenode/collector"
	"storj.io/filetao/storagenode/piecestore"
	"storj.io/filetao/storagenode/preflight"
)

// Config is all the configuration parameters for a Storage Node.
type Config struct {
	Server     server.Config
	Storage    string `help:"url of the payload store (e.g. redis://127.0.0.1:6379?db=0 OR bolt://some.db)" default:"redis://127.0.0.1:6379?db=0"`
	Piecestore piecestore.Config
	Collector  collector.Config
	Preflight  preflight.Config
}

// DefaultConfig returns the default storage node configuration.
func DefaultConfig() Config {
	return Config{
		Server:     server.Config{Address: ":7777"},
		Storage:    "redis://127.0.0.1:6379?db=0",
		Piecestore: piecestore.DefaultConfig(),
		Collector:  collector.Config{Interval: collector.DefaultInterval},
		Preflight:  preflight.DefaultConfig(),
	}
}

// Peer is the representation of a Storage Node.
type Peer struct {
	// core dependencies
	Log   *zap.Logger
	Store storage.Store

	config Config

	// servers
	Public struct {
		Server *server.Server
	}

	// services and endpoints
	Piecestore *piecestore.Endpoint
	Collector  *collector.Service
}

// New creates a new Storage Node serving payloads from store.
func New(log *zap.Logger, store storage.Store, config Config) (*Peer, error) {
	peer := &Peer{
		Log:    log,
		Store:  store,
		config: config,
	}

	var err error

	{ // setup server
		peer.Public.Server, err = server.Listen(peer.Log.Named("server"), config.Server.Address)
		if err != nil {
			return nil, errs.Combine(err, peer.Close())
		}
	}

	{ // setup piecestore
		peer.Piecestore = piecestore.NewEndpoint(peer.Log.Named("piecestore"), peer.Store, config.Piecestore)
		transport.RegisterNodeServer(peer.Public.Server.GRPC(), peer.Piecestore)
	}

	{ // setup collector
		peer.Collector = collector.NewService(peer.Log.Named("collector"), peer.Store, config.Collector)
	}

	return peer, nil
}

// Run runs storage node until it's either closed or it errors.
func (peer *Peer) Run(ctx context.Context) (err error) {
	defer mon.Task()(&ctx)(&err)

	if db, ok := database(peer.Store); ok {
		if err := preflight.Check(ctx, peer.Log.Named("preflight"), db, peer.config.Preflight); err != nil {
			return err
		}
	} else {
		peer.Log.Debug("store does not support preflight checks")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return errs2.IgnoreCanceled(peer.Collector.Run(ctx))
	})
	group.Go(func() error {
		return errs2.IgnoreCanceled(peer.Public.Server.Run(ctx))
	})

	peer.Log.Info("storage node started", zap.String("Address", peer.Addr()))
	return group.Wait()
}

// Close closes all the resources.
func (peer *Peer) Close() error {
	var errlist errs.Group

	// close services in reverse initialization order
	if peer.Collector != nil {
		errlist.Add(peer.Collector.Close())
	}

	// close servers
	if peer.Public.Server != nil {
		errlist.Add(peer.Public.Server.Close())
	}
	return errlist.Err()
}

// Addr returns the public address.
func (peer *Peer) Addr() string { return peer.Public.Server.Addr().String() }

// database returns the store as a preflight database when it is one.
func database(store storage.Store) (preflight.Database, bool) {
	for {
		if db, ok := store.(preflight.Database); ok {
			return db, true
		}
		wrapped, ok := store.(interface{ Unwrap() storage.Store })
		if !ok {
			return nil, false
		}
		store = wrapped.Unwrap()
	}
}
