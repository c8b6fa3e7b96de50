// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

// Package piecestore implements the node side of the store and retrieve
// protocol.
package piecestore

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"sync/atomic"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/filetao/pkg/cid"
	"storj.io/filetao/pkg/pb"
	"storj.io/filetao/pkg/transport"
	"storj.io/filetao/storage"
)

var (
	mon = monkit.Package()

	// Error is the default piecestore errs class.
	Error = errs.Class("piecestore")
)

var _ transport.NodeServer = (*Endpoint)(nil)

var monLiveRequests = mon.TaskNamed("live-request")

const (
	// keyPrefix namespaces payload keys within the store.
	keyPrefix = "payload/"

	// longestTTL keeps expirations within the range of unix nanoseconds.
	longestTTL = 100 * 365 * 24 * time.Hour
)

// Config defines parameters for piecestore endpoint.
type Config struct {
	DefaultTTL            time.Duration `help:"lifetime of payloads stored without a ttl" default:"720h0m0s"`
	MaxTTL                time.Duration `help:"longest lifetime a client may request. 0 represents unlimited." default:"0"`
	MaxPayloadSize        int           `help:"largest accepted payload in bytes. 0 represents unlimited." default:"0"`
	MaxConcurrentRequests int           `help:"how many concurrent requests are allowed, before stores are rejected. 0 represents unlimited." default:"0"`
}

// DefaultConfig returns the default endpoint configuration.
func DefaultConfig() Config {
	return Config{
		DefaultTTL: 30 * 24 * time.Hour,
	}
}

// record is a stored payload.
type record struct {
	Data       []byte `cbor:"1,keyasint"`
	Descriptor string `cbor:"2,keyasint,omitempty"`
}

// Endpoint keeps payloads addressed by the digest of their bytes.
//
// architecture: Endpoint
type Endpoint struct {
	log    *zap.Logger
	config Config
	store  storage.Store

	liveRequests int32
}

// NewEndpoint creates a new piecestore endpoint.
func NewEndpoint(log *zap.Logger, store storage.Store, config Config) *Endpoint {
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = DefaultConfig().DefaultTTL
	}
	return &Endpoint{
		log:    log,
		config: config,
		store:  store,
	}
}

// Ping answers liveness probes.
func (endpoint *Endpoint) Ping(ctx context.Context, req *pb.PingRequest) (_ *pb.PingResponse, err error) {
	defer mon.Task()(&ctx)(&err)
	return &pb.PingResponse{Status: pb.Status{Code: pb.StatusOK}}, nil
}

// Store persists the payload and replies with its identifier.
func (endpoint *Endpoint) Store(ctx context.Context, req *pb.StoreRequest) (_ *pb.StoreResponse, err error) {
	defer monLiveRequests(&ctx)(&err)
	defer mon.Task()(&ctx)(&err)

	liveRequests := atomic.AddInt32(&endpoint.liveRequests, 1)
	defer atomic.AddInt32(&endpoint.liveRequests, -1)

	if limit := endpoint.config.MaxConcurrentRequests; limit > 0 && int(liveRequests) > limit {
		endpoint.log.Error("store rejected, too many requests",
			zap.Int32("live requests", liveRequests),
			zap.Int("requestLimit", limit))
		return &pb.StoreResponse{Status: pb.NewStatus(pb.StatusUnavailable, "storage node overloaded, request limit: %d", limit)}, nil
	}

	data, err := base64.StdEncoding.DecodeString(req.EncryptedData)
	if err != nil {
		return &pb.StoreResponse{Status: pb.NewStatus(pb.StatusBadRequest, "invalid payload encoding: %v", err)}, nil
	}
	if limit := endpoint.config.MaxPayloadSize; limit > 0 && len(data) > limit {
		return &pb.StoreResponse{Status: pb.NewStatus(pb.StatusBadRequest, "payload of %d bytes exceeds limit of %d", len(data), limit)}, nil
	}

	id, err := cid.Make(data, 1)
	if err != nil {
		return &pb.StoreResponse{Status: pb.NewStatus(pb.StatusInternal, "%v", err)}, nil
	}

	value, err := cbor.Marshal(record{Data: data, Descriptor: req.EncryptionPayload})
	if err != nil {
		return &pb.StoreResponse{Status: pb.NewStatus(pb.StatusInternal, "%v", err)}, nil
	}

	ttl := endpoint.ttl(req.TTL)
	if err := endpoint.store.Put(ctx, payloadKey(cid.Hash(data)), value, ttl); err != nil {
		endpoint.log.Error("store failed", zap.Stringer("CID", id), zap.Error(err))
		return &pb.StoreResponse{Status: pb.NewStatus(pb.StatusInternal, "unable to persist payload")}, nil
	}

	endpoint.log.Info("stored", zap.Stringer("CID", id), zap.Int("Size", len(data)), zap.Duration("TTL", ttl))
	mon.IntVal("store_size").Observe(int64(len(data)))

	return &pb.StoreResponse{Status: pb.Status{Code: pb.StatusOK}, DataHash: id.Encode()}, nil
}

// Retrieve returns the payload addressed by the requested identifier.
func (endpoint *Endpoint) Retrieve(ctx context.Context, req *pb.RetrieveRequest) (_ *pb.RetrieveResponse, err error) {
	defer monLiveRequests(&ctx)(&err)
	defer mon.Task()(&ctx)(&err)

	atomic.AddInt32(&endpoint.liveRequests, 1)
	defer atomic.AddInt32(&endpoint.liveRequests, -1)

	digest, err := cid.Decode(req.DataHash)
	if err != nil {
		return &pb.RetrieveResponse{Status: pb.NewStatus(pb.StatusBadRequest, "%v", err)}, nil
	}

	value, err := endpoint.store.Get(ctx, payloadKey(digest))
	if err != nil {
		if storage.ErrKeyNotFound.Has(err) {
			return &pb.RetrieveResponse{Status: pb.NewStatus(pb.StatusNotFound, "payload not found")}, nil
		}
		endpoint.log.Error("retrieve failed", zap.String("CID", req.DataHash), zap.Error(err))
		return &pb.RetrieveResponse{Status: pb.NewStatus(pb.StatusInternal, "unable to read payload")}, nil
	}

	var rec record
	if err := cbor.Unmarshal(value, &rec); err != nil {
		endpoint.log.Error("corrupted payload", zap.String("CID", req.DataHash), zap.Error(err))
		return &pb.RetrieveResponse{Status: pb.NewStatus(pb.StatusInternal, "corrupted payload")}, nil
	}

	endpoint.log.Debug("retrieved", zap.String("CID", req.DataHash), zap.Int("Size", len(rec.Data)))

	return &pb.RetrieveResponse{
		Status:            pb.Status{Code: pb.StatusOK},
		EncryptedData:     base64.StdEncoding.EncodeToString(rec.Data),
		EncryptionPayload: rec.Descriptor,
	}, nil
}

// ttl returns the lifetime for a request asking for seconds.
func (endpoint *Endpoint) ttl(seconds uint64) time.Duration {
	if seconds == 0 {
		return endpoint.config.DefaultTTL
	}

	max := endpoint.config.MaxTTL
	if max <= 0 || max > longestTTL {
		max = longestTTL
	}
	if seconds > uint64(max/time.Second) {
		return max
	}
	return time.Duration(seconds) * time.Second
}

// payloadKey returns the storage key of a payload with the given digest.
func payloadKey(digest []byte) storage.Key {
	return storage.Key(keyPrefix + hex.EncodeToString(digest))
}
