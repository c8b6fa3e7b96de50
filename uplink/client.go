// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

// Package uplink stores payloads on, and retrieves them from, the most
// trusted live storage nodes.
package uplink

import (
	"bytes"
	"context"
	"encoding/base64"
	"time"

	"filippo.io/age"
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/filetao/pkg/cid"
	"storj.io/filetao/pkg/encryption"
	"storj.io/filetao/pkg/identity"
	"storj.io/filetao/pkg/overlay"
	"storj.io/filetao/pkg/pb"
	"storj.io/filetao/pkg/transport"
)

var (
	mon = monkit.Package()

	// Error is the default uplink errs class.
	Error = errs.Class("uplink")
)

// Selector returns the nodes a request should be sent to.
type Selector interface {
	Select(ctx context.Context) ([]overlay.Node, error)
}

// StoreOptions controls a single store.
type StoreOptions struct {
	// Encrypt seals the payload to the client's wallet before sending.
	Encrypt bool
	// TTL is the requested lifetime. Zero uses Config.DefaultTTL.
	TTL time.Duration
}

// Failure is the status reported for a node that did not store the payload.
type Failure struct {
	Node    overlay.NodeID
	Code    int32
	Message string
}

// StoreResult is the outcome of a store.
type StoreResult struct {
	// CID is the identifier of the transmitted bytes, empty on failure.
	CID      string
	Success  bool
	Failures []Failure
}

// RetrieveResult is the outcome of a retrieve.
type RetrieveResult struct {
	Data    []byte
	Success bool
}

// Client coordinates stores and retrieves across nodes.
type Client struct {
	log      *zap.Logger
	config   Config
	wallet   *identity.Wallet
	selector Selector
	dialer   transport.Dialer
}

// New creates a client. wallet may be nil when encryption is not used.
func New(log *zap.Logger, config Config, wallet *identity.Wallet, selector Selector, dialer transport.Dialer) *Client {
	defaults := DefaultConfig()
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = defaults.DefaultTTL
	}
	if config.MismatchPolicy == "" {
		config.MismatchPolicy = defaults.MismatchPolicy
	}
	return &Client{
		log:      log,
		config:   config,
		wallet:   wallet,
		selector: selector,
		dialer:   dialer,
	}
}

// Store sends data to every selected node and returns the identifier of the
// first node that accepted it.
//
// Node failures are reported in the result; only local problems, such as
// encryption without a wallet, are returned as errors.
func (client *Client) Store(ctx context.Context, data []byte, opts StoreOptions) (_ StoreResult, err error) {
	defer mon.Task()(&ctx)(&err)

	payload, descriptor := encryption.Plain(data)
	if opts.Encrypt {
		if client.wallet == nil {
			return StoreResult{}, Error.New("encryption requested without a wallet")
		}
		payload, descriptor, err = encryption.Encrypt(data, client.wallet.Recipient())
		if err != nil {
			return StoreResult{}, Error.Wrap(err)
		}
	}

	expected, err := cid.Make(payload, client.config.CIDVersion)
	if err != nil {
		return StoreResult{}, Error.Wrap(err)
	}

	nodes, err := client.selector.Select(ctx)
	if err != nil {
		return StoreResult{}, Error.Wrap(err)
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = client.config.DefaultTTL
	}
	request := &pb.StoreRequest{
		EncryptedData:     base64.StdEncoding.EncodeToString(payload),
		EncryptionPayload: descriptor,
		TTL:               ttlSeconds(ttl),
	}

	responses := dispatch(ctx, client.log, client.dialer, nodes, client.config.Timeout,
		func(ctx context.Context, peer transport.Peer) (*pb.StoreResponse, error) {
			return peer.Store(ctx, request)
		})

	var result StoreResult
	for _, resp := range responses {
		status := storeStatus(resp)
		if status.OK() {
			status = client.verifyEcho(expected, resp.node, resp.value.DataHash)
		}
		if !status.OK() {
			result.Failures = append(result.Failures, Failure{
				Node:    resp.node.ID,
				Code:    status.Code,
				Message: status.Message,
			})
			continue
		}
		result.Success = true
		result.CID = expected.Encode()
		break
	}

	if result.Success {
		mon.Counter("store_success").Inc(1)
		client.log.Debug("stored", zap.String("CID", result.CID), zap.Int("Nodes", len(nodes)), zap.Int("Failures", len(result.Failures)))
	} else {
		mon.Counter("store_failed").Inc(1)
		client.log.Warn("store failed", zap.Int("Nodes", len(nodes)), zap.Int("Failures", len(result.Failures)))
	}
	return result, nil
}

// ttlSeconds converts ttl to whole seconds, rounding up so that short
// lifetimes are not sent as zero.
func ttlSeconds(ttl time.Duration) uint64 {
	seconds := ttl / time.Second
	if ttl%time.Second != 0 {
		seconds++
	}
	return uint64(seconds)
}

// identity returns the key used to open payloads, nil without a wallet.
func (client *Client) identity() age.Identity {
	if client.wallet == nil {
		return nil
	}
	return client.wallet.Identity()
}

func storeStatus(resp response[*pb.StoreResponse]) pb.Status {
	if resp.err != nil {
		return transport.StatusFromError(resp.err)
	}
	if resp.value == nil {
		return pb.NewStatus(pb.StatusInternal, "empty response")
	}
	return resp.value.Status
}

// verifyEcho compares the identifier a node reported against the expected one.
func (client *Client) verifyEcho(expected cid.ID, node overlay.Node, echoed string) pb.Status {
	want, err := cid.DecodeID(expected)
	if err != nil {
		return pb.NewStatus(pb.StatusInternal, "%v", err)
	}

	got, err := cid.Decode(echoed)
	if err == nil && bytes.Equal(want, got) {
		return pb.Status{Code: pb.StatusOK}
	}

	if client.config.MismatchPolicy == MismatchReject {
		client.log.Warn("rejecting identifier mismatch",
			zap.String("Node ID", string(node.ID)),
			zap.String("Expected", expected.Encode()),
			zap.String("Reported", echoed))
		return pb.NewStatus(pb.StatusConflict, "identifier mismatch")
	}

	client.log.Warn("identifier mismatch",
		zap.String("Node ID", string(node.ID)),
		zap.String("Expected", expected.Encode()),
		zap.String("Reported", echoed))
	return pb.Status{Code: pb.StatusOK}
}

// Retrieve fetches the payload addressed by id from the selected nodes.
//
// A malformed id is returned as an error. When no node returns a usable
// payload the result is unsuccessful; when every usable payload failed to
// decrypt encryption.ErrDecryption is returned.
func (client *Client) Retrieve(ctx context.Context, id string) (_ RetrieveResult, err error) {
	defer mon.Task()(&ctx)(&err)

	digest, err := cid.Decode(id)
	if err != nil {
		return RetrieveResult{}, err
	}

	nodes, err := client.selector.Select(ctx)
	if err != nil {
		return RetrieveResult{}, Error.Wrap(err)
	}

	request := &pb.RetrieveRequest{DataHash: id}
	responses := dispatch(ctx, client.log, client.dialer, nodes, client.config.Timeout,
		func(ctx context.Context, peer transport.Peer) (*pb.RetrieveResponse, error) {
			return peer.Retrieve(ctx, request)
		})

	var decryptErr error
	for _, resp := range responses {
		log := client.log.With(zap.String("Node ID", string(resp.node.ID)))

		if resp.err != nil {
			log.Debug("retrieve failed", zap.Error(resp.err))
			continue
		}
		if resp.value == nil || !resp.value.Status.OK() || resp.value.EncryptedData == "" {
			continue
		}

		payload, err := base64.StdEncoding.DecodeString(resp.value.EncryptedData)
		if err != nil {
			log.Warn("invalid payload encoding", zap.Error(err))
			continue
		}

		if client.config.MismatchPolicy == MismatchReject && !bytes.Equal(cid.Hash(payload), digest) {
			log.Warn("rejecting payload that does not match identifier", zap.String("CID", id))
			continue
		}

		if encryption.IsPlain(resp.value.EncryptionPayload) {
			log.Debug("payload is not encrypted", zap.String("CID", id))
		}

		data, err := encryption.Decrypt(payload, resp.value.EncryptionPayload, client.identity())
		if err != nil {
			log.Warn("unable to decrypt payload", zap.Error(err))
			decryptErr = errs.Combine(decryptErr, err)
			continue
		}

		mon.Counter("retrieve_success").Inc(1)
		return RetrieveResult{Data: data, Success: true}, nil
	}

	mon.Counter("retrieve_failed").Inc(1)
	if decryptErr != nil {
		return RetrieveResult{}, encryption.ErrDecryption.Wrap(decryptErr)
	}
	client.log.Warn("retrieve failed", zap.String("CID", id), zap.Int("Nodes", len(nodes)))
	return RetrieveResult{}, nil
}
