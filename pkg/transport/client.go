// Copyright (C) 2018 Storj Labs, Inc.
// See LICENSE for copying information.

// Package transport connects clients and storage nodes over grpc.
package transport

import (
	"context"
	"sync"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"storj.io/filetao/pkg/pb"
)

var (
	mon = monkit.Package()

	// Error is the transport error class.
	Error = errs.Class("transport")
)

// Peer is a handle to a remote node.
type Peer interface {
	Pingable
	StoreTarget
	RetrieveTarget
	Address() string
}

// Dialer opens peer handles by address.
type Dialer interface {
	Dial(ctx context.Context, address string) (Peer, error)
}

// Client dials nodes over grpc, keeping one connection per address.
type Client struct {
	log     *zap.Logger
	options []grpc.DialOption

	mu    sync.Mutex
	conns map[string]*grpc.ClientConn
}

// NewClient creates a client. options are appended to the defaults.
func NewClient(log *zap.Logger, options ...grpc.DialOption) *Client {
	defaults := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	}
	return &Client{
		log:     log,
		options: append(defaults, options...),
		conns:   map[string]*grpc.ClientConn{},
	}
}

// Dial returns a handle to the node at address.
//
// Connections are established lazily, so Dial only fails on invalid
// addresses; unreachable nodes surface as errors on the first call.
func (client *Client) Dial(ctx context.Context, address string) (_ Peer, err error) {
	defer mon.Task()(&ctx)(&err)

	client.mu.Lock()
	defer client.mu.Unlock()

	if client.conns == nil {
		return nil, Error.New("client closed")
	}

	conn, ok := client.conns[address]
	if !ok {
		conn, err = grpc.NewClient(address, client.options...)
		if err != nil {
			return nil, Error.New("dial %q: %v", address, err)
		}
		client.conns[address] = conn
		client.log.Debug("connection created", zap.String("Address", address))
	}

	return &peer{address: address, conn: conn}, nil
}

// Close closes all cached connections.
func (client *Client) Close() error {
	client.mu.Lock()
	defer client.mu.Unlock()

	var group errs.Group
	for _, conn := range client.conns {
		group.Add(conn.Close())
	}
	client.conns = nil
	return Error.Wrap(group.Err())
}

// peer implements Peer over a shared connection.
type peer struct {
	address string
	conn    *grpc.ClientConn
}

func (p *peer) Address() string { return p.address }

func (p *peer) Ping(ctx context.Context, req *pb.PingRequest) (_ *pb.PingResponse, err error) {
	defer mon.Task()(&ctx)(&err)
	out := new(pb.PingResponse)
	if err := p.conn.Invoke(ctx, methodPing, req, out); err != nil {
		return nil, Error.Wrap(err)
	}
	return out, nil
}

func (p *peer) Store(ctx context.Context, req *pb.StoreRequest) (_ *pb.StoreResponse, err error) {
	defer mon.Task()(&ctx)(&err)
	out := new(pb.StoreResponse)
	if err := p.conn.Invoke(ctx, methodStore, req, out); err != nil {
		return nil, Error.Wrap(err)
	}
	return out, nil
}

func (p *peer) Retrieve(ctx context.Context, req *pb.RetrieveRequest) (_ *pb.RetrieveResponse, err error) {
	defer mon.Task()(&ctx)(&err)
	out := new(pb.RetrieveResponse)
	if err := p.conn.Invoke(ctx, methodRetrieve, req, out); err != nil {
		return nil, Error.Wrap(err)
	}
	return out, nil
}
