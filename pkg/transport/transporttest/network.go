// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package transporttest implements an in-process network of nodes for tests.
package transporttest

import (
	"context"
	"sync"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"storj.io/filetao/pkg/pb"
	"storj.io/filetao/pkg/transport"
)

// Network routes calls to registered servers by address.
//
// Calls to unknown or disconnected addresses fail with an Unavailable status,
// like a real connection would.
type Network struct {
	mu      sync.Mutex
	servers map[string]transport.NodeServer
	down    map[string]bool
	dials   map[string]int
}

// NewNetwork creates an empty network.
func NewNetwork() *Network {
	return &Network{
		servers: map[string]transport.NodeServer{},
		down:    map[string]bool{},
		dials:   map[string]int{},
	}
}

// Add registers server under address.
func (network *Network) Add(address string, server transport.NodeServer) {
	network.mu.Lock()
	defer network.mu.Unlock()
	network.servers[address] = server
	delete(network.down, address)
}

// SetDown marks address as unreachable or reachable again.
func (network *Network) SetDown(address string, down bool) {
	network.mu.Lock()
	defer network.mu.Unlock()
	network.down[address] = down
}

// Dials returns how many times address was dialed.
func (network *Network) Dials(address string) int {
	network.mu.Lock()
	defer network.mu.Unlock()
	return network.dials[address]
}

// Dial implements transport.Dialer.
func (network *Network) Dial(ctx context.Context, address string) (transport.Peer, error) {
	network.mu.Lock()
	defer network.mu.Unlock()
	network.dials[address]++
	return &peer{network: network, address: address}, nil
}

func (network *Network) server(address string) (transport.NodeServer, error) {
	network.mu.Lock()
	defer network.mu.Unlock()
	server, ok := network.servers[address]
	if !ok || network.down[address] {
		return nil, transport.Error.Wrap(status.Errorf(codes.Unavailable, "%s unreachable", address))
	}
	return server, nil
}

type peer struct {
	network *Network
	address string
}

func (p *peer) Address() string { return p.address }

func (p *peer) Ping(ctx context.Context, req *pb.PingRequest) (*pb.PingResponse, error) {
	server, err := p.network.server(p.address)
	if err != nil {
		return nil, err
	}
	return call(ctx, func(ctx context.Context) (*pb.PingResponse, error) { return server.Ping(ctx, req) })
}

func (p *peer) Store(ctx context.Context, req *pb.StoreRequest) (*pb.StoreResponse, error) {
	server, err := p.network.server(p.address)
	if err != nil {
		return nil, err
	}
	return call(ctx, func(ctx context.Context) (*pb.StoreResponse, error) { return server.Store(ctx, req) })
}

func (p *peer) Retrieve(ctx context.Context, req *pb.RetrieveRequest) (*pb.RetrieveResponse, error) {
	server, err := p.network.server(p.address)
	if err != nil {
		return nil, err
	}
	return call(ctx, func(ctx context.Context) (*pb.RetrieveResponse, error) { return server.Retrieve(ctx, req) })
}

// call runs fn and returns early when ctx is done, the way a remote call
// would be abandoned.
func call[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		value, err := fn(ctx)
		done <- result{value, err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, transport.Error.Wrap(ctx.Err())
	}
}
