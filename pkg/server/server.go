// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

// Package server runs the public gRPC endpoint of a node.
package server

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"storj.io/filetao/pkg/transport"
)

var (
	mon = monkit.Package()

	// Error is the default server errs class.
	Error = errs.Class("server")
)

// Config holds server specific configuration parameters.
type Config struct {
	Address string `user:"true" help:"public address to listen on" default:":7777"`
}

// Server serves registered services on a listener.
type Server struct {
	log      *zap.Logger
	listener net.Listener
	grpc     *grpc.Server

	mu   sync.Mutex
	wg   sync.WaitGroup
	once sync.Once
	done chan struct{}
}

// New creates a Server that accepts connections from listener.
//
// Requests are decoded with the transport codec.
func New(log *zap.Logger, listener net.Listener, options ...grpc.ServerOption) *Server {
	options = append([]grpc.ServerOption{grpc.ForceServerCodec(transport.Codec{})}, options...)
	return &Server{
		log:      log,
		listener: listener,
		grpc:     grpc.NewServer(options...),
		done:     make(chan struct{}),
	}
}

// Listen creates a Server listening on address.
func Listen(log *zap.Logger, address string, options ...grpc.ServerOption) (*Server, error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return New(log, listener, options...), nil
}

// Addr returns the server's listener address.
func (p *Server) Addr() net.Addr { return p.listener.Addr() }

// GRPC returns the server's gRPC server for registration purposes.
func (p *Server) GRPC() *grpc.Server { return p.grpc }

// Close shuts down the server.
func (p *Server) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Close done and wait for any Runs to exit.
	p.once.Do(func() { close(p.done) })
	p.wg.Wait()

	// Ensure the listener is closed in case Run was never called.
	p.grpc.Stop()
	_ = p.listener.Close()
	return nil
}

// Run serves requests until ctx is canceled or the server is closed.
func (p *Server) Run(ctx context.Context) (err error) {
	defer mon.Task()(&ctx)(&err)

	// Make sure the server isn't already closed. If it is, register
	// ourselves in the wait group so that Close can wait on it.
	p.mu.Lock()
	select {
	case <-p.done:
		p.mu.Unlock()
		return Error.New("server closed")
	default:
		p.wg.Add(1)
		defer p.wg.Done()
	}
	p.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var group errgroup.Group
	group.Go(func() error {
		select {
		case <-p.done:
		case <-ctx.Done():
		}
		p.grpc.GracefulStop()
		return nil
	})
	group.Go(func() error {
		defer cancel()
		p.log.Debug("serving", zap.Stringer("Address", p.Addr()))
		err := p.grpc.Serve(p.listener)
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return Error.Wrap(err)
	})

	return group.Wait()
}
