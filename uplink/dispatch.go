// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package uplink

import (
	"context"
	"time"

	"go.uber.org/zap"

	"storj.io/filetao/pkg/overlay"
	"storj.io/filetao/pkg/transport"
)

// response is the outcome of one call to one node.
type response[T any] struct {
	node  overlay.Node
	value T
	err   error
}

// dispatch calls every node concurrently and returns the results in the order
// they completed.
//
// Calls still running when timeout elapses are abandoned and reported last, in
// dispatch order, with the context error.
func dispatch[T any](ctx context.Context, log *zap.Logger, dialer transport.Dialer, nodes []overlay.Node, timeout time.Duration,
	call func(ctx context.Context, peer transport.Peer) (T, error)) []response[T] {

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type indexed struct {
		i int
		response[T]
	}
	results := make(chan indexed, len(nodes))

	for i, node := range nodes {
		go func() {
			var value T
			peer, err := dialer.Dial(ctx, node.Address)
			if err == nil {
				value, err = call(ctx, peer)
			}
			results <- indexed{i: i, response: response[T]{node: node, value: value, err: err}}
		}()
	}

	responses := make([]response[T], 0, len(nodes))
	reported := make([]bool, len(nodes))

collect:
	for range nodes {
		select {
		case result := <-results:
			reported[result.i] = true
			responses = append(responses, result.response)
		case <-ctx.Done():
			break collect
		}
	}

	for i, node := range nodes {
		if !reported[i] {
			log.Debug("abandoned call", zap.String("Node ID", string(node.ID)), zap.Error(ctx.Err()))
			responses = append(responses, response[T]{node: node, err: ctx.Err()})
		}
	}

	return responses
}
