// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package overlay

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"storj.io/filetao/pkg/pb"
	"storj.io/filetao/pkg/transport"
)

// Selector picks the trusted nodes that are currently reachable.
type Selector struct {
	log        *zap.Logger
	membership Membership
	dialer     transport.Dialer
	config     Config
}

// NewSelector creates a selector.
func NewSelector(log *zap.Logger, membership Membership, dialer transport.Dialer, config Config) *Selector {
	if config.TopFraction <= 0 {
		config.TopFraction = DefaultConfig().TopFraction
	}
	if config.PingTimeout <= 0 {
		config.PingTimeout = DefaultConfig().PingTimeout
	}
	return &Selector{
		log:        log,
		membership: membership,
		dialer:     dialer,
		config:     config,
	}
}

// Membership returns the membership table used by the selector.
func (selector *Selector) Membership() Membership { return selector.membership }

// Select returns the live candidates in table order.
//
// When no candidate answers, an empty slice is returned without error.
func (selector *Selector) Select(ctx context.Context) (_ []Node, err error) {
	defer mon.Task()(&ctx)(&err)

	nodes, err := selector.membership.Nodes(ctx)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	candidates := RankCandidates(nodes, selector.config.TopFraction)
	live, dead := selector.CheckLiveness(ctx, candidates, selector.config.PingTimeout)

	selector.log.Debug("selected nodes",
		zap.Int("Known", len(nodes)),
		zap.Int("Candidates", len(candidates)),
		zap.Int("Live", len(live)),
		zap.Int("Dead", len(dead)))
	if len(live) == 0 {
		selector.log.Warn("no live nodes", zap.Int("Candidates", len(candidates)))
	}

	selected := make([]Node, 0, len(live))
	for _, id := range live {
		node, err := selector.membership.Lookup(ctx, id)
		if err != nil {
			selector.log.Debug("lookup failed", zap.String("Node ID", string(id)), zap.Error(err))
			continue
		}
		selected = append(selected, node)
	}
	return selected, nil
}

// CheckLiveness probes ids concurrently, each bounded by timeout.
//
// A node is dead when it cannot be looked up or dialed, when the probe fails
// or times out, or when it answers with a non-success status. Both results
// keep the order of ids.
func (selector *Selector) CheckLiveness(ctx context.Context, ids []NodeID, timeout time.Duration) (live, dead []NodeID) {
	defer mon.Task()(&ctx)(nil)

	alive := make([]bool, len(ids))

	var group errgroup.Group
	for i, id := range ids {
		group.Go(func() error {
			alive[i] = selector.ping(ctx, id, timeout)
			return nil
		})
	}
	_ = group.Wait()

	for i, id := range ids {
		if alive[i] {
			live = append(live, id)
		} else {
			dead = append(dead, id)
		}
	}
	return live, dead
}

func (selector *Selector) ping(ctx context.Context, id NodeID, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	node, err := selector.membership.Lookup(ctx, id)
	if err != nil {
		selector.log.Debug("lookup failed", zap.String("Node ID", string(id)), zap.Error(err))
		return false
	}

	peer, err := selector.dialer.Dial(ctx, node.Address)
	if err != nil {
		selector.log.Debug("dial failed", zap.String("Node ID", string(id)), zap.Error(err))
		return false
	}

	resp, err := peer.Ping(ctx, &pb.PingRequest{})
	if err != nil {
		selector.log.Debug("ping failed", zap.String("Node ID", string(id)), zap.Error(err))
		return false
	}
	return resp.Status.Code == pb.StatusOK
}
