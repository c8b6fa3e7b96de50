// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information

// Package sync2 provides synchronization primitives for background chores.
package sync2

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Cycle implements a controllable recurring event.
//
// Cycle control methods don't have any effect after Stop has been called.
//
// Run must be only called once.
type Cycle struct {
	noCopy noCopy //nolint:structcheck

	started atomic.Bool

	interval time.Duration

	ticker  *time.Ticker
	control chan cycleTrigger

	stopOnce sync.Once
	stopping chan struct{}
	stopped  chan struct{}

	init sync.Once
}

// cycleTrigger is the control message asking for an immediate run.
type cycleTrigger struct {
	done chan struct{}
}

// NewCycle creates a new cycle with the specified interval.
func NewCycle(interval time.Duration) *Cycle {
	cycle := &Cycle{}
	cycle.SetInterval(interval)
	return cycle
}

// SetInterval allows to change the interval before starting.
func (cycle *Cycle) SetInterval(interval time.Duration) {
	cycle.interval = interval
}

func (cycle *Cycle) initialize() {
	cycle.init.Do(func() {
		cycle.stopped = make(chan struct{})
		cycle.stopping = make(chan struct{})
		cycle.control = make(chan cycleTrigger)
	})
}

// Run runs the specified in an interval.
//
// Every interval `fn` is started.
// When `fn` is not fast enough, it may skip some of those executions.
func (cycle *Cycle) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	cycle.initialize()
	cycle.started.Store(true)
	defer close(cycle.stopped)

	select {
	case <-cycle.stopping:
		return nil
	default:
	}

	cycle.ticker = time.NewTicker(cycle.interval)
	defer cycle.ticker.Stop()

	if err := fn(ctx); err != nil {
		return err
	}
	for {
		select {
		case message := <-cycle.control:
			if err := fn(ctx); err != nil {
				return err
			}
			close(message.done)

		case <-cycle.stopping:
			return nil

		case <-ctx.Done():
			return ctx.Err()

		case <-cycle.ticker.C:
			// trigger the function
			if err := fn(ctx); err != nil {
				return err
			}
		}
	}
}

// Close stops the cycle and waits for a running Run to return.
func (cycle *Cycle) Close() {
	cycle.Stop()
	if cycle.started.Load() {
		<-cycle.stopped
	}
}

// Stop stops the cycle permanently
func (cycle *Cycle) Stop() {
	cycle.initialize()
	cycle.stopOnce.Do(func() {
		close(cycle.stopping)
	})
}

// TriggerWait ensures that the loop is done at least once and waits for completion.
// If it's currently running it waits for the previous to complete and then runs.
func (cycle *Cycle) TriggerWait() {
	cycle.initialize()
	done := make(chan struct{})

	select {
	case cycle.control <- cycleTrigger{done}:
	case <-cycle.stopping:
		return
	case <-cycle.stopped:
		return
	}

	select {
	case <-done:
	case <-cycle.stopping:
	case <-cycle.stopped:
	}
}

// noCopy is used to ensure that we don't copy things that shouldn't be copied.
//
// See https://github.com/golang/go/issues/8005#issuecomment-190753527.
type noCopy struct{}

func (noCopy) Lock() {}
