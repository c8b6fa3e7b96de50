// Copyright (C) 2018 Storj Labs, Inc.
// See LICENSE for copying information.

// Package testcontext implements a context for tests that tracks goroutines
// and temporary files.
package testcontext

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultTimeout is the default timeout used by new context.
const DefaultTimeout = 3 * time.Minute

// Context is a context that has utility methods for testing and waiting for
// asynchronous errors.
type Context struct {
	context.Context
	group  *errgroup.Group
	test   testing.TB
	cancel context.CancelFunc

	once      sync.Once
	directory string
}

// New creates a new test context with default timeout.
func New(test testing.TB) *Context {
	return NewWithTimeout(test, DefaultTimeout)
}

// NewWithTimeout creates a new test context with the given timeout.
func NewWithTimeout(test testing.TB, timeout time.Duration) *Context {
	parent, cancel := context.WithTimeout(context.Background(), timeout)
	group, ctx := errgroup.WithContext(parent)
	return &Context{
		Context: ctx,
		group:   group,
		test:    test,
		cancel:  cancel,
	}
}

// Go runs fn in a goroutine.
// Call Wait to check the result
func (ctx *Context) Go(fn func() error) {
	ctx.test.Helper()
	ctx.group.Go(fn)
}

// Check calls fn and checks result
func (ctx *Context) Check(fn func() error) {
	ctx.test.Helper()
	err := fn()
	if err != nil {
		ctx.test.Fatal(err)
	}
}

// Dir returns a directory path inside temp
func (ctx *Context) Dir(subs ...string) string {
	ctx.test.Helper()

	ctx.once.Do(func() {
		var err error
		name := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(ctx.test.Name())
		ctx.directory, err = os.MkdirTemp("", name)
		if err != nil {
			ctx.test.Fatal(err)
		}
	})

	dir := filepath.Join(append([]string{ctx.directory}, subs...)...)
	_ = os.MkdirAll(dir, 0755)
	return dir
}

// File returns a filepath inside temp
func (ctx *Context) File(subs ...string) string {
	ctx.test.Helper()

	if len(subs) == 0 {
		ctx.test.Fatal("expected more than one argument")
	}

	dir := ctx.Dir(subs[:len(subs)-1]...)
	return filepath.Join(dir, subs[len(subs)-1])
}

// Cleanup waits everything to be completed,
// checks errors and tries to cleanup directories
func (ctx *Context) Cleanup() {
	ctx.test.Helper()

	defer ctx.deleteTemporary()
	defer ctx.cancel()

	err := ctx.group.Wait()
	if err != nil {
		ctx.test.Fatal(err)
	}
}

// deleteTemporary tries to delete temporary directory
func (ctx *Context) deleteTemporary() {
	if ctx.directory == "" {
		return
	}
	err := os.RemoveAll(ctx.directory)
	if err != nil {
		ctx.test.Fatal(err)
	}
}
