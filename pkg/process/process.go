// Copyright (C) 2018 Storj Labs, Inc.
// See LICENSE for copying information.

// Package process sets up logging, configuration and signal handling for the
// command line binaries.
package process

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zeebo/errs"
)

// Error is a process error class.
var Error = errs.Class("process error")

// Ctx returns a context for cmd that is canceled on SIGINT or SIGTERM.
func Ctx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}
