// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

// Package errs2 contains error helpers shared by the services.
package errs2

import (
	"context"
	"errors"
	"strings"

	"github.com/zeebo/errs"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// isRPC checks if err contains an RPC error with the given status code.
func isRPC(err error, code codes.Code) bool {
	search := "code = " + code.String()
	return errs.IsFunc(err, func(err error) bool {
		return status.Code(err) == code || strings.Contains(err.Error(), search)
	})
}

// IsCanceled returns whether err is the result of a canceled context, locally
// or on the remote end of a call.
func IsCanceled(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || isRPC(err, codes.Canceled)
}

// IgnoreCanceled returns nil when err is a cancellation and err otherwise.
func IgnoreCanceled(err error) error {
	if IsCanceled(err) {
		return nil
	}
	return err
}
