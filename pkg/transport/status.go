// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package transport

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"storj.io/filetao/pkg/pb"
)

// StatusFromError converts a transport error into the status reported for
// the peer. A nil error is a success.
func StatusFromError(err error) pb.Status {
	if err == nil {
		return pb.Status{Code: pb.StatusOK}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return pb.Status{Code: pb.StatusTimeout, Message: "request timed out"}
	}

	if s, ok := status.FromError(err); ok {
		return fromGRPC(s)
	}

	return pb.Status{Code: pb.StatusInternal, Message: err.Error()}
}

func fromGRPC(s *status.Status) pb.Status {
	switch s.Code() {
	case codes.DeadlineExceeded, codes.Canceled:
		return pb.Status{Code: pb.StatusTimeout, Message: s.Message()}
	case codes.Unavailable:
		return pb.Status{Code: pb.StatusUnavailable, Message: s.Message()}
	case codes.InvalidArgument:
		return pb.Status{Code: pb.StatusBadRequest, Message: s.Message()}
	case codes.NotFound:
		return pb.Status{Code: pb.StatusNotFound, Message: s.Message()}
	default:
		return pb.Status{Code: pb.StatusInternal, Message: s.Message()}
	}
}
