// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package transporttest

import (
	"context"

	"storj.io/filetao/pkg/pb"
)

// Funcs is a transport.NodeServer built from functions. A nil function
// answers with a success status for Ping and 500 otherwise.
type Funcs struct {
	PingFunc     func(ctx context.Context, req *pb.PingRequest) (*pb.PingResponse, error)
	StoreFunc    func(ctx context.Context, req *pb.StoreRequest) (*pb.StoreResponse, error)
	RetrieveFunc func(ctx context.Context, req *pb.RetrieveRequest) (*pb.RetrieveResponse, error)
}

// Ping implements transport.Pingable.
func (funcs *Funcs) Ping(ctx context.Context, req *pb.PingRequest) (*pb.PingResponse, error) {
	if funcs.PingFunc == nil {
		return &pb.PingResponse{Status: pb.Status{Code: pb.StatusOK}}, nil
	}
	return funcs.PingFunc(ctx, req)
}

// Store implements transport.StoreTarget.
func (funcs *Funcs) Store(ctx context.Context, req *pb.StoreRequest) (*pb.StoreResponse, error) {
	if funcs.StoreFunc == nil {
		return &pb.StoreResponse{Status: pb.NewStatus(pb.StatusInternal, "store not implemented")}, nil
	}
	return funcs.StoreFunc(ctx, req)
}

// Retrieve implements transport.RetrieveTarget.
func (funcs *Funcs) Retrieve(ctx context.Context, req *pb.RetrieveRequest) (*pb.RetrieveResponse, error) {
	if funcs.RetrieveFunc == nil {
		return &pb.RetrieveResponse{Status: pb.NewStatus(pb.StatusInternal, "retrieve not implemented")}, nil
	}
	return funcs.RetrieveFunc(ctx, req)
}
