// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package transport

import (
	"context"

	"google.golang.org/grpc"

	"storj.io/filetao/pkg/pb"
)

// ServiceName is the fully qualified grpc service name.
const ServiceName = "filetao.Node"

const (
	methodPing     = "/" + ServiceName + "/Ping"
	methodStore    = "/" + ServiceName + "/Store"
	methodRetrieve = "/" + ServiceName + "/Retrieve"
)

// Pingable answers liveness probes.
type Pingable interface {
	Ping(ctx context.Context, req *pb.PingRequest) (*pb.PingResponse, error)
}

// StoreTarget accepts payloads.
type StoreTarget interface {
	Store(ctx context.Context, req *pb.StoreRequest) (*pb.StoreResponse, error)
}

// RetrieveTarget serves payloads.
type RetrieveTarget interface {
	Retrieve(ctx context.Context, req *pb.RetrieveRequest) (*pb.RetrieveResponse, error)
}

// NodeServer is the server side of the node service.
type NodeServer interface {
	Pingable
	StoreTarget
	RetrieveTarget
}

// RegisterNodeServer registers srv on server.
func RegisterNodeServer(server *grpc.Server, srv NodeServer) {
	server.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*NodeServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: pingHandler},
		{MethodName: "Store", Handler: storeHandler},
		{MethodName: "Retrieve", Handler: retrieveHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "filetao/node",
}

func pingHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(pb.PingRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodeServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodPing}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(NodeServer).Ping(ctx, req.(*pb.PingRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func storeHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(pb.StoreRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodeServer).Store(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodStore}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(NodeServer).Store(ctx, req.(*pb.StoreRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func retrieveHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(pb.RetrieveRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodeServer).Retrieve(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodRetrieve}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(NodeServer).Retrieve(ctx, req.(*pb.RetrieveRequest))
	}
	return interceptor(ctx, in, info, handler)
}
