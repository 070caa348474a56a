package simd

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ContagionServiceName is the fully qualified gRPC service name.
const ContagionServiceName = "contagion.v1.ContagionService"

// Full method names.
const (
	MethodRunSweep  = "/" + ContagionServiceName + "/RunSweep"
	MethodCreateRun = "/" + ContagionServiceName + "/CreateRun"
	MethodGetRun    = "/" + ContagionServiceName + "/GetRun"
	MethodListRuns  = "/" + ContagionServiceName + "/ListRuns"
	MethodStopRun   = "/" + ContagionServiceName + "/StopRun"
)

// ContagionServiceServer is the server API. Requests and responses are
// google.protobuf.Struct messages.
type ContagionServiceServer interface {
	RunSweep(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateRun(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRun(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListRuns(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StopRun(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterContagionServiceServer registers srv with s.
func RegisterContagionServiceServer(s grpc.ServiceRegistrar, srv ContagionServiceServer) {
	s.RegisterService(&ContagionServiceDesc, srv)
}

type unaryMethod func(ContagionServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ContagionServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ContagionServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ContagionServiceDesc describes the service for grpc.Server.RegisterService.
var ContagionServiceDesc = grpc.ServiceDesc{
	ServiceName: ContagionServiceName,
	HandlerType: (*ContagionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RunSweep", Handler: unaryHandler(MethodRunSweep, ContagionServiceServer.RunSweep)},
		{MethodName: "CreateRun", Handler: unaryHandler(MethodCreateRun, ContagionServiceServer.CreateRun)},
		{MethodName: "GetRun", Handler: unaryHandler(MethodGetRun, ContagionServiceServer.GetRun)},
		{MethodName: "ListRuns", Handler: unaryHandler(MethodListRuns, ContagionServiceServer.ListRuns)},
		{MethodName: "StopRun", Handler: unaryHandler(MethodStopRun, ContagionServiceServer.StopRun)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "contagion/v1/contagion.proto",
}

// ContagionServiceClient calls the service over conn.
type ContagionServiceClient struct {
	conn grpc.ClientConnInterface
}

func NewContagionServiceClient(conn grpc.ClientConnInterface) *ContagionServiceClient {
	return &ContagionServiceClient{conn: conn}
}

func (c *ContagionServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ContagionServiceClient) RunSweep(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodRunSweep, in, opts...)
}

func (c *ContagionServiceClient) CreateRun(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodCreateRun, in, opts...)
}

func (c *ContagionServiceClient) GetRun(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodGetRun, in, opts...)
}

func (c *ContagionServiceClient) ListRuns(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodListRuns, in, opts...)
}

func (c *ContagionServiceClient) StopRun(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodStopRun, in, opts...)
}
