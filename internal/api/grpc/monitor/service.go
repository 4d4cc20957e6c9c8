package monitor

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified name of the control service.
const ServiceName = "guardian.monitor.v1.MonitorService"

// Full method names of the control service.
const (
	ReportFallMethod   = "/" + ServiceName + "/ReportFall"
	RespondMethod      = "/" + ServiceName + "/Respond"
	CancelMethod       = "/" + ServiceName + "/Cancel"
	GetStatusMethod    = "/" + ServiceName + "/GetStatus"
	ListOutcomesMethod = "/" + ServiceName + "/ListOutcomes"
)

// MonitorServiceServer is the server API for the control service.
type MonitorServiceServer interface {
	ReportFall(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Respond(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Cancel(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	GetStatus(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	ListOutcomes(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedMonitorServiceServer answers every call with codes.Unimplemented.
type UnimplementedMonitorServiceServer struct{}

// ReportFall is not implemented.
func (UnimplementedMonitorServiceServer) ReportFall(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ReportFall not implemented")
}

// Respond is not implemented.
func (UnimplementedMonitorServiceServer) Respond(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Respond not implemented")
}

// Cancel is not implemented.
func (UnimplementedMonitorServiceServer) Cancel(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Cancel not implemented")
}

// GetStatus is not implemented.
func (UnimplementedMonitorServiceServer) GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetStatus not implemented")
}

// ListOutcomes is not implemented.
func (UnimplementedMonitorServiceServer) ListOutcomes(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ListOutcomes not implemented")
}

// ServiceDesc is the grpc.ServiceDesc of the control service.
//
//nolint:gochecknoglobals // Registered with grpc.Server like generated descriptors.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MonitorServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ReportFall", Handler: unaryHandler[structpb.Struct](ReportFallMethod, MonitorServiceServer.ReportFall)},
		{MethodName: "Respond", Handler: unaryHandler[structpb.Struct](RespondMethod, MonitorServiceServer.Respond)},
		{MethodName: "Cancel", Handler: unaryHandler[emptypb.Empty](CancelMethod, MonitorServiceServer.Cancel)},
		{MethodName: "GetStatus", Handler: unaryHandler[emptypb.Empty](GetStatusMethod, MonitorServiceServer.GetStatus)},
		{
			MethodName: "ListOutcomes",
			Handler:    unaryHandler[structpb.Struct](ListOutcomesMethod, MonitorServiceServer.ListOutcomes),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "guardian/monitor/v1/monitor.proto",
}

// RegisterMonitorServiceServer registers srv on s.
func RegisterMonitorServiceServer(s grpc.ServiceRegistrar, srv MonitorServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unaryHandler decodes a Req message and dispatches it through the optional interceptor.
func unaryHandler[Req any, PReq interface {
	*Req
	proto.Message
}](
	fullMethod string,
	call func(MonitorServiceServer, context.Context, PReq) (*structpb.Struct, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := PReq(new(Req))
		if err := dec(in); err != nil {
			return nil, err
		}

		if interceptor == nil {
			return call(srv.(MonitorServiceServer), ctx, in) //nolint:forcetypeassert // Guaranteed by HandlerType.
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}

		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(MonitorServiceServer), ctx, req.(PReq)) //nolint:forcetypeassert // Decoded above.
		}

		return interceptor(ctx, in, info, handler)
	}
}

// MonitorServiceClient is the client API for the control service.
type MonitorServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewMonitorServiceClient creates a client over cc.
func NewMonitorServiceClient(cc grpc.ClientConnInterface) *MonitorServiceClient {
	return &MonitorServiceClient{cc: cc}
}

// ReportFall calls MonitorService.ReportFall.
func (c *MonitorServiceClient) ReportFall(
	ctx context.Context,
	in *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, ReportFallMethod, in, opts)
}

// Respond calls MonitorService.Respond.
func (c *MonitorServiceClient) Respond(
	ctx context.Context,
	in *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, RespondMethod, in, opts)
}

// Cancel calls MonitorService.Cancel.
func (c *MonitorServiceClient) Cancel(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, CancelMethod, in, opts)
}

// GetStatus calls MonitorService.GetStatus.
func (c *MonitorServiceClient) GetStatus(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, GetStatusMethod, in, opts)
}

// ListOutcomes calls MonitorService.ListOutcomes.
func (c *MonitorServiceClient) ListOutcomes(
	ctx context.Context,
	in *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, ListOutcomesMethod, in, opts)
}

func invoke(
	ctx context.Context,
	cc grpc.ClientConnInterface,
	method string,
	in proto.Message,
	opts []grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)

	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
