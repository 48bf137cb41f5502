package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// AnalysisServiceName is the fully-qualified gRPC service name.
const AnalysisServiceName = "triggerrca.v1.AnalysisService"

const (
	runAnalysisMethod        = "/" + AnalysisServiceName + "/RunAnalysis"
	computeFilterStatsMethod = "/" + AnalysisServiceName + "/ComputeFilterStats"
)

// AnalysisServer is the server API for the analysis service. Payloads are JSON-shaped
// structpb documents matching AnalysisRequest, FilterStatsRequest and their results.
type AnalysisServer interface {
	RunAnalysis(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ComputeFilterStats(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterAnalysisServer attaches srv to the gRPC registrar.
func RegisterAnalysisServer(s grpc.ServiceRegistrar, srv AnalysisServer) {
	s.RegisterService(&AnalysisServiceDesc, srv)
}

func runAnalysisHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AnalysisServer).RunAnalysis(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: runAnalysisMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AnalysisServer).RunAnalysis(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func computeFilterStatsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AnalysisServer).ComputeFilterStats(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: computeFilterStatsMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AnalysisServer).ComputeFilterStats(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// AnalysisServiceDesc describes the analysis service for grpc.Server registration.
var AnalysisServiceDesc = grpc.ServiceDesc{
	ServiceName: AnalysisServiceName,
	HandlerType: (*AnalysisServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RunAnalysis", Handler: runAnalysisHandler},
		{MethodName: "ComputeFilterStats", Handler: computeFilterStatsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "triggerrca/v1/analysis.proto",
}

// AnalysisClient calls the analysis service over a client connection.
type AnalysisClient struct {
	cc grpc.ClientConnInterface
}

// NewAnalysisClient wraps cc.
func NewAnalysisClient(cc grpc.ClientConnInterface) *AnalysisClient {
	return &AnalysisClient{cc: cc}
}

// RunAnalysis invokes the RunAnalysis RPC.
func (c *AnalysisClient) RunAnalysis(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, runAnalysisMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ComputeFilterStats invokes the ComputeFilterStats RPC.
func (c *AnalysisClient) ComputeFilterStats(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, computeFilterStatsMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
