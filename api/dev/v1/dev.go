// Package devv1 is the dev-only DevService contract (JSON codec). Never registered in production.
package devv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"event-rsvp/backend/api/codec"
)

// GetCodeRequest asks for the plain code of a challenge issued to the caller.
type GetCodeRequest struct {
	ChallengeID string `json:"challenge_id"`
}

func (x *GetCodeRequest) GetChallengeId() string {
	if x == nil {
		return ""
	}
	return x.ChallengeID
}

type GetCodeResponse struct {
	Code string `json:"code"`
	Note string `json:"note"`
}

func (x *GetCodeResponse) GetCode() string {
	if x == nil {
		return ""
	}
	return x.Code
}

func (x *GetCodeResponse) GetNote() string {
	if x == nil {
		return ""
	}
	return x.Note
}

const DevService_GetCode_FullMethodName = "/dev.v1.DevService/GetCode"

type DevServiceClient interface {
	GetCode(ctx context.Context, in *GetCodeRequest, opts ...grpc.CallOption) (*GetCodeResponse, error)
}

type devServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewDevServiceClient(cc grpc.ClientConnInterface) DevServiceClient {
	return &devServiceClient{cc}
}

func (c *devServiceClient) GetCode(ctx context.Context, in *GetCodeRequest, opts ...grpc.CallOption) (*GetCodeResponse, error) {
	out := new(GetCodeResponse)
	opts = append([]grpc.CallOption{codec.CallOption()}, opts...)
	if err := c.cc.Invoke(ctx, DevService_GetCode_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

type DevServiceServer interface {
	GetCode(context.Context, *GetCodeRequest) (*GetCodeResponse, error)
}

type UnimplementedDevServiceServer struct{}

func (UnimplementedDevServiceServer) GetCode(context.Context, *GetCodeRequest) (*GetCodeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetCode not implemented")
}

func RegisterDevServiceServer(s grpc.ServiceRegistrar, srv DevServiceServer) {
	s.RegisterService(&DevService_ServiceDesc, srv)
}

func _DevService_GetCode_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetCodeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DevServiceServer).GetCode(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: DevService_GetCode_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DevServiceServer).GetCode(ctx, req.(*GetCodeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var DevService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "dev.v1.DevService",
	HandlerType: (*DevServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetCode", Handler: _DevService_GetCode_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dev/v1/dev.go",
}
