package reservationv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"event-rsvp/backend/api/codec"
)

const ServiceName = "reservation.v1.ReservationService"

const (
	ReservationService_RequestReservation_FullMethodName = "/reservation.v1.ReservationService/RequestReservation"
	ReservationService_VerifyReservation_FullMethodName  = "/reservation.v1.ReservationService/VerifyReservation"
	ReservationService_CancelReservation_FullMethodName  = "/reservation.v1.ReservationService/CancelReservation"
	ReservationService_GetAttendance_FullMethodName      = "/reservation.v1.ReservationService/GetAttendance"
)

// ReservationServiceClient is the client API for ReservationService. Every call uses the JSON codec.
type ReservationServiceClient interface {
	RequestReservation(ctx context.Context, in *RequestReservationRequest, opts ...grpc.CallOption) (*RequestReservationResponse, error)
	VerifyReservation(ctx context.Context, in *VerifyReservationRequest, opts ...grpc.CallOption) (*VerifyReservationResponse, error)
	CancelReservation(ctx context.Context, in *CancelReservationRequest, opts ...grpc.CallOption) (*CancelReservationResponse, error)
	GetAttendance(ctx context.Context, in *GetAttendanceRequest, opts ...grpc.CallOption) (*GetAttendanceResponse, error)
}

type reservationServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewReservationServiceClient(cc grpc.ClientConnInterface) ReservationServiceClient {
	return &reservationServiceClient{cc}
}

func (c *reservationServiceClient) RequestReservation(ctx context.Context, in *RequestReservationRequest, opts ...grpc.CallOption) (*RequestReservationResponse, error) {
	out := new(RequestReservationResponse)
	if err := c.cc.Invoke(ctx, ReservationService_RequestReservation_FullMethodName, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *reservationServiceClient) VerifyReservation(ctx context.Context, in *VerifyReservationRequest, opts ...grpc.CallOption) (*VerifyReservationResponse, error) {
	out := new(VerifyReservationResponse)
	if err := c.cc.Invoke(ctx, ReservationService_VerifyReservation_FullMethodName, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *reservationServiceClient) CancelReservation(ctx context.Context, in *CancelReservationRequest, opts ...grpc.CallOption) (*CancelReservationResponse, error) {
	out := new(CancelReservationResponse)
	if err := c.cc.Invoke(ctx, ReservationService_CancelReservation_FullMethodName, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *reservationServiceClient) GetAttendance(ctx context.Context, in *GetAttendanceRequest, opts ...grpc.CallOption) (*GetAttendanceResponse, error) {
	out := new(GetAttendanceResponse)
	if err := c.cc.Invoke(ctx, ReservationService_GetAttendance_FullMethodName, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func withJSON(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{codec.CallOption()}, opts...)
}

// ReservationServiceServer is the server API for ReservationService.
type ReservationServiceServer interface {
	RequestReservation(context.Context, *RequestReservationRequest) (*RequestReservationResponse, error)
	VerifyReservation(context.Context, *VerifyReservationRequest) (*VerifyReservationResponse, error)
	CancelReservation(context.Context, *CancelReservationRequest) (*CancelReservationResponse, error)
	GetAttendance(context.Context, *GetAttendanceRequest) (*GetAttendanceResponse, error)
}

// UnimplementedReservationServiceServer returns Unimplemented for every method. Embed by value.
type UnimplementedReservationServiceServer struct{}

func (UnimplementedReservationServiceServer) RequestReservation(context.Context, *RequestReservationRequest) (*RequestReservationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RequestReservation not implemented")
}

func (UnimplementedReservationServiceServer) VerifyReservation(context.Context, *VerifyReservationRequest) (*VerifyReservationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method VerifyReservation not implemented")
}

func (UnimplementedReservationServiceServer) CancelReservation(context.Context, *CancelReservationRequest) (*CancelReservationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CancelReservation not implemented")
}

func (UnimplementedReservationServiceServer) GetAttendance(context.Context, *GetAttendanceRequest) (*GetAttendanceResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetAttendance not implemented")
}

func RegisterReservationServiceServer(s grpc.ServiceRegistrar, srv ReservationServiceServer) {
	s.RegisterService(&ReservationService_ServiceDesc, srv)
}

func _ReservationService_RequestReservation_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(RequestReservationRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReservationServiceServer).RequestReservation(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ReservationService_RequestReservation_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ReservationServiceServer).RequestReservation(ctx, req.(*RequestReservationRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ReservationService_VerifyReservation_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(VerifyReservationRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReservationServiceServer).VerifyReservation(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ReservationService_VerifyReservation_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ReservationServiceServer).VerifyReservation(ctx, req.(*VerifyReservationRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ReservationService_CancelReservation_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CancelReservationRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReservationServiceServer).CancelReservation(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ReservationService_CancelReservation_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ReservationServiceServer).CancelReservation(ctx, req.(*CancelReservationRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ReservationService_GetAttendance_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetAttendanceRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReservationServiceServer).GetAttendance(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ReservationService_GetAttendance_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ReservationServiceServer).GetAttendance(ctx, req.(*GetAttendanceRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ReservationService_ServiceDesc is the grpc.ServiceDesc for ReservationService.
var ReservationService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ReservationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RequestReservation", Handler: _ReservationService_RequestReservation_Handler},
		{MethodName: "VerifyReservation", Handler: _ReservationService_VerifyReservation_Handler},
		{MethodName: "CancelReservation", Handler: _ReservationService_CancelReservation_Handler},
		{MethodName: "GetAttendance", Handler: _ReservationService_GetAttendance_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "reservation/v1/reservation.go",
}
