package rpc

import (
	"context"

	"github.com/spooky-finn/go-okx-orderbook/usecase"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const serviceName = "okxbook.OrderBookService"

// OrderBookServiceServer is the server API for okxbook.OrderBookService.
// Requests and responses are google.protobuf.Struct values.
type OrderBookServiceServer interface {
	GetOrderBookSnapshot(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var OrderBookService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*OrderBookServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetOrderBookSnapshot",
			Handler:    _OrderBookService_GetOrderBookSnapshot_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "okxbook.proto",
}

func _OrderBookService_GetOrderBookSnapshot_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderBookServiceServer).GetOrderBookSnapshot(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + serviceName + "/GetOrderBookSnapshot",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OrderBookServiceServer).GetOrderBookSnapshot(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

type server struct {
	orderbookSnapshotUseCase *usecase.OrderBookSnapshotUseCase
	validationService        *ValidationService
}

func NewServer(uc *usecase.OrderBookSnapshotUseCase, conf *ValidationServiceConfig) *server {
	return &server{
		orderbookSnapshotUseCase: uc,
		validationService:        NewValidationService(conf),
	}
}

// Register attaches the service to s.
func (s *server) Register(registrar grpc.ServiceRegistrar) {
	registrar.RegisterService(&OrderBookService_ServiceDesc, s)
}
