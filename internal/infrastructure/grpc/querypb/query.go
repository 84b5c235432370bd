package querypb

import (
	"context"

	"assetquotes-service/internal/domain"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const QueryService_GetAssetPrices_FullMethodName = "/assetquotes.v1.QueryService/GetAssetPrices"

// ErrorKindTrailer names the trailer key carrying the application error kind
// of a failed call. Transport failures never carry it.
const ErrorKindTrailer = "x-error-kind"

type GetAssetPricesRequest struct {
	AssetName string `json:"asset_name"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	TraceId   string `json:"trace_id,omitempty"`
}

type GetAssetPricesResponse struct {
	Count int                  `json:"count"`
	Items []domain.QuoteRecord `json:"items"`
}

type QueryServiceClient interface {
	GetAssetPrices(ctx context.Context, in *GetAssetPricesRequest, opts ...grpc.CallOption) (*GetAssetPricesResponse, error)
}

type queryServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewQueryServiceClient(cc grpc.ClientConnInterface) QueryServiceClient {
	return &queryServiceClient{cc}
}

func (c *queryServiceClient) GetAssetPrices(ctx context.Context, in *GetAssetPricesRequest, opts ...grpc.CallOption) (*GetAssetPricesResponse, error) {
	out := new(GetAssetPricesResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, QueryService_GetAssetPrices_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

type QueryServiceServer interface {
	GetAssetPrices(context.Context, *GetAssetPricesRequest) (*GetAssetPricesResponse, error)
}

// UnimplementedQueryServiceServer can be embedded for forward compatibility.
type UnimplementedQueryServiceServer struct{}

func (UnimplementedQueryServiceServer) GetAssetPrices(context.Context, *GetAssetPricesRequest) (*GetAssetPricesResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetAssetPrices not implemented")
}

func RegisterQueryServiceServer(s grpc.ServiceRegistrar, srv QueryServiceServer) {
	s.RegisterService(&QueryService_ServiceDesc, srv)
}

func _QueryService_GetAssetPrices_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetAssetPricesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(QueryServiceServer).GetAssetPrices(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: QueryService_GetAssetPrices_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(QueryServiceServer).GetAssetPrices(ctx, req.(*GetAssetPricesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var QueryService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "assetquotes.v1.QueryService",
	HandlerType: (*QueryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetAssetPrices",
			Handler:    _QueryService_GetAssetPrices_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "assetquotes/v1/query.proto",
}
