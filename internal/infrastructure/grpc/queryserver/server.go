package queryserver

import (
	"context"

	"assetquotes-service/internal/application"
	"assetquotes-service/internal/infrastructure/grpc/querypb"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type Server struct {
	Query application.QueryInvoker
	Log   *zap.Logger
	querypb.UnimplementedQueryServiceServer
}

func NewServer(q application.QueryInvoker, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{Query: q, Log: log}
}

func (s *Server) GetAssetPrices(ctx context.Context, req *querypb.GetAssetPricesRequest) (*querypb.GetAssetPricesResponse, error) {
	log := s.Log.With(
		zap.String("asset_name", req.AssetName),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
		zap.String("trace_id", req.TraceId),
	)
	res, err := s.Query.Query(ctx, application.QueryRequest{
		AssetName: req.AssetName,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		kind := application.KindOf(err)
		log.Warn("grpc_query.failed", zap.String("kind", string(kind)), zap.Error(err))
		if terr := grpc.SetTrailer(ctx, metadata.Pairs(querypb.ErrorKindTrailer, string(kind))); terr != nil {
			log.Warn("grpc_query.trailer_failed", zap.Error(terr))
		}
		return nil, toStatus(err)
	}
	log.Info("grpc_query.success", zap.Int("count", res.Count))
	return &querypb.GetAssetPricesResponse{Count: res.Count, Items: res.Items}, nil
}

func toStatus(err error) error {
	switch application.KindOf(err) {
	case application.KindInvalidArgument:
		return status.Error(codes.InvalidArgument, err.Error())
	case application.KindStorage:
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
