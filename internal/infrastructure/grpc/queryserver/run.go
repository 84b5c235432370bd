package queryserver

import (
	"context"
	"fmt"
	"net"

	"assetquotes-service/internal/infrastructure/grpc/querypb"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// NewGRPCServer builds a gRPC server with the query service registered.
func NewGRPCServer(srv querypb.QueryServiceServer, log *zap.Logger) *grpc.Server {
	if log == nil {
		log = zap.NewNop()
	}
	gs := grpc.NewServer(
		grpc.Creds(insecure.NewCredentials()),
		grpc.ChainUnaryInterceptor(recoverer(log)),
	)
	querypb.RegisterQueryServiceServer(gs, srv)
	return gs
}

// RunServer starts a gRPC server and blocks until context is done.
func RunServer(ctx context.Context, addr string, srv querypb.QueryServiceServer, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	gs := NewGRPCServer(srv, log)
	errCh := make(chan error, 1)
	go func() {
		log.Info("grpc_server_started", zap.String("addr", addr))
		errCh <- gs.Serve(lis)
	}()
	select {
	case <-ctx.Done():
		log.Info("grpc_server_stopping")
		gs.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}

func recoverer(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("grpc panic recovered", zap.Any("error", rec), zap.String("method", info.FullMethod))
				err = status.Error(codes.Internal, fmt.Sprintf("internal error in %s", info.FullMethod))
			}
		}()
		return handler(ctx, req)
	}
}
