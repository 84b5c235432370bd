package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"assetquotes-service/internal/application"
	"assetquotes-service/internal/bootstrap"
	"assetquotes-service/internal/config"
	"assetquotes-service/internal/infrastructure/grpc/queryclient"
	"assetquotes-service/internal/infrastructure/logx"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func init() { _ = godotenv.Load() }

func main() {
	var req application.ToolRequest
	flag.StringVar(&req.Name, "name", "", "asset name, e.g. gold")
	flag.StringVar(&req.StartDate, "start-date", "", "inclusive start date YYYY-MM-DD (default today)")
	flag.StringVar(&req.EndDate, "end-date", "", "inclusive end date YYYY-MM-DD")
	traceID := flag.String("trace-id", "", "trace id sent with the query (default random)")
	flag.Parse()

	cfg := config.Load()
	ctx := context.Background()
	facade, cleanup, err := bootstrap.InitToolFacade(ctx, cfg)
	if err != nil {
		logx.L().Fatal("dial query service", zap.String("target", cfg.GRPCTarget), zap.Error(err))
	}
	defer cleanup()

	if *traceID != "" {
		ctx = queryclient.WithTraceID(ctx, *traceID)
	}
	res, err := facade.GetAssetPrices(ctx, req)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		cleanup()
		if application.KindOf(err) == application.KindInvalidArgument {
			os.Exit(2)
		}
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(res)
}
