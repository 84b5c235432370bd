package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"assetquotes-service/internal/bootstrap"
	"assetquotes-service/internal/config"
	"assetquotes-service/internal/infrastructure/logx"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func init() { _ = godotenv.Load() }

func main() {
	log := logx.L()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	run, cleanup, err := bootstrap.InitWorkerApp(ctx, cfg, os.Stdout)
	if err != nil {
		stop()
		log.Fatal("init worker", zap.Error(err))
	}

	log.Info("worker started", zap.String("mode", cfg.WorkerMode))
	code := run(ctx)
	cleanup()
	stop()
	_ = log.Sync()
	os.Exit(code)
}
