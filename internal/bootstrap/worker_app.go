package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"assetquotes-service/internal/application"
	"assetquotes-service/internal/config"
	"assetquotes-service/internal/domain"
	"assetquotes-service/internal/infrastructure/worker"

	"go.uber.org/zap"
)

// WorkerApp runs until done and returns the process exit code.
type WorkerApp func(ctx context.Context) int

// InitWorkerApp builds the worker for cfg.WorkerMode. In once mode a setup
// failure still yields an app that prints an error result and exits 1.
func InitWorkerApp(ctx context.Context, cfg config.Config, out io.Writer) (WorkerApp, func(), error) {
	var cl cleanups
	c, err := initCore(ctx, cfg, application.NoopMetrics{}, &cl)
	if err != nil {
		cl.run()
		err = fmt.Errorf("init worker: %w", err)
		if cfg.WorkerMode == "once" {
			return failedRun(err, out), func() {}, nil
		}
		return nil, func() {}, err
	}
	log := ProvideLogger()

	switch cfg.WorkerMode {
	case "once":
		return func(ctx context.Context) int {
			res, err := c.ingest.Run(ctx)
			if err != nil {
				log.Error("worker.run_failed", zap.Error(err))
			}
			writeResult(out, res)
			return worker.ExitCode(res, err)
		}, cl.run, nil

	case "", "schedule":
		s, err := worker.NewScheduler(c.ingest, cfg.ScheduleAt, log)
		if err != nil {
			cl.run()
			return nil, func() {}, application.E(application.KindConfiguration, "bootstrap.InitWorkerApp", err)
		}
		return func(ctx context.Context) int {
			s.Start(ctx)
			return 0
		}, cl.run, nil

	default:
		cl.run()
		return nil, func() {}, fmt.Errorf("unsupported WORKER_MODE=%q", cfg.WorkerMode)
	}
}

func failedRun(err error, out io.Writer) WorkerApp {
	return func(context.Context) int {
		now := time.Now().UTC()
		res := domain.IngestionResult{
			Status:     domain.IngestionStatusError,
			Timestamp:  now,
			Date:       domain.FormatDate(now),
			Successful: []domain.Symbol{},
			Failed:     []domain.Symbol{},
			Error:      err.Error(),
		}
		ProvideLogger().Error("worker.run_failed", zap.Error(err))
		writeResult(out, res)
		return worker.ExitCode(res, err)
	}
}

func writeResult(out io.Writer, res domain.IngestionResult) {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(res)
}
