package worker

import (
	"context"
	"fmt"
	"time"

	"assetquotes-service/internal/application"
	"assetquotes-service/internal/domain"

	"go.uber.org/zap"
)

var _ application.Worker = (*Scheduler)(nil)

// Ingestor runs one ingestion pass.
type Ingestor interface {
	Run(ctx context.Context) (domain.IngestionResult, error)
}

// Scheduler runs ingestion once per weekday at a fixed UTC time of day.
type Scheduler struct {
	Ingest Ingestor
	Hour   int
	Minute int
	Log    *zap.Logger

	// Now and After default to the real clock; tests replace them.
	Now   func() time.Time
	After func(time.Duration) <-chan time.Time
}

func NewScheduler(ingest Ingestor, at string, log *zap.Logger) (*Scheduler, error) {
	h, m, err := ParseScheduleAt(at)
	if err != nil {
		return nil, err
	}
	return &Scheduler{Ingest: ingest, Hour: h, Minute: m, Log: log}, nil
}

func (s *Scheduler) Start(ctx context.Context) {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}
	now := s.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	after := s.After
	if after == nil {
		after = time.After
	}

	log.Info("scheduler_started", zap.String("at", fmt.Sprintf("%02d:%02d", s.Hour, s.Minute)))
	for {
		t := now()
		next := NextRun(t, s.Hour, s.Minute)
		log.Info("scheduler.next_run", zap.Time("next_run", next), zap.Duration("in", next.Sub(t)))
		select {
		case <-ctx.Done():
			log.Info("scheduler_stopped")
			return
		case <-after(next.Sub(t)):
			s.runOnce(ctx, log)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, log *zap.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("scheduler.panic", zap.Any("r", r))
		}
	}()
	res, err := s.Ingest.Run(ctx)
	if err != nil {
		log.Error("scheduler.run_failed", zap.Error(err))
		return
	}
	log.Info("scheduler.run_done",
		zap.String("status", string(res.Status)),
		zap.Int("successful", len(res.Successful)),
		zap.Int("failed", len(res.Failed)),
		zap.Bool("skipped", res.Skipped),
	)
}

// NextRun returns the first weekday instant strictly after now at hour:minute
// UTC.
func NextRun(now time.Time, hour, minute int) time.Time {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// ParseScheduleAt parses an HH:MM time of day.
func ParseScheduleAt(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid schedule time %q, use HH:MM: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}

// ExitCode maps a one-shot run to a process exit status: 0 ok, 2 partial,
// 1 error.
func ExitCode(res domain.IngestionResult, err error) int {
	if err != nil {
		return 1
	}
	switch res.Status {
	case domain.IngestionStatusOK:
		return 0
	case domain.IngestionStatusPartial:
		return 2
	default:
		return 1
	}
}
