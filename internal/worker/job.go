package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/campushq/notification-engine/internal/repository"
)

// Job periodically fails out message log entries stuck in QUEUED/SENDING,
// e.g. after a crash mid-dispatch, so the audit trail converges instead of
// carrying in-flight states forever.
type Job struct {
	ticker         *time.Ticker
	quit           chan struct{}
	log            repository.MessageLogRepository
	stuckThreshold time.Duration
	logger         *slog.Logger
	isRunning      bool
	mu             sync.Mutex
}

func NewJob(interval, stuckThreshold time.Duration, log repository.MessageLogRepository, logger *slog.Logger) *Job {
	return &Job{
		ticker:         time.NewTicker(interval),
		quit:           make(chan struct{}),
		log:            log,
		stuckThreshold: stuckThreshold,
		logger:         logger,
	}
}

func (j *Job) Start(ctx context.Context, wg *sync.WaitGroup) {
	j.logger.Info("reconciliation job started")
	go func() {
		for {
			select {
			case <-j.ticker.C:
				j.reconcile(ctx)
			case <-j.quit:
				j.ticker.Stop()
				j.logger.Info("reconciliation job stopped by toggle")
				wg.Done()
				return
			case <-ctx.Done():
				j.ticker.Stop()
				j.logger.Info("shutdown signal received, stopping reconciliation job")
				wg.Done()
				return
			}
		}
	}()
}

func (j *Job) Stop() {
	close(j.quit)
}

func (j *Job) reconcile(ctx context.Context) {
	j.mu.Lock()
	if j.isRunning {
		j.mu.Unlock()
		return
	}
	j.isRunning = true
	j.mu.Unlock()

	defer func() {
		j.mu.Lock()
		j.isRunning = false
		j.mu.Unlock()
	}()

	failed, err := j.log.FailStuck(ctx, time.Now().Add(-j.stuckThreshold))
	if err != nil {
		j.logger.Error("failed to reconcile stuck messages", "error", err)
		return
	}
	if failed > 0 {
		j.logger.Warn("failed out stuck message log entries", "count", failed)
	}
}
