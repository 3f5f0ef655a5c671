package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/campushq/notification-engine/internal/repository"
)

// JobManager owns the lifecycle of the reconciliation job so operators
// can pause it during maintenance windows and resume it afterwards.
type JobManager struct {
	currentJob     *Job
	mu             sync.Mutex
	log            repository.MessageLogRepository
	interval       time.Duration
	stuckThreshold time.Duration
	logger         *slog.Logger
	wg             *sync.WaitGroup
}

func NewJobManager(log repository.MessageLogRepository, interval, stuckThreshold time.Duration, logger *slog.Logger, wg *sync.WaitGroup) *JobManager {
	return &JobManager{
		log:            log,
		interval:       interval,
		stuckThreshold: stuckThreshold,
		logger:         logger,
		wg:             wg,
	}
}

// Start launches a new reconciliation job.
func (m *JobManager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.currentJob != nil {
		return errors.New("job is already running")
	}
	m.wg.Add(1)

	m.currentJob = NewJob(m.interval, m.stuckThreshold, m.log, m.logger)
	m.currentJob.Start(ctx, m.wg)

	return nil
}

// Stop halts the active job.
func (m *JobManager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.currentJob == nil {
		return errors.New("actively running job not found")
	}

	m.currentJob.Stop()
	m.currentJob = nil
	return nil
}

// IsRunning reports whether a job is currently active.
func (m *JobManager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentJob != nil
}
