package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sehee-xx/MoneyToad/internal/config"
	"github.com/sehee-xx/MoneyToad/internal/store"
	"github.com/sehee-xx/MoneyToad/pkg/models"
)

// Scheduler owns the polling loop. Start launches a single goroutine
// that runs one batch per tick; Stop cancels it and waits for the
// in-flight batch to finish. One job's failure reschedules that job and
// never aborts the rest of the batch.
type Scheduler struct {
	store     store.Store
	processor *Processor
	clock     Clock
	cfg       config.PollerConfig

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a Scheduler.
func NewScheduler(st store.Store, proc *Processor, clock Clock, cfg config.PollerConfig) *Scheduler {
	return &Scheduler{
		store:     st,
		processor: proc,
		clock:     clock,
		cfg:       cfg,
	}
}

// Start begins ticking. It returns immediately; call Stop to shut the
// loop down.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()

		slog.Info("job poller started",
			"interval", s.cfg.Interval,
			"batch_size", s.cfg.BatchSize,
			"lease_duration", s.cfg.LeaseDuration,
		)

		for {
			select {
			case <-ctx.Done():
				slog.Info("job poller stopped")
				return
			case <-ticker.C:
				s.RunBatch(ctx)
			}
		}
	}()
}

// Stop cancels the loop and blocks until the current batch completes.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// RunBatch executes one scheduler tick: read the clock once, select up
// to BatchSize eligible jobs oldest-first, and poll them sequentially.
func (s *Scheduler) RunBatch(ctx context.Context) {
	now := s.clock.Now()

	jobs, err := s.store.FindPollableJobs(ctx, now, s.cfg.BatchSize)
	if err != nil {
		slog.Error("fetching pollable jobs failed", "error", err)
		return
	}

	for _, job := range jobs {
		if ctx.Err() != nil {
			return
		}
		if err := s.processor.PollOnce(ctx, job); err != nil {
			s.recordFailure(ctx, job, now, err)
		}
	}
}

// recordFailure releases the job's lease and reschedules it on the
// fixed error-retry delay. The status field is left as-is: failed polls
// stay pollable indefinitely rather than landing in a terminal state.
func (s *Scheduler) recordFailure(ctx context.Context, job *models.AnalysisJob, now time.Time, pollErr error) {
	slog.Warn("poll step failed",
		"job_id", job.ID,
		"user_id", job.UserID,
		"retry_count", job.RetryCount,
		"error", pollErr,
	)

	job.LeasedUntil = nil
	job.RetryCount++
	nextPoll := now.Add(s.cfg.ErrorRetryDelay)
	job.NextPollAt = &nextPoll
	msg := "POLL_ERROR: " + pollErr.Error()
	job.LastMessage = &msg
	job.UpdatedAt = s.clock.Now()

	if err := s.store.SaveJob(ctx, job); err != nil {
		// Nothing else to do here; the lease will expire on its own and
		// a later tick retakes the job.
		slog.Error("persisting poll failure state failed", "job_id", job.ID, "error", err)
	}
}
