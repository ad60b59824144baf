// Package poller drives externally-hosted analysis jobs to completion.
// A scheduler ticks on a fixed cadence, selects eligible jobs, and runs
// one poll step per job: take a short lease, ask the analyzer for
// progress, transition the job, release the lease. Leases are the only
// concurrency control; a stalled poller's lease simply expires and a
// later tick retakes the job.
package poller

import (
	"context"
	"errors"
	"fmt"

	"github.com/sehee-xx/MoneyToad/internal/analyzer"
	"github.com/sehee-xx/MoneyToad/internal/config"
	"github.com/sehee-xx/MoneyToad/internal/store"
	"github.com/sehee-xx/MoneyToad/pkg/models"
)

// Enqueue validation errors, surfaced synchronously to the caller.
var (
	ErrUnknownUser     = errors.New("unknown user")
	ErrNoFileReference = errors.New("user has no uploaded file to analyze")
)

const unknownStatusMessage = "UNKNOWN"

// Processor executes one polling step for one job and owns the enqueue
// entrypoint. All state mutations besides the scheduler's failure
// handler go through here.
type Processor struct {
	store        store.Store
	analyzer     analyzer.Client
	materializer *Materializer
	clock        Clock
	cfg          config.PollerConfig
}

// NewProcessor creates a Processor.
func NewProcessor(st store.Store, client analyzer.Client, mat *Materializer, clock Clock, cfg config.PollerConfig) *Processor {
	return &Processor{
		store:        st,
		analyzer:     client,
		materializer: mat,
		clock:        clock,
		cfg:          cfg,
	}
}

// Enqueue creates a QUEUED job for the user's uploaded file. The first
// poll is deferred by the configured initial delay to give the analyzer
// time to register the work. This is the only externally triggered
// mutation into the polling core.
func (p *Processor) Enqueue(ctx context.Context, userID int64) (*models.AnalysisJob, error) {
	user, err := p.store.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownUser, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if user.FileID == nil || *user.FileID == "" {
		return nil, ErrNoFileReference
	}

	now := p.clock.Now()
	nextPoll := now.Add(p.cfg.InitialDelay)
	job := &models.AnalysisJob{
		UserID:     userID,
		FileID:     *user.FileID,
		Status:     models.JobStatusQueued,
		RetryCount: 0,
		NextPollAt: &nextPoll,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := p.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}
	return job, nil
}

// PollOnce runs a single poll step for an eligible job. The lease is
// persisted before any external call so a concurrent tick cannot pick
// the job up mid-step. Errors are returned to the scheduler, which owns
// the reschedule-on-failure policy.
func (p *Processor) PollOnce(ctx context.Context, job *models.AnalysisJob) error {
	now := p.clock.Now()

	// Acquire lease before any externally visible work.
	leasedUntil := now.Add(p.cfg.LeaseDuration)
	job.LeasedUntil = &leasedUntil
	job.UpdatedAt = now
	if err := p.store.SaveJob(ctx, job); err != nil {
		return fmt.Errorf("acquiring lease: %w", err)
	}

	status, err := p.analyzer.Status(ctx, job.FileID)
	if err != nil {
		return fmt.Errorf("querying status: %w", err)
	}

	if analyzer.Done(status) {
		if err := p.materializer.Materialize(ctx, job.UserID, job.FileID); err != nil {
			return fmt.Errorf("materializing result: %w", err)
		}
		job.Status = models.JobStatusDone
		msg := "DONE"
		job.LastMessage = &msg
		job.NextPollAt = nil
	} else {
		job.RetryCount++
		job.Status = models.JobStatusRunning
		msg := status
		if msg == "" {
			msg = unknownStatusMessage
		}
		job.LastMessage = &msg
		nextPoll := p.clock.Now().Add(pollDelay(job.RetryCount, p.cfg.BackoffCap))
		job.NextPollAt = &nextPoll
	}

	// Release the lease and persist the transition in one write.
	job.LeasedUntil = nil
	job.UpdatedAt = p.clock.Now()
	if err := p.store.SaveJob(ctx, job); err != nil {
		return fmt.Errorf("releasing lease: %w", err)
	}
	return nil
}
