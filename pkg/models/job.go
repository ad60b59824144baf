package models

import "time"

// Analysis job statuses. ERROR is declared for parity with the schema
// but the poll path never assigns it: failed polls keep their current
// status and are retried on a fixed delay.
const (
	JobStatusQueued  = "QUEUED"
	JobStatusRunning = "RUNNING"
	JobStatusDone    = "DONE"
	JobStatusError   = "ERROR"
)

// AnalysisJob tracks one analysis run against the external analyzer.
// The scheduler polls the analyzer until it reports completion, then
// materializes the predicted baseline into budget rows.
//
// NextPollAt gates when the job becomes eligible again (exponential
// backoff while the analyzer is still working). LeasedUntil is a
// time-bounded worker lock: a job with a live lease is never handed to
// a second poller.
type AnalysisJob struct {
	ID          int64      `db:"id"           json:"id"`
	UserID      int64      `db:"user_id"      json:"user_id"`
	FileID      string     `db:"file_id"      json:"file_id"`
	Status      string     `db:"status"       json:"status"`
	RetryCount  int        `db:"retry_count"  json:"retry_count"`
	LastMessage *string    `db:"last_message" json:"last_message,omitempty"`
	NextPollAt  *time.Time `db:"next_poll_at" json:"next_poll_at,omitempty"`
	LeasedUntil *time.Time `db:"leased_until" json:"leased_until,omitempty"`
	CreatedAt   time.Time  `db:"created_at"   json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"   json:"updated_at"`
}

// Terminal reports whether the job has finished and left the polling
// lifecycle.
func (j *AnalysisJob) Terminal() bool {
	return j.Status == JobStatusDone || j.Status == JobStatusError
}
