package poller

import "time"

// Clock abstracts wall-clock reads so tests can control time. All
// poller timestamps (leases, backoff schedules, bookkeeping) flow
// through one Clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns a Clock backed by time.Now in UTC.
func SystemClock() Clock { return systemClock{} }
