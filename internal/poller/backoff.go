package poller

import "time"

// pollDelay computes the still-processing backoff for a retry count:
// 1s, 2s, 4s, ... doubling per retry, capped. retryCount is 1-indexed
// (the count after the increment for the current poll).
func pollDelay(retryCount int, cap time.Duration) time.Duration {
	if retryCount < 1 {
		retryCount = 1
	}
	// 2^30s already dwarfs any sane cap; avoid shift overflow beyond it.
	if retryCount-1 > 30 {
		return cap
	}
	d := time.Duration(1<<uint(retryCount-1)) * time.Second
	if d > cap {
		return cap
	}
	return d
}
