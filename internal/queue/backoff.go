package queue

import (
	"math/rand/v2"
	"time"
)

// maxBackoff caps the exponential backoff at one hour.
const maxBackoff = time.Hour

// baseBackoff is the first retry's un-jittered delay.
const baseBackoff = 60 * time.Second

// Backoff computes the retry delay: min(60s * 2^(attempts-1), 1h) *
// U(0.5,1.5), so the first retry waits 30-90s. attempts is the job's attempt count after the failed run
// (i.e. Job.Attempts post-increment).
func Backoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	d := baseBackoff
	for i := 1; i < attempts && d < maxBackoff; i++ {
		d *= 2
	}
	if d > maxBackoff {
		d = maxBackoff
	}
	jitter := 0.5 + rand.Float64()
	return time.Duration(float64(d) * jitter)
}
