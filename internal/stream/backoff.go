package stream

import (
	"math/rand/v2"
	"time"
)

// backoff computes capped exponential reconnect delays.
type backoff struct {
	base   time.Duration
	max    time.Duration
	jitter time.Duration
}

// floor returns the non-jittered delay for the given attempt index:
// min(base * 2^attempt, max).
func (b backoff) floor(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := b.base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= b.max {
			return b.max
		}
	}
	if d > b.max {
		d = b.max
	}
	return d
}

// delayFor returns floor(attempt) plus uniform jitter in [0, jitter).
// The jitter spreads clients dropped by a single server restart across
// time instead of letting them all dial back at the same instant.
func (b backoff) delayFor(attempt int) time.Duration {
	d := b.floor(attempt)
	if b.jitter > 0 {
		d += time.Duration(rand.Int64N(int64(b.jitter)))
	}
	return d
}
