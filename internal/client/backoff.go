package client

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

const quadraticBase = 400 * time.Millisecond

// QuadraticBackOff waits base*n² before the n-th retry (400ms, 1600ms,
// 3600ms, ...). It satisfies backoff.BackOff so the welcome load can plug it
// into backoff.Retry, and it is injectable so tests can swap in a zero-delay
// policy.
type QuadraticBackOff struct {
	Base    time.Duration
	attempt int
}

func NewQuadraticBackOff() *QuadraticBackOff {
	return &QuadraticBackOff{Base: quadraticBase}
}

func (b *QuadraticBackOff) NextBackOff() time.Duration {
	b.attempt++
	return b.Base * time.Duration(b.attempt*b.attempt)
}

func (b *QuadraticBackOff) Reset() {
	b.attempt = 0
}

var _ backoff.BackOff = (*QuadraticBackOff)(nil)
