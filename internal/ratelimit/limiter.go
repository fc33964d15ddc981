// Package ratelimit serializes upstream API requests.
//
// The stats API tolerates at most one request per interval across the whole
// process, so this is deliberately not a token bucket: there are no bursts
// and no catch-up. Each successful Wait consumes exactly one slot and pushes
// the next allowed time forward by one interval.
package ratelimit

import (
	"context"
	"time"
)

// DefaultInterval is the minimum spacing between stats API requests.
const DefaultInterval = 200 * time.Millisecond

// Limiter schedules requests one at a time, each no earlier than one
// interval after the previous one was released.
type Limiter struct {
	interval time.Duration

	// sem serializes acquires and guards nextAllowed. A channel instead of
	// a mutex so waiters can abandon the queue when their context ends.
	sem         chan struct{}
	nextAllowed time.Time
}

// New creates a limiter with the given spacing between requests.
// Non-positive intervals fall back to DefaultInterval.
func New(interval time.Duration) *Limiter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Limiter{
		interval: interval,
		sem:      make(chan struct{}, 1),
	}
}

// Interval returns the configured spacing.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// Wait blocks until the caller may issue a request, or until ctx is done.
// A cancelled wait does not consume a slot and does not move the schedule.
func (l *Limiter) Wait(ctx context.Context) error {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-l.sem }()

	if wait := time.Until(l.nextAllowed); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	l.nextAllowed = time.Now().Add(l.interval)
	return nil
}
