package registry

import (
	"context"
	"time"
)

// RunJanitor ends rooms that have sat empty for longer than idleTimeout,
// checking every interval. It blocks until ctx is cancelled.
//
// Rooms normally persist empty until an explicit EndGame; this loop is the
// opt-in counterpoint to that policy and is off unless the caller starts it.
func (r *Registry) RunJanitor(ctx context.Context, interval, idleTimeout time.Duration) error {
	r.logger.Info("janitor running", "interval", interval, "idle_timeout", idleTimeout)
	return r.clock.TickerFunc(ctx, interval, func() error {
		r.reapIdle(idleTimeout)
		return nil
	}, "janitor").Wait()
}

func (r *Registry) reapIdle(idleTimeout time.Duration) {
	now := r.clock.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	for roomID, sess := range r.sessions {
		emptySince, empty := sess.EmptySince()
		if !empty || now.Sub(emptySince) < idleTimeout {
			continue
		}
		r.logger.Info("reaping idle room", "room", roomID, "empty_for", now.Sub(emptySince))
		r.removeLocked(roomID, sess)
	}
}
