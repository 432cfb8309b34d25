package realtime

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Poller is the degraded-mode refresh strategy: while the real-time channel
// is disconnected, it refetches on a fixed interval so the cache keeps
// converging on server state. While the channel is connected the ticker
// still fires but the refetch is skipped - push events carry the updates.
type Poller struct {
	interval   time.Duration
	shouldPoll func() bool
	refetch    func(context.Context) error
	log        *zap.Logger
}

// NewPoller creates a poller. shouldPoll is consulted on every tick; the
// usual wiring is a closure over Channel.State. A non-positive interval
// falls back to 10 seconds.
func NewPoller(interval time.Duration, shouldPoll func() bool, refetch func(context.Context) error, log *zap.Logger) *Poller {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Poller{
		interval:   interval,
		shouldPoll: shouldPoll,
		refetch:    refetch,
		log:        log,
	}
}

// Run blocks until the context is cancelled, refetching on each tick for
// which shouldPoll reports true. Refetch failures are logged and the loop
// continues; the next tick is the retry.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !p.shouldPoll() {
				continue
			}
			if err := p.refetch(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				p.log.Warn("poll refetch failed", zap.Error(err))
			}
		}
	}
}
