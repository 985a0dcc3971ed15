package jobs

import (
	"context"
	"log/slog"
	"time"
)

type Reaper interface {
	Reap(idle time.Duration) int
}

// SessionReaperJob discards booking sessions left idle
type SessionReaperJob struct {
	sessions    Reaper
	idleTimeout time.Duration
	interval    time.Duration
	ticker      *time.Ticker
	done        chan bool
}

func NewSessionReaperJob(sessions Reaper, idleTimeout, interval time.Duration) *SessionReaperJob {
	return &SessionReaperJob{
		sessions:    sessions,
		idleTimeout: idleTimeout,
		interval:    interval,
		done:        make(chan bool),
	}
}

// Start runs a sweep every interval until Stop is called or ctx ends
func (j *SessionReaperJob) Start(ctx context.Context) {
	slog.Info("Starting session reaper job", "check_interval", j.interval, "idle_timeout", j.idleTimeout)

	j.ticker = time.NewTicker(j.interval)

	go func() {
		for {
			select {
			case <-j.ticker.C:
				j.sweep()
			case <-ctx.Done():
				slog.Info("Session reaper job stopped", "reason", ctx.Err())
				return
			case <-j.done:
				slog.Info("Session reaper job stopped")
				return
			}
		}
	}()
}

func (j *SessionReaperJob) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	close(j.done)
}

func (j *SessionReaperJob) sweep() int {
	n := j.sessions.Reap(j.idleTimeout)
	if n == 0 {
		slog.Debug("No idle sessions found")
		return 0
	}
	slog.Info("Discarded idle booking sessions", "count", n)
	return n
}
