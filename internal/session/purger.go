package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultPurgeSchedule runs the remote purge every ten minutes.
const DefaultPurgeSchedule = "@every 10m"

// Purger runs Manager.PurgeExpiredRemote on a cron schedule. Each run is
// fire-and-forget: failures are only logged by the manager.
type Purger struct {
	cron    *cron.Cron
	manager *Manager
	timeout time.Duration
	logger  *slog.Logger
}

// NewPurger schedules m's remote purge on schedule (standard cron syntax
// or descriptors such as "@every 5m").
func NewPurger(m *Manager, schedule string, logger *slog.Logger) (*Purger, error) {
	if schedule == "" {
		schedule = DefaultPurgeSchedule
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &Purger{
		cron:    cron.New(),
		manager: m,
		timeout: time.Minute,
		logger:  logger,
	}
	if _, err := p.cron.AddFunc(schedule, p.run); err != nil {
		return nil, fmt.Errorf("schedule session purge %q: %w", schedule, err)
	}
	return p, nil
}

func (p *Purger) run() {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	p.manager.PurgeExpiredRemote(ctx)
}

// Start begins running scheduled purges in the background.
func (p *Purger) Start() {
	p.logger.Info("session purge scheduler started")
	p.cron.Start()
}

// Stop halts the schedule and returns a context that is done once any
// running purge has finished.
func (p *Purger) Stop() context.Context {
	return p.cron.Stop()
}
