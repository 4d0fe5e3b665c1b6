package notify

import (
	"context"
	"log/slog"
	"sync"
)

// Severity classifies a user-facing notice.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notifier is the transient user-facing message channel.
type Notifier interface {
	Notify(ctx context.Context, message string, severity Severity)
}

// Notice is a single recorded notification.
type Notice struct {
	Message  string
	Severity Severity
}

// Collector records notices raised while serving a single request so they
// can be returned to the caller alongside the result.
type Collector struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify records the notice.
func (c *Collector) Notify(_ context.Context, message string, severity Severity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, Notice{Message: message, Severity: severity})
}

// Notices returns a copy of the recorded notices in arrival order.
func (c *Collector) Notices() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notice, len(c.notices))
	copy(out, c.notices)
	return out
}

// Logger forwards notices to a structured logger. It is the fallback used
// when nothing user-facing is attached.
type Logger struct {
	Log *slog.Logger
}

func (l Logger) Notify(ctx context.Context, message string, severity Severity) {
	log := l.Log
	if log == nil {
		log = slog.Default()
	}
	level := slog.LevelInfo
	switch severity {
	case SeverityWarning:
		level = slog.LevelWarn
	case SeverityError:
		level = slog.LevelError
	}
	log.Log(ctx, level, "notice", "message", message, "severity", string(severity))
}

// Discard drops every notice.
type Discard struct{}

func (Discard) Notify(context.Context, string, Severity) {}

type collectorKey struct{}

// WithCollector returns a context carrying a fresh Collector.
func WithCollector(ctx context.Context) (context.Context, *Collector) {
	c := &Collector{}
	return context.WithValue(ctx, collectorKey{}, c), c
}

// CollectorFrom returns the Collector stored by WithCollector, or nil.
func CollectorFrom(ctx context.Context) *Collector {
	c, _ := ctx.Value(collectorKey{}).(*Collector)
	return c
}
