package reaper

import (
	"context"

	"github.com/ammar0144/catalog4go/pkg/logging"
)

// Severity of a lifecycle event
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "info"
}

// Lifecycle event names
const (
	EventCalled       = "called"
	EventUnauthorized = "unauthorized"
	EventNotAllowed   = "not-allowed"
	EventNotFound     = "not-found"
	EventSuccess      = "success"
	EventError        = "error"
)

// zerologEvents writes one log record per lifecycle event
type zerologEvents struct{}

// NewEventLogger returns the default EventLogger, backed by the global zerolog logger
func NewEventLogger() EventLogger {
	return zerologEvents{}
}

func (zerologEvents) Log(ctx context.Context, event string, payload map[string]any, severity Severity) {
	l := logging.Ctx(ctx)
	e := l.Info()
	if severity == SeverityError {
		e = l.Error()
	}
	e.Str("component", "reaper").Str("event", event).Fields(payload).Msg("title deletion " + event)
}
