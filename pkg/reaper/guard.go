package reaper

import "context"

// Guard admits only authenticated callers whose role the Authorizer accepts
type Guard struct {
	session    Session
	authorizer Authorizer
	events     EventLogger
}

// NewGuard creates a guard. events may be nil to use the default logger.
func NewGuard(session Session, authorizer Authorizer, events EventLogger) *Guard {
	if events == nil {
		events = NewEventLogger()
	}
	return &Guard{session: session, authorizer: authorizer, events: events}
}

// Admit checks the caller before an operation on target and returns their identity.
// It returns ErrUnauthorized or ErrForbidden after logging the matching event.
func (g *Guard) Admit(ctx context.Context, target string) (string, error) {
	identity, ok := g.session.Identity(ctx)
	// role is read even for anonymous callers so it lands in the log
	role := g.session.Role(ctx)

	if !ok {
		g.events.Log(ctx, EventUnauthorized, map[string]any{"id": target, "role": role}, SeverityError)
		return "", ErrUnauthorized
	}

	if !g.authorizer.Allowed(role) {
		g.events.Log(ctx, EventNotAllowed, map[string]any{"id": target, "identity": identity, "role": role}, SeverityError)
		return "", ErrForbidden
	}

	return identity, nil
}
