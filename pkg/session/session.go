// Package session resolves who is calling a catalog operation and with which role.
package session

import "context"

// Static is a resolver with a fixed identity and role.
// An empty Identity means the caller is not authenticated.
type Static struct {
	IdentityValue string
	RoleValue     string
}

// Identity returns the configured identity
func (s Static) Identity(context.Context) (string, bool) {
	return s.IdentityValue, s.IdentityValue != ""
}

// Role returns the configured role
func (s Static) Role(context.Context) string {
	return s.RoleValue
}

type contextKey struct{}

type principal struct {
	identity string
	role     string
}

// WithPrincipal returns a context carrying the caller's identity and role
func WithPrincipal(ctx context.Context, identity, role string) context.Context {
	return context.WithValue(ctx, contextKey{}, principal{identity: identity, role: role})
}

// Context resolves the caller from values stored with WithPrincipal
type Context struct{}

// Identity returns the identity stored on ctx
func (Context) Identity(ctx context.Context) (string, bool) {
	p, _ := ctx.Value(contextKey{}).(principal)
	return p.identity, p.identity != ""
}

// Role returns the role stored on ctx, or ""
func (Context) Role(ctx context.Context) string {
	p, _ := ctx.Value(contextKey{}).(principal)
	return p.role
}
