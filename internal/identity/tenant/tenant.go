// Package tenant carries the current organization through a request's
// context. The binding is explicit: callers establish it at the start of a
// unit of work and it dies with the context, so it can never leak across
// requests. An absent binding means administrative/system scope and store
// queries run unfiltered.
package tenant

import "context"

type ctxKey struct{}

// WithOrganization binds orgID as the current organization for the unit of
// work owning ctx.
func WithOrganization(ctx context.Context, orgID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, orgID)
}

// OrganizationID returns the organization bound to ctx. ok is false in
// administrative/system scope.
func OrganizationID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
