package domain

import (
	"context"
	"strings"
)

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying the authenticated caller's email.
func WithIdentity(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, identityKey{}, email)
}

// IdentityFromContext returns the caller email set by WithIdentity.
func IdentityFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(identityKey{}).(string)
	return email, ok && email != ""
}

// CanonicalEmail is the stored form of an email address.
func CanonicalEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
