// Package auth implements local accounts: password hashing, session
// tokens, optional TOTP second factor and the request principal.
package auth

import (
	"context"

	"github.com/ngipak/infodesa/pkg/models"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID  string      `json:"user_id"`
	Email   string      `json:"email"`
	Role    models.Role `json:"role"`
	TokenID string      `json:"-"`
}

// Can reports whether the principal holds at least role min.
func (p Principal) Can(min models.Role) bool {
	return p.Role.AtLeast(min)
}

// IsStaff reports whether the principal may use the admin API.
func (p Principal) IsStaff() bool {
	return p.Role.Valid()
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal of the request, if any.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
