package auth

import "context"

type contextKey string

const principalKey contextKey = "principal"

// Principal is the authenticated caller of a request
type Principal struct {
	UserID string
	Role   int
	// Service is set for callers authenticated with the service API key
	Service bool
}

// CanActFor reports whether the principal may read or write data of userID
func (p Principal) CanActFor(userID string) bool {
	return p.Service || p.Role >= RoleAdmin || (p.UserID != "" && p.UserID == userID)
}

// WithPrincipal returns a copy of ctx carrying p
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// GetPrincipal retrieves the principal from context
func GetPrincipal(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
