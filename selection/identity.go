package selection

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Context keys for selection-related values.
type contextKey int

const identityKey contextKey = iota

// WithIdentity returns a new context carrying the caller identity used
// for sticky routing.
func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext retrieves the caller identity from the context.
func IdentityFromContext(ctx context.Context) (string, bool) {
	identity, ok := ctx.Value(identityKey).(string)
	return identity, ok && identity != ""
}

// IdentityFromToken derives a sticky-routing identity from a JWT's subject
// claim. The token is parsed without verification: the identity only seeds
// a hash bucket, it grants nothing, and verification stays the caller's
// authentication concern.
func IdentityFromToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", err
	}
	subject, err := claims.GetSubject()
	if err != nil {
		return "", err
	}
	if subject == "" {
		return "", errors.New("selection: token has no subject claim")
	}
	return subject, nil
}
