// Package auth issues and validates bearer tokens for API requests.
package auth

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrUnauthenticated is returned for missing, malformed or expired tokens.
var ErrUnauthenticated = errors.New("unauthenticated")

// Identity is the caller resolved from a valid token.
type Identity struct {
	UserID string
	Email  string
}

// Authenticator resolves a bearer token into a caller identity.
type Authenticator interface {
	ResolveToken(ctx context.Context, token string) (*Identity, error)
}
