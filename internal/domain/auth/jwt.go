package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWT signs and verifies HS256 tokens carrying the user id and email.
type JWT struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWT(secret string, ttl time.Duration) *JWT {
	return &JWT{secret: []byte(secret), ttl: ttl, now: time.Now}
}

type claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Issue returns a signed token for the given identity.
func (j *JWT) Issue(id Identity) (string, error) {
	now := j.now().UTC()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	})
	return tok.SignedString(j.secret)
}

// ResolveToken implements Authenticator. Any parse or validation failure,
// including expiry, maps to ErrUnauthenticated.
func (j *JWT) ResolveToken(_ context.Context, token string) (*Identity, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthenticated
		}
		return j.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(j.now))
	if err != nil || !parsed.Valid || c.Subject == "" {
		return nil, ErrUnauthenticated
	}
	return &Identity{UserID: c.Subject, Email: c.Email}, nil
}
