package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_RoundTrip(t *testing.T) {
	j := NewJWT("test-secret", time.Hour)

	token, err := j.Issue(Identity{UserID: "u1", Email: "test@example.com"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	id, err := j.ResolveToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u1", id.UserID)
	assert.Equal(t, "test@example.com", id.Email)
}

func TestJWT_Expired(t *testing.T) {
	j := NewJWT("test-secret", time.Minute)
	issued := time.Now()
	j.now = func() time.Time { return issued }

	token, err := j.Issue(Identity{UserID: "u1"})
	require.NoError(t, err)

	j.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = j.ResolveToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestJWT_WrongSecret(t *testing.T) {
	issuer := NewJWT("secret-a", time.Hour)
	verifier := NewJWT("secret-b", time.Hour)

	token, err := issuer.Issue(Identity{UserID: "u1"})
	require.NoError(t, err)

	_, err = verifier.ResolveToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestJWT_Garbage(t *testing.T) {
	j := NewJWT("test-secret", time.Hour)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := j.ResolveToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrUnauthenticated, "token %q", token)
	}
}
