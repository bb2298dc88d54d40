package token

import (
	"testing"
	"time"

	"votebox/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	svc := NewService("test-secret", 7*24*time.Hour)

	tok, err := svc.Issue(42, "user")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := svc.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "user", claims.Role)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestVerifyExpired(t *testing.T) {
	svc := NewService("test-secret", -time.Minute)

	tok, err := svc.Issue(1, "user")
	require.NoError(t, err)

	_, err = svc.Verify(tok)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewService("secret-a", time.Hour)
	verifier := NewService("secret-b", time.Hour)

	tok, err := issuer.Issue(1, "admin")
	require.NoError(t, err)

	_, err = verifier.Verify(tok)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
}

func TestVerifyMalformed(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.Verify(tok)
		require.Error(t, err, "token %q", tok)
		assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
	}
}
