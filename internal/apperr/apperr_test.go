package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := E(KindAlreadyVoted, "This user already voted")
	assert.Equal(t, KindAlreadyVoted, KindOf(err))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := E(KindNotFound, "user not found")
	wrapped := fmt.Errorf("loading profile: %w", inner)
	assert.Equal(t, KindNotFound, KindOf(wrapped))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindStoreUnavailable, "list users", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "list users")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestUnexpected(t *testing.T) {
	assert.True(t, Unexpected(E(KindInvariantViolation, "x")))
	assert.True(t, Unexpected(E(KindStoreUnavailable, "x")))
	assert.True(t, Unexpected(errors.New("foreign")))
	assert.False(t, Unexpected(E(KindAlreadyVoted, "x")))
	assert.False(t, Unexpected(E(KindNotFound, "x")))
}
