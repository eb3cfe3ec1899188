package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTenantClass(t *testing.T) {
	cases := map[string]TenantClass{
		"customer": Customer,
		"client":   Customer,
		" Staff ":  Staff,
		"internal": Staff,
		"ADMIN":    Admin,
	}
	for in, want := range cases {
		got, err := ParseTenantClass(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseTenantClass("partner")
	assert.True(t, errors.Is(err, ErrValidation))
	_, err = ParseTenantClass("")
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestTenantClassTraits(t *testing.T) {
	assert.True(t, Customer.HasLinkedProfiles())
	assert.False(t, Staff.HasLinkedProfiles())
	assert.False(t, Admin.HasLinkedProfiles())
	assert.Equal(t, "/internal", Staff.LoginPath())
	assert.False(t, TenantClass("x").Valid())
}

func TestErrorIsByKindAndReason(t *testing.T) {
	err := fmt.Errorf("confirm: %w", TokenError(TokenUsed))

	assert.True(t, errors.Is(err, ErrToken))
	assert.True(t, errors.Is(err, ErrTokenUsed))
	assert.False(t, errors.Is(err, ErrTokenExpired))
	assert.False(t, errors.Is(err, ErrValidation))

	reason, ok := TokenReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, TokenUsed, reason)
}

func TestUpstreamWrapsCause(t *testing.T) {
	cause := errors.New("throttled")
	err := Upstream("TooManyRequestsException", true, cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsRetryable(err))
	assert.Equal(t, KindUpstream, KindOf(err))
	assert.Equal(t, KindUnknown, KindOf(cause))
	assert.Contains(t, err.Error(), "throttled")
}

func TestResetTokenCheck(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tok := ResetToken{IssuedAt: now, ExpiresAt: now.Add(time.Hour)}

	assert.NoError(t, tok.Check(now.Add(time.Hour)))
	assert.ErrorIs(t, tok.Check(now.Add(time.Hour+time.Second)), ErrTokenExpired)

	tok.Used = true
	assert.ErrorIs(t, tok.Check(now.Add(2*time.Hour)), ErrTokenUsed)
}
