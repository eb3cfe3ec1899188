package jwt

import (
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/accountsd/internal/domain"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestSignAndParse(t *testing.T) {
	iss := NewIssuer(secret, "accountsd")
	raw, err := iss.Sign(Principal{Subject: "sub-1", Username: "alice@x.com", TenantClass: "client", Roles: []string{RoleAdmin}}, time.Hour)
	require.NoError(t, err)

	p, err := iss.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "sub-1", p.Subject)
	assert.Equal(t, "alice@x.com", p.LoginName())
	assert.Equal(t, domain.Customer, p.TenantClass)
	assert.True(t, p.IsAdmin())
}

func TestParseRejects(t *testing.T) {
	iss := NewIssuer(secret, "accountsd")

	other, err := NewIssuer(secret, "someone-else").Sign(Principal{Subject: "s"}, time.Hour)
	require.NoError(t, err)
	_, err = iss.Parse(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	forged, err := NewIssuer("another-secret-another-secret-xx", "accountsd").Sign(Principal{Subject: "s"}, time.Hour)
	require.NoError(t, err)
	_, err = iss.Parse(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noSub, err := iss.Sign(Principal{}, time.Hour)
	require.NoError(t, err)
	_, err = iss.Parse(noSub)
	assert.ErrorIs(t, err, ErrMissingSubject)

	none, err := jwtv5.NewWithClaims(jwtv5.SigningMethodNone, jwtv5.MapClaims{"sub": "s", "iss": "accountsd"}).
		SignedString(jwtv5.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = iss.Parse(none)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseExpired(t *testing.T) {
	iss := NewIssuer(secret, "accountsd")
	past := time.Now().Add(-2 * time.Hour)
	iss.now = func() time.Time { return past }
	raw, err := iss.Sign(Principal{Subject: "s"}, time.Hour)
	require.NoError(t, err)

	iss.now = time.Now
	_, err = iss.Parse(raw)
	assert.ErrorIs(t, err, ErrExpiredToken)
}
