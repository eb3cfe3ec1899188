// Package jwt firma y valida los bearer tokens HS256 de la API.
package jwt

import (
	"errors"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dropDatabas3/accountsd/internal/domain"
)

var (
	ErrInvalidToken   = errors.New("invalid_jwt")
	ErrExpiredToken   = errors.New("expired")
	ErrMissingSubject = errors.New("missing_sub")
)

const leeway = 30 * time.Second

type Issuer struct {
	Iss    string
	secret []byte
	now    func() time.Time
}

func NewIssuer(secret, iss string) *Issuer {
	return &Issuer{Iss: iss, secret: []byte(secret), now: time.Now}
}

// Sign emite un token para p con el TTL dado. Lo usan accountsctl y los tests.
func (i *Issuer) Sign(p Principal, ttl time.Duration) (string, error) {
	now := i.now()
	c := Claims{
		Username:    p.Username,
		TenantClass: string(p.TenantClass),
		Roles:       p.Roles,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Subject:   p.Subject,
			Issuer:    i.Iss,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	return jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, c).SignedString(i.secret)
}

// Parse valida firma HS256, iss y exp/nbf (con 30s de tolerancia).
func (i *Issuer) Parse(raw string) (Principal, error) {
	opts := []jwtv5.ParserOption{
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithLeeway(leeway),
		jwtv5.WithTimeFunc(i.now),
	}
	if i.Iss != "" {
		opts = append(opts, jwtv5.WithIssuer(i.Iss))
	}

	var c Claims
	tok, err := jwtv5.ParseWithClaims(strings.TrimSpace(raw), &c, func(*jwtv5.Token) (any, error) {
		return i.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return Principal{}, ErrExpiredToken
		}
		return Principal{}, ErrInvalidToken
	}
	if !tok.Valid {
		return Principal{}, ErrInvalidToken
	}
	if c.Subject == "" {
		return Principal{}, ErrMissingSubject
	}

	p := Principal{Subject: c.Subject, Username: c.Username, Roles: c.Roles}
	if c.TenantClass != "" {
		if class, err := domain.ParseTenantClass(c.TenantClass); err == nil {
			p.TenantClass = class
		}
	}
	return p, nil
}
