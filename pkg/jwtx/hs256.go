package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Signer signs session claims with a shared HMAC secret. Tenant-scoped
// and company-staff tokens use separate secrets so a leaked secret only
// exposes one class of session.
type Signer interface {
	Sign(Claims) (string, error)
}

// Verifier validates a compact token and returns its claims.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// HS256 is a symmetric Signer/Verifier pair over a single shared secret.
type HS256 struct {
	secret []byte
	issuer string
}

// NewHS256 builds an HMAC-SHA256 signer/verifier from a shared secret.
func NewHS256(secret, issuer string) (*HS256, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	return &HS256{secret: []byte(secret), issuer: issuer}, nil
}

// Sign produces a compact signed token for the given claims.
func (h *HS256) Sign(c Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := tok.SignedString(h.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a compact token. The signing method is
// pinned to HS256 so an attacker can't downgrade to "none" or confuse
// key types.
func (h *HS256) Verify(token string) (Claims, error) {
	var claims Claims

	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return h.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpired
		}
		return Claims{}, ErrInvalidToken
	}
	if !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}

	if h.issuer != "" && claims.Issuer != h.issuer {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}

// Multi returns a Verifier that tries each verifier in order and returns
// the first successful result. Used on endpoints shared between tenant
// and staff tokens.
func Multi(verifiers ...Verifier) Verifier {
	return multiVerifier(verifiers)
}

type multiVerifier []Verifier

func (m multiVerifier) Verify(token string) (Claims, error) {
	var lastErr error = ErrInvalidToken
	for _, v := range m {
		claims, err := v.Verify(token)
		if err == nil {
			return claims, nil
		}
		lastErr = err
	}
	return Claims{}, lastErr
}
