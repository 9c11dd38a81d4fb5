// Package token issues and verifies the signed bearer tokens that carry an
// authenticated identity between requests. Tokens are stateless: validity is
// determined entirely by the HMAC signature and the expiry claim, with no
// server-side session store.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"storefront/internal/models"
)

var (
	ErrMalformed        = errors.New("token is malformed")
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrExpired          = errors.New("token has expired")
)

// Service signs and verifies session tokens with a shared HS256 secret.
// The secret is injected once at construction and never read from ambient
// process state, so tests can substitute their own.
type Service struct {
	secret []byte
	ttl    time.Duration
}

func NewService(secret []byte, ttl time.Duration) (*Service, error) {
	if len(secret) == 0 {
		return nil, errors.New("signing secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &Service{secret: secret, ttl: ttl}, nil
}

// Issue produces a compact signed token encoding the principal's id, email
// and role, valid for the configured TTL from now.
func (s *Service) Issue(p models.Principal) (string, error) {
	now := time.Now()
	claims := &models.Claims{
		UserID: p.ID,
		Email:  p.Email,
		Role:   p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of a token and returns the principal
// exactly as it was encoded at issuance. It performs no I/O; role changes made
// after issuance are not reflected until a new token is issued.
func (s *Service) Verify(tokenString string) (models.Principal, error) {
	claims := &models.Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return models.Principal{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return models.Principal{}, ErrInvalidSignature
		default:
			return models.Principal{}, ErrMalformed
		}
	}
	if !tok.Valid {
		return models.Principal{}, ErrInvalidSignature
	}
	if !claims.Role.Valid() {
		return models.Principal{}, ErrMalformed
	}

	return claims.Principal(), nil
}
