// Package token issues and verifies the signed session tokens that carry a
// user's identity and role.
package token

import (
	"fmt"
	"time"

	"votebox/internal/apperr"

	"github.com/golang-jwt/jwt/v4"
)

// Claims binds identity and role to the standard expiry claims. The JSON
// field names match the wire format clients already depend on.
type Claims struct {
	UserID uint   `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type Service struct {
	secret []byte
	ttl    time.Duration
}

func NewService(secret string, ttl time.Duration) *Service {
	if secret == "" {
		panic("token: secret key cannot be empty")
	}
	return &Service{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the given identity, valid for the service TTL.
func (s *Service) Issue(userID uint, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify parses tok and returns its identity and role. Any failure —
// malformed input, wrong algorithm, bad signature, expiry — comes back as an
// Unauthenticated kind so callers don't have to distinguish.
func (s *Service) Verify(tok string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthenticated, "Invalid Token", err)
	}
	if !parsed.Valid || claims.UserID == 0 {
		return nil, apperr.E(apperr.KindUnauthenticated, "Invalid Token")
	}
	return claims, nil
}
