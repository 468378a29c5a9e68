package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired is returned when the token's expiry has passed.
	ErrTokenExpired = errors.New("token has expired")
	// ErrTokenMalformed is returned when the signature or structure is invalid.
	ErrTokenMalformed = errors.New("token is malformed")
)

// Claims is the payload carried by every issued token.
type Claims struct {
	UserID uint64 `json:"id"`
	jwt.RegisteredClaims
}

// Service issues and verifies HMAC-signed identity tokens. It holds the
// shared signing secret and never touches storage.
type Service struct {
	secret   []byte
	lifetime time.Duration
}

// NewService creates a token Service with the given symmetric secret and
// token lifetime.
func NewService(secret string, lifetime time.Duration) *Service {
	return &Service{
		secret:   []byte(secret),
		lifetime: lifetime,
	}
}

// Issue produces a signed token encoding the user id, an issued-at timestamp
// and an expiry lifetime from now.
func (s *Service) Issue(userID uint64) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

// Verify validates signature and expiry and returns the bare user id claim.
// The caller is responsible for resolving the id to a live account.
func (s *Service) Verify(tokenString string) (uint64, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrTokenMalformed
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return 0, ErrTokenMalformed
	}

	return claims.UserID, nil
}
