package common

import (
	"errors"
	"fmt"
	"time"

	"infinite-experiment/bouncer/internal/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "bouncer"

var ErrNoSecret = errors.New("token secret is not configured")

// TokenSigner issues and validates HS256 bearer tokens for the ops API.
type TokenSigner struct {
	secretKey []byte
}

func NewTokenSigner(secretKey []byte) *TokenSigner {
	return &TokenSigner{secretKey: secretKey}
}

// Issue signs a token for operator valid for ttl.
func (s *TokenSigner) Issue(operator string, ttl time.Duration) (string, error) {
	if len(s.secretKey) == 0 {
		return "", ErrNoSecret
	}

	now := time.Now()
	claims := auth.OperatorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   operator,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Validate parses tokenString and checks signature, issuer and expiry.
func (s *TokenSigner) Validate(tokenString string) (*auth.OperatorClaims, error) {
	if len(s.secretKey) == 0 {
		return nil, ErrNoSecret
	}

	claims := &auth.OperatorClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("missing sub claim")
	}

	return claims, nil
}
