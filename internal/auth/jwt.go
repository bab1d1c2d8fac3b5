// Package auth issues and verifies the bearer tokens handed out at sign-up.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenExpiry is the default token lifetime.
const TokenExpiry = 7 * 24 * time.Hour

// Claims identify the wallet account a token was issued to.
type Claims struct {
	AccountID string `json:"account_id"`
	Address   string `json:"address"`
	jwt.RegisteredClaims
}

// GenerateToken signs a token for the account. Each token gets a unique ID
// so that it can be revoked on its own.
func GenerateToken(secret, accountID, address string) (string, error) {
	issued := time.Now()
	claims := Claims{
		AccountID: accountID,
		Address:   address,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   address,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(TokenExpiry)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies the signature and expiry of tokenStr and returns
// its claims. Only HMAC-signed tokens are accepted.
func ValidateToken(secret, tokenStr string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if claims.AccountID == "" || claims.ID == "" {
		return nil, errors.New("token is missing account or token id")
	}
	return claims, nil
}
