package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

// HMACTokenVerifier returns a VerifyFunc that validates HS256-signed tokens
// against the shared signing secret.
func HMACTokenVerifier(secret []byte) VerifyFunc {
	if len(secret) == 0 {
		panic("auth.HMACTokenVerifier: secret must not be empty")
	}

	return func(ctx context.Context, tokenString string) (map[string]interface{}, error) {
		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
			}
			return secret, nil
		})
		if err != nil {
			return nil, fmt.Errorf("verify token: %w", err)
		}
		if !token.Valid {
			return nil, fmt.Errorf("token is not valid")
		}

		return map[string]interface{}(claims), nil
	}
}
