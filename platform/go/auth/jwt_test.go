package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
)

func signHS256(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	require.NoError(t, err)
	return signed
}

func TestHMACTokenVerifier(t *testing.T) {
	t.Parallel()

	secret := []byte("test-secret")
	verify := HMACTokenVerifier(secret)

	signed := signHS256(t, secret, jwt.MapClaims{
		"sub":       "user-1",
		"tenant_id": "11111111-1111-1111-1111-111111111111",
		"exp":       time.Now().Add(time.Hour).Unix(),
	})

	claims, err := verify(context.Background(), signed)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims["sub"])
	require.Equal(t, "11111111-1111-1111-1111-111111111111", claims["tenant_id"])
}

func TestHMACTokenVerifierRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	verify := HMACTokenVerifier([]byte("right"))
	signed := signHS256(t, []byte("wrong"), jwt.MapClaims{"sub": "user-1"})

	_, err := verify(context.Background(), signed)
	require.Error(t, err)
}

func TestHMACTokenVerifierRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	secret := []byte("test-secret")
	verify := HMACTokenVerifier(secret)
	signed := signHS256(t, secret, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	_, err := verify(context.Background(), signed)
	require.Error(t, err)
}

func TestHMACTokenVerifierRejectsNonHMACAlg(t *testing.T) {
	t.Parallel()

	verify := HMACTokenVerifier([]byte("secret"))
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "user-1"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = verify(context.Background(), signed)
	require.Error(t, err)
}

func TestHMACTokenVerifierPanicsOnEmptySecret(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		HMACTokenVerifier(nil)
	})
}
