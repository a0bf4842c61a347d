package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	at, err := NewAccessToken("s3cret", "admin", "ADMIN", time.Minute)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Minute), at.Exp, 5*time.Second)

	claims, err := ParseAccessToken("s3cret", at.Token)
	require.NoError(t, err)
	require.Equal(t, "admin", claims["sub"])
	require.Equal(t, "ADMIN", claims["role"])
}

func TestParseAccessToken_Rejects(t *testing.T) {
	at, err := NewAccessToken("s3cret", "admin", "ADMIN", time.Minute)
	require.NoError(t, err)
	_, err = ParseAccessToken("other", at.Token)
	require.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewAccessToken("s3cret", "admin", "ADMIN", -time.Minute)
	require.NoError(t, err)
	_, err = ParseAccessToken("s3cret", expired.Token)
	require.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"role": "ADMIN"})
	raw, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseAccessToken("s3cret", raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestSecretHashing(t *testing.T) {
	h, err := HashSecret("open-sesame", bcrypt.MinCost)
	require.NoError(t, err)
	require.True(t, VerifySecret(h, "open-sesame"))
	require.False(t, VerifySecret(h, "open-sesame "))
	require.False(t, VerifySecret(h, ""))
}
