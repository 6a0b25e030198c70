package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestJWT_SessionToken_Roundtrip(t *testing.T) {
	j := NewJWT("secret", time.Hour)
	u := uuid.New()

	tok, jti, expiresAt, err := j.GenerateSessionToken(u)
	require.NoError(t, err)
	require.NotEmpty(t, jti)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	gotUser, gotJTI, err := j.ParseSessionToken(tok)
	require.NoError(t, err)
	require.Equal(t, u, gotUser)
	require.Equal(t, jti, gotJTI)
}

func TestJWT_DefaultTTL(t *testing.T) {
	j := NewJWT("secret", 0)
	require.Equal(t, defaultTTL, j.ttl)
}

func TestJWT_WrongSecret(t *testing.T) {
	tok, _, _, err := NewJWT("secret", time.Hour).GenerateSessionToken(uuid.New())
	require.NoError(t, err)

	_, _, err = NewJWT("other", time.Hour).ParseSessionToken(tok)
	require.Error(t, err)
}

func TestJWT_Expired(t *testing.T) {
	j := NewJWT("secret", time.Minute)
	issued := time.Now().Add(-time.Hour)
	j.now = func() time.Time { return issued }

	tok, _, _, err := j.GenerateSessionToken(uuid.New())
	require.NoError(t, err)

	j.now = time.Now
	_, _, err = j.ParseSessionToken(tok)
	require.Error(t, err)
}

func TestJWT_TokenType_Mismatch(t *testing.T) {
	j := NewJWT("secret", time.Hour)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID:    uuid.New(),
		TokenType: "access",
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, _, err = j.ParseSessionToken(signed)
	require.ErrorContains(t, err, "token type mismatch")
}

func TestJWT_Garbage(t *testing.T) {
	_, _, err := NewJWT("secret", time.Hour).ParseSessionToken("not-a-token")
	require.Error(t, err)
}
