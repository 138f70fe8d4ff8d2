package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserIDContext(t *testing.T) {
	_, ok := UserID(context.Background())
	assert.False(t, ok)

	_, ok = UserID(WithUserID(context.Background(), ""))
	assert.False(t, ok)

	id, ok := UserID(WithUserID(context.Background(), "u1"))
	assert.True(t, ok)
	assert.Equal(t, "u1", id)
}

func TestVerifier_RoundTrip(t *testing.T) {
	v := NewVerifier("secret", "onyx")
	token, err := v.Sign("u1", time.Minute)
	require.NoError(t, err)

	userID, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}

func TestVerifier_Rejects(t *testing.T) {
	v := NewVerifier("secret", "")

	_, err := v.Verify("")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewVerifier("other-secret", "").Sign("u1", time.Minute)
	require.NoError(t, err)
	_, err = v.Verify(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := v.Sign("u1", -time.Minute)
	require.NoError(t, err)
	_, err = v.Verify(expired)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifier_WrongIssuer(t *testing.T) {
	token, err := NewVerifier("secret", "someone-else").Sign("u1", time.Minute)
	require.NoError(t, err)

	_, err = NewVerifier("secret", "onyx").Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifier_SubjectFallback(t *testing.T) {
	claims := jwt.RegisteredClaims{Subject: "u9", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	userID, err := NewVerifier("secret", "").Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u9", userID)
}
