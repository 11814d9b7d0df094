package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/FreshMarket/pkg/middleware"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", "identity", time.Hour)

	token, err := m.Generate("u-1", "buyer@example.com", middleware.RoleBuyerOwner, "sess-1")
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, middleware.RoleBuyerOwner, claims.Role)
	assert.Equal(t, "sess-1", claims.SessionID)
}

func TestJWTManager_Expired(t *testing.T) {
	m := NewJWTManager("secret", "", time.Minute)
	issued := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	token, err := m.Generate("u-1", "", middleware.RoleVendor, "")
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = m.Validate(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTManager_WrongSecretOrIssuer(t *testing.T) {
	token, err := NewJWTManager("secret", "identity", time.Hour).Generate("u-1", "", "", "")
	require.NoError(t, err)

	_, err = NewJWTManager("other", "identity", time.Hour).Validate(token)
	assert.Error(t, err)

	_, err = NewJWTManager("secret", "someone-else", time.Hour).Validate(token)
	assert.Error(t, err)
}

func TestJWTManager_RejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{UserID: "u-1", RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewJWTManager("secret", "", time.Hour).Validate(token)
	assert.Error(t, err)
}

func TestJWTManager_SubjectFallback(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "u-9",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	got, err := NewJWTManager("secret", "", time.Hour).Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u-9", got.UserID)
}

func TestJWTManager_TokenValidator(t *testing.T) {
	m := NewJWTManager("secret", "", time.Hour)
	token, err := m.Generate("u-1", "a@b.c", middleware.RoleBuyerManager, "sess-7")
	require.NoError(t, err)

	claims, err := m.TokenValidator()(token)
	require.NoError(t, err)
	assert.Equal(t, &middleware.Claims{UserID: "u-1", Email: "a@b.c", Role: middleware.RoleBuyerManager, SessionID: "sess-7"}, claims)

	_, err = m.TokenValidator()("garbage")
	assert.Error(t, err)
}
