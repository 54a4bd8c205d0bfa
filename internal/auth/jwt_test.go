package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestGenerateTokenRoundTrip(t *testing.T) {
	secret := "test-secret"
	userID := "550e8400-e29b-41d4-a716-446655440000"

	tokenStr, expiresAt, err := GenerateToken(userID, secret, time.Hour)
	assert.NoError(t, err)
	assert.NotEmpty(t, tokenStr)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	assert.NoError(t, err)
	assert.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, userID, claims[claimSubject])
	assert.Equal(t, userID, claims[claimUserID])
}

func TestGenerateTokenValidation(t *testing.T) {
	_, _, err := GenerateToken("", "secret", time.Hour)
	assert.Error(t, err)

	_, _, err = GenerateToken("user", "", time.Hour)
	assert.Error(t, err)

	_, _, err = GenerateToken("user", "secret", 0)
	assert.Error(t, err)
}

func TestUserIDFromContext(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// No token set.
	_, err := UserIDFromContext(c)
	assert.Error(t, err)

	secret := "test-secret"
	userID := "user-123"
	tokenStr, _, err := GenerateToken(userID, secret, time.Minute)
	assert.NoError(t, err)

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	assert.NoError(t, err)
	c.Set("user", token)

	got, err := UserIDFromContext(c)
	assert.NoError(t, err)
	assert.Equal(t, userID, got)
}
