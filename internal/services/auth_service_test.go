package services

import (
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAccessToken(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret", JWTAccessExpiry: 15 * time.Minute}
	user := &models.User{ID: uuid.New(), Email: "m@example.com", Username: "mentor.mo", Role: models.RoleMentor}

	signed, err := SignAccessToken(cfg, user, time.Now())
	require.NoError(t, err)

	token, err := jwt.Parse(signed, func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	require.NoError(t, err)

	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, user.ID.String(), claims["sub"])
	assert.Equal(t, "mentor.mo", claims["name"])
	assert.Equal(t, "mentor", claims["role"])
}

func TestSignAccessToken_Expired(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret", JWTAccessExpiry: time.Minute}
	user := &models.User{ID: uuid.New()}

	signed, err := SignAccessToken(cfg, user, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = jwt.Parse(signed, func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestHashTokenIsStable(t *testing.T) {
	assert.Equal(t, hashToken("abc"), hashToken("abc"))
	assert.Len(t, hashToken("abc"), 64)
	assert.NotEqual(t, hashToken("abc"), hashToken("abd"))
}

func TestUsernamePattern(t *testing.T) {
	assert.True(t, usernamePattern.MatchString("calm_river.22"))
	assert.False(t, usernamePattern.MatchString("no"))
	assert.False(t, usernamePattern.MatchString("has space"))
}
