package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/devtime/server/internal/errors"
	"github.com/devtime/server/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	user := &models.User{ID: 7, Role: models.RoleAdmin}

	token, err := svc.Issue(user)
	require.NoError(t, err)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	svc := NewTokenService("secret", -time.Hour)

	token, err := svc.Issue(&models.User{ID: 7, Role: models.RoleUser})
	require.NoError(t, err)

	_, err = svc.Parse(token)
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestParseRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-a", time.Hour)
	parser := NewTokenService("secret-b", time.Hour)

	token, err := issuer.Issue(&models.User{ID: 7, Role: models.RoleUser})
	require.NoError(t, err)

	_, err = parser.Parse(token)
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestParseRejectsGarbage(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	_, err := svc.Parse("not-a-token")
	assert.True(t, apperrors.IsUnauthorized(err))
}
