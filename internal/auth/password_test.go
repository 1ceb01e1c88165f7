package auth

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/devtime/server/internal/db"
	"github.com/devtime/server/internal/db/dbmock"
	apperrors "github.com/devtime/server/internal/errors"
	"github.com/devtime/server/internal/models"
)

func newTestAuthService(store *dbmock.Store) *Service {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	tokens := NewTokenService("test-secret", time.Hour)
	return NewService(store, tokens, bcrypt.MinCost, logger)
}

func TestRegister(t *testing.T) {
	t.Run("creates user and issues token", func(t *testing.T) {
		store := new(dbmock.Store)
		store.On("CreateUser", mock.Anything, mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
			args.Get(1).(*models.User).ID = 7
		}).Return(nil)

		svc := newTestAuthService(store)
		user, token, err := svc.Register(context.Background(), "ada", "correct horse")

		require.NoError(t, err)
		assert.Equal(t, int64(7), user.ID)
		assert.Equal(t, models.RoleUser, user.Role)
		assert.NotEmpty(t, user.PasswordHash)
		assert.NotEqual(t, "correct horse", user.PasswordHash)
		assert.NotEmpty(t, token)
	})

	t.Run("validation", func(t *testing.T) {
		svc := newTestAuthService(new(dbmock.Store))
		_, _, err := svc.Register(context.Background(), "", "short")

		appErr, ok := err.(*apperrors.AppError)
		require.True(t, ok)
		assert.Contains(t, appErr.Fields["username"], "required")
		assert.Contains(t, appErr.Fields["password"], "too_short")
	})

	t.Run("duplicate username", func(t *testing.T) {
		store := new(dbmock.Store)
		store.On("CreateUser", mock.Anything, mock.AnythingOfType("*models.User")).Return(db.ErrDuplicate)

		svc := newTestAuthService(store)
		_, _, err := svc.Register(context.Background(), "ada", "correct horse")

		assert.True(t, apperrors.IsConflict(err))
	})
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		store := new(dbmock.Store)
		store.On("GetUserByUsername", mock.Anything, "ada").Return(&models.User{ID: 7, Username: "ada", PasswordHash: string(hash), Role: models.RoleUser}, nil)

		svc := newTestAuthService(store)
		user, token, err := svc.Login(context.Background(), "ada", "correct horse")

		require.NoError(t, err)
		assert.Equal(t, int64(7), user.ID)
		assert.NotEmpty(t, token)
	})

	t.Run("wrong password", func(t *testing.T) {
		store := new(dbmock.Store)
		store.On("GetUserByUsername", mock.Anything, "ada").Return(&models.User{ID: 7, Username: "ada", PasswordHash: string(hash)}, nil)

		svc := newTestAuthService(store)
		_, _, err := svc.Login(context.Background(), "ada", "battery staple")

		assert.True(t, apperrors.IsUnauthorized(err))
	})

	t.Run("unknown user", func(t *testing.T) {
		store := new(dbmock.Store)
		store.On("GetUserByUsername", mock.Anything, "ghost").Return(nil, nil)

		svc := newTestAuthService(store)
		_, _, err := svc.Login(context.Background(), "ghost", "whatever")

		assert.True(t, apperrors.IsUnauthorized(err))
	})

	t.Run("oauth-only user has no password", func(t *testing.T) {
		store := new(dbmock.Store)
		store.On("GetUserByUsername", mock.Anything, "ada").Return(&models.User{ID: 7, Username: "ada"}, nil)

		svc := newTestAuthService(store)
		_, _, err := svc.Login(context.Background(), "ada", "correct horse")

		assert.True(t, apperrors.IsUnauthorized(err))
	})
}
