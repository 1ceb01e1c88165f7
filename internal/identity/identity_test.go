package identity

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/devtime/server/internal/db"
	"github.com/devtime/server/internal/db/dbmock"
	apperrors "github.com/devtime/server/internal/errors"
	"github.com/devtime/server/internal/models"
)

func newTestService(store *dbmock.Store) *Service {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewService(store, logger)
}

func TestLinkEmails(t *testing.T) {
	t.Run("links every non-empty email", func(t *testing.T) {
		store := new(dbmock.Store)
		store.On("SaveEmail", mock.Anything, int64(7), "ada@example.com").Return(nil)
		store.On("SaveEmail", mock.Anything, int64(7), "ada@work.example").Return(nil)

		svc := newTestService(store)
		err := svc.LinkEmails(context.Background(), 7, []string{"ada@example.com", "", "ada@work.example"})

		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("claimed email is a conflict", func(t *testing.T) {
		store := new(dbmock.Store)
		store.On("SaveEmail", mock.Anything, int64(7), "ada@example.com").Return(db.ErrDuplicate)

		svc := newTestService(store)
		err := svc.LinkEmails(context.Background(), 7, []string{"ada@example.com"})

		assert.True(t, apperrors.IsConflict(err))
	})
}

func TestCanonicalName(t *testing.T) {
	t.Run("linked email resolves to the username", func(t *testing.T) {
		store := new(dbmock.Store)
		store.On("GetUserByEmail", mock.Anything, "ada@example.com").Return(&models.User{ID: 7, Username: "ada"}, nil)

		svc := newTestService(store)
		name, err := svc.CanonicalName(context.Background(), "ada@example.com")

		require.NoError(t, err)
		assert.Equal(t, "ada", name)
	})

	t.Run("unlinked email stays itself", func(t *testing.T) {
		store := new(dbmock.Store)
		store.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)

		svc := newTestService(store)
		name, err := svc.CanonicalName(context.Background(), "ghost@example.com")

		require.NoError(t, err)
		assert.Equal(t, "ghost@example.com", name)
	})
}
