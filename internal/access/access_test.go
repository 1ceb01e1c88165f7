package access

import (
	"context"
	"database/sql"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/devtime/server/internal/db/dbmock"
	apperrors "github.com/devtime/server/internal/errors"
	"github.com/devtime/server/internal/groups"
	"github.com/devtime/server/internal/models"
)

func newTestService(store *dbmock.Store) *Service {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewService(store, groups.NewService(store, logger), logger)
}

func TestCheckAdminBypassesGrants(t *testing.T) {
	store := new(dbmock.Store)
	svc := newTestService(store)

	count, err := svc.Check(context.Background(), &models.User{ID: 1, Role: models.RoleAdmin}, "anything")

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	store.AssertNotCalled(t, "GetGroupByName", mock.Anything, mock.Anything)
}

func TestCheckCountsAncestorGrants(t *testing.T) {
	store := new(dbmock.Store)
	store.On("GetGroupByName", mock.Anything, "github-org-core").Return(&models.Group{ID: 5, Name: "github-org-core"}, nil)
	store.On("ParentGroupIDs", mock.Anything, int64(5)).Return([]int64{3}, nil)
	store.On("ParentGroupIDs", mock.Anything, int64(3)).Return([]int64{}, nil)
	store.On("CountAccessGrants", mock.Anything, int64(7), int64(5), []int64{5, 3}).Return(2, nil)

	svc := newTestService(store)
	count, err := svc.Check(context.Background(), &models.User{ID: 7, Role: models.RoleUser}, "github-org-core")

	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCheckUnknownGroup(t *testing.T) {
	store := new(dbmock.Store)
	store.On("GetGroupByName", mock.Anything, "ghost").Return(nil, nil)

	svc := newTestService(store)
	_, err := svc.Check(context.Background(), &models.User{ID: 7, Role: models.RoleUser}, "ghost")

	assert.True(t, apperrors.IsNotFound(err))
}

func TestAuthorize(t *testing.T) {
	store := new(dbmock.Store)
	store.On("GetGroupByName", mock.Anything, "org").Return(&models.Group{ID: 1, Name: "org"}, nil)
	store.On("ParentGroupIDs", mock.Anything, int64(1)).Return([]int64{}, nil)
	store.On("CountAccessGrants", mock.Anything, int64(7), int64(1), []int64{1}).Return(0, nil)

	svc := newTestService(store)
	err := svc.Authorize(context.Background(), &models.User{ID: 7, Role: models.RoleUser}, "org")

	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestGrant(t *testing.T) {
	store := new(dbmock.Store)
	store.On("GetGroupByName", mock.Anything, "org").Return(&models.Group{ID: 1, Name: "org"}, nil)
	store.On("CreateGroupAccess", mock.Anything, &models.GroupAccess{UserID: 7, GroupID: 1, Recursive: true}).Return(nil)

	svc := newTestService(store)
	err := svc.Grant(context.Background(), 7, "org", true)

	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestToggle(t *testing.T) {
	t.Run("flips the flag", func(t *testing.T) {
		store := new(dbmock.Store)
		store.On("GetGroupByName", mock.Anything, "org").Return(&models.Group{ID: 1, Name: "org"}, nil)
		store.On("GetGroupAccess", mock.Anything, int64(7), int64(1)).Return(&models.GroupAccess{UserID: 7, GroupID: 1, Recursive: false}, nil)
		store.On("SetGroupAccessRecursive", mock.Anything, int64(7), int64(1), true).Return(nil)

		svc := newTestService(store)
		err := svc.Toggle(context.Background(), 7, "org")

		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("missing grant is not created", func(t *testing.T) {
		store := new(dbmock.Store)
		store.On("GetGroupByName", mock.Anything, "org").Return(&models.Group{ID: 1, Name: "org"}, nil)
		store.On("GetGroupAccess", mock.Anything, int64(7), int64(1)).Return(nil, nil)

		svc := newTestService(store)
		err := svc.Toggle(context.Background(), 7, "org")

		assert.True(t, apperrors.IsNotFound(err))
		store.AssertNotCalled(t, "CreateGroupAccess", mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "SetGroupAccessRecursive", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRevokeMissingGrant(t *testing.T) {
	store := new(dbmock.Store)
	store.On("GetGroupByName", mock.Anything, "org").Return(&models.Group{ID: 1, Name: "org"}, nil)
	store.On("DeleteGroupAccess", mock.Anything, int64(7), int64(1)).Return(sql.ErrNoRows)

	svc := newTestService(store)
	err := svc.Revoke(context.Background(), 7, "org")

	assert.True(t, apperrors.IsNotFound(err))
}
