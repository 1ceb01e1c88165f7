package groups

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/devtime/server/internal/db/dbmock"
	apperrors "github.com/devtime/server/internal/errors"
	"github.com/devtime/server/internal/models"
)

func newTestService(store *dbmock.Store) *Service {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewService(store, logger)
}

func TestLeafGroupName(t *testing.T) {
	assert.Equal(t, "github-org-core", LeafGroupName("github", "org", "core"))
	// Subgroup paths in the owner flatten to dashes.
	assert.Equal(t, "gitlab-org-sub-core", LeafGroupName("gitlab", "org/sub", "core"))
}

func TestDescendantsDeduplicatesDiamond(t *testing.T) {
	store := new(dbmock.Store)
	// 1 → {2, 3}, both → 4.
	store.On("ChildGroupIDs", mock.Anything, int64(1)).Return([]int64{2, 3}, nil)
	store.On("ChildGroupIDs", mock.Anything, int64(2)).Return([]int64{4}, nil)
	store.On("ChildGroupIDs", mock.Anything, int64(3)).Return([]int64{4}, nil)
	store.On("ChildGroupIDs", mock.Anything, int64(4)).Return([]int64{}, nil)

	svc := newTestService(store)
	ids, err := svc.Descendants(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4}, ids)
}

func TestAncestors(t *testing.T) {
	store := new(dbmock.Store)
	store.On("ParentGroupIDs", mock.Anything, int64(5)).Return([]int64{3}, nil)
	store.On("ParentGroupIDs", mock.Anything, int64(3)).Return([]int64{1}, nil)
	store.On("ParentGroupIDs", mock.Anything, int64(1)).Return([]int64{}, nil)

	svc := newTestService(store)
	ids, err := svc.Ancestors(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, []int64{5, 3, 1}, ids)
}

func TestTraversalTruncatesAtMaxDepth(t *testing.T) {
	store := new(dbmock.Store)
	for i := int64(1); i <= MaxDepth+10; i++ {
		store.On("ChildGroupIDs", mock.Anything, i).Return([]int64{i + 1}, nil)
	}

	svc := newTestService(store)
	ids, err := svc.Descendants(context.Background(), 1)

	require.NoError(t, err)
	// The root plus one node per allowed level, then the partial result.
	assert.Len(t, ids, MaxDepth+1)
}

func TestAddEdge(t *testing.T) {
	t.Run("creates edge", func(t *testing.T) {
		store := new(dbmock.Store)
		store.On("GetGroupByName", mock.Anything, "parent").Return(&models.Group{ID: 1, Name: "parent"}, nil)
		store.On("GetGroupByName", mock.Anything, "child").Return(&models.Group{ID: 2, Name: "child"}, nil)
		store.On("ChildGroupIDs", mock.Anything, int64(2)).Return([]int64{}, nil)
		store.On("CreateGroupEdge", mock.Anything, int64(1), int64(2)).Return(nil)

		svc := newTestService(store)
		err := svc.AddEdge(context.Background(), "parent", "child")

		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("missing group", func(t *testing.T) {
		store := new(dbmock.Store)
		store.On("GetGroupByName", mock.Anything, "parent").Return(nil, nil)

		svc := newTestService(store)
		err := svc.AddEdge(context.Background(), "parent", "child")

		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("self edge is a cycle", func(t *testing.T) {
		store := new(dbmock.Store)
		store.On("GetGroupByName", mock.Anything, "a").Return(&models.Group{ID: 1, Name: "a"}, nil)

		svc := newTestService(store)
		err := svc.AddEdge(context.Background(), "a", "a")

		assert.True(t, apperrors.IsValidationError(err))
		store.AssertNotCalled(t, "CreateGroupEdge", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects edge closing a cycle", func(t *testing.T) {
		store := new(dbmock.Store)
		store.On("GetGroupByName", mock.Anything, "a").Return(&models.Group{ID: 1, Name: "a"}, nil)
		store.On("GetGroupByName", mock.Anything, "b").Return(&models.Group{ID: 2, Name: "b"}, nil)
		// b already reaches a.
		store.On("ChildGroupIDs", mock.Anything, int64(2)).Return([]int64{1}, nil)
		store.On("ChildGroupIDs", mock.Anything, int64(1)).Return([]int64{}, nil)

		svc := newTestService(store)
		err := svc.AddEdge(context.Background(), "a", "b")

		assert.True(t, apperrors.IsValidationError(err))
		store.AssertNotCalled(t, "CreateGroupEdge", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCreateGroupRequiresName(t *testing.T) {
	svc := newTestService(new(dbmock.Store))
	_, err := svc.CreateGroup(context.Background(), "")
	assert.True(t, apperrors.IsValidationError(err))
}

func TestRepositoryIDs(t *testing.T) {
	store := new(dbmock.Store)
	store.On("GetGroupByName", mock.Anything, "org").Return(&models.Group{ID: 1, Name: "org"}, nil)
	store.On("ChildGroupIDs", mock.Anything, int64(1)).Return([]int64{2}, nil)
	store.On("ChildGroupIDs", mock.Anything, int64(2)).Return([]int64{}, nil)
	store.On("RepositoryIDsForGroups", mock.Anything, []int64{1, 2}).Return([]int64{10, 11}, nil)

	svc := newTestService(store)
	ids, err := svc.RepositoryIDs(context.Background(), "org")

	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11}, ids)
}

func TestRepositoryIDsUnknownGroup(t *testing.T) {
	store := new(dbmock.Store)
	store.On("GetGroupByName", mock.Anything, "ghost").Return(nil, nil)

	svc := newTestService(store)
	_, err := svc.RepositoryIDs(context.Background(), "ghost")

	assert.True(t, apperrors.IsNotFound(err))
}
