package ingest

import (
	"context"
	"errors"
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

func validBatch() *models.NewRepositoryData {
	return &models.NewRepositoryData{
		Platform: "github",
		Owner:    "org",
		Slug:     "core",
		Commits: []models.NewCommitData{
			{
				Author:  "Ada Lovelace <ada@example.com>",
				Branch:  "main",
				Message: "initial",
				Hash:    "c1",
				Time:    1000,
				Files: []models.NewFileData{
					{
						Path:       "src/a.go",
						Status:     "modified",
						TimeTotal:  3600,
						AddedLines: 10,
						Timeline:   []models.NewSampleData{{Timestamp: 1000, TimeSeconds: 3600}},
					},
				},
			},
		},
	}
}

func TestParseAuthor(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		name, email, err := ParseAuthor("Ada Lovelace <ada@example.com>")
		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", name)
		assert.Equal(t, "ada@example.com", email)
	})

	invalid := []string{
		"",
		"ada@example.com",
		"<ada@example.com>",
		"Ada Lovelace",
	}
	for _, author := range invalid {
		t.Run("invalid "+author, func(t *testing.T) {
			_, _, err := ParseAuthor(author)
			assert.Error(t, err)
		})
	}
}

func TestIngestBatchUnknownKey(t *testing.T) {
	store := new(dbmock.Store)
	store.On("GetSyncClientByKey", mock.Anything, "bad-key").Return(nil, nil)

	svc := newTestService(store)
	_, err := svc.IngestBatch(context.Background(), "bad-key", validBatch(), true)

	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestIngestBatchValidation(t *testing.T) {
	store := new(dbmock.Store)
	store.On("GetSyncClientByKey", mock.Anything, "key").Return(&models.SyncClient{ID: 1, APIKey: "key"}, nil)

	data := validBatch()
	data.Slug = ""
	data.Commits[0].Branch = ""
	data.Commits[0].Author = "not-an-author"
	data.Commits[0].Files[0].Path = ""

	svc := newTestService(store)
	_, err := svc.IngestBatch(context.Background(), "key", data, true)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrInvalidInput, appErr.Type)
	assert.Contains(t, appErr.Fields["repo"], "required")
	assert.Contains(t, appErr.Fields["commits[0].branch"], "required")
	assert.Contains(t, appErr.Fields["commits[0].author"], "format")
	assert.Contains(t, appErr.Fields["commits[0].files[0].path"], "required")
	store.AssertNotCalled(t, "SaveCommitBatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestIngestBatchCreateReplacesExisting(t *testing.T) {
	store := new(dbmock.Store)
	clientID := int64(1)
	store.On("GetSyncClientByKey", mock.Anything, "key").Return(&models.SyncClient{ID: clientID, APIKey: "key"}, nil)
	store.On("GetRepositoryBySlug", mock.Anything, "github", "org", "core").Return(&models.Repository{ID: 9, GroupID: 4}, nil)
	store.On("CreateGroup", mock.Anything, "github-org-core").Return(&models.Group{ID: 4, Name: "github-org-core"}, nil)
	store.On("ReplaceRepository", mock.Anything, int64(9), mock.AnythingOfType("*models.Repository"), mock.AnythingOfType("[]db.CommitInsert")).Run(func(args mock.Arguments) {
		repo := args.Get(2).(*models.Repository)
		repo.ID = 10
	}).Return(nil)
	store.On("CommitCount", mock.Anything, int64(10)).Return(1, nil)
	store.On("GetGroupByID", mock.Anything, int64(4)).Return(&models.Group{ID: 4, Name: "github-org-core"}, nil)

	svc := newTestService(store)
	view, err := svc.IngestBatch(context.Background(), "key", validBatch(), true)

	require.NoError(t, err)
	assert.Equal(t, int64(10), view.ID)
	assert.Equal(t, "github-org-core", view.Group)
	assert.Equal(t, 1, view.CommitCount)
	store.AssertCalled(t, "ReplaceRepository", mock.Anything, int64(9), mock.Anything, mock.Anything)
}

func TestIngestBatchCreateKeepsExistingOnFailedBatch(t *testing.T) {
	store := new(dbmock.Store)
	store.On("GetSyncClientByKey", mock.Anything, "key").Return(&models.SyncClient{ID: 1, APIKey: "key"}, nil)
	store.On("GetRepositoryBySlug", mock.Anything, "github", "org", "core").Return(&models.Repository{ID: 9, GroupID: 4}, nil)
	store.On("CreateGroup", mock.Anything, "github-org-core").Return(&models.Group{ID: 4, Name: "github-org-core"}, nil)
	store.On("ReplaceRepository", mock.Anything, int64(9), mock.AnythingOfType("*models.Repository"), mock.AnythingOfType("[]db.CommitInsert")).Return(errors.New("disk full"))

	svc := newTestService(store)
	_, err := svc.IngestBatch(context.Background(), "key", validBatch(), true)

	require.Error(t, err)
	// The old repository must never be removed outside the replace
	// transaction, or a failed batch would destroy it.
	store.AssertNotCalled(t, "DeleteRepository", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "CreateRepository", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "SaveCommitBatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestIngestBatchCreateFresh(t *testing.T) {
	store := new(dbmock.Store)
	store.On("GetSyncClientByKey", mock.Anything, "key").Return(&models.SyncClient{ID: 1, APIKey: "key"}, nil)
	store.On("GetRepositoryBySlug", mock.Anything, "github", "org", "core").Return(nil, nil)
	store.On("CreateGroup", mock.Anything, "github-org-core").Return(&models.Group{ID: 4, Name: "github-org-core"}, nil)
	store.On("ReplaceRepository", mock.Anything, int64(0), mock.AnythingOfType("*models.Repository"), mock.AnythingOfType("[]db.CommitInsert")).Run(func(args mock.Arguments) {
		args.Get(2).(*models.Repository).ID = 10
	}).Return(nil)
	store.On("CommitCount", mock.Anything, int64(10)).Return(1, nil)
	store.On("GetGroupByID", mock.Anything, int64(4)).Return(&models.Group{ID: 4, Name: "github-org-core"}, nil)

	svc := newTestService(store)
	view, err := svc.IngestBatch(context.Background(), "key", validBatch(), true)

	require.NoError(t, err)
	assert.Equal(t, int64(10), view.ID)
}

func TestIngestBatchUpdate(t *testing.T) {
	t.Run("unknown repository", func(t *testing.T) {
		store := new(dbmock.Store)
		store.On("GetSyncClientByKey", mock.Anything, "key").Return(&models.SyncClient{ID: 1, APIKey: "key"}, nil)
		store.On("GetRepositoryBySlug", mock.Anything, "github", "org", "core").Return(nil, nil)

		svc := newTestService(store)
		_, err := svc.IngestBatch(context.Background(), "key", validBatch(), false)

		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("foreign owner is rejected", func(t *testing.T) {
		store := new(dbmock.Store)
		otherClient := int64(2)
		store.On("GetSyncClientByKey", mock.Anything, "key").Return(&models.SyncClient{ID: 1, APIKey: "key"}, nil)
		store.On("GetRepositoryBySlug", mock.Anything, "github", "org", "core").Return(&models.Repository{ID: 9, GroupID: 4, SyncClientID: &otherClient}, nil)

		svc := newTestService(store)
		_, err := svc.IngestBatch(context.Background(), "key", validBatch(), false)

		assert.True(t, apperrors.IsUnauthorized(err))
		store.AssertNotCalled(t, "SaveCommitBatch", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("orphan is claimed", func(t *testing.T) {
		store := new(dbmock.Store)
		store.On("GetSyncClientByKey", mock.Anything, "key").Return(&models.SyncClient{ID: 1, APIKey: "key"}, nil)
		store.On("GetRepositoryBySlug", mock.Anything, "github", "org", "core").Return(&models.Repository{ID: 9, GroupID: 4}, nil)
		store.On("ClaimRepository", mock.Anything, int64(9), int64(1)).Return(true, nil)
		store.On("SaveCommitBatch", mock.Anything, int64(9), mock.AnythingOfType("[]db.CommitInsert")).Return(nil)
		store.On("CommitCount", mock.Anything, int64(9)).Return(3, nil)
		store.On("GetGroupByID", mock.Anything, int64(4)).Return(&models.Group{ID: 4, Name: "github-org-core"}, nil)

		svc := newTestService(store)
		view, err := svc.IngestBatch(context.Background(), "key", validBatch(), false)

		require.NoError(t, err)
		assert.Equal(t, 3, view.CommitCount)
	})

	t.Run("lost claim race against another client", func(t *testing.T) {
		store := new(dbmock.Store)
		winner := int64(2)
		store.On("GetSyncClientByKey", mock.Anything, "key").Return(&models.SyncClient{ID: 1, APIKey: "key"}, nil)
		store.On("GetRepositoryBySlug", mock.Anything, "github", "org", "core").Return(&models.Repository{ID: 9, GroupID: 4}, nil)
		store.On("ClaimRepository", mock.Anything, int64(9), int64(1)).Return(false, nil)
		store.On("GetRepository", mock.Anything, int64(9)).Return(&models.Repository{ID: 9, GroupID: 4, SyncClientID: &winner}, nil)

		svc := newTestService(store)
		_, err := svc.IngestBatch(context.Background(), "key", validBatch(), false)

		assert.True(t, apperrors.IsUnauthorized(err))
	})
}

func TestBuildInserts(t *testing.T) {
	batch, err := buildInserts(validBatch().Commits)

	require.NoError(t, err)
	require.Len(t, batch, 1)
	commit := batch[0].Commit
	assert.Equal(t, "c1", commit.Hash)
	assert.Equal(t, "ada@example.com", commit.AuthorEmail)
	assert.Equal(t, "Ada Lovelace", commit.GitUserName)
	assert.Equal(t, "main", commit.Branch)

	require.Len(t, batch[0].Files, 1)
	file := batch[0].Files[0]
	assert.Equal(t, "src/a.go", file.Edit.Path)
	assert.Equal(t, int64(3600), file.Edit.TimeSeconds)
	require.Len(t, file.Samples, 1)
	assert.Equal(t, int64(3600), file.Samples[0].TimeSeconds)
}

func TestCommitHashInfo(t *testing.T) {
	t.Run("empty repository yields zero info", func(t *testing.T) {
		store := new(dbmock.Store)
		store.On("GetSyncClientByKey", mock.Anything, "key").Return(&models.SyncClient{ID: 1, APIKey: "key"}, nil)
		store.On("GetRepositoryBySlug", mock.Anything, "github", "org", "core").Return(&models.Repository{ID: 9}, nil)
		store.On("LatestCommit", mock.Anything, int64(9)).Return(nil, nil)

		svc := newTestService(store)
		info, err := svc.CommitHashInfo(context.Background(), "key", "github", "org", "core")

		require.NoError(t, err)
		assert.Equal(t, "", info.Hash)
		assert.Equal(t, int64(0), info.Timestamp)
		assert.NotNil(t, info.TrackedCommitHashes)
		assert.Empty(t, info.TrackedCommitHashes)
	})

	t.Run("tracked repository", func(t *testing.T) {
		store := new(dbmock.Store)
		store.On("GetSyncClientByKey", mock.Anything, "key").Return(&models.SyncClient{ID: 1, APIKey: "key"}, nil)
		store.On("GetRepositoryBySlug", mock.Anything, "github", "org", "core").Return(&models.Repository{ID: 9}, nil)
		store.On("LatestCommit", mock.Anything, int64(9)).Return(&models.Commit{Hash: "c2", Timestamp: 2000}, nil)
		store.On("CommitHashes", mock.Anything, int64(9)).Return([]string{"c1", "c2"}, nil)

		svc := newTestService(store)
		info, err := svc.CommitHashInfo(context.Background(), "key", "github", "org", "core")

		require.NoError(t, err)
		assert.Equal(t, "c2", info.Hash)
		assert.Equal(t, int64(2000), info.Timestamp)
		assert.Equal(t, []string{"c1", "c2"}, info.TrackedCommitHashes)
	})
}
