// Package dbmock provides a testify mock of db.Store shared by the
// service tests.
package dbmock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/devtime/server/internal/db"
	"github.com/devtime/server/internal/models"
)

type Store struct {
	mock.Mock
}

var _ db.Store = (*Store)(nil)

func (m *Store) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *Store) SaveEmail(ctx context.Context, userID int64, email string) error {
	args := m.Called(ctx, userID, email)
	return args.Error(0)
}

func (m *Store) ListEmails(ctx context.Context, userID int64) ([]*models.Email, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Email), args.Error(1)
}

func (m *Store) CreateSyncClient(ctx context.Context, client *models.SyncClient) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *Store) GetSyncClientByKey(ctx context.Context, apiKey string) (*models.SyncClient, error) {
	args := m.Called(ctx, apiKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SyncClient), args.Error(1)
}

func (m *Store) ListSyncClients(ctx context.Context) ([]*models.SyncClient, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SyncClient), args.Error(1)
}

func (m *Store) DeleteSyncClient(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *Store) CreateGroup(ctx context.Context, name string) (*models.Group, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Group), args.Error(1)
}

func (m *Store) GetGroupByName(ctx context.Context, name string) (*models.Group, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Group), args.Error(1)
}

func (m *Store) GetGroupByID(ctx context.Context, id int64) (*models.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Group), args.Error(1)
}

func (m *Store) ListGroups(ctx context.Context) ([]*models.Group, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Group), args.Error(1)
}

func (m *Store) CreateGroupEdge(ctx context.Context, parentID, childID int64) error {
	args := m.Called(ctx, parentID, childID)
	return args.Error(0)
}

func (m *Store) ChildGroupIDs(ctx context.Context, groupID int64) ([]int64, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *Store) ParentGroupIDs(ctx context.Context, groupID int64) ([]int64, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *Store) GetGroupAccess(ctx context.Context, userID, groupID int64) (*models.GroupAccess, error) {
	args := m.Called(ctx, userID, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GroupAccess), args.Error(1)
}

func (m *Store) ListGroupAccessesForUser(ctx context.Context, userID int64) ([]*models.GroupAccess, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.GroupAccess), args.Error(1)
}

func (m *Store) CreateGroupAccess(ctx context.Context, access *models.GroupAccess) error {
	args := m.Called(ctx, access)
	return args.Error(0)
}

func (m *Store) SetGroupAccessRecursive(ctx context.Context, userID, groupID int64, recursive bool) error {
	args := m.Called(ctx, userID, groupID, recursive)
	return args.Error(0)
}

func (m *Store) DeleteGroupAccess(ctx context.Context, userID, groupID int64) error {
	args := m.Called(ctx, userID, groupID)
	return args.Error(0)
}

func (m *Store) CountAccessGrants(ctx context.Context, userID, groupID int64, ancestorIDs []int64) (int, error) {
	args := m.Called(ctx, userID, groupID, ancestorIDs)
	return args.Int(0), args.Error(1)
}

func (m *Store) GetRepository(ctx context.Context, id int64) (*models.Repository, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Repository), args.Error(1)
}

func (m *Store) GetRepositoryBySlug(ctx context.Context, platform, owner, slug string) (*models.Repository, error) {
	args := m.Called(ctx, platform, owner, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Repository), args.Error(1)
}

func (m *Store) GetRepositoriesByIDs(ctx context.Context, ids []int64) ([]*models.Repository, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Repository), args.Error(1)
}

func (m *Store) ListRepositories(ctx context.Context) ([]*models.Repository, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Repository), args.Error(1)
}

func (m *Store) CreateRepository(ctx context.Context, repo *models.Repository) error {
	args := m.Called(ctx, repo)
	return args.Error(0)
}

func (m *Store) ReplaceRepository(ctx context.Context, oldID int64, repo *models.Repository, batch []db.CommitInsert) error {
	args := m.Called(ctx, oldID, repo, batch)
	return args.Error(0)
}

func (m *Store) DeleteRepository(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *Store) ClaimRepository(ctx context.Context, repoID, clientID int64) (bool, error) {
	args := m.Called(ctx, repoID, clientID)
	return args.Bool(0), args.Error(1)
}

func (m *Store) RepositoryIDsForGroups(ctx context.Context, groupIDs []int64) ([]int64, error) {
	args := m.Called(ctx, groupIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *Store) SaveCommitBatch(ctx context.Context, repoID int64, batch []db.CommitInsert) error {
	args := m.Called(ctx, repoID, batch)
	return args.Error(0)
}

func (m *Store) CommitCount(ctx context.Context, repoID int64) (int, error) {
	args := m.Called(ctx, repoID)
	return args.Int(0), args.Error(1)
}

func (m *Store) LatestCommit(ctx context.Context, repoID int64) (*models.Commit, error) {
	args := m.Called(ctx, repoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Commit), args.Error(1)
}

func (m *Store) CommitHashes(ctx context.Context, repoID int64) ([]string, error) {
	args := m.Called(ctx, repoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *Store) TimeSampleFacts(ctx context.Context, repoIDs []int64, start, end int64) ([]models.SampleFact, error) {
	args := m.Called(ctx, repoIDs, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SampleFact), args.Error(1)
}

func (m *Store) FileEditFacts(ctx context.Context, repoIDs []int64, start, end int64) ([]models.EditFact, error) {
	args := m.Called(ctx, repoIDs, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.EditFact), args.Error(1)
}

func (m *Store) ComparisonFacts(ctx context.Context, repoIDs []int64, start, end int64) ([]models.ComparisonFact, error) {
	args := m.Called(ctx, repoIDs, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ComparisonFact), args.Error(1)
}

func (m *Store) ExportRows(ctx context.Context, repoIDs []int64, start, end int64) ([]models.ExportRow, error) {
	args := m.Called(ctx, repoIDs, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ExportRow), args.Error(1)
}
