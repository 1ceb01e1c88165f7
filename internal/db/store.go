package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/devtime/server/internal/models"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

type PostgresStore struct {
	db *sql.DB
}

// CommitInsert is one commit with its file edits and time samples,
// ready for a batched transactional insert.
type CommitInsert struct {
	Commit models.Commit
	Files  []FileInsert
}

type FileInsert struct {
	Edit    models.FileEdit
	Samples []models.TimeSample
}

// Store defines the interface for database operations
type Store interface {
	// User and identity operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SaveEmail(ctx context.Context, userID int64, email string) error
	ListEmails(ctx context.Context, userID int64) ([]*models.Email, error)

	// Sync client operations
	CreateSyncClient(ctx context.Context, client *models.SyncClient) error
	GetSyncClientByKey(ctx context.Context, apiKey string) (*models.SyncClient, error)
	ListSyncClients(ctx context.Context) ([]*models.SyncClient, error)
	DeleteSyncClient(ctx context.Context, id int64) error

	// Group operations
	CreateGroup(ctx context.Context, name string) (*models.Group, error)
	GetGroupByName(ctx context.Context, name string) (*models.Group, error)
	GetGroupByID(ctx context.Context, id int64) (*models.Group, error)
	ListGroups(ctx context.Context) ([]*models.Group, error)
	CreateGroupEdge(ctx context.Context, parentID, childID int64) error
	ChildGroupIDs(ctx context.Context, groupID int64) ([]int64, error)
	ParentGroupIDs(ctx context.Context, groupID int64) ([]int64, error)

	// Group access operations
	GetGroupAccess(ctx context.Context, userID, groupID int64) (*models.GroupAccess, error)
	ListGroupAccessesForUser(ctx context.Context, userID int64) ([]*models.GroupAccess, error)
	CreateGroupAccess(ctx context.Context, access *models.GroupAccess) error
	SetGroupAccessRecursive(ctx context.Context, userID, groupID int64, recursive bool) error
	DeleteGroupAccess(ctx context.Context, userID, groupID int64) error
	CountAccessGrants(ctx context.Context, userID, groupID int64, ancestorIDs []int64) (int, error)

	// Repository operations
	GetRepository(ctx context.Context, id int64) (*models.Repository, error)
	GetRepositoryBySlug(ctx context.Context, platform, owner, slug string) (*models.Repository, error)
	GetRepositoriesByIDs(ctx context.Context, ids []int64) ([]*models.Repository, error)
	ListRepositories(ctx context.Context) ([]*models.Repository, error)
	CreateRepository(ctx context.Context, repo *models.Repository) error
	ReplaceRepository(ctx context.Context, oldID int64, repo *models.Repository, batch []CommitInsert) error
	DeleteRepository(ctx context.Context, id int64) error
	ClaimRepository(ctx context.Context, repoID, clientID int64) (bool, error)
	RepositoryIDsForGroups(ctx context.Context, groupIDs []int64) ([]int64, error)

	// Commit operations
	SaveCommitBatch(ctx context.Context, repoID int64, batch []CommitInsert) error
	CommitCount(ctx context.Context, repoID int64) (int, error)
	LatestCommit(ctx context.Context, repoID int64) (*models.Commit, error)
	CommitHashes(ctx context.Context, repoID int64) ([]string, error)

	// Fact scans for the aggregation engine
	TimeSampleFacts(ctx context.Context, repoIDs []int64, start, end int64) ([]models.SampleFact, error)
	FileEditFacts(ctx context.Context, repoIDs []int64, start, end int64) ([]models.EditFact, error)
	ComparisonFacts(ctx context.Context, repoIDs []int64, start, end int64) ([]models.ComparisonFact, error)
	ExportRows(ctx context.Context, repoIDs []int64, start, end int64) ([]models.ExportRow, error)
}

func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Migrate() error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	if err := goose.Up(s.db, "internal/db/migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
