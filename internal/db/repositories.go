package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/devtime/server/internal/models"
)

func (s *PostgresStore) GetRepository(ctx context.Context, id int64) (*models.Repository, error) {
	return s.getRepository(ctx, `
		SELECT id, group_id, platform, owner, slug, sync_client_id, created_at
		FROM repositories WHERE id = $1
	`, id)
}

func (s *PostgresStore) GetRepositoryBySlug(ctx context.Context, platform, owner, slug string) (*models.Repository, error) {
	return s.getRepository(ctx, `
		SELECT id, group_id, platform, owner, slug, sync_client_id, created_at
		FROM repositories WHERE platform = $1 AND owner = $2 AND slug = $3
	`, platform, owner, slug)
}

func (s *PostgresStore) getRepository(ctx context.Context, query string, args ...interface{}) (*models.Repository, error) {
	var repo models.Repository
	var clientID sql.NullInt64
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&repo.ID,
		&repo.GroupID,
		&repo.Platform,
		&repo.Owner,
		&repo.Slug,
		&clientID,
		&repo.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get repository: %w", err)
	}

	if clientID.Valid {
		repo.SyncClientID = &clientID.Int64
	}

	return &repo, nil
}

func (s *PostgresStore) GetRepositoriesByIDs(ctx context.Context, ids []int64) ([]*models.Repository, error) {
	return s.queryRepositories(ctx, `
		SELECT id, group_id, platform, owner, slug, sync_client_id, created_at
		FROM repositories WHERE id = ANY($1)
		ORDER BY id
	`, pq.Array(ids))
}

func (s *PostgresStore) ListRepositories(ctx context.Context) ([]*models.Repository, error) {
	return s.queryRepositories(ctx, `
		SELECT id, group_id, platform, owner, slug, sync_client_id, created_at
		FROM repositories ORDER BY id
	`)
}

func (s *PostgresStore) queryRepositories(ctx context.Context, query string, args ...interface{}) ([]*models.Repository, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query repositories: %w", err)
	}
	defer rows.Close()

	var repos []*models.Repository
	for rows.Next() {
		var repo models.Repository
		var clientID sql.NullInt64
		if err := rows.Scan(
			&repo.ID,
			&repo.GroupID,
			&repo.Platform,
			&repo.Owner,
			&repo.Slug,
			&clientID,
			&repo.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan repository row: %w", err)
		}
		if clientID.Valid {
			repo.SyncClientID = &clientID.Int64
		}
		repos = append(repos, &repo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating repository rows: %w", err)
	}

	return repos, nil
}

func (s *PostgresStore) CreateRepository(ctx context.Context, repo *models.Repository) error {
	var clientID interface{}
	if repo.SyncClientID != nil {
		clientID = *repo.SyncClientID
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO repositories (group_id, platform, owner, slug, sync_client_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, repo.GroupID, repo.Platform, repo.Owner, repo.Slug, clientID).Scan(&repo.ID, &repo.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}

	return nil
}

// ReplaceRepository removes the repository oldID (0 means none), inserts
// repo and stores its first commit batch, all in one transaction. A
// failure anywhere leaves the old repository and its facts untouched.
func (s *PostgresStore) ReplaceRepository(ctx context.Context, oldID int64, repo *models.Repository, batch []CommitInsert) error {
	var clientID interface{}
	if repo.SyncClientID != nil {
		clientID = *repo.SyncClientID
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if oldID != 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM repositories WHERE id = $1`, oldID); err != nil {
			return fmt.Errorf("failed to delete repository: %w", err)
		}
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO repositories (group_id, platform, owner, slug, sync_client_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, repo.GroupID, repo.Platform, repo.Owner, repo.Slug, clientID).Scan(&repo.ID, &repo.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}

	if len(batch) > 0 {
		if err := insertCommitBatch(ctx, tx, repo.ID, batch); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteRepository removes a repository. Commits, file edits and time
// samples go with it through the cascade; the leaf group stays.
func (s *PostgresStore) DeleteRepository(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM repositories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete repository: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// ClaimRepository binds an orphaned repository to a sync client. The
// conditional update makes racing claims resolve to exactly one winner.
func (s *PostgresStore) ClaimRepository(ctx context.Context, repoID, clientID int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE repositories SET sync_client_id = $2
		WHERE id = $1 AND sync_client_id IS NULL
	`, repoID, clientID)
	if err != nil {
		return false, fmt.Errorf("failed to claim repository: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected == 1, nil
}

func (s *PostgresStore) RepositoryIDsForGroups(ctx context.Context, groupIDs []int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM repositories WHERE group_id = ANY($1)
	`, pq.Array(groupIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query repository ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan repository id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating repository ids: %w", err)
	}

	return ids, nil
}
