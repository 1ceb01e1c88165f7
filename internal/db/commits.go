package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/devtime/server/internal/models"
)

// SaveCommitBatch inserts a batch of commits with their file edits and
// time samples inside one transaction. A failure anywhere reverts the
// whole batch.
func (s *PostgresStore) SaveCommitBatch(ctx context.Context, repoID int64, batch []CommitInsert) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertCommitBatch(ctx, tx, repoID, batch); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// insertCommitBatch runs the commit/file-edit/time-sample insert loop
// inside the caller's transaction.
func insertCommitBatch(ctx context.Context, tx *sql.Tx, repoID int64, batch []CommitInsert) error {
	commitStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO commits (repository_id, hash, message, author_email, git_user_name, branch, ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare commit insert statement: %w", err)
	}
	defer commitStmt.Close()

	editStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO file_edits (commit_id, path, status, time_seconds, lines_added, lines_deleted)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare file edit insert statement: %w", err)
	}
	defer editStmt.Close()

	sampleStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO time_samples (file_edit_id, ts, time_seconds)
		VALUES ($1, $2, $3)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare time sample insert statement: %w", err)
	}
	defer sampleStmt.Close()

	for _, entry := range batch {
		var commitID int64
		err := commitStmt.QueryRowContext(ctx,
			repoID,
			entry.Commit.Hash,
			entry.Commit.Message,
			entry.Commit.AuthorEmail,
			entry.Commit.GitUserName,
			entry.Commit.Branch,
			entry.Commit.Timestamp,
		).Scan(&commitID)
		if err != nil {
			return fmt.Errorf("failed to insert commit %s: %w", entry.Commit.Hash, err)
		}

		for _, file := range entry.Files {
			var editID int64
			err := editStmt.QueryRowContext(ctx,
				commitID,
				file.Edit.Path,
				file.Edit.Status,
				file.Edit.TimeSeconds,
				file.Edit.LinesAdded,
				file.Edit.LinesDeleted,
			).Scan(&editID)
			if err != nil {
				return fmt.Errorf("failed to insert file edit %s: %w", file.Edit.Path, err)
			}

			for _, sample := range file.Samples {
				if _, err := sampleStmt.ExecContext(ctx, editID, sample.Timestamp, sample.TimeSeconds); err != nil {
					return fmt.Errorf("failed to insert time sample: %w", err)
				}
			}
		}
	}

	return nil
}

func (s *PostgresStore) CommitCount(ctx context.Context, repoID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM commits WHERE repository_id = $1
	`, repoID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count commits: %w", err)
	}

	return count, nil
}

// LatestCommit returns the newest commit by timestamp, or nil when the
// repository has no commits yet.
func (s *PostgresStore) LatestCommit(ctx context.Context, repoID int64) (*models.Commit, error) {
	var c models.Commit
	err := s.db.QueryRowContext(ctx, `
		SELECT id, repository_id, hash, message, author_email, git_user_name, branch, ts
		FROM commits
		WHERE repository_id = $1
		ORDER BY ts DESC
		LIMIT 1
	`, repoID).Scan(&c.ID, &c.RepositoryID, &c.Hash, &c.Message, &c.AuthorEmail, &c.GitUserName, &c.Branch, &c.Timestamp)

	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get latest commit: %w", err)
	}

	return &c, nil
}

func (s *PostgresStore) CommitHashes(ctx context.Context, repoID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT hash FROM commits WHERE repository_id = $1 ORDER BY ts
	`, repoID)
	if err != nil {
		return nil, fmt.Errorf("failed to query commit hashes: %w", err)
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return nil, fmt.Errorf("failed to scan commit hash: %w", err)
		}
		hashes = append(hashes, hash)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating commit hashes: %w", err)
	}

	return hashes, nil
}
