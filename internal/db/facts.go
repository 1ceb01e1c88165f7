package db

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/devtime/server/internal/models"
)

// The fact scans resolve the canonical identity inline: if any emails
// row links the commit author email to a user, that username is the
// identity, otherwise the raw email is.

// TimeSampleFacts returns every time sample whose repository is in
// repoIDs and whose sample timestamp falls in [start, end).
func (s *PostgresStore) TimeSampleFacts(ctx context.Context, repoIDs []int64, start, end int64) ([]models.SampleFact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(u.username, c.author_email), ts.ts, ts.time_seconds
		FROM time_samples ts
		JOIN file_edits fe ON fe.id = ts.file_edit_id
		JOIN commits c ON c.id = fe.commit_id
		LEFT JOIN emails e ON e.email = c.author_email
		LEFT JOIN users u ON u.id = e.user_id
		WHERE c.repository_id = ANY($1) AND ts.ts >= $2 AND ts.ts < $3
		ORDER BY ts.ts
	`, pq.Array(repoIDs), start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query time sample facts: %w", err)
	}
	defer rows.Close()

	var facts []models.SampleFact
	for rows.Next() {
		var f models.SampleFact
		if err := rows.Scan(&f.User, &f.Timestamp, &f.TimeSeconds); err != nil {
			return nil, fmt.Errorf("failed to scan time sample fact: %w", err)
		}
		facts = append(facts, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating time sample facts: %w", err)
	}

	return facts, nil
}

// FileEditFacts returns every file edit whose repository is in repoIDs
// and whose parent commit timestamp falls in [start, end).
func (s *PostgresStore) FileEditFacts(ctx context.Context, repoIDs []int64, start, end int64) ([]models.EditFact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(u.username, c.author_email), fe.path, c.hash, c.ts,
		       fe.time_seconds, fe.lines_added, fe.lines_deleted
		FROM file_edits fe
		JOIN commits c ON c.id = fe.commit_id
		LEFT JOIN emails e ON e.email = c.author_email
		LEFT JOIN users u ON u.id = e.user_id
		WHERE c.repository_id = ANY($1) AND c.ts >= $2 AND c.ts < $3
		ORDER BY c.ts
	`, pq.Array(repoIDs), start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query file edit facts: %w", err)
	}
	defer rows.Close()

	var facts []models.EditFact
	for rows.Next() {
		var f models.EditFact
		if err := rows.Scan(&f.User, &f.Path, &f.CommitHash, &f.Timestamp,
			&f.TimeSeconds, &f.LinesAdded, &f.LinesDeleted); err != nil {
			return nil, fmt.Errorf("failed to scan file edit fact: %w", err)
		}
		facts = append(facts, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating file edit facts: %w", err)
	}

	return facts, nil
}

// ComparisonFacts returns the denormalized comparison rows for repoIDs
// within [start, end).
func (s *PostgresStore) ComparisonFacts(ctx context.Context, repoIDs []int64, start, end int64) ([]models.ComparisonFact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(u.username, c.author_email), r.id,
		       r.platform || '-' || r.owner || '-' || r.slug,
		       c.hash, c.branch, c.ts,
		       fe.time_seconds, fe.lines_added, fe.lines_deleted
		FROM file_edits fe
		JOIN commits c ON c.id = fe.commit_id
		JOIN repositories r ON r.id = c.repository_id
		LEFT JOIN emails e ON e.email = c.author_email
		LEFT JOIN users u ON u.id = e.user_id
		WHERE c.repository_id = ANY($1) AND c.ts >= $2 AND c.ts < $3
		ORDER BY c.ts
	`, pq.Array(repoIDs), start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query comparison facts: %w", err)
	}
	defer rows.Close()

	var facts []models.ComparisonFact
	for rows.Next() {
		var f models.ComparisonFact
		if err := rows.Scan(&f.User, &f.RepositoryID, &f.Repository,
			&f.CommitHash, &f.Branch, &f.Timestamp,
			&f.TimeSeconds, &f.LinesAdded, &f.LinesDeleted); err != nil {
			return nil, fmt.Errorf("failed to scan comparison fact: %w", err)
		}
		facts = append(facts, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comparison facts: %w", err)
	}

	return facts, nil
}

// ExportRows returns the per-(commit, path) denormalized export shape
// for repoIDs within [start, end).
func (s *PostgresStore) ExportRows(ctx context.Context, repoIDs []int64, start, end int64) ([]models.ExportRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(u.username, c.author_email), r.platform,
		       r.owner || '/' || r.slug, c.branch, c.hash, c.message,
		       fe.path, c.ts, fe.time_seconds, fe.lines_added, fe.lines_deleted
		FROM file_edits fe
		JOIN commits c ON c.id = fe.commit_id
		JOIN repositories r ON r.id = c.repository_id
		LEFT JOIN emails e ON e.email = c.author_email
		LEFT JOIN users u ON u.id = e.user_id
		WHERE c.repository_id = ANY($1) AND c.ts >= $2 AND c.ts < $3
		ORDER BY c.ts, fe.path
	`, pq.Array(repoIDs), start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query export rows: %w", err)
	}
	defer rows.Close()

	var out []models.ExportRow
	for rows.Next() {
		var r models.ExportRow
		if err := rows.Scan(&r.User, &r.Platform, &r.Repository, &r.Branch,
			&r.CommitHash, &r.Message, &r.Path, &r.Timestamp,
			&r.TimeSeconds, &r.LinesAdded, &r.LinesDeleted); err != nil {
			return nil, fmt.Errorf("failed to scan export row: %w", err)
		}
		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating export rows: %w", err)
	}

	return out, nil
}
