package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/devtime/server/internal/models"
)

// CreateGroup inserts a group by name. Creating an existing group is
// idempotent and returns the existing row.
func (s *PostgresStore) CreateGroup(ctx context.Context, name string) (*models.Group, error) {
	var group models.Group
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO groups (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, created_at
	`, name).Scan(&group.ID, &group.Name, &group.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	return &group, nil
}

func (s *PostgresStore) GetGroupByName(ctx context.Context, name string) (*models.Group, error) {
	return s.getGroup(ctx, `SELECT id, name, created_at FROM groups WHERE name = $1`, name)
}

func (s *PostgresStore) GetGroupByID(ctx context.Context, id int64) (*models.Group, error) {
	return s.getGroup(ctx, `SELECT id, name, created_at FROM groups WHERE id = $1`, id)
}

func (s *PostgresStore) getGroup(ctx context.Context, query string, arg interface{}) (*models.Group, error) {
	var group models.Group
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&group.ID, &group.Name, &group.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	return &group, nil
}

func (s *PostgresStore) ListGroups(ctx context.Context) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM groups ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}
		groups = append(groups, &g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group rows: %w", err)
	}

	return groups, nil
}

func (s *PostgresStore) CreateGroupEdge(ctx context.Context, parentID, childID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO group_edges (parent_id, child_id)
		VALUES ($1, $2)
		ON CONFLICT (parent_id, child_id) DO NOTHING
	`, parentID, childID)
	if err != nil {
		return fmt.Errorf("failed to create group edge: %w", err)
	}

	return nil
}

func (s *PostgresStore) ChildGroupIDs(ctx context.Context, groupID int64) ([]int64, error) {
	return s.edgeIDs(ctx, `SELECT child_id FROM group_edges WHERE parent_id = $1`, groupID)
}

func (s *PostgresStore) ParentGroupIDs(ctx context.Context, groupID int64) ([]int64, error) {
	return s.edgeIDs(ctx, `SELECT parent_id FROM group_edges WHERE child_id = $1`, groupID)
}

func (s *PostgresStore) edgeIDs(ctx context.Context, query string, groupID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query group edges: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan group edge row: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group edge rows: %w", err)
	}

	return ids, nil
}

func (s *PostgresStore) GetGroupAccess(ctx context.Context, userID, groupID int64) (*models.GroupAccess, error) {
	var access models.GroupAccess
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, group_id, recursive
		FROM group_accesses
		WHERE user_id = $1 AND group_id = $2
	`, userID, groupID).Scan(&access.UserID, &access.GroupID, &access.Recursive)

	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get group access: %w", err)
	}

	return &access, nil
}

func (s *PostgresStore) ListGroupAccessesForUser(ctx context.Context, userID int64) ([]*models.GroupAccess, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, group_id, recursive
		FROM group_accesses
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query group accesses: %w", err)
	}
	defer rows.Close()

	var accesses []*models.GroupAccess
	for rows.Next() {
		var a models.GroupAccess
		if err := rows.Scan(&a.UserID, &a.GroupID, &a.Recursive); err != nil {
			return nil, fmt.Errorf("failed to scan group access row: %w", err)
		}
		accesses = append(accesses, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group access rows: %w", err)
	}

	return accesses, nil
}

func (s *PostgresStore) CreateGroupAccess(ctx context.Context, access *models.GroupAccess) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO group_accesses (user_id, group_id, recursive)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, group_id) DO UPDATE SET recursive = EXCLUDED.recursive
	`, access.UserID, access.GroupID, access.Recursive)
	if err != nil {
		return fmt.Errorf("failed to create group access: %w", err)
	}

	return nil
}

func (s *PostgresStore) SetGroupAccessRecursive(ctx context.Context, userID, groupID int64, recursive bool) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE group_accesses SET recursive = $3
		WHERE user_id = $1 AND group_id = $2
	`, userID, groupID, recursive)
	if err != nil {
		return fmt.Errorf("failed to update group access: %w", err)
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

func (s *PostgresStore) DeleteGroupAccess(ctx context.Context, userID, groupID int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM group_accesses WHERE user_id = $1 AND group_id = $2
	`, userID, groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group access: %w", err)
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

// CountAccessGrants counts the grants that authorize userID on groupID:
// any grant on the group itself plus recursive grants on its ancestors.
func (s *PostgresStore) CountAccessGrants(ctx context.Context, userID, groupID int64, ancestorIDs []int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM group_accesses
		WHERE user_id = $1
		  AND (group_id = $2 OR (recursive AND group_id = ANY($3)))
	`, userID, groupID, pq.Array(ancestorIDs)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count access grants: %w", err)
	}

	return count, nil
}
