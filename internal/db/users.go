package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/devtime/server/internal/models"
)

// ErrDuplicate is returned when an insert violates a uniqueness
// constraint (username, email, api key).
var ErrDuplicate = errors.New("duplicate row")

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// CreateUser inserts a new user and fills in its generated ID.
func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, user.Username, user.PasswordHash, user.Role).Scan(&user.ID, &user.CreatedAt)

	if isUniqueViolation(err) {
		return ErrDuplicate
	} else if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.getUser(ctx, `
		SELECT id, username, COALESCE(password_hash, ''), role, created_at
		FROM users WHERE id = $1
	`, id)
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, `
		SELECT id, username, COALESCE(password_hash, ''), role, created_at
		FROM users WHERE username = $1
	`, username)
}

// GetUserByEmail resolves a user through the linked emails table.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, `
		SELECT u.id, u.username, COALESCE(u.password_hash, ''), u.role, u.created_at
		FROM users u
		JOIN emails e ON e.user_id = u.id
		WHERE e.email = $1
	`, email)
}

func (s *PostgresStore) getUser(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// SaveEmail links a commit author email to a user. A second user
// claiming the same email fails with ErrDuplicate.
func (s *PostgresStore) SaveEmail(ctx context.Context, userID int64, email string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO emails (user_id, email)
		VALUES ($1, $2)
		ON CONFLICT (email) DO NOTHING
	`, userID, email)
	if err != nil {
		return fmt.Errorf("failed to save email: %w", err)
	}

	// ON CONFLICT DO NOTHING swallows re-links by the same user; a
	// claim by a different user must surface as a conflict.
	var ownerID int64
	err = s.db.QueryRowContext(ctx, `
		SELECT user_id FROM emails WHERE email = $1
	`, email).Scan(&ownerID)
	if err != nil {
		return fmt.Errorf("failed to verify email owner: %w", err)
	}
	if ownerID != userID {
		return ErrDuplicate
	}

	return nil
}

func (s *PostgresStore) ListEmails(ctx context.Context, userID int64) ([]*models.Email, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, email FROM emails WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query emails: %w", err)
	}
	defer rows.Close()

	var emails []*models.Email
	for rows.Next() {
		var e models.Email
		if err := rows.Scan(&e.ID, &e.UserID, &e.Email); err != nil {
			return nil, fmt.Errorf("failed to scan email row: %w", err)
		}
		emails = append(emails, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating email rows: %w", err)
	}

	return emails, nil
}

func (s *PostgresStore) CreateSyncClient(ctx context.Context, client *models.SyncClient) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO sync_clients (base_url, api_key, client_type)
		VALUES ($1, $2, $3)
		RETURNING id
	`, client.BaseURL, client.APIKey, client.Type).Scan(&client.ID)

	if isUniqueViolation(err) {
		return ErrDuplicate
	} else if err != nil {
		return fmt.Errorf("failed to create sync client: %w", err)
	}

	return nil
}

func (s *PostgresStore) GetSyncClientByKey(ctx context.Context, apiKey string) (*models.SyncClient, error) {
	var client models.SyncClient
	err := s.db.QueryRowContext(ctx, `
		SELECT id, base_url, api_key, client_type
		FROM sync_clients WHERE api_key = $1
	`, apiKey).Scan(&client.ID, &client.BaseURL, &client.APIKey, &client.Type)

	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get sync client: %w", err)
	}

	return &client, nil
}

func (s *PostgresStore) ListSyncClients(ctx context.Context) ([]*models.SyncClient, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, base_url, api_key, client_type FROM sync_clients ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync clients: %w", err)
	}
	defer rows.Close()

	var clients []*models.SyncClient
	for rows.Next() {
		var c models.SyncClient
		if err := rows.Scan(&c.ID, &c.BaseURL, &c.APIKey, &c.Type); err != nil {
			return nil, fmt.Errorf("failed to scan sync client row: %w", err)
		}
		clients = append(clients, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync client rows: %w", err)
	}

	return clients, nil
}

func (s *PostgresStore) DeleteSyncClient(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sync_clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sync client: %w", err)
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
