package auth

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/devtime/server/internal/db"
	apperrors "github.com/devtime/server/internal/errors"
	"github.com/devtime/server/internal/models"
)

// Service handles password registration and login on top of the token
// service.
type Service struct {
	store      db.Store
	tokens     *TokenService
	bcryptCost int
	logger     *logrus.Logger
}

func NewService(store db.Store, tokens *TokenService, bcryptCost int, logger *logrus.Logger) *Service {
	return &Service{
		store:      store,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register creates a password user and returns it with a fresh token.
// A taken username is a conflict.
func (s *Service) Register(ctx context.Context, username, password string) (*models.User, string, error) {
	fields := map[string][]string{}
	if len(username) < 1 {
		fields["username"] = append(fields["username"], "required")
	}
	if len(password) < 8 {
		fields["password"] = append(fields["password"], "too_short")
	}
	if len(fields) > 0 {
		return nil, "", apperrors.NewValidationError(fields)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, "", apperrors.NewInternalError("failed to hash password", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}
	err = s.store.CreateUser(ctx, user)
	if err == db.ErrDuplicate {
		return nil, "", apperrors.NewConflictError("username already taken", nil)
	}
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Login verifies a password and returns a fresh token.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, "", err
	}
	if user == nil || user.PasswordHash == "" {
		return nil, "", apperrors.NewUnauthorizedError("invalid credentials", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperrors.NewUnauthorizedError("invalid credentials", nil)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Regenerate issues a new token for an already authenticated user.
func (s *Service) Regenerate(user *models.User) (string, error) {
	return s.tokens.Issue(user)
}
