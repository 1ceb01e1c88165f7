package identity

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/devtime/server/internal/db"
	apperrors "github.com/devtime/server/internal/errors"
	"github.com/devtime/server/internal/models"
)

// Service maintains the email→user links that aggregations coalesce
// against. A commit email with no link keeps the raw email as its
// identity; that is never an error.
type Service struct {
	store  db.Store
	logger *logrus.Logger
}

func NewService(store db.Store, logger *logrus.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// LinkEmails attaches a verified email list to a user. A claim on an
// email another user already holds is a conflict the caller must
// surface.
func (s *Service) LinkEmails(ctx context.Context, userID int64, emails []string) error {
	for _, email := range emails {
		if email == "" {
			continue
		}
		err := s.store.SaveEmail(ctx, userID, email)
		if err == db.ErrDuplicate {
			return apperrors.NewConflictError("email already claimed: "+email, nil)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// CanonicalName resolves a commit author email to the linked username,
// falling back to the raw email.
func (s *Service) CanonicalName(ctx context.Context, authorEmail string) (string, error) {
	user, err := s.store.GetUserByEmail(ctx, authorEmail)
	if err != nil {
		return "", err
	}
	if user == nil {
		return authorEmail, nil
	}
	return user.Username, nil
}

// Emails lists the linked addresses for a user.
func (s *Service) Emails(ctx context.Context, userID int64) ([]*models.Email, error) {
	return s.store.ListEmails(ctx, userID)
}
