package access

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/devtime/server/internal/db"
	apperrors "github.com/devtime/server/internal/errors"
	"github.com/devtime/server/internal/groups"
	"github.com/devtime/server/internal/models"
)

// Service decides whether a user may read aggregations for a group.
// A user passes when they are an admin, hold a grant on the group
// itself, or hold a recursive grant on any ancestor.
type Service struct {
	store     db.Store
	hierarchy *groups.Service
	logger    *logrus.Logger
}

func NewService(store db.Store, hierarchy *groups.Service, logger *logrus.Logger) *Service {
	return &Service{
		store:     store,
		hierarchy: hierarchy,
		logger:    logger,
	}
}

// Check returns the number of grants authorizing the user on the named
// group; zero means deny. Admins are authorized without consulting
// grant rows.
func (s *Service) Check(ctx context.Context, user *models.User, groupName string) (int, error) {
	if user.Role == models.RoleAdmin {
		return 1, nil
	}

	group, err := s.store.GetGroupByName(ctx, groupName)
	if err != nil {
		return 0, err
	}
	if group == nil {
		return 0, apperrors.NewNotFoundError(fmt.Sprintf("group %q not found", groupName), nil)
	}

	ancestors, err := s.hierarchy.Ancestors(ctx, group.ID)
	if err != nil {
		return 0, err
	}

	return s.store.CountAccessGrants(ctx, user.ID, group.ID, ancestors)
}

// Authorize is Check collapsed to an error: Unauthorized when no grant
// applies.
func (s *Service) Authorize(ctx context.Context, user *models.User, groupName string) error {
	count, err := s.Check(ctx, user, groupName)
	if err != nil {
		return err
	}
	if count == 0 {
		return apperrors.NewUnauthorizedError(fmt.Sprintf("no access to group %q", groupName), nil)
	}
	return nil
}

// Grant creates (or resets) a group access row.
func (s *Service) Grant(ctx context.Context, userID int64, groupName string, recursive bool) error {
	group, err := s.store.GetGroupByName(ctx, groupName)
	if err != nil {
		return err
	}
	if group == nil {
		return apperrors.NewNotFoundError(fmt.Sprintf("group %q not found", groupName), nil)
	}

	return s.store.CreateGroupAccess(ctx, &models.GroupAccess{
		UserID:    userID,
		GroupID:   group.ID,
		Recursive: recursive,
	})
}

// Toggle flips the recursive flag on an existing grant. It never
// creates one; toggling a missing grant is NotFound.
func (s *Service) Toggle(ctx context.Context, userID int64, groupName string) error {
	group, err := s.store.GetGroupByName(ctx, groupName)
	if err != nil {
		return err
	}
	if group == nil {
		return apperrors.NewNotFoundError(fmt.Sprintf("group %q not found", groupName), nil)
	}

	grant, err := s.store.GetGroupAccess(ctx, userID, group.ID)
	if err != nil {
		return err
	}
	if grant == nil {
		return apperrors.NewNotFoundError("group access not found", nil)
	}

	err = s.store.SetGroupAccessRecursive(ctx, userID, group.ID, !grant.Recursive)
	if err == sql.ErrNoRows {
		return apperrors.NewNotFoundError("group access not found", nil)
	}
	return err
}

// Revoke deletes a single (user, group) grant.
func (s *Service) Revoke(ctx context.Context, userID int64, groupName string) error {
	group, err := s.store.GetGroupByName(ctx, groupName)
	if err != nil {
		return err
	}
	if group == nil {
		return apperrors.NewNotFoundError(fmt.Sprintf("group %q not found", groupName), nil)
	}

	err = s.store.DeleteGroupAccess(ctx, userID, group.ID)
	if err == sql.ErrNoRows {
		return apperrors.NewNotFoundError("group access not found", nil)
	}
	return err
}
