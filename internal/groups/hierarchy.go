package groups

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/devtime/server/internal/db"
	apperrors "github.com/devtime/server/internal/errors"
	"github.com/devtime/server/internal/models"
)

// MaxDepth bounds the DAG traversal. The edge relation is acyclic by
// construction; hitting the bound means the dataset is malformed, so
// the traversal logs and returns the partial answer.
const MaxDepth = 100

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

// LeafGroupName is the reserved name of the group owning one
// repository. Slashes in the owner (subgroup paths) become dashes.
func LeafGroupName(platform, owner, slug string) string {
	return fmt.Sprintf("%s-%s-%s", platform, strings.ReplaceAll(owner, "/", "-"), slug)
}

// Descendants returns every group reachable from root following
// parent→child edges, root included. Deduplicated, depth-bounded.
func (s *Service) Descendants(ctx context.Context, rootID int64) ([]int64, error) {
	return s.traverse(ctx, rootID, s.store.ChildGroupIDs)
}

// Ancestors is the symmetric traversal following child→parent edges.
func (s *Service) Ancestors(ctx context.Context, leafID int64) ([]int64, error) {
	return s.traverse(ctx, leafID, s.store.ParentGroupIDs)
}

func (s *Service) traverse(ctx context.Context, startID int64, next func(context.Context, int64) ([]int64, error)) ([]int64, error) {
	seen := map[int64]bool{startID: true}
	result := []int64{startID}
	frontier := []int64{startID}

	for depth := 0; len(frontier) > 0; depth++ {
		if depth >= MaxDepth {
			s.logger.Warnf("group traversal from %d truncated at depth %d; returning partial result", startID, MaxDepth)
			break
		}

		var nextFrontier []int64
		for _, id := range frontier {
			neighbors, err := next(ctx, id)
			if err != nil {
				return nil, err
			}
			for _, n := range neighbors {
				if seen[n] {
					continue
				}
				seen[n] = true
				result = append(result, n)
				nextFrontier = append(nextFrontier, n)
			}
		}
		frontier = nextFrontier
	}

	return result, nil
}

// EnsureLeafGroup creates (idempotently) the leaf group for a
// repository slug and returns it.
func (s *Service) EnsureLeafGroup(ctx context.Context, platform, owner, slug string) (*models.Group, error) {
	return s.store.CreateGroup(ctx, LeafGroupName(platform, owner, slug))
}

// CreateGroup creates a named group; creating an existing one returns it.
func (s *Service) CreateGroup(ctx context.Context, name string) (*models.Group, error) {
	if name == "" {
		return nil, apperrors.NewFieldError("name", "required")
	}
	return s.store.CreateGroup(ctx, name)
}

func (s *Service) ListGroups(ctx context.Context) ([]*models.Group, error) {
	return s.store.ListGroups(ctx)
}

// AddEdge links parent→child. An edge that would make child reach
// parent again is rejected; the relation stays acyclic.
func (s *Service) AddEdge(ctx context.Context, parentName, childName string) error {
	parent, err := s.store.GetGroupByName(ctx, parentName)
	if err != nil {
		return err
	}
	if parent == nil {
		return apperrors.NewNotFoundError(fmt.Sprintf("group %q not found", parentName), nil)
	}

	child, err := s.store.GetGroupByName(ctx, childName)
	if err != nil {
		return err
	}
	if child == nil {
		return apperrors.NewNotFoundError(fmt.Sprintf("group %q not found", childName), nil)
	}

	if parent.ID == child.ID {
		return apperrors.NewFieldError("child", "cycle")
	}

	reachable, err := s.Descendants(ctx, child.ID)
	if err != nil {
		return err
	}
	for _, id := range reachable {
		if id == parent.ID {
			return apperrors.NewFieldError("child", "cycle")
		}
	}

	return s.store.CreateGroupEdge(ctx, parent.ID, child.ID)
}

// RepositoryIDs resolves a group name to the repositories of all its
// descendant groups.
func (s *Service) RepositoryIDs(ctx context.Context, groupName string) ([]int64, error) {
	group, err := s.store.GetGroupByName(ctx, groupName)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("group %q not found", groupName), nil)
	}

	groupIDs, err := s.Descendants(ctx, group.ID)
	if err != nil {
		return nil, err
	}

	return s.store.RepositoryIDsForGroups(ctx, groupIDs)
}
