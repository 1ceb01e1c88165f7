package ingest

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/devtime/server/internal/db"
	apperrors "github.com/devtime/server/internal/errors"
	"github.com/devtime/server/internal/groups"
	"github.com/devtime/server/internal/models"
)

// Service validates and stores sync-client commit batches. Creation is
// destructive, updates are append-only and sticky to the first owning
// client.
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

// IngestBatch handles both POST (create) and PUT (update) of a
// repository batch. The sync-client key must resolve; create replaces
// any existing repository under the same slug, update appends to an
// owned or claimable one.
func (s *Service) IngestBatch(ctx context.Context, apiKey string, data *models.NewRepositoryData, create bool) (*models.RepositoryView, error) {
	client, err := s.store.GetSyncClientByKey(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperrors.NewUnauthorizedError("unknown sync client key", nil)
	}

	if err := validateBatch(data); err != nil {
		return nil, err
	}

	batch, err := buildInserts(data.Commits)
	if err != nil {
		return nil, err
	}

	var repo *models.Repository
	if create {
		repo, err = s.createRepository(ctx, client, data, batch)
		if err != nil {
			return nil, err
		}
	} else {
		repo, err = s.updateTarget(ctx, client, data)
		if err != nil {
			return nil, err
		}
		if err := s.store.SaveCommitBatch(ctx, repo.ID, batch); err != nil {
			return nil, err
		}
	}

	count, err := s.store.CommitCount(ctx, repo.ID)
	if err != nil {
		return nil, err
	}

	group, err := s.store.GetGroupByID(ctx, repo.GroupID)
	if err != nil {
		return nil, err
	}

	groupName := ""
	if group != nil {
		groupName = group.Name
	}

	s.logger.Infof("ingested %d commits into %s/%s/%s", len(data.Commits), data.Platform, data.Owner, data.Slug)

	return &models.RepositoryView{
		ID:          repo.ID,
		Platform:    repo.Platform,
		Owner:       repo.Owner,
		Slug:        repo.Slug,
		Group:       groupName,
		CommitCount: count,
	}, nil
}

// createRepository implements the destructive create. The removal of an
// existing repository under the same slug, the insert of its replacement
// and the first batch all ride one store transaction, so a failed batch
// leaves the previous repository intact.
func (s *Service) createRepository(ctx context.Context, client *models.SyncClient, data *models.NewRepositoryData, batch []db.CommitInsert) (*models.Repository, error) {
	existing, err := s.store.GetRepositoryBySlug(ctx, data.Platform, data.Owner, data.Slug)
	if err != nil {
		return nil, err
	}

	group, err := s.hierarchy.EnsureLeafGroup(ctx, data.Platform, data.Owner, data.Slug)
	if err != nil {
		return nil, err
	}

	clientID := client.ID
	repo := &models.Repository{
		GroupID:      group.ID,
		Platform:     data.Platform,
		Owner:        data.Owner,
		Slug:         data.Slug,
		SyncClientID: &clientID,
	}

	var oldID int64
	if existing != nil {
		oldID = existing.ID
	}
	if err := s.store.ReplaceRepository(ctx, oldID, repo, batch); err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.Warnf("replaced repository %s/%s/%s on re-create", data.Platform, data.Owner, data.Slug)
	}

	return repo, nil
}

// updateTarget resolves the repository an update batch appends to. An
// orphaned repository is claimed by the caller; one owned by a
// different client fails Unauthorized.
func (s *Service) updateTarget(ctx context.Context, client *models.SyncClient, data *models.NewRepositoryData) (*models.Repository, error) {
	repo, err := s.store.GetRepositoryBySlug(ctx, data.Platform, data.Owner, data.Slug)
	if err != nil {
		return nil, err
	}
	if repo == nil {
		return nil, apperrors.NewNotFoundError(
			fmt.Sprintf("repository %s/%s/%s not found", data.Platform, data.Owner, data.Slug), nil)
	}

	if repo.SyncClientID == nil {
		claimed, err := s.store.ClaimRepository(ctx, repo.ID, client.ID)
		if err != nil {
			return nil, err
		}
		if !claimed {
			// Lost the claim race; re-read to see who won.
			repo, err = s.store.GetRepository(ctx, repo.ID)
			if err != nil {
				return nil, err
			}
			if repo == nil || repo.SyncClientID == nil || *repo.SyncClientID != client.ID {
				return nil, apperrors.NewUnauthorizedError("repository owned by another sync client", nil)
			}
		}
		return repo, nil
	}

	if *repo.SyncClientID != client.ID {
		return nil, apperrors.NewUnauthorizedError("repository owned by another sync client", nil)
	}

	return repo, nil
}

// CommitHashInfo answers the sync client's incremental-sync query. A
// repository with no commits yields the zero-value info.
func (s *Service) CommitHashInfo(ctx context.Context, apiKey, platform, owner, slug string) (*models.HashInfo, error) {
	client, err := s.store.GetSyncClientByKey(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperrors.NewUnauthorizedError("unknown sync client key", nil)
	}

	repo, err := s.store.GetRepositoryBySlug(ctx, platform, owner, slug)
	if err != nil {
		return nil, err
	}
	if repo == nil {
		return nil, apperrors.NewNotFoundError(
			fmt.Sprintf("repository %s/%s/%s not found", platform, owner, slug), nil)
	}

	latest, err := s.store.LatestCommit(ctx, repo.ID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return &models.HashInfo{TrackedCommitHashes: []string{}}, nil
	}

	hashes, err := s.store.CommitHashes(ctx, repo.ID)
	if err != nil {
		return nil, err
	}

	return &models.HashInfo{
		Hash:                latest.Hash,
		Timestamp:           latest.Timestamp,
		TrackedCommitHashes: hashes,
	}, nil
}

func validateBatch(data *models.NewRepositoryData) error {
	fields := map[string][]string{}
	requireField(fields, "provider", data.Platform)
	requireField(fields, "user", data.Owner)
	requireField(fields, "repo", data.Slug)

	for i, commit := range data.Commits {
		prefix := fmt.Sprintf("commits[%d].", i)
		requireField(fields, prefix+"branch", commit.Branch)
		requireField(fields, prefix+"message", commit.Message)
		requireField(fields, prefix+"hash", commit.Hash)

		if _, _, err := ParseAuthor(commit.Author); err != nil {
			fields[prefix+"author"] = append(fields[prefix+"author"], "format")
		}

		for j, file := range commit.Files {
			filePrefix := fmt.Sprintf("%sfiles[%d].", prefix, j)
			requireField(fields, filePrefix+"path", file.Path)
			requireField(fields, filePrefix+"status", file.Status)
		}
	}

	if len(fields) > 0 {
		return apperrors.NewValidationError(fields)
	}
	return nil
}

func requireField(fields map[string][]string, name, value string) {
	if len(value) < 1 {
		fields[name] = append(fields[name], "required")
	}
}

// ParseAuthor splits the "NAME <EMAIL>" author string sync clients send.
func ParseAuthor(author string) (name, email string, err error) {
	if !strings.Contains(author, "<") {
		return "", "", fmt.Errorf("author %q is not in NAME <EMAIL> form", author)
	}

	addr, err := mail.ParseAddress(author)
	if err != nil {
		return "", "", fmt.Errorf("invalid author %q: %w", author, err)
	}
	if addr.Name == "" || addr.Address == "" {
		return "", "", fmt.Errorf("author %q is not in NAME <EMAIL> form", author)
	}

	return addr.Name, addr.Address, nil
}

func buildInserts(commits []models.NewCommitData) ([]db.CommitInsert, error) {
	batch := make([]db.CommitInsert, 0, len(commits))
	for _, commit := range commits {
		name, email, err := ParseAuthor(commit.Author)
		if err != nil {
			return nil, apperrors.NewFieldError("author", "format")
		}

		entry := db.CommitInsert{
			Commit: models.Commit{
				Hash:        commit.Hash,
				Message:     commit.Message,
				AuthorEmail: email,
				GitUserName: name,
				Branch:      commit.Branch,
				Timestamp:   commit.Time,
			},
		}

		for _, file := range commit.Files {
			insert := db.FileInsert{
				Edit: models.FileEdit{
					Path:         file.Path,
					Status:       file.Status,
					TimeSeconds:  file.TimeTotal,
					LinesAdded:   file.AddedLines,
					LinesDeleted: file.DeletedLines,
				},
			}
			for _, sample := range file.Timeline {
				insert.Samples = append(insert.Samples, models.TimeSample{
					Timestamp:   sample.Timestamp,
					TimeSeconds: sample.TimeSeconds,
				})
			}
			entry.Files = append(entry.Files, insert)
		}

		batch = append(batch, entry)
	}

	return batch, nil
}
