package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/devtime/server/internal/auth"
	apperrors "github.com/devtime/server/internal/errors"
	"github.com/devtime/server/internal/models"
)

// CreateRepository handles a sync client's initial batch for a
// repository. An existing repository under the same slug is replaced.
// @Summary Create a repository from a commit batch
// @Description Registers a repository and stores its first commit batch. Re-creating an existing repository replaces it and all its facts.
// @Tags ingest
// @Accept json
// @Produce json
// @Param API-Key header string true "Sync client API key"
// @Param batch body models.NewRepositoryEnvelope true "Repository batch"
// @Success 200 {object} models.RepositoryView
// @Failure 401 {object} ErrorResponse
// @Failure 422 {object} ValidationResponse
// @Router /repositories [post]
func (h *Handler) CreateRepository(c *gin.Context) {
	h.handleIngest(c, true)
}

// UpdateRepository appends a commit batch to an existing repository.
// @Summary Append a commit batch to a repository
// @Description Appends commits to an owned repository. An orphaned repository is claimed by the caller; one owned by another client is rejected.
// @Tags ingest
// @Accept json
// @Produce json
// @Param API-Key header string true "Sync client API key"
// @Param batch body models.NewRepositoryEnvelope true "Repository batch"
// @Success 200 {object} models.RepositoryView
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ValidationResponse
// @Router /repositories [put]
func (h *Handler) UpdateRepository(c *gin.Context) {
	h.handleIngest(c, false)
}

func (h *Handler) handleIngest(c *gin.Context, create bool) {
	var envelope models.NewRepositoryEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		h.respondError(c, apperrors.NewFieldError("body", "format"))
		return
	}

	view, err := h.ingest.IngestBatch(c.Request.Context(), auth.APIKey(c), &envelope.Repository, create)
	if err != nil {
		h.respondError(c, err)
		return
	}

	respondWithJSON(c, http.StatusOK, view)
}

// GetCommitHash answers the incremental-sync query.
// @Summary Get the latest tracked commit
// @Description Returns the latest commit hash, its timestamp and all tracked hashes for a repository, so a sync client can resume where it left off.
// @Tags ingest
// @Produce json
// @Param API-Key header string true "Sync client API key"
// @Param provider query string true "Repository platform"
// @Param user query string true "Repository owner"
// @Param repo query string true "Repository slug"
// @Success 200 {object} models.HashInfo
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /commits/hash [get]
func (h *Handler) GetCommitHash(c *gin.Context) {
	info, err := h.ingest.CommitHashInfo(
		c.Request.Context(),
		auth.APIKey(c),
		c.Query("provider"),
		c.Query("user"),
		c.Query("repo"),
	)
	if err != nil {
		h.respondError(c, err)
		return
	}

	respondWithJSON(c, http.StatusOK, info)
}

// ListRepositories lists the repositories the caller can see: all of
// them for an admin, otherwise those under the caller's granted groups
// (descendants included for recursive grants).
// @Summary List accessible repositories
// @Tags repositories
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.Repository
// @Failure 401 {object} ErrorResponse
// @Router /repositories [get]
func (h *Handler) ListRepositories(c *gin.Context) {
	ctx := c.Request.Context()
	user := auth.UserFromContext(c)

	if user.Role == models.RoleAdmin {
		repos, err := h.store.ListRepositories(ctx)
		if err != nil {
			h.respondError(c, err)
			return
		}
		respondWithJSON(c, http.StatusOK, emptyIfNil(repos))
		return
	}

	grants, err := h.store.ListGroupAccessesForUser(ctx, user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	seen := map[int64]bool{}
	var groupIDs []int64
	for _, grant := range grants {
		ids := []int64{grant.GroupID}
		if grant.Recursive {
			ids, err = h.hierarchy.Descendants(ctx, grant.GroupID)
			if err != nil {
				h.respondError(c, err)
				return
			}
		}
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				groupIDs = append(groupIDs, id)
			}
		}
	}

	repoIDs, err := h.store.RepositoryIDsForGroups(ctx, groupIDs)
	if err != nil {
		h.respondError(c, err)
		return
	}

	repos, err := h.store.GetRepositoriesByIDs(ctx, repoIDs)
	if err != nil {
		h.respondError(c, err)
		return
	}

	respondWithJSON(c, http.StatusOK, emptyIfNil(repos))
}

// DeleteRepository removes a repository and its facts. The caller needs
// access to the repository's leaf group.
// @Summary Delete a repository
// @Tags repositories
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Repository ID"
// @Success 200 {object} map[string]string
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /repositories/{id} [delete]
func (h *Handler) DeleteRepository(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.respondError(c, apperrors.NewFieldError("id", "format"))
		return
	}

	repo, err := h.store.GetRepository(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if repo == nil {
		h.respondError(c, apperrors.NewNotFoundError("repository not found", nil))
		return
	}

	group, err := h.store.GetGroupByID(ctx, repo.GroupID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if group == nil {
		h.respondError(c, apperrors.NewNotFoundError("repository group not found", nil))
		return
	}

	if err := h.access.Authorize(ctx, auth.UserFromContext(c), group.Name); err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.store.DeleteRepository(ctx, id); err != nil {
		h.respondError(c, err)
		return
	}

	h.logger.Infof("deleted repository %s/%s/%s", repo.Platform, repo.Owner, repo.Slug)
	respondWithJSON(c, http.StatusOK, map[string]string{"status": "deleted"})
}

func emptyIfNil(repos []*models.Repository) []*models.Repository {
	if repos == nil {
		return []*models.Repository{}
	}
	return repos
}
