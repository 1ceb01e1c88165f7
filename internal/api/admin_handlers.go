package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/devtime/server/internal/errors"
	"github.com/devtime/server/internal/models"
)

type createGroupRequest struct {
	Name string `json:"name"`
}

type createEdgeRequest struct {
	Parent string `json:"parent"`
	Child  string `json:"child"`
}

type groupAccessRequest struct {
	UserID    int64  `json:"user_id"`
	Group     string `json:"group"`
	Recursive bool   `json:"recursive"`
}

type createSyncClientRequest struct {
	BaseURL string                `json:"base_url"`
	APIKey  string                `json:"api_key"`
	Type    models.SyncClientType `json:"type"`
}

// CreateGroup creates a named group; creating an existing one returns it.
// @Summary Create a group
// @Tags groups
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param group body createGroupRequest true "Group name"
// @Success 200 {object} models.Group
// @Failure 401 {object} ErrorResponse
// @Failure 422 {object} ValidationResponse
// @Router /groups [post]
func (h *Handler) CreateGroup(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.NewFieldError("body", "format"))
		return
	}

	group, err := h.hierarchy.CreateGroup(c.Request.Context(), req.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}

	respondWithJSON(c, http.StatusOK, group)
}

// ListGroups lists every group.
// @Summary List groups
// @Tags groups
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.Group
// @Failure 401 {object} ErrorResponse
// @Router /groups [get]
func (h *Handler) ListGroups(c *gin.Context) {
	groups, err := h.hierarchy.ListGroups(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if groups == nil {
		groups = []*models.Group{}
	}

	respondWithJSON(c, http.StatusOK, groups)
}

// CreateGroupEdge links a parent group to a child group. An edge that
// would close a cycle is rejected.
// @Summary Link two groups
// @Tags groups
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param edge body createEdgeRequest true "Parent and child group names"
// @Success 200 {object} map[string]string
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ValidationResponse
// @Router /groups/edges [post]
func (h *Handler) CreateGroupEdge(c *gin.Context) {
	var req createEdgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.NewFieldError("body", "format"))
		return
	}

	if err := h.hierarchy.AddEdge(c.Request.Context(), req.Parent, req.Child); err != nil {
		h.respondError(c, err)
		return
	}

	respondWithJSON(c, http.StatusOK, map[string]string{"status": "linked"})
}

// GrantGroupAccess creates (or resets) a user's grant on a group.
// @Summary Grant group access
// @Tags access
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param grant body groupAccessRequest true "Grant"
// @Success 200 {object} map[string]string
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /group_accesses [post]
func (h *Handler) GrantGroupAccess(c *gin.Context) {
	var req groupAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.NewFieldError("body", "format"))
		return
	}

	if err := h.access.Grant(c.Request.Context(), req.UserID, req.Group, req.Recursive); err != nil {
		h.respondError(c, err)
		return
	}

	respondWithJSON(c, http.StatusOK, map[string]string{"status": "granted"})
}

// ToggleGroupAccess flips the recursive flag on an existing grant.
// Toggling a grant that does not exist is NotFound, never a create.
// @Summary Toggle a grant's recursive flag
// @Tags access
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param grant body groupAccessRequest true "Grant to toggle (recursive field ignored)"
// @Success 200 {object} map[string]string
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /group_accesses [put]
func (h *Handler) ToggleGroupAccess(c *gin.Context) {
	var req groupAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.NewFieldError("body", "format"))
		return
	}

	if err := h.access.Toggle(c.Request.Context(), req.UserID, req.Group); err != nil {
		h.respondError(c, err)
		return
	}

	respondWithJSON(c, http.StatusOK, map[string]string{"status": "toggled"})
}

// RevokeGroupAccess deletes a user's grant on a group.
// @Summary Revoke group access
// @Tags access
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param grant body groupAccessRequest true "Grant to revoke"
// @Success 200 {object} map[string]string
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /group_accesses [delete]
func (h *Handler) RevokeGroupAccess(c *gin.Context) {
	var req groupAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.NewFieldError("body", "format"))
		return
	}

	if err := h.access.Revoke(c.Request.Context(), req.UserID, req.Group); err != nil {
		h.respondError(c, err)
		return
	}

	respondWithJSON(c, http.StatusOK, map[string]string{"status": "revoked"})
}

// CreateSyncClient registers an upstream sync agent.
// @Summary Create a sync client
// @Tags sync-clients
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param client body createSyncClientRequest true "Sync client"
// @Success 200 {object} models.SyncClient
// @Failure 401 {object} ErrorResponse
// @Failure 422 {object} ValidationResponse
// @Router /sync_clients [post]
func (h *Handler) CreateSyncClient(c *gin.Context) {
	var req createSyncClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.NewFieldError("body", "format"))
		return
	}

	fields := map[string][]string{}
	if req.APIKey == "" {
		fields["api_key"] = append(fields["api_key"], "required")
	}
	if req.Type != models.SyncClientPublic && req.Type != models.SyncClientPrivate {
		fields["type"] = append(fields["type"], "invalid")
	}
	if len(fields) > 0 {
		h.respondError(c, apperrors.NewValidationError(fields))
		return
	}

	client := &models.SyncClient{
		BaseURL: req.BaseURL,
		APIKey:  req.APIKey,
		Type:    req.Type,
	}
	if err := h.store.CreateSyncClient(c.Request.Context(), client); err != nil {
		h.respondError(c, err)
		return
	}

	respondWithJSON(c, http.StatusOK, client)
}

// ListSyncClients lists the registered sync agents.
// @Summary List sync clients
// @Tags sync-clients
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.SyncClient
// @Failure 401 {object} ErrorResponse
// @Router /sync_clients [get]
func (h *Handler) ListSyncClients(c *gin.Context) {
	clients, err := h.store.ListSyncClients(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if clients == nil {
		clients = []*models.SyncClient{}
	}

	respondWithJSON(c, http.StatusOK, clients)
}

// DeleteSyncClient removes a sync agent. Its repositories become
// orphaned and claimable, not deleted.
// @Summary Delete a sync client
// @Tags sync-clients
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Sync client ID"
// @Success 200 {object} map[string]string
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /sync_clients/{id} [delete]
func (h *Handler) DeleteSyncClient(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.respondError(c, apperrors.NewFieldError("id", "format"))
		return
	}

	err = h.store.DeleteSyncClient(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	respondWithJSON(c, http.StatusOK, map[string]string{"status": "deleted"})
}
