package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/devtime/server/internal/analytics"
	"github.com/devtime/server/internal/auth"
	apperrors "github.com/devtime/server/internal/errors"
)

// GetTimeline renders the interval timeline for a group.
// @Summary Group time timeline
// @Description Buckets the group's time samples by interval. Cumulative mode makes each bucket include everything before it.
// @Tags views
// @Produce json
// @Security ApiKeyAuth
// @Param group_name path string true "Group name"
// @Param start query int true "Window start (unix seconds)"
// @Param end query int true "Window end (unix seconds)"
// @Param interval query string false "hour, day, week, month or year" default(day)
// @Param timezone query string false "IANA timezone" default(UTC)
// @Param cumulative query bool false "Cumulative buckets"
// @Success 200 {array} models.TimelineBucket
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ValidationResponse
// @Router /{group_name}/timeline [get]
func (h *Handler) GetTimeline(c *gin.Context) {
	groupName := c.Param("group_name")
	if !h.authorizeGroup(c, groupName) {
		return
	}

	window, err := parseWindow(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	buckets, err := h.engine.Timeline(c.Request.Context(), groupName, window)
	if err != nil {
		h.respondError(c, err)
		return
	}

	respondWithJSON(c, http.StatusOK, buckets)
}

// GetActivity renders the cyclic-activity view for a group.
// @Summary Group cyclic activity
// @Description Folds the group's file edits onto the interval's recurrence: hours of the day, days of the week, days of the month or months of the year.
// @Tags views
// @Produce json
// @Security ApiKeyAuth
// @Param group_name path string true "Group name"
// @Param start query int true "Window start (unix seconds)"
// @Param end query int true "Window end (unix seconds)"
// @Param interval query string false "day, week, month or year" default(day)
// @Param timezone query string false "IANA timezone" default(UTC)
// @Param cumulative query bool false "Cumulative slots"
// @Success 200 {array} models.ActivityBucket
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ValidationResponse
// @Router /{group_name}/activity [get]
func (h *Handler) GetActivity(c *gin.Context) {
	groupName := c.Param("group_name")
	if !h.authorizeGroup(c, groupName) {
		return
	}

	window, err := parseWindow(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	buckets, err := h.engine.Activity(c.Request.Context(), groupName, window)
	if err != nil {
		h.respondError(c, err)
		return
	}

	respondWithJSON(c, http.StatusOK, buckets)
}

// GetSubdirsTimeline renders the per-bucket subdirectory roll-up.
// @Summary Group subdirectory timeline
// @Description Rolls the group's file edits up to path prefixes of the requested depth per bucket. Paths below the keep thresholds fuse into "other".
// @Tags views
// @Produce json
// @Security ApiKeyAuth
// @Param group_name path string true "Group name"
// @Param start query int true "Window start (unix seconds)"
// @Param end query int true "Window end (unix seconds)"
// @Param interval query string false "hour, day, week, month or year" default(day)
// @Param timezone query string false "IANA timezone" default(UTC)
// @Param cumulative query bool false "Cumulative buckets"
// @Param depth query int false "Path prefix depth" default(1)
// @Param time_threshold query number false "Keep threshold in hours (derived from the window when absent)"
// @Param lines_threshold query int false "Keep threshold in changed lines (derived from the window when absent)"
// @Success 200 {object} models.SubdirTimeline
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ValidationResponse
// @Router /{group_name}/subdirs-timeline [get]
func (h *Handler) GetSubdirsTimeline(c *gin.Context) {
	groupName := c.Param("group_name")
	if !h.authorizeGroup(c, groupName) {
		return
	}

	window, err := parseWindow(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	depth, err := intQuery(c, "depth", 1)
	if err != nil {
		h.respondError(c, apperrors.NewFieldError("depth", "format"))
		return
	}

	query := analytics.SubdirQuery{Window: window, Depth: depth}

	if raw := c.Query("time_threshold"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			h.respondError(c, apperrors.NewFieldError("time_threshold", "format"))
			return
		}
		query.TimeThreshold = &value
	}
	if raw := c.Query("lines_threshold"); raw != "" {
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.respondError(c, apperrors.NewFieldError("lines_threshold", "format"))
			return
		}
		query.LineThreshold = &value
	}

	timeline, err := h.engine.SubdirTimeline(c.Request.Context(), groupName, query)
	if err != nil {
		h.respondError(c, err)
		return
	}

	respondWithJSON(c, http.StatusOK, timeline)
}

// GetComparisonTimeline renders the cross-cohort comparison. Every
// requested group must be accessible to the caller.
// @Summary Cross-group comparison
// @Description Compares time, commits and line totals across the union of the requested groups' repositories, highlighting the subset matching the repo, branch and user filters.
// @Tags views
// @Produce json
// @Security ApiKeyAuth
// @Param groups query string true "Comma-separated group names"
// @Param repo query string false "Comma-separated repository IDs to highlight"
// @Param branch query string false "Comma-separated branches to highlight"
// @Param user query string false "Comma-separated users to highlight"
// @Param start query int true "Window start (unix seconds)"
// @Param end query int true "Window end (unix seconds)"
// @Param interval query string false "hour, day, week, month or year" default(day)
// @Param timezone query string false "IANA timezone" default(UTC)
// @Param cumulative query bool false "Cumulative timeline buckets"
// @Success 200 {object} models.Comparison
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ValidationResponse
// @Router /comparison/timeline [get]
func (h *Handler) GetComparisonTimeline(c *gin.Context) {
	groupNames := csvQuery(c, "groups")
	for _, name := range groupNames {
		if !h.authorizeGroup(c, name) {
			return
		}
	}

	window, err := parseWindow(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	repoIDs, err := csvInt64Query(c, "repo")
	if err != nil {
		h.respondError(c, err)
		return
	}

	comparison, err := h.engine.Comparison(c.Request.Context(), analytics.ComparisonQuery{
		Window:   window,
		Groups:   groupNames,
		Repos:    repoIDs,
		Branches: csvQuery(c, "branch"),
		Users:    csvQuery(c, "user"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	respondWithJSON(c, http.StatusOK, comparison)
}

// GetStats renders the per-user and per-path stats for a group.
// @Summary Group contributor and path stats
// @Tags views
// @Produce json
// @Security ApiKeyAuth
// @Param group_name path string true "Group name"
// @Param start query int true "Window start (unix seconds)"
// @Param end query int true "Window end (unix seconds)"
// @Param depth query int false "Path prefix depth" default(1)
// @Success 200 {object} models.GroupStats
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ValidationResponse
// @Router /{group_name}/stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	groupName := c.Param("group_name")
	if !h.authorizeGroup(c, groupName) {
		return
	}

	start, err := int64Query(c, "start", 0)
	if err != nil {
		h.respondError(c, apperrors.NewFieldError("start", "format"))
		return
	}
	end, err := int64Query(c, "end", 0)
	if err != nil {
		h.respondError(c, apperrors.NewFieldError("end", "format"))
		return
	}
	depth, err := intQuery(c, "depth", 1)
	if err != nil {
		h.respondError(c, apperrors.NewFieldError("depth", "format"))
		return
	}

	stats, err := h.engine.Stats(c.Request.Context(), groupName, start, end, depth)
	if err != nil {
		h.respondError(c, err)
		return
	}

	respondWithJSON(c, http.StatusOK, stats)
}

// GetExport streams the denormalized per-(commit, path) rows.
// @Summary Export group facts
// @Tags views
// @Produce json
// @Security ApiKeyAuth
// @Param group_name path string true "Group name"
// @Param start query int true "Window start (unix seconds)"
// @Param end query int true "Window end (unix seconds)"
// @Success 200 {array} models.ExportRow
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ValidationResponse
// @Router /{group_name}/export [get]
func (h *Handler) GetExport(c *gin.Context) {
	groupName := c.Param("group_name")
	if !h.authorizeGroup(c, groupName) {
		return
	}

	start, err := int64Query(c, "start", 0)
	if err != nil {
		h.respondError(c, apperrors.NewFieldError("start", "format"))
		return
	}
	end, err := int64Query(c, "end", 0)
	if err != nil {
		h.respondError(c, apperrors.NewFieldError("end", "format"))
		return
	}

	rows, err := h.engine.Export(c.Request.Context(), groupName, start, end)
	if err != nil {
		h.respondError(c, err)
		return
	}

	respondWithJSON(c, http.StatusOK, rows)
}

// authorizeGroup checks the caller's access to a group and writes the
// error response itself when the check fails.
func (h *Handler) authorizeGroup(c *gin.Context, groupName string) bool {
	err := h.access.Authorize(c.Request.Context(), auth.UserFromContext(c), groupName)
	if err != nil {
		h.respondError(c, err)
		return false
	}
	return true
}
