package api

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/devtime/server/internal/access"
	"github.com/devtime/server/internal/analytics"
	"github.com/devtime/server/internal/auth"
	"github.com/devtime/server/internal/db"
	apperrors "github.com/devtime/server/internal/errors"
	"github.com/devtime/server/internal/groups"
	"github.com/devtime/server/internal/identity"
	"github.com/devtime/server/internal/ingest"
)

type Handler struct {
	store     db.Store
	ingest    *ingest.Service
	engine    *analytics.Engine
	access    *access.Service
	hierarchy *groups.Service
	identity  *identity.Service
	auth      *auth.Service
	oauth     *auth.OAuthService
	tokens    *auth.TokenService
	logger    *logrus.Logger
}

func NewHandler(
	store db.Store,
	ingestSvc *ingest.Service,
	engine *analytics.Engine,
	accessSvc *access.Service,
	hierarchy *groups.Service,
	identitySvc *identity.Service,
	authSvc *auth.Service,
	oauthSvc *auth.OAuthService,
	tokens *auth.TokenService,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		store:     store,
		ingest:    ingestSvc,
		engine:    engine,
		access:    accessSvc,
		hierarchy: hierarchy,
		identity:  identitySvc,
		auth:      authSvc,
		oauth:     oauthSvc,
		tokens:    tokens,
		logger:    logger,
	}
}

// ErrorResponse is the error envelope for everything except validation.
type ErrorResponse struct {
	Message string `json:"message"`
}

// ValidationResponse maps each failing request field to its codes.
type ValidationResponse struct {
	Errors map[string][]string `json:"errors"`
}

func respondWithJSON(c *gin.Context, code int, payload interface{}) {
	c.JSON(code, payload)
}

func respondWithError(c *gin.Context, code int, message string) {
	c.JSON(code, ErrorResponse{Message: message})
}

// respondError maps a service error to its HTTP status. Internal causes
// are logged, never echoed.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch err {
	case sql.ErrNoRows:
		respondWithError(c, http.StatusNotFound, "not found")
		return
	case db.ErrDuplicate:
		respondWithError(c, http.StatusConflict, "already exists")
		return
	}

	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		h.logger.Errorf("unhandled error: %v", err)
		respondWithError(c, http.StatusInternalServerError, "internal error")
		return
	}

	switch appErr.Type {
	case apperrors.ErrInvalidInput:
		c.JSON(http.StatusUnprocessableEntity, ValidationResponse{Errors: appErr.Fields})
	case apperrors.ErrNotFound:
		respondWithError(c, http.StatusNotFound, appErr.Message)
	case apperrors.ErrUnauthorized:
		respondWithError(c, http.StatusUnauthorized, appErr.Message)
	case apperrors.ErrConflict:
		respondWithError(c, http.StatusConflict, appErr.Message)
	case apperrors.ErrUpstream:
		h.logger.Errorf("upstream failure: %v", appErr)
		respondWithError(c, http.StatusBadGateway, appErr.Message)
	default:
		h.logger.Errorf("internal failure: %v", appErr)
		respondWithError(c, http.StatusInternalServerError, "internal error")
	}
}

// parseWindow reads the shared time-window query parameters. Range and
// interval validation happens in the analytics package; only the number
// parsing is checked here.
func parseWindow(c *gin.Context) (analytics.Window, error) {
	fields := map[string][]string{}

	start, err := int64Query(c, "start", 0)
	if err != nil {
		fields["start"] = append(fields["start"], "format")
	}
	end, err := int64Query(c, "end", 0)
	if err != nil {
		fields["end"] = append(fields["end"], "format")
	}

	if len(fields) > 0 {
		return analytics.Window{}, apperrors.NewValidationError(fields)
	}

	timezone := c.Query("timezone")
	if timezone == "" {
		timezone = "UTC"
	}

	return analytics.Window{
		Start:      start,
		End:        end,
		Timezone:   timezone,
		Interval:   c.DefaultQuery("interval", "day"),
		Cumulative: boolQuery(c, "cumulative"),
	}, nil
}

func int64Query(c *gin.Context, name string, defaultValue int64) (int64, error) {
	value := c.Query(name)
	if value == "" {
		return defaultValue, nil
	}
	return strconv.ParseInt(value, 10, 64)
}

func intQuery(c *gin.Context, name string, defaultValue int) (int, error) {
	value := c.Query(name)
	if value == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(value)
}

func boolQuery(c *gin.Context, name string) bool {
	value := c.Query(name)
	return value == "true" || value == "1"
}

// csvQuery splits a comma-separated query parameter, dropping empty
// entries so "a,,b" and "" behave sensibly.
func csvQuery(c *gin.Context, name string) []string {
	value := c.Query(name)
	if value == "" {
		return nil
	}

	var parts []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

func csvInt64Query(c *gin.Context, name string) ([]int64, error) {
	var ids []int64
	for _, part := range csvQuery(c, name) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, apperrors.NewFieldError(name, "format")
		}
		ids = append(ids, id)
	}
	return ids, nil
}
