package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devtime/server/internal/auth"
	apperrors "github.com/devtime/server/internal/errors"
	"github.com/devtime/server/internal/models"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse carries a fresh JWT and the user it belongs to.
type TokenResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates a password user.
// @Summary Register
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body credentialsRequest true "Username and password"
// @Success 200 {object} TokenResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ValidationResponse
// @Router /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.NewFieldError("body", "format"))
		return
	}

	user, token, err := h.auth.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	respondWithJSON(c, http.StatusOK, TokenResponse{Token: token, User: user})
}

// Login verifies a password and issues a token.
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body credentialsRequest true "Username and password"
// @Success 200 {object} TokenResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.NewFieldError("body", "format"))
		return
	}

	user, token, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	respondWithJSON(c, http.StatusOK, TokenResponse{Token: token, User: user})
}

// RegenerateToken issues a fresh token for the authenticated user.
// @Summary Regenerate token
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} TokenResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/regenerate [post]
func (h *Handler) RegenerateToken(c *gin.Context) {
	user := auth.UserFromContext(c)

	token, err := h.auth.Regenerate(user)
	if err != nil {
		h.respondError(c, err)
		return
	}

	respondWithJSON(c, http.StatusOK, TokenResponse{Token: token, User: user})
}

// OAuthLogin redirects to the provider's consent page.
// @Summary Start an OAuth login
// @Tags auth
// @Param provider path string true "github, gitlab, bitbucket or microsoft"
// @Param state query string false "Opaque state echoed back on the callback"
// @Success 307
// @Failure 422 {object} ValidationResponse
// @Router /auth/{provider}/login [get]
func (h *Handler) OAuthLogin(c *gin.Context) {
	url, err := h.oauth.LoginURL(c.Param("provider"), c.Query("state"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, url)
}

// OAuthCallback finishes an OAuth login: the provider's verified emails
// are linked to the resolved user and a token is issued.
// @Summary Finish an OAuth login
// @Tags auth
// @Produce json
// @Param provider path string true "github, gitlab, bitbucket or microsoft"
// @Param code query string true "Authorization code"
// @Success 200 {object} TokenResponse
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /auth/{provider}/callback [get]
func (h *Handler) OAuthCallback(c *gin.Context) {
	user, err := h.oauth.HandleCallback(c.Request.Context(), c.Param("provider"), c.Query("code"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	token, err := h.auth.Regenerate(user)
	if err != nil {
		h.respondError(c, err)
		return
	}

	respondWithJSON(c, http.StatusOK, TokenResponse{Token: token, User: user})
}

// ListEmails lists the authenticated user's linked emails.
// @Summary List linked emails
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.Email
// @Failure 401 {object} ErrorResponse
// @Router /auth/emails [get]
func (h *Handler) ListEmails(c *gin.Context) {
	emails, err := h.identity.Emails(c.Request.Context(), auth.UserFromContext(c).ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if emails == nil {
		emails = []*models.Email{}
	}

	respondWithJSON(c, http.StatusOK, emails)
}
