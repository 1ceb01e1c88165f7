package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/devtime/server/internal/models"
)

const userContextKey = "auth.user"

// UserLoader resolves a token's user id to the current user row.
type UserLoader interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// RequireUser rejects requests without a valid Bearer token and puts
// the resolved user into the gin context.
func RequireUser(tokens *TokenService, loader UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing bearer token"})
			return
		}

		claims, err := tokens.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
			return
		}

		user, err := loader.GetUserByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unknown user"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireAdmin additionally rejects non-admin users. Must run after
// RequireUser.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := UserFromContext(c)
		if user == nil || user.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "admin required"})
			return
		}
		c.Next()
	}
}

// UserFromContext returns the authenticated user, or nil outside an
// authenticated route.
func UserFromContext(c *gin.Context) *models.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// APIKey extracts the sync-client key header; empty when absent.
func APIKey(c *gin.Context) string {
	return c.GetHeader("API-Key")
}
