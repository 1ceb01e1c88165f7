package api

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/devtime/server/docs"
	"github.com/devtime/server/internal/auth"
)

// @title DevTime API
// @version 1.0
// @description Per-commit coding-activity analytics: ingest, grouping, access control and aggregation views.
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// SetupRouter configures the API routes.
func SetupRouter(h *Handler) *gin.Engine {
	r := gin.Default()

	// API documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// Sync-client endpoints, authenticated by API key inside the
	// ingest service.
	v1.POST("/repositories", h.CreateRepository)
	v1.PUT("/repositories", h.UpdateRepository)
	v1.GET("/commits/hash", h.GetCommitHash)

	// Password and OAuth login, no token required.
	v1.POST("/auth/register", h.Register)
	v1.POST("/auth/login", h.Login)
	v1.GET("/auth/:provider/login", h.OAuthLogin)
	v1.GET("/auth/:provider/callback", h.OAuthCallback)

	// User endpoints.
	user := v1.Group("", auth.RequireUser(h.tokens, h.store))
	{
		user.POST("/auth/regenerate", h.RegenerateToken)
		user.GET("/auth/emails", h.ListEmails)

		user.GET("/repositories", h.ListRepositories)
		user.DELETE("/repositories/:id", h.DeleteRepository)

		user.GET("/groups", h.ListGroups)

		user.GET("/comparison/timeline", h.GetComparisonTimeline)
		user.GET("/:group_name/timeline", h.GetTimeline)
		user.GET("/:group_name/activity", h.GetActivity)
		user.GET("/:group_name/subdirs-timeline", h.GetSubdirsTimeline)
		user.GET("/:group_name/stats", h.GetStats)
		user.GET("/:group_name/export", h.GetExport)
	}

	// Admin endpoints.
	admin := v1.Group("", auth.RequireUser(h.tokens, h.store), auth.RequireAdmin())
	{
		admin.POST("/groups", h.CreateGroup)
		admin.POST("/groups/edges", h.CreateGroupEdge)

		admin.POST("/group_accesses", h.GrantGroupAccess)
		admin.PUT("/group_accesses", h.ToggleGroupAccess)
		admin.DELETE("/group_accesses", h.RevokeGroupAccess)

		admin.POST("/sync_clients", h.CreateSyncClient)
		admin.GET("/sync_clients", h.ListSyncClients)
		admin.DELETE("/sync_clients/:id", h.DeleteSyncClient)
	}

	return r
}
