package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/promptstack-dev/promptstack/internal/handlers"
	"github.com/promptstack-dev/promptstack/internal/middleware"
	"github.com/promptstack-dev/promptstack/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws/:prompt_id", middleware.AuthMiddleware(), handlers.WatchPrompt)

		auth := api.Group("/auth")
		{
			auth.POST("/signup", handlers.Signup)
			auth.POST("/login", handlers.Login)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
			auth.PUT("/me", middleware.AuthMiddleware(), handlers.UpdateMe)
			auth.DELETE("/me", middleware.AuthMiddleware(), handlers.DeactivateMe)
		}

		projects := api.Group("/projects", middleware.AuthMiddleware())
		{
			projects.POST("", handlers.CreateProject)
			projects.GET("", handlers.ListProjects)
			projects.GET("/:project_id", handlers.GetProject)
			projects.PUT("/:project_id", handlers.UpdateProject)
			projects.DELETE("/:project_id", handlers.DeleteProject)

			projects.GET("/:project_id/dashboard", handlers.GetDashboard)

			projects.POST("/:project_id/prompts", handlers.CreatePrompt)
			projects.GET("/:project_id/prompts", handlers.ListPrompts)
		}

		prompts := api.Group("/prompts")
		{
			// The active-version lookup is the one public endpoint; it must
			// stay reachable without a token.
			prompts.GET("/:prompt_id/active-version", handlers.GetActiveVersion)

			authed := prompts.Group("", middleware.AuthMiddleware())
			{
				authed.GET("/:prompt_id", handlers.GetPrompt)
				authed.PUT("/:prompt_id", handlers.UpdatePrompt)
				authed.DELETE("/:prompt_id", handlers.DeletePrompt)

				authed.POST("/:prompt_id/versions", handlers.CreateVersion)
				authed.GET("/:prompt_id/versions", handlers.ListVersions)
			}
		}

		versions := api.Group("/prompt-versions", middleware.AuthMiddleware())
		{
			versions.GET("/:version_id", handlers.GetVersion)
			versions.PUT("/:version_id", handlers.UpdateVersion)
			versions.DELETE("/:version_id", handlers.DeleteVersion)
		}
	}

	return r
}
