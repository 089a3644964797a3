package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/shootyourshot/backend/internal/api/handlers"
	"github.com/shootyourshot/backend/internal/config"
	"github.com/shootyourshot/backend/internal/middleware"
	"github.com/shootyourshot/backend/internal/session"
	"github.com/shootyourshot/backend/internal/ws"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *sqlx.DB, cfg *config.Config, repo handlers.LevelRepository, sessions *session.Manager, hub *ws.Hub) {
	router.Use(middleware.CORSMiddleware(cfg))

	if !cfg.IsProduction() {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] no-cache headers enabled for all routes")
	}

	requirePlayer := middleware.RequirePlayer(cfg)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(sessions))

		v1.POST("/auth/guest", handlers.GuestLogin(db, cfg))

		lv := v1.Group("/levels")
		{
			lv.GET("", handlers.ListLevels(repo))
			lv.GET("/:id", handlers.GetLevel(repo))
			lv.GET("/:id/leaderboard", handlers.GetLeaderboard(repo))
			lv.POST("", middleware.RequireAdmin(cfg), handlers.CreateLevel(repo))
		}

		sess := v1.Group("/sessions", requirePlayer)
		{
			sess.POST("", handlers.CreateSession(sessions))
			sess.GET("/:id", handlers.GetSession(sessions))
			sess.GET("/:id/level", handlers.ExportSessionLevel(sessions))
			sess.DELETE("/:id", handlers.DeleteSession(sessions))
			sess.GET("/:id/ws", handlers.SessionWebSocket(sessions, hub))
		}
	}
}
