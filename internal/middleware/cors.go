package middleware

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/shootyourshot/backend/internal/config"
)

// CORSMiddleware returns a CORS middleware configured for the environment
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	log.Printf("[CORS] Environment: %s, FrontendURL: %s", cfg.Environment, cfg.FrontendURL)

	corsConfig := cors.Config{
		AllowMethods: []string{
			"GET", "POST", "DELETE", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin", "Content-Length", "Content-Type", "Authorization",
			"X-Admin-Token", "Accept", "Cache-Control", "X-Requested-With",
		},
		ExposeHeaders: []string{
			"Content-Length", "X-Session-ID",
		},
		AllowOrigins:     AllowedOrigins(cfg),
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(corsConfig.AllowOrigins) == 0 {
		log.Printf("[CORS] No FRONTEND_URL set, allowing all origins without credentials")
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	} else if cfg.IsProduction() {
		log.Printf("[CORS] Production allowed origins: %v", corsConfig.AllowOrigins)
	}
	return cors.New(corsConfig)
}

// AllowedOrigins lists the browser origins allowed to call the API.
func AllowedOrigins(cfg *config.Config) []string {
	if !cfg.IsProduction() {
		origins := []string{"http://localhost:5173", "http://127.0.0.1:5173"}
		if cfg.FrontendURL != "" && cfg.FrontendURL != origins[0] {
			origins = append(origins, cfg.FrontendURL)
		}
		return origins
	}
	if cfg.FrontendURL != "" {
		return []string{cfg.FrontendURL}
	}
	return nil
}

// OriginAllowed is the websocket upgrader's origin check.
func OriginAllowed(cfg *config.Config) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			// non-browser clients
			return true
		}
		if !cfg.IsProduction() {
			return strings.HasPrefix(origin, "http://localhost:") ||
				strings.HasPrefix(origin, "http://127.0.0.1:")
		}
		for _, allowed := range AllowedOrigins(cfg) {
			if origin == allowed {
				return true
			}
		}
		return false
	}
}
