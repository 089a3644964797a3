package handlers

import (
	"log"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/shootyourshot/backend/internal/config"
	"github.com/shootyourshot/backend/internal/middleware"
)

// ephemeral player ids, used when no database is configured
var lastEphemeralID atomic.Int64

// GuestLogin creates a player and returns a signed token for it.
func GuestLogin(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			DisplayName string `json:"display_name"`
		}
		// an empty body is fine
		_ = c.ShouldBindJSON(&req)

		name := strings.TrimSpace(req.DisplayName)
		if name == "" {
			name = guestName()
		}
		if len(name) > 64 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "display_name too long"})
			return
		}

		var id int
		if db != nil {
			err := db.GetContext(c.Request.Context(), &id,
				`INSERT INTO players (display_name, created_at) VALUES ($1, NOW()) RETURNING id`, name)
			if err != nil {
				log.Printf("[AUTH] Failed to create player %q: %v", name, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
				return
			}
		} else {
			id = int(lastEphemeralID.Add(1))
		}

		token, exp, err := middleware.IssueToken(cfg, id)
		if err != nil {
			log.Printf("[AUTH] Failed to sign token: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token":      token,
			"expires_at": exp.UTC(),
			"player":     gin.H{"id": id, "display_name": name},
		})
	}
}
