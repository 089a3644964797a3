package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shootyourshot/backend/internal/models"
)

// LevelRepository is implemented by levels.Repository.
type LevelRepository interface {
	Create(ctx context.Context, name string, raw []byte) (*models.Level, bool, error)
	Get(ctx context.Context, id int) (*models.Level, error)
	List(ctx context.Context) ([]models.LevelSummary, error)
	TopScores(ctx context.Context, levelID, limit int) ([]models.LeaderboardEntry, error)
}

func ListLevels(repo LevelRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := repo.List(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"levels": list})
	}
}

func GetLevel(repo LevelRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		lvl, err := repo.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, lvl)
	}
}

// CreateLevel stores a level document. Resubmitting an identical level
// returns the stored one with 200 instead of 201.
func CreateLevel(repo LevelRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name  string          `json:"name" binding:"required"`
			Level json.RawMessage `json:"level" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name and level are required"})
			return
		}

		lvl, created, err := repo.Create(c.Request.Context(), req.Name, req.Level)
		if err != nil {
			respondError(c, err)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		c.JSON(status, lvl)
	}
}

func GetLeaderboard(repo LevelRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		if limit <= 0 || limit > 100 {
			limit = 10
		}
		entries, err := repo.TopScores(c.Request.Context(), id, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"level_id": id, "entries": entries})
	}
}
