package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/shootyourshot/backend/internal/config"
)

// PlayerIDKey is the gin context key set by RequirePlayer.
const PlayerIDKey = "player_id"

var ErrInvalidToken = errors.New("invalid token")

// IssueToken signs an HS256 player token.
func IssueToken(cfg *config.Config, playerID int) (string, time.Time, error) {
	ttl := time.Duration(cfg.TokenTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	exp := time.Now().Add(ttl)
	claims := jwt.MapClaims{
		"player_id": playerID,
		"exp":       jwt.NewNumericDate(exp).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// ParseToken validates a player token and returns its player id.
func ParseToken(cfg *config.Config, token string) (int, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		return 0, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	id, ok := claims["player_id"].(float64)
	if !ok || id <= 0 {
		return 0, ErrInvalidToken
	}
	return int(id), nil
}

// RequirePlayer validates the bearer JWT and sets player_id. Websocket
// clients may pass the token as ?token= instead, since browsers cannot set
// headers on the upgrade request.
func RequirePlayer(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimPrefix(auth, "Bearer ")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		id, err := ParseToken(cfg, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(PlayerIDKey, id)
		c.Next()
	}
}

// RequireAdmin compares X-Admin-Token against the configured bcrypt hash.
// With no hash configured admin routes are closed.
func RequireAdmin(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.AdminTokenHash == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access disabled"})
			return
		}
		token := c.GetHeader("X-Admin-Token")
		if token == "" || bcrypt.CompareHashAndPassword([]byte(cfg.AdminTokenHash), []byte(token)) != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid admin token"})
			return
		}
		c.Next()
	}
}

// HashAdminToken produces the value for ADMIN_TOKEN_HASH.
func HashAdminToken(token string) (string, error) {
	if len(token) < 12 {
		return "", errors.New("admin token must be at least 12 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash admin token: %w", err)
	}
	return string(hash), nil
}
