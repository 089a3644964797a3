package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/shootyourshot/backend/internal/game"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Sessions
	MaxSessions               int
	SessionSnapshotEveryTicks int
	SessionTTLMinutes         int

	// Security
	JWTSecret         string
	TokenTTLMinutes   int
	AdminTokenHash    string
	SentryDSN         string
	SentryEnvironment string

	// Physics
	Game game.Config
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", ""),

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Sessions
		MaxSessions:               getEnvInt("MAX_SESSIONS", 500),
		SessionSnapshotEveryTicks: getEnvInt("SESSION_SNAPSHOT_EVERY_TICKS", 30),
		SessionTTLMinutes:         getEnvInt("SESSION_TTL_MINUTES", 30),

		// Security
		JWTSecret:         getEnv("JWT_SECRET", "change-me-in-production"),
		TokenTTLMinutes:   getEnvInt("TOKEN_TTL_MINUTES", 24*60),
		AdminTokenHash:    getEnv("ADMIN_TOKEN_HASH", ""),
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		SentryEnvironment: getEnv("SENTRY_ENVIRONMENT", getEnv("APP_ENV", "development")),

		Game: loadGame(),
	}
}

// loadGame overlays PHYSICS_* variables on the default physics tuning.
func loadGame() game.Config {
	d := game.DefaultConfig()
	return game.Config{
		Friction:            getEnvFloat("PHYSICS_FRICTION", d.Friction),
		MaxVelocity:         getEnvFloat("PHYSICS_MAX_VELOCITY", d.MaxVelocity),
		StepScale:           getEnvFloat("PHYSICS_STEP_SCALE", d.StepScale),
		SpeedScale:          getEnvFloat("PHYSICS_SPEED_SCALE", d.SpeedScale),
		BallRadius:          getEnvFloat("PHYSICS_BALL_RADIUS", d.BallRadius),
		ScreenW:             getEnvFloat("PHYSICS_SCREEN_WIDTH", d.ScreenW),
		ScreenH:             getEnvFloat("PHYSICS_SCREEN_HEIGHT", d.ScreenH),
		BorderSize:          getEnvFloat("PHYSICS_BORDER_SIZE", d.BorderSize),
		SquareSize:          getEnvFloat("PHYSICS_SQUARE_SIZE", d.SquareSize),
		CheckpointThreshold: getEnvFloat("PHYSICS_CHECKPOINT_THRESHOLD", d.CheckpointThreshold),
		TickRate:            getEnvInt("PHYSICS_TICK_RATE", d.TickRate),
		WinAnimationSeconds: getEnvFloat("PHYSICS_WIN_ANIMATION_SECONDS", d.WinAnimationSeconds),
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
