package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"

	"github.com/shootyourshot/backend/internal/api"
	"github.com/shootyourshot/backend/internal/config"
	"github.com/shootyourshot/backend/internal/database"
	"github.com/shootyourshot/backend/internal/levels"
	"github.com/shootyourshot/backend/internal/middleware"
	"github.com/shootyourshot/backend/internal/migrations"
	"github.com/shootyourshot/backend/internal/redis"
	"github.com/shootyourshot/backend/internal/session"
	"github.com/shootyourshot/backend/internal/ws"
)

func main() {
	cfg := config.Load()
	if err := cfg.Game.Validate(); err != nil {
		log.Fatalf("Invalid physics configuration: %v", err)
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.SentryEnvironment,
			Release:     "shootyourshot@" + version,
		}); err != nil {
			log.Printf("[SENTRY] Init failed: %v", err)
		} else {
			log.Printf("[SENTRY] Reporting enabled (env=%s)", cfg.SentryEnvironment)
			defer sentry.Flush(5 * time.Second)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *sqlx.DB
	if cfg.DatabaseURL != "" {
		if os.Getenv("MIGRATE_ON_START") == "true" {
			log.Println("[MIGRATE] Running DB migrations on startup...")
			if err := migrations.RunMigrations(cfg.DatabaseURL, migrationsDir()); err != nil {
				log.Fatalf("Failed to run migrations: %v", err)
			}
		}

		var err error
		db, err = database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
	} else {
		log.Println("[DB] DATABASE_URL not set; stored levels and scores disabled")
	}

	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		var err error
		rdb, err = redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
	} else {
		log.Println("[REDIS] REDIS_URL not set; snapshots, events and cached leaderboards disabled")
	}

	repo := levels.NewRepository(db, rdb, cfg.Game)
	sessions := session.NewManager(cfg, rdb, repo)
	hub := ws.NewHub(middleware.OriginAllowed(cfg))
	ws.StartEventSubscriber(ctx, rdb, hub)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, db, cfg, repo, sessions, hub)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting shootyourshot server on port %s (tick rate %d Hz)", cfg.Port, cfg.Game.TickRate)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
	sessions.Shutdown(shutdownCtx)
}

const version = "1.0.0"

func migrationsDir() string {
	if dir := os.Getenv("MIGRATIONS_DIR"); dir != "" {
		return dir
	}
	return "migrations"
}
