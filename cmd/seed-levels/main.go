package main

import (
	"context"
	"log"
	"os"
	"sort"
	"time"

	"github.com/shootyourshot/backend/internal/config"
	"github.com/shootyourshot/backend/internal/database"
	"github.com/shootyourshot/backend/internal/game"
	"github.com/shootyourshot/backend/internal/levels"
	"github.com/shootyourshot/backend/internal/middleware"
	"github.com/shootyourshot/backend/internal/migrations"
)

func main() {
	cfg := config.Load()

	// Print a hash for ADMIN_TOKEN_HASH when a plain token is supplied.
	if token := os.Getenv("ADMIN_TOKEN"); token != "" {
		hash, err := middleware.HashAdminToken(token)
		if err != nil {
			log.Fatalf("Failed to hash admin token: %v", err)
		}
		log.Printf("ADMIN_TOKEN_HASH=%s", hash)
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required to seed levels")
	}

	dir := os.Getenv("MIGRATIONS_DIR")
	if dir == "" {
		dir = "migrations"
	}
	if err := migrations.RunMigrations(cfg.DatabaseURL, dir); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repo := levels.NewRepository(db, nil, cfg.Game)
	codec := game.NewCodec(cfg.Game)

	builtin := levels.Builtin(cfg.Game)
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		data, err := codec.EncodeLevel(builtin[name])
		if err != nil {
			log.Fatalf("Failed to encode %q: %v", name, err)
		}
		lvl, created, err := repo.Create(ctx, name, data)
		if err != nil {
			log.Fatalf("Failed to seed %q: %v", name, err)
		}
		if created {
			log.Printf("✓ Seeded %q as level %d (fingerprint %s)", name, lvl.ID, lvl.Fingerprint)
		} else {
			log.Printf("  %q already present as level %d", name, lvl.ID)
		}
	}
}
