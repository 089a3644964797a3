package levels

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/shootyourshot/backend/internal/game"
	"github.com/shootyourshot/backend/internal/models"
)

var (
	ErrLevelNotFound = errors.New("level not found")
	ErrNoDatabase    = errors.New("level store not configured")
	ErrInvalidLevel  = errors.New("invalid level")
)

// Repository stores levels and scores in postgres and mirrors per-level best
// scores into a redis sorted set. Either client may be nil: without postgres
// every call returns ErrNoDatabase, without redis leaderboards come from SQL.
type Repository struct {
	db    *sqlx.DB
	board *Leaderboard
	codec *game.Codec
}

func NewRepository(db *sqlx.DB, rdb *redis.Client, cfg game.Config) *Repository {
	return &Repository{
		db:    db,
		board: NewLeaderboard(rdb),
		codec: game.NewCodec(cfg),
	}
}

func (r *Repository) Codec() *game.Codec {
	return r.codec
}

// Create stores a level under its fingerprint. Submitting the same level
// twice returns the existing row; created reports whether a row was inserted.
func (r *Repository) Create(ctx context.Context, name string, raw []byte) (*models.Level, bool, error) {
	if r.db == nil {
		return nil, false, ErrNoDatabase
	}
	if name == "" {
		return nil, false, fmt.Errorf("%w: name is required", ErrInvalidLevel)
	}

	_, canonical, err := Canonicalize(r.codec, raw)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}
	fp := Fingerprint(canonical)

	var row struct {
		models.Level
		Inserted bool `db:"inserted"`
	}
	err = r.db.GetContext(ctx, &row, `
		INSERT INTO levels (name, fingerprint, data, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (fingerprint) DO UPDATE SET fingerprint = EXCLUDED.fingerprint
		RETURNING id, name, fingerprint, data, created_at, (xmax = 0) AS inserted`,
		name, fp, string(canonical))
	if err != nil {
		return nil, false, fmt.Errorf("insert level: %w", err)
	}

	if row.Inserted {
		log.Printf("[LEVELS] Stored level %d %q (fingerprint %s)", row.ID, row.Name, fp)
	}
	return &row.Level, row.Inserted, nil
}

func (r *Repository) Get(ctx context.Context, id int) (*models.Level, error) {
	if r.db == nil {
		return nil, ErrNoDatabase
	}
	var lvl models.Level
	err := r.db.GetContext(ctx, &lvl, `SELECT id, name, fingerprint, data, created_at FROM levels WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLevelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get level %d: %w", id, err)
	}
	return &lvl, nil
}

func (r *Repository) List(ctx context.Context) ([]models.LevelSummary, error) {
	if r.db == nil {
		return nil, ErrNoDatabase
	}
	out := []models.LevelSummary{}
	if err := r.db.SelectContext(ctx, &out, `SELECT id, name, fingerprint, created_at FROM levels ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list levels: %w", err)
	}
	return out, nil
}

// Load fetches a level and decodes it into a playable state.
func (r *Repository) Load(ctx context.Context, id int) (*game.Level, error) {
	lvl, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	level, err := r.codec.DecodeLevel(lvl.Data)
	if err != nil {
		return nil, fmt.Errorf("decode level %d: %w", id, err)
	}
	return level, nil
}

// RecordScore stores a finished run. Recording the same session twice is a
// no-op.
func (r *Repository) RecordScore(ctx context.Context, s models.Score) error {
	if r.db == nil {
		return ErrNoDatabase
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO scores (level_id, player_id, session_id, strokes, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (session_id) DO NOTHING`,
		s.LevelID, s.PlayerID, s.SessionID, s.Strokes, s.DurationMS)
	if err != nil {
		return fmt.Errorf("insert score: %w", err)
	}

	if err := r.board.Submit(ctx, s.LevelID, s.PlayerID, s.Strokes); err != nil {
		log.Printf("[LEVELS] Leaderboard update failed for level %d: %v", s.LevelID, err)
	}
	return nil
}

// TopScores returns the best run per player, fewest strokes first.
func (r *Repository) TopScores(ctx context.Context, levelID, limit int) ([]models.LeaderboardEntry, error) {
	if r.db == nil {
		return nil, ErrNoDatabase
	}
	if limit <= 0 {
		limit = 10
	}

	if ranked, err := r.board.Top(ctx, levelID, limit); err == nil && len(ranked) > 0 {
		return r.withNames(ctx, ranked)
	} else if err != nil && !errors.Is(err, ErrNoLeaderboard) {
		log.Printf("[LEVELS] Leaderboard read failed for level %d, using SQL: %v", levelID, err)
	}

	out := []models.LeaderboardEntry{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT best.player_id, p.display_name, best.strokes, best.duration_ms
		FROM (
			SELECT DISTINCT ON (player_id) player_id, strokes, duration_ms
			FROM scores WHERE level_id = $1
			ORDER BY player_id, strokes, duration_ms
		) best
		JOIN players p ON p.id = best.player_id
		ORDER BY best.strokes, best.duration_ms
		LIMIT $2`, levelID, limit)
	if err != nil {
		return nil, fmt.Errorf("top scores: %w", err)
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}

func (r *Repository) withNames(ctx context.Context, ranked []models.LeaderboardEntry) ([]models.LeaderboardEntry, error) {
	ids := make([]int, len(ranked))
	for i, e := range ranked {
		ids[i] = e.PlayerID
	}
	query, args, err := sqlx.In(`SELECT id, display_name FROM players WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build name query: %w", err)
	}
	var rows []struct {
		ID          int    `db:"id"`
		DisplayName string `db:"display_name"`
	}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load player names: %w", err)
	}
	names := make(map[int]string, len(rows))
	for _, row := range rows {
		names[row.ID] = row.DisplayName
	}
	for i := range ranked {
		ranked[i].DisplayName = names[ranked[i].PlayerID]
	}
	return ranked, nil
}
