package models

import (
	"encoding/json"
	"time"
)

// Player is a guest identity issued by /auth/guest.
type Player struct {
	ID          int       `db:"id" json:"id"`
	DisplayName string    `db:"display_name" json:"display_name"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Level is a stored level record. Data holds the persisted level JSON as
// produced by the game codec.
type Level struct {
	ID          int             `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Fingerprint string          `db:"fingerprint" json:"fingerprint"`
	Data        json.RawMessage `db:"data" json:"data"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// LevelSummary is the list view of a level, without its body.
type LevelSummary struct {
	ID          int       `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Fingerprint string    `db:"fingerprint" json:"fingerprint"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Score is one completed run of a level.
type Score struct {
	ID         int       `db:"id" json:"id"`
	LevelID    int       `db:"level_id" json:"level_id"`
	PlayerID   int       `db:"player_id" json:"player_id"`
	SessionID  string    `db:"session_id" json:"session_id"`
	Strokes    int       `db:"strokes" json:"strokes"`
	DurationMS int64     `db:"duration_ms" json:"duration_ms"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// LeaderboardEntry is a ranked row; fewer strokes rank higher.
type LeaderboardEntry struct {
	Rank        int    `db:"-" json:"rank"`
	PlayerID    int    `db:"player_id" json:"player_id"`
	DisplayName string `db:"display_name" json:"display_name"`
	Strokes     int    `db:"strokes" json:"strokes"`
	DurationMS  int64  `db:"duration_ms" json:"duration_ms"`
}
