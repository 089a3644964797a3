package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shootyourshot/backend/internal/game"
)

// Snapshot is what survives a restart: the persisted level plus the
// counters that are not part of the level record.
type Snapshot struct {
	SessionID string          `json:"session_id"`
	PlayerID  int             `json:"player_id"`
	LevelID   int             `json:"level_id"`
	Strokes   int             `json:"strokes"`
	State     game.LevelState `json:"state"`
	StartedAt time.Time       `json:"started_at"`
	SavedAt   time.Time       `json:"saved_at"`
	Level     json.RawMessage `json:"level"`
}

func snapshotKey(id string) string {
	return "session:" + id + ":level"
}

// Snapshot captures the session under its lock.
func (s *Session) Snapshot(codec *game.Codec) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := codec.EncodeLevel(s.level)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		SessionID: s.ID,
		PlayerID:  s.PlayerID,
		LevelID:   s.LevelID,
		Strokes:   s.level.Strokes(),
		State:     s.level.State(),
		StartedAt: s.level.StartTime(),
		SavedAt:   time.Now(),
		Level:     data,
	}, nil
}

// EncodedLevel returns the persisted form of the session's level.
func (m *Manager) EncodedLevel(s *Session) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return m.codec.EncodeLevel(s.level)
}

func (m *Manager) saveSnapshot(s *Session) {
	if m.rdb == nil {
		return
	}
	snap, err := s.Snapshot(m.codec)
	if err != nil {
		log.Printf("[SESSION] Failed to snapshot %s: %v", s.ID, err)
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("[SESSION] Failed to marshal snapshot %s: %v", s.ID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.rdb.SetEx(ctx, snapshotKey(s.ID), data, m.sessionTTL()).Err(); err != nil {
		log.Printf("[SESSION] Failed to save snapshot %s: %v", s.ID, err)
	}
}

// Restore rebuilds a session from a snapshot without starting it. The
// level is rebuilt from its source first so Restart rewinds to the real
// start layout; the snapshot only supplies the ball, obstacles and progress.
func (m *Manager) Restore(ctx context.Context, snap *Snapshot) (*Session, error) {
	saved, err := m.codec.DecodeLevel(snap.Level)
	if err != nil {
		return nil, fmt.Errorf("restore session %s: %w", snap.SessionID, err)
	}

	level := saved
	if base, err := m.loadLevel(ctx, snap.LevelID); err == nil {
		base.ResumeFrom(saved)
		level = base
	} else {
		log.Printf("[SESSION] Level %d unavailable for %s, restart rewinds to the snapshot: %v", snap.LevelID, snap.SessionID, err)
	}
	level.RestoreProgress(snap.Strokes, snap.State, snap.StartedAt)
	return newSession(snap.SessionID, snap.PlayerID, snap.LevelID, level), nil
}

// Resume loads a session snapshot from redis and starts ticking it again.
func (m *Manager) Resume(ctx context.Context, id string) (*Session, error) {
	if m.rdb == nil {
		return nil, ErrSessionNotFound
	}
	data, err := m.rdb.Get(ctx, snapshotKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", id, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", id, err)
	}
	s, err := m.Restore(ctx, &snap)
	if err != nil {
		return nil, err
	}

	// Another request may have resumed it first.
	if live := m.start(s); live != s {
		return live, nil
	}
	log.Printf("[SESSION] Resumed %s from snapshot saved %s", id, snap.SavedAt.Format(time.RFC3339))
	return s, nil
}
