package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"

	"github.com/shootyourshot/backend/internal/config"
	"github.com/shootyourshot/backend/internal/game"
	"github.com/shootyourshot/backend/internal/levels"
	"github.com/shootyourshot/backend/internal/models"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrForbidden        = errors.New("session belongs to another player")
	ErrLevelUnavailable = errors.New("level store not configured")
)

// LevelStore is the part of the level repository sessions need.
type LevelStore interface {
	Load(ctx context.Context, id int) (*game.Level, error)
	RecordScore(ctx context.Context, s models.Score) error
}

// Manager owns the live sessions in creation order. When MaxSessions is
// reached the oldest session is evicted to make room.
type Manager struct {
	cfg   *config.Config
	rdb   *redis.Client
	store LevelStore
	codec *game.Codec

	mu       sync.Mutex
	sessions *orderedmap.OrderedMap[string, *Session]

	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager accepts nil redis and store; snapshots, events and stored
// levels are then unavailable but level 0 still plays.
func NewManager(cfg *config.Config, rdb *redis.Client, store LevelStore) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		cfg:      cfg,
		rdb:      rdb,
		store:    store,
		codec:    game.NewCodec(cfg.Game),
		sessions: orderedmap.NewOrderedMap[string, *Session](),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func newSessionID() string {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return hex.EncodeToString(b)
}

// Create starts a session on the given level. Level 0 is the built-in
// default level and needs no store.
func (m *Manager) Create(ctx context.Context, playerID, levelID int) (*Session, error) {
	level, err := m.loadLevel(ctx, levelID)
	if err != nil {
		return nil, err
	}

	s := newSession(newSessionID(), playerID, levelID, level)
	m.start(s)
	log.Printf("[SESSION] Created %s for player %d on level %d", s.ID, playerID, levelID)
	return s, nil
}

func (m *Manager) loadLevel(ctx context.Context, levelID int) (*game.Level, error) {
	if levelID == 0 {
		return levels.DefaultLevel(m.cfg.Game), nil
	}
	if m.store == nil {
		return nil, ErrLevelUnavailable
	}
	return m.store.Load(ctx, levelID)
}

// start registers s and runs its tick loop. If a session with the same ID is
// already live, that one is returned and s is never started.
func (m *Manager) start(s *Session) *Session {
	m.mu.Lock()
	if live, ok := m.sessions.Get(s.ID); ok {
		m.mu.Unlock()
		return live
	}
	for m.cfg.MaxSessions > 0 && m.sessions.Len() >= m.cfg.MaxSessions {
		oldest := m.sessions.Front()
		if oldest == nil {
			break
		}
		log.Printf("[SESSION] Session limit %d reached, evicting %s", m.cfg.MaxSessions, oldest.Key)
		oldest.Value.stop()
		m.sessions.Delete(oldest.Key)
	}
	ctx, cancel := context.WithCancel(m.ctx)
	s.stop = cancel
	m.sessions.Set(s.ID, s)
	m.mu.Unlock()

	go m.run(ctx, s)
	return s
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Owned returns the session only if it belongs to playerID. A session that
// is not in memory is resumed from its snapshot.
func (m *Manager) Owned(ctx context.Context, id string, playerID int) (*Session, error) {
	s, err := m.Get(id)
	if errors.Is(err, ErrSessionNotFound) {
		s, err = m.Resume(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	if s.PlayerID != playerID {
		return nil, ErrForbidden
	}
	return s, nil
}

// Remove stops the session and deletes its snapshot.
func (m *Manager) Remove(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions.Get(id)
	if ok {
		m.sessions.Delete(id)
	}
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.discard.Store(true)
	s.stop()
	if m.rdb != nil {
		if err := m.rdb.Del(ctx, snapshotKey(id)).Err(); err != nil {
			log.Printf("[SESSION] Failed to delete snapshot for %s: %v", id, err)
		}
	}
	log.Printf("[SESSION] Removed %s", id)
	return nil
}

// drop forgets s without touching its snapshot. A newer session under the
// same ID is left alone.
func (m *Manager) drop(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if live, ok := m.sessions.Get(s.ID); ok && live == s {
		m.sessions.Delete(s.ID)
	}
}

func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions.Len()
}

// IDs lists live sessions, oldest first.
func (m *Manager) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, m.sessions.Len())
	for el := m.sessions.Front(); el != nil; el = el.Next() {
		ids = append(ids, el.Key)
	}
	return ids
}

// Shutdown stops every tick loop and waits for the final snapshots.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	var running []*Session
	for el := m.sessions.Front(); el != nil; el = el.Next() {
		running = append(running, el.Value)
	}
	m.mu.Unlock()

	m.cancel()
	for _, s := range running {
		select {
		case <-s.Done():
		case <-ctx.Done():
			log.Printf("[SESSION] Shutdown timed out waiting for %s", s.ID)
			return
		}
	}
	log.Printf("[SESSION] Stopped %d sessions", len(running))
}

func (m *Manager) tickInterval() time.Duration {
	return time.Duration(m.cfg.Game.TickSeconds() * float64(time.Second))
}

func (m *Manager) sessionTTL() time.Duration {
	if m.cfg.SessionTTLMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(m.cfg.SessionTTLMinutes) * time.Minute
}

// run is the per-session tick loop. A panic inside the simulation is
// reported and ends only this session.
func (m *Manager) run(ctx context.Context, s *Session) {
	defer close(s.done)
	defer s.stop()
	defer s.closeListeners()
	defer func() {
		if err := recover(); err != nil {
			log.Printf("[SESSION] %s tick loop panic: %v", s.ID, err)
			hub := sentry.CurrentHub().Clone()
			hub.ConfigureScope(func(scope *sentry.Scope) {
				scope.SetTag("session_id", s.ID)
				scope.SetTag("level_id", strconv.Itoa(s.LevelID))
			})
			hub.Recover(fmt.Errorf("session %s: %v", s.ID, err))
			hub.Flush(5 * time.Second)
			m.drop(s)
		}
	}()

	ticker := time.NewTicker(m.tickInterval())
	defer ticker.Stop()

	every := m.cfg.SessionSnapshotEveryTicks
	ttl := m.sessionTTL()

	for {
		select {
		case <-ctx.Done():
			if !s.discard.Load() {
				m.saveSnapshot(s)
			}
			return

		case <-ticker.C:
			res := s.step()
			if res.publish {
				s.broadcast(res.frame)
			}
			if res.justWon {
				m.onWin(s)
			}
			if every > 0 && res.ticks%every == 0 && res.publish {
				m.saveSnapshot(s)
			}
			if time.Since(s.LastActive()) > ttl {
				log.Printf("[SESSION] %s idle for %s, expiring", s.ID, ttl)
				m.drop(s)
				m.saveSnapshot(s)
				return
			}
		}
	}
}

func (m *Manager) onWin(s *Session) {
	s.mu.Lock()
	strokes := s.level.Strokes()
	duration := time.Since(s.level.StartTime())
	s.mu.Unlock()

	log.Printf("[SESSION] %s won level %d in %d strokes (%s)", s.ID, s.LevelID, strokes, duration.Round(time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.LevelID != 0 && m.store != nil {
		err := m.store.RecordScore(ctx, models.Score{
			LevelID:    s.LevelID,
			PlayerID:   s.PlayerID,
			SessionID:  s.ID,
			Strokes:    strokes,
			DurationMS: duration.Milliseconds(),
		})
		if err != nil {
			log.Printf("[SESSION] Failed to record score for %s: %v", s.ID, err)
		}
	}

	m.publish(ctx, Event{
		Type:       EventLevelWon,
		SessionID:  s.ID,
		PlayerID:   s.PlayerID,
		LevelID:    s.LevelID,
		Strokes:    strokes,
		DurationMS: duration.Milliseconds(),
	})
	m.saveSnapshot(s)
}
