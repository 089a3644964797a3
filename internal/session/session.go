package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/shootyourshot/backend/internal/game"
)

// Session is one player's run of one level, ticked by its own goroutine.
// All access to the level goes through the session lock.
type Session struct {
	ID        string
	PlayerID  int
	LevelID   int
	CreatedAt time.Time

	mu         sync.Mutex
	level      *game.Level
	ticks      int
	dirty      bool
	lastActive time.Time

	listeners    map[int]chan game.Frame
	nextListener int

	stop    func()
	done    chan struct{}
	discard atomic.Bool // skip the final snapshot
}

func newSession(id string, playerID, levelID int, level *game.Level) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		PlayerID:   playerID,
		LevelID:    levelID,
		CreatedAt:  now,
		level:      level,
		dirty:      true,
		lastActive: now,
		listeners:  make(map[int]chan game.Frame),
		stop:       func() {},
		done:       make(chan struct{}),
	}
}

// HandlePointer forwards a press or release to the level.
func (s *Session) HandlePointer(ev game.PointerEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.level.HandlePointerEvent(ev)
}

func (s *Session) SamplePointer(pos game.Vec2) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.level.SamplePointer(pos)
}

func (s *Session) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.level.Restart()
}

func (s *Session) touch() {
	s.dirty = true
	s.lastActive = time.Now()
}

func (s *Session) Frame() game.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level.Frame()
}

func (s *Session) Won() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level.Won()
}

func (s *Session) Strokes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level.Strokes()
}

func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Done is closed when the tick loop has exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// stepResult describes what one tick did.
type stepResult struct {
	frame   game.Frame
	publish bool
	justWon bool
	ticks   int
}

// step advances the level by one tick. A frame is published only when
// something could have changed since the previous one.
func (s *Session) step() stepResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasWon := s.level.Won()
	s.level.Update()
	s.ticks++

	res := stepResult{
		justWon: !wasWon && s.level.Won(),
		ticks:   s.ticks,
	}
	res.publish = s.dirty || res.justWon || s.active()
	if res.publish {
		res.frame = s.level.Frame()
		s.dirty = false
	}
	return res
}

func (s *Session) active() bool {
	switch s.level.State() {
	case game.StateWonAnimation:
		return true
	case game.StatePlaying:
		if s.level.Ball().IsMoving() {
			return true
		}
		for _, o := range s.level.Obstacles() {
			if o.Kind() == game.KindPatrolling {
				return true
			}
		}
	}
	return false
}

// Subscribe registers a frame listener. Slow listeners miss frames rather
// than stall the tick loop.
func (s *Session) Subscribe() (<-chan game.Frame, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextListener
	s.nextListener++
	ch := make(chan game.Frame, 8)
	s.listeners[id] = ch
	s.dirty = true

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.listeners[id]; ok {
				delete(s.listeners, id)
				close(c)
			}
		})
	}
}

func (s *Session) broadcast(f game.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.listeners {
		select {
		case ch <- f:
		default:
		}
	}
}

func (s *Session) closeListeners() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.listeners {
		delete(s.listeners, id)
		close(ch)
	}
}
