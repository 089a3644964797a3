package game

import "time"

// Level owns one ball, its obstacles and the target hole, and turns pointer
// input into shots. It is not safe for concurrent use; the caller serialises
// Update and HandlePointerEvent.
type Level struct {
	cfg       Config
	ball      *Ball
	obstacles []Obstacle
	initial   []Obstacle // pristine copies for Restart
	start     Vec2
	target    Vec2
	state     LevelState
	pending   *PendingShot
	strokes   int
	startTime time.Time
	anim      *winAnimation
}

// NewLevel creates a level with a resting ball at start. Obstacle order is
// kept; it decides which obstacle wins when several overlap at once.
func NewLevel(cfg Config, start, target Vec2, obstacles []Obstacle) *Level {
	l := &Level{
		cfg:       cfg,
		start:     start,
		target:    target,
		obstacles: obstacles,
		initial:   cloneObstacles(obstacles),
	}
	l.reset()
	return l
}

func (l *Level) reset() {
	l.ball = NewBall(l.cfg, l.start)
	l.state = StatePlaying
	l.pending = nil
	l.strokes = 0
	l.startTime = time.Now()
	l.anim = nil
}

// Restart puts a fresh ball on the start position and rewinds obstacles.
func (l *Level) Restart() {
	l.obstacles = cloneObstacles(l.initial)
	l.reset()
}

// ResumeFrom takes the ball and obstacle positions of a saved copy of this
// level. The start layout stays l's own, so Restart still rewinds to it.
func (l *Level) ResumeFrom(saved *Level) {
	l.ball = saved.ball
	l.obstacles = cloneObstacles(saved.obstacles)
	l.pending = nil
}

// RestoreProgress reapplies counters saved next to a level record. A won
// level resumes in StateWon; the animation is not replayed.
func (l *Level) RestoreProgress(strokes int, state LevelState, startTime time.Time) {
	if strokes > 0 {
		l.strokes = strokes
	}
	if !startTime.IsZero() {
		l.startTime = startTime
	}
	if state == StateWon || state == StateWonAnimation {
		l.state = StateWon
		l.pending = nil
	}
}

func (l *Level) Config() Config        { return l.cfg }
func (l *Level) Ball() *Ball           { return l.ball }
func (l *Level) Obstacles() []Obstacle { return l.obstacles }
func (l *Level) State() LevelState     { return l.state }
func (l *Level) Strokes() int          { return l.strokes }
func (l *Level) StartPosition() Vec2   { return l.start }
func (l *Level) TargetPosition() Vec2  { return l.target }
func (l *Level) StartTime() time.Time  { return l.startTime }
func (l *Level) PendingShot() *PendingShot {
	if l.pending == nil {
		return nil
	}
	p := *l.pending
	return &p
}

// Target is the hole. It is the same size as the ball.
func (l *Level) Target() Rect {
	size := l.cfg.BallSize()
	return NewRect(l.target.X, l.target.Y, size, size)
}

// Won reports whether the win condition has been reached.
func (l *Level) Won() bool {
	return l.state != StatePlaying
}

// Update runs one tick. The win check happens first; once the level is won
// the ball and obstacles are frozen.
func (l *Level) Update() {
	if l.state == StatePlaying && l.ball.Bounds.Overlaps(l.Target()) {
		l.win()
	}

	switch l.state {
	case StatePlaying:
		for _, o := range l.obstacles {
			o.Update()
		}
		l.ball.Tick(l.obstacles)
	case StateWonAnimation:
		if l.anim == nil || l.anim.step(l.cfg.TickSeconds()) {
			l.state = StateWon
		}
	case StateWon:
	}
}

func (l *Level) win() {
	if l.cfg.WinAnimationSeconds <= 0 {
		l.state = StateWon
		return
	}
	l.anim = newWinAnimation(l.ball.Bounds, l.Target(), l.cfg.WinAnimationSeconds)
	l.state = StateWonAnimation
}

// HandlePointerEvent feeds one input event and reports whether it was
// consumed. Nothing is accepted while the ball rolls or after the level is won.
//
// Every release counts a stroke, even one that produces no force.
func (l *Level) HandlePointerEvent(ev PointerEvent) bool {
	if l.ball.IsMoving() || l.state != StatePlaying {
		return false
	}

	switch ev.Kind {
	case PointerPress:
		if l.pending == nil {
			l.pending = &PendingShot{Initial: ev.Position}
		}
		return true

	case PointerRelease:
		l.strokes++

		var initial, current Vec2
		switch {
		case ev.HasPosition:
			current = ev.Position
		case l.pending != nil:
			current = l.pending.Initial
		}
		if l.pending != nil {
			initial = l.pending.Initial
		} else {
			initial = current
		}

		l.ball.ApplyForce(initial, current)
		l.pending = nil
		return true
	}
	return false
}

// SamplePointer records the live pointer position while a drag is in
// progress. It is a no-op otherwise.
func (l *Level) SamplePointer(pos Vec2) {
	if l.pending == nil {
		return
	}
	l.pending.Current = pos
	l.pending.HasCurrent = true
}

// cloneObstacles deep-copies a slice of obstacles.
func cloneObstacles(src []Obstacle) []Obstacle {
	out := make([]Obstacle, 0, len(src))
	for _, o := range src {
		switch v := o.(type) {
		case *StaticObstacle:
			c := *v
			out = append(out, &c)
		case *PatrollingObstacle:
			c := *v
			c.Checkpoints = append([]Vec2(nil), v.Checkpoints...)
			out = append(out, &c)
		default:
			out = append(out, o)
		}
	}
	return out
}
