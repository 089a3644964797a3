package game

import (
	"testing"
	"time"
)

// newTestLevel builds a level with the ball at (100, 100) and the hole far away.
func newTestLevel(obstacles ...Obstacle) *Level {
	return NewLevel(DefaultConfig(), NewVec2(100, 100), NewVec2(600, 600), obstacles)
}

func shoot(t *testing.T, l *Level, from, to Vec2) {
	t.Helper()
	if !l.HandlePointerEvent(Press(from.X, from.Y)) {
		t.Fatal("press was not consumed")
	}
	if !l.HandlePointerEvent(Release(to.X, to.Y)) {
		t.Fatal("release was not consumed")
	}
}

func TestBallBouncesOffStaticObstacleAndStops(t *testing.T) {
	wall := NewStaticObstacle(140, 50, 20, 200)
	l := newTestLevel(wall)

	// Drag from right to left: the ball heads right at speed 10.
	shoot(t, l, NewVec2(100, 0), NewVec2(0, 0))
	if l.Ball().Direction.X != 1 || !l.Ball().IsMoving() {
		t.Fatalf("ball should be heading right, dir=%+v speed=%.2f", l.Ball().Direction, l.Ball().Speed)
	}

	bounced := false
	for i := 0; i < 200 && l.Ball().IsMoving(); i++ {
		l.Update()
		if l.Ball().Direction.X < 0 {
			bounced = true
		}
	}

	if !bounced {
		t.Error("ball never bounced off the wall")
	}
	if l.Ball().IsMoving() {
		t.Errorf("ball should have come to rest, speed=%.4f", l.Ball().Speed)
	}
	if l.Strokes() != 1 {
		t.Errorf("strokes = %d, want 1", l.Strokes())
	}
	if l.State() != StatePlaying {
		t.Errorf("state = %s, want %s", l.State(), StatePlaying)
	}
}

func TestZeroDragShotCountsStroke(t *testing.T) {
	l := newTestLevel()

	shoot(t, l, NewVec2(300, 300), NewVec2(300, 300))

	if l.Strokes() != 1 {
		t.Errorf("strokes = %d, want 1", l.Strokes())
	}
	if l.Ball().IsMoving() {
		t.Error("zero-drag shot should not move the ball")
	}
	if l.PendingShot() != nil {
		t.Error("drag buffer should be cleared after release")
	}
}

func TestInputRejectedWhileBallMoves(t *testing.T) {
	l := newTestLevel()
	shoot(t, l, NewVec2(50, 0), NewVec2(0, 0))

	if l.HandlePointerEvent(Press(10, 10)) {
		t.Error("press should be rejected mid-flight")
	}
	if l.HandlePointerEvent(Release(0, 0)) {
		t.Error("release should be rejected mid-flight")
	}
	if l.Strokes() != 1 {
		t.Errorf("strokes = %d, want 1", l.Strokes())
	}
	if l.PendingShot() != nil {
		t.Error("no drag should start while the ball moves")
	}
}

func TestReleaseWithoutPressCountsStroke(t *testing.T) {
	l := newTestLevel()

	if !l.HandlePointerEvent(Release(20, 20)) {
		t.Fatal("release should be consumed")
	}
	if l.Strokes() != 1 || l.Ball().IsMoving() {
		t.Errorf("strokes=%d moving=%v, want 1 and false", l.Strokes(), l.Ball().IsMoving())
	}
}

func TestReleaseWithoutPositionFallsBackToPress(t *testing.T) {
	l := newTestLevel()
	l.HandlePointerEvent(Press(50, 50))

	l.HandlePointerEvent(PointerEvent{Kind: PointerRelease})

	if l.Strokes() != 1 {
		t.Errorf("strokes = %d, want 1", l.Strokes())
	}
	if l.Ball().IsMoving() {
		t.Error("release at the press point should not move the ball")
	}
}

func TestSecondPressKeepsOriginalDragStart(t *testing.T) {
	l := newTestLevel()
	l.HandlePointerEvent(Press(50, 50))

	if !l.HandlePointerEvent(Press(80, 80)) {
		t.Error("press mid-drag should still be consumed")
	}
	if got := l.PendingShot().Initial; got != NewVec2(50, 50) {
		t.Errorf("initial = %+v, want (50, 50)", got)
	}
}

func TestOtherEventsAreNotConsumed(t *testing.T) {
	l := newTestLevel()
	if l.HandlePointerEvent(PointerEvent{Kind: KeyPress}) {
		t.Error("key press should not be consumed")
	}
}

func TestSamplePointerTracksDrag(t *testing.T) {
	l := newTestLevel()

	l.SamplePointer(NewVec2(1, 1))
	if l.PendingShot() != nil {
		t.Fatal("sampling without a press must not start a drag")
	}

	l.HandlePointerEvent(Press(10, 10))
	l.SamplePointer(NewVec2(30, 40))

	p := l.PendingShot()
	if p == nil || !p.HasCurrent || p.Current != NewVec2(30, 40) {
		t.Fatalf("pending shot = %+v, want current (30, 40)", p)
	}
	if l.Frame().Drag == nil {
		t.Error("frame should expose the drag preview")
	}
}

func TestWinFreezesSimulation(t *testing.T) {
	cfg := DefaultConfig()
	patrol := NewPatrollingObstacle(cfg, NewRect(300, 300, 20, 20), []Vec2{NewVec2(300, 300), NewVec2(400, 300)}, 5)
	// Hole on top of the start position.
	l := NewLevel(cfg, NewVec2(100, 100), NewVec2(105, 105), []Obstacle{patrol})

	l.Update()
	if l.State() != StateWon {
		t.Fatalf("state = %s, want %s", l.State(), StateWon)
	}
	if patrol.Bounds() != NewRect(300, 300, 20, 20) {
		t.Errorf("obstacle moved on the winning tick: %+v", patrol.Bounds())
	}

	l.Ball().Speed = 5
	l.Ball().Direction = NewVec2(1, 0)
	ballBefore := l.Ball().Bounds
	obstacleBefore := patrol.Bounds()

	l.Update()

	if l.Ball().Bounds != ballBefore || l.Ball().Speed != 5 {
		t.Errorf("ball changed after win: %+v speed=%.2f", l.Ball().Bounds, l.Ball().Speed)
	}
	if patrol.Bounds() != obstacleBefore {
		t.Errorf("obstacle changed after win: %+v", patrol.Bounds())
	}
	if l.HandlePointerEvent(Press(0, 0)) {
		t.Error("input should be ignored once won")
	}
}

func TestWinAnimationPrecedesWon(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WinAnimationSeconds = 0.1
	l := NewLevel(cfg, NewVec2(100, 100), NewVec2(100, 100), nil)

	l.Update()
	if l.State() != StateWonAnimation {
		t.Fatalf("state = %s, want %s", l.State(), StateWonAnimation)
	}
	if l.Frame().Win == nil {
		t.Fatal("frame should carry the win animation")
	}

	for i := 0; i < 30 && l.State() == StateWonAnimation; i++ {
		l.Update()
	}

	if l.State() != StateWon {
		t.Fatalf("animation never finished, state=%s", l.State())
	}
	if p := l.Frame().Win.Progress; p != 1 {
		t.Errorf("progress = %.3f, want 1", p)
	}
	if l.Ball().Bounds.Position() != NewVec2(100, 100) {
		t.Errorf("animation must not move the ball, got %+v", l.Ball().Bounds)
	}
}

func TestObstaclesAdvanceWhilePlaying(t *testing.T) {
	cfg := DefaultConfig()
	patrol := NewPatrollingObstacle(cfg, NewRect(300, 300, 20, 20), []Vec2{NewVec2(300, 300), NewVec2(400, 300)}, 5)
	l := NewLevel(cfg, NewVec2(100, 100), NewVec2(600, 600), []Obstacle{patrol})

	l.Update()

	if patrol.Bounds().X != 305 {
		t.Errorf("patrolling obstacle x = %.2f, want 305", patrol.Bounds().X)
	}
}

func TestRestartRewindsLevel(t *testing.T) {
	cfg := DefaultConfig()
	patrol := NewPatrollingObstacle(cfg, NewRect(300, 300, 20, 20), []Vec2{NewVec2(300, 300), NewVec2(400, 300)}, 5)
	l := NewLevel(cfg, NewVec2(100, 100), NewVec2(600, 600), []Obstacle{patrol})

	shoot(t, l, NewVec2(0, 50), NewVec2(0, 0))
	for i := 0; i < 3; i++ {
		l.Update()
	}

	l.Restart()

	if l.Strokes() != 0 || l.State() != StatePlaying || l.Ball().IsMoving() {
		t.Errorf("restart left strokes=%d state=%s moving=%v", l.Strokes(), l.State(), l.Ball().IsMoving())
	}
	if l.Ball().Bounds.Position() != NewVec2(100, 100) {
		t.Errorf("ball at %+v, want start", l.Ball().Bounds.Position())
	}
	if got := l.Obstacles()[0].Bounds(); got != NewRect(300, 300, 20, 20) {
		t.Errorf("obstacle at %+v, want spawn", got)
	}
}

func TestFrameMirrorsLevel(t *testing.T) {
	l := newTestLevel(NewStaticObstacle(0, 0, 10, 10))

	f := l.Frame()

	if f.State != StatePlaying || f.Strokes != 0 {
		t.Errorf("frame state=%s strokes=%d", f.State, f.Strokes)
	}
	if len(f.Obstacles) != 1 || f.Obstacles[0].Kind != KindStatic {
		t.Errorf("frame obstacles = %+v", f.Obstacles)
	}
	if f.Target != l.Target() {
		t.Errorf("frame target = %+v, want %+v", f.Target, l.Target())
	}
}

func TestRestoreProgress(t *testing.T) {
	l := newTestLevel()
	started := l.StartTime().Add(-time.Minute)

	l.RestoreProgress(4, StateWonAnimation, started)

	if l.Strokes() != 4 || l.State() != StateWon || !l.StartTime().Equal(started) {
		t.Errorf("strokes=%d state=%s start=%v", l.Strokes(), l.State(), l.StartTime())
	}
	if l.HandlePointerEvent(Press(0, 0)) {
		t.Error("restored won level must reject input")
	}
}

type fixedPointer struct {
	pos Vec2
	ok  bool
}

func (p fixedPointer) PointerPosition() (Vec2, bool) { return p.pos, p.ok }

func TestPollFeedsDragPreview(t *testing.T) {
	l := newTestLevel()
	l.HandlePointerEvent(Press(10, 10))

	l.Poll(fixedPointer{ok: false})
	if l.PendingShot().HasCurrent {
		t.Error("unknown pointer position must not be sampled")
	}

	l.Poll(fixedPointer{pos: NewVec2(12, 40), ok: true})
	if p := l.PendingShot(); !p.HasCurrent || p.Current != NewVec2(12, 40) {
		t.Errorf("pending shot = %+v", p)
	}

	l.Poll(nil)
}

func patrolLevel(cfg Config) *Level {
	patrol := NewPatrollingObstacle(cfg, NewRect(100, 100, 20, 20), []Vec2{NewVec2(100, 100), NewVec2(600, 100)}, 4)
	return NewLevel(cfg, NewVec2(640, 360), NewVec2(1000, 600), []Obstacle{patrol})
}

func TestResumeFromKeepsStartLayout(t *testing.T) {
	cfg := DefaultConfig()
	codec := NewCodec(cfg)

	played := patrolLevel(cfg)
	for i := 0; i < 50; i++ {
		played.Update()
	}
	data, err := codec.EncodeLevel(played)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	saved, err := codec.DecodeLevel(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	l := patrolLevel(cfg)
	l.ResumeFrom(saved)

	p := l.Obstacles()[0].(*PatrollingObstacle)
	if p.Rect.Position() != NewVec2(300, 100) || p.CurrentCheckpoint != 1 {
		t.Fatalf("resumed patrol at %+v idx=%d, want (300, 100) idx=1", p.Rect.Position(), p.CurrentCheckpoint)
	}

	l.Restart()

	p = l.Obstacles()[0].(*PatrollingObstacle)
	if p.Rect.Position() != NewVec2(100, 100) || p.CurrentCheckpoint != 0 {
		t.Errorf("restart put patrol at %+v idx=%d, want spawn (100, 100) idx=0", p.Rect.Position(), p.CurrentCheckpoint)
	}
}
