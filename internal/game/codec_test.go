package game

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func sampleLevel() *Level {
	cfg := DefaultConfig()
	patrol := NewPatrollingObstacle(cfg, NewRect(300, 200, 20, 40),
		[]Vec2{NewVec2(300, 200), NewVec2(500, 200), NewVec2(500, 400)}, 3)
	patrol.CurrentCheckpoint = 1

	obstacles := append(Borders(cfg), NewStaticObstacle(600, 300, 20, 120), patrol)
	l := NewLevel(cfg, NewVec2(640, 360), NewVec2(640, 50), obstacles)
	l.Ball().Speed = 12.5
	l.Ball().SetDirection(NewVec2(-3, 4))
	return l
}

func rectsClose(a, b Rect) bool {
	return almostEqual(a.X, b.X) && almostEqual(a.Y, b.Y) && almostEqual(a.W, b.W) && almostEqual(a.H, b.H)
}

func TestLevelRoundTrip(t *testing.T) {
	codec := NewCodec(DefaultConfig())
	orig := sampleLevel()

	data, err := codec.EncodeLevel(orig)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := codec.DecodeLevel(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got.StartPosition() != orig.StartPosition() || got.TargetPosition() != orig.TargetPosition() {
		t.Errorf("positions: got start=%+v end=%+v", got.StartPosition(), got.TargetPosition())
	}

	gb, ob := got.Ball(), orig.Ball()
	if !rectsClose(gb.Bounds, ob.Bounds) {
		t.Errorf("ball bounds = %+v, want %+v", gb.Bounds, ob.Bounds)
	}
	if !almostEqual(gb.Speed, ob.Speed) || !almostEqual(gb.Direction.X, ob.Direction.X) || !almostEqual(gb.Direction.Y, ob.Direction.Y) {
		t.Errorf("ball motion = %.4f %+v, want %.4f %+v", gb.Speed, gb.Direction, ob.Speed, ob.Direction)
	}

	if len(got.Obstacles()) != len(orig.Obstacles()) {
		t.Fatalf("obstacle count = %d, want %d", len(got.Obstacles()), len(orig.Obstacles()))
	}
	for i, o := range orig.Obstacles() {
		g := got.Obstacles()[i]
		if g.Kind() != o.Kind() {
			t.Errorf("obstacle %d kind = %s, want %s", i, g.Kind(), o.Kind())
			continue
		}
		if !rectsClose(g.Bounds(), o.Bounds()) {
			t.Errorf("obstacle %d bounds = %+v, want %+v", i, g.Bounds(), o.Bounds())
		}
		if op, ok := o.(*PatrollingObstacle); ok {
			gp := g.(*PatrollingObstacle)
			if gp.CurrentCheckpoint != op.CurrentCheckpoint || !almostEqual(gp.Speed, op.Speed) {
				t.Errorf("patrol state = %d/%.2f, want %d/%.2f", gp.CurrentCheckpoint, gp.Speed, op.CurrentCheckpoint, op.Speed)
			}
			if len(gp.Checkpoints) != len(op.Checkpoints) {
				t.Fatalf("checkpoints = %v, want %v", gp.Checkpoints, op.Checkpoints)
			}
			for j := range op.Checkpoints {
				if gp.Checkpoints[j] != op.Checkpoints[j] {
					t.Errorf("checkpoint %d = %+v, want %+v", j, gp.Checkpoints[j], op.Checkpoints[j])
				}
			}
		}
	}
}

func TestEncodeUsesPersistedFieldNames(t *testing.T) {
	data, err := NewCodec(DefaultConfig()).EncodeLevel(sampleLevel())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	for _, key := range []string{`"ball_start"`, `"ball_end"`, `"objects"`, `"velocity"`, `"dir"`, `"checkpoints"`, `"current_checkpoint"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("encoded level lacks %s: %s", key, data)
		}
	}
}

func TestDecodeIsCaseInsensitive(t *testing.T) {
	data := []byte(`{"Ball_Start":[1,2],"BALL_END":[3,4],"Objects":[{"RECT":{"X":1,"Y":2,"W":3,"H":4}}]}`)

	l, err := NewCodec(DefaultConfig()).DecodeLevel(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if l.StartPosition() != NewVec2(1, 2) || l.TargetPosition() != NewVec2(3, 4) {
		t.Errorf("start=%+v end=%+v", l.StartPosition(), l.TargetPosition())
	}
	if len(l.Obstacles()) != 1 || l.Obstacles()[0].Bounds() != NewRect(1, 2, 3, 4) {
		t.Errorf("obstacles = %+v", l.Obstacles())
	}
}

func TestDecodeDefaultsMissingFields(t *testing.T) {
	l, err := NewCodec(DefaultConfig()).DecodeLevel([]byte(`{}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !l.StartPosition().IsZero() || len(l.Obstacles()) != 0 {
		t.Errorf("start=%+v obstacles=%d", l.StartPosition(), len(l.Obstacles()))
	}
	if l.Ball().IsMoving() {
		t.Error("default ball should be at rest")
	}
	if l.Ball().Bounds.W != DefaultConfig().BallSize() {
		t.Errorf("ball width = %.2f, want configured size", l.Ball().Bounds.W)
	}
}

func TestDecodeToleratesWrongTypes(t *testing.T) {
	data := []byte(`{"ball_start":"nope","ball":{"rect":{"x":"a","y":5},"velocity":"fast"},"objects":[{"rect":{"x":"a","w":5},"speed":"fast"}]}`)

	l, err := NewCodec(DefaultConfig()).DecodeLevel(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !l.StartPosition().IsZero() {
		t.Errorf("start = %+v, want zero", l.StartPosition())
	}
	if l.Ball().Bounds.Y != 5 || l.Ball().Speed != 0 {
		t.Errorf("ball = %+v speed=%.2f", l.Ball().Bounds, l.Ball().Speed)
	}
	p, ok := l.Obstacles()[0].(*PatrollingObstacle)
	if !ok {
		t.Fatalf("obstacle with a speed field should be patrolling, got %T", l.Obstacles()[0])
	}
	if p.Speed != 0 || p.Rect.W != 5 {
		t.Errorf("patrol = %+v", p)
	}
}

func TestObstacleVariantInference(t *testing.T) {
	cases := []struct {
		raw     string
		want    ObstacleKind
		anomaly bool
	}{
		{`{"rect":{"x":1,"y":1,"w":2,"h":2}}`, KindStatic, false},
		{`{"rect":{"x":1,"y":1,"w":2,"h":2},"speed":1}`, KindPatrolling, false},
		{`{"rect":{"x":1,"y":1,"w":2,"h":2},"current_checkpoint":0}`, KindPatrolling, false},
		{`{"rect":{"x":1,"y":1,"w":2,"h":2},"checkpoints":[]}`, KindPatrolling, false},
		{`{"Checkpoints":[{"x":1,"y":2}]}`, KindPatrolling, false},
		{`{}`, KindStatic, true},
		{`42`, KindStatic, true},
		{`[1,2,3]`, KindStatic, true},
	}

	for _, tc := range cases {
		var logged []string
		codec := NewCodec(DefaultConfig()).WithLogger(func(format string, args ...any) {
			logged = append(logged, fmt.Sprintf(format, args...))
		})

		o, err := codec.DecodeObstacle([]byte(tc.raw))
		if err != nil {
			t.Errorf("%s: unexpected error %v", tc.raw, err)
			continue
		}
		if o.Kind() != tc.want {
			t.Errorf("%s: kind = %s, want %s", tc.raw, o.Kind(), tc.want)
		}
		if (len(logged) > 0) != tc.anomaly {
			t.Errorf("%s: anomaly logged=%v, want %v", tc.raw, logged, tc.anomaly)
		}
	}
}

func TestClassifyObstacleReportsInvalidVariant(t *testing.T) {
	kind, _, err := classifyObstacle("not an object")
	if kind != KindStatic || !errors.Is(err, ErrInvalidObstacleVariant) {
		t.Errorf("kind=%s err=%v", kind, err)
	}
}

func TestDecodePatrolDefaults(t *testing.T) {
	o, err := NewCodec(DefaultConfig()).DecodeObstacle([]byte(`{"rect":{"x":7,"y":9,"w":2,"h":2},"speed":2}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	p := o.(*PatrollingObstacle)
	if len(p.Checkpoints) != 1 || p.Checkpoints[0] != NewVec2(7, 9) {
		t.Errorf("checkpoints = %+v, want spawn position", p.Checkpoints)
	}
}

func TestDecodeWrapsCheckpointIndex(t *testing.T) {
	raw := `{"rect":{"x":0,"y":0,"w":2,"h":2},"checkpoints":[{"x":0,"y":0},{"x":9,"y":0}],"current_checkpoint":5}`
	o, err := NewCodec(DefaultConfig()).DecodeObstacle([]byte(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if idx := o.(*PatrollingObstacle).CurrentCheckpoint; idx != 1 {
		t.Errorf("index = %d, want 1", idx)
	}
}

func TestDecodeBallLegacyDirectionKey(t *testing.T) {
	b, err := NewCodec(DefaultConfig()).DecodeBall([]byte(`{"rect":{"x":1,"y":2,"w":15,"h":15},"velocity":4,"vector2":{"x":0,"y":-2}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b.Direction != NewVec2(0, -1) || b.Speed != 4 {
		t.Errorf("ball dir=%+v speed=%.2f", b.Direction, b.Speed)
	}
}

func TestDecodeRejectsNonObjects(t *testing.T) {
	codec := NewCodec(DefaultConfig())
	for _, raw := range []string{`not json`, `[1,2]`, `"level"`} {
		if _, err := codec.DecodeLevel([]byte(raw)); !errors.Is(err, ErrMalformedRecord) {
			t.Errorf("%s: err = %v, want ErrMalformedRecord", raw, err)
		}
	}
}
