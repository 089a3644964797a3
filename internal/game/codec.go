package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
)

var (
	// ErrMalformedRecord is returned only when the input is not a JSON object
	// at all. Missing or wrong-typed fields are defaulted instead.
	ErrMalformedRecord = errors.New("malformed persisted record")

	// ErrInvalidObstacleVariant is reported (never returned) when an obstacle
	// record matches neither variant and is loaded as static.
	ErrInvalidObstacleVariant = errors.New("invalid obstacle variant")
)

// RectRecord is the persisted shape of a Rect.
type RectRecord struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// VecRecord is the persisted shape of a Vec2.
type VecRecord struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type BallRecord struct {
	Rect     RectRecord `json:"rect"`
	Velocity float64    `json:"velocity"`
	Dir      VecRecord  `json:"dir"`
}

// ObstacleRecord covers both variants. Patrolling obstacles always carry the
// checkpoint fields; static ones never do, which is how the variant is told
// apart on load.
type ObstacleRecord struct {
	Rect              RectRecord  `json:"rect"`
	Checkpoints       []VecRecord `json:"checkpoints,omitempty"`
	CurrentCheckpoint *int        `json:"current_checkpoint,omitempty"`
	Speed             *float64    `json:"speed,omitempty"`
}

type LevelRecord struct {
	BallStart [2]float64       `json:"ball_start"`
	BallEnd   [2]float64       `json:"ball_end"`
	Ball      BallRecord       `json:"ball"`
	Objects   []ObstacleRecord `json:"objects"`
}

// Codec converts levels to and from their persisted JSON form.
type Codec struct {
	cfg  Config
	logf func(format string, args ...any)
}

func NewCodec(cfg Config) *Codec {
	return &Codec{cfg: cfg, logf: log.Printf}
}

// WithLogger replaces the anomaly reporter.
func (c *Codec) WithLogger(logf func(format string, args ...any)) *Codec {
	c.logf = logf
	return c
}

// === Encoding ===

func rectToRecord(r Rect) RectRecord {
	return RectRecord{X: r.X, Y: r.Y, W: r.W, H: r.H}
}

func vecToRecord(v Vec2) VecRecord {
	return VecRecord{X: v.X, Y: v.Y}
}

func BallToRecord(b *Ball) BallRecord {
	return BallRecord{
		Rect:     rectToRecord(b.Bounds),
		Velocity: b.Speed,
		Dir:      vecToRecord(b.Direction),
	}
}

func ObstacleToRecord(o Obstacle) ObstacleRecord {
	rec := ObstacleRecord{Rect: rectToRecord(o.Bounds())}
	if p, ok := o.(*PatrollingObstacle); ok {
		rec.Checkpoints = make([]VecRecord, len(p.Checkpoints))
		for i, cp := range p.Checkpoints {
			rec.Checkpoints[i] = vecToRecord(cp)
		}
		idx := p.CurrentCheckpoint
		speed := p.Speed
		rec.CurrentCheckpoint = &idx
		rec.Speed = &speed
	}
	return rec
}

func LevelToRecord(l *Level) LevelRecord {
	rec := LevelRecord{
		BallStart: [2]float64{l.start.X, l.start.Y},
		BallEnd:   [2]float64{l.target.X, l.target.Y},
		Ball:      BallToRecord(l.ball),
		Objects:   make([]ObstacleRecord, len(l.obstacles)),
	}
	for i, o := range l.obstacles {
		rec.Objects[i] = ObstacleToRecord(o)
	}
	return rec
}

// EncodeLevel serialises the level, including the ball's current motion.
func (c *Codec) EncodeLevel(l *Level) ([]byte, error) {
	data, err := json.Marshal(LevelToRecord(l))
	if err != nil {
		return nil, fmt.Errorf("encode level: %w", err)
	}
	return data, nil
}

// === Decoding ===

// record is a decoded JSON object with lower-cased keys.
type record map[string]any

func asRecord(v any) (record, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	r := make(record, len(m))
	for k, val := range m {
		r[strings.ToLower(k)] = val
	}
	return r, true
}

func parseRecord(data []byte) (record, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	r, ok := asRecord(raw)
	if !ok {
		return nil, fmt.Errorf("%w: top level is %T, want object", ErrMalformedRecord, raw)
	}
	return r, nil
}

func (r record) has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

func toFloat(v any) float64 {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func (r record) number(key string) float64 {
	return toFloat(r[key])
}

func (r record) integer(key string) int {
	return int(r.number(key))
}

func (r record) list(key string) []any {
	l, _ := r[key].([]any)
	return l
}

// toVec accepts {x, y} or [x, y].
func toVec(v any) Vec2 {
	if m, ok := asRecord(v); ok {
		return NewVec2(m.number("x"), m.number("y"))
	}
	if l, ok := v.([]any); ok {
		var out Vec2
		if len(l) > 0 {
			out.X = toFloat(l[0])
		}
		if len(l) > 1 {
			out.Y = toFloat(l[1])
		}
		return out
	}
	return Vec2{}
}

// toRect accepts {x, y, w, h} (or width/height) and [x, y, w, h].
func toRect(v any) Rect {
	if m, ok := asRecord(v); ok {
		w, h := m.number("w"), m.number("h")
		if !m.has("w") {
			w = m.number("width")
		}
		if !m.has("h") {
			h = m.number("height")
		}
		return NewRect(m.number("x"), m.number("y"), w, h)
	}
	if l, ok := v.([]any); ok {
		var vals [4]float64
		for i := 0; i < len(l) && i < 4; i++ {
			vals[i] = toFloat(l[i])
		}
		return NewRect(vals[0], vals[1], vals[2], vals[3])
	}
	return Rect{}
}

// DecodeLevel loads a level record. Missing fields fall back to zero values;
// a missing ball is placed at rest on the start position.
func (c *Codec) DecodeLevel(data []byte) (*Level, error) {
	r, err := parseRecord(data)
	if err != nil {
		return nil, err
	}
	return c.levelFromRecord(r), nil
}

// DecodeBall loads a standalone ball record.
func (c *Codec) DecodeBall(data []byte) (*Ball, error) {
	r, err := parseRecord(data)
	if err != nil {
		return nil, err
	}
	return c.ballFromRecord(r), nil
}

// DecodeObstacle loads a standalone obstacle record.
func (c *Codec) DecodeObstacle(data []byte) (Obstacle, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return c.obstacleFromRecord(raw, 0), nil
}

func (c *Codec) levelFromRecord(r record) *Level {
	start := toVec(r["ball_start"])
	end := toVec(r["ball_end"])

	raw := r.list("objects")
	obstacles := make([]Obstacle, 0, len(raw))
	for i, o := range raw {
		obstacles = append(obstacles, c.obstacleFromRecord(o, i))
	}

	l := NewLevel(c.cfg, start, end, obstacles)
	if b, ok := asRecord(r["ball"]); ok {
		l.ball = c.ballFromRecord(b)
	}
	return l
}

func (c *Codec) ballFromRecord(r record) *Ball {
	b := NewBall(c.cfg, Vec2{})
	if r.has("rect") {
		b.Bounds = toRect(r["rect"])
		if b.Bounds.W == 0 && b.Bounds.H == 0 {
			size := c.cfg.BallSize()
			b.Bounds.W, b.Bounds.H = size, size
		}
	}
	b.Speed = r.number("velocity")
	switch {
	case r.has("dir"):
		b.SetDirection(toVec(r["dir"]))
	case r.has("vector2"):
		b.SetDirection(toVec(r["vector2"]))
	}
	if b.Direction.IsZero() {
		b.Speed = 0
	}
	return b
}

// classifyObstacle is the single place where an obstacle record's variant
// is inferred. Any patrolling field makes it patrolling; a record with a rect
// and none of them is static; anything else is reported and loaded as static.
func classifyObstacle(raw any) (ObstacleKind, record, error) {
	r, ok := asRecord(raw)
	if !ok {
		return KindStatic, record{}, fmt.Errorf("%w: record is %T", ErrInvalidObstacleVariant, raw)
	}
	if r.has("checkpoints") || r.has("current_checkpoint") || r.has("speed") {
		return KindPatrolling, r, nil
	}
	if r.has("rect") {
		return KindStatic, r, nil
	}
	return KindStatic, r, fmt.Errorf("%w: no rect and no patrol fields", ErrInvalidObstacleVariant)
}

func (c *Codec) obstacleFromRecord(raw any, index int) Obstacle {
	kind, r, err := classifyObstacle(raw)
	if err != nil && c.logf != nil {
		c.logf("[CODEC] obstacle %d loaded as static: %v", index, err)
	}

	rect := toRect(r["rect"])
	if kind == KindStatic {
		return &StaticObstacle{Rect: rect}
	}

	var checkpoints []Vec2
	for _, cp := range r.list("checkpoints") {
		checkpoints = append(checkpoints, toVec(cp))
	}
	p := NewPatrollingObstacle(c.cfg, rect, checkpoints, r.number("speed"))
	p.CurrentCheckpoint = wrapIndex(r.integer("current_checkpoint"), len(p.Checkpoints))
	return p
}
