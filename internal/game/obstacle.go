package game

// ObstacleKind identifies an obstacle variant.
type ObstacleKind string

const (
	KindStatic     ObstacleKind = "static"
	KindPatrolling ObstacleKind = "patrolling"
)

// Obstacle is a box the ball bounces off.
type Obstacle interface {
	Bounds() Rect
	Update()
	Kind() ObstacleKind
}

// StaticObstacle never moves.
type StaticObstacle struct {
	Rect Rect `json:"rect"`
}

func NewStaticObstacle(x, y, w, h float64) *StaticObstacle {
	return &StaticObstacle{Rect: NewRect(x, y, w, h)}
}

func (s *StaticObstacle) Bounds() Rect       { return s.Rect }
func (s *StaticObstacle) Update()            {}
func (s *StaticObstacle) Kind() ObstacleKind { return KindStatic }

// PatrollingObstacle walks its checkpoints in order at a fixed speed and
// wraps back to the first one after the last.
type PatrollingObstacle struct {
	Rect              Rect    `json:"rect"`
	Checkpoints       []Vec2  `json:"checkpoints"`
	CurrentCheckpoint int     `json:"current_checkpoint"`
	Speed             float64 `json:"speed"`

	threshold float64
}

// NewPatrollingObstacle builds a patrolling obstacle. With no checkpoints it
// parks on a single checkpoint at its spawn position.
func NewPatrollingObstacle(cfg Config, rect Rect, checkpoints []Vec2, speed float64) *PatrollingObstacle {
	if len(checkpoints) == 0 {
		checkpoints = []Vec2{rect.Position()}
	}
	cps := make([]Vec2, len(checkpoints))
	copy(cps, checkpoints)
	return &PatrollingObstacle{
		Rect:        rect,
		Checkpoints: cps,
		Speed:       speed,
		threshold:   cfg.CheckpointThreshold,
	}
}

func (p *PatrollingObstacle) Bounds() Rect       { return p.Rect }
func (p *PatrollingObstacle) Kind() ObstacleKind { return KindPatrolling }

// Target returns the checkpoint currently being approached.
func (p *PatrollingObstacle) Target() Vec2 {
	return p.Checkpoints[p.CurrentCheckpoint]
}

// Update advances the checkpoint when close enough and then steps toward the
// current one. Direction is recomputed every tick.
func (p *PatrollingObstacle) Update() {
	if len(p.Checkpoints) == 0 {
		return
	}
	p.CurrentCheckpoint = wrapIndex(p.CurrentCheckpoint, len(p.Checkpoints))

	pos := p.Rect.Position()
	if pos.Distance(p.Target()) < p.threshold {
		p.CurrentCheckpoint = (p.CurrentCheckpoint + 1) % len(p.Checkpoints)
	}

	// Coinciding checkpoints leave nothing to normalize; stay put.
	dir, err := pos.Minus(p.Target()).Normalize()
	if err != nil {
		return
	}
	p.Rect = p.Rect.MoveTo(pos.Minus(dir.Times(p.Speed)))
}

func wrapIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// Borders returns the four static walls framing the screen.
func Borders(cfg Config) []Obstacle {
	w, h, b := cfg.ScreenW, cfg.ScreenH, cfg.BorderSize
	return []Obstacle{
		NewStaticObstacle(0, 0, w, b),
		NewStaticObstacle(0, h-b, w, b),
		NewStaticObstacle(0, b, b, h-b),
		NewStaticObstacle(w-b, b, b, h),
	}
}
