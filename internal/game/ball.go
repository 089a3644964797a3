package game

import "math"

// Axis names the direction component flipped by a bounce.
type Axis int

const (
	AxisNone Axis = iota
	AxisX
	AxisY
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	}
	return "none"
}

// Ball is the player's ball. Velocity is split into a unit Direction and a
// scalar Speed; Direction is either zero or unit length.
type Ball struct {
	Bounds    Rect    `json:"bounds"`
	Direction Vec2    `json:"direction"`
	Speed     float64 `json:"speed"`

	cfg Config
}

// NewBall creates a ball at rest with its top-left corner at pos.
func NewBall(cfg Config, pos Vec2) *Ball {
	size := cfg.BallSize()
	return &Ball{
		Bounds: NewRect(pos.X, pos.Y, size, size),
		cfg:    cfg,
	}
}

// SetDirection assigns a raw direction, normalizing anything but zero.
func (b *Ball) SetDirection(v Vec2) {
	n, err := v.Normalize()
	if err != nil {
		b.Direction = Vec2{}
		return
	}
	b.Direction = n
}

// IsMoving reports whether the ball still has speed.
func (b *Ball) IsMoving() bool {
	return b.Speed != 0
}

// ApplyForce launches the ball from a drag gesture. The ball travels away
// from the release point, toward where the drag began. A zero-length drag is
// ignored. Level rejects shots while the ball is moving; Ball does not.
func (b *Ball) ApplyForce(initial, final Vec2) {
	delta := initial.Minus(final)
	force := math.Min(delta.Magnitude(), b.cfg.MaxVelocity)
	if force == 0 {
		return
	}
	dir, err := delta.Normalize()
	if err != nil {
		return
	}
	b.Direction = dir
	b.Speed = force * b.cfg.SpeedScale
}

// Tick advances the ball one step against obstacles and returns the axis it
// bounced on, if any.
//
// Collision uses a one-step lookahead of StepScale of the full move, so a fast
// ball can tunnel through a thin obstacle. Only the first overlapping obstacle
// in slice order bounces the ball in a given tick.
func (b *Ball) Tick(obstacles []Obstacle) Axis {
	if !b.IsMoving() {
		return AxisNone
	}

	predicted := b.Bounds.Translate(b.Direction.Times(b.Speed * b.cfg.StepScale))

	bounced := AxisNone
	for _, o := range obstacles {
		ob := o.Bounds()
		if !predicted.Overlaps(ob) {
			continue
		}
		bounced = bounceAxis(predicted, ob)
		switch bounced {
		case AxisX:
			b.Direction.X = -b.Direction.X
		case AxisY:
			b.Direction.Y = -b.Direction.Y
		}
		break
	}

	b.move()
	return bounced
}

// bounceAxis picks the minimum-translation axis between two overlapping
// boxes. Equal overlaps resolve to the vertical axis.
func bounceAxis(predicted, obstacle Rect) Axis {
	d := predicted.Center().Minus(obstacle.Center())
	overlapX := (predicted.W+obstacle.W)/2 - math.Abs(d.X)
	overlapY := (predicted.H+obstacle.H)/2 - math.Abs(d.Y)
	if overlapX < overlapY {
		return AxisX
	}
	return AxisY
}

// move applies the full-speed step followed by friction.
func (b *Ball) move() {
	b.Bounds = b.Bounds.Translate(b.Direction.Times(b.Speed))

	if math.Abs(b.Speed) <= 1 {
		b.Speed = 0
		return
	}
	slowed := math.Abs(b.Speed) - b.cfg.Friction
	if slowed <= 0 {
		b.Speed = 0
		return
	}
	b.Speed = math.Copysign(slowed, b.Speed)
}

// Config returns the configuration the ball was built with.
func (b *Ball) Config() Config {
	return b.cfg
}
