package game

// Frame is the read-only view of a level handed to a renderer once per tick.
type Frame struct {
	State     LevelState      `json:"state"`
	Strokes   int             `json:"strokes"`
	Ball      BallFrame       `json:"ball"`
	Obstacles []ObstacleFrame `json:"obstacles"`
	Target    Rect            `json:"target"`
	Drag      *PendingShot    `json:"drag,omitempty"`
	Win       *WinFrame       `json:"win,omitempty"`
}

type BallFrame struct {
	Bounds    Rect    `json:"bounds"`
	Direction Vec2    `json:"direction"`
	Speed     float64 `json:"speed"`
	Moving    bool    `json:"moving"`
}

type ObstacleFrame struct {
	Kind   ObstacleKind `json:"kind"`
	Bounds Rect         `json:"bounds"`
}

// WinFrame describes the win animation, when one is configured.
type WinFrame struct {
	Progress float64 `json:"progress"`
	Bounds   Rect    `json:"bounds"`
}

// Renderer draws frames. Implementations live outside the core.
type Renderer interface {
	Render(f Frame)
}

// PointerSource is polled once per tick for the live pointer position.
type PointerSource interface {
	PointerPosition() (Vec2, bool)
}

// Frame captures the current level state.
func (l *Level) Frame() Frame {
	f := Frame{
		State:   l.state,
		Strokes: l.strokes,
		Ball: BallFrame{
			Bounds:    l.ball.Bounds,
			Direction: l.ball.Direction,
			Speed:     l.ball.Speed,
			Moving:    l.ball.IsMoving(),
		},
		Obstacles: make([]ObstacleFrame, len(l.obstacles)),
		Target:    l.Target(),
		Drag:      l.PendingShot(),
	}
	for i, o := range l.obstacles {
		f.Obstacles[i] = ObstacleFrame{Kind: o.Kind(), Bounds: o.Bounds()}
	}
	if l.anim != nil {
		f.Win = &WinFrame{Progress: l.anim.progress(), Bounds: l.anim.bounds}
	}
	return f
}

// Poll samples src into the level's drag preview.
func (l *Level) Poll(src PointerSource) {
	if src == nil {
		return
	}
	if pos, ok := src.PointerPosition(); ok {
		l.SamplePointer(pos)
	}
}
