package game

// Rect is an axis-aligned box. X and Y are the top-left corner.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func NewRect(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

func (r Rect) Right() float64 {
	return r.X + r.W
}

func (r Rect) Bottom() float64 {
	return r.Y + r.H
}

func (r Rect) Position() Vec2 {
	return Vec2{X: r.X, Y: r.Y}
}

func (r Rect) Center() Vec2 {
	return Vec2{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Overlaps reports whether r and o share interior area.
// Edges are half-open, so boxes that only touch do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	if r.X >= o.Right() || o.X >= r.Right() {
		return false
	}
	if r.Y >= o.Bottom() || o.Y >= r.Bottom() {
		return false
	}
	return true
}

// Translate returns r moved by v.
func (r Rect) Translate(v Vec2) Rect {
	r.X += v.X
	r.Y += v.Y
	return r
}

// MoveTo returns r with its top-left corner at p.
func (r Rect) MoveTo(p Vec2) Rect {
	r.X = p.X
	r.Y = p.Y
	return r
}
