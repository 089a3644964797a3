package game

import (
	"errors"
	"math"
)

// ErrDegenerateVector is returned when normalizing a zero-length vector.
var ErrDegenerateVector = errors.New("degenerate vector: zero magnitude")

// Vec2 is a 2D vector value.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Plus(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Minus(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec2) Times(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

func (v Vec2) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Distance returns the euclidean distance between v and o.
func (v Vec2) Distance(o Vec2) float64 {
	return v.Minus(o).Magnitude()
}

// Normalize returns the unit vector in the direction of v.
// Callers are expected to guard zero vectors; the error is never fatal.
func (v Vec2) Normalize() (Vec2, error) {
	m := v.Magnitude()
	if m == 0 {
		return Vec2{}, ErrDegenerateVector
	}
	return Vec2{X: v.X / m, Y: v.Y / m}, nil
}

// Rotate rotates v counter-clockwise by the given angle in degrees.
func (v Vec2) Rotate(degrees float64) Vec2 {
	rad := degrees * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return Vec2{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

func (v Vec2) Invert() Vec2 {
	return Vec2{X: -v.X, Y: -v.Y}
}

func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}
