package game

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// winAnimation eases the ball into the hole. It only drives what the
// renderer shows; the ball itself is not moved.
type winAnimation struct {
	tweens   [3]*gween.Tween // x, y, size
	bounds   Rect
	elapsed  float64
	duration float64
	done     bool
}

func newWinAnimation(from, hole Rect, seconds float64) *winAnimation {
	d := float32(seconds)
	c := hole.Center()
	a := &winAnimation{bounds: from, duration: seconds}
	a.tweens[0] = gween.New(float32(from.X), float32(c.X), d, ease.OutQuad)
	a.tweens[1] = gween.New(float32(from.Y), float32(c.Y), d, ease.OutQuad)
	a.tweens[2] = gween.New(float32(from.W), 0, d, ease.InQuad)
	return a
}

// step advances the animation by dt seconds and reports whether it finished.
func (a *winAnimation) step(dt float64) bool {
	if a.done {
		return true
	}
	a.elapsed += dt
	x, fx := a.tweens[0].Update(float32(dt))
	y, fy := a.tweens[1].Update(float32(dt))
	size, fs := a.tweens[2].Update(float32(dt))
	a.bounds = NewRect(float64(x), float64(y), float64(size), float64(size))
	a.done = fx && fy && fs
	return a.done
}

// progress is the completed fraction in [0, 1].
func (a *winAnimation) progress() float64 {
	if a.done || a.duration <= 0 {
		return 1
	}
	p := a.elapsed / a.duration
	if p > 1 {
		return 1
	}
	return p
}
