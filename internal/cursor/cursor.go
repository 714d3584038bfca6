// Package cursor tracks the custom pointer: a dot pinned to the pointer
// and a ring that eases after it.
package cursor

import "math"

// Ease is the share of the remaining distance the ring covers per frame.
const Ease = 0.12

const (
	DotRadius  = 3
	RingRadius = 14
)

type Cursor struct {
	DotX, DotY   float64
	RingX, RingY float64
	Visible      bool
}

// New starts both the dot and the ring at the centre of a w x h surface.
func New(w, h float64) *Cursor {
	return &Cursor{
		DotX: w / 2, DotY: h / 2,
		RingX: w / 2, RingY: h / 2,
	}
}

func (c *Cursor) Move(x, y float64) {
	c.DotX, c.DotY = x, y
	c.Visible = true
}

func (c *Cursor) Hide() { c.Visible = false }

// Step eases the ring toward the dot by one frame.
func (c *Cursor) Step() {
	c.RingX += (c.DotX - c.RingX) * Ease
	c.RingY += (c.DotY - c.RingY) * Ease
}

// Lag is the distance between the ring and the dot.
func (c *Cursor) Lag() float64 {
	return math.Hypot(c.DotX-c.RingX, c.DotY-c.RingY)
}
