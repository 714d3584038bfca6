// Package paint defines the immediate-mode drawing contract the portrait
// needs and the per-frame drawing pass on top of it.
package paint

import "image/color"

// Surface is a 2D immediate-mode drawing target sized to its container.
// Colours are non-premultiplied; implementations composite with source-over.
type Surface interface {
	Clear()
	FillRect(x, y, w, h float64, c color.NRGBA)
	FillCircle(cx, cy, r float64, c color.NRGBA)
	FillRadialGradient(g RadialGradient, x, y, w, h float64)
}

// Resizer is implemented by surfaces that own a backing buffer.
type Resizer interface {
	Resize(w, h int)
}

// Stop is one colour stop of a gradient at offset in [0, 1].
type Stop struct {
	Offset float64
	Color  color.NRGBA
}

// RadialGradient interpolates between two circles with the semantics of
// an HTML canvas createRadialGradient.
type RadialGradient struct {
	X0, Y0, R0 float64
	X1, Y1, R1 float64
	Stops      []Stop
}

// WithAlpha returns c with its alpha multiplied by f.
func WithAlpha(c color.NRGBA, f float64) color.NRGBA {
	c.A = uint8(float64(c.A)*clamp01(f) + 0.5)
	return c
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
