package paint

import (
	"math"

	"github.com/san-kum/dotportrait/internal/field"
)

// Frame runs the drawing pass: clear, ambient glow, scanlines, then one
// filled circle per particle in the accent colour at the particle opacity.
func Frame(s Surface, particles []field.Particle, w, h float64, st Style) {
	s.Clear()
	if w <= 0 || h <= 0 {
		return
	}

	s.FillRadialGradient(Ambient(w, h, st), 0, 0, w, h)

	spacing := st.ScanlineSpacing
	if spacing <= 0 {
		spacing = 4
	}
	line := WithAlpha(st.Scanline, st.ScanlineAlpha)
	for y := 0.0; y < h; y += spacing {
		s.FillRect(0, y, w, 1, line)
	}

	for i := range particles {
		p := &particles[i]
		s.FillCircle(p.X, p.Y, p.Radius, WithAlpha(st.Accent, p.Opacity))
	}
}

// Ambient is the background vignette for a w x h surface.
func Ambient(w, h float64, st Style) RadialGradient {
	return RadialGradient{
		X0: w * 0.52, Y0: h * 0.45, R0: 10,
		X1: w * 0.5, Y1: h * 0.5, R1: math.Max(w, h),
		Stops: []Stop{
			{Offset: 0, Color: st.Glow},
			{Offset: 1, Color: WithAlpha(st.Glow, 0)},
		},
	}
}
