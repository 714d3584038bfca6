package field

import "math"

// Sampling thresholds and particle appearance tiers.
const (
	Magnify = 1.25

	AlphaCut      = 20
	BrightnessMin = 0.20
	BrightnessMax = 0.98

	OpacityBase = 0.15
	OpacityGain = 0.95

	LargeThreshold = 0.55
	LargeRadius    = 2.25
	SmallRadius    = 1.65
)

// FarAway is the pointer sentinel used before the pointer enters the
// surface and after it leaves. No particle is within reach of it.
const FarAway = -9999.0

// Particle is one sampled dot. Origin, Opacity and Radius are fixed at
// construction; only position and velocity evolve.
type Particle struct {
	X, Y    float64
	OX, OY  float64
	VX, VY  float64
	Opacity float64
	Radius  float64
}

func newParticle(x, y, brightness float64) Particle {
	return Particle{
		X:       x,
		Y:       y,
		OX:      x,
		OY:      y,
		Opacity: Opacity(brightness),
		Radius:  Radius(brightness),
	}
}

// Displacement is the distance between the particle and its origin.
func (p Particle) Displacement() float64 {
	return math.Hypot(p.X-p.OX, p.Y-p.OY)
}

// Speed is the magnitude of the particle velocity.
func (p Particle) Speed() float64 {
	return math.Hypot(p.VX, p.VY)
}

// Luma returns ITU-R BT.709 brightness of 8-bit channels in [0, 1].
func Luma(r, g, b uint8) float64 {
	return (0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)) / 255
}

// Keep reports whether a sampled pixel becomes a particle.
func Keep(alpha uint8, brightness float64) bool {
	if alpha < AlphaCut {
		return false
	}
	return brightness >= BrightnessMin && brightness <= BrightnessMax
}

func Opacity(brightness float64) float64 {
	return math.Min(1, OpacityBase+brightness*OpacityGain)
}

func Radius(brightness float64) float64 {
	if brightness > LargeThreshold {
		return LargeRadius
	}
	return SmallRadius
}

// Pointer is the cursor position relative to the drawing surface.
type Pointer struct {
	X, Y float64
}

// Away returns the sentinel pointer.
func Away() Pointer {
	return Pointer{X: FarAway, Y: FarAway}
}

// At returns a pointer at surface coordinates (x, y).
func At(x, y float64) Pointer {
	return Pointer{X: x, Y: y}
}

// IsAway reports whether p is the sentinel.
func (p Pointer) IsAway() bool {
	return p.X == FarAway && p.Y == FarAway
}
