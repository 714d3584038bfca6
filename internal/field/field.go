package field

import (
	"image"
	"math"
)

// minChunk keeps small fields on the calling goroutine.
const minChunk = 2048

// Field holds the particle set for one image on one surface size.
type Field struct {
	params    Params
	img       image.Image
	width     float64
	height    float64
	particles []Particle
}

func New(params Params) *Field {
	return &Field{params: params}
}

func (f *Field) Params() Params { return f.params }

// SetParams replaces the physics constants. A changed gap rebuilds the
// particle set from the current image.
func (f *Field) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	regap := p.Gap != f.params.Gap
	f.params = p
	if regap && f.img != nil {
		return f.Rebuild(f.img, f.width, f.height)
	}
	return nil
}

// Rebuild discards every particle and samples img onto a w x h surface.
func (f *Field) Rebuild(img image.Image, w, h float64) error {
	if err := f.params.Validate(); err != nil {
		return err
	}
	particles, err := Sample(img, w, h, f.params.Gap)
	if err != nil {
		return err
	}
	f.img = img
	f.width, f.height = w, h
	f.particles = particles
	return nil
}

// Resize rebuilds the particle set for a new surface size.
func (f *Field) Resize(w, h float64) error {
	if f.img == nil {
		f.width, f.height = w, h
		return nil
	}
	return f.Rebuild(f.img, w, h)
}

// Reset returns every particle to rest at its origin.
func (f *Field) Reset() {
	for i := range f.particles {
		p := &f.particles[i]
		p.X, p.Y = p.OX, p.OY
		p.VX, p.VY = 0, 0
	}
}

func (f *Field) Ready() bool              { return f.img != nil }
func (f *Field) Image() image.Image       { return f.img }
func (f *Field) Size() (float64, float64) { return f.width, f.height }
func (f *Field) Len() int                 { return len(f.particles) }

// Particles returns the live particle slice. Callers must not retain it
// across Rebuild.
func (f *Field) Particles() []Particle { return f.particles }

// Snapshot returns a copy of the particle set.
func (f *Field) Snapshot() []Particle {
	out := make([]Particle, len(f.particles))
	copy(out, f.particles)
	return out
}

// Step advances every particle by one frame against pointer.
func (f *Field) Step(pointer Pointer) {
	prm := f.params
	ParallelFor(len(f.particles), minChunk, func(start, end int) {
		for i := start; i < end; i++ {
			stepParticle(&f.particles[i], pointer, prm)
		}
	})
}

func stepParticle(p *Particle, pointer Pointer, prm Params) {
	ix, iy, _ := Impulse(*p, pointer, prm)
	p.VX += ix
	p.VY += iy

	p.VX += (p.OX - p.X) * prm.ReturnForce
	p.VY += (p.OY - p.Y) * prm.ReturnForce

	p.VX *= prm.Friction
	p.VY *= prm.Friction

	p.X += p.VX
	p.Y += p.VY
}

// Impulse returns the repulsive velocity change a pointer applies to p and
// the push magnitude before direction is applied. Both are zero outside
// the influence radius. At zero distance the divisor is 1, so the
// returned impulse is (0, 0) while push equals the full strength.
func Impulse(p Particle, pointer Pointer, prm Params) (ix, iy, push float64) {
	dx := p.X - pointer.X
	dy := p.Y - pointer.Y
	dist := math.Sqrt(dx*dx + dy*dy)
	if dist >= prm.Radius {
		return 0, 0, 0
	}
	push = (1 - dist/prm.Radius) * prm.Strength
	div := dist
	if div == 0 {
		div = 1
	}
	return dx / div * push, dy / div * push, push
}
