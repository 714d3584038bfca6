package field_test

import (
	"image"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dotportrait/internal/field"
)

// noisy returns a deterministic image with random colour and alpha.
func noisy(w, h int, seed int64) *image.NRGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i++ {
		img.Pix[i] = uint8(rng.Intn(256))
	}
	return img
}

// gated returns a deterministic image whose alpha straddles the cut and
// whose channels survive an 8-bit premultiply round trip unchanged.
func gated(w, h int, seed int64) *image.NRGBA {
	alphas := []uint8{0, 10, 19, 20, 21, 128, 255}
	rng := rand.New(rand.NewSource(seed))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(16 + rng.Intn(240))
		img.Pix[i+1] = uint8(16 + rng.Intn(240))
		img.Pix[i+2] = uint8(16 + rng.Intn(240))
		img.Pix[i+3] = alphas[rng.Intn(len(alphas))]
	}
	return img
}

var _ = Describe("Particle field", func() {
	var (
		img *image.NRGBA
		f   *field.Field
	)

	BeforeEach(func() {
		img = noisy(64, 64, 7)
		f = field.New(field.DefaultParams())
		Expect(f.Rebuild(img, 64, 64)).To(Succeed())
		Expect(f.Len()).To(BeNumerically(">", 0))
	})

	Describe("sampling", func() {
		It("keeps opacity and radius inside their tiers", func() {
			for _, p := range f.Particles() {
				Expect(p.Opacity).To(BeNumerically(">=", 0.15))
				Expect(p.Opacity).To(BeNumerically("<=", 1.0))
				Expect(p.Radius).To(Or(Equal(1.65), Equal(2.25)))
			}
		})

		It("never creates a particle from a rejected pixel", func() {
			// 40px on a 32px surface scales by exactly 1, offset -4.
			flat := gated(40, 40, 11)
			particles, err := field.Sample(flat, 32, 32, 3)
			Expect(err).NotTo(HaveOccurred())

			kept := map[[2]int]bool{}
			for _, p := range particles {
				kept[[2]int{int(p.OX + 4), int(p.OY + 4)}] = true
			}
			for y := 0; y < 40; y += 3 {
				for x := 0; x < 40; x += 3 {
					c := flat.NRGBAAt(x, y)
					want := field.Keep(c.A, field.Luma(c.R, c.G, c.B))
					Expect(kept[[2]int{x, y}]).To(Equal(want), "sample (%d,%d) %v", x, y, c)
				}
			}
		})

		It("sets every origin to the initial position", func() {
			for _, p := range f.Particles() {
				Expect(p.X).To(Equal(p.OX))
				Expect(p.Y).To(Equal(p.OY))
			}
		})
	})

	Describe("stepping", func() {
		It("settles back to the origin once the pointer leaves", func() {
			for i := 0; i < 10; i++ {
				f.Step(field.At(32, 32))
			}
			for i := 0; i < 800; i++ {
				f.Step(field.Away())
			}
			for _, p := range f.Particles() {
				Expect(p.X).To(BeNumerically("~", p.OX, 1e-9))
				Expect(p.Y).To(BeNumerically("~", p.OY, 1e-9))
			}
		})

		It("never moves an origin", func() {
			origins := f.Snapshot()
			for i := 0; i < 20; i++ {
				f.Step(field.At(float64(i*3), 30))
			}
			for i, p := range f.Particles() {
				Expect(p.OX).To(Equal(origins[i].OX))
				Expect(p.OY).To(Equal(origins[i].OY))
			}
		})

		It("gives a zero impulse at zero distance with full push magnitude", func() {
			p := f.Particles()[0]
			ix, iy, push := field.Impulse(p, field.At(p.X, p.Y), field.DefaultParams())
			Expect(push).To(Equal(18.0))
			Expect(ix).To(BeZero())
			Expect(iy).To(BeZero())
		})
	})

	Describe("resizing", func() {
		It("replaces the particle set with a fresh sample", func() {
			f.Step(field.At(10, 10))
			Expect(f.Resize(96, 48)).To(Succeed())

			fresh, err := field.Sample(img, 96, 48, field.DefaultGap)
			Expect(err).NotTo(HaveOccurred())
			Expect(f.Particles()).To(Equal(fresh))
		})
	})

	Context("with a solid mid-gray source", func() {
		It("produces a 25x25 grid of small dots", func() {
			gray := image.NewNRGBA(image.Rect(0, 0, 100, 100))
			for i := 0; i < len(gray.Pix); i += 4 {
				gray.Pix[i], gray.Pix[i+1], gray.Pix[i+2], gray.Pix[i+3] = 128, 128, 128, 255
			}
			particles, err := field.Sample(gray, 80, 80, 4)
			Expect(err).NotTo(HaveOccurred())
			Expect(particles).To(HaveLen(625))
			for _, p := range particles {
				Expect(p.Radius).To(Equal(1.65))
				Expect(p.Opacity).To(BeNumerically("~", 0.627, 0.01))
			}
		})
	})
})
