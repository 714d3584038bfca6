package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
)

// Gm7 add9: G2, Bb2, D3, F3, A3
var padChord = []float64{98.00, 116.54, 146.83, 174.61, 220.00}

// Pad is an endless ambient chord: detuned triangle voices through a
// one-pole low-pass and a ping-pong delay. Energy opens the filter.
type Pad struct {
	rate   beep.SampleRate
	t      float64
	filter [2]float64
	delay  [2][]float64
	head   int

	mu     sync.Mutex
	energy float64
	smooth float64
}

func NewPad(rate beep.SampleRate) *Pad {
	n := rate.N(600 * time.Millisecond)
	return &Pad{
		rate:  rate,
		delay: [2][]float64{make([]float64, n), make([]float64, n)},
	}
}

// SetEnergy feeds the current field motion into the filter cutoff.
func (p *Pad) SetEnergy(e float64) {
	p.mu.Lock()
	p.energy = e
	p.mu.Unlock()
}

func (p *Pad) Stream(samples [][2]float64) (int, bool) {
	p.mu.Lock()
	target := p.energy
	p.mu.Unlock()

	dt := 1 / float64(p.rate)
	g := 1 / float64(len(padChord))
	const vol = 0.252

	for i := range samples {
		p.smooth = p.smooth*0.995 + target*0.005
		cutoff := 300 + math.Min(p.smooth/5, 900)

		var l, r float64
		for j, f := range padChord {
			lfo := math.Sin(p.t*0.2 + float64(j))
			l += triangle(p.t*f*0.999) * g * (0.7 + 0.3*lfo)
			r += triangle(p.t*f*1.001) * g * (0.7 + 0.3*lfo)
		}
		l, p.filter[0] = lpf(l, cutoff, dt, p.filter[0])
		r, p.filter[1] = lpf(r, cutoff, dt, p.filter[1])

		dl, dr := p.delay[0][p.head], p.delay[1][p.head]
		mixL := l + dl*0.3 + dr*0.1
		mixR := r + dr*0.3 + dl*0.1
		p.delay[0][p.head] = mixL * 0.7
		p.delay[1][p.head] = mixR * 0.7
		p.head = (p.head + 1) % len(p.delay[0])

		samples[i][0] = mixL * vol
		samples[i][1] = mixR * vol
		p.t += dt
	}
	return len(samples), true
}

func (p *Pad) Err() error { return nil }

func triangle(phase float64) float64 {
	x := phase - math.Floor(phase)
	return 4*math.Abs(x-0.5) - 1
}

// one-pole low-pass
func lpf(sample, cutoff, dt, state float64) (float64, float64) {
	rc := 1 / (2 * math.Pi * cutoff)
	alpha := dt / (rc + dt)
	out := state + alpha*(sample-state)
	return out, out
}
