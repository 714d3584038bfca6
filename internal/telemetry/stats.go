// Package telemetry summarises particle motion per frame.
package telemetry

import (
	"fmt"
	"io"
	"math"
	"sort"
	"sync"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/dotportrait/internal/field"
)

// DisturbedThreshold is the displacement in pixels past which a particle
// counts as disturbed.
const DisturbedThreshold = 0.5

// FrameStats is one row of stats.csv.
type FrameStats struct {
	Frame            int     `csv:"frame" json:"frame"`
	Particles        int     `csv:"particles" json:"particles"`
	MeanDisplacement float64 `csv:"mean_displacement" json:"mean_displacement"`
	P95Displacement  float64 `csv:"p95_displacement" json:"p95_displacement"`
	MaxDisplacement  float64 `csv:"max_displacement" json:"max_displacement"`
	KineticEnergy    float64 `csv:"kinetic_energy" json:"kinetic_energy"`
	Disturbed        int     `csv:"disturbed" json:"disturbed"`
}

func Measure(frame int, particles []field.Particle) FrameStats {
	s := FrameStats{Frame: frame, Particles: len(particles)}
	if len(particles) == 0 {
		return s
	}

	disp := make([]float64, len(particles))
	energy := make([]float64, len(particles))
	for i, p := range particles {
		disp[i] = p.Displacement()
		energy[i] = 0.5 * (p.VX*p.VX + p.VY*p.VY)
		if disp[i] > DisturbedThreshold {
			s.Disturbed++
		}
	}

	s.MeanDisplacement = stat.Mean(disp, nil)
	s.MaxDisplacement = floats.Max(disp)
	s.KineticEnergy = floats.Sum(energy)
	sort.Float64s(disp)
	s.P95Displacement = stat.Quantile(0.95, stat.Empirical, disp, nil)
	return s
}

// Settled reports whether nothing is disturbed and motion has died out.
func (s FrameStats) Settled() bool {
	return s.Disturbed == 0 && s.KineticEnergy < 1e-6
}

// Recorder collects stats on every Every-th frame. It satisfies
// portrait.Observer.
type Recorder struct {
	mu    sync.Mutex
	every int
	stats []FrameStats
}

func NewRecorder(every int) *Recorder {
	if every < 1 {
		every = 1
	}
	return &Recorder{every: every}
}

func (r *Recorder) OnFrame(frame int, particles []field.Particle) {
	if frame%r.every != 0 {
		return
	}
	s := Measure(frame, particles)
	r.mu.Lock()
	r.stats = append(r.stats, s)
	r.mu.Unlock()
}

func (r *Recorder) Stats() []FrameStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]FrameStats, len(r.stats))
	copy(out, r.stats)
	return out
}

// Series extracts one column by its csv name for plotting.
func Series(stats []FrameStats, column string) ([]float64, error) {
	var get func(FrameStats) float64
	switch column {
	case "mean_displacement":
		get = func(s FrameStats) float64 { return s.MeanDisplacement }
	case "p95_displacement":
		get = func(s FrameStats) float64 { return s.P95Displacement }
	case "max_displacement":
		get = func(s FrameStats) float64 { return s.MaxDisplacement }
	case "kinetic_energy":
		get = func(s FrameStats) float64 { return s.KineticEnergy }
	case "disturbed":
		get = func(s FrameStats) float64 { return float64(s.Disturbed) }
	default:
		return nil, fmt.Errorf("unknown column %q", column)
	}
	out := make([]float64, len(stats))
	for i, s := range stats {
		out[i] = get(s)
	}
	return out, nil
}

func WriteCSV(w io.Writer, stats []FrameStats) error {
	if err := gocsv.Marshal(stats, w); err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}
	return nil
}

func ReadCSV(r io.Reader) ([]FrameStats, error) {
	var stats []FrameStats
	if err := gocsv.Unmarshal(r, &stats); err != nil {
		return nil, fmt.Errorf("reading stats: %w", err)
	}
	return stats, nil
}

// Settle pokes f with the pointer at (x, y) for poke frames, releases it,
// and measures every frame until the field settles or limit frames pass.
func Settle(f *field.Field, x, y float64, poke, limit int) []FrameStats {
	out := make([]FrameStats, 0, limit)
	ptr := field.At(x, y)
	for frame := 1; frame <= limit; frame++ {
		if frame == poke+1 {
			ptr = field.Away()
		}
		f.Step(ptr)
		s := Measure(frame, f.Particles())
		out = append(out, s)
		if frame > poke && s.Settled() {
			break
		}
	}
	return out
}

// PeakDisplacement is the largest mean displacement in stats.
func PeakDisplacement(stats []FrameStats) float64 {
	peak := 0.0
	for _, s := range stats {
		peak = math.Max(peak, s.MeanDisplacement)
	}
	return peak
}
