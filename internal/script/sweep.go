package script

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"math/rand"
	"time"

	"github.com/san-kum/dotportrait/internal/field"
	"github.com/san-kum/dotportrait/internal/telemetry"
)

// ParameterSweep pokes the centre of a field for Poke frames at each of
// Steps values of Param between Min and Max.
type ParameterSweep struct {
	Param  string
	Min    float64
	Max    float64
	Steps  int
	Poke   int
	Limit  int
	Width  float64
	Height float64
}

type SweepResult struct {
	Value        float64 `json:"value"`
	PeakMean     float64 `json:"peak_mean"`
	SettleFrames int     `json:"settle_frames"`
	Settled      bool    `json:"settled"`
}

// RunSweep measures how far and how long the field reacts to a poke as one
// parameter varies.
func RunSweep(ctx context.Context, sw ParameterSweep, base field.Params, img image.Image, logger *slog.Logger) ([]SweepResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if sw.Steps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sw.Steps)
	}

	stepSize := 0.0
	if sw.Steps > 1 {
		stepSize = (sw.Max - sw.Min) / float64(sw.Steps-1)
	}

	results := make([]SweepResult, 0, sw.Steps)
	for i := 0; i < sw.Steps; i++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		val := sw.Min + float64(i)*stepSize
		p, err := base.SetParam(sw.Param, val)
		if err != nil {
			return results, err
		}

		f := field.New(p)
		if err := f.Rebuild(img, sw.Width, sw.Height); err != nil {
			return results, err
		}
		stats := telemetry.Settle(f, sw.Width/2, sw.Height/2, sw.Poke, sw.Limit)

		res := SweepResult{Value: val, PeakMean: telemetry.PeakDisplacement(stats), SettleFrames: len(stats)}
		if n := len(stats); n > 0 {
			res.Settled = stats[n-1].Settled()
		}
		results = append(results, res)
		logger.Info("sweep point", "param", sw.Param, "value", val, "peak_mean", res.PeakMean, "settle_frames", res.SettleFrames)
	}
	return results, nil
}

// ProbeResult is one randomised poke.
type ProbeResult struct {
	Trial   int
	X, Y    float64
	Frames  int
	Settled bool
}

// Probe pokes f at random positions and checks that every poke settles
// within limit frames. A zero seed uses the clock.
func Probe(f *field.Field, trials, poke, limit int, seed int64) []ProbeResult {
	rng := rand.New(rand.NewSource(seed))
	if seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	w, h := f.Size()

	results := make([]ProbeResult, 0, trials)
	for trial := 0; trial < trials; trial++ {
		x, y := rng.Float64()*w, rng.Float64()*h
		stats := telemetry.Settle(f, x, y, poke, limit)
		r := ProbeResult{Trial: trial, X: x, Y: y, Frames: len(stats)}
		if n := len(stats); n > 0 {
			r.Settled = stats[n-1].Settled()
		}
		results = append(results, r)
		f.Reset()
	}
	return results
}

// ProbeStats counts settled and unsettled trials.
func ProbeStats(results []ProbeResult) (settled, unsettled int) {
	for _, r := range results {
		if r.Settled {
			settled++
		} else {
			unsettled++
		}
	}
	return
}
