// Package script drives a renderer from YAML pointer scenarios and runs
// parameter sweeps headlessly.
package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/dotportrait/internal/field"
)

var ErrBadStep = errors.New("script: invalid step")

// Scenario is a scripted sequence of pointer and surface events.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	Steps       []Step `yaml:"steps"`
}

// Step is one action followed by Frames ticks. Move with To set glides the
// pointer from (X, Y) to To over the step's frames.
type Step struct {
	Action string             `yaml:"action"`
	X      float64            `yaml:"x"`
	Y      float64            `yaml:"y"`
	To     *Point             `yaml:"to"`
	Width  int                `yaml:"width"`
	Height int                `yaml:"height"`
	Params map[string]float64 `yaml:"params"`
	Frames int                `yaml:"frames"`
}

type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Target is what a scenario drives; *portrait.Renderer satisfies it.
type Target interface {
	Resize(w, h int) error
	PointerMove(x, y float64)
	PointerLeave()
	Tick() bool
	Params() field.Params
	SetParams(field.Params) error
	Reset()
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (sc *Scenario) Validate() error {
	if sc.Width < 0 || sc.Height < 0 {
		return fmt.Errorf("%w: negative surface %dx%d", ErrBadStep, sc.Width, sc.Height)
	}
	for i, st := range sc.Steps {
		if st.Frames < 0 {
			return fmt.Errorf("%w: step %d has negative frames", ErrBadStep, i+1)
		}
		switch st.Action {
		case "move", "leave", "wait", "reset", "params":
		case "resize":
			if st.Width <= 0 || st.Height <= 0 {
				return fmt.Errorf("%w: step %d resize needs a positive size", ErrBadStep, i+1)
			}
		default:
			return fmt.Errorf("%w: step %d unknown action %q", ErrBadStep, i+1, st.Action)
		}
	}
	return nil
}

// TotalFrames is the number of ticks the scenario asks for.
func (sc *Scenario) TotalFrames() int {
	n := 0
	for _, st := range sc.Steps {
		n += st.Frames
	}
	return n
}

// Run executes every step against t and returns the number of frames
// drawn.
func Run(ctx context.Context, sc *Scenario, t Target, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if sc.Width > 0 && sc.Height > 0 {
		if err := t.Resize(sc.Width, sc.Height); err != nil {
			return 0, err
		}
	}

	drawn := 0
	for i, st := range sc.Steps {
		logger.Debug("scenario step", "scenario", sc.Name, "step", i+1, "action", st.Action, "frames", st.Frames)

		switch st.Action {
		case "move":
			t.PointerMove(st.X, st.Y)
		case "leave":
			t.PointerLeave()
		case "resize":
			if err := t.Resize(st.Width, st.Height); err != nil {
				return drawn, fmt.Errorf("step %d: %w", i+1, err)
			}
		case "reset":
			t.Reset()
		case "params":
			p := t.Params()
			for k, v := range st.Params {
				var err error
				if p, err = p.SetParam(k, v); err != nil {
					return drawn, fmt.Errorf("step %d: %w", i+1, err)
				}
			}
			if err := t.SetParams(p); err != nil {
				return drawn, fmt.Errorf("step %d: %w", i+1, err)
			}
		}

		for f := 0; f < st.Frames; f++ {
			select {
			case <-ctx.Done():
				return drawn, ctx.Err()
			default:
			}
			if st.Action == "move" && st.To != nil {
				k := float64(f+1) / float64(st.Frames)
				t.PointerMove(st.X+(st.To.X-st.X)*k, st.Y+(st.To.Y-st.Y)*k)
			}
			if t.Tick() {
				drawn++
			}
		}
	}
	return drawn, nil
}
