package telemetry

import (
	"bytes"
	"image"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/dotportrait/internal/field"
)

func TestMeasure(t *testing.T) {
	particles := []field.Particle{
		{X: 0, Y: 0, OX: 0, OY: 0},
		{X: 3, Y: 4, OX: 0, OY: 0, VX: 2},
		{X: 10, Y: 0, OX: 0, OY: 0, VY: 1},
		{X: 0.1, Y: 0, OX: 0, OY: 0},
	}
	s := Measure(7, particles)

	if s.Frame != 7 || s.Particles != 4 {
		t.Errorf("unexpected header fields %+v", s)
	}
	if math.Abs(s.MeanDisplacement-15.1/4) > 1e-9 {
		t.Errorf("expected mean %v, got %v", 15.1/4, s.MeanDisplacement)
	}
	if s.MaxDisplacement != 10 {
		t.Errorf("expected max 10, got %v", s.MaxDisplacement)
	}
	if s.P95Displacement != 10 {
		t.Errorf("expected p95 10, got %v", s.P95Displacement)
	}
	if s.KineticEnergy != 2.5 {
		t.Errorf("expected energy 2.5, got %v", s.KineticEnergy)
	}
	if s.Disturbed != 2 {
		t.Errorf("expected 2 disturbed, got %d", s.Disturbed)
	}
	if s.Settled() {
		t.Error("moving field reported settled")
	}
}

func TestMeasure_Empty(t *testing.T) {
	s := Measure(1, nil)
	if s.Particles != 0 || s.MeanDisplacement != 0 || !s.Settled() {
		t.Errorf("unexpected stats for empty field %+v", s)
	}
}

func TestRecorder_Every(t *testing.T) {
	r := NewRecorder(3)
	for frame := 1; frame <= 10; frame++ {
		r.OnFrame(frame, nil)
	}
	stats := r.Stats()
	if len(stats) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(stats))
	}
	if stats[0].Frame != 3 || stats[2].Frame != 9 {
		t.Errorf("unexpected frames %d..%d", stats[0].Frame, stats[2].Frame)
	}
}

func TestCSV(t *testing.T) {
	in := []FrameStats{
		{Frame: 1, Particles: 625, MeanDisplacement: 1.5, MaxDisplacement: 9, Disturbed: 40},
		{Frame: 2, Particles: 625, MeanDisplacement: 0.75, KineticEnergy: 3.25},
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, in); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	header := strings.SplitN(buf.String(), "\n", 2)[0]
	if !strings.HasPrefix(header, "frame,particles,mean_displacement") {
		t.Errorf("unexpected header %q", header)
	}

	out, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(out) != 2 || out[0] != in[0] || out[1] != in[1] {
		t.Errorf("round trip mismatch: %+v", out)
	}
}

func TestSeries(t *testing.T) {
	stats := []FrameStats{{Disturbed: 3}, {Disturbed: 1}}
	got, err := Series(stats, "disturbed")
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != 3 || got[1] != 1 {
		t.Errorf("unexpected series %v", got)
	}
	if _, err := Series(stats, "nope"); err == nil {
		t.Error("expected error for unknown column")
	}
}

func TestSettle(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 128, 128, 128, 255
	}
	f := field.New(field.DefaultParams())
	if err := f.Rebuild(img, 80, 80); err != nil {
		t.Fatal(err)
	}

	stats := Settle(f, 40, 40, 10, 2000)
	if len(stats) <= 10 || len(stats) >= 2000 {
		t.Fatalf("expected the field to settle after the poke, took %d frames", len(stats))
	}
	if PeakDisplacement(stats) <= 0 {
		t.Error("expected the poke to displace particles")
	}
	if !stats[len(stats)-1].Settled() {
		t.Error("expected the last frame to be settled")
	}
}
