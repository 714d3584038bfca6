package field

import (
	"errors"
	"image/color"
	"math"
	"testing"
)

func TestStep_FarPointerStaysAtRest(t *testing.T) {
	f := New(DefaultParams())
	if err := f.Rebuild(solid(40, 40, color.NRGBA{128, 128, 128, 255}), 32, 32); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}

	before := f.Snapshot()
	f.Step(Away())
	for i, p := range f.Particles() {
		if p.X != before[i].X || p.Y != before[i].Y {
			t.Fatalf("particle %d moved without a pointer: %v -> %v", i, before[i], p)
		}
	}
}

func TestStep_PushesAwayFromPointer(t *testing.T) {
	prm := DefaultParams()
	p := Particle{X: 110, Y: 100, OX: 110, OY: 100}

	stepParticle(&p, At(100, 100), prm)

	// push = (1 - 10/130) * 18, then friction, restore adds nothing at rest.
	want := (1 - 10.0/130.0) * 18 * prm.Friction
	if math.Abs(p.VX-want) > 1e-9 {
		t.Errorf("expected vx %v, got %v", want, p.VX)
	}
	if p.VY != 0 {
		t.Errorf("expected no vertical impulse, got %v", p.VY)
	}
	if p.X <= 110 {
		t.Errorf("expected particle pushed right of 110, got %v", p.X)
	}
	if p.OX != 110 || p.OY != 100 {
		t.Errorf("origin changed to %v,%v", p.OX, p.OY)
	}
}

func TestStep_OrderRestoreBeforeFriction(t *testing.T) {
	prm := DefaultParams()
	p := Particle{X: 10, Y: 0, OX: 0, OY: 0}

	stepParticle(&p, Away(), prm)

	wantV := (0 - 10) * prm.ReturnForce * prm.Friction
	if math.Abs(p.VX-wantV) > 1e-12 {
		t.Errorf("expected vx %v, got %v", wantV, p.VX)
	}
	if math.Abs(p.X-(10+wantV)) > 1e-12 {
		t.Errorf("expected x %v, got %v", 10+wantV, p.X)
	}
}

func TestImpulse_ZeroDistance(t *testing.T) {
	prm := DefaultParams()
	p := Particle{X: 50, Y: 50, OX: 50, OY: 50}

	ix, iy, push := Impulse(p, At(50, 50), prm)
	if push != 18 {
		t.Errorf("expected push magnitude 18, got %v", push)
	}
	// The divisor-1 guard scales a zero displacement, so no direction wins.
	if ix != 0 || iy != 0 {
		t.Errorf("expected zero impulse at zero distance, got (%v,%v)", ix, iy)
	}
}

func TestImpulse_OutsideRadius(t *testing.T) {
	p := Particle{X: 300, Y: 0}
	if ix, iy, push := Impulse(p, At(0, 0), DefaultParams()); ix != 0 || iy != 0 || push != 0 {
		t.Errorf("expected no impulse outside radius, got (%v,%v,%v)", ix, iy, push)
	}
}

func TestStep_ConvergesToOrigin(t *testing.T) {
	f := New(DefaultParams())
	if err := f.Rebuild(solid(40, 40, color.NRGBA{128, 128, 128, 255}), 32, 32); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		f.Step(At(16, 16))
	}
	disturbed := false
	for _, p := range f.Particles() {
		if p.Displacement() > 1 {
			disturbed = true
		}
	}
	if !disturbed {
		t.Fatal("expected pointer to disturb the field")
	}

	for i := 0; i < 600; i++ {
		f.Step(Away())
	}
	for _, p := range f.Particles() {
		if p.Displacement() > 1e-9 || p.Speed() > 1e-9 {
			t.Fatalf("particle did not settle: displacement %v speed %v", p.Displacement(), p.Speed())
		}
	}
}

func TestResize_RebuildsWholesale(t *testing.T) {
	f := New(DefaultParams())
	img := solid(40, 40, color.NRGBA{128, 128, 128, 255})
	if err := f.Rebuild(img, 32, 32); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}
	small := f.Len()
	f.Step(At(16, 16))

	if err := f.Resize(64, 64); err != nil {
		t.Fatalf("resize failed: %v", err)
	}
	if f.Len() <= small {
		t.Errorf("expected more particles on a larger surface, got %d <= %d", f.Len(), small)
	}

	want, _ := Sample(img, 64, 64, f.Params().Gap)
	if len(want) != f.Len() {
		t.Fatalf("expected %d particles, got %d", len(want), f.Len())
	}
	for i, p := range f.Particles() {
		if p != want[i] {
			t.Fatalf("particle %d is stale: %+v, want %+v", i, p, want[i])
		}
	}
}

func TestResize_BeforeImage(t *testing.T) {
	f := New(DefaultParams())
	if err := f.Resize(100, 100); err != nil {
		t.Fatalf("resize before image should not fail: %v", err)
	}
	if f.Ready() || f.Len() != 0 {
		t.Error("expected empty, unready field")
	}
	w, h := f.Size()
	if w != 100 || h != 100 {
		t.Errorf("expected remembered size 100x100, got %vx%v", w, h)
	}
}

func TestSetParams_GapRebuilds(t *testing.T) {
	f := New(DefaultParams())
	if err := f.Rebuild(solid(40, 40, color.NRGBA{128, 128, 128, 255}), 32, 32); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}
	dense := f.Len()

	prm := f.Params()
	prm.Gap = 8
	if err := f.SetParams(prm); err != nil {
		t.Fatalf("set params failed: %v", err)
	}
	if f.Len() >= dense {
		t.Errorf("expected fewer particles at gap 8, got %d >= %d", f.Len(), dense)
	}
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		err    error
	}{
		{"defaults", func(p *Params) {}, nil},
		{"zero gap", func(p *Params) { p.Gap = 0 }, ErrInvalidGap},
		{"zero radius", func(p *Params) { p.Radius = 0 }, ErrParameterBounds},
		{"negative strength", func(p *Params) { p.Strength = -1 }, ErrParameterBounds},
		{"no friction", func(p *Params) { p.Friction = 1 }, ErrUnstable},
		{"zero return", func(p *Params) { p.ReturnForce = 0 }, ErrUnstable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			err := p.Validate()
			if tt.err == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.err != nil && !errors.Is(err, tt.err) {
				t.Errorf("expected %v, got %v", tt.err, err)
			}
		})
	}
}

func TestParams_SetParam(t *testing.T) {
	p, err := DefaultParams().SetParam("strength", 30)
	if err != nil {
		t.Fatalf("set strength failed: %v", err)
	}
	if p.Strength != 30 {
		t.Errorf("expected strength 30, got %v", p.Strength)
	}
	if _, err := p.SetParam("gravity", 1); !errors.Is(err, ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds for unknown name, got %v", err)
	}
	if got := p.GetParams()["strength"]; got != 30 {
		t.Errorf("expected strength 30 in param map, got %v", got)
	}
}

func TestParallelFor_CoversRange(t *testing.T) {
	n := 10007
	seen := make([]int, n)
	ParallelFor(n, 100, func(start, end int) {
		for i := start; i < end; i++ {
			seen[i]++
		}
	})
	for i, c := range seen {
		if c != 1 {
			t.Fatalf("index %d visited %d times", i, c)
		}
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		n, minChunk, parts int
		want               int
	}{
		{0, 10, 4, 0},
		{5, 10, 4, 1},
		{100, 10, 4, 4},
		{25, 10, 8, 2},
		{7, 0, 3, 3},
	}
	for _, tt := range tests {
		spans := split(tt.n, tt.minChunk, tt.parts)
		if len(spans) != tt.want {
			t.Errorf("split(%d, %d, %d): expected %d spans, got %d", tt.n, tt.minChunk, tt.parts, tt.want, len(spans))
			continue
		}
		next := 0
		for _, s := range spans {
			if s.lo != next || s.hi <= s.lo {
				t.Errorf("split(%d, %d, %d): bad span %+v", tt.n, tt.minChunk, tt.parts, s)
			}
			next = s.hi
		}
		if len(spans) > 0 && next != tt.n {
			t.Errorf("split(%d, %d, %d): spans end at %d", tt.n, tt.minChunk, tt.parts, next)
		}
	}
}
