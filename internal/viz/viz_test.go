package viz

import (
	"image"
	"image/color"
	"io"
	"log/slog"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/dotportrait/internal/portrait"
)

func TestCanvas_Set(t *testing.T) {
	c := NewCanvas(2, 1, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(4, 0)

	if c.Grid[0][0] != 0x2801 {
		t.Errorf("expected dot 1, got %U", c.Grid[0][0])
	}
	if c.Grid[0][1] != 0x2880 {
		t.Errorf("expected dot 8, got %U", c.Grid[0][1])
	}
	if !c.IsSet(3, 3) || c.IsSet(1, 1) {
		t.Error("IsSet disagrees with Set")
	}
	c.Clear()
	if c.String() != "\u2800\u2800" {
		t.Errorf("expected blank row, got %q", c.String())
	}
}

func TestCanvas_Resize(t *testing.T) {
	c := NewCanvas(1, 1, 2)
	c.Resize(40, 48)
	if c.Width != 10 || c.Height != 6 {
		t.Errorf("expected 10x6 cells, got %dx%d", c.Width, c.Height)
	}
	if w, h := c.SurfaceSize(); w != 40 || h != 48 {
		t.Errorf("expected 40x48 surface, got %dx%d", w, h)
	}
}

func TestCanvas_FillCircle(t *testing.T) {
	c := NewCanvas(4, 2, 2)
	c.FillCircle(5, 5, 1.65, color.NRGBA{A: 255})
	if !c.IsSet(2, 2) {
		t.Error("expected opaque dot at its sub-pixel")
	}

	c.Clear()
	c.FillCircle(5, 5, 1.65, color.NRGBA{A: 10})
	if c.IsSet(2, 2) {
		t.Error("expected faint dot to be dropped")
	}

	c.Clear()
	c.FillCircle(8, 8, 6, color.NRGBA{A: 255})
	n := 0
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if c.IsSet(x, y) {
				n++
			}
		}
	}
	if n < 9 {
		t.Errorf("expected a filled disc, got %d sub-pixels", n)
	}
}

func TestCanvas_FaintFillsIgnored(t *testing.T) {
	c := NewCanvas(4, 2, 1)
	c.FillRect(0, 0, 8, 1, color.NRGBA{A: 10})
	if strings.Trim(c.String(), "\u2800\n") != "" {
		t.Error("expected scanline-strength rect to leave no trace")
	}
	c.FillRect(0, 0, 8, 1, color.NRGBA{A: 255})
	if !c.IsSet(7, 0) {
		t.Error("expected solid rect to set sub-pixels")
	}
}

func TestCanvas_Ring(t *testing.T) {
	c := NewCanvas(10, 5, 1)
	c.Ring(10, 10, 4)
	if !c.IsSet(14, 10) || !c.IsSet(6, 10) || c.IsSet(10, 10) {
		t.Error("expected an outline without a centre")
	}
}

func TestMarquee(t *testing.T) {
	m := NewMarquee("ab")
	if got := m.Frame(6); got != "AB • A" {
		t.Errorf("unexpected frame %q", got)
	}
	m.Advance()
	if got := m.Frame(3); got != "B •" {
		t.Errorf("unexpected frame after advance %q", got)
	}
	if m.Frame(0) != "" {
		t.Error("expected empty frame")
	}
}

func TestThemes(t *testing.T) {
	if _, err := GetTheme("violet"); err != nil {
		t.Error(err)
	}
	if _, err := GetTheme("nope"); err == nil {
		t.Error("expected error for unknown theme")
	}
	if NextTheme(Themes[len(Themes)-1].Name).Name != Themes[0].Name {
		t.Error("expected themes to wrap")
	}
}

func gray(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 128, 128, 128, 255
	}
	return img
}

func newModel(t *testing.T) (Model, *portrait.Renderer, *Canvas) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	canvas := NewCanvas(1, 1, CellScale)
	r, err := portrait.New(canvas, portrait.DefaultOptions(), logger)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.SetImage(gray(100, 100)); err != nil {
		t.Fatal(err)
	}
	return NewModel(r, canvas, Options{Title: "test"}, logger), r, canvas
}

func TestModel_ResizeAndFrames(t *testing.T) {
	m, r, canvas := newModel(t)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 72, Height: 22})
	m = next.(Model)
	if canvas.Width != 40 || canvas.Height != 20 {
		t.Fatalf("expected 40x20 canvas, got %dx%d", canvas.Width, canvas.Height)
	}
	if w, h := r.Size(); w != 160 || h != 160 {
		t.Errorf("expected 160x160 surface, got %dx%d", w, h)
	}
	if r.Len() == 0 {
		t.Fatal("expected particles after resize")
	}

	r.Tick()
	next, cmd := m.Update(TickMsg{})
	m = next.(Model)
	if cmd == nil {
		t.Error("expected the tick to reschedule")
	}
	if m.stats.Particles != r.Len() || len(m.history) != 1 {
		t.Errorf("expected the frame to be picked up, got %+v", m.stats)
	}
	if strings.Trim(m.view, "\u2800\n") == "" {
		t.Error("expected dots in the view")
	}
	if !strings.Contains(m.View(), "Particles") {
		t.Error("expected stats panel in the view")
	}
}

func TestModel_Mouse(t *testing.T) {
	m, r, _ := newModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 72, Height: 22})
	m = next.(Model)

	m.Update(tea.MouseMsg{X: 3, Y: 2, Action: tea.MouseActionMotion})
	p := r.Pointer()
	if p.X != 14 || p.Y != 12 {
		t.Errorf("expected pointer at (14,12), got (%v,%v)", p.X, p.Y)
	}

	m.Update(tea.MouseMsg{X: 60, Y: 2, Action: tea.MouseActionMotion})
	if !r.Pointer().IsAway() {
		t.Error("expected pointer to leave over the stats panel")
	}
}

func TestModel_Keys(t *testing.T) {
	m, r, _ := newModel(t)
	press := func(s string) {
		var msg tea.KeyMsg
		if s == " " {
			msg = tea.KeyMsg{Type: tea.KeySpace}
		} else {
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}

	press(" ")
	if !r.Paused() {
		t.Error("expected space to pause")
	}
	press("t")
	if m.theme.Name != "retro" || r.Style().Name != "retro" {
		t.Errorf("expected retro theme, got %s/%s", m.theme.Name, r.Style().Name)
	}
	press("+")
	if r.Params().Gap != 5 {
		t.Errorf("expected stride 5, got %d", r.Params().Gap)
	}
	press("-")
	press("-")
	press("-")
	press("-")
	if r.Params().Gap != 1 {
		t.Errorf("expected stride to stop at 1, got %d", r.Params().Gap)
	}
	press("-")
	if r.Params().Gap != 1 || m.status == "" {
		t.Error("expected invalid stride to be rejected with a status")
	}
	press("a")
	if m.status != "audio disabled" {
		t.Errorf("unexpected status %q", m.status)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
