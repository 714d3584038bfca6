package gui

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/dotportrait/internal/paint"
	"github.com/san-kum/dotportrait/internal/raster"
)

// Surface draws through raylib's immediate mode. It must only be used
// between BeginDrawing and EndDrawing on the window thread.
type Surface struct {
	Background color.NRGBA
	width      int
	height     int

	// the ambient gradient is rasterised once per size and reused
	glow    rl.Texture2D
	glowKey paint.RadialGradient
	hasGlow bool
}

func NewSurface(bg color.NRGBA) *Surface {
	return &Surface{Background: bg}
}

func (s *Surface) Resize(w, h int) {
	s.width, s.height = w, h
	s.dropGlow()
}

func (s *Surface) Clear() {
	rl.ClearBackground(rlColor(s.Background))
}

func (s *Surface) FillRect(x, y, w, h float64, c color.NRGBA) {
	rl.DrawRectangleRec(rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(w), Height: float32(h)}, rlColor(c))
}

func (s *Surface) FillCircle(cx, cy, r float64, c color.NRGBA) {
	rl.DrawCircleV(rl.NewVector2(float32(cx), float32(cy)), float32(r), rlColor(c))
}

func (s *Surface) FillRadialGradient(g paint.RadialGradient, x, y, w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	if !s.hasGlow || !sameGradient(s.glowKey, g) || s.glow.Width != int32(w) || s.glow.Height != int32(h) {
		s.dropGlow()
		img := raster.NewSurface(int(w), int(h), color.NRGBA{})
		shifted := g
		shifted.X0, shifted.Y0 = g.X0-x, g.Y0-y
		shifted.X1, shifted.Y1 = g.X1-x, g.Y1-y
		img.FillRadialGradient(shifted, 0, 0, w, h)
		rimg := rl.NewImageFromImage(img.Image())
		s.glow = rl.LoadTextureFromImage(rimg)
		rl.UnloadImage(rimg)
		s.glowKey = g
		s.hasGlow = true
	}
	rl.DrawTexture(s.glow, int32(x), int32(y), rl.White)
}

// Unload frees GPU resources. Call before closing the window.
func (s *Surface) Unload() { s.dropGlow() }

func (s *Surface) dropGlow() {
	if s.hasGlow {
		rl.UnloadTexture(s.glow)
		s.hasGlow = false
	}
}

func sameGradient(a, b paint.RadialGradient) bool {
	if a.X0 != b.X0 || a.Y0 != b.Y0 || a.R0 != b.R0 || a.X1 != b.X1 || a.Y1 != b.Y1 || a.R1 != b.R1 {
		return false
	}
	if len(a.Stops) != len(b.Stops) {
		return false
	}
	for i := range a.Stops {
		if a.Stops[i] != b.Stops[i] {
			return false
		}
	}
	return true
}

func rlColor(c color.NRGBA) rl.Color {
	return rl.NewColor(c.R, c.G, c.B, c.A)
}
