// Package raster draws frames into an in-memory RGBA image for PNG and
// GIF output.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/tfriedel6/canvas"
	"github.com/tfriedel6/canvas/backend/softwarebackend"

	"github.com/san-kum/dotportrait/internal/paint"
)

// Surface is a paint.Surface drawn by a software canvas into an
// *image.RGBA.
type Surface struct {
	backend    *softwarebackend.SoftwareBackend
	cv         *canvas.Canvas
	w, h       int
	background color.NRGBA
}

func NewSurface(w, h int, background color.NRGBA) *Surface {
	s := &Surface{background: background}
	s.Resize(w, h)
	return s
}

// Resize replaces the backing image. Contents are discarded.
func (s *Surface) Resize(w, h int) {
	s.w, s.h = max(w, 0), max(h, 0)
	if s.w == 0 || s.h == 0 {
		s.backend, s.cv = nil, nil
		return
	}
	s.backend = softwarebackend.New(s.w, s.h)
	s.cv = canvas.New(s.backend)
	s.Clear()
}

// Image is the current frame. A zero-area surface yields an empty image.
func (s *Surface) Image() *image.RGBA {
	if s.backend == nil {
		return image.NewRGBA(image.Rect(0, 0, s.w, s.h))
	}
	return s.backend.Image
}

func (s *Surface) Bounds() (int, int) { return s.w, s.h }

func (s *Surface) Clear() {
	if s.cv == nil {
		return
	}
	s.cv.SetGlobalAlpha(1)
	s.cv.ClearRect(0, 0, float64(s.w), float64(s.h))
	if s.background.A > 0 {
		s.setFill(s.background)
		s.cv.FillRect(0, 0, float64(s.w), float64(s.h))
	}
}

func (s *Surface) FillRect(x, y, w, h float64, c color.NRGBA) {
	if s.cv == nil || c.A == 0 || w <= 0 || h <= 0 {
		return
	}
	s.setFill(c)
	s.cv.FillRect(x, y, w, h)
}

func (s *Surface) FillCircle(cx, cy, r float64, c color.NRGBA) {
	if s.cv == nil || c.A == 0 || r <= 0 {
		return
	}
	s.setFill(c)
	s.cv.BeginPath()
	s.cv.Arc(cx, cy, r, 0, math.Pi*2, false)
	s.cv.Fill()
}

func (s *Surface) FillRadialGradient(g paint.RadialGradient, x, y, w, h float64) {
	if s.cv == nil || len(g.Stops) == 0 || w <= 0 || h <= 0 {
		return
	}
	grad := s.cv.CreateRadialGradient(g.X0, g.Y0, g.R0, g.X1, g.Y1, g.R1)
	for _, st := range g.Stops {
		grad.AddColorStop(st.Offset, hex(st.Color, st.Color.A))
	}
	s.cv.SetGlobalAlpha(1)
	s.cv.SetFillStyle(grad)
	s.cv.FillRect(x, y, w, h)
}

// EncodePNG writes the current frame.
func (s *Surface) EncodePNG(w io.Writer) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	return enc.Encode(w, s.Image())
}

// setFill uses the opaque colour as fill style and its alpha as the
// global alpha.
func (s *Surface) setFill(c color.NRGBA) {
	s.cv.SetFillStyle(hex(c, 0xff))
	s.cv.SetGlobalAlpha(float64(c.A) / 255)
}

func hex(c color.NRGBA, a uint8) string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, a)
}
