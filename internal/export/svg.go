// Package export writes portrait frames as standalone SVG documents.
package export

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	"github.com/san-kum/dotportrait/internal/paint"
)

// SVG records drawing calls as SVG elements. Each Clear starts a new
// document body; gradients get unique ids within the document.
type SVG struct {
	Width, Height int
	Background    color.NRGBA

	defs strings.Builder
	body strings.Builder
	grad int
}

func NewSVG(w, h int, background color.NRGBA) *SVG {
	return &SVG{Width: w, Height: h, Background: background}
}

func (s *SVG) Resize(w, h int) {
	s.Width, s.Height = w, h
}

func (s *SVG) Clear() {
	s.defs.Reset()
	s.body.Reset()
	s.grad = 0
}

func (s *SVG) FillRect(x, y, w, h float64, c color.NRGBA) {
	if c.A == 0 || w <= 0 || h <= 0 {
		return
	}
	fmt.Fprintf(&s.body, `<rect x="%s" y="%s" width="%s" height="%s" %s/>`+"\n",
		num(x), num(y), num(w), num(h), fill(c))
}

func (s *SVG) FillCircle(cx, cy, r float64, c color.NRGBA) {
	if c.A == 0 || r <= 0 {
		return
	}
	fmt.Fprintf(&s.body, `<circle cx="%s" cy="%s" r="%s" %s/>`+"\n",
		num(cx), num(cy), num(r), fill(c))
}

func (s *SVG) FillRadialGradient(g paint.RadialGradient, x, y, w, h float64) {
	if len(g.Stops) == 0 || w <= 0 || h <= 0 {
		return
	}
	s.grad++
	id := fmt.Sprintf("g%d", s.grad)

	fmt.Fprintf(&s.defs, `<radialGradient id="%s" gradientUnits="userSpaceOnUse" fx="%s" fy="%s" fr="%s" cx="%s" cy="%s" r="%s">`+"\n",
		id, num(g.X0), num(g.Y0), num(g.R0), num(g.X1), num(g.Y1), num(g.R1))
	for _, st := range g.Stops {
		fmt.Fprintf(&s.defs, `<stop offset="%s" stop-color="%s" stop-opacity="%s"/>`+"\n",
			num(st.Offset), hex(st.Color), num(float64(st.Color.A)/255))
	}
	s.defs.WriteString("</radialGradient>\n")

	fmt.Fprintf(&s.body, `<rect x="%s" y="%s" width="%s" height="%s" fill="url(#%s)"/>`+"\n",
		num(x), num(y), num(w), num(h), id)
}

// String returns the current document.
func (s *SVG) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
`, s.Width, s.Height, s.Width, s.Height)
	if s.defs.Len() > 0 {
		sb.WriteString("<defs>\n")
		sb.WriteString(s.defs.String())
		sb.WriteString("</defs>\n")
	}
	fmt.Fprintf(&sb, `<rect width="100%%" height="100%%" fill="%s"/>`+"\n", hex(s.Background))
	sb.WriteString(s.body.String())
	sb.WriteString("</svg>\n")
	return sb.String()
}

func (s *SVG) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, s.String())
	return int64(n), err
}

func fill(c color.NRGBA) string {
	if c.A == 0xff {
		return fmt.Sprintf(`fill="%s"`, hex(c))
	}
	return fmt.Sprintf(`fill="%s" fill-opacity="%s"`, hex(c), num(float64(c.A)/255))
}

func hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// num trims trailing zeros so documents stay small.
func num(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
