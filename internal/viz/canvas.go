package viz

import (
	"image/color"
	"math"
	"strings"

	"github.com/san-kum/dotportrait/internal/paint"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// ordered dither thresholds over one braille cell
var bayer = [4][2]float64{
	{0.125, 0.625},
	{0.875, 0.375},
	{0.25, 0.75},
	{1.0, 0.5},
}

// Canvas is a paint.Surface made of braille cells. Surface coordinates
// are divided by Scale to reach sub-pixels, so a Width x Height canvas
// covers Width*2*Scale x Height*4*Scale surface units. Coverage is one
// bit per sub-pixel: fills are dithered by alpha and everything fainter
// than MinAlpha is dropped.
type Canvas struct {
	Width, Height int
	Scale         float64
	MinAlpha      uint8
	Grid          [][]rune
}

func NewCanvas(w, h int, scale float64) *Canvas {
	if scale <= 0 {
		scale = 1
	}
	c := &Canvas{Scale: scale, MinAlpha: 32}
	c.resizeCells(w, h)
	return c
}

// SurfaceSize is the drawable area in surface units.
func (c *Canvas) SurfaceSize() (int, int) {
	return int(float64(c.Width*2) * c.Scale), int(float64(c.Height*4) * c.Scale)
}

// Resize takes a size in surface units and grows or shrinks the cell
// grid to cover it.
func (c *Canvas) Resize(w, h int) {
	cols := int(math.Ceil(float64(w) / c.Scale / 2))
	rows := int(math.Ceil(float64(h) / c.Scale / 4))
	c.resizeCells(cols, rows)
}

func (c *Canvas) resizeCells(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	c.Width, c.Height = w, h
	c.Grid = make([][]rune, h)
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
}

// Set sets a pixel at (x, y) where x,y are in "sub-pixel" coordinates.
// The canvas size in sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
}

func (c *Canvas) FillRect(x, y, w, h float64, col color.NRGBA) {
	if col.A < c.MinAlpha {
		return
	}
	x0, y0 := c.sub(x), c.sub(y)
	x1, y1 := c.sub(x+w), c.sub(y+h)
	for sy := y0; sy < y1; sy++ {
		for sx := x0; sx < x1; sx++ {
			c.dither(sx, sy, col.A)
		}
	}
}

func (c *Canvas) FillCircle(cx, cy, r float64, col color.NRGBA) {
	if col.A < c.MinAlpha {
		return
	}
	sx, sy := c.sub(cx), c.sub(cy)
	sr := r / c.Scale
	if sr < 1 {
		c.dither(sx, sy, col.A)
		return
	}
	ir := int(math.Ceil(sr))
	for dy := -ir; dy <= ir; dy++ {
		for dx := -ir; dx <= ir; dx++ {
			if float64(dx*dx+dy*dy) <= sr*sr {
				c.dither(sx+dx, sy+dy, col.A)
			}
		}
	}
}

// FillRadialGradient is a no-op: a one-bit cell cannot show a glow.
func (c *Canvas) FillRadialGradient(paint.RadialGradient, float64, float64, float64, float64) {}

// Ring outlines a circle of radius r surface units centred on (cx, cy).
func (c *Canvas) Ring(cx, cy, r float64) {
	sx, sy := float64(c.sub(cx)), float64(c.sub(cy))
	sr := r / c.Scale
	steps := 8 * int(math.Ceil(math.Max(1, 2*math.Pi*sr/8)))
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		c.Set(int(math.Round(sx+sr*math.Cos(a))), int(math.Round(sy+sr*math.Sin(a))))
	}
}

func (c *Canvas) dither(x, y int, alpha uint8) {
	if x < 0 || y < 0 {
		return
	}
	if float64(alpha)/255 >= bayer[y%4][x%2] {
		c.Set(x, y)
	}
}

func (c *Canvas) sub(v float64) int {
	return int(math.Floor(v / c.Scale))
}

func (c *Canvas) String() string {
	var b strings.Builder
	for i, row := range c.Grid {
		b.WriteString(string(row))
		if i < len(c.Grid)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
