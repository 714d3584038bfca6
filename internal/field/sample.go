package field

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// Layout is where the scaled image lands on the surface.
type Layout struct {
	Width, Height    int
	OffsetX, OffsetY float64
}

// Fit scales a srcW x srcH image to fit a w x h surface, magnifies it by
// [Magnify] and centres it. The result may overflow the surface.
func Fit(srcW, srcH int, w, h float64) Layout {
	if srcW <= 0 || srcH <= 0 || w <= 0 || h <= 0 {
		return Layout{}
	}
	scale := math.Min(w/float64(srcW), h/float64(srcH)) * Magnify
	iw := int(math.Floor(float64(srcW) * scale))
	ih := int(math.Floor(float64(srcH) * scale))
	return Layout{
		Width:   iw,
		Height:  ih,
		OffsetX: (w - float64(iw)) / 2,
		OffsetY: (h - float64(ih)) / 2,
	}
}

// Sample runs the sampling pass for img on a w x h surface with the given
// stride. A surface with no area yields no particles.
func Sample(img image.Image, w, h float64, gap int) ([]Particle, error) {
	if img == nil {
		return nil, ErrNoImage
	}
	if gap < 1 {
		return nil, ErrInvalidGap
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, ErrEmptyImage
	}

	layout := Fit(b.Dx(), b.Dy(), w, h)
	if layout.Width <= 0 || layout.Height <= 0 {
		return []Particle{}, nil
	}

	buf := image.NewNRGBA(image.Rect(0, 0, layout.Width, layout.Height))
	draw.BiLinear.Scale(buf, buf.Bounds(), img, b, draw.Src, nil)

	cols := (layout.Width + gap - 1) / gap
	rows := (layout.Height + gap - 1) / gap
	particles := make([]Particle, 0, cols*rows/2)

	for y := 0; y < layout.Height; y += gap {
		row := buf.Pix[y*buf.Stride:]
		for x := 0; x < layout.Width; x += gap {
			px := row[x*4 : x*4+4]
			brightness := Luma(px[0], px[1], px[2])
			if !Keep(px[3], brightness) {
				continue
			}
			particles = append(particles, newParticle(
				float64(x)+layout.OffsetX,
				float64(y)+layout.OffsetY,
				brightness,
			))
		}
	}

	return particles, nil
}
