package source

import (
	"image"
	"image/color"
	"math"
)

// Silhouette draws a lit head-and-shoulders bust on a transparent
// background. Brightness falls off from the upper left so the sampled
// field has both particle tiers.
func Silhouette(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	fw, fh := float64(w), float64(h)

	headX, headY := fw*0.5, fh*0.36
	headRX, headRY := fw*0.22, fh*0.22
	neckTop, neckHalf := fh*0.52, fw*0.08
	shoulderY := fh*0.68
	lightX, lightY := fw*0.3, fh*0.2
	reach := math.Hypot(fw, fh)

	for y := 0; y < h; y++ {
		py := float64(y) + 0.5
		for x := 0; x < w; x++ {
			px := float64(x) + 0.5

			hx, hy := (px-headX)/headRX, (py-headY)/headRY
			inside := hx*hx+hy*hy <= 1
			if !inside && py >= neckTop && py < shoulderY && math.Abs(px-headX) <= neckHalf {
				inside = true
			}
			if !inside && py >= shoulderY {
				// shoulders widen with depth
				half := fw*0.18 + (py-shoulderY)*1.1
				inside = math.Abs(px-headX) <= half
			}
			if !inside {
				continue
			}

			d := math.Hypot(px-lightX, py-lightY) / reach
			v := 0.95 - d*1.1
			if v < 0.25 {
				v = 0.25
			}
			g := uint8(v * 255)
			img.SetNRGBA(x, y, color.NRGBA{g, g, g, 255})
		}
	}
	return img
}
