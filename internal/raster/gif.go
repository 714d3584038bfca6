package raster

import (
	"errors"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
)

var ErrNoFrames = errors.New("raster: no frames recorded")

// Recorder accumulates frames for an animated GIF.
type Recorder struct {
	delay  int
	frames []*image.Paletted
}

// NewRecorder returns a recorder that shows each frame for delay
// hundredths of a second.
func NewRecorder(delay int) *Recorder {
	if delay < 1 {
		delay = 2
	}
	return &Recorder{delay: delay}
}

// Capture dithers img to the Plan 9 palette and appends it.
func (r *Recorder) Capture(img image.Image) {
	b := img.Bounds()
	frame := image.NewPaletted(b, palette.Plan9)
	draw.FloydSteinberg.Draw(frame, b, img, b.Min)
	r.frames = append(r.frames, frame)
}

func (r *Recorder) Len() int { return len(r.frames) }

// Encode writes a looping animation of every captured frame. Frames may
// differ in size when the surface was resized; the logical screen covers
// all of them.
func (r *Recorder) Encode(w io.Writer) error {
	if len(r.frames) == 0 {
		return ErrNoFrames
	}
	var screen image.Rectangle
	anim := gif.GIF{LoopCount: 0}
	for _, f := range r.frames {
		screen = screen.Union(f.Bounds())
		anim.Image = append(anim.Image, f)
		anim.Delay = append(anim.Delay, r.delay)
		anim.Disposal = append(anim.Disposal, gif.DisposalBackground)
	}
	anim.Config = image.Config{
		ColorModel: color.Palette(palette.Plan9),
		Width:      screen.Max.X,
		Height:     screen.Max.Y,
	}
	return gif.EncodeAll(w, &anim)
}
