// Package portrait owns the particle field, the pointer and the frame
// loop, and paints each frame onto a host surface.
package portrait

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/san-kum/dotportrait/internal/field"
	"github.com/san-kum/dotportrait/internal/paint"
	"github.com/san-kum/dotportrait/internal/source"
)

var (
	ErrClosed  = errors.New("portrait: renderer closed")
	ErrRunning = errors.New("portrait: frame loop already running")
)

const DefaultFPS = 60

type Options struct {
	Params field.Params
	Style  paint.Style
	FPS    int
}

func DefaultOptions() Options {
	return Options{
		Params: field.DefaultParams(),
		Style:  paint.StyleViolet,
		FPS:    DefaultFPS,
	}
}

// Observer is notified after every drawn frame. It runs with the renderer
// locked and must not call back into it; particles are only valid for the
// duration of the call.
type Observer interface {
	OnFrame(frame int, particles []field.Particle)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(frame int, particles []field.Particle)

func (f ObserverFunc) OnFrame(frame int, particles []field.Particle) { f(frame, particles) }

// Renderer serialises image loads, pointer events, resizes and frame
// ticks that may arrive from different goroutines.
type Renderer struct {
	mu        sync.Mutex
	field     *field.Field
	surface   paint.Surface
	style     paint.Style
	pointer   field.Pointer
	width     float64
	height    float64
	fps       int
	paused    bool
	frame     int
	loadGen   int
	closed    bool
	stop      context.CancelFunc
	observers []Observer
	log       *slog.Logger
}

func New(surface paint.Surface, opts Options, logger *slog.Logger) (*Renderer, error) {
	if err := opts.Params.Validate(); err != nil {
		return nil, err
	}
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		field:   field.New(opts.Params),
		surface: surface,
		style:   opts.Style,
		pointer: field.Away(),
		fps:     opts.FPS,
		log:     logger.With("component", "portrait"),
	}, nil
}

func (r *Renderer) AddObserver(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, o)
}

// Load fetches ref in the background and installs it when it arrives.
// A failed load is logged and leaves the surface blank. Only the most
// recent Load may install its image. The returned channel closes once
// the load has settled either way.
func (r *Renderer) Load(ctx context.Context, l source.Loader, ref string) <-chan struct{} {
	r.mu.Lock()
	r.loadGen++
	gen := r.loadGen
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		img, err := l.Load(ctx, ref)
		if err != nil {
			r.log.Debug("image load failed", "ref", ref, "err", err)
			return
		}

		r.mu.Lock()
		defer r.mu.Unlock()
		if r.closed || gen != r.loadGen {
			r.log.Debug("discarding stale image", "ref", ref)
			return
		}
		if err := r.install(img); err != nil {
			r.log.Debug("image rejected", "ref", ref, "err", err)
			return
		}
		r.log.Info("image loaded", "ref", ref, "particles", r.field.Len())
	}()
	return done
}

// SetImage installs img immediately and builds particles for the current
// surface size.
func (r *Renderer) SetImage(img image.Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	r.loadGen++
	return r.install(img)
}

func (r *Renderer) install(img image.Image) error {
	return r.field.Rebuild(img, r.width, r.height)
}

// Resize sizes the surface to its container and rebuilds the particle set
// once an image is present.
func (r *Renderer) Resize(w, h int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if rs, ok := r.surface.(paint.Resizer); ok {
		rs.Resize(w, h)
	}
	r.width, r.height = float64(w), float64(h)
	if err := r.field.Resize(r.width, r.height); err != nil {
		r.log.Warn("rebuild failed", "width", w, "height", h, "err", err)
		return err
	}
	r.log.Debug("resized", "width", w, "height", h, "particles", r.field.Len())
	return nil
}

func (r *Renderer) PointerMove(x, y float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.pointer = field.At(x, y)
}

func (r *Renderer) PointerLeave() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.pointer = field.Away()
}

func (r *Renderer) Pointer() field.Pointer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pointer
}

// Tick advances and draws one frame. It reports whether a frame was
// drawn; nothing happens before an image is ready or after Close.
func (r *Renderer) Tick() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || !r.field.Ready() {
		return false
	}
	if !r.paused {
		r.field.Step(r.pointer)
	}
	particles := r.field.Particles()
	paint.Frame(r.surface, particles, r.width, r.height, r.style)
	r.frame++
	for _, o := range r.observers {
		o.OnFrame(r.frame, particles)
	}
	return true
}

// Run ticks at the configured frame rate until ctx is done or Close is
// called. Close makes Run return nil.
func (r *Renderer) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	if r.stop != nil {
		r.mu.Unlock()
		return ErrRunning
	}
	loopCtx, cancel := context.WithCancel(ctx)
	r.stop = cancel
	interval := time.Second / time.Duration(r.fps)
	r.mu.Unlock()

	defer func() {
		cancel()
		r.mu.Lock()
		r.stop = nil
		r.mu.Unlock()
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.log.Debug("frame loop started", "fps", r.fps)
	for {
		select {
		case <-loopCtx.Done():
			r.log.Debug("frame loop stopped", "frames", r.Frames())
			return ctx.Err()
		case <-ticker.C:
			r.Tick()
		}
	}
}

// Close stops the frame loop and ignores every later event. It is safe to
// call more than once.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.pointer = field.Away()
	if r.stop != nil {
		r.stop()
	}
	r.observers = nil
}

func (r *Renderer) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Snapshot copies the current particle set.
func (r *Renderer) Snapshot() []field.Particle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.field.Snapshot()
}

// Reset puts every particle back at rest on its origin.
func (r *Renderer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.field.Reset()
}

func (r *Renderer) SetPaused(p bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = p
}

func (r *Renderer) Paused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paused
}

func (r *Renderer) Params() field.Params {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.field.Params()
}

// SetParams swaps physics constants; a new gap rebuilds the particles.
func (r *Renderer) SetParams(p field.Params) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.field.SetParams(p)
}

func (r *Renderer) Style() paint.Style {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.style
}

func (r *Renderer) SetStyle(st paint.Style) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.style = st
}

func (r *Renderer) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.field.Ready()
}

func (r *Renderer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.field.Len()
}

func (r *Renderer) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frame
}

func (r *Renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int(r.width), int(r.height)
}
