package gui

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/dotportrait/internal/audio"
	"github.com/san-kum/dotportrait/internal/cursor"
	"github.com/san-kum/dotportrait/internal/field"
	"github.com/san-kum/dotportrait/internal/paint"
	"github.com/san-kum/dotportrait/internal/portrait"
	"github.com/san-kum/dotportrait/internal/source"
	"github.com/san-kum/dotportrait/internal/telemetry"
)

// HUD colours
var (
	ColText    = rl.NewColor(200, 190, 210, 255)
	ColTextDim = rl.NewColor(90, 80, 100, 255)
	ColPanel   = rl.NewColor(12, 8, 16, 220)
)

const (
	maxHistory = 240
	panelWidth = 280
	fontPath   = "/usr/share/fonts/liberation/LiberationMono-Regular.ttf"
)

type Options struct {
	Width, Height int
	Title         string
	Image         string
	Loader        source.Loader
	Renderer      portrait.Options
	Audio         *audio.Context
}

type App struct {
	R       *portrait.Renderer
	Surface *Surface
	Cursor  *cursor.Cursor
	Audio   *audio.Context
	Font    rl.Font

	Title     string
	ShowPanel bool
	History   []float64
	Last      telemetry.FrameStats
	status    string
	log       *slog.Logger
}

func initWindow(w, h int, title string, fps int) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(w), int32(h), title)
	rl.SetTargetFPS(int32(fps))
	rl.SetExitKey(0)
}

func loadFont() rl.Font {
	if _, err := os.Stat(fontPath); err != nil {
		return rl.GetFontDefault()
	}
	font := rl.LoadFontEx(fontPath, 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

// Run opens the window, loads the image in the background and blocks until
// the window closes or ctx ends.
func Run(ctx context.Context, opts Options, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Loader == nil {
		opts.Loader = source.NewFileLoader()
	}
	if opts.Renderer.FPS <= 0 {
		opts.Renderer.FPS = portrait.DefaultFPS
	}

	initWindow(opts.Width, opts.Height, opts.Title, opts.Renderer.FPS)
	defer rl.CloseWindow()

	surf := NewSurface(opts.Renderer.Style.Background)
	r, err := portrait.New(surf, opts.Renderer, logger)
	if err != nil {
		return err
	}
	app := NewApp(r, surf, opts, logger)
	defer app.Close()

	app.R.Resize(rl.GetScreenWidth(), rl.GetScreenHeight())
	app.R.Load(ctx, opts.Loader, opts.Image)
	logger.Info("window open", "width", opts.Width, "height", opts.Height, "image", opts.Image)

	for !rl.WindowShouldClose() && ctx.Err() == nil {
		if app.Update() {
			break
		}
		app.Draw()
	}
	return nil
}

func NewApp(r *portrait.Renderer, surf *Surface, opts Options, logger *slog.Logger) *App {
	a := &App{
		R:         r,
		Surface:   surf,
		Cursor:    cursor.New(float64(opts.Width), float64(opts.Height)),
		Audio:     opts.Audio,
		Font:      loadFont(),
		Title:     opts.Title,
		ShowPanel: true,
		History:   make([]float64, 0, maxHistory),
		log:       logger.With("component", "gui"),
	}
	r.AddObserver(portrait.ObserverFunc(a.observe))
	return a
}

func (a *App) observe(frame int, particles []field.Particle) {
	a.Last = telemetry.Measure(frame, particles)
	a.History = append(a.History, a.Last.MeanDisplacement)
	if len(a.History) > maxHistory {
		a.History = a.History[1:]
	}
	if a.Audio != nil {
		a.Audio.SetEnergy(a.Last.KineticEnergy)
	}
}

// Update handles window input. It reports true when the user quits.
func (a *App) Update() bool {
	if rl.IsKeyPressed(rl.KeyQ) || rl.IsKeyPressed(rl.KeyEscape) {
		return true
	}

	if rl.IsWindowResized() {
		w, h := rl.GetScreenWidth(), rl.GetScreenHeight()
		if err := a.R.Resize(w, h); err != nil {
			a.status = err.Error()
		}
	}

	if a.gesture() && a.Audio != nil && !a.Audio.Unlocked() {
		if err := a.Audio.Unlock(); err != nil {
			a.log.Warn("audio unlock failed", "err", err)
		}
	}

	if rl.IsCursorOnScreen() {
		rl.HideCursor()
		m := rl.GetMousePosition()
		x, y := float64(m.X), float64(m.Y)
		a.Cursor.Move(x, y)
		if a.ShowPanel && x < panelWidth {
			a.R.PointerLeave()
		} else {
			a.R.PointerMove(x, y)
		}
	} else {
		rl.ShowCursor()
		a.Cursor.Hide()
		a.R.PointerLeave()
	}
	a.Cursor.Step()

	switch {
	case rl.IsKeyPressed(rl.KeySpace):
		a.R.SetPaused(!a.R.Paused())
	case rl.IsKeyPressed(rl.KeyR):
		a.R.Reset()
	case rl.IsKeyPressed(rl.KeyT):
		a.cycleStyle()
	case rl.IsKeyPressed(rl.KeyTab):
		a.ShowPanel = !a.ShowPanel
	case rl.IsKeyPressed(rl.KeyM):
		a.toggleAudio()
	}
	return false
}

func (a *App) gesture() bool {
	return rl.GetKeyPressed() != 0 ||
		rl.IsMouseButtonPressed(rl.MouseLeftButton) ||
		rl.IsMouseButtonPressed(rl.MouseRightButton)
}

func (a *App) cycleStyle() {
	names := paint.StyleNames()
	cur := a.R.Style().Name
	next := names[0]
	for i, n := range names {
		if n == cur {
			next = names[(i+1)%len(names)]
			break
		}
	}
	st := paint.Styles[next]
	a.R.SetStyle(st)
	a.Surface.Background = st.Background
	a.status = "style " + next
}

func (a *App) toggleAudio() {
	if a.Audio == nil {
		a.status = "audio disabled"
		return
	}
	if err := a.Audio.Toggle(); err != nil {
		a.status = "audio: " + err.Error()
		return
	}
	a.status = "audio " + onOff(a.Audio.IsPlaying())
}

func (a *App) Draw() {
	rl.BeginDrawing()
	if !a.R.Tick() {
		a.Surface.Clear()
		a.drawText("loading", rl.GetScreenWidth()/2-40, rl.GetScreenHeight()/2, 20, ColTextDim)
	}
	a.drawCursor()
	a.DrawHUD()
	if a.ShowPanel {
		a.drawPanel()
	}
	rl.EndDrawing()
}

func (a *App) drawCursor() {
	if !a.Cursor.Visible {
		return
	}
	accent := rlColor(a.R.Style().Accent)
	rl.DrawCircleV(rl.NewVector2(float32(a.Cursor.DotX), float32(a.Cursor.DotY)), cursor.DotRadius, accent)
	rl.DrawCircleLines(int32(a.Cursor.RingX), int32(a.Cursor.RingY), cursor.RingRadius, rl.ColorAlpha(accent, 0.6))
}

func (a *App) DrawHUD() {
	w, h := rl.GetScreenWidth(), rl.GetScreenHeight()
	a.drawText(fmt.Sprintf("%d FPS", rl.GetFPS()), w-90, h-24, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d dots  %d disturbed", a.Last.Particles, a.Last.Disturbed), w-260, 16, 14, ColText)
	if a.R.Paused() {
		a.drawText("PAUSED", w-90, 36, 14, ColText)
	}
	a.drawSparkline(float32(w-260), float32(h-80), 240, 40)
	if a.status != "" {
		a.drawText(a.status, w-260, h-24, 14, ColText)
	}
}

func (a *App) drawSparkline(x, y, w, h float32) {
	if len(a.History) < 2 {
		return
	}
	hi := 1.0
	for _, v := range a.History {
		hi = max(hi, v)
	}
	points := make([]rl.Vector2, len(a.History))
	step := w / float32(maxHistory-1)
	for i, v := range a.History {
		points[i] = rl.NewVector2(x+float32(i)*step, y+h-float32(v/hi)*h)
	}
	rl.DrawLineStrip(points, rlColor(a.R.Style().Accent))
}

// drawPanel shows sliders for the physics constants. Changes apply on the
// next frame; a new stride rebuilds the dots.
func (a *App) drawPanel() {
	h := float32(rl.GetScreenHeight())
	rl.DrawRectangleRec(rl.Rectangle{X: 0, Y: 0, Width: panelWidth, Height: h}, ColPanel)
	a.drawText(a.Title, 16, 16, 20, ColText)

	p := a.R.Params()
	y := float32(56)
	slider := func(label, format string, value, lo, hi float32) float32 {
		a.drawText(fmt.Sprintf("%s "+format, label, value), 16, int(y), 14, ColTextDim)
		y += 18
		v := gui.SliderBar(rl.Rectangle{X: 16, Y: y, Width: panelWidth - 60, Height: 16}, "", "", value, lo, hi)
		y += 30
		return v
	}

	next := p
	next.Gap = int(slider("stride", "%.0f", float32(p.Gap), 1, 16) + 0.5)
	next.Radius = float64(slider("radius", "%.0f", float32(p.Radius), 10, 400))
	next.Strength = float64(slider("strength", "%.1f", float32(p.Strength), 0, 60))
	next.Friction = float64(slider("friction", "%.2f", float32(p.Friction), 0.5, 0.99))
	next.ReturnForce = float64(slider("return", "%.3f", float32(p.ReturnForce), 0.01, 0.5))
	if changed(p, next) {
		if err := a.R.SetParams(next); err != nil {
			a.status = err.Error()
		}
	}

	if gui.Button(rl.Rectangle{X: 16, Y: y, Width: 120, Height: 28}, "Defaults") {
		if err := a.R.SetParams(field.DefaultParams()); err != nil {
			a.status = err.Error()
		}
	}
	if gui.Button(rl.Rectangle{X: 144, Y: y, Width: 120, Height: 28}, "Reset dots") {
		a.R.Reset()
	}
	y += 44

	a.drawText("[SPACE] PAUSE  [R] RESET", 16, int(y), 12, ColTextDim)
	a.drawText("[T] STYLE  [M] AUDIO  [TAB] PANEL", 16, int(y)+16, 12, ColTextDim)
}

// changed ignores float32 round-off from the sliders.
func changed(a, b field.Params) bool {
	const eps = 1e-4
	diff := func(x, y float64) bool { return x-y > eps || y-x > eps }
	return a.Gap != b.Gap || diff(a.Radius, b.Radius) || diff(a.Strength, b.Strength) ||
		diff(a.Friction, b.Friction) || diff(a.ReturnForce, b.ReturnForce)
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

// Close releases the window resources, audio and the renderer.
func (a *App) Close() {
	a.R.Close()
	if a.Audio != nil {
		a.Audio.Close()
	}
	a.Surface.Unload()
	rl.ShowCursor()
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
