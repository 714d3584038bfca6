package viz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/dotportrait/internal/audio"
	"github.com/san-kum/dotportrait/internal/field"
	"github.com/san-kum/dotportrait/internal/portrait"
	"github.com/san-kum/dotportrait/internal/telemetry"
)

const (
	statsWidth      = 30
	historyCapacity = 120
	refresh         = time.Second / 30
	// CellScale is surface units per braille sub-pixel.
	CellScale = 2.0
)

type TickMsg time.Time

// frameBox hands the latest drawn frame from the renderer's loop to the
// UI goroutine without blocking either side.
type frameBox struct {
	mu    sync.Mutex
	view  string
	stats telemetry.FrameStats
	fresh bool
}

func (b *frameBox) OnFrame(frame int, particles []field.Particle, canvas *Canvas) {
	s := telemetry.Measure(frame, particles)
	view := canvas.String()
	b.mu.Lock()
	b.view, b.stats, b.fresh = view, s, true
	b.mu.Unlock()
}

func (b *frameBox) take() (string, telemetry.FrameStats, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fresh := b.fresh
	b.fresh = false
	return b.view, b.stats, fresh
}

// Model is the terminal host around a running renderer.
type Model struct {
	r       *portrait.Renderer
	canvas  *Canvas
	box     *frameBox
	audio   *audio.Context
	marquee *Marquee
	theme   Theme
	styles  styles
	log     *slog.Logger

	width, height int
	view          string
	stats         telemetry.FrameStats
	history       []float64
	status        string
	ticks         int
}

type Options struct {
	Title string
	Theme Theme
	Audio *audio.Context
}

// NewModel wires a renderer whose surface is canvas into a bubbletea model.
func NewModel(r *portrait.Renderer, canvas *Canvas, opts Options, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Theme.Name == "" {
		opts.Theme = ThemeViolet
	}
	box := &frameBox{}
	r.AddObserver(portrait.ObserverFunc(func(frame int, particles []field.Particle) {
		box.OnFrame(frame, particles, canvas)
	}))
	r.SetStyle(opts.Theme.Style)

	return Model{
		r:       r,
		canvas:  canvas,
		box:     box,
		audio:   opts.Audio,
		marquee: NewMarquee(opts.Title),
		theme:   opts.Theme,
		styles:  newStyles(opts.Theme),
		log:     logger.With("component", "tui"),
		history: make([]float64, 0, historyCapacity),
	}
}

func tick() tea.Cmd {
	return tea.Tick(refresh, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

// Update handles input events and picks up frames from the loop.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		cols := max(msg.Width-statsWidth-2, 1)
		rows := max(msg.Height-2, 1)
		w, h := int(float64(cols*2)*CellScale), int(float64(rows*4)*CellScale)
		if err := m.r.Resize(w, h); err != nil {
			m.status = err.Error()
		}
	case tea.MouseMsg:
		m.pointer(msg)
	case tea.KeyMsg:
		return m.key(msg)
	case TickMsg:
		m.ticks++
		if m.ticks%4 == 0 {
			m.marquee.Advance()
		}
		if view, s, ok := m.box.take(); ok {
			m.view, m.stats = view, s
			m.history = append(m.history, s.MeanDisplacement)
			if len(m.history) > historyCapacity {
				m.history = m.history[1:]
			}
			if m.audio != nil {
				m.audio.SetEnergy(s.KineticEnergy)
			}
		}
		return m, tick()
	}
	return m, nil
}

// pointer maps a terminal cell to surface units. The canvas starts one row
// below the header.
func (m *Model) pointer(msg tea.MouseMsg) {
	col, row := msg.X, msg.Y-1
	if col < 0 || row < 0 || col >= m.canvas.Width || row >= m.canvas.Height {
		m.r.PointerLeave()
		return
	}
	x := (float64(col*2) + 1) * CellScale
	y := (float64(row*4) + 2) * CellScale
	m.r.PointerMove(x, y)
}

func (m Model) key(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.r.SetPaused(!m.r.Paused())
	case "r":
		m.r.Reset()
	case "t":
		m.theme = NextTheme(m.theme.Name)
		m.styles = newStyles(m.theme)
		m.r.SetStyle(m.theme.Style)
	case "+", "=":
		m.adjustGap(1)
	case "-", "_":
		m.adjustGap(-1)
	case "a":
		m.toggleAudio()
	}
	return m, nil
}

func (m *Model) adjustGap(d int) {
	p := m.r.Params()
	p.Gap += d
	if err := m.r.SetParams(p); err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("stride %d", p.Gap)
}

func (m *Model) toggleAudio() {
	if m.audio == nil {
		m.status = "audio disabled"
		return
	}
	// a key press is the gesture that unlocks playback
	if err := m.audio.Unlock(); err != nil {
		m.status = "audio: " + err.Error()
		m.log.Warn("audio unlock failed", "err", err)
		return
	}
	if err := m.audio.Toggle(); err != nil {
		m.status = "audio: " + err.Error()
		return
	}
	if m.audio.IsPlaying() {
		m.status = "audio on"
	} else {
		m.status = "audio off"
	}
}

func (m Model) View() string {
	header := GradientText(m.marquee.Frame(max(m.width, 20)), m.theme.Primary, m.theme.Second)

	canvasView := m.styles.canvas.Render(m.view)

	var s strings.Builder
	state := "LIVE"
	if m.r.Paused() {
		state = m.styles.paused.Render("PAUSED")
	}
	s.WriteString(m.styles.header.Render(state) + "\n\n")
	p := m.r.Params()
	row := func(label, value string) {
		s.WriteString(m.styles.label.Render(label) + m.styles.value.Render(value) + "\n")
	}
	row("Particles", fmt.Sprintf("%d", m.stats.Particles))
	row("Disturbed", fmt.Sprintf("%d", m.stats.Disturbed))
	row("Mean disp", fmt.Sprintf("%.2f", m.stats.MeanDisplacement))
	row("Max disp", fmt.Sprintf("%.2f", m.stats.MaxDisplacement))
	row("Stride", fmt.Sprintf("%d", p.Gap))
	row("Radius", fmt.Sprintf("%.0f", p.Radius))
	row("Theme", m.theme.Name)
	if m.audio != nil {
		row("Audio", onOff(m.audio.IsPlaying()))
	}
	s.WriteString("\n" + m.styles.Sparkline(m.history, statsWidth-4) + "\n")
	if m.status != "" {
		s.WriteString("\n" + m.styles.value.Render(m.status) + "\n")
	}
	s.WriteString(m.styles.help.Render("\nSP:Pause R:Reset T:Theme\n+/-:Stride A:Audio Q:Quit"))

	stats := m.styles.stats.Width(statsWidth).Render(s.String())
	return header + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, canvasView, stats)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// Run drives r's frame loop in the background and shows it until the user
// quits or ctx ends. The renderer is closed on return.
func Run(ctx context.Context, r *portrait.Renderer, canvas *Canvas, opts Options, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := NewModel(r, canvas, opts, logger)
	loopErr := make(chan error, 1)
	go func() { loopErr <- r.Run(ctx) }()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		err = nil
	}
	r.Close()
	if lerr := <-loopErr; lerr != nil && !errors.Is(lerr, context.Canceled) && err == nil {
		err = lerr
	}
	return err
}
