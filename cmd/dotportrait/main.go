package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/san-kum/dotportrait/internal/audio"
	"github.com/san-kum/dotportrait/internal/config"
	"github.com/san-kum/dotportrait/internal/gui"
	"github.com/san-kum/dotportrait/internal/portrait"
	"github.com/san-kum/dotportrait/internal/source"
	"github.com/san-kum/dotportrait/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	logJSON    bool

	imageRef string
	style    string
	accent   string
	width    int
	height   int
	fps      int

	gap         int
	radius      float64
	strength    float64
	friction    float64
	returnForce float64

	track string
	mute  bool

	// headless output
	frames    int
	at        []string
	pngOut    string
	svgOut    string
	jsonOut   string
	gifFile   string
	gifEvery  int
	statEvery int
	name      string
	column    string
	withStats bool

	// settle / sweep / probe
	pokeX, pokeY float64
	poke         int
	limit        int
	sweepMin     float64
	sweepMax     float64
	sweepSteps   int
	trials       int
	seed         int64

	logger = slog.Default()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dotportrait",
		Short: "pointer-reactive dot-matrix portraits",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging()
		},
		RunE: runGUI,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", "", "session data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "field preset (see presets)")
	pf.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	pf.BoolVar(&logJSON, "log-json", false, "log as JSON")
	pf.StringVar(&imageRef, "image", "", "image path or builtin:silhouette")
	pf.StringVar(&style, "style", "", "palette name")
	pf.StringVar(&accent, "accent", "", "accent colour override (#rrggbb)")
	pf.IntVar(&width, "width", config.DefaultWidth, "surface width")
	pf.IntVar(&height, "height", config.DefaultHeight, "surface height")
	pf.IntVar(&fps, "fps", portrait.DefaultFPS, "frame rate")
	pf.IntVar(&gap, "gap", 4, "sampling stride in pixels")
	pf.Float64Var(&radius, "radius", 130, "pointer influence radius")
	pf.Float64Var(&strength, "strength", 18, "pointer push strength")
	pf.Float64Var(&friction, "friction", 0.82, "velocity damping per frame")
	pf.Float64Var(&returnForce, "return-force", 0.09, "spring pull towards origin")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "open the portrait in a window",
		Args:  cobra.NoArgs,
		RunE:  runGUI,
	}

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "show the portrait in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runTUI,
	}

	for _, c := range []*cobra.Command{rootCmd, guiCmd, tuiCmd} {
		c.Flags().StringVar(&track, "track", "", "WAV file to loop as ambient audio")
		c.Flags().BoolVar(&mute, "mute", false, "disable ambient audio")
	}

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "render frames to PNG or GIF",
		Args:  cobra.NoArgs,
		RunE:  renderFrames,
	}
	renderCmd.Flags().IntVar(&frames, "frames", 1, "frames to simulate")
	renderCmd.Flags().StringSliceVar(&at, "at", nil, "pointer positions x:y, spread over the frames")
	renderCmd.Flags().StringVarP(&pngOut, "out", "o", "portrait.png", "PNG of the last frame")
	renderCmd.Flags().StringVar(&gifFile, "gif", "", "also record an animated GIF")
	renderCmd.Flags().IntVar(&gifEvery, "every", 2, "GIF captures every nth frame")

	svgCmd := &cobra.Command{
		Use:   "svg",
		Short: "render the last frame as SVG",
		Args:  cobra.NoArgs,
		RunE:  renderSVG,
	}
	svgCmd.Flags().IntVar(&frames, "frames", 1, "frames to simulate")
	svgCmd.Flags().StringSliceVar(&at, "at", nil, "pointer positions x:y, spread over the frames")
	svgCmd.Flags().StringVarP(&svgOut, "out", "o", "portrait.svg", "output file")

	recordCmd := &cobra.Command{
		Use:   "record [scenario.yaml]",
		Short: "run a pointer scenario headless and save the session",
		Args:  cobra.ExactArgs(1),
		RunE:  recordSession,
	}
	recordCmd.Flags().StringVar(&name, "name", "", "session name (default: scenario name)")
	recordCmd.Flags().StringVar(&gifFile, "gif", "", "also record an animated GIF")
	recordCmd.Flags().IntVar(&statEvery, "every", 1, "record stats every nth frame")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded sessions",
		Args:  cobra.NoArgs,
		RunE:  listSessions,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [session_id]",
		Short: "plot session stats",
		Args:  cobra.ExactArgs(1),
		RunE:  plotSession,
	}
	plotCmd.Flags().StringVar(&column, "column", "", "single column to plot")

	exportCmd := &cobra.Command{
		Use:   "export [session_id]",
		Short: "export session metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSession,
	}
	exportCmd.Flags().BoolVar(&withStats, "stats", false, "include per-frame stats")
	exportCmd.Flags().StringVarP(&jsonOut, "out", "o", "", "output file (default: stdout)")

	settleCmd := &cobra.Command{
		Use:   "settle",
		Short: "poke the field, release and graph the return",
		Args:  cobra.NoArgs,
		RunE:  settleField,
	}
	settleCmd.Flags().Float64Var(&pokeX, "x", 0, "poke x (default: centre)")
	settleCmd.Flags().Float64Var(&pokeY, "y", 0, "poke y (default: centre)")
	settleCmd.Flags().IntVar(&poke, "poke", 30, "frames the pointer is held")
	settleCmd.Flags().IntVar(&limit, "limit", 600, "frame limit")

	sweepCmd := &cobra.Command{
		Use:   "sweep [param]",
		Short: "measure the poke response across one parameter",
		Args:  cobra.ExactArgs(1),
		RunE:  sweepParam,
	}
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.7, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0.95, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 6, "number of values")
	sweepCmd.Flags().IntVar(&poke, "poke", 30, "frames the pointer is held")
	sweepCmd.Flags().IntVar(&limit, "limit", 600, "frame limit")

	probeCmd := &cobra.Command{
		Use:   "probe",
		Short: "poke random spots and check every poke settles",
		Args:  cobra.NoArgs,
		RunE:  probeField,
	}
	probeCmd.Flags().IntVar(&trials, "trials", 20, "number of pokes")
	probeCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0: clock)")
	probeCmd.Flags().IntVar(&poke, "poke", 30, "frames the pointer is held")
	probeCmd.Flags().IntVar(&limit, "limit", 600, "frame limit")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list field presets and palettes",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "configuration helpers",
	}
	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the effective configuration to a file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(guiCmd, tuiCmd, renderCmd, svgCmd, recordCmd, listCmd, plotCmd, exportCmd,
		settleCmd, sweepCmd, probeCmd, presetsCmd, configCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func setupLogging() error {
	lvl := slog.LevelInfo
	if logLevel != "" {
		if err := lvl.UnmarshalText([]byte(logLevel)); err != nil {
			return fmt.Errorf("log level: %w", err)
		}
	}
	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if logJSON {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	logger = slog.New(h)
	slog.SetDefault(logger)
	return nil
}

// loadConfig builds the effective configuration: defaults, then the config
// file, then the preset, then any flag the user actually set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if preset != "" && !cfg.ApplyPreset(preset) {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("image") {
		cfg.Image = imageRef
	}
	if flags.Changed("style") {
		cfg.Style = style
	}
	if flags.Changed("accent") {
		cfg.Accent = accent
	}
	if flags.Changed("width") {
		cfg.Width = width
	}
	if flags.Changed("height") {
		cfg.Height = height
	}
	if flags.Changed("fps") {
		cfg.FPS = fps
	}
	if flags.Changed("gap") {
		cfg.Field.Gap = gap
	}
	if flags.Changed("radius") {
		cfg.Field.Radius = radius
	}
	if flags.Changed("strength") {
		cfg.Field.Strength = strength
	}
	if flags.Changed("friction") {
		cfg.Field.Friction = friction
	}
	if flags.Changed("return-force") {
		cfg.Field.ReturnForce = returnForce
	}
	if flags.Changed("track") {
		cfg.Audio.Track = track
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// a level from the config file applies unless --log-level was given
	if logLevel == "" && cfg.LogLevel != config.DefaultLevel {
		logLevel = cfg.LogLevel
		if err := setupLogging(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func newAudio(cfg *config.Config) *audio.Context {
	if mute {
		return nil
	}
	return audio.New(cfg.AudioOptions(), logger)
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ropts, err := cfg.RendererOptions()
	if err != nil {
		return err
	}

	ac := newAudio(cfg)
	if ac != nil {
		defer ac.Close()
	}

	return gui.Run(cmd.Context(), gui.Options{
		Width:    cfg.Width,
		Height:   cfg.Height,
		Title:    cfg.Title,
		Image:    cfg.Image,
		Loader:   source.NewFileLoader(),
		Renderer: ropts,
		Audio:    ac,
	}, logger)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ropts, err := cfg.RendererOptions()
	if err != nil {
		return err
	}

	theme, err := viz.GetTheme(cfg.Style)
	if err != nil {
		return err
	}
	theme.Style = ropts.Style

	canvas := viz.NewCanvas(0, 0, viz.CellScale)
	r, err := portrait.New(canvas, ropts, logger)
	if err != nil {
		return err
	}
	r.Load(cmd.Context(), source.NewFileLoader(), cfg.Image)

	ac := newAudio(cfg)
	if ac != nil {
		defer ac.Close()
	}

	return viz.Run(cmd.Context(), r, canvas, viz.Options{
		Title: cfg.Title,
		Theme: theme,
		Audio: ac,
	}, logger)
}
