package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/dotportrait/internal/config"
	"github.com/san-kum/dotportrait/internal/export"
	"github.com/san-kum/dotportrait/internal/field"
	"github.com/san-kum/dotportrait/internal/paint"
	"github.com/san-kum/dotportrait/internal/portrait"
	"github.com/san-kum/dotportrait/internal/raster"
	"github.com/san-kum/dotportrait/internal/script"
	"github.com/san-kum/dotportrait/internal/source"
	"github.com/san-kum/dotportrait/internal/storage"
	"github.com/san-kum/dotportrait/internal/telemetry"
)

// plotted when plot is given no --column
var plotColumns = []string{"mean_displacement", "max_displacement", "kinetic_energy", "disturbed"}

func loadImage(ctx context.Context, ref string) (image.Image, error) {
	img, err := source.NewFileLoader().Load(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	return img, nil
}

// headless builds a renderer on surf sized to the config with the image
// already installed.
func headless(ctx context.Context, cfg *config.Config, surf paint.Surface) (*portrait.Renderer, error) {
	ropts, err := cfg.RendererOptions()
	if err != nil {
		return nil, err
	}
	img, err := loadImage(ctx, cfg.Image)
	if err != nil {
		return nil, err
	}
	r, err := portrait.New(surf, ropts, logger)
	if err != nil {
		return nil, err
	}
	if err := r.Resize(cfg.Width, cfg.Height); err != nil {
		return nil, err
	}
	if err := r.SetImage(img); err != nil {
		return nil, err
	}
	return r, nil
}

// parsePath turns "x:y" entries (or "leave") into pointer positions.
func parsePath(entries []string) ([]field.Pointer, error) {
	path := make([]field.Pointer, 0, len(entries))
	for _, e := range entries {
		if e == "leave" {
			path = append(path, field.Away())
			continue
		}
		xs, ys, ok := strings.Cut(e, ":")
		if !ok {
			return nil, fmt.Errorf("bad pointer position %q, want x:y", e)
		}
		x, err := strconv.ParseFloat(xs, 64)
		if err != nil {
			return nil, fmt.Errorf("bad pointer x in %q: %w", e, err)
		}
		y, err := strconv.ParseFloat(ys, 64)
		if err != nil {
			return nil, fmt.Errorf("bad pointer y in %q: %w", e, err)
		}
		path = append(path, field.At(x, y))
	}
	return path, nil
}

// simulate ticks r for n frames, moving the pointer along path in equal
// segments.
func simulate(r *portrait.Renderer, n int, path []field.Pointer) {
	for i := 0; i < n; i++ {
		if len(path) > 0 {
			p := path[i*len(path)/n]
			if p == field.Away() {
				r.PointerLeave()
			} else {
				r.PointerMove(p.X, p.Y)
			}
		}
		r.Tick()
	}
}

func renderFrames(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	path, err := parsePath(at)
	if err != nil {
		return err
	}
	if frames < 1 {
		return fmt.Errorf("frames must be positive, got %d", frames)
	}

	st, err := cfg.PaintStyle()
	if err != nil {
		return err
	}
	surf := raster.NewSurface(cfg.Width, cfg.Height, st.Background)
	r, err := headless(cmd.Context(), cfg, surf)
	if err != nil {
		return err
	}
	defer r.Close()

	var rec *raster.Recorder
	if gifFile != "" {
		rec = raster.NewRecorder(0)
		n := max(gifEvery, 1)
		r.AddObserver(portrait.ObserverFunc(func(frame int, _ []field.Particle) {
			if frame%n == 0 {
				rec.Capture(surf.Image())
			}
		}))
	}

	start := time.Now()
	simulate(r, frames, path)
	logger.Info("rendered", "frames", frames, "particles", r.Len(), "elapsed", time.Since(start))

	if err := writeFile(pngOut, surf.EncodePNG); err != nil {
		return err
	}
	fmt.Printf("frame: %s (%dx%d, %d particles)\n", pngOut, cfg.Width, cfg.Height, r.Len())

	if rec != nil {
		if err := writeFile(gifFile, rec.Encode); err != nil {
			return err
		}
		fmt.Printf("gif: %s (%d frames)\n", gifFile, rec.Len())
	}
	return nil
}

func renderSVG(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	path, err := parsePath(at)
	if err != nil {
		return err
	}
	if frames < 1 {
		return fmt.Errorf("frames must be positive, got %d", frames)
	}

	st, err := cfg.PaintStyle()
	if err != nil {
		return err
	}
	doc := export.NewSVG(cfg.Width, cfg.Height, st.Background)
	r, err := headless(cmd.Context(), cfg, doc)
	if err != nil {
		return err
	}
	defer r.Close()

	simulate(r, frames, path)

	if err := writeFile(svgOut, func(w io.Writer) error {
		_, err := doc.WriteTo(w)
		return err
	}); err != nil {
		return err
	}
	fmt.Printf("svg: %s (%d particles)\n", svgOut, r.Len())
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

func recordSession(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := script.LoadScenario(args[0])
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}
	if sc.Image != "" && !cmd.Flags().Changed("image") {
		cfg.Image = sc.Image
	}

	st, err := cfg.PaintStyle()
	if err != nil {
		return err
	}
	surf := raster.NewSurface(cfg.Width, cfg.Height, st.Background)
	r, err := headless(cmd.Context(), cfg, surf)
	if err != nil {
		return err
	}
	defer r.Close()

	stats := telemetry.NewRecorder(statEvery)
	r.AddObserver(stats)

	var rec *raster.Recorder
	if gifFile != "" {
		rec = raster.NewRecorder(0)
		r.AddObserver(portrait.ObserverFunc(func(frame int, _ []field.Particle) {
			if frame%2 == 0 {
				rec.Capture(surf.Image())
			}
		}))
	}

	fmt.Printf("running scenario %s (%d frames)...\n", sc.Name, sc.TotalFrames())
	start := time.Now()
	drawn, err := script.Run(cmd.Context(), sc, r, logger)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	store := storage.New(cfg.DataDir)
	if err := store.Init(); err != nil {
		return err
	}
	w, h := r.Size()
	sessionName := name
	if sessionName == "" {
		sessionName = sc.Name
	}
	recorded := stats.Stats()
	id, err := store.Save(storage.SessionMetadata{
		Name:      sessionName,
		Image:     cfg.Image,
		Script:    args[0],
		Width:     w,
		Height:    h,
		Frames:    drawn,
		Particles: r.Len(),
		Params:    r.Params(),
		Summary:   storage.Summarize(recorded),
	}, recorded)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("session id: %s\n", id)
	fmt.Printf("frames: %d\n", drawn)

	if rec != nil {
		if err := writeFile(gifFile, rec.Encode); err != nil {
			return err
		}
		fmt.Printf("gif: %s (%d frames)\n", gifFile, rec.Len())
	}
	return nil
}

func openStore(cmd *cobra.Command) (*storage.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return storage.New(cfg.DataDir), nil
}

func listSessions(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	sessions, err := store.List()
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		fmt.Println("no sessions found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tIMAGE\tTIME\tSIZE\tFRAMES\tDOTS\tPEAK")

	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%d\t%d\t%.2f\n",
			s.ID,
			filepath.Base(s.Image),
			s.Timestamp.Format("2006-01-02 15:04:05"),
			s.Width, s.Height,
			s.Frames,
			s.Particles,
			s.Summary["peak_mean_displacement"],
		)
	}

	return w.Flush()
}

func plotSession(cmd *cobra.Command, args []string) error {
	id := args[0]

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	meta, err := store.Load(id)
	if err != nil {
		return err
	}
	stats, err := store.LoadStats(id)
	if err != nil {
		return err
	}

	if len(stats) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("session: %s\n", meta.ID)
	fmt.Printf("image: %s\n", meta.Image)
	fmt.Printf("samples: %d\n\n", len(stats))

	columns := plotColumns
	if column != "" {
		columns = []string{column}
	}
	for _, c := range columns {
		data, err := telemetry.Series(stats, c)
		if err != nil {
			return err
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(strings.ReplaceAll(c, "_", " ")),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportSession(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	if jsonOut == "" || jsonOut == "-" {
		return store.ExportJSON(os.Stdout, args[0], withStats)
	}
	if err := writeFile(jsonOut, func(w io.Writer) error {
		return store.ExportJSON(w, args[0], withStats)
	}); err != nil {
		return err
	}
	fmt.Printf("exported %s to %s\n", args[0], jsonOut)
	return nil
}

// buildField samples the configured image into a bare field for the
// analysis commands.
func buildField(cmd *cobra.Command) (*config.Config, *field.Field, image.Image, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	img, err := loadImage(cmd.Context(), cfg.Image)
	if err != nil {
		return nil, nil, nil, err
	}
	f := field.New(cfg.Field)
	if err := f.Rebuild(img, float64(cfg.Width), float64(cfg.Height)); err != nil {
		return nil, nil, nil, err
	}
	return cfg, f, img, nil
}

// pokePoint returns the --x/--y flags, falling back to the canvas centre
// for any flag not given.
func pokePoint(cmd *cobra.Command, cfg *config.Config) (x, y float64) {
	x, y = float64(cfg.Width)/2, float64(cfg.Height)/2
	if cmd.Flags().Changed("x") {
		x = pokeX
	}
	if cmd.Flags().Changed("y") {
		y = pokeY
	}
	return x, y
}

func settleField(cmd *cobra.Command, args []string) error {
	cfg, f, _, err := buildField(cmd)
	if err != nil {
		return err
	}
	x, y := pokePoint(cmd, cfg)

	stats := telemetry.Settle(f, x, y, poke, limit)
	if len(stats) == 0 {
		return fmt.Errorf("no frames simulated")
	}
	data, err := telemetry.Series(stats, "mean_displacement")
	if err != nil {
		return err
	}

	fmt.Println(asciigraph.Plot(data,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("mean displacement, poke at %.0f,%.0f for %d frames", x, y, poke)),
	))
	fmt.Println()

	last := stats[len(stats)-1]
	fmt.Printf("particles: %d\n", f.Len())
	fmt.Printf("peak mean displacement: %.3f\n", telemetry.PeakDisplacement(stats))
	if last.Settled() {
		fmt.Printf("settled after %d frames\n", last.Frame-poke)
	} else {
		fmt.Printf("not settled after %d frames (max displacement %.3f)\n", last.Frame, last.MaxDisplacement)
	}
	return nil
}

func sweepParam(cmd *cobra.Command, args []string) error {
	cfg, _, img, err := buildField(cmd)
	if err != nil {
		return err
	}

	results, err := script.RunSweep(cmd.Context(), script.ParameterSweep{
		Param:  args[0],
		Min:    sweepMin,
		Max:    sweepMax,
		Steps:  sweepSteps,
		Poke:   poke,
		Limit:  limit,
		Width:  float64(cfg.Width),
		Height: float64(cfg.Height),
	}, cfg.Field, img, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tPEAK\tFRAMES\tSETTLED\n", strings.ToUpper(args[0]))
	settle := make([]float64, len(results))
	for i, res := range results {
		fmt.Fprintf(w, "%.4f\t%.3f\t%d\t%v\n", res.Value, res.PeakMean, res.SettleFrames, res.Settled)
		settle[i] = float64(res.SettleFrames)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(settle) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(settle,
			asciigraph.Height(8),
			asciigraph.Caption("settle frames by "+args[0]),
		))
	}
	return nil
}

func probeField(cmd *cobra.Command, args []string) error {
	_, f, _, err := buildField(cmd)
	if err != nil {
		return err
	}
	results := script.Probe(f, trials, poke, limit, seed)
	settled, unsettled := script.ProbeStats(results)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tX\tY\tFRAMES\tSETTLED")
	for _, res := range results {
		fmt.Fprintf(w, "%d\t%.0f\t%.0f\t%d\t%v\n", res.Trial, res.X, res.Y, res.Frames, res.Settled)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nsettled: %d, unsettled: %d\n", settled, unsettled)
	if unsettled > 0 {
		return fmt.Errorf("%d of %d pokes did not settle within %d frames", unsettled, len(results), limit)
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tGAP\tRADIUS\tSTRENGTH\tFRICTION\tRETURN")
	for _, n := range config.ListPresets() {
		p, _ := config.GetPreset(n)
		fmt.Fprintf(w, "%s\t%d\t%.0f\t%.0f\t%.2f\t%.2f\n", n, p.Gap, p.Radius, p.Strength, p.Friction, p.ReturnForce)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nstyles: %s\n", strings.Join(paint.StyleNames(), ", "))
	fmt.Printf("images: %s\n", strings.Join(source.NewFileLoader().BuiltinNames(), ", "))
	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "dotportrait.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
