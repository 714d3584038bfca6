package main

import (
	"errors"
	"image"
	"image/color"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/dotportrait/internal/config"
	"github.com/san-kum/dotportrait/internal/field"
	"github.com/san-kum/dotportrait/internal/portrait"
	"github.com/san-kum/dotportrait/internal/raster"
)

func TestParsePath(t *testing.T) {
	path, err := parsePath([]string{"10:20", "leave", "0.5:7"})
	if err != nil {
		t.Fatal(err)
	}
	want := []field.Pointer{field.At(10, 20), field.Away(), field.At(0.5, 7)}
	if len(path) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(path))
	}
	for i := range want {
		if path[i] != want[i] {
			t.Errorf("point %d: expected %v, got %v", i, want[i], path[i])
		}
	}

	for _, bad := range []string{"10", "x:1", "1:y"} {
		if _, err := parsePath([]string{bad}); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestSimulate_FollowsPath(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	surf := raster.NewSurface(100, 100, color.NRGBA{A: 0xff})
	opts := portrait.DefaultOptions()
	r, err := portrait.New(surf, opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Resize(100, 100); err != nil {
		t.Fatal(err)
	}
	if err := r.SetImage(img); err != nil {
		t.Fatal(err)
	}

	simulate(r, 10, []field.Pointer{field.At(50, 50), field.Away()})
	if r.Frames() != 10 {
		t.Errorf("expected 10 frames, got %d", r.Frames())
	}
	if r.Pointer() != field.Away() {
		t.Errorf("expected pointer to end away, got %v", r.Pointer())
	}

	simulate(r, 4, []field.Pointer{field.At(1, 2)})
	if r.Pointer() != field.At(1, 2) {
		t.Errorf("expected pointer at 1,2, got %v", r.Pointer())
	}
}

func TestLoadConfig_FlagsOverrideWhenChanged(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().IntVar(&gap, "gap", 4, "")
	cmd.Flags().Float64Var(&radius, "radius", 130, "")
	cmd.Flags().StringVar(&style, "style", "", "")
	if err := cmd.Flags().Parse([]string{"--gap", "6", "--style", "ocean"}); err != nil {
		t.Fatal(err)
	}
	configFile, preset = "", "soft"
	defer func() { preset = "" }()

	cfg, err := loadConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Field.Gap != 6 {
		t.Errorf("expected flag gap 6, got %d", cfg.Field.Gap)
	}
	if cfg.Field.Radius != 180 {
		t.Errorf("expected preset radius 180, got %f", cfg.Field.Radius)
	}
	if cfg.Style != "ocean" {
		t.Errorf("expected style ocean, got %s", cfg.Style)
	}
}

func TestWriteFile_RemovesPartialOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	failed := errors.New("disk full")
	err := writeFile(path, func(w io.Writer) error {
		if _, err := w.Write([]byte("partial")); err != nil {
			return err
		}
		return failed
	})
	if !errors.Is(err, failed) {
		t.Fatalf("expected write error, got %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected %s to be removed, stat gave %v", path, err)
	}

	if err := writeFile(path, func(w io.Writer) error {
		_, err := w.Write([]byte("ok"))
		return err
	}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "ok" {
		t.Errorf("expected file contents ok, got %q (%v)", data, err)
	}
}

func TestPokePoint(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Width, cfg.Height = 200, 100

	newCmd := func(args ...string) *cobra.Command {
		cmd := &cobra.Command{Use: "settle"}
		cmd.Flags().Float64Var(&pokeX, "x", 0, "")
		cmd.Flags().Float64Var(&pokeY, "y", 0, "")
		if err := cmd.Flags().Parse(args); err != nil {
			t.Fatal(err)
		}
		return cmd
	}

	if x, y := pokePoint(newCmd(), cfg); x != 100 || y != 50 {
		t.Errorf("expected centre 100,50, got %v,%v", x, y)
	}
	if x, y := pokePoint(newCmd("--x", "-20", "--y", "0"), cfg); x != -20 || y != 0 {
		t.Errorf("expected explicit -20,0, got %v,%v", x, y)
	}
	if x, y := pokePoint(newCmd("--y", "30"), cfg); x != 100 || y != 30 {
		t.Errorf("expected 100,30, got %v,%v", x, y)
	}
}
