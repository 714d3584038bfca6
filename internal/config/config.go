package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/dotportrait/internal/audio"
	"github.com/san-kum/dotportrait/internal/field"
	"github.com/san-kum/dotportrait/internal/paint"
	"github.com/san-kum/dotportrait/internal/portrait"
	"github.com/san-kum/dotportrait/internal/source"
)

const (
	DefaultImage   = source.BuiltinPrefix + "silhouette"
	DefaultWidth   = 640
	DefaultHeight  = 800
	DefaultStyle   = "violet"
	DefaultTitle   = "dotportrait"
	DefaultDataDir = "data"
	DefaultLevel   = "info"
)

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	Image    string       `yaml:"image"`
	Width    int          `yaml:"width"`
	Height   int          `yaml:"height"`
	FPS      int          `yaml:"fps"`
	Style    string       `yaml:"style"`
	Accent   string       `yaml:"accent,omitempty"`
	Title    string       `yaml:"title"`
	DataDir  string       `yaml:"data_dir"`
	LogLevel string       `yaml:"log_level"`
	Audio    AudioConfig  `yaml:"audio"`
	Field    field.Params `yaml:"field"`
}

type AudioConfig struct {
	Track  string  `yaml:"track,omitempty"`
	Volume float64 `yaml:"volume"`
}

func DefaultConfig() *Config {
	return &Config{
		Image:    DefaultImage,
		Width:    DefaultWidth,
		Height:   DefaultHeight,
		FPS:      portrait.DefaultFPS,
		Style:    DefaultStyle,
		Title:    DefaultTitle,
		DataDir:  DefaultDataDir,
		LogLevel: DefaultLevel,
		Audio:    AudioConfig{Volume: audio.DefaultVolume},
		Field:    field.DefaultParams(),
	}
}

// Load reads a YAML file on top of the defaults, so partial files are fine.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.FPS < 0 {
		return fmt.Errorf("%w: fps %d", ErrInvalidConfig, c.FPS)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("%w: volume %.2f", ErrInvalidConfig, c.Audio.Volume)
	}
	if _, err := c.PaintStyle(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return c.Field.Validate()
}

// PaintStyle resolves the named palette and applies the accent override.
func (c *Config) PaintStyle() (paint.Style, error) {
	st, err := paint.LookupStyle(c.Style)
	if err != nil {
		return paint.Style{}, err
	}
	if c.Accent == "" {
		return st, nil
	}
	accent, err := paint.ParseHex(c.Accent)
	if err != nil {
		return paint.Style{}, err
	}
	return st.WithAccent(accent), nil
}

func (c *Config) RendererOptions() (portrait.Options, error) {
	st, err := c.PaintStyle()
	if err != nil {
		return portrait.Options{}, err
	}
	return portrait.Options{Params: c.Field, Style: st, FPS: c.FPS}, nil
}

func (c *Config) AudioOptions() audio.Options {
	opts := audio.DefaultOptions()
	opts.Track = c.Audio.Track
	opts.Volume = c.Audio.Volume
	return opts
}
