package paint

import (
	"fmt"
	"image/color"
	"sort"
)

// Style is the fixed palette of the drawing pass.
type Style struct {
	Name       string
	Accent     color.NRGBA
	Glow       color.NRGBA
	Scanline   color.NRGBA
	Background color.NRGBA

	ScanlineAlpha   float64
	ScanlineSpacing float64
}

var (
	StyleViolet = Style{
		Name:            "violet",
		Accent:          color.NRGBA{0xd0, 0x6b, 0xff, 0xff},
		Glow:            color.NRGBA{0xd0, 0x6b, 0xff, 36},
		Scanline:        color.NRGBA{0xd0, 0x6b, 0xff, 191},
		Background:      color.NRGBA{0x05, 0x02, 0x08, 0xff},
		ScanlineAlpha:   0.05,
		ScanlineSpacing: 4,
	}

	StyleRetro = Style{
		Name:            "retro",
		Accent:          color.NRGBA{0x00, 0xff, 0x00, 0xff},
		Glow:            color.NRGBA{0x00, 0xff, 0x00, 36},
		Scanline:        color.NRGBA{0x00, 0xcc, 0x00, 191},
		Background:      color.NRGBA{0x00, 0x11, 0x00, 0xff},
		ScanlineAlpha:   0.05,
		ScanlineSpacing: 4,
	}

	StyleOcean = Style{
		Name:            "ocean",
		Accent:          color.NRGBA{0x00, 0xa8, 0xcc, 0xff},
		Glow:            color.NRGBA{0x00, 0x77, 0xbe, 36},
		Scanline:        color.NRGBA{0x00, 0xa8, 0xcc, 191},
		Background:      color.NRGBA{0x00, 0x1a, 0x33, 0xff},
		ScanlineAlpha:   0.05,
		ScanlineSpacing: 4,
	}

	StyleMinimal = Style{
		Name:            "minimal",
		Accent:          color.NRGBA{0xff, 0xff, 0xff, 0xff},
		Glow:            color.NRGBA{0xff, 0xff, 0xff, 20},
		Scanline:        color.NRGBA{0xcc, 0xcc, 0xcc, 191},
		Background:      color.NRGBA{0x0a, 0x0a, 0x0a, 0xff},
		ScanlineAlpha:   0.03,
		ScanlineSpacing: 4,
	}

	Styles = map[string]Style{
		StyleViolet.Name:  StyleViolet,
		StyleRetro.Name:   StyleRetro,
		StyleOcean.Name:   StyleOcean,
		StyleMinimal.Name: StyleMinimal,
	}
)

// LookupStyle returns the named palette.
func LookupStyle(name string) (Style, error) {
	s, ok := Styles[name]
	if !ok {
		return Style{}, fmt.Errorf("unknown style %q (available: %v)", name, StyleNames())
	}
	return s, nil
}

func StyleNames() []string {
	names := make([]string, 0, len(Styles))
	for n := range Styles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ParseHex parses "#rrggbb" or "#rrggbbaa".
func ParseHex(s string) (color.NRGBA, error) {
	c := color.NRGBA{A: 0xff}
	var err error
	switch len(s) {
	case 7:
		_, err = fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B)
	case 9:
		_, err = fmt.Sscanf(s, "#%02x%02x%02x%02x", &c.R, &c.G, &c.B, &c.A)
	default:
		err = fmt.Errorf("bad length")
	}
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return c, nil
}

// WithAccent derives glow and scanline colours from a single accent.
func (s Style) WithAccent(c color.NRGBA) Style {
	s.Accent = c
	s.Glow = WithAlpha(c, 0.14)
	s.Scanline = WithAlpha(c, 0.75)
	return s
}
