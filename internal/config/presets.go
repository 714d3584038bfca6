package config

import (
	"sort"

	"github.com/san-kum/dotportrait/internal/field"
)

// Presets are named field tunings applied over a config's field section.
var Presets = map[string]field.Params{
	"default": field.DefaultParams(),
	"dense": {
		Gap: 3, Radius: 110, Strength: 14, Friction: 0.84, ReturnForce: 0.08,
	},
	"sparse": {
		Gap: 7, Radius: 150, Strength: 20, Friction: 0.82, ReturnForce: 0.09,
	},
	"snappy": {
		Gap: 4, Radius: 130, Strength: 18, Friction: 0.7, ReturnForce: 0.2,
	},
	"soft": {
		Gap: 4, Radius: 180, Strength: 9, Friction: 0.9, ReturnForce: 0.04,
	},
}

func GetPreset(name string) (field.Params, bool) {
	p, ok := Presets[name]
	return p, ok
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyPreset replaces the field section with the named preset.
func (c *Config) ApplyPreset(name string) bool {
	p, ok := GetPreset(name)
	if ok {
		c.Field = p
	}
	return ok
}
