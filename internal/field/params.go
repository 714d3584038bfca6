package field

import "math"

const (
	DefaultGap         = 4
	DefaultRadius      = 130.0
	DefaultStrength    = 18.0
	DefaultFriction    = 0.82
	DefaultReturnForce = 0.09
)

// Params configures sampling density and pointer physics.
type Params struct {
	Gap         int     `yaml:"gap" json:"gap"`
	Radius      float64 `yaml:"radius" json:"radius"`
	Strength    float64 `yaml:"strength" json:"strength"`
	Friction    float64 `yaml:"friction" json:"friction"`
	ReturnForce float64 `yaml:"return_force" json:"return_force"`
}

func DefaultParams() Params {
	return Params{
		Gap:         DefaultGap,
		Radius:      DefaultRadius,
		Strength:    DefaultStrength,
		Friction:    DefaultFriction,
		ReturnForce: DefaultReturnForce,
	}
}

// Validate checks that sampling is possible and that the integrator damps.
func (p Params) Validate() error {
	if p.Gap < 1 {
		return ErrInvalidGap
	}
	if !(p.Radius > 0) || math.IsInf(p.Radius, 0) {
		return &ParamError{Name: "radius", Value: p.Radius, Wrapped: ErrParameterBounds}
	}
	if p.Strength < 0 || math.IsNaN(p.Strength) || math.IsInf(p.Strength, 0) {
		return &ParamError{Name: "strength", Value: p.Strength, Wrapped: ErrParameterBounds}
	}
	if !(p.Friction > 0 && p.Friction < 1) {
		return &ParamError{Name: "friction", Value: p.Friction, Wrapped: ErrUnstable}
	}
	if !(p.ReturnForce > 0 && p.ReturnForce < 1) {
		return &ParamError{Name: "return_force", Value: p.ReturnForce, Wrapped: ErrUnstable}
	}
	return nil
}

// GetParams exposes the tunable values by name for interactive hosts.
func (p Params) GetParams() map[string]float64 {
	return map[string]float64{
		"gap":          float64(p.Gap),
		"radius":       p.Radius,
		"strength":     p.Strength,
		"friction":     p.Friction,
		"return_force": p.ReturnForce,
	}
}

// SetParam returns a copy of p with one named value replaced.
func (p Params) SetParam(name string, value float64) (Params, error) {
	switch name {
	case "gap":
		p.Gap = int(math.Round(value))
	case "radius":
		p.Radius = value
	case "strength":
		p.Strength = value
	case "friction":
		p.Friction = value
	case "return_force":
		p.ReturnForce = value
	default:
		return p, &ParamError{Name: name, Value: value, Wrapped: ErrParameterBounds}
	}
	return p, p.Validate()
}
