package field

import "errors"

// Domain errors for sampling and stepping.
var (
	// ErrNoImage indicates a rebuild was requested before any image was set.
	ErrNoImage = errors.New("field: no source image")

	// ErrEmptyImage indicates a source image with zero width or height.
	ErrEmptyImage = errors.New("field: source image has zero area")

	// ErrInvalidGap indicates a sampling stride below one pixel.
	ErrInvalidGap = errors.New("field: sampling gap must be a positive integer")

	// ErrUnstable indicates friction/return constants that would not damp motion.
	ErrUnstable = errors.New("field: physics constants do not damp motion")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("field: parameter out of valid bounds")
)

// ParamError wraps an error with the offending parameter.
type ParamError struct {
	Name    string
	Value   float64
	Wrapped error
}

func (e *ParamError) Error() string {
	return e.Wrapped.Error() + ": " + e.Name
}

func (e *ParamError) Unwrap() error {
	return e.Wrapped
}
