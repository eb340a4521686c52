package fluid

import "errors"

var (
	// ErrParamBounds indicates a parameter value outside its valid range.
	ErrParamBounds = errors.New("fluid: parameter out of valid bounds")

	// ErrUnknownParam indicates a parameter name with no matching field.
	ErrUnknownParam = errors.New("fluid: unknown parameter")
)
