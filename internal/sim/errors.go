package sim

import "errors"

// ErrCanceled indicates a run was interrupted by its context.
var ErrCanceled = errors.New("sim: run canceled")
