package streams

import "errors"

// ErrInvalidName occurs when an output name is not local to the output
// directory.
var ErrInvalidName = errors.New("output name is not a local path")
