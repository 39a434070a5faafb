package resolver

import "errors"

// ErrBundleAlreadyOpen occurs when a bundle is opened on a [Handler] that
// already holds one.
var ErrBundleAlreadyOpen = errors.New("a bundle is already open")
