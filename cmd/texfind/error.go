package main

import "errors"

var (
	// ErrNoBundle occurs when the bundle is to be listed, but none was
	// configured.
	ErrNoBundle = errors.New("no bundle configured")

	// ErrUnknownFormat occurs when the requested format code is not known.
	ErrUnknownFormat = errors.New("unknown format code")
)
