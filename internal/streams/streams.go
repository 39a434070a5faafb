// Package streams provides named input and output streams to the host engine,
// independent of what backs them.
//
// A [Provider] serves some or all of the stream requests. Requests it does not
// serve return [ErrNotAvailable], which a [Chain] takes as the signal to ask
// the next provider. Any other error is a hard I/O failure and ends the
// request.
package streams

import (
	"errors"
	"io"
)

// ErrNotAvailable occurs when a [Provider] does not serve a request.
var ErrNotAvailable = errors.New("stream not available from this provider")

// InputHandle is a readable, seekable input stream of known size.
type InputHandle interface {
	io.ReadSeeker
	io.Closer
	Name() string
	Size() (int64, error)
}

// OutputHandle is a writable output stream.
type OutputHandle interface {
	io.WriteCloser
	Name() string
}

// Provider is the capability interface for stream acquisition.
type Provider interface {
	OpenPrimaryInput() (InputHandle, error)
	OpenInput(name string) (InputHandle, error)
	OpenStdout() (OutputHandle, error)
	OpenOutput(name string) (OutputHandle, error)
}

// Unavailable serves no request at all. Providers embed it and override only
// the requests they serve.
type Unavailable struct{}

// OpenPrimaryInput returns [ErrNotAvailable].
func (Unavailable) OpenPrimaryInput() (InputHandle, error) {
	return nil, ErrNotAvailable
}

// OpenInput returns [ErrNotAvailable].
func (Unavailable) OpenInput(string) (InputHandle, error) {
	return nil, ErrNotAvailable
}

// OpenStdout returns [ErrNotAvailable].
func (Unavailable) OpenStdout() (OutputHandle, error) {
	return nil, ErrNotAvailable
}

// OpenOutput returns [ErrNotAvailable].
func (Unavailable) OpenOutput(string) (OutputHandle, error) {
	return nil, ErrNotAvailable
}

// Chain is an ordered list of providers. Every request is passed along the
// list until a provider returns anything but [ErrNotAvailable].
type Chain []Provider

// OpenPrimaryInput opens the primary input from the first serving provider.
func (c Chain) OpenPrimaryInput() (InputHandle, error) {
	return first(c, func(p Provider) (InputHandle, error) {
		return p.OpenPrimaryInput()
	})
}

// OpenInput opens the named input from the first serving provider.
func (c Chain) OpenInput(name string) (InputHandle, error) {
	return first(c, func(p Provider) (InputHandle, error) {
		return p.OpenInput(name)
	})
}

// OpenStdout opens the standard output from the first serving provider.
func (c Chain) OpenStdout() (OutputHandle, error) {
	return first(c, func(p Provider) (OutputHandle, error) {
		return p.OpenStdout()
	})
}

// OpenOutput opens the named output from the first serving provider.
func (c Chain) OpenOutput(name string) (OutputHandle, error) {
	return first(c, func(p Provider) (OutputHandle, error) {
		return p.OpenOutput(name)
	})
}

func first[T any](c Chain, open func(Provider) (T, error)) (T, error) {
	var zero T

	for _, p := range c {
		h, err := open(p)
		if errors.Is(err, ErrNotAvailable) {
			continue
		}

		return h, err
	}

	return zero, ErrNotAvailable
}
