// Package descriptor provides the owned handle around a raw OS file
// descriptor that is handed out for every resolved resource.
//
// A [Descriptor] has exactly one closer. Whoever receives it from a
// resolution is responsible for either closing it, converting it into an
// [os.File] (which then owns the descriptor) or releasing the raw descriptor
// to a consumer that will close it by its own means. After any of these, the
// [Descriptor] no longer refers to an open descriptor.
package descriptor

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// ErrReleased occurs when a [Descriptor] is used after it was closed,
// converted or released.
var ErrReleased = errors.New("descriptor already released")

// Origin describes which backing store a [Descriptor] was resolved from.
type Origin int

const (
	// Filesystem means the descriptor refers to a file opened by path.
	Filesystem Origin = iota
	// Bundle means the descriptor refers to an unlinked, ephemeral copy of
	// a bundle entry.
	Bundle
)

func (o Origin) String() string {
	switch o {
	case Filesystem:
		return "filesystem"
	case Bundle:
		return "bundle"
	default:
		return "unknown"
	}
}

// Descriptor is an owned, open OS-level file descriptor.
type Descriptor struct {
	fd       int
	name     string
	origin   Origin
	released atomic.Bool
}

// New returns a pointer to a new [Descriptor] taking ownership of fd. The name
// is the logical name of the resource the descriptor was resolved for.
func New(fd int, name string, origin Origin) *Descriptor {
	return &Descriptor{
		fd:     fd,
		name:   name,
		origin: origin,
	}
}

// Fd returns the raw descriptor without giving up ownership, or -1 if it was
// already released.
func (d *Descriptor) Fd() int {
	if d.released.Load() {
		return -1
	}

	return d.fd
}

// Name returns the logical resource name.
func (d *Descriptor) Name() string {
	return d.name
}

// Origin returns the backing store the descriptor came from.
func (d *Descriptor) Origin() Origin {
	return d.origin
}

// Size returns the current size of the underlying file.
func (d *Descriptor) Size() (int64, error) {
	if d.released.Load() {
		return 0, ErrReleased
	}

	var stat unix.Stat_t
	if err := unix.Fstat(d.fd, &stat); err != nil {
		return 0, fmt.Errorf("(descriptor) failed to fstat: %w", err)
	}

	return stat.Size, nil
}

// Release hands the raw descriptor over to the caller, who becomes its sole
// closer. It returns -1 if the descriptor was already released.
func (d *Descriptor) Release() int {
	if d.released.Swap(true) {
		return -1
	}

	return d.fd
}

// File converts the [Descriptor] into an [os.File], which from then on owns
// the descriptor.
func (d *Descriptor) File() (*os.File, error) {
	if d.released.Swap(true) {
		return nil, ErrReleased
	}

	return os.NewFile(uintptr(d.fd), d.name), nil
}

// Close closes the descriptor. Closing twice returns [ErrReleased].
func (d *Descriptor) Close() error {
	if d.released.Swap(true) {
		return ErrReleased
	}

	if err := unix.Close(d.fd); err != nil {
		return fmt.Errorf("(descriptor) failed to close: %w", err)
	}

	return nil
}
