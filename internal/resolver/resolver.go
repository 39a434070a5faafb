// Package resolver implements the fallback chain that turns a logical resource
// name and its format into an open, owned file descriptor.
//
// Resolution order is: the name as a filesystem path, the name with the
// canonical extension of its format as a filesystem path, and finally the
// opened bundle (if any). Direct filesystem presence always wins.
package resolver

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/desertwitch/texfind/internal/bundle"
	"github.com/desertwitch/texfind/internal/descriptor"
	"github.com/desertwitch/texfind/internal/format"
	"golang.org/x/sys/unix"
)

type unixProvider interface {
	Open(path string, mode int, perm uint32) (int, error)
}

type sourceProvider interface {
	OpenSource(path string) (*os.File, error)
}

type locator interface {
	Locate(name string, fmtType format.Format) (*descriptor.Descriptor, error)
	Entries() []string
}

// Handler is the principal implementation of the resource resolver. It holds
// at most one bundle for its entire lifetime, and all resolutions are
// serialized on its lock.
type Handler struct {
	sync.Mutex
	unixHandler  unixProvider
	materializer *bundle.Materializer
	source       *os.File
	finder       locator
}

// NewHandler returns a pointer to a new, bundle-less resolver [Handler].
func NewHandler(unixHandler unixProvider, materializer *bundle.Materializer) *Handler {
	return &Handler{
		unixHandler:  unixHandler,
		materializer: materializer,
	}
}

// OpenBundle opens the bundle at path and makes it the archive backing store
// of the [Handler]. It is a one-time startup action: a failure here is
// unrecoverable, and a second call returns [ErrBundleAlreadyOpen].
func (r *Handler) OpenBundle(path string) error {
	r.Lock()
	defer r.Unlock()

	if r.finder != nil {
		return fmt.Errorf("(resolver) %w: %s", ErrBundleAlreadyOpen, path)
	}

	return r.openBundle(path, r.materializer)
}

func (r *Handler) openBundle(path string, src sourceProvider) error {
	f, err := src.OpenSource(path)
	if err != nil {
		return fmt.Errorf("(resolver) %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()

		return fmt.Errorf("(resolver) %w: failed to stat bundle: %w", bundle.ErrFilesystem, err)
	}

	finder, err := bundle.NewFinder(f, info.Size(), r.materializer)
	if err != nil {
		f.Close()

		return fmt.Errorf("(resolver) %w", err)
	}

	r.source = f
	r.finder = finder

	slog.Info("Opened bundle",
		"path", path,
		"entries", len(finder.Entries()),
	)

	return nil
}

// HasBundle returns whether a bundle was opened.
func (r *Handler) HasBundle() bool {
	r.Lock()
	defer r.Unlock()

	return r.finder != nil
}

// Entries returns the sorted entry names of the opened bundle, or nil if no
// bundle was opened.
func (r *Handler) Entries() []string {
	r.Lock()
	defer r.Unlock()

	if r.finder == nil {
		return nil
	}

	return r.finder.Entries()
}

// Resolve resolves name of format fmtType to an owned [descriptor.Descriptor].
// A resource that exists in none of the stores returns (nil, nil); any
// returned error is unrecoverable ([bundle.ErrArchiveCorrupt] or
// [bundle.ErrFilesystem]).
//
// The mustExist flag is accepted but does not change the behavior.
func (r *Handler) Resolve(name string, fmtType format.Format, mustExist bool) (*descriptor.Descriptor, error) {
	_ = mustExist

	r.Lock()
	defer r.Unlock()

	if d := r.openDirect(name); d != nil {
		return d, nil
	}

	if extName, ok := format.WithExtension(name, fmtType); ok {
		if d := r.openDirect(extName); d != nil {
			return d, nil
		}
	}

	if r.finder == nil {
		slog.Debug("Resource not found and no bundle opened",
			"name", name,
			"format", fmtType,
		)

		return nil, nil //nolint:nilnil
	}

	d, err := r.finder.Locate(name, fmtType)
	if err != nil {
		return nil, fmt.Errorf("(resolver) %w", err)
	}

	return d, nil
}

// ResolveCode is [Handler.Resolve] for a numeric resource class code of the
// host engine. Unknown codes are skipped without any lookup and return
// (nil, nil).
func (r *Handler) ResolveCode(name string, code int, mustExist bool) (*descriptor.Descriptor, error) {
	fmtType, ok := format.Classify(code)
	if !ok {
		slog.Debug("Skipped resolution for unknown format code",
			"name", name,
			"code", code,
		)

		return nil, nil //nolint:nilnil
	}

	return r.Resolve(name, fmtType, mustExist)
}

func (r *Handler) openDirect(path string) *descriptor.Descriptor {
	fd, err := r.unixHandler.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		if !errors.Is(err, unix.ENOENT) {
			slog.Debug("Failed to open resource from filesystem",
				"path", path,
				"err", err,
			)
		}

		return nil
	}

	return descriptor.New(fd, path, descriptor.Filesystem)
}
