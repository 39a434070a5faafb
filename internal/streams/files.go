package streams

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertwitch/texfind/internal/descriptor"
	"github.com/desertwitch/texfind/internal/format"
)

type resolverProvider interface {
	Resolve(name string, fmtType format.Format, mustExist bool) (*descriptor.Descriptor, error)
}

// ResolverInput serves named inputs through a resolver, so that they come from
// the filesystem or the bundle alike.
type ResolverInput struct {
	Unavailable
	resolver resolverProvider
	format   format.Format
}

// NewResolverInput returns a pointer to a new [ResolverInput] resolving names
// as fmtType.
func NewResolverInput(resolver resolverProvider, fmtType format.Format) *ResolverInput {
	return &ResolverInput{
		resolver: resolver,
		format:   fmtType,
	}
}

// OpenInput resolves name and returns a handle owning the resolved descriptor.
// Unresolvable names return [ErrNotAvailable].
func (ri *ResolverInput) OpenInput(name string) (InputHandle, error) {
	d, err := ri.resolver.Resolve(name, ri.format, true)
	if err != nil {
		return nil, fmt.Errorf("(streams) failed to resolve %s: %w", name, err)
	}
	if d == nil {
		return nil, ErrNotAvailable
	}

	f, err := d.File()
	if err != nil {
		return nil, fmt.Errorf("(streams) failed to convert descriptor: %w", err)
	}

	return &fileInput{File: f}, nil
}

type fileInput struct {
	*os.File
}

func (fi *fileInput) Size() (int64, error) {
	info, err := fi.Stat()
	if err != nil {
		return 0, fmt.Errorf("(streams) failed to stat: %w", err)
	}

	return info.Size(), nil
}

// DirOutput serves named outputs as files inside one directory.
type DirOutput struct {
	Unavailable
	dir string
}

// NewDirOutput returns a pointer to a new [DirOutput] writing into dir.
func NewDirOutput(dir string) *DirOutput {
	return &DirOutput{dir: dir}
}

// OpenOutput creates (or truncates) the named file in the output directory.
// Names that would leave the directory return [ErrInvalidName].
func (do *DirOutput) OpenOutput(name string) (OutputHandle, error) {
	if !filepath.IsLocal(name) {
		return nil, fmt.Errorf("(streams) %w: %s", ErrInvalidName, name)
	}

	f, err := os.Create(filepath.Join(do.dir, name))
	if err != nil {
		return nil, fmt.Errorf("(streams) failed to create output: %w", err)
	}

	return f, nil
}
