// Package bundle provides the archive-backed store for resources. A [Finder]
// decodes the index of a zip bundle once and materializes matching entries as
// ephemeral, unlinked files, so that they can be handed out as seekable raw
// file descriptors like any file opened from disk.
package bundle

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/desertwitch/texfind/internal/descriptor"
	"github.com/desertwitch/texfind/internal/format"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

// Finder locates resources inside one decoded bundle.
type Finder struct {
	sync.Mutex
	index        map[string]*zip.File
	materializer *Materializer
}

// NewFinder decodes the bundle index from src and returns a pointer to a new
// [Finder]. A source that is not a valid bundle returns [ErrArchiveCorrupt].
func NewFinder(src io.ReaderAt, size int64, materializer *Materializer) (*Finder, error) {
	archive, err := zip.NewReader(src, size)
	if err != nil {
		return nil, fmt.Errorf("(bundle) %w: %w", ErrArchiveCorrupt, err)
	}

	archive.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())
	archive.RegisterDecompressor(zstd.ZipMethodPKWare, zstd.ZipDecompressor())

	index := make(map[string]*zip.File, len(archive.File))
	for _, file := range archive.File {
		if strings.HasSuffix(file.Name, "/") {
			continue
		}
		if _, exists := index[file.Name]; !exists {
			index[file.Name] = file
		}
	}

	slog.Debug("Decoded bundle index",
		"entries", len(index),
	)

	return &Finder{
		index:        index,
		materializer: materializer,
	}, nil
}

// Entries returns the sorted names of all file entries in the bundle.
func (f *Finder) Entries() []string {
	names := make([]string, 0, len(f.index))
	for name := range f.index {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Locate extracts the entry matching name, or name with the canonical
// extension of fmtType appended, into an ephemeral file. An absent entry
// returns (nil, nil); any returned error is unrecoverable.
func (f *Finder) Locate(name string, fmtType format.Format) (*descriptor.Descriptor, error) {
	f.Lock()
	defer f.Unlock()

	d, err := f.extract(name)
	if err != nil || d != nil {
		return d, err
	}

	if extName, ok := format.WithExtension(name, fmtType); ok {
		d, err = f.extract(extName)
		if err != nil || d != nil {
			return d, err
		}
	}

	slog.Warn("Failed to locate resource in bundle",
		"name", name,
		"format", fmtType,
	)

	return nil, nil //nolint:nilnil
}

// extract must be called with the [Finder] locked.
func (f *Finder) extract(name string) (*descriptor.Descriptor, error) {
	entry, ok := f.index[filepath.ToSlash(name)]
	if !ok {
		return nil, nil //nolint:nilnil
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("(bundle) %w: failed to open entry %s: %w", ErrArchiveCorrupt, entry.Name, err)
	}
	defer rc.Close()

	fd, err := f.materializer.Materialize(rc, entry.Name)
	if err != nil {
		return nil, fmt.Errorf("(bundle) %w", err)
	}

	return descriptor.New(fd, entry.Name, descriptor.Bundle), nil
}
