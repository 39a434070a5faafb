package bundle

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// Container identifies the compression a bundle file is wrapped in.
type Container int

const (
	// ContainerNone is a plain bundle, readable at random.
	ContainerNone Container = iota
	// ContainerGzip is a gzip-wrapped bundle.
	ContainerGzip
	// ContainerXz is an xz-wrapped bundle.
	ContainerXz
	// ContainerZstd is a zstd-wrapped bundle.
	ContainerZstd
	// ContainerLZ4 is an lz4-wrapped bundle.
	ContainerLZ4
)

func (c Container) String() string {
	switch c {
	case ContainerNone:
		return "none"
	case ContainerGzip:
		return "gzip"
	case ContainerXz:
		return "xz"
	case ContainerZstd:
		return "zstd"
	case ContainerLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", int(c))
	}
}

// DetectContainer detects the container of a bundle from its file extension.
func DetectContainer(path string) Container {
	switch {
	case strings.HasSuffix(path, ".gz"):
		return ContainerGzip
	case strings.HasSuffix(path, ".xz"):
		return ContainerXz
	case strings.HasSuffix(path, ".zst"):
		return ContainerZstd
	case strings.HasSuffix(path, ".lz4"):
		return ContainerLZ4
	default:
		return ContainerNone
	}
}

func newContainerReader(c Container, r io.Reader) (io.ReadCloser, error) {
	switch c {
	case ContainerNone:
		return io.NopCloser(r), nil

	case ContainerGzip:
		return gzip.NewReader(r) //nolint:wrapcheck

	case ContainerXz:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		return io.NopCloser(xr), nil

	case ContainerZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		return zr.IOReadCloser(), nil

	case ContainerLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil

	default:
		return nil, fmt.Errorf("unsupported container: %s", c)
	}
}

// OpenSource opens the bundle at path as a random-access source. Plain
// bundles are opened as they are; compressed containers are decompressed into
// an ephemeral file first. The returned file is owned by the caller.
func (m *Materializer) OpenSource(path string) (*os.File, error) {
	f, err := m.osHandler.Open(path)
	if err != nil {
		return nil, fmt.Errorf("(bundle) %w: failed to open bundle: %w", ErrFilesystem, err)
	}

	container := DetectContainer(path)
	if container == ContainerNone {
		return f, nil
	}
	defer f.Close()

	cr, err := newContainerReader(container, f)
	if err != nil {
		return nil, fmt.Errorf("(bundle) %w: failed to decode %s container: %w", ErrArchiveCorrupt, container, err)
	}
	defer cr.Close()

	fd, err := m.Materialize(cr, path)
	if err != nil {
		return nil, fmt.Errorf("(bundle) %w", err)
	}

	slog.Debug("Decompressed bundle container",
		"path", path,
		"container", container,
	)

	return os.NewFile(uintptr(fd), path), nil
}
