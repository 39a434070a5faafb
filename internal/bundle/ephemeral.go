package bundle

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/zeebo/blake3"
	"golang.org/x/sys/unix"
)

const ephemeralPattern = "texfind-*"

type osProvider interface {
	CreateTemp(dir, pattern string) (*os.File, error)
	Open(name string) (*os.File, error)
	Remove(name string) error
}

type unixProvider interface {
	Open(path string, mode int, perm uint32) (int, error)
	Close(fd int) error
	Unlink(path string) error
}

// sourceReader remembers the last non-EOF error of the wrapped reader, so
// that decode failures can be told apart from write failures after a copy.
type sourceReader struct {
	reader io.Reader
	err    error
}

func (sr *sourceReader) Read(p []byte) (int, error) {
	n, err := sr.reader.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		sr.err = err
	}

	return n, err //nolint:wrapcheck
}

// Materializer turns a decoded byte stream into an ephemeral file: a file that
// is created, filled, reopened for reading and then unlinked, so that only the
// returned descriptor keeps its storage alive.
type Materializer struct {
	osHandler   osProvider
	unixHandler unixProvider
	tmpDir      string
	verify      bool
}

// NewMaterializer returns a pointer to a new [Materializer]. An empty tmpDir
// uses the default directory for temporary files. With verify set, every copy
// is read back and compared against the blake3 digest of the source stream.
func NewMaterializer(osHandler osProvider, unixHandler unixProvider, tmpDir string, verify bool) *Materializer {
	return &Materializer{
		osHandler:   osHandler,
		unixHandler: unixHandler,
		tmpDir:      tmpDir,
		verify:      verify,
	}
}

// Materialize copies r fully into a new ephemeral file and returns a read-only
// descriptor to it, which the caller owns. Failures reading r are reported as
// [ErrArchiveCorrupt], all others as [ErrFilesystem].
func (m *Materializer) Materialize(r io.Reader, name string) (int, error) {
	var unlinked bool

	tmpFile, err := m.osHandler.CreateTemp(m.tmpDir, ephemeralPattern)
	if err != nil {
		return -1, fmt.Errorf("%w: failed to create temporary file: %w", ErrFilesystem, err)
	}

	tmpPath := tmpFile.Name()
	defer func() {
		if !unlinked {
			m.osHandler.Remove(tmpPath) //nolint:errcheck
		}
	}()

	hasher := blake3.New()
	src := &sourceReader{reader: r}

	var dst io.Writer = tmpFile
	if m.verify {
		dst = io.MultiWriter(tmpFile, hasher)
	}

	written, err := io.Copy(dst, src)
	if err != nil {
		tmpFile.Close()

		if src.err != nil {
			return -1, fmt.Errorf("%w: failed to decode %s: %w", ErrArchiveCorrupt, name, err)
		}

		return -1, fmt.Errorf("%w: failed to copy %s: %w", ErrFilesystem, name, err)
	}

	if err := tmpFile.Close(); err != nil {
		return -1, fmt.Errorf("%w: failed to close temporary file: %w", ErrFilesystem, err)
	}

	fd, err := m.unixHandler.Open(tmpPath, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return -1, fmt.Errorf("%w: failed to reopen temporary file: %w", ErrFilesystem, err)
	}

	if m.verify {
		if err := m.verifyCopy(tmpPath, hasher.Sum(nil)); err != nil {
			m.unixHandler.Close(fd) //nolint:errcheck

			return -1, err
		}
	}

	if err := m.unixHandler.Unlink(tmpPath); err != nil {
		m.unixHandler.Close(fd) //nolint:errcheck

		return -1, fmt.Errorf("%w: failed to unlink temporary file: %w", ErrFilesystem, err)
	}
	unlinked = true

	slog.Debug("Materialized ephemeral copy",
		"name", name,
		"size", humanize.IBytes(uint64(written)), //nolint:gosec
	)

	return fd, nil
}

func (m *Materializer) verifyCopy(path string, want []byte) error {
	f, err := m.osHandler.Open(path)
	if err != nil {
		return fmt.Errorf("%w: failed to open copy for verification: %w", ErrFilesystem, err)
	}
	defer f.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return fmt.Errorf("%w: failed to read copy for verification: %w", ErrFilesystem, err)
	}

	if got := hasher.Sum(nil); !bytes.Equal(got, want) {
		return fmt.Errorf("%w: %w: %x (copy) != %x (source)", ErrFilesystem, ErrHashMismatch, got, want)
	}

	return nil
}
