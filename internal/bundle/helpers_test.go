package bundle

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertwitch/texfind/internal/schema"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
)

type fixtureEntry struct {
	name   string
	data   []byte
	method uint16
}

// buildBundle writes a zip bundle holding the given entries into memory.
func buildBundle(t *testing.T, entries ...fixtureEntry) []byte {
	t.Helper()

	var buf bytes.Buffer

	w := zip.NewWriter(&buf)
	w.RegisterCompressor(zstd.ZipMethodWinZip, zstd.ZipCompressor())

	for _, e := range entries {
		fw, err := w.CreateHeader(&zip.FileHeader{
			Name:   e.name,
			Method: e.method,
		})
		require.NoError(t, err)

		if e.data != nil {
			_, err = fw.Write(e.data)
			require.NoError(t, err)
		}
	}

	require.NoError(t, w.Close())

	return buf.Bytes()
}

// newTestFinder returns a [Finder] over an in-memory bundle, materializing
// into its own temporary directory.
func newTestFinder(t *testing.T, data []byte) (*Finder, string) {
	t.Helper()

	tmpDir := t.TempDir()
	m := NewMaterializer(&schema.OS{}, &schema.Unix{}, tmpDir, true)

	finder, err := NewFinder(bytes.NewReader(data), int64(len(data)), m)
	require.NoError(t, err)

	return finder, tmpDir
}

func requireEmptyDir(t *testing.T, dir string) {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries, "ephemeral files should be unlinked")
}

// failingOS fails the temporary file creation.
type failingOS struct {
	schema.OS
}

func (*failingOS) CreateTemp(_, _ string) (*os.File, error) {
	return nil, errors.New("read-only filesystem")
}

// tamperingOS hands out a different file when a copy is opened for
// verification.
type tamperingOS struct {
	schema.OS
	decoy string
}

func (o *tamperingOS) Open(_ string) (*os.File, error) {
	return os.Open(o.decoy)
}

func writeDecoy(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "decoy")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

// errReader returns some bytes and then fails.
type errReader struct {
	sent bool
}

func (r *errReader) Read(p []byte) (int, error) {
	if !r.sent {
		r.sent = true

		return copy(p, "partial"), nil
	}

	return 0, errors.New("unexpected end of stream")
}
