package resolver

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/desertwitch/texfind/internal/bundle"
	"github.com/desertwitch/texfind/internal/descriptor"
	"github.com/desertwitch/texfind/internal/format"
	"github.com/desertwitch/texfind/internal/resolver/mocks"
	"github.com/desertwitch/texfind/internal/schema"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

const openMode = unix.O_RDONLY | unix.O_CLOEXEC

func writeBundle(t *testing.T, entries map[string][]byte) string {
	t.Helper()

	var buf bytes.Buffer

	w := zip.NewWriter(&buf)
	for name, data := range entries {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "bundle.zip")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	return path
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	m := bundle.NewMaterializer(&schema.OS{}, &schema.Unix{}, t.TempDir(), false)

	return NewHandler(&schema.Unix{}, m)
}

func contentOf(t *testing.T, d *descriptor.Descriptor) []byte {
	t.Helper()

	f, err := d.File()
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)

	return data
}

// TestResolve_Direct_Success tests that a file on disk never consults the
// bundle.
func TestResolve_Direct_Success(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "story.tex")
	require.NoError(t, os.WriteFile(path, []byte("Hello \\TeX"), 0o600))

	locMock := mocks.NewLocator(t)
	handler := newTestHandler(t)
	handler.finder = locMock

	d, err := handler.Resolve(path, format.TeXSource, true)
	require.NoError(t, err)
	require.NotNil(t, d)

	assert.Equal(t, descriptor.Filesystem, d.Origin())
	assert.Equal(t, "Hello \\TeX", string(contentOf(t, d)))

	locMock.AssertNotCalled(t, "Locate")
}

// TestResolve_DirectExtension_Success tests the extension-augmented path on
// disk, again without consulting the bundle.
func TestResolve_DirectExtension_Success(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cmr10.tfm"), []byte("metrics"), 0o600))

	locMock := mocks.NewLocator(t)
	handler := newTestHandler(t)
	handler.finder = locMock

	d, err := handler.Resolve(filepath.Join(dir, "cmr10"), format.TFM, false)
	require.NoError(t, err)
	require.NotNil(t, d)

	assert.Equal(t, filepath.Join(dir, "cmr10.tfm"), d.Name())
	assert.Equal(t, "metrics", string(contentOf(t, d)))

	locMock.AssertNotCalled(t, "Locate")
}

// TestResolve_Bundle_Success tests the fallback into an opened bundle.
func TestResolve_Bundle_Success(t *testing.T) {
	t.Parallel()

	tfm := []byte{0x01, 0x02, 0x03, 0x00, 0xFE}
	handler := newTestHandler(t)
	require.NoError(t, handler.OpenBundle(writeBundle(t, map[string][]byte{
		"cmr10.tfm": tfm,
	})))
	assert.True(t, handler.HasBundle())
	assert.Equal(t, []string{"cmr10.tfm"}, handler.Entries())

	d, err := handler.Resolve("cmr10", format.TFM, true)
	require.NoError(t, err)
	require.NotNil(t, d)

	assert.Equal(t, descriptor.Bundle, d.Origin())
	assert.Equal(t, tfm, contentOf(t, d))
}

// TestResolve_NotFound_Success tests that absence everywhere is not an error.
func TestResolve_NotFound_Success(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)
	require.NoError(t, handler.OpenBundle(writeBundle(t, map[string][]byte{
		"cmr10.tfm": []byte("x"),
	})))

	for _, mustExist := range []bool{false, true} {
		d, err := handler.Resolve("cmr17", format.TFM, mustExist)
		require.NoError(t, err)
		assert.Nil(t, d)
	}
}

// TestResolve_NoBundle_Success tests resolution without an opened bundle.
func TestResolve_NoBundle_Success(t *testing.T) {
	t.Parallel()

	unixMock := mocks.NewUnixProvider(t)
	unixMock.On("Open", "cmr10", openMode, uint32(0)).Return(-1, unix.ENOENT)
	unixMock.On("Open", "cmr10.tfm", openMode, uint32(0)).Return(-1, unix.ENOENT)

	handler := NewHandler(unixMock, nil)

	d, err := handler.Resolve("cmr10", format.TFM, false)
	require.NoError(t, err)
	assert.Nil(t, d)
	assert.False(t, handler.HasBundle())
	assert.Nil(t, handler.Entries())
}

// TestResolve_Order_Success tests the order of the fallback chain.
func TestResolve_Order_Success(t *testing.T) {
	t.Parallel()

	unixMock := mocks.NewUnixProvider(t)
	locMock := mocks.NewLocator(t)

	first := unixMock.On("Open", "cmr10", openMode, uint32(0)).Return(-1, unix.ENOENT).Once()
	second := unixMock.On("Open", "cmr10.tfm", openMode, uint32(0)).Return(-1, unix.EACCES).Once().NotBefore(first)
	locMock.On("Locate", "cmr10", format.TFM).Return(nil, nil).Once().NotBefore(second)

	handler := NewHandler(unixMock, nil)
	handler.finder = locMock

	d, err := handler.ResolveCode("cmr10", format.CodeTFM, false)
	require.NoError(t, err)
	assert.Nil(t, d)
}

// TestResolveCode_Unmapped_Success tests that unknown codes skip any lookup.
func TestResolveCode_Unmapped_Success(t *testing.T) {
	t.Parallel()

	unixMock := mocks.NewUnixProvider(t)
	locMock := mocks.NewLocator(t)

	handler := NewHandler(unixMock, nil)
	handler.finder = locMock

	d, err := handler.ResolveCode("cmr10", 99, true)
	require.NoError(t, err)
	assert.Nil(t, d)

	unixMock.AssertNotCalled(t, "Open")
	locMock.AssertNotCalled(t, "Locate")
}

// TestResolve_Fail_BundleError tests that bundle failures are passed on.
func TestResolve_Fail_BundleError(t *testing.T) {
	t.Parallel()

	unixMock := mocks.NewUnixProvider(t)
	unixMock.On("Open", "broken", openMode, uint32(0)).Return(-1, unix.ENOENT)
	unixMock.On("Open", "broken.tex", openMode, uint32(0)).Return(-1, unix.ENOENT)

	locMock := mocks.NewLocator(t)
	locMock.On("Locate", "broken", format.TeXSource).Return(nil, bundle.ErrArchiveCorrupt)

	handler := NewHandler(unixMock, nil)
	handler.finder = locMock

	d, err := handler.Resolve("broken", format.TeXSource, false)
	require.ErrorIs(t, err, bundle.ErrArchiveCorrupt)
	assert.Nil(t, d)
}

// TestOpenBundle_Fail_NotAnArchive tests that a non-bundle fails startup with
// a decode error instead of resolving nothing.
func TestOpenBundle_Fail_NotAnArchive(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bundle.zip")
	require.NoError(t, os.WriteFile(path, []byte("plain text, no archive"), 0o600))

	handler := newTestHandler(t)

	err := handler.OpenBundle(path)
	require.ErrorIs(t, err, bundle.ErrArchiveCorrupt)
	assert.False(t, handler.HasBundle())
}

// TestOpenBundle_Fail_Missing tests a bundle path that cannot be opened.
func TestOpenBundle_Fail_Missing(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)

	err := handler.OpenBundle(filepath.Join(t.TempDir(), "missing.zip"))
	require.ErrorIs(t, err, bundle.ErrFilesystem)
	assert.False(t, handler.HasBundle())
}

// TestOpenBundle_Fail_Twice tests that only one bundle is ever held.
func TestOpenBundle_Fail_Twice(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)
	require.NoError(t, handler.OpenBundle(writeBundle(t, map[string][]byte{"a.tex": []byte("a")})))

	err := handler.OpenBundle(writeBundle(t, map[string][]byte{"b.tex": []byte("b")}))
	require.ErrorIs(t, err, ErrBundleAlreadyOpen)
	assert.Equal(t, []string{"a.tex"}, handler.Entries())
}

// TestResolve_Concurrent_Success tests concurrent resolutions from a bundle.
func TestResolve_Concurrent_Success(t *testing.T) {
	t.Parallel()

	entries := map[string][]byte{
		"cmr10.tfm": bytes.Repeat([]byte{0x10}, 4096),
		"cmr12.tfm": bytes.Repeat([]byte{0x12}, 8192),
		"plain.fmt": bytes.Repeat([]byte("fmt"), 1000),
	}

	handler := newTestHandler(t)
	require.NoError(t, handler.OpenBundle(writeBundle(t, entries)))

	requests := []struct {
		name   string
		format format.Format
		entry  string
	}{
		{"cmr10", format.TFM, "cmr10.tfm"},
		{"cmr12", format.TFM, "cmr12.tfm"},
		{"plain", format.PrecompiledFormat, "plain.fmt"},
	}

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		req := requests[i%len(requests)]

		wg.Add(1)
		go func() {
			defer wg.Done()

			d, err := handler.Resolve(req.name, req.format, false)
			if !assert.NoError(t, err) || !assert.NotNil(t, d) {
				return
			}

			f, err := d.File()
			if !assert.NoError(t, err) {
				return
			}
			defer f.Close()

			data, err := io.ReadAll(f)
			assert.NoError(t, err)
			assert.Equal(t, entries[req.entry], data)
		}()
	}
	wg.Wait()
}
