package streams

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
)

// GenuineStdout sends the standard output stream to the process's real
// standard output.
type GenuineStdout struct {
	Unavailable
	out io.Writer
}

// NewGenuineStdout returns a pointer to a new [GenuineStdout].
func NewGenuineStdout() *GenuineStdout {
	return &GenuineStdout{out: os.Stdout}
}

// OpenStdout returns a handle writing to standard output. Closing the handle
// leaves the process's standard output open.
func (g *GenuineStdout) OpenStdout() (OutputHandle, error) {
	return &writerOutput{Writer: g.out}, nil
}

type writerOutput struct {
	io.Writer
}

func (*writerOutput) Name() string { return "" }
func (*writerOutput) Close() error { return nil }

// BufferedPrimary serves the primary input from a single in-memory buffer, so
// that a single-pass source such as standard input can be read many times.
// The buffer is never modified after construction and every opened handle
// holds its own cursor over it.
type BufferedPrimary struct {
	Unavailable
	buffer []byte
}

// NewBufferedPrimary reads r to exhaustion and returns a pointer to a new
// [BufferedPrimary] over its contents.
func NewBufferedPrimary(r io.Reader) (*BufferedPrimary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("(streams) failed to buffer primary input: %w", err)
	}

	slog.Debug("Buffered primary input",
		"size", humanize.IBytes(uint64(len(data))),
	)

	return &BufferedPrimary{buffer: data}, nil
}

// BufferedPrimaryFromStdin buffers the process's standard input.
func BufferedPrimaryFromStdin() (*BufferedPrimary, error) {
	return NewBufferedPrimary(os.Stdin)
}

// BufferedPrimaryFromText returns a [BufferedPrimary] over the given text.
func BufferedPrimaryFromText(text string) *BufferedPrimary {
	return &BufferedPrimary{buffer: []byte(text)}
}

// OpenPrimaryInput returns a new, independent cursor over the shared buffer.
func (b *BufferedPrimary) OpenPrimaryInput() (InputHandle, error) {
	return &bufferInput{Reader: bytes.NewReader(b.buffer)}, nil
}

type bufferInput struct {
	*bytes.Reader
}

func (*bufferInput) Name() string { return "" }
func (*bufferInput) Close() error { return nil }

func (bi *bufferInput) Size() (int64, error) {
	return bi.Reader.Size(), nil
}
