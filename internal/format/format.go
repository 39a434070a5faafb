package format

import (
	"path/filepath"
	"strings"
)

// Format is the internal tag of a resource class that can be resolved.
type Format int

const (
	// TFM is a TeX font metric file.
	TFM Format = iota
	// Picture is an included graphic.
	Picture
	// TeXSource is TeX input source text.
	TeXSource
	// PrecompiledFormat is a dumped format file.
	PrecompiledFormat
)

// Numeric resource class codes as defined by the host engine's ABI.
const (
	CodeTFM               = 3
	CodePrecompiledFormat = 10
	CodePicture           = 25
	CodeTeXSource         = 26
)

//nolint:gochecknoglobals
var codes = map[int]Format{
	CodeTFM:               TFM,
	CodePrecompiledFormat: PrecompiledFormat,
	CodePicture:           Picture,
	CodeTeXSource:         TeXSource,
}

// Classify maps a numeric resource class code of the host engine to a
// [Format]. Unknown codes return false and are meant to be skipped.
func Classify(code int) (Format, bool) {
	f, ok := codes[code]

	return f, ok
}

// Extension returns the canonical filename suffix for the [Format].
func (f Format) Extension() string {
	switch f {
	case TFM:
		return ".tfm"
	case Picture:
		return ".pdf"
	case TeXSource:
		return ".tex"
	case PrecompiledFormat:
		return ".fmt"
	default:
		return ""
	}
}

func (f Format) String() string {
	switch f {
	case TFM:
		return "tfm"
	case Picture:
		return "picture"
	case TeXSource:
		return "tex"
	case PrecompiledFormat:
		return "fmt"
	default:
		return "unknown"
	}
}

// WithExtension returns name with the canonical extension of f appended to
// its final path element. Names without a final element (empty, root, or
// ending in a separator) have no augmented form and return false.
func WithExtension(name string, f Format) (string, bool) {
	ext := f.Extension()
	if ext == "" || name == "" || strings.HasSuffix(name, "/") {
		return "", false
	}

	base := filepath.Base(name)
	if base == "." || base == ".." || base == "/" {
		return "", false
	}

	return name + ext, true
}
