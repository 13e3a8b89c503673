// Package fileio reads and writes whole documents, transparently handling
// .xz and .gz compression chosen by file suffix.
package fileio

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/wildswap/core/errors"
	"github.com/FocuswithJustin/wildswap/internal/validation"
)

// Compression identifies how a document is stored on disk.
type Compression int

const (
	// CompressionNone stores the document as-is.
	CompressionNone Compression = iota
	// CompressionGzip uses gzip.
	CompressionGzip
	// CompressionXZ uses xz.
	CompressionXZ
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionXZ:
		return "xz"
	}
	return "none"
}

// CompressionFor picks the compression implied by path's suffix.
func CompressionFor(path string) Compression {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".xz"):
		return CompressionXZ
	case strings.HasSuffix(lower, ".gz"):
		return CompressionGzip
	}
	return CompressionNone
}

// unsupportedSuffixes are compressed containers that are recognized but not
// decoded.
var unsupportedSuffixes = []string{".bz2", ".zst", ".lz4", ".zip", ".7z"}

// CheckSupported rejects paths whose suffix names a compression this package
// cannot handle, so such files are never treated as plain documents.
func CheckSupported(path string) error {
	lower := strings.ToLower(path)
	for _, suffix := range unsupportedSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return errors.NewUnsupported("compression", suffix+" (use .xz or .gz)")
		}
	}
	return nil
}

// ReadFile reads the whole document at path, decompressing by suffix. Documents
// larger than validation.MaxFileSize after decompression are rejected.
func ReadFile(path string) ([]byte, error) {
	if err := validation.ValidatePath(path); err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	if err := CheckSupported(path); err != nil {
		return nil, errors.NewIO("read", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	defer f.Close()

	var reader io.Reader = f
	switch CompressionFor(path) {
	case CompressionXZ:
		xzr, err := xz.NewReader(f)
		if err != nil {
			return nil, errors.NewIO("read", path, fmt.Errorf("xz reader: %w", err))
		}
		reader = xzr
	case CompressionGzip:
		gzr, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.NewIO("read", path, fmt.Errorf("gzip reader: %w", err))
		}
		defer gzr.Close()
		reader = gzr
	}

	// Read one byte past the limit so oversize input is detected.
	data, err := io.ReadAll(io.LimitReader(reader, validation.MaxFileSize+1))
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	if err := validation.ValidateSize(int64(len(data))); err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	return data, nil
}
