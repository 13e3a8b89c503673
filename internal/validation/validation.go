// Package validation checks operator-supplied paths and input sizes before any
// file is touched.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Limits applied to operator input (CWE-400).
const (
	// MaxFileSize is the maximum accepted document size after decompression (256 MB).
	MaxFileSize = 256 << 20
	// MaxPathLength is the maximum allowed path length.
	MaxPathLength = 4096
)

// Common validation errors.
var (
	ErrPathTooLong      = errors.New("path too long")
	ErrInvalidCharacter = errors.New("invalid character in path")
	ErrEmptyPath        = errors.New("path cannot be empty")
	ErrFileTooLarge     = errors.New("file too large")
)

// ValidatePath checks a path for emptiness, length limits, and control characters.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}

	if len(path) > MaxPathLength {
		return ErrPathTooLong
	}

	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: null byte not allowed", ErrInvalidCharacter)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidCharacter)
		}
	}

	return nil
}

// ValidateSize rejects sizes above MaxFileSize.
func ValidateSize(size int64) error {
	if size > MaxFileSize {
		return fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrFileTooLarge, size, MaxFileSize)
	}
	return nil
}
