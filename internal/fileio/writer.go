package fileio

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/wildswap/core/errors"
	"github.com/FocuswithJustin/wildswap/internal/validation"
)

// WriteFile writes data to path, compressing by suffix. A failed write may leave
// a partial file behind.
func WriteFile(path string, data []byte) error {
	if err := validation.ValidatePath(path); err != nil {
		return errors.NewIO("write", path, err)
	}
	if err := CheckSupported(path); err != nil {
		return errors.NewIO("write", path, err)
	}

	outFile, err := os.Create(path)
	if err != nil {
		return errors.NewIO("create", path, err)
	}

	if err := writeCompressed(outFile, CompressionFor(path), data); err != nil {
		outFile.Close()
		return errors.NewIO("write", path, err)
	}
	if err := outFile.Close(); err != nil {
		return errors.NewIO("close", path, err)
	}
	return nil
}

func writeCompressed(w io.Writer, c Compression, data []byte) error {
	var cw io.WriteCloser
	switch c {
	case CompressionXZ:
		xzw, err := xz.NewWriter(w)
		if err != nil {
			return fmt.Errorf("xz writer: %w", err)
		}
		cw = xzw
	case CompressionGzip:
		cw = gzip.NewWriter(w)
	default:
		_, err := w.Write(data)
		return err
	}

	if _, err := cw.Write(data); err != nil {
		cw.Close()
		return err
	}
	return cw.Close()
}
