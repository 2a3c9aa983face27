package archive

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ulikunitz/xz"
)

// Writer compresses into a file according to its suffix.
type Writer struct {
	*bufio.Writer
	file       *os.File
	compressor interface{ Close() error }
}

// Create creates path, including parent directories, and returns a writer
// that compresses with gzip or xz when the suffix asks for it. bzip2 output is
// not supported.
func Create(path string) (*Writer, error) {
	comp := Detect(path)
	if comp == Bzip2 {
		return nil, fmt.Errorf("unsupported output compression: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create parent directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	w := &Writer{file: f}
	switch comp {
	case Gzip:
		gw := gzip.NewWriter(f)
		w.compressor = gw
		w.Writer = bufio.NewWriter(gw)
	case XZ:
		xw, err := xz.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("xz writer: %w", err)
		}
		w.compressor = xw
		w.Writer = bufio.NewWriter(xw)
	default:
		w.Writer = bufio.NewWriter(f)
	}
	return w, nil
}

// Close flushes buffered data, finishes the compressed stream and closes the file.
func (w *Writer) Close() error {
	var errs []error
	if err := w.Flush(); err != nil {
		errs = append(errs, err)
	}
	if w.compressor != nil {
		if err := w.compressor.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := w.file.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
