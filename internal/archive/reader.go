// Package archive opens and creates the compressed files used by the pipeline.
// Wikimedia publishes dumps as .bz2 or .gz; .xz is accepted for locally
// recompressed copies. Anything else is read as plain text.
package archive

import (
	"bufio"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/wikiwsd/internal/validation"
)

// Compression identifies a file compression by its suffix.
type Compression string

const (
	None  Compression = ""
	Gzip  Compression = ".gz"
	Bzip2 Compression = ".bz2"
	XZ    Compression = ".xz"
)

// Detect returns the compression implied by the file name.
func Detect(path string) Compression {
	switch {
	case strings.HasSuffix(path, ".gz"):
		return Gzip
	case strings.HasSuffix(path, ".bz2"):
		return Bzip2
	case strings.HasSuffix(path, ".xz"):
		return XZ
	default:
		return None
	}
}

// Reader reads the decompressed content of a file.
type Reader struct {
	io.Reader
	file         *os.File
	decompressor io.Closer
}

// Open opens path and decompresses it according to its suffix. The suffix
// must match the leading bytes of the file.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	buffered := bufio.NewReaderSize(f, 1<<20)
	header, _ := buffered.Peek(validation.HeaderSize)
	if err := validation.CheckCompression(string(Detect(path)), header); err != nil {
		f.Close()
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	var reader io.Reader = buffered
	var decompressor io.Closer

	switch Detect(path) {
	case XZ:
		xzr, err := xz.NewReader(buffered)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("xz reader: %w", err)
		}
		reader = xzr
	case Gzip:
		gzr, err := gzip.NewReader(buffered)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		reader = gzr
		decompressor = gzr
	case Bzip2:
		reader = bzip2.NewReader(buffered)
	}

	return &Reader{
		Reader:       reader,
		file:         f,
		decompressor: decompressor,
	}, nil
}

// Close closes the reader and any underlying decompressors.
func (r *Reader) Close() error {
	var errs []error
	if r.decompressor != nil {
		if err := r.decompressor.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := r.file.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// ReadFile reads and decompresses a whole file.
func ReadFile(path string) ([]byte, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
