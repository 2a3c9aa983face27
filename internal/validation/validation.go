// Package validation checks names and file headers supplied on the command line.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// MaxNameLength is the maximum length of a name used as a file or directory.
const MaxNameLength = 255

// Common validation errors.
var (
	ErrInvalidName  = errors.New("invalid name")
	ErrNameTooLong  = errors.New("name too long")
	ErrTypeMismatch = errors.New("file type mismatch")
)

// ValidateName checks that name can be used as a single path element.
// It rejects path separators, control characters and reserved names.
func ValidateName(name string) error {
	if name == "" {
		return ErrInvalidName
	}
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%w: reserved name", ErrInvalidName)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: path separator not allowed", ErrInvalidName)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidName)
		}
	}
	if strings.HasPrefix(name, "-") {
		return fmt.Errorf("%w: cannot start with hyphen", ErrInvalidName)
	}
	return nil
}

// HeaderSize is the number of leading bytes DetectCompression inspects.
const HeaderSize = 6

// magicBytes are the signatures of the supported compressions.
var magicBytes = []struct {
	suffix string
	magic  []byte
}{
	{".gz", []byte{0x1f, 0x8b}},
	{".bz2", []byte("BZh")},
	{".xz", []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}},
}

// DetectCompression returns the file suffix of the compression whose
// signature starts header, or "" for none.
func DetectCompression(header []byte) string {
	for _, sig := range magicBytes {
		if bytes.HasPrefix(header, sig.magic) {
			return sig.suffix
		}
	}
	return ""
}

// CheckCompression reports ErrTypeMismatch when a file named with the
// compression suffix want starts with a different signature. Uncompressed
// content is only reported when it is not text.
func CheckCompression(want string, header []byte) error {
	got := DetectCompression(header)
	if got == want && (want != "" || isLikelyText(header)) {
		return nil
	}
	switch {
	case got == want:
		got = "binary"
	case got == "":
		got = "uncompressed"
	}
	if want == "" {
		want = "uncompressed"
	}
	return fmt.Errorf("%w: name suggests %s but content is %s", ErrTypeMismatch, want, got)
}

// isLikelyText reports whether buf contains no NUL bytes and mostly
// printable characters. Empty input counts as text.
func isLikelyText(buf []byte) bool {
	if len(buf) == 0 {
		return true
	}
	if bytes.IndexByte(buf, 0) != -1 {
		return false
	}
	printable, control := 0, 0
	for _, b := range buf {
		switch {
		case b == '\t' || b == '\n' || b == '\r':
			printable++
		case b < 0x20 || b == 0x7f:
			control++
		default:
			// UTF-8 lead and continuation bytes count as printable.
			printable++
		}
	}
	return float64(printable)/float64(printable+control) > 0.95
}
