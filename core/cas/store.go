// Package cas provides content addressing for paragraphs: BLAKE3
// fingerprints, deterministic split assignment, and a blob store keyed by
// fingerprint that caches annotation results between runs.
package cas

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
)

// osRename is a variable to allow testing of rename errors.
var osRename = os.Rename

// tempFileWrite is a function variable for writing to temp files (for testing).
var tempFileWrite = func(f *os.File, data []byte) (int, error) {
	return f.Write(data)
}

// tempFileClose is a function variable for closing temp files (for testing).
var tempFileClose = func(f io.Closer) error {
	return f.Close()
}

// ErrBlobNotFound is returned when no blob exists for a fingerprint.
var ErrBlobNotFound = errors.New("blob not found")

// ErrInvalidHash is returned when a string is not a 64-character lowercase hex digest.
var ErrInvalidHash = errors.New("invalid hash format")

var hashPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Store keeps blobs on disk addressed by fingerprint.
type Store struct {
	root string
}

// NewStore creates a store at root, creating the directory structure if needed.
func NewStore(root string) (*Store, error) {
	blobDir := filepath.Join(root, "blobs", "blake3")
	if err := os.MkdirAll(blobDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	return &Store{root: root}, nil
}

// Put stores data under key. An existing blob is left untouched.
func (s *Store) Put(key Fingerprint, data []byte) error {
	blobPath := s.pathFor(key)
	if _, err := os.Stat(blobPath); err == nil {
		return nil
	}

	prefixDir := filepath.Dir(blobPath)
	if err := os.MkdirAll(prefixDir, 0755); err != nil {
		return fmt.Errorf("failed to create prefix directory: %w", err)
	}

	// Write atomically so concurrent readers never see partial blobs.
	tempFile, err := os.CreateTemp(prefixDir, ".blob-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFileWrite(tempFile, data); err != nil {
		tempFileClose(tempFile)
		os.Remove(tempPath)
		return fmt.Errorf("failed to write blob: %w", err)
	}
	if err := tempFileClose(tempFile); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := osRename(tempPath, blobPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename blob: %w", err)
	}
	return nil
}

// Get returns the blob stored under key, or ErrBlobNotFound.
func (s *Store) Get(key Fingerprint) ([]byte, error) {
	data, err := os.ReadFile(s.pathFor(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	return data, nil
}

// Exists reports whether a blob is stored under key.
func (s *Store) Exists(key Fingerprint) bool {
	_, err := os.Stat(s.pathFor(key))
	return err == nil
}

// pathFor returns <root>/blobs/blake3/<first2>/<hex>.
func (s *Store) pathFor(key Fingerprint) string {
	h := key.Hex()
	return filepath.Join(s.root, "blobs", "blake3", h[:2], h)
}

func isValidHash(hash string) bool {
	return hashPattern.MatchString(hash)
}
