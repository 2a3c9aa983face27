package annotate

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	// ErrInvalidWorkers is returned when a pool is created with fewer than one worker.
	ErrInvalidWorkers = errors.New("annotate: worker count must be positive")

	// ErrClosed is returned when a pool or bridge is used after Close.
	ErrClosed = errors.New("annotate: already closed")

	// ErrTokenization matches every *TokenizationError.
	ErrTokenization = errors.New("annotate: tokenization failed")
)

// TokenizationError aborts a whole batch. JobID is the index of the first
// failed paragraph observed, which is not necessarily the lowest failing index.
type TokenizationError struct {
	JobID int
	Err   error
}

func (e *TokenizationError) Error() string {
	return fmt.Sprintf("tokenization failed for paragraph %d: %v", e.JobID, e.Err)
}

func (e *TokenizationError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrTokenization.
func (e *TokenizationError) Is(target error) bool {
	return target == ErrTokenization
}

// ReconstructionError reports engine output that does not recompose to the input.
type ReconstructionError struct {
	Want string
	Got  string
}

func (e *ReconstructionError) Error() string {
	return fmt.Sprintf("reconstructed text differs from input at character %d (want %d characters, got %d)",
		firstDifference(e.Want, e.Got), utf8.RuneCountInString(e.Want), utf8.RuneCountInString(e.Got))
}

// firstDifference returns the character index of the first rune where a and b differ.
func firstDifference(a, b string) int {
	i := 0
	for len(a) > 0 && len(b) > 0 {
		ra, na := utf8.DecodeRuneInString(a)
		rb, nb := utf8.DecodeRuneInString(b)
		if ra != rb {
			return i
		}
		a, b = a[na:], b[nb:]
		i++
	}
	return i
}
