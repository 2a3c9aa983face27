package cas

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/zeebo/blake3"
)

// Fingerprint is the BLAKE3-256 digest of a paragraph's text.
type Fingerprint [32]byte

// Sum computes the fingerprint of text.
func Sum(text string) Fingerprint {
	return blake3.Sum256([]byte(text))
}

// SumKeyed computes a fingerprint of text in the namespace key, so equal
// text under different keys (e.g. engine configurations) never collides.
func SumKeyed(key, text string) Fingerprint {
	h := blake3.New()
	h.Write([]byte(key))
	h.Write([]byte{0})
	h.Write([]byte(text))
	var fp Fingerprint
	copy(fp[:], h.Sum(nil))
	return fp
}

// Hex returns the lowercase hex form.
func (f Fingerprint) Hex() string {
	return hex.EncodeToString(f[:])
}

func (f Fingerprint) String() string {
	return f.Hex()
}

// ParseFingerprint parses a 64-character hex fingerprint.
func ParseFingerprint(s string) (Fingerprint, error) {
	var f Fingerprint
	if !isValidHash(s) {
		return f, ErrInvalidHash
	}
	if _, err := hex.Decode(f[:], []byte(s)); err != nil {
		return f, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	return f, nil
}

// Unit maps the fingerprint to a uniformly distributed value in [0, 1).
func (f Fingerprint) Unit() float64 {
	return float64(binary.BigEndian.Uint64(f[:8])>>11) / float64(uint64(1)<<53)
}

// Split names a dataset partition.
type Split string

const (
	Train Split = "train"
	Dev   Split = "dev"
	Test  Split = "test"
)

// Splits lists the partitions in export order.
var Splits = []Split{Train, Dev, Test}

// DefaultTestSetSizes are the dev and test fractions.
var DefaultTestSetSizes = []float64{0.15, 0.15}

// AssignSplit deterministically assigns a fingerprint to a partition.
// sizes[0] is the dev fraction and sizes[1] the test fraction; the rest is
// training data. The same text always lands in the same partition.
func AssignSplit(f Fingerprint, sizes []float64) Split {
	u := f.Unit()
	var dev, test float64
	if len(sizes) > 0 {
		dev = sizes[0]
	}
	if len(sizes) > 1 {
		test = sizes[1]
	}
	switch {
	case u < dev:
		return Dev
	case u < dev+test:
		return Test
	default:
		return Train
	}
}

// ValidateSizes checks that the fractions are non-negative and leave room
// for training data.
func ValidateSizes(sizes []float64) error {
	if len(sizes) > 2 {
		return fmt.Errorf("at most two test set sizes (dev, test), got %d", len(sizes))
	}
	total := 0.0
	for _, s := range sizes {
		if s < 0 || math.IsNaN(s) {
			return fmt.Errorf("invalid test set size %v", s)
		}
		total += s
	}
	if total >= 1 {
		return fmt.Errorf("test set sizes sum to %v, leaving no training data", total)
	}
	return nil
}
