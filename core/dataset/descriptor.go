// Package dataset exports the prepared corpus as word sense disambiguation
// training data.
//
// Each output is described by a Descriptor and written as one TSV file per
// split, with one example per link:
//
//	<target title>\t<context>
//
// The context is the sentence or paragraph around the link, rendered as
// words or lemmas, optionally lower-cased, without punctuation, with POS
// tags, and grouped into n-grams. The link's own tokens are enclosed in
// <t> and </t>.
package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/wikiwsd/core/errors"
	"github.com/FocuswithJustin/wikiwsd/internal/validation"
)

// Descriptor describes one output dataset.
type Descriptor struct {
	Name              string
	NGramSize         int
	Caseless          bool
	IgnorePunctuation bool
	AddPOSTags        bool
	UsesLemma         bool
	UsesSentences     bool
}

// descriptorFields is the number of comma-separated fields of a descriptor.
const descriptorFields = 7

// ParseDescriptor parses "name,n,caseless,punct,pos,lemma,sentences", for
// example "s_out,1,0,0,1,1,1". Flags are integers; any non-zero value is true.
func ParseDescriptor(s string) (Descriptor, error) {
	fields := strings.Split(s, ",")
	if len(fields) != descriptorFields {
		return Descriptor{}, errors.NewParse("descriptor", "", fmt.Sprintf("%q has %d fields, want %d", s, len(fields), descriptorFields))
	}

	d := Descriptor{Name: strings.TrimSpace(fields[0])}
	if err := validation.ValidateName(d.Name); err != nil {
		return Descriptor{}, errors.NewValidation("descriptor name", fmt.Sprintf("%q: %v", d.Name, err))
	}

	nums := make([]int, descriptorFields-1)
	for i, f := range fields[1:] {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return Descriptor{}, errors.NewParse("descriptor", "", fmt.Sprintf("%q: field %d: %v", s, i+2, err))
		}
		nums[i] = n
	}
	if nums[0] < 1 {
		return Descriptor{}, errors.NewValidation("n-gram size", fmt.Sprintf("must be at least 1, got %d", nums[0]))
	}

	d.NGramSize = nums[0]
	d.Caseless = nums[1] != 0
	d.IgnorePunctuation = nums[2] != 0
	d.AddPOSTags = nums[3] != 0
	d.UsesLemma = nums[4] != 0
	d.UsesSentences = nums[5] != 0
	return d, nil
}

// ParseDescriptors parses several descriptors. Names must be unique.
func ParseDescriptors(specs []string) ([]Descriptor, error) {
	if len(specs) == 0 {
		return nil, errors.NewValidation("descriptors", "at least one is required")
	}
	seen := make(map[string]bool, len(specs))
	descs := make([]Descriptor, 0, len(specs))
	for _, s := range specs {
		d, err := ParseDescriptor(s)
		if err != nil {
			return nil, err
		}
		if seen[d.Name] {
			return nil, errors.NewValidation("descriptor name", fmt.Sprintf("%q is used twice", d.Name))
		}
		seen[d.Name] = true
		descs = append(descs, d)
	}
	return descs, nil
}

// String formats d in the form accepted by ParseDescriptor.
func (d Descriptor) String() string {
	return fmt.Sprintf("%s,%d,%d,%d,%d,%d,%d", d.Name, d.NGramSize,
		flag(d.Caseless), flag(d.IgnorePunctuation), flag(d.AddPOSTags), flag(d.UsesLemma), flag(d.UsesSentences))
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}
