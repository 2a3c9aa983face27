package dataset

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/FocuswithJustin/wikiwsd/core/annotate"
)

// Markers around the tokens of the disambiguated phrase.
const (
	TargetOpen  = "<t>"
	TargetClose = "</t>"
)

const (
	posSeparator   = "|"
	ngramSeparator = "_"
)

var lower = cases.Lower(language.Und)

// Render returns the context of the phrase spanning the character offsets
// [start, end) of ann. ok is false when no rendered token overlaps the span.
func (d Descriptor) Render(ann annotate.Paragraph, start, end int) (text string, ok bool) {
	tokens := ann.Tokens()
	if d.UsesSentences {
		tokens = sentenceAt(ann, start, end)
	}

	var before, target, after []string
	for _, t := range tokens {
		if d.skip(t) {
			continue
		}
		w := d.word(t)
		switch {
		case t.Start < end && t.End > start:
			target = append(target, w)
		case t.End <= start:
			before = append(before, w)
		default:
			after = append(after, w)
		}
	}
	if len(target) == 0 {
		return "", false
	}

	items := make([]string, 0, len(before)+len(target)+len(after)+2)
	items = append(items, d.grams(before)...)
	items = append(items, TargetOpen)
	items = append(items, d.grams(target)...)
	items = append(items, TargetClose)
	items = append(items, d.grams(after)...)
	return strings.Join(items, " "), true
}

// sentenceAt returns the tokens of the first sentence overlapping [start, end).
func sentenceAt(ann annotate.Paragraph, start, end int) []annotate.Token {
	for _, s := range ann {
		for _, t := range s {
			if t.Start < end && t.End > start {
				return s
			}
		}
	}
	return nil
}

func (d Descriptor) skip(t annotate.Token) bool {
	if t.POS == "SPACE" || strings.TrimSpace(t.Value) == "" {
		return true
	}
	if d.IgnorePunctuation {
		return t.POS == "PUNCT" || t.POS == "SYM" || isPunctuation(t.Value)
	}
	return false
}

func isPunctuation(s string) bool {
	for _, r := range s {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return true
}

func (d Descriptor) word(t annotate.Token) string {
	w := t.Value
	if d.UsesLemma && t.Lemma != "" {
		w = t.Lemma
	}
	if d.Caseless {
		w = lower.String(w)
	}
	// Items are separated by spaces and lines by newlines.
	w = strings.Join(strings.Fields(w), ngramSeparator)
	if d.AddPOSTags && t.POS != "" {
		w += posSeparator + t.POS
	}
	return w
}

// grams returns the sliding n-grams of words. Fewer than n words form a
// single shorter gram.
func (d Descriptor) grams(words []string) []string {
	n := d.NGramSize
	if n <= 1 || len(words) == 0 {
		return words
	}
	if len(words) <= n {
		return []string{strings.Join(words, ngramSeparator)}
	}
	grams := make([]string, 0, len(words)-n+1)
	for i := 0; i+n <= len(words); i++ {
		grams = append(grams, strings.Join(words[i:i+n], ngramSeparator))
	}
	return grams
}
