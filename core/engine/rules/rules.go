// Package rules provides a deterministic, dependency-free annotation engine.
//
// Tokens are words, numbers and single punctuation or symbol characters.
// Part-of-speech tags (Universal POS) come from closed-class word lists and
// suffix heuristics per language; lemmas come from an optional "form,lemma"
// dictionary. The engine is a baseline for tests and small corpora, not a
// substitute for a trained tagger.
//
// The engine registers itself under the kind "rules".
package rules

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/FocuswithJustin/wikiwsd/core/engine"
	"github.com/FocuswithJustin/wikiwsd/core/errors"
)

func init() {
	engine.Register("rules", func(cfg engine.Config) (engine.Engine, error) {
		return New(cfg)
	})
}

var reToken = regexp.MustCompile(`\p{L}[\p{L}\p{M}\p{N}'’\-]*|\p{N}+(?:[.,]\p{N}+)*|\S`)

// Engine is the rule-based engine.
type Engine struct {
	lang   *language
	lemmas map[string]string
}

// New builds an engine for cfg.Language ("en" or "de"), loading cfg.Lemmas if set.
func New(cfg engine.Config) (*Engine, error) {
	lang, ok := languages[strings.ToLower(cfg.Language)]
	if !ok {
		if cfg.Language != "" {
			return nil, errors.NewUnsupported("language "+cfg.Language, "rules engine supports en, de")
		}
		lang = languages["en"]
	}

	e := &Engine{lang: lang, lemmas: make(map[string]string)}
	if cfg.Lemmas != "" {
		if err := e.loadLemmas(cfg.Lemmas); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (e *Engine) loadLemmas(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.NewIO("open", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.Comment = '#'
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &errors.ParseError{Format: "lemma CSV", Path: path, Message: err.Error(), Err: err}
		}
		if len(rec) != 2 {
			continue
		}
		e.lemmas[rec[0]] = rec[1]
	}
}

// Annotate splits text into units. Leading whitespace becomes a SPACE unit so
// that the units always reproduce text.
func (e *Engine) Annotate(text string) ([]engine.Unit, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("rules: input is not valid UTF-8")
	}

	if text == "" {
		return nil, nil
	}

	matches := reToken.FindAllStringIndex(text, -1)
	units := make([]engine.Unit, 0, len(matches)+1)

	if len(matches) == 0 {
		return []engine.Unit{{Text: text, Lemma: text, POS: "SPACE"}}, nil
	}
	if lead := text[:matches[0][0]]; lead != "" {
		units = append(units, engine.Unit{Text: lead, Lemma: lead, POS: "SPACE"})
	}

	for i, m := range matches {
		next := len(text)
		if i+1 < len(matches) {
			next = matches[i+1][0]
		}
		word := text[m[0]:m[1]]
		pos := e.tag(word, i == 0)
		units = append(units, engine.Unit{
			Text:       word,
			Lemma:      e.lemma(word, pos),
			POS:        pos,
			Whitespace: text[m[1]:next],
		})
	}
	return units, nil
}

// Close does nothing.
func (e *Engine) Close() error {
	return nil
}

func (e *Engine) lemma(word, pos string) string {
	if l, ok := e.lemmas[word]; ok {
		return l
	}
	lower := strings.ToLower(word)
	if l, ok := e.lemmas[lower]; ok {
		return l
	}
	if pos == "PROPN" || (pos == "NOUN" && e.lang.capitalizedNouns) {
		return word
	}
	return lower
}

func (e *Engine) tag(word string, sentenceInitial bool) string {
	r, _ := utf8.DecodeRuneInString(word)
	switch {
	case unicode.IsNumber(r):
		return "NUM"
	case unicode.IsPunct(r):
		return "PUNCT"
	case !unicode.IsLetter(r):
		return "SYM"
	}

	lower := strings.ToLower(word)
	if tag, ok := e.lang.closed[lower]; ok {
		return tag
	}

	capitalized := unicode.IsUpper(r)
	if capitalized && e.lang.capitalizedNouns {
		return "NOUN"
	}
	if capitalized && !sentenceInitial {
		return "PROPN"
	}
	for _, s := range e.lang.suffixes {
		if strings.HasSuffix(lower, s.suffix) && utf8.RuneCountInString(lower) > utf8.RuneCountInString(s.suffix)+1 {
			return s.tag
		}
	}
	return e.lang.fallback
}
