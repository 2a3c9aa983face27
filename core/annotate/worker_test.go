package annotate

import (
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/FocuswithJustin/wikiwsd/core/engine"
)

func stubEngine(units []engine.Unit) engine.Engine {
	return engine.Func(func(string) ([]engine.Unit, error) {
		return units, nil
	})
}

func TestAnnotateParagraph_DieBankIstAlt(t *testing.T) {
	eng := stubEngine([]engine.Unit{
		{Text: "Die", Lemma: "der", POS: "DET", Whitespace: " "},
		{Text: "Bank", Lemma: "Bank", POS: "NOUN", Whitespace: " "},
		{Text: "ist", Lemma: "sein", POS: "AUX", Whitespace: " "},
		{Text: "alt", Lemma: "alt", POS: "ADJ"},
		{Text: ".", Lemma: ".", POS: "PUNCT"},
	})

	p, err := annotateParagraph(eng, "Die Bank ist alt.", 0)
	if err != nil {
		t.Fatalf("annotateParagraph() error = %v", err)
	}
	if len(p) != 1 {
		t.Fatalf("len(sentences) = %d; want 1", len(p))
	}
	if len(p[0]) != 5 {
		t.Fatalf("len(tokens) = %d; want 5", len(p[0]))
	}

	want := [][2]int{{0, 3}, {4, 8}, {9, 12}, {13, 16}, {16, 17}}
	for i, tok := range p[0] {
		if tok.Start != want[i][0] || tok.End != want[i][1] {
			t.Errorf("token %d %q = [%d,%d]; want [%d,%d]", i, tok.Value, tok.Start, tok.End, want[i][0], want[i][1])
		}
	}

	if p[0][1].Lemma != "Bank" || p[0][1].POS != "NOUN" {
		t.Errorf("token 1 = %+v; want lemma Bank, pos NOUN", p[0][1])
	}
	if p[0][0].Before != "" || p[0][1].Before != " " || p[0][4].Before != "" {
		t.Errorf("unexpected Before separators: %q %q %q", p[0][0].Before, p[0][1].Before, p[0][4].Before)
	}
	if got := p.Text(); got != "Die Bank ist alt." {
		t.Errorf("Text() = %q", got)
	}
}

func TestAnnotateParagraph_Empty(t *testing.T) {
	eng := engine.Func(func(string) ([]engine.Unit, error) {
		t.Fatal("engine must not be called for empty text")
		return nil, nil
	})

	p, err := annotateParagraph(eng, "", 42)
	if err != nil {
		t.Fatalf("annotateParagraph() error = %v", err)
	}
	if p == nil || len(p) != 0 {
		t.Errorf("paragraph = %#v; want zero sentences", p)
	}
}

func TestAnnotateParagraph_Offsets(t *testing.T) {
	texts := []string{
		"Die Bank ist alt.",
		"  leading whitespace",
		"trailing whitespace \n",
		"tabs\tand\nnewlines   mixed",
		"Straße über Köln – 東京 ist groß",
		"single",
	}
	offsets := []int{0, 7, 1234}

	for _, text := range texts {
		for _, offset := range offsets {
			p, err := annotateParagraph(stubEngine(splitUnits(text)), text, offset)
			if err != nil {
				t.Fatalf("annotateParagraph(%q, %d) error = %v", text, offset, err)
			}
			if got := p.Text(); got != text {
				t.Errorf("round trip = %q; want %q", got, text)
			}

			limit := offset + utf8.RuneCountInString(text)
			last := offset
			for _, tok := range p.Tokens() {
				if tok.Start < offset || tok.End > limit {
					t.Errorf("%q@%d: token %q [%d,%d] outside [%d,%d]", text, offset, tok.Value, tok.Start, tok.End, offset, limit)
				}
				if tok.Start < last || tok.End < tok.Start {
					t.Errorf("%q@%d: token %q [%d,%d] not monotonic after %d", text, offset, tok.Value, tok.Start, tok.End, last)
				}
				last = tok.End
			}
		}
	}
}

func TestAnnotateParagraph_UnicodeSpans(t *testing.T) {
	p, err := annotateParagraph(stubEngine(splitUnits("Straße ist groß")), "Straße ist groß", 10)
	if err != nil {
		t.Fatal(err)
	}
	tokens := p.Tokens()
	if tokens[0].Start != 10 || tokens[0].End != 16 {
		t.Errorf("Straße = [%d,%d]; want [10,16]", tokens[0].Start, tokens[0].End)
	}
	if tokens[2].Start != 21 || tokens[2].End != 25 {
		t.Errorf("groß = [%d,%d]; want [21,25]", tokens[2].Start, tokens[2].End)
	}
}

func TestAnnotateParagraph_Mismatch(t *testing.T) {
	eng := stubEngine([]engine.Unit{
		{Text: "Die", Whitespace: " "},
		{Text: "Bank"},
	})

	p, err := annotateParagraph(eng, "Die  Bank", 0)
	if p != nil {
		t.Errorf("paragraph = %v; want nil on mismatch", p)
	}
	var re *ReconstructionError
	if !errors.As(err, &re) {
		t.Fatalf("error = %v; want *ReconstructionError", err)
	}
	if re.Want != "Die  Bank" || re.Got != "Die Bank" {
		t.Errorf("ReconstructionError = %+v", re)
	}
	if got := firstDifference(re.Want, re.Got); got != 4 {
		t.Errorf("firstDifference = %d; want 4", got)
	}
}

func TestAnnotateParagraph_EngineError(t *testing.T) {
	boom := errors.New("model not loaded")
	eng := engine.Func(func(string) ([]engine.Unit, error) {
		return nil, boom
	})

	if _, err := annotateParagraph(eng, "text", 0); !errors.Is(err, boom) {
		t.Errorf("error = %v; want wrapping %v", err, boom)
	}
}
