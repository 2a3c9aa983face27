package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FocuswithJustin/wikiwsd/core/engine"
)

func reconstruct(units []engine.Unit) string {
	var b strings.Builder
	for _, u := range units {
		b.WriteString(u.Text)
		b.WriteString(u.Whitespace)
	}
	return b.String()
}

func TestAnnotate_German(t *testing.T) {
	e, err := New(engine.Config{Kind: "rules", Language: "de"})
	if err != nil {
		t.Fatal(err)
	}

	units, err := e.Annotate("Die Bank ist alt.")
	if err != nil {
		t.Fatal(err)
	}

	want := []engine.Unit{
		{Text: "Die", Lemma: "die", POS: "DET", Whitespace: " "},
		{Text: "Bank", Lemma: "Bank", POS: "NOUN", Whitespace: " "},
		{Text: "ist", Lemma: "ist", POS: "AUX", Whitespace: " "},
		{Text: "alt", Lemma: "alt", POS: "ADJ"},
		{Text: ".", Lemma: ".", POS: "PUNCT"},
	}
	if len(units) != len(want) {
		t.Fatalf("got %d units, want %d: %+v", len(units), len(want), units)
	}
	for i := range want {
		if units[i] != want[i] {
			t.Errorf("unit %d = %+v, want %+v", i, units[i], want[i])
		}
	}
}

func TestAnnotate_English(t *testing.T) {
	e, err := New(engine.Config{Kind: "rules", Language: "en"})
	if err != nil {
		t.Fatal(err)
	}

	units, err := e.Annotate("She was quickly walking to Paris in 1998.")
	if err != nil {
		t.Fatal(err)
	}

	tags := make([]string, len(units))
	for i, u := range units {
		tags[i] = u.POS
	}
	got := strings.Join(tags, " ")
	want := "PRON AUX ADV VERB ADP PROPN ADP NUM PUNCT"
	if got != want {
		t.Errorf("tags = %q, want %q", got, want)
	}
}

func TestAnnotate_Reconstructs(t *testing.T) {
	e, err := New(engine.Config{Language: "en"})
	if err != nil {
		t.Fatal(err)
	}

	texts := []string{
		"",
		"   ",
		"  Leading and trailing  \n",
		"Hyphen-ated words, don't break; 3.14 and 1,000!",
		"Ünïcödé — “quotes” and 東京 ✓",
		"tab\tseparated\tvalues",
	}
	for _, text := range texts {
		units, err := e.Annotate(text)
		if err != nil {
			t.Fatalf("Annotate(%q) error = %v", text, err)
		}
		if text == "" {
			continue
		}
		if got := reconstruct(units); got != text {
			t.Errorf("reconstruct(Annotate(%q)) = %q", text, got)
		}
	}
}

func TestAnnotate_LeadingSpaceUnit(t *testing.T) {
	e, _ := New(engine.Config{Language: "en"})
	units, _ := e.Annotate("  word")
	if len(units) != 2 || units[0].POS != "SPACE" || units[0].Text != "  " {
		t.Errorf("units = %+v; want SPACE unit first", units)
	}
}

func TestAnnotate_InvalidUTF8(t *testing.T) {
	e, _ := New(engine.Config{Language: "en"})
	if _, err := e.Annotate("bad \xff byte"); err == nil {
		t.Error("expected error for invalid UTF-8")
	}
}

func TestLemmaDictionary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lemmas.csv")
	data := "# form,lemma\nist,sein\nBanken,Bank\nwar,sein\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	e, err := New(engine.Config{Language: "de", Lemmas: path})
	if err != nil {
		t.Fatal(err)
	}
	units, _ := e.Annotate("Die Banken ist")
	if units[1].Lemma != "Bank" || units[2].Lemma != "sein" {
		t.Errorf("lemmas = %q, %q; want Bank, sein", units[1].Lemma, units[2].Lemma)
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := New(engine.Config{Language: "xx"}); err == nil {
		t.Error("expected error for unsupported language")
	}
	if _, err := New(engine.Config{Language: "en", Lemmas: "/does/not/exist.csv"}); err == nil {
		t.Error("expected error for missing lemma file")
	}
}

func TestRegistered(t *testing.T) {
	factory, err := engine.NewFactory(engine.Config{Kind: "rules", Language: "de"})
	if err != nil {
		t.Fatal(err)
	}
	eng, err := factory()
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close()

	if _, ok := eng.(*Engine); !ok {
		t.Errorf("factory built %T, want *Engine", eng)
	}
}
