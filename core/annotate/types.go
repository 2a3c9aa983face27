package annotate

import "strings"

// Token is one annotated unit of a paragraph.
type Token struct {
	// Start and End are character offsets into the source document.
	// End excludes the trailing separator.
	Start int `json:"start"`
	End   int `json:"end"`

	Value string `json:"value"`
	POS   string `json:"pos"`
	Lemma string `json:"lemma"`

	// Before is the separator preceding the token, After the one following it.
	Before string `json:"before"`
	After  string `json:"after"`
}

// Sentence is a run of tokens in textual order.
type Sentence []Token

// Paragraph is the annotation of one input paragraph.
type Paragraph []Sentence

// Tokens returns all tokens of the paragraph in textual order.
func (p Paragraph) Tokens() []Token {
	n := 0
	for _, s := range p {
		n += len(s)
	}
	tokens := make([]Token, 0, n)
	for _, s := range p {
		tokens = append(tokens, s...)
	}
	return tokens
}

// Text rebuilds the source text from token values and separators.
func (p Paragraph) Text() string {
	var b strings.Builder
	for _, s := range p {
		for _, t := range s {
			b.WriteString(t.Value)
			b.WriteString(t.After)
		}
	}
	return b.String()
}

// Input is one paragraph submitted for annotation.
type Input struct {
	// Offset is added to every token position.
	Offset int    `json:"offset"`
	Text   string `json:"text"`
}

// Job is one paragraph tagged with its position in the batch.
type Job struct {
	ID     int
	Text   string
	Offset int
}

type messageKind uint8

const (
	msgJob messageKind = iota
	msgShutdown
)

// message is what travels on the job channel. A shutdown message carries no job.
type message struct {
	kind messageKind
	job  Job
}

// Result carries either the paragraph of job ID or, when Err is set, its failure.
type Result struct {
	ID        int
	Paragraph Paragraph
	Err       error
}

// Failed reports whether the job failed.
func (r Result) Failed() bool {
	return r.Err != nil
}
