package annotate

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/FocuswithJustin/wikiwsd/core/engine"
)

// worker annotates jobs with an engine it owns exclusively.
type worker struct {
	id      int
	engine  engine.Engine
	jobs    <-chan message
	results chan<- Result
	pool    *Pool
	logger  *slog.Logger
}

// run processes jobs until it receives a shutdown message.
func (w *worker) run() {
	defer w.pool.wg.Done()
	defer func() {
		if err := w.engine.Close(); err != nil {
			w.logger.Warn("engine close failed", "worker", w.id, "error", err)
		}
	}()

	for msg := range w.jobs {
		if msg.kind == msgShutdown {
			return
		}

		r := w.process(msg.job)
		w.pool.completed.Add(1)
		if r.Failed() {
			w.pool.failed.Add(1)
			w.logger.Warn("paragraph annotation failed", "worker", w.id, "job", r.ID, "error", r.Err)
		}
		w.results <- r
	}
}

func (w *worker) process(j Job) (r Result) {
	r.ID = j.ID

	// A panicking engine still yields exactly one result for the job.
	defer func() {
		if p := recover(); p != nil {
			r.Paragraph = nil
			r.Err = fmt.Errorf("engine panic: %v", p)
		}
	}()

	r.Paragraph, r.Err = annotateParagraph(w.engine, j.Text, j.Offset)
	return r
}

// annotateParagraph runs eng on text and converts its units into a
// single-sentence paragraph whose positions are shifted by offset.
// The units must reproduce text exactly; otherwise a *ReconstructionError
// is returned.
func annotateParagraph(eng engine.Engine, text string, offset int) (Paragraph, error) {
	if text == "" {
		return Paragraph{}, nil
	}

	units, err := eng.Annotate(text)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	var reconstructed strings.Builder
	reconstructed.Grow(len(text))

	tokens := make(Sentence, 0, len(units))
	pos := 0
	before := ""
	for _, u := range units {
		start := pos + offset
		end := start + utf8.RuneCountInString(u.Text)

		reconstructed.WriteString(u.Text)
		reconstructed.WriteString(u.Whitespace)
		pos += utf8.RuneCountInString(u.Text) + utf8.RuneCountInString(u.Whitespace)

		tokens = append(tokens, Token{
			Start:  start,
			End:    end,
			Value:  u.Text,
			POS:    u.POS,
			Lemma:  u.Lemma,
			Before: before,
			After:  u.Whitespace,
		})
		before = u.Whitespace
	}

	if got := reconstructed.String(); got != text {
		return nil, &ReconstructionError{Want: text, Got: got}
	}

	return Paragraph{tokens}, nil
}
