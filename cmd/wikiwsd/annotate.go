package main

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/FocuswithJustin/wikiwsd/core/annotate"
	"github.com/FocuswithJustin/wikiwsd/core/prepare"
)

// annotatedLine is one JSON line written by the annotate command.
type annotatedLine struct {
	Line      int                `json:"line"`
	Offset    int                `json:"offset"`
	Text      string             `json:"text"`
	Sentences annotate.Paragraph `json:"sentences"`
}

// annotateLines annotates every non-blank line of r in batches and writes one
// JSON object per line to w. Offsets count characters from the start of r,
// with one character per line break. It returns the number of lines written.
func annotateLines(ctx context.Context, tok prepare.Tokenizer, r io.Reader, w io.Writer, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = prepare.DefaultBatchSize
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16<<20)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	var (
		inputs  []annotate.Input
		lines   []int
		written int
	)
	flush := func() error {
		if len(inputs) == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		paras, err := tok.TokenizeContext(ctx, inputs)
		if err != nil {
			return err
		}
		for i, p := range paras {
			line := annotatedLine{Line: lines[i], Offset: inputs[i].Offset, Text: inputs[i].Text, Sentences: p}
			if err := enc.Encode(line); err != nil {
				return err
			}
		}
		written += len(paras)
		inputs, lines = inputs[:0], lines[:0]
		return nil
	}

	offset, lineNo := 0, 0
	for sc.Scan() {
		lineNo++
		text := sc.Text()
		if strings.TrimSpace(text) != "" {
			inputs = append(inputs, annotate.Input{Offset: offset, Text: text})
			lines = append(lines, lineNo)
			if len(inputs) >= batchSize {
				if err := flush(); err != nil {
					return written, err
				}
			}
		}
		offset += utf8.RuneCountInString(text) + 1
	}
	if err := sc.Err(); err != nil {
		return written, err
	}
	return written, flush()
}
