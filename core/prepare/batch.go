package prepare

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/FocuswithJustin/wikiwsd/core/annotate"
	"github.com/FocuswithJustin/wikiwsd/core/cas"
	"github.com/FocuswithJustin/wikiwsd/core/errors"
	"github.com/FocuswithJustin/wikiwsd/core/store"
	"github.com/FocuswithJustin/wikiwsd/core/wiki"
	"github.com/FocuswithJustin/wikiwsd/internal/logging"
)

// batcher collects paragraphs of consecutive pages and annotates and stores
// them in batches.
type batcher struct {
	conv    *Converter
	runID   string
	size    int
	sizes   []float64
	minLink int

	// seen holds fingerprints of every accepted paragraph. A positive answer
	// is confirmed against pending and the store.
	seen    *bloom.BloomFilter
	pending map[cas.Fingerprint]bool
	batch   []*store.Paragraph

	stats *Stats
}

// addPage queues the linked paragraphs of an article.
func (b *batcher) addPage(ctx context.Context, page *wiki.Page) error {
	for _, para := range wiki.Paragraphs(page) {
		if len(para.Links) < b.minLink {
			continue
		}
		fp := cas.Sum(para.Text)
		dup, err := b.isDuplicate(ctx, fp)
		if err != nil {
			return err
		}
		if dup {
			b.stats.Duplicates++
			continue
		}
		b.seen.Add(fp[:])
		b.pending[fp] = true
		b.batch = append(b.batch, newParagraph(page.ID, para, fp, cas.AssignSplit(fp, b.sizes)))

		if len(b.batch) >= b.size {
			if err := b.flush(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *batcher) isDuplicate(ctx context.Context, fp cas.Fingerprint) (bool, error) {
	if !b.seen.Test(fp[:]) {
		return false, nil
	}
	if b.pending[fp] {
		return true, nil
	}
	return b.conv.store.HasFingerprint(ctx, fp)
}

func newParagraph(pageID int64, para wiki.Paragraph, fp cas.Fingerprint, split cas.Split) *store.Paragraph {
	runes := []rune(para.Text)
	links := make([]store.Link, 0, len(para.Links))
	for _, l := range para.Links {
		links = append(links, store.Link{
			Target: l.Target,
			Phrase: Phrase(string(runes[l.Start-para.Offset : l.End-para.Offset])),
			Start:  l.Start,
			End:    l.End,
		})
	}
	return &store.Paragraph{
		PageID:      pageID,
		Offset:      para.Offset,
		Text:        para.Text,
		Fingerprint: fp,
		Split:       split,
		Links:       links,
	}
}

var lower = cases.Lower(language.Und)

// Phrase normalises a link label for sense counting: lower case with
// whitespace collapsed.
func Phrase(label string) string {
	return strings.Join(strings.Fields(lower.String(label)), " ")
}

// flush annotates the queued paragraphs and stores them.
func (b *batcher) flush(ctx context.Context) error {
	if len(b.batch) == 0 {
		return nil
	}
	start := time.Now()

	if err := b.annotate(ctx); err != nil {
		return err
	}
	n, err := b.conv.store.SaveParagraphs(ctx, b.runID, b.batch)
	if err != nil {
		return err
	}

	tokens := 0
	for _, p := range b.batch {
		if p.ID == 0 {
			continue
		}
		b.stats.Splits[p.Split]++
		b.stats.Links += int64(len(p.Links))
		tokens += len(p.Annotation.Tokens())
	}
	b.stats.Paragraphs += int64(n)
	logging.BatchAnnotated(ctx, len(b.batch), tokens, time.Since(start), "stored", n)

	b.batch = b.batch[:0]
	clear(b.pending)
	return nil
}

// annotate fills Annotation of every queued paragraph, from the cache when
// possible and through the tokenizer otherwise.
func (b *batcher) annotate(ctx context.Context) error {
	var (
		inputs  []annotate.Input
		missing []*store.Paragraph
	)
	for _, p := range b.batch {
		ann, ok, err := b.cached(p)
		if err != nil {
			return err
		}
		if ok {
			p.Annotation = ann
			b.stats.Cached++
			continue
		}
		inputs = append(inputs, annotate.Input{Offset: p.Offset, Text: p.Text})
		missing = append(missing, p)
	}
	if len(inputs) == 0 {
		return nil
	}

	results, err := b.conv.tokenizer.TokenizeContext(ctx, inputs)
	if err != nil {
		return err
	}
	for i, p := range missing {
		p.Annotation = results[i]
		if err := b.remember(p); err != nil {
			return err
		}
	}
	return nil
}

func (b *batcher) cacheKey(p *store.Paragraph) cas.Fingerprint {
	return cas.SumKeyed(b.conv.engine, p.Text)
}

// cached returns the stored annotation of p shifted to its offset.
func (b *batcher) cached(p *store.Paragraph) (annotate.Paragraph, bool, error) {
	if b.conv.cache == nil {
		return nil, false, nil
	}
	data, err := b.conv.cache.Get(b.cacheKey(p))
	if errors.Is(err, cas.ErrBlobNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var ann annotate.Paragraph
	if err := json.Unmarshal(data, &ann); err != nil {
		return nil, false, fmt.Errorf("cached annotation %s: %w", b.cacheKey(p), err)
	}
	return shift(ann, p.Offset), true, nil
}

// remember caches the annotation of p relative to offset 0.
func (b *batcher) remember(p *store.Paragraph) error {
	if b.conv.cache == nil {
		return nil
	}
	data, err := json.Marshal(shift(p.Annotation, -p.Offset))
	if err != nil {
		return err
	}
	return b.conv.cache.Put(b.cacheKey(p), data)
}

// shift returns a copy of ann with every offset moved by delta.
func shift(ann annotate.Paragraph, delta int) annotate.Paragraph {
	out := make(annotate.Paragraph, len(ann))
	for i, sent := range ann {
		out[i] = make(annotate.Sentence, len(sent))
		for j, t := range sent {
			t.Start += delta
			t.End += delta
			out[i][j] = t
		}
	}
	return out
}
