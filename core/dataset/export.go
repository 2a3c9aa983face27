package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/FocuswithJustin/wikiwsd/core/cache"
	"github.com/FocuswithJustin/wikiwsd/core/cas"
	"github.com/FocuswithJustin/wikiwsd/core/errors"
	"github.com/FocuswithJustin/wikiwsd/core/store"
	"github.com/FocuswithJustin/wikiwsd/internal/archive"
	"github.com/FocuswithJustin/wikiwsd/internal/logging"
)

// Options configures an export.
type Options struct {
	// Output is the root directory; files go to <Output>/<name>/<split>.tsv.
	Output      string
	Descriptors []Descriptor
	// Compression is appended to file names: "", ".gz" or ".xz".
	Compression string
	// AllLinks exports every resolved link instead of ambiguous phrases only.
	AllLinks bool
	// MinSenses is the number of distinct targets that makes a phrase
	// ambiguous. Defaults to 2.
	MinSenses int
	// Splits restricts the export. Defaults to all splits.
	Splits []cas.Split
}

// Stats counts exported examples.
type Stats struct {
	// Examples counts lines per descriptor name and split.
	Examples    map[string]map[cas.Split]int64
	Links       int64 // links considered
	Unresolved  int64
	Unambiguous int64
	Unaligned   int64 // links without tokens in the rendered context
	Duration    time.Duration
}

// Exporter writes datasets from a corpus database.
type Exporter struct {
	store  *store.Store
	titles cache.Cache[int64, string]
}

// NewExporter creates an exporter reading st.
func NewExporter(st *store.Store) *Exporter {
	return &Exporter{
		store:  st,
		titles: cache.NewLRUCache[int64, string](cache.DefaultConfig()),
	}
}

func (o *Options) setDefaults() error {
	if o.Output == "" {
		return errors.NewValidation("output", "required")
	}
	if len(o.Descriptors) == 0 {
		return errors.NewValidation("descriptors", "at least one is required")
	}
	switch o.Compression {
	case "", ".gz", ".xz":
	default:
		return errors.NewUnsupported("compression "+o.Compression, "use .gz or .xz")
	}
	if o.MinSenses <= 0 {
		o.MinSenses = 2
	}
	if len(o.Splits) == 0 {
		o.Splits = cas.Splits
	}
	return nil
}

// Run writes one file per descriptor and split.
func (e *Exporter) Run(ctx context.Context, opts Options) (*Stats, error) {
	if err := opts.setDefaults(); err != nil {
		return nil, err
	}
	start := time.Now()
	stats := &Stats{Examples: make(map[string]map[cas.Split]int64)}
	for _, d := range opts.Descriptors {
		stats.Examples[d.Name] = make(map[cas.Split]int64)
	}

	var ambiguous map[string]int
	if !opts.AllLinks {
		var err error
		if ambiguous, err = e.store.AmbiguousPhrases(ctx, opts.MinSenses); err != nil {
			return nil, err
		}
		logging.InfoContext(ctx, "ambiguous_phrases", "count", len(ambiguous), "min_senses", opts.MinSenses)
	}

	for _, split := range opts.Splits {
		if err := e.exportSplit(ctx, split, ambiguous, opts, stats); err != nil {
			return stats, err
		}
	}
	stats.Duration = time.Since(start)
	logging.StageDone(ctx, "export", stats.Links, stats.Duration,
		"unresolved", stats.Unresolved, "unambiguous", stats.Unambiguous, "unaligned", stats.Unaligned)
	return stats, nil
}

func (e *Exporter) exportSplit(ctx context.Context, split cas.Split, ambiguous map[string]int, opts Options, stats *Stats) (err error) {
	writers := make([]*archive.Writer, len(opts.Descriptors))
	defer func() {
		for _, w := range writers {
			if w == nil {
				continue
			}
			if cerr := w.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	}()
	for i, d := range opts.Descriptors {
		path := filepath.Join(opts.Output, d.Name, string(split)+".tsv"+opts.Compression)
		if writers[i], err = archive.Create(path); err != nil {
			return errors.NewIO("create", path, err)
		}
	}

	start := time.Now()
	var paragraphs int64
	err = e.store.EachParagraph(ctx, split, func(p *store.Paragraph) error {
		paragraphs++
		for _, l := range p.Links {
			stats.Links++
			if l.TargetID == 0 {
				stats.Unresolved++
				continue
			}
			if ambiguous != nil && ambiguous[l.Phrase] == 0 {
				stats.Unambiguous++
				continue
			}
			title, err := e.title(ctx, l.TargetID)
			if err != nil {
				return err
			}
			aligned := false
			for i, d := range opts.Descriptors {
				text, ok := d.Render(p.Annotation, l.Start, l.End)
				if !ok {
					continue
				}
				aligned = true
				if _, err := fmt.Fprintf(writers[i], "%s\t%s\n", title, text); err != nil {
					return err
				}
				stats.Examples[d.Name][split]++
			}
			if !aligned {
				stats.Unaligned++
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	logging.StageDone(ctx, "export_"+string(split), paragraphs, time.Since(start))
	return nil
}

// title returns the tab-free title of an article, cached.
func (e *Exporter) title(ctx context.Context, id int64) (string, error) {
	if t, ok := e.titles.Get(id); ok {
		return t, nil
	}
	t, err := e.store.Title(ctx, id)
	if err != nil {
		return "", err
	}
	t = strings.ReplaceAll(t, "\t", " ")
	e.titles.Put(id, t)
	return t, nil
}
