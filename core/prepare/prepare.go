// Package prepare converts a Wikipedia dump into an annotated corpus.
//
// A run loads the page and categorylinks tables, streams the XML dump,
// extracts paragraphs that contain internal links, removes duplicates,
// assigns each paragraph to the train, dev or test split, annotates the
// paragraphs through the bridge in batches and stores everything in the
// corpus database. After the dump, link targets are resolved to article ids
// through redirects, and phrases linking to several articles are recorded as
// ambiguous.
package prepare

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/FocuswithJustin/wikiwsd/core/annotate"
	"github.com/FocuswithJustin/wikiwsd/core/cache"
	"github.com/FocuswithJustin/wikiwsd/core/cas"
	"github.com/FocuswithJustin/wikiwsd/core/errors"
	"github.com/FocuswithJustin/wikiwsd/core/store"
	"github.com/FocuswithJustin/wikiwsd/core/wiki"
	"github.com/FocuswithJustin/wikiwsd/internal/archive"
	"github.com/FocuswithJustin/wikiwsd/internal/logging"
)

// Tokenizer annotates a batch of paragraphs in input order.
// *annotate.Bridge implements it.
type Tokenizer interface {
	TokenizeContext(ctx context.Context, inputs []annotate.Input) ([]annotate.Paragraph, error)
}

// Options configures a conversion run.
type Options struct {
	// DumpPath is the pages-articles XML dump (.bz2, .gz, .xz or plain).
	DumpPath string
	// PageTablePath and CategoryLinksPath are SQL table dumps. CategoryLinksPath
	// is optional.
	PageTablePath     string
	CategoryLinksPath string

	// TestSetSizes are the dev and test fractions; the rest is train.
	TestSetSizes []float64
	// BatchSize is the number of paragraphs annotated per bridge call.
	BatchSize int
	// MinLinks is the minimum number of links a paragraph needs to be kept.
	MinLinks int
	// MaxPages stops after this many articles. 0 means no limit.
	MaxPages int

	// ExpectedParagraphs and FalsePositiveRate size the duplicate filter.
	ExpectedParagraphs uint
	FalsePositiveRate  float64

	// ProgressEvery logs progress after this many articles.
	ProgressEvery int64
}

// Defaults for zero Options fields.
const (
	DefaultBatchSize          = 256
	DefaultExpectedParagraphs = 1_000_000
	DefaultFalsePositiveRate  = 0.001
	DefaultProgressEvery      = 10_000
	tableBatch                = 10_000
)

func (o *Options) setDefaults() {
	if o.TestSetSizes == nil {
		o.TestSetSizes = cas.DefaultTestSetSizes
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.MinLinks <= 0 {
		o.MinLinks = 1
	}
	if o.ExpectedParagraphs == 0 {
		o.ExpectedParagraphs = DefaultExpectedParagraphs
	}
	if o.FalsePositiveRate <= 0 {
		o.FalsePositiveRate = DefaultFalsePositiveRate
	}
	if o.ProgressEvery <= 0 {
		o.ProgressEvery = DefaultProgressEvery
	}
}

func (o *Options) validate() error {
	if o.DumpPath == "" {
		return errors.NewValidation("dump", "required")
	}
	if o.PageTablePath == "" {
		return errors.NewValidation("page table", "required")
	}
	return cas.ValidateSizes(o.TestSetSizes)
}

// Stats counts what a run processed.
type Stats struct {
	RunID         string
	Pages         int64 // page table rows
	Categories    int64
	Articles      int64
	Redirects     int64
	Paragraphs    int64 // stored paragraphs
	Duplicates    int64
	Links         int64
	ResolvedLinks int64
	Cached        int64 // paragraphs served from the annotation cache
	Ambiguous     int64
	Splits        map[cas.Split]int64
	Duration      time.Duration
}

// Converter runs the conversion against one corpus database.
type Converter struct {
	store     *store.Store
	tokenizer Tokenizer
	engine    string
	cache     *cas.Store
	resolver  cache.Config
}

// NewConverter creates a converter writing to st and annotating with tok.
// engine describes the annotation engine for run records and cache keys.
func NewConverter(st *store.Store, tok Tokenizer, engine string) *Converter {
	return &Converter{
		store:     st,
		tokenizer: tok,
		engine:    engine,
		resolver:  cache.DefaultConfig(),
	}
}

// WithAnnotationCache reuses annotations stored in cs across runs.
func (c *Converter) WithAnnotationCache(cs *cas.Store) *Converter {
	c.cache = cs
	return c
}

// WithResolverCache sets the size of the title resolution cache.
func (c *Converter) WithResolverCache(cfg cache.Config) *Converter {
	c.resolver = cfg
	return c
}

// Run executes a full conversion. The run is recorded in the store as
// complete or failed.
func (c *Converter) Run(ctx context.Context, opts Options) (stats *Stats, err error) {
	opts.setDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	run, err := c.store.BeginRun(ctx, c.engine)
	if err != nil {
		return nil, err
	}
	ctx = logging.WithRunID(ctx, run.ID)
	started := time.Now()
	stats = &Stats{RunID: run.ID, Splits: make(map[cas.Split]int64)}

	defer func() {
		stats.Duration = time.Since(started)
		run.Pages, run.Paragraphs, run.Links = stats.Articles, stats.Paragraphs, stats.Links
		status := store.RunComplete
		if err != nil {
			status = store.RunFailed
		}
		// Record the outcome even when ctx was cancelled.
		if ferr := c.store.FinishRun(context.WithoutCancel(ctx), run, status); ferr != nil && err == nil {
			err = ferr
		}
	}()

	logging.InfoContext(ctx, "prepare_started", "dump", opts.DumpPath, "engine", c.engine)

	if err := c.loadPages(ctx, opts.PageTablePath, stats); err != nil {
		return stats, err
	}
	if opts.CategoryLinksPath != "" {
		if err := c.loadCategories(ctx, opts.CategoryLinksPath, stats); err != nil {
			return stats, err
		}
	}
	if err := c.convertDump(ctx, run.ID, opts, stats); err != nil {
		return stats, err
	}
	if err := c.resolveLinks(ctx, stats); err != nil {
		return stats, err
	}

	if stats.Ambiguous, err = c.store.RebuildPhrases(ctx); err != nil {
		return stats, err
	}
	logging.StageDone(ctx, "prepare", stats.Paragraphs, time.Since(started),
		"articles", stats.Articles, "duplicates", stats.Duplicates, "ambiguous_phrases", stats.Ambiguous)
	return stats, nil
}

func (c *Converter) convertDump(ctx context.Context, runID string, opts Options, stats *Stats) error {
	f, err := archive.Open(opts.DumpPath)
	if err != nil {
		return errors.NewIO("open", opts.DumpPath, err)
	}
	defer f.Close()

	dump, err := wiki.NewDumpReader(f)
	if err != nil {
		return err
	}

	start := time.Now()
	b := &batcher{
		conv:    c,
		runID:   runID,
		size:    opts.BatchSize,
		sizes:   opts.TestSetSizes,
		minLink: opts.MinLinks,
		seen:    bloom.NewWithEstimates(opts.ExpectedParagraphs, opts.FalsePositiveRate),
		pending: make(map[cas.Fingerprint]bool),
		stats:   stats,
	}
	var redirects []store.Redirect

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := dump.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch {
		case page.Namespace != 0:
			continue
		case page.Redirect != "":
			stats.Redirects++
			redirects = append(redirects, store.Redirect{
				PageID: page.ID,
				Title:  page.Title,
				Target: wiki.NormalizeTitle(page.Redirect),
			})
			if len(redirects) >= tableBatch {
				if err := c.store.SetRedirects(ctx, redirects); err != nil {
					return err
				}
				redirects = redirects[:0]
			}
			continue
		}

		stats.Articles++
		if err := b.addPage(ctx, page); err != nil {
			return fmt.Errorf("page %q: %w", page.Title, err)
		}
		if stats.Articles%opts.ProgressEvery == 0 {
			logging.StageProgress(ctx, "dump", stats.Articles, "paragraphs", stats.Paragraphs)
		}
		if opts.MaxPages > 0 && stats.Articles >= int64(opts.MaxPages) {
			break
		}
	}

	if err := b.flush(ctx); err != nil {
		return err
	}
	if err := c.store.SetRedirects(ctx, redirects); err != nil {
		return err
	}
	logging.StageDone(ctx, "dump", stats.Articles, time.Since(start),
		"paragraphs", stats.Paragraphs, "redirects", stats.Redirects)
	return nil
}

// resolveLinks maps link targets to article ids through redirects.
func (c *Converter) resolveLinks(ctx context.Context, stats *Stats) error {
	start := time.Now()
	resolver := cache.NewResolver(c.store.LookupTitle, c.resolver)
	n, err := c.store.ResolveTargets(ctx, resolver.Resolve)
	if err != nil {
		return err
	}
	stats.ResolvedLinks = n
	cs := resolver.Stats()
	logging.StageDone(ctx, "resolve", n, time.Since(start), "links", stats.Links, "cache_hit_rate", cs.HitRate())
	return nil
}
