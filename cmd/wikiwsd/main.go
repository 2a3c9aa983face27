// Command wikiwsd prepares word sense disambiguation training data from
// Wikipedia dumps. It extracts linked paragraphs, annotates them through a
// pool of tagger engines and exports the links as labelled examples.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/FocuswithJustin/wikiwsd/core/annotate"
	"github.com/FocuswithJustin/wikiwsd/core/cache"
	"github.com/FocuswithJustin/wikiwsd/core/cas"
	"github.com/FocuswithJustin/wikiwsd/core/dataset"
	"github.com/FocuswithJustin/wikiwsd/core/engine"
	"github.com/FocuswithJustin/wikiwsd/core/prepare"
	"github.com/FocuswithJustin/wikiwsd/core/sqlite"
	"github.com/FocuswithJustin/wikiwsd/core/store"
	"github.com/FocuswithJustin/wikiwsd/internal/archive"
	"github.com/FocuswithJustin/wikiwsd/internal/logging"

	// Annotation engines register themselves by kind.
	_ "github.com/FocuswithJustin/wikiwsd/core/engine/process"
	_ "github.com/FocuswithJustin/wikiwsd/core/engine/rules"
	_ "github.com/FocuswithJustin/wikiwsd/core/engine/sidecar"
)

const version = "0.1.0"

// cli defines the command-line interface. Flags can also be set through
// WIKIWSD_* environment variables or a .env file.
type cli struct {
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)" default:"info" env:"WIKIWSD_LOG_LEVEL"`
	LogFormat string `name:"log-format" help:"Log format (text, json)" default:"text" env:"WIKIWSD_LOG_FORMAT"`

	Engine   string `name:"engine" short:"e" help:"Engine configuration (YAML)" type:"path" env:"WIKIWSD_ENGINE"`
	Language string `name:"language" short:"l" help:"Override the engine language" env:"WIKIWSD_LANGUAGE"`
	Workers  int    `name:"workers" short:"w" help:"Annotation workers (default: number of CPUs)" env:"WIKIWSD_WORKERS"`

	Prepare  PrepareCmd  `cmd:"" help:"Extract, annotate and store linked paragraphs from a dump"`
	Annotate AnnotateCmd `cmd:"" help:"Annotate plain-text paragraphs and print JSON lines"`
	Export   ExportCmd   `cmd:"" help:"Write training data from a prepared database"`
	Stats    StatsCmd    `cmd:"" help:"Show the contents of a prepared database"`
	Engines  EnginesCmd  `cmd:"" help:"List available annotation engines"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

// CLI holds the parsed command line.
var CLI cli

// engineConfig loads the engine configuration selected by the global flags.
func (c *cli) engineConfig() (engine.Config, error) {
	cfg, err := engine.LoadConfig(c.Engine)
	if err != nil {
		return cfg, err
	}
	if c.Language != "" {
		cfg.Language = c.Language
	}
	return cfg, nil
}

// openBridge starts the annotation worker pool for cfg.
func (c *cli) openBridge(cfg engine.Config) (*annotate.Bridge, error) {
	factory, err := engine.NewFactory(cfg)
	if err != nil {
		return nil, err
	}
	opts := []annotate.Option{annotate.WithLogger(logging.GetLogger())}
	if c.Workers > 0 {
		opts = append(opts, annotate.WithWorkers(c.Workers))
	}
	return annotate.Open(factory, opts...)
}

// PrepareCmd converts a dump into a corpus database.
type PrepareCmd struct {
	Dump          string    `help:"pages-articles XML dump (.bz2, .gz, .xz or plain)" required:"" type:"existingfile"`
	PageTable     string    `name:"page-table" help:"SQL dump of the page table" required:"" type:"existingfile"`
	CategoryLinks string    `name:"categorylinks-table" help:"SQL dump of the categorylinks table" type:"existingfile"`
	DB            string    `name:"db" help:"Corpus database" required:"" type:"path" env:"WIKIWSD_DB"`
	CacheDir      string    `name:"cache-dir" help:"Reuse annotations stored in this directory" type:"path" env:"WIKIWSD_CACHE_DIR"`
	TestSetSizes  []float64 `name:"test-set-sizes" help:"Dev and test fractions" default:"0.15,0.15"`
	BatchSize     int       `name:"batch-size" help:"Paragraphs per annotation batch" default:"256"`
	MinLinks      int       `name:"min-links" help:"Minimum links per paragraph" default:"1"`
	MaxPages      int       `name:"max-pages" help:"Stop after this many articles (0: all)"`
	Expected      uint      `name:"expected-paragraphs" help:"Expected paragraph count for the duplicate filter" default:"1000000"`
	ResolverCache int       `name:"resolver-cache" help:"Titles kept in the redirect resolution cache" default:"100000"`
}

func (c *PrepareCmd) Run(ctx context.Context) error {
	cfg, err := CLI.engineConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(c.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	bridge, err := CLI.openBridge(cfg)
	if err != nil {
		return err
	}
	defer bridge.Close()

	conv := prepare.NewConverter(st, bridge, cfg.Describe()).
		WithResolverCache(cache.Config{MaxSize: c.ResolverCache})
	if c.CacheDir != "" {
		cs, err := cas.NewStore(c.CacheDir)
		if err != nil {
			return err
		}
		conv.WithAnnotationCache(cs)
	}

	logging.Info("sqlite", "driver", sqlite.DriverType(), "db", c.DB, "workers", bridge.Workers())
	stats, err := conv.Run(ctx, prepare.Options{
		DumpPath:           c.Dump,
		PageTablePath:      c.PageTable,
		CategoryLinksPath:  c.CategoryLinks,
		TestSetSizes:       c.TestSetSizes,
		BatchSize:          c.BatchSize,
		MinLinks:           c.MinLinks,
		MaxPages:           c.MaxPages,
		ExpectedParagraphs: c.Expected,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Run %s\n", stats.RunID)
	fmt.Printf("  Articles:    %d (%d redirects)\n", stats.Articles, stats.Redirects)
	fmt.Printf("  Paragraphs:  %d (%d duplicates, %d cached)\n", stats.Paragraphs, stats.Duplicates, stats.Cached)
	for _, split := range cas.Splits {
		fmt.Printf("    %-5s      %d\n", split, stats.Splits[split])
	}
	fmt.Printf("  Links:       %d (%d resolved)\n", stats.Links, stats.ResolvedLinks)
	fmt.Printf("  Ambiguous:   %d phrases\n", stats.Ambiguous)
	fmt.Printf("Done! Duration: %.1f min\n", stats.Duration.Minutes())
	return nil
}

// AnnotateCmd annotates a text file with one paragraph per line.
type AnnotateCmd struct {
	Input     string `arg:"" help:"Input text, one paragraph per line ('-' for stdin)" default:"-"`
	Output    string `short:"o" help:"Output file (.gz and .xz compress; default stdout)" type:"path"`
	BatchSize int    `name:"batch-size" help:"Paragraphs per annotation batch" default:"256"`
}

func (c *AnnotateCmd) Run(ctx context.Context) (err error) {
	cfg, err := CLI.engineConfig()
	if err != nil {
		return err
	}
	bridge, err := CLI.openBridge(cfg)
	if err != nil {
		return err
	}
	defer bridge.Close()

	var in io.Reader = os.Stdin
	if c.Input != "-" {
		f, err := archive.Open(c.Input)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	var out io.Writer = os.Stdout
	if c.Output != "" {
		w, err := archive.Create(c.Output)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := w.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		out = w
	}

	ctx = logging.WithRunID(ctx, uuid.New().String())
	n, err := annotateLines(ctx, bridge, in, out, c.BatchSize)
	logging.InfoContext(ctx, "annotate_done", "paragraphs", n, "engine", cfg.Describe())
	return err
}

// ExportCmd writes datasets described by descriptors.
type ExportCmd struct {
	DB          string   `name:"db" help:"Corpus database" required:"" type:"existingfile" env:"WIKIWSD_DB"`
	Output      string   `help:"Output directory" required:"" type:"path"`
	Descriptors []string `arg:"" name:"descriptor" sep:"none" help:"Outputs as name,n-gram,caseless,ignore-punct,pos,lemma,sentences (e.g. s_out,1,0,0,1,1,1)"`
	Compression string   `help:"Output compression" enum:"none,gz,xz" default:"none"`
	AllLinks    bool     `name:"all-links" help:"Export every resolved link, not only ambiguous phrases"`
	MinSenses   int      `name:"min-senses" help:"Distinct targets that make a phrase ambiguous" default:"2"`
	Splits      []string `help:"Splits to export" enum:"train,dev,test" default:"train,dev,test"`
}

func (c *ExportCmd) Run(ctx context.Context) error {
	descs, err := dataset.ParseDescriptors(c.Descriptors)
	if err != nil {
		return err
	}
	st, err := store.OpenReadOnly(c.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	opts := dataset.Options{
		Output:      c.Output,
		Descriptors: descs,
		AllLinks:    c.AllLinks,
		MinSenses:   c.MinSenses,
	}
	if c.Compression != "none" {
		opts.Compression = "." + c.Compression
	}
	for _, s := range c.Splits {
		opts.Splits = append(opts.Splits, cas.Split(s))
	}

	ctx = logging.WithRunID(ctx, uuid.New().String())
	stats, err := dataset.NewExporter(st).Run(ctx, opts)
	if err != nil {
		return err
	}
	for _, d := range descs {
		fmt.Printf("%s:", d.Name)
		for _, split := range opts.Splits {
			fmt.Printf(" %s=%d", split, stats.Examples[d.Name][split])
		}
		fmt.Println()
	}
	fmt.Printf("Done! Duration: %.1f min\n", stats.Duration.Minutes())
	return nil
}

// StatsCmd prints table counts and runs of a database as JSON.
type StatsCmd struct {
	DB  string `name:"db" help:"Corpus database" required:"" type:"existingfile" env:"WIKIWSD_DB"`
	RunID string `name:"run" help:"Show this run instead of the counts"`
}

func (c *StatsCmd) Run(ctx context.Context) error {
	st, err := store.OpenReadOnly(c.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	var v any
	if c.RunID != "" {
		if v, err = st.GetRun(ctx, c.RunID); err != nil {
			return err
		}
	} else if v, err = st.Count(ctx); err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// EnginesCmd lists registered engine kinds.
type EnginesCmd struct{}

func (c *EnginesCmd) Run() error {
	for _, k := range engine.Kinds() {
		fmt.Println(k)
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	info := sqlite.GetInfo()
	fmt.Printf("wikiwsd version %s (sqlite: %s)\n", version, info.Package)
	return nil
}

func main() {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx := kong.Parse(&CLI,
		kong.Name("wikiwsd"),
		kong.Description("Word sense disambiguation training data from Wikipedia"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.BindTo(runCtx, (*context.Context)(nil)),
	)
	logging.InitLogger(logging.ParseLevel(CLI.LogLevel), logging.ParseFormat(CLI.LogFormat))

	start := time.Now()
	err := ctx.Run()
	logging.Debug("command_finished", "command", ctx.Command(), "duration_ms", time.Since(start).Milliseconds())
	ctx.FatalIfErrorf(err)
}
