package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spboyer/taskqa/internal/cache"
	"github.com/spboyer/taskqa/internal/dataset"
	"github.com/spboyer/taskqa/internal/embedding"
	"github.com/spboyer/taskqa/internal/models"
	"github.com/spboyer/taskqa/internal/orchestration"
	"github.com/spboyer/taskqa/internal/projectconfig"
	"github.com/spboyer/taskqa/internal/reporting"
	"github.com/spboyer/taskqa/internal/scoring"
	"github.com/spboyer/taskqa/internal/spinner"
	"github.com/spboyer/taskqa/internal/statistics"
	"github.com/spf13/cobra"
)

type validateFlags struct {
	similarityThreshold float64
	keepThreshold       float64
	failUnder           float64
	seed                int64

	encoderKind string
	encoderURL  string
	model       string
	cacheDir    string

	topN       int
	format     string
	outputPath string
	junitPath  string

	keptPath       string
	filteredPath   string
	noPartition    bool
	dropDuplicates bool
}

func newValidateCommand() *cobra.Command {
	var flags validateFlags

	cmd := &cobra.Command{
		Use:   "validate <file.jsonl>",
		Short: "Validate and score a training corpus",
		Long: `Validate every sample of a JSON-Lines corpus and print a quality report.

Each sample's assistant output is checked against the output schema. Valid
outputs are then checked for task owners that are not transcript speakers,
deadlines that do not occur in the transcript, and task descriptions with low
semantic similarity to the transcript. Every sample gets a score in [0, 1].

After validation the corpus is split next to the input into
<name>.score_ge_<keep>.jsonl and <name>.score_lt_<keep>.jsonl unless
--no-partition is set. Gzip (.gz) and zstd (.zst) files are read and written
transparently.

Defaults come from .taskqa.yaml (searched upward from the working directory);
flags override it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateCommandE(cmd, args[0], &flags)
		},
	}

	f := cmd.Flags()
	f.Float64Var(&flags.similarityThreshold, "similarity-threshold", projectconfig.DefaultSimilarityThreshold, "Minimum task/transcript cosine similarity")
	f.Float64Var(&flags.keepThreshold, "keep-threshold", projectconfig.DefaultKeepThreshold, "Samples scoring at or above this are kept")
	f.Float64Var(&flags.failUnder, "fail-under", 0, "Exit with code 1 when the mean score is below this value")
	f.Int64Var(&flags.seed, "seed", statistics.DefaultSeed, "Seed for the bootstrap confidence interval (negative for random)")
	f.StringVar(&flags.encoderKind, "encoder", projectconfig.DefaultEncoderKind, "Text encoder: "+embedding.KindNames())
	f.StringVar(&flags.encoderURL, "encoder-url", "", "Encoder server URL")
	f.StringVar(&flags.model, "model", "", "Encoder model name")
	f.StringVar(&flags.cacheDir, "cache-dir", "", "Cache encoder vectors in this directory")
	f.IntVar(&flags.topN, "top-n", projectconfig.DefaultTopN, "Number of lowest-scoring samples to list")
	f.StringVar(&flags.format, "format", projectconfig.DefaultReportFormat, "Report format: text, markdown, html, json")
	f.StringVarP(&flags.outputPath, "output", "o", "", "Write the report to this file instead of stdout")
	f.StringVar(&flags.junitPath, "junit", "", "Also write a JUnit XML report to this file")
	f.StringVar(&flags.keptPath, "kept", "", "Path for kept samples (default: <input>.score_ge_<keep>.jsonl)")
	f.StringVar(&flags.filteredPath, "filtered", "", "Path for filtered samples (default: <input>.score_lt_<keep>.jsonl)")
	f.BoolVar(&flags.noPartition, "no-partition", false, "Do not write kept/filtered files")
	f.BoolVar(&flags.dropDuplicates, "drop-duplicates", false, "Send later duplicate transcripts to the filtered file")

	return cmd
}

func validateCommandE(cmd *cobra.Command, input string, flags *validateFlags) error {
	if _, err := os.Stat(input); err != nil {
		return fmt.Errorf("opening corpus: %w", err)
	}

	cfg, err := projectconfig.Load(".")
	if err != nil {
		return err
	}
	applyValidateFlags(cmd, cfg, flags)

	if err := checkUnit("similarity threshold", cfg.SimilarityThreshold()); err != nil {
		return err
	}
	if err := checkUnit("keep threshold", cfg.KeepThreshold()); err != nil {
		return err
	}
	if cmd.Flags().Changed("fail-under") {
		if err := checkUnit("--fail-under", flags.failUnder); err != nil {
			return err
		}
	}
	format, err := reporting.ParseFormat(cfg.Report.Format)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	enc, err := newEncoder(ctx, cfg)
	if err != nil {
		return err
	}

	similarity := cfg.SimilarityThreshold()
	validator, err := scoring.NewValidator(scoring.Options{
		Encoder:             enc,
		SimilarityThreshold: &similarity,
		Penalties: &scoring.Penalties{
			Who:        cfg.WhoPenalty(),
			When:       cfg.WhenPenalty(),
			Similarity: cfg.SimilarityPenalty(),
		},
	})
	if err != nil {
		return err
	}

	opts := []orchestration.RunnerOption{
		orchestration.WithSeed(flags.seed),
		orchestration.WithSetup(models.OutcomeSetup{
			EncoderModel:        enc.ModelName(),
			SimilarityThreshold: similarity,
			KeepThreshold:       cfg.KeepThreshold(),
			DropDuplicates:      cfg.DropDuplicates(),
		}),
	}
	if !flags.noPartition {
		kept, filtered := dataset.PartitionPaths(input, cfg.KeepThreshold())
		if flags.keptPath != "" {
			kept = flags.keptPath
		}
		if flags.filteredPath != "" {
			filtered = flags.filteredPath
		}
		opts = append(opts, orchestration.WithPartition(kept, filtered))
	}

	runner := orchestration.NewCorpusRunner(input, validator, opts...)
	runner.OnProgress(debugProgress)

	stopSpinner := func() {}
	if spinner.IsTerminal(cmd.ErrOrStderr()) {
		sp := spinner.Start(cmd.ErrOrStderr(), "Validating "+filepath.Base(input))
		runner.OnProgress(spinnerProgress(sp, filepath.Base(input)))
		stopSpinner = sp.Stop
	}

	outcome, err := runner.Run(ctx)
	stopSpinner()
	if err != nil {
		return fmt.Errorf("validating %s: %w", input, err)
	}

	hits, misses := enc.Stats()
	slog.Debug("encoder cache", "hits", hits, "misses", misses)

	reportOpts := reporting.Options{
		TopN:                  cfg.Report.TopN,
		MaxDuplicates:         cfg.Report.MaxDuplicates,
		MaxSimilarityExamples: cfg.Report.MaxSimilarityExamples,
	}
	if err := writeReport(cmd.OutOrStdout(), flags.outputPath, format, outcome, reportOpts); err != nil {
		return err
	}

	if flags.junitPath != "" {
		if err := reporting.WriteJUnitXML(outcome, flags.junitPath); err != nil {
			return fmt.Errorf("writing JUnit report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "JUnit report saved to: %s\n", flags.junitPath) //nolint:errcheck
	}

	if cmd.Flags().Changed("fail-under") && outcome.Digest.MeanScore < flags.failUnder {
		return &QualityGateError{MeanScore: outcome.Digest.MeanScore, Minimum: flags.failUnder}
	}
	return nil
}

// applyValidateFlags overlays explicitly set flags onto the project config.
func applyValidateFlags(cmd *cobra.Command, cfg *projectconfig.ProjectConfig, flags *validateFlags) {
	changed := cmd.Flags().Changed

	if changed("similarity-threshold") {
		cfg.Thresholds.Similarity = &flags.similarityThreshold
	}
	if changed("keep-threshold") {
		cfg.Thresholds.Keep = &flags.keepThreshold
	}
	if changed("encoder") && flags.encoderKind != cfg.Encoder.Kind {
		cfg.Encoder.Kind = flags.encoderKind
		cfg.Encoder.Model = ""
		cfg.Encoder.Options = nil
	}
	if changed("model") {
		cfg.Encoder.Model = flags.model
	}
	if changed("encoder-url") {
		options := maps.Clone(cfg.Encoder.Options)
		if options == nil {
			options = map[string]any{}
		}
		options[urlOption(cfg.Encoder.Kind)] = flags.encoderURL
		cfg.Encoder.Options = options
	}
	if changed("cache-dir") {
		enabled := flags.cacheDir != ""
		cfg.Cache.Enabled = &enabled
		cfg.Cache.Dir = flags.cacheDir
	}
	if changed("top-n") {
		cfg.Report.TopN = flags.topN
	}
	if changed("format") {
		cfg.Report.Format = flags.format
	}
	if changed("drop-duplicates") {
		drop := flags.dropDuplicates
		cfg.Filter.DropDuplicates = &drop
	}
}

// newEncoder builds the configured encoder behind a memoizing cache.
func newEncoder(ctx context.Context, cfg *projectconfig.ProjectConfig) (*embedding.CachedEncoder, error) {
	inner, err := embedding.Create(embedding.Kind(cfg.Encoder.Kind), cfg.Encoder.Model, cfg.Encoder.Options)
	if err != nil {
		return nil, err
	}

	if p, ok := inner.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(ctx); err != nil {
			return nil, fmt.Errorf("encoder %s is not reachable: %w", inner.ModelName(), err)
		}
	}

	var disk *cache.Cache
	if cfg.CacheEnabled() && cfg.Cache.Dir != "" {
		absDir, err := filepath.Abs(cfg.Cache.Dir)
		if err != nil {
			return nil, fmt.Errorf("resolving cache directory: %w", err)
		}
		disk = cache.New(absDir)
		slog.Debug("encoder cache enabled", "dir", absDir)
	}
	return embedding.NewCachedEncoder(inner, disk), nil
}

func writeReport(stdout io.Writer, path string, format reporting.Format, outcome *models.CorpusOutcome, opts reporting.Options) error {
	if path == "" {
		return reporting.Write(stdout, format, outcome, opts)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	if err := reporting.Write(f, format, outcome, opts); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing report file: %w", err)
	}

	d := outcome.Digest
	fmt.Fprintf(stdout, "Validated %d samples: mean score %.4f, %d schema errors, %d duplicate pairs\n", //nolint:errcheck
		d.TotalSamples, d.MeanScore, d.SchemaBad, d.DuplicatePairs)
	fmt.Fprintf(stdout, "Report saved to: %s\n", path) //nolint:errcheck
	return nil
}

func debugProgress(ev orchestration.ProgressEvent) {
	switch ev.EventType {
	case orchestration.EventDuplicateFound:
		slog.Debug("duplicate transcript", "line", ev.Line, "first", ev.Details["first"])
	case orchestration.EventSampleComplete:
		slog.Debug("sample validated", "index", ev.Line, "score", ev.Score)
	}
}

func spinnerProgress(sp *spinner.Spinner, name string) orchestration.ProgressListener {
	validated := 0
	return func(ev orchestration.ProgressEvent) {
		switch ev.EventType {
		case orchestration.EventSampleComplete:
			validated++
			sp.SetMessage(fmt.Sprintf("Validating %s: %d samples", name, validated))
		case orchestration.EventCorpusComplete:
			sp.SetMessage(fmt.Sprintf("Validated %s: %d samples", name, validated))
		}
	}
}

func checkUnit(name string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%s must be between 0 and 1, got %v", name, v)
	}
	return nil
}

// urlOption is the encoder option that carries the server address.
func urlOption(kind string) string {
	if embedding.Kind(kind) == embedding.KindHTTP {
		return "url"
	}
	return "base_url"
}
