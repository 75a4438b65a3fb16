// Package wizard collects project settings for `taskqa init` through an
// interactive form.
package wizard

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spboyer/taskqa/internal/embedding"
	"github.com/spboyer/taskqa/internal/projectconfig"
	"golang.org/x/term"
)

// Answers holds all fields collected during the interactive wizard.
type Answers struct {
	EncoderKind         string
	EncoderModel        string
	EncoderURL          string
	SimilarityThreshold string
	KeepThreshold       string
	CacheEnabled        bool
	DropDuplicates      bool
}

// DefaultAnswers pre-fills the form from an existing configuration.
func DefaultAnswers(cfg *projectconfig.ProjectConfig) Answers {
	a := Answers{
		EncoderKind:         cfg.Encoder.Kind,
		EncoderModel:        cfg.Encoder.Model,
		SimilarityThreshold: formatFloat(cfg.SimilarityThreshold()),
		KeepThreshold:       formatFloat(cfg.KeepThreshold()),
		CacheEnabled:        cfg.CacheEnabled(),
		DropDuplicates:      cfg.DropDuplicates(),
	}
	if u, ok := cfg.Encoder.Options[urlOption(cfg.Encoder.Kind)].(string); ok {
		a.EncoderURL = u
	}
	return a
}

// RunConfigWizard runs an interactive huh form seeded from base and returns
// the resulting configuration. base is not modified.
func RunConfigWizard(in io.Reader, out io.Writer, base *projectconfig.ProjectConfig) (*projectconfig.ProjectConfig, error) {
	a := DefaultAnswers(base)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Encoder").
				Description("Text encoder used for the similarity check").
				Options(
					huh.NewOption("ollama (local embedding server)", "ollama"),
					huh.NewOption("http (generic /embed endpoint)", "http"),
					huh.NewOption("hashing (offline, no model)", "hashing"),
				).
				Value(&a.EncoderKind),
			huh.NewInput().
				Title("Encoder model").
				Description("Leave empty for the encoder's default").
				Placeholder(projectconfig.DefaultEncoderModel).
				Value(&a.EncoderModel),
			huh.NewInput().
				Title("Encoder URL").
				Description("Leave empty for the encoder's default").
				Placeholder("http://localhost:11434").
				Value(&a.EncoderURL),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Similarity threshold").
				Description("Tasks below this cosine similarity are flagged").
				Value(&a.SimilarityThreshold).
				Validate(ValidateThreshold),
			huh.NewInput().
				Title("Keep threshold").
				Description("Samples scoring at or above this go to the kept file").
				Value(&a.KeepThreshold).
				Validate(ValidateThreshold),
			huh.NewConfirm().
				Title("Cache encoder vectors on disk?").
				Value(&a.CacheEnabled),
			huh.NewConfirm().
				Title("Move later duplicate transcripts to the filtered file?").
				Value(&a.DropDuplicates),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	return Apply(base, a)
}

// Apply returns a copy of base with the answers applied.
func Apply(base *projectconfig.ProjectConfig, a Answers) (*projectconfig.ProjectConfig, error) {
	sim, err := parseThreshold(a.SimilarityThreshold)
	if err != nil {
		return nil, fmt.Errorf("similarity threshold: %w", err)
	}
	keep, err := parseThreshold(a.KeepThreshold)
	if err != nil {
		return nil, fmt.Errorf("keep threshold: %w", err)
	}

	cfg := *base
	cfg.Thresholds.Similarity = &sim
	cfg.Thresholds.Keep = &keep

	kind := strings.TrimSpace(a.EncoderKind)
	if kind == "" {
		kind = projectconfig.DefaultEncoderKind
	}
	if !slices.Contains(embedding.Kinds, embedding.Kind(kind)) {
		return nil, fmt.Errorf("encoder %q: want one of %s", kind, embedding.KindNames())
	}
	cfg.Encoder = projectconfig.EncoderConfig{
		Kind:  kind,
		Model: strings.TrimSpace(a.EncoderModel),
	}
	if u := strings.TrimSpace(a.EncoderURL); u != "" && kind != string(embedding.KindHashing) {
		cfg.Encoder.Options = map[string]any{urlOption(kind): u}
	}

	cache := a.CacheEnabled
	cfg.Cache.Enabled = &cache
	drop := a.DropDuplicates
	cfg.Filter.DropDuplicates = &drop
	return &cfg, nil
}

// ValidateThreshold accepts a number in [0, 1].
func ValidateThreshold(s string) error {
	_, err := parseThreshold(s)
	return err
}

func parseThreshold(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if v < 0 || v > 1 {
		return 0, fmt.Errorf("%v must be between 0 and 1", v)
	}
	return v, nil
}

// urlOption is the encoder option key that carries the server address.
func urlOption(kind string) string {
	if kind == "http" {
		return "url"
	}
	return "base_url"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
