// Package projectconfig provides the ProjectConfig struct and loader for
// .taskqa.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up by Load.
const FileName = ".taskqa.yaml"

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultSimilarityThreshold = 0.5
	DefaultKeepThreshold       = 0.5

	DefaultPenalty = 0.2

	DefaultEncoderKind  = "ollama"
	DefaultEncoderModel = "nomic-embed-text"

	DefaultCacheDir = ".taskqa-cache"

	DefaultTopN                  = 20
	DefaultMaxDuplicates         = 20
	DefaultMaxSimilarityExamples = 2
	DefaultReportFormat          = "text"
)

// ThresholdsConfig holds the similarity and partition thresholds. Nil means
// unset; an explicit 0 is a valid threshold.
type ThresholdsConfig struct {
	Similarity *float64 `yaml:"similarity,omitempty"`
	Keep       *float64 `yaml:"keep,omitempty"`
}

// ScoringConfig holds the per-check score penalties. Nil means unset; an
// explicit 0 turns the check's deduction off.
type ScoringConfig struct {
	WhoPenalty        *float64 `yaml:"who_penalty,omitempty"`
	WhenPenalty       *float64 `yaml:"when_penalty,omitempty"`
	SimilarityPenalty *float64 `yaml:"similarity_penalty,omitempty"`
}

// EncoderConfig selects the text encoder. Options are decoded per kind by
// the embedding package.
type EncoderConfig struct {
	Kind    string         `yaml:"kind,omitempty"`
	Model   string         `yaml:"model,omitempty"`
	Options map[string]any `yaml:"options,omitempty"`
}

// CacheConfig holds encoder vector cache settings.
type CacheConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// ReportConfig holds report detail settings.
type ReportConfig struct {
	TopN                  int    `yaml:"top_n,omitempty"`
	MaxDuplicates         int    `yaml:"max_duplicates,omitempty"`
	MaxSimilarityExamples int    `yaml:"max_similarity_examples,omitempty"`
	Format                string `yaml:"format,omitempty"`
}

// FilterConfig holds partition settings.
type FilterConfig struct {
	DropDuplicates *bool `yaml:"drop_duplicates,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .taskqa.yaml.
type ProjectConfig struct {
	Thresholds ThresholdsConfig `yaml:"thresholds,omitempty"`
	Scoring    ScoringConfig    `yaml:"scoring,omitempty"`
	Encoder    EncoderConfig    `yaml:"encoder,omitempty"`
	Cache      CacheConfig      `yaml:"cache,omitempty"`
	Report     ReportConfig     `yaml:"report,omitempty"`
	Filter     FilterConfig     `yaml:"filter,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Thresholds: ThresholdsConfig{
			Similarity: Float64Ptr(DefaultSimilarityThreshold),
			Keep:       Float64Ptr(DefaultKeepThreshold),
		},
		Scoring: ScoringConfig{
			WhoPenalty:        Float64Ptr(DefaultPenalty),
			WhenPenalty:       Float64Ptr(DefaultPenalty),
			SimilarityPenalty: Float64Ptr(DefaultPenalty),
		},
		Encoder: EncoderConfig{
			Kind:  DefaultEncoderKind,
			Model: DefaultEncoderModel,
		},
		Cache: CacheConfig{
			Enabled: boolPtr(false),
			Dir:     DefaultCacheDir,
		},
		Report: ReportConfig{
			TopN:                  DefaultTopN,
			MaxDuplicates:         DefaultMaxDuplicates,
			MaxSimilarityExamples: DefaultMaxSimilarityExamples,
			Format:                DefaultReportFormat,
		},
		Filter: FilterConfig{
			DropDuplicates: boolPtr(false),
		},
	}
}

// CacheEnabled reports whether the on-disk vector cache is switched on.
func (c *ProjectConfig) CacheEnabled() bool {
	return c.Cache.Enabled != nil && *c.Cache.Enabled
}

// DropDuplicates reports whether later duplicates are filtered out.
func (c *ProjectConfig) DropDuplicates() bool {
	return c.Filter.DropDuplicates != nil && *c.Filter.DropDuplicates
}

// SimilarityThreshold returns the minimum task/transcript similarity.
func (c *ProjectConfig) SimilarityThreshold() float64 {
	return floatOr(c.Thresholds.Similarity, DefaultSimilarityThreshold)
}

// KeepThreshold returns the minimum score for the kept file.
func (c *ProjectConfig) KeepThreshold() float64 {
	return floatOr(c.Thresholds.Keep, DefaultKeepThreshold)
}

// WhoPenalty returns the deduction for an unknown assignee.
func (c *ProjectConfig) WhoPenalty() float64 {
	return floatOr(c.Scoring.WhoPenalty, DefaultPenalty)
}

// WhenPenalty returns the deduction for a deadline missing from the transcript.
func (c *ProjectConfig) WhenPenalty() float64 {
	return floatOr(c.Scoring.WhenPenalty, DefaultPenalty)
}

// SimilarityPenalty returns the deduction applied per share of low-similarity tasks.
func (c *ProjectConfig) SimilarityPenalty() float64 {
	return floatOr(c.Scoring.SimilarityPenalty, DefaultPenalty)
}

// Load finds .taskqa.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	mergeConfig(cfg, &fileCfg)
	return cfg, nil
}

// Save writes cfg as YAML to dir/.taskqa.yaml and returns the path.
func Save(dir string, cfg *ProjectConfig) (string, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encoding %s: %w", FileName, err)
	}
	p := filepath.Join(dir, FileName)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %q: %w", p, err)
	}
	return p, nil
}

// findConfigFile walks up from dir looking for .taskqa.yaml (max 10 levels).
// Returns os.ErrNotExist if no config file is found.
func findConfigFile(dir string) ([]byte, error) {
	// Absolute so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays set (non-nil or non-zero) values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Thresholds
	if src.Thresholds.Similarity != nil {
		dst.Thresholds.Similarity = src.Thresholds.Similarity
	}
	if src.Thresholds.Keep != nil {
		dst.Thresholds.Keep = src.Thresholds.Keep
	}

	// Scoring
	if src.Scoring.WhoPenalty != nil {
		dst.Scoring.WhoPenalty = src.Scoring.WhoPenalty
	}
	if src.Scoring.WhenPenalty != nil {
		dst.Scoring.WhenPenalty = src.Scoring.WhenPenalty
	}
	if src.Scoring.SimilarityPenalty != nil {
		dst.Scoring.SimilarityPenalty = src.Scoring.SimilarityPenalty
	}

	// Encoder
	if src.Encoder.Kind != "" {
		dst.Encoder.Kind = src.Encoder.Kind
		// a different kind has a different default model
		if src.Encoder.Model == "" && src.Encoder.Kind != DefaultEncoderKind {
			dst.Encoder.Model = ""
		}
	}
	if src.Encoder.Model != "" {
		dst.Encoder.Model = src.Encoder.Model
	}
	if src.Encoder.Options != nil {
		dst.Encoder.Options = src.Encoder.Options
	}

	// Cache
	if src.Cache.Enabled != nil {
		dst.Cache.Enabled = src.Cache.Enabled
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}

	// Report
	if src.Report.TopN != 0 {
		dst.Report.TopN = src.Report.TopN
	}
	if src.Report.MaxDuplicates != 0 {
		dst.Report.MaxDuplicates = src.Report.MaxDuplicates
	}
	if src.Report.MaxSimilarityExamples != 0 {
		dst.Report.MaxSimilarityExamples = src.Report.MaxSimilarityExamples
	}
	if src.Report.Format != "" {
		dst.Report.Format = src.Report.Format
	}

	// Filter
	if src.Filter.DropDuplicates != nil {
		dst.Filter.DropDuplicates = src.Filter.DropDuplicates
	}
}

func boolPtr(b bool) *bool {
	return &b
}

// Float64Ptr returns a pointer to f, for setting optional config values.
func Float64Ptr(f float64) *float64 {
	return &f
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
