package main

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spboyer/taskqa/internal/models"
	"github.com/spboyer/taskqa/internal/projectconfig"
	"github.com/spboyer/taskqa/internal/reporting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommand_TextReportAndPartition(t *testing.T) {
	dir := t.TempDir()
	corpus := writeTestCorpus(t, dir)

	out, err := runCommand(t, "validate", corpus, "--encoder", "hashing", "--similarity-threshold", "0.2")
	require.NoError(t, err)

	assert.Contains(t, out, "=== Validation Report ===")
	assert.Contains(t, out, "Encoder:       hashing-2gram-512")
	assert.Contains(t, out, "Samples:       3 total, 2 schema OK, 1 schema errors")
	assert.Contains(t, out, "line 3 duplicates line 0")
	assert.Contains(t, out, "Partition at score >= 0.5:")

	kept := filepath.Join(dir, "corpus.score_ge_0.5.jsonl")
	filtered := filepath.Join(dir, "corpus.score_lt_0.5.jsonl")
	keptLines := readLines(t, kept)
	filteredLines := readLines(t, filtered)

	assert.Len(t, keptLines, 2)
	assert.Len(t, filteredLines, 2, "schema failure and blank line")
	assert.Contains(t, filteredLines, sampleLine(t, "PM: 회의 끝", `{"agendas":[]}`))
}

func TestValidateCommand_DropDuplicates(t *testing.T) {
	dir := t.TempDir()
	corpus := writeTestCorpus(t, dir)
	kept := filepath.Join(dir, "kept.jsonl")
	filtered := filepath.Join(dir, "filtered.jsonl")

	_, err := runCommand(t, "validate", corpus, "--encoder", "hashing", "--similarity-threshold", "0.2",
		"--kept", kept, "--filtered", filtered, "--drop-duplicates")
	require.NoError(t, err)

	assert.Len(t, readLines(t, kept), 1)
	assert.Len(t, readLines(t, filtered), 3)
}

func TestValidateCommand_JSONReportToFile(t *testing.T) {
	dir := t.TempDir()
	corpus := writeTestCorpus(t, dir)
	reportPath := filepath.Join(dir, "report.json")

	out, err := runCommand(t, "validate", corpus, "--encoder", "hashing", "--similarity-threshold", "0.2",
		"--format", "json", "-o", reportPath, "--no-partition")
	require.NoError(t, err)

	assert.Contains(t, out, "Validated 3 samples")
	assert.Contains(t, out, "Report saved to: "+reportPath)

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var outcome models.CorpusOutcome
	require.NoError(t, json.Unmarshal(data, &outcome))

	assert.NotEmpty(t, outcome.RunID)
	assert.Equal(t, "hashing-2gram-512", outcome.Setup.EncoderModel)
	assert.Equal(t, 0.2, outcome.Setup.SimilarityThreshold)
	require.Len(t, outcome.Results, 3)
	assert.Equal(t, []int{0, 1, 3}, []int{outcome.Results[0].Index, outcome.Results[1].Index, outcome.Results[2].Index})
	assert.True(t, outcome.Results[1].Issues.SchemaError)
	assert.Equal(t, []models.DuplicatePair{{First: 0, Later: 3}}, outcome.Duplicates)
	assert.Nil(t, outcome.Partition)

	_, err = os.Stat(filepath.Join(dir, "corpus.score_ge_0.5.jsonl"))
	assert.True(t, os.IsNotExist(err), "--no-partition must not write outputs")
}

func TestValidateCommand_ZeroSimilarityThreshold(t *testing.T) {
	dir := t.TempDir()
	corpus := writeTestCorpus(t, dir)
	reportPath := filepath.Join(dir, "report.json")

	_, err := runCommand(t, "validate", corpus, "--encoder", "hashing", "--similarity-threshold", "0",
		"--format", "json", "-o", reportPath, "--no-partition")
	require.NoError(t, err)

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var outcome models.CorpusOutcome
	require.NoError(t, json.Unmarshal(data, &outcome))

	assert.Equal(t, 0.0, outcome.Setup.SimilarityThreshold)
	for _, r := range outcome.Results {
		assert.Empty(t, r.Issues.LowSimilarity, "line %d", r.Index)
	}
}

func TestValidateCommand_OutputOverlapsInput(t *testing.T) {
	tests := []struct {
		name string
		flag string
	}{
		{"kept", "--kept"},
		{"filtered", "--filtered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			corpus := writeTestCorpus(t, dir)
			before, err := os.ReadFile(corpus)
			require.NoError(t, err)

			// relative spelling of the same file
			alias := dir + "/./corpus.jsonl"
			_, err = runCommand(t, "validate", corpus, "--encoder", "hashing", tt.flag, alias)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "is the input corpus")

			after, err := os.ReadFile(corpus)
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}

func TestValidateCommand_HelpListsEncoderKinds(t *testing.T) {
	out, err := runCommand(t, "validate", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Text encoder: ollama, http, hashing")
}

func TestValidateCommand_JUnit(t *testing.T) {
	dir := t.TempDir()
	corpus := writeTestCorpus(t, dir)
	junitPath := filepath.Join(dir, "junit.xml")

	out, err := runCommand(t, "validate", corpus, "--encoder", "hashing", "--no-partition", "--junit", junitPath)
	require.NoError(t, err)
	assert.Contains(t, out, "JUnit report saved to: "+junitPath)

	data, err := os.ReadFile(junitPath)
	require.NoError(t, err)
	var suites reporting.JUnitTestSuites
	require.NoError(t, xml.Unmarshal(data, &suites))
	assert.Equal(t, 3, suites.Tests)
	assert.Equal(t, 1, suites.Errors)
}

func TestValidateCommand_QualityGate(t *testing.T) {
	corpus := writeTestCorpus(t, t.TempDir())

	_, err := runCommand(t, "validate", corpus, "--encoder", "hashing", "--no-partition", "--fail-under", "0.9")
	require.Error(t, err)

	var gateErr *QualityGateError
	require.True(t, errors.As(err, &gateErr))
	assert.Equal(t, 0.9, gateErr.Minimum)
	assert.Less(t, gateErr.MeanScore, 0.9)

	_, err = runCommand(t, "validate", corpus, "--encoder", "hashing", "--no-partition", "--fail-under", "0.1")
	assert.NoError(t, err)
}

func TestValidateCommand_Errors(t *testing.T) {
	corpus := writeTestCorpus(t, t.TempDir())

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing file", []string{"validate", "/nonexistent/corpus.jsonl"}, "opening corpus"},
		{"no args", []string{"validate"}, "accepts 1 arg"},
		{"bad similarity threshold", []string{"validate", corpus, "--encoder", "hashing", "--similarity-threshold", "1.5"}, "similarity threshold must be between 0 and 1"},
		{"bad keep threshold", []string{"validate", corpus, "--encoder", "hashing", "--keep-threshold", "-1"}, "keep threshold must be between 0 and 1"},
		{"bad fail-under", []string{"validate", corpus, "--encoder", "hashing", "--fail-under", "2"}, "--fail-under must be between 0 and 1"},
		{"bad format", []string{"validate", corpus, "--encoder", "hashing", "--format", "pdf"}, "invalid report format"},
		{"bad encoder", []string{"validate", corpus, "--encoder", "word2vec"}, "not a valid encoder kind"},
		{"http without url", []string{"validate", corpus, "--encoder", "http"}, "url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCommand(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)

			var gateErr *QualityGateError
			assert.False(t, errors.As(err, &gateErr))
		})
	}
}

func TestApplyValidateFlags(t *testing.T) {
	cmd := newValidateCommand()
	require.NoError(t, cmd.ParseFlags([]string{
		"--encoder", "http",
		"--encoder-url", "http://embed:8080",
		"--model", "bge-m3",
		"--keep-threshold", "0.7",
		"--cache-dir", ".vectors",
		"--top-n", "5",
		"--drop-duplicates",
	}))

	cfg := projectconfig.New()
	cfg.Encoder.Options = map[string]any{"base_url": "http://ollama:11434"}
	var flags validateFlags
	flags.encoderKind, _ = cmd.Flags().GetString("encoder")
	flags.encoderURL, _ = cmd.Flags().GetString("encoder-url")
	flags.model, _ = cmd.Flags().GetString("model")
	flags.keepThreshold, _ = cmd.Flags().GetFloat64("keep-threshold")
	flags.cacheDir, _ = cmd.Flags().GetString("cache-dir")
	flags.topN, _ = cmd.Flags().GetInt("top-n")
	flags.dropDuplicates, _ = cmd.Flags().GetBool("drop-duplicates")

	applyValidateFlags(cmd, cfg, &flags)

	assert.Equal(t, "http", cfg.Encoder.Kind)
	assert.Equal(t, "bge-m3", cfg.Encoder.Model)
	assert.Equal(t, map[string]any{"url": "http://embed:8080"}, cfg.Encoder.Options)
	assert.Equal(t, 0.7, cfg.KeepThreshold())
	assert.Equal(t, 0.5, cfg.SimilarityThreshold())
	assert.True(t, cfg.CacheEnabled())
	assert.Equal(t, ".vectors", cfg.Cache.Dir)
	assert.Equal(t, 5, cfg.Report.TopN)
	assert.True(t, cfg.DropDuplicates())
}

func TestValidateCommand_CacheDirPersistsVectors(t *testing.T) {
	dir := t.TempDir()
	corpus := writeTestCorpus(t, dir)
	cacheDir := filepath.Join(dir, "vectors")

	_, err := runCommand(t, "validate", corpus, "--encoder", "hashing", "--no-partition", "--cache-dir", cacheDir)
	require.NoError(t, err)

	entries, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	// one transcript and one task description
	assert.Len(t, entries, 2)
}
