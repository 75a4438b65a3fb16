package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionPaths(t *testing.T) {
	tests := []struct {
		input     string
		threshold float64
		kept      string
		filtered  string
	}{
		{"data/train.jsonl", 0.5, "data/train.score_ge_0.5.jsonl", "data/train.score_lt_0.5.jsonl"},
		{"train.jsonl.gz", 0.75, "train.score_ge_0.75.jsonl.gz", "train.score_lt_0.75.jsonl.gz"},
		{"train.json", 1, "train.score_ge_1.json", "train.score_lt_1.json"},
		{"train", 0.5, "train.score_ge_0.5.jsonl", "train.score_lt_0.5.jsonl"},
		{"my.jsonl.dir/train.jsonl", 0.5, "my.jsonl.dir/train.score_ge_0.5.jsonl", "my.jsonl.dir/train.score_lt_0.5.jsonl"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			kept, filtered := PartitionPaths(filepath.FromSlash(tt.input), tt.threshold)
			assert.Equal(t, filepath.FromSlash(tt.kept), kept)
			assert.Equal(t, filepath.FromSlash(tt.filtered), filtered)
		})
	}
}

func TestPartitionWriter(t *testing.T) {
	dir := t.TempDir()
	keptPath := filepath.Join(dir, "out", "kept.jsonl")
	filteredPath := filepath.Join(dir, "out", "filtered.jsonl")

	pw, err := NewPartitionWriter(keptPath, filteredPath)
	require.NoError(t, err)

	input := []struct {
		raw  string
		keep bool
	}{
		{"l0", true}, {"l1", false}, {"l2", true}, {"", false}, {"l4", true},
	}
	for i, in := range input {
		require.NoError(t, pw.Write(Line{Number: i, Raw: []byte(in.raw)}, in.keep))
	}
	kept, filtered := pw.Counts()
	assert.Equal(t, 3, kept)
	assert.Equal(t, 2, filtered)
	require.NoError(t, pw.Close())

	r, err := Open(keptPath)
	require.NoError(t, err)
	keptLines := readAll(t, r)
	require.NoError(t, r.Close())

	r, err = Open(filteredPath)
	require.NoError(t, err)
	filteredLines := readAll(t, r)
	require.NoError(t, r.Close())

	var got []string
	for _, l := range keptLines {
		got = append(got, string(l.Raw))
	}
	assert.Equal(t, []string{"l0", "l2", "l4"}, got)
	require.Len(t, filteredLines, 2)
	assert.Equal(t, "l1", string(filteredLines[0].Raw))
	assert.True(t, filteredLines[1].Blank())
}

func TestNewPartitionWriter_SamePath(t *testing.T) {
	p := filepath.Join(t.TempDir(), "x.jsonl")
	_, err := NewPartitionWriter(p, p)
	assert.Error(t, err)
}

func TestSamePath(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.jsonl")
	b := filepath.Join(dir, "b.jsonl")
	require.NoError(t, os.WriteFile(a, []byte("x\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("x\n"), 0o644))
	link := filepath.Join(dir, "link.jsonl")
	require.NoError(t, os.Symlink(a, link))

	assert.True(t, SamePath(a, a))
	assert.True(t, SamePath(a, dir + "/sub/../a.jsonl"))
	assert.True(t, SamePath(a, link))
	assert.False(t, SamePath(a, b))
	assert.False(t, SamePath(a, filepath.Join(dir, "missing.jsonl")))
}
