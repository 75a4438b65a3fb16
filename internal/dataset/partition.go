package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// PartitionPaths derives the kept and filtered output paths for an input
// corpus: data.jsonl becomes data.score_ge_0.5.jsonl and
// data.score_lt_0.5.jsonl. A compression suffix is preserved.
func PartitionPaths(input string, threshold float64) (kept, filtered string) {
	thr := strconv.FormatFloat(threshold, 'f', -1, 64)
	return insertTag(input, ".score_ge_"+thr), insertTag(input, ".score_lt_"+thr)
}

func insertTag(path, tag string) string {
	dir, base := filepath.Split(path)
	if i := strings.LastIndex(base, ".jsonl"); i >= 0 {
		return dir + base[:i] + tag + base[i:]
	}
	if ext := filepath.Ext(base); ext != "" {
		return dir + strings.TrimSuffix(base, ext) + tag + ext
	}
	return dir + base + tag + ".jsonl"
}

// PartitionWriter splits lines into a kept and a filtered corpus, keeping the
// input order within each.
type PartitionWriter struct {
	kept     *Writer
	filtered *Writer
}

// SamePath reports whether a and b name the same file, either as the same
// absolute path or, when both exist, the same inode.
func SamePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil && absA == absB {
		return true
	}
	infoA, err := os.Stat(a)
	if err != nil {
		return false
	}
	infoB, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(infoA, infoB)
}

// NewPartitionWriter creates both output files.
func NewPartitionWriter(keptPath, filteredPath string) (*PartitionWriter, error) {
	if SamePath(keptPath, filteredPath) {
		return nil, fmt.Errorf("kept and filtered outputs must differ: %s", keptPath)
	}
	kept, err := Create(keptPath)
	if err != nil {
		return nil, err
	}
	filtered, err := Create(filteredPath)
	if err != nil {
		_ = kept.Close()
		return nil, err
	}
	return &PartitionWriter{kept: kept, filtered: filtered}, nil
}

// Write sends line to the kept file when keep is true, else to filtered.
func (p *PartitionWriter) Write(line Line, keep bool) error {
	if keep {
		return p.kept.WriteLine(line.Raw)
	}
	return p.filtered.WriteLine(line.Raw)
}

// Counts returns the number of kept and filtered lines written so far.
func (p *PartitionWriter) Counts() (kept, filtered int) {
	return p.kept.Count(), p.filtered.Count()
}

// Close closes both files.
func (p *PartitionWriter) Close() error {
	kerr := p.kept.Close()
	ferr := p.filtered.Close()
	if kerr != nil {
		return kerr
	}
	return ferr
}
