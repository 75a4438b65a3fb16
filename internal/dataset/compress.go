package dataset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression identifies the codec of a corpus file.
type Compression string

const (
	CompressionNone Compression = ""
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// CompressionFor picks the codec from the file extension.
func CompressionFor(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return CompressionGzip
	case ".zst", ".zstd":
		return CompressionZstd
	default:
		return CompressionNone
	}
}

// openFile opens path for reading, decompressing by extension.
func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	switch CompressionFor(path) {
	case CompressionGzip:
		zr, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("gzip %s: %w", path, err)
		}
		return &stackedCloser{Reader: zr, closers: []func() error{zr.Close, f.Close}}, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("zstd %s: %w", path, err)
		}
		closeDecoder := func() error { zr.Close(); return nil }
		return &stackedCloser{Reader: zr, closers: []func() error{closeDecoder, f.Close}}, nil
	default:
		return f, nil
	}
}

// createFile creates path for writing, compressing by extension.
func createFile(path string) (io.WriteCloser, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir for %s: %w", path, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}

	switch CompressionFor(path) {
	case CompressionGzip:
		zw := gzip.NewWriter(f)
		return &stackedCloser{Writer: zw, closers: []func() error{zw.Close, f.Close}}, nil
	case CompressionZstd:
		zw, err := zstd.NewWriter(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("zstd %s: %w", path, err)
		}
		return &stackedCloser{Writer: zw, closers: []func() error{zw.Close, f.Close}}, nil
	default:
		return f, nil
	}
}

// stackedCloser closes a codec before the file underneath it.
type stackedCloser struct {
	io.Reader
	io.Writer
	closers []func() error
}

func (s *stackedCloser) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
