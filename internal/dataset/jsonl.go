// Package dataset reads and writes JSON-Lines training corpora.
package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spboyer/taskqa/internal/models"
)

// ErrMalformedRecord marks a line that is blank, not a JSON object of the
// expected shape, or a sample with fewer than two messages.
var ErrMalformedRecord = errors.New("malformed record")

// Line is one physical line of a corpus file.
type Line struct {
	// Number is the 0-based line number, blank lines included.
	Number int
	// Raw is the line content without its trailing newline.
	Raw []byte
}

// Blank reports whether the line holds only whitespace.
func (l Line) Blank() bool {
	return len(bytes.TrimSpace(l.Raw)) == 0
}

// Reader iterates the lines of a corpus.
type Reader struct {
	src  io.ReadCloser
	buf  *bufio.Reader
	next int
}

// Open opens a corpus file; .gz and .zst files are decompressed.
func Open(path string) (*Reader, error) {
	rc, err := openFile(path)
	if err != nil {
		return nil, err
	}
	return &Reader{src: rc, buf: bufio.NewReaderSize(rc, 1<<20)}, nil
}

// NewReader reads an uncompressed corpus from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{src: io.NopCloser(r), buf: bufio.NewReader(r)}
}

// Next returns the next line, or io.EOF after the last one. Lines have no
// length limit.
func (r *Reader) Next() (Line, error) {
	raw, err := r.buf.ReadBytes('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return Line{}, fmt.Errorf("read line %d: %w", r.next, err)
	}
	if len(raw) == 0 && errors.Is(err, io.EOF) {
		return Line{}, io.EOF
	}

	raw = bytes.TrimSuffix(raw, []byte("\n"))
	line := Line{Number: r.next, Raw: raw}
	r.next++
	return line, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.src.Close()
}

// DecodeSample parses one line into a sample. Every failure wraps
// [ErrMalformedRecord].
func DecodeSample(raw []byte) (*models.Sample, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("%w: blank line", ErrMalformedRecord)
	}

	var s models.Sample
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if err := s.Check(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return &s, nil
}

// EachSample calls fn for every line of path, with the decoded sample or the
// decode error. Returning an error from fn stops the iteration.
func EachSample(path string, fn func(line Line, sample *models.Sample, decodeErr error) error) error {
	r, err := Open(path)
	if err != nil {
		return err
	}
	defer r.Close() //nolint:errcheck

	for {
		line, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		sample, decodeErr := DecodeSample(line.Raw)
		if err := fn(line, sample, decodeErr); err != nil {
			return err
		}
	}
}

// Writer writes raw lines to a corpus file.
type Writer struct {
	dst   io.WriteCloser
	buf   *bufio.Writer
	count int
}

// Create creates a corpus file; .gz and .zst files are compressed.
func Create(path string) (*Writer, error) {
	wc, err := createFile(path)
	if err != nil {
		return nil, err
	}
	return &Writer{dst: wc, buf: bufio.NewWriter(wc)}, nil
}

// WriteLine writes raw followed by a newline.
func (w *Writer) WriteLine(raw []byte) error {
	if _, err := w.buf.Write(raw); err != nil {
		return err
	}
	if err := w.buf.WriteByte('\n'); err != nil {
		return err
	}
	w.count++
	return nil
}

// Count returns the number of lines written.
func (w *Writer) Count() int {
	return w.count
}

// Close flushes and closes the file.
func (w *Writer) Close() error {
	ferr := w.buf.Flush()
	cerr := w.dst.Close()
	if ferr != nil {
		return ferr
	}
	return cerr
}
