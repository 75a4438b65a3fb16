package spinner

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// syncBuffer guards a bytes.Buffer written by the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinner_DrawsAndClears(t *testing.T) {
	var out syncBuffer
	s := Start(&out, "validating")

	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "validating")
	}, 2*time.Second, 10*time.Millisecond)

	s.SetMessage("validated 120 samples")
	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "validated 120 samples")
	}, 2*time.Second, 10*time.Millisecond)

	s.Stop()
	s.Stop()

	got := out.String()
	assert.True(t, strings.HasSuffix(got, "\r"), "line should be cleared on stop")
	assert.Contains(t, got, strings.Repeat(" ", len("validated 120 samples")+2))
}

func TestIsTerminal_NonFile(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}
