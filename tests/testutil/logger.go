package testutil

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/systmms/secretsync/internal/logging"
)

// TestLogger is a logging.Logger whose output is captured in memory.
//
// Example usage:
//
//	logger := NewTestLogger(t)
//	store, _ := secretstores.NewKeyringStore(cfg, logger.Logger)
//	...
//	logger.AssertContains(t, "does not support metadata")
type TestLogger struct {
	*logging.Logger
	buf *lockedBuffer
}

// NewTestLogger creates a capturing logger with debug output enabled and
// colours disabled.
func NewTestLogger(t *testing.T) *TestLogger {
	t.Helper()
	buf := &lockedBuffer{}
	return &TestLogger{Logger: logging.NewWithWriter(buf, true, true), buf: buf}
}

// Output returns everything logged so far.
func (l *TestLogger) Output() string {
	return l.buf.String()
}

// AssertContains checks that the output contains substr.
func (l *TestLogger) AssertContains(t *testing.T, substr string) {
	t.Helper()
	assert.Contains(t, l.Output(), substr)
}

// AssertNotContains checks that the output does not contain substr.
func (l *TestLogger) AssertNotContains(t *testing.T, substr string) {
	t.Helper()
	assert.NotContains(t, l.Output(), substr)
}

// Lines returns the non-empty output lines.
func (l *TestLogger) Lines() []string {
	var lines []string
	for _, line := range strings.Split(l.Output(), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
