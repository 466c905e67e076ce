package logging

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecretRedaction(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "secret is redacted",
			input:    "my-secret-password",
			expected: "[REDACTED]",
		},
		{
			name:     "empty secret is still redacted",
			input:    "",
			expected: "[REDACTED]",
		},
		{
			name:     "complex secret is redacted",
			input:    "password123!@#",
			expected: "[REDACTED]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Secret(tt.input).String())
			assert.Equal(t, tt.expected, fmt.Sprintf("%#v", Secret(tt.input)))
		})
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, true, true)

	logger.Info("pulled %d file(s)", 2)
	logger.Warn("formatted %s message", "warn")
	logger.Error("formatted %s message", "error")
	logger.Debug("formatted %s message", "debug")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"✓ pulled 2 file(s)",
		"⚠ formatted warn message",
		"✗ formatted error message",
		"[DEBUG] formatted debug message",
	}, lines)
}

func TestLoggerDebugDisabled(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, false, true)

	logger.Debug("secret already exists, updating secret")

	assert.Empty(t, buf.String())
}

func TestLoggerColor(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, false, false)

	logger.Info("done")

	assert.Contains(t, buf.String(), "\033[32m")
}

func TestLoggerNeverPrintsSecretValue(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, true, true)
	value := "super-secret-password-12345"

	logger.Info("Retrieved secret: %s", Secret(value))
	logger.Debug("Retrieved secret: %v", Secret(value))

	assert.Contains(t, buf.String(), "[REDACTED]")
	assert.NotContains(t, buf.String(), value)
}
