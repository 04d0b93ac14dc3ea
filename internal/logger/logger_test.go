package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerboseToggle(t *testing.T) {
	buf := new(bytes.Buffer)
	SetOutput(buf)
	defer SetOutput(os.Stderr)

	SetVerbose(false)
	Debug("hidden %d", 1)
	Info("hidden")
	Warn("hidden")
	Section("hidden")
	assert.Empty(t, buf.String())

	SetVerbose(true)
	defer SetVerbose(false)

	Debug("value %d", 42)
	Info("stage done")
	Warn("page skipped")
	Section("chunking")

	out := buf.String()
	assert.Contains(t, out, "[DEBUG] value 42\n")
	assert.Contains(t, out, "[INFO] stage done\n")
	assert.Contains(t, out, "[WARN] page skipped\n")
	assert.Contains(t, out, "=== chunking ===\n")
}

func TestErrorAlwaysPrints(t *testing.T) {
	buf := new(bytes.Buffer)
	SetOutput(buf)
	defer SetOutput(os.Stderr)

	SetVerbose(false)
	Error("upsert failed: %v", "boom")

	assert.Contains(t, buf.String(), "[ERROR] upsert failed: boom\n")
}

func TestIsVerbose(t *testing.T) {
	SetVerbose(true)
	assert.True(t, IsVerbose())
	SetVerbose(false)
	assert.False(t, IsVerbose())
}
