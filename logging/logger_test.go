package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/crytic/stylus-replay/logging/colors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAddAndRemoveWriter ensures writers are deduplicated on add and dropped on remove.
func TestAddAndRemoveWriter(t *testing.T) {
	logger := NewLogger(zerolog.InfoLevel, false)

	var structured, unstructured bytes.Buffer
	logger.AddWriter(&structured, STRUCTURED)
	logger.AddWriter(&unstructured, UNSTRUCTURED)
	assert.Len(t, logger.Writers(), 2)

	// Duplicates of the structured writer are ignored
	logger.AddWriter(&structured, STRUCTURED)
	assert.Len(t, logger.Writers(), 2)

	logger.RemoveWriter(&structured)
	assert.Len(t, logger.Writers(), 1)

	// Removing an unknown writer is a no-op
	logger.RemoveWriter(os.Stdout)
	assert.Len(t, logger.Writers(), 1)
}

// TestStructuredOutput verifies that structured writers receive JSON events carrying the message, the sub-logger
// key and any structured info.
func TestStructuredOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(zerolog.InfoLevel, false, &buf)
	sub := logger.NewSubLogger("module", REPLAY_SERVICE)

	sub.Info("replayed ", 3, " hostios", StructuredLogInfo{"frame": "0xdead"})

	var event map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "replayed 3 hostios", event["message"])
	assert.Equal(t, REPLAY_SERVICE, event["module"])
	assert.Equal(t, "info", event["level"])
	assert.Equal(t, map[string]any{"frame": "0xdead"}, event["info"])
}

// TestLevelFiltering verifies that events below the logger level are dropped.
func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(zerolog.WarnLevel, false, &buf)

	logger.Debug("not shown")
	logger.Info("not shown either")
	assert.Empty(t, buf.String())

	logger.Error("shown", errors.New("boom"))
	assert.Contains(t, buf.String(), "boom")
	assert.Contains(t, buf.String(), "shown")
}

// TestDisabledColors ensures that colorized arguments render as plain text when colors are turned off.
func TestDisabledColors(t *testing.T) {
	colors.DisableColor()
	defer colors.EnableColor()

	buffer := NewLogBuffer()
	buffer.Append(colors.Red, "divergence", colors.Reset, " at ", "0xdead")
	assert.Equal(t, "divergence at 0xdead", buffer.ColorString())
	assert.Equal(t, "divergence at 0xdead", buffer.String())
	assert.False(t, strings.Contains(buffer.ColorString(), "\x1b["))
}

// TestNestedLogBuffer ensures a LogBuffer passed as an argument is flattened into the message.
func TestNestedLogBuffer(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(zerolog.InfoLevel, false)
	logger.AddWriter(&buf, UNSTRUCTURED)

	inner := NewLogBuffer()
	inner.Append("expected ", "storage_load_bytes32")
	logger.Info("[divergence] ", inner)

	assert.Contains(t, buf.String(), "[divergence] expected storage_load_bytes32")
}
