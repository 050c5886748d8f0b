package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level LogLevel) (*HiveLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	cfg := DefaultLoggerConfig()
	cfg.Level = level
	cfg.Format = "json"
	cfg.Output = buf
	return NewLogger(cfg), buf
}

func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)
	var record map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &record))
	return record
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LogLevelDebug.String())
	assert.Equal(t, "ERROR", LogLevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(99).String())
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelWarn)

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	assert.NotZero(t, buf.Len())
}

func TestContextualTags(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelDebug)

	logger.WithComponent("orchestrator").WithRun("run-7").Info("task coordinated", "subtasks", 4)

	record := lastRecord(t, buf)
	assert.Equal(t, "orchestrator", record["component"])
	assert.Equal(t, "run-7", record["run_id"])
	assert.Equal(t, float64(4), record["subtasks"])
}

func TestLogDelegation(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelDebug)

	logger.LogDelegation("a", "b", "ping", 5*time.Millisecond, false, errors.New("timeout"))

	record := lastRecord(t, buf)
	assert.Equal(t, "Delegation failed", record["msg"])
	assert.Equal(t, "a", record["from"])
	assert.Equal(t, "b", record["to"])
	assert.Equal(t, "timeout", record["error"])
}

func TestLogRunFailureEscalatesLevel(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelDebug)

	logger.LogRun("etl_pipeline", 4, time.Second, "failed")

	record := lastRecord(t, buf)
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "Run failed", record["msg"])
}

func TestNoOpLoggerImplementsInterface(t *testing.T) {
	var _ Logger = NoOpLogger{}
	var _ Logger = &HiveLogger{}
	var _ Logger = &SlogAdapter{}
}
