package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryOutput captures entries for assertions.
type memoryOutput struct {
	entries []LogEntry
}

func (m *memoryOutput) Write(e LogEntry) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *memoryOutput) Sync() error  { return nil }
func (m *memoryOutput) Close() error { return nil }

func TestLoggerSeverityFiltering(t *testing.T) {
	out := &memoryOutput{}
	logger := NewLogger(Config{Severity: WARN, Outputs: []Output{out}})

	ctx := context.Background()
	logger.Debug(ctx, "dropped")
	logger.Info(ctx, "dropped too")
	logger.Warn(ctx, "kept")
	logger.Error(ctx, "kept as well")

	require.Len(t, out.entries, 2)
	assert.Equal(t, WARN, out.entries[0].Severity)
	assert.Equal(t, "kept", out.entries[0].Message)
	assert.Equal(t, ERROR, out.entries[1].Severity)
}

func TestLoggerCampaignIDFromContext(t *testing.T) {
	out := &memoryOutput{}
	logger := NewLogger(Config{Severity: DEBUG, Outputs: []Output{out}})

	ctx := WithCampaignID(context.Background(), "c-42")
	logger.Info(ctx, "recommending batch of %d", 3)

	require.Len(t, out.entries, 1)
	assert.Equal(t, "c-42", out.entries[0].CampaignID)
	assert.Equal(t, "recommending batch of 3", out.entries[0].Message)
}

func TestLoggerDefaultFields(t *testing.T) {
	out := &memoryOutput{}
	logger := NewLogger(Config{
		Severity:      DEBUG,
		Outputs:       []Output{out},
		DefaultFields: map[string]interface{}{"component": "recommender"},
	})

	logger.Info(context.Background(), "hello")

	require.Len(t, out.entries, 1)
	assert.Equal(t, "recommender", out.entries[0].Fields["component"])
}

func TestParseSeverity(t *testing.T) {
	assert.Equal(t, DEBUG, ParseSeverity("DEBUG"))
	assert.Equal(t, FATAL, ParseSeverity("FATAL"))
	assert.Equal(t, INFO, ParseSeverity("bogus"))
}

func TestGlobalLogger(t *testing.T) {
	custom := NewLogger(Config{Severity: ERROR})
	SetLogger(custom)
	assert.Same(t, custom, GetLogger())

	SetLogger(nil)
	assert.NotNil(t, GetLogger())
}
