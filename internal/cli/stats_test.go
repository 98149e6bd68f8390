package cli

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/mailtriage/internal/model"
)

func TestStatsCommand_Human(t *testing.T) {
	store := testStore(t)
	seedStore(t, store, model.Productive, "a", "b", "c")
	seedStore(t, store, model.Unproductive, "d")

	cmd := &StatsCommand{version: "1.0.0", globals: &GlobalFlags{}}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(context.Background(), store, "/tmp/history.db", 2048, "http://127.0.0.1:8000/api"))
	})

	assert.Contains(t, output, "Triage Status")
	assert.Contains(t, output, "Version:       1.0.0")
	assert.Contains(t, output, "/tmp/history.db (2.0 KB)")
	assert.Contains(t, output, "Classified:    4")
	assert.Contains(t, output, "Productive:    3 (75.0%)")
	assert.Contains(t, output, "Unproductive:  1 (25.0%)")
	assert.Contains(t, output, "Confidence:    75% avg")
	assert.Contains(t, output, "Time:          10 ms avg")
}

func TestStatsCommand_EmptyHistory(t *testing.T) {
	cmd := &StatsCommand{version: "dev", globals: &GlobalFlags{}}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(context.Background(), testStore(t), "memory", 0, "http://x"))
	})
	assert.Contains(t, output, "Classified:    0")
	assert.NotContains(t, output, "Productive:")
	assert.Contains(t, output, "Storage:       memory\n")
}

func TestStatsCommand_JSON(t *testing.T) {
	store := testStore(t)
	seedStore(t, store, model.Productive, "a")

	cmd := &StatsCommand{version: "dev", globals: &GlobalFlags{JSON: true}}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(context.Background(), store, "memory", 0, "http://x"))
	})

	var got statsJSON
	require.NoError(t, json.Unmarshal([]byte(output), &got))
	assert.Equal(t, 1, got.Total)
	assert.Equal(t, 1, got.Productive)
	assert.Equal(t, 100.0, got.ProductivePercent)
	assert.NotEmpty(t, got.Oldest)
	assert.Equal(t, "http://x", got.APIBase)
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{123456, "123,456"},
		{1234567, "1,234,567"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatNumber(tt.in))
	}
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "2.0 MB", formatBytes(2<<20))
}

func TestStatsCommand_CorruptHistoryDegrades(t *testing.T) {
	cmd := &StatsCommand{version: "dev", globals: &GlobalFlags{}}

	var err error
	output := captureOutput(t, func() {
		err = cmd.executeWithStore(context.Background(), corruptStore(t), "memory", 0, "http://x")
	})
	require.NoError(t, err)
	assert.Contains(t, output, "Classified:    0")
}
