package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-cli/internal/config"
	"github.com/sells-group/lead-cli/internal/enrich"
	"github.com/sells-group/lead-cli/internal/model"
)

func TestCollectURLs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	require.NoError(t, os.WriteFile(path, []byte("https://b.pl\nhttps://a.pl\n"), 0o644))

	urls, err := collectURLs([]string{"https://a.pl"}, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.pl", "https://b.pl"}, urls)

	_, err = collectURLs(nil, "")
	assert.Error(t, err)
}

func TestRunEnrich_Streams(t *testing.T) {
	events := make(chan enrich.Event, 2)
	r1 := model.NewEnrichmentResult("https://a.pl")
	r2 := model.SkippedResult("https://olx.pl")
	events <- enrich.Event{Result: r1, Completed: 1, Total: 2}
	events <- enrich.Event{Result: r2, Completed: 2, Total: 2}
	close(events)

	var buf bytes.Buffer
	results := runEnrich(events, &buf, true)
	require.Len(t, results, 2)

	var lines []map[string]any
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		lines = append(lines, m)
	}
	require.Len(t, lines, 3)
	assert.Equal(t, "enrich_result", lines[0]["type"])
	assert.EqualValues(t, 100, lines[1]["progress"])
	assert.Equal(t, "done", lines[2]["type"])
}

func TestRunEnrich_Quiet(t *testing.T) {
	events := make(chan enrich.Event, 1)
	events <- enrich.Event{Result: model.NewEnrichmentResult("https://a.pl"), Completed: 1, Total: 1}
	close(events)

	var buf bytes.Buffer
	results := runEnrich(events, &buf, false)
	assert.Len(t, results, 1)
	assert.Zero(t, buf.Len())
}

func TestRunHarvest(t *testing.T) {
	chunks := make(chan model.Chunk, 3)
	chunks <- model.DataChunk(model.ChunkLeads, []model.Lead{{Name: "A"}, {Name: "B"}}, 50)
	chunks <- model.ProgressChunk(100)
	chunks <- model.DoneChunk()
	close(chunks)

	var buf bytes.Buffer
	leads := runHarvest(chunks, &buf, true)
	assert.Len(t, leads, 2)
	assert.Equal(t, 3, bytes.Count(buf.Bytes(), []byte("\n")))
}

func TestInitOracle(t *testing.T) {
	ctx := context.Background()

	o, err := initOracle(ctx, &config.Config{Analyze: config.AnalyzeConfig{Provider: "none"}})
	require.NoError(t, err)
	assert.Nil(t, o)

	o, err = initOracle(ctx, &config.Config{
		Analyze:   config.AnalyzeConfig{Provider: "anthropic"},
		Anthropic: config.AnthropicConfig{Key: "sk-test", Model: "claude-haiku-4-5-20251001"},
	})
	require.NoError(t, err)
	assert.NotNil(t, o)

	_, err = initOracle(ctx, &config.Config{Analyze: config.AnalyzeConfig{Provider: "gemini"}})
	assert.Error(t, err, "gemini without a key")

	_, err = initOracle(ctx, &config.Config{Analyze: config.AnalyzeConfig{Provider: "bard"}})
	assert.Error(t, err)
}

func TestInitBlocklist(t *testing.T) {
	bl, err := initBlocklist(config.BlocklistConfig{Extra: []string{"katalog.pl"}})
	require.NoError(t, err)
	assert.True(t, bl.IsBlocked("https://www.katalog.pl/firma"))
	assert.True(t, bl.IsBlocked("https://olx.pl"))

	path := filepath.Join(t.TempDir(), "blocklist.yaml")
	require.NoError(t, os.WriteFile(path, []byte("blocklist:\n  - spis.pl\n"), 0o644))
	bl, err = initBlocklist(config.BlocklistConfig{File: path})
	require.NoError(t, err)
	assert.True(t, bl.IsBlocked("https://spis.pl"))

	_, err = initBlocklist(config.BlocklistConfig{File: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID:        "abc12345-6789-0000-0000-000000000000",
			Kind:      model.RunKindEnrich,
			Status:    model.RunStatusComplete,
			Total:     10,
			Completed: 10,
			CreatedAt: now,
			UpdatedAt: now.Add(2 * time.Minute),
		},
		{
			ID:        "def12345-6789-0000-0000-000000000000",
			Kind:      model.RunKindHarvest,
			Status:    model.RunStatusFailed,
			Total:     4,
			Completed: 1,
			Error:     "client disconnected: context canceled while streaming results",
			CreatedAt: now.Add(-1 * time.Hour),
			UpdatedAt: now.Add(-59 * time.Minute),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "KIND")
	assert.Contains(t, output, "abc12345")
	assert.Contains(t, output, "10/10 (100%)")
	assert.Contains(t, output, "1/4 (25%)")
	assert.Contains(t, output, "harvest")
	assert.Contains(t, output, "2m0s")
	assert.Contains(t, output, "...")
	assert.Contains(t, output, "2025-06-15 10:30")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc12345", truncateID("abc12345-6789"))
	assert.Equal(t, "short", truncateID("short"))
}
