package main

import (
	"encoding/csv"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func costRecordAt(ts time.Time, agent string, tokens int, cost float64) costRecord {
	return costRecord{
		Timestamp:    ts,
		Agent:        agent,
		Model:        "gpt-4o",
		InputTokens:  tokens / 2,
		OutputTokens: tokens - tokens/2,
		TotalTokens:  tokens,
		CostUSD:      cost,
	}
}

func TestBuildCostLedgerSortsByTimestamp(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	ledger := buildCostLedger([]costRecord{
		costRecordAt(base.Add(48*time.Hour), "writer", 100, 0.01),
		costRecordAt(base, "critic", 200, 0.02),
		costRecordAt(base.Add(24*time.Hour), "writer", 300, 0.03),
	}, nil)

	require.Len(t, ledger.Records, 3)
	assert.Equal(t, base, ledger.Earliest)
	assert.Equal(t, base.Add(48*time.Hour), ledger.Latest)
	assert.True(t, ledger.Records[0].Timestamp.Before(ledger.Records[1].Timestamp))
}

func TestFilterCostRecordsByRange(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	ledger := buildCostLedger([]costRecord{
		costRecordAt(base, "old", 100, 0.01),
		costRecordAt(base.Add(29*24*time.Hour), "recent", 100, 0.01),
		costRecordAt(base.Add(30*24*time.Hour), "latest", 100, 0.01),
	}, nil)

	day := filterCostRecords(ledger, costRangeOptions[0])
	require.Len(t, day, 2, "the 24h window anchors on the latest record")
	assert.Equal(t, "recent", day[0].Agent)

	all := filterCostRecords(ledger, costRangeOptions[len(costRangeOptions)-1])
	assert.Len(t, all, 3)
}

func TestSummarizeCosts(t *testing.T) {
	// Day buckets use local time, so anchor the fixtures there.
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.Local)
	records := []costRecord{
		costRecordAt(base, "writer", 1000, 0.05),
		costRecordAt(base.Add(time.Hour), "writer", 500, 0.02),
		costRecordAt(base.Add(25*time.Hour), "critic", 200, 0.10),
	}

	summary := summarizeCosts(records, costRangeOptions[3], costGroupByDay)

	assert.Equal(t, 3, summary.TotalCalls)
	assert.Equal(t, 1700, summary.TotalTokens)
	assert.InDelta(t, 0.17, summary.TotalCost, 1e-9)
	assert.Equal(t, 2, summary.DistinctAgents)
	assert.Equal(t, 2, summary.DistinctDays)
	require.NotEmpty(t, summary.TopAgents)
	assert.Equal(t, "critic", summary.TopAgents[0].Label, "agents rank by cost, not calls")
}

func TestAggregateCostsByAgentOrdering(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rows := aggregateCostsByAgent([]costRecord{
		costRecordAt(base, "cheap", 100, 0.01),
		costRecordAt(base, "expensive", 100, 0.50),
		costRecordAt(base, "", 100, 0.02),
	})

	require.Len(t, rows, 3)
	assert.Equal(t, "expensive", rows[0].Label)
	assert.Equal(t, "(unknown)", rows[1].Label)
	assert.Equal(t, "cheap", rows[2].Label)
}

func TestWriteCostsCSVRoundTrip(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	dir := t.TempDir()

	path, err := writeCostsCSV(dir, []costRecord{
		costRecordAt(base, "writer", 1000, 0.0525),
		costRecordAt(base.Add(time.Hour), "critic", 200, 0.01),
	})
	require.NoError(t, err)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"timestamp", "agent", "model", "input_tokens", "output_tokens", "total_tokens", "cost_usd"}, rows[0])
	assert.Equal(t, "writer", rows[1][1])
	assert.Equal(t, "1000", rows[1][5])
	assert.Equal(t, "0.052500", rows[1][6])

	parsed, err := time.Parse(time.RFC3339, rows[1][0])
	require.NoError(t, err)
	assert.True(t, parsed.Equal(base))
}

func TestWriteCostsCSVRejectsEmpty(t *testing.T) {
	_, err := writeCostsCSV(t.TempDir(), nil)
	assert.Error(t, err)
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "999", formatCompactTokens(999))
	assert.Equal(t, "1.5k", formatCompactTokens(1500))
	assert.Equal(t, "2.3M", formatCompactTokens(2_300_000))

	assert.Equal(t, "$0.00", formatCost(0))
	assert.Equal(t, "$1.25", formatCost(1.25))
	assert.Equal(t, "$0.0042", formatCost(0.0042))

	assert.Equal(t, "532", formatIntComma(532))
	assert.Equal(t, "12,345,678", formatIntComma(12345678))
}
