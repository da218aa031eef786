package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const maxCostPreviewRecords = 24

type costRangeOption struct {
	Key      string
	Label    string
	Duration time.Duration
}

var costRangeOptions = []costRangeOption{
	{Key: "1d", Label: "Last 24 hours", Duration: 24 * time.Hour},
	{Key: "7d", Label: "Last 7 days", Duration: 7 * 24 * time.Hour},
	{Key: "30d", Label: "Last 30 days", Duration: 30 * 24 * time.Hour},
	{Key: "all", Label: "All time", Duration: 0},
}

type costGroupMode string

const (
	costGroupByDay   costGroupMode = "day"
	costGroupByAgent costGroupMode = "agent"
)

type costLedger struct {
	Records  []costRecord
	Summary  *costSummary
	Earliest time.Time
	Latest   time.Time
}

type costTableRow struct {
	Key        string
	Group      costGroupMode
	Label      string
	Secondary  string
	Calls      int
	Tokens     int
	Cost       float64
	Start      time.Time
	End        time.Time
	TopAgent   string
	TopTokens  int
	Models     map[string]int
	RecordRefs []int
}

type costViewSummary struct {
	RangeKey       string
	RangeLabel     string
	GroupLabel     string
	TotalCalls     int
	TotalTokens    int
	TotalCost      float64
	DistinctAgents int
	DistinctDays   int
	TopAgents      []costBreakdown
	Records        int
}

type costBreakdown struct {
	Label  string
	Calls  int
	Tokens int
	Cost   float64
}

type costViewData struct {
	Range   costRangeOption
	Group   costGroupMode
	Summary costViewSummary
	Rows    []costTableRow
	Records []costRecord
}

type costsLoadedMsg struct {
	ledger *costLedger
	err    error
}

type costsExportedMsg struct {
	path    string
	err     error
	records int
}

func buildCostLedger(records []costRecord, summary *costSummary) *costLedger {
	ledger := &costLedger{Records: records, Summary: summary}
	if len(records) == 0 {
		return ledger
	}
	sort.Slice(ledger.Records, func(i, j int) bool {
		return ledger.Records[i].Timestamp.Before(ledger.Records[j].Timestamp)
	})
	ledger.Earliest = ledger.Records[0].Timestamp
	ledger.Latest = ledger.Records[len(ledger.Records)-1].Timestamp
	return ledger
}

func buildCostView(ledger *costLedger, option costRangeOption, group costGroupMode) costViewData {
	data := costViewData{Range: option, Group: group}
	if ledger == nil || len(ledger.Records) == 0 {
		data.Summary = costViewSummary{
			RangeKey:   option.Key,
			RangeLabel: option.Label,
			GroupLabel: costGroupLabel(group),
		}
		return data
	}
	filtered := filterCostRecords(ledger, option)
	data.Records = filtered
	data.Summary = summarizeCosts(filtered, option, group)
	data.Rows = aggregateCostRows(filtered, group)
	return data
}

func filterCostRecords(ledger *costLedger, option costRangeOption) []costRecord {
	end := ledger.Latest
	if end.IsZero() {
		end = time.Now()
	}
	var start time.Time
	if option.Duration > 0 {
		start = end.Add(-option.Duration)
	}
	var filtered []costRecord
	for _, rec := range ledger.Records {
		if !start.IsZero() && rec.Timestamp.Before(start) {
			continue
		}
		filtered = append(filtered, rec)
	}
	return filtered
}

func summarizeCosts(records []costRecord, option costRangeOption, group costGroupMode) costViewSummary {
	summary := costViewSummary{
		RangeKey:   option.Key,
		RangeLabel: option.Label,
		GroupLabel: costGroupLabel(group),
		Records:    len(records),
	}
	agentCounts := make(map[string]*costBreakdown)
	dayCounts := make(map[string]struct{})

	for _, rec := range records {
		summary.TotalCalls++
		summary.TotalTokens += rec.TotalTokens
		summary.TotalCost += rec.CostUSD

		if rec.Agent != "" {
			entry := agentCounts[rec.Agent]
			if entry == nil {
				entry = &costBreakdown{Label: rec.Agent}
				agentCounts[rec.Agent] = entry
			}
			entry.Calls++
			entry.Tokens += rec.TotalTokens
			entry.Cost += rec.CostUSD
		}
		dayCounts[rec.Timestamp.In(time.Local).Format("2006-01-02")] = struct{}{}
	}
	summary.DistinctAgents = len(agentCounts)
	summary.DistinctDays = len(dayCounts)

	for _, entry := range agentCounts {
		summary.TopAgents = append(summary.TopAgents, *entry)
	}
	sort.Slice(summary.TopAgents, func(i, j int) bool {
		if summary.TopAgents[i].Cost == summary.TopAgents[j].Cost {
			return summary.TopAgents[i].Label < summary.TopAgents[j].Label
		}
		return summary.TopAgents[i].Cost > summary.TopAgents[j].Cost
	})
	if len(summary.TopAgents) > 8 {
		summary.TopAgents = summary.TopAgents[:8]
	}
	return summary
}

func aggregateCostRows(records []costRecord, group costGroupMode) []costTableRow {
	if len(records) == 0 {
		return nil
	}
	if group == costGroupByAgent {
		return aggregateCostsByAgent(records)
	}
	return aggregateCostsByDay(records)
}

func aggregateCostsByDay(records []costRecord) []costTableRow {
	type dayAggregate struct {
		Day      time.Time
		Calls    int
		Tokens   int
		Cost     float64
		TopAgent string
		TopTok   int
		AgentMap map[string]int
		Models   map[string]int
		Refs     []int
	}

	dayMap := make(map[string]*dayAggregate)
	for idx, rec := range records {
		dayKey := rec.Timestamp.In(time.Local).Format("2006-01-02")
		agg := dayMap[dayKey]
		if agg == nil {
			agg = &dayAggregate{
				Day:      rec.Timestamp.In(time.Local).Truncate(24 * time.Hour),
				AgentMap: make(map[string]int),
				Models:   make(map[string]int),
			}
			dayMap[dayKey] = agg
		}
		agg.Calls++
		agg.Tokens += rec.TotalTokens
		agg.Cost += rec.CostUSD
		if rec.Agent != "" {
			agg.AgentMap[rec.Agent] += rec.TotalTokens
			if agg.AgentMap[rec.Agent] > agg.TopTok {
				agg.TopTok = agg.AgentMap[rec.Agent]
				agg.TopAgent = rec.Agent
			}
		}
		if rec.Model != "" {
			agg.Models[rec.Model]++
		}
		agg.Refs = append(agg.Refs, idx)
	}

	var rows []costTableRow
	for key, agg := range dayMap {
		secondary := "-"
		if agg.TopAgent != "" {
			secondary = fmt.Sprintf("%s • %s", agg.TopAgent, formatCompactTokens(agg.TopTok))
		}
		rows = append(rows, costTableRow{
			Key:        "day:" + key,
			Group:      costGroupByDay,
			Label:      key,
			Secondary:  secondary,
			Calls:      agg.Calls,
			Tokens:     agg.Tokens,
			Cost:       agg.Cost,
			Start:      agg.Day,
			End:        agg.Day.Add(24*time.Hour - time.Nanosecond),
			TopAgent:   agg.TopAgent,
			TopTokens:  agg.TopTok,
			Models:     agg.Models,
			RecordRefs: append([]int(nil), agg.Refs...),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Label == rows[j].Label {
			return rows[i].Calls > rows[j].Calls
		}
		return rows[i].Label > rows[j].Label
	})
	return rows
}

func aggregateCostsByAgent(records []costRecord) []costTableRow {
	type agentAggregate struct {
		Agent  string
		Calls  int
		Tokens int
		Cost   float64
		First  time.Time
		Last   time.Time
		Models map[string]int
		Refs   []int
	}

	agentMap := make(map[string]*agentAggregate)
	for idx, rec := range records {
		agent := rec.Agent
		if agent == "" {
			agent = "(unknown)"
		}
		agg := agentMap[agent]
		if agg == nil {
			agg = &agentAggregate{Agent: agent, Models: make(map[string]int)}
			agentMap[agent] = agg
		}
		agg.Calls++
		agg.Tokens += rec.TotalTokens
		agg.Cost += rec.CostUSD
		if agg.First.IsZero() || rec.Timestamp.Before(agg.First) {
			agg.First = rec.Timestamp
		}
		if rec.Timestamp.After(agg.Last) {
			agg.Last = rec.Timestamp
		}
		if rec.Model != "" {
			agg.Models[rec.Model]++
		}
		agg.Refs = append(agg.Refs, idx)
	}

	var rows []costTableRow
	for _, agg := range agentMap {
		last := "-"
		if !agg.Last.IsZero() {
			last = agg.Last.Format("2006-01-02")
		}
		rows = append(rows, costTableRow{
			Key:        "agent:" + agg.Agent,
			Group:      costGroupByAgent,
			Label:      agg.Agent,
			Secondary:  last,
			Calls:      agg.Calls,
			Tokens:     agg.Tokens,
			Cost:       agg.Cost,
			Start:      agg.First,
			End:        agg.Last,
			TopAgent:   agg.Agent,
			Models:     agg.Models,
			RecordRefs: append([]int(nil), agg.Refs...),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Cost == rows[j].Cost {
			return rows[i].Label < rows[j].Label
		}
		return rows[i].Cost > rows[j].Cost
	})
	if len(rows) > 20 {
		rows = rows[:20]
	}
	return rows
}

func costGroupLabel(group costGroupMode) string {
	if group == costGroupByAgent {
		return "By agent"
	}
	return "Daily rollup"
}

func renderCostPreview(data costViewData, row costTableRow) string {
	if len(data.Records) == 0 || len(row.RecordRefs) == 0 {
		return "No cost entries in this range.\nPress [ or ] to adjust the range.\n"
	}

	var b strings.Builder
	title := "Date: " + row.Label
	if row.Group == costGroupByAgent {
		title = "Agent: " + row.Label
	}
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("─", len(title)))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("Calls: %d • Tokens: %s • Cost: %s\n",
		row.Calls, formatIntComma(row.Tokens), formatCost(row.Cost)))
	if row.Calls > 0 {
		b.WriteString(fmt.Sprintf("Avg tokens per call: %s\n", formatIntComma(row.Tokens/row.Calls)))
	}
	if row.Group == costGroupByDay && row.TopAgent != "" {
		b.WriteString(fmt.Sprintf("Top agent: %s (%s tokens)\n", row.TopAgent, formatIntComma(row.TopTokens)))
	}
	if row.Group == costGroupByAgent && !row.Start.IsZero() && !row.End.IsZero() {
		b.WriteString(fmt.Sprintf("First call: %s • Last call: %s\n",
			row.Start.In(time.Local).Format(time.RFC822),
			row.End.In(time.Local).Format(time.RFC822)))
	}

	if len(row.Models) > 0 {
		var pairs []string
		for model, count := range row.Models {
			pairs = append(pairs, fmt.Sprintf("%s (%d)", model, count))
		}
		sort.Strings(pairs)
		b.WriteString("Models: " + strings.Join(pairs, ", ") + "\n")
	}

	b.WriteString("\nBreakdown:\n")
	breakdowns := costRowBreakdown(data, row)
	maxEntries := 6
	for idx, entry := range breakdowns {
		if idx >= maxEntries {
			break
		}
		b.WriteString(fmt.Sprintf("  • %s — %d call(s), %s tokens, %s\n",
			entry.Label, entry.Calls, formatIntComma(entry.Tokens), formatCost(entry.Cost)))
	}
	if len(breakdowns) > maxEntries {
		b.WriteString(fmt.Sprintf("  …%d more entries\n", len(breakdowns)-maxEntries))
	}

	if data.Summary.Records > 0 {
		b.WriteString(fmt.Sprintf("\nRange totals: %s calls • %s tokens • %s • %d agents\n",
			formatIntComma(data.Summary.TotalCalls),
			formatIntComma(data.Summary.TotalTokens),
			formatCost(data.Summary.TotalCost),
			data.Summary.DistinctAgents))
	}

	b.WriteString("\nSample records:\n")
	limit := maxCostPreviewRecords
	if len(row.RecordRefs) < limit {
		limit = len(row.RecordRefs)
	}
	for i := 0; i < limit; i++ {
		rec := data.Records[row.RecordRefs[i]]
		agent := rec.Agent
		if agent == "" {
			agent = "(unknown)"
		}
		b.WriteString(fmt.Sprintf("  %s • %s • %d tokens • %s\n",
			rec.Timestamp.Format(time.RFC3339), agent, rec.TotalTokens, formatCost(rec.CostUSD)))
	}
	if len(row.RecordRefs) > limit {
		b.WriteString(fmt.Sprintf("  …%d more entries\n", len(row.RecordRefs)-limit))
	}

	b.WriteString("\nKeys: [/] change range • g toggle grouping • e export CSV\n")
	return b.String()
}

func costRowBreakdown(data costViewData, row costTableRow) []costBreakdown {
	counter := make(map[string]*costBreakdown)
	for _, ref := range row.RecordRefs {
		if ref < 0 || ref >= len(data.Records) {
			continue
		}
		record := data.Records[ref]
		var key string
		if row.Group == costGroupByAgent {
			key = record.Timestamp.In(time.Local).Format("2006-01-02")
		} else if record.Agent != "" {
			key = record.Agent
		} else {
			key = "(unknown)"
		}
		entry := counter[key]
		if entry == nil {
			entry = &costBreakdown{Label: key}
			counter[key] = entry
		}
		entry.Calls++
		entry.Tokens += record.TotalTokens
		entry.Cost += record.CostUSD
	}
	var breakdowns []costBreakdown
	for _, entry := range counter {
		breakdowns = append(breakdowns, *entry)
	}
	sort.Slice(breakdowns, func(i, j int) bool {
		if breakdowns[i].Tokens == breakdowns[j].Tokens {
			return breakdowns[i].Label < breakdowns[j].Label
		}
		return breakdowns[i].Tokens > breakdowns[j].Tokens
	})
	return breakdowns
}

func writeCostsCSV(dir string, records []costRecord) (string, error) {
	if len(records) == 0 {
		return "", errors.New("no records to export")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("costs-%s.csv", time.Now().UTC().Format("20060102-150405"))
	path := filepath.Join(dir, name)

	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	headers := []string{"timestamp", "agent", "model", "input_tokens", "output_tokens", "total_tokens", "cost_usd"}
	if err := writer.Write(headers); err != nil {
		return "", err
	}
	for _, rec := range records {
		row := []string{
			rec.Timestamp.Format(time.RFC3339),
			rec.Agent,
			rec.Model,
			strconv.Itoa(rec.InputTokens),
			strconv.Itoa(rec.OutputTokens),
			strconv.Itoa(rec.TotalTokens),
			fmt.Sprintf("%.6f", rec.CostUSD),
		}
		if err := writer.Write(row); err != nil {
			return "", err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return path, nil
}

// --- model integration -----------------------------------------------------

func (m *model) enterCosts() tea.Cmd {
	m.costsErr = nil
	return m.loadCostsCmd()
}

func (m *model) loadCostsCmd() tea.Cmd {
	client := m.api
	m.costsLoading = true
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), defaultRequestTimeout)
		defer cancel()
		records, err := client.CostRecords(ctx)
		if err != nil {
			return costsLoadedMsg{err: err}
		}
		// Summary is optional flavor on top of the ledger.
		summary, sumErr := client.CostSummary(ctx)
		if sumErr != nil {
			summary = nil
		}
		return costsLoadedMsg{ledger: buildCostLedger(records, summary)}
	}
}

func (m *model) handleCostsLoaded(msg costsLoadedMsg) {
	m.costsLoading = false
	if msg.err != nil {
		m.costsErr = msg.err
		return
	}
	m.costsErr = nil
	m.costsLedger = msg.ledger
	m.rebuildCostView()
}

func (m *model) rebuildCostView() {
	option := costRangeOptions[m.costsRangeIndex]
	m.costsView = buildCostView(m.costsLedger, option, m.costsGroup)
	if m.costsCursor >= len(m.costsView.Rows) {
		m.costsCursor = 0
	}
}

func (m *model) handleCostsKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.costsCursor > 0 {
			m.costsCursor--
		}
		return true, nil
	case "down", "j":
		if m.costsCursor < len(m.costsView.Rows)-1 {
			m.costsCursor++
		}
		return true, nil
	case "[":
		if m.costsRangeIndex > 0 {
			m.costsRangeIndex--
			m.rebuildCostView()
		}
		return true, nil
	case "]":
		if m.costsRangeIndex < len(costRangeOptions)-1 {
			m.costsRangeIndex++
			m.rebuildCostView()
		}
		return true, nil
	case "g":
		if m.costsGroup == costGroupByDay {
			m.costsGroup = costGroupByAgent
		} else {
			m.costsGroup = costGroupByDay
		}
		m.rebuildCostView()
		return true, nil
	case "e":
		return true, m.exportCostsCmd()
	case "r":
		return true, m.loadCostsCmd()
	}
	return false, nil
}

func (m *model) exportCostsCmd() tea.Cmd {
	records := m.costsView.Records
	dir := filepath.Join(resolveConfigDir(), "exports")
	return func() tea.Msg {
		path, err := writeCostsCSV(dir, records)
		return costsExportedMsg{path: path, err: err, records: len(records)}
	}
}

func (m *model) handleCostsExported(msg costsExportedMsg) {
	if msg.err != nil {
		m.setToast("Export failed: "+msg.err.Error(), 6*time.Second)
		return
	}
	m.appendLog(fmt.Sprintf("[costs] exported %d record(s) to %s", msg.records, msg.path))
	m.setToast("Exported "+filepath.Base(msg.path), 5*time.Second)
}

func (m *model) renderCosts(width int) string {
	var b strings.Builder
	if m.costsErr != nil {
		return m.styles.banner.Render(m.costsErr.Error())
	}
	if m.costsLoading && m.costsLedger == nil {
		return "Loading cost ledger…"
	}
	summary := m.costsView.Summary
	b.WriteString(fmt.Sprintf("%s • %s\n", summary.RangeLabel, summary.GroupLabel))
	b.WriteString(fmt.Sprintf("%s calls • %s tokens • %s\n\n",
		formatIntComma(summary.TotalCalls),
		formatIntComma(summary.TotalTokens),
		formatCost(summary.TotalCost)))

	if len(m.costsView.Rows) == 0 {
		b.WriteString("No cost entries in this range.\n")
		return b.String()
	}
	for idx, row := range m.costsView.Rows {
		cursor := "  "
		if idx == m.costsCursor {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%-12s %5d calls %10s tok %10s  %s",
			cursor, row.Label, row.Calls, formatCompactTokens(row.Tokens), formatCost(row.Cost), row.Secondary)
		b.WriteString(truncateLine(line, width-2) + "\n")
	}
	return b.String()
}

func (m *model) selectedCostRow() (costTableRow, bool) {
	if m.costsCursor < 0 || m.costsCursor >= len(m.costsView.Rows) {
		return costTableRow{}, false
	}
	return m.costsView.Rows[m.costsCursor], true
}
