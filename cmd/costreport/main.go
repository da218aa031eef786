package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// costreport summarizes a cost CSV exported from the portal's Costs view.

type costRow struct {
	timestamp    time.Time
	agent        string
	model        string
	inputTokens  int
	outputTokens int
	costUSD      float64
}

type agentTotals struct {
	agent   string
	records int
	tokens  int
	costUSD float64
}

func main() {
	var inputPath string
	var outputPath string
	var topN int
	flag.StringVar(&inputPath, "in", "", "input CSV path (required)")
	flag.StringVar(&outputPath, "out", "", "output file path (optional, defaults to stdout)")
	flag.IntVar(&topN, "top", 10, "number of agents to list")
	flag.Parse()

	if inputPath == "" {
		exitWithError(errors.New("missing --in path"))
	}

	rows, err := parseCostCSV(inputPath)
	if err != nil {
		exitWithError(fmt.Errorf("parse csv: %w", err))
	}

	rendered := renderReport(rows, topN)
	if outputPath == "" {
		fmt.Println(rendered)
		return
	}
	if err := os.WriteFile(outputPath, []byte(rendered+"\n"), 0o644); err != nil {
		exitWithError(fmt.Errorf("write output: %w", err))
	}
}

func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "costreport: %v\n", err)
	os.Exit(1)
}

func parseCostCSV(path string) ([]costRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return parseCostRecords(csv.NewReader(file))
}

func parseCostRecords(reader *csv.Reader) ([]costRow, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, err
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"timestamp", "agent", "cost_usd"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	var rows []costRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row, err := parseCostRow(record, index)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseCostRow(record []string, index map[string]int) (costRow, error) {
	field := func(name string) string {
		idx, ok := index[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	ts, err := time.Parse(time.RFC3339, field("timestamp"))
	if err != nil {
		return costRow{}, fmt.Errorf("bad timestamp %q: %w", field("timestamp"), err)
	}
	cost, err := strconv.ParseFloat(field("cost_usd"), 64)
	if err != nil {
		return costRow{}, fmt.Errorf("bad cost_usd %q: %w", field("cost_usd"), err)
	}
	inputTokens, _ := strconv.Atoi(field("input_tokens"))
	outputTokens, _ := strconv.Atoi(field("output_tokens"))

	return costRow{
		timestamp:    ts,
		agent:        field("agent"),
		model:        field("model"),
		inputTokens:  inputTokens,
		outputTokens: outputTokens,
		costUSD:      cost,
	}, nil
}

func renderReport(rows []costRow, topN int) string {
	var b strings.Builder
	b.WriteString("Cost report\n")
	b.WriteString("===========\n\n")

	if len(rows) == 0 {
		b.WriteString("No records.\n")
		return strings.TrimRight(b.String(), "\n")
	}

	first, last := rows[0].timestamp, rows[0].timestamp
	totalCost := 0.0
	totalTokens := 0
	byAgent := make(map[string]*agentTotals)
	for _, row := range rows {
		if row.timestamp.Before(first) {
			first = row.timestamp
		}
		if row.timestamp.After(last) {
			last = row.timestamp
		}
		totalCost += row.costUSD
		totalTokens += row.inputTokens + row.outputTokens
		totals := byAgent[row.agent]
		if totals == nil {
			totals = &agentTotals{agent: row.agent}
			byAgent[row.agent] = totals
		}
		totals.records++
		totals.tokens += row.inputTokens + row.outputTokens
		totals.costUSD += row.costUSD
	}

	b.WriteString(fmt.Sprintf("Records:     %d\n", len(rows)))
	b.WriteString(fmt.Sprintf("Time range:  %s to %s\n", first.Format("2006-01-02"), last.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Tokens:      %d\n", totalTokens))
	b.WriteString(fmt.Sprintf("Total cost:  $%.4f\n\n", totalCost))

	agents := make([]agentTotals, 0, len(byAgent))
	for _, totals := range byAgent {
		agents = append(agents, *totals)
	}
	sort.Slice(agents, func(i, j int) bool {
		if agents[i].costUSD != agents[j].costUSD {
			return agents[i].costUSD > agents[j].costUSD
		}
		return agents[i].agent < agents[j].agent
	})
	if topN > 0 && len(agents) > topN {
		agents = agents[:topN]
	}

	b.WriteString(fmt.Sprintf("%-28s %8s %12s %12s\n", "Agent", "Records", "Tokens", "Cost"))
	for _, totals := range agents {
		b.WriteString(fmt.Sprintf("%-28s %8d %12d %11.4f$\n", totals.agent, totals.records, totals.tokens, totals.costUSD))
	}
	return strings.TrimRight(b.String(), "\n")
}
