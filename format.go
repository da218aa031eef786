package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

func formatCompactTokens(tokens int) string {
	if tokens >= 1_000_000 {
		return fmt.Sprintf("%.1fM", float64(tokens)/1_000_000.0)
	}
	if tokens >= 1_000 {
		return fmt.Sprintf("%.1fk", float64(tokens)/1000.0)
	}
	return strconv.Itoa(tokens)
}

func formatCost(cost float64) string {
	if cost <= 0 {
		return "$0.00"
	}
	if cost >= 0.01 {
		return fmt.Sprintf("$%.2f", cost)
	}
	return fmt.Sprintf("$%.4f", cost)
}

func formatIntComma(value int) string {
	text := strconv.Itoa(value)
	n := len(text)
	if n <= 3 {
		return text
	}
	var parts []string
	for n > 3 {
		parts = append([]string{text[n-3:]}, parts...)
		text = text[:n-3]
		n = len(text)
	}
	parts = append([]string{text}, parts...)
	return strings.Join(parts, ",")
}

func sortedScoreKeys(scores map[string]float64) []string {
	keys := make([]string, 0, len(scores))
	for key := range scores {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
