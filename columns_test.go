package main

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateLineMultibyte(t *testing.T) {
	out := truncateLine(strings.Repeat("é", 20), 10)

	assert.True(t, utf8.ValidString(out), "truncation must never split a rune, got %q", out)
	assert.Equal(t, 10, utf8.RuneCountInString(out))
	assert.True(t, strings.HasSuffix(out, "…"))
}

func TestTruncateLine(t *testing.T) {
	assert.Equal(t, "short", truncateLine("short", 10))
	assert.Equal(t, "exact", truncateLine("exact", 5))
	assert.Equal(t, "long…", truncateLine("long line", 5))
	assert.Equal(t, "日", truncateLine("日本語のポスト", 1))
	assert.Equal(t, "untouched", truncateLine("untouched", 0))
}
