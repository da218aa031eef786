package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *sessionStore {
	t.Helper()
	store, err := openSessionStore(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSyncLoginTokenStoresAndScrubs(t *testing.T) {
	store := testStore(t)

	capture, err := syncLoginToken(store, "https://portal.example.com/dashboard?t=abc123&tab=queue")
	require.NoError(t, err)

	assert.Equal(t, "abc123", store.Token())
	assert.Equal(t, "https://portal.example.com/dashboard?tab=queue", capture.CleanedURL)
	assert.True(t, capture.HadAnyParam)
}

func TestSyncLoginTokenAppSessionFallback(t *testing.T) {
	store := testStore(t)

	capture, err := syncLoginToken(store, "https://portal.example.com/?code=xyz&state=s1&app_session=sess-9")
	require.NoError(t, err)

	assert.Equal(t, "sess-9", store.Token())
	assert.Equal(t, "sess-9", capture.Token)
	assert.Equal(t, "https://portal.example.com/", capture.CleanedURL)
}

func TestSyncLoginTokenScrubsOAuthParamsWithoutToken(t *testing.T) {
	store := testStore(t)

	capture, err := syncLoginToken(store, "https://portal.example.com/cb?code=xyz&state=s1")
	require.NoError(t, err, "oauth params without a token scrub cleanly")

	assert.Empty(t, store.Token())
	assert.Empty(t, capture.Token)
	assert.Equal(t, "https://portal.example.com/cb", capture.CleanedURL)
}

func TestSyncLoginTokenRejectsURLWithoutParams(t *testing.T) {
	store := testStore(t)

	_, err := syncLoginToken(store, "https://portal.example.com/dashboard")
	assert.Error(t, err)
	assert.Empty(t, store.Token())
}

func TestParseLoginURLEmpty(t *testing.T) {
	_, err := parseLoginURL("   ")
	assert.Error(t, err)
}
