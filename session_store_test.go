package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStoreRoundTrip(t *testing.T) {
	store := testStore(t)

	value, err := store.Get("missing")
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, store.Set("theme", "dark"))
	value, err = store.Get("theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", value)

	require.NoError(t, store.Set("theme", "light"))
	value, err = store.Get("theme")
	require.NoError(t, err)
	assert.Equal(t, "light", value, "set upserts")

	require.NoError(t, store.Delete("theme"))
	value, err = store.Get("theme")
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestSessionStoreTokenPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	store, err := openSessionStore(path)
	require.NoError(t, err)
	require.NoError(t, store.SetToken("  tok-1  "))
	require.NoError(t, store.Close())

	reopened, err := openSessionStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, "tok-1", reopened.Token(), "tokens trim and survive restarts")
}

func TestSessionStoreClearToken(t *testing.T) {
	store := testStore(t)

	require.NoError(t, store.SetToken("tok"))
	require.NoError(t, store.SetToken(""))
	assert.Empty(t, store.Token())
}

func TestSessionStoreNilSafe(t *testing.T) {
	var store *sessionStore
	assert.NoError(t, store.Close())
	assert.Empty(t, store.Token())
	assert.NoError(t, store.Set("k", "v"))
}
