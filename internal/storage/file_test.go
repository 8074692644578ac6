package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minicart/minicart/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), testLogger)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Read(ctx, "minicart:cart")
	assert.ErrorIs(t, err, types.ErrKeyNotFound)

	payload := []byte(`{"version":1,"items":[]}`)
	require.NoError(t, store.Write(ctx, "minicart:cart", payload))

	got, err := store.Read(ctx, "minicart:cart")
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	// Overwrite replaces, never appends.
	require.NoError(t, store.Write(ctx, "minicart:cart", []byte(`{}`)))
	got, err = store.Read(ctx, "minicart:cart")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{}`), got)
}

func TestFileStoreSanitizesKeys(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, testLogger)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "minicart:cart", []byte("x")))

	// The colon must not reach the filesystem.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "minicart_cart.json", entries[0].Name())

	// Distinct keys that sanitize differently stay distinct.
	require.NoError(t, store.Write(ctx, "cart", []byte("y")))
	got, err := store.Read(ctx, "minicart:cart")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, testLogger)
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Write(ctx, "k", []byte("payload")))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, ".tmp", filepath.Ext(e.Name()))
	}
}

func TestMemoryStoreIsolation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	payload := []byte("original")
	require.NoError(t, store.Write(ctx, "k", payload))

	// Mutating the caller's slice must not reach the store.
	payload[0] = 'X'
	got, err := store.Read(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got)

	// Mutating a read result must not either.
	got[0] = 'Y'
	again, err := store.Read(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), again)

	_, err = store.Read(ctx, "missing")
	assert.ErrorIs(t, err, types.ErrKeyNotFound)
}
