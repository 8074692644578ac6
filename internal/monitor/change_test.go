package monitor

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minicart/minicart/internal/storage"
	"github.com/minicart/minicart/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func TestObserveFirstSeen(t *testing.T) {
	tr := NewPriceTracker(storage.NewMemoryStore(), testLogger)
	ctx := context.Background()

	info := types.ProductInfo{Name: "Widget", Price: types.Float(19.99), Currency: "USD"}
	changes, err := tr.Observe(ctx, "https://shop.example.com/p/w", info)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, ChangeFirstSeen, changes[0].Type)
}

func TestObservePriceChange(t *testing.T) {
	tr := NewPriceTracker(storage.NewMemoryStore(), testLogger)
	ctx := context.Background()
	url := "https://shop.example.com/p/w"

	_, err := tr.Observe(ctx, url, types.ProductInfo{Name: "Widget", Price: types.Float(19.99), Currency: "USD"})
	require.NoError(t, err)

	// Identical observation: no changes.
	changes, err := tr.Observe(ctx, url, types.ProductInfo{Name: "Widget", Price: types.Float(19.99), Currency: "USD"})
	require.NoError(t, err)
	assert.Empty(t, changes)

	// Price moved.
	changes, err = tr.Observe(ctx, url, types.ProductInfo{Name: "Widget", Price: types.Float(17.49), Currency: "USD"})
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, ChangePrice, changes[0].Type)
	assert.Equal(t, "19.99 USD", changes[0].OldValue)
	assert.Equal(t, "17.49 USD", changes[0].NewValue)
}

func TestObservePriceDisappears(t *testing.T) {
	tr := NewPriceTracker(storage.NewMemoryStore(), testLogger)
	ctx := context.Background()
	url := "https://shop.example.com/p/w"

	_, err := tr.Observe(ctx, url, types.ProductInfo{Name: "Widget", Price: types.Float(19.99)})
	require.NoError(t, err)

	changes, err := tr.Observe(ctx, url, types.ProductInfo{Name: "Widget"})
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, ChangePrice, changes[0].Type)
	assert.Equal(t, "<none>", changes[0].NewValue)
}

func TestObserveNameChange(t *testing.T) {
	tr := NewPriceTracker(storage.NewMemoryStore(), testLogger)
	ctx := context.Background()
	url := "https://shop.example.com/p/w"

	_, err := tr.Observe(ctx, url, types.ProductInfo{Name: "Widget", Price: types.Float(5)})
	require.NoError(t, err)

	changes, err := tr.Observe(ctx, url, types.ProductInfo{Name: "Widget v2", Price: types.Float(5)})
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, ChangeName, changes[0].Type)

	// An empty name is an extraction miss, not a rename.
	changes, err = tr.Observe(ctx, url, types.ProductInfo{Price: types.Float(5)})
	require.NoError(t, err)
	assert.Empty(t, changes)
}
