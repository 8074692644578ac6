// Package cart owns the durable shopping cart: identity derivation,
// merge-or-append upserts, integer-cent totals, and the persistence
// contract. Every operation is a read-modify-write round trip against
// the blob store; nothing is cached between calls, which keeps
// concurrent writers merely racy (last write wins) instead of corrupt.
package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/minicart/minicart/internal/money"
	"github.com/minicart/minicart/internal/observability"
	"github.com/minicart/minicart/internal/storage"
	"github.com/minicart/minicart/internal/types"
)

const (
	// Key is the namespaced storage key holding the serialized cart.
	Key = "minicart:cart"

	// legacyKey is the deprecated unnamespaced key consulted once so
	// pre-namespacing carts migrate forward. The original is kept.
	legacyKey = "cart"
)

// Cart is the persistent cart store.
type Cart struct {
	store   storage.Store
	metrics *observability.Metrics
	logger  *slog.Logger

	mu   sync.Mutex
	subs []func(types.CartState)

	// now is a test hook.
	now func() time.Time
}

// New creates a Cart over the given blob store. metrics may be nil.
func New(store storage.Store, metrics *observability.Metrics, logger *slog.Logger) *Cart {
	return &Cart{
		store:   store,
		metrics: metrics,
		logger:  logger.With("component", "cart"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Subscribe registers a callback fired after every successful save.
// Notification failures never fail the save.
func (c *Cart) Subscribe(fn func(types.CartState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// Load reads the current cart, migrating the legacy key forward when the
// namespaced key does not exist yet. Malformed or missing payloads yield
// an empty cart at the current version; items missing timestamps are
// backfilled to now, self-healing partially-written legacy data.
func (c *Cart) Load(ctx context.Context) types.CartState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

func (c *Cart) load(ctx context.Context) types.CartState {
	data, err := c.store.Read(ctx, Key)
	if errors.Is(err, types.ErrKeyNotFound) {
		if legacy, lerr := c.store.Read(ctx, legacyKey); lerr == nil {
			if _, ok := decodeState(legacy); ok {
				if werr := c.store.Write(ctx, Key, legacy); werr != nil {
					c.logger.Warn("legacy cart migration failed", "error", werr)
				} else {
					c.logger.Info("legacy cart migrated forward")
					data, err = legacy, nil
				}
			}
		}
	}
	if err != nil {
		return c.emptyState()
	}

	st, ok := decodeState(data)
	if !ok {
		c.logger.Warn("stored cart malformed, starting empty")
		return c.emptyState()
	}

	now := c.now()
	st.Version = types.CartVersion
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = now
	}
	for _, it := range st.Items {
		if it.AddedAt.IsZero() {
			it.AddedAt = now
		}
		if it.UpdatedAt.IsZero() {
			it.UpdatedAt = now
		}
	}
	return *st
}

// Save stamps the schema version and write time, persists the state, and
// notifies subscribers. Write failures are reported as false, never
// panics; the caller's in-memory mutation is not rolled back.
func (c *Cart) Save(ctx context.Context, state *types.CartState) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.save(ctx, state)
}

func (c *Cart) save(ctx context.Context, state *types.CartState) bool {
	state.Version = types.CartVersion
	state.UpdatedAt = c.now()

	data, err := json.Marshal(state)
	if err != nil {
		c.logger.Error("cart serialization failed", "error", err)
		c.metrics.IncCartWriteError()
		return false
	}
	if err := c.store.Write(ctx, Key, data); err != nil {
		c.logger.Error("cart write failed", "error", err)
		c.metrics.IncCartWriteError()
		return false
	}

	c.notify(*state)
	return true
}

func (c *Cart) notify(state types.CartState) {
	for _, fn := range c.subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.logger.Warn("cart subscriber panicked", "panic", r)
				}
			}()
			fn(state)
		}()
	}
}

// Upsert merges a candidate record into the cart. Incomplete candidates
// are rejected with nil and leave the cart untouched. An existing line
// with the same identity accumulates quantity; otherwise a new line is
// prepended. The affected item is returned after persisting.
func (c *Cart) Upsert(ctx context.Context, info types.ProductInfo, qty int) *types.CartItem {
	if !IsComplete(info) {
		c.logger.Debug("upsert rejected, record incomplete", "info", info.Summary())
		return nil
	}
	if qty < 1 {
		qty = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	id := ProductID(info)
	state := c.load(ctx)
	now := c.now()

	if existing := state.Find(id); existing != nil {
		existing.Quantity += qty
		existing.UpdatedAt = now
		c.save(ctx, &state)
		return existing
	}

	item := &types.CartItem{
		ID:         id,
		Name:       info.Name,
		Price:      *info.Price,
		Currency:   info.Currency,
		ImageURL:   info.ImageURL,
		ProductURL: info.ProductURL,
		Quantity:   qty,
		AddedAt:    now,
		UpdatedAt:  now,
	}
	state.Items = append([]*types.CartItem{item}, state.Items...)
	c.save(ctx, &state)
	return item
}

// RemoveItem deletes the whole line and reports whether anything changed.
func (c *Cart) RemoveItem(ctx context.Context, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.load(ctx)
	kept := state.Items[:0]
	for _, it := range state.Items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(state.Items) {
		return false
	}
	state.Items = kept
	return c.save(ctx, &state)
}

// RemoveSome decrements a line by count (clamped to [1, quantity]),
// deleting the line entirely when nothing would remain.
func (c *Cart) RemoveSome(ctx context.Context, id string, count int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.load(ctx)
	item := state.Find(id)
	if item == nil {
		return false
	}

	if count < 1 {
		count = 1
	}
	if count > item.Quantity {
		count = item.Quantity
	}

	if item.Quantity-count <= 0 {
		kept := state.Items[:0]
		for _, it := range state.Items {
			if it.ID != id {
				kept = append(kept, it)
			}
		}
		state.Items = kept
	} else {
		item.Quantity -= count
		item.UpdatedAt = c.now()
	}
	return c.save(ctx, &state)
}

// SetQuantity pins a line to an exact quantity (floored, minimum 1).
// Returns false when the line is missing or the quantity is unchanged.
func (c *Cart) SetQuantity(ctx context.Context, id string, qty int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.load(ctx)
	item := state.Find(id)
	if item == nil {
		return false
	}
	if qty < 1 {
		qty = 1
	}
	if item.Quantity == qty {
		return false
	}
	item.Quantity = qty
	item.UpdatedAt = c.now()
	return c.save(ctx, &state)
}

// Total loads the cart and computes its grand total.
func (c *Cart) Total(ctx context.Context) float64 {
	state := c.Load(ctx)
	return TotalOf(&state)
}

// TotalOf sums line totals in integer cents and converts back once, so
// the grand total never drifts from the sum of rounded line totals.
// Non-finite prices count as zero.
func TotalOf(state *types.CartState) float64 {
	var cents int64
	for _, it := range state.Items {
		unit := it.Price
		if math.IsNaN(unit) || math.IsInf(unit, 0) {
			unit = 0
		}
		cents += money.LineTotalCents(unit, it.Quantity)
	}
	return money.FromCents(cents)
}

func (c *Cart) emptyState() types.CartState {
	return types.CartState{
		Version:   types.CartVersion,
		UpdatedAt: c.now(),
		Items:     []*types.CartItem{},
	}
}

// decodeState parses a stored payload, requiring items to be a JSON
// array; anything else counts as malformed.
func decodeState(data []byte) (*types.CartState, bool) {
	var probe struct {
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, false
	}
	if !bytes.HasPrefix(bytes.TrimSpace(probe.Items), []byte("[")) {
		return nil, false
	}

	var st types.CartState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, false
	}
	if st.Items == nil {
		st.Items = []*types.CartItem{}
	}
	return &st, true
}
