// Package monitor tracks how a watched product changes between scans.
package monitor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/minicart/minicart/internal/money"
	"github.com/minicart/minicart/internal/storage"
	"github.com/minicart/minicart/internal/types"
)

// ChangeType identifies what kind of change occurred.
type ChangeType string

const (
	ChangeFirstSeen ChangeType = "first_seen"
	ChangePrice     ChangeType = "price"
	ChangeName      ChangeType = "name"
)

// Change is one detected difference against the previous snapshot.
type Change struct {
	URL       string     `json:"url"`
	Type      ChangeType `json:"type"`
	OldValue  string     `json:"old_value,omitempty"`
	NewValue  string     `json:"new_value,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

type snapshot struct {
	Name     string    `json:"name"`
	Price    *float64  `json:"price,omitempty"`
	Currency string    `json:"currency,omitempty"`
	SeenAt   time.Time `json:"seenAt"`
}

// PriceTracker compares each scan of a product page against the last
// snapshot of that page and reports what moved. Snapshots live in the
// same blob store as the cart, one key per product URL.
type PriceTracker struct {
	store  storage.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewPriceTracker creates a tracker over the given store.
func NewPriceTracker(store storage.Store, logger *slog.Logger) *PriceTracker {
	return &PriceTracker{
		store:  store,
		logger: logger.With("component", "price_tracker"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Observe records the latest extraction for a URL and returns the
// changes since the previous one. The first observation of a URL yields
// a single first-seen change.
func (t *PriceTracker) Observe(ctx context.Context, url string, info types.ProductInfo) ([]Change, error) {
	key := snapshotKey(url)
	now := t.now()

	cur := snapshot{
		Name:     info.Name,
		Price:    info.Price,
		Currency: info.Currency,
		SeenAt:   now,
	}

	data, err := t.store.Read(ctx, key)
	if errors.Is(err, types.ErrKeyNotFound) {
		if werr := t.save(ctx, key, cur); werr != nil {
			return nil, werr
		}
		return []Change{{URL: url, Type: ChangeFirstSeen, NewValue: info.Summary(), Timestamp: now}}, nil
	}
	if err != nil {
		return nil, err
	}

	var prev snapshot
	if uerr := json.Unmarshal(data, &prev); uerr != nil {
		// A torn snapshot is replaced, not reported.
		t.logger.Warn("snapshot malformed, resetting", "url", url)
		if werr := t.save(ctx, key, cur); werr != nil {
			return nil, werr
		}
		return nil, nil
	}

	var changes []Change
	if !samePrice(prev.Price, cur.Price) {
		changes = append(changes, Change{
			URL:       url,
			Type:      ChangePrice,
			OldValue:  priceLabel(prev.Price, prev.Currency),
			NewValue:  priceLabel(cur.Price, cur.Currency),
			Timestamp: now,
		})
	}
	if prev.Name != cur.Name && cur.Name != "" {
		changes = append(changes, Change{
			URL:       url,
			Type:      ChangeName,
			OldValue:  prev.Name,
			NewValue:  cur.Name,
			Timestamp: now,
		})
	}

	if err := t.save(ctx, key, cur); err != nil {
		return changes, err
	}
	return changes, nil
}

func (t *PriceTracker) save(ctx context.Context, key string, s snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return t.store.Write(ctx, key, data)
}

// samePrice compares in cents so float noise never counts as a change.
func samePrice(a, b *float64) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	if a == nil {
		return true
	}
	return money.ToCents(*a) == money.ToCents(*b)
}

func priceLabel(p *float64, currency string) string {
	if p == nil {
		return "<none>"
	}
	s := money.Format(*p)
	if currency != "" {
		s += " " + currency
	}
	return s
}

// snapshotKey namespaces snapshots away from the cart payload.
func snapshotKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return "minicart:snapshot:" + hex.EncodeToString(sum[:8])
}
