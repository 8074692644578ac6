package types

import (
	"strconv"
	"strings"
	"time"
)

// CartVersion identifies the on-disk cart schema. It is stamped on every
// write so future schema changes can migrate forward.
const CartVersion = 1

// DataFormat classifies the structured-data payloads a page exposes.
type DataFormat string

const (
	FormatLDJSON DataFormat = "ld+json"
	FormatJSON   DataFormat = "json"
	FormatBoth   DataFormat = "both"
	FormatNone   DataFormat = "none"
)

// ProductInfo is a candidate product record assembled by the extractors.
// Any field may be unresolved; extractors never require completeness.
type ProductInfo struct {
	// Name is the product display name.
	Name string `json:"name,omitempty"`

	// Price is the unit price in major currency units. Nil means the
	// extractors found no parseable price; zero is a valid price.
	Price *float64 `json:"price,omitempty"`

	// Currency is an ISO-ish currency code when the page declared one.
	Currency string `json:"currency,omitempty"`

	// ImageURL is an absolute URL to the product image.
	ImageURL string `json:"imageUrl,omitempty"`

	// ProductURL is the canonical absolute URL of the product page.
	ProductURL string `json:"productUrl,omitempty"`
}

// HasAny reports whether at least one of name, image, or price resolved.
func (p *ProductInfo) HasAny() bool {
	if p == nil {
		return false
	}
	return p.Name != "" || p.ImageURL != "" || p.Price != nil
}

// PriceString renders the price for identity signatures; empty when unset.
func (p *ProductInfo) PriceString() string {
	if p.Price == nil {
		return ""
	}
	return strconv.FormatFloat(*p.Price, 'f', -1, 64)
}

// CartItem is one persisted line in the cart: a product identity plus its
// accumulated quantity. The ID is fixed at creation and never recomputed.
type CartItem struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Price      float64   `json:"price"`
	Currency   string    `json:"currency,omitempty"`
	ImageURL   string    `json:"imageUrl"`
	ProductURL string    `json:"productUrl"`
	Quantity   int       `json:"quantity"`
	AddedAt    time.Time `json:"addedAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// CartState is the durable cart payload. Items are ordered newest first
// and their IDs are unique within the slice.
type CartState struct {
	Version   int         `json:"version"`
	UpdatedAt time.Time   `json:"updatedAt"`
	Items     []*CartItem `json:"items"`
}

// Find returns the item with the given id, or nil.
func (s *CartState) Find(id string) *CartItem {
	for _, it := range s.Items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

// Summary renders a short human-readable description for logs.
func (p *ProductInfo) Summary() string {
	var b strings.Builder
	b.WriteString("name=")
	b.WriteString(strconv.Quote(p.Name))
	b.WriteString(" price=")
	if p.Price != nil {
		b.WriteString(strconv.FormatFloat(*p.Price, 'f', 2, 64))
	} else {
		b.WriteString("<none>")
	}
	b.WriteString(" image=")
	b.WriteString(strconv.FormatBool(p.ImageURL != ""))
	b.WriteString(" url=")
	b.WriteString(strconv.FormatBool(p.ProductURL != ""))
	return b.String()
}

// Float is a convenience for building optional price values.
func Float(f float64) *float64 { return &f }
