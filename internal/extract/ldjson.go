package extract

import (
	"strings"

	"github.com/minicart/minicart/internal/money"
	"github.com/minicart/minicart/internal/page"
	"github.com/minicart/minicart/internal/types"
)

// FromLDJSON extracts a product candidate from JSON-LD structured data.
// Scripts declared as ld+json are tried before untyped scripts that merely
// look like it. The first Product node yielding any of name, image, or
// price wins; nodes are never aggregated. Malformed scripts are skipped.
func (e *Extractor) FromLDJSON(p *page.Page) *types.ProductInfo {
	opts := e.opts

	var typed, sniffed []page.Script
	for _, s := range p.Scripts() {
		if isLDType(s.Type) {
			typed = append(typed, s)
			continue
		}
		if txt := s.Text(opts.MaxChars); txt != "" && looksLikeLD(txt) {
			sniffed = append(sniffed, s)
		}
	}

	checked := 0
	for _, bucket := range [][]page.Script{typed, sniffed} {
		for _, s := range bucket {
			if !opts.FullScan && checked >= opts.MaxScripts {
				return nil
			}
			checked++

			txt := s.Text(opts.MaxChars)
			if txt == "" {
				continue
			}
			data := parseScriptJSON(txt)
			if data == nil {
				continue
			}

			roots, ok := data.([]any)
			if !ok {
				roots = []any{data}
			}
			for _, root := range roots {
				if info := e.ldFromRoot(p, root); info != nil {
					return info
				}
			}
		}
	}
	return nil
}

// ldFromRoot inspects one top-level JSON-LD root, expanding @graph.
func (e *Extractor) ldFromRoot(p *page.Page, root any) *types.ProductInfo {
	node, ok := root.(map[string]any)
	if !ok {
		return nil
	}

	nodes := []any{root}
	if graph, ok := node["@graph"].([]any); ok {
		nodes = graph
	}

	for _, n := range nodes {
		prod := findProductNode(n)
		if prod == nil {
			continue
		}
		if info := e.ldProduct(p, prod); info != nil {
			return info
		}
	}

	// A root carrying @graph may still be Product-typed itself.
	if prod := findProductNode(root); prod != nil {
		return e.ldProduct(p, prod)
	}
	return nil
}

// ldProduct pulls the product fields off a qualified node. Nil when not
// even one of name/image/price resolved.
func (e *Extractor) ldProduct(p *page.Page, n map[string]any) *types.ProductInfo {
	name := ldPickName(n)
	image := pickURL(p, n["image"])
	if image == "" {
		image = pickURL(p, n["primaryImageOfPage"])
	}
	price, currency := ldPickPrice(n["offers"])

	if name == "" && image == "" && price == nil {
		return nil
	}

	productURL := pickURL(p, n["url"])
	if productURL == "" {
		productURL = pickURL(p, n["mainEntityOfPage"])
	}
	if productURL == "" {
		productURL = p.CanonicalURL()
	}

	return &types.ProductInfo{
		Name:       name,
		Price:      price,
		Currency:   currency,
		ImageURL:   image,
		ProductURL: productURL,
	}
}

// findProductNode qualifies a node as Product, directly or one level deep
// via mainEntity / mainEntityOfPage / itemOffered.
func findProductNode(v any) map[string]any {
	n, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	if ldIsProduct(n) {
		return n
	}
	for _, key := range []string{"mainEntity", "mainEntityOfPage", "itemOffered"} {
		if inner, ok := n[key].(map[string]any); ok && ldIsProduct(inner) {
			return inner
		}
	}
	return nil
}

// ldIsProduct checks whether @type (scalar or array) contains "product".
func ldIsProduct(n map[string]any) bool {
	typ := n["@type"]
	values, ok := typ.([]any)
	if !ok {
		values = []any{typ}
	}
	for _, v := range values {
		if s, ok := v.(string); ok && strings.EqualFold(s, "product") {
			return true
		}
	}
	return false
}

func ldPickName(n map[string]any) string {
	if s := pickString(n["name"]); s != "" {
		return s
	}
	if s := pickString(n["headline"]); s != "" {
		return s
	}
	if offers, ok := n["offers"].(map[string]any); ok {
		return pickString(offers["name"])
	}
	return ""
}

// ldPickPrice scans the offers (scalar normalized to a one-element array)
// for price, priceSpecification.price, lowPrice, highPrice, in that order.
func ldPickPrice(offers any) (*float64, string) {
	if offers == nil {
		return nil, ""
	}
	arr, ok := offers.([]any)
	if !ok {
		arr = []any{offers}
	}

	for _, o := range arr {
		ofr, ok := o.(map[string]any)
		if !ok {
			continue
		}
		currency := pickString(ofr["priceCurrency"])

		rawVal := ofr["price"]
		raw := pickString(rawVal)
		if raw == "" {
			if spec, ok := ofr["priceSpecification"].(map[string]any); ok {
				rawVal = spec["price"]
				raw = pickString(rawVal)
				if currency == "" {
					currency = pickString(spec["priceCurrency"])
				}
			}
		}
		if n, ok := normalizeAny(raw, rawVal); ok {
			return &n, currency
		}
		if n, ok := normalizeAny(pickString(ofr["lowPrice"]), ofr["lowPrice"]); ok {
			return &n, currency
		}
		if n, ok := normalizeAny(pickString(ofr["highPrice"]), ofr["highPrice"]); ok {
			return &n, currency
		}
	}
	return nil, ""
}

// normalizeAny parses a picked price string, falling back to a raw JSON
// number when the value was numeric rather than textual.
func normalizeAny(s string, raw any) (float64, bool) {
	if s != "" {
		if n, ok := money.NormalizePrice(s); ok {
			return n, true
		}
	}
	if f, ok := raw.(float64); ok {
		return f, true
	}
	return 0, false
}
