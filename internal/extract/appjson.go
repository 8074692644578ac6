package extract

import (
	"regexp"
	"sort"
	"time"

	"github.com/tidwall/gjson"

	"github.com/minicart/minicart/internal/money"
	"github.com/minicart/minicart/internal/page"
	"github.com/minicart/minicart/internal/types"
)

// Hydration payload shapes are framework-specific and unknowable, so this
// extractor probes a fixed list of paths common frameworks use and only
// then falls back to a bounded breadth-first search over the object graph.

var preferredIDRe = regexp.MustCompile(`__NEXT_DATA__|__NUXT__|(?i)__APOLLO_STATE__|(?i)__INITIAL_STATE__`)

var productSignalRe = regexp.MustCompile(`(?i)price|sku|brand|image|product|variant|availability|gtin|mpn|category`)

var imageKeyRe = regexp.MustCompile(`(?i)img|image|thumbnail|thumb|gallery|mainImage`)

// namePaths are tried in order; the first non-empty string wins.
var namePaths = []string{
	"props.pageProps.product.title",
	"props.pageProps.product.name",
	"product.title",
	"product.name",
	"data.product.title",
	"data.product.name",
	"state.product.name",
	"page.product.name",
	"item.name",
	"item.title",
	"name",
	"title",
	"headline",
}

// priceCandidatePaths locate objects probed for price-ish members; the
// empty path is the root itself.
var priceCandidatePaths = []string{
	"props.pageProps.product",
	"product",
	"data.product",
	"item",
	"",
}

var priceKeys = []string{
	"price",
	"salePrice",
	"currentPrice",
	"price.value",
	"pricing.price",
	"pricing.current.value",
}

var imagePaths = []string{
	"product.image",
	"product.images",
	"data.product.image",
	"data.product.images",
	"item.image",
	"image",
	"images",
}

var urlPaths = []string{
	"product.url",
	"data.product.url",
	"item.url",
	"url",
}

// Search bounds for the heuristic graph walk. Pathological pages must not
// cost unbounded time no matter what the author embedded.
const (
	nameTimeBudget  = 120 * time.Millisecond
	nameNodeMax     = 20_000
	nameArraySlice  = 400
	imageNodeMax    = 10_000
	imageArraySlice = 300
)

// FromAppJSON extracts a product candidate from an embedded application
// state blob. MIME-typed JSON scripts run before JSON-shaped untyped ones,
// and scripts carrying a known global-state id run first within each tier.
// The first script yielding any of name, image, or price short-circuits.
func (e *Extractor) FromAppJSON(p *page.Page) *types.ProductInfo {
	opts := e.opts

	var typed, sniffed []page.Script
	for _, s := range p.Scripts() {
		if isAnyJSONButLD(s.Type) {
			typed = append(typed, s)
			continue
		}
		txt := s.Text(opts.MaxChars)
		if txt != "" && looksLikeJSONPayload(txt) && !looksLikeLD(txt) {
			sniffed = append(sniffed, s)
		}
	}
	sortPreferredFirst(typed)
	sortPreferredFirst(sniffed)

	checked := 0
	for _, bucket := range [][]page.Script{typed, sniffed} {
		for _, s := range bucket {
			if !opts.FullScan && checked >= opts.MaxScripts {
				return nil
			}
			checked++

			raw := s.Text(opts.MaxChars)
			if raw == "" {
				continue
			}
			if !gjson.Valid(raw) {
				if raw = firstJSONObject(raw); raw == "" {
					continue
				}
			}
			root := gjson.Parse(raw)

			name := appPickName(root)
			price := appPickPrice(root)
			image := appPickImage(p, root)

			if name == "" && image == "" && price == nil {
				continue
			}

			productURL := appPickURL(p, root)
			if productURL == "" {
				productURL = p.CanonicalURL()
			}
			return &types.ProductInfo{
				Name:       name,
				Price:      price,
				ImageURL:   image,
				ProductURL: productURL,
			}
		}
	}
	return nil
}

func sortPreferredFirst(scripts []page.Script) {
	sort.SliceStable(scripts, func(i, j int) bool {
		return preferredIDRe.MatchString(scripts[i].ID) && !preferredIDRe.MatchString(scripts[j].ID)
	})
}

func appPickName(root gjson.Result) string {
	for _, path := range namePaths {
		if s := pickString(root.Get(path).Value()); s != "" {
			return s
		}
	}
	return bfsName(root.Value())
}

// bfsName walks the object graph looking for a node that exposes a
// name/title/headline string next to at least one product-signal key;
// the sibling requirement filters out navigation labels and the like.
func bfsName(rootVal any) string {
	deadline := time.Now().Add(nameTimeBudget)
	queue := []any{rootVal}
	visited := 0

	for len(queue) > 0 {
		if time.Now().After(deadline) {
			return ""
		}
		if visited++; visited > nameNodeMax {
			return ""
		}

		node := queue[0]
		queue = queue[1:]

		switch t := node.(type) {
		case []any:
			n := len(t)
			if n > nameArraySlice {
				n = nameArraySlice
			}
			queue = append(queue, t[:n]...)
		case map[string]any:
			candidate := ""
			for _, key := range []string{"name", "title", "headline"} {
				if s, ok := t[key].(string); ok && s != "" {
					candidate = s
					break
				}
			}
			if candidate != "" && hasProductSignals(t) {
				return candidate
			}
			for _, k := range sortedKeys(t) {
				if v := t[k]; v != nil {
					switch v.(type) {
					case map[string]any, []any:
						queue = append(queue, v)
					}
				}
			}
		}
	}
	return ""
}

func hasProductSignals(obj map[string]any) bool {
	for k := range obj {
		if productSignalRe.MatchString(k) {
			return true
		}
	}
	return false
}

func appPickPrice(root gjson.Result) *float64 {
	for _, path := range priceCandidatePaths {
		candidate := root
		if path != "" {
			candidate = root.Get(path)
		}
		if !candidate.IsObject() {
			continue
		}

		for _, key := range priceKeys {
			v := candidate.Get(key)
			if !v.Exists() {
				continue
			}
			if n, ok := normalizeResult(v); ok {
				return &n
			}
		}

		if offers := candidate.Get("offers"); offers.Exists() {
			if n, ok := offersPrice(offers); ok {
				return &n
			}
		}
	}
	return nil
}

// offersPrice probes an offers value (scalar or array) the same way the
// structured-data extractor does.
func offersPrice(offers gjson.Result) (float64, bool) {
	arr := []gjson.Result{offers}
	if offers.IsArray() {
		arr = offers.Array()
	}
	for _, ofr := range arr {
		for _, key := range []string{"price", "priceSpecification.price", "amount"} {
			if n, ok := normalizeResult(ofr.Get(key)); ok {
				return n, true
			}
		}
	}
	return 0, false
}

// normalizeResult parses a gjson value as a price: strings go through the
// normalizer, raw numbers pass as-is, wrapped values through the picker.
func normalizeResult(v gjson.Result) (float64, bool) {
	switch v.Type {
	case gjson.String:
		return money.NormalizePrice(v.Str)
	case gjson.Number:
		return v.Num, true
	default:
		if s := pickString(v.Value()); s != "" {
			return money.NormalizePrice(s)
		}
	}
	return 0, false
}

func appPickImage(p *page.Page, root gjson.Result) string {
	for _, path := range imagePaths {
		if u := pickURL(p, root.Get(path).Value()); u != "" {
			return u
		}
	}
	return bfsImage(p, root.Value())
}

// bfsImage walks the graph for keys that look image-bearing.
func bfsImage(p *page.Page, rootVal any) string {
	queue := []any{rootVal}
	visited := 0

	for len(queue) > 0 {
		if visited++; visited > imageNodeMax {
			return ""
		}

		node := queue[0]
		queue = queue[1:]

		switch t := node.(type) {
		case []any:
			n := len(t)
			if n > imageArraySlice {
				n = imageArraySlice
			}
			queue = append(queue, t[:n]...)
		case map[string]any:
			for _, k := range sortedKeys(t) {
				v := t[k]
				if imageKeyRe.MatchString(k) {
					if u := pickURL(p, v); u != "" {
						return u
					}
				}
				switch v.(type) {
				case map[string]any, []any:
					queue = append(queue, v)
				}
			}
		}
	}
	return ""
}

func appPickURL(p *page.Page, root gjson.Result) string {
	for _, path := range urlPaths {
		if u := pickURL(p, root.Get(path).Value()); u != "" {
			return u
		}
	}
	return ""
}

// sortedKeys keeps graph walks deterministic across runs.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
