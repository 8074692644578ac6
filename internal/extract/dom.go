package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"

	"github.com/minicart/minicart/internal/money"
	"github.com/minicart/minicart/internal/page"
	"github.com/minicart/minicart/internal/types"
)

// textScanNodeMax caps the generic currency-text scan.
const textScanNodeMax = 2000

var (
	priceAttrNameRe = regexp.MustCompile(`(?i)price|amount`)
	bareIntRe       = regexp.MustCompile(`^\d+$`)
	currencyRe      = regexp.MustCompile(`(?i)(zł|pln|€|eur|£|gbp|\$|usd|¥|jpy|₽|₴|₺|₩|₹)`)
	recurringRe     = regexp.MustCompile(`(?i)/\s?(mies|msc|month|mo)\b`)
)

// priceHintAttrs are element attributes whose value marks a price carrier.
var priceHintAttrs = []string{
	"data-testid", "data-test", "data-qa", "class", "id", "aria-label", "itemprop",
}

// priceDataAttrs mark a price carrier by their mere presence.
var priceDataAttrs = []string{
	"data-price", "data-amount", "data-price-amount", "data-current-price",
}

// FromDOM derives whatever fields plain markup still offers once the
// structured extractors came up empty. Always returns a (possibly
// partial) record; per-field merging happens in Extract.
func (e *Extractor) FromDOM(p *page.Page) types.ProductInfo {
	price, currency := e.domPrice(p)
	return types.ProductInfo{
		Name:       domName(p),
		Price:      price,
		Currency:   currency,
		ImageURL:   domImage(p),
		ProductURL: p.CanonicalURL(),
	}
}

func domName(p *page.Page) string {
	if s := p.Meta(`meta[property="og:title"]`); s != "" {
		return s
	}
	if s := p.Meta(`meta[name="twitter:title"]`); s != "" {
		return s
	}
	return p.Title()
}

func domImage(p *page.Page) string {
	if og := p.Meta(`meta[property="og:image"]`); og != "" {
		if abs := p.AbsURL(og); abs != "" {
			return abs
		}
	}
	if tw := p.Meta(`meta[name="twitter:image"]`); tw != "" {
		if abs := p.AbsURL(tw); abs != "" {
			return abs
		}
	}
	if tw := p.Meta(`meta[name="twitter:image:src"]`); tw != "" {
		if abs := p.AbsURL(tw); abs != "" {
			return abs
		}
	}
	if src, ok := p.Doc().Find("img[src]").First().Attr("src"); ok {
		return p.AbsURL(src)
	}
	return ""
}

// domPrice tries three tiers in strict order, returning on the first
// positive parse; tiers are never combined.
func (e *Extractor) domPrice(p *page.Page) (*float64, string) {
	currency := domCurrency(p)

	if n, ok := metaPrice(p); ok {
		return &n, currency
	}
	if n, ok := hintedPrice(p); ok {
		return &n, currency
	}
	if n, ok := e.textScanPrice(p); ok {
		return &n, currency
	}
	return nil, currency
}

func domCurrency(p *page.Page) string {
	if c := p.Meta(`meta[property="product:price:currency"]`); c != "" {
		return c
	}
	if c := p.Meta(`meta[property="og:price:currency"]`); c != "" {
		return c
	}
	return p.Meta(`meta[itemprop="priceCurrency"]`)
}

// metaPrice is tier 1: explicit price metadata.
func metaPrice(p *page.Page) (float64, bool) {
	raw := p.Meta(`meta[property="product:price:amount"]`)
	if raw == "" {
		raw = p.Meta(`meta[property="og:price:amount"]`)
	}
	if raw == "" {
		raw = p.Meta(`meta[itemprop="price"]`)
	}
	if raw == "" {
		el := p.Doc().Find(`[itemprop="price"]`).First()
		if content, ok := el.Attr("content"); ok {
			raw = strings.TrimSpace(content)
		} else {
			raw = strings.TrimSpace(el.Text())
		}
	}
	return positivePrice(raw)
}

// hintedPrice is tier 2: elements whose attributes advertise a price.
// Attribute values are inspected before element text, and a bare integer
// over 1000 with no separator is read as minor units.
func hintedPrice(p *page.Page) (price float64, found bool) {
	p.Doc().Find("*").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !isPriceHinted(sel) {
			return true
		}

		for _, node := range sel.Nodes {
			for _, attr := range node.Attr {
				if attr.Val == "" || !priceAttrNameRe.MatchString(attr.Key) {
					continue
				}
				// A bare integer with no separator is read as minor
				// units when it is too large to be a plausible major
				// amount.
				if bareIntRe.MatchString(attr.Val) {
					if v, err := strconv.ParseFloat(attr.Val, 64); err == nil && v > 1000 {
						price, found = v/100, true
						return false
					}
				}
				if n, ok := positivePrice(attr.Val); ok {
					price, found = n, true
					return false
				}
			}
		}

		if n, ok := positivePrice(strings.TrimSpace(sel.Text())); ok {
			price, found = n, true
			return false
		}
		ok := false
		sel.Children().EachWithBreak(func(_ int, child *goquery.Selection) bool {
			var n float64
			if n, ok = positivePrice(strings.TrimSpace(child.Text())); ok {
				price, found = n, true
				return false
			}
			return true
		})
		return !ok
	})
	return price, found
}

func isPriceHinted(sel *goquery.Selection) bool {
	for _, name := range priceHintAttrs {
		if v, ok := sel.Attr(name); ok && strings.Contains(strings.ToLower(v), "price") {
			return true
		}
	}
	for _, name := range priceDataAttrs {
		if _, ok := sel.Attr(name); ok {
			return true
		}
	}
	return false
}

// textScanPrice is tier 3: a bounded sweep of text-bearing elements for
// one containing a currency symbol, skipping recurring-subscription
// amounts like "9.99/mo".
func (e *Extractor) textScanPrice(p *page.Page) (float64, bool) {
	root := p.Root()
	if root == nil {
		return 0, false
	}
	nodes, err := htmlquery.QueryAll(root, "//span | //div | //dd | //dt | //p | //b | //strong | //em")
	if err != nil {
		return 0, false
	}

	checked := 0
	for _, node := range nodes {
		if checked++; checked > textScanNodeMax {
			break
		}
		txt := strings.TrimSpace(htmlquery.InnerText(node))
		if txt == "" || !currencyRe.MatchString(txt) {
			continue
		}
		if recurringRe.MatchString(txt) {
			continue
		}
		if n, ok := positivePrice(txt); ok {
			return n, true
		}
	}
	return 0, false
}

// positivePrice parses raw and accepts only strictly positive results.
func positivePrice(raw string) (float64, bool) {
	n, ok := money.NormalizePrice(raw)
	if !ok || n <= 0 {
		return 0, false
	}
	return n, true
}
