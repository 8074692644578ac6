// Package page wraps a fetched HTML document and exposes the pieces the
// extractors care about: inline scripts, metadata, and URL resolution.
package page

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/minicart/minicart/internal/types"
)

// MaxScriptChars caps how much of a single inline script is read.
const MaxScriptChars = 300_000

// Script is one inline <script> element in document order.
type Script struct {
	// Type is the declared MIME type, trimmed, possibly empty.
	Type string

	// ID is the element id attribute, possibly empty.
	ID string

	text string
}

// Text returns the script body trimmed and truncated to max characters.
// A non-positive max applies the package default.
func (s Script) Text(max int) string {
	if max <= 0 {
		max = MaxScriptChars
	}
	t := s.text
	if len(t) > max {
		t = t[:max]
	}
	return strings.TrimSpace(t)
}

// Page is a parsed HTML document anchored at its fetched URL.
type Page struct {
	url     *url.URL
	doc     *goquery.Document
	scripts []Script
}

// New parses raw HTML into a Page. rawURL anchors relative references and
// must be absolute.
func New(rawURL string, body []byte) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() {
		return nil, fmt.Errorf("page URL %q: %w", rawURL, types.ErrInvalidURL)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &Page{url: u, doc: doc}, nil
}

// FromResponse builds a Page from a fetched response, anchored at the
// post-redirect URL.
func FromResponse(resp *types.Response) (*Page, error) {
	if len(resp.Body) == 0 {
		return nil, types.ErrEmptyResponse
	}
	base := resp.FinalURL
	if base == "" {
		base = resp.Request.URLString()
	}
	return New(base, resp.Body)
}

// URL returns the page's anchor URL.
func (p *Page) URL() *url.URL { return p.url }

// Doc exposes the underlying goquery document.
func (p *Page) Doc() *goquery.Document { return p.doc }

// Root returns the document root node for XPath-based scans.
func (p *Page) Root() *html.Node {
	if len(p.doc.Nodes) == 0 {
		return nil
	}
	return p.doc.Nodes[0]
}

// Scripts returns all inline scripts in document order. The slice is
// built once and cached.
func (p *Page) Scripts() []Script {
	if p.scripts != nil {
		return p.scripts
	}
	p.scripts = make([]Script, 0, 8)
	p.doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		typ, _ := sel.Attr("type")
		id, _ := sel.Attr("id")
		p.scripts = append(p.scripts, Script{
			Type: strings.TrimSpace(typ),
			ID:   id,
			text: sel.Text(),
		})
	})
	return p.scripts
}

// Meta returns the trimmed content of the first matching meta tag.
func (p *Page) Meta(selector string) string {
	content, ok := p.doc.Find(selector).First().Attr("content")
	if !ok {
		return ""
	}
	return strings.TrimSpace(content)
}

// Title returns the trimmed document title.
func (p *Page) Title() string {
	return strings.TrimSpace(p.doc.Find("title").First().Text())
}

// AbsURL resolves a possibly-relative reference against the page URL.
// Anything that cannot be resolved to an absolute http(s) URL yields "".
func (p *Page) AbsURL(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	abs := p.url.ResolveReference(u)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	if abs.Host == "" {
		return ""
	}
	return abs.String()
}

// CanonicalURL returns the page's declared canonical address: the
// rel=canonical link, else the og:url meta, else the page URL itself.
func (p *Page) CanonicalURL() string {
	if href, ok := p.doc.Find(`link[rel="canonical"]`).First().Attr("href"); ok {
		if abs := p.AbsURL(href); abs != "" {
			return abs
		}
	}
	if og := p.Meta(`meta[property="og:url"]`); og != "" {
		if abs := p.AbsURL(og); abs != "" {
			return abs
		}
	}
	return p.url.String()
}
