package page

import (
	"strings"
	"testing"
)

const pageHTML = `<!DOCTYPE html>
<html>
<head>
    <title>  Widget Deluxe — Shop  </title>
    <link rel="canonical" href="/products/widget-deluxe">
    <meta property="og:title" content="Widget Deluxe">
    <meta property="og:url" content="https://shop.example.com/products/widget-deluxe?ref=og">
    <script type="application/ld+json">{"@type":"Product"}</script>
    <script id="__NEXT_DATA__" type="application/json">{"props":{}}</script>
    <script>window.dataLayer = [];</script>
</head>
<body>
    <img src="/img/widget.png">
</body>
</html>`

func mustPage(t *testing.T, rawURL, body string) *Page {
	t.Helper()
	p, err := New(rawURL, []byte(body))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestNewRejectsRelativeURL(t *testing.T) {
	if _, err := New("/products/1", []byte("<html></html>")); err == nil {
		t.Fatal("expected error for relative page URL")
	}
}

func TestScripts(t *testing.T) {
	p := mustPage(t, "https://shop.example.com/products/widget-deluxe", pageHTML)

	scripts := p.Scripts()
	if len(scripts) != 3 {
		t.Fatalf("got %d scripts, want 3", len(scripts))
	}
	if scripts[0].Type != "application/ld+json" {
		t.Errorf("script 0 type = %q", scripts[0].Type)
	}
	if scripts[1].ID != "__NEXT_DATA__" {
		t.Errorf("script 1 id = %q", scripts[1].ID)
	}
	if scripts[2].Type != "" {
		t.Errorf("script 2 type = %q, want empty", scripts[2].Type)
	}
	if got := scripts[1].Text(0); got != `{"props":{}}` {
		t.Errorf("script 1 text = %q", got)
	}
}

func TestScriptTextTruncation(t *testing.T) {
	body := "<script>" + strings.Repeat("x", 100) + "</script>"
	p := mustPage(t, "https://example.com/", body)

	scripts := p.Scripts()
	if len(scripts) != 1 {
		t.Fatalf("got %d scripts, want 1", len(scripts))
	}
	if got := scripts[0].Text(10); len(got) != 10 {
		t.Errorf("truncated text length = %d, want 10", len(got))
	}
}

func TestMetaAndTitle(t *testing.T) {
	p := mustPage(t, "https://shop.example.com/products/widget-deluxe", pageHTML)

	if got := p.Meta(`meta[property="og:title"]`); got != "Widget Deluxe" {
		t.Errorf("og:title = %q", got)
	}
	if got := p.Meta(`meta[name="missing"]`); got != "" {
		t.Errorf("missing meta = %q, want empty", got)
	}
	if got := p.Title(); got != "Widget Deluxe — Shop" {
		t.Errorf("title = %q", got)
	}
}

func TestAbsURL(t *testing.T) {
	p := mustPage(t, "https://shop.example.com/products/widget-deluxe", pageHTML)

	tests := []struct {
		ref  string
		want string
	}{
		{"/img/widget.png", "https://shop.example.com/img/widget.png"},
		{"thumb.png", "https://shop.example.com/products/thumb.png"},
		{"https://cdn.example.com/a.png", "https://cdn.example.com/a.png"},
		{"//cdn.example.com/b.png", "https://cdn.example.com/b.png"},
		{"javascript:void(0)", ""},
		{"data:image/png;base64,AAAA", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := p.AbsURL(tt.ref); got != tt.want {
			t.Errorf("AbsURL(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}

func TestCanonicalURL(t *testing.T) {
	p := mustPage(t, "https://shop.example.com/products/widget-deluxe?utm=x", pageHTML)
	if got := p.CanonicalURL(); got != "https://shop.example.com/products/widget-deluxe" {
		t.Errorf("canonical = %q", got)
	}

	// og:url fallback when rel=canonical is absent.
	noCanonical := strings.Replace(pageHTML, `<link rel="canonical" href="/products/widget-deluxe">`, "", 1)
	p = mustPage(t, "https://shop.example.com/products/widget-deluxe?utm=x", noCanonical)
	if got := p.CanonicalURL(); got != "https://shop.example.com/products/widget-deluxe?ref=og" {
		t.Errorf("canonical via og:url = %q", got)
	}

	// Page URL fallback when neither is declared.
	p = mustPage(t, "https://shop.example.com/p/1", "<html></html>")
	if got := p.CanonicalURL(); got != "https://shop.example.com/p/1" {
		t.Errorf("canonical fallback = %q", got)
	}
}
