package extract

import "testing"

func TestFromLDJSONBasicProduct(t *testing.T) {
	p := mustPage(t, `<html><head>
<script type="application/ld+json">
{"@context":"https://schema.org","@type":"Product","name":"Widget Deluxe",
 "image":"https://cdn.example.com/widget.png",
 "offers":{"@type":"Offer","price":"19.99","priceCurrency":"USD"}}
</script>
</head></html>`)

	e := New(fullScan(), testLogger)
	info := e.FromLDJSON(p)
	if info == nil {
		t.Fatal("expected product, got nil")
	}
	if info.Name != "Widget Deluxe" {
		t.Errorf("name = %q", info.Name)
	}
	if info.Price == nil || *info.Price != 19.99 {
		t.Errorf("price = %v", info.Price)
	}
	if info.Currency != "USD" {
		t.Errorf("currency = %q", info.Currency)
	}
	if info.ImageURL != "https://cdn.example.com/widget.png" {
		t.Errorf("image = %q", info.ImageURL)
	}
	// No url member: falls back to the page's canonical address.
	if info.ProductURL != "https://shop.example.com/products/widget" {
		t.Errorf("product URL = %q", info.ProductURL)
	}
}

func TestFromLDJSONGraph(t *testing.T) {
	p := mustPage(t, `<html><head>
<script type="application/ld+json">
{"@context":"https://schema.org","@graph":[
  {"@type":"BreadcrumbList","itemListElement":[]},
  {"@type":"Product","name":"Graph Widget","url":"/p/graph-widget",
   "offers":[{"@type":"Offer","price":49.5,"priceCurrency":"EUR"}]}
]}
</script>
</head></html>`)

	e := New(fullScan(), testLogger)
	info := e.FromLDJSON(p)
	if info == nil {
		t.Fatal("expected product, got nil")
	}
	if info.Name != "Graph Widget" {
		t.Errorf("name = %q", info.Name)
	}
	if info.Price == nil || *info.Price != 49.5 {
		t.Errorf("price = %v", info.Price)
	}
	if info.ProductURL != "https://shop.example.com/p/graph-widget" {
		t.Errorf("product URL = %q", info.ProductURL)
	}
}

func TestFromLDJSONTypeArray(t *testing.T) {
	p := mustPage(t, `<html><head>
<script type="application/ld+json">
{"@context":"https://schema.org","@type":["Thing","Product"],"name":"Multi Widget"}
</script>
</head></html>`)

	e := New(fullScan(), testLogger)
	info := e.FromLDJSON(p)
	if info == nil || info.Name != "Multi Widget" {
		t.Fatalf("info = %+v", info)
	}
}

func TestFromLDJSONMainEntity(t *testing.T) {
	p := mustPage(t, `<html><head>
<script type="application/ld+json">
{"@context":"https://schema.org","@type":"WebPage",
 "mainEntity":{"@type":"Product","name":"Nested Widget",
   "offers":{"priceSpecification":{"price":"1.234,56","priceCurrency":"PLN"}}}}
</script>
</head></html>`)

	e := New(fullScan(), testLogger)
	info := e.FromLDJSON(p)
	if info == nil {
		t.Fatal("expected product, got nil")
	}
	if info.Name != "Nested Widget" {
		t.Errorf("name = %q", info.Name)
	}
	if info.Price == nil || *info.Price != 1234.56 {
		t.Errorf("price = %v", info.Price)
	}
	if info.Currency != "PLN" {
		t.Errorf("currency = %q", info.Currency)
	}
}

func TestFromLDJSONMalformedSkipped(t *testing.T) {
	p := mustPage(t, `<html><head>
<script type="application/ld+json">{not json at all</script>
<script type="application/ld+json">{"@type":"Product","name":"Second Script"}</script>
</head></html>`)

	e := New(fullScan(), testLogger)
	info := e.FromLDJSON(p)
	if info == nil || info.Name != "Second Script" {
		t.Fatalf("info = %+v", info)
	}
}

func TestFromLDJSONSniffedUntyped(t *testing.T) {
	// JSON-LD embedded in a JS assignment without a MIME type.
	p := mustPage(t, `<html><body>
<script>var ld = {"@context":"https://schema.org","@type":"Product","name":"Sniffed Widget"};</script>
</body></html>`)

	e := New(fullScan(), testLogger)
	info := e.FromLDJSON(p)
	if info == nil || info.Name != "Sniffed Widget" {
		t.Fatalf("info = %+v", info)
	}
}

func TestFromLDJSONNoProduct(t *testing.T) {
	p := mustPage(t, `<html><head>
<script type="application/ld+json">{"@context":"https://schema.org","@type":"Organization","name":"Acme"}</script>
</head></html>`)

	e := New(fullScan(), testLogger)
	if info := e.FromLDJSON(p); info != nil {
		t.Fatalf("expected nil, got %+v", info)
	}
}

func TestFromLDJSONImageArray(t *testing.T) {
	p := mustPage(t, `<html><head>
<script type="application/ld+json">
{"@type":"Product","name":"Array Widget","image":["/img/1.png","/img/2.png"]}
</script>
</head></html>`)

	e := New(fullScan(), testLogger)
	info := e.FromLDJSON(p)
	if info == nil {
		t.Fatal("expected product, got nil")
	}
	if info.ImageURL != "https://shop.example.com/img/1.png" {
		t.Errorf("image = %q", info.ImageURL)
	}
}
