package extract

import "testing"

func TestFromAppJSONNextData(t *testing.T) {
	p := mustPage(t, `<html><body>
<script id="__NEXT_DATA__" type="application/json">
{"props":{"pageProps":{"product":{
  "title":"Next Widget",
  "price":"49.90",
  "images":["/img/next-widget.png"]
}}}}
</script>
</body></html>`)

	e := New(fullScan(), testLogger)
	info := e.FromAppJSON(p)
	if info == nil {
		t.Fatal("expected product, got nil")
	}
	if info.Name != "Next Widget" {
		t.Errorf("name = %q", info.Name)
	}
	if info.Price == nil || *info.Price != 49.90 {
		t.Errorf("price = %v", info.Price)
	}
	if info.ImageURL != "https://shop.example.com/img/next-widget.png" {
		t.Errorf("image = %q", info.ImageURL)
	}
	if info.ProductURL != "https://shop.example.com/products/widget" {
		t.Errorf("product URL = %q", info.ProductURL)
	}
}

func TestFromAppJSONKnownPaths(t *testing.T) {
	p := mustPage(t, `<html><body>
<script type="application/json">
{"data":{"product":{"name":"Data Widget","url":"/p/data-widget"}},
 "product":{"offers":{"price":9.5}}}
</script>
</body></html>`)

	e := New(fullScan(), testLogger)
	info := e.FromAppJSON(p)
	if info == nil {
		t.Fatal("expected product, got nil")
	}
	if info.Name != "Data Widget" {
		t.Errorf("name = %q", info.Name)
	}
	if info.Price == nil || *info.Price != 9.5 {
		t.Errorf("price = %v", info.Price)
	}
	if info.ProductURL != "https://shop.example.com/p/data-widget" {
		t.Errorf("product URL = %q", info.ProductURL)
	}
}

func TestFromAppJSONDeepNameSearch(t *testing.T) {
	// No known path matches; the graph walk must find the name next to
	// a product signal (sku).
	p := mustPage(t, `<html><body>
<script type="application/json">
{"page":{"blocks":[{"kind":"hero"},{"entry":{"name":"Deep Widget","sku":"DW-1"}}]}}
</script>
</body></html>`)

	e := New(fullScan(), testLogger)
	info := e.FromAppJSON(p)
	if info == nil {
		t.Fatal("expected product, got nil")
	}
	if info.Name != "Deep Widget" {
		t.Errorf("name = %q", info.Name)
	}
}

func TestFromAppJSONNameNeedsProductSignal(t *testing.T) {
	// A name with no product-ish sibling is navigation noise, not a
	// product.
	p := mustPage(t, `<html><body>
<script type="application/json">
{"nav":{"entry":{"name":"Home","href":"/"}}}
</script>
</body></html>`)

	e := New(fullScan(), testLogger)
	if info := e.FromAppJSON(p); info != nil {
		t.Fatalf("expected nil, got %+v", info)
	}
}

func TestFromAppJSONPriceKeyVariants(t *testing.T) {
	tests := []struct {
		name string
		blob string
		want float64
	}{
		{"salePrice", `{"product":{"name":"A","sku":"1","salePrice":"12.50"}}`, 12.50},
		{"nested value", `{"product":{"name":"B","sku":"2","pricing":{"current":{"value":7}}}}`, 7},
		{"offers amount", `{"item":{"name":"C","sku":"3","offers":[{"amount":"3,99"}]}}`, 3.99},
	}

	for _, tt := range tests {
		p := mustPage(t, `<html><body><script type="application/json">`+tt.blob+`</script></body></html>`)
		e := New(fullScan(), testLogger)
		info := e.FromAppJSON(p)
		if info == nil {
			t.Errorf("%s: expected product, got nil", tt.name)
			continue
		}
		if info.Price == nil || *info.Price != tt.want {
			t.Errorf("%s: price = %v, want %v", tt.name, info.Price, tt.want)
		}
	}
}

func TestFromAppJSONEmbeddedInJS(t *testing.T) {
	// Typed script that wraps its JSON in an assignment; the tolerant
	// parse must carve out the object literal.
	p := mustPage(t, `<html><body>
<script type="application/json">window.__INITIAL_STATE__ = {"product":{"name":"JS Widget","price":12}};</script>
</body></html>`)

	e := New(fullScan(), testLogger)
	info := e.FromAppJSON(p)
	if info == nil {
		t.Fatal("expected product, got nil")
	}
	if info.Name != "JS Widget" {
		t.Errorf("name = %q", info.Name)
	}
	if info.Price == nil || *info.Price != 12 {
		t.Errorf("price = %v", info.Price)
	}
}

func TestFromAppJSONPreferredScriptFirst(t *testing.T) {
	// Both scripts qualify; the hydration-state id must win even when it
	// appears later in the document.
	p := mustPage(t, `<html><body>
<script type="application/json">{"item":{"name":"Generic Blob","sku":"G"}}</script>
<script id="__NUXT__" type="application/json">{"product":{"name":"Nuxt Widget","sku":"N"}}</script>
</body></html>`)

	e := New(fullScan(), testLogger)
	info := e.FromAppJSON(p)
	if info == nil {
		t.Fatal("expected product, got nil")
	}
	if info.Name != "Nuxt Widget" {
		t.Errorf("name = %q, want the hydration script's product", info.Name)
	}
}

func TestFromAppJSONNothingUsable(t *testing.T) {
	p := mustPage(t, `<html><body>
<script type="application/json">{"config":{"locale":"en","flags":[1,2,3]}}</script>
</body></html>`)

	e := New(fullScan(), testLogger)
	if info := e.FromAppJSON(p); info != nil {
		t.Fatalf("expected nil, got %+v", info)
	}
}
