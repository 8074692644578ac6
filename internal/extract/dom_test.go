package extract

import "testing"

func TestFromDOMMetaTier(t *testing.T) {
	p := mustPage(t, `<html><head>
<meta property="og:title" content="Meta Widget">
<meta property="og:image" content="/img/meta-widget.png">
<meta property="product:price:amount" content="29.99">
<meta property="product:price:currency" content="GBP">
</head><body>
<div class="price">$999.00</div>
</body></html>`)

	e := New(fullScan(), testLogger)
	info := e.FromDOM(p)
	if info.Name != "Meta Widget" {
		t.Errorf("name = %q", info.Name)
	}
	// Meta tier wins; the hinted element is never consulted.
	if info.Price == nil || *info.Price != 29.99 {
		t.Errorf("price = %v", info.Price)
	}
	if info.Currency != "GBP" {
		t.Errorf("currency = %q", info.Currency)
	}
	if info.ImageURL != "https://shop.example.com/img/meta-widget.png" {
		t.Errorf("image = %q", info.ImageURL)
	}
}

func TestFromDOMHintedTier(t *testing.T) {
	p := mustPage(t, `<html><head><title>Hinted Widget</title></head><body>
<span class="product-price">$49.00</span>
</body></html>`)

	e := New(fullScan(), testLogger)
	info := e.FromDOM(p)
	if info.Name != "Hinted Widget" {
		t.Errorf("name = %q", info.Name)
	}
	if info.Price == nil || *info.Price != 49 {
		t.Errorf("price = %v", info.Price)
	}
}

func TestFromDOMDataAttrMinorUnits(t *testing.T) {
	// A bare integer data attribute over 1000 is minor units.
	p := mustPage(t, `<html><body>
<div data-price="1999"></div>
</body></html>`)

	e := New(fullScan(), testLogger)
	info := e.FromDOM(p)
	if info.Price == nil || *info.Price != 19.99 {
		t.Errorf("price = %v, want 19.99", info.Price)
	}
}

func TestFromDOMDataAttrDecimal(t *testing.T) {
	p := mustPage(t, `<html><body>
<div data-price="59.95"></div>
</body></html>`)

	e := New(fullScan(), testLogger)
	info := e.FromDOM(p)
	if info.Price == nil || *info.Price != 59.95 {
		t.Errorf("price = %v, want 59.95", info.Price)
	}
}

func TestFromDOMTextScanTier(t *testing.T) {
	p := mustPage(t, `<html><body>
<p>Free shipping over 100 items</p>
<span>199,99 zł</span>
</body></html>`)

	e := New(fullScan(), testLogger)
	info := e.FromDOM(p)
	if info.Price == nil || *info.Price != 199.99 {
		t.Errorf("price = %v, want 199.99", info.Price)
	}
}

func TestFromDOMTextScanSkipsRecurring(t *testing.T) {
	p := mustPage(t, `<html><body>
<span>$9.99/mo</span>
<span>$99</span>
</body></html>`)

	e := New(fullScan(), testLogger)
	info := e.FromDOM(p)
	if info.Price == nil || *info.Price != 99 {
		t.Errorf("price = %v, want 99", info.Price)
	}
}

func TestFromDOMNoPrice(t *testing.T) {
	p := mustPage(t, `<html><head><title>Nothing Here</title></head><body>
<p>A page about widgets in general.</p>
</body></html>`)

	e := New(fullScan(), testLogger)
	info := e.FromDOM(p)
	if info.Price != nil {
		t.Errorf("price = %v, want nil", info.Price)
	}
	if info.Name != "Nothing Here" {
		t.Errorf("name = %q", info.Name)
	}
	// The canonical fallback still anchors the record to the page.
	if info.ProductURL != "https://shop.example.com/products/widget" {
		t.Errorf("product URL = %q", info.ProductURL)
	}
}

func TestFromDOMImageFallsBackToFirstImg(t *testing.T) {
	p := mustPage(t, `<html><body>
<img src="/img/gallery-1.png">
<img src="/img/gallery-2.png">
</body></html>`)

	e := New(fullScan(), testLogger)
	info := e.FromDOM(p)
	if info.ImageURL != "https://shop.example.com/img/gallery-1.png" {
		t.Errorf("image = %q", info.ImageURL)
	}
}
