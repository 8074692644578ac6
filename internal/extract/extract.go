// Package extract assembles a product record from untrusted page markup.
// Three independent strategies — JSON-LD structured data, embedded
// application state, and plain DOM heuristics — each produce a partial
// candidate, merged per field under a fixed priority order.
package extract

import (
	"log/slog"

	"github.com/minicart/minicart/internal/observability"
	"github.com/minicart/minicart/internal/page"
	"github.com/minicart/minicart/internal/types"
)

// Options bound how much of a page an extraction pass may inspect and
// carry the optional instrumentation hooks.
type Options struct {
	// FullScan disables the MaxScripts budget. Callers that need a
	// correctness-complete scan must set it.
	FullScan bool

	// MaxScripts caps how many scripts are inspected when FullScan is
	// off. Pages can carry hundreds of inline scripts.
	MaxScripts int

	// MaxChars caps how much of each script body is read.
	MaxChars int

	// Metrics counts extraction passes per detected format. May be nil.
	Metrics *observability.Metrics
}

func (o Options) withDefaults() Options {
	if o.MaxScripts <= 0 {
		o.MaxScripts = 8
	}
	if o.MaxChars <= 0 {
		o.MaxChars = page.MaxScriptChars
	}
	return o
}

// Extractor runs the extraction pipeline against parsed pages.
type Extractor struct {
	opts   Options
	logger *slog.Logger
}

// New creates an Extractor with the given scan budget.
func New(opts Options, logger *slog.Logger) *Extractor {
	return &Extractor{
		opts:   opts.withDefaults(),
		logger: logger.With("component", "extractor"),
	}
}

// Extract produces the merged product candidate for a page.
//
// The detected format gates which JSON extractors run first, but both get
// an unconditional second attempt when the gated run came up empty —
// misclassification must not cost us a page the extractors could handle.
// DOM fallback values are always computed. Each field independently takes
// the first non-empty value in order: JSON-LD, app state, DOM.
func (e *Extractor) Extract(p *page.Page) types.ProductInfo {
	format := DetectFormat(p, e.opts)
	e.opts.Metrics.IncExtract(string(format))

	var fromLD, fromApp *types.ProductInfo
	if format == types.FormatLDJSON || format == types.FormatBoth {
		fromLD = e.FromLDJSON(p)
	}
	if format == types.FormatJSON || format == types.FormatBoth {
		fromApp = e.FromAppJSON(p)
	}
	if fromLD == nil {
		fromLD = e.FromLDJSON(p)
	}
	if fromApp == nil {
		fromApp = e.FromAppJSON(p)
	}

	dom := e.FromDOM(p)

	info := types.ProductInfo{
		Name:       firstString(infoName(fromLD), infoName(fromApp), dom.Name),
		Price:      firstPrice(infoPrice(fromLD), infoPrice(fromApp), dom.Price),
		Currency:   firstString(infoCurrency(fromLD), infoCurrency(fromApp), dom.Currency),
		ImageURL:   firstString(infoImage(fromLD), infoImage(fromApp), dom.ImageURL),
		ProductURL: firstString(infoURL(fromLD), infoURL(fromApp), dom.ProductURL),
	}

	e.logger.Debug("extraction pass complete",
		"url", p.URL().String(),
		"format", string(format),
		"result", info.Summary(),
	)
	return info
}

func firstString(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPrice(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func infoName(p *types.ProductInfo) string {
	if p == nil {
		return ""
	}
	return p.Name
}

func infoPrice(p *types.ProductInfo) *float64 {
	if p == nil {
		return nil
	}
	return p.Price
}

func infoCurrency(p *types.ProductInfo) string {
	if p == nil {
		return ""
	}
	return p.Currency
}

func infoImage(p *types.ProductInfo) string {
	if p == nil {
		return ""
	}
	return p.ImageURL
}

func infoURL(p *types.ProductInfo) string {
	if p == nil {
		return ""
	}
	return p.ProductURL
}
