package scanner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/minicart/minicart/internal/cart"
	"github.com/minicart/minicart/internal/config"
	"github.com/minicart/minicart/internal/extract"
	"github.com/minicart/minicart/internal/fetcher"
	"github.com/minicart/minicart/internal/observability"
	"github.com/minicart/minicart/internal/page"
	"github.com/minicart/minicart/internal/types"
)

// Scanner ties the pipeline together: fetch a page, extract product data,
// and add the result to the cart. A single-slot memo of the last
// processed URL stops repeat scans of the same product from inflating
// quantities; it is best-effort de-duplication, not a lock.
type Scanner struct {
	fetcher   fetcher.Fetcher
	extractor *extract.Extractor
	cart      *cart.Cart
	cfg       config.Scanner
	metrics   *observability.Metrics
	logger    *slog.Logger

	mu            sync.Mutex
	lastProcessed string
}

// New creates a Scanner. metrics may be nil.
func New(f fetcher.Fetcher, ex *extract.Extractor, c *cart.Cart, cfg config.Scanner, metrics *observability.Metrics, logger *slog.Logger) *Scanner {
	return &Scanner{
		fetcher:   f,
		extractor: ex,
		cart:      c,
		cfg:       cfg,
		metrics:   metrics,
		logger:    logger.With("component", "scanner"),
	}
}

// Result reports what a scan produced.
type Result struct {
	Info     types.ProductInfo
	Item     *types.CartItem
	Attempts int
	Skipped  bool
}

// Scan fetches the URL and adds the extracted product to the cart,
// retrying a bounded number of times when the page yields an incomplete
// record. Storefronts often finish rendering their price a beat after
// the initial response, so a second or third look is frequently enough.
func (s *Scanner) Scan(ctx context.Context, rawURL string, render bool) (*Result, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveScan(time.Since(start))
	}()

	attempts := s.cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var res *Result
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		res, err = s.scanOnce(ctx, rawURL, render)
		if err != nil {
			s.metrics.IncScan("error")
			return nil, err
		}
		res.Attempts = attempt
		if res.Skipped || res.Item != nil {
			break
		}

		// Incomplete record; wait and look again.
		if attempt < attempts {
			s.metrics.IncRetry()
			s.logger.Debug("incomplete product, retrying",
				"url", rawURL,
				"attempt", attempt,
				"delay", s.cfg.RetryDelay,
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.cfg.RetryDelay):
			}
			if inv, ok := s.fetcher.(interface{ Invalidate(string) }); ok {
				inv.Invalidate(rawURL)
			}
		}
	}

	switch {
	case res.Skipped:
		s.metrics.IncScan("skipped")
	case res.Item != nil:
		s.metrics.IncScan("added")
		s.metrics.IncCartUpsert()
	default:
		s.metrics.IncScan("incomplete")
	}

	return res, nil
}

// scanOnce performs a single fetch + extract + upsert pass.
func (s *Scanner) scanOnce(ctx context.Context, rawURL string, render bool) (*Result, error) {
	req, err := types.NewRequest(rawURL)
	if err != nil {
		return nil, err
	}
	req.Render = render

	s.metrics.IncFetch(s.fetcher.Type())
	resp, err := s.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	p, err := page.FromResponse(resp)
	if err != nil {
		return nil, &types.ExtractError{URL: rawURL, Source: "page", Err: err}
	}

	info := s.extractor.Extract(p)
	res := &Result{Info: info}

	// Memo key prefers the extracted product URL over the address we
	// were asked to fetch: variants of the same product page share it.
	memoKey := info.ProductURL
	if memoKey == "" {
		memoKey = rawURL
	}

	s.mu.Lock()
	seen := s.lastProcessed == memoKey
	s.mu.Unlock()

	if seen {
		s.logger.Debug("already processed, skipping", "url", memoKey)
		res.Skipped = true
		return res, nil
	}

	if !cart.IsComplete(info) {
		return res, nil
	}

	item := s.cart.Upsert(ctx, info, 1)
	if item == nil {
		return res, nil
	}

	s.mu.Lock()
	s.lastProcessed = memoKey
	s.mu.Unlock()

	s.logger.Info("product added to cart",
		"id", item.ID,
		"name", item.Name,
		"price", item.Price,
		"quantity", item.Quantity,
	)

	res.Item = item
	return res, nil
}

// ResetMemo clears the last-processed memo. Call it when moving to a
// new page so the same product can be re-added after navigating away
// and back.
func (s *Scanner) ResetMemo() {
	s.mu.Lock()
	s.lastProcessed = ""
	s.mu.Unlock()
}

// LastProcessed returns the memoized URL of the last added product.
func (s *Scanner) LastProcessed() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastProcessed
}
