package fetcher

import (
	"context"

	"github.com/minicart/minicart/internal/types"
)

// Fetcher is the interface for all page fetcher implementations.
type Fetcher interface {
	// Fetch retrieves the content at the given request's URL.
	Fetch(ctx context.Context, req *types.Request) (*types.Response, error)

	// Close releases any resources held by the fetcher.
	Close() error

	// Type returns the fetcher type identifier.
	Type() string
}

// Router dispatches requests to an HTTP fetcher by default and to a
// headless-browser fetcher when the request asks for rendering. The
// browser fetcher is optional; render requests fall back to plain HTTP
// when none is configured.
type Router struct {
	HTTP    Fetcher
	Browser Fetcher
}

// Fetch dispatches the request to the appropriate fetcher.
func (r *Router) Fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	if req.Render && r.Browser != nil {
		return r.Browser.Fetch(ctx, req)
	}
	return r.HTTP.Fetch(ctx, req)
}

// Invalidate forwards cache invalidation to fetchers that support it.
func (r *Router) Invalidate(rawURL string) {
	if inv, ok := r.HTTP.(interface{ Invalidate(string) }); ok {
		inv.Invalidate(rawURL)
	}
}

// Close closes both underlying fetchers, returning the first error.
func (r *Router) Close() error {
	var firstErr error
	if r.HTTP != nil {
		firstErr = r.HTTP.Close()
	}
	if r.Browser != nil {
		if err := r.Browser.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Type returns the fetcher type identifier.
func (r *Router) Type() string {
	return "router"
}
