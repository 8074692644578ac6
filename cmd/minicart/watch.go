package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/minicart/minicart/internal/cart"
	"github.com/minicart/minicart/internal/extract"
	"github.com/minicart/minicart/internal/money"
	"github.com/minicart/minicart/internal/monitor"
	"github.com/minicart/minicart/internal/observability"
	"github.com/minicart/minicart/internal/scanner"
	"github.com/minicart/minicart/internal/types"
)

var watchInterval time.Duration

// watchCmd creates the "watch" subcommand.
func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [url]...",
		Short: "Re-scan pages on an interval, adding products as they appear",
		Long: `Watch repeatedly scans the given pages. A product is added to the cart
the first time a complete record shows up; later passes over the same
product are no-ops. Useful for pages that publish price or availability
late.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().BoolVar(&render, "render", false, "fetch through a headless browser so hydration runs first")
	cmd.Flags().DurationVarP(&watchInterval, "interval", "i", 30*time.Second, "rescan interval")

	return cmd
}

// runWatch executes the watch command.
func runWatch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := buildStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}
	defer store.Close()

	f, err := buildFetcher(cfg, logger, render)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	defer f.Close()

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(logger)
		if err := metrics.StartServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Warn("failed to start metrics server", "error", err)
		}
	}

	c := cart.New(store, metrics, logger)
	ex := extract.New(extract.Options{
		FullScan:   cfg.Scan.FullScan,
		MaxScripts: cfg.Scan.MaxScripts,
		MaxChars:   cfg.Scan.MaxChars,
		Metrics:    metrics,
	}, logger)
	sc := scanner.New(f, ex, c, cfg.Scanner, metrics, logger)
	tracker := monitor.NewPriceTracker(store, logger)

	// Cart changes can arrive in bursts when several watched pages
	// resolve at once; coalesce the announcements.
	announce := newAnnouncer(cfg.Scanner.Debounce, os.Stdout)
	defer announce.Stop()
	c.Subscribe(announce.Update)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down...", "signal", sig)
		cancel()
	}()

	logger.Info("watching", "urls", args, "interval", watchInterval)

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	// The scanner's memo covers one page at a time; with several watched
	// URLs we track which ones already produced a cart item ourselves.
	added := make(map[string]bool)
	scanAll := func() {
		for _, rawURL := range args {
			if added[rawURL] {
				continue
			}
			// Each page is its own navigation target.
			sc.ResetMemo()
			res, err := sc.Scan(ctx, rawURL, render)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("scan failed", "url", rawURL, "error", err)
				continue
			}
			if res.Item != nil {
				added[rawURL] = true
			}
			changes, err := tracker.Observe(ctx, rawURL, res.Info)
			if err != nil {
				logger.Warn("snapshot update failed", "url", rawURL, "error", err)
			}
			for _, ch := range changes {
				if ch.Type == monitor.ChangePrice {
					fmt.Printf("price change: %s → %s  %s\n", ch.OldValue, ch.NewValue, ch.URL)
				}
			}
		}
	}

	scanAll()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			scanAll()
		}
	}
}

// announcer prints a one-line cart summary once a burst of updates has
// settled. Subscribers fire from the scan goroutine while the debounce
// timer reads from its own, so the pending state is mutex-guarded.
type announcer struct {
	deb *scanner.Debouncer
	out io.Writer

	mu     sync.Mutex
	latest types.CartState
}

func newAnnouncer(quiet time.Duration, out io.Writer) *announcer {
	a := &announcer{out: out}
	a.deb = scanner.NewDebouncer(quiet, func() {
		a.mu.Lock()
		state := a.latest
		a.mu.Unlock()
		fmt.Fprintf(a.out, "cart: %d item(s), total %s\n", countItems(state), money.Format(cart.TotalOf(&state)))
	})
	return a
}

// Update records the newest cart state and schedules an announcement.
func (a *announcer) Update(state types.CartState) {
	a.mu.Lock()
	a.latest = state
	a.mu.Unlock()
	a.deb.Trigger()
}

func (a *announcer) Stop() {
	a.deb.Stop()
}

// countItems sums quantities across the cart.
func countItems(state types.CartState) int {
	n := 0
	for _, item := range state.Items {
		n += item.Quantity
	}
	return n
}
