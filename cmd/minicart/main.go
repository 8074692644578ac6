package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/minicart/minicart/internal/cart"
	"github.com/minicart/minicart/internal/config"
	"github.com/minicart/minicart/internal/extract"
	"github.com/minicart/minicart/internal/fetcher"
	"github.com/minicart/minicart/internal/observability"
	"github.com/minicart/minicart/internal/page"
	"github.com/minicart/minicart/internal/scanner"
	"github.com/minicart/minicart/internal/storage"
	"github.com/minicart/minicart/internal/types"
)

var (
	cfgFile string
	verbose bool
	render  bool
	backend string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "minicart",
		Short: "minicart — product extraction and a persistent shopping cart",
		Long: `minicart reads product data out of storefront pages and keeps a durable
shopping cart across runs.

It looks for product information in three places, in priority order:
  • JSON-LD structured data (schema.org Product)
  • framework hydration state (__NEXT_DATA__, __NUXT__, Apollo, Redux)
  • the rendered DOM (Open Graph metas, price-hinted elements, text scan)

and merges the results field by field before adding the product to the
cart.`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "cart storage backend: file, memory, mongodb")

	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(detectCmd())
	rootCmd.AddCommand(cartCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// scanCmd creates the "scan" subcommand.
func scanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [url]",
		Short: "Extract a product from a page and add it to the cart",
		Args:  cobra.ExactArgs(1),
		RunE:  runScan,
	}

	cmd.Flags().BoolVar(&render, "render", false, "fetch through a headless browser so hydration runs first")

	return cmd
}

// runScan executes the scan command.
func runScan(cmd *cobra.Command, args []string) error {
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

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	res, err := sc.Scan(ctx, args[0], render)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	switch {
	case res.Skipped:
		fmt.Println("Already in cart (scanned this product last).")
	case res.Item != nil:
		fmt.Printf("Added to cart: %s\n", res.Item.Name)
		fmt.Printf("  Price:    %s %s\n", formatPrice(res.Item.Price), res.Item.Currency)
		fmt.Printf("  Quantity: %d\n", res.Item.Quantity)
		fmt.Printf("  ID:       %s\n", res.Item.ID)
	default:
		fmt.Printf("Product record incomplete after %d attempt(s); nothing added.\n", res.Attempts)
		fmt.Printf("  Name:  %q\n", res.Info.Name)
		fmt.Printf("  Price: %s\n", res.Info.PriceString())
		fmt.Println("Try --render if the page builds its content client-side.")
	}

	return nil
}

// detectCmd creates the "detect" subcommand.
func detectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect [url]",
		Short: "Report which structured-data formats a page carries",
		Args:  cobra.ExactArgs(1),
		RunE:  runDetect,
	}

	cmd.Flags().BoolVar(&render, "render", false, "fetch through a headless browser so hydration runs first")

	return cmd
}

// runDetect executes the detect command.
func runDetect(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	f, err := buildFetcher(cfg, logger, render)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	req, err := types.NewRequest(args[0])
	if err != nil {
		return err
	}
	req.Render = render

	resp, err := f.Fetch(ctx, req)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	p, err := page.FromResponse(resp)
	if err != nil {
		return fmt.Errorf("parse page: %w", err)
	}

	opts := extract.Options{
		FullScan:   cfg.Scan.FullScan,
		MaxScripts: cfg.Scan.MaxScripts,
		MaxChars:   cfg.Scan.MaxChars,
	}
	format := extract.DetectFormat(p, opts)

	fmt.Printf("URL:     %s\n", resp.FinalURL)
	fmt.Printf("Format:  %s\n", format)
	fmt.Printf("Scripts: %d inline\n", len(p.Scripts()))

	return nil
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("minicart %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			fmt.Printf("Fetcher:\n")
			fmt.Printf("  Request Timeout:  %s\n", cfg.Fetcher.RequestTimeout)
			fmt.Printf("  Follow Redirects: %v\n", cfg.Fetcher.FollowRedirects)
			fmt.Printf("  Max Body Size:    %d bytes\n", cfg.Fetcher.MaxBodySize)
			fmt.Printf("  Page Cache:       %d entries\n", cfg.Fetcher.CacheSize)
			fmt.Printf("  User Agents:      %d configured\n", len(cfg.Fetcher.UserAgents))
			fmt.Printf("\nScan:\n")
			fmt.Printf("  Full Scan:        %v\n", cfg.Scan.FullScan)
			fmt.Printf("  Max Scripts:      %d\n", cfg.Scan.MaxScripts)
			fmt.Printf("  Max Chars:        %d\n", cfg.Scan.MaxChars)
			fmt.Printf("\nScanner:\n")
			fmt.Printf("  Max Attempts:     %d\n", cfg.Scanner.MaxAttempts)
			fmt.Printf("  Retry Delay:      %s\n", cfg.Scanner.RetryDelay)
			fmt.Printf("  Debounce:         %s\n", cfg.Scanner.Debounce)
			fmt.Printf("\nCart:\n")
			fmt.Printf("  Backend:          %s\n", cfg.Cart.Backend)
			fmt.Printf("  Dir:              %s\n", cfg.Cart.Dir)
			fmt.Printf("\nMetrics:\n")
			fmt.Printf("  Enabled:          %v\n", cfg.Metrics.Enabled)
			fmt.Printf("  Port:             %d\n", cfg.Metrics.Port)
			return nil
		},
	}
	return cmd
}

// loadConfig loads configuration, applies CLI overrides, validates, and
// builds the logger from the logging section.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	if backend != "" {
		cfg.Cart.Backend = backend
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	if err := config.Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, setupLogger(cfg), nil
}

// setupLogger creates a structured logger from the logging config.
func setupLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	out := os.Stderr
	if cfg.Logging.Output == "stdout" {
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler)
}

// buildStore selects the cart storage backend.
func buildStore(cfg *config.Config, logger *slog.Logger) (storage.Store, error) {
	switch cfg.Cart.Backend {
	case "memory":
		return storage.NewMemoryStore(), nil
	case "mongodb":
		return storage.NewMongoStore(cfg.Cart.MongoURI, cfg.Cart.MongoDatabase, cfg.Cart.MongoCollection, logger)
	default:
		return storage.NewFileStore(cfg.Cart.Dir, logger)
	}
}

// buildFetcher wires the HTTP fetcher and, when rendering is requested,
// a headless browser behind a router.
func buildFetcher(cfg *config.Config, logger *slog.Logger, wantRender bool) (fetcher.Fetcher, error) {
	httpFetcher, err := fetcher.NewHTTPFetcher(cfg, logger)
	if err != nil {
		return nil, err
	}

	if !wantRender && !cfg.Fetcher.Render {
		return httpFetcher, nil
	}

	browserFetcher, err := fetcher.NewBrowserFetcher(cfg, logger)
	if err != nil {
		logger.Warn("browser unavailable, falling back to plain HTTP", "error", err)
		return httpFetcher, nil
	}

	return &fetcher.Router{HTTP: httpFetcher, Browser: browserFetcher}, nil
}

// formatPrice renders a float price with two decimals.
func formatPrice(p float64) string {
	return fmt.Sprintf("%.2f", p)
}
