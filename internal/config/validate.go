package config

import (
	"fmt"
	"net/url"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Fetcher.RequestTimeout <= 0 {
		return fmt.Errorf("fetcher.request_timeout must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0, got %d", cfg.Fetcher.MaxRedirects)
	}
	if cfg.Fetcher.MaxBodySize < 0 {
		return fmt.Errorf("fetcher.max_body_size must be >= 0, got %d", cfg.Fetcher.MaxBodySize)
	}
	if cfg.Fetcher.CacheSize < 0 {
		return fmt.Errorf("fetcher.cache_size must be >= 0, got %d", cfg.Fetcher.CacheSize)
	}

	if cfg.Scan.MaxScripts < 1 {
		return fmt.Errorf("scan.max_scripts must be >= 1, got %d", cfg.Scan.MaxScripts)
	}
	if cfg.Scan.MaxChars < 1 {
		return fmt.Errorf("scan.max_chars must be >= 1, got %d", cfg.Scan.MaxChars)
	}

	if cfg.Scanner.MaxAttempts < 0 {
		return fmt.Errorf("scanner.max_attempts must be >= 0, got %d", cfg.Scanner.MaxAttempts)
	}
	if cfg.Scanner.RetryDelay < 0 {
		return fmt.Errorf("scanner.retry_delay must be >= 0")
	}

	switch cfg.Cart.Backend {
	case "file", "memory":
	case "mongodb":
		if cfg.Cart.MongoURI == "" {
			return fmt.Errorf("cart.mongo_uri is required for the mongodb backend")
		}
		if _, err := url.Parse(cfg.Cart.MongoURI); err != nil {
			return fmt.Errorf("cart.mongo_uri is invalid: %w", err)
		}
	default:
		return fmt.Errorf("cart.backend must be file, memory, or mongodb, got %q", cfg.Cart.Backend)
	}
	if cfg.Cart.Backend == "file" && cfg.Cart.Dir == "" {
		return fmt.Errorf("cart.dir is required for the file backend")
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", cfg.Logging.Format)
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port < 1 || cfg.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port must be 1-65535, got %d", cfg.Metrics.Port)
		}
		if cfg.Metrics.Path == "" {
			return fmt.Errorf("metrics.path is required when metrics are enabled")
		}
	}

	return nil
}
