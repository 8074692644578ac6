package config

import (
	"os"
	"path/filepath"
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for minicart.
type Config struct {
	Fetcher Fetcher `mapstructure:"fetcher" yaml:"fetcher"`
	Scan    Scan    `mapstructure:"scan"    yaml:"scan"`
	Scanner Scanner `mapstructure:"scanner" yaml:"scanner"`
	Cart    Cart    `mapstructure:"cart"    yaml:"cart"`
	Logging Logging `mapstructure:"logging" yaml:"logging"`
	Metrics Metrics `mapstructure:"metrics" yaml:"metrics"`
}

// Fetcher controls how pages are retrieved.
type Fetcher struct {
	RequestTimeout  time.Duration `mapstructure:"request_timeout"   yaml:"request_timeout"`
	FollowRedirects bool          `mapstructure:"follow_redirects"  yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	TLSInsecure     bool          `mapstructure:"tls_insecure"      yaml:"tls_insecure"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
	CacheSize       int           `mapstructure:"cache_size"        yaml:"cache_size"`
	UserAgents      []string      `mapstructure:"user_agents"       yaml:"user_agents"`

	// Render fetches through a headless browser so client-side
	// hydration runs before the document is captured.
	Render bool `mapstructure:"render" yaml:"render"`
}

// Scan bounds a single extraction pass over a page.
type Scan struct {
	FullScan   bool `mapstructure:"full_scan"   yaml:"full_scan"`
	MaxScripts int  `mapstructure:"max_scripts" yaml:"max_scripts"`
	MaxChars   int  `mapstructure:"max_chars"   yaml:"max_chars"`
}

// Scanner controls the scan-and-upsert loop.
type Scanner struct {
	MaxAttempts int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"  yaml:"retry_delay"`
	Debounce    time.Duration `mapstructure:"debounce"     yaml:"debounce"`
}

// Cart controls cart persistence.
type Cart struct {
	// Backend selects the blob store: "file", "memory", or "mongodb".
	Backend string `mapstructure:"backend" yaml:"backend"`

	// Dir is the file backend's directory.
	Dir string `mapstructure:"dir" yaml:"dir"`

	MongoURI        string `mapstructure:"mongo_uri"        yaml:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"   yaml:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection" yaml:"mongo_collection"`
}

// Logging controls logging behavior.
type Logging struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// Metrics controls the Prometheus endpoint.
type Metrics struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    int    `mapstructure:"port"    yaml:"port"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	cartDir := ".minicart"
	if home, err := os.UserHomeDir(); err == nil {
		cartDir = filepath.Join(home, ".minicart")
	}

	return &Config{
		Fetcher: Fetcher{
			RequestTimeout:  30 * time.Second,
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    100,
			CacheSize:       32,
			UserAgents: []string{
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			},
		},
		Scan: Scan{
			FullScan:   true,
			MaxScripts: 8,
			MaxChars:   300_000,
		},
		Scanner: Scanner{
			MaxAttempts: 3,
			RetryDelay:  700 * time.Millisecond,
			Debounce:    200 * time.Millisecond,
		},
		Cart: Cart{
			Backend:         "file",
			Dir:             cartDir,
			MongoDatabase:   "minicart",
			MongoCollection: "carts",
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Metrics: Metrics{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}
