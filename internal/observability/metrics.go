package observability

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles Prometheus collectors for scanning and cart activity.
type Metrics struct {
	Registry        *prometheus.Registry
	ScansTotal      *prometheus.CounterVec
	ScanDuration    prometheus.Histogram
	ExtractsTotal   *prometheus.CounterVec
	FetchesTotal    *prometheus.CounterVec
	RetriesTotal    prometheus.Counter
	CartItemsTotal  prometheus.Counter
	CartWriteErrors prometheus.Counter

	logger *slog.Logger
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics(logger *slog.Logger) *Metrics {
	registry := prometheus.NewRegistry()

	scans := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minicart_scans_total",
			Help: "Total page scans by outcome.",
		},
		[]string{"outcome"},
	)
	scanDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "minicart_scan_duration_seconds",
			Help:    "End-to-end scan latency including fetch and extraction.",
			Buckets: prometheus.DefBuckets,
		},
	)
	extracts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minicart_extracts_total",
			Help: "Total extraction attempts by source format.",
		},
		[]string{"format"},
	)
	fetches := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minicart_fetches_total",
			Help: "Total page fetches by fetcher type.",
		},
		[]string{"fetcher"},
	)
	retries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "minicart_scan_retries_total",
			Help: "Total scan retry attempts scheduled.",
		},
	)
	cartItems := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "minicart_cart_upserts_total",
			Help: "Total items upserted into the cart.",
		},
	)
	cartWriteErrors := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "minicart_cart_write_errors_total",
			Help: "Total failed cart persistence attempts.",
		},
	)

	registry.MustRegister(scans, scanDuration, extracts, fetches, retries, cartItems, cartWriteErrors)

	return &Metrics{
		Registry:        registry,
		ScansTotal:      scans,
		ScanDuration:    scanDuration,
		ExtractsTotal:   extracts,
		FetchesTotal:    fetches,
		RetriesTotal:    retries,
		CartItemsTotal:  cartItems,
		CartWriteErrors: cartWriteErrors,
		logger:          logger.With("component", "metrics"),
	}
}

// IncScan increments the scans counter for an outcome label.
func (m *Metrics) IncScan(outcome string) {
	if m == nil {
		return
	}
	m.ScansTotal.WithLabelValues(outcome).Inc()
}

// ObserveScan records a scan duration.
func (m *Metrics) ObserveScan(d time.Duration) {
	if m == nil {
		return
	}
	m.ScanDuration.Observe(d.Seconds())
}

// IncExtract increments the extraction counter for a format label.
func (m *Metrics) IncExtract(format string) {
	if m == nil {
		return
	}
	m.ExtractsTotal.WithLabelValues(format).Inc()
}

// IncFetch increments the fetches counter for a fetcher type.
func (m *Metrics) IncFetch(fetcher string) {
	if m == nil {
		return
	}
	m.FetchesTotal.WithLabelValues(fetcher).Inc()
}

// IncRetry increments the scan retries counter.
func (m *Metrics) IncRetry() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

// IncCartUpsert increments the cart upserts counter.
func (m *Metrics) IncCartUpsert() {
	if m == nil {
		return
	}
	m.CartItemsTotal.Inc()
}

// IncCartWriteError increments the cart write error counter.
func (m *Metrics) IncCartWriteError() {
	if m == nil {
		return
	}
	m.CartWriteErrors.Inc()
}

// StartServer starts the metrics HTTP server in the background.
func (m *Metrics) StartServer(port int, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	addr := fmt.Sprintf(":%d", port)
	m.logger.Info("metrics server starting", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			m.logger.Error("metrics server error", "error", err)
		}
	}()

	return nil
}
