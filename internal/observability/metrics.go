package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"

	"stocksync/internal/logger"
)

var Registry = prometheus.NewRegistry()

var (
	FeedRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "stocksync_feed_records",
			Help: "Records parsed from the last supplier feed",
		},
	)
	CatalogIdentifiers = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stocksync_catalog_identifiers",
			Help: "Identifiers listed by the marketplace on the last run",
		},
		[]string{"marketplace", "account"},
	)
	UploadedBatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocksync_uploaded_batches_total",
			Help: "Upload requests accepted by the marketplace",
		},
		[]string{"marketplace", "kind"},
	)
	UploadedItems = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocksync_uploaded_items_total",
			Help: "Stock and price entries accepted by the marketplace",
		},
		[]string{"marketplace", "kind"},
	)
	SyncErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocksync_sync_errors_total",
			Help: "Account syncs that ended with an error, by error kind",
		},
		[]string{"marketplace", "kind"},
	)
	SyncDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stocksync_sync_duration_seconds",
			Help:    "Wall time of one account sync",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
		[]string{"marketplace"},
	)
)

func init() {
	Registry.MustRegister(FeedRecords, CatalogIdentifiers, UploadedBatches, UploadedItems, SyncErrors, SyncDuration)
}

// Start serves /metrics on port in the background. An empty port disables it.
func Start(port string) {
	if port == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: ":" + port, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.GetLogger().WithComponent("metrics").WithError(err).Error("metrics server stopped")
		}
	}()
}

// Push sends the registry to a Pushgateway, the usual sink for one-shot jobs.
func Push(url, job string) error {
	if url == "" {
		return nil
	}
	return push.New(url, job).Gatherer(Registry).Push()
}
