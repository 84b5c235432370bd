package metrics

import (
	"time"

	"assetquotes-service/internal/application"
	"assetquotes-service/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var _ application.Metrics = (*Recorder)(nil)

// Recorder publishes ingestion and query metrics to a Prometheus registry.
type Recorder struct {
	assetsIngested  *prometheus.CounterVec
	assetsFailed    *prometheus.CounterVec
	fetchLatency    *prometheus.HistogramVec
	runs            *prometheus.CounterVec
	runLatency      prometheus.Histogram
	queries         *prometheus.CounterVec
	queryItems      prometheus.Histogram
	HTTPRequests    *prometheus.CounterVec
	HTTPRequestTime *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		assetsIngested: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetquotes_ingest_assets_total",
				Help: "Assets fetched and stored",
			},
			[]string{"symbol"},
		),
		assetsFailed: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetquotes_ingest_asset_errors_total",
				Help: "Assets that failed to fetch or store",
			},
			[]string{"symbol", "kind"},
		),
		fetchLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "assetquotes_ingest_asset_seconds",
				Help:    "Time to fetch and store one asset",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"symbol"},
		),
		runs: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetquotes_ingest_runs_total",
				Help: "Ingestion runs by outcome",
			},
			[]string{"status"},
		),
		runLatency: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "assetquotes_ingest_run_seconds",
				Help:    "Duration of one ingestion run",
				Buckets: prometheus.DefBuckets,
			}),
		queries: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetquotes_queries_total",
				Help: "Range queries by outcome",
			},
			[]string{"outcome"},
		),
		queryItems: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "assetquotes_query_items",
				Help:    "Records returned per range query",
				Buckets: prometheus.ExponentialBuckets(1, 4, 6),
			}),
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "api_requests_total",
				Help: "Total API requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestTime: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "api_request_duration_seconds",
				Help:    "API request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

func (r *Recorder) AssetIngested(symbol domain.Symbol, took time.Duration) {
	r.assetsIngested.WithLabelValues(string(symbol)).Inc()
	r.fetchLatency.WithLabelValues(string(symbol)).Observe(took.Seconds())
}

func (r *Recorder) AssetFailed(symbol domain.Symbol, kind application.Kind) {
	r.assetsFailed.WithLabelValues(string(symbol), string(kind)).Inc()
}

func (r *Recorder) RunFinished(status domain.IngestionStatus, took time.Duration) {
	r.runs.WithLabelValues(string(status)).Inc()
	r.runLatency.Observe(took.Seconds())
}

func (r *Recorder) QueryServed(count int, err error) {
	if err != nil {
		r.queries.WithLabelValues(string(application.KindOf(err))).Inc()
		return
	}
	r.queries.WithLabelValues("ok").Inc()
	r.queryItems.Observe(float64(count))
}
