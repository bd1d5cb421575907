package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	translationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asksql_translations_total",
			Help: "Total number of natural-language translation attempts.",
		},
		[]string{"provider", "outcome"},
	)
	queryDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "asksql_query_duration_seconds",
			Help:    "SQL execution latency against the sample database.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)
	queryFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "asksql_query_failures_total",
			Help: "Total number of SQL executions that returned an error.",
		},
	)
	schemaPlaceholderTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "asksql_schema_placeholder_total",
			Help: "Times schema introspection failed and the static placeholder was substituted.",
		},
	)
	chartsRenderedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asksql_charts_rendered_total",
			Help: "Total number of charts rendered, by chart kind.",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(
		translationsTotal,
		queryDurationSeconds,
		queryFailuresTotal,
		schemaPlaceholderTotal,
		chartsRenderedTotal,
	)
}

func ObserveTranslation(provider string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	translationsTotal.WithLabelValues(provider, outcome).Inc()
}

func ObserveQuery(elapsed time.Duration, err error) {
	queryDurationSeconds.Observe(elapsed.Seconds())
	if err != nil {
		queryFailuresTotal.Inc()
	}
}

func IncrementSchemaPlaceholder() {
	schemaPlaceholderTotal.Inc()
}

func IncrementChartRendered(kind string) {
	chartsRenderedTotal.WithLabelValues(kind).Inc()
}
