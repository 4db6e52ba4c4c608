package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Recommender Prometheus metrics.
var (
	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "perfume",
			Name:      "queries_total",
			Help:      "Total number of recommendation queries",
		},
		[]string{"mode", "outcome"}, // mode: exact|ranked, outcome: match|empty
	)

	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "perfume",
			Name:      "query_duration_seconds",
			Help:      "Recommendation query duration in seconds",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		},
		[]string{"mode"},
	)

	CatalogRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "perfume",
			Name:      "catalog_records",
			Help:      "Number of perfumes in the loaded catalog",
		},
	)

	VocabularyTerms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "perfume",
			Name:      "vocabulary_terms",
			Help:      "Number of terms in the fitted TF-IDF vocabulary",
		},
	)
)

var registerOnce sync.Once

// Register registers all recommender metrics with the default registry. Safe to call repeatedly.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(QueriesTotal, QueryDuration, CatalogRecords, VocabularyTerms)
		prometheus.MustRegister(httpRequestDuration, httpRequestsTotal)
	})
}

// Outcome labels a query result for QueriesTotal.
func Outcome(results int) string {
	if results == 0 {
		return "empty"
	}
	return "match"
}
