package service

import (
	"time"

	"go.uber.org/zap"

	"perfume/internal/domain"
	"perfume/internal/metrics"
)

// InstrumentedRecommender wraps a Recommender with query metrics and debug logging.
type InstrumentedRecommender struct {
	inner  domain.Recommender
	logger *zap.Logger
}

var _ domain.Recommender = (*InstrumentedRecommender)(nil)

// NewInstrumentedRecommender wraps inner. A nil logger disables logging.
func NewInstrumentedRecommender(inner domain.Recommender, logger *zap.Logger) *InstrumentedRecommender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedRecommender{inner: inner, logger: logger}
}

// Rank delegates to the inner recommender and records the query.
func (p *InstrumentedRecommender) Rank(query domain.Query, weights domain.QueryWeights) []domain.Recommendation {
	start := time.Now()
	res := p.inner.Rank(query, weights)
	duration := time.Since(start)

	best := 0.0
	if len(res) > 0 {
		best = res[0].Score
	}
	outcome := "match"
	if best == 0 {
		outcome = "empty"
	}
	metrics.QueryDuration.WithLabelValues("ranked").Observe(duration.Seconds())
	metrics.QueriesTotal.WithLabelValues("ranked", outcome).Inc()

	p.logger.Debug("Ranked query completed",
		zap.Any("query", query),
		zap.Ints("weights", weights[:]),
		zap.Int("results", len(res)),
		zap.Float64("best_score", best),
		zap.Duration("duration", duration),
	)
	return res
}

// FilterExact delegates to the inner recommender and records the query.
func (p *InstrumentedRecommender) FilterExact(query domain.Query) []domain.PerfumeRecord {
	start := time.Now()
	res := p.inner.FilterExact(query)
	duration := time.Since(start)

	metrics.QueryDuration.WithLabelValues("exact").Observe(duration.Seconds())
	metrics.QueriesTotal.WithLabelValues("exact", metrics.Outcome(len(res))).Inc()

	p.logger.Debug("Exact query completed",
		zap.Any("query", query),
		zap.Int("results", len(res)),
		zap.Duration("duration", duration),
	)
	return res
}

// Options delegates to the inner recommender.
func (p *InstrumentedRecommender) Options(a domain.Attribute) []string { return p.inner.Options(a) }

// Size delegates to the inner recommender.
func (p *InstrumentedRecommender) Size() int { return p.inner.Size() }
