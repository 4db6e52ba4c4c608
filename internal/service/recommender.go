package service

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"perfume/internal/catalog"
	"perfume/internal/domain"
	"perfume/internal/embedding"
	"perfume/internal/embedding/tfidf"
	"perfume/internal/features"
	"perfume/internal/summarizer"
	"perfume/internal/vectorstore"
	"perfume/internal/vectorstore/memory"
)

// Weighting modes for building the query vector.
const (
	// WeightingRepeat repeats each attribute value weight times in the query text.
	WeightingRepeat = "repeat"
	// WeightingMultiply scales each attribute's term counts by its weight.
	WeightingMultiply = "multiply"
)

// DefaultTopK is the number of ranked results returned.
const DefaultTopK = 3

// Options configures NewRecommender.
type Options struct {
	TopK      int
	Weighting string
	Stopwords []string
}

// Recommender is the immutable context built once at startup: catalog, fitted model and
// document vectors. Every method is read-only and safe for concurrent use.
type Recommender struct {
	catalog   *catalog.Catalog
	projector embedding.Projector
	store     vectorstore.Storage
	topK      int
	weighting string
	summary   string
}

var _ domain.Recommender = (*Recommender)(nil)

// NewRecommender composes every catalog record, fits the TF-IDF index and freezes the result.
func NewRecommender(cat *catalog.Catalog, opts Options) (*Recommender, error) {
	if cat == nil || cat.Len() == 0 {
		return nil, fmt.Errorf("build index: %w", domain.ErrEmptyCorpus)
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	switch opts.Weighting {
	case "":
		opts.Weighting = WeightingRepeat
	case WeightingRepeat, WeightingMultiply:
	default:
		return nil, fmt.Errorf("unknown weighting mode %q", opts.Weighting)
	}

	records := cat.Records()
	model, matrix, err := tfidf.Fit(features.ComposeAll(records), tfidf.WithStopwords(opts.Stopwords))
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	store, err := memory.NewStorage(matrix, records)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	return &Recommender{
		catalog:   cat,
		projector: model,
		store:     store,
		topK:      opts.TopK,
		weighting: opts.Weighting,
		summary:   summarizer.NewFrequencySummarizer(2).Summarize(records),
	}, nil
}

// Rank scores the query against every catalog record and returns the best matches by
// descending similarity. Equal scores keep catalog order. Values unseen at fit time
// contribute nothing; a query with no known terms scores 0 everywhere.
func (r *Recommender) Rank(query domain.Query, weights domain.QueryWeights) []domain.Recommendation {
	hits := r.store.Search(r.queryVector(query, weights), r.topK)
	out := make([]domain.Recommendation, len(hits))
	for i, h := range hits {
		out[i] = domain.Recommendation{Name: h.Record.Name, Score: h.Score}
	}
	return out
}

// FilterExact returns every record whose four attributes equal the query, in catalog order.
func (r *Recommender) FilterExact(query domain.Query) []domain.PerfumeRecord {
	out := []domain.PerfumeRecord{}
	for i := 0; i < r.catalog.Len(); i++ {
		if rec := r.catalog.At(i); query.Matches(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// FilterExactLimit is FilterExact truncated to at most n records.
func (r *Recommender) FilterExactLimit(query domain.Query, n int) []domain.PerfumeRecord {
	out := r.FilterExact(query)
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Options returns the selectable values of an attribute.
func (r *Recommender) Options(a domain.Attribute) []string { return r.catalog.Options(a) }

// Size returns the catalog size.
func (r *Recommender) Size() int { return r.catalog.Len() }

// Records returns a copy of the catalog.
func (r *Recommender) Records() []domain.PerfumeRecord { return r.catalog.Records() }

// Dimension returns the vocabulary size of the fitted model.
func (r *Recommender) Dimension() int { return r.projector.Dimension() }

// Weighting returns the configured weighting mode.
func (r *Recommender) Weighting() string { return r.weighting }

// TopK returns the maximum number of ranked results.
func (r *Recommender) TopK() int { return r.topK }

// Summary returns a one-line description of the catalog.
func (r *Recommender) Summary() string { return r.summary }

func (r *Recommender) queryVector(query domain.Query, weights domain.QueryWeights) mat.Vector {
	if r.weighting == WeightingMultiply {
		segs := features.Segments(query)
		factors := make([]float64, len(segs))
		for _, a := range domain.Attributes() {
			factors[a] = float64(weights.Of(a))
		}
		return r.projector.TransformWeighted(segs[:], factors)
	}
	return r.projector.Transform(features.ComposeQuery(query, weights))
}

// IsStartupError reports whether err is one of the fatal initialization errors.
func IsStartupError(err error) bool {
	return errors.Is(err, domain.ErrCatalogLoad) || errors.Is(err, domain.ErrEmptyCorpus)
}
