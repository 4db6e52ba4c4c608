package domain

import "context"

// PerfumeRecord is a single catalog entry. Name identifies the record.
type PerfumeRecord struct {
	Name          string `json:"name" yaml:"name"`
	Personality   string `json:"personality" yaml:"personality"`
	Occasion      string `json:"occasion" yaml:"occasion"`
	DominantNotes string `json:"dominant_notes" yaml:"dominant_notes"`
	Intensity     string `json:"intensity" yaml:"intensity"`
}

// Value returns the record's value for the given attribute.
func (r PerfumeRecord) Value(a Attribute) string {
	switch a {
	case Personality:
		return r.Personality
	case Occasion:
		return r.Occasion
	case Notes:
		return r.DominantNotes
	case Intensity:
		return r.Intensity
	}
	return ""
}

// Query holds the four attribute values selected by the user.
type Query struct {
	Personality string `json:"personality" validate:"required"`
	Occasion    string `json:"occasion" validate:"required"`
	Notes       string `json:"notes" validate:"required"`
	Intensity   string `json:"intensity" validate:"required"`
}

// Value returns the query's value for the given attribute.
func (q Query) Value(a Attribute) string {
	switch a {
	case Personality:
		return q.Personality
	case Occasion:
		return q.Occasion
	case Notes:
		return q.Notes
	case Intensity:
		return q.Intensity
	}
	return ""
}

// Matches reports whether every attribute of r equals the query value.
func (q Query) Matches(r PerfumeRecord) bool {
	return r.Personality == q.Personality &&
		r.Occasion == q.Occasion &&
		r.DominantNotes == q.Notes &&
		r.Intensity == q.Intensity
}

// Recommendation is a ranked catalog entry with its similarity score.
type Recommendation struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// CatalogSource reads the raw catalog rows once at startup.
type CatalogSource interface {
	Load(ctx context.Context) ([]PerfumeRecord, error)
}

// Recommender defines the operations exposed by the application core.
type Recommender interface {
	Rank(query Query, weights QueryWeights) []Recommendation
	FilterExact(query Query) []PerfumeRecord
	Options(a Attribute) []string
	Size() int
}
