// Package features builds the text blobs that the TF-IDF index is fit on and queried with.
// Catalog documents and queries must go through the same attribute order.
package features

import (
	"strings"

	"perfume/internal/domain"
)

// Compose joins the record's four attributes with single spaces.
func Compose(r domain.PerfumeRecord) string {
	return r.Personality + " " + r.Occasion + " " + r.DominantNotes + " " + r.Intensity
}

// ComposeAll composes every record, aligned by index.
func ComposeAll(records []domain.PerfumeRecord) []string {
	docs := make([]string, len(records))
	for i, r := range records {
		docs[i] = Compose(r)
	}
	return docs
}

// ComposeQuery repeats each attribute value weights[a] times, in composition order.
// A non-positive weight drops the attribute.
func ComposeQuery(q domain.Query, weights domain.QueryWeights) string {
	var b strings.Builder
	for _, a := range domain.Attributes() {
		for i := 0; i < weights.Of(a); i++ {
			b.WriteString(q.Value(a))
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// Segments returns the query values in composition order.
func Segments(q domain.Query) [domain.AttributeCount]string {
	var out [domain.AttributeCount]string
	for _, a := range domain.Attributes() {
		out[a] = q.Value(a)
	}
	return out
}
