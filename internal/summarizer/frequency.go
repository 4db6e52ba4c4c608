package summarizer

import (
	"fmt"
	"sort"
	"strings"

	"perfume/internal/domain"
)

// FrequencySummarizer describes a catalog by its most frequent attribute values.
type FrequencySummarizer struct {
	maxPerAttribute int
}

// NewFrequencySummarizer creates a summarizer listing up to maxPerAttribute values per attribute.
func NewFrequencySummarizer(maxPerAttribute int) *FrequencySummarizer {
	if maxPerAttribute <= 0 {
		maxPerAttribute = 2
	}
	return &FrequencySummarizer{maxPerAttribute: maxPerAttribute}
}

// Summarize returns a one-line overview such as
// "3 perfumes · personality: Bold (2), Shy (1) · occasion: ...".
func (s *FrequencySummarizer) Summarize(records []domain.PerfumeRecord) string {
	parts := []string{fmt.Sprintf("%d perfumes", len(records))}
	if len(records) == 0 {
		return parts[0]
	}
	for _, a := range domain.Attributes() {
		parts = append(parts, a.String()+": "+s.top(records, a))
	}
	return strings.Join(parts, " · ")
}

func (s *FrequencySummarizer) top(records []domain.PerfumeRecord, a domain.Attribute) string {
	type pair struct {
		value string
		count int
	}
	byValue := map[string]*pair{}
	var pairs []*pair
	for _, r := range records {
		v := r.Value(a)
		p, ok := byValue[v]
		if !ok {
			p = &pair{value: v}
			byValue[v] = p
			pairs = append(pairs, p)
		}
		p.count++
	}
	// Most frequent first; ties keep catalog order
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].count > pairs[j].count })
	n := s.maxPerAttribute
	if n > len(pairs) {
		n = len(pairs)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = fmt.Sprintf("%s (%d)", pairs[i].value, pairs[i].count)
	}
	return strings.Join(out, ", ")
}
