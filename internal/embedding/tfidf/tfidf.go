package tfidf

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"perfume/internal/domain"
)

// tokenPattern keeps runs of two or more letters, digits or underscores. Combining marks
// are not word characters, so decomposed accents split a token.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Option configures Fit.
type Option func(*Model)

// WithStopwords drops the given terms at fit and transform time.
func WithStopwords(words []string) Option {
	return func(m *Model) {
		for _, w := range words {
			m.stopwords[strings.ToLower(w)] = struct{}{}
		}
	}
}

// Model is a fitted TF-IDF vocabulary with smoothed IDF weights.
// It is frozen after Fit and safe for concurrent use.
type Model struct {
	vocabulary map[string]int
	terms      []string
	idf        []float64
	stopwords  map[string]struct{}
}

// Matrix holds one L2-normalized TF-IDF row per fitted document.
type Matrix struct {
	dense *mat.Dense
}

// Fit builds the vocabulary and IDF values from the corpus and returns the document matrix.
func Fit(corpus []string, opts ...Option) (*Model, *Matrix, error) {
	if len(corpus) == 0 {
		return nil, nil, fmt.Errorf("%w: fit needs at least one document", domain.ErrEmptyCorpus)
	}
	m := &Model{stopwords: make(map[string]struct{})}
	for _, opt := range opts {
		opt(m)
	}
	// Build vocabulary and document frequencies
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range m.tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	if len(terms) == 0 {
		return nil, nil, fmt.Errorf("%w: no terms found in %d documents", domain.ErrEmptyCorpus, len(corpus))
	}
	m.terms = terms
	m.vocabulary = make(map[string]int, len(terms))
	m.idf = make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		m.vocabulary[term] = i
		// Smoothed IDF
		m.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}

	dense := mat.NewDense(len(corpus), len(terms), nil)
	for i, text := range corpus {
		dense.SetRow(i, m.weights([]string{text}, nil))
	}
	return m, &Matrix{dense: dense}, nil
}

// Dimension returns the vocabulary size.
func (m *Model) Dimension() int { return len(m.terms) }

// Vocabulary returns a copy of the term to column mapping.
func (m *Model) Vocabulary() map[string]int {
	out := make(map[string]int, len(m.vocabulary))
	for k, v := range m.vocabulary {
		out[k] = v
	}
	return out
}

// IDF returns the weight of term and whether it is in the vocabulary.
func (m *Model) IDF(term string) (float64, bool) {
	idx, ok := m.vocabulary[strings.ToLower(term)]
	if !ok {
		return 0, false
	}
	return m.idf[idx], true
}

// Transform projects text into the fitted term space. Unknown terms are dropped.
func (m *Model) Transform(text string) *mat.VecDense {
	return mat.NewVecDense(len(m.terms), m.weights([]string{text}, nil))
}

// TransformWeighted projects several segments, scaling each segment's term counts by
// the matching factor before IDF weighting. Non-positive factors drop the segment.
func (m *Model) TransformWeighted(segments []string, factors []float64) *mat.VecDense {
	return mat.NewVecDense(len(m.terms), m.weights(segments, factors))
}

func (m *Model) weights(segments []string, factors []float64) []float64 {
	vec := make([]float64, len(m.terms))
	for i, seg := range segments {
		f := 1.0
		if factors != nil {
			f = factors[i]
		}
		if f <= 0 {
			continue
		}
		for _, tok := range m.tokenize(seg) {
			if idx, ok := m.vocabulary[tok]; ok {
				vec[idx] += f
			}
		}
	}
	for i := range vec {
		vec[i] *= m.idf[i]
	}
	// L2 normalize; an all-zero vector stays zero
	if norm := floats.Norm(vec, 2); norm > 0 {
		floats.Scale(1/norm, vec)
	}
	return vec
}

func (m *Model) tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(m.stopwords) == 0 {
		return raw
	}
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := m.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Dims returns the number of documents and vocabulary terms.
func (x *Matrix) Dims() (rows, cols int) { return x.dense.Dims() }

// Row returns a copy of the i-th document vector.
func (x *Matrix) Row(i int) []float64 {
	return mat.Row(nil, i, x.dense)
}

// Scores returns the dot product of every row with q. With a normalized q this is
// the cosine similarity; a zero q scores 0 everywhere.
func (x *Matrix) Scores(q mat.Vector) []float64 {
	rows, _ := x.dense.Dims()
	var out mat.VecDense
	out.MulVec(x.dense, q)
	scores := make([]float64, rows)
	for i := range scores {
		s := out.AtVec(i)
		// clamp rounding noise so scores stay within [0, 1]
		scores[i] = math.Min(1, math.Max(0, s))
	}
	return scores
}
