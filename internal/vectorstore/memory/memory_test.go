package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perfume/internal/domain"
	"perfume/internal/embedding/tfidf"
)

func records(names ...string) []domain.PerfumeRecord {
	out := make([]domain.PerfumeRecord, len(names))
	for i, n := range names {
		out[i] = domain.PerfumeRecord{Name: n}
	}
	return out
}

func TestNewStorageRowMismatch(t *testing.T) {
	_, matrix, err := tfidf.Fit([]string{"bold woody", "shy floral"})
	require.NoError(t, err)

	_, err = NewStorage(matrix, records("A"))
	assert.Error(t, err)

	s, err := NewStorage(matrix, records("A", "B"))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
}

func TestSearchOrdersByScore(t *testing.T) {
	model, matrix, err := tfidf.Fit([]string{"shy floral light", "bold woody strong", "bold citrus light"})
	require.NoError(t, err)
	s, err := NewStorage(matrix, records("B", "A", "C"))
	require.NoError(t, err)

	hits := s.Search(model.Transform("bold woody strong"), 3)
	require.Len(t, hits, 3)
	assert.Equal(t, "A", hits[0].Record.Name)
	assert.Equal(t, 1, hits[0].Index)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
	assert.Equal(t, "C", hits[1].Record.Name)
	assert.Equal(t, "B", hits[2].Record.Name)
	assert.Equal(t, 0.0, hits[2].Score)
}

func TestSearchTopKBounds(t *testing.T) {
	model, matrix, err := tfidf.Fit([]string{"bold", "shy"})
	require.NoError(t, err)
	s, err := NewStorage(matrix, records("A", "B"))
	require.NoError(t, err)

	q := model.Transform("bold")
	assert.Nil(t, s.Search(q, 0))
	assert.Nil(t, s.Search(q, -1))
	assert.Len(t, s.Search(q, 1), 1)
	assert.Len(t, s.Search(q, 10), 2)
}

func TestSearchTiesKeepCatalogOrder(t *testing.T) {
	model, matrix, err := tfidf.Fit([]string{"bold woody", "bold woody", "shy floral", "bold woody"})
	require.NoError(t, err)
	s, err := NewStorage(matrix, records("first", "second", "other", "third"))
	require.NoError(t, err)

	hits := s.Search(model.Transform("bold woody"), 3)
	require.Len(t, hits, 3)
	assert.Equal(t, []string{"first", "second", "third"},
		[]string{hits[0].Record.Name, hits[1].Record.Name, hits[2].Record.Name})

	// a query with no known terms scores every row 0, in catalog order
	hits = s.Search(model.Transform("vanilla"), 4)
	require.Len(t, hits, 4)
	for i, want := range []string{"first", "second", "other", "third"} {
		assert.Equal(t, want, hits[i].Record.Name)
		assert.Equal(t, 0.0, hits[i].Score)
	}
}
