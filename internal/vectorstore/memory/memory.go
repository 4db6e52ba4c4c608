package memory

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/mat"

	"perfume/internal/domain"
	"perfume/internal/embedding/tfidf"
	"perfume/internal/vectorstore"
)

// Storage is a read-only in-memory vector store using brute-force cosine similarity.
// Nothing mutates it after NewStorage, so concurrent searches need no locking.
type Storage struct {
	matrix  *tfidf.Matrix
	records []domain.PerfumeRecord
}

var _ vectorstore.Storage = (*Storage)(nil)

// NewStorage pairs the fitted document matrix with its catalog rows.
func NewStorage(matrix *tfidf.Matrix, records []domain.PerfumeRecord) (*Storage, error) {
	rows, _ := matrix.Dims()
	if rows != len(records) {
		return nil, errors.New("matrix rows and records length mismatch")
	}
	own := make([]domain.PerfumeRecord, len(records))
	copy(own, records)
	return &Storage{matrix: matrix, records: own}, nil
}

// Len returns the number of stored rows.
func (s *Storage) Len() int { return len(s.records) }

// Search returns up to topK rows by descending score. Equal scores keep catalog order.
func (s *Storage) Search(vector mat.Vector, topK int) []vectorstore.Hit {
	if topK <= 0 {
		return nil
	}
	// vectors are L2-normalized, so the dot product is the cosine similarity
	scores := s.matrix.Scores(vector)
	idxs := argsortDesc(scores)
	if topK > len(idxs) {
		topK = len(idxs)
	}
	hits := make([]vectorstore.Hit, 0, topK)
	for _, j := range idxs[:topK] {
		hits = append(hits, vectorstore.Hit{Index: j, Record: s.records[j], Score: scores[j]})
	}
	return hits
}

func argsortDesc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool { return vals[idxs[a]] > vals[idxs[b]] })
	return idxs
}
