package vectorstore

import (
	"gonum.org/v1/gonum/mat"

	"perfume/internal/domain"
)

// Hit is a catalog row with its similarity to the query.
type Hit struct {
	Index  int
	Record domain.PerfumeRecord
	Score  float64
}

// Storage holds the document vectors and supports similarity search.
type Storage interface {
	Search(vector mat.Vector, topK int) []Hit
	Len() int
}
