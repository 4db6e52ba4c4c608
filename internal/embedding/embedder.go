package embedding

import "gonum.org/v1/gonum/mat"

// Projector maps query text into a fitted, frozen term space.
// tfidf.Model is the only implementation.
type Projector interface {
	Dimension() int
	Transform(text string) *mat.VecDense
	TransformWeighted(segments []string, factors []float64) *mat.VecDense
}
