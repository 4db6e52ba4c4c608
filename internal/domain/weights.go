package domain

import "fmt"

// Weight bounds of the search form sliders.
const (
	MinWeight     = 1
	MaxWeight     = 3
	DefaultWeight = 2
)

// QueryWeights holds one importance weight per attribute, in Attributes() order.
type QueryWeights [AttributeCount]int

// UniformWeights returns weights with every attribute set to w.
func UniformWeights(w int) QueryWeights {
	return QueryWeights{w, w, w, w}
}

// DefaultWeights returns the weights the interfaces start with.
func DefaultWeights() QueryWeights { return UniformWeights(DefaultWeight) }

// Of returns the weight for attribute a.
func (w QueryWeights) Of(a Attribute) int { return w[a] }

// Validate checks every weight lies in [lo, hi].
func (w QueryWeights) Validate(lo, hi int) error {
	for _, a := range Attributes() {
		if w[a] < lo || w[a] > hi {
			return fmt.Errorf("%w: %s weight %d outside [%d, %d]", ErrInvalidWeights, a, w[a], lo, hi)
		}
	}
	return nil
}
