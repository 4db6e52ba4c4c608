package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCatalogLoad marks every CatalogLoadError.
	ErrCatalogLoad = errors.New("catalog load failed")
	// ErrEmptyCorpus is returned when the index is fit on zero documents.
	ErrEmptyCorpus = errors.New("empty corpus")
	// ErrInvalidWeights is returned when query weights fall outside the allowed range.
	ErrInvalidWeights = errors.New("invalid query weights")
)

// CatalogLoadError describes malformed or missing catalog data.
// File loaders set Row to the 1-based source line (the CSV or XLSX header is line 1, a YAML
// record reports the line it starts on). Catalogs built from in-memory records report the
// 1-based record position with Source "records". Zero means the error is not tied to a row.
type CatalogLoadError struct {
	Source string
	Row    int
	Column string
	Err    error
}

func (e *CatalogLoadError) Error() string {
	msg := "catalog " + e.Source
	if e.Row > 0 {
		msg += fmt.Sprintf(" row %d", e.Row)
	}
	if e.Column != "" {
		msg += fmt.Sprintf(" column %q", e.Column)
	}
	return msg + ": " + e.Err.Error()
}

func (e *CatalogLoadError) Unwrap() []error { return []error{ErrCatalogLoad, e.Err} }
