package catalog

import (
	"errors"
	"fmt"
	"strings"

	"perfume/internal/domain"
)

// Catalog is the ordered, immutable set of perfume records.
// It is safe for concurrent reads.
type Catalog struct {
	records []domain.PerfumeRecord
	options [domain.AttributeCount][]string
}

// New validates records and returns a catalog holding a private copy of them.
// Errors carry Source "records" and the 1-based record position. File sources check the
// same rules with source lines before Open calls New.
func New(records []domain.PerfumeRecord) (*Catalog, error) {
	own := make([]domain.PerfumeRecord, len(records))
	copy(own, records)
	seen := make(map[string]int, len(own))
	for i, r := range own {
		if err := validateRecord(r); err != nil {
			return nil, &domain.CatalogLoadError{Source: "records", Row: i + 1, Column: err.column, Err: err}
		}
		if first, dup := seen[r.Name]; dup {
			return nil, &domain.CatalogLoadError{
				Source: "records",
				Row:    i + 1,
				Column: "name",
				Err:    fmt.Errorf("duplicate perfume name %q (first seen at record %d)", r.Name, first),
			}
		}
		seen[r.Name] = i + 1
	}
	c := &Catalog{records: own}
	for _, a := range domain.Attributes() {
		c.options[a] = distinct(own, a)
	}
	return c, nil
}

// Len returns the number of records.
func (c *Catalog) Len() int { return len(c.records) }

// At returns the i-th record.
func (c *Catalog) At(i int) domain.PerfumeRecord { return c.records[i] }

// Records returns a copy of all records in catalog order.
func (c *Catalog) Records() []domain.PerfumeRecord {
	out := make([]domain.PerfumeRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Options returns the distinct values of an attribute in first-seen order.
func (c *Catalog) Options(a domain.Attribute) []string {
	if a < 0 || int(a) >= domain.AttributeCount {
		return nil
	}
	out := make([]string, len(c.options[a]))
	copy(out, c.options[a])
	return out
}

type fieldError struct {
	column string
}

func (e *fieldError) Error() string { return "empty value for " + e.column }

func validateRecord(r domain.PerfumeRecord) *fieldError {
	if strings.TrimSpace(r.Name) == "" {
		return &fieldError{column: "name"}
	}
	for _, a := range domain.Attributes() {
		if strings.TrimSpace(r.Value(a)) == "" {
			return &fieldError{column: a.String()}
		}
	}
	return nil
}

func distinct(records []domain.PerfumeRecord, a domain.Attribute) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		v := r.Value(a)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// IsLoadError reports whether err came from catalog validation or ingestion.
func IsLoadError(err error) bool { return errors.Is(err, domain.ErrCatalogLoad) }
