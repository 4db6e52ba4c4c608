package catalog

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"perfume/internal/domain"
)

// Supported catalog formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatYAML = "yaml"
)

// columnAliases maps normalized header labels to record fields.
// French labels match the Classement_Parfums workbook headers.
var columnAliases = map[string]string{
	"name":             "name",
	"perfume":          "name",
	"perfume name":     "name",
	"nom du parfum":    "name",
	"personality":      "personality",
	"personnalité":     "personality",
	"occasion":         "occasion",
	"notes":            "notes",
	"dominant notes":   "notes",
	"notes dominantes": "notes",
	"intensity":        "intensity",
	"intensité":        "intensity",
}

var requiredColumns = []string{"name", "personality", "occasion", "notes", "intensity"}

// FileSource reads a catalog file in CSV, XLSX or YAML format.
type FileSource struct {
	Path string
	// Format overrides detection from the file extension.
	Format string
	// Sheet selects the XLSX sheet; the first sheet is used when empty.
	Sheet string
}

var _ domain.CatalogSource = (*FileSource)(nil)

// DetectFormat returns the catalog format implied by path's extension.
func DetectFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("cannot detect catalog format from %q", path)
}

// Load reads every record from the file. Schema violations yield a *domain.CatalogLoadError.
func (s *FileSource) Load(ctx context.Context) ([]domain.PerfumeRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	format := strings.ToLower(s.Format)
	if format == "" {
		f, err := DetectFormat(s.Path)
		if err != nil {
			return nil, &domain.CatalogLoadError{Source: s.Path, Err: err}
		}
		format = f
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, &domain.CatalogLoadError{Source: s.Path, Err: err}
	}
	switch format {
	case FormatCSV:
		return ReadCSV(s.Path, bytes.NewReader(data))
	case FormatXLSX:
		return ReadXLSX(s.Path, bytes.NewReader(data), s.Sheet)
	case FormatYAML:
		return ReadYAML(s.Path, data)
	}
	return nil, &domain.CatalogLoadError{Source: s.Path, Err: fmt.Errorf("unsupported format %q", s.Format)}
}

// Open loads records from src and builds a validated catalog.
func Open(ctx context.Context, src domain.CatalogSource) (*Catalog, error) {
	records, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	return New(records)
}

// ReadCSV parses a CSV table with a header row.
func ReadCSV(source string, r io.Reader) ([]domain.PerfumeRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	// csv.Reader skips blank lines, so keep each record's source line
	var rows [][]string
	var lines []int
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &domain.CatalogLoadError{Source: source, Err: err}
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, row)
		lines = append(lines, line)
	}
	return parseTable(source, rows, lines)
}

// ReadXLSX parses the given sheet of a workbook (first sheet when empty).
func ReadXLSX(source string, r io.Reader, sheet string) ([]domain.PerfumeRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &domain.CatalogLoadError{Source: source, Err: err}
	}
	defer func() { _ = f.Close() }()
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, &domain.CatalogLoadError{Source: source, Err: errors.New("workbook has no sheets")}
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &domain.CatalogLoadError{Source: source, Err: fmt.Errorf("read sheet %q: %w", sheet, err)}
	}
	return parseTable(source, rows, nil)
}

// ReadYAML parses a YAML list of records. Errors carry the line the offending record starts on.
func ReadYAML(source string, data []byte) ([]domain.PerfumeRecord, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &domain.CatalogLoadError{Source: source, Err: err}
	}
	if len(doc.Content) == 0 {
		return nil, &domain.CatalogLoadError{Source: source, Err: errors.New("no records")}
	}
	list := doc.Content[0]
	if list.Kind != yaml.SequenceNode {
		return nil, &domain.CatalogLoadError{Source: source, Row: list.Line, Err: errors.New("expected a list of records")}
	}
	if len(list.Content) == 0 {
		return nil, &domain.CatalogLoadError{Source: source, Err: errors.New("no records")}
	}
	records := make([]domain.PerfumeRecord, 0, len(list.Content))
	seen := make(map[string]int, len(list.Content))
	for _, item := range list.Content {
		var rec domain.PerfumeRecord
		if err := item.Decode(&rec); err != nil {
			return nil, &domain.CatalogLoadError{Source: source, Row: item.Line, Err: err}
		}
		rec = trimRecord(rec)
		if ferr := validateRecord(rec); ferr != nil {
			return nil, &domain.CatalogLoadError{Source: source, Row: item.Line, Column: ferr.column, Err: ferr}
		}
		if err := checkDuplicate(seen, rec.Name, item.Line); err != nil {
			return nil, &domain.CatalogLoadError{Source: source, Row: item.Line, Column: "name", Err: err}
		}
		records = append(records, rec)
	}
	return records, nil
}

// parseTable maps a header row plus data rows to records. lines holds the source line of each
// row; when nil, row i is on line i+1.
func parseTable(source string, rows [][]string, lines []int) ([]domain.PerfumeRecord, error) {
	if len(rows) == 0 {
		return nil, &domain.CatalogLoadError{Source: source, Err: errors.New("missing header row")}
	}
	lineOf := func(i int) int {
		if lines != nil {
			return lines[i]
		}
		return i + 1
	}
	cols := make(map[string]int, len(requiredColumns))
	for i, label := range rows[0] {
		if field, ok := columnAliases[normalizeLabel(label)]; ok {
			if _, dup := cols[field]; !dup {
				cols[field] = i
			}
		}
	}
	for _, field := range requiredColumns {
		if _, ok := cols[field]; !ok {
			return nil, &domain.CatalogLoadError{Source: source, Row: lineOf(0), Column: field, Err: errors.New("missing column")}
		}
	}

	var records []domain.PerfumeRecord
	seen := make(map[string]int, len(rows)-1)
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		line := lineOf(i + 1)
		cell := func(field string) (string, error) {
			idx := cols[field]
			if idx >= len(row) || strings.TrimSpace(row[idx]) == "" {
				return "", &domain.CatalogLoadError{Source: source, Row: line, Column: field, Err: errors.New("empty cell")}
			}
			return strings.TrimSpace(row[idx]), nil
		}
		var rec domain.PerfumeRecord
		var err error
		if rec.Name, err = cell("name"); err != nil {
			return nil, err
		}
		if rec.Personality, err = cell("personality"); err != nil {
			return nil, err
		}
		if rec.Occasion, err = cell("occasion"); err != nil {
			return nil, err
		}
		if rec.DominantNotes, err = cell("notes"); err != nil {
			return nil, err
		}
		if rec.Intensity, err = cell("intensity"); err != nil {
			return nil, err
		}
		if err := checkDuplicate(seen, rec.Name, line); err != nil {
			return nil, &domain.CatalogLoadError{Source: source, Row: line, Column: "name", Err: err}
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, &domain.CatalogLoadError{Source: source, Err: errors.New("no records")}
	}
	return records, nil
}

// checkDuplicate records name at line, failing if it was already seen.
func checkDuplicate(seen map[string]int, name string, line int) error {
	if first, dup := seen[name]; dup {
		return fmt.Errorf("duplicate perfume name %q (first seen at line %d)", name, first)
	}
	seen[name] = line
	return nil
}

func normalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), " ")
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func trimRecord(r domain.PerfumeRecord) domain.PerfumeRecord {
	r.Name = strings.TrimSpace(r.Name)
	r.Personality = strings.TrimSpace(r.Personality)
	r.Occasion = strings.TrimSpace(r.Occasion)
	r.DominantNotes = strings.TrimSpace(r.DominantNotes)
	r.Intensity = strings.TrimSpace(r.Intensity)
	return r
}
