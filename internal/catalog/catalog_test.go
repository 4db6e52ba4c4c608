package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"perfume/internal/domain"
)

func sampleRecords() []domain.PerfumeRecord {
	return []domain.PerfumeRecord{
		{Name: "A", Personality: "Bold", Occasion: "Evening", DominantNotes: "Woody", Intensity: "Strong"},
		{Name: "B", Personality: "Shy", Occasion: "Day", DominantNotes: "Floral", Intensity: "Light"},
		{Name: "C", Personality: "Bold", Occasion: "Day", DominantNotes: "Citrus", Intensity: "Light"},
	}
}

func TestNew(t *testing.T) {
	recs := sampleRecords()
	c, err := New(recs)
	require.NoError(t, err)

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, "B", c.At(1).Name)

	recs[0].Name = "mutated"
	assert.Equal(t, "A", c.At(0).Name, "catalog must not alias the input slice")

	out := c.Records()
	out[0].Name = "mutated"
	assert.Equal(t, "A", c.At(0).Name, "Records must return a copy")
}

func TestNewRejectsInvalidRecords(t *testing.T) {
	tests := []struct {
		name   string
		mutate func([]domain.PerfumeRecord) []domain.PerfumeRecord
		row    int
		column string
	}{
		{
			name: "empty name",
			mutate: func(r []domain.PerfumeRecord) []domain.PerfumeRecord {
				r[1].Name = " "
				return r
			},
			row:    2,
			column: "name",
		},
		{
			name: "empty notes",
			mutate: func(r []domain.PerfumeRecord) []domain.PerfumeRecord {
				r[2].DominantNotes = ""
				return r
			},
			row:    3,
			column: "notes",
		},
		{
			name: "duplicate name",
			mutate: func(r []domain.PerfumeRecord) []domain.PerfumeRecord {
				r[2].Name = "A"
				return r
			},
			row:    3,
			column: "name",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.mutate(sampleRecords()))
			require.Error(t, err)
			assert.True(t, IsLoadError(err))

			var loadErr *domain.CatalogLoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, "records", loadErr.Source)
			assert.Equal(t, tt.row, loadErr.Row, "in-memory records report their position")
			assert.Equal(t, tt.column, loadErr.Column)
		})
	}
}

func TestOptionsFirstSeenOrder(t *testing.T) {
	c, err := New(sampleRecords())
	require.NoError(t, err)

	assert.Equal(t, []string{"Bold", "Shy"}, c.Options(domain.Personality))
	assert.Equal(t, []string{"Evening", "Day"}, c.Options(domain.Occasion))
	assert.Equal(t, []string{"Woody", "Floral", "Citrus"}, c.Options(domain.Notes))
	assert.Equal(t, []string{"Strong", "Light"}, c.Options(domain.Intensity))
	assert.Nil(t, c.Options(domain.Attribute(9)))
}

const englishCSV = `name,personality,occasion,dominant_notes,intensity
A,Bold,Evening,Woody,Strong
B, Shy ,Day,Floral,Light

C,Bold,Day,Citrus,Light
`

func TestReadCSV(t *testing.T) {
	recs, err := ReadCSV("test.csv", strings.NewReader(englishCSV))
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, sampleRecords(), recs)
}

func TestReadCSVFrenchHeaders(t *testing.T) {
	data := "\ufeffNom du parfum;Personnalité;Occasion;Notes dominantes;Intensité\n"
	data = strings.ReplaceAll(data, ";", ",")
	data += "Sauvage,Audacieux,Soirée,Boisé,Intense\n"

	recs, err := ReadCSV("fr.csv", strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, domain.PerfumeRecord{
		Name: "Sauvage", Personality: "Audacieux", Occasion: "Soirée", DominantNotes: "Boisé", Intensity: "Intense",
	}, recs[0])
}

func TestReadCSVColumnOrderIndependent(t *testing.T) {
	data := "intensity,name,occasion,personality,notes,extra\nStrong,A,Evening,Bold,Woody,x\n"
	recs, err := ReadCSV("test.csv", strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, sampleRecords()[0], recs[0])
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		row    int
		column string
	}{
		{"empty input", "", 0, ""},
		{"header only", "name,personality,occasion,notes,intensity\n", 0, ""},
		{"missing column", "name,personality,occasion,notes\nA,Bold,Evening,Woody\n", 1, "intensity"},
		{"empty cell", "name,personality,occasion,notes,intensity\nA,Bold,,Woody,Strong\n", 2, "occasion"},
		{"short row", "name,personality,occasion,notes,intensity\nA,Bold,Evening,Woody,Strong\nB,Shy\n", 3, "occasion"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV("bad.csv", strings.NewReader(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrCatalogLoad)

			var loadErr *domain.CatalogLoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, tt.row, loadErr.Row)
			assert.Equal(t, tt.column, loadErr.Column)
		})
	}
}

func TestReadYAML(t *testing.T) {
	data := []byte(`
- name: A
  personality: Bold
  occasion: Evening
  dominant_notes: Woody
  intensity: Strong
- name: B
  personality: Shy
  occasion: Day
  dominant_notes: Floral
  intensity: Light
`)
	recs, err := ReadYAML("test.yaml", data)
	require.NoError(t, err)
	assert.Equal(t, sampleRecords()[:2], recs)

	_, err = ReadYAML("bad.yaml", []byte("- name: A\n  personality: Bold\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCatalogLoad)

	_, err = ReadYAML("empty.yaml", []byte("[]"))
	assert.ErrorIs(t, err, domain.ErrCatalogLoad)

	_, err = ReadYAML("map.yaml", []byte("name: A\n"))
	assert.ErrorIs(t, err, domain.ErrCatalogLoad)
}

func TestReadYAMLReportsRecordLine(t *testing.T) {
	data := []byte(`- name: A
  personality: Bold
  occasion: Evening
  dominant_notes: Woody
  intensity: Strong

- name: A
  personality: Shy
  occasion: Day
  dominant_notes: Floral
  intensity: Light
`)
	_, err := ReadYAML("cat.yaml", data)
	var loadErr *domain.CatalogLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "cat.yaml", loadErr.Source)
	assert.Equal(t, 7, loadErr.Row)
	assert.Equal(t, "name", loadErr.Column)
	assert.Contains(t, err.Error(), "first seen at line 1")

	_, err = ReadYAML("cat.yaml", []byte("- name: A\n  personality: Bold\n  occasion: Day\n  dominant_notes: \"\"\n  intensity: Light\n"))
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, 1, loadErr.Row)
	assert.Equal(t, "notes", loadErr.Column)
}

func writeWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestFileSourceXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Classement_Parfums.xlsx")
	writeWorkbook(t, path, [][]interface{}{
		{"Nom du parfum", "Personnalité", "Occasion", "Notes dominantes", "Intensité"},
		{"A", "Bold", "Evening", "Woody", "Strong"},
		{"B", "Shy", "Day", "Floral", "Light"},
	})

	c, err := Open(context.Background(), &FileSource{Path: path})
	require.NoError(t, err)
	assert.Equal(t, sampleRecords()[:2], c.Records())
}

func TestFileSourceXLSXUnknownSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cat.xlsx")
	writeWorkbook(t, path, [][]interface{}{{"name"}})

	_, err := (&FileSource{Path: path, Sheet: "Missing"}).Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCatalogLoad)
}

func TestFileSourceCSV(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "perfumes.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(englishCSV), 0o644))

	c, err := Open(context.Background(), &FileSource{Path: csvPath})
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	// explicit format wins over the extension
	txtPath := filepath.Join(dir, "perfumes.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte(englishCSV), 0o644))
	c, err = Open(context.Background(), &FileSource{Path: txtPath, Format: "csv"})
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())
}

func TestFileSourceErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := (&FileSource{Path: filepath.Join(dir, "missing.csv")}).Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrCatalogLoad)

	_, err = (&FileSource{Path: filepath.Join(dir, "perfumes.txt")}).Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrCatalogLoad)

	path := filepath.Join(dir, "dup.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,personality,occasion,notes,intensity\nA,a,b,c,d\nA,e,f,g,h\n"), 0o644))
	_, err = Open(context.Background(), &FileSource{Path: path})
	assert.ErrorIs(t, err, domain.ErrCatalogLoad)

	// blank lines still count toward the reported line
	path = filepath.Join(dir, "cat.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,personality,occasion,notes,intensity\n"+
		"A,Bold,Evening,Woody,Strong\n\nB,Shy,Day,Floral,Light\nA,Bold,Day,Citrus,Light\n"), 0o644))
	_, err = Open(context.Background(), &FileSource{Path: path})
	var loadErr *domain.CatalogLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, path, loadErr.Source)
	assert.Equal(t, 5, loadErr.Row)
	assert.Equal(t, "name", loadErr.Column)
	assert.Contains(t, err.Error(), path)
	assert.Contains(t, err.Error(), `duplicate perfume name "A" (first seen at line 2)`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = (&FileSource{Path: path}).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDetectFormat(t *testing.T) {
	for path, want := range map[string]string{
		"a.csv":  FormatCSV,
		"a.XLSX": FormatXLSX,
		"a.yml":  FormatYAML,
		"a.yaml": FormatYAML,
	} {
		got, err := DetectFormat(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}
	_, err := DetectFormat("a.json")
	assert.Error(t, err)
}
