package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryWeightsValidate(t *testing.T) {
	tests := []struct {
		name    string
		weights QueryWeights
		wantErr bool
	}{
		{"defaults", DefaultWeights(), false},
		{"lower bound", UniformWeights(1), false},
		{"upper bound", QueryWeights{3, 1, 2, 3}, false},
		{"zero", QueryWeights{0, 2, 2, 2}, true},
		{"too large", QueryWeights{2, 2, 2, 4}, true},
		{"negative", QueryWeights{2, -1, 2, 2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.weights.Validate(MinWeight, MaxWeight)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidWeights)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestQueryMatches(t *testing.T) {
	rec := PerfumeRecord{Name: "A", Personality: "Bold", Occasion: "Evening", DominantNotes: "Woody", Intensity: "Strong"}

	assert.True(t, Query{"Bold", "Evening", "Woody", "Strong"}.Matches(rec))
	assert.False(t, Query{"bold", "Evening", "Woody", "Strong"}.Matches(rec), "matching is case-sensitive")
	assert.False(t, Query{"Bold", "Evening", "Woody", "Light"}.Matches(rec))
}

func TestValueFollowsAttributeOrder(t *testing.T) {
	rec := PerfumeRecord{Name: "A", Personality: "p", Occasion: "o", DominantNotes: "n", Intensity: "i"}
	q := Query{Personality: "p", Occasion: "o", Notes: "n", Intensity: "i"}
	want := []string{"p", "o", "n", "i"}
	for i, a := range Attributes() {
		assert.Equal(t, want[i], rec.Value(a))
		assert.Equal(t, want[i], q.Value(a))
	}
}

func TestParseAttribute(t *testing.T) {
	for _, a := range Attributes() {
		got, err := ParseAttribute(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}
	_, err := ParseAttribute("price")
	assert.Error(t, err)
}

func TestCatalogLoadError(t *testing.T) {
	cause := errors.New("empty cell")
	err := error(&CatalogLoadError{Source: "perfumes.csv", Row: 3, Column: "occasion", Err: cause})

	assert.Equal(t, `catalog perfumes.csv row 3 column "occasion": empty cell`, err.Error())
	assert.ErrorIs(t, err, ErrCatalogLoad)
	assert.ErrorIs(t, err, cause)

	var loadErr *CatalogLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, 3, loadErr.Row)
}
