package synthesis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternExtractor(t *testing.T) {
	extractor := NewPatternExtractor()

	t.Run("extracts measurement phrases", func(t *testing.T) {
		text := "The youth unemployment rate reached 24% in 2023. Vaccination coverage remained below target."
		candidates := extractor.Extract(text, 5)
		require.NotEmpty(t, candidates)
		assert.Contains(t, candidates, "Youth Unemployment Rate")
		assert.Contains(t, candidates, "Vaccination Coverage")
	})

	t.Run("phrase never opens on a number", func(t *testing.T) {
		candidates := extractor.Extract("Surveys noted progress. 5 percent coverage was recorded.", 5)
		require.NotEmpty(t, candidates)
		assert.Contains(t, candidates, "Percent Coverage")
		for _, candidate := range candidates {
			assert.NotContains(t, candidate, "5")
		}
	})

	t.Run("empty text", func(t *testing.T) {
		assert.Nil(t, extractor.Extract("", 5))
	})

	t.Run("no matches", func(t *testing.T) {
		assert.Nil(t, extractor.Extract("Nothing measurable appears here.", 5))
	})

	t.Run("zero topK", func(t *testing.T) {
		assert.Nil(t, extractor.Extract("literacy rate", 0))
	})

	t.Run("frequency ranking", func(t *testing.T) {
		text := "Literacy rate improved. The literacy rate is tracked yearly. Poverty incidence fell."
		candidates := extractor.Extract(text, 5)
		require.GreaterOrEqual(t, len(candidates), 2)
		assert.Equal(t, "Literacy Rate", candidates[0])
	})

	t.Run("truncates to topK", func(t *testing.T) {
		text := "literacy rate. poverty incidence. gini index. water coverage. stunting prevalence. mortality ratio."
		candidates := extractor.Extract(text, 3)
		assert.Len(t, candidates, 3)
	})

	t.Run("deterministic ordering", func(t *testing.T) {
		text := "water coverage and stunting prevalence and gini index and mortality ratio"
		first := extractor.Extract(text, 4)
		for range 5 {
			assert.Equal(t, first, extractor.Extract(text, 4))
		}
	})
}

func TestNormalizePhrase(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"title case", "youth unemployment rate", "Youth Unemployment Rate"},
		{"trims leading connectives", "and the literacy rate", "Literacy Rate"},
		{"caps phrase length", "countries in the region saw a falling infant mortality rate", "Falling Infant Mortality Rate"},
		{"single word", "coverage", "Coverage"},
		{"whitespace", "  maternal mortality ratio  ", "Maternal Mortality Ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizePhrase(tt.raw))
		})
	}
}

func TestBuildIndicators(t *testing.T) {
	t.Run("attaches placeholder metadata", func(t *testing.T) {
		indicators := buildIndicators("Youth Unemployment", []string{"Youth Unemployment Rate"}, 5)
		require.Len(t, indicators, 1)
		assert.Equal(t, "Youth Unemployment Rate", indicators[0].Name)
		assert.Contains(t, indicators[0].Purpose, "youth unemployment")
		assert.Equal(t, indicatorDataSources, indicators[0].DataSources)
		assert.Equal(t, indicatorFrequency, indicators[0].Frequency)
		assert.Equal(t, indicatorSDGRelevance, indicators[0].SDGRelevance)
	})

	t.Run("numbered fallback when nothing extracted", func(t *testing.T) {
		indicators := buildIndicators("Water Access", nil, 3)
		require.Len(t, indicators, 3)
		assert.Equal(t, "Water Access Indicator 1", indicators[0].Name)
		assert.Equal(t, "Water Access Indicator 3", indicators[2].Name)
	})

	t.Run("truncates candidates to topK", func(t *testing.T) {
		candidates := []string{"A Rate", "B Ratio", "C Index", "D Coverage"}
		indicators := buildIndicators("Topic", candidates, 2)
		assert.Len(t, indicators, 2)
	})
}
