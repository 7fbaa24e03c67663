package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywords_Deterministic(t *testing.T) {
	first := ExtractKeywords("Public Transportation", "The bus service needs improvement in our area.")
	second := ExtractKeywords("Public Transportation", "The bus service needs improvement in our area.")
	assert.Equal(t, first, second)
}

func TestExtractKeywords_FiltersStopWordsAndShortTokens(t *testing.T) {
	keywords := ExtractKeywords("Roads", "the and for with a an is are bad bus")
	for _, kw := range keywords {
		assert.Greater(t, len(kw), 3, "keyword %q is too short", kw)
		_, isStop := stopWords[kw]
		assert.False(t, isStop, "keyword %q is a stop word", kw)
	}
}

func TestExtractKeywords_StripsTrailingPunctuation(t *testing.T) {
	keywords := ExtractKeywords("Parking", "parking meters downtown broken!")
	assert.Contains(t, keywords, "broken")
	assert.NotContains(t, keywords, "broken!")
}

func TestExtractKeywords_DeduplicatesPreservingOrder(t *testing.T) {
	keywords := ExtractKeywords("Noise", "noise noise noise complaints constant noise")
	assert.Equal(t, []string{"noise", "complaints", "constant"}, keywords)
}

func TestExtractKeywords_CapsAtFive(t *testing.T) {
	keywords := ExtractKeywords("Infrastructure",
		"bridges tunnels highways sidewalks crosswalks signals lighting drainage")
	assert.Len(t, keywords, 5)
	assert.Equal(t, []string{"infrastructure", "bridges", "tunnels", "highways", "sidewalks"}, keywords)
}

func TestExtractKeywords_SubjectFallbackWhenNothingSurvives(t *testing.T) {
	keywords := ExtractKeywords("Roads", "")
	assert.Equal(t, []string{"roads"}, keywords)
}

func TestExtractKeywords_AllTokensFiltered(t *testing.T) {
	// Every comment token is either a stop word or too short.
	keywords := ExtractKeywords("Tax", "is to be a the and of")
	assert.Equal(t, []string{"tax"}, keywords)
}

func TestExtractKeywords_EmptyInput(t *testing.T) {
	keywords := ExtractKeywords("", "")
	assert.Len(t, keywords, 1)
}

func TestExtractKeywords_LowercasesInput(t *testing.T) {
	keywords := ExtractKeywords("TRAFFIC", "Downtown GRIDLOCK every morning")
	assert.Equal(t, []string{"traffic", "downtown", "gridlock", "every", "morning"}, keywords)
}
