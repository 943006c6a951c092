// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thepensieveindex/pensieve-api/internal/core/taxonomy"
	"github.com/thepensieveindex/pensieve-api/internal/platform/constants"
)

func analyzerVocabulary() *testVocabulary {
	vocab := newTestVocabulary()
	vocab.addTag("angst", "Angst", taxonomy.CategoryGenre)
	vocab.addTag("harry", "Harry Potter", taxonomy.CategoryCharacter)
	vocab.addBlock("goblin", "Goblin Inheritance")
	return vocab
}

/*
TestAnalyzer_Completeness verifies the three equal-weighted dimensions.
*/
func TestAnalyzer_Completeness(t *testing.T) {
	analyzer := NewAnalyzer()
	vocab := analyzerVocabulary()

	tests := []struct {
		name     string
		items    []PathwayItem
		expected float64
	}{
		{"empty_pathway", nil, 0.0},
		{"genre_only", []PathwayItem{tagItem(0, "Angst")}, 1.0 / 3.0},
		{"genre_and_character", []PathwayItem{tagItem(0, "Angst"), tagItem(1, "Harry Potter")}, 2.0 / 3.0},
		{
			"all_three_dimensions",
			[]PathwayItem{tagItem(0, "Angst"), tagItem(1, "Harry Potter"), blockItem(2, "Goblin Inheritance")},
			1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := analyzer.Analyze(vocab.resolve(tt.items), 0)
			assert.InDelta(t, tt.expected, analysis.Completeness, 1e-9)
		})
	}
}

/*
TestAnalyzer_CompletenessMonotonic verifies adding a missing dimension
never lowers the score.
*/
func TestAnalyzer_CompletenessMonotonic(t *testing.T) {
	analyzer := NewAnalyzer()
	vocab := analyzerVocabulary()

	base := analyzer.Analyze(vocab.resolve([]PathwayItem{tagItem(0, "Angst")}), 0)
	richer := analyzer.Analyze(vocab.resolve([]PathwayItem{
		tagItem(0, "Angst"), tagItem(1, "Harry Potter"),
	}), 0)

	assert.GreaterOrEqual(t, richer.Completeness, base.Completeness)
}

/*
TestAnalyzer_Novelty verifies the linear falloff and its edges.
*/
func TestAnalyzer_Novelty(t *testing.T) {
	analyzer := NewAnalyzer()
	vocab := analyzerVocabulary()
	items := []PathwayItem{tagItem(0, "Angst")}

	tests := []struct {
		name       string
		items      []PathwayItem
		matchCount int
		expected   float64
	}{
		{"empty_pathway_zero", nil, 0, 0.0},
		{"no_matches_max_novelty", items, 0, 1.0},
		{"at_horizon_zero", items, constants.NoveltyMatchHorizon, 0.0},
		{"beyond_horizon_zero", items, constants.NoveltyMatchHorizon * 2, 0.0},
		{
			"linear_midpoint",
			items,
			constants.NoveltyMatchHorizon / 5,
			1.0 - float64(constants.NoveltyMatchHorizon/5)/float64(constants.NoveltyMatchHorizon),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := analyzer.Analyze(vocab.resolve(tt.items), tt.matchCount)
			assert.InDelta(t, tt.expected, analysis.NoveltyScore, 1e-9)
		})
	}
}

/*
TestAnalyzer_Searchability verifies the ceiling plateau and decay.
*/
func TestAnalyzer_Searchability(t *testing.T) {
	analyzer := NewAnalyzer()
	vocab := analyzerVocabulary()

	// Unresolved items still count toward searchability size
	atCeiling := make([]PathwayItem, constants.SearchabilityCeiling)
	for i := range atCeiling {
		atCeiling[i] = tagItem(i, "Unknown")
	}
	overCeiling := make([]PathwayItem, constants.SearchabilityCeiling*2)
	for i := range overCeiling {
		overCeiling[i] = tagItem(i, "Unknown")
	}

	assert.Equal(t, 1.0, analyzer.Analyze(vocab.resolve(nil), 0).Searchability)
	assert.Equal(t, 1.0, analyzer.Analyze(vocab.resolve(atCeiling), 0).Searchability)
	assert.Equal(t, 0.5, analyzer.Analyze(vocab.resolve(overCeiling), 0).Searchability)
}

/*
TestAnalyzer_BoundsInvariant verifies every score stays inside [0, 1] on
assorted pathway shapes.
*/
func TestAnalyzer_BoundsInvariant(t *testing.T) {
	analyzer := NewAnalyzer()
	vocab := analyzerVocabulary()

	shapes := [][]PathwayItem{
		nil,
		{tagItem(0, "Angst")},
		{tagItem(0, "Nonexistent"), blockItem(1, "Also Nonexistent")},
		{tagItem(0, "Angst"), tagItem(1, "Harry Potter"), blockItem(2, "Goblin Inheritance")},
	}

	for _, items := range shapes {
		for _, matches := range []int{0, 1, 100} {
			analysis := analyzer.Analyze(vocab.resolve(items), matches)
			for name, score := range map[string]float64{
				"completeness":  analysis.Completeness,
				"novelty":       analysis.NoveltyScore,
				"searchability": analysis.Searchability,
			} {
				assert.GreaterOrEqual(t, score, 0.0, name)
				assert.LessOrEqual(t, score, 1.0, name)
			}
		}
	}
}
