// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package discovery

import (
	"strings"

	"github.com/thepensieveindex/pensieve-api/internal/core/taxonomy"
	"github.com/thepensieveindex/pensieve-api/internal/platform/constants"
)

// Analyzer derives pathway quality heuristics.
type Analyzer struct{}

// NewAnalyzer constructs an [Analyzer].
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

/*
Analyze computes completeness, novelty, and searchability for a pathway.

Description: Completeness is three equal-weighted dimensions: a genre item,
a character or ship item, and a plot-block item. All three present yields
1.0, none yields 0.0, and adding a missing dimension never lowers the score.
Novelty and searchability are bounded heuristics: novelty falls linearly as
matching stories approach [constants.NoveltyMatchHorizon], searchability
decays once pathway size passes [constants.SearchabilityCeiling].

Parameters:
  - path: *ResolvedPathway
  - matchCount: int (stories matching the full pathway; feed 0 when unknown)

Returns:
  - Analysis: All scores bounded to [0, 1]
*/
func (analyzer *Analyzer) Analyze(path *ResolvedPathway, matchCount int) Analysis {
	analysis := Analysis{
		ItemCount: len(path.Items),
	}

	// Dimension flags come from resolved categories with the raw
	// client-declared category as fallback
	for _, item := range path.Items {
		if item.Type == ItemPlotBlock {
			analysis.HasPlotElements = true
		}
	}
	for category, count := range path.Ctx.CategoryCounts {
		if count == 0 {
			continue
		}
		switch taxonomy.Category(strings.ToLower(category)) {
		case taxonomy.CategoryGenre:
			analysis.HasGenre = true
		case taxonomy.CategoryCharacter, taxonomy.CategoryShip:
			analysis.HasCharacters = true
		}
	}

	analysis.Completeness = completeness(analysis)
	analysis.NoveltyScore = novelty(len(path.Items), matchCount)
	analysis.Searchability = searchability(len(path.Items))

	return analysis
}

// completeness scores the three equal-weighted presence dimensions.
func completeness(analysis Analysis) float64 {
	score := 0.0
	if analysis.HasGenre {
		score += 1.0 / 3.0
	}
	if analysis.HasCharacters {
		score += 1.0 / 3.0
	}
	if analysis.HasPlotElements {
		score += 1.0 / 3.0
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// novelty rises as the pathway matches fewer existing stories. An empty
// pathway describes nothing, so its novelty is zero.
func novelty(itemCount, matchCount int) float64 {
	if itemCount == 0 {
		return 0.0
	}
	if matchCount >= constants.NoveltyMatchHorizon {
		return 0.0
	}
	return 1.0 - float64(matchCount)/float64(constants.NoveltyMatchHorizon)
}

// searchability stays at 1.0 up to the practical ceiling, then decays
// monotonically as over-specified pathways match ever fewer stories.
func searchability(itemCount int) float64 {
	if itemCount <= constants.SearchabilityCeiling {
		return 1.0
	}
	return float64(constants.SearchabilityCeiling) / float64(itemCount)
}
