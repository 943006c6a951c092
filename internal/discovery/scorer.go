// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package discovery

import (
	"sort"

	"github.com/thepensieveindex/pensieve-api/internal/core/story"
)

// Scorer computes pathway relevance over a candidate story set.
//
// # Weighting
//
// A plot-block match counts PlotBlockWeight times a tag match (1.0). The
// weight ships at 1.5 and is tunable via PLOT_BLOCK_WEIGHT: plot blocks
// describe structural story commitments, so sharing one says more about a
// story than sharing a loose tag.
type Scorer struct {
	PlotBlockWeight float64
}

// NewScorer constructs a [Scorer] with the configured plot-block weight.
func NewScorer(plotBlockWeight float64) *Scorer {
	if plotBlockWeight <= 0 {
		plotBlockWeight = 1.0
	}
	return &Scorer{PlotBlockWeight: plotBlockWeight}
}

/*
Score ranks candidate stories by weighted pathway overlap.

Description: Relevance is the matched weight divided by the pathway's total
weight, so a story whose association set is a superset of the pathway scores
1.0 and always ranks at least as high as a partial match. Unresolved pathway
items contribute their weight to the denominator but can never match,
degrading them to "no match" rather than failing. Stories with zero overlap
are dropped. Ordering is relevance descending, publication recency, then ID,
so equal inputs always produce equal output.

Parameters:
  - candidates: []*story.Story (hard-filtered candidate set)
  - path: *ResolvedPathway

Returns:
  - []ScoredStory: Sorted, zero-overlap candidates removed
  - int: Full-match count (relevance 1.0), feeds novelty
*/
func (scorer *Scorer) Score(candidates []*story.Story, path *ResolvedPathway) ([]ScoredStory, int) {

	// Pre-compute the pathway's total weight and per-item resolution
	totalWeight := 0.0
	for _, item := range path.Items {
		totalWeight += scorer.itemWeight(item)
	}
	if totalWeight == 0 {
		return []ScoredStory{}, 0
	}

	scored := make([]ScoredStory, 0, len(candidates))
	fullMatches := 0

	for _, candidate := range candidates {
		tagSet := toSet(candidate.TagIDs)
		blockSet := toSet(candidate.PlotBlockIDs)

		matchedWeight := 0.0
		var matched []string

		for i, item := range path.Items {
			switch {
			case item.Type == ItemPlotBlock && path.ItemBlockID[i] != "" && blockSet[path.ItemBlockID[i]]:
				matchedWeight += scorer.PlotBlockWeight
				matched = append(matched, path.ItemBlockID[i])
			case item.Type != ItemPlotBlock && path.ItemTagID[i] != "" && tagSet[path.ItemTagID[i]]:
				matchedWeight += 1.0
				matched = append(matched, path.ItemTagID[i])
			}
		}

		if matchedWeight == 0 {
			continue
		}

		relevance := matchedWeight / totalWeight
		if relevance >= 1.0 {
			relevance = 1.0
			fullMatches++
		}

		scored = append(scored, ScoredStory{
			ID:           candidate.ID,
			Title:        candidate.Title,
			Author:       candidate.Author,
			Summary:      candidate.Summary,
			SourceURL:    candidate.SourceURL,
			WordCount:    candidate.WordCount,
			Status:       string(candidate.Status),
			Rating:       string(candidate.Rating),
			Relevance:    relevance,
			MatchedItems: matched,
		})
	}

	// Candidates arrive newest first, so a stable sort on relevance alone
	// would suffice; the explicit tiebreak keeps the contract visible.
	byID := make(map[string]*story.Story, len(candidates))
	for _, candidate := range candidates {
		byID[candidate.ID] = candidate
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Relevance != scored[j].Relevance {
			return scored[i].Relevance > scored[j].Relevance
		}
		a, b := byID[scored[i].ID], byID[scored[j].ID]
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.After(b.PublishedAt)
		}
		return scored[i].ID < scored[j].ID
	})

	return scored, fullMatches
}

// itemWeight returns the scoring weight of one pathway item.
func (scorer *Scorer) itemWeight(item PathwayItem) float64 {
	if item.Type == ItemPlotBlock {
		return scorer.PlotBlockWeight
	}
	return 1.0
}

// toSet builds a membership set from an ID slice.
func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
