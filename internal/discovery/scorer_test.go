// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package discovery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thepensieveindex/pensieve-api/internal/core/story"
	"github.com/thepensieveindex/pensieve-api/internal/core/taxonomy"
)

func scorerVocabulary() *testVocabulary {
	vocab := newTestVocabulary()
	vocab.addTag("angst", "Angst", taxonomy.CategoryGenre)
	vocab.addTag("harry", "Harry Potter", taxonomy.CategoryCharacter)
	vocab.addBlock("goblin", "Goblin Inheritance")
	return vocab
}

func candidate(id string, published time.Time, tagIDs, blockIDs []string) *story.Story {
	return &story.Story{
		ID:           id,
		Title:        "Story " + id,
		Author:       "author",
		PublishedAt:  published,
		TagIDs:       tagIDs,
		PlotBlockIDs: blockIDs,
		IsActive:     true,
	}
}

/*
TestScorer_SupersetOutranksSubset verifies the core ranking invariant: a
story matching everything scores 1.0 and beats partial matches.
*/
func TestScorer_SupersetOutranksSubset(t *testing.T) {
	scorer := NewScorer(1.5)
	vocab := scorerVocabulary()
	path := vocab.resolve([]PathwayItem{
		tagItem(0, "Angst"),
		tagItem(1, "Harry Potter"),
		blockItem(2, "Goblin Inheritance"),
	})

	published := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	full := candidate("full", published, []string{"angst", "harry", "extra"}, []string{"goblin"})
	partial := candidate("partial", published, []string{"angst"}, nil)

	scored, fullMatches := scorer.Score([]*story.Story{partial, full}, path)

	require.Len(t, scored, 2)
	assert.Equal(t, 1, fullMatches)
	assert.Equal(t, "full", scored[0].ID)
	assert.Equal(t, 1.0, scored[0].Relevance)
	assert.Greater(t, scored[0].Relevance, scored[1].Relevance)
}

/*
TestScorer_PlotBlockWeighting verifies a plot-block match outweighs a tag
match at the configured ratio.
*/
func TestScorer_PlotBlockWeighting(t *testing.T) {
	scorer := NewScorer(1.5)
	vocab := scorerVocabulary()
	path := vocab.resolve([]PathwayItem{
		tagItem(0, "Angst"),
		blockItem(1, "Goblin Inheritance"),
	})

	published := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	tagOnly := candidate("tag-only", published, []string{"angst"}, nil)
	blockOnly := candidate("block-only", published, nil, []string{"goblin"})

	scored, _ := scorer.Score([]*story.Story{tagOnly, blockOnly}, path)

	require.Len(t, scored, 2)
	assert.Equal(t, "block-only", scored[0].ID)
	// Total weight 2.5: tag contributes 1.0/2.5, block 1.5/2.5
	assert.InDelta(t, 1.5/2.5, scored[0].Relevance, 1e-9)
	assert.InDelta(t, 1.0/2.5, scored[1].Relevance, 1e-9)
}

/*
TestScorer_ZeroOverlapDropped verifies stories sharing nothing with the
pathway never appear in results.
*/
func TestScorer_ZeroOverlapDropped(t *testing.T) {
	scorer := NewScorer(1.5)
	vocab := scorerVocabulary()
	path := vocab.resolve([]PathwayItem{tagItem(0, "Angst")})

	published := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	unrelated := candidate("unrelated", published, []string{"fluff"}, nil)
	related := candidate("related", published, []string{"angst"}, nil)

	scored, _ := scorer.Score([]*story.Story{unrelated, related}, path)

	require.Len(t, scored, 1)
	assert.Equal(t, "related", scored[0].ID)
}

/*
TestScorer_UnresolvedItemsDiluteScore verifies unresolved pathway items
keep their weight in the denominator without ever matching.
*/
func TestScorer_UnresolvedItemsDiluteScore(t *testing.T) {
	scorer := NewScorer(1.5)
	vocab := scorerVocabulary()
	path := vocab.resolve([]PathwayItem{
		tagItem(0, "Angst"),
		tagItem(1, "Totally Unknown Tag"),
	})

	published := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	scored, fullMatches := scorer.Score([]*story.Story{
		candidate("s1", published, []string{"angst"}, nil),
	}, path)

	require.Len(t, scored, 1)
	assert.InDelta(t, 0.5, scored[0].Relevance, 1e-9)
	assert.Zero(t, fullMatches)
}

/*
TestScorer_TieBreakDeterministic verifies equal-relevance ordering:
publication recency first, then ID.
*/
func TestScorer_TieBreakDeterministic(t *testing.T) {
	scorer := NewScorer(1.5)
	vocab := scorerVocabulary()
	path := vocab.resolve([]PathwayItem{tagItem(0, "Angst")})

	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	candidates := []*story.Story{
		candidate("b-old", older, []string{"angst"}, nil),
		candidate("z-new", newer, []string{"angst"}, nil),
		candidate("a-old", older, []string{"angst"}, nil),
	}

	first, _ := scorer.Score(candidates, path)
	second, _ := scorer.Score(candidates, path)

	require.Len(t, first, 3)
	assert.Equal(t, "z-new", first[0].ID)
	assert.Equal(t, "a-old", first[1].ID)
	assert.Equal(t, "b-old", first[2].ID)
	assert.Equal(t, first, second)
}

/*
TestScorer_EmptyPathway verifies an empty pathway scores nothing instead
of dividing by zero.
*/
func TestScorer_EmptyPathway(t *testing.T) {
	scorer := NewScorer(1.5)
	path := scorerVocabulary().resolve(nil)

	published := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	scored, fullMatches := scorer.Score([]*story.Story{
		candidate("s1", published, []string{"angst"}, nil),
	}, path)

	assert.Empty(t, scored)
	assert.Zero(t, fullMatches)
}
