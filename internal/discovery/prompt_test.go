// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package discovery

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thepensieveindex/pensieve-api/internal/core/taxonomy"
	"github.com/thepensieveindex/pensieve-api/pkg/pointer"
)

func promptVocabulary() *testVocabulary {
	vocab := newTestVocabulary()
	vocab.addTag("angst", "Angst", taxonomy.CategoryGenre)
	vocab.addTag("fluff", "Fluff", taxonomy.CategoryGenre)
	vocab.addTag("harry", "Harry Potter", taxonomy.CategoryCharacter)
	vocab.addTag("hermione", "Hermione Granger", taxonomy.CategoryCharacter)
	vocab.addBlock("goblin", "Goblin Inheritance")
	vocab.addBlock("azkaban", "Azkaban Escape")
	return vocab
}

/*
TestPromptGenerator_EmptyPathway verifies the fandom-generic fallback text.
*/
func TestPromptGenerator_EmptyPathway(t *testing.T) {
	generator := NewPromptGenerator()
	path := promptVocabulary().resolve(nil)
	analysis := NewAnalyzer().Analyze(path, 0)

	prompt := generator.Generate("Harry Potter", path, analysis, nil)

	assert.NotEmpty(t, prompt.Text)
	assert.Contains(t, prompt.Text, "Harry Potter")
	assert.NotNil(t, prompt.NoveltyHighlights)
	assert.NotNil(t, prompt.CompletionSuggestions)
}

/*
TestPromptGenerator_TextBuckets verifies items render under their narrative
role with human list joining.
*/
func TestPromptGenerator_TextBuckets(t *testing.T) {
	generator := NewPromptGenerator()
	vocab := promptVocabulary()
	path := vocab.resolve([]PathwayItem{
		tagItem(0, "Angst"),
		tagItem(1, "Fluff"),
		tagItem(2, "Harry Potter"),
		blockItem(3, "Goblin Inheritance"),
	})
	analysis := NewAnalyzer().Analyze(path, 0)

	prompt := generator.Generate("Harry Potter", path, analysis, nil)

	assert.Contains(t, prompt.Text, "Angst and Fluff")
	assert.Contains(t, prompt.Text, "Center it on Harry Potter")
	assert.Contains(t, prompt.Text, "Build the plot around Goblin Inheritance")
}

/*
TestPromptGenerator_Deterministic verifies identical inputs render identical
prompts.
*/
func TestPromptGenerator_Deterministic(t *testing.T) {
	generator := NewPromptGenerator()
	vocab := promptVocabulary()
	items := []PathwayItem{tagItem(0, "Angst"), blockItem(1, "Goblin Inheritance")}

	first := generator.Generate("Harry Potter", vocab.resolve(items), NewAnalyzer().Analyze(vocab.resolve(items), 3), nil)
	second := generator.Generate("Harry Potter", vocab.resolve(items), NewAnalyzer().Analyze(vocab.resolve(items), 3), nil)

	assert.Equal(t, first, second)
}

/*
TestPromptGenerator_NoveltyHighlights verifies pairs no scored story covers
together surface as highlights, and covered pairs stay out.
*/
func TestPromptGenerator_NoveltyHighlights(t *testing.T) {
	generator := NewPromptGenerator()
	vocab := promptVocabulary()
	path := vocab.resolve([]PathwayItem{
		tagItem(0, "Angst"),
		tagItem(1, "Harry Potter"),
		blockItem(2, "Goblin Inheritance"),
	})
	analysis := NewAnalyzer().Analyze(path, 1)

	// One story covers angst+harry together; nothing covers pairs with the
	// plot block.
	scored := []ScoredStory{
		{ID: "s1", MatchedItems: []string{"angst", "harry"}},
	}

	prompt := generator.Generate("Harry Potter", path, analysis, scored)

	joined := strings.Join(prompt.NoveltyHighlights, " | ")
	assert.NotContains(t, joined, "Angst + Harry Potter")
	assert.Contains(t, joined, "Angst + Goblin Inheritance")
	assert.Contains(t, joined, "Harry Potter + Goblin Inheritance")
}

/*
TestPromptGenerator_NoveltyNeedsTwoResolvedItems verifies fewer than two
resolved items produce no highlights.
*/
func TestPromptGenerator_NoveltyNeedsTwoResolvedItems(t *testing.T) {
	generator := NewPromptGenerator()
	vocab := promptVocabulary()
	path := vocab.resolve([]PathwayItem{
		tagItem(0, "Angst"),
		tagItem(1, "Completely Unknown"),
	})

	prompt := generator.Generate("Harry Potter", path, NewAnalyzer().Analyze(path, 0), nil)

	assert.Empty(t, prompt.NoveltyHighlights)
}

/*
TestPromptGenerator_CompletionSuggestions verifies missing dimensions pull
suggestions from the catalog, skipping tags already in the pathway.
*/
func TestPromptGenerator_CompletionSuggestions(t *testing.T) {
	generator := NewPromptGenerator()
	vocab := promptVocabulary()

	// Genre present; characters and plot elements missing
	path := vocab.resolve([]PathwayItem{tagItem(0, "Angst")})
	analysis := NewAnalyzer().Analyze(path, 0)

	prompt := generator.Generate("Harry Potter", path, analysis, nil)

	require.Len(t, prompt.CompletionSuggestions, 2)

	characterSuggestion := prompt.CompletionSuggestions[0]
	assert.Contains(t, characterSuggestion.Message, "character")
	assert.ElementsMatch(t, []string{"harry", "hermione"}, characterSuggestion.TargetIDs)

	plotSuggestion := prompt.CompletionSuggestions[1]
	assert.Contains(t, plotSuggestion.Message, "plot block")
	assert.ElementsMatch(t, []string{"goblin", "azkaban"}, plotSuggestion.TargetIDs)
}

/*
TestPromptGenerator_SuggestionsSkipPathwayTags verifies a tag already in the
pathway never suggests itself for its own missing dimension.
*/
func TestPromptGenerator_SuggestionsSkipPathwayTags(t *testing.T) {
	generator := NewPromptGenerator()
	vocab := promptVocabulary()

	// Only characters present: genre suggestions must exclude nothing in the
	// pathway, character dimension is satisfied.
	path := vocab.resolve([]PathwayItem{tagItem(0, "Harry Potter")})
	analysis := NewAnalyzer().Analyze(path, 0)

	prompt := generator.Generate("Harry Potter", path, analysis, nil)

	for _, suggestion := range prompt.CompletionSuggestions {
		assert.NotContains(t, suggestion.TargetIDs, "harry")
	}
}

/*
TestPromptGenerator_RootBlocksOnly verifies child plot blocks never appear in
plot suggestions.
*/
func TestPromptGenerator_RootBlocksOnly(t *testing.T) {
	generator := NewPromptGenerator()
	vocab := promptVocabulary()
	child := vocab.addBlock("gringotts", "Gringotts Vault Trial")
	child.ParentID = pointer.To("goblin")

	path := vocab.resolve([]PathwayItem{tagItem(0, "Angst")})
	analysis := NewAnalyzer().Analyze(path, 0)

	prompt := generator.Generate("Harry Potter", path, analysis, nil)

	for _, suggestion := range prompt.CompletionSuggestions {
		assert.NotContains(t, suggestion.TargetIDs, "gringotts")
	}
}
