// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package discovery

import (
	"fmt"
	"strings"

	"github.com/thepensieveindex/pensieve-api/internal/core/taxonomy"
)

// maxHighlights caps novelty highlights so prompts stay readable.
const maxHighlights = 5

// maxSuggestionsPerDimension caps completion suggestions per missing
// completeness dimension.
const maxSuggestionsPerDimension = 3

// PromptGenerator renders deterministic, template-based writing prompts.
type PromptGenerator struct{}

// NewPromptGenerator constructs a [PromptGenerator].
func NewPromptGenerator() *PromptGenerator {
	return &PromptGenerator{}
}

/*
Generate renders a writing prompt for the pathway.

Description: Output is purely a function of its inputs; the same pathway
against the same fandom state always renders the same text. An empty pathway
falls back to a fandom-generic prompt, so the text field is never empty.
Novelty highlights list item pairs no scored story covers together;
completion suggestions propose taxonomy entries for whichever completeness
dimensions the pathway is missing.

Parameters:
  - fandomName: string
  - path: *ResolvedPathway
  - analysis: Analysis
  - scored: []ScoredStory (the scorer's output for this pathway, may be empty)

Returns:
  - Prompt: Text always non-empty
*/
func (generator *PromptGenerator) Generate(fandomName string, path *ResolvedPathway, analysis Analysis, scored []ScoredStory) Prompt {
	prompt := Prompt{
		NoveltyHighlights:     []string{},
		CompletionSuggestions: []Suggestion{},
	}

	prompt.Text = generator.renderText(fandomName, path)
	prompt.NoveltyHighlights = generator.noveltyHighlights(path, scored)
	prompt.CompletionSuggestions = generator.completionSuggestions(path, analysis)

	return prompt
}

// renderText assembles the narrative prompt from the pathway's item names.
func (generator *PromptGenerator) renderText(fandomName string, path *ResolvedPathway) string {
	if len(path.Items) == 0 {
		return fmt.Sprintf(
			"Write a story set in the world of %s. Pick a character who rarely gets the spotlight and follow them somewhere the canon never went.",
			fandomName,
		)
	}

	// Bucket item names by their narrative role
	var genres, characters, plotElements, extras []string
	for i, item := range path.Items {
		name := item.Name
		if item.Type == ItemPlotBlock {
			if block, ok := path.PlotBlocks[path.ItemBlockID[i]]; ok {
				name = block.Name
			}
			plotElements = append(plotElements, name)
			continue
		}

		category := taxonomy.Category(strings.ToLower(item.Category))
		if tag, ok := path.Tags[path.ItemTagID[i]]; ok {
			name = tag.Name
			category = tag.Category
		}

		switch category {
		case taxonomy.CategoryGenre:
			genres = append(genres, name)
		case taxonomy.CategoryCharacter, taxonomy.CategoryShip:
			characters = append(characters, name)
		default:
			extras = append(extras, name)
		}
	}

	var b strings.Builder
	if len(genres) > 0 {
		fmt.Fprintf(&b, "Write a %s story set in the world of %s.", joinNames(genres), fandomName)
	} else {
		fmt.Fprintf(&b, "Write a story set in the world of %s.", fandomName)
	}

	if len(characters) > 0 {
		fmt.Fprintf(&b, " Center it on %s.", joinNames(characters))
	}
	if len(plotElements) > 0 {
		fmt.Fprintf(&b, " Build the plot around %s.", joinNames(plotElements))
	}
	if len(extras) > 0 {
		fmt.Fprintf(&b, " Keep %s in play throughout.", joinNames(extras))
	}

	return b.String()
}

// noveltyHighlights lists item pairs that no scored story covers together.
func (generator *PromptGenerator) noveltyHighlights(path *ResolvedPathway, scored []ScoredStory) []string {
	highlights := []string{}

	// Collect resolved items in pathway order
	type resolved struct {
		id   string
		name string
	}
	var items []resolved
	for i := range path.Items {
		if path.ItemTagID[i] != "" {
			items = append(items, resolved{id: path.ItemTagID[i], name: path.Tags[path.ItemTagID[i]].Name})
		} else if path.ItemBlockID[i] != "" {
			items = append(items, resolved{id: path.ItemBlockID[i], name: path.PlotBlocks[path.ItemBlockID[i]].Name})
		}
	}
	if len(items) < 2 {
		return highlights
	}

	// Pre-compute each story's matched set
	matchSets := make([]map[string]bool, len(scored))
	for i, s := range scored {
		matchSets[i] = toSet(s.MatchedItems)
	}

	for i := 0; i < len(items) && len(highlights) < maxHighlights; i++ {
		for j := i + 1; j < len(items) && len(highlights) < maxHighlights; j++ {
			covered := false
			for _, set := range matchSets {
				if set[items[i].id] && set[items[j].id] {
					covered = true
					break
				}
			}
			if !covered {
				highlights = append(highlights, fmt.Sprintf("%s + %s", items[i].name, items[j].name))
			}
		}
	}

	return highlights
}

// completionSuggestions proposes taxonomy entries for missing completeness
// dimensions. Catalogs arrive name-sorted from storage, so picks are stable.
func (generator *PromptGenerator) completionSuggestions(path *ResolvedPathway, analysis Analysis) []Suggestion {
	suggestions := []Suggestion{}

	if !analysis.HasGenre {
		if s, ok := suggestTags(path, "Add a genre to anchor the story's tone", taxonomy.CategoryGenre); ok {
			suggestions = append(suggestions, s)
		}
	}

	if !analysis.HasCharacters {
		if s, ok := suggestTags(path, "Add a character or ship to give the story a protagonist", taxonomy.CategoryCharacter, taxonomy.CategoryShip); ok {
			suggestions = append(suggestions, s)
		}
	}

	if !analysis.HasPlotElements {
		targets := []string{}
		for _, block := range path.BlockCatalog() {
			if block.ParentID != nil {
				continue
			}
			targets = append(targets, block.ID)
			if len(targets) == maxSuggestionsPerDimension {
				break
			}
		}
		if len(targets) > 0 {
			suggestions = append(suggestions, Suggestion{
				Message:   "Add a plot block to give the story structure",
				TargetIDs: targets,
			})
		}
	}

	return suggestions
}

// suggestTags picks catalog tags from the wanted categories, skipping ones
// already in the pathway.
func suggestTags(path *ResolvedPathway, message string, wanted ...taxonomy.Category) (Suggestion, bool) {
	targets := []string{}
	for _, tag := range path.TagCatalog() {
		if path.Ctx.TagIDs[tag.ID] {
			continue
		}
		for _, category := range wanted {
			if tag.Category == category {
				targets = append(targets, tag.ID)
				break
			}
		}
		if len(targets) == maxSuggestionsPerDimension {
			break
		}
	}

	if len(targets) == 0 {
		return Suggestion{}, false
	}
	return Suggestion{Message: message, TargetIDs: targets}, true
}

// joinNames renders a human list: "a", "a and b", "a, b, and c".
func joinNames(names []string) string {
	switch len(names) {
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
}
