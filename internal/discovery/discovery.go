// Copyright (c) 2026 The Pensieve Index. All rights reserved.

/*
Package discovery implements the pathway validation and story discovery
engine, the read-side core of the Pensieve Index.

A pathway is an ephemeral, client-built sequence of tag and plot-block
selections. Discovery resolves it against a fandom's taxonomy, validates it
against the fandom's rules, derives quality heuristics (completeness,
novelty, searchability), scores the story corpus for relevance, and renders
a writing prompt. Pathways are never persisted unless explicitly shared,
in which case they serialize into a snapshot identifier.

# Request Model

Every operation is a stateless read: load taxonomy/rules/stories, compute in
memory, respond. Concurrent requests share nothing mutable.
*/
package discovery

import "github.com/thepensieveindex/pensieve-api/internal/core/rules"

// # Pathway Input

// ItemType discriminates pathway item kinds.
type ItemType string

const (
	ItemTag       ItemType = "tag"
	ItemPlotBlock ItemType = "plot_block"
)

// PathwayItem is one client-supplied selection in a pathway.
//
// Clients may reference taxonomy entities by ID, by name, or both. Items
// that resolve to nothing still participate in analysis (they count toward
// size) but can never match a story or satisfy a rule's presence check.
type PathwayItem struct {
	ID       string   `json:"id,omitempty"`
	Type     ItemType `json:"type"`
	Name     string   `json:"name"`
	Category string   `json:"category,omitempty"`
	Position int      `json:"position"`
}

// # Validation Output

// Issue is one rule-produced finding attached to a validation result.
type Issue struct {
	RuleID    string   `json:"rule_id"`
	RuleName  string   `json:"rule_name"`
	Severity  string   `json:"severity"`
	Message   string   `json:"message"`
	TargetIDs []string `json:"target_ids,omitempty"`
}

// Suggestion proposes additions to the pathway.
type Suggestion struct {
	RuleID    string   `json:"rule_id,omitempty"`
	Message   string   `json:"message"`
	TargetIDs []string `json:"target_ids,omitempty"`
}

// BlockedCombination marks a forbidden element combination present in the
// pathway.
type BlockedCombination struct {
	RuleID    string   `json:"rule_id"`
	Message   string   `json:"message"`
	TargetIDs []string `json:"target_ids"`
}

// ValidationResult is the full outcome of rule evaluation over one pathway.
//
// IsValid is true exactly when Errors is empty; warnings and suggestions
// never block validity.
type ValidationResult struct {
	IsValid             bool                 `json:"is_valid"`
	Errors              []Issue              `json:"errors"`
	Warnings            []Issue              `json:"warnings"`
	Suggestions         []Suggestion         `json:"suggestions"`
	BlockedCombinations []BlockedCombination `json:"blocked_combinations"`
}

// # Analysis Output

// Analysis carries the derived pathway quality heuristics, all in [0, 1].
type Analysis struct {
	Completeness    float64 `json:"completeness"`
	NoveltyScore    float64 `json:"novelty_score"`
	Searchability   float64 `json:"searchability"`
	ItemCount       int     `json:"item_count"`
	HasCharacters   bool    `json:"has_characters"`
	HasGenre        bool    `json:"has_genre"`
	HasPlotElements bool    `json:"has_plot_elements"`
}

// # Search Output

// ScoredStory pairs a story with its pathway relevance.
type ScoredStory struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Author       string   `json:"author"`
	Summary      *string  `json:"summary,omitempty"`
	SourceURL    string   `json:"source_url"`
	WordCount    int      `json:"word_count"`
	Status       string   `json:"status"`
	Rating       string   `json:"rating"`
	Relevance    float64  `json:"relevance_score"`
	MatchedItems []string `json:"matched_items"`
}

// SearchResults is the scored, truncated story list.
type SearchResults struct {
	Stories []ScoredStory `json:"stories"`
	Total   int           `json:"total"`
	HasMore bool          `json:"has_more"`
}

// Prompt is the generated writing prompt with its derived highlights.
type Prompt struct {
	Text                  string       `json:"text"`
	NoveltyHighlights     []string     `json:"novelty_highlights"`
	CompletionSuggestions []Suggestion `json:"completion_suggestions"`
}

// # Response Envelopes

// Metadata describes how a discovery response was produced.
type Metadata struct {
	FandomID        string `json:"fandom_id"`
	RuleCount       int    `json:"rule_count,omitempty"`
	CandidateCount  int    `json:"candidate_count,omitempty"`
	ProcessedInMS   int64  `json:"processed_in_ms"`
	UnresolvedItems int    `json:"unresolved_items,omitempty"`
}

// ValidateResponse is the body of POST /discovery/pathways/validate.
type ValidateResponse struct {
	Validation  ValidationResult `json:"validation"`
	Analysis    Analysis         `json:"analysis"`
	Suggestions []Suggestion     `json:"suggestions"`
	Metadata    Metadata         `json:"metadata"`
}

// SearchResponse is the body of POST /discovery/search/stories.
type SearchResponse struct {
	Search   SearchPayload `json:"search"`
	Analysis Analysis      `json:"analysis"`
	Metadata Metadata      `json:"metadata"`
}

// SearchPayload groups results with the generated prompt.
type SearchPayload struct {
	Results SearchResults `json:"results"`
	Prompt  Prompt        `json:"prompt"`
}

// newValidationResult returns a result with non-nil buckets so clients
// always receive arrays, never null.
func newValidationResult() ValidationResult {
	return ValidationResult{
		IsValid:             true,
		Errors:              []Issue{},
		Warnings:            []Issue{},
		Suggestions:         []Suggestion{},
		BlockedCombinations: []BlockedCombination{},
	}
}

// severityBucket appends an issue to the matching result bucket.
func (result *ValidationResult) severityBucket(severity rules.Severity, issue Issue) {
	switch severity {
	case rules.SeverityError:
		result.Errors = append(result.Errors, issue)
	case rules.SeverityWarning:
		result.Warnings = append(result.Warnings, issue)
	default:
		// Info severity never blocks or alarms; it reads as advice
		result.Suggestions = append(result.Suggestions, Suggestion{
			RuleID:    issue.RuleID,
			Message:   issue.Message,
			TargetIDs: issue.TargetIDs,
		})
	}
}
