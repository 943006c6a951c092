// Copyright (c) 2026 The Pensieve Index. All rights reserved.

/*
Package story manages the indexed fanfiction corpus that discovery scores
pathways against.

Stories hold metadata and taxonomy associations, never prose. Tag and plot
block links live in join tables and are hydrated as ID sets so the relevance
scorer can intersect them without extra round trips.
*/
package story

import "time"

// # Lifecycle Enums

// Status tracks a story's publication state.
type Status string

const (
	StatusComplete   Status = "complete"
	StatusInProgress Status = "in_progress"
	StatusHiatus     Status = "hiatus"
	StatusAbandoned  Status = "abandoned"
)

// Statuses lists every valid status value for validation.
var Statuses = []string{
	string(StatusComplete),
	string(StatusInProgress),
	string(StatusHiatus),
	string(StatusAbandoned),
}

// Rating is the story's content rating.
type Rating string

const (
	RatingGeneral  Rating = "general"
	RatingTeen     Rating = "teen"
	RatingMature   Rating = "mature"
	RatingExplicit Rating = "explicit"
)

// Ratings lists every valid rating value for validation.
var Ratings = []string{
	string(RatingGeneral),
	string(RatingTeen),
	string(RatingMature),
	string(RatingExplicit),
}

// # Entity

// Story is one indexed work in a fandom's corpus.
type Story struct {
	ID           string    `json:"id"`
	FandomID     string    `json:"fandom_id"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	Summary      *string   `json:"summary,omitempty"`
	SourceURL    string    `json:"source_url"`
	WordCount    int       `json:"word_count"`
	Status       Status    `json:"status"`
	Rating       Rating    `json:"rating"`
	Language     string    `json:"language"`
	PublishedAt  time.Time `json:"published_at"`
	TagIDs       []string  `json:"tag_ids"`
	PlotBlockIDs []string  `json:"plot_block_ids"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Filters narrows a candidate query before any relevance scoring happens.
// Zero-valued fields impose no constraint.
type Filters struct {
	MinWordCount *int     `json:"min_word_count,omitempty"`
	MaxWordCount *int     `json:"max_word_count,omitempty"`
	Statuses     []string `json:"statuses,omitempty"`
	Ratings      []string `json:"ratings,omitempty"`
	Language     *string  `json:"language,omitempty"`
}

// # JSON Field Identifiers

const (
	FieldTitle     = "title"
	FieldAuthor    = "author"
	FieldSourceURL = "source_url"
	FieldWordCount = "word_count"
	FieldStatus    = "status"
	FieldRating    = "rating"
	FieldLanguage  = "language"
)
