// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package story

import (
	"context"

	"github.com/thepensieveindex/pensieve-api/pkg/pagination"
)

// Repository defines the persistence contract for the story corpus.
type Repository interface {

	// ListByFandom returns one page of a fandom's stories plus the total
	// count, newest publication first.
	ListByFandom(context context.Context, fandomID string, includeInactive bool, params pagination.Params) ([]*Story, int, error)

	// GetByID returns a single story with its association sets hydrated.
	GetByID(context context.Context, id string) (*Story, error)

	// ListCandidates returns every active story in the fandom passing the
	// hard filters, association sets hydrated, in one round trip. This is
	// the scorer's input; it is not paginated.
	ListCandidates(context context.Context, fandomID string, filters Filters) ([]*Story, error)

	// Create persists a story and its association rows atomically.
	Create(context context.Context, story *Story) error

	// Update overwrites a story's fields and replaces its association rows.
	Update(context context.Context, story *Story) error

	// SetActive toggles a story's soft-activation flag.
	SetActive(context context.Context, id string, active bool) error
}
