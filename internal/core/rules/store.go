// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package rules

import "context"

// Repository defines the persistence contract for validation rules.
type Repository interface {

	// ListByFandom returns a fandom's rules in ascending priority order.
	// activeOnly narrows to rules the validator should evaluate.
	ListByFandom(context context.Context, fandomID string, activeOnly bool) ([]*Rule, error)

	// GetByID returns a single rule.
	GetByID(context context.Context, id string) (*Rule, error)

	// Create persists a new rule.
	Create(context context.Context, rule *Rule) error

	// Update overwrites a rule's mutable fields.
	Update(context context.Context, rule *Rule) error

	// SetActive toggles a rule's soft-activation flag.
	SetActive(context context.Context, id string, active bool) error
}
