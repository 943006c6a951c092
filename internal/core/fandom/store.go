// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package fandom

import "context"

// # Fandom Data Access

// Repository defines the data access contract for fandom namespaces and
// fandom-admin grants.
type Repository interface {

	// ## Fandom Lookup

	/*
		List retrieves all fandoms, optionally including deactivated ones.

		Parameters:
		  - context: context.Context
		  - includeInactive: bool

		Returns:
		  - []*Fandom: Collection ordered by name
		  - error: Database retrieval failures
	*/
	List(context context.Context, includeInactive bool) ([]*Fandom, error)

	/*
		GetByID retrieves a fandom by its primary key.

		Returns:
		  - *Fandom: The hydrated namespace entity
		  - error: dberr.ErrNotFound if missing
	*/
	GetByID(context context.Context, id string) (*Fandom, error)

	/*
		GetBySlug retrieves a fandom by its URL identifier.

		Returns:
		  - *Fandom: The hydrated namespace entity
		  - error: dberr.ErrNotFound if missing
	*/
	GetBySlug(context context.Context, slug string) (*Fandom, error)

	// ## Fandom Mutation

	// Create persists a new fandom record.
	Create(context context.Context, f *Fandom) error

	// Update applies modifications to an existing fandom record.
	Update(context context.Context, f *Fandom) error

	// SetActive toggles the soft-activation flag.
	SetActive(context context.Context, id string, active bool) error

	// ## Admin Grants

	// HasGrant reports whether userID holds a fandom_admin grant for fandomID.
	HasGrant(context context.Context, userID, fandomID string) (bool, error)

	// AddGrant records a fandom_admin grant.
	AddGrant(context context.Context, g *Grant) error

	// RemoveGrant revokes a fandom_admin grant.
	RemoveGrant(context context.Context, userID, fandomID string) error
}
