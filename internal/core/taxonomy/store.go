// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package taxonomy

import "context"

/*
Repository defines the persistence contract for the taxonomy domain.

Description: All reads are scoped to a single fandom. Deactivated entities are
returned only when includeInactive is set; discovery always reads the active
subset while admin screens see everything.
*/
type Repository interface {

	// # Tags

	// ListTags returns a fandom's tags ordered by category then name.
	ListTags(context context.Context, fandomID string, includeInactive bool) ([]*Tag, error)

	// GetTag returns a single tag by ID.
	GetTag(context context.Context, id string) (*Tag, error)

	// GetTagsByIDs returns the subset of ids that exist, in no particular order.
	GetTagsByIDs(context context.Context, ids []string) ([]*Tag, error)

	// CreateTag persists a new tag.
	CreateTag(context context.Context, tag *Tag) error

	// UpdateTag overwrites a tag's mutable fields.
	UpdateTag(context context.Context, tag *Tag) error

	// SetTagActive toggles a tag's soft-activation flag.
	SetTagActive(context context.Context, id string, active bool) error

	// # Tag Classes

	// ListTagClasses returns a fandom's tag classes ordered by name.
	ListTagClasses(context context.Context, fandomID string, includeInactive bool) ([]*TagClass, error)

	// GetTagClass returns a single tag class by ID.
	GetTagClass(context context.Context, id string) (*TagClass, error)

	// CreateTagClass persists a new tag class.
	CreateTagClass(context context.Context, class *TagClass) error

	// UpdateTagClass overwrites a tag class's mutable fields.
	UpdateTagClass(context context.Context, class *TagClass) error

	// SetTagClassActive toggles a tag class's soft-activation flag.
	SetTagClassActive(context context.Context, id string, active bool) error

	// # Plot Blocks

	// ListPlotBlocks returns a fandom's plot blocks flat, ordered by name.
	ListPlotBlocks(context context.Context, fandomID string, includeInactive bool) ([]*PlotBlock, error)

	// GetPlotBlock returns a single plot block by ID.
	GetPlotBlock(context context.Context, id string) (*PlotBlock, error)

	// CreatePlotBlock persists a new plot block.
	CreatePlotBlock(context context.Context, block *PlotBlock) error

	// UpdatePlotBlock overwrites a plot block's mutable fields.
	UpdatePlotBlock(context context.Context, block *PlotBlock) error

	// SetPlotBlockActive toggles a plot block's soft-activation flag.
	SetPlotBlockActive(context context.Context, id string, active bool) error
}
