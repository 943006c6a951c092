// Copyright (c) 2026 The Pensieve Index. All rights reserved.

/*
Package taxonomy manages the per-fandom vocabulary that pathways are built
from: tags, tag classes, and hierarchical plot blocks.

# Structure

  - Tags are flat labels grouped into categories (genre, character, ship, ...).
  - Tag classes group tags that share validation constraints, e.g. a
    "harry-shipping" class whose members are mutually exclusive.
  - Plot blocks form a forest. Each tree describes one storyline concept and
    its refinements (e.g. Goblin Inheritance -> Black Lordship -> ...).

All entities are soft-deactivated, never deleted, so existing stories keep
their associations.
*/
package taxonomy

import "time"

// # Tag Categories

// Category classifies a tag or plot block for analysis purposes.
type Category string

const (
	CategoryGenre     Category = "genre"
	CategoryCharacter Category = "character"
	CategoryShip      Category = "ship"
	CategoryTrope     Category = "trope"
	CategoryWarning   Category = "warning"
	CategorySetting   Category = "setting"
	CategoryOther     Category = "other"
)

// Categories lists every valid category value for validation.
var Categories = []string{
	string(CategoryGenre),
	string(CategoryCharacter),
	string(CategoryShip),
	string(CategoryTrope),
	string(CategoryWarning),
	string(CategorySetting),
	string(CategoryOther),
}

// IsValid reports whether the category is a known value.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if string(c) == known {
			return true
		}
	}
	return false
}

// # Entities

// Tag is a flat descriptive label scoped to a single fandom.
type Tag struct {
	ID           string    `json:"id"`
	FandomID     string    `json:"fandom_id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  *string   `json:"description,omitempty"`
	Category     Category  `json:"category"`
	TagClassID   *string   `json:"tag_class_id,omitempty"`
	RequiresTags []string  `json:"requires_tags,omitempty"`
	EnhancesTags []string  `json:"enhances_tags,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ClassConstraint is the validation payload attached to a tag class.
//
// A zero-value constraint imposes nothing. InstanceLimit bounds how many
// member tags may appear in one pathway; MutualExclusion is shorthand for an
// instance limit of one. RequiredContext names tags that must accompany any
// member of the class.
type ClassConstraint struct {
	MutualExclusion bool     `json:"mutual_exclusion,omitempty"`
	InstanceLimit   *int     `json:"instance_limit,omitempty"`
	RequiredContext []string `json:"required_context,omitempty"`
}

// TagClass groups tags that share a validation constraint.
// (fandom_id, name) is unique.
type TagClass struct {
	ID          string          `json:"id"`
	FandomID    string          `json:"fandom_id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Constraint  ClassConstraint `json:"constraint"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// PlotBlock is a node in a fandom's plot-structure forest.
type PlotBlock struct {
	ID            string    `json:"id"`
	FandomID      string    `json:"fandom_id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Description   *string   `json:"description,omitempty"`
	Category      Category  `json:"category"`
	ParentID      *string   `json:"parent_id,omitempty"`
	ConflictsWith []string  `json:"conflicts_with,omitempty"`
	RequiresTags  []string  `json:"requires_tags,omitempty"`
	EnhancesTags  []string  `json:"enhances_tags,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PlotBlockNode is a plot block with its resolved children, used when
// rendering a fandom's plot trees.
type PlotBlockNode struct {
	*PlotBlock
	Children []*PlotBlockNode `json:"children,omitempty"`
}

/*
BuildForest assembles flat plot blocks into their tree structure.

Description: Nodes are attached to their parent when the parent is present in
the input. Orphans (parent missing or deactivated) are promoted to roots so a
partially deactivated tree still renders. Root and sibling order follows the
input order, which stores return sorted by name.

Parameters:
  - blocks: []*PlotBlock (flat, any order)

Returns:
  - []*PlotBlockNode: Forest roots with children populated
*/
func BuildForest(blocks []*PlotBlock) []*PlotBlockNode {

	// Index every node by ID first so child links can resolve in one pass
	nodes := make(map[string]*PlotBlockNode, len(blocks))
	for _, block := range blocks {
		nodes[block.ID] = &PlotBlockNode{PlotBlock: block}
	}

	// Attach children, promoting orphans to roots
	var roots []*PlotBlockNode
	for _, block := range blocks {
		node := nodes[block.ID]
		if block.ParentID != nil {
			if parent, ok := nodes[*block.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	return roots
}

// # JSON Field Identifiers

const (
	FieldName       = "name"
	FieldCategory   = "category"
	FieldFandomID   = "fandom_id"
	FieldTagClassID = "tag_class_id"
	FieldParentID   = "parent_id"
	FieldConstraint = "constraint"
)
