// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package discovery

import (
	"context"
	"strings"

	"github.com/thepensieveindex/pensieve-api/internal/core/rules"
	"github.com/thepensieveindex/pensieve-api/internal/core/taxonomy"
)

// ResolvedPathway is a pathway joined against the fandom's active taxonomy.
//
// Unresolved items stay in the pathway (they count toward size and weight)
// but carry no taxonomy identity, so they never match stories or satisfy
// presence conditions. Lookup failures degrade to "no match", they never
// fail the request.
type ResolvedPathway struct {
	Items      []PathwayItem
	Tags       map[string]*taxonomy.Tag       // keyed by resolved tag ID
	PlotBlocks map[string]*taxonomy.PlotBlock // keyed by resolved plot block ID

	// ItemTagID / ItemBlockID map pathway positions to their resolution,
	// empty string when unresolved.
	ItemTagID   []string
	ItemBlockID []string

	Unresolved int
	Ctx        *rules.EvalContext

	catalogTags   []*taxonomy.Tag
	catalogBlocks []*taxonomy.PlotBlock
}

// TagCatalog returns the full active tag list loaded during resolution,
// for completion suggestions.
func (path *ResolvedPathway) TagCatalog() []*taxonomy.Tag { return path.catalogTags }

// BlockCatalog returns the full active plot block list loaded during
// resolution.
func (path *ResolvedPathway) BlockCatalog() []*taxonomy.PlotBlock { return path.catalogBlocks }

// Resolver joins pathways against a fandom's taxonomy.
type Resolver struct {
	taxonomy *taxonomy.Service
}

// NewResolver constructs a [Resolver].
func NewResolver(taxonomySvc *taxonomy.Service) *Resolver {
	return &Resolver{taxonomy: taxonomySvc}
}

/*
Resolve loads the fandom's active taxonomy and joins the pathway against it.

Description: Items resolve by ID first, then by lowercased name. The
resulting [rules.EvalContext] indexes the pathway by every handle a rule
target might use: taxonomy IDs, lowercased names (both resolved canonical
names and raw client-supplied names), tag class IDs, and category counts.

Parameters:
  - context: context.Context
  - fandomID: string (must reference an existing active fandom)
  - items: []PathwayItem

Returns:
  - *ResolvedPathway: Joined pathway, never nil on success
  - error: Storage errors only; unknown items are not errors
*/
func (resolver *Resolver) Resolve(context context.Context, fandomID string, items []PathwayItem) (*ResolvedPathway, error) {

	// Load the fandom's active vocabulary once
	tags, err := resolver.taxonomy.ListTags(context, nil, fandomID)
	if err != nil {
		return nil, err
	}
	blocks, err := resolver.taxonomy.ListPlotBlocksFlat(context, fandomID)
	if err != nil {
		return nil, err
	}

	tagByID := make(map[string]*taxonomy.Tag, len(tags))
	tagByName := make(map[string]*taxonomy.Tag, len(tags))
	for _, tag := range tags {
		tagByID[tag.ID] = tag
		tagByName[strings.ToLower(tag.Name)] = tag
	}

	blockByID := make(map[string]*taxonomy.PlotBlock, len(blocks))
	blockByName := make(map[string]*taxonomy.PlotBlock, len(blocks))
	for _, block := range blocks {
		blockByID[block.ID] = block
		blockByName[strings.ToLower(block.Name)] = block
	}

	path := &ResolvedPathway{
		Items:         items,
		Tags:          map[string]*taxonomy.Tag{},
		PlotBlocks:    map[string]*taxonomy.PlotBlock{},
		ItemTagID:     make([]string, len(items)),
		ItemBlockID:   make([]string, len(items)),
		catalogTags:   tags,
		catalogBlocks: blocks,
		Ctx: &rules.EvalContext{
			TagIDs:         map[string]bool{},
			TagNames:       map[string]bool{},
			PlotBlockIDs:   map[string]bool{},
			PlotBlockNames: map[string]bool{},
			TagClassIDs:    map[string]bool{},
			CategoryCounts: map[string]int{},
			ItemCount:      len(items),
		},
	}

	for i, item := range items {
		name := strings.ToLower(item.Name)

		switch item.Type {

		case ItemPlotBlock:
			block := blockByID[item.ID]
			if block == nil {
				block = blockByName[name]
			}

			// Raw client names participate in rule matching regardless
			path.Ctx.PlotBlockNames[name] = true

			if block == nil {
				path.Unresolved++
				break
			}

			path.PlotBlocks[block.ID] = block
			path.ItemBlockID[i] = block.ID
			path.Ctx.PlotBlockIDs[block.ID] = true
			path.Ctx.PlotBlockNames[strings.ToLower(block.Name)] = true
			path.Ctx.CategoryCounts[strings.ToLower(string(block.Category))]++

		default: // tags, including unknown item types
			tag := tagByID[item.ID]
			if tag == nil {
				tag = tagByName[name]
			}

			path.Ctx.TagNames[name] = true
			if item.Category != "" {
				path.Ctx.CategoryCounts[strings.ToLower(item.Category)]++
			}

			if tag == nil {
				path.Unresolved++
				break
			}

			path.Tags[tag.ID] = tag
			path.ItemTagID[i] = tag.ID
			path.Ctx.TagIDs[tag.ID] = true
			path.Ctx.TagNames[strings.ToLower(tag.Name)] = true
			if item.Category == "" {
				path.Ctx.CategoryCounts[strings.ToLower(string(tag.Category))]++
			}
			if tag.TagClassID != nil {
				path.Ctx.TagClassIDs[*tag.TagClassID] = true
			}
		}
	}

	return path, nil
}
