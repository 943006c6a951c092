// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package discovery

import (
	"strings"

	"github.com/thepensieveindex/pensieve-api/internal/core/rules"
	"github.com/thepensieveindex/pensieve-api/internal/core/taxonomy"
)

// testVocabulary is a small fandom taxonomy shared by discovery tests.
type testVocabulary struct {
	tags   []*taxonomy.Tag
	blocks []*taxonomy.PlotBlock
}

func newTestVocabulary() *testVocabulary {
	return &testVocabulary{}
}

func (vocab *testVocabulary) addTag(id, name string, category taxonomy.Category) *taxonomy.Tag {
	tag := &taxonomy.Tag{ID: id, Name: name, Category: category, IsActive: true}
	vocab.tags = append(vocab.tags, tag)
	return tag
}

func (vocab *testVocabulary) addBlock(id, name string) *taxonomy.PlotBlock {
	block := &taxonomy.PlotBlock{ID: id, Name: name, Category: "plot", IsActive: true}
	vocab.blocks = append(vocab.blocks, block)
	return block
}

// resolve mimics Resolver.Resolve against the in-memory vocabulary, so the
// pipeline stages test without storage.
func (vocab *testVocabulary) resolve(items []PathwayItem) *ResolvedPathway {
	tagByID := map[string]*taxonomy.Tag{}
	tagByName := map[string]*taxonomy.Tag{}
	for _, tag := range vocab.tags {
		tagByID[tag.ID] = tag
		tagByName[strings.ToLower(tag.Name)] = tag
	}
	blockByID := map[string]*taxonomy.PlotBlock{}
	blockByName := map[string]*taxonomy.PlotBlock{}
	for _, block := range vocab.blocks {
		blockByID[block.ID] = block
		blockByName[strings.ToLower(block.Name)] = block
	}

	path := &ResolvedPathway{
		Items:         items,
		Tags:          map[string]*taxonomy.Tag{},
		PlotBlocks:    map[string]*taxonomy.PlotBlock{},
		ItemTagID:     make([]string, len(items)),
		ItemBlockID:   make([]string, len(items)),
		catalogTags:   vocab.tags,
		catalogBlocks: vocab.blocks,
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

		if item.Type == ItemPlotBlock {
			block := blockByID[item.ID]
			if block == nil {
				block = blockByName[name]
			}
			path.Ctx.PlotBlockNames[name] = true
			if block == nil {
				path.Unresolved++
				continue
			}
			path.PlotBlocks[block.ID] = block
			path.ItemBlockID[i] = block.ID
			path.Ctx.PlotBlockIDs[block.ID] = true
			path.Ctx.PlotBlockNames[strings.ToLower(block.Name)] = true
			path.Ctx.CategoryCounts[strings.ToLower(string(block.Category))]++
			continue
		}

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
			continue
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

	return path
}

// tagItem builds a tag pathway item referencing a vocabulary entry by name.
func tagItem(position int, name string) PathwayItem {
	return PathwayItem{Type: ItemTag, Name: name, Position: position}
}

// blockItem builds a plot-block pathway item referencing by name.
func blockItem(position int, name string) PathwayItem {
	return PathwayItem{Type: ItemPlotBlock, Name: name, Position: position}
}
