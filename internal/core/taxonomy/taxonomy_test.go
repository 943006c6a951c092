// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package taxonomy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thepensieveindex/pensieve-api/internal/core/taxonomy"
	"github.com/thepensieveindex/pensieve-api/pkg/pointer"
)

func block(id, name string, parentID *string) *taxonomy.PlotBlock {
	return &taxonomy.PlotBlock{ID: id, Name: name, ParentID: parentID, IsActive: true}
}

/*
TestBuildForest_Nesting verifies parent and child blocks assemble into
their tree regardless of input order.
*/
func TestBuildForest_Nesting(t *testing.T) {
	blocks := []*taxonomy.PlotBlock{
		block("child", "Black Lordship", pointer.To("root")),
		block("root", "Goblin Inheritance", nil),
		block("grandchild", "Black Family Magic", pointer.To("child")),
		block("other-root", "Azkaban Escape", nil),
	}

	forest := taxonomy.BuildForest(blocks)

	require.Len(t, forest, 2)
	assert.Equal(t, "root", forest[0].ID)
	assert.Equal(t, "other-root", forest[1].ID)

	require.Len(t, forest[0].Children, 1)
	assert.Equal(t, "child", forest[0].Children[0].ID)
	require.Len(t, forest[0].Children[0].Children, 1)
	assert.Equal(t, "grandchild", forest[0].Children[0].Children[0].ID)
}

/*
TestBuildForest_OrphanPromoted verifies a block whose parent is missing
from the input still renders as a root.
*/
func TestBuildForest_OrphanPromoted(t *testing.T) {
	blocks := []*taxonomy.PlotBlock{
		block("orphan", "Black Lordship", pointer.To("deactivated-parent")),
		block("root", "Goblin Inheritance", nil),
	}

	forest := taxonomy.BuildForest(blocks)

	require.Len(t, forest, 2)
	assert.Equal(t, "orphan", forest[0].ID)
	assert.Empty(t, forest[0].Children)
}

/*
TestBuildForest_Empty verifies the degenerate input.
*/
func TestBuildForest_Empty(t *testing.T) {
	assert.Empty(t, taxonomy.BuildForest(nil))
}

/*
TestBuildForest_SiblingOrderPreserved verifies siblings keep the input
order, which storage returns sorted by name.
*/
func TestBuildForest_SiblingOrderPreserved(t *testing.T) {
	blocks := []*taxonomy.PlotBlock{
		block("root", "Goblin Inheritance", nil),
		block("a", "Black Lordship", pointer.To("root")),
		block("b", "Potter Lordship", pointer.To("root")),
	}

	forest := taxonomy.BuildForest(blocks)

	require.Len(t, forest, 1)
	require.Len(t, forest[0].Children, 2)
	assert.Equal(t, "a", forest[0].Children[0].ID)
	assert.Equal(t, "b", forest[0].Children[1].ID)
}
