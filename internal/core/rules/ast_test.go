// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thepensieveindex/pensieve-api/internal/core/rules"
)

// pathwayContext builds an EvalContext from tag and plot block names.
func pathwayContext(tags []string, blocks []string) *rules.EvalContext {
	ctx := &rules.EvalContext{
		TagIDs:         map[string]bool{},
		TagNames:       map[string]bool{},
		PlotBlockIDs:   map[string]bool{},
		PlotBlockNames: map[string]bool{},
		TagClassIDs:    map[string]bool{},
		CategoryCounts: map[string]int{},
	}
	for _, tag := range tags {
		ctx.TagNames[tag] = true
		ctx.ItemCount++
	}
	for _, block := range blocks {
		ctx.PlotBlockNames[block] = true
		ctx.ItemCount++
	}
	return ctx
}

func number(n float64) rules.ConditionValue {
	return rules.ConditionValue{Number: &n}
}

/*
TestProgram_SingleCondition covers the basic membership operators on a
one-condition rule.
*/
func TestProgram_SingleCondition(t *testing.T) {
	tests := []struct {
		name     string
		cond     rules.Condition
		tags     []string
		expected bool
	}{
		{
			name:     "contains_present",
			cond:     rules.Condition{Type: rules.CondHasTag, Target: "Time Travel", Operator: rules.OpContains},
			tags:     []string{"time travel"},
			expected: true,
		},
		{
			name:     "contains_absent",
			cond:     rules.Condition{Type: rules.CondHasTag, Target: "Time Travel", Operator: rules.OpContains},
			tags:     []string{"angst"},
			expected: false,
		},
		{
			name:     "not_contains_absent_satisfied",
			cond:     rules.Condition{Type: rules.CondHasTag, Target: "Time Travel", Operator: rules.OpNotContains},
			tags:     []string{"angst"},
			expected: true,
		},
		{
			name:     "not_contains_empty_pathway_satisfied",
			cond:     rules.Condition{Type: rules.CondHasTag, Target: "Time Travel", Operator: rules.OpNotContains},
			tags:     nil,
			expected: true,
		},
		{
			name:     "in_any_member_present",
			cond:     rules.Condition{Type: rules.CondHasTag, Operator: rules.OpIn, Value: rules.ConditionValue{Items: []string{"fluff", "angst"}}},
			tags:     []string{"angst"},
			expected: true,
		},
		{
			name:     "not_in_member_present",
			cond:     rules.Condition{Type: rules.CondHasTag, Operator: rules.OpNotIn, Value: rules.ConditionValue{Items: []string{"fluff", "angst"}}},
			tags:     []string{"angst"},
			expected: false,
		},
		{
			name:     "negated_contains",
			cond:     rules.Condition{Type: rules.CondHasTag, Target: "angst", Operator: rules.OpContains, IsNegated: true},
			tags:     []string{"angst"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := &rules.Rule{Conditions: []rules.Condition{tt.cond}}
			program := rules.Compile(rule)

			fired, warnings := program.Eval(pathwayContext(tt.tags, nil))
			assert.Equal(t, tt.expected, fired)
			assert.Empty(t, warnings)
		})
	}
}

/*
TestProgram_CountConditions covers item_count and has_category with the
numeric operators.
*/
func TestProgram_CountConditions(t *testing.T) {
	ctx := pathwayContext([]string{"angst", "fluff", "slow burn"}, nil)
	ctx.CategoryCounts["genre"] = 2

	tests := []struct {
		name     string
		cond     rules.Condition
		expected bool
	}{
		{
			name:     "item_count_greater_than",
			cond:     rules.Condition{Type: rules.CondItemCount, Operator: rules.OpGreaterThan, Value: number(2)},
			expected: true,
		},
		{
			name:     "item_count_less_than",
			cond:     rules.Condition{Type: rules.CondItemCount, Operator: rules.OpLessThan, Value: number(3)},
			expected: false,
		},
		{
			name:     "item_count_equals",
			cond:     rules.Condition{Type: rules.CondItemCount, Operator: rules.OpEquals, Value: number(3)},
			expected: true,
		},
		{
			name:     "category_contains",
			cond:     rules.Condition{Type: rules.CondHasCategory, Target: "genre", Operator: rules.OpContains},
			expected: true,
		},
		{
			name:     "category_not_contains_missing_category",
			cond:     rules.Condition{Type: rules.CondHasCategory, Target: "warning", Operator: rules.OpNotContains},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program := rules.Compile(&rules.Rule{Conditions: []rules.Condition{tt.cond}})
			fired, warnings := program.Eval(ctx)
			assert.Equal(t, tt.expected, fired)
			assert.Empty(t, warnings)
		})
	}
}

/*
TestProgram_GroupFolding verifies the left-to-right OR/AND fold within a
group and the AND across groups.
*/
func TestProgram_GroupFolding(t *testing.T) {
	// Group "pair": fluff OR angst. Group "setting": hogwarts (AND'ed).
	rule := &rules.Rule{Conditions: []rules.Condition{
		{Type: rules.CondHasTag, Target: "fluff", Operator: rules.OpContains, GroupID: "pair"},
		{Type: rules.CondHasTag, Target: "angst", Operator: rules.OpContains, GroupID: "pair", LogicOperator: rules.LogicOr},
		{Type: rules.CondHasTag, Target: "hogwarts", Operator: rules.OpContains, GroupID: "setting"},
	}}
	program := rules.Compile(rule)

	tests := []struct {
		name     string
		tags     []string
		expected bool
	}{
		{"both_groups_satisfied", []string{"angst", "hogwarts"}, true},
		{"or_branch_satisfied", []string{"fluff", "hogwarts"}, true},
		{"second_group_missing", []string{"angst"}, false},
		{"first_group_missing", []string{"hogwarts"}, false},
		{"empty_pathway", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fired, _ := program.Eval(pathwayContext(tt.tags, nil))
			assert.Equal(t, tt.expected, fired)
		})
	}
}

/*
TestProgram_UnknownConditionSkipped verifies runtime tolerance: an unknown
condition type warns and drops out of the expression instead of failing.
*/
func TestProgram_UnknownConditionSkipped(t *testing.T) {
	rule := &rules.Rule{Conditions: []rules.Condition{
		{Type: rules.ConditionType("has_spaceship"), Target: "x", Operator: rules.OpContains, GroupID: "a"},
		{Type: rules.CondHasTag, Target: "angst", Operator: rules.OpContains, GroupID: "b"},
	}}
	program := rules.Compile(rule)

	fired, warnings := program.Eval(pathwayContext([]string{"angst"}, nil))

	assert.True(t, fired, "known condition should still decide the rule")
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "has_spaceship")
}

/*
TestProgram_AllUnknownNeverFires verifies that a rule whose every condition
is unknown can never fire.
*/
func TestProgram_AllUnknownNeverFires(t *testing.T) {
	rule := &rules.Rule{Conditions: []rules.Condition{
		{Type: rules.ConditionType("has_spaceship"), Target: "x", Operator: rules.OpContains},
	}}
	program := rules.Compile(rule)

	fired, warnings := program.Eval(pathwayContext([]string{"angst"}, nil))

	assert.False(t, fired)
	assert.Len(t, warnings, 1)
}

/*
TestCheckDefinition exercises the write-time schema gate.
*/
func TestCheckDefinition(t *testing.T) {
	validCondition := rules.Condition{Type: rules.CondHasTag, Target: "angst", Operator: rules.OpContains}
	validAction := rules.Action{Type: rules.ActionShowMessage, Severity: rules.SeverityInfo, Message: "hello"}

	tests := []struct {
		name       string
		conditions []rules.Condition
		actions    []rules.Action
		wantErr    string
	}{
		{
			name:       "valid_definition",
			conditions: []rules.Condition{validCondition},
			actions:    []rules.Action{validAction},
		},
		{
			name:       "no_conditions",
			conditions: nil,
			actions:    []rules.Action{validAction},
			wantErr:    "at least one condition",
		},
		{
			name:       "no_actions",
			conditions: []rules.Condition{validCondition},
			actions:    nil,
			wantErr:    "at least one action",
		},
		{
			name:       "unknown_condition_type",
			conditions: []rules.Condition{{Type: rules.ConditionType("has_spaceship"), Target: "x", Operator: rules.OpContains}},
			actions:    []rules.Action{validAction},
			wantErr:    "unknown condition type",
		},
		{
			name:       "bad_operator_for_membership",
			conditions: []rules.Condition{{Type: rules.CondHasTag, Target: "x", Operator: rules.OpGreaterThan}},
			actions:    []rules.Action{validAction},
			wantErr:    "not valid for has_tag",
		},
		{
			name:       "count_missing_number",
			conditions: []rules.Condition{{Type: rules.CondItemCount, Operator: rules.OpGreaterThan}},
			actions:    []rules.Action{validAction},
			wantErr:    "requires a numeric value",
		},
		{
			name:       "in_missing_items",
			conditions: []rules.Condition{{Type: rules.CondHasTag, Operator: rules.OpIn}},
			actions:    []rules.Action{validAction},
			wantErr:    "requires value items",
		},
		{
			name:       "unknown_action_type",
			conditions: []rules.Condition{validCondition},
			actions:    []rules.Action{{Type: rules.ActionType("launch_rocket"), Severity: rules.SeverityError}},
			wantErr:    "unknown action type",
		},
		{
			name:       "require_tag_missing_targets",
			conditions: []rules.Condition{validCondition},
			actions:    []rules.Action{{Type: rules.ActionRequireTag, Severity: rules.SeverityError}},
			wantErr:    "requires target ids",
		},
		{
			name:       "show_message_missing_message",
			conditions: []rules.Condition{validCondition},
			actions:    []rules.Action{{Type: rules.ActionShowMessage, Severity: rules.SeverityWarning}},
			wantErr:    "requires a message",
		},
		{
			name:       "unknown_severity",
			conditions: []rules.Condition{validCondition},
			actions:    []rules.Action{{Type: rules.ActionShowMessage, Severity: rules.Severity("fatal"), Message: "x"}},
			wantErr:    "unknown severity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rules.CheckDefinition(tt.conditions, tt.actions)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
