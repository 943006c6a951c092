// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package rules

import (
	"fmt"
	"strings"
)

// # Evaluation Context

// EvalContext is the pre-resolved view of one pathway that condition trees
// evaluate against. Discovery builds it once per request.
//
// Name sets are lowercased so rule targets match case-insensitively; ID sets
// match exactly.
type EvalContext struct {
	TagIDs         map[string]bool
	TagNames       map[string]bool
	PlotBlockIDs   map[string]bool
	PlotBlockNames map[string]bool
	TagClassIDs    map[string]bool
	CategoryCounts map[string]int
	ItemCount      int
}

// HasTag reports whether the pathway contains the tag referenced by target,
// matching by ID first and lowercased name second.
func (ctx *EvalContext) HasTag(target string) bool {
	return ctx.TagIDs[target] || ctx.TagNames[strings.ToLower(target)]
}

// HasPlotBlock reports whether the pathway contains the referenced plot block.
func (ctx *EvalContext) HasPlotBlock(target string) bool {
	return ctx.PlotBlockIDs[target] || ctx.PlotBlockNames[strings.ToLower(target)]
}

// HasItem reports whether the pathway contains the referenced item of any kind.
func (ctx *EvalContext) HasItem(target string) bool {
	return ctx.HasTag(target) || ctx.HasPlotBlock(target)
}

// # Expression Tree

// node is one vertex of a compiled condition tree.
//
// eval returns (value, known). known=false marks a node this build cannot
// interpret; callers drop it from the expression and emit a warning rather
// than failing the request.
type node interface {
	eval(ctx *EvalContext, warn func(string)) (value bool, known bool)
}

// leaf evaluates a single condition.
type leaf struct {
	cond Condition
}

func (l *leaf) eval(ctx *EvalContext, warn func(string)) (bool, bool) {
	value, known := evalCondition(l.cond, ctx, warn)
	if !known {
		return false, false
	}
	if l.cond.IsNegated {
		value = !value
	}
	return value, true
}

// group folds its conditions left to right. Each member's LogicOperator
// joins it with the accumulated result so far; the first member's operator
// is ignored. Unknown members are dropped from the fold.
type group struct {
	members []*leaf
}

func (g *group) eval(ctx *EvalContext, warn func(string)) (bool, bool) {
	known := false
	result := false

	for _, member := range g.members {
		value, ok := member.eval(ctx, warn)
		if !ok {
			continue
		}

		if !known {
			result = value
			known = true
			continue
		}

		if member.cond.LogicOperator == LogicOr {
			result = result || value
		} else {
			result = result && value
		}
	}

	return result, known
}

// conjunction is the tree root: AND across condition groups. Groups whose
// members were all unknown are dropped; a tree with no known groups never
// fires.
type conjunction struct {
	groups []*group
}

func (c *conjunction) eval(ctx *EvalContext, warn func(string)) (bool, bool) {
	known := false

	for _, g := range c.groups {
		value, ok := g.eval(ctx, warn)
		if !ok {
			continue
		}
		known = true
		if !value {
			return false, true
		}
	}

	return known, known
}

// # Compiled Program

// Program is a rule compiled for repeated evaluation.
type Program struct {
	Rule *Rule
	root node
}

/*
Compile builds the boolean expression tree for a rule's conditions.

Description: Grouping preserves first-appearance order of group IDs, and
member order within a group follows the stored condition order, so evaluation
is deterministic. Compile is tolerant: conditions with types or operators this
build does not know become skip nodes that warn at evaluation time. Use
[CheckDefinition] to reject such rules at write time.

Parameters:
  - rule: *Rule

Returns:
  - *Program: Evaluable program, never nil
*/
func Compile(rule *Rule) *Program {

	// Bucket conditions by group, preserving first-appearance order
	order := []string{}
	buckets := map[string]*group{}
	for _, cond := range rule.Conditions {
		g, ok := buckets[cond.GroupID]
		if !ok {
			g = &group{}
			buckets[cond.GroupID] = g
			order = append(order, cond.GroupID)
		}
		g.members = append(g.members, &leaf{cond: cond})
	}

	root := &conjunction{}
	for _, id := range order {
		root.groups = append(root.groups, buckets[id])
	}

	return &Program{Rule: rule, root: root}
}

/*
Eval runs the compiled condition tree against one pathway.

Parameters:
  - ctx: *EvalContext

Returns:
  - bool: Whether the rule fires (actions should apply)
  - []string: Warnings from skipped unknown conditions
*/
func (program *Program) Eval(ctx *EvalContext) (bool, []string) {
	var warnings []string
	warn := func(message string) { warnings = append(warnings, message) }

	fired, known := program.root.eval(ctx, warn)
	if !known {
		return false, warnings
	}

	return fired, warnings
}

// # Condition Evaluation

// evalCondition interprets a single condition against the pathway.
// The (value, known) contract matches node.eval.
func evalCondition(cond Condition, ctx *EvalContext, warn func(string)) (bool, bool) {
	switch cond.Type {

	case CondHasTag:
		return evalMembership(cond, ctx.HasTag, warn)

	case CondHasPlotBlock:
		return evalMembership(cond, ctx.HasPlotBlock, warn)

	case CondHasTagClass:
		return evalMembership(cond, func(target string) bool {
			return ctx.TagClassIDs[target]
		}, warn)

	case CondHasCategory:
		return evalCount(cond, ctx.CategoryCounts[strings.ToLower(cond.Target)], warn)

	case CondItemCount:
		return evalCount(cond, ctx.ItemCount, warn)

	default:
		warn(fmt.Sprintf("skipped condition with unknown type %q", cond.Type))
		return false, false
	}
}

// evalMembership handles set-membership condition types.
func evalMembership(cond Condition, present func(string) bool, warn func(string)) (bool, bool) {
	switch cond.Operator {

	case OpEquals, OpContains:
		return present(cond.Target), true

	case OpNotContains:
		// Absent targets satisfy not_contains trivially
		return !present(cond.Target), true

	case OpIn:
		for _, item := range cond.Value.Items {
			if present(item) {
				return true, true
			}
		}
		return false, true

	case OpNotIn:
		for _, item := range cond.Value.Items {
			if present(item) {
				return false, true
			}
		}
		return true, true

	default:
		warn(fmt.Sprintf("skipped %s condition with unsupported operator %q", cond.Type, cond.Operator))
		return false, false
	}
}

// evalCount handles numeric condition types (item_count, has_category).
func evalCount(cond Condition, count int, warn func(string)) (bool, bool) {
	switch cond.Operator {

	case OpContains:
		return count > 0, true

	case OpNotContains:
		return count == 0, true

	case OpEquals, OpGreaterThan, OpLessThan:
		if cond.Value.Number == nil {
			warn(fmt.Sprintf("skipped %s condition missing numeric value", cond.Type))
			return false, false
		}
		threshold := *cond.Value.Number
		switch cond.Operator {
		case OpGreaterThan:
			return float64(count) > threshold, true
		case OpLessThan:
			return float64(count) < threshold, true
		default:
			return float64(count) == threshold, true
		}

	default:
		warn(fmt.Sprintf("skipped %s condition with unsupported operator %q", cond.Type, cond.Operator))
		return false, false
	}
}

// # Write-Time Schema Check

/*
CheckDefinition validates a rule's conditions and actions against the closed
variant schema.

Description: This is the write-time counterpart to Compile's runtime
tolerance. Admin writes carrying unknown types, unsupported type/operator
pairings, or missing payloads are rejected here so storage only ever holds
rules the current build can evaluate.

Parameters:
  - conditions: []Condition
  - actions: []Action

Returns:
  - error: Description of the first schema violation, or nil
*/
func CheckDefinition(conditions []Condition, actions []Action) error {
	if len(conditions) == 0 {
		return fmt.Errorf("at least one condition is required")
	}
	if len(actions) == 0 {
		return fmt.Errorf("at least one action is required")
	}

	for i, cond := range conditions {
		if err := checkCondition(cond); err != nil {
			return fmt.Errorf("condition %d: %w", i, err)
		}
	}

	for i, action := range actions {
		if err := checkAction(action); err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
	}

	return nil
}

// checkCondition validates one condition variant.
func checkCondition(cond Condition) error {
	switch cond.Type {

	case CondHasTag, CondHasPlotBlock, CondHasTagClass:
		switch cond.Operator {
		case OpEquals, OpContains, OpNotContains:
			if cond.Target == "" {
				return fmt.Errorf("%s with operator %s requires a target", cond.Type, cond.Operator)
			}
		case OpIn, OpNotIn:
			if len(cond.Value.Items) == 0 {
				return fmt.Errorf("%s with operator %s requires value items", cond.Type, cond.Operator)
			}
		default:
			return fmt.Errorf("operator %q is not valid for %s", cond.Operator, cond.Type)
		}

	case CondHasCategory:
		if cond.Target == "" {
			return fmt.Errorf("has_category requires a target category")
		}
		if err := checkCountOperator(cond); err != nil {
			return err
		}

	case CondItemCount:
		if err := checkCountOperator(cond); err != nil {
			return err
		}

	default:
		return fmt.Errorf("unknown condition type %q", cond.Type)
	}

	if cond.LogicOperator != "" && cond.LogicOperator != LogicAnd && cond.LogicOperator != LogicOr {
		return fmt.Errorf("unknown logic operator %q", cond.LogicOperator)
	}

	return nil
}

// checkCountOperator validates operators shared by the numeric condition types.
func checkCountOperator(cond Condition) error {
	switch cond.Operator {
	case OpContains, OpNotContains:
		return nil
	case OpEquals, OpGreaterThan, OpLessThan:
		if cond.Value.Number == nil {
			return fmt.Errorf("%s with operator %s requires a numeric value", cond.Type, cond.Operator)
		}
		return nil
	default:
		return fmt.Errorf("operator %q is not valid for %s", cond.Operator, cond.Type)
	}
}

// checkAction validates one action variant.
func checkAction(action Action) error {
	switch action.Type {

	case ActionRequireTag, ActionForbidTag, ActionSuggestTag, ActionRequirePlotBlock:
		if len(action.TargetIDs) == 0 {
			return fmt.Errorf("%s requires target ids", action.Type)
		}

	case ActionShowMessage:
		if action.Message == "" {
			return fmt.Errorf("show_message requires a message")
		}

	default:
		return fmt.Errorf("unknown action type %q", action.Type)
	}

	valid := false
	for _, s := range Severities {
		if string(action.Severity) == s {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unknown severity %q", action.Severity)
	}

	return nil
}
