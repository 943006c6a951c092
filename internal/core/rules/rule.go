// Copyright (c) 2026 The Pensieve Index. All rights reserved.

/*
Package rules implements per-fandom pathway validation rules.

A rule is a boolean expression over a pathway (the conditions) paired with an
ordered list of effects (the actions). Conditions and actions are closed
tagged variants: the set of types is fixed, payloads are validated at write
time, and unknown types are rejected before they ever reach storage.

# Evaluation Model

Conditions are compiled into a small boolean expression tree once per load
([Compile]) and evaluated once per request against an [EvalContext]. Rows
written before a schema change may still carry types this build does not
know; those compile into skip nodes that log a warning at evaluation time
instead of failing the request.
*/
package rules

import "time"

// # Rule Classification

// RuleType is a coarse label describing what a rule enforces. It does not
// affect evaluation; it exists for admin filtering and display.
type RuleType string

const (
	TypeConditionalRequirement RuleType = "conditional_requirement"
	TypeExclusivity            RuleType = "exclusivity"
	TypePrerequisite           RuleType = "prerequisite"
	TypeCustom                 RuleType = "custom"
)

// RuleTypes lists every valid rule type for validation.
var RuleTypes = []string{
	string(TypeConditionalRequirement),
	string(TypeExclusivity),
	string(TypePrerequisite),
	string(TypeCustom),
}

// # Conditions

// ConditionType discriminates what a condition inspects in the pathway.
type ConditionType string

const (
	CondHasTag       ConditionType = "has_tag"
	CondHasPlotBlock ConditionType = "has_plot_block"
	CondHasCategory  ConditionType = "has_category"
	CondHasTagClass  ConditionType = "has_tag_class"
	CondItemCount    ConditionType = "item_count"
)

// ConditionTypes lists every valid condition type for validation.
var ConditionTypes = []string{
	string(CondHasTag),
	string(CondHasPlotBlock),
	string(CondHasCategory),
	string(CondHasTagClass),
	string(CondItemCount),
}

// Operator compares a condition's target against the pathway.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpContains    Operator = "contains"
	OpNotContains Operator = "not_contains"
	OpIn          Operator = "in"
	OpNotIn       Operator = "not_in"
)

// Operators lists every valid operator for validation.
var Operators = []string{
	string(OpEquals),
	string(OpGreaterThan),
	string(OpLessThan),
	string(OpContains),
	string(OpNotContains),
	string(OpIn),
	string(OpNotIn),
}

// LogicOperator joins a condition with the previous one inside its group.
type LogicOperator string

const (
	LogicAnd LogicOperator = "AND"
	LogicOr  LogicOperator = "OR"
)

// ConditionValue is the typed payload for operators that need one.
//
// Number serves item_count and category-count comparisons; Items serves
// in/not_in membership checks. equals/contains/not_contains read only the
// condition's Target and leave the value empty.
type ConditionValue struct {
	Number *float64 `json:"number,omitempty"`
	Items  []string `json:"items,omitempty"`
}

// Condition is one leaf of a rule's boolean expression.
//
// Conditions sharing a GroupID fold left to right using each condition's
// LogicOperator; distinct groups combine with AND. An empty GroupID places
// the condition in the default group "".
type Condition struct {
	Type          ConditionType  `json:"type"`
	Target        string         `json:"target,omitempty"`
	Operator      Operator       `json:"operator"`
	Value         ConditionValue `json:"value,omitempty"`
	LogicOperator LogicOperator  `json:"logic_operator,omitempty"`
	GroupID       string         `json:"group_id,omitempty"`
	IsNegated     bool           `json:"is_negated,omitempty"`
}

// # Actions

// ActionType discriminates the effect a fired rule applies.
type ActionType string

const (
	ActionRequireTag       ActionType = "require_tag"
	ActionForbidTag        ActionType = "forbid_tag"
	ActionSuggestTag       ActionType = "suggest_tag"
	ActionRequirePlotBlock ActionType = "require_plot_block"
	ActionShowMessage      ActionType = "show_message"
)

// ActionTypes lists every valid action type for validation.
var ActionTypes = []string{
	string(ActionRequireTag),
	string(ActionForbidTag),
	string(ActionSuggestTag),
	string(ActionRequirePlotBlock),
	string(ActionShowMessage),
}

// Severity routes an action's output into the validation result buckets.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Severities lists every valid severity for validation.
var Severities = []string{
	string(SeverityError),
	string(SeverityWarning),
	string(SeverityInfo),
}

// Action is one effect applied when a rule's condition tree fires.
type Action struct {
	Type      ActionType `json:"type"`
	Severity  Severity   `json:"severity"`
	Message   string     `json:"message"`
	TargetIDs []string   `json:"target_ids,omitempty"`
}

// # Rule

// Rule is a persisted validation rule scoped to one fandom.
//
// Active rules are evaluated in ascending Priority order; within a rule,
// actions apply in slice order.
type Rule struct {
	ID          string      `json:"id"`
	FandomID    string      `json:"fandom_id"`
	Name        string      `json:"name"`
	Description *string     `json:"description,omitempty"`
	RuleType    RuleType    `json:"rule_type"`
	Priority    int         `json:"priority"`
	IsActive    bool        `json:"is_active"`
	Conditions  []Condition `json:"conditions"`
	Actions     []Action    `json:"actions"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// # JSON Field Identifiers

const (
	FieldName       = "name"
	FieldRuleType   = "rule_type"
	FieldPriority   = "priority"
	FieldConditions = "conditions"
	FieldActions    = "actions"
)
