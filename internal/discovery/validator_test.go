// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package discovery

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thepensieveindex/pensieve-api/internal/core/rules"
	"github.com/thepensieveindex/pensieve-api/internal/core/taxonomy"
)

// fakeRuleRepository serves a fixed rule list; writes are unreachable in
// these tests.
type fakeRuleRepository struct {
	rules []*rules.Rule
}

func (repo *fakeRuleRepository) ListByFandom(_ context.Context, _ string, _ bool) ([]*rules.Rule, error) {
	return repo.rules, nil
}
func (repo *fakeRuleRepository) GetByID(_ context.Context, _ string) (*rules.Rule, error) {
	return nil, nil
}
func (repo *fakeRuleRepository) Create(_ context.Context, _ *rules.Rule) error { return nil }
func (repo *fakeRuleRepository) Update(_ context.Context, _ *rules.Rule) error { return nil }
func (repo *fakeRuleRepository) SetActive(_ context.Context, _ string, _ bool) error {
	return nil
}

func newTestValidator(ruleList ...*rules.Rule) *Validator {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := rules.NewService(&fakeRuleRepository{rules: ruleList}, nil, nil, logger)
	return NewValidator(service, logger)
}

// forbidTwoShipsRule mirrors the classic "one ship per pathway" setup.
func forbidTwoShipsRule() *rules.Rule {
	return &rules.Rule{
		ID:       "rule-two-ships",
		FandomID: "hp",
		Name:     "One ship per pathway",
		RuleType: rules.TypeExclusivity,
		IsActive: true,
		Conditions: []rules.Condition{
			{Type: rules.CondHasTag, Target: "harry/ginny", Operator: rules.OpContains, GroupID: "a"},
			{Type: rules.CondHasTag, Target: "harry/hermione", Operator: rules.OpContains, GroupID: "b"},
		},
		Actions: []rules.Action{
			{
				Type:      rules.ActionForbidTag,
				Severity:  rules.SeverityError,
				Message:   "Pick one ship for Harry",
				TargetIDs: []string{"harry/ginny", "harry/hermione"},
			},
		},
	}
}

/*
TestValidator_ForbiddenCombination verifies that a fired exclusivity rule
produces an error and a blocked combination, and flips validity.
*/
func TestValidator_ForbiddenCombination(t *testing.T) {
	validator := newTestValidator(forbidTwoShipsRule())
	vocab := newTestVocabulary()
	vocab.addTag("t1", "Harry/Ginny", taxonomy.CategoryShip)
	vocab.addTag("t2", "Harry/Hermione", taxonomy.CategoryShip)

	path := vocab.resolve([]PathwayItem{
		tagItem(0, "Harry/Ginny"),
		tagItem(1, "Harry/Hermione"),
	})

	result, ruleCount, err := validator.Validate(context.Background(), "hp", path)

	require.NoError(t, err)
	assert.Equal(t, 1, ruleCount)
	assert.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Pick one ship for Harry", result.Errors[0].Message)
	require.Len(t, result.BlockedCombinations, 1)
	assert.ElementsMatch(t, []string{"harry/ginny", "harry/hermione"},
		result.BlockedCombinations[0].TargetIDs)
}

/*
TestValidator_RuleDoesNotFire verifies that a single ship leaves the
pathway valid.
*/
func TestValidator_RuleDoesNotFire(t *testing.T) {
	validator := newTestValidator(forbidTwoShipsRule())
	vocab := newTestVocabulary()
	vocab.addTag("t1", "Harry/Ginny", taxonomy.CategoryShip)

	path := vocab.resolve([]PathwayItem{tagItem(0, "Harry/Ginny")})

	result, _, err := validator.Validate(context.Background(), "hp", path)

	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.BlockedCombinations)
}

/*
TestValidator_EmptyPathwayIsValid verifies the baseline: no items, no
fired rules, valid result with initialized buckets.
*/
func TestValidator_EmptyPathwayIsValid(t *testing.T) {
	validator := newTestValidator(forbidTwoShipsRule())
	path := newTestVocabulary().resolve(nil)

	result, _, err := validator.Validate(context.Background(), "hp", path)

	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.NotNil(t, result.Errors)
	assert.NotNil(t, result.Warnings)
	assert.NotNil(t, result.Suggestions)
}

/*
TestValidator_RequireAction verifies require_tag reports only the missing
targets.
*/
func TestValidator_RequireAction(t *testing.T) {
	rule := &rules.Rule{
		ID:       "rule-req",
		Name:     "Time travel needs a mechanism",
		RuleType: rules.TypeConditionalRequirement,
		IsActive: true,
		Conditions: []rules.Condition{
			{Type: rules.CondHasTag, Target: "time travel", Operator: rules.OpContains},
		},
		Actions: []rules.Action{
			{
				Type:      rules.ActionRequireTag,
				Severity:  rules.SeverityError,
				TargetIDs: []string{"time-turner", "ritual"},
			},
		},
	}
	validator := newTestValidator(rule)
	vocab := newTestVocabulary()
	vocab.addTag("tt", "Time Travel", taxonomy.CategoryTrope)
	vocab.addTag("time-turner", "Time-Turner", taxonomy.CategoryTrope)

	// Neither required target present: both report missing
	path := vocab.resolve([]PathwayItem{tagItem(0, "Time Travel")})
	result, _, err := validator.Validate(context.Background(), "hp", path)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.ElementsMatch(t, []string{"time-turner", "ritual"}, result.Errors[0].TargetIDs)

	// One target satisfied by ID resolution: only the other reports
	path = vocab.resolve([]PathwayItem{tagItem(0, "Time Travel"), tagItem(1, "Time-Turner")})
	result, _, err = validator.Validate(context.Background(), "hp", path)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, []string{"ritual"}, result.Errors[0].TargetIDs)
}

/*
TestValidator_SuggestAndInfoActions verifies non-blocking severities land
in the suggestion bucket and leave validity intact.
*/
func TestValidator_SuggestAndInfoActions(t *testing.T) {
	rule := &rules.Rule{
		ID:       "rule-suggest",
		Name:     "Angst pairs well with hurt/comfort",
		RuleType: rules.TypeCustom,
		IsActive: true,
		Conditions: []rules.Condition{
			{Type: rules.CondHasTag, Target: "angst", Operator: rules.OpContains},
		},
		Actions: []rules.Action{
			{Type: rules.ActionSuggestTag, Severity: rules.SeverityInfo, TargetIDs: []string{"hurt-comfort"}},
			{Type: rules.ActionShowMessage, Severity: rules.SeverityInfo, Message: "Angst stories trend long"},
		},
	}
	validator := newTestValidator(rule)
	vocab := newTestVocabulary()
	vocab.addTag("angst", "Angst", taxonomy.CategoryGenre)

	path := vocab.resolve([]PathwayItem{tagItem(0, "Angst")})
	result, _, err := validator.Validate(context.Background(), "hp", path)

	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Len(t, result.Suggestions, 2)
}

/*
TestValidator_Idempotent verifies that running the same pathway twice
yields identical results.
*/
func TestValidator_Idempotent(t *testing.T) {
	validator := newTestValidator(forbidTwoShipsRule())
	vocab := newTestVocabulary()
	vocab.addTag("t1", "Harry/Ginny", taxonomy.CategoryShip)
	vocab.addTag("t2", "Harry/Hermione", taxonomy.CategoryShip)

	items := []PathwayItem{tagItem(0, "Harry/Ginny"), tagItem(1, "Harry/Hermione")}

	first, _, err := validator.Validate(context.Background(), "hp", vocab.resolve(items))
	require.NoError(t, err)
	second, _, err := validator.Validate(context.Background(), "hp", vocab.resolve(items))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
