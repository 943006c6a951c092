// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package discovery

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/thepensieveindex/pensieve-api/internal/core/rules"
)

// Validator evaluates a fandom's compiled rules against resolved pathways.
//
// A misconfigured rule must never take down discovery: evaluation soft
// failures (unknown condition types, dangling targets) are logged and
// skipped, and the caller still receives a complete result.
type Validator struct {
	rules  *rules.Service
	logger *slog.Logger
}

// NewValidator constructs a [Validator] with its dependencies.
func NewValidator(rulesSvc *rules.Service, logger *slog.Logger) *Validator {
	return &Validator{rules: rulesSvc, logger: logger}
}

/*
Validate runs every active rule of the fandom against the pathway.

Description: Rules evaluate in ascending priority order. When a rule's
condition tree fires, its actions apply in stored order, each appending to
the bucket its type and severity select. IsValid is true exactly when no
error-severity finding was produced; an empty pathway is therefore valid
whenever no rule explicitly fires on emptiness.

Parameters:
  - context: context.Context
  - fandomID: string
  - path: *ResolvedPathway

Returns:
  - ValidationResult: Complete, bucket-initialized result
  - int: Number of rules evaluated
  - error: Storage errors only
*/
func (validator *Validator) Validate(context context.Context, fandomID string, path *ResolvedPathway) (ValidationResult, int, error) {
	result := newValidationResult()

	programs, err := validator.rules.LoadActive(context, fandomID)
	if err != nil {
		return result, 0, err
	}

	for _, program := range programs {
		fired, skips := program.Eval(path.Ctx)

		// Skipped conditions are an operator concern, not a user one
		for _, skip := range skips {
			validator.logger.WarnContext(context, "rule_condition_skipped",
				slog.String("rule_id", program.Rule.ID),
				slog.String("fandom_id", fandomID),
				slog.String("detail", skip),
			)
		}

		if !fired {
			continue
		}

		for _, action := range program.Rule.Actions {
			validator.apply(context, program.Rule, action, path, &result)
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result, len(programs), nil
}

// apply executes one action of a fired rule against the result.
func (validator *Validator) apply(context context.Context, rule *rules.Rule, action rules.Action, path *ResolvedPathway, result *ValidationResult) {
	switch action.Type {

	case rules.ActionRequireTag, rules.ActionRequirePlotBlock:
		missing := []string{}
		for _, target := range action.TargetIDs {
			if !path.Ctx.HasItem(target) {
				missing = append(missing, target)
			}
		}
		if len(missing) == 0 {
			return
		}
		result.severityBucket(action.Severity, Issue{
			RuleID:    rule.ID,
			RuleName:  rule.Name,
			Severity:  string(action.Severity),
			Message:   actionMessage(action, "This pathway is missing required elements"),
			TargetIDs: missing,
		})

	case rules.ActionForbidTag:
		present := []string{}
		for _, target := range action.TargetIDs {
			if path.Ctx.HasItem(target) {
				present = append(present, target)
			}
		}
		if len(present) == 0 {
			return
		}
		result.severityBucket(action.Severity, Issue{
			RuleID:    rule.ID,
			RuleName:  rule.Name,
			Severity:  string(action.Severity),
			Message:   actionMessage(action, "This pathway contains a forbidden combination"),
			TargetIDs: present,
		})
		result.BlockedCombinations = append(result.BlockedCombinations, BlockedCombination{
			RuleID:    rule.ID,
			Message:   actionMessage(action, "Forbidden combination"),
			TargetIDs: present,
		})

	case rules.ActionSuggestTag:
		absent := []string{}
		for _, target := range action.TargetIDs {
			if !path.Ctx.HasItem(target) {
				absent = append(absent, target)
			}
		}
		if len(absent) == 0 {
			return
		}
		result.Suggestions = append(result.Suggestions, Suggestion{
			RuleID:    rule.ID,
			Message:   actionMessage(action, "Consider adding these elements"),
			TargetIDs: absent,
		})

	case rules.ActionShowMessage:
		result.severityBucket(action.Severity, Issue{
			RuleID:   rule.ID,
			RuleName: rule.Name,
			Severity: string(action.Severity),
			Message:  action.Message,
		})

	default:
		// Rows written before a schema change may carry unknown actions
		validator.logger.WarnContext(context, "rule_action_skipped",
			slog.String("rule_id", rule.ID),
			slog.String("detail", fmt.Sprintf("unknown action type %q", action.Type)),
		)
	}
}

// actionMessage prefers the admin-authored message over the fallback.
func actionMessage(action rules.Action, fallback string) string {
	if action.Message != "" {
		return action.Message
	}
	return fallback
}
