// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package rules

import (
	"context"
	"log/slog"
	"time"

	"github.com/thepensieveindex/pensieve-api/internal/audit"
	"github.com/thepensieveindex/pensieve-api/internal/core/fandom"
	"github.com/thepensieveindex/pensieve-api/internal/platform/apperr"
	"github.com/thepensieveindex/pensieve-api/internal/platform/sec"
	"github.com/thepensieveindex/pensieve-api/internal/platform/validate"
	"github.com/thepensieveindex/pensieve-api/pkg/uuidv7"
)

// Service implements validation-rule use cases. Writes are schema-checked
// against the closed variant set before touching storage.
type Service struct {
	repo    Repository
	fandoms *fandom.Service
	auditor audit.Recorder
	logger  *slog.Logger
}

// NewService constructs a new rules [Service] with its dependencies.
func NewService(repo Repository, fandoms *fandom.Service, auditor audit.Recorder, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		fandoms: fandoms,
		auditor: auditor,
		logger:  logger,
	}
}

// # Read Path

// List returns a fandom's rules. Admins see deactivated rules too.
func (service *Service) List(context context.Context, claims *sec.AuthClaims, fandomID string) ([]*Rule, error) {
	if _, err := service.fandoms.Get(context, fandomID); err != nil {
		return nil, err
	}

	activeOnly := claims == nil || !sec.UserRole(claims.Role).AtLeast(sec.RoleFandomAdmin)
	return service.repo.ListByFandom(context, fandomID, activeOnly)
}

// Get returns a single rule by ID.
func (service *Service) Get(context context.Context, id string) (*Rule, error) {
	return service.repo.GetByID(context, id)
}

/*
LoadActive compiles a fandom's active rules for evaluation.

Description: This is the validator's entry point. Rules compile tolerantly,
so rows written under an older schema still load; their unknown conditions
skip with warnings at evaluation time.

Parameters:
  - context: context.Context
  - fandomID: string

Returns:
  - []*Program: Compiled programs in ascending priority order
  - error: Storage errors
*/
func (service *Service) LoadActive(context context.Context, fandomID string) ([]*Program, error) {
	list, err := service.repo.ListByFandom(context, fandomID, true)
	if err != nil {
		return nil, err
	}

	programs := make([]*Program, 0, len(list))
	for _, rule := range list {
		programs = append(programs, Compile(rule))
	}

	return programs, nil
}

// # Write Path

// Input holds the data required to create or replace a rule.
type Input struct {
	Name        string
	Description *string
	RuleType    string
	Priority    int
	Conditions  []Condition
	Actions     []Action
}

/*
Create validates and persists a new rule in the given fandom.

Description: Shape errors (missing name, bad rule type) report as 400
validation failures; schema violations in the condition/action variants
report as 422 so clients can distinguish "fix your JSON" from "this rule
type does not exist".

Parameters:
  - context: context.Context
  - claims: *sec.AuthClaims (must authorize against the fandom)
  - fandomID: string
  - input: Input

Returns:
  - *Rule: Created entity
  - error: Authorization, validation, schema, or storage errors
*/
func (service *Service) Create(context context.Context, claims *sec.AuthClaims, fandomID string, input Input) (*Rule, error) {
	if err := service.fandoms.Authorize(context, claims, fandomID); err != nil {
		return nil, err
	}

	if err := service.validateInput(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rule := &Rule{
		ID:          uuidv7.New(),
		FandomID:    fandomID,
		Name:        input.Name,
		Description: input.Description,
		RuleType:    RuleType(input.RuleType),
		Priority:    input.Priority,
		IsActive:    true,
		Conditions:  input.Conditions,
		Actions:     input.Actions,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := service.repo.Create(context, rule); err != nil {
		return nil, err
	}

	service.record(context, claims.UserID, audit.ActionCreate, rule.ID, fandomID,
		map[string]any{"name": rule.Name, "rule_type": string(rule.RuleType)})
	return rule, nil
}

// Update replaces a rule's mutable fields.
func (service *Service) Update(context context.Context, claims *sec.AuthClaims, id string, input Input) (*Rule, error) {
	rule, err := service.repo.GetByID(context, id)
	if err != nil {
		return nil, err
	}

	if err := service.fandoms.Authorize(context, claims, rule.FandomID); err != nil {
		return nil, err
	}

	if err := service.validateInput(input); err != nil {
		return nil, err
	}

	rule.Name = input.Name
	rule.Description = input.Description
	rule.RuleType = RuleType(input.RuleType)
	rule.Priority = input.Priority
	rule.Conditions = input.Conditions
	rule.Actions = input.Actions
	rule.UpdatedAt = time.Now().UTC()

	if err := service.repo.Update(context, rule); err != nil {
		return nil, err
	}

	service.record(context, claims.UserID, audit.ActionUpdate, rule.ID, rule.FandomID, nil)
	return rule, nil
}

// SetActive toggles a rule's soft-activation flag.
func (service *Service) SetActive(context context.Context, claims *sec.AuthClaims, id string, active bool) error {
	rule, err := service.repo.GetByID(context, id)
	if err != nil {
		return err
	}

	if err := service.fandoms.Authorize(context, claims, rule.FandomID); err != nil {
		return err
	}

	if err := service.repo.SetActive(context, id, active); err != nil {
		return err
	}

	action := audit.ActionDeactivate
	if active {
		action = audit.ActionActivate
	}
	service.record(context, claims.UserID, action, id, rule.FandomID, nil)
	return nil
}

// validateInput runs shape checks, then the closed-variant schema check.
func (service *Service) validateInput(input Input) error {
	v := &validate.Validator{}
	if err := v.
		Required(FieldName, input.Name).
		MaxLen(FieldName, input.Name, 160).
		OneOf(FieldRuleType, input.RuleType, RuleTypes...).
		Custom(FieldPriority, input.Priority < 0, "Must not be negative").
		Err(); err != nil {
		return err
	}

	if err := CheckDefinition(input.Conditions, input.Actions); err != nil {
		return apperr.Unprocessable("Rule definition rejected: " + err.Error())
	}

	return nil
}

// record writes an audit entry, logging (never propagating) failures.
func (service *Service) record(context context.Context, actorID string, action audit.Action, ruleID, fandomID string, detail map[string]any) {
	entry := audit.Entry{
		ActorID:    actorID,
		Action:     action,
		EntityType: audit.EntityRule,
		EntityID:   ruleID,
		FandomID:   &fandomID,
		Detail:     detail,
	}

	if err := service.auditor.Record(context, entry); err != nil {
		service.logger.ErrorContext(context, "audit_record_failed",
			slog.String("action", string(action)),
			slog.String("entity_id", ruleID),
			slog.Any("error", err),
		)
	}
}
