// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package fandom

import (
	"context"
	"log/slog"
	"time"

	"github.com/thepensieveindex/pensieve-api/internal/audit"
	"github.com/thepensieveindex/pensieve-api/internal/platform/apperr"
	"github.com/thepensieveindex/pensieve-api/internal/platform/sec"
	"github.com/thepensieveindex/pensieve-api/internal/platform/validate"
	"github.com/thepensieveindex/pensieve-api/pkg/slug"
	"github.com/thepensieveindex/pensieve-api/pkg/uuidv7"
)

// Service implements fandom namespace use cases.
type Service struct {
	repo    Repository
	auditor audit.Recorder
	logger  *slog.Logger
}

// NewService constructs a new fandom [Service] with its dependencies.
func NewService(repo Repository, auditor audit.Recorder, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		auditor: auditor,
		logger:  logger,
	}
}

// # Read Path

// List returns all fandoms visible to the caller.
// Deactivated fandoms are only included for project admins.
func (service *Service) List(context context.Context, claims *sec.AuthClaims) ([]*Fandom, error) {
	includeInactive := claims != nil && sec.UserRole(claims.Role).AtLeast(sec.RoleProjectAdmin)
	return service.repo.List(context, includeInactive)
}

// Get returns a single fandom by ID. Deactivated fandoms resolve to NotFound
// for non-admin callers so they disappear from discovery.
func (service *Service) Get(context context.Context, id string) (*Fandom, error) {
	f, err := service.repo.GetByID(context, id)
	if err != nil {
		return nil, err
	}

	if !f.IsActive {
		return nil, apperr.NotFound("Fandom")
	}

	return f, nil
}

// GetBySlug resolves a fandom by its URL slug.
func (service *Service) GetBySlug(context context.Context, slugStr string) (*Fandom, error) {
	f, err := service.repo.GetBySlug(context, slugStr)
	if err != nil {
		return nil, err
	}

	if !f.IsActive {
		return nil, apperr.NotFound("Fandom")
	}

	return f, nil
}

// # Authorization

// Authorize verifies that the caller may mutate entities scoped to fandomID.
//
// Project admins pass unconditionally. Fandom admins must hold a grant for
// the specific fandom. Everyone else is rejected.
func (service *Service) Authorize(context context.Context, claims *sec.AuthClaims, fandomID string) error {
	if claims == nil {
		return apperr.Unauthorized("Authentication required")
	}

	role := sec.UserRole(claims.Role)

	if role.AtLeast(sec.RoleProjectAdmin) {
		return nil
	}

	if role.AtLeast(sec.RoleFandomAdmin) {
		granted, err := service.repo.HasGrant(context, claims.UserID, fandomID)
		if err != nil {
			return err
		}
		if granted {
			return nil
		}
	}

	return apperr.Forbidden("No admin grant for this fandom")
}

// # Write Path

// CreateInput holds the data required to register a new fandom.
type CreateInput struct {
	Name        string
	Description *string
}

/*
Create validates and persists a brand new fandom namespace.

Parameters:
  - context: context.Context
  - actorID: string (project admin performing the mutation)
  - input: CreateInput

Returns:
  - *Fandom: Created entity
  - error: Validation, Conflict (duplicate slug), or storage errors
*/
func (service *Service) Create(context context.Context, actorID string, input CreateInput) (*Fandom, error) {

	// Semantic validation before touching storage
	v := &validate.Validator{}
	if err := v.
		Required(FieldName, input.Name).
		MaxLen(FieldName, input.Name, 120).
		Err(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	f := &Fandom{
		ID:          uuidv7.New(),
		Name:        input.Name,
		Slug:        slug.From(input.Name),
		Description: input.Description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := service.repo.Create(context, f); err != nil {
		return nil, err
	}

	service.record(context, actorID, audit.ActionCreate, f.ID, map[string]any{"name": f.Name})
	return f, nil
}

// UpdateInput holds mutable fandom fields. Nil pointers leave fields unchanged.
type UpdateInput struct {
	Name        *string
	Description *string
}

// Update applies a partial update to an existing fandom.
func (service *Service) Update(context context.Context, actorID, id string, input UpdateInput) (*Fandom, error) {
	f, err := service.repo.GetByID(context, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		v := &validate.Validator{}
		if err := v.
			Required(FieldName, *input.Name).
			MaxLen(FieldName, *input.Name, 120).
			Err(); err != nil {
			return nil, err
		}
		f.Name = *input.Name
		f.Slug = slug.From(*input.Name)
	}
	if input.Description != nil {
		f.Description = input.Description
	}
	f.UpdatedAt = time.Now().UTC()

	if err := service.repo.Update(context, f); err != nil {
		return nil, err
	}

	service.record(context, actorID, audit.ActionUpdate, f.ID, nil)
	return f, nil
}

// SetActive toggles a fandom's soft-activation flag.
func (service *Service) SetActive(context context.Context, actorID, id string, active bool) error {
	if err := service.repo.SetActive(context, id, active); err != nil {
		return err
	}

	action := audit.ActionDeactivate
	if active {
		action = audit.ActionActivate
	}
	service.record(context, actorID, action, id, nil)
	return nil
}

// # Admin Grants

// AddGrant gives userID fandom_admin scope over fandomID.
func (service *Service) AddGrant(context context.Context, actorID, userID, fandomID string) error {
	// The fandom must exist (and be findable by admins even when inactive).
	if _, err := service.repo.GetByID(context, fandomID); err != nil {
		return err
	}

	g := &Grant{
		UserID:    userID,
		FandomID:  fandomID,
		GrantedBy: actorID,
		CreatedAt: time.Now().UTC(),
	}

	if err := service.repo.AddGrant(context, g); err != nil {
		return err
	}

	service.record(context, actorID, audit.ActionGrant, userID, map[string]any{"fandom_id": fandomID})
	return nil
}

// RemoveGrant revokes userID's fandom_admin scope over fandomID.
func (service *Service) RemoveGrant(context context.Context, actorID, userID, fandomID string) error {
	if err := service.repo.RemoveGrant(context, userID, fandomID); err != nil {
		return err
	}

	service.record(context, actorID, audit.ActionRevoke, userID, map[string]any{"fandom_id": fandomID})
	return nil
}

// record writes an audit entry, logging (never propagating) failures.
func (service *Service) record(context context.Context, actorID string, action audit.Action, entityID string, detail map[string]any) {
	entry := audit.Entry{
		ActorID:    actorID,
		Action:     action,
		EntityType: audit.EntityFandom,
		EntityID:   entityID,
		Detail:     detail,
	}

	if err := service.auditor.Record(context, entry); err != nil {
		service.logger.ErrorContext(context, "audit_record_failed",
			slog.String("action", string(action)),
			slog.String("entity_id", entityID),
			slog.Any("error", err),
		)
	}
}
