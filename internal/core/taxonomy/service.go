// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package taxonomy

import (
	"context"
	"log/slog"
	"time"

	"github.com/thepensieveindex/pensieve-api/internal/audit"
	"github.com/thepensieveindex/pensieve-api/internal/core/fandom"
	"github.com/thepensieveindex/pensieve-api/internal/platform/apperr"
	"github.com/thepensieveindex/pensieve-api/internal/platform/sec"
	"github.com/thepensieveindex/pensieve-api/internal/platform/validate"
	"github.com/thepensieveindex/pensieve-api/pkg/slug"
	"github.com/thepensieveindex/pensieve-api/pkg/uuidv7"
)

// Service implements taxonomy use cases. All mutations are authorized
// through the fandom service so fandom-admin grants are honored.
type Service struct {
	repo    Repository
	fandoms *fandom.Service
	auditor audit.Recorder
	logger  *slog.Logger
}

// NewService constructs a new taxonomy [Service] with its dependencies.
func NewService(repo Repository, fandoms *fandom.Service, auditor audit.Recorder, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		fandoms: fandoms,
		auditor: auditor,
		logger:  logger,
	}
}

// canSeeInactive reports whether the caller may read deactivated entities.
func canSeeInactive(claims *sec.AuthClaims) bool {
	return claims != nil && sec.UserRole(claims.Role).AtLeast(sec.RoleFandomAdmin)
}

// # Tags

// ListTags returns a fandom's tag vocabulary visible to the caller.
func (service *Service) ListTags(context context.Context, claims *sec.AuthClaims, fandomID string) ([]*Tag, error) {
	if _, err := service.fandoms.Get(context, fandomID); err != nil {
		return nil, err
	}
	return service.repo.ListTags(context, fandomID, canSeeInactive(claims))
}

// GetTag returns a single tag. Deactivated tags resolve to NotFound for
// non-admin callers.
func (service *Service) GetTag(context context.Context, claims *sec.AuthClaims, id string) (*Tag, error) {
	tag, err := service.repo.GetTag(context, id)
	if err != nil {
		return nil, err
	}

	if !tag.IsActive && !canSeeInactive(claims) {
		return nil, apperr.NotFound("Tag")
	}

	return tag, nil
}

// TagInput holds the data required to create or replace a tag.
type TagInput struct {
	Name         string
	Description  *string
	Category     string
	TagClassID   *string
	RequiresTags []string
	EnhancesTags []string
}

/*
CreateTag validates and persists a new tag in the given fandom.

Description: The tag class reference and every cross-tag reference must point
at existing entities within the same fandom. Violations surface as field-level
validation errors rather than foreign-key failures.

Parameters:
  - context: context.Context
  - claims: *sec.AuthClaims (must authorize against the fandom)
  - fandomID: string
  - input: TagInput

Returns:
  - *Tag: Created entity
  - error: Authorization, validation, conflict, or storage errors
*/
func (service *Service) CreateTag(context context.Context, claims *sec.AuthClaims, fandomID string, input TagInput) (*Tag, error) {
	if err := service.fandoms.Authorize(context, claims, fandomID); err != nil {
		return nil, err
	}

	if err := service.validateTagInput(context, fandomID, input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	tag := &Tag{
		ID:           uuidv7.New(),
		FandomID:     fandomID,
		Name:         input.Name,
		Slug:         slug.From(input.Name),
		Description:  input.Description,
		Category:     Category(input.Category),
		TagClassID:   input.TagClassID,
		RequiresTags: input.RequiresTags,
		EnhancesTags: input.EnhancesTags,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := service.repo.CreateTag(context, tag); err != nil {
		return nil, err
	}

	service.record(context, claims.UserID, audit.ActionCreate, audit.EntityTag, tag.ID, fandomID,
		map[string]any{"name": tag.Name, "category": string(tag.Category)})
	return tag, nil
}

// UpdateTag replaces a tag's mutable fields.
func (service *Service) UpdateTag(context context.Context, claims *sec.AuthClaims, id string, input TagInput) (*Tag, error) {
	tag, err := service.repo.GetTag(context, id)
	if err != nil {
		return nil, err
	}

	if err := service.fandoms.Authorize(context, claims, tag.FandomID); err != nil {
		return nil, err
	}

	if err := service.validateTagInput(context, tag.FandomID, input); err != nil {
		return nil, err
	}

	tag.Name = input.Name
	tag.Slug = slug.From(input.Name)
	tag.Description = input.Description
	tag.Category = Category(input.Category)
	tag.TagClassID = input.TagClassID
	tag.RequiresTags = input.RequiresTags
	tag.EnhancesTags = input.EnhancesTags
	tag.UpdatedAt = time.Now().UTC()

	if err := service.repo.UpdateTag(context, tag); err != nil {
		return nil, err
	}

	service.record(context, claims.UserID, audit.ActionUpdate, audit.EntityTag, tag.ID, tag.FandomID, nil)
	return tag, nil
}

// SetTagActive toggles a tag's soft-activation flag.
func (service *Service) SetTagActive(context context.Context, claims *sec.AuthClaims, id string, active bool) error {
	tag, err := service.repo.GetTag(context, id)
	if err != nil {
		return err
	}

	if err := service.fandoms.Authorize(context, claims, tag.FandomID); err != nil {
		return err
	}

	if err := service.repo.SetTagActive(context, id, active); err != nil {
		return err
	}

	action := audit.ActionDeactivate
	if active {
		action = audit.ActionActivate
	}
	service.record(context, claims.UserID, action, audit.EntityTag, id, tag.FandomID, nil)
	return nil
}

// validateTagInput runs shape and referential checks shared by create/update.
func (service *Service) validateTagInput(context context.Context, fandomID string, input TagInput) error {
	v := &validate.Validator{}
	v.Required(FieldName, input.Name).
		MaxLen(FieldName, input.Name, 120).
		OneOf(FieldCategory, input.Category, Categories...)
	if err := v.Err(); err != nil {
		return err
	}

	// The tag class must exist within the same fandom
	if input.TagClassID != nil {
		class, err := service.repo.GetTagClass(context, *input.TagClassID)
		if err != nil {
			return validate.RequiredError(FieldTagClassID, "Unknown tag class")
		}
		if class.FandomID != fandomID {
			return validate.RequiredError(FieldTagClassID, "Tag class belongs to a different fandom")
		}
	}

	// Cross-tag references must resolve within the same fandom
	refs := append(append([]string{}, input.RequiresTags...), input.EnhancesTags...)
	if err := service.checkTagRefs(context, fandomID, refs); err != nil {
		return err
	}

	return nil
}

// checkTagRefs verifies that every referenced tag ID exists in fandomID.
func (service *Service) checkTagRefs(context context.Context, fandomID string, refs []string) error {
	if len(refs) == 0 {
		return nil
	}

	found, err := service.repo.GetTagsByIDs(context, refs)
	if err != nil {
		return err
	}

	known := make(map[string]bool, len(found))
	for _, tag := range found {
		known[tag.ID] = tag.FandomID == fandomID
	}

	for _, ref := range refs {
		if !known[ref] {
			return validate.RequiredError("requires_tags", "Referenced tag does not exist in this fandom: "+ref)
		}
	}

	return nil
}

// # Tag Classes

// ListTagClasses returns a fandom's tag classes visible to the caller.
func (service *Service) ListTagClasses(context context.Context, claims *sec.AuthClaims, fandomID string) ([]*TagClass, error) {
	if _, err := service.fandoms.Get(context, fandomID); err != nil {
		return nil, err
	}
	return service.repo.ListTagClasses(context, fandomID, canSeeInactive(claims))
}

// GetTagClass returns a single tag class.
func (service *Service) GetTagClass(context context.Context, claims *sec.AuthClaims, id string) (*TagClass, error) {
	class, err := service.repo.GetTagClass(context, id)
	if err != nil {
		return nil, err
	}

	if !class.IsActive && !canSeeInactive(claims) {
		return nil, apperr.NotFound("Tag class")
	}

	return class, nil
}

// TagClassInput holds the data required to create or replace a tag class.
type TagClassInput struct {
	Name        string
	Description *string
	Constraint  ClassConstraint
}

/*
CreateTagClass validates and persists a new tag class.

Returns:
  - *TagClass: Created entity
  - error: Authorization, validation, conflict (duplicate name), or storage errors
*/
func (service *Service) CreateTagClass(context context.Context, claims *sec.AuthClaims, fandomID string, input TagClassInput) (*TagClass, error) {
	if err := service.fandoms.Authorize(context, claims, fandomID); err != nil {
		return nil, err
	}

	if err := service.validateClassInput(context, fandomID, input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	class := &TagClass{
		ID:          uuidv7.New(),
		FandomID:    fandomID,
		Name:        input.Name,
		Description: input.Description,
		Constraint:  input.Constraint,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := service.repo.CreateTagClass(context, class); err != nil {
		return nil, err
	}

	service.record(context, claims.UserID, audit.ActionCreate, audit.EntityTagClass, class.ID, fandomID,
		map[string]any{"name": class.Name})
	return class, nil
}

// UpdateTagClass replaces a tag class's mutable fields.
func (service *Service) UpdateTagClass(context context.Context, claims *sec.AuthClaims, id string, input TagClassInput) (*TagClass, error) {
	class, err := service.repo.GetTagClass(context, id)
	if err != nil {
		return nil, err
	}

	if err := service.fandoms.Authorize(context, claims, class.FandomID); err != nil {
		return nil, err
	}

	if err := service.validateClassInput(context, class.FandomID, input); err != nil {
		return nil, err
	}

	class.Name = input.Name
	class.Description = input.Description
	class.Constraint = input.Constraint
	class.UpdatedAt = time.Now().UTC()

	if err := service.repo.UpdateTagClass(context, class); err != nil {
		return nil, err
	}

	service.record(context, claims.UserID, audit.ActionUpdate, audit.EntityTagClass, class.ID, class.FandomID, nil)
	return class, nil
}

// SetTagClassActive toggles a tag class's soft-activation flag.
func (service *Service) SetTagClassActive(context context.Context, claims *sec.AuthClaims, id string, active bool) error {
	class, err := service.repo.GetTagClass(context, id)
	if err != nil {
		return err
	}

	if err := service.fandoms.Authorize(context, claims, class.FandomID); err != nil {
		return err
	}

	if err := service.repo.SetTagClassActive(context, id, active); err != nil {
		return err
	}

	action := audit.ActionDeactivate
	if active {
		action = audit.ActionActivate
	}
	service.record(context, claims.UserID, action, audit.EntityTagClass, id, class.FandomID, nil)
	return nil
}

// validateClassInput runs shape and referential checks for tag class payloads.
func (service *Service) validateClassInput(context context.Context, fandomID string, input TagClassInput) error {
	v := &validate.Validator{}
	v.Required(FieldName, input.Name).
		MaxLen(FieldName, input.Name, 120)
	if input.Constraint.InstanceLimit != nil {
		v.Custom(FieldConstraint, *input.Constraint.InstanceLimit < 1, "Instance limit must be at least 1")
	}
	if err := v.Err(); err != nil {
		return err
	}

	return service.checkTagRefs(context, fandomID, input.Constraint.RequiredContext)
}

// # Plot Blocks

// ListPlotBlocks returns a fandom's plot trees visible to the caller.
func (service *Service) ListPlotBlocks(context context.Context, claims *sec.AuthClaims, fandomID string) ([]*PlotBlockNode, error) {
	if _, err := service.fandoms.Get(context, fandomID); err != nil {
		return nil, err
	}

	blocks, err := service.repo.ListPlotBlocks(context, fandomID, canSeeInactive(claims))
	if err != nil {
		return nil, err
	}

	return BuildForest(blocks), nil
}

// ListPlotBlocksFlat returns a fandom's active plot blocks without tree
// assembly, for consumers that index by ID.
func (service *Service) ListPlotBlocksFlat(context context.Context, fandomID string) ([]*PlotBlock, error) {
	return service.repo.ListPlotBlocks(context, fandomID, false)
}

// GetPlotBlock returns a single plot block.
func (service *Service) GetPlotBlock(context context.Context, claims *sec.AuthClaims, id string) (*PlotBlock, error) {
	block, err := service.repo.GetPlotBlock(context, id)
	if err != nil {
		return nil, err
	}

	if !block.IsActive && !canSeeInactive(claims) {
		return nil, apperr.NotFound("Plot block")
	}

	return block, nil
}

// PlotBlockInput holds the data required to create or replace a plot block.
type PlotBlockInput struct {
	Name          string
	Description   *string
	Category      string
	ParentID      *string
	ConflictsWith []string
	RequiresTags  []string
	EnhancesTags  []string
}

/*
CreatePlotBlock validates and persists a new plot block.

Description: The parent (when set) must be an existing plot block in the same
fandom. Conflict references must resolve to plot blocks in the same fandom.
A freshly created node cannot introduce a cycle since nothing points at it yet.

Returns:
  - *PlotBlock: Created entity
  - error: Authorization, validation, conflict, or storage errors
*/
func (service *Service) CreatePlotBlock(context context.Context, claims *sec.AuthClaims, fandomID string, input PlotBlockInput) (*PlotBlock, error) {
	if err := service.fandoms.Authorize(context, claims, fandomID); err != nil {
		return nil, err
	}

	if err := service.validateBlockInput(context, fandomID, "", input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	block := &PlotBlock{
		ID:            uuidv7.New(),
		FandomID:      fandomID,
		Name:          input.Name,
		Slug:          slug.From(input.Name),
		Description:   input.Description,
		Category:      Category(input.Category),
		ParentID:      input.ParentID,
		ConflictsWith: input.ConflictsWith,
		RequiresTags:  input.RequiresTags,
		EnhancesTags:  input.EnhancesTags,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := service.repo.CreatePlotBlock(context, block); err != nil {
		return nil, err
	}

	service.record(context, claims.UserID, audit.ActionCreate, audit.EntityPlotBlock, block.ID, fandomID,
		map[string]any{"name": block.Name})
	return block, nil
}

// UpdatePlotBlock replaces a plot block's mutable fields. Re-parenting is
// checked against the whole fandom forest so no update can close a cycle.
func (service *Service) UpdatePlotBlock(context context.Context, claims *sec.AuthClaims, id string, input PlotBlockInput) (*PlotBlock, error) {
	block, err := service.repo.GetPlotBlock(context, id)
	if err != nil {
		return nil, err
	}

	if err := service.fandoms.Authorize(context, claims, block.FandomID); err != nil {
		return nil, err
	}

	if err := service.validateBlockInput(context, block.FandomID, block.ID, input); err != nil {
		return nil, err
	}

	block.Name = input.Name
	block.Slug = slug.From(input.Name)
	block.Description = input.Description
	block.Category = Category(input.Category)
	block.ParentID = input.ParentID
	block.ConflictsWith = input.ConflictsWith
	block.RequiresTags = input.RequiresTags
	block.EnhancesTags = input.EnhancesTags
	block.UpdatedAt = time.Now().UTC()

	if err := service.repo.UpdatePlotBlock(context, block); err != nil {
		return nil, err
	}

	service.record(context, claims.UserID, audit.ActionUpdate, audit.EntityPlotBlock, block.ID, block.FandomID, nil)
	return block, nil
}

// SetPlotBlockActive toggles a plot block's soft-activation flag.
func (service *Service) SetPlotBlockActive(context context.Context, claims *sec.AuthClaims, id string, active bool) error {
	block, err := service.repo.GetPlotBlock(context, id)
	if err != nil {
		return err
	}

	if err := service.fandoms.Authorize(context, claims, block.FandomID); err != nil {
		return err
	}

	if err := service.repo.SetPlotBlockActive(context, id, active); err != nil {
		return err
	}

	action := audit.ActionDeactivate
	if active {
		action = audit.ActionActivate
	}
	service.record(context, claims.UserID, action, audit.EntityPlotBlock, id, block.FandomID, nil)
	return nil
}

// validateBlockInput runs shape, referential, and cycle checks.
// selfID is empty on create.
func (service *Service) validateBlockInput(context context.Context, fandomID, selfID string, input PlotBlockInput) error {
	v := &validate.Validator{}
	v.Required(FieldName, input.Name).
		MaxLen(FieldName, input.Name, 120).
		OneOf(FieldCategory, input.Category, Categories...)
	if input.ParentID != nil && *input.ParentID == selfID && selfID != "" {
		v.Custom(FieldParentID, true, "A plot block cannot be its own parent")
	}
	if err := v.Err(); err != nil {
		return err
	}

	if input.ParentID != nil {
		if err := service.checkParent(context, fandomID, selfID, *input.ParentID); err != nil {
			return err
		}
	}

	// Conflict references must resolve to plot blocks in the same fandom
	for _, conflictID := range input.ConflictsWith {
		other, err := service.repo.GetPlotBlock(context, conflictID)
		if err != nil {
			return validate.RequiredError("conflicts_with", "Referenced plot block does not exist: "+conflictID)
		}
		if other.FandomID != fandomID {
			return validate.RequiredError("conflicts_with", "Referenced plot block belongs to a different fandom: "+conflictID)
		}
	}

	return service.checkTagRefs(context, fandomID, append(append([]string{}, input.RequiresTags...), input.EnhancesTags...))
}

/*
checkParent verifies the parent reference and rejects re-parenting that would
close a cycle.

Description: Walks the ancestor chain starting at parentID using the fandom's
full block set. Hitting selfID means the proposed parent is a descendant of
the node being updated, which would turn the tree into a loop.
*/
func (service *Service) checkParent(context context.Context, fandomID, selfID, parentID string) error {
	blocks, err := service.repo.ListPlotBlocks(context, fandomID, true)
	if err != nil {
		return err
	}

	byID := make(map[string]*PlotBlock, len(blocks))
	for _, block := range blocks {
		byID[block.ID] = block
	}

	parent, ok := byID[parentID]
	if !ok {
		return validate.RequiredError(FieldParentID, "Parent plot block does not exist in this fandom")
	}

	// Walk up from the proposed parent. The visited set guards against
	// pre-existing corruption so the walk always terminates.
	visited := map[string]bool{}
	for current := parent; current != nil; {
		if selfID != "" && current.ID == selfID {
			return validate.RequiredError(FieldParentID, "Re-parenting would create a cycle")
		}
		if visited[current.ID] {
			break
		}
		visited[current.ID] = true

		if current.ParentID == nil {
			break
		}
		current = byID[*current.ParentID]
	}

	return nil
}

// record writes an audit entry, logging (never propagating) failures.
func (service *Service) record(context context.Context, actorID string, action audit.Action, entity audit.EntityType, entityID, fandomID string, detail map[string]any) {
	entry := audit.Entry{
		ActorID:    actorID,
		Action:     action,
		EntityType: entity,
		EntityID:   entityID,
		FandomID:   &fandomID,
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
