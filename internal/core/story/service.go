// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package story

import (
	"context"
	"log/slog"
	"time"

	"github.com/thepensieveindex/pensieve-api/internal/audit"
	"github.com/thepensieveindex/pensieve-api/internal/core/fandom"
	"github.com/thepensieveindex/pensieve-api/internal/core/taxonomy"
	"github.com/thepensieveindex/pensieve-api/internal/platform/apperr"
	"github.com/thepensieveindex/pensieve-api/internal/platform/sec"
	"github.com/thepensieveindex/pensieve-api/internal/platform/validate"
	"github.com/thepensieveindex/pensieve-api/pkg/pagination"
	"github.com/thepensieveindex/pensieve-api/pkg/uuidv7"
)

// IndexInvalidator drops any cached candidate set for a fandom after a
// corpus mutation. Implemented by the discovery story index.
type IndexInvalidator interface {
	Invalidate(context context.Context, fandomID string) error
}

// Service implements story corpus use cases.
type Service struct {
	repo        Repository
	fandoms     *fandom.Service
	taxonomy    *taxonomy.Service
	auditor     audit.Recorder
	logger      *slog.Logger
	invalidator IndexInvalidator
}

// NewService constructs a new story [Service] with its dependencies.
func NewService(repo Repository, fandoms *fandom.Service, taxonomySvc *taxonomy.Service, auditor audit.Recorder, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		fandoms:  fandoms,
		taxonomy: taxonomySvc,
		auditor:  auditor,
		logger:   logger,
	}
}

// SetIndexInvalidator attaches the discovery index invalidation hook.
//
// A setter rather than a constructor argument because the index is built
// on top of this service; main wires the loop after both exist.
func (service *Service) SetIndexInvalidator(invalidator IndexInvalidator) {
	service.invalidator = invalidator
}

// # Read Path

// List returns one page of a fandom's stories. Admins see deactivated
// stories too.
func (service *Service) List(context context.Context, claims *sec.AuthClaims, fandomID string, params pagination.Params) ([]*Story, int, error) {
	if _, err := service.fandoms.Get(context, fandomID); err != nil {
		return nil, 0, err
	}

	includeInactive := claims != nil && sec.UserRole(claims.Role).AtLeast(sec.RoleFandomAdmin)
	return service.repo.ListByFandom(context, fandomID, includeInactive, params)
}

// Get returns a single story. Deactivated stories resolve to NotFound for
// non-admin callers.
func (service *Service) Get(context context.Context, claims *sec.AuthClaims, id string) (*Story, error) {
	story, err := service.repo.GetByID(context, id)
	if err != nil {
		return nil, err
	}

	if !story.IsActive && (claims == nil || !sec.UserRole(claims.Role).AtLeast(sec.RoleFandomAdmin)) {
		return nil, apperr.NotFound("Story")
	}

	return story, nil
}

// Candidates returns the scorer's filtered candidate set for a fandom.
func (service *Service) Candidates(context context.Context, fandomID string, filters Filters) ([]*Story, error) {
	return service.repo.ListCandidates(context, fandomID, filters)
}

// # Write Path

// Input holds the data required to create or replace a story.
type Input struct {
	Title        string
	Author       string
	Summary      *string
	SourceURL    string
	WordCount    int
	Status       string
	Rating       string
	Language     string
	PublishedAt  time.Time
	TagIDs       []string
	PlotBlockIDs []string
}

/*
Create validates and persists a new story with its taxonomy associations.

Description: Every referenced tag and plot block must exist in the story's
fandom; dangling references surface as field-level validation errors so the
corpus never carries associations the scorer cannot resolve.

Parameters:
  - context: context.Context
  - claims: *sec.AuthClaims (must authorize against the fandom)
  - fandomID: string
  - input: Input

Returns:
  - *Story: Created entity
  - error: Authorization, validation, conflict, or storage errors
*/
func (service *Service) Create(context context.Context, claims *sec.AuthClaims, fandomID string, input Input) (*Story, error) {
	if err := service.fandoms.Authorize(context, claims, fandomID); err != nil {
		return nil, err
	}

	if err := service.validateInput(context, claims, fandomID, input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	story := &Story{
		ID:           uuidv7.New(),
		FandomID:     fandomID,
		Title:        input.Title,
		Author:       input.Author,
		Summary:      input.Summary,
		SourceURL:    input.SourceURL,
		WordCount:    input.WordCount,
		Status:       Status(input.Status),
		Rating:       Rating(input.Rating),
		Language:     normalizeLanguage(input.Language),
		PublishedAt:  input.PublishedAt,
		TagIDs:       input.TagIDs,
		PlotBlockIDs: input.PlotBlockIDs,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := service.repo.Create(context, story); err != nil {
		return nil, err
	}

	service.record(context, claims.UserID, audit.ActionCreate, story.ID, fandomID,
		map[string]any{"title": story.Title})
	service.invalidateIndex(context, fandomID)
	return story, nil
}

// Update replaces a story's fields and associations.
func (service *Service) Update(context context.Context, claims *sec.AuthClaims, id string, input Input) (*Story, error) {
	story, err := service.repo.GetByID(context, id)
	if err != nil {
		return nil, err
	}

	if err := service.fandoms.Authorize(context, claims, story.FandomID); err != nil {
		return nil, err
	}

	if err := service.validateInput(context, claims, story.FandomID, input); err != nil {
		return nil, err
	}

	story.Title = input.Title
	story.Author = input.Author
	story.Summary = input.Summary
	story.SourceURL = input.SourceURL
	story.WordCount = input.WordCount
	story.Status = Status(input.Status)
	story.Rating = Rating(input.Rating)
	story.Language = normalizeLanguage(input.Language)
	story.PublishedAt = input.PublishedAt
	story.TagIDs = input.TagIDs
	story.PlotBlockIDs = input.PlotBlockIDs
	story.UpdatedAt = time.Now().UTC()

	if err := service.repo.Update(context, story); err != nil {
		return nil, err
	}

	service.record(context, claims.UserID, audit.ActionUpdate, story.ID, story.FandomID, nil)
	service.invalidateIndex(context, story.FandomID)
	return story, nil
}

// SetActive toggles a story's soft-activation flag.
func (service *Service) SetActive(context context.Context, claims *sec.AuthClaims, id string, active bool) error {
	story, err := service.repo.GetByID(context, id)
	if err != nil {
		return err
	}

	if err := service.fandoms.Authorize(context, claims, story.FandomID); err != nil {
		return err
	}

	if err := service.repo.SetActive(context, id, active); err != nil {
		return err
	}

	action := audit.ActionDeactivate
	if active {
		action = audit.ActionActivate
	}
	service.record(context, claims.UserID, action, id, story.FandomID, nil)
	service.invalidateIndex(context, story.FandomID)
	return nil
}

// invalidateIndex drops the cached candidate set, logging (never
// propagating) failures. A stale index self-heals via its TTL anyway.
func (service *Service) invalidateIndex(context context.Context, fandomID string) {
	if service.invalidator == nil {
		return
	}
	if err := service.invalidator.Invalidate(context, fandomID); err != nil {
		service.logger.WarnContext(context, "story_index_invalidate_failed",
			slog.String("fandom_id", fandomID),
			slog.Any("error", err),
		)
	}
}

// validateInput runs shape checks plus taxonomy referential checks.
func (service *Service) validateInput(context context.Context, claims *sec.AuthClaims, fandomID string, input Input) error {
	v := &validate.Validator{}
	if err := v.
		Required(FieldTitle, input.Title).
		MaxLen(FieldTitle, input.Title, 300).
		Required(FieldAuthor, input.Author).
		MaxLen(FieldAuthor, input.Author, 160).
		Required(FieldSourceURL, input.SourceURL).
		Custom(FieldWordCount, input.WordCount < 0, "Must not be negative").
		OneOf(FieldStatus, input.Status, Statuses...).
		OneOf(FieldRating, input.Rating, Ratings...).
		Err(); err != nil {
		return err
	}

	// Tag references must resolve within the story's fandom
	if len(input.TagIDs) > 0 {
		tags, err := service.taxonomy.ListTags(context, claims, fandomID)
		if err != nil {
			return err
		}
		known := make(map[string]bool, len(tags))
		for _, tag := range tags {
			known[tag.ID] = true
		}
		for _, tagID := range input.TagIDs {
			if !known[tagID] {
				return validate.RequiredError("tag_ids", "Referenced tag does not exist in this fandom: "+tagID)
			}
		}
	}

	// Plot block references must resolve within the story's fandom
	if len(input.PlotBlockIDs) > 0 {
		blocks, err := service.taxonomy.ListPlotBlocksFlat(context, fandomID)
		if err != nil {
			return err
		}
		known := make(map[string]bool, len(blocks))
		for _, block := range blocks {
			known[block.ID] = true
		}
		for _, blockID := range input.PlotBlockIDs {
			if !known[blockID] {
				return validate.RequiredError("plot_block_ids", "Referenced plot block does not exist in this fandom: "+blockID)
			}
		}
	}

	return nil
}

// normalizeLanguage defaults missing language codes to English.
func normalizeLanguage(language string) string {
	if language == "" {
		return "en"
	}
	return language
}

// record writes an audit entry, logging (never propagating) failures.
func (service *Service) record(context context.Context, actorID string, action audit.Action, storyID, fandomID string, detail map[string]any) {
	entry := audit.Entry{
		ActorID:    actorID,
		Action:     action,
		EntityType: audit.EntityStory,
		EntityID:   storyID,
		FandomID:   &fandomID,
		Detail:     detail,
	}

	if err := service.auditor.Record(context, entry); err != nil {
		service.logger.ErrorContext(context, "audit_record_failed",
			slog.String("action", string(action)),
			slog.String("entity_id", storyID),
			slog.Any("error", err),
		)
	}
}
