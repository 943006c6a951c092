// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package discovery

import (
	"context"
	"log/slog"
	"time"

	"github.com/thepensieveindex/pensieve-api/internal/core/fandom"
	"github.com/thepensieveindex/pensieve-api/internal/core/story"
	"github.com/thepensieveindex/pensieve-api/internal/core/taxonomy"
	"github.com/thepensieveindex/pensieve-api/internal/platform/apperr"
	"github.com/thepensieveindex/pensieve-api/internal/platform/constants"
	"github.com/thepensieveindex/pensieve-api/internal/platform/validate"
	"github.com/thepensieveindex/pensieve-api/pkg/slice"
)

// Service orchestrates the discovery pipeline: resolve, validate, analyze,
// score, prompt. Every dependency is injected so the pipeline tests without
// live storage.
type Service struct {
	fandoms   *fandom.Service
	taxonomy  *taxonomy.Service
	resolver  *Resolver
	validator *Validator
	analyzer  *Analyzer
	scorer    *Scorer
	prompts   *PromptGenerator
	snapshots *SnapshotStore
	index     *StoryIndex
	logger    *slog.Logger
}

// NewService constructs the discovery [Service] with its dependencies.
func NewService(
	fandoms *fandom.Service,
	taxonomySvc *taxonomy.Service,
	resolver *Resolver,
	validator *Validator,
	analyzer *Analyzer,
	scorer *Scorer,
	prompts *PromptGenerator,
	snapshots *SnapshotStore,
	index *StoryIndex,
	logger *slog.Logger,
) *Service {
	return &Service{
		fandoms:   fandoms,
		taxonomy:  taxonomySvc,
		resolver:  resolver,
		validator: validator,
		analyzer:  analyzer,
		scorer:    scorer,
		prompts:   prompts,
		snapshots: snapshots,
		index:     index,
		logger:    logger,
	}
}

// # Pathway Validation

/*
ValidatePathway runs the full validation pipeline for one pathway.

Description: Resolves the pathway against the fandom's taxonomy, evaluates
every active rule, derives the quality heuristics, and merges rule-produced
suggestions with completeness-driven completion suggestions. Novelty uses the
current corpus match count, served from the story index.

Parameters:
  - context: context.Context
  - fandomID: string
  - items: []PathwayItem
  - userID: string (empty for anonymous callers; logged, not gating)

Returns:
  - *ValidateResponse: Complete response shape, never partial
  - error: Request-shape (400), unknown fandom (404), or storage errors
*/
func (service *Service) ValidatePathway(context context.Context, fandomID string, items []PathwayItem, userID string) (*ValidateResponse, error) {
	started := time.Now()

	fandomEntity, err := service.checkRequest(context, fandomID, items)
	if err != nil {
		return nil, err
	}

	path, err := service.resolver.Resolve(context, fandomID, items)
	if err != nil {
		return nil, err
	}

	validation, ruleCount, err := service.validator.Validate(context, fandomID, path)
	if err != nil {
		return nil, err
	}

	matchCount, candidateCount := service.matchCount(context, fandomID, path)
	analysis := service.analyzer.Analyze(path, matchCount)

	// Top-level suggestions merge rule advice with completeness advice
	suggestions := append([]Suggestion{}, validation.Suggestions...)
	suggestions = append(suggestions, service.safePrompt(context, fandomEntity.Name, path, analysis, nil).CompletionSuggestions...)

	service.logger.InfoContext(context, "pathway_validated",
		slog.String("fandom_id", fandomID),
		slog.String("user_id", userID),
		slog.Int("item_count", len(items)),
		slog.Bool("is_valid", validation.IsValid),
	)

	return &ValidateResponse{
		Validation:  validation,
		Analysis:    analysis,
		Suggestions: suggestions,
		Metadata: Metadata{
			FandomID:        fandomID,
			RuleCount:       ruleCount,
			CandidateCount:  candidateCount,
			ProcessedInMS:   time.Since(started).Milliseconds(),
			UnresolvedItems: path.Unresolved,
		},
	}, nil
}

// # Story Search

/*
Search scores the fandom's corpus against the pathway.

Description: Hard filters narrow the candidate set before scoring; relevance
ordering and truncation follow the scorer's deterministic contract. Prompt
generation is isolated: if it fails, the response carries empty prompt fields
and search results are returned anyway.

Parameters:
  - context: context.Context
  - fandomID: string
  - items: []PathwayItem
  - filters: story.Filters
  - limit: int (clamped to [1, constants.MaxSearchLimit]; 0 means default)

Returns:
  - *SearchResponse: Complete response shape
  - error: Request-shape (400), unknown fandom (404), or storage errors
*/
func (service *Service) Search(context context.Context, fandomID string, items []PathwayItem, filters story.Filters, limit int) (*SearchResponse, error) {
	started := time.Now()

	fandomEntity, err := service.checkRequest(context, fandomID, items)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = constants.DefaultSearchLimit
	}
	if limit > constants.MaxSearchLimit {
		limit = constants.MaxSearchLimit
	}

	path, err := service.resolver.Resolve(context, fandomID, items)
	if err != nil {
		return nil, err
	}

	candidates, err := service.index.Candidates(context, fandomID, filters)
	if err != nil {
		return nil, err
	}

	scored, fullMatches := service.scorer.Score(candidates, path)
	analysis := service.analyzer.Analyze(path, fullMatches)

	total := len(scored)
	page := scored
	if len(page) > limit {
		page = page[:limit]
	}

	prompt := service.safePrompt(context, fandomEntity.Name, path, analysis, scored)

	service.logger.InfoContext(context, "pathway_search",
		slog.String("fandom_id", fandomID),
		slog.Int("candidates", len(candidates)),
		slog.Int("results", total),
		slog.Int64("elapsed_ms", time.Since(started).Milliseconds()),
	)

	return &SearchResponse{
		Search: SearchPayload{
			Results: SearchResults{
				Stories: page,
				Total:   total,
				HasMore: total > limit,
			},
			Prompt: prompt,
		},
		Analysis: analysis,
		Metadata: Metadata{
			FandomID:        fandomID,
			CandidateCount:  len(candidates),
			ProcessedInMS:   time.Since(started).Milliseconds(),
			UnresolvedItems: path.Unresolved,
		},
	}, nil
}

// # Pathway Builder Elements

// Elements is the taxonomy payload consumed by the pathway-builder UI.
type Elements struct {
	FandomID   string                        `json:"fandom_id"`
	Tags       map[string][]*taxonomy.Tag    `json:"tags"`
	PlotBlocks []*taxonomy.PlotBlockNode     `json:"plot_blocks"`
	TagClasses map[string]*taxonomy.TagClass `json:"tag_classes"`
}

/*
FandomElements returns everything the pathway builder needs for one fandom:
active tags grouped by category, the plot-block forest, and the tag classes
referenced by those tags.

Parameters:
  - context: context.Context
  - fandomID: string
  - categories: []string (empty means all tag categories)

Returns:
  - *Elements: Builder payload
  - error: Unknown fandom (404) or storage errors
*/
func (service *Service) FandomElements(context context.Context, fandomID string, categories []string) (*Elements, error) {
	if _, err := service.fandoms.Get(context, fandomID); err != nil {
		return nil, err
	}

	tags, err := service.taxonomy.ListTags(context, nil, fandomID)
	if err != nil {
		return nil, err
	}

	if len(categories) > 0 {
		wanted := make(map[string]bool, len(categories))
		for _, category := range categories {
			wanted[category] = true
		}
		tags = slice.Filter(tags, func(tag *taxonomy.Tag) bool {
			return wanted[string(tag.Category)]
		})
	}

	forest, err := service.taxonomy.ListPlotBlocks(context, nil, fandomID)
	if err != nil {
		return nil, err
	}

	classes, err := service.taxonomy.ListTagClasses(context, nil, fandomID)
	if err != nil {
		return nil, err
	}

	grouped := map[string][]*taxonomy.Tag{}
	for _, tag := range tags {
		grouped[string(tag.Category)] = append(grouped[string(tag.Category)], tag)
	}

	classIndex := make(map[string]*taxonomy.TagClass, len(classes))
	for _, class := range classes {
		classIndex[class.ID] = class
	}

	return &Elements{
		FandomID:   fandomID,
		Tags:       grouped,
		PlotBlocks: forest,
		TagClasses: classIndex,
	}, nil
}

// # Shared Pathways

// ShareResult carries both handles for a shared pathway: the short Redis
// identifier and the stateless token.
type ShareResult struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

// Share persists a pathway snapshot for link sharing.
func (service *Service) Share(context context.Context, fandomID string, items []PathwayItem) (*ShareResult, error) {
	if _, err := service.checkRequest(context, fandomID, items); err != nil {
		return nil, err
	}

	id, err := service.snapshots.Save(context, fandomID, items)
	if err != nil {
		return nil, err
	}

	token, err := EncodeSnapshot(fandomID, items)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &ShareResult{ID: id, Token: token}, nil
}

// SharedPathwayResponse is the body of GET /discovery/pathways/{id}.
type SharedPathwayResponse struct {
	FandomID string        `json:"fandom_id"`
	Items    []PathwayItem `json:"items"`
	ValidateResponse
}

// LoadShared resolves a share identifier (or stateless token) and re-runs
// the full validation pipeline against current fandom state.
func (service *Service) LoadShared(context context.Context, id string) (*SharedPathwayResponse, error) {
	snapshot, err := service.snapshots.Load(context, id)
	if err != nil {
		return nil, err
	}

	response, err := service.ValidatePathway(context, snapshot.FandomID, snapshot.Items, "")
	if err != nil {
		return nil, err
	}

	return &SharedPathwayResponse{
		FandomID:         snapshot.FandomID,
		Items:            snapshot.Items,
		ValidateResponse: *response,
	}, nil
}

// # Internals

// checkRequest enforces the request-shape contract shared by every
// discovery operation and resolves the fandom.
func (service *Service) checkRequest(context context.Context, fandomID string, items []PathwayItem) (*fandom.Fandom, error) {
	if fandomID == "" {
		return nil, validate.RequiredError("fandom_id", "This field is required")
	}
	if len(items) > constants.MaxPathwayItems {
		return nil, apperr.Unprocessable("Pathway exceeds the maximum number of items")
	}

	return service.fandoms.Get(context, fandomID)
}

// matchCount derives the full-match story count feeding novelty. Index
// failures degrade to zero matches; validation never fails on corpus reads.
func (service *Service) matchCount(context context.Context, fandomID string, path *ResolvedPathway) (int, int) {
	if len(path.Items) == 0 {
		return 0, 0
	}

	candidates, err := service.index.Candidates(context, fandomID, story.Filters{})
	if err != nil {
		service.logger.WarnContext(context, "novelty_candidates_unavailable",
			slog.String("fandom_id", fandomID),
			slog.Any("error", err),
		)
		return 0, 0
	}

	_, fullMatches := service.scorer.Score(candidates, path)
	return fullMatches, len(candidates)
}

// safePrompt isolates prompt generation; a panic there degrades to empty
// prompt fields instead of failing the request.
func (service *Service) safePrompt(context context.Context, fandomName string, path *ResolvedPathway, analysis Analysis, scored []ScoredStory) (prompt Prompt) {
	defer func() {
		if recovered := recover(); recovered != nil {
			service.logger.ErrorContext(context, "prompt_generation_failed",
				slog.Any("panic", recovered),
			)
			prompt = Prompt{NoveltyHighlights: []string{}, CompletionSuggestions: []Suggestion{}}
		}
	}()

	return service.prompts.Generate(fandomName, path, analysis, scored)
}
