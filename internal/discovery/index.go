// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/thepensieveindex/pensieve-api/internal/core/story"
	"github.com/thepensieveindex/pensieve-api/internal/platform/constants"
)

// StoryIndex serves the scorer's candidate sets from a short-lived Redis
// cache of each fandom's active corpus.
//
// The full per-fandom story list (metadata plus association ID sets) caches
// under [constants.StoryIndexTTL]; hard filters then apply in memory. This
// keeps repeat searches against the same fandom off the database, which is
// what holds interactive search inside its latency budget. Cache failures
// degrade to a direct corpus read, never to a failed request.
type StoryIndex struct {
	stories *story.Service
	redis   *redis.Client
	logger  *slog.Logger
}

// NewStoryIndex constructs a [StoryIndex] with its dependencies.
func NewStoryIndex(stories *story.Service, client *redis.Client, logger *slog.Logger) *StoryIndex {
	return &StoryIndex{
		stories: stories,
		redis:   client,
		logger:  logger,
	}
}

/*
Candidates returns the fandom's active stories passing the hard filters.

Description: On a cache hit the filters evaluate in memory against the cached
index. On a miss (or any Redis failure) the unfiltered corpus loads from
postgres, repopulates the cache best-effort, and filters in memory, so both
paths return identical results.

Parameters:
  - context: context.Context
  - fandomID: string
  - filters: story.Filters

Returns:
  - []*story.Story: Filtered candidates, newest publication first
  - error: Storage errors from the postgres fallback only
*/
func (index *StoryIndex) Candidates(context context.Context, fandomID string, filters story.Filters) ([]*story.Story, error) {
	key := constants.RedisPrefixStoryIndex + fandomID

	cached, err := index.redis.Get(context, key).Bytes()
	if err == nil {
		var stories []*story.Story
		if err := json.Unmarshal(cached, &stories); err == nil {
			return applyFilters(stories, filters), nil
		}
		// Corrupt entry; fall through to a rebuild
		index.logger.WarnContext(context, "story_index_corrupt", slog.String("fandom_id", fandomID))
	} else if !errors.Is(err, redis.Nil) {
		index.logger.WarnContext(context, "story_index_read_failed",
			slog.String("fandom_id", fandomID),
			slog.Any("error", err),
		)
	}

	// Cache miss: load the whole active corpus once and cache it unfiltered
	stories, err := index.stories.Candidates(context, fandomID, story.Filters{})
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(stories); err == nil {
		if err := index.redis.Set(context, key, payload, constants.StoryIndexTTL).Err(); err != nil {
			index.logger.WarnContext(context, "story_index_write_failed",
				slog.String("fandom_id", fandomID),
				slog.Any("error", err),
			)
		}
	}

	return applyFilters(stories, filters), nil
}

// Invalidate drops a fandom's cached index. Admin story writes call this so
// searches see mutations before the TTL would expire them.
func (index *StoryIndex) Invalidate(context context.Context, fandomID string) error {
	if err := index.redis.Del(context, constants.RedisPrefixStoryIndex+fandomID).Err(); err != nil {
		index.logger.WarnContext(context, "story_index_invalidate_failed",
			slog.String("fandom_id", fandomID),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}

// applyFilters evaluates the hard filters in memory, preserving order.
func applyFilters(stories []*story.Story, filters story.Filters) []*story.Story {
	result := make([]*story.Story, 0, len(stories))
	for _, candidate := range stories {
		if matchesFilters(candidate, filters) {
			result = append(result, candidate)
		}
	}
	return result
}

// matchesFilters mirrors the SQL hard-filter semantics of the story store.
func matchesFilters(candidate *story.Story, filters story.Filters) bool {
	if filters.MinWordCount != nil && candidate.WordCount < *filters.MinWordCount {
		return false
	}
	if filters.MaxWordCount != nil && candidate.WordCount > *filters.MaxWordCount {
		return false
	}
	if len(filters.Statuses) > 0 && !slices.Contains(filters.Statuses, string(candidate.Status)) {
		return false
	}
	if len(filters.Ratings) > 0 && !slices.Contains(filters.Ratings, string(candidate.Rating)) {
		return false
	}
	if filters.Language != nil && candidate.Language != *filters.Language {
		return false
	}
	return true
}
