// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package story

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thepensieveindex/pensieve-api/internal/platform/dberr"
	"github.com/thepensieveindex/pensieve-api/pkg/pagination"
)

// PostgresRepository implements [Repository] using a pgxpool.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository returns a fully wired postgres implementation.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// storySelect hydrates stories with their association ID sets in one query.
// The FILTER clauses keep empty associations as empty arrays, not [NULL].
const storySelect = `
	SELECT s.id, s.fandomid, s.title, s.author, s.summary, s.sourceurl, s.wordcount,
		s.status, s.rating, s.language, s.publishedat, s.isactive, s.createdat, s.updatedat,
		COALESCE(array_agg(DISTINCT st.tagid) FILTER (WHERE st.tagid IS NOT NULL), '{}'),
		COALESCE(array_agg(DISTINCT sp.plotblockid) FILTER (WHERE sp.plotblockid IS NOT NULL), '{}')
	FROM core.story s
	LEFT JOIN core.storytag st ON st.storyid = s.id
	LEFT JOIN core.storyplotblock sp ON sp.storyid = s.id
`

/*
ListByFandom retrieves one page of a fandom's stories.

Description: Ordered newest publication first with ID as a stable tiebreak,
matching the determinism contract of search results.

Parameters:
  - context: context.Context
  - fandomID: string
  - includeInactive: bool
  - params: pagination.Params

Returns:
  - []*Story: One page of stories
  - int: Total matching count
  - error: Database execution or scanning errors
*/
func (repository *PostgresRepository) ListByFandom(context context.Context, fandomID string, includeInactive bool, params pagination.Params) ([]*Story, int, error) {

	activeClause := " AND s.isactive = TRUE"
	if includeInactive {
		activeClause = ""
	}

	// Count first so pagination metadata is exact
	countQuery := `SELECT COUNT(*) FROM core.story s WHERE s.fandomid = $1` + activeClause + `;`

	var total int
	if err := repository.db.QueryRow(context, countQuery, fandomID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_stories")
	}

	query := storySelect + `
		WHERE s.fandomid = $1` + activeClause + `
		GROUP BY s.id
		ORDER BY s.publishedat DESC, s.id ASC
		LIMIT $2 OFFSET $3;
	`

	rows, err := repository.db.Query(context, query, fandomID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_stories")
	}
	defer rows.Close()

	stories, err := collectStories(rows)
	if err != nil {
		return nil, 0, err
	}

	return stories, total, nil
}

/*
GetByID retrieves a story by its primary key with associations hydrated.

Returns:
  - *Story: The hydrated entity
  - error: Not found or execution errors
*/
func (repository *PostgresRepository) GetByID(context context.Context, id string) (*Story, error) {

	query := storySelect + `
		WHERE s.id = $1
		GROUP BY s.id;
	`

	rows, err := repository.db.Query(context, query, id)
	if err != nil {
		return nil, dberr.Wrap(err, "get_story")
	}
	defer rows.Close()

	stories, err := collectStories(rows)
	if err != nil {
		return nil, err
	}
	if len(stories) == 0 {
		return nil, dberr.ErrNotFound
	}

	return stories[0], nil
}

/*
ListCandidates retrieves the scorer's candidate set for one fandom.

Description: Hard filters (word count range, status, rating, language) apply
in SQL so relevance scoring only touches rows that can actually appear in
results. The WHERE clause is assembled from fixed fragments with positional
parameters; no caller input is interpolated.

Parameters:
  - context: context.Context
  - fandomID: string
  - filters: Filters

Returns:
  - []*Story: Active stories passing the hard filters, associations hydrated
  - error: Database execution or scanning errors
*/
func (repository *PostgresRepository) ListCandidates(context context.Context, fandomID string, filters Filters) ([]*Story, error) {

	// Assemble filter clauses with positional parameters
	clauses := []string{"s.fandomid = $1", "s.isactive = TRUE"}
	args := []any{fandomID}

	addClause := func(fragment string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(fragment, len(args)))
	}

	if filters.MinWordCount != nil {
		addClause("s.wordcount >= $%d", *filters.MinWordCount)
	}
	if filters.MaxWordCount != nil {
		addClause("s.wordcount <= $%d", *filters.MaxWordCount)
	}
	if len(filters.Statuses) > 0 {
		addClause("s.status = ANY($%d)", filters.Statuses)
	}
	if len(filters.Ratings) > 0 {
		addClause("s.rating = ANY($%d)", filters.Ratings)
	}
	if filters.Language != nil {
		addClause("s.language = $%d", *filters.Language)
	}

	query := storySelect + `
		WHERE ` + strings.Join(clauses, " AND ") + `
		GROUP BY s.id
		ORDER BY s.publishedat DESC, s.id ASC;
	`

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list_story_candidates")
	}
	defer rows.Close()

	return collectStories(rows)
}

/*
Create persists a story and its association rows in one transaction.

Returns:
  - error: Conflict on duplicate source URL, or execution errors
*/
func (repository *PostgresRepository) Create(context context.Context, story *Story) error {
	return repository.inTx(context, "create_story", func(tx pgx.Tx) error {

		const insertStory = `
			INSERT INTO core.story (id, fandomid, title, author, summary, sourceurl, wordcount,
				status, rating, language, publishedat, isactive, createdat, updatedat)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
		`

		_, err := tx.Exec(context, insertStory,
			story.ID, story.FandomID, story.Title, story.Author, story.Summary, story.SourceURL,
			story.WordCount, string(story.Status), string(story.Rating), story.Language,
			story.PublishedAt, story.IsActive, story.CreatedAt, story.UpdatedAt,
		)
		if err != nil {
			return err
		}

		return insertAssociations(context, tx, story)
	})
}

/*
Update overwrites a story's fields and replaces its association rows in one
transaction.

Returns:
  - error: Not found or execution errors
*/
func (repository *PostgresRepository) Update(context context.Context, story *Story) error {
	return repository.inTx(context, "update_story", func(tx pgx.Tx) error {

		const updateStory = `
			UPDATE core.story
			SET title = $2, author = $3, summary = $4, sourceurl = $5, wordcount = $6,
				status = $7, rating = $8, language = $9, publishedat = $10, updatedat = $11
			WHERE id = $1;
		`

		result, err := tx.Exec(context, updateStory,
			story.ID, story.Title, story.Author, story.Summary, story.SourceURL,
			story.WordCount, string(story.Status), string(story.Rating), story.Language,
			story.PublishedAt, story.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if result.RowsAffected() == 0 {
			return dberr.ErrNotFound
		}

		// Replace association rows wholesale
		if _, err := tx.Exec(context, `DELETE FROM core.storytag WHERE storyid = $1;`, story.ID); err != nil {
			return err
		}
		if _, err := tx.Exec(context, `DELETE FROM core.storyplotblock WHERE storyid = $1;`, story.ID); err != nil {
			return err
		}

		return insertAssociations(context, tx, story)
	})
}

/*
SetActive toggles the soft-activation flag.

Returns:
  - error: Not found or execution errors
*/
func (repository *PostgresRepository) SetActive(context context.Context, id string, active bool) error {

	const query = `
		UPDATE core.story
		SET isactive = $2, updatedat = NOW()
		WHERE id = $1;
	`

	result, err := repository.db.Exec(context, query, id, active)
	if err != nil {
		return dberr.Wrap(err, "set_story_active")
	}

	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

// # Internals

// inTx runs fn inside a transaction, wrapping any failure under op.
func (repository *PostgresRepository) inTx(context context.Context, op string, fn func(tx pgx.Tx) error) error {
	tx, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, op)
	}
	defer func() { _ = tx.Rollback(context) }()

	if err := fn(tx); err != nil {
		return dberr.Wrap(err, op)
	}

	return dberr.Wrap(tx.Commit(context), op)
}

// insertAssociations writes the story's join rows.
func insertAssociations(context context.Context, tx pgx.Tx, story *Story) error {
	for _, tagID := range story.TagIDs {
		if _, err := tx.Exec(context,
			`INSERT INTO core.storytag (storyid, tagid) VALUES ($1, $2);`, story.ID, tagID); err != nil {
			return err
		}
	}

	for _, blockID := range story.PlotBlockIDs {
		if _, err := tx.Exec(context,
			`INSERT INTO core.storyplotblock (storyid, plotblockid) VALUES ($1, $2);`, story.ID, blockID); err != nil {
			return err
		}
	}

	return nil
}

// collectStories drains rows into hydrated entities.
func collectStories(rows pgx.Rows) ([]*Story, error) {
	var stories []*Story
	for rows.Next() {
		story := &Story{}
		var status, rating string
		err := rows.Scan(
			&story.ID, &story.FandomID, &story.Title, &story.Author, &story.Summary,
			&story.SourceURL, &story.WordCount, &status, &rating, &story.Language,
			&story.PublishedAt, &story.IsActive, &story.CreatedAt, &story.UpdatedAt,
			&story.TagIDs, &story.PlotBlockIDs,
		)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_story")
		}
		story.Status = Status(status)
		story.Rating = Rating(rating)
		stories = append(stories, story)
	}

	return stories, nil
}

var _ Repository = (*PostgresRepository)(nil)
