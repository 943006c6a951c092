// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package taxonomy

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thepensieveindex/pensieve-api/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using a pgxpool.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository returns a fully wired postgres implementation.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// # Tags

const tagColumns = `id, fandomid, name, slug, description, category, tagclassid,
	requirestags, enhancestags, isactive, createdat, updatedat`

/*
ListTags retrieves a fandom's tag vocabulary.

Parameters:
  - context: context.Context
  - fandomID: string
  - includeInactive: bool

Returns:
  - []*Tag: Tags ordered by category then name
  - error: Database execution or scanning errors
*/
func (repository *PostgresRepository) ListTags(context context.Context, fandomID string, includeInactive bool) ([]*Tag, error) {

	// Define vocabulary retrieval query
	query := `
		SELECT ` + tagColumns + `
		FROM core.tag
		WHERE fandomid = $1
		ORDER BY category ASC, name ASC;
	`
	if !includeInactive {
		query = `
			SELECT ` + tagColumns + `
			FROM core.tag
			WHERE fandomid = $1 AND isactive = TRUE
			ORDER BY category ASC, name ASC;
		`
	}

	rows, err := repository.db.Query(context, query, fandomID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_tags")
	}
	defer rows.Close()

	// Iterate results and hydrate entity slice
	var tags []*Tag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	return tags, nil
}

/*
GetTag retrieves a tag by its primary key.

Returns:
  - *Tag: The hydrated tag entity
  - error: Not found or execution errors
*/
func (repository *PostgresRepository) GetTag(context context.Context, id string) (*Tag, error) {

	const query = `
		SELECT ` + tagColumns + `
		FROM core.tag
		WHERE id = $1;
	`

	tag, err := scanTag(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, err
	}

	return tag, nil
}

/*
GetTagsByIDs retrieves the subset of the given IDs that exist.

Description: Used by the discovery engine to resolve pathway references in a
single round trip. Unknown IDs are simply absent from the result; the caller
decides whether that is an error.
*/
func (repository *PostgresRepository) GetTagsByIDs(context context.Context, ids []string) ([]*Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	const query = `
		SELECT ` + tagColumns + `
		FROM core.tag
		WHERE id = ANY($1);
	`

	rows, err := repository.db.Query(context, query, ids)
	if err != nil {
		return nil, dberr.Wrap(err, "get_tags_by_ids")
	}
	defer rows.Close()

	var tags []*Tag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	return tags, nil
}

/*
CreateTag persists a new tag record.

Returns:
  - error: Conflict on duplicate (fandom, slug), or execution errors
*/
func (repository *PostgresRepository) CreateTag(context context.Context, tag *Tag) error {

	const query = `
		INSERT INTO core.tag (id, fandomid, name, slug, description, category, tagclassid,
			requirestags, enhancestags, isactive, createdat, updatedat)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`

	_, err := repository.db.Exec(context, query,
		tag.ID, tag.FandomID, tag.Name, tag.Slug, tag.Description, string(tag.Category),
		tag.TagClassID, tag.RequiresTags, tag.EnhancesTags, tag.IsActive, tag.CreatedAt, tag.UpdatedAt,
	)

	return dberr.Wrap(err, "create_tag")
}

/*
UpdateTag applies modifications to an existing tag record.

Returns:
  - error: Not found or execution errors
*/
func (repository *PostgresRepository) UpdateTag(context context.Context, tag *Tag) error {

	const query = `
		UPDATE core.tag
		SET name = $2, slug = $3, description = $4, category = $5, tagclassid = $6,
			requirestags = $7, enhancestags = $8, updatedat = $9
		WHERE id = $1;
	`

	result, err := repository.db.Exec(context, query,
		tag.ID, tag.Name, tag.Slug, tag.Description, string(tag.Category),
		tag.TagClassID, tag.RequiresTags, tag.EnhancesTags, tag.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "update_tag")
	}

	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

// SetTagActive toggles the soft-activation flag on a tag.
func (repository *PostgresRepository) SetTagActive(context context.Context, id string, active bool) error {
	return repository.setActive(context, "core.tag", "set_tag_active", id, active)
}

// # Tag Classes

/*
ListTagClasses retrieves a fandom's tag classes.

Returns:
  - []*TagClass: Classes ordered by name
  - error: Database execution or scanning errors
*/
func (repository *PostgresRepository) ListTagClasses(context context.Context, fandomID string, includeInactive bool) ([]*TagClass, error) {

	query := `
		SELECT id, fandomid, name, description, constraintrules, isactive, createdat, updatedat
		FROM core.tagclass
		WHERE fandomid = $1
		ORDER BY name ASC;
	`
	if !includeInactive {
		query = `
			SELECT id, fandomid, name, description, constraintrules, isactive, createdat, updatedat
			FROM core.tagclass
			WHERE fandomid = $1 AND isactive = TRUE
			ORDER BY name ASC;
		`
	}

	rows, err := repository.db.Query(context, query, fandomID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_tag_classes")
	}
	defer rows.Close()

	var classes []*TagClass
	for rows.Next() {
		class, err := scanTagClass(rows)
		if err != nil {
			return nil, err
		}
		classes = append(classes, class)
	}

	return classes, nil
}

/*
GetTagClass retrieves a tag class by its primary key.

Returns:
  - *TagClass: The hydrated class entity
  - error: Not found or execution errors
*/
func (repository *PostgresRepository) GetTagClass(context context.Context, id string) (*TagClass, error) {

	const query = `
		SELECT id, fandomid, name, description, constraintrules, isactive, createdat, updatedat
		FROM core.tagclass
		WHERE id = $1;
	`

	class, err := scanTagClass(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, err
	}

	return class, nil
}

/*
CreateTagClass persists a new tag class record.

Returns:
  - error: Conflict on duplicate (fandom, name), or execution errors
*/
func (repository *PostgresRepository) CreateTagClass(context context.Context, class *TagClass) error {

	// Serialize the constraint payload for the JSONB column
	constraintJSON, err := json.Marshal(class.Constraint)
	if err != nil {
		return dberr.Wrap(err, "marshal_tag_class_constraint")
	}

	const query = `
		INSERT INTO core.tagclass (id, fandomid, name, description, constraintrules, isactive, createdat, updatedat)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`

	_, err = repository.db.Exec(context, query,
		class.ID, class.FandomID, class.Name, class.Description, constraintJSON,
		class.IsActive, class.CreatedAt, class.UpdatedAt,
	)

	return dberr.Wrap(err, "create_tag_class")
}

/*
UpdateTagClass applies modifications to an existing tag class record.

Returns:
  - error: Not found or execution errors
*/
func (repository *PostgresRepository) UpdateTagClass(context context.Context, class *TagClass) error {

	constraintJSON, err := json.Marshal(class.Constraint)
	if err != nil {
		return dberr.Wrap(err, "marshal_tag_class_constraint")
	}

	const query = `
		UPDATE core.tagclass
		SET name = $2, description = $3, constraintrules = $4, updatedat = $5
		WHERE id = $1;
	`

	result, err := repository.db.Exec(context, query,
		class.ID, class.Name, class.Description, constraintJSON, class.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "update_tag_class")
	}

	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

// SetTagClassActive toggles the soft-activation flag on a tag class.
func (repository *PostgresRepository) SetTagClassActive(context context.Context, id string, active bool) error {
	return repository.setActive(context, "core.tagclass", "set_tag_class_active", id, active)
}

// # Plot Blocks

const plotBlockColumns = `id, fandomid, name, slug, description, category, parentid,
	conflictswith, requirestags, enhancestags, isactive, createdat, updatedat`

/*
ListPlotBlocks retrieves a fandom's plot blocks as a flat slice.

Description: Tree assembly happens in the service layer via [BuildForest];
storage only guarantees stable name ordering.
*/
func (repository *PostgresRepository) ListPlotBlocks(context context.Context, fandomID string, includeInactive bool) ([]*PlotBlock, error) {

	query := `
		SELECT ` + plotBlockColumns + `
		FROM core.plotblock
		WHERE fandomid = $1
		ORDER BY name ASC;
	`
	if !includeInactive {
		query = `
			SELECT ` + plotBlockColumns + `
			FROM core.plotblock
			WHERE fandomid = $1 AND isactive = TRUE
			ORDER BY name ASC;
		`
	}

	rows, err := repository.db.Query(context, query, fandomID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_plot_blocks")
	}
	defer rows.Close()

	var blocks []*PlotBlock
	for rows.Next() {
		block, err := scanPlotBlock(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}

	return blocks, nil
}

/*
GetPlotBlock retrieves a plot block by its primary key.

Returns:
  - *PlotBlock: The hydrated entity
  - error: Not found or execution errors
*/
func (repository *PostgresRepository) GetPlotBlock(context context.Context, id string) (*PlotBlock, error) {

	const query = `
		SELECT ` + plotBlockColumns + `
		FROM core.plotblock
		WHERE id = $1;
	`

	block, err := scanPlotBlock(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, err
	}

	return block, nil
}

/*
CreatePlotBlock persists a new plot block record.

Returns:
  - error: Conflict on duplicate (fandom, slug), or execution errors
*/
func (repository *PostgresRepository) CreatePlotBlock(context context.Context, block *PlotBlock) error {

	const query = `
		INSERT INTO core.plotblock (id, fandomid, name, slug, description, category, parentid,
			conflictswith, requirestags, enhancestags, isactive, createdat, updatedat)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`

	_, err := repository.db.Exec(context, query,
		block.ID, block.FandomID, block.Name, block.Slug, block.Description, string(block.Category),
		block.ParentID, block.ConflictsWith, block.RequiresTags, block.EnhancesTags,
		block.IsActive, block.CreatedAt, block.UpdatedAt,
	)

	return dberr.Wrap(err, "create_plot_block")
}

/*
UpdatePlotBlock applies modifications to an existing plot block record.

Returns:
  - error: Not found or execution errors
*/
func (repository *PostgresRepository) UpdatePlotBlock(context context.Context, block *PlotBlock) error {

	const query = `
		UPDATE core.plotblock
		SET name = $2, slug = $3, description = $4, category = $5, parentid = $6,
			conflictswith = $7, requirestags = $8, enhancestags = $9, updatedat = $10
		WHERE id = $1;
	`

	result, err := repository.db.Exec(context, query,
		block.ID, block.Name, block.Slug, block.Description, string(block.Category),
		block.ParentID, block.ConflictsWith, block.RequiresTags, block.EnhancesTags, block.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "update_plot_block")
	}

	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

// SetPlotBlockActive toggles the soft-activation flag on a plot block.
func (repository *PostgresRepository) SetPlotBlockActive(context context.Context, id string, active bool) error {
	return repository.setActive(context, "core.plotblock", "set_plot_block_active", id, active)
}

// # Internals

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTag hydrates one tag from a row.
func scanTag(row rowScanner) (*Tag, error) {
	tag := &Tag{}
	var category string
	err := row.Scan(
		&tag.ID, &tag.FandomID, &tag.Name, &tag.Slug, &tag.Description, &category,
		&tag.TagClassID, &tag.RequiresTags, &tag.EnhancesTags, &tag.IsActive,
		&tag.CreatedAt, &tag.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "scan_tag")
	}
	tag.Category = Category(category)
	return tag, nil
}

// scanTagClass hydrates one tag class from a row, decoding the JSONB constraint.
func scanTagClass(row rowScanner) (*TagClass, error) {
	class := &TagClass{}
	var constraintJSON []byte
	err := row.Scan(
		&class.ID, &class.FandomID, &class.Name, &class.Description, &constraintJSON,
		&class.IsActive, &class.CreatedAt, &class.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "scan_tag_class")
	}

	if len(constraintJSON) > 0 {
		if err := json.Unmarshal(constraintJSON, &class.Constraint); err != nil {
			return nil, dberr.Wrap(err, "unmarshal_tag_class_constraint")
		}
	}

	return class, nil
}

// scanPlotBlock hydrates one plot block from a row.
func scanPlotBlock(row rowScanner) (*PlotBlock, error) {
	block := &PlotBlock{}
	var category string
	err := row.Scan(
		&block.ID, &block.FandomID, &block.Name, &block.Slug, &block.Description, &category,
		&block.ParentID, &block.ConflictsWith, &block.RequiresTags, &block.EnhancesTags,
		&block.IsActive, &block.CreatedAt, &block.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "scan_plot_block")
	}
	block.Category = Category(category)
	return block, nil
}

// setActive is the shared UPDATE for every soft-activation toggle. The table
// name is always one of this package's constants, never caller input.
func (repository *PostgresRepository) setActive(context context.Context, table, op, id string, active bool) error {

	query := `
		UPDATE ` + table + `
		SET isactive = $2, updatedat = NOW()
		WHERE id = $1;
	`

	result, err := repository.db.Exec(context, query, id, active)
	if err != nil {
		return dberr.Wrap(err, op)
	}

	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

var _ Repository = (*PostgresRepository)(nil)
