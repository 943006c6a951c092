// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package fandom

import (
	"context"

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

/*
List retrieves all fandoms ordered by name.

Description: Selects the full namespace catalogue, optionally filtering out
deactivated fandoms for public consumption.

Parameters:
  - context: context.Context
  - includeInactive: bool

Returns:
  - []*Fandom: Collection of namespace entities
  - error: Database execution or scanning errors
*/
func (repository *PostgresRepository) List(context context.Context, includeInactive bool) ([]*Fandom, error) {

	// Define catalogue retrieval query
	query := `
		SELECT id, name, slug, description, isactive, createdat, updatedat
		FROM core.fandom
		ORDER BY name ASC;
	`
	if !includeInactive {
		query = `
			SELECT id, name, slug, description, isactive, createdat, updatedat
			FROM core.fandom
			WHERE isactive = TRUE
			ORDER BY name ASC;
		`
	}

	// Execute retrieval against connection pool
	rows, err := repository.db.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_fandoms")
	}
	defer rows.Close()

	// Iterate results and hydrate entity slice
	var fandoms []*Fandom
	for rows.Next() {
		f := &Fandom{}
		if err := rows.Scan(&f.ID, &f.Name, &f.Slug, &f.Description, &f.IsActive, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_fandom")
		}
		fandoms = append(fandoms, f)
	}

	return fandoms, nil
}

/*
GetByID retrieves a fandom by its primary key.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *Fandom: The hydrated namespace entity
  - error: Not found or execution errors
*/
func (repository *PostgresRepository) GetByID(context context.Context, id string) (*Fandom, error) {

	// Prepare single-row selection
	const query = `
		SELECT id, name, slug, description, isactive, createdat, updatedat
		FROM core.fandom
		WHERE id = $1;
	`

	// Execute query and scan directly into entity
	f := &Fandom{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&f.ID, &f.Name, &f.Slug, &f.Description, &f.IsActive, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_fandom")
	}

	return f, nil
}

/*
GetBySlug retrieves a fandom using its URL identifier.

Parameters:
  - context: context.Context
  - slug: string semantic identifier

Returns:
  - *Fandom: The hydrated namespace entity
  - error: Retrieval failures
*/
func (repository *PostgresRepository) GetBySlug(context context.Context, slug string) (*Fandom, error) {

	// Define lookup query
	const query = `
		SELECT id, name, slug, description, isactive, createdat, updatedat
		FROM core.fandom
		WHERE slug = $1;
	`

	f := &Fandom{}
	err := repository.db.QueryRow(context, query, slug).Scan(
		&f.ID, &f.Name, &f.Slug, &f.Description, &f.IsActive, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_fandom_by_slug")
	}

	return f, nil
}

/*
Create persists a new fandom record.

Parameters:
  - context: context.Context
  - f: *Fandom (ID and timestamps pre-populated by the service)

Returns:
  - error: Conflict on duplicate slug, or execution errors
*/
func (repository *PostgresRepository) Create(context context.Context, f *Fandom) error {

	// Define insertion statement
	const query = `
		INSERT INTO core.fandom (id, name, slug, description, isactive, createdat, updatedat)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`

	_, err := repository.db.Exec(context, query,
		f.ID, f.Name, f.Slug, f.Description, f.IsActive, f.CreatedAt, f.UpdatedAt,
	)

	return dberr.Wrap(err, "create_fandom")
}

/*
Update applies modifications to an existing fandom record.

Parameters:
  - context: context.Context
  - f: *Fandom

Returns:
  - error: Not found or execution errors
*/
func (repository *PostgresRepository) Update(context context.Context, f *Fandom) error {

	// Define update statement
	const query = `
		UPDATE core.fandom
		SET name = $2, slug = $3, description = $4, updatedat = $5
		WHERE id = $1;
	`

	tag, err := repository.db.Exec(context, query, f.ID, f.Name, f.Slug, f.Description, f.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "update_fandom")
	}

	// Zero affected rows means the fandom never existed
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

/*
SetActive toggles the soft-activation flag.

Parameters:
  - context: context.Context
  - id: string
  - active: bool

Returns:
  - error: Not found or execution errors
*/
func (repository *PostgresRepository) SetActive(context context.Context, id string, active bool) error {

	const query = `
		UPDATE core.fandom
		SET isactive = $2, updatedat = NOW()
		WHERE id = $1;
	`

	tag, err := repository.db.Exec(context, query, id, active)
	if err != nil {
		return dberr.Wrap(err, "set_fandom_active")
	}

	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

// # Admin Grants

/*
HasGrant reports whether userID holds a fandom_admin grant for fandomID.

Parameters:
  - context: context.Context
  - userID, fandomID: string

Returns:
  - bool: Grant existence
  - error: Execution errors
*/
func (repository *PostgresRepository) HasGrant(context context.Context, userID, fandomID string) (bool, error) {

	const query = `
		SELECT EXISTS (
			SELECT 1 FROM users.fandomgrant
			WHERE userid = $1 AND fandomid = $2
		);
	`

	var exists bool
	if err := repository.db.QueryRow(context, query, userID, fandomID).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "has_fandom_grant")
	}

	return exists, nil
}

/*
AddGrant records a fandom_admin grant.

Parameters:
  - context: context.Context
  - g: *Grant

Returns:
  - error: Conflict if the grant already exists, or execution errors
*/
func (repository *PostgresRepository) AddGrant(context context.Context, g *Grant) error {

	const query = `
		INSERT INTO users.fandomgrant (userid, fandomid, grantedby, createdat)
		VALUES ($1, $2, $3, $4);
	`

	_, err := repository.db.Exec(context, query, g.UserID, g.FandomID, g.GrantedBy, g.CreatedAt)
	return dberr.Wrap(err, "add_fandom_grant")
}

/*
RemoveGrant revokes a fandom_admin grant.

Parameters:
  - context: context.Context
  - userID, fandomID: string

Returns:
  - error: Execution errors (revoking a missing grant is not an error)
*/
func (repository *PostgresRepository) RemoveGrant(context context.Context, userID, fandomID string) error {

	const query = `
		DELETE FROM users.fandomgrant
		WHERE userid = $1 AND fandomid = $2;
	`

	_, err := repository.db.Exec(context, query, userID, fandomID)
	return dberr.Wrap(err, "remove_fandom_grant")
}

var _ Repository = (*PostgresRepository)(nil)
