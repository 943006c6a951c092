// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package auth

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thepensieveindex/pensieve-api/internal/platform/dberr"
	"github.com/thepensieveindex/pensieve-api/internal/platform/sec"
)

// PostgresUserRepository implements [UserRepository] using a pgxpool.
type PostgresUserRepository struct {
	db *pgxpool.Pool
}

// NewPostgresUserRepository returns a fully wired postgres implementation.
func NewPostgresUserRepository(db *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

const userColumns = `id, username, email, passwordhash, displayname, role, isactive, createdat, updatedat`

/*
FindByID retrieves an account by its primary key.

Returns:
  - *User: Hydrated account
  - error: Not found or execution errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE id = $1 AND isactive = TRUE;
	`
	return repository.scanOne(context, query, id)
}

/*
FindByEmail retrieves an account by email, case-insensitively.

Returns:
  - *User: Hydrated account
  - error: Not found or execution errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE LOWER(email) = LOWER($1) AND isactive = TRUE;
	`
	return repository.scanOne(context, query, email)
}

/*
FindByUsername retrieves an account by username, case-insensitively.

Returns:
  - *User: Hydrated account
  - error: Not found or execution errors
*/
func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE LOWER(username) = LOWER($1) AND isactive = TRUE;
	`
	return repository.scanOne(context, query, username)
}

/*
Create persists a new account record.

Returns:
  - error: Conflict on duplicate username/email, or execution errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {

	const query = `
		INSERT INTO users.account (id, username, email, passwordhash, displayname, role, isactive, createdat, updatedat)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`

	_, err := repository.db.Exec(context, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.DisplayName,
		string(user.Role), user.IsActive, user.CreatedAt, user.UpdatedAt,
	)

	return dberr.Wrap(err, "create_user")
}

/*
UpdateRole replaces only the account's platform role.

Returns:
  - error: Not found or execution errors
*/
func (repository *PostgresUserRepository) UpdateRole(context context.Context, userID, role string) error {

	const query = `
		UPDATE users.account
		SET role = $2, updatedat = NOW()
		WHERE id = $1;
	`

	result, err := repository.db.Exec(context, query, userID, role)
	if err != nil {
		return dberr.Wrap(err, "update_user_role")
	}

	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

// scanOne executes a single-row account query.
func (repository *PostgresUserRepository) scanOne(context context.Context, query string, arg any) (*User, error) {
	user := &User{}
	var role string

	err := repository.db.QueryRow(context, query, arg).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.DisplayName,
		&role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "find_user")
	}

	user.Role = sec.UserRole(role)
	return user, nil
}

var _ UserRepository = (*PostgresUserRepository)(nil)
