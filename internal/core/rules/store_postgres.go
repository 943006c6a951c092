// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package rules

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

const ruleColumns = `id, fandomid, name, description, ruletype, priority, isactive,
	conditions, actions, createdat, updatedat`

/*
ListByFandom retrieves a fandom's validation rules.

Description: Rules come back in ascending priority order (ID as a stable
tiebreak) so the validator can evaluate them without re-sorting.

Parameters:
  - context: context.Context
  - fandomID: string
  - activeOnly: bool

Returns:
  - []*Rule: Ordered rule set
  - error: Database execution or scanning errors
*/
func (repository *PostgresRepository) ListByFandom(context context.Context, fandomID string, activeOnly bool) ([]*Rule, error) {

	// Define ordered retrieval query
	query := `
		SELECT ` + ruleColumns + `
		FROM core.validationrule
		WHERE fandomid = $1
		ORDER BY priority ASC, id ASC;
	`
	if activeOnly {
		query = `
			SELECT ` + ruleColumns + `
			FROM core.validationrule
			WHERE fandomid = $1 AND isactive = TRUE
			ORDER BY priority ASC, id ASC;
		`
	}

	rows, err := repository.db.Query(context, query, fandomID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_rules")
	}
	defer rows.Close()

	// Iterate results and hydrate entity slice
	var result []*Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rule)
	}

	return result, nil
}

/*
GetByID retrieves a rule by its primary key.

Returns:
  - *Rule: The hydrated rule entity
  - error: Not found or execution errors
*/
func (repository *PostgresRepository) GetByID(context context.Context, id string) (*Rule, error) {

	const query = `
		SELECT ` + ruleColumns + `
		FROM core.validationrule
		WHERE id = $1;
	`

	rule, err := scanRule(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, err
	}

	return rule, nil
}

/*
Create persists a new rule record.

Description: Conditions and actions serialize to JSONB columns. The service
has already schema-checked both, so storage never holds an unknown variant.

Returns:
  - error: Execution errors
*/
func (repository *PostgresRepository) Create(context context.Context, rule *Rule) error {

	conditionsJSON, actionsJSON, err := marshalDefinition(rule)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO core.validationrule (id, fandomid, name, description, ruletype, priority,
			isactive, conditions, actions, createdat, updatedat)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`

	_, err = repository.db.Exec(context, query,
		rule.ID, rule.FandomID, rule.Name, rule.Description, string(rule.RuleType),
		rule.Priority, rule.IsActive, conditionsJSON, actionsJSON, rule.CreatedAt, rule.UpdatedAt,
	)

	return dberr.Wrap(err, "create_rule")
}

/*
Update applies modifications to an existing rule record.

Returns:
  - error: Not found or execution errors
*/
func (repository *PostgresRepository) Update(context context.Context, rule *Rule) error {

	conditionsJSON, actionsJSON, err := marshalDefinition(rule)
	if err != nil {
		return err
	}

	const query = `
		UPDATE core.validationrule
		SET name = $2, description = $3, ruletype = $4, priority = $5,
			conditions = $6, actions = $7, updatedat = $8
		WHERE id = $1;
	`

	result, err := repository.db.Exec(context, query,
		rule.ID, rule.Name, rule.Description, string(rule.RuleType), rule.Priority,
		conditionsJSON, actionsJSON, rule.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "update_rule")
	}

	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

/*
SetActive toggles the soft-activation flag.

Returns:
  - error: Not found or execution errors
*/
func (repository *PostgresRepository) SetActive(context context.Context, id string, active bool) error {

	const query = `
		UPDATE core.validationrule
		SET isactive = $2, updatedat = NOW()
		WHERE id = $1;
	`

	result, err := repository.db.Exec(context, query, id, active)
	if err != nil {
		return dberr.Wrap(err, "set_rule_active")
	}

	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

// # Internals

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRule hydrates one rule from a row, decoding the JSONB definition columns.
func scanRule(row rowScanner) (*Rule, error) {
	rule := &Rule{}
	var ruleType string
	var conditionsJSON, actionsJSON []byte

	err := row.Scan(
		&rule.ID, &rule.FandomID, &rule.Name, &rule.Description, &ruleType,
		&rule.Priority, &rule.IsActive, &conditionsJSON, &actionsJSON,
		&rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "scan_rule")
	}
	rule.RuleType = RuleType(ruleType)

	if err := json.Unmarshal(conditionsJSON, &rule.Conditions); err != nil {
		return nil, dberr.Wrap(err, "unmarshal_rule_conditions")
	}
	if err := json.Unmarshal(actionsJSON, &rule.Actions); err != nil {
		return nil, dberr.Wrap(err, "unmarshal_rule_actions")
	}

	return rule, nil
}

// marshalDefinition serializes the JSONB definition columns.
func marshalDefinition(rule *Rule) ([]byte, []byte, error) {
	conditionsJSON, err := json.Marshal(rule.Conditions)
	if err != nil {
		return nil, nil, dberr.Wrap(err, "marshal_rule_conditions")
	}

	actionsJSON, err := json.Marshal(rule.Actions)
	if err != nil {
		return nil, nil, dberr.Wrap(err, "marshal_rule_actions")
	}

	return conditionsJSON, actionsJSON, nil
}

var _ Repository = (*PostgresRepository)(nil)
