// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thepensieveindex/pensieve-api/internal/platform/dberr"
	"github.com/thepensieveindex/pensieve-api/pkg/uuidv7"
)

// PostgresRecorder implements [Recorder] against the system.auditlog table.
type PostgresRecorder struct {
	db *pgxpool.Pool
}

// NewPostgresRecorder returns a fully wired postgres implementation.
func NewPostgresRecorder(db *pgxpool.Pool) *PostgresRecorder {
	return &PostgresRecorder{db: db}
}

/*
Record persists one audit entry.

Description: Serializes the detail payload to JSONB and inserts a single
immutable row. Missing ID/timestamp fields are populated here so call sites
stay terse.

Parameters:
  - context: context.Context
  - entry: Entry

Returns:
  - error: Execution errors (callers log and continue)
*/
func (recorder *PostgresRecorder) Record(context context.Context, entry Entry) error {

	// Populate identity fields when the caller left them zero
	if entry.ID == "" {
		entry.ID = uuidv7.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	// Serialize the free-form detail payload
	detailJSON, err := json.Marshal(entry.Detail)
	if err != nil {
		return dberr.Wrap(err, "marshal_audit_detail")
	}

	// Define insertion statement
	const query = `
		INSERT INTO system.auditlog (id, actorid, action, entitytype, entityid, fandomid, detail, createdat)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`

	_, err = recorder.db.Exec(context, query,
		entry.ID, entry.ActorID, string(entry.Action), string(entry.EntityType),
		entry.EntityID, entry.FandomID, detailJSON, entry.CreatedAt,
	)

	return dberr.Wrap(err, "record_audit_entry")
}

var _ Recorder = (*PostgresRecorder)(nil)
