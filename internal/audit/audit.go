// Copyright (c) 2026 The Pensieve Index. All rights reserved.

/*
Package audit provides the append-only administrative audit trail.

Every mutation to fandoms, taxonomies, validation rules, or the story corpus
is recorded with the acting user, the affected entity, and a JSON detail
payload. The trail is write-only from the application's perspective:
corrections are new entries, never updates.

# Failure Policy

Audit writes must never fail the admin mutation they describe. Services log
a recording failure and carry on; the mutation has already been committed.
*/
package audit

import (
	"context"
	"time"
)

// # Actions

// Action identifies what an admin did to an entity.
type Action string

const (
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionActivate   Action = "activate"
	ActionDeactivate Action = "deactivate"
	ActionGrant      Action = "grant"
	ActionRevoke     Action = "revoke"
)

// # Entities

// EntityType identifies the kind of record an audit entry refers to.
type EntityType string

const (
	EntityFandom     EntityType = "fandom"
	EntityTag        EntityType = "tag"
	EntityTagClass   EntityType = "tag_class"
	EntityPlotBlock  EntityType = "plot_block"
	EntityRule       EntityType = "validation_rule"
	EntityStory      EntityType = "story"
	EntityAdminGrant EntityType = "admin_grant"
	EntityUser       EntityType = "user"
)

// Entry is a single immutable audit record.
type Entry struct {
	ID         string         `json:"id"`
	ActorID    string         `json:"actor_id"`
	Action     Action         `json:"action"`
	EntityType EntityType     `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	FandomID   *string        `json:"fandom_id,omitempty"`
	Detail     map[string]any `json:"detail,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Recorder is the write contract consumed by admin services.
type Recorder interface {
	// Record persists one audit entry. Implementations must not panic;
	// callers treat a returned error as log-and-continue.
	Record(context context.Context, entry Entry) error
}
