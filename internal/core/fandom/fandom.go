// Copyright (c) 2026 The Pensieve Index. All rights reserved.

/*
Package fandom manages the scoping namespaces of the Pensieve Index.

Every tag, tag class, plot block, validation rule, and story belongs to
exactly one fandom. Deactivating a fandom removes it (and everything it
scopes) from discovery without destroying admin-curated data.

Core Responsibility:

  - Namespace: Provides the (id, slug) identity that all taxonomy queries filter by.
  - Lifecycle: Soft-activation only; fandoms are never hard-deleted.
  - Access: Project admins create fandoms; fandom admins receive per-fandom grants.
*/
package fandom

import "time"

// Fandom is a scoping namespace for a fictional universe's taxonomy and stories.
type Fandom struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Grant records that a user holds fandom_admin scope over one fandom.
type Grant struct {
	UserID    string    `json:"user_id"`
	FandomID  string    `json:"fandom_id"`
	GrantedBy string    `json:"granted_by"`
	CreatedAt time.Time `json:"created_at"`
}

// # Field Identifiers

// Global field names for validation and dynamic query mapping in the fandom domain.
const (
	FieldName        = "name"
	FieldSlug        = "slug"
	FieldDescription = "description"
	FieldUserID      = "user_id"
)
