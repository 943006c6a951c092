// Copyright (c) 2026 The Pensieve Index. All rights reserved.

/*
Package auth implements identity and session management for the Pensieve
Index.

It covers registration, login with bcrypt-hashed credentials, and refresh
token rotation. Access tokens are short-lived RSA-signed JWTs; refresh
sessions live in Redis under their SHA-256 token hash and expire with the
key's TTL.

Authorization is layered on top: the JWT carries the coarse role, while
fandom-scoped admin grants are checked by the fandom service at mutation
time.
*/
package auth

import (
	"time"

	"github.com/thepensieveindex/pensieve-api/internal/platform/sec"
)

// # Token Lifetimes

const (
	// AccessTokenTTL is the JWT lifetime. Short by design: revocation
	// operates on refresh sessions, not access tokens.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenTTL bounds how long a session survives without use.
	RefreshTokenTTL = 30 * 24 * time.Hour

	// RefreshTokenLength is the CSPRNG byte length of refresh tokens.
	RefreshTokenLength = 32
)

// # Domain Entities

// User represents a registered member of the Pensieve Index.
type User struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Explicitly omitted from JSON for security.
	DisplayName  string       `json:"display_name"`
	Role         sec.UserRole `json:"role"`
	IsActive     bool         `json:"is_active"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Session represents an active refresh-token session.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"` // Hashed value of the refresh token. Omitted for security.
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the
// authentication domain.
const (
	FieldUsername    = "username"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldDisplayName = "display_name"
	FieldLogin       = "login"
	FieldRole        = "role"
	FieldAccessToken = "access_token"
	FieldTokenType   = "token_type"
	FieldExpiresIn   = "expires_in"
	FieldUser        = "user"
)
