// Copyright (c) 2026 The Pensieve Index. All rights reserved.

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: JWT issuers and cookie configuration.
  - Discovery: Pathway and search engine bounds.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "pensieve-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "pensieveindex.app"

	// RefreshTokenCookieName is the name of the cookie that stores the refresh token.
	RefreshTokenCookieName = "refresh_token"

	// RefreshTokenCookiePath is the scoped path for the refresh token cookie.
	RefreshTokenCookiePath = "/api/v1/auth"
)

// # Discovery Engine

const (
	// MaxPathwayItems caps the number of tag/plot-block selections in one pathway.
	// Requests beyond this are rejected as unprocessable before rule evaluation.
	MaxPathwayItems = 50

	// DefaultSearchLimit is the number of scored stories returned when the
	// request does not specify a limit.
	DefaultSearchLimit = 20

	// MaxSearchLimit bounds the scored result set to keep response payloads sane.
	MaxSearchLimit = 100

	// SearchabilityCeiling is the pathway size past which searchability decays.
	// Pathways above this size describe stories too narrowly to match well.
	SearchabilityCeiling = 10

	// NoveltyMatchHorizon is the story-match count at which a pathway is
	// considered fully explored (novelty 0). Fewer matches raise novelty.
	NoveltyMatchHorizon = 25

	// SnapshotTTL is how long a shared pathway snapshot is retained in Redis.
	SnapshotTTL = 30 * 24 * time.Hour

	// StoryIndexTTL is how long a cached per-fandom story index stays valid.
	StoryIndexTTL = 5 * time.Minute
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldTotal   = "total"
	FieldMessage = "message"
	FieldStatus  = "status"
)

// # Database Schemas

const (
	SchemaCore   = "core"
	SchemaUsers  = "users"
	SchemaSystem = "system"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixSession    = "auth:session:"
	RedisPrefixSnapshot   = "discovery:snapshot:"
	RedisPrefixStoryIndex = "discovery:story_index:"
)
