// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/thepensieveindex/pensieve-api/internal/platform/apperr"
	"github.com/thepensieveindex/pensieve-api/internal/platform/constants"
)

// RedisSessionRepository implements [SessionRepository] using Redis.
//
// Sessions are keyed by their SHA-256 token hash and carry the session
// payload as JSON. The key TTL doubles as the session expiry, so there is
// no reaper job: Redis drops stale sessions on its own.
type RedisSessionRepository struct {
	client *redis.Client
}

// NewRedisSessionRepository creates a new Redis-backed [SessionRepository].
func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

/*
Create stores the session under its token hash with a TTL derived from
the session's expiry timestamp.

Parameters:
  - context: context.Context
  - session: *Session

Returns:
  - error: Encoding or storage failures
*/
func (repository *RedisSessionRepository) Create(context context.Context, session *Session) error {

	timeToLive := time.Until(session.ExpiresAt)
	if timeToLive <= 0 {
		return fmt.Errorf("redis_session_create_failed: session already expired")
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("redis_session_encode_failed: %w", err)
	}

	key := constants.RedisPrefixSession + session.TokenHash
	if err := repository.client.Set(context, key, payload, timeToLive).Err(); err != nil {
		return fmt.Errorf("redis_session_create_failed: %w", err)
	}

	return nil
}

/*
FindByTokenHash retrieves the session stored under the given token hash.

Description: Returns apperr.NotFound when the session is absent, which
covers expiry, revocation, and forged tokens alike.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - *Session: Hydrated session
  - error: apperr.NotFound or connectivity errors
*/
func (repository *RedisSessionRepository) FindByTokenHash(context context.Context, tokenHash string) (*Session, error) {

	key := constants.RedisPrefixSession + tokenHash

	payload, err := repository.client.Get(context, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("Session")
		}
		return nil, fmt.Errorf("redis_session_get_failed: %w", err)
	}

	session := &Session{}
	if err := json.Unmarshal(payload, session); err != nil {
		return nil, fmt.Errorf("redis_session_decode_failed: %w", err)
	}

	// The payload omits the hash; restore it from the key.
	session.TokenHash = tokenHash

	return session, nil
}

/*
Revoke deletes the session stored under the given token hash.

Description: Idempotent. Deleting an absent key is a successful no-op,
which keeps logout safe to retry.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - error: Deletion failures
*/
func (repository *RedisSessionRepository) Revoke(context context.Context, tokenHash string) error {

	key := constants.RedisPrefixSession + tokenHash

	if err := repository.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("redis_session_revoke_failed: %w", err)
	}

	return nil
}

var _ SessionRepository = (*RedisSessionRepository)(nil)
