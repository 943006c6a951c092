// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package discovery

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/thepensieveindex/pensieve-api/internal/platform/apperr"
	"github.com/thepensieveindex/pensieve-api/internal/platform/constants"
	"github.com/thepensieveindex/pensieve-api/pkg/uuidv7"
)

// snapshotVersion guards the wire format of encoded pathways. Bump it when
// the Snapshot shape changes incompatibly.
const snapshotVersion = 1

// Snapshot is the serialized form of a shareable pathway.
type Snapshot struct {
	Version  int           `json:"v"`
	FandomID string        `json:"fandom_id"`
	Items    []PathwayItem `json:"items"`
}

// # Stateless Encoding

/*
EncodeSnapshot serializes a pathway into a self-contained base64url token.

Description: The token embeds the full pathway, so decoding needs no storage
lookup. Tokens are URL-safe and unpadded for direct use as path segments.

Parameters:
  - fandomID: string
  - items: []PathwayItem

Returns:
  - string: base64url token
  - error: Serialization errors
*/
func EncodeSnapshot(fandomID string, items []PathwayItem) (string, error) {
	payload, err := json.Marshal(Snapshot{
		Version:  snapshotVersion,
		FandomID: fandomID,
		Items:    items,
	})
	if err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(payload), nil
}

// DecodeSnapshot reverses [EncodeSnapshot]. Malformed or version-mismatched
// tokens report as NotFound so share links never leak decode internals.
func DecodeSnapshot(token string) (*Snapshot, error) {
	payload, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, apperr.NotFound("Pathway")
	}

	var snapshot Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, apperr.NotFound("Pathway")
	}
	if snapshot.Version != snapshotVersion || snapshot.FandomID == "" {
		return nil, apperr.NotFound("Pathway")
	}

	return &snapshot, nil
}

// # Stored Short Links

// SnapshotStore persists shared pathways under short identifiers in Redis.
//
// Short links expire after [constants.SnapshotTTL]; the stateless token
// remains decodable forever.
type SnapshotStore struct {
	redis *redis.Client
}

// NewSnapshotStore constructs a [SnapshotStore].
func NewSnapshotStore(client *redis.Client) *SnapshotStore {
	return &SnapshotStore{redis: client}
}

/*
Save stores a pathway snapshot and returns its short identifier.

Returns:
  - string: UUIDv7 share identifier
  - error: Serialization or Redis errors
*/
func (store *SnapshotStore) Save(context context.Context, fandomID string, items []PathwayItem) (string, error) {
	payload, err := json.Marshal(Snapshot{
		Version:  snapshotVersion,
		FandomID: fandomID,
		Items:    items,
	})
	if err != nil {
		return "", err
	}

	id := uuidv7.New()
	key := constants.RedisPrefixSnapshot + id

	if err := store.redis.Set(context, key, payload, constants.SnapshotTTL).Err(); err != nil {
		return "", apperr.Internal(err)
	}

	return id, nil
}

/*
Load resolves a share identifier back into its snapshot.

Description: Accepts both short identifiers and stateless base64url tokens:
Redis is consulted first, and on a miss the identifier is decoded directly.
Expired short links and garbage both report as NotFound.

Returns:
  - *Snapshot: The stored or decoded pathway
  - error: NotFound, or Redis errors other than a miss
*/
func (store *SnapshotStore) Load(context context.Context, id string) (*Snapshot, error) {
	payload, err := store.redis.Get(context, constants.RedisPrefixSnapshot+id).Bytes()

	switch {
	case err == nil:
		var snapshot Snapshot
		if err := json.Unmarshal(payload, &snapshot); err != nil {
			return nil, apperr.NotFound("Pathway")
		}
		return &snapshot, nil

	case errors.Is(err, redis.Nil):
		return DecodeSnapshot(id)

	default:
		return nil, apperr.Internal(err)
	}
}
