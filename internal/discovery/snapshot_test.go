// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package discovery

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thepensieveindex/pensieve-api/internal/platform/apperr"
)

/*
TestSnapshot_Roundtrip verifies an encoded pathway decodes back intact.
*/
func TestSnapshot_Roundtrip(t *testing.T) {
	items := []PathwayItem{
		{Type: ItemTag, Name: "Angst", Category: "genre", Position: 0},
		{Type: ItemPlotBlock, ID: "goblin", Name: "Goblin Inheritance", Position: 1},
	}

	token, err := EncodeSnapshot("hp", items)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	snapshot, err := DecodeSnapshot(token)
	require.NoError(t, err)
	assert.Equal(t, "hp", snapshot.FandomID)
	assert.Equal(t, items, snapshot.Items)
}

/*
TestSnapshot_TokenIsURLSafe verifies tokens work as path segments without
escaping.
*/
func TestSnapshot_TokenIsURLSafe(t *testing.T) {
	token, err := EncodeSnapshot("hp", []PathwayItem{
		{Type: ItemTag, Name: "Hurt/Comfort?", Position: 0},
	})
	require.NoError(t, err)

	assert.NotContains(t, token, "/")
	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "=")
}

/*
TestDecodeSnapshot_Malformed verifies every decode failure reports as a
pathway NotFound, never a raw decode error.
*/
func TestDecodeSnapshot_Malformed(t *testing.T) {
	badVersion, err := json.Marshal(Snapshot{Version: 99, FandomID: "hp"})
	require.NoError(t, err)
	missingFandom, err := json.Marshal(Snapshot{Version: snapshotVersion})
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"not_base64", "not a token!!"},
		{"base64_but_not_json", base64.RawURLEncoding.EncodeToString([]byte("garbage"))},
		{"wrong_version", base64.RawURLEncoding.EncodeToString(badVersion)},
		{"empty_fandom", base64.RawURLEncoding.EncodeToString(missingFandom)},
		{"empty_token", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot, err := DecodeSnapshot(tt.token)

			assert.Nil(t, snapshot)
			require.Error(t, err)
			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, "NOT_FOUND", appError.Code)
		})
	}
}
