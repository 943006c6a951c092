// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thepensieveindex/pensieve-api/internal/platform/apperr"
	"github.com/thepensieveindex/pensieve-api/internal/platform/validate"
)

/*
TestValidator_Required verifies empty and whitespace-only values fail.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"non_empty_passes", "Harry Potter", false},
		{"empty_fails", "", true},
		{"whitespace_only_fails", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&validate.Validator{}).Required("name", tt.value).Err()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

/*
TestValidator_Lengths verifies MinLen and MaxLen count runes, not bytes.
*/
func TestValidator_Lengths(t *testing.T) {
	v := &validate.Validator{}
	assert.NoError(t, v.MaxLen("name", "héllo", 5).MinLen("name", "héllo", 5).Err())

	v = &validate.Validator{}
	assert.Error(t, v.MaxLen("name", "too long value", 5).Err())

	v = &validate.Validator{}
	assert.Error(t, v.MinLen("password", "short", 8).Err())
}

/*
TestValidator_Email covers the address parser boundary cases.
*/
func TestValidator_Email(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"valid", "reader@pensieveindex.app", false},
		{"missing_domain", "reader@", true},
		{"missing_at", "reader.example.com", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&validate.Validator{}).Email("email", tt.value).Err()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

/*
TestValidator_Slug verifies the slug format rules.
*/
func TestValidator_Slug(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"valid", "goblin-inheritance", false},
		{"single_word", "angst", false},
		{"uppercase_fails", "Goblin-Inheritance", true},
		{"leading_hyphen_fails", "-angst", true},
		{"spaces_fail", "goblin inheritance", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&validate.Validator{}).Slug("slug", tt.value).Err()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

/*
TestValidator_OneOf verifies membership against the allowed set.
*/
func TestValidator_OneOf(t *testing.T) {
	assert.NoError(t, (&validate.Validator{}).OneOf("category", "genre", "genre", "ship").Err())
	assert.Error(t, (&validate.Validator{}).OneOf("category", "spaceship", "genre", "ship").Err())
}

/*
TestValidator_ChainCollectsAllFailures verifies a chain reports every failed
field in one error.
*/
func TestValidator_ChainCollectsAllFailures(t *testing.T) {
	err := (&validate.Validator{}).
		Required("name", "").
		Email("email", "not-an-email").
		Range("priority", 500, 0, 100).
		Err()

	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	require.Len(t, appError.Details, 3)

	fields := []string{}
	for _, detail := range appError.Details {
		fields = append(fields, detail.Field)
	}
	assert.Equal(t, []string{"name", "email", "priority"}, fields)
}

/*
TestValidator_ChainAllPass verifies a fully passing chain returns nil.
*/
func TestValidator_ChainAllPass(t *testing.T) {
	v := &validate.Validator{}
	err := v.
		Required("name", "Goblin Inheritance").
		Slug("slug", "goblin-inheritance").
		Range("priority", 10, 0, 100).
		Err()

	assert.NoError(t, err)
	assert.False(t, v.HasErrors())
}

/*
TestValidator_Custom verifies the escape hatch for one-off rules.
*/
func TestValidator_Custom(t *testing.T) {
	assert.Error(t, (&validate.Validator{}).Custom("priority", true, "Must not be negative").Err())
	assert.NoError(t, (&validate.Validator{}).Custom("priority", false, "Must not be negative").Err())
}

/*
TestRequiredError verifies the single-field shortcut shape.
*/
func TestRequiredError(t *testing.T) {
	err := validate.RequiredError("fandom_id", "Unknown fandom")

	require.Len(t, err.Details, 1)
	assert.Equal(t, "fandom_id", err.Details[0].Field)
	assert.Equal(t, "Unknown fandom", err.Details[0].Message)
}
