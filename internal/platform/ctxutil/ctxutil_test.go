// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package ctxutil_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thepensieveindex/pensieve-api/internal/platform/ctxutil"
	"github.com/thepensieveindex/pensieve-api/internal/platform/sec"
)

/*
TestRequestID verifies roundtrip and the missing-value default.
*/
func TestRequestID(t *testing.T) {
	ctx := ctxutil.WithRequestID(context.Background(), "req-123")
	assert.Equal(t, "req-123", ctxutil.GetRequestID(ctx))

	assert.Empty(t, ctxutil.GetRequestID(context.Background()))
}

/*
TestLogger verifies roundtrip and the default-logger fallback.
*/
func TestLogger(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := ctxutil.WithLogger(context.Background(), logger)
	assert.Same(t, logger, ctxutil.GetLogger(ctx))

	assert.NotNil(t, ctxutil.GetLogger(context.Background()))
}

/*
TestAuthUser verifies claims roundtrip and the nil default.
*/
func TestAuthUser(t *testing.T) {
	claims := &sec.AuthClaims{UserID: "user-1", Username: "reader", Role: string(sec.RoleMember)}
	ctx := ctxutil.WithAuthUser(context.Background(), claims)
	assert.Same(t, claims, ctxutil.GetAuthUser(ctx))

	assert.Nil(t, ctxutil.GetAuthUser(context.Background()))
}
