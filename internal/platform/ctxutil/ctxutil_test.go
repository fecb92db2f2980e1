// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ctxutil_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicpass/internal/platform/ctxutil"
	"github.com/taibuivan/comicpass/internal/platform/sec"
)

func TestContext_RequestID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	ctx = ctxutil.WithRequestID(ctx, "req-1")
	assert.Equal(t, "req-1", ctxutil.GetRequestID(ctx))
}

func TestContext_Logger(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, slog.Default(), ctxutil.GetLogger(ctx))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx = ctxutil.WithLogger(ctx, logger)
	assert.Equal(t, logger, ctxutil.GetLogger(ctx))
}

func TestContext_AuthUser(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, ctxutil.GetAuthUser(ctx))
	assert.Empty(t, ctxutil.UserID(ctx))

	claims := &sec.AuthClaims{UserID: "user-1", Role: string(sec.RoleMember)}
	ctx = ctxutil.WithAuthUser(ctx, claims)
	assert.Equal(t, claims, ctxutil.GetAuthUser(ctx))
	assert.Equal(t, "user-1", ctxutil.UserID(ctx))
}

func TestDetached_IgnoresParentCancellation(t *testing.T) {
	parent, cancelParent := context.WithCancel(ctxutil.WithRequestID(context.Background(), "req-9"))

	detached, cancel := ctxutil.Detached(parent, time.Minute)
	defer cancel()

	cancelParent()
	require.Error(t, parent.Err())
	assert.NoError(t, detached.Err())
	assert.Equal(t, "req-9", ctxutil.GetRequestID(detached))

	deadline, ok := detached.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}
