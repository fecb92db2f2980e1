// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package uuid

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IsVersion7AndOrdered(t *testing.T) {
	first, second := New(), New()
	require.True(t, IsValid(first))

	parsed := uuid.MustParse(first)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.LessOrEqual(t, first[:13], second[:13])
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("0190c6a0-7b1e-7c3d-9e4f-123456789abc"))
	assert.False(t, IsValid("0190c6a07b1e7c3d9e4f123456789abc"))
	assert.False(t, IsValid("{0190c6a0-7b1e-7c3d-9e4f-123456789abc}"))
	assert.False(t, IsValid("solo-leveling"))
	assert.False(t, IsValid(""))
}
