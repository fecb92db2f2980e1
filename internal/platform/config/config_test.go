// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicpass/internal/platform/config"
)

// setRequired populates the mandatory variables for a successful Load.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/comicpass")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("JWT_PUBLIC_KEY_PATH", "/keys/public.pem")
}

/*
TestLoad_Defaults checks the purchasing defaults.
*/
func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, int64(299), cfg.ChapterPrice)
	assert.Equal(t, int64(0), cfg.StartingGrant)
	assert.Equal(t, 3, cfg.PurchaseMaxAttempts)
	assert.Equal(t, 10*time.Minute, cfg.EntitlementCacheTTL)
	assert.True(t, cfg.IsDevelopment())
}

/*
TestLoad_RejectsInvalidPurchasing guards the values the engine relies on.
*/
func TestLoad_RejectsInvalidPurchasing(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero_chapter_price", "CHAPTER_PRICE", "0"},
		{"negative_grant", "STARTING_GRANT", "-5"},
		{"oversized_grant", "STARTING_GRANT", "1000000001"},
		{"no_attempts", "PURCHASE_MAX_ATTEMPTS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)

			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

/*
TestLoad_MissingRequired fails fast without a database URL.
*/
func TestLoad_MissingRequired(t *testing.T) {
	setRequired(t)
	require.NoError(t, os.Unsetenv("DATABASE_URL"))

	_, err := config.Load()
	assert.Error(t, err)
}

/*
TestAllowedOrigins appends trimmed extra origins.
*/
func TestAllowedOrigins(t *testing.T) {
	cfg := &config.Config{ExtraOrigins: " http://localhost:5173 , ,https://admin.example.com"}

	origins := cfg.AllowedOrigins()
	assert.Contains(t, origins, "http://localhost:5173")
	assert.Contains(t, origins, "https://admin.example.com")
	assert.Len(t, origins, 4)
}
