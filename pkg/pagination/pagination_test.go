// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		query      string
		want       Params
		wantOffset int
	}{
		{"", Params{Page: 1, Limit: DefaultLimit}, 0},
		{"?page=3&limit=10", Params{Page: 3, Limit: 10}, 20},
		{"?page=0&limit=-5", Params{Page: 1, Limit: DefaultLimit}, 0},
		{"?page=abc&limit=xyz", Params{Page: 1, Limit: DefaultLimit}, 0},
		{"?page=2&limit=500", Params{Page: 2, Limit: MaxLimit}, MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := FromRequest(httptest.NewRequest(http.MethodGet, "/comics"+tt.query, nil))
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOffset, got.Offset())
		})
	}
}

func TestNewMeta(t *testing.T) {
	assert.Equal(t, Meta{Page: 1, Limit: 20, Total: 41, TotalPages: 3}, NewMeta(1, 20, 41))
	assert.Equal(t, Meta{Page: 1, Limit: 20, Total: 0, TotalPages: 0}, NewMeta(1, 20, 0))
	assert.Zero(t, NewMeta(1, 0, 10).TotalPages)
}
