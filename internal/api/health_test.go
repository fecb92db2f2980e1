// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadiness(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	refused := errors.New("dial tcp: connection refused")

	tests := []struct {
		name        string
		databaseErr error
		cacheErr    error
		wantStatus  int
		wantState   string
	}{
		{"all healthy", nil, nil, http.StatusOK, "ready"},
		{"cache down", nil, refused, http.StatusOK, "degraded"},
		{"database down", refused, nil, http.StatusServiceUnavailable, "unavailable"},
		{"both down", refused, refused, http.StatusServiceUnavailable, "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, readiness := NewHealthHandlers([]Probe{
				{Name: "postgres", Critical: true, Check: func(context.Context) error { return tt.databaseErr }},
				{Name: "redis", Check: func(context.Context) error { return tt.cacheErr }},
			}, logger)

			recorder := httptest.NewRecorder()
			readiness(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))
			require.Equal(t, tt.wantStatus, recorder.Code)

			var body struct {
				Data struct {
					Status string        `json:"status"`
					Checks []probeResult `json:"checks"`
				} `json:"data"`
			}
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.Equal(t, tt.wantState, body.Data.Status)
			require.Len(t, body.Data.Checks, 2)
			assert.Equal(t, "postgres", body.Data.Checks[0].Name)
		})
	}
}
