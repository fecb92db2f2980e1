// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package purchase

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicpass/internal/platform/ctxutil"
	"github.com/taibuivan/comicpass/internal/platform/sec"
)

func TestHandler_CreatePurchase(t *testing.T) {
	router := chi.NewRouter()
	NewHandler(newTestEngine(seed(200, 150), nil)).RegisterRoutes(router)

	send := func(userID, body string) (*httptest.ResponseRecorder, map[string]any) {
		request := httptest.NewRequest(http.MethodPost, "/purchases", strings.NewReader(body))
		request.Header.Set("Content-Type", "application/json")
		if userID != "" {
			claims := &sec.AuthClaims{UserID: userID, Role: string(sec.RoleMember)}
			request = request.WithContext(ctxutil.WithAuthUser(request.Context(), claims))
		}
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)

		var decoded map[string]any
		_ = json.Unmarshal(recorder.Body.Bytes(), &decoded)
		return recorder, decoded
	}

	recorder, _ := send("", `{"comic_id":"`+titleID+`","kind":"comic"}`)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder, body := send(buyerID, `{"comic_id":"`+titleID+`","kind":"volume"}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])

	recorder, body = send(buyerID, `{"comic_id":"solo-leveling","kind":"comic"}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])

	recorder, body = send(buyerID, `{"comic_id":"`+missingID+`","kind":"comic"}`)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "COMIC_NOT_FOUND", body["code"])

	recorder, _ = send(buyerID, `{"comic_id":"`+titleID+`","kind":"comic"}`)
	require.Equal(t, http.StatusCreated, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"remaining_balance":50`)

	recorder, body = send(buyerID, `{"comic_id":"`+titleID+`","kind":"comic"}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "ALREADY_OWNED", body["code"])

	recorder, body = send(buyerID, `{"comic_id":"`+otherID+`","kind":"comic"}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "INSUFFICIENT_BALANCE", body["code"])
}
