// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reader

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicpass/internal/core/chapter"
	"github.com/taibuivan/comicpass/internal/library/entitlement"
	"github.com/taibuivan/comicpass/internal/platform/ctxutil"
	"github.com/taibuivan/comicpass/internal/platform/sec"
)

const (
	freeID    = "0190c6a0-0000-7000-8000-000000000001"
	paidID    = "0190c6a0-0000-7000-8000-000000000004"
	boughtID  = "0190c6a0-0000-7000-8000-000000000005"
	missingID = "0190c6a0-0000-7000-8000-0000000000ff"
)

type memoryChapters map[string]*chapter.Chapter

func (m memoryChapters) Get(_ context.Context, id string) (*chapter.Chapter, error) {
	target, ok := m[id]
	if !ok {
		return nil, chapter.ErrChapterNotFound
	}
	return target, nil
}

func (m memoryChapters) ListPages(_ context.Context, chapterID string) ([]*chapter.Page, error) {
	return []*chapter.Page{
		{ID: chapterID + "-p1", ChapterID: chapterID, Number: 1, ImageURL: "https://cdn.example/1.webp"},
	}, nil
}

type memoryEntitlements struct {
	owned map[string]*entitlement.Entitlement
	calls int
	err   error
}

func (m *memoryEntitlements) Get(_ context.Context, userID, comicID string) (*entitlement.Entitlement, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.owned[userID+":"+comicID], nil
}

func newFixture() (*Service, *memoryEntitlements) {
	purchasedAt := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	chapters := memoryChapters{
		freeID:   {ID: freeID, ComicID: "comic-1", Number: 1, IsFree: true},
		paidID:   {ID: paidID, ComicID: "comic-1", Number: 4},
		boughtID: {ID: boughtID, ComicID: "comic-1", Number: 5},
	}
	entitlements := &memoryEntitlements{owned: map[string]*entitlement.Entitlement{
		"owner:comic-1":  {UserID: "owner", ComicID: "comic-1", PurchasedAt: &purchasedAt},
		"single:comic-1": {UserID: "single", ComicID: "comic-1", UnlockedChapterIDs: []string{boughtID}},
	}}
	return NewService(chapters, entitlements, slog.New(slog.NewTextHandler(io.Discard, nil))), entitlements
}

func TestService_Read(t *testing.T) {
	tests := []struct {
		name      string
		userID    string
		chapterID string
		wantErr   error
	}{
		{"anonymous free", "", freeID, nil},
		{"anonymous paid", "", paidID, ErrChapterLocked},
		{"stranger paid", "stranger", paidID, ErrChapterLocked},
		{"owner paid", "owner", paidID, nil},
		{"single unlock", "single", boughtID, nil},
		{"single other chapter", "single", paidID, ErrChapterLocked},
		{"missing chapter", "owner", missingID, chapter.ErrChapterNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newFixture()

			content, err := service.Read(context.Background(), tt.userID, tt.chapterID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.chapterID, content.Chapter.ID)
			assert.Len(t, content.Pages, 1)
		})
	}
}

func TestService_FreeChapterSkipsEntitlementLookup(t *testing.T) {
	service, entitlements := newFixture()
	entitlements.err = errors.New("cache down")

	_, err := service.Read(context.Background(), "owner", freeID)
	require.NoError(t, err)
	assert.Zero(t, entitlements.calls)

	_, err = service.Read(context.Background(), "owner", paidID)
	assert.Error(t, err)
}

func TestHandler_ReadChapter(t *testing.T) {
	service, _ := newFixture()
	router := chi.NewRouter()
	NewHandler(service).RegisterRoutes(router)

	send := func(userID, chapterID string) *httptest.ResponseRecorder {
		request := httptest.NewRequest(http.MethodGet, "/chapters/"+chapterID+"/pages", nil)
		if userID != "" {
			claims := &sec.AuthClaims{UserID: userID, Role: string(sec.RoleMember)}
			request = request.WithContext(ctxutil.WithAuthUser(request.Context(), claims))
		}
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)
		return recorder
	}

	assert.Equal(t, http.StatusOK, send("", freeID).Code)
	assert.Equal(t, http.StatusOK, send("owner", paidID).Code)

	recorder := send("", paidID)
	require.Equal(t, http.StatusForbidden, recorder.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "CHAPTER_LOCKED", body["code"])

	assert.Equal(t, http.StatusBadRequest, send("owner", "latest").Code)
}
