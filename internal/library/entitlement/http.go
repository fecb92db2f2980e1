// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package entitlement provides the HTTP delivery layer for the reader's library.

All endpoints require authentication; the user is always taken from the token.
*/
package entitlement

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/comicpass/internal/platform/middleware"
	requestutil "github.com/taibuivan/comicpass/internal/platform/request"
	"github.com/taibuivan/comicpass/internal/platform/respond"
	"github.com/taibuivan/comicpass/pkg/pagination"
)

// Handler implements the HTTP layer for entitlements and library views.
type Handler struct {
	service *Service
}

// NewHandler constructs a new entitlement [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches library endpoints to the root API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Group(func(member chi.Router) {
		member.Use(middleware.RequireAuth)
		member.Get("/comics/{comicID}/entitlement", handler.getEntitlement)
		member.Put("/comics/{comicID}/favorite", handler.addFavorite)
		member.Delete("/comics/{comicID}/favorite", handler.removeFavorite)
		member.Put("/comics/{comicID}/progress", handler.saveProgress)
		member.Get("/me/favorites", handler.listFavorites)
		member.Get("/me/history", handler.listHistory)
	})
}

// entitlementView is the response shape of the entitlement query. It is
// returned even when no entitlement row exists.
type entitlementView struct {
	ComicID            string       `json:"comic_id"`
	OwnsComic          bool         `json:"owns_comic"`
	UnlockedChapterIDs []string     `json:"unlocked_chapter_ids"`
	Entitlement        *Entitlement `json:"entitlement"`
}

/*
GET /api/v1/comics/{comicID}/entitlement.

Response:
  - 200: entitlementView
  - 401: ErrUnauthorized
*/
func (handler *Handler) getEntitlement(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	comicID, err := requestutil.UUIDParam(request, "comicID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	entitlement, err := handler.service.Get(request.Context(), userID, comicID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	view := entitlementView{ComicID: comicID, UnlockedChapterIDs: []string{}, Entitlement: entitlement}
	if entitlement != nil {
		view.OwnsComic = entitlement.OwnsComic()
		if entitlement.UnlockedChapterIDs != nil {
			view.UnlockedChapterIDs = entitlement.UnlockedChapterIDs
		}
	}

	respond.OK(writer, view)
}

// PUT /api/v1/comics/{comicID}/favorite.
func (handler *Handler) addFavorite(writer http.ResponseWriter, request *http.Request) {
	handler.setFavorite(writer, request, true)
}

// DELETE /api/v1/comics/{comicID}/favorite.
func (handler *Handler) removeFavorite(writer http.ResponseWriter, request *http.Request) {
	handler.setFavorite(writer, request, false)
}

func (handler *Handler) setFavorite(writer http.ResponseWriter, request *http.Request, favorite bool) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	comicID, err := requestutil.UUIDParam(request, "comicID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.SetFavorite(request.Context(), userID, comicID, favorite); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// progressRequest is the inbound schema for a reading position.
type progressRequest struct {
	ChapterID string `json:"chapter_id"`
	Page      int    `json:"page"`
}

/*
PUT /api/v1/comics/{comicID}/progress.

Response:
  - 204: Saved
  - 400: Validation failure
  - 404: CHAPTER_NOT_FOUND (missing or belongs to another comic)
*/
func (handler *Handler) saveProgress(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	comicID, err := requestutil.UUIDParam(request, "comicID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input progressRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.SaveProgress(request.Context(), userID, comicID, input.ChapterID, input.Page); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// GET /api/v1/me/favorites.
func (handler *Handler) listFavorites(writer http.ResponseWriter, request *http.Request) {
	handler.writeList(writer, request, handler.service.ListFavorites)
}

// GET /api/v1/me/history.
func (handler *Handler) listHistory(writer http.ResponseWriter, request *http.Request) {
	handler.writeList(writer, request, handler.service.ListHistory)
}

type listFunc func(ctx context.Context, userID string, limit, offset int) ([]*Entitlement, int, error)

func (handler *Handler) writeList(writer http.ResponseWriter, request *http.Request, list listFunc) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	items, total, err := list(request.Context(), userID, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, items, pagination.NewMeta(params.Page, params.Limit, total))
}
