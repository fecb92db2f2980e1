// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package comic provides the HTTP interface for discovery and management of the catalogue.

# Routing Strategy

  - Public (v1): Discovery endpoints accessible to all visitors (GET /comics).
  - Restricted (v1): Mutative endpoints under /admin requiring the Admin role.
*/
package comic

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/comicpass/internal/platform/middleware"
	requestutil "github.com/taibuivan/comicpass/internal/platform/request"
	"github.com/taibuivan/comicpass/internal/platform/respond"
	"github.com/taibuivan/comicpass/internal/platform/sec"
	"github.com/taibuivan/comicpass/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for comic management and discovery.
type Handler struct {
	service *Service
}

// NewHandler constructs a new comic [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches catalogue endpoints to the root API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Get("/comics", handler.listComics)
	api.Get("/comics/{comicID}", handler.getComic)

	api.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleEditor))
		admin.Post("/admin/comics", handler.createComic)
		admin.Patch("/admin/comics/{comicID}", handler.updateComic)
	})
}

/*
GET /api/v1/comics.

Request:
  - q: string (Title or slug fragment)
  - status: string (ongoing, completed, hiatus)
  - page, limit: int

Response:
  - 200: []Comic: Paginated list
*/
func (handler *Handler) listComics(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	filter := Filter{
		Search: request.URL.Query().Get("q"),
		Status: Status(request.URL.Query().Get("status")),
	}

	comics, total, err := handler.service.List(request.Context(), filter, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, comics, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
GET /api/v1/comics/{comicID}.

Description: comicID may be the UUID or the slug of the title.

Response:
  - 200: Comic
  - 404: COMIC_NOT_FOUND
*/
func (handler *Handler) getComic(writer http.ResponseWriter, request *http.Request) {
	comic, err := handler.service.Get(request.Context(), requestutil.ID(request, "comicID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, comic)
}

// createComicRequest is the inbound JSON schema for a new title.
type createComicRequest struct {
	Title            string `json:"title"`
	Synopsis         string `json:"synopsis"`
	CoverURL         string `json:"cover_url"`
	Status           Status `json:"status"`
	UnlockPrice      int64  `json:"unlock_price"`
	FreeChapterCount int    `json:"free_chapter_count"`
}

/*
POST /api/v1/admin/comics.

Response:
  - 201: Comic: Created title
  - 400: Validation failure
  - 409: Slug already taken
*/
func (handler *Handler) createComic(writer http.ResponseWriter, request *http.Request) {
	var input createComicRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comic, err := handler.service.Create(request.Context(), CreateInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, comic)
}

// updateComicRequest carries a partial update; omitted fields stay unchanged.
type updateComicRequest struct {
	Title            *string `json:"title"`
	Synopsis         *string `json:"synopsis"`
	CoverURL         *string `json:"cover_url"`
	Status           *Status `json:"status"`
	UnlockPrice      *int64  `json:"unlock_price"`
	FreeChapterCount *int    `json:"free_chapter_count"`
}

/*
PATCH /api/v1/admin/comics/{comicID}.

Response:
  - 200: Comic: Updated title
  - 400: Validation failure
  - 404: COMIC_NOT_FOUND
*/
func (handler *Handler) updateComic(writer http.ResponseWriter, request *http.Request) {
	comicID, err := requestutil.UUIDParam(request, "comicID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateComicRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comic, err := handler.service.Update(request.Context(), comicID, UpdateInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, comic)
}
