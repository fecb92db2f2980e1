// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package chapter provides the HTTP interface for chapter discovery and management.

Page images are not served here: readers fetch them through the access-gated
reader endpoint.
*/
package chapter

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

// Handler implements the HTTP layer for chapter management.
type Handler struct {
	service *Service
}

// NewHandler constructs a new chapter [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches chapter endpoints to the root API router.
// Chapter endpoints span both /comics/{comicID}/... and /chapters/... prefixes.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Get("/comics/{comicID}/chapters", handler.listChapters)
	api.Get("/chapters/{chapterID}", handler.getChapter)

	api.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleEditor))
		admin.Post("/admin/comics/{comicID}/chapters", handler.createChapter)
		admin.Post("/admin/chapters/{chapterID}/pages", handler.addPages)
	})
}

// # Chapter Retrieval

/*
GET /api/v1/comics/{comicID}/chapters.

Request:
  - dir: string (asc, desc)
  - page, limit: int

Response:
  - 200: []Chapter: Paginated list
  - 404: COMIC_NOT_FOUND
*/
func (handler *Handler) listChapters(writer http.ResponseWriter, request *http.Request) {
	comicID, err := requestutil.UUIDParam(request, "comicID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	filter := Filter{SortDir: request.URL.Query().Get("dir")}

	chapters, total, err := handler.service.List(request.Context(), comicID, filter, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, chapters, pagination.NewMeta(params.Page, params.Limit, total))
}

// GET /api/v1/chapters/{chapterID}.
func (handler *Handler) getChapter(writer http.ResponseWriter, request *http.Request) {
	chapterID, err := requestutil.UUIDParam(request, "chapterID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapter, err := handler.service.Get(request.Context(), chapterID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, chapter)
}

// # Chapter Management

// createChapterRequest defines the inbound JSON schema for a new chapter.
type createChapterRequest struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
}

/*
POST /api/v1/admin/comics/{comicID}/chapters.

Response:
  - 201: Chapter: Created chapter, with its free flag fixed
  - 400: Validation failure
  - 404: COMIC_NOT_FOUND
  - 409: Chapter number already used
*/
func (handler *Handler) createChapter(writer http.ResponseWriter, request *http.Request) {
	comicID, err := requestutil.UUIDParam(request, "comicID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createChapterRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapter, err := handler.service.Create(request.Context(), comicID, CreateInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, chapter)
}

// addPagesRequest lists page images in reading order.
type addPagesRequest struct {
	Pages []struct {
		ImageURL     string  `json:"image_url"`
		ThumbnailURL *string `json:"thumbnail_url"`
	} `json:"pages"`
}

/*
POST /api/v1/admin/chapters/{chapterID}/pages.

Response:
  - 201: []Page: Appended pages
  - 400: Validation failure
  - 404: CHAPTER_NOT_FOUND
*/
func (handler *Handler) addPages(writer http.ResponseWriter, request *http.Request) {
	chapterID, err := requestutil.UUIDParam(request, "chapterID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input addPagesRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pages := make([]PageInput, len(input.Pages))
	for i, page := range input.Pages {
		pages[i] = PageInput{ImageURL: page.ImageURL, ThumbnailURL: page.ThumbnailURL}
	}

	created, err := handler.service.AddPages(request.Context(), chapterID, pages)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, created)
}
