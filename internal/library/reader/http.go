// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reader

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/comicpass/internal/platform/request"
	"github.com/taibuivan/comicpass/internal/platform/respond"
)

// Handler implements the HTTP layer for reading.
type Handler struct {
	service *Service
}

// NewHandler constructs a new reader [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches reading endpoints. Authentication is optional.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Get("/chapters/{chapterID}/pages", handler.readChapter)
}

/*
GET /api/v1/chapters/{chapterID}/pages.

Response:
  - 200: Content
  - 403: CHAPTER_LOCKED
  - 404: CHAPTER_NOT_FOUND
*/
func (handler *Handler) readChapter(writer http.ResponseWriter, request *http.Request) {
	userID := requestutil.OptionalUserID(request)

	chapterID, err := requestutil.UUIDParam(request, "chapterID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	content, err := handler.service.Read(request.Context(), userID, chapterID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, content)
}
