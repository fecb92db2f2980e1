// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package purchase

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/comicpass/internal/billing/order"
	"github.com/taibuivan/comicpass/internal/platform/middleware"
	requestutil "github.com/taibuivan/comicpass/internal/platform/request"
	"github.com/taibuivan/comicpass/internal/platform/respond"
)

// Handler implements the HTTP layer for purchases.
type Handler struct {
	engine *Engine
}

// NewHandler constructs a new purchase [Handler].
func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

// RegisterRoutes attaches purchase endpoints to the root API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Group(func(member chi.Router) {
		member.Use(middleware.RequireAuth)
		member.Post("/purchases", handler.createPurchase)
	})
}

type purchaseRequest struct {
	ComicID   string `json:"comic_id"`
	Kind      string `json:"kind"`
	ChapterID string `json:"chapter_id"`
}

/*
POST /api/v1/purchases.

Request:
  - comic_id: string
  - kind: "comic" | "chapter"
  - chapter_id: string (chapter purchases only)

Response:
  - 201: Receipt
  - 400: VALIDATION_ERROR, ALREADY_OWNED, INSUFFICIENT_BALANCE
  - 404: USER_NOT_FOUND, COMIC_NOT_FOUND, CHAPTER_NOT_FOUND
  - 409: TRANSACTION_CONFLICT
  - 503: STORAGE_UNAVAILABLE
*/
func (handler *Handler) createPurchase(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input purchaseRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	receipt, err := handler.engine.Purchase(request.Context(), Request{
		UserID:    userID,
		ComicID:   input.ComicID,
		Kind:      order.Kind(input.Kind),
		ChapterID: input.ChapterID,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, receipt)
}
