// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package order provides the HTTP delivery layer for the order ledger.

# Routing Strategy

  - Member: /me/orders lists the caller's own purchases.
  - Admin: /admin/orders... lists, aggregates and rejects orders.
*/
package order

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/comicpass/internal/platform/middleware"
	requestutil "github.com/taibuivan/comicpass/internal/platform/request"
	"github.com/taibuivan/comicpass/internal/platform/respond"
	"github.com/taibuivan/comicpass/internal/platform/sec"
	"github.com/taibuivan/comicpass/pkg/pagination"
)

// Handler implements the HTTP layer for orders.
type Handler struct {
	service *Service
}

// NewHandler constructs a new order [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches order endpoints to the root API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Group(func(member chi.Router) {
		member.Use(middleware.RequireAuth)
		member.Get("/me/orders", handler.listMyOrders)
	})

	api.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))
		admin.Get("/admin/orders", handler.listOrders)
		admin.Get("/admin/orders/stats", handler.getStats)
		admin.Post("/admin/orders/{orderID}/reject", handler.rejectOrder)
		admin.Get("/admin/users/{id}/orders", handler.listUserOrders)
	})
}

// GET /api/v1/me/orders.
func (handler *Handler) listMyOrders(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	handler.writeList(writer, request, Filter{UserID: userID})
}

/*
GET /api/v1/admin/orders.

Request:
  - status: string (pending, completed, failed)
  - page, limit: int
*/
func (handler *Handler) listOrders(writer http.ResponseWriter, request *http.Request) {
	handler.writeList(writer, request, Filter{Status: Status(request.URL.Query().Get("status"))})
}

// GET /api/v1/admin/users/{id}/orders.
func (handler *Handler) listUserOrders(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.UUIDParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.writeList(writer, request, Filter{UserID: userID})
}

// GET /api/v1/admin/orders/stats.
func (handler *Handler) getStats(writer http.ResponseWriter, request *http.Request) {
	stats, err := handler.service.Stats(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, stats)
}

/*
POST /api/v1/admin/orders/{orderID}/reject.

Response:
  - 200: Order: The failed order
  - 404: Order not found
  - 409: ORDER_FINALIZED
*/
func (handler *Handler) rejectOrder(writer http.ResponseWriter, request *http.Request) {
	orderID, err := requestutil.UUIDParam(request, "orderID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	order, err := handler.service.Reject(request.Context(), orderID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, order)
}

func (handler *Handler) writeList(writer http.ResponseWriter, request *http.Request, filter Filter) {
	params := pagination.FromRequest(request)

	orders, total, err := handler.service.List(request.Context(), filter, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, orders, pagination.NewMeta(params.Page, params.Limit, total))
}
