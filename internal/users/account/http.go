// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account provides the HTTP delivery layer for wallets.

# Routing Strategy

  - Member: /me/account and /me/ledger expose the caller's own wallet.
  - Admin: /admin/users/... provisions accounts, inspects wallets, issues
    credits and manages VIP membership.
*/
package account

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/comicpass/internal/platform/constants"
	"github.com/taibuivan/comicpass/internal/platform/middleware"
	requestutil "github.com/taibuivan/comicpass/internal/platform/request"
	"github.com/taibuivan/comicpass/internal/platform/respond"
	"github.com/taibuivan/comicpass/internal/platform/sec"
	"github.com/taibuivan/comicpass/internal/platform/validate"
	"github.com/taibuivan/comicpass/pkg/pagination"
)

// Handler implements the HTTP layer for account management.
type Handler struct {
	service *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches wallet endpoints to the root API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Group(func(member chi.Router) {
		member.Use(middleware.RequireAuth)
		member.Get("/me/account", handler.getMyAccount)
		member.Get("/me/ledger", handler.listMyLedger)
	})

	api.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))
		admin.Get("/admin/users", handler.listAccounts)
		admin.Post("/admin/users", handler.openAccount)
		admin.Get("/admin/users/stats", handler.getStats)
		admin.Get("/admin/users/{id}/account", handler.getAccount)
		admin.Get("/admin/users/{id}/ledger", handler.listLedger)
		admin.Post("/admin/users/{id}/credits", handler.creditAccount)
		admin.Put("/admin/users/{id}/vip", handler.setVIP)
	})
}

// # Member Endpoints

/*
GET /api/v1/me/account.

Response:
  - 200: Account: Caller's balance and identity
  - 401: ErrUnauthorized: Authentication required
  - 404: USER_NOT_FOUND: No wallet provisioned for the caller
*/
func (handler *Handler) getMyAccount(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.service.Get(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

// GET /api/v1/me/ledger.
func (handler *Handler) listMyLedger(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	handler.writeLedger(writer, request, userID)
}

// # Admin Endpoints

// GET /api/v1/admin/users?search=&page=&limit=.
func (handler *Handler) listAccounts(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	accounts, total, err := handler.service.List(request.Context(), request.URL.Query().Get("search"), params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, accounts, pagination.NewMeta(params.Page, params.Limit, total))
}

// openAccountRequest is the inbound schema for provisioning a wallet.
type openAccountRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

/*
POST /api/v1/admin/users.

Description: Provisions a wallet for an identity issued elsewhere and credits
the configured starting grant.

Response:
  - 201: Account: Provisioned account
  - 400: Validation failure
  - 409: Username or email already registered
*/
func (handler *Handler) openAccount(writer http.ResponseWriter, request *http.Request) {
	var input openAccountRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("username", input.Username).MinLen("username", input.Username, 3).MaxLen("username", input.Username, 32)
	v.Required("email", input.Email).Email("email", input.Email)
	if input.Role != "" {
		v.OneOf("role", input.Role, sec.Roles()...)
	}
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.service.Open(request.Context(), OpenInput{
		Username: input.Username,
		Email:    input.Email,
		Role:     sec.UserRole(input.Role),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, account)
}

// GET /api/v1/admin/users/{id}/account.
func (handler *Handler) getAccount(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.UUIDParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.service.Get(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

// GET /api/v1/admin/users/{id}/ledger.
func (handler *Handler) listLedger(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.UUIDParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.writeLedger(writer, request, userID)
}

// creditRequest is the inbound schema for an operator grant.
type creditRequest struct {
	Amount int64  `json:"amount"`
	Note   string `json:"note"`
}

/*
POST /api/v1/admin/users/{id}/credits.

Description: Adds coins to a wallet. The credit is written through the
purchase engine together with its ledger entry.

Response:
  - 201: LedgerEntry: The recorded movement
  - 400: Amount outside (0, MaxGrant]
  - 404: USER_NOT_FOUND
*/
func (handler *Handler) creditAccount(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.UUIDParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input creditRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Positive("amount", input.Amount)
	v.Custom("amount", input.Amount > constants.MaxGrant, fmt.Sprintf("amount must not exceed %d", constants.MaxGrant))
	v.MaxLen("note", input.Note, 200)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	entry, err := handler.service.Credit(request.Context(), userID, input.Amount, input.Note)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, entry)
}

// GET /api/v1/admin/users/stats.
func (handler *Handler) getStats(writer http.ResponseWriter, request *http.Request) {
	stats, err := handler.service.Stats(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, stats)
}

// vipRequest is the inbound schema for VIP administration.
type vipRequest struct {
	IsVIP     *bool      `json:"is_vip"`
	ExpiresAt *time.Time `json:"vip_expires_at"`
}

/*
PUT /api/v1/admin/users/{id}/vip.

Description: Grants or revokes VIP membership. Omitting vip_expires_at on a
grant makes it open-ended.

Response:
  - 200: Account: Updated account
  - 400: Missing is_vip or an expiry in the past
  - 404: USER_NOT_FOUND
*/
func (handler *Handler) setVIP(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.UUIDParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input vipRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if input.IsVIP == nil {
		respond.Error(writer, request, validate.RequiredError("is_vip", "is_vip is required"))
		return
	}

	account, err := handler.service.SetVIP(request.Context(), userID, VIPInput{
		IsVIP:     *input.IsVIP,
		ExpiresAt: input.ExpiresAt,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

func (handler *Handler) writeLedger(writer http.ResponseWriter, request *http.Request, userID string) {
	params := pagination.FromRequest(request)

	entries, total, err := handler.service.ListLedger(request.Context(), userID, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, entries, pagination.NewMeta(params.Page, params.Limit, total))
}
