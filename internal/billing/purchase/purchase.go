// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package purchase is the entitlement engine: it turns coins into ownership.

The [Engine] is the only code path that changes an account balance or
completes an order. Each purchase is one serializable transaction that:

 1. locks the buyer's account row,
 2. validates the title, the chapter and existing ownership,
 3. records a completed order, debits the balance, journals the movement and
    grants the entitlement.

Either every write commits or none does. Contended transactions are re-run a
bounded number of times; storage outages are reported, never retried.
*/
package purchase

import (
	"net/http"

	"github.com/taibuivan/comicpass/internal/billing/order"
	"github.com/taibuivan/comicpass/internal/platform/apperr"
	"github.com/taibuivan/comicpass/internal/platform/validate"
)

// # Domain Errors

var (
	ErrUserNotFound        = apperr.New("USER_NOT_FOUND", "User not found", http.StatusNotFound)
	ErrComicNotFound       = apperr.New("COMIC_NOT_FOUND", "Comic not found", http.StatusNotFound)
	ErrChapterNotFound     = apperr.New("CHAPTER_NOT_FOUND", "Chapter not found", http.StatusNotFound)
	ErrAlreadyOwned        = apperr.New("ALREADY_OWNED", "Content already owned", http.StatusBadRequest)
	ErrInsufficientBalance = apperr.New("INSUFFICIENT_BALANCE", "Insufficient balance", http.StatusBadRequest)
	ErrTransactionConflict = apperr.New("TRANSACTION_CONFLICT", "Purchase conflicted with a concurrent update, please retry", http.StatusConflict)
	ErrStorageUnavailable  = apperr.New("STORAGE_UNAVAILABLE", "Storage is temporarily unavailable", http.StatusServiceUnavailable)
	ErrNotPurchasable      = apperr.New("NOT_PURCHASABLE", "This comic cannot be bought as a whole", http.StatusUnprocessableEntity)
	ErrBalanceLimit        = apperr.New("BALANCE_LIMIT", "Balance would exceed the allowed maximum", http.StatusUnprocessableEntity)
)

// # Requests & Receipts

// Request asks the engine to buy a comic or one of its chapters.
type Request struct {
	UserID    string
	ComicID   string
	Kind      order.Kind
	ChapterID string
}

// Validate rejects malformed requests before any storage access.
func (r Request) Validate() error {
	validator := &validate.Validator{}
	validator.UUID("user_id", r.UserID)
	validator.UUID("comic_id", r.ComicID)
	validator.OneOf("kind", string(r.Kind), string(order.KindComic), string(order.KindChapter))
	if r.Kind == order.KindChapter {
		validator.UUID("chapter_id", r.ChapterID)
	}
	if r.Kind == order.KindComic && r.ChapterID != "" {
		validator.Custom("chapter_id", true, "chapter_id is only allowed for chapter purchases")
	}
	return validator.Err()
}

// Receipt is returned for a completed purchase.
type Receipt struct {
	OrderID          string     `json:"order_id"`
	Kind             order.Kind `json:"kind"`
	ComicID          string     `json:"comic_id"`
	ChapterID        *string    `json:"chapter_id,omitempty"`
	Amount           int64      `json:"amount"`
	RemainingBalance int64      `json:"remaining_balance"`
}
