// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package order is the ledger of purchase attempts.

Orders are appended, never edited, except for one transition out of pending:

	pending ──► completed   (purchase engine only)
	pending ──► failed      (engine or operator)

Completed and failed orders are terminal.
*/
package order

import (
	"net/http"
	"time"

	"github.com/taibuivan/comicpass/internal/platform/apperr"
)

// # Domain Enums

// Kind is what an order buys.
type Kind string

const (
	// KindComic buys every chapter of a comic.
	KindComic Kind = "comic"

	// KindChapter buys a single chapter.
	KindChapter Kind = "chapter"
)

// IsValid reports whether k is a recognised [Kind].
func (k Kind) IsValid() bool {
	return k == KindComic || k == KindChapter
}

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// IsValid reports whether s is a recognised [Status].
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed from s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// # Domain Errors

var (
	// ErrOrderNotFound is returned when no order matches the ID.
	ErrOrderNotFound = apperr.NotFound("Order")

	// ErrOrderFinalized is returned when a terminal order is asked to move.
	ErrOrderFinalized = apperr.New("ORDER_FINALIZED", "Order is already completed or failed", http.StatusConflict)
)

// # Entities

// Order is one purchase attempt.
type Order struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	ComicID     string     `json:"comic_id"`
	ChapterID   *string    `json:"chapter_id,omitempty"`
	Kind        Kind       `json:"kind"`
	Amount      int64      `json:"amount"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	FailedAt    *time.Time `json:"failed_at,omitempty"`
}

// Filter narrows an admin order listing.
type Filter struct {
	Status Status
	UserID string
}

// Stats summarises the ledger for the admin dashboard. Revenue only counts
// completed orders.
type Stats struct {
	TotalOrders     int   `json:"total_orders"`
	CompletedOrders int   `json:"completed_orders"`
	PendingOrders   int   `json:"pending_orders"`
	FailedOrders    int   `json:"failed_orders"`
	TotalRevenue    int64 `json:"total_revenue"`
	TodayRevenue    int64 `json:"today_revenue"`
}
