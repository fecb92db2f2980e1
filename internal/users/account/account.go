// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account owns the reader's wallet: identity fields, the integer coin
balance and the append-only balance ledger.

# Balance Rules

  - Balances are whole coins and never drop below zero.
  - Every mutation bumps Version and appends exactly one [LedgerEntry] in the
    same transaction, so the ledger always sums to the current balance.
  - Only the purchase engine mutates balances. This package exposes the
    primitives; it never decides when to call them.
*/
package account

import (
	"net/http"
	"time"

	"github.com/taibuivan/comicpass/internal/platform/apperr"
)

// # Domain Errors

var (
	// ErrAccountNotFound is returned when no account row matches the user ID.
	ErrAccountNotFound = apperr.New("USER_NOT_FOUND", "User not found", http.StatusNotFound)

	// ErrBalanceConflict is returned when a guarded balance update matched no
	// row: the version moved underneath the caller or funds ran short.
	ErrBalanceConflict = apperr.New("BALANCE_CONFLICT", "Balance changed concurrently", http.StatusConflict)

	// ErrUsernameTaken is returned when the username or email is already registered.
	ErrUsernameTaken = apperr.Conflict("Username or email already registered")
)

// # Entities

// Account is the balance-holding identity of a reader.
type Account struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	Balance      int64      `json:"balance"`
	Version      int64      `json:"version"`
	IsVIP        bool       `json:"is_vip"`
	VIPExpiresAt *time.Time `json:"vip_expires_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CanAfford reports whether the current balance covers amount.
func (a *Account) CanAfford(amount int64) bool {
	return a.Balance >= amount
}

// VIPActive reports whether the VIP membership is in force at now. A
// membership without an expiry never lapses.
func (a *Account) VIPActive(now time.Time) bool {
	return a.IsVIP && (a.VIPExpiresAt == nil || now.Before(*a.VIPExpiresAt))
}

// Stats summarises the account base for the admin dashboard.
type Stats struct {
	TotalUsers   int `json:"total_users"`
	VIPUsers     int `json:"vip_users"`
	RegularUsers int `json:"regular_users"`
}

// LedgerReason classifies why a balance moved.
type LedgerReason string

const (
	// ReasonPurchase is a debit caused by a completed order.
	ReasonPurchase LedgerReason = "purchase"

	// ReasonGrant is a credit issued by an operator or the signup grant.
	ReasonGrant LedgerReason = "grant"
)

// LedgerEntry is one immutable balance movement.
type LedgerEntry struct {
	ID           string       `json:"id"`
	UserID       string       `json:"user_id"`
	Delta        int64        `json:"delta"`
	BalanceAfter int64        `json:"balance_after"`
	Reason       LedgerReason `json:"reason"`
	OrderID      *string      `json:"order_id,omitempty"`
	Note         string       `json:"note,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}
