// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"time"
)

// # Account Data Access

// Repository defines the persistence contract for accounts and their ledger.
type Repository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *Account: Hydrated account
		  - error: ErrAccountNotFound if missing
	*/
	FindByID(context context.Context, id string) (*Account, error)

	/*
		LockForUpdate reads the account and takes a row lock that is held until
		the surrounding transaction ends.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *Account: Current balance and version
		  - error: ErrAccountNotFound if missing
	*/
	LockForUpdate(context context.Context, id string) (*Account, error)

	/*
		List returns accounts ordered by creation, optionally filtered by a
		username or email fragment.

		Parameters:
		  - context: context.Context
		  - search: string
		  - limit: int
		  - offset: int

		Returns:
		  - []*Account: Page of accounts
		  - int: Total matching accounts
		  - error: Storage failures
	*/
	List(context context.Context, search string, limit, offset int) ([]*Account, int, error)

	// Create persists a new account with a zero balance.
	Create(context context.Context, account *Account) error

	/*
		SetVIP replaces the VIP flag and expiry of an account.

		Returns:
		  - *Account: Account after the update
		  - error: ErrAccountNotFound if missing
	*/
	SetVIP(context context.Context, id string, isVIP bool, expiresAt *time.Time) (*Account, error)

	// Stats counts all accounts and those whose VIP membership is active at now.
	Stats(context context.Context, now time.Time) (*Stats, error)

	/*
		Debit subtracts amount from the balance if the stored version still
		equals expectedVersion and the balance covers it.

		Returns:
		  - *Account: Account after the debit (new balance, version+1)
		  - error: ErrBalanceConflict when the guard matched no row
	*/
	Debit(context context.Context, id string, amount, expectedVersion int64) (*Account, error)

	// Credit adds amount to the balance under the same version guard as Debit.
	Credit(context context.Context, id string, amount, expectedVersion int64) (*Account, error)

	// AppendLedger records one balance movement.
	AppendLedger(context context.Context, entry *LedgerEntry) error

	/*
		ListLedger returns a user's balance movements, newest first.

		Parameters:
		  - context: context.Context
		  - userID: string (UUID)
		  - limit: int
		  - offset: int

		Returns:
		  - []*LedgerEntry: Page of movements
		  - int: Total movements
		  - error: Storage failures
	*/
	ListLedger(context context.Context, userID string, limit, offset int) ([]*LedgerEntry, int, error)
}
