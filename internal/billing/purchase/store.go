// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package purchase

import (
	"context"
	"time"

	"github.com/taibuivan/comicpass/internal/billing/order"
	"github.com/taibuivan/comicpass/internal/core/chapter"
	"github.com/taibuivan/comicpass/internal/core/comic"
	"github.com/taibuivan/comicpass/internal/library/entitlement"
	"github.com/taibuivan/comicpass/internal/users/account"
)

// # Collaborators

// AccountStore is the balance surface the engine needs inside a transaction.
type AccountStore interface {

	/*
		LockForUpdate reads the account and holds a row lock until the
		transaction ends.

		Returns:
		  - error: account.ErrAccountNotFound if missing
	*/
	LockForUpdate(ctx context.Context, userID string) (*account.Account, error)

	// Create inserts a new zero-balance account and fills its generated fields.
	Create(ctx context.Context, holder *account.Account) error

	// Debit subtracts amount if the version still matches.
	Debit(ctx context.Context, userID string, amount, expectedVersion int64) (*account.Account, error)

	// Credit adds amount if the version still matches.
	Credit(ctx context.Context, userID string, amount, expectedVersion int64) (*account.Account, error)

	// AppendLedger journals one balance movement.
	AppendLedger(ctx context.Context, entry *account.LedgerEntry) error
}

// CatalogStore resolves what is being bought.
type CatalogStore interface {
	FindTitle(ctx context.Context, comicID string) (*comic.Comic, error)
	FindChapter(ctx context.Context, chapterID string) (*chapter.Chapter, error)
}

// EntitlementStore reads and grants ownership.
type EntitlementStore interface {
	Find(ctx context.Context, userID, comicID string) (*entitlement.Entitlement, error)
	GrantComic(ctx context.Context, userID, comicID string, at time.Time) error
	UnlockChapter(ctx context.Context, unlock *entitlement.ChapterUnlock) error
}

// OrderStore appends to the order ledger.
type OrderStore interface {
	Record(ctx context.Context, order *order.Order) error
}

// Stores is the set of collaborators bound to one transaction.
type Stores struct {
	Accounts     AccountStore
	Catalog      CatalogStore
	Entitlements EntitlementStore
	Orders       OrderStore
}

// Transactor runs fn inside one atomic unit of work.
//
// When fn returns an error every write made through stores is discarded and
// the error is returned. Implementations must provide serializable isolation
// for writes to the same account.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
}

// CacheInvalidator drops cached entitlements after a committed purchase.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, userID, comicID string)
}
