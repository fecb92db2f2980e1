// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package purchase

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/comicpass/internal/billing/order"
	"github.com/taibuivan/comicpass/internal/core/chapter"
	"github.com/taibuivan/comicpass/internal/core/comic"
	"github.com/taibuivan/comicpass/internal/library/entitlement"
	"github.com/taibuivan/comicpass/internal/users/account"
)

// memoryState is the committed data of the in-memory store.
type memoryState struct {
	accounts     map[string]*account.Account
	ledger       []*account.LedgerEntry
	comics       map[string]*comic.Comic
	chapters     map[string]*chapter.Chapter
	entitlements map[string]*entitlement.Entitlement
	orders       []*order.Order
}

func newMemoryState() *memoryState {
	return &memoryState{
		accounts:     map[string]*account.Account{},
		comics:       map[string]*comic.Comic{},
		chapters:     map[string]*chapter.Chapter{},
		entitlements: map[string]*entitlement.Entitlement{},
	}
}

func (state *memoryState) clone() *memoryState {
	copied := newMemoryState()
	for id, holder := range state.accounts {
		value := *holder
		copied.accounts[id] = &value
	}
	for id, title := range state.comics {
		value := *title
		copied.comics[id] = &value
	}
	for id, target := range state.chapters {
		value := *target
		copied.chapters[id] = &value
	}
	for key, owned := range state.entitlements {
		value := *owned
		value.UnlockedChapterIDs = slices.Clone(owned.UnlockedChapterIDs)
		copied.entitlements[key] = &value
	}
	copied.ledger = slices.Clone(state.ledger)
	copied.orders = slices.Clone(state.orders)
	return copied
}

func entitlementKey(userID, comicID string) string {
	return userID + ":" + comicID
}

/*
memoryTransactor runs each unit of work on a private copy of the state and
publishes it on commit. A commit fails with a serialization error when
another unit committed since the copy was taken, which is how SERIALIZABLE
isolation behaves for the rows the engine touches.
*/
type memoryTransactor struct {
	mu      sync.Mutex
	state   *memoryState
	commits int

	// attempts counts WithinTx calls.
	attempts int

	// failOnWrite makes the Nth write of every unit fail as if the
	// connection dropped. Zero disables it.
	failOnWrite int

	// conflicts makes the next N commits fail with 40001.
	conflicts int
}

func newMemoryTransactor() *memoryTransactor {
	return &memoryTransactor{state: newMemoryState()}
}

func (transactor *memoryTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error {
	transactor.mu.Lock()
	transactor.attempts++
	work := transactor.state.clone()
	base := transactor.commits
	failOnWrite := transactor.failOnWrite
	transactor.mu.Unlock()

	tx := &memoryTx{state: work, failOnWrite: failOnWrite}
	if err := fn(ctx, Stores{Accounts: tx, Catalog: tx, Entitlements: tx, Orders: tx}); err != nil {
		return err
	}

	transactor.mu.Lock()
	defer transactor.mu.Unlock()

	if transactor.conflicts > 0 {
		transactor.conflicts--
		return &pgconn.PgError{Code: pgerrcode.SerializationFailure}
	}
	if transactor.commits != base {
		return &pgconn.PgError{Code: pgerrcode.SerializationFailure}
	}

	transactor.state = work
	transactor.commits++
	return nil
}

// snapshot returns a copy of the committed state.
func (transactor *memoryTransactor) snapshot() *memoryState {
	transactor.mu.Lock()
	defer transactor.mu.Unlock()
	return transactor.state.clone()
}

// memoryTx implements every store interface over one working copy.
type memoryTx struct {
	state       *memoryState
	writes      int
	failOnWrite int
}

func (tx *memoryTx) write() error {
	tx.writes++
	if tx.failOnWrite > 0 && tx.writes == tx.failOnWrite {
		return &pgconn.PgError{Code: pgerrcode.ConnectionFailure}
	}
	return nil
}

func (tx *memoryTx) LockForUpdate(_ context.Context, userID string) (*account.Account, error) {
	holder, ok := tx.state.accounts[userID]
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	value := *holder
	return &value, nil
}

func (tx *memoryTx) Create(_ context.Context, holder *account.Account) error {
	for _, existing := range tx.state.accounts {
		if existing.Username == holder.Username || existing.Email == holder.Email {
			return account.ErrUsernameTaken.WithCause(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
		}
	}
	holder.Balance = 0
	holder.Version = 0
	value := *holder
	tx.state.accounts[holder.ID] = &value
	return tx.write()
}

func (tx *memoryTx) applyDelta(userID string, delta, expectedVersion int64) (*account.Account, error) {
	holder, ok := tx.state.accounts[userID]
	if !ok || holder.Version != expectedVersion || holder.Balance+delta < 0 {
		return nil, account.ErrBalanceConflict
	}
	holder.Balance += delta
	holder.Version++
	if err := tx.write(); err != nil {
		return nil, err
	}
	value := *holder
	return &value, nil
}

func (tx *memoryTx) Debit(_ context.Context, userID string, amount, expectedVersion int64) (*account.Account, error) {
	return tx.applyDelta(userID, -amount, expectedVersion)
}

func (tx *memoryTx) Credit(_ context.Context, userID string, amount, expectedVersion int64) (*account.Account, error) {
	return tx.applyDelta(userID, amount, expectedVersion)
}

func (tx *memoryTx) AppendLedger(_ context.Context, entry *account.LedgerEntry) error {
	value := *entry
	tx.state.ledger = append(tx.state.ledger, &value)
	return tx.write()
}

func (tx *memoryTx) FindTitle(_ context.Context, comicID string) (*comic.Comic, error) {
	title, ok := tx.state.comics[comicID]
	if !ok {
		return nil, comic.ErrComicNotFound
	}
	value := *title
	return &value, nil
}

func (tx *memoryTx) FindChapter(_ context.Context, chapterID string) (*chapter.Chapter, error) {
	target, ok := tx.state.chapters[chapterID]
	if !ok {
		return nil, chapter.ErrChapterNotFound
	}
	value := *target
	return &value, nil
}

func (tx *memoryTx) Find(_ context.Context, userID, comicID string) (*entitlement.Entitlement, error) {
	owned, ok := tx.state.entitlements[entitlementKey(userID, comicID)]
	if !ok {
		return nil, nil
	}
	value := *owned
	value.UnlockedChapterIDs = slices.Clone(owned.UnlockedChapterIDs)
	return &value, nil
}

func (tx *memoryTx) ensure(userID, comicID string, at time.Time) *entitlement.Entitlement {
	key := entitlementKey(userID, comicID)
	owned, ok := tx.state.entitlements[key]
	if !ok {
		owned = &entitlement.Entitlement{UserID: userID, ComicID: comicID, CreatedAt: at, UpdatedAt: at}
		tx.state.entitlements[key] = owned
	}
	return owned
}

func (tx *memoryTx) GrantComic(_ context.Context, userID, comicID string, at time.Time) error {
	owned := tx.ensure(userID, comicID, at)
	if owned.PurchasedAt != nil {
		return entitlement.ErrAlreadyEntitled
	}
	owned.PurchasedAt = &at
	return tx.write()
}

func (tx *memoryTx) UnlockChapter(_ context.Context, unlock *entitlement.ChapterUnlock) error {
	owned := tx.ensure(unlock.UserID, unlock.ComicID, unlock.UnlockedAt)
	if owned.HasChapter(unlock.ChapterID) {
		return &pgconn.PgError{Code: pgerrcode.UniqueViolation}
	}
	owned.UnlockedChapterIDs = append(owned.UnlockedChapterIDs, unlock.ChapterID)
	return tx.write()
}

func (tx *memoryTx) Record(_ context.Context, placed *order.Order) error {
	value := *placed
	tx.state.orders = append(tx.state.orders, &value)
	return tx.write()
}
