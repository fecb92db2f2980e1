// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package purchase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/comicpass/internal/billing/order"
	"github.com/taibuivan/comicpass/internal/core/chapter"
	"github.com/taibuivan/comicpass/internal/core/comic"
	"github.com/taibuivan/comicpass/internal/library/entitlement"
	"github.com/taibuivan/comicpass/internal/platform/apperr"
	"github.com/taibuivan/comicpass/internal/platform/constants"
	"github.com/taibuivan/comicpass/internal/platform/ctxutil"
	"github.com/taibuivan/comicpass/internal/platform/dberr"
	"github.com/taibuivan/comicpass/internal/platform/metrics"
	"github.com/taibuivan/comicpass/internal/platform/validate"
	"github.com/taibuivan/comicpass/internal/users/account"
	"github.com/taibuivan/comicpass/pkg/uuid"
)

// # Engine Configuration

// Options tunes an [Engine]. Zero values fall back to the platform defaults.
type Options struct {
	// ChapterPrice is charged for every individual chapter unlock.
	ChapterPrice int64

	// MaxAttempts bounds how many times a contended transaction is run.
	MaxAttempts int

	// Backoff is the base pause between attempts; attempt n waits n*Backoff.
	Backoff time.Duration

	// TxTimeout bounds one whole operation, retries included.
	TxTimeout time.Duration

	// Invalidator is told about every committed purchase. Optional.
	Invalidator CacheInvalidator

	Clock func() time.Time
	NewID func() string
}

// Engine executes purchases and credits.
type Engine struct {
	transactor   Transactor
	invalidator  CacheInvalidator
	chapterPrice int64
	maxAttempts  int
	backoff      time.Duration
	txTimeout    time.Duration
	clock        func() time.Time
	newID        func() string
	logger       *slog.Logger
}

// NewEngine constructs an [Engine] over transactor.
func NewEngine(transactor Transactor, options Options, logger *slog.Logger) *Engine {
	engine := &Engine{
		transactor:   transactor,
		invalidator:  options.Invalidator,
		chapterPrice: options.ChapterPrice,
		maxAttempts:  options.MaxAttempts,
		backoff:      options.Backoff,
		txTimeout:    options.TxTimeout,
		clock:        options.Clock,
		newID:        options.NewID,
		logger:       logger,
	}

	if engine.chapterPrice <= 0 {
		engine.chapterPrice = constants.DefaultChapterPrice
	}
	if engine.maxAttempts < 1 {
		engine.maxAttempts = constants.DefaultPurchaseMaxAttempts
	}
	if engine.backoff < 0 {
		engine.backoff = 0
	}
	if engine.txTimeout <= 0 {
		engine.txTimeout = constants.PurchaseTxTimeout
	}
	if engine.clock == nil {
		engine.clock = time.Now
	}
	if engine.newID == nil {
		engine.newID = uuid.New
	}

	return engine
}

// # Purchase

/*
Purchase buys a whole comic or a single chapter for request.UserID.

Description: Runs the validation sequence and every write in one transaction.
The transaction is detached from the caller's cancellation so a client
disconnect cannot abandon it midway; it is bounded by the engine timeout.

Parameters:
  - ctx: context.Context
  - request: Request

Returns:
  - *Receipt: Order ID and the balance left after the debit
  - error: One of the package sentinels, or a validation error
*/
func (engine *Engine) Purchase(ctx context.Context, request Request) (*Receipt, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	started := time.Now()
	txCtx, cancel := ctxutil.Detached(ctx, engine.txTimeout)
	defer cancel()

	var receipt *Receipt
	err := engine.run(txCtx, "purchase", func(ctx context.Context, stores Stores) error {
		var err error
		receipt, err = engine.purchase(ctx, stores, request)
		return err
	})

	metrics.RecordPurchase(string(request.Kind), outcome(err), time.Since(started))

	if err != nil {
		engine.logger.Info("purchase_rejected",
			slog.String("user_id", request.UserID),
			slog.String("comic_id", request.ComicID),
			slog.String("kind", string(request.Kind)),
			slog.String("code", apperr.As(err).Code),
		)
		return nil, err
	}

	metrics.RecordDebit(receipt.Amount)
	if engine.invalidator != nil {
		engine.invalidator.Invalidate(txCtx, request.UserID, request.ComicID)
	}

	engine.logger.Info("purchase_completed",
		slog.String("order_id", receipt.OrderID),
		slog.String("user_id", request.UserID),
		slog.String("comic_id", request.ComicID),
		slog.String("kind", string(request.Kind)),
		slog.Int64("amount", receipt.Amount),
		slog.Int64("remaining_balance", receipt.RemainingBalance),
	)

	return receipt, nil
}

// purchase is one attempt. All checks happen before the first write.
func (engine *Engine) purchase(ctx context.Context, stores Stores, request Request) (*Receipt, error) {
	buyer, err := stores.Accounts.LockForUpdate(ctx, request.UserID)
	if err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}

	title, err := stores.Catalog.FindTitle(ctx, request.ComicID)
	if err != nil {
		return nil, mapNotFound(err, ErrComicNotFound)
	}

	var target *chapter.Chapter
	if request.Kind == order.KindChapter {
		target, err = stores.Catalog.FindChapter(ctx, request.ChapterID)
		if err != nil {
			return nil, mapNotFound(err, ErrChapterNotFound)
		}
		if target.ComicID != title.ID {
			return nil, ErrChapterNotFound
		}
	}

	owned, err := stores.Entitlements.Find(ctx, buyer.ID, title.ID)
	if err != nil {
		return nil, err
	}

	price, err := engine.price(title, target, owned)
	if err != nil {
		return nil, err
	}

	if !buyer.CanAfford(price) {
		return nil, ErrInsufficientBalance
	}

	now := engine.clock().UTC()
	placed := &order.Order{
		ID:          engine.newID(),
		UserID:      buyer.ID,
		ComicID:     title.ID,
		Kind:        request.Kind,
		Amount:      price,
		Status:      order.StatusCompleted,
		CreatedAt:   now,
		CompletedAt: &now,
	}
	if target != nil {
		placed.ChapterID = &target.ID
	}

	if err := stores.Orders.Record(ctx, placed); err != nil {
		return nil, err
	}

	debited, err := stores.Accounts.Debit(ctx, buyer.ID, price, buyer.Version)
	if err != nil {
		return nil, err
	}

	if err := stores.Accounts.AppendLedger(ctx, &account.LedgerEntry{
		ID:           engine.newID(),
		UserID:       buyer.ID,
		Delta:        -price,
		BalanceAfter: debited.Balance,
		Reason:       account.ReasonPurchase,
		OrderID:      &placed.ID,
		CreatedAt:    now,
	}); err != nil {
		return nil, err
	}

	if target == nil {
		err = stores.Entitlements.GrantComic(ctx, buyer.ID, title.ID, now)
	} else {
		err = stores.Entitlements.UnlockChapter(ctx, &entitlement.ChapterUnlock{
			UserID:     buyer.ID,
			ComicID:    title.ID,
			ChapterID:  target.ID,
			OrderID:    placed.ID,
			UnlockedAt: now,
		})
	}
	if err != nil {
		return nil, err
	}

	return &Receipt{
		OrderID:          placed.ID,
		Kind:             placed.Kind,
		ComicID:          placed.ComicID,
		ChapterID:        placed.ChapterID,
		Amount:           price,
		RemainingBalance: debited.Balance,
	}, nil
}

// price applies the ownership rules and returns what the purchase costs.
// A nil target means a whole-comic purchase.
func (engine *Engine) price(title *comic.Comic, target *chapter.Chapter, owned *entitlement.Entitlement) (int64, error) {
	if owned.OwnsComic() {
		return 0, ErrAlreadyOwned
	}

	if target == nil {
		if !title.IsPurchasable() {
			return 0, ErrNotPurchasable
		}
		return title.UnlockPrice, nil
	}

	if target.IsFree || owned.HasChapter(target.ID) {
		return 0, ErrAlreadyOwned
	}
	return engine.chapterPrice, nil
}

// # Grant

/*
Grant credits amount coins to userID and journals the movement.

Description: Used for operator top-ups and the signup grant. It shares the
purchase transaction discipline so balance writers never interleave.

Returns:
  - *account.LedgerEntry: The recorded credit
  - error: Validation error, ErrUserNotFound, or a storage sentinel
*/
func (engine *Engine) Grant(ctx context.Context, userID string, amount int64, note string) (*account.LedgerEntry, error) {
	validator := &validate.Validator{}
	validator.UUID("user_id", userID)
	validator.Positive("amount", amount)
	validator.Custom("amount", amount > constants.MaxGrant, fmt.Sprintf("amount must not exceed %d", constants.MaxGrant))
	if err := validator.Err(); err != nil {
		return nil, err
	}

	txCtx, cancel := ctxutil.Detached(ctx, engine.txTimeout)
	defer cancel()

	var entry *account.LedgerEntry
	err := engine.run(txCtx, "grant", func(ctx context.Context, stores Stores) error {
		holder, err := stores.Accounts.LockForUpdate(ctx, userID)
		if err != nil {
			return mapNotFound(err, ErrUserNotFound)
		}

		credited, err := stores.Accounts.Credit(ctx, holder.ID, amount, holder.Version)
		if err != nil {
			return err
		}

		entry = &account.LedgerEntry{
			ID:           engine.newID(),
			UserID:       holder.ID,
			Delta:        amount,
			BalanceAfter: credited.Balance,
			Reason:       account.ReasonGrant,
			Note:         note,
			CreatedAt:    engine.clock().UTC(),
		}
		return stores.Accounts.AppendLedger(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordCredit(amount)
	engine.logger.Info("balance_granted",
		slog.String("user_id", userID),
		slog.Int64("amount", amount),
		slog.Int64("balance_after", entry.BalanceAfter),
	)

	return entry, nil
}

// # Account Opening

/*
OpenAccount inserts holder and credits the starting grant in one transaction.

Description: A failed grant rolls the insert back, so the username stays free
and the caller may simply try again.

Parameters:
  - ctx: context.Context
  - holder: *account.Account (ID, Username, Email and Role set)
  - grant: int64 (zero skips the credit)

Returns:
  - *account.Account: The committed account, balance included
  - error: account.ErrUsernameTaken, a validation error or a storage sentinel
*/
func (engine *Engine) OpenAccount(ctx context.Context, holder *account.Account, grant int64) (*account.Account, error) {
	validator := &validate.Validator{}
	validator.UUID("user_id", holder.ID)
	validator.NonNegative("starting_grant", grant)
	validator.Custom("starting_grant", grant > constants.MaxGrant, fmt.Sprintf("starting_grant must not exceed %d", constants.MaxGrant))
	if err := validator.Err(); err != nil {
		return nil, err
	}

	txCtx, cancel := ctxutil.Detached(ctx, engine.txTimeout)
	defer cancel()

	var opened *account.Account
	err := engine.run(txCtx, "open_account", func(ctx context.Context, stores Stores) error {
		created := *holder
		if err := stores.Accounts.Create(ctx, &created); err != nil {
			return err
		}
		if grant == 0 {
			opened = &created
			return nil
		}

		credited, err := stores.Accounts.Credit(ctx, created.ID, grant, created.Version)
		if err != nil {
			return err
		}
		opened = credited

		return stores.Accounts.AppendLedger(ctx, &account.LedgerEntry{
			ID:           engine.newID(),
			UserID:       created.ID,
			Delta:        grant,
			BalanceAfter: credited.Balance,
			Reason:       account.ReasonGrant,
			Note:         "starting grant",
			CreatedAt:    engine.clock().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}

	if grant > 0 {
		metrics.RecordCredit(grant)
	}
	engine.logger.Info("account_opened",
		slog.String("user_id", opened.ID),
		slog.String("username", opened.Username),
		slog.Int64("starting_grant", grant),
	)

	return opened, nil
}

// # Retry & Classification

// run executes fn in a transaction, re-running it while the failure is a
// transaction conflict and attempts remain.
func (engine *Engine) run(ctx context.Context, operation string, fn func(ctx context.Context, stores Stores) error) error {
	for attempt := 1; ; attempt++ {
		err := classify(engine.transactor.WithinTx(ctx, fn))
		if err == nil {
			return nil
		}

		if !errors.Is(err, ErrTransactionConflict) || attempt >= engine.maxAttempts {
			return err
		}

		metrics.RecordPurchaseRetry()
		engine.logger.Warn("purchase_conflict_retry",
			slog.String("operation", operation),
			slog.Int("attempt", attempt),
			slog.Any("cause", errors.Unwrap(err)),
		)

		if engine.backoff > 0 {
			timer := time.NewTimer(time.Duration(attempt) * engine.backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ErrStorageUnavailable.WithCause(ctx.Err())
			case <-timer.C:
			}
		}
	}
}

/*
classify maps a transaction error onto the engine's taxonomy.

  - Serialization failures, deadlocks and stale balance versions are
    conflicts: the whole unit may be re-run.
  - Client-facing application errors (4xx) pass through unchanged, even when
    they wrap a driver error (a taken username wraps its 23505).
  - A bare unique-key violation is a race lost to a concurrent writer and is
    re-run like any other conflict.
  - A balance overflow is reported as ErrBalanceLimit.
  - Everything else means the store could not complete the unit.
*/
func classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, account.ErrBalanceConflict) || dberr.IsSerializationFailure(err) {
		return ErrTransactionConflict.WithCause(err)
	}

	if appErr := apperr.As(err); appErr != nil && appErr.HTTPStatus < 500 {
		return err
	}

	if dberr.IsUniqueViolation(err) {
		return ErrTransactionConflict.WithCause(err)
	}

	if dberr.IsNumericOutOfRange(err) {
		return ErrBalanceLimit.WithCause(err)
	}

	return ErrStorageUnavailable.WithCause(err)
}

// mapNotFound replaces a store-level "not found" with the engine sentinel.
func mapNotFound(err error, sentinel *apperr.AppError) error {
	if errors.Is(err, sentinel) || errors.Is(err, dberr.ErrNotFound) {
		return sentinel
	}
	return err
}

// outcome renders err as a metrics label.
func outcome(err error) string {
	if err == nil {
		return "completed"
	}
	if appErr := apperr.As(err); appErr != nil {
		return strings.ToLower(appErr.Code)
	}
	return "unknown"
}
