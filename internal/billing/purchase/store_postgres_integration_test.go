// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

//go:build integration

package purchase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/comicpass/internal/billing/order"
	"github.com/taibuivan/comicpass/internal/library/entitlement"
	"github.com/taibuivan/comicpass/internal/platform/constants"
	"github.com/taibuivan/comicpass/internal/platform/dberr"
	"github.com/taibuivan/comicpass/internal/platform/migration"
	"github.com/taibuivan/comicpass/internal/platform/postgres"
	"github.com/taibuivan/comicpass/internal/users/account"
	"github.com/taibuivan/comicpass/pkg/uuid"
)

// Run with:
//
//	COMICPASS_TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/billing/purchase/
//
// Every test creates its own rows under fresh IDs, so the database can be shared.

const migrationsPath = "../../../data/migrations"

func integrationPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("COMICPASS_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("COMICPASS_TEST_DATABASE_URL not set")
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, migration.RunUp(dsn, migrationsPath, logger))

	pool, err := postgres.NewPool(context.Background(), dsn, postgres.PoolOptions{MaxConns: 16}, logger)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func integrationEngine(pool *pgxpool.Pool) *Engine {
	return NewEngine(NewPostgresTransactor(pool), Options{
		ChapterPrice: 30,
		MaxAttempts:  8,
		Backoff:      5 * time.Millisecond,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fixture is one funded reader and a paid comic with chapters 1..free free.
type fixture struct {
	userID   string
	comicID  string
	chapters []string
}

func seedPostgres(t *testing.T, pool *pgxpool.Pool, engine *Engine, balance, price int64, chapters, free int) fixture {
	t.Helper()
	ctx := context.Background()
	id := uuid.New()

	holder, err := engine.OpenAccount(ctx, &account.Account{
		ID:       id,
		Username: "reader-" + id,
		Email:    id + "@example.com",
		Role:     "member",
	}, balance)
	require.NoError(t, err)

	seeded := fixture{userID: holder.ID, comicID: uuid.New()}
	_, err = pool.Exec(ctx,
		`INSERT INTO core.comic (id, title, slug, unlockprice, freechaptercount) VALUES ($1, $2, $3, $4, $5)`,
		seeded.comicID, "Title "+seeded.comicID, "title-"+seeded.comicID, price, free,
	)
	require.NoError(t, err)

	for number := 1; number <= chapters; number++ {
		chapterID := uuid.New()
		_, err = pool.Exec(ctx,
			`INSERT INTO core.chapter (id, comicid, chapternumber, isfree) VALUES ($1, $2, $3, $4)`,
			chapterID, seeded.comicID, number, number <= free,
		)
		require.NoError(t, err)
		seeded.chapters = append(seeded.chapters, chapterID)
	}
	return seeded
}

// # Balance guards

func TestPostgres_ApplyDeltaGuards(t *testing.T) {
	pool := integrationPool(t)
	engine := integrationEngine(pool)
	seeded := seedPostgres(t, pool, engine, 100, 150, 0, 0)

	ctx := context.Background()
	accounts := account.NewRepository(pool)

	current, err := accounts.FindByID(ctx, seeded.userID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), current.Balance)

	_, err = accounts.Credit(ctx, seeded.userID, 10, current.Version+1)
	assert.ErrorIs(t, err, account.ErrBalanceConflict, "stale version must not match")

	_, err = accounts.Debit(ctx, seeded.userID, 101, current.Version)
	assert.ErrorIs(t, err, account.ErrBalanceConflict, "funds guard must not match")

	debited, err := accounts.Debit(ctx, seeded.userID, 100, current.Version)
	require.NoError(t, err)
	assert.Zero(t, debited.Balance)
	assert.Equal(t, current.Version+1, debited.Version)
}

func TestPostgres_LockForUpdateBlocksSecondLocker(t *testing.T) {
	pool := integrationPool(t)
	engine := integrationEngine(pool)
	seeded := seedPostgres(t, pool, engine, 100, 150, 0, 0)

	ctx := context.Background()
	holder, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = holder.Rollback(ctx) }()

	_, err = account.NewRepository(holder).LockForUpdate(ctx, seeded.userID)
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	_, err = account.NewRepository(pool).LockForUpdate(waitCtx, seeded.userID)
	require.Error(t, err, "a second locker must wait for the first transaction")

	require.NoError(t, holder.Rollback(ctx))
	_, err = account.NewRepository(pool).LockForUpdate(ctx, seeded.userID)
	assert.NoError(t, err)
}

func TestPostgres_GrantOverflowIsBalanceLimit(t *testing.T) {
	pool := integrationPool(t)
	engine := integrationEngine(pool)
	seeded := seedPostgres(t, pool, engine, 0, 150, 0, 0)

	_, err := pool.Exec(context.Background(),
		`UPDATE users.account SET balance = $2 WHERE id = $1`, seeded.userID, int64(math.MaxInt64-10))
	require.NoError(t, err)

	_, err = engine.Grant(context.Background(), seeded.userID, constants.MaxGrant, "")
	assert.ErrorIs(t, err, ErrBalanceLimit)
}

// # Account opening

func TestPostgres_OpenAccountDuplicateLeavesOneRow(t *testing.T) {
	pool := integrationPool(t)
	engine := integrationEngine(pool)
	seeded := seedPostgres(t, pool, engine, 50, 150, 0, 0)

	ctx := context.Background()
	original, err := account.NewRepository(pool).FindByID(ctx, seeded.userID)
	require.NoError(t, err)

	_, err = engine.OpenAccount(ctx, &account.Account{
		ID:       uuid.New(),
		Username: original.Username,
		Email:    "other-" + original.Email,
		Role:     "member",
	}, 50)
	require.ErrorIs(t, err, account.ErrUsernameTaken)

	entries, total, err := account.NewRepository(pool).ListLedger(ctx, seeded.userID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, int64(50), entries[0].BalanceAfter)
}

// # Entitlement writes

func TestPostgres_GrantComicOnlyOnce(t *testing.T) {
	pool := integrationPool(t)
	engine := integrationEngine(pool)
	seeded := seedPostgres(t, pool, engine, 0, 150, 0, 0)

	ctx := context.Background()
	entitlements := entitlement.NewRepository(pool)

	// A favorite creates the row first, so the grant goes through the upsert branch.
	require.NoError(t, entitlements.SetFavorite(ctx, seeded.userID, seeded.comicID, true))
	require.NoError(t, entitlements.GrantComic(ctx, seeded.userID, seeded.comicID, time.Now()))
	assert.ErrorIs(t, entitlements.GrantComic(ctx, seeded.userID, seeded.comicID, time.Now()), entitlement.ErrAlreadyEntitled)

	owned, err := entitlements.Find(ctx, seeded.userID, seeded.comicID)
	require.NoError(t, err)
	assert.True(t, owned.OwnsComic())
	assert.True(t, owned.IsFavorited)
}

func TestPostgres_UnlockChapterIsUniquePerChapter(t *testing.T) {
	pool := integrationPool(t)
	engine := integrationEngine(pool)
	seeded := seedPostgres(t, pool, engine, 100, 150, 4, 1)

	ctx := context.Background()
	receipt, err := engine.Purchase(ctx, Request{
		UserID: seeded.userID, ComicID: seeded.comicID, Kind: order.KindChapter, ChapterID: seeded.chapters[2],
	})
	require.NoError(t, err)
	assert.Equal(t, int64(70), receipt.RemainingBalance)

	entitlements := entitlement.NewRepository(pool)
	owned, err := entitlements.Find(ctx, seeded.userID, seeded.comicID)
	require.NoError(t, err)
	assert.Equal(t, []string{seeded.chapters[2]}, owned.UnlockedChapterIDs)

	err = entitlements.UnlockChapter(ctx, &entitlement.ChapterUnlock{
		UserID:     seeded.userID,
		ComicID:    seeded.comicID,
		ChapterID:  seeded.chapters[2],
		OrderID:    receipt.OrderID,
		UnlockedAt: time.Now(),
	})
	assert.True(t, dberr.IsUniqueViolation(err))
}

// # Concurrency

func TestPostgres_ConcurrentChapterPurchasesNeverOverdraw(t *testing.T) {
	pool := integrationPool(t)
	engine := integrationEngine(pool)
	seeded := seedPostgres(t, pool, engine, 100, 150, 9, 1)

	var succeeded atomic.Int64
	var group errgroup.Group
	for _, chapterID := range seeded.chapters[1:] {
		group.Go(func() error {
			_, err := engine.Purchase(context.Background(), Request{
				UserID: seeded.userID, ComicID: seeded.comicID, Kind: order.KindChapter, ChapterID: chapterID,
			})
			switch {
			case err == nil:
				succeeded.Add(1)
				return nil
			case errors.Is(err, ErrInsufficientBalance), errors.Is(err, ErrTransactionConflict):
				return nil
			default:
				return err
			}
		})
	}
	require.NoError(t, group.Wait())

	ctx := context.Background()
	final, err := account.NewRepository(pool).FindByID(ctx, seeded.userID)
	require.NoError(t, err)
	assert.Equal(t, 100-30*succeeded.Load(), final.Balance)
	assert.LessOrEqual(t, succeeded.Load(), int64(3))

	entries, total, err := account.NewRepository(pool).ListLedger(ctx, seeded.userID, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, int(succeeded.Load())+1, total)

	var sum int64
	for _, entry := range entries {
		sum += entry.Delta
	}
	assert.Equal(t, final.Balance, sum, "ledger must sum to the balance")
}

// # VIP

func TestPostgres_SetVIPAndStats(t *testing.T) {
	pool := integrationPool(t)
	engine := integrationEngine(pool)
	seeded := seedPostgres(t, pool, engine, 0, 150, 0, 0)

	ctx := context.Background()
	accounts := account.NewRepository(pool)
	now := time.Now()

	before, err := accounts.Stats(ctx, now)
	require.NoError(t, err)

	expires := now.Add(time.Hour).UTC().Truncate(time.Microsecond)
	updated, err := accounts.SetVIP(ctx, seeded.userID, true, &expires)
	require.NoError(t, err)
	assert.True(t, updated.IsVIP)
	require.NotNil(t, updated.VIPExpiresAt)
	assert.True(t, expires.Equal(*updated.VIPExpiresAt))

	after, err := accounts.Stats(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, before.VIPUsers+1, after.VIPUsers)

	_, err = accounts.SetVIP(ctx, seeded.userID, false, &expires)
	assert.True(t, dberr.IsCheckViolation(err), "an expiry requires the VIP flag")
}
