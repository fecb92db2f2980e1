// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package purchase

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/comicpass/internal/billing/order"
	"github.com/taibuivan/comicpass/internal/core/chapter"
	"github.com/taibuivan/comicpass/internal/core/comic"
	"github.com/taibuivan/comicpass/internal/library/entitlement"
	"github.com/taibuivan/comicpass/internal/platform/postgres"
	"github.com/taibuivan/comicpass/internal/users/account"
)

// PostgresTransactor implements [Transactor] with a SERIALIZABLE pgx transaction.
// Every repository handed to fn is bound to that transaction.
type PostgresTransactor struct {
	pool *pgxpool.Pool
}

// NewPostgresTransactor creates a transactor over pool.
func NewPostgresTransactor(pool *pgxpool.Pool) *PostgresTransactor {
	return &PostgresTransactor{pool: pool}
}

var _ Transactor = (*PostgresTransactor)(nil)

// WithinTx begins a serializable transaction, runs fn and commits on success.
func (transactor *PostgresTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error {
	return postgres.WithTx(ctx, transactor.pool, postgres.SerializableTx, func(tx pgx.Tx) error {
		return fn(ctx, Stores{
			Accounts: account.NewRepository(tx),
			Catalog: catalogStore{
				comics:   comic.NewRepository(tx),
				chapters: chapter.NewRepository(tx),
			},
			Entitlements: entitlement.NewRepository(tx),
			Orders:       order.NewRepository(tx),
		})
	})
}

// catalogStore adapts the comic and chapter repositories to [CatalogStore].
type catalogStore struct {
	comics   comic.Repository
	chapters chapter.Repository
}

func (store catalogStore) FindTitle(ctx context.Context, comicID string) (*comic.Comic, error) {
	return store.comics.FindByID(ctx, comicID)
}

func (store catalogStore) FindChapter(ctx context.Context, chapterID string) (*chapter.Chapter, error) {
	return store.chapters.FindByID(ctx, chapterID)
}
