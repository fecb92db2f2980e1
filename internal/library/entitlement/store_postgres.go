// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package entitlement (Postgres) implements the storage layer for ownership and
library state.

# Schema Table Mapping
  - library.entitlement: One row per (user, comic), created by upsert.
  - library.chapterunlock: One row per individually bought chapter.
*/
package entitlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/comicpass/internal/platform/database/schema"
	"github.com/taibuivan/comicpass/internal/platform/postgres"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db postgres.DBTX
}

// NewRepository creates an entitlement store bound to a pool or transaction.
func NewRepository(db postgres.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ Repository = (*PostgresRepository)(nil)

// selectEntitlement projects an entitlement row plus its unlock set as text[].
func selectEntitlement() string {
	e := schema.LibraryEntitlement
	u := schema.LibraryChapterUnlock
	return fmt.Sprintf(`
		SELECT e.%s, e.%s, e.%s, e.%s, e.%s, e.%s, e.%s, e.%s, e.%s,
			COALESCE((
				SELECT array_agg(u.%s::text ORDER BY u.%s)
				FROM %s u
				WHERE u.%s = e.%s AND u.%s = e.%s
			), '{}'::text[])`,
		e.UserID, e.ComicID, e.IsFavorited, e.PurchasedAt, e.LastReadChapterID,
		e.LastReadPageNumber, e.LastReadAt, e.CreatedAt, e.UpdatedAt,
		u.ChapterID, u.UnlockedAt,
		u.Table,
		u.UserID, e.UserID, u.ComicID, e.ComicID,
	)
}

func scanEntitlement(row pgx.Row, extra ...any) (*Entitlement, error) {
	var entitlement Entitlement
	dest := []any{
		&entitlement.UserID, &entitlement.ComicID, &entitlement.IsFavorited, &entitlement.PurchasedAt,
		&entitlement.LastReadChapterID, &entitlement.LastReadPageNumber, &entitlement.LastReadAt,
		&entitlement.CreatedAt, &entitlement.UpdatedAt, &entitlement.UnlockedChapterIDs,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &entitlement, nil
}

// Find loads one entitlement with its unlock set.
func (repository *PostgresRepository) Find(context context.Context, userID, comicID string) (*Entitlement, error) {
	query := selectEntitlement() + fmt.Sprintf(`
		FROM %s e
		WHERE e.%s = $1 AND e.%s = $2`,
		schema.LibraryEntitlement.Table,
		schema.LibraryEntitlement.UserID, schema.LibraryEntitlement.ComicID,
	)

	entitlement, err := scanEntitlement(repository.db.QueryRow(context, query, userID, comicID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to find entitlement: %w", err)
	}
	return entitlement, nil
}

/*
GrantComic upserts the entitlement row with purchasedat set.

Description: The conflict branch only fires while purchasedat is still NULL,
so a second grant affects no row and is reported as ErrAlreadyEntitled.
*/
func (repository *PostgresRepository) GrantComic(context context.Context, userID, comicID string, at time.Time) error {
	e := schema.LibraryEntitlement
	query := fmt.Sprintf(`
		INSERT INTO %s AS e (%s, %s, %s)
		VALUES ($1, $2, $3)
		ON CONFLICT (%s, %s) DO UPDATE
		SET %s = EXCLUDED.%s, %s = NOW()
		WHERE e.%s IS NULL`,
		e.Table, e.UserID, e.ComicID, e.PurchasedAt,
		e.UserID, e.ComicID,
		e.PurchasedAt, e.PurchasedAt, e.UpdatedAt,
		e.PurchasedAt,
	)

	tag, err := repository.db.Exec(context, query, userID, comicID, at)
	if err != nil {
		return fmt.Errorf("postgres: failed to grant comic: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyEntitled
	}
	return nil
}

/*
UnlockChapter ensures the entitlement row exists and inserts the unlock.

Description: Both writes run as one statement. A repeated unlock violates the
(userid, chapterid) primary key and the error is returned unwrapped in its
chain for the caller to classify.
*/
func (repository *PostgresRepository) UnlockChapter(context context.Context, unlock *ChapterUnlock) error {
	e := schema.LibraryEntitlement
	u := schema.LibraryChapterUnlock
	query := fmt.Sprintf(`
		WITH ensured AS (
			INSERT INTO %s (%s, %s)
			VALUES ($1, $2)
			ON CONFLICT (%s, %s) DO UPDATE SET %s = NOW()
		)
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)`,
		e.Table, e.UserID, e.ComicID,
		e.UserID, e.ComicID, e.UpdatedAt,
		u.Table, u.UserID, u.ComicID, u.ChapterID, u.OrderID, u.UnlockedAt,
	)

	_, err := repository.db.Exec(context, query,
		unlock.UserID, unlock.ComicID, unlock.ChapterID, unlock.OrderID, unlock.UnlockedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to unlock chapter: %w", err)
	}
	return nil
}

// SetFavorite upserts the favorite flag for (userID, comicID).
func (repository *PostgresRepository) SetFavorite(context context.Context, userID, comicID string, favorite bool) error {
	e := schema.LibraryEntitlement
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, $3)
		ON CONFLICT (%s, %s) DO UPDATE
		SET %s = EXCLUDED.%s, %s = NOW()`,
		e.Table, e.UserID, e.ComicID, e.IsFavorited,
		e.UserID, e.ComicID,
		e.IsFavorited, e.IsFavorited, e.UpdatedAt,
	)

	if _, err := repository.db.Exec(context, query, userID, comicID, favorite); err != nil {
		return fmt.Errorf("postgres: failed to set favorite: %w", err)
	}
	return nil
}

// SaveProgress upserts the last-read chapter and page for (userID, comicID).
func (repository *PostgresRepository) SaveProgress(context context.Context, userID, comicID, chapterID string, page int, at time.Time) error {
	e := schema.LibraryEntitlement
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (%s, %s) DO UPDATE
		SET %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = NOW()`,
		e.Table, e.UserID, e.ComicID, e.LastReadChapterID, e.LastReadPageNumber, e.LastReadAt,
		e.UserID, e.ComicID,
		e.LastReadChapterID, e.LastReadChapterID,
		e.LastReadPageNumber, e.LastReadPageNumber,
		e.LastReadAt, e.LastReadAt,
		e.UpdatedAt,
	)

	if _, err := repository.db.Exec(context, query, userID, comicID, chapterID, page, at); err != nil {
		return fmt.Errorf("postgres: failed to save progress: %w", err)
	}
	return nil
}

// ListFavorites pages through favorited entitlements.
func (repository *PostgresRepository) ListFavorites(context context.Context, userID string, limit, offset int) ([]*Entitlement, int, error) {
	e := schema.LibraryEntitlement
	return repository.list(context, fmt.Sprintf("e.%s", e.IsFavorited), fmt.Sprintf("e.%s DESC", e.UpdatedAt), userID, limit, offset)
}

// ListHistory pages through entitlements with reading progress.
func (repository *PostgresRepository) ListHistory(context context.Context, userID string, limit, offset int) ([]*Entitlement, int, error) {
	e := schema.LibraryEntitlement
	return repository.list(context, fmt.Sprintf("e.%s IS NOT NULL", e.LastReadAt), fmt.Sprintf("e.%s DESC", e.LastReadAt), userID, limit, offset)
}

func (repository *PostgresRepository) list(context context.Context, condition, order, userID string, limit, offset int) ([]*Entitlement, int, error) {
	query := selectEntitlement() + fmt.Sprintf(`,
			COUNT(*) OVER() AS total_count
		FROM %s e
		WHERE e.%s = $1 AND %s
		ORDER BY %s
		LIMIT $2 OFFSET $3`,
		schema.LibraryEntitlement.Table,
		schema.LibraryEntitlement.UserID, condition,
		order,
	)

	rows, err := repository.db.Query(context, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list entitlements: %w", err)
	}
	defer rows.Close()

	entitlements := make([]*Entitlement, 0)
	var totalCount int
	for rows.Next() {
		entitlement, err := scanEntitlement(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan entitlement: %w", err)
		}
		entitlements = append(entitlements, entitlement)
	}

	return entitlements, totalCount, rows.Err()
}
