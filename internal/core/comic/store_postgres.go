// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package comic provides the PostgreSQL implementation for the catalogue's data access.

Listing uses COUNT(*) OVER() so the total is returned with the page in one
round-trip. Soft-deleted titles (deletedat set) are invisible to every read.
*/
package comic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/comicpass/internal/platform/apperr"
	"github.com/taibuivan/comicpass/internal/platform/database/schema"
	"github.com/taibuivan/comicpass/internal/platform/dberr"
	"github.com/taibuivan/comicpass/internal/platform/postgres"
)

// # PostgreSQL Repository

// PostgresRepository implements the [Repository] interface using pgx.
type PostgresRepository struct {
	db postgres.DBTX
}

// NewRepository constructs a PostgreSQL backed comic store.
func NewRepository(db postgres.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ Repository = (*PostgresRepository)(nil)

func comicColumns(alias string) string {
	table := schema.CoreComic
	columns := []string{
		table.ID, table.Title, table.Slug, table.Synopsis, table.CoverURL, table.Status,
		table.UnlockPrice, table.FreeChapterCount, table.ViewCount, table.CreatedAt, table.UpdatedAt,
	}
	for i, column := range columns {
		columns[i] = alias + "." + column
	}
	return strings.Join(columns, ", ")
}

func scanComic(row pgx.Row, extra ...any) (*Comic, error) {
	var comic Comic
	var status string
	dest := []any{
		&comic.ID, &comic.Title, &comic.Slug, &comic.Synopsis, &comic.CoverURL, &status,
		&comic.UnlockPrice, &comic.FreeChapterCount, &comic.ViewCount, &comic.CreatedAt, &comic.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	comic.Status = Status(status)
	return &comic, nil
}

/*
List returns a filtered, paginated slice of comics and the total count.

Description: The search fragment is matched case-insensitively against the
title and the slug.
*/
func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Comic, int, error) {
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM %s c
		WHERE c.%s IS NULL`,
		comicColumns("c"),
		schema.CoreComic.Table,
		schema.CoreComic.DeletedAt,
	))

	if search := strings.TrimSpace(filter.Search); search != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND (c.%s ILIKE $%d OR c.%s ILIKE $%d)",
			schema.CoreComic.Title, argID, schema.CoreComic.Slug, argID))
		args = append(args, "%"+search+"%")
		argID++
	}

	if filter.Status != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND c.%s = $%d", schema.CoreComic.Status, argID))
		args = append(args, string(filter.Status))
		argID++
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY c.%s DESC LIMIT $%d OFFSET $%d",
		schema.CoreComic.CreatedAt, argID, argID+1))
	args = append(args, limit, offset)

	rows, err := repository.db.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list comics: %w", err)
	}
	defer rows.Close()

	var comics []*Comic
	var totalCount int
	for rows.Next() {
		comic, err := scanComic(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan comic: %w", err)
		}
		comics = append(comics, comic)
	}

	return comics, totalCount, rows.Err()
}

// FindByID returns a live comic by primary key.
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Comic, error) {
	return repository.findOne(context, schema.CoreComic.ID, id)
}

// FindBySlug returns a live comic by its URL slug.
func (repository *PostgresRepository) FindBySlug(context context.Context, slug string) (*Comic, error) {
	return repository.findOne(context, schema.CoreComic.Slug, slug)
}

func (repository *PostgresRepository) findOne(context context.Context, column, value string) (*Comic, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s c
		WHERE c.%s = $1 AND c.%s IS NULL`,
		comicColumns("c"),
		schema.CoreComic.Table,
		column, schema.CoreComic.DeletedAt,
	)

	comic, err := scanComic(repository.db.QueryRow(context, query, value))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrComicNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to find comic: %w", err)
	}
	return comic, nil
}

// Create inserts a new comic row and fills the server-generated timestamps.
func (repository *PostgresRepository) Create(context context.Context, comic *Comic) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s, %s`,
		schema.CoreComic.Table,
		schema.CoreComic.ID, schema.CoreComic.Title, schema.CoreComic.Slug, schema.CoreComic.Synopsis,
		schema.CoreComic.CoverURL, schema.CoreComic.Status, schema.CoreComic.UnlockPrice, schema.CoreComic.FreeChapterCount,
		schema.CoreComic.CreatedAt, schema.CoreComic.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		comic.ID, comic.Title, comic.Slug, comic.Synopsis,
		comic.CoverURL, string(comic.Status), comic.UnlockPrice, comic.FreeChapterCount,
	).Scan(&comic.CreatedAt, &comic.UpdatedAt)
	if dberr.IsUniqueViolation(err) {
		return apperr.Conflict("A comic with this slug already exists").WithCause(err)
	}
	if err != nil {
		return fmt.Errorf("postgres: failed to create comic: %w", err)
	}
	return nil
}

// Update overwrites the mutable columns of a live comic.
func (repository *PostgresRepository) Update(context context.Context, comic *Comic) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8, %s = NOW()
		WHERE %s = $1 AND %s IS NULL
		RETURNING %s`,
		schema.CoreComic.Table,
		schema.CoreComic.Title, schema.CoreComic.Slug, schema.CoreComic.Synopsis, schema.CoreComic.CoverURL,
		schema.CoreComic.Status, schema.CoreComic.UnlockPrice, schema.CoreComic.FreeChapterCount,
		schema.CoreComic.UpdatedAt,
		schema.CoreComic.ID, schema.CoreComic.DeletedAt,
		schema.CoreComic.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		comic.ID, comic.Title, comic.Slug, comic.Synopsis, comic.CoverURL,
		string(comic.Status), comic.UnlockPrice, comic.FreeChapterCount,
	).Scan(&comic.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrComicNotFound
	}
	if dberr.IsUniqueViolation(err) {
		return apperr.Conflict("A comic with this slug already exists").WithCause(err)
	}
	if err != nil {
		return fmt.Errorf("postgres: failed to update comic: %w", err)
	}
	return nil
}

// IncrementViewCount bumps the view counter of a live comic.
func (repository *PostgresRepository) IncrementViewCount(context context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = %s + 1 WHERE %s = $1 AND %s IS NULL`,
		schema.CoreComic.Table,
		schema.CoreComic.ViewCount, schema.CoreComic.ViewCount,
		schema.CoreComic.ID, schema.CoreComic.DeletedAt,
	)

	if _, err := repository.db.Exec(context, query, id); err != nil {
		return fmt.Errorf("postgres: failed to increment view count: %w", err)
	}
	return nil
}
