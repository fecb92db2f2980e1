// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package chapter provides the PostgreSQL implementation for chapters and pages.

  - Window Functions: COUNT(*) OVER() returns the total alongside the page.
  - Array Unnesting: page batches are inserted from parallel arrays in the same
    statement that bumps the chapter's page count.
*/
package chapter

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

// NewRepository constructs a PostgreSQL backed chapter store.
func NewRepository(db postgres.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ Repository = (*PostgresRepository)(nil)

func chapterColumns() string {
	table := schema.CoreChapter
	return strings.Join([]string{
		table.ID, table.ComicID, table.Number, table.Title, table.IsFree,
		table.PageCount, table.PublishedAt, table.CreatedAt, table.UpdatedAt,
	}, ", ")
}

func scanChapter(row pgx.Row, extra ...any) (*Chapter, error) {
	var chapter Chapter
	dest := []any{
		&chapter.ID, &chapter.ComicID, &chapter.Number, &chapter.Title, &chapter.IsFree,
		&chapter.PageCount, &chapter.PublishedAt, &chapter.CreatedAt, &chapter.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &chapter, nil
}

// # Chapter Repository Implementation

// ListByComic retrieves the live chapters of a comic, ascending by default.
func (repository *PostgresRepository) ListByComic(context context.Context, comicID string, filter Filter, limit, offset int) ([]*Chapter, int, error) {
	sortDir := "ASC"
	if strings.ToLower(filter.SortDir) == "desc" {
		sortDir = "DESC"
	}

	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM %s
		WHERE %s = $1 AND %s IS NULL
		ORDER BY %s %s
		LIMIT $2 OFFSET $3`,
		chapterColumns(),
		schema.CoreChapter.Table,
		schema.CoreChapter.ComicID, schema.CoreChapter.DeletedAt,
		schema.CoreChapter.Number, sortDir,
	)

	rows, err := repository.db.Query(context, query, comicID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list chapters: %w", err)
	}
	defer rows.Close()

	var chapters []*Chapter
	var totalCount int
	for rows.Next() {
		chapter, err := scanChapter(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan chapter: %w", err)
		}
		chapters = append(chapters, chapter)
	}

	return chapters, totalCount, rows.Err()
}

// FindByID retrieves a single live chapter.
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Chapter, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL`,
		chapterColumns(),
		schema.CoreChapter.Table,
		schema.CoreChapter.ID, schema.CoreChapter.DeletedAt,
	)

	chapter, err := scanChapter(repository.db.QueryRow(context, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrChapterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to find chapter: %w", err)
	}
	return chapter, nil
}

// Create inserts a chapter row.
func (repository *PostgresRepository) Create(context context.Context, chapter *Chapter) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s, %s`,
		schema.CoreChapter.Table,
		schema.CoreChapter.ID, schema.CoreChapter.ComicID, schema.CoreChapter.Number,
		schema.CoreChapter.Title, schema.CoreChapter.IsFree, schema.CoreChapter.PublishedAt,
		schema.CoreChapter.CreatedAt, schema.CoreChapter.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		chapter.ID, chapter.ComicID, chapter.Number, chapter.Title, chapter.IsFree, chapter.PublishedAt,
	).Scan(&chapter.CreatedAt, &chapter.UpdatedAt)
	if dberr.IsUniqueViolation(err) {
		return ErrDuplicateNumber.WithCause(err)
	}
	if err != nil {
		return fmt.Errorf("postgres: failed to create chapter: %w", err)
	}
	return nil
}

// # Page Repository Implementation

// ListPages retrieves the pages of a chapter in reading order.
func (repository *PostgresRepository) ListPages(context context.Context, chapterID string) ([]*Page, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s ASC`,
		schema.CorePage.ID, schema.CorePage.ChapterID, schema.CorePage.PageNumber,
		schema.CorePage.ImageURL, schema.CorePage.ThumbnailURL, schema.CorePage.CreatedAt,
		schema.CorePage.Table,
		schema.CorePage.ChapterID,
		schema.CorePage.PageNumber,
	)

	rows, err := repository.db.Query(context, query, chapterID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list pages: %w", err)
	}
	defer rows.Close()

	pages := make([]*Page, 0)
	for rows.Next() {
		var page Page
		if err := rows.Scan(&page.ID, &page.ChapterID, &page.Number, &page.ImageURL, &page.ThumbnailURL, &page.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan page: %w", err)
		}
		pages = append(pages, &page)
	}

	return pages, rows.Err()
}

/*
AppendPages bulk-inserts pages and increments the chapter's page count.

Description: A data-modifying CTE keeps the insert and the counter update in a
single statement, so the count never drifts from the stored pages.
*/
func (repository *PostgresRepository) AppendPages(context context.Context, chapterID string, pages []*Page) error {
	if len(pages) == 0 {
		return nil
	}

	ids := make([]string, len(pages))
	numbers := make([]int32, len(pages))
	images := make([]string, len(pages))
	thumbnails := make([]*string, len(pages))
	for i, page := range pages {
		ids[i] = page.ID
		numbers[i] = int32(page.Number)
		images[i] = page.ImageURL
		thumbnails[i] = page.ThumbnailURL
	}

	query := fmt.Sprintf(`
		WITH inserted AS (
			INSERT INTO %s (%s, %s, %s, %s, %s)
			SELECT p.id, $1::uuid, p.number, p.image, p.thumbnail
			FROM unnest($2::uuid[], $3::int[], $4::text[], $5::text[]) AS p(id, number, image, thumbnail)
			RETURNING 1
		)
		UPDATE %s
		SET %s = %s + (SELECT COUNT(*) FROM inserted), %s = NOW()
		WHERE %s = $1::uuid`,
		schema.CorePage.Table,
		schema.CorePage.ID, schema.CorePage.ChapterID, schema.CorePage.PageNumber,
		schema.CorePage.ImageURL, schema.CorePage.ThumbnailURL,
		schema.CoreChapter.Table,
		schema.CoreChapter.PageCount, schema.CoreChapter.PageCount, schema.CoreChapter.UpdatedAt,
		schema.CoreChapter.ID,
	)

	_, err := repository.db.Exec(context, query, chapterID, ids, numbers, images, thumbnails)
	if dberr.IsUniqueViolation(err) {
		return apperr.Conflict("Page numbers already taken").WithCause(err)
	}
	if err != nil {
		return fmt.Errorf("postgres: failed to append pages: %w", err)
	}
	return nil
}
