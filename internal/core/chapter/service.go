// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/comicpass/internal/core/comic"
	"github.com/taibuivan/comicpass/internal/platform/validate"
	"github.com/taibuivan/comicpass/pkg/uuid"
)

// TitleFinder resolves the comic a chapter belongs to.
type TitleFinder interface {
	FindByID(ctx context.Context, id string) (*comic.Comic, error)
}

// # Service Layer

// Service orchestrates chapter creation and page management.
type Service struct {
	repository Repository
	titles     TitleFinder
	clock      func() time.Time
	logger     *slog.Logger
}

// NewService constructs a new chapter [Service].
func NewService(repository Repository, titles TitleFinder, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		titles:     titles,
		clock:      time.Now,
		logger:     logger,
	}
}

// # Chapter Lookups

// List returns the chapters of an existing comic.
func (service *Service) List(context context.Context, comicID string, filter Filter, limit, offset int) ([]*Chapter, int, error) {
	if _, err := service.titles.FindByID(context, comicID); err != nil {
		return nil, 0, err
	}
	return service.repository.ListByComic(context, comicID, filter, limit, offset)
}

// Get returns a single chapter.
func (service *Service) Get(context context.Context, id string) (*Chapter, error) {
	return service.repository.FindByID(context, id)
}

// # Chapter Management

// CreateInput carries the attributes of a new chapter.
type CreateInput struct {
	Number int
	Title  string
}

/*
Create adds a chapter to a comic.

Description: IsFree is fixed here from the comic's current free-chapter count
and is never recomputed afterwards.

Parameters:
  - ctx: context.Context
  - comicID: string (UUID)
  - input: CreateInput

Returns:
  - *Chapter: The persisted chapter
  - error: ErrComicNotFound, validation, or ErrDuplicateNumber
*/
func (service *Service) Create(ctx context.Context, comicID string, input CreateInput) (*Chapter, error) {
	validator := &validate.Validator{}
	validator.Positive(FieldNumber, int64(input.Number))
	validator.MaxLen(FieldTitle, input.Title, 255)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	title, err := service.titles.FindByID(ctx, comicID)
	if err != nil {
		return nil, err
	}

	now := service.clock()
	chapter := &Chapter{
		ID:          uuid.New(),
		ComicID:     title.ID,
		Number:      input.Number,
		Title:       strings.TrimSpace(input.Title),
		IsFree:      title.IsFreeChapter(input.Number),
		PublishedAt: &now,
	}

	if err := service.repository.Create(ctx, chapter); err != nil {
		return nil, err
	}

	service.logger.Info("chapter_created",
		slog.String("chapter_id", chapter.ID),
		slog.String("comic_id", chapter.ComicID),
		slog.Int("number", chapter.Number),
		slog.Bool("is_free", chapter.IsFree),
	)

	return chapter, nil
}

// # Page Management

// PageInput describes one uploaded page image.
type PageInput struct {
	ImageURL     string
	ThumbnailURL *string
}

/*
AddPages appends page images to a chapter, numbering them after the pages
already stored.

Returns:
  - []*Page: The appended pages
  - error: ErrChapterNotFound, validation, or storage failures
*/
func (service *Service) AddPages(ctx context.Context, chapterID string, inputs []PageInput) ([]*Page, error) {
	validator := &validate.Validator{}
	validator.Custom(FieldImageURLs, len(inputs) == 0, "At least one page is required")
	for _, input := range inputs {
		if strings.TrimSpace(input.ImageURL) == "" {
			validator.Custom(FieldImageURLs, true, "Image URL cannot be empty")
			break
		}
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	chapter, err := service.repository.FindByID(ctx, chapterID)
	if err != nil {
		return nil, err
	}

	pages := make([]*Page, len(inputs))
	for i, input := range inputs {
		pages[i] = &Page{
			ID:           uuid.New(),
			ChapterID:    chapter.ID,
			Number:       chapter.PageCount + i + 1,
			ImageURL:     strings.TrimSpace(input.ImageURL),
			ThumbnailURL: input.ThumbnailURL,
		}
	}

	if err := service.repository.AppendPages(ctx, chapter.ID, pages); err != nil {
		return nil, err
	}

	service.logger.Info("chapter_pages_added",
		slog.String("chapter_id", chapter.ID),
		slog.Int("count", len(pages)),
	)

	return pages, nil
}

// ListPages returns a chapter's pages without any access check.
// Reader-facing callers go through the access gate first.
func (service *Service) ListPages(context context.Context, chapterID string) ([]*Page, error) {
	return service.repository.ListPages(context, chapterID)
}
