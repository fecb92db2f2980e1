// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package entitlement

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/comicpass/internal/core/chapter"
	"github.com/taibuivan/comicpass/internal/core/comic"
	"github.com/taibuivan/comicpass/internal/platform/validate"
)

// TitleFinder resolves comics referenced by library writes.
type TitleFinder interface {
	FindByID(ctx context.Context, id string) (*comic.Comic, error)
}

// ChapterFinder resolves chapters referenced by progress updates.
type ChapterFinder interface {
	FindByID(ctx context.Context, id string) (*chapter.Chapter, error)
}

// # Service Implementation

// Service exposes entitlement reads and the reader-owned library writes.
type Service struct {
	repository Repository
	cache      Cache
	titles     TitleFinder
	chapters   ChapterFinder
	clock      func() time.Time
	logger     *slog.Logger
}

// NewService constructs an entitlement [Service]. cache may be nil.
func NewService(repository Repository, cache Cache, titles TitleFinder, chapters ChapterFinder, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		cache:      cache,
		titles:     titles,
		chapters:   chapters,
		clock:      time.Now,
		logger:     logger,
	}
}

/*
Get returns the user's entitlement for a comic, served from the cache when
one is configured.

Returns:
  - *Entitlement: nil when the user never interacted with the comic
  - error: Storage failures
*/
func (service *Service) Get(ctx context.Context, userID, comicID string) (*Entitlement, error) {
	load := func(ctx context.Context) (*Entitlement, error) {
		return service.repository.Find(ctx, userID, comicID)
	}
	if service.cache == nil {
		return load(ctx)
	}
	return service.cache.Fetch(ctx, userID, comicID, load)
}

// Invalidate drops any cached copy of (userID, comicID). Failures are logged.
func (service *Service) Invalidate(ctx context.Context, userID, comicID string) {
	if service.cache == nil {
		return
	}
	if err := service.cache.Invalidate(ctx, userID, comicID); err != nil {
		service.logger.Warn("entitlement_cache_invalidate_failed",
			slog.String("user_id", userID),
			slog.String("comic_id", comicID),
			slog.Any("error", err),
		)
	}
}

// SetFavorite adds or removes a comic from the user's favorites.
func (service *Service) SetFavorite(ctx context.Context, userID, comicID string, favorite bool) error {
	if _, err := service.titles.FindByID(ctx, comicID); err != nil {
		return err
	}

	if err := service.repository.SetFavorite(ctx, userID, comicID, favorite); err != nil {
		return err
	}
	service.Invalidate(ctx, userID, comicID)

	service.logger.Info("favorite_updated",
		slog.String("user_id", userID),
		slog.String("comic_id", comicID),
		slog.Bool("favorite", favorite),
	)
	return nil
}

/*
SaveProgress records the last page the user reached in a chapter.

Description: The chapter must belong to comicID. Progress is recorded
regardless of ownership; the reader gate is enforced when pages are served.
*/
func (service *Service) SaveProgress(ctx context.Context, userID, comicID, chapterID string, page int) error {
	validator := &validate.Validator{}
	validator.Required("chapter_id", chapterID)
	validator.Positive("page", int64(page))
	if err := validator.Err(); err != nil {
		return err
	}

	target, err := service.chapters.FindByID(ctx, chapterID)
	if err != nil {
		return err
	}
	if target.ComicID != comicID {
		return chapter.ErrChapterNotFound
	}
	if target.PageCount > 0 && page > target.PageCount {
		return validate.RequiredError("page", "Page number exceeds the chapter length")
	}

	if err := service.repository.SaveProgress(ctx, userID, comicID, chapterID, page, service.clock()); err != nil {
		return err
	}
	service.Invalidate(ctx, userID, comicID)
	return nil
}

// ListFavorites returns a page of the user's favorited comics.
func (service *Service) ListFavorites(context context.Context, userID string, limit, offset int) ([]*Entitlement, int, error) {
	return service.repository.ListFavorites(context, userID, limit, offset)
}

// ListHistory returns a page of the user's reading history.
func (service *Service) ListHistory(context context.Context, userID string, limit, offset int) ([]*Entitlement, int, error) {
	return service.repository.ListHistory(context, userID, limit, offset)
}
