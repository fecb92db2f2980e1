// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comic

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/comicpass/internal/platform/validate"
	"github.com/taibuivan/comicpass/pkg/slug"
	"github.com/taibuivan/comicpass/pkg/uuid"
)

// # Service Layer

// Service orchestrates the business logic for the comic catalogue.
type Service struct {
	repository Repository
	logger     *slog.Logger
}

// NewService constructs a new [Service].
func NewService(repository Repository, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		logger:     logger,
	}
}

// # Comic Lookups

// List retrieves a paginated and filtered collection of comics.
func (service *Service) List(context context.Context, filter Filter, limit, offset int) ([]*Comic, int, error) {
	return service.repository.List(context, filter, limit, offset)
}

/*
Get fetches a single title by UUID or slug.

Description: Canonical UUIDs resolve by primary key, anything else
by slug. A successful lookup bumps the view counter; a failed bump is logged
and does not fail the read.
*/
func (service *Service) Get(ctx context.Context, identifier string) (*Comic, error) {
	var (
		comic *Comic
		err   error
	)

	if uuid.IsValid(identifier) {
		comic, err = service.repository.FindByID(ctx, identifier)
	} else {
		comic, err = service.repository.FindBySlug(ctx, identifier)
	}
	if err != nil {
		return nil, err
	}

	if err := service.repository.IncrementViewCount(ctx, comic.ID); err != nil {
		service.logger.Warn("comic_view_count_failed",
			slog.String("comic_id", comic.ID),
			slog.Any("error", err),
		)
	}

	return comic, nil
}

// # Comic Management

// CreateInput carries the attributes of a new title.
type CreateInput struct {
	Title            string
	Synopsis         string
	CoverURL         string
	Status           Status
	UnlockPrice      int64
	FreeChapterCount int
}

/*
Create validates and persists a new title.

Description: Generates a UUIDv7 identity and an ASCII slug from the title.
Status defaults to ongoing.

Returns:
  - *Comic: The persisted title
  - error: Validation or persistence errors
*/
func (service *Service) Create(context context.Context, input CreateInput) (*Comic, error) {
	if input.Status == "" {
		input.Status = StatusOngoing
	}

	comic := &Comic{
		ID:               uuid.New(),
		Title:            strings.TrimSpace(input.Title),
		Synopsis:         input.Synopsis,
		CoverURL:         input.CoverURL,
		Status:           input.Status,
		UnlockPrice:      input.UnlockPrice,
		FreeChapterCount: input.FreeChapterCount,
	}
	comic.Slug = slug.From(comic.Title)

	validator := &validate.Validator{}
	validator.Required(FieldTitle, comic.Title).MaxLen(FieldTitle, comic.Title, 500)
	validator.Custom(FieldSlug, comic.Title != "" && comic.Slug == "", "Title must contain at least one letter or digit")
	validator.MaxLen(FieldSynopsis, comic.Synopsis, 5000)
	validator.Custom(FieldStatus, !comic.Status.IsValid(), "Unknown status")
	validator.NonNegative(FieldUnlockPrice, comic.UnlockPrice)
	validator.NonNegative(FieldFreeChapterCount, int64(comic.FreeChapterCount))

	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.repository.Create(context, comic); err != nil {
		return nil, err
	}

	service.logger.Info("comic_created",
		slog.String("comic_id", comic.ID),
		slog.String("title", comic.Title),
		slog.Int64("unlock_price", comic.UnlockPrice),
	)

	return comic, nil
}

// UpdateInput is a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Title            *string
	Synopsis         *string
	CoverURL         *string
	Status           *Status
	UnlockPrice      *int64
	FreeChapterCount *int
}

/*
Update applies a partial change to a title.

Description: Changing FreeChapterCount only affects chapters created afterwards.
Renaming a title regenerates its slug.
*/
func (service *Service) Update(context context.Context, id string, input UpdateInput) (*Comic, error) {
	comic, err := service.repository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	validator := &validate.Validator{}

	if input.Title != nil {
		comic.Title = strings.TrimSpace(*input.Title)
		comic.Slug = slug.From(comic.Title)
		validator.Required(FieldTitle, comic.Title).MaxLen(FieldTitle, comic.Title, 500)
		validator.Custom(FieldSlug, comic.Title != "" && comic.Slug == "", "Title must contain at least one letter or digit")
	}
	if input.Synopsis != nil {
		comic.Synopsis = *input.Synopsis
		validator.MaxLen(FieldSynopsis, comic.Synopsis, 5000)
	}
	if input.CoverURL != nil {
		comic.CoverURL = *input.CoverURL
	}
	if input.Status != nil {
		comic.Status = *input.Status
		validator.Custom(FieldStatus, !comic.Status.IsValid(), "Unknown status")
	}
	if input.UnlockPrice != nil {
		comic.UnlockPrice = *input.UnlockPrice
		validator.NonNegative(FieldUnlockPrice, comic.UnlockPrice)
	}
	if input.FreeChapterCount != nil {
		comic.FreeChapterCount = *input.FreeChapterCount
		validator.NonNegative(FieldFreeChapterCount, int64(comic.FreeChapterCount))
	}

	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.repository.Update(context, comic); err != nil {
		return nil, err
	}

	service.logger.Info("comic_updated", slog.String("comic_id", comic.ID))

	return comic, nil
}
