// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package reader serves chapter pages behind the access gate.

Anonymous readers see free chapters only. Authenticated readers additionally
see chapters they unlocked and every chapter of comics they bought.
*/
package reader

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/taibuivan/comicpass/internal/core/chapter"
	"github.com/taibuivan/comicpass/internal/library/access"
	"github.com/taibuivan/comicpass/internal/library/entitlement"
	"github.com/taibuivan/comicpass/internal/platform/apperr"
)

// ErrChapterLocked is returned when the reader may not open a chapter.
var ErrChapterLocked = apperr.New("CHAPTER_LOCKED", "Purchase this chapter or its comic to read it", http.StatusForbidden)

// ChapterSource loads chapters and their pages.
type ChapterSource interface {
	Get(ctx context.Context, id string) (*chapter.Chapter, error)
	ListPages(ctx context.Context, chapterID string) ([]*chapter.Page, error)
}

// EntitlementSource resolves what a user owns of a comic.
type EntitlementSource interface {
	Get(ctx context.Context, userID, comicID string) (*entitlement.Entitlement, error)
}

// Content is a readable chapter with its pages.
type Content struct {
	Chapter *chapter.Chapter `json:"chapter"`
	Pages   []*chapter.Page  `json:"pages"`
}

// Service applies the access gate in front of page delivery.
type Service struct {
	chapters     ChapterSource
	entitlements EntitlementSource
	logger       *slog.Logger
}

// NewService constructs a reader [Service].
func NewService(chapters ChapterSource, entitlements EntitlementSource, logger *slog.Logger) *Service {
	return &Service{chapters: chapters, entitlements: entitlements, logger: logger}
}

/*
Read returns the pages of chapterID if userID may read them.

Parameters:
  - ctx: context.Context
  - userID: string (empty for anonymous readers)
  - chapterID: string

Returns:
  - *Content: The chapter and its ordered pages
  - error: chapter.ErrChapterNotFound, ErrChapterLocked or storage failures
*/
func (service *Service) Read(ctx context.Context, userID, chapterID string) (*Content, error) {
	target, err := service.chapters.Get(ctx, chapterID)
	if err != nil {
		return nil, err
	}

	var owned *entitlement.Entitlement
	if userID != "" && !target.IsFree {
		owned, err = service.entitlements.Get(ctx, userID, target.ComicID)
		if err != nil {
			return nil, err
		}
	}

	if !access.CanRead(target, owned) {
		service.logger.Debug("chapter_access_denied",
			slog.String("user_id", userID),
			slog.String("chapter_id", target.ID),
		)
		return nil, ErrChapterLocked
	}

	pages, err := service.chapters.ListPages(ctx, target.ID)
	if err != nil {
		return nil, err
	}

	return &Content{Chapter: target, Pages: pages}, nil
}
