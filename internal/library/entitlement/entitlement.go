// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package entitlement tracks what a reader owns and how they use a comic.

One [Entitlement] exists per (user, comic) pair. It is created lazily the first
time the user favorites, reads or buys something in the comic, and it carries:

  - PurchasedAt: set once when the whole comic is bought.
  - UnlockedChapterIDs: the chapters bought individually.
  - Favorite and last-read progress for the library views.

The purchase engine is the only writer of PurchasedAt and the unlock set.
*/
package entitlement

import (
	"net/http"
	"slices"
	"time"

	"github.com/taibuivan/comicpass/internal/platform/apperr"
)

// ErrAlreadyEntitled is returned when a grant would overwrite an existing
// whole-comic purchase.
var ErrAlreadyEntitled = apperr.New("ALREADY_OWNED", "Comic already owned", http.StatusBadRequest)

// # Entities

// Entitlement is a user's relationship with one comic.
type Entitlement struct {
	UserID             string     `json:"user_id"`
	ComicID            string     `json:"comic_id"`
	IsFavorited        bool       `json:"is_favorited"`
	PurchasedAt        *time.Time `json:"purchased_at,omitempty"`
	LastReadChapterID  *string    `json:"last_read_chapter_id,omitempty"`
	LastReadPageNumber *int       `json:"last_read_page_number,omitempty"`
	LastReadAt         *time.Time `json:"last_read_at,omitempty"`
	UnlockedChapterIDs []string   `json:"unlocked_chapter_ids"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// OwnsComic reports whether the whole comic has been bought.
func (e *Entitlement) OwnsComic() bool {
	return e != nil && e.PurchasedAt != nil
}

// HasChapter reports whether chapterID was bought individually.
func (e *Entitlement) HasChapter(chapterID string) bool {
	return e != nil && slices.Contains(e.UnlockedChapterIDs, chapterID)
}

// ChapterUnlock records one chapter-level purchase.
type ChapterUnlock struct {
	UserID     string    `json:"user_id"`
	ComicID    string    `json:"comic_id"`
	ChapterID  string    `json:"chapter_id"`
	OrderID    string    `json:"order_id"`
	UnlockedAt time.Time `json:"unlocked_at"`
}
