// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package comic defines the sellable title of the Comicpass catalogue.

A title carries the two numbers the purchase flow depends on:

  - UnlockPrice: coins needed to own every chapter at once. Zero means the
    title cannot be bought as a whole.
  - FreeChapterCount: chapters numbered up to this value are created free.
    The value is read once per chapter at creation; editing it later does not
    re-classify existing chapters.
*/
package comic

import (
	"net/http"
	"time"

	"github.com/taibuivan/comicpass/internal/platform/apperr"
)

// # Domain Enums

// Status represents the publication status of a comic.
type Status string

const (
	// StatusOngoing indicates the publication is actively updating.
	StatusOngoing Status = "ongoing"

	// StatusCompleted indicates no further chapters are expected.
	StatusCompleted Status = "completed"

	// StatusHiatus indicates the publication is paused indefinitely.
	StatusHiatus Status = "hiatus"
)

// IsValid reports whether s is a recognised [Status] value.
func (s Status) IsValid() bool {
	switch s {
	case StatusOngoing, StatusCompleted, StatusHiatus:
		return true
	}
	return false
}

// Validation field names.
const (
	FieldTitle            = "title"
	FieldSlug             = "slug"
	FieldStatus           = "status"
	FieldSynopsis         = "synopsis"
	FieldUnlockPrice      = "unlock_price"
	FieldFreeChapterCount = "free_chapter_count"
)

// ErrComicNotFound is returned when no live comic matches the identifier.
var ErrComicNotFound = apperr.New("COMIC_NOT_FOUND", "Comic not found", http.StatusNotFound)

// # Entities

// Comic is a catalogue title.
type Comic struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Slug             string     `json:"slug"`
	Synopsis         string     `json:"synopsis"`
	CoverURL         string     `json:"cover_url"`
	Status           Status     `json:"status"`
	UnlockPrice      int64      `json:"unlock_price"`
	FreeChapterCount int        `json:"free_chapter_count"`
	ViewCount        int64      `json:"view_count"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	DeletedAt        *time.Time `json:"-"`
}

// IsPurchasable reports whether the title can be bought as a whole.
func (c *Comic) IsPurchasable() bool {
	return c.UnlockPrice > 0
}

// IsFreeChapter reports whether a chapter numbered number falls in the free range.
func (c *Comic) IsFreeChapter(number int) bool {
	return number <= c.FreeChapterCount
}

// Filter narrows a catalogue listing.
type Filter struct {
	Search string
	Status Status
}
