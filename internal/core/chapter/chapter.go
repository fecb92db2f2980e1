// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package chapter manages the readable units of a comic and their page images.

A chapter's IsFree flag is decided once, when the chapter is created, by
comparing its number with the owning comic's free-chapter count at that moment.
It is stored, not derived, so later catalogue edits never lock or unlock
chapters that readers have already seen.
*/
package chapter

import (
	"net/http"
	"time"

	"github.com/taibuivan/comicpass/internal/platform/apperr"
)

// Validation field names.
const (
	FieldNumber    = "number"
	FieldTitle     = "title"
	FieldImageURLs = "image_urls"
)

// ErrChapterNotFound is returned when no live chapter matches the identifier.
var ErrChapterNotFound = apperr.New("CHAPTER_NOT_FOUND", "Chapter not found", http.StatusNotFound)

// ErrDuplicateNumber is returned when the comic already has a chapter with that number.
var ErrDuplicateNumber = apperr.Conflict("A chapter with this number already exists")

// # Entities

// Chapter is one numbered installment of a comic.
type Chapter struct {
	ID          string     `json:"id"`
	ComicID     string     `json:"comic_id"`
	Number      int        `json:"number"`
	Title       string     `json:"title"`
	IsFree      bool       `json:"is_free"`
	PageCount   int        `json:"page_count"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Page is a single image within a chapter.
type Page struct {
	ID           string    `json:"id"`
	ChapterID    string    `json:"chapter_id"`
	Number       int       `json:"number"`
	ImageURL     string    `json:"image_url"`
	ThumbnailURL *string   `json:"thumbnail_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Filter controls chapter listing order.
type Filter struct {
	SortDir string
}
