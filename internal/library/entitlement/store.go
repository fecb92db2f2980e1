// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package entitlement

import (
	"context"
	"time"
)

// # Entitlement Data Access

// Repository defines the persistence contract for entitlements.
type Repository interface {

	/*
		Find returns the entitlement of userID for comicID together with the
		chapters unlocked individually.

		Parameters:
		  - context: context.Context
		  - userID: string (UUID)
		  - comicID: string (UUID)

		Returns:
		  - *Entitlement: nil when the user never interacted with the comic
		  - error: Storage failures
	*/
	Find(context context.Context, userID, comicID string) (*Entitlement, error)

	/*
		GrantComic marks the whole comic as purchased at the given time.

		Returns:
		  - error: ErrAlreadyEntitled if a purchase is already recorded
	*/
	GrantComic(context context.Context, userID, comicID string, at time.Time) error

	/*
		UnlockChapter adds a chapter to the user's unlock set, creating the
		entitlement row if needed.

		Returns:
		  - error: A unique violation when the chapter is already unlocked
	*/
	UnlockChapter(context context.Context, unlock *ChapterUnlock) error

	// SetFavorite upserts the favorite flag.
	SetFavorite(context context.Context, userID, comicID string, favorite bool) error

	// SaveProgress upserts the last-read position.
	SaveProgress(context context.Context, userID, comicID, chapterID string, page int, at time.Time) error

	// ListFavorites returns the user's favorited comics, most recently changed first.
	ListFavorites(context context.Context, userID string, limit, offset int) ([]*Entitlement, int, error)

	// ListHistory returns the user's read comics, most recently read first.
	ListHistory(context context.Context, userID string, limit, offset int) ([]*Entitlement, int, error)
}
