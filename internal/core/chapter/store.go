// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import "context"

// # Chapter & Page Data Access

// Repository defines the data access contract for chapters and pages.
type Repository interface {

	/*
		ListByComic returns the chapters of a comic ordered by number.

		Parameters:
		  - context: context.Context
		  - comicID: string (Owner ID)
		  - filter: Filter
		  - limit: int
		  - offset: int

		Returns:
		  - []*Chapter: List of hydrated chapters
		  - int: Total chapters of the comic
		  - error: Storage failures
	*/
	ListByComic(context context.Context, comicID string, filter Filter, limit, offset int) ([]*Chapter, int, error)

	/*
		FindByID returns the chapter with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *Chapter: Hydrated metadata
		  - error: ErrChapterNotFound if missing
	*/
	FindByID(context context.Context, id string) (*Chapter, error)

	/*
		Create persists a new chapter. IsFree is written exactly as given.

		Returns:
		  - error: ErrDuplicateNumber or storage failure
	*/
	Create(context context.Context, chapter *Chapter) error

	// ListPages returns all pages for a chapter ordered by page number.
	ListPages(context context.Context, chapterID string) ([]*Page, error)

	/*
		AppendPages inserts pages and bumps the chapter's page count in one
		statement.

		Parameters:
		  - context: context.Context
		  - chapterID: string (UUID)
		  - pages: []*Page (Numbers already assigned)

		Returns:
		  - error: Conflict on duplicate page numbers, or storage failure
	*/
	AppendPages(context context.Context, chapterID string, pages []*Page) error
}
