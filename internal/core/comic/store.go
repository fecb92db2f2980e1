// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comic

import "context"

// # Comic Data Access

// Repository defines the persistence contract for catalogue titles.
type Repository interface {

	/*
		List returns a filtered, paginated slice of comics and the total count.

		Parameters:
		  - context: context.Context
		  - filter: Filter (Search fragment, status)
		  - limit: int
		  - offset: int

		Returns:
		  - []*Comic: Page of comics, newest first
		  - int: Total count matching filters
		  - error: Storage failures
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*Comic, int, error)

	/*
		FindByID returns the live comic with the given ID.

		Returns:
		  - *Comic: Hydrated title
		  - error: ErrComicNotFound if missing or soft-deleted
	*/
	FindByID(context context.Context, id string) (*Comic, error)

	// FindBySlug returns the live comic with the given slug.
	FindBySlug(context context.Context, slug string) (*Comic, error)

	// Create persists a new comic.
	Create(context context.Context, comic *Comic) error

	// Update persists the mutable fields of an existing comic.
	Update(context context.Context, comic *Comic) error

	// IncrementViewCount bumps the title's view counter by one.
	IncrementViewCount(context context.Context, id string) error
}
