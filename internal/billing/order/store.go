// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package order

import (
	"context"
	"time"
)

// # Order Data Access

// Repository defines the persistence contract for the order ledger.
type Repository interface {

	// Record appends an order exactly as given.
	Record(context context.Context, order *Order) error

	// FindByID returns one order or ErrOrderNotFound.
	FindByID(context context.Context, id string) (*Order, error)

	/*
		List returns orders matching filter, newest first.

		Parameters:
		  - context: context.Context
		  - filter: Filter (Status, UserID)
		  - limit: int
		  - offset: int

		Returns:
		  - []*Order: Page of orders
		  - int: Total matching orders
		  - error: Storage failures
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*Order, int, error)

	/*
		Stats aggregates order counts and completed revenue.

		Parameters:
		  - context: context.Context
		  - since: time.Time (Start of the "today" window)
	*/
	Stats(context context.Context, since time.Time) (*Stats, error)

	/*
		Transition moves a pending order to a terminal status.

		Returns:
		  - *Order: The order after the move
		  - error: ErrOrderNotFound, or ErrOrderFinalized if it was not pending
	*/
	Transition(context context.Context, id string, to Status, at time.Time) (*Order, error)
}
