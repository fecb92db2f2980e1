// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package order

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/comicpass/internal/platform/validate"
)

// # Service Layer

// Service exposes order history and the operator actions on the ledger.
// Completing an order is not offered here; only the purchase engine does it.
type Service struct {
	repository Repository
	clock      func() time.Time
	logger     *slog.Logger
}

// NewService constructs an order [Service].
func NewService(repository Repository, logger *slog.Logger) *Service {
	return &Service{repository: repository, clock: time.Now, logger: logger}
}

// Get returns a single order.
func (service *Service) Get(context context.Context, id string) (*Order, error) {
	return service.repository.FindByID(context, id)
}

// ListByUser returns a user's orders, newest first.
func (service *Service) ListByUser(context context.Context, userID string, limit, offset int) ([]*Order, int, error) {
	return service.repository.List(context, Filter{UserID: userID}, limit, offset)
}

// List returns orders for the admin console.
func (service *Service) List(context context.Context, filter Filter, limit, offset int) ([]*Order, int, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, validate.RequiredError("status", "Unknown order status")
	}
	return service.repository.List(context, filter, limit, offset)
}

// Stats aggregates the ledger; "today" starts at 00:00 UTC.
func (service *Service) Stats(context context.Context) (*Stats, error) {
	now := service.clock().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return service.repository.Stats(context, dayStart)
}

/*
Reject fails a pending order on behalf of an operator.

Returns:
  - *Order: The failed order
  - error: ErrOrderNotFound or ErrOrderFinalized
*/
func (service *Service) Reject(ctx context.Context, id string) (*Order, error) {
	order, err := service.repository.Transition(ctx, id, StatusFailed, service.clock())
	if err != nil {
		return nil, err
	}

	service.logger.Warn("order_rejected",
		slog.String("order_id", order.ID),
		slog.String("user_id", order.UserID),
	)
	return order, nil
}
