// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package order (Postgres) implements the ledger on billing.orders.

Table-level CHECK constraints tie completedat/failedat to the status column,
so a row can never claim completion without a timestamp.
*/
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/comicpass/internal/platform/database/schema"
	"github.com/taibuivan/comicpass/internal/platform/postgres"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db postgres.DBTX
}

// NewRepository creates an order store bound to a pool or transaction.
func NewRepository(db postgres.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ Repository = (*PostgresRepository)(nil)

func orderColumns() string {
	o := schema.BillingOrder
	return strings.Join([]string{
		o.ID, o.UserID, o.ComicID, o.ChapterID, o.Kind, o.Amount,
		o.Status, o.CreatedAt, o.CompletedAt, o.FailedAt,
	}, ", ")
}

func scanOrder(row pgx.Row, extra ...any) (*Order, error) {
	var order Order
	var kind, status string
	dest := []any{
		&order.ID, &order.UserID, &order.ComicID, &order.ChapterID, &kind, &order.Amount,
		&status, &order.CreatedAt, &order.CompletedAt, &order.FailedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	order.Kind = Kind(kind)
	order.Status = Status(status)
	return &order, nil
}

// Record inserts an order row.
func (repository *PostgresRepository) Record(context context.Context, order *Order) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		schema.BillingOrder.Table, orderColumns(),
	)

	_, err := repository.db.Exec(context, query,
		order.ID, order.UserID, order.ComicID, order.ChapterID, string(order.Kind), order.Amount,
		string(order.Status), order.CreatedAt, order.CompletedAt, order.FailedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to record order: %w", err)
	}
	return nil
}

// FindByID returns a single order.
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		orderColumns(), schema.BillingOrder.Table, schema.BillingOrder.ID)

	order, err := scanOrder(repository.db.QueryRow(context, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to find order: %w", err)
	}
	return order, nil
}

// List returns a filtered page of orders, newest first.
func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Order, int, error) {
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM %s
		WHERE TRUE`,
		orderColumns(), schema.BillingOrder.Table,
	))

	if filter.Status != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s = $%d", schema.BillingOrder.Status, argID))
		args = append(args, string(filter.Status))
		argID++
	}

	if filter.UserID != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s = $%d", schema.BillingOrder.UserID, argID))
		args = append(args, filter.UserID)
		argID++
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s DESC, %s DESC LIMIT $%d OFFSET $%d",
		schema.BillingOrder.CreatedAt, schema.BillingOrder.ID, argID, argID+1))
	args = append(args, limit, offset)

	rows, err := repository.db.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*Order, 0)
	var totalCount int
	for rows.Next() {
		order, err := scanOrder(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	return orders, totalCount, rows.Err()
}

// Stats aggregates the whole ledger in one pass using FILTER clauses.
func (repository *PostgresRepository) Stats(context context.Context, since time.Time) (*Stats, error) {
	o := schema.BillingOrder
	query := fmt.Sprintf(`
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE %[1]s = 'completed'),
			COUNT(*) FILTER (WHERE %[1]s = 'pending'),
			COUNT(*) FILTER (WHERE %[1]s = 'failed'),
			COALESCE(SUM(%[2]s) FILTER (WHERE %[1]s = 'completed'), 0),
			COALESCE(SUM(%[2]s) FILTER (WHERE %[1]s = 'completed' AND %[3]s >= $1), 0)
		FROM %[4]s`,
		o.Status, o.Amount, o.CompletedAt, o.Table,
	)

	var stats Stats
	err := repository.db.QueryRow(context, query, since).Scan(
		&stats.TotalOrders, &stats.CompletedOrders, &stats.PendingOrders, &stats.FailedOrders,
		&stats.TotalRevenue, &stats.TodayRevenue,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to aggregate orders: %w", err)
	}
	return &stats, nil
}

/*
Transition moves a pending order to completed or failed.

Description: The update is guarded by status = 'pending'. When it matches no
row, a follow-up read tells a missing order apart from a finalized one.
*/
func (repository *PostgresRepository) Transition(context context.Context, id string, to Status, at time.Time) (*Order, error) {
	o := schema.BillingOrder

	stampColumn := o.FailedAt
	if to == StatusCompleted {
		stampColumn = o.CompletedAt
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3
		WHERE %s = $1 AND %s = 'pending'
		RETURNING %s`,
		o.Table,
		o.Status, stampColumn,
		o.ID, o.Status,
		orderColumns(),
	)

	order, err := scanOrder(repository.db.QueryRow(context, query, id, string(to), at))
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("postgres: failed to transition order: %w", err)
	}

	if _, err := repository.FindByID(context, id); err != nil {
		return nil, err
	}
	return nil, ErrOrderFinalized
}
