// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account (Postgres) implements the storage layer for wallets.

# Schema Table Mapping
  - users.account: Identity fields, balance and optimistic version.
  - billing.balanceledger: Append-only balance movements.

The repository runs on [postgres.DBTX], so the purchase engine can bind it to
its serializable transaction while the read paths use the pool directly.
*/
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/comicpass/internal/platform/database/schema"
	"github.com/taibuivan/comicpass/internal/platform/dberr"
	"github.com/taibuivan/comicpass/internal/platform/postgres"
)

// # Repository Implementation

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db postgres.DBTX
}

// NewRepository creates a Postgres account store bound to a pool or transaction.
func NewRepository(db postgres.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ Repository = (*PostgresRepository)(nil)

// accountColumns is the projection scanned by [scanAccount], in order.
func accountColumns() string {
	return strings.Join(schema.UserAccount.Columns(), ", ")
}

// selectAccount is the shared projection for every account read.
func selectAccount() string {
	return fmt.Sprintf(`
		SELECT %s
		FROM %s`,
		accountColumns(), schema.UserAccount.Table,
	)
}

// accountFields lists the scan targets matching [accountColumns].
func accountFields(account *Account) []any {
	return []any{
		&account.ID, &account.Username, &account.Email, &account.Role,
		&account.Balance, &account.Version, &account.IsVIP, &account.VIPExpiresAt,
		&account.CreatedAt, &account.UpdatedAt,
	}
}

func scanAccount(row pgx.Row) (*Account, error) {
	var account Account
	if err := row.Scan(accountFields(&account)...); err != nil {
		return nil, err
	}
	return &account, nil
}

// FindByID retrieves an account without locking it.
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Account, error) {
	query := selectAccount() + fmt.Sprintf(" WHERE %s = $1", schema.UserAccount.ID)

	account, err := scanAccount(repository.db.QueryRow(context, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to find account: %w", err)
	}
	return account, nil
}

/*
LockForUpdate retrieves an account with SELECT ... FOR UPDATE.

Description: Concurrent purchases for the same user queue on this lock, so the
balance check and the debit observe the same row state.
*/
func (repository *PostgresRepository) LockForUpdate(context context.Context, id string) (*Account, error) {
	query := selectAccount() + fmt.Sprintf(" WHERE %s = $1 FOR UPDATE", schema.UserAccount.ID)

	account, err := scanAccount(repository.db.QueryRow(context, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to lock account: %w", err)
	}
	return account, nil
}

// List returns a page of accounts matching an optional search fragment.
func (repository *PostgresRepository) List(context context.Context, search string, limit, offset int) ([]*Account, int, error) {
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM %s
		WHERE ($1 = '' OR %s ILIKE '%%' || $1 || '%%' OR %s ILIKE '%%' || $1 || '%%')
		ORDER BY %s DESC
		LIMIT $2 OFFSET $3`,
		accountColumns(),
		schema.UserAccount.Table,
		schema.UserAccount.Username, schema.UserAccount.Email,
		schema.UserAccount.CreatedAt,
	)

	rows, err := repository.db.Query(context, query, search, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*Account
	var totalCount int
	for rows.Next() {
		var account Account
		if err := rows.Scan(append(accountFields(&account), &totalCount)...); err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan account: %w", err)
		}
		accounts = append(accounts, &account)
	}

	return accounts, totalCount, rows.Err()
}

// Create inserts a new account row.
func (repository *PostgresRepository) Create(context context.Context, account *Account) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		RETURNING %s, %s, %s, %s`,
		schema.UserAccount.Table,
		schema.UserAccount.ID, schema.UserAccount.Username, schema.UserAccount.Email, schema.UserAccount.Role,
		schema.UserAccount.Balance, schema.UserAccount.Version, schema.UserAccount.CreatedAt, schema.UserAccount.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query, account.ID, account.Username, account.Email, account.Role).
		Scan(&account.Balance, &account.Version, &account.CreatedAt, &account.UpdatedAt)
	if dberr.IsUniqueViolation(err) {
		return ErrUsernameTaken.WithCause(err)
	}
	if err != nil {
		return fmt.Errorf("postgres: failed to create account: %w", err)
	}
	return nil
}

/*
SetVIP replaces the VIP flag and expiry.

Description: Balance and version are left alone; VIP status is not a balance
movement and does not contend with the purchase engine's version guard.
*/
func (repository *PostgresRepository) SetVIP(context context.Context, id string, isVIP bool, expiresAt *time.Time) (*Account, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = NOW()
		WHERE %s = $1
		RETURNING %s`,
		schema.UserAccount.Table,
		schema.UserAccount.IsVIP, schema.UserAccount.VIPExpiresAt, schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID,
		accountColumns(),
	)

	account, err := scanAccount(repository.db.QueryRow(context, query, id, isVIP, expiresAt))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to update vip status: %w", err)
	}
	return account, nil
}

// Stats counts accounts and active VIP memberships in one scan.
func (repository *PostgresRepository) Stats(context context.Context, now time.Time) (*Stats, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE %s AND (%s IS NULL OR %s > $1))
		FROM %s`,
		schema.UserAccount.IsVIP, schema.UserAccount.VIPExpiresAt, schema.UserAccount.VIPExpiresAt,
		schema.UserAccount.Table,
	)

	var stats Stats
	if err := repository.db.QueryRow(context, query, now).Scan(&stats.TotalUsers, &stats.VIPUsers); err != nil {
		return nil, fmt.Errorf("postgres: failed to count accounts: %w", err)
	}
	stats.RegularUsers = stats.TotalUsers - stats.VIPUsers
	return &stats, nil
}

/*
Debit subtracts amount from the balance under a version and funds guard.

Description: The WHERE clause repeats the balance check the caller already made
against the locked row. Matching no row means the caller's view is stale.
*/
func (repository *PostgresRepository) Debit(context context.Context, id string, amount, expectedVersion int64) (*Account, error) {
	return repository.applyDelta(context, id, -amount, expectedVersion)
}

// Credit adds amount to the balance under a version guard.
func (repository *PostgresRepository) Credit(context context.Context, id string, amount, expectedVersion int64) (*Account, error) {
	return repository.applyDelta(context, id, amount, expectedVersion)
}

func (repository *PostgresRepository) applyDelta(context context.Context, id string, delta, expectedVersion int64) (*Account, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = %s + $2, %s = %s + 1, %s = NOW()
		WHERE %s = $1 AND %s = $3 AND %s + $2 >= 0
		RETURNING %s`,
		schema.UserAccount.Table,
		schema.UserAccount.Balance, schema.UserAccount.Balance,
		schema.UserAccount.Version, schema.UserAccount.Version,
		schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID, schema.UserAccount.Version, schema.UserAccount.Balance,
		accountColumns(),
	)

	account, err := scanAccount(repository.db.QueryRow(context, query, id, delta, expectedVersion))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBalanceConflict
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to update balance: %w", err)
	}
	return account, nil
}

// AppendLedger inserts one balance movement.
func (repository *PostgresRepository) AppendLedger(context context.Context, entry *LedgerEntry) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		schema.BillingBalanceLedger.Table,
		schema.BillingBalanceLedger.ID, schema.BillingBalanceLedger.UserID,
		schema.BillingBalanceLedger.Delta, schema.BillingBalanceLedger.BalanceAfter,
		schema.BillingBalanceLedger.Reason, schema.BillingBalanceLedger.OrderID,
		schema.BillingBalanceLedger.Note, schema.BillingBalanceLedger.CreatedAt,
	)

	_, err := repository.db.Exec(context, query,
		entry.ID, entry.UserID, entry.Delta, entry.BalanceAfter,
		string(entry.Reason), entry.OrderID, entry.Note, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to append ledger entry: %w", err)
	}
	return nil
}

// ListLedger returns a page of balance movements, newest first.
func (repository *PostgresRepository) ListLedger(context context.Context, userID string, limit, offset int) ([]*LedgerEntry, int, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, COUNT(*) OVER() AS total_count
		FROM %s
		WHERE %s = $1
		ORDER BY %s DESC, %s DESC
		LIMIT $2 OFFSET $3`,
		schema.BillingBalanceLedger.ID, schema.BillingBalanceLedger.UserID,
		schema.BillingBalanceLedger.Delta, schema.BillingBalanceLedger.BalanceAfter,
		schema.BillingBalanceLedger.Reason, schema.BillingBalanceLedger.OrderID,
		schema.BillingBalanceLedger.Note, schema.BillingBalanceLedger.CreatedAt,
		schema.BillingBalanceLedger.Table,
		schema.BillingBalanceLedger.UserID,
		schema.BillingBalanceLedger.CreatedAt, schema.BillingBalanceLedger.ID,
	)

	rows, err := repository.db.Query(context, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list ledger: %w", err)
	}
	defer rows.Close()

	var entries []*LedgerEntry
	var totalCount int
	for rows.Next() {
		var entry LedgerEntry
		var reason string
		if err := rows.Scan(
			&entry.ID, &entry.UserID, &entry.Delta, &entry.BalanceAfter,
			&reason, &entry.OrderID, &entry.Note, &entry.CreatedAt, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan ledger entry: %w", err)
		}
		entry.Reason = LedgerReason(reason)
		entries = append(entries, &entry)
	}

	return entries, totalCount, rows.Err()
}
