// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/comicpass/internal/platform/sec"
	"github.com/taibuivan/comicpass/internal/platform/validate"
	"github.com/taibuivan/comicpass/pkg/uuid"
)

// Wallet writes balances. The purchase engine implements it so that every
// balance change goes through one writer.
type Wallet interface {

	// OpenAccount inserts account and credits startingGrant in one transaction.
	OpenAccount(ctx context.Context, account *Account, startingGrant int64) (*Account, error)

	// Grant credits amount coins and journals the movement.
	Grant(ctx context.Context, userID string, amount int64, note string) (*LedgerEntry, error)
}

// # Service Implementation

// Service orchestrates account provisioning and wallet reads.
type Service struct {
	repository    Repository
	wallet        Wallet
	startingGrant int64
	clock         func() time.Time
	logger        *slog.Logger
}

// NewService constructs a new account [Service].
//
// startingGrant is credited to every account opened through [Service.Open];
// zero disables the grant.
func NewService(repository Repository, wallet Wallet, startingGrant int64, logger *slog.Logger) *Service {
	return &Service{
		repository:    repository,
		wallet:        wallet,
		startingGrant: startingGrant,
		clock:         time.Now,
		logger:        logger,
	}
}

// OpenInput carries the identity fields of a new account.
type OpenInput struct {
	Username string
	Email    string
	Role     sec.UserRole
}

/*
Open provisions a new account and credits the starting grant.

Description: The insert and the grant are one unit of work in the [Wallet]. If
the grant fails nothing is persisted, so a retry with the same username is
not rejected as a duplicate.

Parameters:
  - ctx: context.Context
  - input: OpenInput

Returns:
  - *Account: The account as it stands after the grant
  - error: ErrUsernameTaken or storage failures
*/
func (service *Service) Open(ctx context.Context, input OpenInput) (*Account, error) {
	role := input.Role
	if role == "" {
		role = sec.RoleMember
	}

	account := &Account{
		ID:       uuid.New(),
		Username: strings.TrimSpace(input.Username),
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		Role:     string(role),
	}

	opened, err := service.wallet.OpenAccount(ctx, account, max(service.startingGrant, 0))
	if err != nil {
		return nil, fmt.Errorf("account_service_open_failed: %w", err)
	}

	return opened, nil
}

// Get returns the account for userID.
func (service *Service) Get(context context.Context, userID string) (*Account, error) {
	account, err := service.repository.FindByID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_get_failed: %w", err)
	}
	return account, nil
}

// List returns a page of accounts for the admin console.
func (service *Service) List(context context.Context, search string, limit, offset int) ([]*Account, int, error) {
	return service.repository.List(context, strings.TrimSpace(search), limit, offset)
}

// ListLedger returns a page of a user's balance movements.
func (service *Service) ListLedger(context context.Context, userID string, limit, offset int) ([]*LedgerEntry, int, error) {
	if _, err := service.repository.FindByID(context, userID); err != nil {
		return nil, 0, err
	}
	return service.repository.ListLedger(context, userID, limit, offset)
}

// Credit issues an operator grant through the [Wallet].
func (service *Service) Credit(ctx context.Context, userID string, amount int64, note string) (*LedgerEntry, error) {
	return service.wallet.Grant(ctx, userID, amount, note)
}

// # VIP Administration

// VIPInput is the requested VIP state of an account.
type VIPInput struct {
	IsVIP     bool
	ExpiresAt *time.Time
}

/*
SetVIP grants or revokes VIP membership.

Description: A grant may carry an expiry, which must lie in the future.
Revoking clears the expiry; one sent with a revoke is ignored.

Returns:
  - *Account: The updated account
  - error: Validation error or ErrAccountNotFound
*/
func (service *Service) SetVIP(context context.Context, userID string, input VIPInput) (*Account, error) {
	now := service.clock()

	validator := &validate.Validator{}
	validator.UUID("user_id", userID)
	if input.IsVIP && input.ExpiresAt != nil {
		validator.Custom("vip_expires_at", !input.ExpiresAt.After(now), "vip_expires_at must be in the future")
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	var expiresAt *time.Time
	if input.IsVIP && input.ExpiresAt != nil {
		value := input.ExpiresAt.UTC()
		expiresAt = &value
	}

	account, err := service.repository.SetVIP(context, userID, input.IsVIP, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("account_service_set_vip_failed: %w", err)
	}

	service.logger.Info("account_vip_updated",
		slog.String("user_id", userID),
		slog.Bool("is_vip", input.IsVIP),
		slog.Any("expires_at", expiresAt),
	)

	return account, nil
}

// Stats returns user totals for the admin dashboard.
func (service *Service) Stats(context context.Context) (*Stats, error) {
	return service.repository.Stats(context, service.clock())
}
