// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicpass/internal/platform/apperr"
	"github.com/taibuivan/comicpass/internal/platform/sec"
)

type fakeRepository struct {
	Repository
	accounts map[string]*Account
	ledger   []*LedgerEntry
}

func (f *fakeRepository) Create(_ context.Context, account *Account) error {
	for _, existing := range f.accounts {
		if existing.Username == account.Username {
			return ErrUsernameTaken
		}
	}
	f.accounts[account.ID] = account
	return nil
}

func (f *fakeRepository) FindByID(_ context.Context, id string) (*Account, error) {
	account, ok := f.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

func (f *fakeRepository) SetVIP(_ context.Context, id string, isVIP bool, expiresAt *time.Time) (*Account, error) {
	account, ok := f.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	account.IsVIP = isVIP
	account.VIPExpiresAt = expiresAt
	return account, nil
}

func (f *fakeRepository) Stats(_ context.Context, now time.Time) (*Stats, error) {
	stats := &Stats{TotalUsers: len(f.accounts)}
	for _, account := range f.accounts {
		if account.VIPActive(now) {
			stats.VIPUsers++
		}
	}
	stats.RegularUsers = stats.TotalUsers - stats.VIPUsers
	return stats, nil
}

func (f *fakeRepository) ListLedger(_ context.Context, userID string, _, _ int) ([]*LedgerEntry, int, error) {
	var out []*LedgerEntry
	for _, entry := range f.ledger {
		if entry.UserID == userID {
			out = append(out, entry)
		}
	}
	return out, len(out), nil
}

// fakeWallet opens accounts on the fake repository as one unit: a failing
// grant leaves nothing behind.
type fakeWallet struct {
	repo      *fakeRepository
	grants    []int64
	failGrant error
}

func (f *fakeWallet) OpenAccount(ctx context.Context, account *Account, startingGrant int64) (*Account, error) {
	created := *account
	if err := f.repo.Create(ctx, &created); err != nil {
		return nil, err
	}
	if startingGrant > 0 {
		if f.failGrant != nil {
			delete(f.repo.accounts, created.ID)
			return nil, f.failGrant
		}
		f.grants = append(f.grants, startingGrant)
		created.Balance += startingGrant
		created.Version++
	}
	return &created, nil
}

func (f *fakeWallet) Grant(_ context.Context, userID string, amount int64, note string) (*LedgerEntry, error) {
	f.grants = append(f.grants, amount)
	return &LedgerEntry{UserID: userID, Delta: amount, BalanceAfter: amount, Reason: ReasonGrant, Note: note}, nil
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(grant int64) (*Service, *fakeRepository, *fakeWallet) {
	repo := &fakeRepository{accounts: map[string]*Account{}}
	wallet := &fakeWallet{repo: repo}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewService(repo, wallet, grant, logger)
	service.clock = func() time.Time { return fixedNow }
	return service, repo, wallet
}

func TestService_OpenCreditsStartingGrant(t *testing.T) {
	service, _, wallet := newTestService(500)

	account, err := service.Open(context.Background(), OpenInput{Username: " alice ", Email: "Alice@Example.com"})
	require.NoError(t, err)

	assert.Equal(t, "alice", account.Username)
	assert.Equal(t, "alice@example.com", account.Email)
	assert.Equal(t, string(sec.RoleMember), account.Role)
	assert.Equal(t, int64(500), account.Balance)
	assert.Equal(t, []int64{500}, wallet.grants)
}

func TestService_OpenWithoutGrant(t *testing.T) {
	service, _, wallet := newTestService(0)

	account, err := service.Open(context.Background(), OpenInput{Username: "bob", Email: "bob@example.com"})
	require.NoError(t, err)

	assert.Zero(t, account.Balance)
	assert.Empty(t, wallet.grants)
}

func TestService_OpenFailedGrantCanBeRetried(t *testing.T) {
	service, repo, wallet := newTestService(500)
	wallet.failGrant = errors.New("connection reset")

	_, err := service.Open(context.Background(), OpenInput{Username: "dana", Email: "dana@example.com"})
	require.Error(t, err)
	assert.Empty(t, repo.accounts)

	wallet.failGrant = nil
	account, err := service.Open(context.Background(), OpenInput{Username: "dana", Email: "dana@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(500), account.Balance)
}

func TestService_OpenRejectsDuplicateUsername(t *testing.T) {
	service, _, _ := newTestService(0)

	_, err := service.Open(context.Background(), OpenInput{Username: "carol", Email: "c1@example.com"})
	require.NoError(t, err)

	_, err = service.Open(context.Background(), OpenInput{Username: "carol", Email: "c2@example.com"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestService_ListLedgerUnknownUser(t *testing.T) {
	service, _, _ := newTestService(0)

	_, _, err := service.ListLedger(context.Background(), "missing", 20, 0)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

// # VIP

func TestService_SetVIP(t *testing.T) {
	service, repo, _ := newTestService(0)
	opened, err := service.Open(context.Background(), OpenInput{Username: "erin", Email: "erin@example.com"})
	require.NoError(t, err)

	expires := fixedNow.Add(30 * 24 * time.Hour)
	account, err := service.SetVIP(context.Background(), opened.ID, VIPInput{IsVIP: true, ExpiresAt: &expires})
	require.NoError(t, err)
	assert.True(t, account.IsVIP)
	assert.True(t, repo.accounts[opened.ID].VIPActive(fixedNow))

	account, err = service.SetVIP(context.Background(), opened.ID, VIPInput{IsVIP: false, ExpiresAt: &expires})
	require.NoError(t, err)
	assert.False(t, account.IsVIP)
	assert.Nil(t, account.VIPExpiresAt, "revoking clears the expiry")
}

func TestService_SetVIPValidation(t *testing.T) {
	service, _, _ := newTestService(0)
	opened, err := service.Open(context.Background(), OpenInput{Username: "finn", Email: "finn@example.com"})
	require.NoError(t, err)

	past := fixedNow.Add(-time.Hour)

	tests := []struct {
		name   string
		userID string
		input  VIPInput
		want   error
	}{
		{"malformed_id", "finn", VIPInput{IsVIP: true}, nil},
		{"expiry_in_past", opened.ID, VIPInput{IsVIP: true, ExpiresAt: &past}, nil},
		{"expiry_now", opened.ID, VIPInput{IsVIP: true, ExpiresAt: &fixedNow}, nil},
		{"unknown_user", "0190c6a0-0000-7000-8000-00000000a999", VIPInput{IsVIP: true}, ErrAccountNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.SetVIP(context.Background(), tt.userID, tt.input)
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
				return
			}
			assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
		})
	}
}

func TestService_StatsCountsActiveVIPs(t *testing.T) {
	service, repo, _ := newTestService(0)

	lapsed := fixedNow.Add(-time.Hour)
	current := fixedNow.Add(time.Hour)
	repo.accounts["a"] = &Account{ID: "a", Username: "a", IsVIP: true}
	repo.accounts["b"] = &Account{ID: "b", Username: "b", IsVIP: true, VIPExpiresAt: &current}
	repo.accounts["c"] = &Account{ID: "c", Username: "c", IsVIP: true, VIPExpiresAt: &lapsed}
	repo.accounts["d"] = &Account{ID: "d", Username: "d"}

	stats, err := service.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Stats{TotalUsers: 4, VIPUsers: 2, RegularUsers: 2}, stats)
}

func TestAccount_CanAfford(t *testing.T) {
	account := &Account{Balance: 100}
	assert.True(t, account.CanAfford(100))
	assert.False(t, account.CanAfford(101))
}
