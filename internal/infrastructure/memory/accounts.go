package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/library-access-api/internal/domain"
)

// AccountRepo keeps accounts per partition in insertion order so that
// FindByEmail has the same first-match behaviour as an indexed query.
type AccountRepo struct {
	mu         sync.RWMutex
	partitions map[domain.Partition][]domain.Account
}

func NewAccountRepo() *AccountRepo {
	return &AccountRepo{partitions: make(map[domain.Partition][]domain.Account)}
}

func (r *AccountRepo) Put(_ context.Context, p domain.Partition, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	accounts := r.partitions[p]
	for i := range accounts {
		if accounts[i].AccountID == a.AccountID {
			accounts[i] = *a
			return nil
		}
	}
	r.partitions[p] = append(accounts, *a)
	return nil
}

func (r *AccountRepo) FindByEmail(_ context.Context, p domain.Partition, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.partitions[p] {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, fmt.Errorf("account not found in %s: %w", p, domain.ErrNotFound)
}

// FindActiveByEmail returns the first account with email that is not soft-deleted.
func (r *AccountRepo) FindActiveByEmail(_ context.Context, p domain.Partition, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.partitions[p] {
		if a.Email == email && !a.IsDeleted {
			return &a, nil
		}
	}
	return nil, fmt.Errorf("no active account in %s: %w", p, domain.ErrNotFound)
}

// SoftDelete flags the account as deleted. When library is non-nil the
// account must still belong to that library.
func (r *AccountRepo) SoftDelete(_ context.Context, p domain.Partition, accountID string, library *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	accounts := r.partitions[p]
	for i := range accounts {
		if accounts[i].AccountID != accountID {
			continue
		}
		if library != nil && accounts[i].LibraryID != *library {
			return fmt.Errorf("account moved to another library: %w", domain.ErrConditionFailed)
		}
		accounts[i].IsDeleted = true
		return nil
	}
	return fmt.Errorf("account not found in %s: %w", p, domain.ErrNotFound)
}
