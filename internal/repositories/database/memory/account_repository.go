package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gridbill/grid_billing_app/internal/apperrors"
	"github.com/gridbill/grid_billing_app/internal/core/domain"
	portsrepo "github.com/gridbill/grid_billing_app/internal/core/ports/repositories"
)

// AccountRepository is the in-memory account store.
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates an account repository over store.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

var _ portsrepo.AccountRepositoryFacade = (*AccountRepository)(nil)

// FindAccountByID implements portsrepo.AccountReader.
func (r *AccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	_ = ctx
	r.store.mu.RLock()
	account, ok := r.store.accounts[accountID]
	r.store.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return &account, nil
}

// ListActiveAccounts implements portsrepo.AccountReader.
func (r *AccountRepository) ListActiveAccounts(ctx context.Context, sector string) ([]domain.Account, error) {
	_ = ctx
	r.store.mu.RLock()
	accounts := make([]domain.Account, 0)
	for _, a := range r.store.accounts {
		if !a.IsActive {
			continue
		}
		if sector != "" && a.Sector != sector {
			continue
		}
		accounts = append(accounts, a)
	}
	r.store.mu.RUnlock()

	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name < accounts[j].Name })
	return accounts, nil
}

// SearchAccounts implements portsrepo.AccountReader.
func (r *AccountRepository) SearchAccounts(ctx context.Context, term string, filters portsrepo.AccountSearchFilters) ([]domain.Account, error) {
	_ = ctx
	term = strings.ToLower(term)

	r.store.mu.RLock()
	matches := make([]domain.Account, 0)
	for _, a := range r.store.accounts {
		if !a.IsActive {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(a.Name), term) &&
			!strings.Contains(strings.ToLower(a.SerialNumber), term) &&
			!strings.Contains(strings.ToLower(a.BoxNumber), term) {
			continue
		}
		if filters.Sector != "" && a.Sector != filters.Sector {
			continue
		}
		if filters.MeterType != "" && a.MeterType != filters.MeterType {
			continue
		}
		if filters.FinancialCategory != "" && a.FinancialCategory != filters.FinancialCategory {
			continue
		}
		matches = append(matches, a)
	}
	r.store.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool { return matches[i].Name < matches[j].Name })
	return matches, nil
}

// ListRecentlyChanged implements portsrepo.AccountReader.
func (r *AccountRepository) ListRecentlyChanged(ctx context.Context, since time.Time) ([]domain.Account, error) {
	_ = ctx
	r.store.mu.RLock()
	accounts := make([]domain.Account, 0)
	for _, a := range r.store.accounts {
		if a.PreviousValueAt != nil && !a.PreviousValueAt.Before(since) {
			accounts = append(accounts, a)
		}
	}
	r.store.mu.RUnlock()

	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name < accounts[j].Name })
	return accounts, nil
}

// SaveAccount implements portsrepo.AccountWriter.
func (r *AccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	_ = ctx
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, exists := r.store.accounts[account.AccountID]; exists {
		return fmt.Errorf("%w: account %s", apperrors.ErrDuplicate, account.AccountID)
	}
	r.store.accounts[account.AccountID] = account
	return nil
}

// UpdateAccount implements portsrepo.AccountWriter. Only identity and
// metadata fields are written; balance fields stay as stored, mirroring the
// column split of the SQL implementation.
func (r *AccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	_ = ctx
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.accounts[account.AccountID]
	if !ok {
		return apperrors.ErrNotFound
	}
	stored.Name = account.Name
	stored.Sector = account.Sector
	stored.BoxNumber = account.BoxNumber
	stored.SerialNumber = account.SerialNumber
	stored.FinancialCategory = account.FinancialCategory
	stored.IsActive = account.IsActive
	stored.LastUpdatedAt = account.LastUpdatedAt
	stored.LastUpdatedBy = account.LastUpdatedBy
	r.store.accounts[account.AccountID] = stored
	return nil
}

// UpdateAccountParent implements portsrepo.AccountWriter.
func (r *AccountRepository) UpdateAccountParent(ctx context.Context, accountID string, newParentID string, actorID string, now time.Time) error {
	_ = ctx
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.accounts[accountID]
	if !ok {
		return apperrors.ErrNotFound
	}
	stored.ParentAccountID = newParentID
	stored.LastUpdatedAt = now
	stored.LastUpdatedBy = actorID
	r.store.accounts[accountID] = stored
	return nil
}

// DeactivateAccount implements portsrepo.AccountWriter.
func (r *AccountRepository) DeactivateAccount(ctx context.Context, accountID string, actorID string, now time.Time) error {
	_ = ctx
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.accounts[accountID]
	if !ok {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	if !stored.IsActive {
		return fmt.Errorf("%w: account %s is already inactive", apperrors.ErrConflict, accountID)
	}
	stored.IsActive = false
	stored.LastUpdatedAt = now
	stored.LastUpdatedBy = actorID
	r.store.accounts[accountID] = stored
	return nil
}

// DeleteAccount implements portsrepo.AccountWriter.
func (r *AccountRepository) DeleteAccount(ctx context.Context, accountID string) error {
	_ = ctx
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.accounts[accountID]; !ok {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	delete(r.store.accounts, accountID)
	return nil
}
