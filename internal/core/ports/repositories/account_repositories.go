package repositories

import (
	"context"
	"time"

	"github.com/gridbill/grid_billing_app/internal/core/domain"
)

// AccountSearchFilters narrows SearchAccounts. Zero values mean "no filter".
type AccountSearchFilters struct {
	Sector            string
	MeterType         domain.MeterType
	FinancialCategory domain.FinancialCategory
}

// AccountReader defines read operations for account data.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// ListActiveAccounts retrieves all active accounts, optionally restricted
	// to a sector, ordered by name. The account service builds the hierarchy
	// traversal on top of this.
	ListActiveAccounts(ctx context.Context, sector string) ([]domain.Account, error)

	// SearchAccounts returns active accounts whose name, serial number or box
	// number contains term, further narrowed by filters.
	SearchAccounts(ctx context.Context, term string, filters AccountSearchFilters) ([]domain.Account, error)

	// ListRecentlyChanged returns accounts whose shadow previous-value
	// timestamp falls at or after since.
	ListRecentlyChanged(ctx context.Context, since time.Time) ([]domain.Account, error)
}

// AccountWriter defines write operations for account identity and hierarchy
// fields. Balance columns are written only through the ledger repository.
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates an existing account's identity/metadata fields.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// UpdateAccountParent moves an account under a new parent. An empty
	// newParentID detaches it (generators only).
	UpdateAccountParent(ctx context.Context, accountID string, newParentID string, actorID string, now time.Time) error

	// DeactivateAccount marks an account as inactive.
	DeactivateAccount(ctx context.Context, accountID string, actorID string, now time.Time) error

	// DeleteAccount removes an account row. Administrative action only; the
	// service gates it behind an explicit authorization check.
	DeleteAccount(ctx context.Context, accountID string) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
