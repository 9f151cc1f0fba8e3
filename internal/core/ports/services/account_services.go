package services

import (
	"context"
	"time"

	"github.com/gridbill/grid_billing_app/internal/core/domain"
	"github.com/gridbill/grid_billing_app/internal/dto"
)

// AccountSvcFacade defines the account store operations: registration,
// lookup, hierarchy traversal and the identity/hierarchy edit paths.
type AccountSvcFacade interface {
	// CreateAccount registers a new account after validating the hierarchy
	// typing invariants.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, actorID string) (*domain.Account, error)

	// GetAccountByID retrieves a single account.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// GetHierarchy returns active accounts in depth-first order, siblings
	// ordered by name, rooted at parentless nodes. Each node carries its
	// depth from the root. sector narrows the traversal when non-empty.
	GetHierarchy(ctx context.Context, sector string) ([]dto.HierarchyNodeResponse, error)

	// SearchAccounts returns active accounts matching the substring filters.
	SearchAccounts(ctx context.Context, params dto.SearchAccountsParams) ([]domain.Account, error)

	// UpdateAccount edits identity/metadata fields.
	UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, actorID string) (*domain.Account, error)

	// ReparentAccount moves an account under a new parent after validating
	// type compatibility and the no-cycle invariant.
	ReparentAccount(ctx context.Context, accountID string, newParentID string, actorID string) error

	// DeactivateAccount soft-deletes an account.
	DeactivateAccount(ctx context.Context, accountID string, actorID string) error

	// DeleteAccount hard-deletes an account. Separately authorized through
	// the permission collaborator; rejected while children exist.
	DeleteAccount(ctx context.Context, accountID string, actorID string) error

	// ListRecentlyChanged returns accounts whose shadow previous-value
	// timestamp falls within the recency window ending now.
	ListRecentlyChanged(ctx context.Context, window time.Duration) ([]domain.Account, error)
}
