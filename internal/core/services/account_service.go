package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gridbill/grid_billing_app/internal/apperrors"
	"github.com/gridbill/grid_billing_app/internal/core/domain"
	portsrepo "github.com/gridbill/grid_billing_app/internal/core/ports/repositories"
	portssvc "github.com/gridbill/grid_billing_app/internal/core/ports/services"
	"github.com/gridbill/grid_billing_app/internal/dto"
	"github.com/gridbill/grid_billing_app/internal/middleware"
)

var (
	ErrGeneratorHasParent = errors.New("a generator account cannot have a parent")
	ErrParentRequired     = errors.New("a parent account is required for this meter type")
	ErrParentTypeInvalid  = errors.New("parent meter type is not allowed for this account")
	ErrHierarchyCycle     = errors.New("reparenting would create a cycle in the hierarchy")
	ErrAccountHasChildren = errors.New("account still has child accounts")
)

// maxHierarchyDepth bounds ancestor walks so a corrupted parent chain cannot
// spin forever.
const maxHierarchyDepth = 64

// accountService implements the account store: registration, lookup,
// hierarchy traversal and the identity/hierarchy edit paths.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	authSvc     portssvc.AuthorizationSvcFacade
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, authSvc portssvc.AuthorizationSvcFacade) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo, authSvc: authSvc}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// validateParent enforces the hierarchy typing invariants at write time.
func (s *accountService) validateParent(ctx context.Context, meterType domain.MeterType, parentID string) (*domain.Account, error) {
	if meterType == domain.MeterGenerator {
		if parentID != "" {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrGeneratorHasParent)
		}
		return nil, nil
	}
	if parentID == "" {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrParentRequired)
	}
	parent, err := s.accountRepo.FindAccountByID(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve parent account %s: %w", parentID, err)
	}
	if !domain.ValidParentType(meterType, parent.MeterType) {
		return nil, fmt.Errorf("%w: %s (%s under %s)", apperrors.ErrValidation, ErrParentTypeInvalid, meterType, parent.MeterType)
	}
	return parent, nil
}

// CreateAccount implements portssvc.AccountSvcFacade.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, actorID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	parentID := ""
	if req.ParentAccountID != nil {
		parentID = *req.ParentAccountID
	}
	if _, err := s.validateParent(ctx, req.MeterType, parentID); err != nil {
		return nil, err
	}
	if req.InitialReading.IsNegative() {
		return nil, fmt.Errorf("%w: initial counter reading must not be negative", apperrors.ErrValidation)
	}

	category := req.FinancialCategory
	if category == "" {
		category = domain.CategoryNormal
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:          uuid.NewString(),
		ParentAccountID:    parentID,
		MeterType:          req.MeterType,
		Name:               req.Name,
		Sector:             req.Sector,
		BoxNumber:          req.BoxNumber,
		SerialNumber:       req.SerialNumber,
		FinancialCategory:  category,
		IsActive:           true,
		CurrentBalance:     decimal.Zero,
		LastCounterReading: req.InitialReading,
		CreditBalance:      decimal.Zero,
		WithdrawalTotal:    decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		logger.Error("failed to save account", "error", err, "account_name", req.Name)
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("account created", "account_id", account.AccountID, "meter_type", account.MeterType)
	return &account, nil
}

// GetAccountByID implements portssvc.AccountSvcFacade.
func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	return account, nil
}

// GetHierarchy implements portssvc.AccountSvcFacade. Traversal is an explicit
// adjacency-list walk: roots are parentless nodes, children visited
// depth-first with siblings ordered by name, so output is deterministic.
func (s *accountService) GetHierarchy(ctx context.Context, sector string) ([]dto.HierarchyNodeResponse, error) {
	accounts, err := s.accountRepo.ListActiveAccounts(ctx, sector)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts for hierarchy: %w", err)
	}

	byID := make(map[string]bool, len(accounts))
	for _, acc := range accounts {
		byID[acc.AccountID] = true
	}

	children := make(map[string][]domain.Account)
	roots := make([]domain.Account, 0)
	for _, acc := range accounts {
		// A node whose parent is filtered out (other sector, inactive)
		// surfaces as a root of its own subtree.
		if acc.ParentAccountID == "" || !byID[acc.ParentAccountID] {
			roots = append(roots, acc)
		} else {
			children[acc.ParentAccountID] = append(children[acc.ParentAccountID], acc)
		}
	}

	byName := func(accs []domain.Account) {
		sort.Slice(accs, func(i, j int) bool { return accs[i].Name < accs[j].Name })
	}
	byName(roots)
	for _, siblings := range children {
		byName(siblings)
	}

	out := make([]dto.HierarchyNodeResponse, 0, len(accounts))
	var visit func(acc domain.Account, depth int)
	visit = func(acc domain.Account, depth int) {
		out = append(out, dto.HierarchyNodeResponse{AccountResponse: dto.ToAccountResponse(&acc), Depth: depth})
		for _, child := range children[acc.AccountID] {
			visit(child, depth+1)
		}
	}
	for _, root := range roots {
		visit(root, 0)
	}
	return out, nil
}

// SearchAccounts implements portssvc.AccountSvcFacade.
func (s *accountService) SearchAccounts(ctx context.Context, params dto.SearchAccountsParams) ([]domain.Account, error) {
	filters := portsrepo.AccountSearchFilters{
		Sector:            params.Sector,
		MeterType:         domain.MeterType(strings.ToUpper(params.MeterType)),
		FinancialCategory: domain.FinancialCategory(strings.ToUpper(params.FinancialCategory)),
	}
	if params.MeterType == "" {
		filters.MeterType = ""
	}
	if params.FinancialCategory == "" {
		filters.FinancialCategory = ""
	}
	accounts, err := s.accountRepo.SearchAccounts(ctx, params.Term, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to search accounts: %w", err)
	}
	return accounts, nil
}

// UpdateAccount implements portssvc.AccountSvcFacade.
func (s *accountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, actorID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil {
		account.Name = *req.Name
		updated = true
	}
	if req.Sector != nil {
		account.Sector = *req.Sector
		updated = true
	}
	if req.BoxNumber != nil {
		account.BoxNumber = *req.BoxNumber
		updated = true
	}
	if req.SerialNumber != nil {
		account.SerialNumber = *req.SerialNumber
		updated = true
	}
	if req.FinancialCategory != nil {
		account.FinancialCategory = *req.FinancialCategory
		updated = true
	}
	if !updated {
		return account, nil
	}

	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = actorID
	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		logger.Error("failed to update account", "error", err, "account_id", accountID)
		return nil, fmt.Errorf("failed to update account %s: %w", accountID, err)
	}
	return account, nil
}

// ReparentAccount implements portssvc.AccountSvcFacade. Besides the typing
// rules, the new parent must not be a descendant of the account being moved;
// the check walks the ancestor chain of the new parent.
func (s *accountService) ReparentAccount(ctx context.Context, accountID string, newParentID string, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.MeterType == domain.MeterGenerator && newParentID != "" {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrGeneratorHasParent)
	}
	if _, err := s.validateParent(ctx, account.MeterType, newParentID); err != nil {
		return err
	}
	if newParentID == accountID {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrHierarchyCycle)
	}

	// Cycle check: accountID must not be an ancestor of the new parent.
	cursor := newParentID
	for depth := 0; cursor != ""; depth++ {
		if depth >= maxHierarchyDepth {
			return fmt.Errorf("%w: hierarchy deeper than %d levels", apperrors.ErrValidation, maxHierarchyDepth)
		}
		if cursor == accountID {
			return fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrHierarchyCycle)
		}
		ancestor, err := s.accountRepo.FindAccountByID(ctx, cursor)
		if err != nil {
			return fmt.Errorf("failed to walk ancestors of %s: %w", newParentID, err)
		}
		cursor = ancestor.ParentAccountID
	}

	now := time.Now().UTC()
	if err := s.accountRepo.UpdateAccountParent(ctx, accountID, newParentID, actorID, now); err != nil {
		logger.Error("failed to reparent account", "error", err, "account_id", accountID, "new_parent_id", newParentID)
		return fmt.Errorf("failed to reparent account %s: %w", accountID, err)
	}

	logger.Info("account reparented", "account_id", accountID, "new_parent_id", newParentID)
	return nil
}

// DeactivateAccount implements portssvc.AccountSvcFacade.
func (s *accountService) DeactivateAccount(ctx context.Context, accountID string, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	if err := s.accountRepo.DeactivateAccount(ctx, accountID, actorID, now); err != nil {
		return fmt.Errorf("failed to deactivate account %s: %w", accountID, err)
	}
	logger.Info("account deactivated", "account_id", accountID)
	return nil
}

// DeleteAccount implements portssvc.AccountSvcFacade. Hard deletion is an
// administrative action gated by the permission collaborator and rejected
// while the account still anchors a subtree.
func (s *accountService) DeleteAccount(ctx context.Context, accountID string, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.authSvc.Authorize(ctx, actorID, portssvc.CapabilityDeleteAccount); err != nil {
		logger.Warn("hard delete refused", "account_id", accountID, "actor_id", actorID)
		return err
	}

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return err
	}

	all, err := s.accountRepo.ListActiveAccounts(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to check children of %s: %w", accountID, err)
	}
	for _, other := range all {
		if other.ParentAccountID == account.AccountID {
			return fmt.Errorf("%w: %s", apperrors.ErrConflict, ErrAccountHasChildren)
		}
	}

	if err := s.accountRepo.DeleteAccount(ctx, accountID); err != nil {
		return fmt.Errorf("failed to delete account %s: %w", accountID, err)
	}
	logger.Info("account deleted", "account_id", accountID, "actor_id", actorID)
	return nil
}

// ListRecentlyChanged implements portssvc.AccountSvcFacade.
func (s *accountService) ListRecentlyChanged(ctx context.Context, window time.Duration) ([]domain.Account, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: recency window must be positive", apperrors.ErrValidation)
	}
	since := time.Now().UTC().Add(-window)
	accounts, err := s.accountRepo.ListRecentlyChanged(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list recently changed accounts: %w", err)
	}
	return accounts, nil
}
