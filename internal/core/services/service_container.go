package services

import (
	portsrepo "github.com/gridbill/grid_billing_app/internal/core/ports/repositories"
	portssvc "github.com/gridbill/grid_billing_app/internal/core/ports/services"
)

// NewServiceContainer wires the service facades over a repository provider.
func NewServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	authSvc := NewRoleAuthorizationService()
	ledgerSvc := NewLedgerService(repos.LedgerRepo)

	return &portssvc.ServiceContainer{
		Account:        NewAccountService(repos.AccountRepo, authSvc),
		Ledger:         ledgerSvc,
		Invoice:        NewInvoiceService(repos.InvoiceRepo),
		History:        NewHistoryService(repos.HistoryRepo),
		Reconciliation: NewReconciliationService(repos.AccountRepo, ledgerSvc, authSvc),
		Authorization:  authSvc,
	}
}
