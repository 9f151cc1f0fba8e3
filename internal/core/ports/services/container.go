package services

// ServiceContainer aggregates the service facades for dependency injection
// into the HTTP layer.
type ServiceContainer struct {
	Account        AccountSvcFacade
	Ledger         LedgerSvcFacade
	Invoice        InvoiceSvcFacade
	History        HistorySvcFacade
	Reconciliation ReconciliationSvcFacade
	Authorization  AuthorizationSvcFacade
}
