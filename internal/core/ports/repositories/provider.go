package repositories

// RepositoryProvider aggregates the repository facades a storage backend
// offers, for dependency injection into the service layer.
type RepositoryProvider struct {
	AccountRepo AccountRepositoryFacade
	LedgerRepo  LedgerRepositoryFacade
	InvoiceRepo InvoiceReader
	HistoryRepo HistoryReader
}
