// Package memory provides an in-memory implementation of the repository
// ports. It backs service-level tests, including concurrency tests that need
// the real per-account locking discipline without a database.
package memory

import (
	"sync"

	"github.com/gridbill/grid_billing_app/internal/core/domain"
)

// Store holds all tables behind one mutex. Per-account serialization for
// ledger units of work uses a separate lock table so callers on distinct
// accounts proceed in parallel, matching the row-lock semantics of the
// PostgreSQL implementation.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
	invoices map[string]domain.Invoice
	archive  map[string]domain.Invoice
	history  map[string][]domain.HistoryEntry

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]domain.Account),
		invoices: make(map[string]domain.Invoice),
		archive:  make(map[string]domain.Invoice),
		history:  make(map[string][]domain.HistoryEntry),
		locks:    make(map[string]*sync.Mutex),
	}
}

// accountLock returns the mutex serializing units of work on accountID,
// creating it on first use.
func (s *Store) accountLock(accountID string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	l, ok := s.locks[accountID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[accountID] = l
	}
	return l
}
