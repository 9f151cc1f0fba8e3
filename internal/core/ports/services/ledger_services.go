package services

import (
	"context"

	"github.com/gridbill/grid_billing_app/internal/dto"
	"github.com/shopspring/decimal"
)

// LedgerSvcFacade is the transaction processor: the only mutation surface for
// balances and counters. Every operation is one atomic unit of work under an
// exclusive per-account lock, and appends exactly one audit entry per balance
// change. The actorID has been authorized by the external permission
// collaborator before any of these are invoked.
type LedgerSvcFacade interface {
	// ApplyInvoice records one energy purchase: advances the counter by
	// kilowattAmount + freeKilowatt, increases the balance by the same delta
	// and prices the invoice at kilowattAmount × pricePerKilo − discount.
	ApplyInvoice(ctx context.Context, accountID string, req dto.ApplyInvoiceRequest, actorID string) (*dto.InvoiceResponse, error)

	// CancelInvoice reverses exactly the balance delta the invoice applied
	// and marks it cancelled.
	CancelInvoice(ctx context.Context, accountID string, invoiceID string, actorID string) (*dto.BalanceMutationResponse, error)

	// ArchiveInvoice copies the invoice into the archive and marks it
	// archived. No balance effect.
	ArchiveInvoice(ctx context.Context, accountID string, invoiceID string, actorID string) error

	// ApplyCreditTopUp adds an advance ("visa") credit to both the credit
	// balance and the current balance.
	ApplyCreditTopUp(ctx context.Context, accountID string, req dto.AmountRequest, actorID string) (*dto.BalanceMutationResponse, error)

	// ApplyCashWithdrawal pays cash out: withdrawal total up, balance down.
	ApplyCashWithdrawal(ctx context.Context, accountID string, req dto.AmountRequest, actorID string) (*dto.BalanceMutationResponse, error)

	// UpdateCounterReading sets the counter to newReading and logs the
	// consumption without touching the balance. Readings never go backward.
	UpdateCounterReading(ctx context.Context, accountID string, req dto.CounterReadingRequest, actorID string) (*dto.CounterUpdateResponse, error)

	// SetCreditBalance moves the credit balance to newValue, shifts the
	// current balance by the delta and records previousValue into the shadow
	// previous-value field. Used by the bulk reconciliation workflow.
	SetCreditBalance(ctx context.Context, accountID string, newValue decimal.Decimal, previousValue decimal.Decimal, actorID string) (*dto.BalanceMutationResponse, error)
}
