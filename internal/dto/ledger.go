package dto

import (
	"time"

	"github.com/gridbill/grid_billing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ApplyInvoiceRequest defines the parameters of one energy purchase.
type ApplyInvoiceRequest struct {
	KilowattAmount decimal.Decimal `json:"kilowattAmount" binding:"required"`
	FreeKilowatt   decimal.Decimal `json:"freeKilowatt"`
	PricePerKilo   decimal.Decimal `json:"pricePerKilo" binding:"required"`
	Discount       decimal.Decimal `json:"discount"`
	Notes          string          `json:"notes"`
}

// AmountRequest carries a single positive amount (top-ups, withdrawals).
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Notes  string          `json:"notes"`
}

// ListInvoicesParams defines query parameters for the invoice listing.
type ListInvoicesParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// CounterReadingRequest carries a new absolute counter reading.
type CounterReadingRequest struct {
	NewReading decimal.Decimal `json:"newReading" binding:"required"`
	Notes      string          `json:"notes"`
}

// BalanceMutationResponse reports the balance effect of a ledger operation.
type BalanceMutationResponse struct {
	AccountID       string          `json:"accountID"`
	BalanceBefore   decimal.Decimal `json:"balanceBefore"`
	BalanceAfter    decimal.Decimal `json:"balanceAfter"`
	CreditBalance   decimal.Decimal `json:"creditBalance"`
	WithdrawalTotal decimal.Decimal `json:"withdrawalTotal"`
}

// InvoiceResponse defines the data returned for an invoice, together with the
// resulting balances of the account it was applied to.
type InvoiceResponse struct {
	InvoiceID       string               `json:"invoiceID"`
	AccountID       string               `json:"accountID"`
	KilowattAmount  decimal.Decimal      `json:"kilowattAmount"`
	FreeKilowatt    decimal.Decimal      `json:"freeKilowatt"`
	PricePerKilo    decimal.Decimal      `json:"pricePerKilo"`
	Discount        decimal.Decimal      `json:"discount"`
	TotalAmount     decimal.Decimal      `json:"totalAmount"`
	PreviousReading decimal.Decimal      `json:"previousReading"`
	NewReading      decimal.Decimal      `json:"newReading"`
	Status          domain.InvoiceStatus `json:"status"`
	CreatedAt       time.Time            `json:"createdAt"`

	// Balances reports the account state after applying the invoice. Omitted
	// in listings, where no mutation took place.
	Balances *BalanceMutationResponse `json:"balances,omitempty"`
}

// CounterUpdateResponse reports a counter-reading update. Consumption is
// newReading − oldReading; the balance is untouched.
type CounterUpdateResponse struct {
	AccountID   string          `json:"accountID"`
	OldReading  decimal.Decimal `json:"oldReading"`
	NewReading  decimal.Decimal `json:"newReading"`
	Consumption decimal.Decimal `json:"consumption"`
}

// ToInvoiceResponse converts a domain invoice plus its account's post-mutation state.
func ToInvoiceResponse(inv *domain.Invoice, balances BalanceMutationResponse) InvoiceResponse {
	resp := toInvoiceResponse(inv)
	resp.Balances = &balances
	return resp
}

// ToListInvoiceResponse converts a slice of invoices for listings.
func ToListInvoiceResponse(invoices []domain.Invoice) []InvoiceResponse {
	res := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		res[i] = toInvoiceResponse(&invoices[i])
	}
	return res
}

func toInvoiceResponse(inv *domain.Invoice) InvoiceResponse {
	return InvoiceResponse{
		InvoiceID:       inv.InvoiceID,
		AccountID:       inv.AccountID,
		KilowattAmount:  inv.KilowattAmount,
		FreeKilowatt:    inv.FreeKilowatt,
		PricePerKilo:    inv.PricePerKilo,
		Discount:        inv.Discount,
		TotalAmount:     inv.TotalAmount,
		PreviousReading: inv.PreviousReading,
		NewReading:      inv.NewReading,
		Status:          inv.Status,
		CreatedAt:       inv.CreatedAt,
	}
}
