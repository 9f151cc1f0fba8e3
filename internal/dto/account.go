package dto

import (
	"time"

	"github.com/gridbill/grid_billing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to register a new account.
type CreateAccountRequest struct {
	Name              string                   `json:"name" binding:"required"`
	MeterType         domain.MeterType         `json:"meterType" binding:"required,metertype"`
	ParentAccountID   *string                  `json:"parentAccountID"` // Required unless meterType is GENERATOR
	Sector            string                   `json:"sector"`
	BoxNumber         string                   `json:"boxNumber"`
	SerialNumber      string                   `json:"serialNumber"`
	FinancialCategory domain.FinancialCategory `json:"financialCategory" binding:"omitempty,financialcategory"`
	InitialReading    decimal.Decimal          `json:"initialReading"`
}

// UpdateAccountRequest defines the identity/metadata fields allowed to change
// through the edit path. Pointers distinguish "not provided" from zero values.
type UpdateAccountRequest struct {
	Name              *string                   `json:"name"`
	Sector            *string                   `json:"sector"`
	BoxNumber         *string                   `json:"boxNumber"`
	SerialNumber      *string                   `json:"serialNumber"`
	FinancialCategory *domain.FinancialCategory `json:"financialCategory"`
}

// ReparentAccountRequest moves an account under a new parent.
type ReparentAccountRequest struct {
	NewParentAccountID string `json:"newParentAccountID" binding:"required"`
}

// SearchAccountsParams defines query parameters for account search.
type SearchAccountsParams struct {
	Term              string `form:"term"`
	Sector            string `form:"sector"`
	MeterType         string `form:"meterType"`
	FinancialCategory string `form:"financialCategory"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID             string                   `json:"accountID"`
	ParentAccountID       string                   `json:"parentAccountID"`
	MeterType             domain.MeterType         `json:"meterType"`
	Name                  string                   `json:"name"`
	Sector                string                   `json:"sector"`
	BoxNumber             string                   `json:"boxNumber"`
	SerialNumber          string                   `json:"serialNumber"`
	FinancialCategory     domain.FinancialCategory `json:"financialCategory"`
	IsActive              bool                     `json:"isActive"`
	CurrentBalance        decimal.Decimal          `json:"currentBalance"`
	LastCounterReading    decimal.Decimal          `json:"lastCounterReading"`
	CreditBalance         decimal.Decimal          `json:"creditBalance"`
	WithdrawalTotal       decimal.Decimal          `json:"withdrawalTotal"`
	PreviousCreditBalance decimal.Decimal          `json:"previousCreditBalance"`
	PreviousValueAt       *time.Time               `json:"previousValueAt,omitempty"`
	CreatedAt             time.Time                `json:"createdAt"`
	CreatedBy             string                   `json:"createdBy"`
	LastUpdatedAt         time.Time                `json:"lastUpdatedAt"`
	LastUpdatedBy         string                   `json:"lastUpdatedBy"`
}

// HierarchyNodeResponse is one row of the depth-first hierarchy listing.
// Depth is the distance from the root, for indentation by callers.
type HierarchyNodeResponse struct {
	AccountResponse
	Depth int `json:"depth"`
}

// ToAccountResponse converts a domain.Account to AccountResponse.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:             acc.AccountID,
		ParentAccountID:       acc.ParentAccountID,
		MeterType:             acc.MeterType,
		Name:                  acc.Name,
		Sector:                acc.Sector,
		BoxNumber:             acc.BoxNumber,
		SerialNumber:          acc.SerialNumber,
		FinancialCategory:     acc.FinancialCategory,
		IsActive:              acc.IsActive,
		CurrentBalance:        acc.CurrentBalance,
		LastCounterReading:    acc.LastCounterReading,
		CreditBalance:         acc.CreditBalance,
		WithdrawalTotal:       acc.WithdrawalTotal,
		PreviousCreditBalance: acc.PreviousCreditBalance,
		PreviousValueAt:       acc.PreviousValueAt,
		CreatedAt:             acc.CreatedAt,
		CreatedBy:             acc.CreatedBy,
		LastUpdatedAt:         acc.LastUpdatedAt,
		LastUpdatedBy:         acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of accounts.
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i, acc := range accounts {
		res[i] = ToAccountResponse(&acc)
	}
	return res
}
