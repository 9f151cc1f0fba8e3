package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MeterType defines the role of an account in the physical distribution hierarchy.
type MeterType string

const (
	MeterGenerator       MeterType = "GENERATOR"
	MeterDistributionBox MeterType = "DISTRIBUTION_BOX"
	MeterMain            MeterType = "MAIN"
	MeterCustomer        MeterType = "CUSTOMER"
)

// FinancialCategory classifies how an account is billed.
type FinancialCategory string

const (
	CategoryNormal  FinancialCategory = "NORMAL"
	CategoryFree    FinancialCategory = "FREE"
	CategoryVIP     FinancialCategory = "VIP"
	CategoryFreeVIP FinancialCategory = "FREE_VIP"
)

// Account represents a node in the meter hierarchy. Balances and counters are
// mutated only through the ledger service; identity and hierarchy fields only
// through the account service edit paths.
type Account struct {
	AccountID         string            `json:"accountID"`
	ParentAccountID   string            `json:"parentAccountID"` // Empty for generators
	MeterType         MeterType         `json:"meterType"`
	Name              string            `json:"name"`
	Sector            string            `json:"sector"`
	BoxNumber         string            `json:"boxNumber"`
	SerialNumber      string            `json:"serialNumber"`
	FinancialCategory FinancialCategory `json:"financialCategory"`
	IsActive          bool              `json:"isActive"`

	// Balances, all in kilowatt-hours unless noted.
	CurrentBalance     decimal.Decimal `json:"currentBalance"`
	LastCounterReading decimal.Decimal `json:"lastCounterReading"` // Monotonic, non-negative
	CreditBalance      decimal.Decimal `json:"creditBalance"`      // "visa" advance credit
	WithdrawalTotal    decimal.Decimal `json:"withdrawalTotal"`

	// Shadow display fields: the credit value a bulk reconciliation replaced,
	// and when. Display aid only, never part of balance invariants.
	PreviousCreditBalance decimal.Decimal `json:"previousCreditBalance"`
	PreviousValueAt       *time.Time      `json:"previousValueAt"`

	AuditFields
}

// AllowedParentTypes returns the meter types an account of type t may be attached under.
// A generator sits at a root and takes no parent.
func AllowedParentTypes(t MeterType) []MeterType {
	switch t {
	case MeterGenerator:
		return nil
	case MeterDistributionBox:
		return []MeterType{MeterGenerator}
	case MeterMain:
		return []MeterType{MeterDistributionBox}
	case MeterCustomer:
		return []MeterType{MeterMain, MeterDistributionBox, MeterGenerator}
	default:
		return nil
	}
}

// ValidParentType reports whether parent is an acceptable parent type for t.
func ValidParentType(t MeterType, parent MeterType) bool {
	for _, allowed := range AllowedParentTypes(t) {
		if parent == allowed {
			return true
		}
	}
	return false
}
