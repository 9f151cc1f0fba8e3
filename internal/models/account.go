package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MeterType mirrors domain.MeterType at the storage layer.
type MeterType string

const (
	MeterGenerator       MeterType = "GENERATOR"
	MeterDistributionBox MeterType = "DISTRIBUTION_BOX"
	MeterMain            MeterType = "MAIN"
	MeterCustomer        MeterType = "CUSTOMER"
)

// Account is the accounts table row.
// ParentAccountID uses string for the nullable self-referencing FK; the
// repository maps empty string to NULL.
type Account struct {
	AccountID         string          `db:"account_id"`
	ParentAccountID   string          `db:"parent_account_id"` // Nullable
	MeterType         MeterType       `db:"meter_type"`
	Name              string          `db:"name"`
	Sector            string          `db:"sector"`
	BoxNumber         string          `db:"box_number"`
	SerialNumber      string          `db:"serial_number"`
	FinancialCategory string          `db:"financial_category"`
	IsActive          bool            `db:"is_active"`
	CurrentBalance    decimal.Decimal `db:"current_balance"`
	LastCounterRead   decimal.Decimal `db:"last_counter_reading"`
	CreditBalance     decimal.Decimal `db:"credit_balance"`
	WithdrawalTotal   decimal.Decimal `db:"withdrawal_total"`
	PreviousCredit    decimal.Decimal `db:"previous_credit_balance"`
	PreviousValueAt   *time.Time      `db:"previous_value_at"` // Nullable
	AuditFields
}
