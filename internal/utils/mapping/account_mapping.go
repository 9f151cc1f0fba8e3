package mapping

import (
	"github.com/gridbill/grid_billing_app/internal/core/domain"
	"github.com/gridbill/grid_billing_app/internal/models"
)

// ToModelAccount converts a domain.Account to its DB representation.
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:         d.AccountID,
		ParentAccountID:   d.ParentAccountID,
		MeterType:         models.MeterType(d.MeterType),
		Name:              d.Name,
		Sector:            d.Sector,
		BoxNumber:         d.BoxNumber,
		SerialNumber:      d.SerialNumber,
		FinancialCategory: string(d.FinancialCategory),
		IsActive:          d.IsActive,
		CurrentBalance:    d.CurrentBalance,
		LastCounterRead:   d.LastCounterReading,
		CreditBalance:     d.CreditBalance,
		WithdrawalTotal:   d.WithdrawalTotal,
		PreviousCredit:    d.PreviousCreditBalance,
		PreviousValueAt:   d.PreviousValueAt,
		AuditFields:       toModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a DB account row to its domain representation.
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:             m.AccountID,
		ParentAccountID:       m.ParentAccountID,
		MeterType:             domain.MeterType(m.MeterType),
		Name:                  m.Name,
		Sector:                m.Sector,
		BoxNumber:             m.BoxNumber,
		SerialNumber:          m.SerialNumber,
		FinancialCategory:     domain.FinancialCategory(m.FinancialCategory),
		IsActive:              m.IsActive,
		CurrentBalance:        m.CurrentBalance,
		LastCounterReading:    m.LastCounterRead,
		CreditBalance:         m.CreditBalance,
		WithdrawalTotal:       m.WithdrawalTotal,
		PreviousCreditBalance: m.PreviousCredit,
		PreviousValueAt:       m.PreviousValueAt,
		AuditFields:           toDomainAuditFields(m.AuditFields),
	}
}
