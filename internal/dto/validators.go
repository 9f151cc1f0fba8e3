package dto

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/gridbill/grid_billing_app/internal/core/domain"
)

// RegisterCustomValidators installs the domain validations referenced by
// binding tags. Called once at startup, before routes are registered.
func RegisterCustomValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("metertype", func(fl validator.FieldLevel) bool {
		switch domain.MeterType(fl.Field().String()) {
		case domain.MeterGenerator, domain.MeterDistributionBox, domain.MeterMain, domain.MeterCustomer:
			return true
		}
		return false
	})
	_ = v.RegisterValidation("financialcategory", func(fl validator.FieldLevel) bool {
		switch domain.FinancialCategory(fl.Field().String()) {
		case domain.CategoryNormal, domain.CategoryFree, domain.CategoryVIP, domain.CategoryFreeVIP:
			return true
		}
		return false
	})
}
