// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"paisatrack/internal/marketdata"
)

// validCurrencies contains the ISO 4217 codes the tracker accepts as a
// local currency.
var validCurrencies = map[string]bool{
	"AED": true, "AUD": true, "BDT": true, "CAD": true, "CHF": true,
	"CNY": true, "EUR": true, "GBP": true, "INR": true, "JPY": true,
	"LKR": true, "MYR": true, "NPR": true, "PKR": true, "SAR": true,
	"SGD": true, "TRY": true, "USD": true,
}

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("iso4217", validateISO4217)
		_ = v.RegisterValidation("coin_id", validateCoinID)
	}
}

func validateISO4217(fl validator.FieldLevel) bool {
	return validCurrencies[fl.Field().String()]
}

func validateCoinID(fl validator.FieldLevel) bool {
	return marketdata.IsSupported(fl.Field().String())
}
