package service

import "github.com/shopspring/decimal"

// decimalFromFloat converts a config float into a decimal.
// Centralised so every service converts the same way.
func decimalFromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
