package inventory

import "github.com/shopspring/decimal"

// DefaultBagThresholdPercent porcentaje del peso original usado como umbral si no se indica uno.
var DefaultBagThresholdPercent = decimal.NewFromInt(15)

// DefaultBagThreshold = 15% del peso original.
func DefaultBagThreshold(originalWeight decimal.Decimal) decimal.Decimal {
	return originalWeight.Mul(DefaultBagThresholdPercent).Div(decimal.NewFromInt(100))
}
