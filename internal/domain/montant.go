package domain

import "github.com/shopspring/decimal"

// ValidateMontant accepts strictly positive amounts expressible in cents.
// Balances persist as NUMERIC(14,2); a finer-grained input would be rounded
// on write and drift from the in-memory arithmetic.
func ValidateMontant(m decimal.Decimal) error {
	if !m.IsPositive() {
		return ErrInvalidAmount
	}
	if !m.Equal(m.Round(2)) {
		return ErrInvalidScale
	}
	return nil
}
