package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MinorUnitExponent is the number of decimal places of the checkout currency.
const MinorUnitExponent = 2

// ToMinorUnits converts a decimal amount to the integer minor unit payment
// providers expect (cents for usd). Fractions of a minor unit round half away
// from zero.
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	if !amount.IsPositive() {
		return 0, &ValidationError{Field: "amount", Message: "amount must be positive"}
	}
	minor := amount.Shift(MinorUnitExponent).Round(0)
	if !minor.IsPositive() {
		return 0, &ValidationError{Field: "amount", Message: fmt.Sprintf("amount %s is below one minor unit", amount)}
	}
	if minor.GreaterThan(decimal.NewFromInt(maxMinorUnits)) {
		return 0, &ValidationError{Field: "amount", Message: fmt.Sprintf("amount %s is too large", amount)}
	}
	return minor.IntPart(), nil
}

// Stripe rejects unit amounts with more than eight integer digits.
const maxMinorUnits = 99999999
