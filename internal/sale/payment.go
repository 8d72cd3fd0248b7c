package sale

import "github.com/shopspring/decimal"

// Payment is the outcome of validating a tendered amount. Rejection is a
// value, not an error: the operator corrects the input and tries again.
type Payment struct {
	Accepted bool            `json:"accepted"`
	Tendered decimal.Decimal `json:"tendered"`
	Change   decimal.Decimal `json:"change"`
}

// Validate accepts when tendered covers the total; change is never negative.
func Validate(tendered, total decimal.Decimal) Payment {
	if tendered.IsNegative() || tendered.LessThan(total) {
		return Payment{Tendered: tendered}
	}
	return Payment{
		Accepted: true,
		Tendered: tendered,
		Change:   tendered.Sub(total),
	}
}

// ValidatePayment parses raw operator input. Anything that is not a
// non-negative decimal is rejected.
func ValidatePayment(input string, total decimal.Decimal) Payment {
	tendered, err := decimal.NewFromString(input)
	if err != nil {
		return Payment{}
	}
	return Validate(tendered, total)
}
