package types

import "fmt"

// RemainingFee returns the outstanding amount of a case fee.
func RemainingFee(total, paid float64) float64 {
	return total - paid
}

// ValidateFees rejects negative amounts and a paid fee above the total.
func ValidateFees(total, paid float64) error {
	if total < 0 || paid < 0 {
		return ErrNegativeFee
	}
	if paid > total {
		return fmt.Errorf("%w: paid %.2f, total %.2f", ErrPaidExceedsTotal, paid, total)
	}
	return nil
}
